//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"

	consoleserver "github.com/Apurer/order-console/go"
	orderingmemory "github.com/Apurer/order-console/internal/domains/ordering/adapters/memory"
	orderingobs "github.com/Apurer/order-console/internal/domains/ordering/adapters/observability"
	orderingapp "github.com/Apurer/order-console/internal/domains/ordering/application"
	pacttest "github.com/Apurer/order-console/test/pact"
)

func TestOrderConsoleProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateDraftsBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetDrafts()
			return nil, nil
		},
		pacttest.StateDraftExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetDrafts()
			if setup {
				app.seedDraft(t)
			}
			return nil, nil
		},
		pacttest.StateDraftMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetDrafts()
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.resetDrafts()
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	service *orderingapp.Service
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	catalog := orderingmemory.NewCatalog()
	require.NoError(t, orderingmemory.SeedDemo(context.Background(), catalog))
	core := orderingapp.NewService(
		catalog,
		orderingmemory.NewOrderBackend(catalog),
		orderingapp.WithIDGenerator(func() string { return pacttest.ExistingDraftID }, nil),
	)
	service := orderingobs.New(core)

	handlers := consoleserver.ApiHandleFunctions{
		DraftAPI:  consoleserver.NewDraftAPI(service),
		LookupAPI: consoleserver.NewLookupAPI(service),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = consoleserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{
		service: core,
		server:  server,
	}
}

func (a *contractProviderApp) resetDrafts() {
	_ = a.service.DiscardDraft(context.Background(), pacttest.ExistingDraftID)
}

func (a *contractProviderApp) seedDraft(t testing.TB) {
	t.Helper()
	_, err := a.service.CreateDraft(context.Background())
	require.NoError(t, err)
}
