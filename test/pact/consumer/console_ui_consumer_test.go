//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/order-console/test/pact"
)

type draftPayload struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Items []struct {
		ProductID int64  `json:"product_id"`
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"unit_price"`
	} `json:"items"`
	Pricing struct {
		Subtotal string `json:"subtotal"`
		Total    string `json:"total"`
	} `json:"pricing"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestConsoleUIContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateDraftsBaseline).
		UponReceiving("a request to start a draft").
		WithRequest("POST", "/v1/drafts").
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":    matchers.Like(pacttest.ExistingDraftID),
				"state": matchers.S("idle"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateDraftExists).
		UponReceiving("a request to add a product to a draft").
		WithRequest("POST", "/v1/drafts/"+pacttest.ExistingDraftID+"/items", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(map[string]any{"product_id": pacttest.ExistingProductID, "quantity": 2})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":    matchers.S(pacttest.ExistingDraftID),
				"state": matchers.S("idle"),
				"items": matchers.EachLike(matchers.Map{
					"product_id": matchers.Like(pacttest.ExistingProductID),
					"quantity":   matchers.Like(2),
					"unit_price": matchers.Like("249.9"),
				}, 1),
				"pricing": matchers.Map{
					"subtotal": matchers.Like("499.8"),
					"total":    matchers.Like("499.8"),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateDraftMissing).
		UponReceiving("a request for a missing draft").
		WithRequest("GET", "/v1/drafts/"+pacttest.MissingDraftID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newDraftClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.CreateDraft(ctx)
		if err != nil {
			return fmt.Errorf("create draft: %w", err)
		}
		if created.ID == "" {
			return fmt.Errorf("expected draft id to be set")
		}

		updated, err := client.AddItem(ctx, pacttest.ExistingDraftID, pacttest.ExistingProductID, 2)
		if err != nil {
			return fmt.Errorf("add item: %w", err)
		}
		if len(updated.Items) != 1 || updated.Items[0].Quantity != 2 {
			return fmt.Errorf("expected one line with quantity 2, got %+v", updated.Items)
		}

		if _, err := client.GetDraft(ctx, pacttest.MissingDraftID); err == nil {
			return fmt.Errorf("expected 404 for draft %s", pacttest.MissingDraftID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}
		return nil
	})
	require.NoError(t, err)
}

type draftClient struct {
	baseURL    string
	httpClient *http.Client
}

func newDraftClient(config pactconsumer.MockServerConfig) *draftClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &draftClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *draftClient) CreateDraft(ctx context.Context) (*draftPayload, error) {
	return c.send(ctx, http.MethodPost, "/v1/drafts", nil)
}

func (c *draftClient) GetDraft(ctx context.Context, id string) (*draftPayload, error) {
	return c.send(ctx, http.MethodGet, "/v1/drafts/"+id, nil)
}

func (c *draftClient) AddItem(ctx context.Context, id string, productID int64, quantity int) (*draftPayload, error) {
	return c.send(ctx, http.MethodPost, "/v1/drafts/"+id+"/items", map[string]any{"product_id": productID, "quantity": quantity})
}

func (c *draftClient) send(ctx context.Context, method, path string, body any) (*draftPayload, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}
	var payload draftPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	if err := json.NewDecoder(res.Body).Decode(&problem); err != nil {
		return apiError{status: res.StatusCode}
	}
	return apiError{status: res.StatusCode, title: problem.Title, detail: problem.Detail}
}
