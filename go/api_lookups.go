package consoleserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	draftmapper "github.com/Apurer/order-console/internal/domains/ordering/adapters/http/mapper"
	orderingports "github.com/Apurer/order-console/internal/domains/ordering/ports"
	apierrors "github.com/Apurer/order-console/internal/shared/errors"
)

const (
	lookupProducts  = "products"
	lookupCustomers = "customers"
)

// LookupAPI exposes the debounced per-draft product and customer searches.
type LookupAPI struct {
	service orderingports.Service
}

func NewLookupAPI(service orderingports.Service) LookupAPI {
	return LookupAPI{service: service}
}

// Post /v1/drafts/:draftId/lookups/:kind
// Queue a search. The returned sequence identifies the query; only the latest
// sequence is ever published.
func (api *LookupAPI) StartLookup(c *gin.Context) {
	var payload draftmapper.LookupRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	ctx := c.Request.Context()
	draftID := c.Param("draftId")
	var (
		seq uint64
		err error
	)
	switch c.Param("kind") {
	case lookupProducts:
		seq, err = api.service.LookupProducts(ctx, draftID, payload.Query)
	case lookupCustomers:
		seq, err = api.service.LookupCustomers(ctx, draftID, payload.Query)
	default:
		respondProblem(c, apierrors.NewNotFoundProblem("lookup", c.Param("kind")))
		return
	}
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"sequence": seq})
}

// Get /v1/drafts/:draftId/lookups/:kind
func (api *LookupAPI) GetLookup(c *gin.Context) {
	ctx := c.Request.Context()
	draftID := c.Param("draftId")
	switch c.Param("kind") {
	case lookupProducts:
		view, err := api.service.ProductLookup(ctx, draftID)
		if err != nil {
			respondDraftError(c, err)
			return
		}
		c.JSON(http.StatusOK, draftmapper.FromLookup(view, draftmapper.FromProduct))
	case lookupCustomers:
		view, err := api.service.CustomerLookup(ctx, draftID)
		if err != nil {
			respondDraftError(c, err)
			return
		}
		c.JSON(http.StatusOK, draftmapper.FromLookup(view, draftmapper.FromCustomer))
	default:
		respondProblem(c, apierrors.NewNotFoundProblem("lookup", c.Param("kind")))
	}
}
