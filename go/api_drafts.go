package consoleserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	draftmapper "github.com/Apurer/order-console/internal/domains/ordering/adapters/http/mapper"
	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	orderingports "github.com/Apurer/order-console/internal/domains/ordering/ports"
	apierrors "github.com/Apurer/order-console/internal/shared/errors"
)

// DraftAPI wires HTTP transport with the ordering service.
type DraftAPI struct {
	service orderingports.Service
}

// NewDraftAPI creates a DraftAPI backed by the provided service.
func NewDraftAPI(service orderingports.Service) DraftAPI {
	return DraftAPI{service: service}
}

// Post /v1/drafts
// Start a new draft order
func (api *DraftAPI) CreateDraft(c *gin.Context) {
	view, err := api.service.CreateDraft(c.Request.Context())
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draftmapper.FromDraftView(view))
}

// Get /v1/drafts/:draftId
func (api *DraftAPI) GetDraft(c *gin.Context) {
	view, err := api.service.GetDraft(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftmapper.FromDraftView(view))
}

// Delete /v1/drafts/:draftId
// Cancel a draft. Nothing is sent to the order backend.
func (api *DraftAPI) DiscardDraft(c *gin.Context) {
	if err := api.service.DiscardDraft(c.Request.Context(), c.Param("draftId")); err != nil {
		respondDraftError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Put /v1/drafts/:draftId/customer
func (api *DraftAPI) SelectCustomer(c *gin.Context) {
	var payload draftmapper.SelectCustomerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	view, err := api.service.SelectCustomer(c.Request.Context(), c.Param("draftId"), payload.CustomerID)
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftmapper.FromDraftView(view))
}

// Post /v1/drafts/:draftId/items
// Add a product or increase the quantity of an existing line
func (api *DraftAPI) AddItem(c *gin.Context) {
	var payload draftmapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	quantity := 1
	if payload.Quantity != nil {
		if *payload.Quantity < 1 {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail(domain.ErrInvalidQuantity.Error()))
			return
		}
		quantity = *payload.Quantity
	}
	view, err := api.service.AddItem(c.Request.Context(), c.Param("draftId"), payload.ProductID, quantity)
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftmapper.FromDraftView(view))
}

// Patch /v1/drafts/:draftId/items/:productId
// Change the quantity and/or unit price of a line
func (api *DraftAPI) UpdateItem(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var payload draftmapper.UpdateItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	if payload.Quantity == nil && payload.UnitPrice == nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("quantity or unit_price is required"))
		return
	}
	ctx := c.Request.Context()
	draftID := c.Param("draftId")
	var err error
	if payload.Quantity != nil {
		if _, err = api.service.SetItemQuantity(ctx, draftID, productID, *payload.Quantity); err != nil {
			respondDraftError(c, err)
			return
		}
	}
	if payload.UnitPrice != nil {
		if _, err = api.service.SetItemPrice(ctx, draftID, productID, *payload.UnitPrice); err != nil {
			respondDraftError(c, err)
			return
		}
	}
	view, err := api.service.GetDraft(ctx, draftID)
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftmapper.FromDraftView(view))
}

// Delete /v1/drafts/:draftId/items/:productId
// Removing a product that is not in the cart is a no-op.
func (api *DraftAPI) RemoveItem(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	view, err := api.service.RemoveItem(c.Request.Context(), c.Param("draftId"), productID)
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftmapper.FromDraftView(view))
}

// Put /v1/drafts/:draftId/pricing
func (api *DraftAPI) UpdatePricing(c *gin.Context) {
	var payload draftmapper.PricingInputs
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	view, err := api.service.UpdatePricing(c.Request.Context(), c.Param("draftId"), draftmapper.ToPricingInputs(payload))
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftmapper.FromDraftView(view))
}

// Post /v1/drafts/:draftId/stock-check
// Advisory availability check against fresh snapshots
func (api *DraftAPI) CheckStock(c *gin.Context) {
	result, err := api.service.CheckStock(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftmapper.FromStockCheck(result))
}

// Post /v1/drafts/:draftId/submit
// Submit the draft to the order backend once
func (api *DraftAPI) Submit(c *gin.Context) {
	result, err := api.service.Submit(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(submissionStatus(result.Outcome.Kind), draftmapper.FromSubmission(result))
}

func submissionStatus(kind domain.OutcomeKind) int {
	switch kind {
	case domain.OutcomeSuccess:
		return http.StatusCreated
	case domain.OutcomeInvalid:
		return http.StatusUnprocessableEntity
	case domain.OutcomeStockConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
