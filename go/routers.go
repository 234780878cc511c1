package consoleserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	DraftAPI  DraftAPI
	LookupAPI LookupAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc is used for routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Healthz},
		{"CreateDraft", http.MethodPost, "/v1/drafts", handleFunctions.DraftAPI.CreateDraft},
		{"GetDraft", http.MethodGet, "/v1/drafts/:draftId", handleFunctions.DraftAPI.GetDraft},
		{"DiscardDraft", http.MethodDelete, "/v1/drafts/:draftId", handleFunctions.DraftAPI.DiscardDraft},
		{"SelectCustomer", http.MethodPut, "/v1/drafts/:draftId/customer", handleFunctions.DraftAPI.SelectCustomer},
		{"AddItem", http.MethodPost, "/v1/drafts/:draftId/items", handleFunctions.DraftAPI.AddItem},
		{"UpdateItem", http.MethodPatch, "/v1/drafts/:draftId/items/:productId", handleFunctions.DraftAPI.UpdateItem},
		{"RemoveItem", http.MethodDelete, "/v1/drafts/:draftId/items/:productId", handleFunctions.DraftAPI.RemoveItem},
		{"UpdatePricing", http.MethodPut, "/v1/drafts/:draftId/pricing", handleFunctions.DraftAPI.UpdatePricing},
		{"CheckStock", http.MethodPost, "/v1/drafts/:draftId/stock-check", handleFunctions.DraftAPI.CheckStock},
		{"SubmitDraft", http.MethodPost, "/v1/drafts/:draftId/submit", handleFunctions.DraftAPI.Submit},
		{"StartLookup", http.MethodPost, "/v1/drafts/:draftId/lookups/:kind", handleFunctions.LookupAPI.StartLookup},
		{"GetLookup", http.MethodGet, "/v1/drafts/:draftId/lookups/:kind", handleFunctions.LookupAPI.GetLookup},
	}
}
