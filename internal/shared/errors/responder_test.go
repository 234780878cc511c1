package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/drafts/abc", nil)
	handler(c)
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestResponder_SetsContentTypeAndInstance(t *testing.T) {
	rec, problem := serve(t, func(c *gin.Context) {
		NewResponder("https://errors.example.com").Respond(c, ErrBadRequest.WithDetail("bad body"))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, "https://errors.example.com"+TypeBadRequest, problem.Type)
	assert.Equal(t, "/v1/drafts/abc", problem.Instance)
	assert.Equal(t, "bad body", problem.Detail)
}

func TestChainedResponder_UsesFirstMatchingMapper(t *testing.T) {
	errMissing := stderrors.New("draft not found")
	responder := NewChainedResponder("",
		MapIs(errMissing, ErrNotFound),
		MapIs(errMissing, ErrConflict),
	)
	rec, problem := serve(t, func(c *gin.Context) {
		responder.RespondError(c, fmt.Errorf("load: %w", errMissing))
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "load: draft not found", problem.Detail)
}

func TestChainedResponder_FallsBackToInternal(t *testing.T) {
	responder := NewChainedResponder("")
	rec, problem := serve(t, func(c *gin.Context) {
		responder.RespondError(c, stderrors.New("boom"))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", problem.Detail)
}

func TestNewOutOfStockProblem(t *testing.T) {
	problem := NewOutOfStockProblem("insufficient stock for Widget (available: 2)", 4, 2, 3)
	assert.Equal(t, http.StatusConflict, problem.Status)
	assert.Equal(t, int64(4), problem.Extensions["productId"])
	assert.Equal(t, 2, problem.Extensions["available"])
	assert.Equal(t, HTTPStatusFromError(problem), http.StatusConflict)
}
