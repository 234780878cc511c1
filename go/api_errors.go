package consoleserver

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	orderingapp "github.com/Apurer/order-console/internal/domains/ordering/application"
	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	orderingports "github.com/Apurer/order-console/internal/domains/ordering/ports"
	apierrors "github.com/Apurer/order-console/internal/shared/errors"
)

var draftResponder = apierrors.NewChainedResponder("",
	apierrors.MapIs(orderingapp.ErrDraftNotFound, apierrors.ErrNotFound),
	mapStockError,
	apierrors.MapIs(orderingapp.ErrInvalidInput, apierrors.ErrBadRequest),
	apierrors.MapIs(domain.ErrItemNotFound, apierrors.ErrNotFound),
	apierrors.MapIs(orderingports.ErrProductNotFound, apierrors.ErrNotFound),
	apierrors.MapIs(orderingports.ErrCustomerNotFound, apierrors.ErrNotFound),
	apierrors.MapIs(domain.ErrDraftBusy, apierrors.ErrConflict),
	apierrors.MapIs(domain.ErrDraftClosed, apierrors.ErrConflict),
	mapTransportError,
)

func mapStockError(err error) (apierrors.ProblemDetail, bool) {
	var stockErr *domain.StockError
	if !errors.As(err, &stockErr) {
		return apierrors.ProblemDetail{}, false
	}
	problem := apierrors.NewOutOfStockProblem(stockErr.Error(), stockErr.ProductID, stockErr.Available, stockErr.Requested)
	return problem.WithExtension("code", domain.OutOfStockCode), true
}

// Snapshot reads that fail upstream surface as 502.
func mapTransportError(err error) (apierrors.ProblemDetail, bool) {
	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrBadGateway.WithDetail(transportErr.Error()), true
}

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

func respondDraftError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	draftResponder.RespondError(c, err)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
