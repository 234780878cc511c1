package application

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
	"github.com/Apurer/order-console/internal/domains/ordering/ports"
)

const defaultSubmitTimeout = 15 * time.Second

// Coordinator drives one draft through validation, order creation and
// reconciliation of the backend's answer.
type Coordinator struct {
	gateway ports.OrderGateway
	guard   *domain.Guard
	newKey  func() string
	now     func() time.Time
	timeout time.Duration
}

func NewCoordinator(gateway ports.OrderGateway) *Coordinator {
	return &Coordinator{
		gateway: gateway,
		guard:   domain.NewGuard(),
		newKey:  func() string { return ulid.Make().String() },
		now:     time.Now,
		timeout: defaultSubmitTimeout,
	}
}

// Submit runs one attempt. lock guards draft; it is released while the backend
// call is in flight so readers are not blocked, and the draft's Submitting state
// refuses concurrent mutations and re-entrant submits meanwhile. The returned
// error is only set when the attempt was refused outright.
func (c *Coordinator) Submit(ctx context.Context, lock sync.Locker, draft *domain.Draft) (domain.SubmissionOutcome, error) {
	lock.Lock()
	req, key, errs, err := draft.BeginSubmission(c.guard, c.newKey)
	if err != nil {
		lock.Unlock()
		return domain.SubmissionOutcome{}, err
	}
	if !errs.Empty() {
		lock.Unlock()
		return domain.SubmissionOutcome{Kind: domain.OutcomeInvalid, Errors: errs.Clone(), Message: errs.Error()}, nil
	}
	lock.Unlock()

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	conf, callErr := c.gateway.CreateOrder(callCtx, req, key)
	if callErr == nil && conf == nil {
		callErr = &domain.TransportError{Message: "order backend returned no order"}
	}

	lock.Lock()
	defer lock.Unlock()
	return draft.CompleteSubmission(conf, callErr, c.now()), nil
}
