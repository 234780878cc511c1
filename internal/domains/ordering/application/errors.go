package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/order-console/internal/domains/ordering/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid draft input")
	// ErrDraftNotFound is returned for unknown, discarded or expired drafts.
	ErrDraftNotFound = errors.New("draft not found")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidProduct) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativeUnitPrice) ||
		errors.Is(err, domain.ErrInvalidCustomer) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
