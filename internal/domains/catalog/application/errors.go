package application

import (
	"errors"
	"fmt"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid catalog input")
	// ErrNotStocked signals a stock operation on a SERVICE product.
	ErrNotStocked = errors.New("only GOOD products carry stock")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrInvalidProductType) ||
		errors.Is(err, domain.ErrInvalidUnitType) ||
		errors.Is(err, domain.ErrInvalidUnitConversion) ||
		errors.Is(err, domain.ErrNegativeTariff) ||
		errors.Is(err, domain.ErrInvalidBusinessArea) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrEmptyBundle) ||
		errors.Is(err, domain.ErrDuplicateBundle) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
