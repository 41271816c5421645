package application

import (
	"errors"
	"fmt"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid schedule input")
	// ErrUnknownReference signals a referenced product or business area does not exist.
	ErrUnknownReference = errors.New("referenced record does not exist")
	// ErrNotBookable signals a template was requested for a GOOD product.
	ErrNotBookable = errors.New("only SERVICE products can be scheduled")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidTimeOfDay) ||
		errors.Is(err, domain.ErrInvalidDate) ||
		errors.Is(err, domain.ErrInvalidTimezone) ||
		errors.Is(err, domain.ErrInvalidQuota) ||
		errors.Is(err, domain.ErrInvalidProduct) ||
		errors.Is(err, domain.ErrInvalidBusinessArea) ||
		errors.Is(err, domain.ErrEmptyWindow) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
