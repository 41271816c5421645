package application

import (
	"errors"
	"fmt"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid master data input")
	// ErrUnknownReference signals a referenced business area or referral type does not exist.
	ErrUnknownReference = errors.New("referenced master data does not exist")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrInvalidTimezone) ||
		errors.Is(err, domain.ErrInvalidBusinessArea) ||
		errors.Is(err, domain.ErrInvalidBirthDate) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
