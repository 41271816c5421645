package application

import (
	"errors"
	"fmt"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid identity input")
	// ErrAuthentication wraps failed logins and invalid sessions.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotFound signals a missing user or role.
	ErrNotFound = errors.New("identity resource not found")
	// ErrConflict signals a uniqueness violation.
	ErrConflict = errors.New("identity conflict")

	// ErrInvalidCredentials is returned for unknown users, inactive users and bad passwords alike.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuthentication)
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrAuthentication),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrUnknownPermission),
		errors.Is(err, domain.ErrInvalidRole):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrSessionNotFound):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrDuplicateUsername),
		errors.Is(err, ports.ErrDuplicateRole):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
