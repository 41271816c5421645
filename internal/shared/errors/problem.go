// Package errors provides RFC 7807 Problem Details for HTTP APIs.
//
// Every problem also carries an `error` member holding the localized,
// user-facing message that the admin frontend shows verbatim.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference that identifies the problem type. It doubles as the error kind.
	Type string `json:"type"`
	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`
	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`
	// Message is the localized message surfaced to staff.
	Message string `json:"error"`
	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`
	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
	// Extensions holds additional problem-specific properties.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	if p.Message != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Message)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithMessage returns a copy with the given localized message.
func (p ProblemDetail) WithMessage(message string) ProblemDetail {
	p.Message = message
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Common problem types as URI references.
const (
	TypeValidation      = "/problems/validation-error"
	TypeNotFound        = "/problems/not-found"
	TypeConflict        = "/problems/conflict"
	TypeInvalidState    = "/problems/invalid-state"
	TypeInternal        = "/problems/internal-error"
	TypeUnauthorized    = "/problems/unauthorized"
	TypeForbidden       = "/problems/forbidden"
	TypeBadRequest      = "/problems/bad-request"
	TypeTooManyRequests = "/problems/too-many-requests"
)

// Pre-defined problem templates for common scenarios.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = ProblemDetail{
		Type:    TypeNotFound,
		Title:   "Resource Not Found",
		Status:  http.StatusNotFound,
		Message: "Data tidak ditemukan",
	}

	// ErrValidation indicates the request failed validation.
	ErrValidation = ProblemDetail{
		Type:    TypeValidation,
		Title:   "Validation Error",
		Status:  http.StatusBadRequest,
		Message: "Data yang dikirim tidak valid",
	}

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = ProblemDetail{
		Type:    TypeBadRequest,
		Title:   "Bad Request",
		Status:  http.StatusBadRequest,
		Message: "Permintaan tidak valid",
	}

	// ErrInvalidState indicates the resource cannot accept the operation in its current state.
	ErrInvalidState = ProblemDetail{
		Type:    TypeInvalidState,
		Title:   "Invalid State",
		Status:  http.StatusBadRequest,
		Message: "Operasi tidak dapat dilakukan pada status saat ini",
	}

	// ErrConflict indicates a conflict with the current state.
	ErrConflict = ProblemDetail{
		Type:    TypeConflict,
		Title:   "Conflict",
		Status:  http.StatusConflict,
		Message: "Data telah diubah oleh pengguna lain",
	}

	// ErrInternal indicates an unexpected server error.
	ErrInternal = ProblemDetail{
		Type:    TypeInternal,
		Title:   "Internal Server Error",
		Status:  http.StatusInternalServerError,
		Message: "Terjadi kesalahan pada server",
	}

	// ErrUnauthorized indicates missing or invalid authentication.
	ErrUnauthorized = ProblemDetail{
		Type:    TypeUnauthorized,
		Title:   "Unauthorized",
		Status:  http.StatusUnauthorized,
		Message: "Sesi tidak valid, silakan login kembali",
	}

	// ErrForbidden indicates the action is not allowed.
	ErrForbidden = ProblemDetail{
		Type:    TypeForbidden,
		Title:   "Forbidden",
		Status:  http.StatusForbidden,
		Message: "Anda tidak memiliki akses untuk melakukan aksi ini",
	}

	// ErrTooManyRequests indicates the client exceeded a rate limit.
	ErrTooManyRequests = ProblemDetail{
		Type:    TypeTooManyRequests,
		Title:   "Too Many Requests",
		Status:  http.StatusTooManyRequests,
		Message: "Terlalu banyak percobaan, silakan coba lagi nanti",
	}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}
