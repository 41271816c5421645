package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the key was already used with a different payload.
var ErrIdempotencyConflict = errors.New("idempotency key reuse with different payload")

// IdempotencyRecord binds a client key to the order it created.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     string
	CreatedAt   time.Time
}

// IdempotencyStore reads idempotency keys claimed by committed orders.
type IdempotencyStore interface {
	// Get returns nil when the key is unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
}
