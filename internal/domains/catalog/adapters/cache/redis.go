// Package cache provides a Redis read-through decorator for the catalog repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
)

const (
	productKeyPrefix = "catalog:product:"
	serviceKeyPrefix = "catalog:service:"
	servicesKey      = "catalog:services"
	servicesAllKey   = "catalog:services:all"

	DefaultTTL = 5 * time.Minute
)

var _ ports.Repository = (*Repository)(nil)

// Repository serves product and service reads from Redis and falls through to
// the wrapped repository on a miss. Writes go to the wrapped repository and
// then drop the affected keys. Redis failures degrade to uncached reads.
type Repository struct {
	next   ports.Repository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the cache decorator.
type Option func(*Repository)

func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(next ports.Repository, client *redis.Client, opts ...Option) *Repository {
	r := &Repository{next: next, client: client, ttl: DefaultTTL, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	saved, err := r.next.SaveProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, productKey(saved.Key()))
	return saved, nil
}

func (r *Repository) GetProduct(ctx context.Context, key domain.ProductKey) (*domain.Product, error) {
	var cached domain.Product
	if r.load(ctx, productKey(key), &cached) {
		return &cached, nil
	}
	product, err := r.next.GetProduct(ctx, key)
	if err != nil {
		return nil, err
	}
	r.store(ctx, productKey(key), product)
	return product, nil
}

// ListProducts is not cached; filters make the key space unbounded.
func (r *Repository) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	return r.next.ListProducts(ctx, filter)
}

func (r *Repository) SaveService(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	saved, err := r.next.SaveService(ctx, service)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, serviceKey(saved.ID), servicesKey, servicesAllKey)
	return saved, nil
}

func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	var cached domain.Service
	if r.load(ctx, serviceKey(id), &cached) {
		return &cached, nil
	}
	service, err := r.next.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, serviceKey(id), service)
	return service, nil
}

func (r *Repository) ListServices(ctx context.Context, includeInactive bool) ([]domain.Service, error) {
	key := servicesKey
	if includeInactive {
		key = servicesAllKey
	}
	var cached []domain.Service
	if r.load(ctx, key, &cached) {
		return cached, nil
	}
	list, err := r.next.ListServices(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, list)
	return list, nil
}

func (r *Repository) load(ctx context.Context, key string, dst any) bool {
	if r.client == nil {
		return false
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WarnContext(ctx, "catalog cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.logger.WarnContext(ctx, "catalog cache entry corrupt", slog.String("key", key), slog.String("error", err.Error()))
		r.invalidate(ctx, key)
		return false
	}
	return true
}

func (r *Repository) store(ctx context.Context, key string, value any) {
	if r.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "catalog cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (r *Repository) invalidate(ctx context.Context, keys ...string) {
	if r.client == nil || len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.WarnContext(ctx, "catalog cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

func productKey(key domain.ProductKey) string {
	return fmt.Sprintf("%s%d:%d", productKeyPrefix, key.BusinessAreaID, key.ID)
}

func serviceKey(id int64) string {
	return fmt.Sprintf("%s%d", serviceKeyPrefix, id)
}
