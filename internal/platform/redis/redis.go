package redis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// Config holds connection settings for the shared cache client.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Connect dials Redis and verifies it answers PING. An empty Addr disables
// caching: it returns nil with a no-op cleanup, as does a failed ping.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*goredis.Client, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		logger.Info("REDIS_ADDR not set, catalog cache disabled")
		return nil, func() {}
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("failed to reach redis, catalog cache disabled", slog.String("addr", addr), slog.String("error", err.Error()))
		_ = client.Close()
		return nil, func() {}
	}
	logger.Info("redis connection established", slog.String("addr", addr))
	return client, func() { _ = client.Close() }
}
