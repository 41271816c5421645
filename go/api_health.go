package clinicserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthAPI answers liveness probes.
type HealthAPI struct {
	checks map[string]Pinger
}

// NewHealthAPI creates a HealthAPI checking the named dependencies.
func NewHealthAPI(checks map[string]Pinger) HealthAPI {
	return HealthAPI{checks: checks}
}

// Get /healthz
func (api *HealthAPI) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	status := http.StatusOK
	report := gin.H{}
	for name, check := range api.checks {
		if err := check.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			report[name] = err.Error()
			continue
		}
		report[name] = "ok"
	}
	report["status"] = http.StatusText(status)
	c.JSON(status, report)
}
