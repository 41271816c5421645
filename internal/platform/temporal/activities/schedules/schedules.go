package schedules

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/application"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
)

const (
	// GenerateSchedulesActivityName instantiates templates for one day.
	GenerateSchedulesActivityName = "schedules.activities.Generate"
)

// Activities groups activities that operate on the schedules bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the schedule service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// GenerateSchedules runs one generation pass. Input errors are not retried.
func (a *Activities) GenerateSchedules(ctx context.Context, input ports.GenerateInput) (*ports.GenerateResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("schedule generation activity not initialized")
		return nil, errors.New("schedule generation activity not initialized")
	}
	logger.Info("GenerateSchedules activity started",
		"businessAreaId", input.BusinessAreaID, "productId", input.ProductID, "date", input.Date)
	result, err := a.service.GenerateSchedules(ctx, input)
	if err != nil {
		logger.Error("GenerateSchedules activity failed", "error", err)
		if errors.Is(err, application.ErrInvalidInput) || errors.Is(err, application.ErrUnknownReference) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), nonRetryableType(err), err)
		}
		return nil, err
	}
	logger.Info("GenerateSchedules activity completed", "created", result.Created, "skipped", result.Skipped)
	return result, nil
}

// Error types carried by non-retryable application errors so callers can
// restore the original category after the workflow boundary.
const (
	ErrTypeInvalidInput     = "InvalidInput"
	ErrTypeUnknownReference = "UnknownReference"
)

func nonRetryableType(err error) string {
	if errors.Is(err, application.ErrUnknownReference) {
		return ErrTypeUnknownReference
	}
	return ErrTypeInvalidInput
}
