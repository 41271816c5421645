package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	scheduleactivities "github.com/ignasiusberneo/clinic-admin/internal/platform/temporal/activities/schedules"
)

// RunScheduleGenerationSequence executes the generation activity with retries.
func RunScheduleGenerationSequence(ctx workflow.Context, input ports.GenerateInput) (*ports.GenerateResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("schedule generation sequence started",
		"businessAreaId", input.BusinessAreaID, "productId", input.ProductID, "date", input.Date)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	var result ports.GenerateResult
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), scheduleactivities.GenerateSchedulesActivityName, input).Get(ctx, &result)
	if err != nil {
		logger.Error("schedule generation sequence failed", "error", err)
		return nil, err
	}
	logger.Info("schedule generation sequence completed", "created", result.Created, "skipped", result.Skipped)
	return &result, nil
}
