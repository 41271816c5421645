package schedules

import (
	"go.temporal.io/sdk/workflow"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/temporal/sequences"
)

const (
	// GenerationWorkflowName is the public identifier for registering the workflow.
	GenerationWorkflowName = "schedules.workflows.Generation"
	// GenerationTaskQueue is the queue consumed by the worker processing schedule workflows.
	GenerationTaskQueue = "SCHEDULE_GENERATION"
)

// GenerationWorkflowInput carries the generation request plus the caller's trace id.
type GenerationWorkflowInput struct {
	Command ports.GenerateInput
	TraceID string
}

// GenerationWorkflow instantiates a day of schedules from templates.
func GenerationWorkflow(ctx workflow.Context, input GenerationWorkflowInput) (*ports.GenerateResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("GenerationWorkflow started", withTraceID(input.TraceID, "date", input.Command.Date)...)
	result, err := sequences.RunScheduleGenerationSequence(ctx, input.Command)
	if err != nil {
		logger.Error("GenerationWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return nil, err
	}
	logger.Info("GenerationWorkflow completed", withTraceID(input.TraceID, "created", result.Created)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
