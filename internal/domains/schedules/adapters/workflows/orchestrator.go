package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/application"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	scheduleactivities "github.com/ignasiusberneo/clinic-admin/internal/platform/temporal/activities/schedules"
	scheduleworkflows "github.com/ignasiusberneo/clinic-admin/internal/platform/temporal/workflows/schedules"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalScheduleWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineScheduleWorkflows)(nil)
)

// TemporalScheduleWorkflows starts schedule workflows on a Temporal cluster.
type TemporalScheduleWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalScheduleWorkflows wires a Temporal client into the orchestrator.
func NewTemporalScheduleWorkflows(c client.Client) *TemporalScheduleWorkflows {
	return &TemporalScheduleWorkflows{client: c, taskQueue: scheduleworkflows.GenerationTaskQueue}
}

// GenerateSchedules starts the generation workflow and waits for its result.
// Concurrent requests for the same area, product and day share one execution.
func (o *TemporalScheduleWorkflows) GenerateSchedules(ctx context.Context, input ports.GenerateInput) (*ports.GenerateResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal schedule workflows not configured")
	}
	workflowID := buildGenerationWorkflowID(input)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		scheduleworkflows.GenerationWorkflow,
		scheduleworkflows.GenerationWorkflowInput{Command: input, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result ports.GenerateResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, restoreCategory(err)
	}
	return &result, nil
}

// InlineScheduleWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineScheduleWorkflows struct {
	service ports.Service
}

// NewInlineScheduleWorkflows wraps the schedule service for synchronous execution.
func NewInlineScheduleWorkflows(service ports.Service) *InlineScheduleWorkflows {
	return &InlineScheduleWorkflows{service: service}
}

func (o *InlineScheduleWorkflows) GenerateSchedules(ctx context.Context, input ports.GenerateInput) (*ports.GenerateResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline schedule workflows not configured")
	}
	return o.service.GenerateSchedules(ctx, input)
}

func buildGenerationWorkflowID(input ports.GenerateInput) string {
	return fmt.Sprintf("schedule-generation-%d-%d-%s-%s",
		input.BusinessAreaID, input.ProductID, strings.TrimSpace(input.Date), strings.TrimSpace(input.Timezone))
}

// restoreCategory maps non-retryable activity failures back to the
// application errors the HTTP layer understands.
func restoreCategory(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case scheduleactivities.ErrTypeInvalidInput:
		return fmt.Errorf("%w: %s", application.ErrInvalidInput, appErr.Error())
	case scheduleactivities.ErrTypeUnknownReference:
		return fmt.Errorf("%w: %s", application.ErrUnknownReference, appErr.Error())
	}
	return err
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return spanCtx.TraceID().String()
}
