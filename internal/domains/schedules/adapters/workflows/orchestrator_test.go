package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/application"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	scheduleactivities "github.com/ignasiusberneo/clinic-admin/internal/platform/temporal/activities/schedules"
)

type recordingService struct {
	ports.Service
	got ports.GenerateInput
}

func (s *recordingService) GenerateSchedules(_ context.Context, in ports.GenerateInput) (*ports.GenerateResult, error) {
	s.got = in
	return &ports.GenerateResult{Created: 1}, nil
}

func TestInlineScheduleWorkflows_Delegates(t *testing.T) {
	svc := &recordingService{}
	o := NewInlineScheduleWorkflows(svc)

	res, err := o.GenerateSchedules(context.Background(), ports.GenerateInput{BusinessAreaID: 3, ProductID: 4, Date: "2024-03-01"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)
	require.EqualValues(t, 3, svc.got.BusinessAreaID)
}

func TestInlineScheduleWorkflows_NotConfigured(t *testing.T) {
	var o *InlineScheduleWorkflows
	_, err := o.GenerateSchedules(context.Background(), ports.GenerateInput{})
	require.Error(t, err)
}

func TestBuildGenerationWorkflowID_IsDeterministic(t *testing.T) {
	in := ports.GenerateInput{BusinessAreaID: 1, ProductID: 2, Date: " 2024-03-01 ", Timezone: "Asia/Jakarta"}
	require.Equal(t, "schedule-generation-1-2-2024-03-01-Asia/Jakarta", buildGenerationWorkflowID(in))
}

func TestRestoreCategory(t *testing.T) {
	invalid := temporal.NewNonRetryableApplicationError("bad date", scheduleactivities.ErrTypeInvalidInput, nil)
	require.ErrorIs(t, restoreCategory(invalid), application.ErrInvalidInput)

	unknown := temporal.NewNonRetryableApplicationError("no area", scheduleactivities.ErrTypeUnknownReference, nil)
	require.ErrorIs(t, restoreCategory(unknown), application.ErrUnknownReference)

	other := errors.New("boom")
	require.Equal(t, other, restoreCategory(other))
}
