package schedules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/application"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	scheduleactivities "github.com/ignasiusberneo/clinic-admin/internal/platform/temporal/activities/schedules"
)

type stubService struct {
	ports.Service
	calls  int
	result *ports.GenerateResult
	err    error
}

func (s *stubService) GenerateSchedules(context.Context, ports.GenerateInput) (*ports.GenerateResult, error) {
	s.calls++
	return s.result, s.err
}

func newEnv(t *testing.T, svc ports.Service) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := scheduleactivities.NewActivities(svc)
	env.RegisterActivityWithOptions(acts.GenerateSchedules, activity.RegisterOptions{Name: scheduleactivities.GenerateSchedulesActivityName})
	return env
}

func TestGenerationWorkflow_ReturnsActivityResult(t *testing.T) {
	svc := &stubService{result: &ports.GenerateResult{Created: 2, Schedules: []domain.Schedule{{ID: 1}, {ID: 2}}}}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(GenerationWorkflow, GenerationWorkflowInput{Command: ports.GenerateInput{BusinessAreaID: 1, ProductID: 2, Date: "2024-03-01"}})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result ports.GenerateResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, 2, result.Created)
	require.Len(t, result.Schedules, 2)
}

func TestGenerationWorkflow_InvalidInputIsNotRetried(t *testing.T) {
	svc := &stubService{err: application.ErrInvalidInput}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(GenerationWorkflow, GenerationWorkflowInput{Command: ports.GenerateInput{Date: "bad"}})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.Equal(t, 1, svc.calls)
}
