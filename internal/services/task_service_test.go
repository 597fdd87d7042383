package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"janmitra/internal/authz"
	"janmitra/internal/models"
	"janmitra/internal/repositories"
)

var (
	staffScope  = authz.Scope{UserID: 7, RoleID: authz.RoleFieldStaff, OfficeID: 1}
	adminScope  = authz.Scope{UserID: 1, RoleID: authz.RoleSuperAdmin, OfficeID: 0}
	otherOffice = authz.Scope{UserID: 9, RoleID: authz.RoleFieldStaff, OfficeID: 2}
)

type taskEnv struct {
	svc   TaskService
	tasks *fakeTaskRepo
	users *fakeUserRepo
	email *fakeEmail
}

// newTaskEnv wires the engine against in-memory repos with a "water"
// category carrying a three-step catch-all workflow and a "general"
// category with no workflow at all.
func newTaskEnv(t *testing.T) *taskEnv {
	t.Helper()
	tasks := newFakeTaskRepo()
	users := newFakeUserRepo()
	workflows := newFakeWorkflowRepo()
	categories := newFakeCategoryRepo()
	email := &fakeEmail{}

	wsvc := NewWorkflowService(workflows, categories)
	cat := seedCategory(t, categories, "water", "leakage")
	_, err := wsvc.CreateTemplate(context.Background(), &models.WorkflowTemplate{
		CategoryID: cat.ID,
		SLADays:    2,
		Steps: []models.StepTemplate{
			{Title: "Inspect", Required: true},
			{Title: "Repair", Required: true},
			{Title: "Verify", Required: true},
		},
	})
	require.NoError(t, err)
	seedCategory(t, categories, "general")

	return &taskEnv{
		svc:   NewTaskService(tasks, users, wsvc, email, nil),
		tasks: tasks,
		users: users,
		email: email,
	}
}

func (e *taskEnv) createWaterTask(t *testing.T) *models.Task {
	t.Helper()
	task, err := e.svc.Create(context.Background(), staffScope, &models.Task{
		Title:        "No water supply since Monday",
		Category:     "water",
		CitizenName:  "Ramesh",
		CitizenEmail: "ramesh@example.org",
	})
	require.NoError(t, err)
	return task
}

func stepBySeq(t *testing.T, steps []models.TaskStep, seq int) models.TaskStep {
	t.Helper()
	for _, s := range steps {
		if s.Sequence == seq {
			return s
		}
	}
	t.Fatalf("no step with sequence %d", seq)
	return models.TaskStep{}
}

func TestCreateAttachesWorkflow(t *testing.T) {
	env := newTaskEnv(t)
	task := env.createWaterTask(t)

	assert.Equal(t, models.StatusOpen, task.Status)
	assert.Equal(t, 0, task.Progress)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.SourceWalkIn, task.Source)
	assert.Equal(t, int64(1), task.OfficeID)
	assert.Equal(t, staffScope.UserID, task.CreatorID)

	assert.True(t, strings.HasPrefix(task.TrackingCode, "JM-"))
	assert.Len(t, task.TrackingCode, 11)

	require.Len(t, task.Steps, 3)
	for _, s := range task.Steps {
		assert.Equal(t, models.StepPending, s.Status)
	}
	require.NotNil(t, task.DueDate)
	assert.Equal(t, 48.0, task.DueDate.Sub(task.CreatedAt).Hours())

	// intake acknowledgement went out to the citizen
	assert.Equal(t, []string{task.TrackingCode}, env.email.acks)
}

func TestCreateWithoutWorkflow(t *testing.T) {
	env := newTaskEnv(t)

	task, err := env.svc.Create(context.Background(), staffScope, &models.Task{
		Title:    "General enquiry",
		Category: "general",
		Priority: models.PriorityLow,
		Source:   models.SourceQR,
	})
	require.NoError(t, err)

	assert.Empty(t, task.Steps)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, models.PriorityLow, task.Priority)
	assert.Equal(t, models.SourceQR, task.Source)
}

func TestCreateUnknownCategory(t *testing.T) {
	env := newTaskEnv(t)

	_, err := env.svc.Create(context.Background(), staffScope, &models.Task{
		Title:    "x",
		Category: "electricity",
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCompleteStepsToResolution(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()
	task := env.createWaterTask(t)

	res, err := env.svc.CompleteStep(ctx, staffScope, task.ID, stepBySeq(t, task.Steps, 1).ID, "pipe located")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, res.Task.Status)
	assert.Equal(t, 33, res.Task.Progress)
	assert.False(t, res.TaskCompleted)
	assert.Equal(t, models.StepCompleted, res.Step.Status)
	assert.Equal(t, "pipe located", res.Step.Notes)
	require.NotNil(t, res.Step.CompletedBy)
	assert.Equal(t, staffScope.UserID, *res.Step.CompletedBy)

	res, err = env.svc.CompleteStep(ctx, staffScope, task.ID, stepBySeq(t, task.Steps, 2).ID, "")
	require.NoError(t, err)
	assert.Equal(t, 67, res.Task.Progress)

	res, err = env.svc.CompleteStep(ctx, staffScope, task.ID, stepBySeq(t, task.Steps, 3).ID, "")
	require.NoError(t, err)
	assert.True(t, res.TaskCompleted)
	assert.Equal(t, models.StatusCompleted, res.Task.Status)
	assert.Equal(t, 100, res.Task.Progress)
	assert.NotNil(t, res.Task.CompletedAt)
	assert.Empty(t, res.SideEffects)

	// medium priority pays 10 points per completed step
	assert.Equal(t, 30, env.users.points[staffScope.UserID])
	// the citizen got the resolution notice
	assert.Equal(t, []string{task.TrackingCode}, env.email.resolutions)

	got, err := env.svc.GetByID(ctx, staffScope, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestCompleteStepOutOfOrder(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()
	task := env.createWaterTask(t)

	_, err := env.svc.CompleteStep(ctx, staffScope, task.ID, stepBySeq(t, task.Steps, 2).ID, "")
	require.Error(t, err)
	require.True(t, IsSequenceViolation(err))

	var sv *SequenceViolationError
	require.ErrorAs(t, err, &sv)
	assert.Equal(t, 2, sv.StepSequence)
	assert.Equal(t, 1, sv.PredecessorSequence)

	// nothing may have been written
	got, err := env.svc.GetByID(ctx, staffScope, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.Equal(t, 0, got.Progress)
	steps, err := env.svc.ListSteps(ctx, staffScope, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepPending, stepBySeq(t, steps, 2).Status)
}

func TestCompleteStepTwice(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()
	task := env.createWaterTask(t)
	stepID := stepBySeq(t, task.Steps, 1).ID

	_, err := env.svc.CompleteStep(ctx, staffScope, task.ID, stepID, "")
	require.NoError(t, err)

	_, err = env.svc.CompleteStep(ctx, staffScope, task.ID, stepID, "")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCompleteStepOnCompletedTask(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()
	task := env.createWaterTask(t)
	for seq := 1; seq <= 3; seq++ {
		_, err := env.svc.CompleteStep(ctx, staffScope, task.ID, stepBySeq(t, task.Steps, seq).ID, "")
		require.NoError(t, err)
	}

	_, err := env.svc.CompleteStep(ctx, staffScope, task.ID, stepBySeq(t, task.Steps, 1).ID, "")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCompleteStepUnknownStep(t *testing.T) {
	env := newTaskEnv(t)
	task := env.createWaterTask(t)

	_, err := env.svc.CompleteStep(context.Background(), staffScope, task.ID, 9999, "")
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestCompleteStepVersionConflict(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()
	task := env.createWaterTask(t)

	env.tasks.applyErr = repositories.ErrVersionConflict
	_, err := env.svc.CompleteStep(ctx, staffScope, task.ID, stepBySeq(t, task.Steps, 1).ID, "")
	assert.ErrorIs(t, err, ErrConcurrentModification)

	// the failed attempt left no trace, a retry succeeds
	steps, err := env.svc.ListSteps(ctx, staffScope, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepPending, stepBySeq(t, steps, 1).Status)

	_, err = env.svc.CompleteStep(ctx, staffScope, task.ID, stepBySeq(t, task.Steps, 1).ID, "")
	assert.NoError(t, err)
}

func TestCompleteStepPointAwardIsBestEffort(t *testing.T) {
	env := newTaskEnv(t)
	task := env.createWaterTask(t)

	env.users.addPointsErr = errors.New("users table unavailable")
	res, err := env.svc.CompleteStep(context.Background(), staffScope, task.ID, stepBySeq(t, task.Steps, 1).ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.StepCompleted, res.Step.Status)
	require.Len(t, res.SideEffects, 1)
	assert.Contains(t, res.SideEffects[0], "point award failed")
	assert.Zero(t, env.users.points[staffScope.UserID])
}

func TestChangeStatusManualTask(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()

	task, err := env.svc.Create(ctx, staffScope, &models.Task{Title: "Enquiry", Category: "general"})
	require.NoError(t, err)

	got, err := env.svc.ChangeStatus(ctx, staffScope, task.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)

	_, err = env.svc.ChangeStatus(ctx, staffScope, task.ID, models.StatusOpen)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err = env.svc.ChangeStatus(ctx, staffScope, task.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.NotNil(t, got.CompletedAt)

	_, err = env.svc.ChangeStatus(ctx, staffScope, task.ID, models.StatusInProgress)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestChangeStatusBlockedByPendingSteps(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()
	task := env.createWaterTask(t)

	// a step-driven task cannot be force-completed around its checklist
	_, err := env.svc.ChangeStatus(ctx, staffScope, task.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.svc.CompleteStep(ctx, staffScope, task.ID, stepBySeq(t, task.Steps, 1).ID, "")
	require.NoError(t, err)
	_, err = env.svc.ChangeStatus(ctx, staffScope, task.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOfficeIsolation(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()
	task := env.createWaterTask(t)

	// another office's staff never sees the task
	_, err := env.svc.GetByID(ctx, otherOffice, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = env.svc.CompleteStep(ctx, otherOffice, task.ID, stepBySeq(t, task.Steps, 1).ID, "")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// cross-tenant roles read everything
	got, err := env.svc.GetByID(ctx, adminScope, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	list, err := env.svc.GetAll(ctx, otherOffice, models.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = env.svc.GetAll(ctx, adminScope, models.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSoftDelete(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()
	task := env.createWaterTask(t)

	require.NoError(t, env.svc.Delete(ctx, staffScope, task.ID))

	_, err := env.svc.GetByID(ctx, staffScope, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = env.svc.Track(ctx, task.TrackingCode)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTrack(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()
	task := env.createWaterTask(t)

	got, err := env.svc.Track(ctx, task.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = env.svc.Track(ctx, "JM-DEADBEEF")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
