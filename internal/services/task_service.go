package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"janmitra/internal/authz"
	"janmitra/internal/models"
	"janmitra/internal/repositories"
)

// TaskService is the workflow attachment and progress engine: it resolves
// the applicable checklist at creation, enforces ordered completion of
// required steps and keeps the derived status/progress on the task record.
type TaskService interface {
	Create(ctx context.Context, scope authz.Scope, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, scope authz.Scope, id int64) (*models.Task, error)
	GetAll(ctx context.Context, scope authz.Scope, filter models.TaskFilter) ([]models.Task, error)
	ListSteps(ctx context.Context, scope authz.Scope, taskID int64) ([]models.TaskStep, error)
	CompleteStep(ctx context.Context, scope authz.Scope, taskID, stepID int64, notes string) (*models.CompleteStepResult, error)
	// ChangeStatus is the manual path for tasks worked outside a workflow.
	ChangeStatus(ctx context.Context, scope authz.Scope, id int64, to models.TaskStatus) (*models.Task, error)
	Update(ctx context.Context, scope authz.Scope, id int64, updateData *models.Task) (*models.Task, error)
	Delete(ctx context.Context, scope authz.Scope, id int64) error
	Track(ctx context.Context, code string) (*models.Task, error)
}

type taskService struct {
	repo      repositories.TaskRepository
	users     repositories.UserRepository
	workflows WorkflowService
	email     EmailService
	tg        *TelegramService
}

func NewTaskService(
	repo repositories.TaskRepository,
	users repositories.UserRepository,
	workflows WorkflowService,
	email EmailService,
	tg *TelegramService,
) TaskService {
	return &taskService{repo: repo, users: users, workflows: workflows, email: email, tg: tg}
}

// officeFilter maps a scope onto the repository's office argument
// (0 disables the filter for cross-tenant roles).
func officeFilter(scope authz.Scope) int64 {
	if scope.AllOffices() {
		return 0
	}
	return scope.OfficeID
}

func newTrackingCode() string {
	return "JM-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *taskService) Create(ctx context.Context, scope authz.Scope, task *models.Task) (*models.Task, error) {
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Source == "" {
		task.Source = models.SourceWalkIn
	}
	task.Status = models.StatusOpen
	task.Progress = 0
	task.Version = 1
	task.TrackingCode = newTrackingCode()
	task.CreatorID = scope.UserID
	if task.OfficeID == 0 || !scope.AllOffices() {
		task.OfficeID = scope.OfficeID
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	// workflow resolution: a category without a template is fine, the task
	// is then worked manually with zero steps.
	template, err := s.workflows.Resolve(ctx, task.Category, task.SubCategory)
	if err != nil {
		return nil, err
	}
	steps := s.workflows.AttachSteps(template)
	if template != nil {
		due := now.Add(template.SLA())
		task.DueDate = &due
	}

	if err := s.repo.CreateWithSteps(ctx, task, steps); err != nil {
		return nil, err
	}

	// acknowledgement is best-effort, never fails the intake
	if s.email != nil && task.CitizenEmail != "" {
		if err := s.email.SendGrievanceAck(task.CitizenEmail, task.CitizenName, task.TrackingCode, task.Title); err != nil {
			log.Printf("[task][create][warn] ack email to %s failed: %v", task.CitizenEmail, err)
		}
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, scope authz.Scope, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id, officeFilter(scope))
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *taskService) GetAll(ctx context.Context, scope authz.Scope, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, officeFilter(scope), filter)
}

func (s *taskService) ListSteps(ctx context.Context, scope authz.Scope, taskID int64) ([]models.TaskStep, error) {
	if _, err := s.GetByID(ctx, scope, taskID); err != nil {
		return nil, err
	}
	return s.repo.FindSteps(ctx, taskID)
}

func (s *taskService) CompleteStep(ctx context.Context, scope authz.Scope, taskID, stepID int64, notes string) (*models.CompleteStepResult, error) {
	task, err := s.GetByID(ctx, scope, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == models.StatusCompleted {
		return nil, ErrAlreadyCompleted
	}
	expectedVersion := task.Version

	steps, err := s.repo.FindSteps(ctx, taskID)
	if err != nil {
		return nil, err
	}
	var step *models.TaskStep
	for i := range steps {
		if steps[i].ID == stepID {
			step = &steps[i]
			break
		}
	}
	if step == nil {
		return nil, ErrStepNotFound
	}
	if step.Status == models.StepCompleted {
		return nil, ErrAlreadyCompleted
	}
	if pred := firstUnmetRequired(steps, step.Sequence); pred != 0 {
		return nil, &SequenceViolationError{StepSequence: step.Sequence, PredecessorSequence: pred}
	}

	now := time.Now()
	actor := scope.UserID
	step.Status = models.StepCompleted
	step.CompletedBy = &actor
	step.CompletedAt = &now
	if notes != "" {
		step.Notes = notes
	}

	task.Progress = progressPercent(steps)
	completed := allRequiredDone(steps)
	switch {
	case completed:
		task.Status = models.StatusCompleted
		task.Progress = 100
		task.CompletedAt = &now
	case task.Status == models.StatusOpen:
		task.Status = models.StatusInProgress
	}

	// the step write, progress and status land atomically under the task
	// version; a concurrent completion forces the caller to retry.
	if err := s.repo.ApplyStepCompletion(ctx, step, task, expectedVersion); err != nil {
		if err == repositories.ErrVersionConflict {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}

	res := &models.CompleteStepResult{Step: step, Task: task, TaskCompleted: completed}

	// side effects below are best-effort and never roll back the completion
	if pts := PointsByPriority[task.Priority]; pts > 0 {
		if err := s.users.AddPoints(ctx, actor, pts); err != nil {
			log.Printf("[task][step][warn] point award failed: user=%d pts=%d err=%v", actor, pts, err)
			res.SideEffects = append(res.SideEffects, fmt.Sprintf("point award failed: %v", err))
		}
	}
	s.notifyAssignee(ctx, task, res, "✅ Step completed: "+step.Title)
	if completed && s.email != nil && task.CitizenEmail != "" {
		if err := s.email.SendResolutionNotice(task.CitizenEmail, task.CitizenName, task.TrackingCode); err != nil {
			log.Printf("[task][step][warn] resolution email failed: %v", err)
			res.SideEffects = append(res.SideEffects, fmt.Sprintf("resolution email failed: %v", err))
		}
	}
	return res, nil
}

func (s *taskService) ChangeStatus(ctx context.Context, scope authz.Scope, id int64, to models.TaskStatus) (*models.Task, error) {
	task, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(task.Status, to, TaskTransitions) {
		if task.Status == models.StatusCompleted {
			return nil, ErrAlreadyCompleted
		}
		return nil, ErrInvalidTransition
	}

	steps, err := s.repo.FindSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	// step-driven tasks cannot be force-completed past pending required steps
	if to == models.StatusCompleted && len(steps) > 0 && !allRequiredDone(steps) {
		return nil, ErrInvalidTransition
	}

	progress := task.Progress
	var completedAt *time.Time
	if to == models.StatusCompleted {
		now := time.Now()
		progress = 100
		completedAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, id, to, progress, completedAt); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, scope, id)
}

func (s *taskService) Update(ctx context.Context, scope authz.Scope, id int64, updateData *models.Task) (*models.Task, error) {
	task, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	task.AssigneeID = updateData.AssigneeID
	task.Title = updateData.Title
	task.Description = updateData.Description
	task.Priority = updateData.Priority
	task.CitizenName = updateData.CitizenName
	task.CitizenEmail = updateData.CitizenEmail
	task.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, scope authz.Scope, id int64) error {
	if _, err := s.GetByID(ctx, scope, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

// Track is the public citizen-facing lookup; callers must not leak more
// than status and progress out of the returned task.
func (s *taskService) Track(ctx context.Context, code string) (*models.Task, error) {
	task, err := s.repo.FindByTrackingCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *taskService) notifyAssignee(ctx context.Context, t *models.Task, res *models.CompleteStepResult, text string) {
	if s.tg == nil || t.AssigneeID == 0 {
		return
	}
	chatID, allow, err := s.users.GetTelegramSettings(ctx, t.AssigneeID)
	if err != nil {
		log.Printf("[task][notify][warn] telegram settings: assignee=%d err=%v", t.AssigneeID, err)
		return
	}
	if !allow || chatID == 0 {
		return
	}
	if err := s.tg.SendMessage(chatID, text+"\n• <b>"+t.Title+"</b> ("+t.TrackingCode+")"); err != nil {
		log.Printf("[task][notify][warn] telegram send failed: %v", err)
		if res != nil {
			res.SideEffects = append(res.SideEffects, fmt.Sprintf("telegram notify failed: %v", err))
		}
	}
}
