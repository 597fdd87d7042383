package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"janmitra/internal/models"
	"janmitra/internal/repositories"
)

// WorkflowService owns template management, template resolution for
// incoming tasks and the step attachment copy.
type WorkflowService interface {
	CreateTemplate(ctx context.Context, t *models.WorkflowTemplate) (*models.WorkflowTemplate, error)
	GetTemplate(ctx context.Context, id int64) (*models.WorkflowTemplate, error)
	ListTemplates(ctx context.Context) ([]models.WorkflowTemplate, error)

	// Resolve returns the template applying to (categoryValue, subCategory),
	// or nil when the category has no matching workflow. A missing category
	// is an error; a missing workflow is not.
	Resolve(ctx context.Context, categoryValue, subCategory string) (*models.WorkflowTemplate, error)

	// AttachSteps materializes the template's steps as per-task records.
	// It is a value copy: later template edits never alter attached steps.
	AttachSteps(template *models.WorkflowTemplate) []models.TaskStep
}

type workflowService struct {
	repo       repositories.WorkflowRepository
	categories repositories.CategoryRepository
}

func NewWorkflowService(repo repositories.WorkflowRepository, categories repositories.CategoryRepository) WorkflowService {
	return &workflowService{repo: repo, categories: categories}
}

func (s *workflowService) CreateTemplate(ctx context.Context, t *models.WorkflowTemplate) (*models.WorkflowTemplate, error) {
	cat, err := s.categories.FindByID(ctx, t.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}

	t.SubCategory = strings.TrimSpace(t.SubCategory)
	if t.SubCategory == "" {
		t.SubCategory = models.ScopeAll
	}
	if t.WarningThreshold < 0 || t.WarningThreshold > 100 {
		return nil, fmt.Errorf("warning_threshold must be within 0..100, got %d", t.WarningThreshold)
	}
	if t.SLADays < 0 || t.SLAHours < 0 {
		return nil, fmt.Errorf("sla must not be negative")
	}
	if len(t.Steps) == 0 {
		return nil, fmt.Errorf("at least one step is required")
	}
	seen := map[int]bool{}
	for i := range t.Steps {
		st := &t.Steps[i]
		if strings.TrimSpace(st.Title) == "" {
			return nil, fmt.Errorf("step %d: title is required", i+1)
		}
		if st.Sequence == 0 {
			st.Sequence = i + 1
		}
		if st.Sequence < 1 || seen[st.Sequence] {
			return nil, fmt.Errorf("step sequence %d is invalid or duplicated", st.Sequence)
		}
		seen[st.Sequence] = true
	}

	// at most one template per (category, scope) pair
	existing, err := s.repo.FindByScope(ctx, t.CategoryID, t.SubCategory)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTemplateConflict
	}

	t.CreatedAt = time.Now()
	if err := s.repo.Store(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *workflowService) GetTemplate(ctx context.Context, id int64) (*models.WorkflowTemplate, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("workflow template not found")
	}
	return t, nil
}

func (s *workflowService) ListTemplates(ctx context.Context) ([]models.WorkflowTemplate, error) {
	return s.repo.FindAll(ctx)
}

func (s *workflowService) Resolve(ctx context.Context, categoryValue, subCategory string) (*models.WorkflowTemplate, error) {
	cat, err := s.categories.FindByValue(ctx, categoryValue)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}

	// exact sub-category scope always beats the catch-all
	subCategory = strings.TrimSpace(subCategory)
	if subCategory != "" && subCategory != models.ScopeAll {
		t, err := s.repo.FindByScope(ctx, cat.ID, subCategory)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
	}

	// no template at all is a legitimate outcome, not an error
	return s.repo.FindByScope(ctx, cat.ID, models.ScopeAll)
}

func (s *workflowService) AttachSteps(template *models.WorkflowTemplate) []models.TaskStep {
	if template == nil {
		return nil
	}
	steps := make([]models.TaskStep, 0, len(template.Steps))
	for _, st := range template.Steps {
		steps = append(steps, models.TaskStep{
			Sequence:    st.Sequence,
			Title:       st.Title,
			Description: st.Description,
			Required:    st.Required,
			Status:      models.StepPending,
		})
	}
	return steps
}
