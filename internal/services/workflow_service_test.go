package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"janmitra/internal/models"
)

func newWorkflowEnv(t *testing.T) (WorkflowService, *fakeWorkflowRepo, *fakeCategoryRepo) {
	t.Helper()
	workflows := newFakeWorkflowRepo()
	categories := newFakeCategoryRepo()
	return NewWorkflowService(workflows, categories), workflows, categories
}

func seedCategory(t *testing.T, repo *fakeCategoryRepo, value string, subs ...string) *models.Category {
	t.Helper()
	c := &models.Category{Value: value, Label: value, SubCategories: subs}
	require.NoError(t, repo.Store(context.Background(), c))
	return c
}

func TestCreateTemplateValidation(t *testing.T) {
	svc, _, categories := newWorkflowEnv(t)
	ctx := context.Background()
	cat := seedCategory(t, categories, "water", "leakage", "quality")

	_, err := svc.CreateTemplate(ctx, &models.WorkflowTemplate{CategoryID: 999, Steps: []models.StepTemplate{{Title: "Inspect"}}})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = svc.CreateTemplate(ctx, &models.WorkflowTemplate{CategoryID: cat.ID})
	assert.Error(t, err)

	_, err = svc.CreateTemplate(ctx, &models.WorkflowTemplate{
		CategoryID:       cat.ID,
		WarningThreshold: 120,
		Steps:            []models.StepTemplate{{Title: "Inspect"}},
	})
	assert.Error(t, err)

	_, err = svc.CreateTemplate(ctx, &models.WorkflowTemplate{
		CategoryID: cat.ID,
		Steps: []models.StepTemplate{
			{Title: "Inspect", Sequence: 1},
			{Title: "Repair", Sequence: 1},
		},
	})
	assert.Error(t, err)
}

func TestCreateTemplateDefaultsAndConflict(t *testing.T) {
	svc, _, categories := newWorkflowEnv(t)
	ctx := context.Background()
	cat := seedCategory(t, categories, "water", "leakage")

	tpl, err := svc.CreateTemplate(ctx, &models.WorkflowTemplate{
		CategoryID: cat.ID,
		SLADays:    3,
		Steps: []models.StepTemplate{
			{Title: "Inspect"},
			{Title: "Repair"},
			{Title: "Verify"},
		},
	})
	require.NoError(t, err)

	// blank sub-category scopes the template to the whole category
	assert.Equal(t, models.ScopeAll, tpl.SubCategory)
	// unset sequences are filled positionally
	assert.Equal(t, 1, tpl.Steps[0].Sequence)
	assert.Equal(t, 2, tpl.Steps[1].Sequence)
	assert.Equal(t, 3, tpl.Steps[2].Sequence)

	_, err = svc.CreateTemplate(ctx, &models.WorkflowTemplate{
		CategoryID: cat.ID,
		Steps:      []models.StepTemplate{{Title: "Other"}},
	})
	assert.ErrorIs(t, err, ErrTemplateConflict)

	// a different sub-category scope is a separate template, not a conflict
	_, err = svc.CreateTemplate(ctx, &models.WorkflowTemplate{
		CategoryID:  cat.ID,
		SubCategory: "leakage",
		Steps:       []models.StepTemplate{{Title: "Trace pipe"}},
	})
	assert.NoError(t, err)
}

func TestResolvePrecedence(t *testing.T) {
	svc, _, categories := newWorkflowEnv(t)
	ctx := context.Background()
	cat := seedCategory(t, categories, "water", "leakage", "quality")

	catchAll, err := svc.CreateTemplate(ctx, &models.WorkflowTemplate{
		CategoryID: cat.ID,
		Steps:      []models.StepTemplate{{Title: "Inspect"}},
	})
	require.NoError(t, err)
	exact, err := svc.CreateTemplate(ctx, &models.WorkflowTemplate{
		CategoryID:  cat.ID,
		SubCategory: "leakage",
		Steps:       []models.StepTemplate{{Title: "Trace pipe"}},
	})
	require.NoError(t, err)

	// exact sub-category scope beats the catch-all
	got, err := svc.Resolve(ctx, "water", "leakage")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, exact.ID, got.ID)

	// unmatched sub-category falls back to the catch-all
	got, err = svc.Resolve(ctx, "water", "quality")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, catchAll.ID, got.ID)

	got, err = svc.Resolve(ctx, "water", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, catchAll.ID, got.ID)
}

func TestResolveMissingCases(t *testing.T) {
	svc, _, categories := newWorkflowEnv(t)
	ctx := context.Background()
	seedCategory(t, categories, "roads")

	_, err := svc.Resolve(ctx, "electricity", "")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	// a category without any template is worked manually, not an error
	got, err := svc.Resolve(ctx, "roads", "potholes")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestAttachSteps(t *testing.T) {
	svc, _, _ := newWorkflowEnv(t)

	assert.Nil(t, svc.AttachSteps(nil))

	tpl := &models.WorkflowTemplate{
		ID: 42,
		Steps: []models.StepTemplate{
			{Sequence: 1, Title: "Inspect", Description: "site visit", Required: true},
			{Sequence: 2, Title: "Document", Required: false},
		},
	}
	steps := svc.AttachSteps(tpl)
	require.Len(t, steps, 2)
	assert.Equal(t, models.StepPending, steps[0].Status)
	assert.Equal(t, "Inspect", steps[0].Title)
	assert.True(t, steps[0].Required)
	assert.False(t, steps[1].Required)

	// attached steps are value copies: later template edits never reach them
	tpl.Steps[0].Title = "renamed"
	assert.Equal(t, "Inspect", steps[0].Title)
}
