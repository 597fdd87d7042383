package repositories

import (
	"context"
	"database/sql"

	"janmitra/internal/models"
)

type WorkflowRepository interface {
	// Store persists the template and its steps in one transaction.
	Store(ctx context.Context, t *models.WorkflowTemplate) error
	FindByID(ctx context.Context, id int64) (*models.WorkflowTemplate, error)
	// FindByScope returns the template for an exact (category, sub_category)
	// pair, or nil when none exists.
	FindByScope(ctx context.Context, categoryID int64, subCategory string) (*models.WorkflowTemplate, error)
	FindByCategory(ctx context.Context, categoryID int64) ([]models.WorkflowTemplate, error)
	FindAll(ctx context.Context) ([]models.WorkflowTemplate, error)
}

type workflowRepository struct {
	db *sql.DB
}

func NewWorkflowRepository(db *sql.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) Store(ctx context.Context, t *models.WorkflowTemplate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO workflow_templates (category_id, sub_category, sla_days, sla_hours, warning_threshold, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`,
		t.CategoryID, t.SubCategory, t.SLADays, t.SLAHours, t.WarningThreshold, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return err
	}

	for i := range t.Steps {
		s := &t.Steps[i]
		s.TemplateID = t.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO step_templates (template_id, sequence, title, description, required, estimated_hours)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id`,
			s.TemplateID, s.Sequence, s.Title, s.Description, s.Required, s.EstimatedHours,
		).Scan(&s.ID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *workflowRepository) FindByID(ctx context.Context, id int64) (*models.WorkflowTemplate, error) {
	t := &models.WorkflowTemplate{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, category_id, sub_category, sla_days, sla_hours, warning_threshold, created_at
		FROM workflow_templates WHERE id = $1`, id).Scan(
		&t.ID, &t.CategoryID, &t.SubCategory, &t.SLADays, &t.SLAHours, &t.WarningThreshold, &t.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if t.Steps, err = r.loadSteps(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *workflowRepository) FindByScope(ctx context.Context, categoryID int64, subCategory string) (*models.WorkflowTemplate, error) {
	t := &models.WorkflowTemplate{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, category_id, sub_category, sla_days, sla_hours, warning_threshold, created_at
		FROM workflow_templates WHERE category_id = $1 AND sub_category = $2`,
		categoryID, subCategory).Scan(
		&t.ID, &t.CategoryID, &t.SubCategory, &t.SLADays, &t.SLAHours, &t.WarningThreshold, &t.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if t.Steps, err = r.loadSteps(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *workflowRepository) FindByCategory(ctx context.Context, categoryID int64) ([]models.WorkflowTemplate, error) {
	return r.list(ctx, `
		SELECT id, category_id, sub_category, sla_days, sla_hours, warning_threshold, created_at
		FROM workflow_templates WHERE category_id = $1 ORDER BY sub_category`, categoryID)
}

func (r *workflowRepository) FindAll(ctx context.Context) ([]models.WorkflowTemplate, error) {
	return r.list(ctx, `
		SELECT id, category_id, sub_category, sla_days, sla_hours, warning_threshold, created_at
		FROM workflow_templates ORDER BY category_id, sub_category`)
}

func (r *workflowRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.WorkflowTemplate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WorkflowTemplate
	for rows.Next() {
		var t models.WorkflowTemplate
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.SubCategory, &t.SLADays, &t.SLAHours, &t.WarningThreshold, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Steps, err = r.loadSteps(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *workflowRepository) loadSteps(ctx context.Context, templateID int64) ([]models.StepTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, template_id, sequence, title, description, required, estimated_hours
		FROM step_templates WHERE template_id = $1 ORDER BY sequence`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StepTemplate
	for rows.Next() {
		var s models.StepTemplate
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.Sequence, &s.Title, &s.Description, &s.Required, &s.EstimatedHours); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
