package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"janmitra/internal/models"
)

// ErrVersionConflict is returned when a conditional update finds a stale
// task version, i.e. another request completed a step concurrently.
var ErrVersionConflict = errors.New("stale task version")

type TaskRepository interface {
	// CreateWithSteps persists the task and its attached steps atomically.
	CreateWithSteps(ctx context.Context, task *models.Task, steps []models.TaskStep) error
	// FindByID scopes to officeID unless officeID is 0 (cross-tenant read).
	FindByID(ctx context.Context, id, officeID int64) (*models.Task, error)
	FindByTrackingCode(ctx context.Context, code string) (*models.Task, error)
	FindAll(ctx context.Context, officeID int64, filter models.TaskFilter) ([]models.Task, error)
	FindSteps(ctx context.Context, taskID int64) ([]models.TaskStep, error)
	Update(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus, progress int, completedAt *time.Time) error
	// ApplyStepCompletion writes the completed step and the recomputed task
	// progress/status in one transaction, guarded by the task version.
	ApplyStepCompletion(ctx context.Context, step *models.TaskStep, task *models.Task, expectedVersion int) error
	SoftDelete(ctx context.Context, id int64) error

	CountByStatus(ctx context.Context, officeID int64) (map[string]int, error)
	CountByCategory(ctx context.Context, officeID int64) (map[string]int, error)
	ListOverdue(ctx context.Context, officeID int64, limit int) ([]models.Task, error)
	// ListAtRisk additionally includes open tasks that have burned at least
	// warnPercent of their SLA window.
	ListAtRisk(ctx context.Context, officeID int64, warnPercent, limit int) ([]models.Task, error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, tracking_code, office_id, creator_id, assignee_id, title, description,
       category, sub_category, source, priority, status, progress, citizen_name, citizen_email,
       due_date, version, created_at, updated_at, completed_at, deleted_at`

func scanTask(row interface{ Scan(...interface{}) error }, t *models.Task) error {
	return row.Scan(
		&t.ID, &t.TrackingCode, &t.OfficeID, &t.CreatorID, &t.AssigneeID, &t.Title, &t.Description,
		&t.Category, &t.SubCategory, &t.Source, &t.Priority, &t.Status, &t.Progress,
		&t.CitizenName, &t.CitizenEmail, &t.DueDate, &t.Version,
		&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt, &t.DeletedAt,
	)
}

func (r *taskRepository) CreateWithSteps(ctx context.Context, task *models.Task, steps []models.TaskStep) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO tasks (
			tracking_code, office_id, creator_id, assignee_id, title, description,
			category, sub_category, source, priority, status, progress,
			citizen_name, citizen_email, due_date, version, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id`,
		task.TrackingCode, task.OfficeID, task.CreatorID, task.AssigneeID, task.Title, task.Description,
		task.Category, task.SubCategory, task.Source, task.Priority, task.Status, task.Progress,
		task.CitizenName, task.CitizenEmail, task.DueDate, task.Version, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return err
	}

	for i := range steps {
		s := &steps[i]
		s.TaskID = task.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO task_steps (task_id, sequence, title, description, required, status)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id`,
			s.TaskID, s.Sequence, s.Title, s.Description, s.Required, s.Status,
		).Scan(&s.ID)
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	task.Steps = steps
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id, officeID int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND deleted_at IS NULL`
	args := []interface{}{id}
	if officeID != 0 {
		query += ` AND office_id = $2`
		args = append(args, officeID)
	}
	t := &models.Task{}
	if err := scanTask(r.db.QueryRowContext(ctx, query, args...), t); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *taskRepository) FindByTrackingCode(ctx context.Context, code string) (*models.Task, error) {
	t := &models.Task{}
	err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE tracking_code = $1 AND deleted_at IS NULL`, code), t)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *taskRepository) FindAll(ctx context.Context, officeID int64, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	argID := 1

	if officeID != 0 {
		conditions = append(conditions, fmt.Sprintf("office_id = $%d", argID))
		args = append(args, officeID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argID))
		args = append(args, *filter.Priority)
		argID++
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, *filter.Category)
		argID++
	}
	if filter.Source != nil {
		conditions = append(conditions, fmt.Sprintf("source = $%d", argID))
		args = append(args, *filter.Source)
		argID++
	}
	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", argID))
		args = append(args, *filter.AssigneeID)
		argID++
	}

	baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	baseQuery += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) FindSteps(ctx context.Context, taskID int64) ([]models.TaskStep, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, sequence, title, description, required, status, completed_by, completed_at, notes
		FROM task_steps WHERE task_id = $1 ORDER BY sequence`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskStep
	for rows.Next() {
		var s models.TaskStep
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Sequence, &s.Title, &s.Description,
			&s.Required, &s.Status, &s.CompletedBy, &s.CompletedAt, &s.Notes); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET
			assignee_id=$1, title=$2, description=$3, priority=$4,
			citizen_name=$5, citizen_email=$6, due_date=$7, updated_at=$8
		WHERE id=$9 AND deleted_at IS NULL`,
		task.AssigneeID, task.Title, task.Description, task.Priority,
		task.CitizenName, task.CitizenEmail, task.DueDate, task.UpdatedAt, task.ID,
	)
	return err
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus, progress int, completedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET status=$1, progress=$2, completed_at=$3, version=version+1, updated_at=NOW()
		WHERE id=$4 AND deleted_at IS NULL`, to, progress, completedAt, id)
	return err
}

func (r *taskRepository) ApplyStepCompletion(ctx context.Context, step *models.TaskStep, task *models.Task, expectedVersion int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// version check first: if another completion already landed, nothing
	// below may be written against the stale snapshot.
	res, err := tx.ExecContext(ctx, `
		UPDATE tasks SET status=$1, progress=$2, completed_at=$3, version=version+1, updated_at=NOW()
		WHERE id=$4 AND version=$5 AND deleted_at IS NULL`,
		task.Status, task.Progress, task.CompletedAt, task.ID, expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE task_steps SET status=$1, completed_by=$2, completed_at=$3, notes=$4
		WHERE id=$5 AND task_id=$6`,
		step.Status, step.CompletedBy, step.CompletedAt, step.Notes, step.ID, step.TaskID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	task.Version = expectedVersion + 1
	return nil
}

func (r *taskRepository) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	return err
}

func (r *taskRepository) CountByStatus(ctx context.Context, officeID int64) (map[string]int, error) {
	return r.countBy(ctx, "status", officeID)
}

func (r *taskRepository) CountByCategory(ctx context.Context, officeID int64) (map[string]int, error) {
	return r.countBy(ctx, "category", officeID)
}

func (r *taskRepository) countBy(ctx context.Context, column string, officeID int64) (map[string]int, error) {
	// column is one of two fixed identifiers, never user input
	query := `SELECT ` + column + `, COUNT(*) FROM tasks WHERE deleted_at IS NULL`
	args := []interface{}{}
	if officeID != 0 {
		query += ` AND office_id = $1`
		args = append(args, officeID)
	}
	query += ` GROUP BY ` + column

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

func (r *taskRepository) ListOverdue(ctx context.Context, officeID int64, limit int) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE deleted_at IS NULL
		  AND status <> 'completed'
		  AND due_date IS NOT NULL
		  AND due_date <= NOW()`
	args := []interface{}{}
	argID := 1
	if officeID != 0 {
		query += fmt.Sprintf(" AND office_id = $%d", argID)
		args = append(args, officeID)
		argID++
	}
	query += fmt.Sprintf(" ORDER BY due_date ASC LIMIT $%d", argID)
	args = append(args, limit)
	return r.listTasks(ctx, query, args...)
}

func (r *taskRepository) ListAtRisk(ctx context.Context, officeID int64, warnPercent, limit int) ([]models.Task, error) {
	// at risk = past due, or more than warnPercent of the SLA window elapsed
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE deleted_at IS NULL
		  AND status <> 'completed'
		  AND due_date IS NOT NULL
		  AND (due_date <= NOW() OR
		       EXTRACT(EPOCH FROM (NOW() - created_at)) * 100 >=
		       EXTRACT(EPOCH FROM (due_date - created_at)) * $1)`
	args := []interface{}{warnPercent}
	argID := 2
	if officeID != 0 {
		query += fmt.Sprintf(" AND office_id = $%d", argID)
		args = append(args, officeID)
		argID++
	}
	query += fmt.Sprintf(" ORDER BY due_date ASC LIMIT $%d", argID)
	args = append(args, limit)
	return r.listTasks(ctx, query, args...)
}

func (r *taskRepository) listTasks(ctx context.Context, query string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
