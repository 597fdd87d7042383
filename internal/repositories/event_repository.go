package repositories

import (
	"context"
	"database/sql"

	"janmitra/internal/models"
)

type EventRepository interface {
	// CreateWithApprovals persists the event and one pending approval
	// record per chain level atomically.
	CreateWithApprovals(ctx context.Context, event *models.Event, approvals []models.ApprovalRecord) error
	FindByID(ctx context.Context, id, officeID int64) (*models.Event, error)
	FindAll(ctx context.Context, officeID int64) ([]models.Event, error)
	FindApprovals(ctx context.Context, eventID int64) ([]models.ApprovalRecord, error)
	// ApplyDecision writes the decided approval record and the event's new
	// status/stage in one transaction.
	ApplyDecision(ctx context.Context, record *models.ApprovalRecord, event *models.Event) error
}

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateWithApprovals(ctx context.Context, event *models.Event, approvals []models.ApprovalRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO events (office_id, creator_id, title, type, scheduled_at, priority, status, current_stage, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`,
		event.OfficeID, event.CreatorID, event.Title, event.Type, event.ScheduledAt,
		event.Priority, event.Status, event.CurrentStage, event.CreatedAt, event.UpdatedAt,
	).Scan(&event.ID)
	if err != nil {
		return err
	}

	for i := range approvals {
		a := &approvals[i]
		a.EventID = event.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO approval_records (event_id, level, role, status, required)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id`,
			a.EventID, a.Level, a.Role, a.Status, a.Required,
		).Scan(&a.ID)
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	event.Approvals = approvals
	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id, officeID int64) (*models.Event, error) {
	query := `SELECT id, office_id, creator_id, title, type, scheduled_at, priority, status, current_stage, created_at, updated_at
		FROM events WHERE id = $1`
	args := []interface{}{id}
	if officeID != 0 {
		query += ` AND office_id = $2`
		args = append(args, officeID)
	}
	e := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&e.ID, &e.OfficeID, &e.CreatorID, &e.Title, &e.Type, &e.ScheduledAt,
		&e.Priority, &e.Status, &e.CurrentStage, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if e.Approvals, err = r.FindApprovals(ctx, e.ID); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) FindAll(ctx context.Context, officeID int64) ([]models.Event, error) {
	query := `SELECT id, office_id, creator_id, title, type, scheduled_at, priority, status, current_stage, created_at, updated_at
		FROM events`
	args := []interface{}{}
	if officeID != 0 {
		query += ` WHERE office_id = $1`
		args = append(args, officeID)
	}
	query += ` ORDER BY scheduled_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.OfficeID, &e.CreatorID, &e.Title, &e.Type, &e.ScheduledAt,
			&e.Priority, &e.Status, &e.CurrentStage, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepository) FindApprovals(ctx context.Context, eventID int64) ([]models.ApprovalRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, level, role, status, required, decided_by, decided_at
		FROM approval_records WHERE event_id = $1 ORDER BY level`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ApprovalRecord
	for rows.Next() {
		var a models.ApprovalRecord
		if err := rows.Scan(&a.ID, &a.EventID, &a.Level, &a.Role, &a.Status, &a.Required, &a.DecidedBy, &a.DecidedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *eventRepository) ApplyDecision(ctx context.Context, record *models.ApprovalRecord, event *models.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE approval_records SET status=$1, decided_by=$2, decided_at=$3
		WHERE id=$4 AND event_id=$5`,
		record.Status, record.DecidedBy, record.DecidedAt, record.ID, record.EventID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events SET status=$1, current_stage=$2, updated_at=NOW() WHERE id=$3`,
		event.Status, event.CurrentStage, event.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}
