package repositories

import (
	"context"
	"database/sql"

	"janmitra/internal/models"
)

type OfficeRepository interface {
	Store(ctx context.Context, o *models.Office) error
	FindByID(ctx context.Context, id int64) (*models.Office, error)
	FindAll(ctx context.Context) ([]models.Office, error)
}

type officeRepository struct {
	db *sql.DB
}

func NewOfficeRepository(db *sql.DB) OfficeRepository {
	return &officeRepository{db: db}
}

func (r *officeRepository) Store(ctx context.Context, o *models.Office) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO offices (name, region, created_at) VALUES ($1,$2,$3) RETURNING id`,
		o.Name, o.Region, o.CreatedAt,
	).Scan(&o.ID)
}

func (r *officeRepository) FindByID(ctx context.Context, id int64) (*models.Office, error) {
	o := &models.Office{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, region, created_at FROM offices WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.Region, &o.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

func (r *officeRepository) FindAll(ctx context.Context) ([]models.Office, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, region, created_at FROM offices ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Office
	for rows.Next() {
		var o models.Office
		if err := rows.Scan(&o.ID, &o.Name, &o.Region, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
