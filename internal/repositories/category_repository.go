package repositories

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"janmitra/internal/models"
)

type CategoryRepository interface {
	Store(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindByValue(ctx context.Context, value string) (*models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id int64) error
	CountTasksByValue(ctx context.Context, value string) (int, error)
}

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Store(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (value, label, sub_categories, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		c.Value, c.Label, pq.Array(c.SubCategories), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	return r.findOne(ctx, `SELECT id, value, label, sub_categories, created_at, updated_at
		FROM categories WHERE id = $1`, id)
}

func (r *categoryRepository) FindByValue(ctx context.Context, value string) (*models.Category, error) {
	return r.findOne(ctx, `SELECT id, value, label, sub_categories, created_at, updated_at
		FROM categories WHERE value = $1`, value)
}

func (r *categoryRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Category, error) {
	c := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.Value, &c.Label, pq.Array(&c.SubCategories), &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, value, label, sub_categories, created_at, updated_at
		FROM categories ORDER BY value`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Value, &c.Label, pq.Array(&c.SubCategories), &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *categoryRepository) Update(ctx context.Context, c *models.Category) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE categories SET label=$1, sub_categories=$2, updated_at=$3 WHERE id=$4`,
		c.Label, pq.Array(c.SubCategories), c.UpdatedAt, c.ID)
	return err
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

func (r *categoryRepository) CountTasksByValue(ctx context.Context, value string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE category = $1 AND deleted_at IS NULL`, value).Scan(&n)
	return n, err
}
