package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"janmitra/internal/models"
	"janmitra/internal/repositories"
)

var slugRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// CategoryService is the registry of grievance categories.
type CategoryService interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetByValue(ctx context.Context, value string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id int64, label string, subCategories []string) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	repo repositories.CategoryRepository
}

func NewCategoryService(repo repositories.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	c.Value = strings.TrimSpace(c.Value)
	if !slugRe.MatchString(c.Value) {
		return nil, fmt.Errorf("invalid category value %q: must match %s", c.Value, slugRe.String())
	}
	if strings.TrimSpace(c.Label) == "" {
		return nil, fmt.Errorf("category label is required")
	}

	existing, err := s.repo.FindByValue(ctx, c.Value)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q already exists", c.Value)
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.repo.Store(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (s *categoryService) GetByValue(ctx context.Context, value string) (*models.Category, error) {
	c, err := s.repo.FindByValue(ctx, value)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.FindAll(ctx)
}

func (s *categoryService) Update(ctx context.Context, id int64, label string, subCategories []string) (*models.Category, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(label) != "" {
		c.Label = label
	}
	if subCategories != nil {
		c.SubCategories = subCategories
	}
	c.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	// deletion is blocked while any live task references the slug
	n, err := s.repo.CountTasksByValue(ctx, c.Value)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}
	return s.repo.Delete(ctx, id)
}
