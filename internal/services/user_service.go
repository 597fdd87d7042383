package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"janmitra/internal/authz"
	"janmitra/internal/models"
	"janmitra/internal/repositories"
)

type UserService interface {
	CreateUserWithPassword(ctx context.Context, user *models.User, plainPassword string) error
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, scope authz.Scope, limit, offset int) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
	RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error)
}

type userService struct {
	repo        repositories.UserRepository
	authService AuthService
}

func NewUserService(repo repositories.UserRepository, authService AuthService) UserService {
	return &userService{repo: repo, authService: authService}
}

func (s *userService) CreateUserWithPassword(ctx context.Context, user *models.User, plainPassword string) error {
	if strings.TrimSpace(plainPassword) == "" {
		return fmt.Errorf("password is required")
	}
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if user.RoleID == 0 {
		user.RoleID = authz.RoleFieldStaff
	}

	hashedPassword, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashedPassword

	return s.repo.Create(ctx, user)
}

func (s *userService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *userService) ListUsers(ctx context.Context, scope authz.Scope, limit, offset int) ([]*models.User, error) {
	return s.repo.List(ctx, officeFilter(scope), limit, offset)
}

func (s *userService) UpdateUser(ctx context.Context, user *models.User) error {
	return s.repo.Update(ctx, user)
}

func (s *userService) UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(ctx, userID, token, expiresAt)
}

func (s *userService) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(ctx, token)
}

func (s *userService) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	return s.repo.RotateRefresh(ctx, oldToken, newToken, expiresAt)
}
