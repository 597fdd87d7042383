package services

import (
	"context"

	"janmitra/internal/authz"
	"janmitra/internal/models"
	"janmitra/internal/repositories"
)

type ReportService struct {
	Tasks repositories.TaskRepository
	Users repositories.UserRepository
}

func NewReportService(tasks repositories.TaskRepository, users repositories.UserRepository) *ReportService {
	return &ReportService{Tasks: tasks, Users: users}
}

type Summary struct {
	ByStatus   map[string]int `json:"by_status"`
	ByCategory map[string]int `json:"by_category"`
	Overdue    int            `json:"overdue"`
}

func (s *ReportService) GetSummary(ctx context.Context, scope authz.Scope) (*Summary, error) {
	office := officeFilter(scope)
	byStatus, err := s.Tasks.CountByStatus(ctx, office)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.Tasks.CountByCategory(ctx, office)
	if err != nil {
		return nil, err
	}
	overdue, err := s.Tasks.ListOverdue(ctx, office, 1000)
	if err != nil {
		return nil, err
	}
	return &Summary{
		ByStatus:   byStatus,
		ByCategory: byCategory,
		Overdue:    len(overdue),
	}, nil
}

func (s *ReportService) ListOverdue(ctx context.Context, scope authz.Scope, limit int) ([]models.Task, error) {
	if limit < 1 {
		limit = 100
	}
	return s.Tasks.ListOverdue(ctx, officeFilter(scope), limit)
}

// DefaultWarnPercent is the elapsed-SLA share past which an open task is
// reported at risk.
const DefaultWarnPercent = 75

func (s *ReportService) ListAtRisk(ctx context.Context, scope authz.Scope, warnPercent, limit int) ([]models.Task, error) {
	if warnPercent < 1 || warnPercent > 100 {
		warnPercent = DefaultWarnPercent
	}
	if limit < 1 {
		limit = 100
	}
	return s.Tasks.ListAtRisk(ctx, officeFilter(scope), warnPercent, limit)
}

func (s *ReportService) Leaderboard(ctx context.Context, scope authz.Scope, limit int) ([]*models.User, error) {
	if limit < 1 {
		limit = 20
	}
	return s.Users.Leaderboard(ctx, officeFilter(scope), limit)
}
