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

// EventService drives the multi-level approval workflow for scheduled
// events: chain resolution at creation, stage advancement on approval and
// short-circuit on rejection.
type EventService interface {
	Create(ctx context.Context, scope authz.Scope, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, scope authz.Scope, id int64) (*models.Event, error)
	GetAll(ctx context.Context, scope authz.Scope) ([]models.Event, error)
	Decide(ctx context.Context, scope authz.Scope, eventID int64, level int, approve bool) (*models.Event, error)
}

type eventService struct {
	repo repositories.EventRepository
}

func NewEventService(repo repositories.EventRepository) EventService {
	return &eventService{repo: repo}
}

func (s *eventService) Create(ctx context.Context, scope authz.Scope, event *models.Event) (*models.Event, error) {
	if strings.TrimSpace(event.Title) == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if strings.TrimSpace(event.Type) == "" {
		return nil, fmt.Errorf("event type is required")
	}
	if event.Priority == "" {
		event.Priority = models.EventPriorityNormal
	}
	event.Status = models.EventPending
	event.CurrentStage = 1
	event.CreatorID = scope.UserID
	if event.OfficeID == 0 || !scope.AllOffices() {
		event.OfficeID = scope.OfficeID
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	chain := resolveApprovalChain(event.Type, event.Priority)
	approvals := make([]models.ApprovalRecord, 0, len(chain))
	for i, role := range chain {
		approvals = append(approvals, models.ApprovalRecord{
			Level:    i + 1,
			Role:     role,
			Status:   models.ApprovalPending,
			Required: true,
		})
	}

	if err := s.repo.CreateWithApprovals(ctx, event, approvals); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) GetByID(ctx context.Context, scope authz.Scope, id int64) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id, officeFilter(scope))
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *eventService) GetAll(ctx context.Context, scope authz.Scope) ([]models.Event, error) {
	return s.repo.FindAll(ctx, officeFilter(scope))
}

func (s *eventService) Decide(ctx context.Context, scope authz.Scope, eventID int64, level int, approve bool) (*models.Event, error) {
	event, err := s.GetByID(ctx, scope, eventID)
	if err != nil {
		return nil, err
	}
	// a settled chain accepts no further decisions
	if event.Status != models.EventPending {
		return nil, ErrApprovalChainExhausted
	}
	if level != event.CurrentStage {
		return nil, ErrApprovalOutOfOrder
	}

	var record *models.ApprovalRecord
	for i := range event.Approvals {
		if event.Approvals[i].Level == level {
			record = &event.Approvals[i]
			break
		}
	}
	if record == nil {
		return nil, fmt.Errorf("no approval record at level %d", level)
	}
	if record.Status != models.ApprovalPending {
		return nil, ErrAlreadyCompleted
	}

	now := time.Now()
	actor := scope.UserID
	record.DecidedBy = &actor
	record.DecidedAt = &now

	if !approve {
		// rejection short-circuits: remaining pending records stay untouched
		record.Status = models.ApprovalRejected
		event.Status = models.EventRejected
	} else {
		record.Status = models.ApprovalApproved
		if requiredApproved(event.Approvals) {
			event.Status = models.EventApproved
		} else {
			event.CurrentStage = level + 1
		}
	}
	event.UpdatedAt = now

	if err := s.repo.ApplyDecision(ctx, record, event); err != nil {
		return nil, err
	}
	return event, nil
}

func requiredApproved(records []models.ApprovalRecord) bool {
	for _, a := range records {
		if a.Required && a.Status != models.ApprovalApproved {
			return false
		}
	}
	return true
}
