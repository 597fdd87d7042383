package models

import "time"

type EventStatus string

const (
	EventPending  EventStatus = "pending"
	EventApproved EventStatus = "approved"
	EventRejected EventStatus = "rejected"
)

type EventPriority string

const (
	EventPriorityNormal EventPriority = "normal"
	EventPriorityUrgent EventPriority = "urgent"
)

// Event is a scheduled office event that must pass a multi-level approval
// chain before it is confirmed. CurrentStage is the 1-based level awaiting
// a decision while the event is pending.
type Event struct {
	ID           int64         `json:"id"`
	OfficeID     int64         `json:"office_id"`
	CreatorID    int           `json:"creator_id"`
	Title        string        `json:"title"`
	Type         string        `json:"type"`
	ScheduledAt  time.Time     `json:"scheduled_at"`
	Priority     EventPriority `json:"priority"`
	Status       EventStatus   `json:"status"`
	CurrentStage int           `json:"current_stage"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	Approvals []ApprovalRecord `json:"approvals,omitempty"`
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalRecord is one level of an event's approval chain.
type ApprovalRecord struct {
	ID        int64          `json:"id"`
	EventID   int64          `json:"event_id"`
	Level     int            `json:"level"` // 1-based chain position
	Role      string         `json:"role"`
	Status    ApprovalStatus `json:"status"`
	Required  bool           `json:"required"`
	DecidedBy *int           `json:"decided_by,omitempty"`
	DecidedAt *time.Time     `json:"decided_at,omitempty"`
}
