package models

import "time"

// TaskStatus defines the lifecycle states of a grievance. Transitions are
// monotonic: open -> in_progress -> completed.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "open"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskSource records the intake channel. The engine never interprets it.
type TaskSource string

const (
	SourceWalkIn TaskSource = "walk_in"
	SourceQR     TaskSource = "qr"
	SourceIVR    TaskSource = "ivr"
	SourceBot    TaskSource = "bot"
	SourceEmail  TaskSource = "email"
)

// Task is a citizen grievance tracked to resolution. Progress is a
// denormalized cache over the task's steps; the steps are the source of
// truth. Version guards concurrent step completions (optimistic lock).
type Task struct {
	ID           int64        `json:"id"`
	TrackingCode string       `json:"tracking_code"`
	OfficeID     int64        `json:"office_id"`
	CreatorID    int          `json:"creator_id"`
	AssigneeID   int          `json:"assignee_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`     // category slug
	SubCategory  string       `json:"sub_category"` // may be empty
	Source       TaskSource   `json:"source"`
	Priority     TaskPriority `json:"priority"`
	Status       TaskStatus   `json:"status"`
	Progress     int          `json:"progress"` // 0..100
	CitizenName  string       `json:"citizen_name"`
	CitizenEmail string       `json:"citizen_email,omitempty"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	Version      int          `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	DeletedAt    *time.Time   `json:"-"`

	Steps []TaskStep `json:"steps,omitempty"`
}

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
)

// TaskStep is the per-task mutable copy of a template step. Sequence, title,
// description and the required flag are copied at attach time and immutable
// afterwards; only status, notes and the completion fields change.
type TaskStep struct {
	ID          int64      `json:"id"`
	TaskID      int64      `json:"task_id"`
	Sequence    int        `json:"sequence"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Required    bool       `json:"required"`
	Status      StepStatus `json:"status"`
	CompletedBy *int       `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// TaskFilter defines the available parameters for listing tasks.
type TaskFilter struct {
	Status     *TaskStatus
	Priority   *TaskPriority
	Category   *string
	Source     *TaskSource
	AssigneeID *int
}

// CompleteStepResult separates the primary outcome of a step completion
// from non-fatal side-effect failures (point award, notifications).
type CompleteStepResult struct {
	Step          *TaskStep `json:"step"`
	Task          *Task     `json:"task"`
	TaskCompleted bool      `json:"task_completed"`
	SideEffects   []string  `json:"side_effect_failures,omitempty"`
}
