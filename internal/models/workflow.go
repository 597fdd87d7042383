package models

import "time"

// ScopeAll is the sub-category sentinel meaning "every sub-category of the
// category not covered by a more specific template".
const ScopeAll = "all"

// WorkflowTemplate is a reusable ordered checklist scoped to a category and
// either one sub-category or ScopeAll. Templates are read-only inputs at
// task creation; editing one never touches steps already attached to tasks.
type WorkflowTemplate struct {
	ID               int64          `json:"id"`
	CategoryID       int64          `json:"category_id"`
	SubCategory      string         `json:"sub_category"` // exact label or ScopeAll
	SLADays          int            `json:"sla_days"`
	SLAHours         int            `json:"sla_hours"`
	WarningThreshold int            `json:"warning_threshold"` // percent
	Steps            []StepTemplate `json:"steps"`
	CreatedAt        time.Time      `json:"created_at"`
}

type StepTemplate struct {
	ID             int64  `json:"id"`
	TemplateID     int64  `json:"template_id"`
	Sequence       int    `json:"sequence"` // 1-based, unique per template
	Title          string `json:"title"`
	Description    string `json:"description"`
	Required       bool   `json:"required"`
	EstimatedHours int    `json:"estimated_hours"`
}

// SLA returns the template's service-level target as a duration.
func (t *WorkflowTemplate) SLA() time.Duration {
	return time.Duration(t.SLADays)*24*time.Hour + time.Duration(t.SLAHours)*time.Hour
}
