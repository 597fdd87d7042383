package services

import (
	"math"

	"janmitra/internal/models"
)

// Points awarded to the completing actor, keyed by task priority.
var PointsByPriority = map[models.TaskPriority]int{
	models.PriorityLow:    5,
	models.PriorityMedium: 10,
	models.PriorityHigh:   20,
}

// Manual transitions for tasks worked outside a workflow. Step-driven
// transitions bypass this table; it only backs the direct status endpoint.
var TaskTransitions = map[models.TaskStatus]map[models.TaskStatus]bool{
	models.StatusOpen:       {models.StatusInProgress: true, models.StatusCompleted: true},
	models.StatusInProgress: {models.StatusCompleted: true},
	models.StatusCompleted:  {},
}

func canTransition(current, to models.TaskStatus, table map[models.TaskStatus]map[models.TaskStatus]bool) bool {
	if current == to {
		return false
	}
	nexts, ok := table[current]
	if !ok {
		return false
	}
	return nexts[to]
}

// progressPercent derives the completion percentage from the step set.
// Zero steps means zero progress; progress is never auto-derived then.
func progressPercent(steps []models.TaskStep) int {
	if len(steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range steps {
		if s.Status == models.StepCompleted {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(steps))))
}

// firstUnmetRequired returns the sequence number of the earliest required
// step before seq that is still pending, or 0 if the predecessor check
// passes. Optional steps never block.
func firstUnmetRequired(steps []models.TaskStep, seq int) int {
	first := 0
	for _, s := range steps {
		if !s.Required || s.Sequence >= seq || s.Status == models.StepCompleted {
			continue
		}
		if first == 0 || s.Sequence < first {
			first = s.Sequence
		}
	}
	return first
}

// allRequiredDone reports whether every required step is completed.
// Non-required steps do not block task completion.
func allRequiredDone(steps []models.TaskStep) bool {
	for _, s := range steps {
		if s.Required && s.Status != models.StepCompleted {
			return false
		}
	}
	return true
}
