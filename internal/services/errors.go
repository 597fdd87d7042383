package services

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to handlers. Handlers map them onto HTTP status
// codes; everything else is treated as an internal failure.
var (
	ErrCategoryNotFound       = errors.New("category not found")
	ErrCategoryInUse          = errors.New("category is referenced by existing tasks")
	ErrTemplateConflict       = errors.New("workflow template already exists for this scope")
	ErrTaskNotFound           = errors.New("task not found")
	ErrStepNotFound           = errors.New("step not found")
	ErrEventNotFound          = errors.New("event not found")
	ErrAlreadyCompleted       = errors.New("already completed")
	ErrConcurrentModification = errors.New("task was modified concurrently, retry")
	ErrApprovalChainExhausted = errors.New("approval chain already settled")
	ErrApprovalOutOfOrder     = errors.New("approval level is not the current stage")
	ErrInvalidTransition      = errors.New("illegal status transition")
)

// SequenceViolationError reports an out-of-order step completion, naming
// the first required predecessor that is still pending.
type SequenceViolationError struct {
	StepSequence        int
	PredecessorSequence int
}

func (e *SequenceViolationError) Error() string {
	return fmt.Sprintf("step %d cannot be completed: required step %d is still pending",
		e.StepSequence, e.PredecessorSequence)
}

// IsSequenceViolation reports whether err is a SequenceViolationError.
func IsSequenceViolation(err error) bool {
	var sv *SequenceViolationError
	return errors.As(err, &sv)
}
