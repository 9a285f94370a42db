package onboarding

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound  = errors.New("onboarding session not found")
	ErrAlreadySubmitted = errors.New("onboarding already submitted")
	ErrNoNextStep       = errors.New("no step after the final step")
	ErrUnknownStep      = errors.New("unknown wizard step")
)

// ValidationBlockedError means navigation was denied because the active
// step's data does not validate. It carries the field error map and is
// resolved entirely inside the wizard; it never reaches the backend.
type ValidationBlockedError struct {
	Step   StepID
	Fields ValidationResult
}

func (e *ValidationBlockedError) Error() string {
	return fmt.Sprintf("step %q blocked by %d validation error(s)", e.Step, len(e.Fields))
}

// StepLockedError means a jump was denied because earlier steps are not
// complete yet.
type StepLockedError struct {
	Step     StepID
	Blocking []StepID
}

func (e *StepLockedError) Error() string {
	return fmt.Sprintf("step %q locked by incomplete steps %v", e.Step, e.Blocking)
}

// IncompleteDraftError means submission was requested before every step was
// complete.
type IncompleteDraftError struct {
	Steps []StepID
}

func (e *IncompleteDraftError) Error() string {
	return fmt.Sprintf("draft incomplete: steps %v", e.Steps)
}

// StaleDocumentsError means the draft references documents whose staged
// contents are gone, typically because the process restarted since they were
// staged. The founder must remove or re-stage them before submitting.
type StaleDocumentsError struct {
	Refs []string
}

func (e *StaleDocumentsError) Error() string {
	return fmt.Sprintf("%d staged document(s) no longer available, re-stage before submitting", len(e.Refs))
}
