package onboarding

import (
	"math"

	"capitalflow/founder-portal/founder-portal-backend/pkg/workflows"
)

// Controller holds the ordered step sequence, the current position and the
// navigation rules. It never advances past a step whose validation result
// contains any error.
type Controller struct {
	steps     []StepDefinition
	machine   *workflows.StateMachine
	index     int
	submitted bool
}

// NewController creates a controller positioned at the first step
func NewController() *Controller {
	steps := DefaultSteps()
	states := make([]string, len(steps))
	for i, s := range steps {
		states[i] = string(s.ID)
	}
	return &Controller{
		steps:   steps,
		machine: workflows.NewLinear(states, StateSubmitted),
	}
}

// Restore positions the controller from persisted session state
func (c *Controller) Restore(index int, submitted bool) *Controller {
	if index < 0 {
		index = 0
	}
	if index >= len(c.steps) {
		index = len(c.steps) - 1
	}
	c.index = index
	c.submitted = submitted
	return c
}

// Current returns the active step
func (c *Controller) Current() StepDefinition {
	return c.steps[c.index]
}

// Index returns the active step's position
func (c *Controller) Index() int {
	return c.index
}

// Submitted reports whether the wizard reached the terminal state
func (c *Controller) Submitted() bool {
	return c.submitted
}

// Steps returns the ordered step definitions
func (c *Controller) Steps() []StepDefinition {
	return c.steps
}

// StepByID finds a step definition
func (c *Controller) StepByID(id StepID) (StepDefinition, int, bool) {
	for i, s := range c.steps {
		if s.ID == id {
			return s, i, true
		}
	}
	return StepDefinition{}, 0, false
}

// GoNext advances to the next step. It fails with ValidationBlocked when
// the active step has validation errors, and the step does not change.
func (c *Controller) GoNext(d Draft) error {
	if c.submitted {
		return ErrAlreadySubmitted
	}
	current := c.Current()
	if result := Validate(current.ID, d.Step(current.ID)); !result.Valid() {
		return &ValidationBlockedError{Step: current.ID, Fields: result}
	}
	if !current.IsComplete(d) {
		return &ValidationBlockedError{Step: current.ID, Fields: ValidationResult{}}
	}
	if c.index == len(c.steps)-1 {
		return ErrNoNextStep
	}
	next := c.steps[c.index+1]
	if !c.machine.CanTransition(string(current.ID), string(next.ID)) {
		return ErrNoNextStep
	}
	c.index++
	return nil
}

// GoBack returns to the previous step. Going backward needs no validation
// and never discards already-entered data.
func (c *Controller) GoBack() error {
	if c.submitted {
		return ErrAlreadySubmitted
	}
	if c.index > 0 {
		c.index--
	}
	return nil
}

// GoTo jumps to a step, permitted only when every predecessor is complete
func (c *Controller) GoTo(id StepID, d Draft) error {
	if c.submitted {
		return ErrAlreadySubmitted
	}
	_, target, ok := c.StepByID(id)
	if !ok {
		return ErrUnknownStep
	}

	var blocking []StepID
	for i := 0; i < target; i++ {
		if !c.steps[i].IsComplete(d) {
			blocking = append(blocking, c.steps[i].ID)
		}
	}
	if len(blocking) > 0 {
		return &StepLockedError{Step: id, Blocking: blocking}
	}
	c.index = target
	return nil
}

// IncompleteSteps lists every step whose completion predicate fails
func (c *Controller) IncompleteSteps(d Draft) []StepID {
	var incomplete []StepID
	for _, s := range c.steps {
		if !s.IsComplete(d) {
			incomplete = append(incomplete, s.ID)
		}
	}
	return incomplete
}

// MarkSubmitted moves the wizard to the terminal state. Only the submission
// success path calls this, and only from the final step.
func (c *Controller) MarkSubmitted() error {
	if c.submitted {
		return ErrAlreadySubmitted
	}
	if !c.machine.CanTransition(string(c.Current().ID), StateSubmitted) {
		return ErrNoNextStep
	}
	c.submitted = true
	return nil
}

// Progress builds the API view of the wizard state
func (c *Controller) Progress(d Draft) Progress {
	steps := make([]StepProgress, len(c.steps))
	completed := 0
	for i, s := range c.steps {
		done := c.submitted || s.IsComplete(d)
		if done {
			completed++
		}
		steps[i] = StepProgress{
			ID:        s.ID,
			Title:     s.Title,
			Order:     s.Order,
			Required:  s.Required,
			Completed: done,
			Current:   !c.submitted && i == c.index,
		}
	}

	status := StatusInProgress
	if c.submitted {
		status = StatusSubmitted
	}
	return Progress{
		Status:          status,
		CurrentStep:     c.Current().ID,
		TotalSteps:      len(c.steps),
		PercentComplete: math.Round(float64(completed)/float64(len(c.steps))*1000) / 10,
		Steps:           steps,
	}
}
