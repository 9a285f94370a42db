package workflows

// StateMachine enforces wizard state transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewStateMachine creates a state machine from an explicit transition table
func NewStateMachine(transitions map[string][]string) *StateMachine {
	return &StateMachine{allowedTransitions: transitions}
}

// NewLinear builds the transition table for a linear wizard: every state may
// move to its immediate neighbours, and only the last state may reach the
// terminal state.
func NewLinear(states []string, terminal string) *StateMachine {
	transitions := make(map[string][]string, len(states)+1)
	for i, s := range states {
		var next []string
		if i > 0 {
			next = append(next, states[i-1])
		}
		if i < len(states)-1 {
			next = append(next, states[i+1])
		}
		if i == len(states)-1 {
			next = append(next, terminal)
		}
		transitions[s] = next
	}
	transitions[terminal] = []string{}
	return &StateMachine{allowedTransitions: transitions}
}

// CanTransition checks if a state transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next states for a given state
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

// IsTerminal reports whether a state has no outgoing transitions
func (sm *StateMachine) IsTerminal(state string) bool {
	allowed, exists := sm.allowedTransitions[state]
	return exists && len(allowed) == 0
}
