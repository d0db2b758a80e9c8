package service

import "fmt"

// PipelineState tracks one generation run through its lifecycle.
type PipelineState string

const (
	StateGenerating PipelineState = "GENERATING"
	StateValidating PipelineState = "VALIDATING"
	StateRetrying   PipelineState = "RETRYING"
	StateSucceeded  PipelineState = "SUCCEEDED"
	StateFailed     PipelineState = "FAILED"
)

// IsTerminal reports whether the state is terminal.
func (s PipelineState) IsTerminal() bool {
	switch s {
	case StateSucceeded, StateFailed:
		return true
	default:
		return false
	}
}

// transition performs a validated state change. The expected prior state is
// supplied so a mis-sequenced pipeline step is observable instead of silent.
func transition(current *PipelineState, from, to PipelineState) error {
	if *current != from {
		return fmt.Errorf("invalid pipeline transition: expected %s, got %s", from, *current)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed pipeline transition: %s -> %s", from, to)
	}
	*current = to
	return nil
}

func isAllowedTransition(from, to PipelineState) bool {
	switch from {
	case StateGenerating:
		return to == StateValidating || to == StateFailed
	case StateValidating:
		return to == StateSucceeded || to == StateRetrying || to == StateFailed
	case StateRetrying:
		return to == StateGenerating
	default:
		return false
	}
}
