// Package progress contains the lesson progress aggregate: the status machine,
// the progress entity, the append-only history entry, and repository contracts.
package progress

import (
	"fmt"
	"strings"

	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// Status represents the state of a user's progress on a lesson.
type Status string

const (
	// StatusPending - the lesson was started but has no outcome yet.
	StatusPending Status = "pending"

	// StatusComplete - the lesson was finished successfully.
	StatusComplete Status = "complete"

	// StatusFailed - the lesson was attempted and failed.
	StatusFailed Status = "failed"
)

// transitions is the closed set of allowed status edges.
// complete→failed is forbidden: a passed lesson can only be retaken via reset.
// Self-transitions are not edges; callers treat same-status writes as no-ops.
var transitions = map[Status][]Status{
	StatusPending:  {StatusComplete, StatusFailed},
	StatusFailed:   {StatusComplete, StatusPending},
	StatusComplete: {StatusPending},
}

// ParseStatus parses raw input into a Status. Unknown values are rejected,
// never coerced to a default.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusComplete, StatusFailed:
		return s, nil
	default:
		return "", shared.NewDomainError("progress", "ParseStatus", shared.ErrInvalidInput, fmt.Sprintf("unknown status %q", raw))
	}
}

// IsValid checks if the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusComplete, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether the edge s→to exists in the status machine.
// Self-transitions always return false.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s in one step.
func (s Status) AllowedTransitions() []Status {
	edges := transitions[s]
	out := make([]Status, len(edges))
	copy(out, edges)
	return out
}

// IsFinal reports whether the status is the terminal outcome of the normal
// flow. Only complete qualifies; failed still allows a forward retry.
func (s Status) IsFinal() bool {
	return s == StatusComplete
}

// SatisfiesPrerequisite reports whether this status counts as "finished" for
// prerequisite gating. Both outcomes qualify: a failed attempt still unlocks
// the next lesson.
func (s Status) SatisfiesPrerequisite() bool {
	return s == StatusComplete || s == StatusFailed
}
