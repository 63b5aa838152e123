package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/learnhub/progress-hub/internal/domain/shared"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"complete", StatusComplete, false},
		{"failed", StatusFailed, false},
		{"  Complete  ", StatusComplete, false},
		{"FAILED", StatusFailed, false},
		{"done", "", true},
		{"", "", true},
		{"completed", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			assert.True(t, shared.IsValidation(err), "input %q should be a validation error", tt.input)
		} else {
			assert.NoError(t, err, "input %q", tt.input)
			assert.Equal(t, tt.want, got, "input %q", tt.input)
		}
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusComplete, true},
		{StatusPending, StatusFailed, true},
		{StatusFailed, StatusComplete, true},
		{StatusFailed, StatusPending, true},
		{StatusComplete, StatusPending, true},

		// A passed lesson can only be retaken via reset.
		{StatusComplete, StatusFailed, false},

		// Self-transitions are never edges.
		{StatusPending, StatusPending, false},
		{StatusComplete, StatusComplete, false},
		{StatusFailed, StatusFailed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestStatus_IsFinal(t *testing.T) {
	assert.True(t, StatusComplete.IsFinal())
	assert.False(t, StatusPending.IsFinal())
	assert.False(t, StatusFailed.IsFinal())
}

func TestStatus_SatisfiesPrerequisite(t *testing.T) {
	assert.True(t, StatusComplete.SatisfiesPrerequisite())
	assert.True(t, StatusFailed.SatisfiesPrerequisite())
	assert.False(t, StatusPending.SatisfiesPrerequisite())
}

func TestStatus_AllowedTransitions(t *testing.T) {
	assert.ElementsMatch(t, []Status{StatusComplete, StatusFailed}, StatusPending.AllowedTransitions())
	assert.ElementsMatch(t, []Status{StatusComplete, StatusPending}, StatusFailed.AllowedTransitions())
	assert.ElementsMatch(t, []Status{StatusPending}, StatusComplete.AllowedTransitions())
}
