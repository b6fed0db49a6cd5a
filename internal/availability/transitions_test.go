// internal/availability/transitions_test.go
package availability

import (
	"testing"

	"rotationhub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    models.ApplicationStatus
		to      models.ApplicationStatus
		allowed bool
	}{
		{models.StatusPending, models.StatusAccepted, true},
		{models.StatusPending, models.StatusRejected, true},
		{models.StatusPending, models.StatusWaitlisted, true},
		{models.StatusWaitlisted, models.StatusAccepted, true},
		{models.StatusWaitlisted, models.StatusRejected, true},
		{models.StatusWaitlisted, models.StatusPending, false},
		{models.StatusAccepted, models.StatusRejected, false},
		{models.StatusAccepted, models.StatusPending, false},
		{models.StatusRejected, models.StatusAccepted, false},
		{models.StatusRejected, models.StatusPending, false},
		{models.StatusPending, models.StatusPending, false},
	}

	for _, tt := range tests {
		got := CanTransition(tt.from, tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, from := range []models.ApplicationStatus{models.StatusAccepted, models.StatusRejected} {
		for _, to := range []models.ApplicationStatus{
			models.StatusPending, models.StatusAccepted,
			models.StatusRejected, models.StatusWaitlisted,
		} {
			assert.False(t, CanTransition(from, to), "%s must be terminal", from)
		}
	}
}

func TestReleasesSeat(t *testing.T) {
	// Only entering rejected gives the seat back; the claim reserved it.
	assert.True(t, ReleasesSeat(models.StatusPending, models.StatusRejected))
	assert.True(t, ReleasesSeat(models.StatusWaitlisted, models.StatusRejected))
	assert.False(t, ReleasesSeat(models.StatusPending, models.StatusAccepted))
	assert.False(t, ReleasesSeat(models.StatusPending, models.StatusWaitlisted))
	assert.False(t, ReleasesSeat(models.StatusWaitlisted, models.StatusAccepted))
}
