// internal/models/application_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusAccepted.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusWaitlisted.IsTerminal())
}

func TestHoldsSeat(t *testing.T) {
	assert.True(t, StatusPending.HoldsSeat())
	assert.True(t, StatusWaitlisted.HoldsSeat())
	assert.True(t, StatusAccepted.HoldsSeat())
	assert.False(t, StatusRejected.HoldsSeat())
}

func TestProgramIsFree(t *testing.T) {
	assert.True(t, (&Program{FeeCents: 0}).IsFree())
	assert.False(t, (&Program{FeeCents: 250000}).IsFree())
}

func TestActorIsAdmin(t *testing.T) {
	assert.True(t, Actor{ID: "a1", Role: RoleAdmin}.IsAdmin())
	assert.False(t, Actor{ID: "a2", Role: RoleLearner}.IsAdmin())
	assert.False(t, Actor{ID: "a3", Role: RolePreceptor}.IsAdmin())
}
