package oauth

import (
	"testing"

	"github.com/call-manager-team/call-manager/internal/infrastructure/cache"
)

func TestStateRoundTrip(t *testing.T) {
	sm := NewStateManager(cache.NewMemoryStore())

	state, err := sm.GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	if state == "" {
		t.Fatal("GenerateState() returned empty state")
	}

	if !sm.ValidateState(state) {
		t.Fatal("ValidateState() rejected a freshly generated state")
	}

	// States are one-time use.
	if sm.ValidateState(state) {
		t.Fatal("ValidateState() accepted a consumed state")
	}
}

func TestStateValidateUnknown(t *testing.T) {
	sm := NewStateManager(cache.NewMemoryStore())

	if sm.ValidateState("not-a-real-state") {
		t.Fatal("ValidateState() accepted an unknown state")
	}
}
