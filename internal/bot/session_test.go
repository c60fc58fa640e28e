package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionStoreLifecycle(t *testing.T) {
	s := NewSessionStore()
	assert.Equal(t, StageIdle, s.Get(1).Stage)

	s.Put(1, Session{Stage: StageSelectingDate, PendingLocation: "Paris"})
	assert.Equal(t, Session{Stage: StageSelectingDate, PendingLocation: "Paris"}, s.Get(1))
	assert.Equal(t, StageIdle, s.Get(2).Stage)
	assert.Equal(t, 1, s.Len())

	// Last write wins.
	s.Put(1, Session{Stage: StageSelectingDate, PendingLocation: "Berlin"})
	assert.Equal(t, "Berlin", s.Get(1).PendingLocation)

	s.Put(1, Session{})
	assert.Equal(t, 0, s.Len())

	s.Put(3, Session{Stage: StageSelectingLocation})
	s.Delete(3)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "idle", s.Get(3).Stage.String())
}
