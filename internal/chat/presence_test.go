package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParticipant(connID, name string) Participant {
	return Participant{
		ConnectionID: connID,
		DisplayName:  name,
		Avatar:       "🦊",
		Color:        "#FF6B6B",
		JoinedAt:     time.Now(),
	}
}

func TestPresenceRegisterAndGet(t *testing.T) {
	presence := NewPresence()
	presence.Register(testParticipant("c1", "Ann"))

	participant, ok := presence.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "Ann", participant.DisplayName)

	_, ok = presence.Get("c2")
	assert.False(t, ok)
}

func TestPresenceRegisterReplacesSameConnection(t *testing.T) {
	presence := NewPresence()
	presence.Register(testParticipant("c1", "Ann"))
	presence.Register(testParticipant("c1", "Annie"))

	assert.Equal(t, 1, presence.Count())
	participant, ok := presence.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "Annie", participant.DisplayName)
}

func TestPresenceUnregister(t *testing.T) {
	presence := NewPresence()
	presence.Register(testParticipant("c1", "Ann"))

	presence.Unregister("c1")
	_, ok := presence.Get("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, presence.Count())

	// Absent entries are a no-op.
	presence.Unregister("c1")
}

func TestPresenceAllOrderedByJoinTime(t *testing.T) {
	presence := NewPresence()
	base := time.Now()

	second := testParticipant("c2", "Bob")
	second.JoinedAt = base.Add(time.Second)
	first := testParticipant("c1", "Ann")
	first.JoinedAt = base

	presence.Register(second)
	presence.Register(first)

	all := presence.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Ann", all[0].DisplayName)
	assert.Equal(t, "Bob", all[1].DisplayName)
}

func TestPresenceSharedNamesAllowed(t *testing.T) {
	presence := NewPresence()
	presence.Register(testParticipant("c1", "Ann"))
	presence.Register(testParticipant("c2", "Ann"))

	assert.Equal(t, 2, presence.Count())
}

func TestPresenceSnapshotIsIsolated(t *testing.T) {
	presence := NewPresence()
	presence.Register(testParticipant("c1", "Ann"))

	all := presence.All()
	require.Len(t, all, 1)
	all[0].DisplayName = "Mallory"

	participant, ok := presence.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "Ann", participant.DisplayName)
}

func TestPresenceConcurrentAccess(t *testing.T) {
	presence := NewPresence()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			connID := fmt.Sprintf("c%d", i)
			presence.Register(testParticipant(connID, "user"))
			presence.All()
			presence.Get(connID)
			presence.Unregister(connID)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, presence.Count())
}
