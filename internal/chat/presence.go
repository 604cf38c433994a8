package chat

import (
	"sort"
	"sync"
)

// Presence is the in-memory registry of currently connected participants,
// keyed by connection id. It is purely transient state: every process start
// begins with an empty registry, and historical participation lives in the
// message log's join/leave system messages, not here.
//
// The registry stores participant values and hands out copies, so a snapshot
// taken by one goroutine is never mutated by another.
type Presence struct {
	mu      sync.RWMutex
	members map[string]Participant
}

// NewPresence creates an empty presence registry.
func NewPresence() *Presence {
	return &Presence{members: make(map[string]Participant)}
}

// Register inserts or replaces the participant for its connection id.
// Replacing is expected when the same connection re-joins.
func (p *Presence) Register(participant Participant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members[participant.ConnectionID] = participant
}

// Unregister removes the entry for the connection, a no-op if absent.
func (p *Presence) Unregister(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.members, connID)
}

// Get returns the participant registered for the connection, if any.
func (p *Presence) Get(connID string) (Participant, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	participant, ok := p.members[connID]
	return participant, ok
}

// All returns a point-in-time snapshot of every registered participant,
// ordered by join time so roster broadcasts are stable.
func (p *Presence) All() []Participant {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := make([]Participant, 0, len(p.members))
	for _, participant := range p.members {
		snapshot = append(snapshot, participant)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].JoinedAt.Equal(snapshot[j].JoinedAt) {
			return snapshot[i].ConnectionID < snapshot[j].ConnectionID
		}
		return snapshot[i].JoinedAt.Before(snapshot[j].JoinedAt)
	})
	return snapshot
}

// Count returns the number of registered participants.
func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}
