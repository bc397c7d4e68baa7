// Package participant maintains the registry of known players. Identity is
// stable across reconnects and independent of any live connection.
package participant

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup is performed for an id that was
// never registered.
var ErrNotFound = errors.New("participant not found")

// Participant represents a registered player.
type Participant struct {
	ID          string
	DisplayName string
}

// Registry maintains a map of participants for id lookup.
type Registry struct {
	participants map[string]Participant
	mu           sync.RWMutex
}

// NewRegistry constructs a registry for managing participants.
func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[string]Participant),
	}
}

// Join registers a participant and returns the stable identity. When id is
// empty a new id is generated. Joining again with an existing id refreshes
// the display name only.
func (reg *Registry) Join(id string, displayName string) Participant {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}

	p := Participant{
		ID:          id,
		DisplayName: displayName,
	}
	reg.participants[id] = p

	return p
}

// Lookup returns the participant for the specified id.
func (reg *Registry) Lookup(id string) (Participant, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	p, exists := reg.participants[id]
	if !exists {
		return Participant{}, ErrNotFound
	}

	return p, nil
}

// Exists reports whether the specified id was ever registered.
func (reg *Registry) Exists(id string) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	_, exists := reg.participants[id]
	return exists
}

// Name returns the display name for the specified id, or the id itself when
// the participant is unknown.
func (reg *Registry) Name(id string) string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	p, exists := reg.participants[id]
	if !exists {
		return id
	}

	return p.DisplayName
}

// Count returns the number of registered participants.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.participants)
}
