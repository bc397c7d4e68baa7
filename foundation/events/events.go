// Package events allows for the registering and receiving of events.
package events

import (
	"fmt"
	"sync"
)

// Events maintains a mapping of unique connection id and channels so
// goroutines can register and receive events. Connections are indexed by
// participant id so a message can be sent to just the connections owned by
// one participant.
type Events struct {
	conns        map[string]chan []byte
	owners       map[string]string
	participants map[string]map[string]struct{}
	mu           sync.RWMutex
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		conns:        make(map[string]chan []byte),
		owners:       make(map[string]string),
		participants: make(map[string]map[string]struct{}),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.conns {
		delete(evt.conns, id)
		close(ch)
	}
	evt.owners = make(map[string]string)
	evt.participants = make(map[string]map[string]struct{})
}

// Acquire takes a unique connection id and the id of the participant who owns
// the connection and returns a channel that can be used to receive events.
// The participant id may be empty for a spectator connection.
func (evt *Events) Acquire(connID string, participantID string) chan []byte {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.conns[connID]
	if exists {
		return ch
	}

	// Since a message will be dropped if the websocket receiver is
	// not ready to receive, this arbitrary buffer should give the receiver
	// enough time to not lose a message. Websocket send could take long.
	const messageBuffer = 100

	ch = make(chan []byte, messageBuffer)
	evt.conns[connID] = ch

	if participantID != "" {
		evt.owners[connID] = participantID
		conns, exists := evt.participants[participantID]
		if !exists {
			conns = make(map[string]struct{})
			evt.participants[participantID] = conns
		}
		conns[connID] = struct{}{}
	}

	return ch
}

// Release closes and removes the channel that was provided by the call to
// Acquire. Only connection bookkeeping is removed; the owning participant's
// identity and any accepted predictions are untouched.
func (evt *Events) Release(connID string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.conns[connID]
	if !exists {
		return fmt.Errorf("connection id %q does not exist", connID)
	}

	delete(evt.conns, connID)
	close(ch)

	if participantID, exists := evt.owners[connID]; exists {
		delete(evt.owners, connID)
		if conns, exists := evt.participants[participantID]; exists {
			delete(conns, connID)
			if len(conns) == 0 {
				delete(evt.participants, participantID)
			}
		}
	}

	return nil
}

// Send signals a message to every registered channel. Send will not block
// waiting for a receiver on any given channel.
func (evt *Events) Send(msg []byte) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.conns {
		select {
		case ch <- msg:
		default:
		}
	}
}

// SendTo signals a message to every connection owned by the specified
// participant. SendTo will not block waiting for a receiver.
func (evt *Events) SendTo(participantID string, msg []byte) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for connID := range evt.participants[participantID] {
		if ch, exists := evt.conns[connID]; exists {
			select {
			case ch <- msg:
			default:
			}
		}
	}
}

// Count returns the number of registered connections.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.conns)
}
