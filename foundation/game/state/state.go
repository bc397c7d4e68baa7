// Package state is the core API for the game engine and implements all the
// business rules and processing. One state value owns every piece of mutable
// round, ledger and leaderboard data, and every mutation is funneled through
// its mutex so submissions, observations and timer firings are processed one
// at a time in arrival order.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/txroyale/engine/foundation/game/broadcast"
	"github.com/txroyale/engine/foundation/game/history"
	"github.com/txroyale/engine/foundation/game/leaderboard"
	"github.com/txroyale/engine/foundation/game/participant"
	"github.com/txroyale/engine/foundation/game/prediction"
	"github.com/txroyale/engine/foundation/game/round"
)

// ErrUnknownParticipant is returned when a submission carries an identity
// that was never registered.
var ErrUnknownParticipant = errors.New("participant has never been registered")

// EventHandler defines a function that is called when events occur in the
// processing of rounds.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for the round timers and feed consumption.
type Worker interface {
	Shutdown()
	SignalLockTimer(sequence uint64)
	SignalReset(sequence uint64)
}

// =============================================================================

// Config represents the configuration required to start the game engine.
type Config struct {
	MaxGuessValue uint
	LockWait      time.Duration
	ResetDelay    time.Duration
	TopN          int
	HistoryPath   string
	Registry      *participant.Registry
	Broadcaster   *broadcast.Broadcaster
	EvHandler     EventHandler
}

// State manages the round lifecycle.
type State struct {
	lockWait   time.Duration
	resetDelay time.Duration
	topN       int
	evHandler  EventHandler

	mu           sync.Mutex
	current      round.Round
	nextSequence uint64
	lastHeight   uint64
	actual       *uint

	ledger      *prediction.Ledger
	leaderboard *leaderboard.Aggregator
	registry    *participant.Registry
	broadcaster *broadcast.Broadcaster
	history     *history.Store

	Worker Worker
}

// New constructs a new game engine state. The history file is read so the
// next round sequence and the leaderboard watermark survive a restart.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the storage for the settled round outcomes.
	hist, err := history.New(cfg.HistoryPath)
	if err != nil {
		return nil, err
	}

	// Seed the sequence and the replay watermark from the latest settled
	// outcome on record.
	var watermark uint64
	nextSequence := uint64(1)
	if latest, exists := hist.Latest(); exists {
		watermark = latest.Sequence
		nextSequence = latest.Sequence + 1
	}

	s := State{
		lockWait:   cfg.LockWait,
		resetDelay: cfg.ResetDelay,
		topN:       cfg.TopN,
		evHandler:  ev,

		nextSequence: nextSequence,

		ledger:      prediction.New(cfg.MaxGuessValue),
		leaderboard: leaderboard.New(watermark),
		registry:    cfg.Registry,
		broadcaster: cfg.Broadcaster,
		history:     hist,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the engine.

	return &s, nil
}

// Shutdown cleanly brings the engine down.
func (s *State) Shutdown() error {

	// Make sure the history file is properly closed.
	defer func() {
		s.history.Close()
	}()

	// Stop all round timing activity.
	s.Worker.Shutdown()

	return nil
}

// LockWait returns the maximum time a round stays open waiting for an
// observation before it is voided.
func (s *State) LockWait() time.Duration {
	return s.lockWait
}

// ResetDelay returns the display window between settlement and the next
// round opening.
func (s *State) ResetDelay() time.Duration {
	return s.resetDelay
}
