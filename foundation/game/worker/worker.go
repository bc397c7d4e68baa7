// Package worker implements the round timing and feed consumption workflows
// for the game engine.
package worker

import (
	"sync"

	"github.com/txroyale/engine/foundation/game/feed"
	"github.com/txroyale/engine/foundation/game/state"
)

// Feed represents the behavior required from the upstream observation
// source.
type Feed interface {
	Observations() <-chan feed.Observation
}

// Worker manages the timer and feed workflows for the engine.
type Worker struct {
	state      *state.State
	feed       Feed
	wg         sync.WaitGroup
	shut       chan struct{}
	lockTimer  chan uint64
	resetTimer chan uint64
	evHandler  state.EventHandler
}

// Run creates a worker, registers the worker with the state package, starts
// up all the background processes and opens the first round.
func Run(st *state.State, fd Feed, evHandler state.EventHandler) {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	w := Worker{
		state:      st,
		feed:       fd,
		shut:       make(chan struct{}),
		lockTimer:  make(chan uint64, 1),
		resetTimer: make(chan uint64, 1),
		evHandler:  ev,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run. The feed operation only
	// runs when an upstream feed was configured.
	operations := []func(){
		w.lockTimerOperations,
		w.resetOperations,
	}
	if fd != nil {
		operations = append(operations, w.feedOperations)
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	// Open the first round now that the timers are able to receive signals.
	st.StartRounds()
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalLockTimer arms the lock timeout countdown for the specified round
// sequence. If there is already a signal pending in the channel, just return
// since the timer will be armed.
func (w *Worker) SignalLockTimer(sequence uint64) {
	select {
	case w.lockTimer <- sequence:
	default:
	}
	w.evHandler("worker: SignalLockTimer: sequence[%d] signaled", sequence)
}

// SignalReset schedules the next round to open once the reset delay for the
// specified settled round expires.
func (w *Worker) SignalReset(sequence uint64) {
	select {
	case w.resetTimer <- sequence:
	default:
	}
	w.evHandler("worker: SignalReset: sequence[%d] signaled", sequence)
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
