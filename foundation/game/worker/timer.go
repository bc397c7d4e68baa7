package worker

import "time"

// lockTimerOperations arms the lock timeout whenever a round opens and voids
// the round when the timeout fires before an observation arrives. Arming for
// a new round supersedes any pending timeout; the state guards by sequence
// against a stale timer regardless.
func (w *Worker) lockTimerOperations() {
	w.evHandler("worker: lockTimerOperations: G started")
	defer w.evHandler("worker: lockTimerOperations: G completed")

	timer := newStoppedTimer()
	defer timer.Stop()

	var sequence uint64
	for {
		select {
		case sequence = <-w.lockTimer:
			resetTimer(timer, w.state.LockWait())

		case <-timer.C:
			w.state.ProcessLockTimeout(sequence)

		case <-w.shut:
			w.evHandler("worker: lockTimerOperations: received shut signal")
			return
		}
	}
}

// resetOperations waits out the display window after a settlement and then
// asks the state to open the next round.
func (w *Worker) resetOperations() {
	w.evHandler("worker: resetOperations: G started")
	defer w.evHandler("worker: resetOperations: G completed")

	timer := newStoppedTimer()
	defer timer.Stop()

	var sequence uint64
	for {
		select {
		case sequence = <-w.resetTimer:
			resetTimer(timer, w.state.ResetDelay())

		case <-timer.C:
			w.state.OpenNextRound(sequence)

		case <-w.shut:
			w.evHandler("worker: resetOperations: received shut signal")
			return
		}
	}
}

// =============================================================================

// newStoppedTimer returns a timer that won't fire until it is reset.
func newStoppedTimer() *time.Timer {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

// resetTimer safely re-arms a timer that may have a pending fire.
func resetTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}
