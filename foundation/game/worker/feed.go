package worker

// feedOperations forwards observations from the upstream feed into the
// state. The state decides whether an observation locks the current round or
// is discarded as stale.
func (w *Worker) feedOperations() {
	w.evHandler("worker: feedOperations: G started")
	defer w.evHandler("worker: feedOperations: G completed")

	for {
		select {
		case obs, wd := <-w.feed.Observations():
			if !wd {
				w.evHandler("worker: feedOperations: feed channel closed")
				return
			}
			if !w.isShutdown() {
				w.state.ProcessObservation(obs)
			}

		case <-w.shut:
			w.evHandler("worker: feedOperations: received shut signal")
			return
		}
	}
}
