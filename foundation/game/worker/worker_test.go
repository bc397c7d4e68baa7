package worker_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/txroyale/engine/foundation/events"
	"github.com/txroyale/engine/foundation/game/broadcast"
	"github.com/txroyale/engine/foundation/game/feed"
	"github.com/txroyale/engine/foundation/game/participant"
	"github.com/txroyale/engine/foundation/game/round"
	"github.com/txroyale/engine/foundation/game/state"
	"github.com/txroyale/engine/foundation/game/worker"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

// fakeFeed delivers observations from a test controlled channel.
type fakeFeed struct {
	ch chan feed.Observation
}

func (f *fakeFeed) Observations() <-chan feed.Observation {
	return f.ch
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}

	return cond()
}

func Test_Worker(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), "rounds.db")

	st, err := state.New(state.Config{
		MaxGuessValue: 10000,
		LockWait:      250 * time.Millisecond,
		ResetDelay:    25 * time.Millisecond,
		TopN:          10,
		HistoryPath:   historyPath,
		Registry:      participant.NewRegistry(),
		Broadcaster:   broadcast.New(events.New(), nil),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould construct the state: %v", failed, err)
	}
	defer st.Shutdown()

	fd := fakeFeed{ch: make(chan feed.Observation, 1)}

	t.Log("Given the need to drive rounds from timers and the feed.")
	{
		t.Log("\tTest 0:\tWhen the worker starts.")
		{
			worker.Run(st, &fd, nil)

			current := st.CurrentRound()
			if current.Sequence != 1 || current.State != round.StateOpen {
				t.Fatalf("\t%s\tTest 0:\tShould open round 1 on startup.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould open round 1 on startup.", success)
		}

		t.Log("\tTest 1:\tWhen the feed delivers an observation.")
		{
			fd.ch <- feed.Observation{Key: "blockA", Height: 100, ActualValue: 2000, ObservedAt: time.Now().UTC()}

			ok := waitFor(t, func() bool {
				current := st.CurrentRound()
				return current.Sequence == 2 && current.State == round.StateOpen
			})
			if !ok {
				t.Fatalf("\t%s\tTest 1:\tShould settle round 1 and open round 2.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould settle round 1 and open round 2.", success)
		}

		t.Log("\tTest 2:\tWhen no observation arrives before the lock timeout.")
		{
			ok := waitFor(t, func() bool {
				current := st.CurrentRound()
				return current.Sequence == 3 && current.State == round.StateOpen
			})
			if !ok {
				t.Fatalf("\t%s\tTest 2:\tShould void round 2 and open round 3.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould void round 2 and open round 3.", success)

			if st.SettledRounds() != 2 {
				t.Fatalf("\t%s\tTest 2:\tShould have two settled rounds on record.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould have two settled rounds on record.", success)
		}
	}
}
