package state_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/txroyale/engine/foundation/events"
	"github.com/txroyale/engine/foundation/game/broadcast"
	"github.com/txroyale/engine/foundation/game/feed"
	"github.com/txroyale/engine/foundation/game/participant"
	"github.com/txroyale/engine/foundation/game/prediction"
	"github.com/txroyale/engine/foundation/game/round"
	"github.com/txroyale/engine/foundation/game/state"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

// stubWorker satisfies the state.Worker interface so the tests can drive the
// lifecycle directly instead of waiting on real timers.
type stubWorker struct {
	lockSignals  []uint64
	resetSignals []uint64
}

func (w *stubWorker) Shutdown() {}

func (w *stubWorker) SignalLockTimer(sequence uint64) {
	w.lockSignals = append(w.lockSignals, sequence)
}

func (w *stubWorker) SignalReset(sequence uint64) {
	w.resetSignals = append(w.resetSignals, sequence)
}

func newTestState(t *testing.T, historyPath string) (*state.State, *stubWorker, *participant.Registry) {
	t.Helper()

	registry := participant.NewRegistry()

	st, err := state.New(state.Config{
		MaxGuessValue: 10000,
		LockWait:      time.Minute,
		ResetDelay:    time.Second,
		TopN:          10,
		HistoryPath:   historyPath,
		Registry:      registry,
		Broadcaster:   broadcast.New(events.New(), nil),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould construct the state: %v", failed, err)
	}

	w := stubWorker{}
	st.Worker = &w

	return st, &w, registry
}

func observation(height uint64, actual uint) feed.Observation {
	return feed.Observation{
		Key:         "block" + time.Now().String(),
		Height:      height,
		ActualValue: actual,
		ObservedAt:  time.Now().UTC(),
	}
}

// =============================================================================

func Test_RoundLifecycle(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), "rounds.db")
	st, w, registry := newTestState(t, historyPath)
	defer st.Shutdown()

	p1 := registry.Join("", "alice")
	p2 := registry.Join("", "bob")

	t.Log("Given the need to run a full open, lock, settle, reset cycle.")
	{
		t.Log("\tTest 0:\tWhen the first round opens.")
		{
			st.StartRounds()

			current := st.CurrentRound()
			if current.Sequence != 1 || current.State != round.StateOpen {
				t.Fatalf("\t%s\tTest 0:\tShould be open at sequence 1: seq %d state %s", failed, current.Sequence, current.State)
			}
			t.Logf("\t%s\tTest 0:\tShould be open at sequence 1.", success)

			if len(w.lockSignals) != 1 || w.lockSignals[0] != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould arm the lock timer for round 1.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould arm the lock timer for round 1.", success)
		}

		t.Log("\tTest 1:\tWhen participants submit predictions.")
		{
			if _, err := st.SubmitPrediction(p1.ID, 1, 1000); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould accept a valid prediction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould accept a valid prediction.", success)

			if _, err := st.SubmitPrediction(p2.ID, 1, 1200); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould accept a second participant: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould accept a second participant.", success)

			if _, err := st.SubmitPrediction(p1.ID, 1, 999); !errors.Is(err, prediction.ErrDuplicateSubmission) {
				t.Fatalf("\t%s\tTest 1:\tShould reject a duplicate prediction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a duplicate prediction.", success)

			if _, err := st.SubmitPrediction("ghost", 1, 500); !errors.Is(err, state.ErrUnknownParticipant) {
				t.Fatalf("\t%s\tTest 1:\tShould reject an unknown participant: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject an unknown participant.", success)

			if st.PredictionCount() != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould hold exactly two predictions.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould hold exactly two predictions.", success)
		}

		t.Log("\tTest 2:\tWhen the observation arrives.")
		{
			st.ProcessObservation(observation(100, 1050))

			current := st.CurrentRound()
			if current.State != round.StateReset {
				t.Fatalf("\t%s\tTest 2:\tShould settle through to the reset state: %s", failed, current.State)
			}
			t.Logf("\t%s\tTest 2:\tShould settle through to the reset state.", success)

			top := st.Leaderboard()
			if len(top) != 2 || top[0].ParticipantID != p1.ID || top[0].Wins != 1 {
				t.Fatalf("\t%s\tTest 2:\tShould credit the closest guess with the win.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould credit the closest guess with the win.", success)

			if len(w.resetSignals) != 1 || w.resetSignals[0] != 1 {
				t.Fatalf("\t%s\tTest 2:\tShould schedule the reset for round 1.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould schedule the reset for round 1.", success)

			if _, err := st.SubmitPrediction(p2.ID, 1, 800); !errors.Is(err, prediction.ErrRoundNotOpen) {
				t.Fatalf("\t%s\tTest 2:\tShould reject predictions after the lock: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject predictions after the lock.", success)
		}

		t.Log("\tTest 3:\tWhen the reset delay expires.")
		{
			st.OpenNextRound(1)

			current := st.CurrentRound()
			if current.Sequence != 2 || current.State != round.StateOpen {
				t.Fatalf("\t%s\tTest 3:\tShould open round 2: seq %d state %s", failed, current.Sequence, current.State)
			}
			t.Logf("\t%s\tTest 3:\tShould open round 2.", success)

			if st.PredictionCount() != 0 {
				t.Fatalf("\t%s\tTest 3:\tShould start round 2 with an empty ledger.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould start round 2 with an empty ledger.", success)
		}

		t.Log("\tTest 4:\tWhen a duplicate observation is replayed.")
		{
			st.ProcessObservation(observation(100, 9999))

			current := st.CurrentRound()
			if current.Sequence != 2 || current.State != round.StateOpen {
				t.Fatalf("\t%s\tTest 4:\tShould discard the stale observation: seq %d state %s", failed, current.Sequence, current.State)
			}
			t.Logf("\t%s\tTest 4:\tShould discard the stale observation.", success)

			st.ProcessObservation(observation(101, 2000))
			if st.CurrentRound().State != round.StateReset {
				t.Fatalf("\t%s\tTest 4:\tShould settle round 2 with the next height.", failed)
			}
			t.Logf("\t%s\tTest 4:\tShould settle round 2 with the next height.", success)

			if st.LastObservedHeight() != 101 {
				t.Fatalf("\t%s\tTest 4:\tShould advance the height watermark.", failed)
			}
			t.Logf("\t%s\tTest 4:\tShould advance the height watermark.", success)
		}
	}
}

func Test_LockTimeout(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), "rounds.db")
	st, _, registry := newTestState(t, historyPath)
	defer st.Shutdown()

	p1 := registry.Join("", "alice")

	t.Log("Given the need to void a round when no observation arrives.")
	{
		t.Log("\tTest 0:\tWhen the lock timeout fires for the open round.")
		{
			st.StartRounds()

			if _, err := st.SubmitPrediction(p1.ID, 1, 1000); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept a prediction before the timeout: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept a prediction before the timeout.", success)

			st.ProcessLockTimeout(1)

			current := st.CurrentRound()
			if current.State != round.StateReset || !current.Voided {
				t.Fatalf("\t%s\tTest 0:\tShould void and reset the round: state %s voided %v", failed, current.State, current.Voided)
			}
			t.Logf("\t%s\tTest 0:\tShould void and reset the round.", success)

			if len(st.Leaderboard()) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould leave the leaderboard untouched.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the leaderboard untouched.", success)

			if st.SettledRounds() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould record the voided outcome.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould record the voided outcome.", success)
		}

		t.Log("\tTest 1:\tWhen a stale timeout fires for a finished round.")
		{
			st.OpenNextRound(1)

			st.ProcessLockTimeout(1)

			current := st.CurrentRound()
			if current.Sequence != 2 || current.State != round.StateOpen {
				t.Fatalf("\t%s\tTest 1:\tShould ignore the stale timeout.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould ignore the stale timeout.", success)
		}
	}
}

func Test_Snapshot(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), "rounds.db")
	st, _, registry := newTestState(t, historyPath)
	defer st.Shutdown()

	p1 := registry.Join("", "alice")

	t.Log("Given the need to produce a self-consistent snapshot.")
	{
		t.Log("\tTest 0:\tWhen taking a snapshot of an open round.")
		{
			st.StartRounds()

			if _, err := st.SubmitPrediction(p1.ID, 1, 1000); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept a prediction: %v", failed, err)
			}

			snap := st.Snapshot()
			if snap.CurrentRound.Sequence != 1 || snap.CurrentRound.State != round.StateOpen {
				t.Fatalf("\t%s\tTest 0:\tShould describe the open round.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould describe the open round.", success)

			if snap.CurrentRound.LockedAt != nil {
				t.Fatalf("\t%s\tTest 0:\tShould have no locked time while open.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have no locked time while open.", success)

			if snap.OpenPredictionsCount != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould count the open predictions.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould count the open predictions.", success)
		}

		t.Log("\tTest 1:\tWhen taking a snapshot after settlement.")
		{
			st.ProcessObservation(observation(100, 1000))

			snap := st.Snapshot()
			if snap.CurrentRound.State != round.StateReset {
				t.Fatalf("\t%s\tTest 1:\tShould describe the reset round.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould describe the reset round.", success)

			if snap.CurrentRound.LockedAt == nil {
				t.Fatalf("\t%s\tTest 1:\tShould carry the locked time after the lock.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould carry the locked time after the lock.", success)

			if len(snap.LeaderboardTopN) != 1 || snap.LeaderboardTopN[0].Name != "alice" {
				t.Fatalf("\t%s\tTest 1:\tShould resolve leaderboard display names.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould resolve leaderboard display names.", success)
		}
	}
}

func Test_RestartRecovery(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), "rounds.db")

	t.Log("Given the need to continue the sequence after a restart.")
	{
		t.Log("\tTest 0:\tWhen settling rounds and restarting the engine.")
		{
			st, _, registry := newTestState(t, historyPath)
			p1 := registry.Join("", "alice")

			st.StartRounds()
			if _, err := st.SubmitPrediction(p1.ID, 1, 1000); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept a prediction: %v", failed, err)
			}
			st.ProcessObservation(observation(100, 1000))
			st.OpenNextRound(1)
			st.ProcessObservation(observation(101, 2000))

			if err := st.Shutdown(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould shut the engine down: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould shut the engine down.", success)

			st2, _, _ := newTestState(t, historyPath)
			defer st2.Shutdown()

			st2.StartRounds()

			current := st2.CurrentRound()
			if current.Sequence != 3 || current.State != round.StateOpen {
				t.Logf("\t%s\tTest 0:\tgot: seq %d state %s", failed, current.Sequence, current.State)
				t.Fatalf("\t%s\tTest 0:\tShould open the next unused sequence.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould open the next unused sequence.", success)

			if st2.SettledRounds() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould count the recovered outcomes.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould count the recovered outcomes.", success)
		}
	}
}
