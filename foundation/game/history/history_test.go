package history_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/txroyale/engine/foundation/game/history"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_Recovery(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rounds.db")
	settledAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Log("Given the need to recover the latest outcome after a restart.")
	{
		t.Log("\tTest 0:\tWhen writing outcomes and reopening the store.")
		{
			st, err := history.New(dbPath)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould open a new store: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould open a new store.", success)

			if _, exists := st.Latest(); exists {
				t.Fatalf("\t%s\tTest 0:\tShould have no latest outcome in a fresh store.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have no latest outcome in a fresh store.", success)

			outcomes := []history.Outcome{
				{Sequence: 1, ActualValue: 2400, WinnerID: "p1", Guesses: 2, SettledAt: settledAt},
				{Sequence: 2, Voided: true, SettledAt: settledAt.Add(time.Minute)},
				{Sequence: 3, ActualValue: 3100, WinnerID: "p2", Guesses: 1, SettledAt: settledAt.Add(2 * time.Minute)},
			}
			for _, outcome := range outcomes {
				if err := st.Add(outcome); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould append outcome %d: %v", failed, outcome.Sequence, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould append every outcome.", success)

			if err := st.Close(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould close the store: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould close the store.", success)

			st, err = history.New(dbPath)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould reopen the store: %v", failed, err)
			}
			defer st.Close()
			t.Logf("\t%s\tTest 0:\tShould reopen the store.", success)

			if st.Count() != 3 {
				t.Logf("\t%s\tTest 0:\tgot: %d", failed, st.Count())
				t.Logf("\t%s\tTest 0:\texp: %d", failed, 3)
				t.Fatalf("\t%s\tTest 0:\tShould count every persisted outcome.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould count every persisted outcome.", success)

			latest, exists := st.Latest()
			if !exists || latest.Sequence != 3 || latest.WinnerID != "p2" {
				t.Fatalf("\t%s\tTest 0:\tShould recover the latest outcome.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould recover the latest outcome.", success)
		}
	}
}
