package participant_test

import (
	"errors"
	"testing"

	"github.com/txroyale/engine/foundation/game/participant"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_Join(t *testing.T) {
	t.Log("Given the need to keep a stable identity across reconnects.")
	{
		t.Log("\tTest 0:\tWhen joining without an id.")
		{
			reg := participant.NewRegistry()

			p := reg.Join("", "alice")
			if p.ID == "" {
				t.Fatalf("\t%s\tTest 0:\tShould generate an id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould generate an id.", success)

			if !reg.Exists(p.ID) {
				t.Fatalf("\t%s\tTest 0:\tShould find the participant after joining.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould find the participant after joining.", success)
		}

		t.Log("\tTest 1:\tWhen rejoining with an existing id.")
		{
			reg := participant.NewRegistry()

			p := reg.Join("", "alice")
			again := reg.Join(p.ID, "alice2")

			if again.ID != p.ID {
				t.Fatalf("\t%s\tTest 1:\tShould keep the same id.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the same id.", success)

			if reg.Name(p.ID) != "alice2" {
				t.Fatalf("\t%s\tTest 1:\tShould refresh the display name.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould refresh the display name.", success)

			if reg.Count() != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould not create a second participant.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not create a second participant.", success)
		}

		t.Log("\tTest 2:\tWhen looking up an unknown id.")
		{
			reg := participant.NewRegistry()

			if _, err := reg.Lookup("ghost"); !errors.Is(err, participant.ErrNotFound) {
				t.Fatalf("\t%s\tTest 2:\tShould return not found: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould return not found.", success)

			if name := reg.Name("ghost"); name != "ghost" {
				t.Fatalf("\t%s\tTest 2:\tShould fall back to the id as the display name.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould fall back to the id as the display name.", success)
		}
	}
}
