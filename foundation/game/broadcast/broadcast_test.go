package broadcast_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/txroyale/engine/foundation/events"
	"github.com/txroyale/engine/foundation/game/broadcast"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_Envelopes(t *testing.T) {
	t.Log("Given the need to deliver typed envelopes to connections.")
	{
		t.Log("\tTest 0:\tWhen broadcasting a round open event.")
		{
			evts := events.New()
			ch := evts.Acquire("conn1", "")

			bc := broadcast.New(evts, nil)
			bc.RoundOpened(broadcast.RoundOpen{Sequence: 7, OpenedAt: time.Now().UTC()})

			var msg []byte
			select {
			case msg = <-ch:
			default:
				t.Fatalf("\t%s\tTest 0:\tShould deliver the event.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould deliver the event.", success)

			var env struct {
				Type    string `json:"type"`
				Payload struct {
					Sequence uint64 `json:"sequence"`
				} `json:"payload"`
			}
			if err := json.Unmarshal(msg, &env); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould decode the envelope: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould decode the envelope.", success)

			if env.Type != broadcast.TypeRoundOpen || env.Payload.Sequence != 7 {
				t.Fatalf("\t%s\tTest 0:\tShould carry the event type and payload.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould carry the event type and payload.", success)
		}

		t.Log("\tTest 1:\tWhen unicasting a prediction result.")
		{
			evts := events.New()
			owned := evts.Acquire("conn1", "p1")
			other := evts.Acquire("conn2", "p2")

			bc := broadcast.New(evts, nil)
			bc.PredictionResult("p1", broadcast.PredictionResult{Sequence: 3, Value: 900, Accepted: false, Reason: "duplicate_submission"})

			select {
			case msg := <-owned:
				var env struct {
					Type    string `json:"type"`
					Payload struct {
						Accepted bool   `json:"accepted"`
						Reason   string `json:"reason"`
					} `json:"payload"`
				}
				if err := json.Unmarshal(msg, &env); err != nil {
					t.Fatalf("\t%s\tTest 1:\tShould decode the envelope: %v", failed, err)
				}
				if env.Type != broadcast.TypePredictionResult || env.Payload.Accepted || env.Payload.Reason != "duplicate_submission" {
					t.Fatalf("\t%s\tTest 1:\tShould carry the rejection outcome.", failed)
				}
			default:
				t.Fatalf("\t%s\tTest 1:\tShould deliver to the submitting participant.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould deliver to the submitting participant.", success)

			select {
			case <-other:
				t.Fatalf("\t%s\tTest 1:\tShould not deliver to other participants.", failed)
			default:
			}
			t.Logf("\t%s\tTest 1:\tShould not deliver to other participants.", success)
		}
	}
}
