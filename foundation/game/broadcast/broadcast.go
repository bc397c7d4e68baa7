// Package broadcast translates engine state changes into the typed outbound
// event envelopes distributed to connected clients.
package broadcast

import (
	"encoding/json"
	"time"

	"github.com/txroyale/engine/foundation/events"
)

// The set of event names carried in the envelope type field.
const (
	TypeRoundOpen         = "round_open"
	TypeRoundLocked       = "round_locked"
	TypeRoundSettled      = "round_settled"
	TypePredictionResult  = "prediction_result"
	TypeLeaderboardUpdate = "leaderboard_update"
)

// Envelope wraps every outbound event with its name so clients can decode
// the payload by type.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// RoundOpen is broadcast when a new round starts accepting predictions.
type RoundOpen struct {
	Sequence uint64    `json:"sequence"`
	OpenedAt time.Time `json:"openedAt"`
}

// RoundLocked is broadcast when a round stops accepting predictions.
type RoundLocked struct {
	Sequence uint64    `json:"sequence"`
	LockedAt time.Time `json:"lockedAt"`
}

// RankedGuess represents one entry of the settled ranking for display.
type RankedGuess struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Value         uint   `json:"value"`
	Difference    uint   `json:"difference"`
}

// RoundSettled is broadcast once scoring completes. ActualValue and WinnerID
// are null for a round voided by the lock timeout or settled with no guesses.
type RoundSettled struct {
	Sequence    uint64        `json:"sequence"`
	ActualValue *uint         `json:"actualValue"`
	Ranking     []RankedGuess `json:"ranking"`
	WinnerID    *string       `json:"winnerId"`
}

// PredictionResult is sent only to the submitting participant.
type PredictionResult struct {
	Sequence uint64 `json:"sequence"`
	Value    uint   `json:"value"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// LeaderboardEntry represents one row of the leaderboard for display.
type LeaderboardEntry struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Wins          int    `json:"wins"`
	CurrentStreak int    `json:"currentStreak"`
	RoundsPlayed  int    `json:"roundsPlayed"`
}

// LeaderboardUpdate is broadcast after every applied settlement.
type LeaderboardUpdate struct {
	TopN []LeaderboardEntry `json:"topN"`
}

// CurrentRound describes the in-progress round inside a snapshot.
type CurrentRound struct {
	Sequence uint64     `json:"sequence"`
	State    string     `json:"state"`
	OpenedAt time.Time  `json:"openedAt"`
	LockedAt *time.Time `json:"lockedAt,omitempty"`
}

// Snapshot is the full, self-consistent view a (re)connecting client uses to
// synchronize before applying incremental events.
type Snapshot struct {
	CurrentRound         CurrentRound       `json:"currentRound"`
	OpenPredictionsCount int                `json:"openPredictionsCount"`
	LeaderboardTopN      []LeaderboardEntry `json:"leaderboardTopN"`
}

// =============================================================================

// EventHandler defines a function that is called when a broadcast cannot be
// delivered, mirroring the logging callback the game packages share.
type EventHandler func(v string, args ...any)

// Broadcaster marshals typed events and fans them out to the registered
// connections. Emission order follows call order, so events emitted under the
// engine's serialization point reach every connection in causal order.
type Broadcaster struct {
	evts      *events.Events
	evHandler EventHandler
}

// New constructs a broadcaster over the specified events registry.
func New(evts *events.Events, evHandler EventHandler) *Broadcaster {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Broadcaster{
		evts:      evts,
		evHandler: ev,
	}
}

// RoundOpened broadcasts the round_open event.
func (bc *Broadcaster) RoundOpened(payload RoundOpen) {
	bc.send(TypeRoundOpen, payload)
}

// RoundLocked broadcasts the round_locked event.
func (bc *Broadcaster) RoundLocked(payload RoundLocked) {
	bc.send(TypeRoundLocked, payload)
}

// RoundSettled broadcasts the round_settled event.
func (bc *Broadcaster) RoundSettled(payload RoundSettled) {
	bc.send(TypeRoundSettled, payload)
}

// LeaderboardUpdated broadcasts the leaderboard_update event.
func (bc *Broadcaster) LeaderboardUpdated(payload LeaderboardUpdate) {
	bc.send(TypeLeaderboardUpdate, payload)
}

// PredictionResult unicasts the submission outcome to the connections owned
// by the submitting participant.
func (bc *Broadcaster) PredictionResult(participantID string, payload PredictionResult) {
	data, err := json.Marshal(Envelope{Type: TypePredictionResult, Payload: payload})
	if err != nil {
		bc.evHandler("broadcast: PredictionResult: ERROR: %s", err)
		return
	}

	bc.evts.SendTo(participantID, data)
}

// send marshals the envelope and fans it out to every connection.
func (bc *Broadcaster) send(eventType string, payload any) {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	if err != nil {
		bc.evHandler("broadcast: send: type[%s]: ERROR: %s", eventType, err)
		return
	}

	bc.evts.Send(data)
}
