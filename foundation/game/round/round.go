// Package round defines the round data type and its lifecycle states.
package round

import "time"

// The set of states a round moves through. A round cycles open, locked,
// settling, reset and a new round is opened when the reset delay expires.
const (
	StateOpen     = "open"
	StateLocked   = "locked"
	StateSettling = "settling"
	StateReset    = "reset"
)

// Round represents one open/lock/settle/reset cycle. The sequence number is
// the sole authority for ordering and is never reused.
type Round struct {
	Sequence       uint64
	State          string
	OpenedAt       time.Time
	LockedAt       time.Time
	SettledAt      time.Time
	Voided         bool
	ObservationKey string
}

// New constructs a round in the open state.
func New(sequence uint64, now time.Time) Round {
	return Round{
		Sequence: sequence,
		State:    StateOpen,
		OpenedAt: now,
	}
}

// Lock transitions the round to the locked state, recording the key of the
// observation that triggered the lock. An empty key marks a round locked by
// the timeout with no actual value.
func (r *Round) Lock(now time.Time, observationKey string) {
	r.State = StateLocked
	r.LockedAt = now
	r.ObservationKey = observationKey
	if observationKey == "" {
		r.Voided = true
	}
}

// Settling transitions the round to the settling state.
func (r *Round) Settling() {
	r.State = StateSettling
}

// Settled transitions the round to the reset state once scoring and
// leaderboard effects have been applied.
func (r *Round) Settled(now time.Time) {
	r.State = StateReset
	r.SettledAt = now
}
