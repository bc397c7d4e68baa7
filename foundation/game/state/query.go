package state

import (
	"github.com/txroyale/engine/foundation/game/broadcast"
	"github.com/txroyale/engine/foundation/game/round"
)

// Snapshot returns a self-consistent view of the engine reflecting state at
// the moment of the call. A reconnecting client applies this first and then
// follows the incremental event stream, re-requesting a snapshot when it
// detects a sequence gap.
func (s *State) Snapshot() broadcast.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := broadcast.CurrentRound{
		Sequence: s.current.Sequence,
		State:    s.current.State,
		OpenedAt: s.current.OpenedAt,
	}
	if !s.current.LockedAt.IsZero() {
		lockedAt := s.current.LockedAt
		current.LockedAt = &lockedAt
	}

	return broadcast.Snapshot{
		CurrentRound:         current,
		OpenPredictionsCount: s.ledger.Count(),
		LeaderboardTopN:      s.topEntries(),
	}
}

// Leaderboard returns the current top N display rows.
func (s *State) Leaderboard() []broadcast.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.topEntries()
}

// CurrentRound returns a copy of the round currently in progress.
func (s *State) CurrentRound() round.Round {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// PredictionCount returns the number of predictions in the open ledger.
func (s *State) PredictionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Count()
}

// LastObservedHeight returns the height watermark of the latest observation
// applied to a round.
func (s *State) LastObservedHeight() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastHeight
}

// SettledRounds returns the number of settled rounds on record.
func (s *State) SettledRounds() int {
	return s.history.Count()
}
