package state

import (
	"time"

	"github.com/txroyale/engine/foundation/game/broadcast"
	"github.com/txroyale/engine/foundation/game/feed"
	"github.com/txroyale/engine/foundation/game/history"
	"github.com/txroyale/engine/foundation/game/round"
	"github.com/txroyale/engine/foundation/game/scoring"
	"github.com/txroyale/engine/foundation/metrics"
)

// StartRounds opens the first round. This is called once by the worker after
// its goroutines are up and running.
func (s *State) StartRounds() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.openRound()
}

// OpenNextRound transitions from the reset state to a newly opened round.
// The worker signals this when the reset delay for the specified round
// sequence expires.
func (s *State) OpenNextRound(sequence uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.State != round.StateReset || s.current.Sequence != sequence {
		return
	}

	s.openRound()
}

// ProcessObservation locks and settles the current round with the actual
// observed value. Observations for an already locked round, duplicates and
// out of order deliveries are discarded. They are expected consequences of
// an at-least-once feed, not failures.
func (s *State) ProcessObservation(obs feed.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if obs.Height <= s.lastHeight {
		s.evHandler("state: ProcessObservation: STALE: height[%d] key[%s]", obs.Height, obs.Key)
		metrics.ObservationsDiscarded.Inc()
		return
	}

	if s.current.State != round.StateOpen {
		s.evHandler("state: ProcessObservation: round not open: sequence[%d] state[%s] key[%s]",
			s.current.Sequence, s.current.State, obs.Key)
		metrics.ObservationsDiscarded.Inc()
		return
	}

	s.lastHeight = obs.Height

	now := time.Now().UTC()
	s.current.Lock(now, obs.Key)
	actual := obs.ActualValue
	s.actual = &actual

	s.evHandler("state: ProcessObservation: LOCKED: sequence[%d] height[%d] actual[%d]",
		s.current.Sequence, obs.Height, obs.ActualValue)

	s.broadcaster.RoundLocked(broadcast.RoundLocked{
		Sequence: s.current.Sequence,
		LockedAt: now,
	})

	s.settle()
}

// ProcessLockTimeout voids the round when no observation arrived within the
// configured maximum wait. The sequence guards against a stale timer firing
// for a round that already moved on.
func (s *State) ProcessLockTimeout(sequence uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Sequence != sequence || s.current.State != round.StateOpen {
		return
	}

	s.evHandler("state: ProcessLockTimeout: VOID: sequence[%d]", sequence)
	metrics.RoundsVoided.Inc()

	now := time.Now().UTC()
	s.current.Lock(now, "")

	s.broadcaster.RoundLocked(broadcast.RoundLocked{
		Sequence: s.current.Sequence,
		LockedAt: now,
	})

	s.settle()
}

// =============================================================================

// openRound allocates the next round and arms the lock timer. The mutex must
// be held by the caller.
func (s *State) openRound() {
	sequence := s.nextSequence
	s.nextSequence++

	now := time.Now().UTC()
	s.current = round.New(sequence, now)
	s.actual = nil
	s.ledger.Reset(sequence)

	s.evHandler("state: openRound: OPEN: sequence[%d]", sequence)

	s.broadcaster.RoundOpened(broadcast.RoundOpen{
		Sequence: sequence,
		OpenedAt: now,
	})

	s.Worker.SignalLockTimer(sequence)
}

// settle scores the locked round, applies the leaderboard effects exactly
// once and moves the round to the reset state. The mutex must be held by the
// caller. A fault in scoring or aggregation is logged and the round is
// forced to reset so the engine self-heals within one round.
func (s *State) settle() {
	sequence := s.current.Sequence
	s.current.Settling()

	// Scoring and aggregation run inside a recover so a fault on malformed
	// input can never leave the round stuck in settling.
	var result scoring.Result
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.evHandler("state: settle: PANIC: sequence[%d]: %v", sequence, rec)
				result = scoring.Result{}
			}
		}()

		if s.actual != nil && !s.current.Voided {
			predictions := s.ledger.Snapshot(sequence)
			guesses := make([]scoring.Guess, len(predictions))
			for i, p := range predictions {
				guesses[i] = scoring.Guess{
					ParticipantID: p.ParticipantID,
					Value:         p.Value,
					SubmittedAt:   p.SubmittedAt,
				}
			}
			result = scoring.Compute(guesses, *s.actual)
		}
	}()

	// The watermark makes a replayed settlement a no-op.
	if !s.leaderboard.Apply(sequence, result) {
		s.evHandler("state: settle: already applied: sequence[%d]", sequence)
	}

	// Build the settled payload for display. Actual value and winner are
	// null for a voided or guessless round.
	settled := broadcast.RoundSettled{
		Sequence: sequence,
		Ranking:  make([]broadcast.RankedGuess, len(result.Ranking)),
	}
	if s.actual != nil && !s.current.Voided {
		settled.ActualValue = s.actual
	}
	if result.HasWinner() {
		winnerID := result.WinnerID
		settled.WinnerID = &winnerID
	}
	for i, ranked := range result.Ranking {
		settled.Ranking[i] = broadcast.RankedGuess{
			ParticipantID: ranked.ParticipantID,
			Name:          s.registry.Name(ranked.ParticipantID),
			Value:         ranked.Value,
			Difference:    ranked.Difference,
		}
	}

	s.broadcaster.RoundSettled(settled)
	s.broadcaster.LeaderboardUpdated(broadcast.LeaderboardUpdate{
		TopN: s.topEntries(),
	})

	// Record the outcome row. A write failure costs restart recovery, not
	// the round cycle.
	outcome := history.Outcome{
		Sequence:  sequence,
		Voided:    s.current.Voided,
		WinnerID:  result.WinnerID,
		Guesses:   len(result.Ranking),
		SettledAt: time.Now().UTC(),
	}
	if s.actual != nil {
		outcome.ActualValue = *s.actual
	}
	if err := s.history.Add(outcome); err != nil {
		s.evHandler("state: settle: history: ERROR: %s", err)
	}

	metrics.RoundsSettled.Inc()

	now := time.Now().UTC()
	s.current.Settled(now)

	s.evHandler("state: settle: RESET: sequence[%d] winner[%s]", sequence, result.WinnerID)

	s.Worker.SignalReset(sequence)
}

// topEntries returns the leaderboard display rows for the configured top N.
func (s *State) topEntries() []broadcast.LeaderboardEntry {
	top := s.leaderboard.TopN(s.topN)

	entries := make([]broadcast.LeaderboardEntry, len(top))
	for i, entry := range top {
		entries[i] = broadcast.LeaderboardEntry{
			ParticipantID: entry.ParticipantID,
			Name:          s.registry.Name(entry.ParticipantID),
			Wins:          entry.Wins,
			CurrentStreak: entry.CurrentStreak,
			RoundsPlayed:  entry.RoundsPlayed,
		}
	}

	return entries
}
