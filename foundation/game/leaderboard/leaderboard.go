// Package leaderboard accumulates per-participant win statistics across
// settled rounds.
package leaderboard

import (
	"sort"
	"sync"

	"github.com/txroyale/engine/foundation/game/scoring"
)

// Entry represents the cumulative statistics for one participant.
type Entry struct {
	ParticipantID string
	Wins          int
	CurrentStreak int
	RoundsPlayed  int
}

// Aggregator applies round results to the cumulative statistics exactly once
// per round sequence. The last applied sequence acts as a monotonically
// advancing watermark so replayed settlements are absorbed.
type Aggregator struct {
	entries     map[string]*Entry
	lastApplied uint64
	mu          sync.RWMutex
}

// New constructs an aggregator. The watermark seeds the last applied round
// sequence; pass the latest settled sequence when recovering from history or
// zero for a fresh leaderboard.
func New(watermark uint64) *Aggregator {
	return &Aggregator{
		entries:     make(map[string]*Entry),
		lastApplied: watermark,
	}
}

// Apply mutates the leaderboard with the result of the specified round. It
// reports false without mutating anything when the sequence was already
// applied. A result without a winner advances the watermark but leaves every
// entry unchanged.
func (agg *Aggregator) Apply(sequence uint64, result scoring.Result) bool {
	agg.mu.Lock()
	defer agg.mu.Unlock()

	if sequence <= agg.lastApplied {
		return false
	}
	agg.lastApplied = sequence

	if !result.HasWinner() {
		return true
	}

	for _, ranked := range result.Ranking {
		entry, exists := agg.entries[ranked.ParticipantID]
		if !exists {
			entry = &Entry{ParticipantID: ranked.ParticipantID}
			agg.entries[ranked.ParticipantID] = entry
		}

		entry.RoundsPlayed++

		if ranked.ParticipantID == result.WinnerID {
			entry.Wins++
			entry.CurrentStreak++
			continue
		}
		entry.CurrentStreak = 0
	}

	return true
}

// LastApplied returns the watermark of the latest applied round sequence.
func (agg *Aggregator) LastApplied() uint64 {
	agg.mu.RLock()
	defer agg.mu.RUnlock()

	return agg.lastApplied
}

// TopN returns up to n entries sorted by wins descending, ties broken by the
// current streak descending, then by the fewest rounds played, then by the
// participant id so the ordering is fully deterministic for display.
func (agg *Aggregator) TopN(n int) []Entry {
	agg.mu.RLock()

	entries := make([]Entry, 0, len(agg.entries))
	for _, entry := range agg.entries {
		entries = append(entries, *entry)
	}

	agg.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		if entries[i].CurrentStreak != entries[j].CurrentStreak {
			return entries[i].CurrentStreak > entries[j].CurrentStreak
		}
		if entries[i].RoundsPlayed != entries[j].RoundsPlayed {
			return entries[i].RoundsPlayed < entries[j].RoundsPlayed
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})

	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}

	return entries
}
