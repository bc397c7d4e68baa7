// Package scoring ranks a settled round's guesses against the observed value.
package scoring

import (
	"sort"
	"time"
)

// Guess represents the scoring input for one participant.
type Guess struct {
	ParticipantID string
	Value         uint
	SubmittedAt   time.Time
}

// Ranked represents one guess with its computed difference from the actual
// value. The ranking slice is ordered best first.
type Ranked struct {
	ParticipantID string
	Value         uint
	Difference    uint
	SubmittedAt   time.Time
}

// Result represents the outcome of scoring one round. A round with no
// guesses produces a result with an empty winner id. That is a valid,
// expected outcome and not an error.
type Result struct {
	Ranking  []Ranked
	WinnerID string
}

// HasWinner reports whether the round produced a winner.
func (r Result) HasWinner() bool {
	return r.WinnerID != ""
}

// Compute ranks the specified guesses against the actual observed value. The
// ranking is ordered by the absolute difference ascending with ties broken by
// the earlier submission time. Compute is a pure function of its inputs.
func Compute(guesses []Guess, actual uint) Result {
	if len(guesses) == 0 {
		return Result{}
	}

	ranking := make([]Ranked, len(guesses))
	for i, g := range guesses {
		ranking[i] = Ranked{
			ParticipantID: g.ParticipantID,
			Value:         g.Value,
			Difference:    difference(g.Value, actual),
			SubmittedAt:   g.SubmittedAt,
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Difference != ranking[j].Difference {
			return ranking[i].Difference < ranking[j].Difference
		}
		return ranking[i].SubmittedAt.Before(ranking[j].SubmittedAt)
	})

	return Result{
		Ranking:  ranking,
		WinnerID: ranking[0].ParticipantID,
	}
}

// difference returns the absolute difference between two unsigned values.
func difference(value uint, actual uint) uint {
	if value > actual {
		return value - actual
	}
	return actual - value
}
