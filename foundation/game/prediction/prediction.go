// Package prediction maintains the ledger of guesses for the current round.
package prediction

import (
	"errors"
	"sync"
	"time"
)

// Set of error variables for submit failures.
var (
	ErrInvalidValue        = errors.New("value must be a positive number inside the configured range")
	ErrDuplicateSubmission = errors.New("participant already submitted a prediction for this round")
	ErrRoundNotOpen        = errors.New("round is not open for predictions")
)

// Prediction represents one accepted guess. Predictions are immutable once
// created.
type Prediction struct {
	ParticipantID string
	Sequence      uint64
	Value         uint
	SubmittedAt   time.Time
}

// Ledger represents a cache of predictions for the round currently accepting
// guesses, organized by participant id.
type Ledger struct {
	pool     map[string]Prediction
	sequence uint64
	maxValue uint
	mu       sync.RWMutex
}

// New constructs a ledger that accepts values in the range [1, maxValue].
func New(maxValue uint) *Ledger {
	return &Ledger{
		pool:     make(map[string]Prediction),
		maxValue: maxValue,
	}
}

// Reset clears all predictions and binds the ledger to the specified round
// sequence. This is called when a new round opens.
func (lg *Ledger) Reset(sequence uint64) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	lg.pool = make(map[string]Prediction)
	lg.sequence = sequence
}

// Submit validates and stores a prediction. The first accepted value for a
// participant is retained; later attempts fail with ErrDuplicateSubmission.
func (lg *Ledger) Submit(participantID string, sequence uint64, value uint, submittedAt time.Time) (Prediction, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if sequence != lg.sequence {
		return Prediction{}, ErrRoundNotOpen
	}

	if value == 0 || value > lg.maxValue {
		return Prediction{}, ErrInvalidValue
	}

	if _, exists := lg.pool[participantID]; exists {
		return Prediction{}, ErrDuplicateSubmission
	}

	p := Prediction{
		ParticipantID: participantID,
		Sequence:      sequence,
		Value:         value,
		SubmittedAt:   submittedAt,
	}
	lg.pool[participantID] = p

	return p, nil
}

// Count returns the current number of predictions in the ledger.
func (lg *Ledger) Count() int {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	return len(lg.pool)
}

// Snapshot returns a copy of the predictions for the specified round. The
// copy is safe to score while the ledger is reset for the next round. An
// empty slice is returned when the sequence doesn't match the ledger.
func (lg *Ledger) Snapshot(sequence uint64) []Prediction {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	if sequence != lg.sequence {
		return nil
	}

	predictions := make([]Prediction, 0, len(lg.pool))
	for _, p := range lg.pool {
		predictions = append(predictions, p)
	}

	return predictions
}
