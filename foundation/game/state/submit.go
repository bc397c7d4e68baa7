package state

import (
	"errors"
	"time"

	"github.com/txroyale/engine/foundation/game/broadcast"
	"github.com/txroyale/engine/foundation/game/prediction"
	"github.com/txroyale/engine/foundation/game/round"
	"github.com/txroyale/engine/foundation/metrics"
)

// SubmitPrediction validates and records a guess for the specified round. The
// submitted time is assigned from the server clock at the moment the request
// passes the serialization point, so every accepted prediction is strictly
// before the round's lock transition. Rejection is terminal for the attempt
// and never affects other participants or round state.
func (s *State) SubmitPrediction(participantID string, sequence uint64, value uint) (prediction.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Exists(participantID) {
		s.reject(participantID, sequence, value, ErrUnknownParticipant)
		return prediction.Prediction{}, ErrUnknownParticipant
	}

	if s.current.State != round.StateOpen || s.current.Sequence != sequence {
		s.reject(participantID, sequence, value, prediction.ErrRoundNotOpen)
		return prediction.Prediction{}, prediction.ErrRoundNotOpen
	}

	p, err := s.ledger.Submit(participantID, sequence, value, time.Now().UTC())
	if err != nil {
		s.reject(participantID, sequence, value, err)
		return prediction.Prediction{}, err
	}

	s.evHandler("state: SubmitPrediction: ACCEPTED: sequence[%d] participant[%s] value[%d]",
		sequence, participantID, value)
	metrics.PredictionsAccepted.Inc()

	s.broadcaster.PredictionResult(participantID, broadcast.PredictionResult{
		Sequence: sequence,
		Value:    value,
		Accepted: true,
	})

	return p, nil
}

// reject records the rejection and unicasts the outcome to the submitter.
// The mutex must be held by the caller.
func (s *State) reject(participantID string, sequence uint64, value uint, err error) {
	reason := Reason(err)

	s.evHandler("state: SubmitPrediction: REJECTED: sequence[%d] participant[%s] reason[%s]",
		sequence, participantID, reason)
	metrics.PredictionsRejected.WithLabelValues(reason).Inc()

	s.broadcaster.PredictionResult(participantID, broadcast.PredictionResult{
		Sequence: sequence,
		Value:    value,
		Accepted: false,
		Reason:   reason,
	})
}

// Reason converts a submission error into the stable reason token carried in
// the prediction_result payload.
func Reason(err error) string {
	switch {
	case errors.Is(err, prediction.ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, prediction.ErrDuplicateSubmission):
		return "duplicate_submission"
	case errors.Is(err, prediction.ErrRoundNotOpen):
		return "round_not_open"
	case errors.Is(err, ErrUnknownParticipant):
		return "unknown_participant"
	}

	return "rejected"
}
