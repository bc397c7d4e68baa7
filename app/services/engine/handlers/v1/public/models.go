package public

import "time"

type joinRequest struct {
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"name" validate:"required"`
}

type joinResponse struct {
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"name"`
}

type guessRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
	Sequence      uint64 `json:"sequence"`
	Value         uint   `json:"value" validate:"required"`
}

type guessResponse struct {
	ParticipantID string    `json:"participantId"`
	Sequence      uint64    `json:"sequence"`
	Value         uint      `json:"value"`
	SubmittedAt   time.Time `json:"submittedAt"`
	Accepted      bool      `json:"accepted"`
	Reason        string    `json:"reason,omitempty"`
}
