// Package private maintains the group of handlers for operator access.
package private

import (
	"context"
	"net/http"
	"time"

	"github.com/txroyale/engine/foundation/game/feed"
	"github.com/txroyale/engine/foundation/game/state"
	"github.com/txroyale/engine/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of private engine endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current engine state for operators.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	current := h.State.CurrentRound()

	resp := struct {
		Sequence           uint64 `json:"sequence"`
		State              string `json:"state"`
		OpenPredictions    int    `json:"openPredictions"`
		SettledRounds      int    `json:"settledRounds"`
		LastObservedHeight uint64 `json:"lastObservedHeight"`
	}{
		Sequence:           current.Sequence,
		State:              current.State,
		OpenPredictions:    h.State.PredictionCount(),
		SettledRounds:      h.State.SettledRounds(),
		LastObservedHeight: h.State.LastObservedHeight(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitObservation injects an observation directly, bypassing the upstream
// feed. Used for operational recovery and local testing. The engine applies
// the same staleness rules as feed delivered observations.
func (h Handlers) SubmitObservation(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Key     string `json:"key" validate:"required"`
		Height  uint64 `json:"height" validate:"required"`
		TxCount uint   `json:"txCount" validate:"required"`
	}
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	h.State.ProcessObservation(feed.Observation{
		Key:         req.Key,
		Height:      req.Height,
		ActualValue: req.TxCount,
		ObservedAt:  time.Now().UTC(),
	})

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "observation processed",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
