// Package public maintains the group of handlers for public game access.
package public

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/txroyale/engine/foundation/events"
	"github.com/txroyale/engine/foundation/game/participant"
	"github.com/txroyale/engine/foundation/game/state"
	"github.com/txroyale/engine/foundation/metrics"
	"github.com/txroyale/engine/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of public game endpoints.
type Handlers struct {
	Log      *zap.SugaredLogger
	State    *state.State
	Registry *participant.Registry
	Evts     *events.Events
	WS       websocket.Upgrader
}

// Join registers a participant and returns their stable identity. Sending an
// existing id refreshes the display name and keeps the identity, so a
// reconnecting client keeps its leaderboard record.
func (h Handlers) Join(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req joinRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	p := h.Registry.Join(req.ParticipantID, req.DisplayName)

	resp := joinResponse{
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitGuess records a single guess for the specified round. A rejection is
// a terminal outcome for the attempt, reported in the response body rather
// than as a transport error.
func (h Handlers) SubmitGuess(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req guessRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	p, err := h.State.SubmitPrediction(req.ParticipantID, req.Sequence, req.Value)
	if err != nil {
		resp := guessResponse{
			ParticipantID: req.ParticipantID,
			Sequence:      req.Sequence,
			Value:         req.Value,
			Accepted:      false,
			Reason:        state.Reason(err),
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	resp := guessResponse{
		ParticipantID: p.ParticipantID,
		Sequence:      p.Sequence,
		Value:         p.Value,
		SubmittedAt:   p.SubmittedAt,
		Accepted:      true,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Snapshot returns a self-consistent view of the engine for clients joining
// or recovering from a missed event.
func (h Handlers) Snapshot(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Snapshot(), http.StatusOK)
}

// Leaderboard returns the current top N standings.
func (h Handlers) Leaderboard(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		TopN any `json:"topN"`
	}{
		TopN: h.State.Leaderboard(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide the engine's event stream to
// clients. The optional participant query parameter binds the connection for
// unicast prediction results.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	v, err := web.GetValues(ctx)
	if err != nil {
		return err
	}

	// The connection is keyed by trace id and optionally bound to a
	// participant for unicast delivery.
	participantID := r.URL.Query().Get("participant")
	ch := h.Evts.Acquire(v.TraceID, participantID)
	defer h.Evts.Release(v.TraceID)

	metrics.ConnectedClients.Inc()
	defer metrics.ConnectedClients.Dec()

	h.Log.Infow("events", "traceid", v.TraceID, "participant", participantID, "status", "opened")
	defer h.Log.Infow("events", "traceid", v.TraceID, "status", "closed")

	// Send a ping message to the client for as long as this connection
	// remains open.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
