// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/txroyale/engine/app/services/engine/handlers/v1/private"
	"github.com/txroyale/engine/app/services/engine/handlers/v1/public"
	"github.com/txroyale/engine/foundation/events"
	"github.com/txroyale/engine/foundation/game/participant"
	"github.com/txroyale/engine/foundation/game/state"
	"github.com/txroyale/engine/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log      *zap.SugaredLogger
	State    *state.State
	Registry *participant.Registry
	Evts     *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:      cfg.Log,
		State:    cfg.State,
		Registry: cfg.Registry,
		Evts:     cfg.Evts,
	}

	app.Handle(http.MethodPost, version, "/game/join", pbl.Join)
	app.Handle(http.MethodPost, version, "/game/guess", pbl.SubmitGuess)
	app.Handle(http.MethodGet, version, "/game/snapshot", pbl.Snapshot)
	app.Handle(http.MethodGet, version, "/game/leaderboard", pbl.Leaderboard)
	app.Handle(http.MethodGet, version, "/game/events", pbl.Events)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/engine/status", prv.Status)
	app.Handle(http.MethodPost, version, "/engine/observation", prv.SubmitObservation)
}
