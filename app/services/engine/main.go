package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/txroyale/engine/app/services/engine/handlers"
	"github.com/txroyale/engine/foundation/events"
	"github.com/txroyale/engine/foundation/game/broadcast"
	"github.com/txroyale/engine/foundation/game/feed"
	"github.com/txroyale/engine/foundation/game/participant"
	"github.com/txroyale/engine/foundation/game/state"
	"github.com/txroyale/engine/foundation/game/worker"
	"github.com/txroyale/engine/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ENGINE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
		}
		Game struct {
			MaxGuessValue uint          `conf:"default:100000"`
			LockWait      time.Duration `conf:"default:20m"`
			ResetDelay    time.Duration `conf:"default:8s"`
			TopN          int           `conf:"default:50"`
			HistoryPath   string        `conf:"default:zarena/rounds.db"`
		}
		Feed struct {
			URL           string        `conf:"default:wss://mempool.space/api/v1/ws"`
			ReconnectWait time.Duration `conf:"default:5s"`
			Disable       bool          `conf:"default:false"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "ENGINE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(` _______  __  ____   _____   _____   _        _     _____ `)
	fmt.Println(`|__   __| \ \/ /    |  __ \ / ___ \ | |      / \   |  ___|`)
	fmt.Println(`   | |     \  /     | |__) | |   | || |     / _ \  | |__  `)
	fmt.Println(`   | |     /  \     |  _  /| |   | || |    / ___ \ |  __| `)
	fmt.Println(`   |_|    /_/\_\    |_| \_\ \_____/ |_|___/_/   \_\|_____|`)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Game Engine Support

	// The registry keeps the stable identity of every participant who joined.
	// Identity survives disconnects so players keep their standings.
	registry := participant.NewRegistry()

	// The game packages accept a function of this signature to allow the
	// application to log. These raw messages go to the application logs only;
	// clients receive typed envelopes through the broadcaster.
	evts := events.New()
	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...), "traceid", "00000000-0000-0000-0000-000000000000")
	}

	// The broadcaster turns lifecycle transitions into typed envelopes and
	// fans them out over the registered websocket connections.
	bcast := broadcast.New(evts, ev)

	// The state value represents the game engine and manages the round
	// lifecycle, prediction ledger and leaderboard, and provides an API for
	// application support.
	st, err := state.New(state.Config{
		MaxGuessValue: cfg.Game.MaxGuessValue,
		LockWait:      cfg.Game.LockWait,
		ResetDelay:    cfg.Game.ResetDelay,
		TopN:          cfg.Game.TopN,
		HistoryPath:   cfg.Game.HistoryPath,
		Registry:      registry,
		Broadcaster:   bcast,
		EvHandler:     ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The feed client maintains the upstream websocket delivering new block
	// observations. It can be disabled so observations arrive only through
	// the private API.
	var fd worker.Feed
	var fdClient *feed.Client
	if !cfg.Feed.Disable {
		fdClient = feed.NewClient(feed.Config{
			URL:           cfg.Feed.URL,
			ReconnectWait: cfg.Feed.ReconnectWait,
			EvHandler:     ev,
		})
		fdClient.Run()
		fd = fdClient
	}

	// The worker package implements the round timing and feed consumption
	// workflows. The worker will register itself with the state and open the
	// first round.
	worker.Run(st, fd, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		Registry: registry,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing V1 private API support")

	// Construct the mux for the private API calls.
	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
	})

	// Construct a server to service the requests against the mux.
	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Stop the upstream feed so no new observations arrive while the
		// engine winds down.
		if fdClient != nil {
			log.Infow("shutdown", "status", "shutdown upstream feed")
			fdClient.Shutdown()
		}

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
