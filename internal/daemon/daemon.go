package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/twinlab/twin/internal/api"
	"github.com/twinlab/twin/internal/domain"
	"github.com/twinlab/twin/internal/health"
	_ "github.com/twinlab/twin/internal/infra/metrics" // Register Prometheus metrics
	"github.com/twinlab/twin/internal/infra/sqlite"
	"github.com/twinlab/twin/internal/persist"
	"github.com/twinlab/twin/internal/suggest"
)

// Daemon is the core Twin runtime. It wires together all services.
type Daemon struct {
	Config  Config
	DB      *sqlite.DB
	Store   *persist.Service
	Session *persist.Session
	Suggest *suggest.Client
	Server  *api.Server
	Health  *health.Checker
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	// Open SQLite
	db, err := sqlite.Open(twinHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Remote blob store client (nil when no remote is configured)
	remote := persist.NewClient(cfg.Remote.URL, parseDuration(cfg.Remote.Timeout, 10*time.Second))

	store := persist.NewService(db, remote)
	session := persist.NewSession(store, parseDuration(cfg.App.SaveDebounce, persist.DefaultDebounce))

	// Suggestion client (nil when no endpoint is configured)
	var sg *suggest.Client
	if cfg.Suggest.URL != "" {
		apiKey := os.Getenv(cfg.Suggest.APIKeyEnv)
		sg = suggest.NewClient(cfg.Suggest.URL, cfg.Suggest.Model, apiKey,
			parseDuration(cfg.Suggest.Timeout, 30*time.Second))
	}

	// Health checker
	hc := health.NewChecker(db, cfg.Remote.URL)

	// API server
	srv := api.NewServer(session, store, sg)
	srv.SetHealthChecker(hc)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	d := &Daemon{
		Config:  cfg,
		DB:      db,
		Store:   store,
		Session: session,
		Suggest: sg,
		Server:  srv,
		Health:  hc,
	}

	// Resume the previous session if one is stored
	if data, err := store.GetSession(context.Background()); err == nil {
		session.Start(data.Username, data.State)
		if data.Offline {
			log.Printf("[daemon] resumed session for %s from local cache (offline)", data.Username)
		} else {
			log.Printf("[daemon] resumed session for %s", data.Username)
		}
	} else if !errors.Is(err, domain.ErrNotAuthenticated) {
		log.Printf("[daemon] session resume failed: %v", err)
	}

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health checker (always runs)
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // Long for plan generation
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Flush any pending state before closing
		d.Session.Flush()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Twin serving on http://%s\n", addr)
	if d.Config.Remote.URL != "" {
		fmt.Printf("  Remote store: %s\n", d.Config.Remote.URL)
	}
	if d.Suggest != nil {
		fmt.Printf("  Suggestions: %s (%s)\n", d.Config.Suggest.URL, d.Config.Suggest.Model)
	}
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Session != nil {
		d.Session.Flush()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
