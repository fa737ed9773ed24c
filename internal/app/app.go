package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kotlens/kotlens/internal/config"
	"github.com/kotlens/kotlens/internal/database"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	pool   *pgxpool.Pool
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	pool, deps, err := Bootstrap(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Middleware chain
	SetupMiddleware(r, deps, cfg)

	// Routes
	RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Handler: r,
		Addr:    cfg.Server.Addr,
		// the analysis fetches up to twelve months upstream
		WriteTimeout: 2 * time.Minute,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, pool: pool, router: r, srv: srv}, nil
}

// Bootstrap opens and migrates the database when enabled and builds the
// dependencies on top of it. The returned pool is nil without a database.
func Bootstrap(ctx context.Context, cfg config.Application) (*pgxpool.Pool, *Dependencies, error) {
	var pool *pgxpool.Pool
	if cfg.Database.Enabled {
		var err error
		if pool, err = database.Open(ctx, cfg.Database); err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(cfg.Database); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	deps, err := BuildDependencies(ctx, cfg, pool)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, nil, err
	}
	return pool, deps, nil
}

func (a *Application) Router() http.Handler {
	return a.router
}

// Run starts the HTTP server and the digest scheduler and blocks until ctx is
// cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if a.cfg.Schedule.Enabled {
		scheduler, err := a.deps.NewScheduler(a.cfg.Schedule)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		log.Info("Digest scheduler disabled")
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.srv.Shutdown(shutdownCtx)
}

func (a *Application) close() {
	a.deps.Close()
	if a.pool != nil {
		a.pool.Close()
	}
}
