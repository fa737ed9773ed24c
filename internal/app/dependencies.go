package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kotlens/kotlens/internal/config"
	"github.com/kotlens/kotlens/internal/event_bus"
	"github.com/kotlens/kotlens/internal/utils"
	"github.com/kotlens/kotlens/pkg/analysis"
	"github.com/kotlens/kotlens/pkg/auth"
	"github.com/kotlens/kotlens/pkg/digest"
	"github.com/kotlens/kotlens/pkg/digest_run"
	"github.com/kotlens/kotlens/pkg/kot"
	"github.com/kotlens/kotlens/pkg/snapshot"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Authenticator *auth.Authenticator
	AuthHandler   *auth.Handler

	KotClient  kot.Client
	KotFetcher *kot.Fetcher
	KotHandler *kot.Handler

	SnapshotRepo  snapshot.Repository
	DigestRunRepo digest_run.Repository

	AnalysisService  *analysis.ServiceImpl
	CsvRenderer      *analysis.CsvReportRendererImpl
	AnalysisHandler  *analysis.Handler
	DigestRenderer   *digest.HTMLRendererImpl
	DigestService    *digest.ServiceImpl
	DigestHandler    *digest.Handler
	DigestRunHandler *digest_run.Handler

	unsubscribe []func()
}

// BuildDependencies initializes and wires all application services and
// handlers. Without a pool, snapshots and digest runs are kept in memory.
func BuildDependencies(ctx context.Context, cfg config.Application, pool *pgxpool.Pool) (*Dependencies, error) {
	clock, err := utils.NewSystemClock(cfg.Schedule.Timezone)
	if err != nil {
		return nil, err
	}
	if cfg.Kot.APIKey == "" {
		log.Warn("KOT API key is not configured, attendance requests will fail")
	}
	client := kot.NewClient(cfg.Kot.BaseURL, cfg.Kot.APIKey, cfg.Kot.TimeoutDuration(), clock.Location())

	sender, err := digest.NewSender(ctx, cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mail transport: %w", err)
	}

	var snapshots snapshot.Repository
	var runs digest_run.Repository
	if pool != nil {
		snapshots = snapshot.NewRepository(pool)
		runs = digest_run.NewRepository(pool)
	} else {
		log.Info("Database disabled, keeping snapshots and digest runs in memory")
		snapshots = snapshot.NewMemoryRepository()
		runs = digest_run.NewMemoryRepository()
	}

	return wireDependencies(cfg, clock, client, snapshots, runs, sender)
}

func wireDependencies(
	cfg config.Application,
	clock utils.Clock,
	client kot.Client,
	snapshots snapshot.Repository,
	runs digest_run.Repository,
	sender digest.Sender,
) (*Dependencies, error) {
	deps := &Dependencies{
		Clock:         clock,
		EventBus:      event_bus.NewEventBus(),
		KotClient:     client,
		SnapshotRepo:  snapshots,
		DigestRunRepo: runs,
	}

	deps.Authenticator = auth.NewAuthenticator(cfg.Auth)
	deps.AuthHandler = auth.NewHandler(deps.Authenticator)

	deps.KotFetcher = kot.NewFetcher(client, clock)
	deps.KotHandler = kot.NewHandler(client)

	deps.AnalysisService = analysis.NewService(deps.KotFetcher, snapshots, deps.EventBus, clock)
	deps.CsvRenderer = analysis.NewCsvReportRenderer()
	deps.AnalysisHandler = analysis.NewHandler(deps.AnalysisService, deps.CsvRenderer)

	renderer, err := digest.NewHTMLRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to parse digest templates: %w", err)
	}
	deps.DigestRenderer = renderer
	deps.DigestService = digest.NewService(deps.AnalysisService, renderer, sender, deps.EventBus, clock,
		cfg.Mail.From, cfg.Mail.Recipients())
	deps.DigestHandler = digest.NewHandler(deps.DigestService)
	deps.DigestRunHandler = digest_run.NewHandler(runs)

	deps.unsubscribe = append(deps.unsubscribe,
		snapshot.Subscribe(deps.EventBus, snapshots),
		digest_run.Subscribe(deps.EventBus, runs),
	)

	return deps, nil
}

// NewScheduler builds the weekly digest scheduler in the configured timezone.
func (d *Dependencies) NewScheduler(cfg config.Schedule) (*digest.Scheduler, error) {
	loc := d.Clock.Location()
	if cfg.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			return nil, fmt.Errorf("unknown schedule timezone %q: %w", cfg.Timezone, err)
		}
	}
	return digest.NewScheduler(cfg.Cron, loc, d.DigestService)
}

func (d *Dependencies) Close() {
	for _, unsubscribe := range d.unsubscribe {
		unsubscribe()
	}
	d.unsubscribe = nil
}
