package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	ledgerservice "kolab/contexts/finance-core/ledger-service"
	ledgerpostgres "kolab/contexts/finance-core/ledger-service/adapters/postgres"
	ledgerworkers "kolab/contexts/finance-core/ledger-service/application/workers"
	applicationservice "kolab/contexts/fulfillment/application-service"
	applicationpostgres "kolab/contexts/fulfillment/application-service/adapters/postgres"
	applicationworkers "kolab/contexts/fulfillment/application-service/application/workers"
	settlementservice "kolab/contexts/fulfillment/settlement-service"
	submissionservice "kolab/contexts/fulfillment/submission-service"
	submissionpostgres "kolab/contexts/fulfillment/submission-service/adapters/postgres"
	submissionworkers "kolab/contexts/fulfillment/submission-service/application/workers"
	"kolab/internal/platform/auth"
	"kolab/internal/platform/config"
	"kolab/internal/platform/db"
	"kolab/internal/platform/httpserver"
	"kolab/internal/platform/messaging"
	"kolab/internal/shared/events"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type modules struct {
	ledger       ledgerservice.Module
	applications applicationservice.Module
	submissions  submissionservice.Module
	settlement   settlementservice.Module
}

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres         *db.Postgres
	bus              *messaging.Kafka
	cfg              config.Config
	ledgerRelay      ledgerworkers.OutboxRelay
	applicationRelay applicationworkers.OutboxRelay
	submissionRelay  submissionworkers.OutboxRelay
	settlement       settlementservice.Module
	pollInterval     time.Duration
	logger           *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	wired := buildModules(pg, logger)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	server := httpserver.New(
		wired.ledger,
		wired.applications,
		wired.submissions,
		wired.settlement,
		&tokens,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	wired := buildModules(pg, logger)
	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	applicationRepo := applicationpostgres.NewRepository(pg.DB, logger)
	submissionRepo := submissionpostgres.NewRepository(pg.DB, logger)

	return &WorkerApp{
		postgres: pg,
		bus:      bus,
		cfg:      cfg,
		ledgerRelay: ledgerworkers.OutboxRelay{
			Outbox:    ledgerRepo,
			Publisher: ledgerBusPublisher{bus: bus},
			Clock:     ledgerpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		applicationRelay: applicationworkers.OutboxRelay{
			Outbox:    applicationRepo,
			Publisher: applicationBusPublisher{bus: bus},
			Clock:     applicationpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		submissionRelay: submissionworkers.OutboxRelay{
			Outbox:    submissionRepo,
			Publisher: submissionBusPublisher{bus: bus},
			Clock:     submissionpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		settlement:   wired.settlement,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

// buildModules wires the four contexts once so the API and worker processes
// share the same composition.
func buildModules(pg *db.Postgres, logger *slog.Logger) modules {
	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	ledgerModule := ledgerservice.NewModule(ledgerservice.Dependencies{
		Repository: ledgerRepo,
		Outbox:     ledgerRepo,
		Clock:      ledgerpostgres.SystemClock{},
		IDGen:      ledgerpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	applicationRepo := applicationpostgres.NewRepository(pg.DB, logger)
	applicationModule := applicationservice.NewModule(applicationservice.Dependencies{
		Repository: applicationRepo,
		Campaigns:  applicationRepo,
		Outbox:     applicationRepo,
		Clock:      applicationpostgres.SystemClock{},
		IDGen:      applicationpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	submissionRepo := submissionpostgres.NewRepository(pg.DB, logger)
	submissionModule := submissionservice.NewModule(submissionservice.Dependencies{
		Repository: submissionRepo,
		Campaigns:  submissionRepo,
		Gate:       applicationModule.Queries,
		Outbox:     submissionRepo,
		Clock:      submissionpostgres.SystemClock{},
		IDGen:      submissionpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	settlementModule := settlementservice.NewModule(settlementservice.Dependencies{
		Campaigns:    settlementCampaigns{campaigns: applicationRepo},
		Submissions:  settlementSubmissions{queries: submissionModule.Queries},
		Applications: settlementApplications{lifecycle: applicationModule.Lifecycle, queries: applicationModule.Queries},
		Escrow:       settlementEscrow{ledger: ledgerModule.Service},
		Logger:       logger,
	})

	return modules{
		ledger:       ledgerModule,
		applications: applicationModule,
		submissions:  submissionModule,
		settlement:   settlementModule,
	}
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.cfg.EnableWinnerConsumer {
		if err := w.bus.Subscribe(ctx, events.TopicSubmissionWinnerDesignated, "settlement-winner-cg", w.settlement.Consumer.HandleWinnerDesignated); err != nil {
			return err
		}
	}
	if w.cfg.EnableCampaignConsumer {
		if err := w.bus.Subscribe(ctx, events.TopicCampaignCompleted, "settlement-campaign-cg", w.settlement.Consumer.HandleCampaignCompleted); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.cfg.EnableLedgerOutboxRelay {
			if err := w.ledgerRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.cfg.EnableApplicationOutboxRelay {
			if err := w.applicationRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.cfg.EnableSubmissionOutboxRelay {
			if err := w.submissionRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
