package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/ats"
	"github.com/ternarybob/pursuit/internal/autofill"
	"github.com/ternarybob/pursuit/internal/browser"
	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/handlers"
	"github.com/ternarybob/pursuit/internal/ingest"
	"github.com/ternarybob/pursuit/internal/interfaces"
	"github.com/ternarybob/pursuit/internal/learned"
	"github.com/ternarybob/pursuit/internal/llm"
	"github.com/ternarybob/pursuit/internal/models"
	"github.com/ternarybob/pursuit/internal/pipeline"
	"github.com/ternarybob/pursuit/internal/services/docs"
	"github.com/ternarybob/pursuit/internal/services/events"
	"github.com/ternarybob/pursuit/internal/services/profiles"
	"github.com/ternarybob/pursuit/internal/services/scheduler"
	badgerstore "github.com/ternarybob/pursuit/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	Store       *pipeline.Store
	Badger      *badgerstore.BadgerDB
	Sessions    *badgerstore.SessionStorage
	OracleAudit *badgerstore.OracleAuditStorage
	Learned     *learned.DB

	// Ingestion
	Registry     *ats.Registry
	Discovery    *ats.Discovery
	Orchestrator *ingest.Orchestrator
	Scheduler    *scheduler.Service

	// Event-driven services
	EventService interfaces.EventService

	// Autofill collaborators
	Profiles *profiles.Loader
	Oracle   *llm.Oracle
	Docs     *docs.Service

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	JobsHandler      *handlers.JobsHandler
	PipelineHandler  *handlers.PipelineHandler
	CompaniesHandler *handlers.CompaniesHandler
	IngestHandler    *handlers.IngestHandler
	SessionsHandler  *handlers.SessionsHandler
	AutofillHandler  *handlers.AutofillHandler
	DocsHandler      *handlers.DocsHandler
	WSHandler        *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	// Scheduled ingestion only runs when a schedule is configured; manual
	// triggers work either way
	if cfg.Ingest.Schedule != "" {
		if err := app.Scheduler.Start(cfg.Ingest.Schedule); err != nil {
			logger.Warn().Err(err).Msg("Failed to start ingestion scheduler")
		}
	}

	logger.Info().
		Str("data_dir", cfg.Storage.DataDir).
		Bool("llm_enabled", cfg.LLM.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the pipeline store, Badger audit store, and the
// learned-answer database
func (a *App) initStorage() error {
	a.Store = pipeline.NewStore(a.Config.Storage.DataDir, &a.Config.Pipeline, a.Logger)

	db, err := badgerstore.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to open badger store: %w", err)
	}
	a.Badger = db
	a.Sessions = badgerstore.NewSessionStorage(db, a.Logger)
	a.OracleAudit = badgerstore.NewOracleAuditStorage(db, a.Logger)

	learnedDB, err := learned.NewDB(a.Config.Storage.DataDir, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open learned database: %w", err)
	}
	a.Learned = learnedDB

	a.Logger.Debug().
		Str("badger", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")
	return nil
}

// initServices initializes business services in dependency order
func (a *App) initServices() error {
	a.EventService = events.NewService(a.Logger)

	// One HTTP client shared by all ATS parsers and board discovery
	client := &http.Client{Timeout: a.Config.Ingest.RequestTimeout}

	a.Registry = ats.NewRegistry()
	parsers := []interface {
		interfaces.ATSParser
		SetRetry(attempts int, gap time.Duration)
	}{
		ats.NewGreenhouseParser(client, a.Logger),
		ats.NewLeverParser(client, a.Logger),
		ats.NewWorkdayParser(client, a.Logger),
		ats.NewAshbyParser(client, a.Logger),
		ats.NewSmartRecruitersParser(client, a.Logger),
	}
	for _, p := range parsers {
		p.SetRetry(a.Config.Ingest.RetryAttempts, a.Config.Ingest.RetryGap)
		a.Registry.Register(p)
	}
	a.Discovery = ats.NewDiscovery(client, a.Logger, a.Config.Storage.DataDir)
	a.Logger.Debug().Int("parsers", len(a.Registry.Tags())).Msg("ATS registry initialized")

	a.Orchestrator = ingest.NewOrchestrator(
		a.Store,
		a.Registry,
		a.Discovery,
		a.EventService,
		&a.Config.Ingest,
		&a.Config.Scoring,
		a.Config.Profiles.Default,
		a.Config.Storage.DataDir,
		a.Logger,
	)

	a.Scheduler = scheduler.NewService(a.runIngestion, a.Logger)

	a.Profiles = profiles.NewLoader(&a.Config.Profiles, a.Logger)

	// Oracle provider. A failed provider leaves the oracle disabled; the
	// resolver cascade still works without it.
	var provider llm.Provider
	if a.Config.LLM.Enabled {
		p, err := llm.NewProvider(context.Background(), a.Config, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("LLM provider unavailable, oracle disabled")
		} else {
			provider = p
		}
	}
	a.Oracle = llm.NewOracle(provider, a.OracleAudit, a.Config.LLM.Enabled, a.Logger)

	a.Docs = docs.NewService(&a.Config.Docs, a.Logger)

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService)
	a.JobsHandler = handlers.NewJobsHandler(a.Store, &a.Config.Scoring)
	a.PipelineHandler = handlers.NewPipelineHandler(a.Store)
	a.CompaniesHandler = handlers.NewCompaniesHandler(a.Orchestrator)
	a.IngestHandler = handlers.NewIngestHandler(a.Scheduler)
	a.SessionsHandler = handlers.NewSessionsHandler(a.Sessions, a.OracleAudit)
	a.AutofillHandler = handlers.NewAutofillHandler(a)
	a.DocsHandler = handlers.NewDocsHandler(a.Docs, a.Profiles, a.Store)
}

// runIngestion is the scheduler's work function: load the source list and
// run one full ingestion pass
func (a *App) runIngestion(ctx context.Context) error {
	sources, err := ingest.LoadSources(a.Config.Ingest.SourcesFile)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	if len(sources) == 0 {
		a.Logger.Warn().Str("file", a.Config.Ingest.SourcesFile).Msg("No enabled sources configured")
		return nil
	}
	result, err := a.Orchestrator.Run(ctx, sources)
	if err != nil {
		return err
	}
	a.Logger.Info().
		Int("companies", result.Companies).
		Int("added", result.Added).
		Int("swept", result.Swept).
		Msg("Ingestion pass complete")
	return nil
}

// RunSession launches a browser and runs one autofill session end to end.
// Each session gets its own browser and resolver; the oracle, learned
// memory, and session audit store are shared.
func (a *App) RunSession(ctx context.Context, url, profileName, jobID string) (*models.AutofillSession, error) {
	if profileName == "" {
		profileName = a.Config.Profiles.Default
	}
	profile, err := a.Profiles.Load(profileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	page, err := browser.NewPage(&a.Config.Autofill, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer page.Close()

	resolver := autofill.NewResolver(profile, a.Learned, a.Oracle, a.Config.Scoring.DemographicDecline, a.Logger)
	resolver.SetKnowledge(profiles.KnowledgeContext(a.Profiles.LoadKnowledgeBase()))

	engine := autofill.NewEngine(page, profile, resolver, a.Learned, a.EventService, a.Sessions, &a.Config.Autofill, a.Logger)
	session, _, err := engine.Run(ctx, url, profileName, jobID)
	return session, err
}

// Close closes all application resources
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}

	if a.WSHandler != nil {
		a.WSHandler.Close()
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.Badger != nil {
		if err := a.Badger.Close(); err != nil {
			return fmt.Errorf("failed to close badger store: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
