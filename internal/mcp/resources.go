package mcp

import (
	"context"

	"github.com/honeycarbs/jobboard-client/internal/application"
	"github.com/honeycarbs/jobboard-client/internal/backend"
	"github.com/honeycarbs/jobboard-client/internal/config"
	"github.com/honeycarbs/jobboard-client/internal/export"
	"github.com/honeycarbs/jobboard-client/internal/interaction"
	"github.com/honeycarbs/jobboard-client/internal/scheduler"
	"github.com/honeycarbs/jobboard-client/internal/search"
	storage "github.com/honeycarbs/jobboard-client/internal/storage/neo4j"
	"github.com/honeycarbs/jobboard-client/pkg/jobboard"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
	n4j "github.com/honeycarbs/jobboard-client/pkg/neo4j"
	sheetsclient "github.com/honeycarbs/jobboard-client/pkg/sheets"
)

// jobsHome is the location a fresh session starts at
const jobsHome = "/jobs"

// BuildResources wires the session and logs which optional integrations are active
func BuildResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	res, cleanup, err := InitializeResources(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		return nil, nil, err
	}

	logger.Info("job board client initialized", "api", cfg.API.BaseURL, "page_size", cfg.API.PageSize)
	if res.Neo4j != nil {
		logger.Info("Neo4j archive initialized", "uri", cfg.Neo4j.URI)
	}
	if res.Sheets.Configured() {
		logger.Info("Google Sheets export initialized")
	}

	return res, cleanup, nil
}

// provideAPIClient builds the REST client from config
func provideAPIClient(cfg config.Config) (*jobboard.Client, error) {
	return jobboard.NewClient(jobboard.Config{
		BaseURL:  cfg.API.BaseURL,
		Token:    cfg.API.Token,
		Timeout:  cfg.API.Timeout,
		PageSize: cfg.API.PageSize,
	})
}

func provideGateway(client *jobboard.Client) (*backend.Gateway, error) {
	return backend.NewGateway(client)
}

// provideNeo4jClient connects to Neo4j when configured. A nil client
// disables the archive.
func provideNeo4jClient(ctx context.Context, cfg config.Config, logger *logging.Logger) (*n4j.Client, func(), error) {
	if !cfg.Neo4jEnabled() {
		return nil, func() {}, nil
	}

	client, err := n4j.NewClient(ctx, n4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
	})
	if err != nil {
		logger.Warn("Neo4j unavailable, archive disabled", "err", err)
		return nil, func() {}, nil
	}

	cleanup := func() {
		if err := client.Shutdown(context.Background()); err != nil {
			logger.Warn("Neo4j shutdown failed", "err", err)
		}
	}
	return client, cleanup, nil
}

func provideJobRepository(ctx context.Context, client *n4j.Client, logger *logging.Logger) *storage.JobRepository {
	if client == nil {
		return nil
	}
	repo := storage.NewJobRepository(client)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Warn("Neo4j schema setup failed", "err", err)
	}
	return repo
}

func provideSearchArchive(repo *storage.JobRepository) search.Archive {
	if repo == nil {
		return nil
	}
	return repo
}

func provideSummaryFinder(repo *storage.JobRepository) export.SummaryFinder {
	if repo == nil {
		return nil
	}
	return repo
}

func provideListing(fetcher search.Fetcher, archive search.Archive, cfg config.Config, logger *logging.Logger) (*search.Listing, func(), error) {
	listing, err := search.NewListing(fetcher, search.NewFilterState(cfg.API.PageSize).Criteria(),
		search.WithArchive(archive),
		search.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return listing, listing.Close, nil
}

func provideController(listing *search.Listing, cfg config.Config, logger *logging.Logger) *search.Controller {
	return search.NewController(search.NewFilterState(cfg.API.PageSize), search.NewHistory(jobsHome), listing, logger)
}

func providePolicy(cfg config.Config) application.Policy {
	return application.DefaultPolicy(cfg.Upload.MaxFileSize)
}

func provideTracker(b interaction.Backend, logger *logging.Logger) (*interaction.Tracker, error) {
	return interaction.NewTracker(b, logger)
}

func provideSubmitter(b application.Backend, readiness *application.Readiness, tracker *interaction.Tracker, listing *search.Listing, logger *logging.Logger) (*application.Submitter, error) {
	return application.NewSubmitter(b, readiness, tracker,
		application.WithListing(listing),
		application.WithLogger(logger),
	)
}

func provideDashboard(tracker *interaction.Tracker, listing *search.Listing, archive export.SummaryFinder, logger *logging.Logger) *export.Builder {
	return export.NewBuilder(tracker, listing, archive, logger)
}

// provideSheetsExporter returns an unconfigured exporter when credentials are missing
func provideSheetsExporter(ctx context.Context, cfg config.Config, logger *logging.Logger) *export.SheetsExporter {
	if cfg.Sheets.CredentialsPath == "" {
		return export.NewSheetsExporter(nil)
	}

	client, err := sheetsclient.NewClient(ctx, sheetsclient.Config{CredentialsPath: cfg.Sheets.CredentialsPath})
	if err != nil {
		logger.Warn("Google Sheets client unavailable", "err", err)
		return export.NewSheetsExporter(nil)
	}
	return export.NewSheetsExporter(client)
}

func provideWorkbookExporter(cfg config.Config) *export.WorkbookExporter {
	return export.NewWorkbookExporter(cfg.ExportDir)
}

// provideReconciler returns nil when RECONCILE_INTERVAL disables periodic refresh
func provideReconciler(tracker *interaction.Tracker, cfg config.Config, logger *logging.Logger) (*scheduler.Reconciler, error) {
	if cfg.ReconcileInterval <= 0 {
		return nil, nil
	}
	return scheduler.NewReconciler(tracker, cfg.ReconcileInterval, cfg.API.Timeout, logger)
}

func newResources(
	ctrl *search.Controller,
	tracker *interaction.Tracker,
	readiness *application.Readiness,
	submitter *application.Submitter,
	cv *application.CVService,
	dashboard *export.Builder,
	sheets *export.SheetsExporter,
	workbook *export.WorkbookExporter,
	reconciler *scheduler.Reconciler,
	neo4jClient *n4j.Client,
) *Resources {
	return &Resources{
		Search:     ctrl,
		Tracker:    tracker,
		Readiness:  readiness,
		Submitter:  submitter,
		CV:         cv,
		Dashboard:  dashboard,
		Sheets:     sheets,
		Workbook:   workbook,
		Reconciler: reconciler,
		Neo4j:      neo4jClient,
	}
}
