//go:build wireinject
// +build wireinject

package mcp

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/jobboard-client/internal/application"
	"github.com/honeycarbs/jobboard-client/internal/backend"
	"github.com/honeycarbs/jobboard-client/internal/config"
	"github.com/honeycarbs/jobboard-client/internal/interaction"
	"github.com/honeycarbs/jobboard-client/internal/search"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// InitializeResources creates Resources with all resources wired up
func InitializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	wire.Build(
		// Infrastructure - job board API
		provideAPIClient,
		provideGateway,
		wire.Bind(new(search.Fetcher), new(*backend.Gateway)),
		wire.Bind(new(interaction.Backend), new(*backend.Gateway)),
		wire.Bind(new(application.Backend), new(*backend.Gateway)),
		wire.Bind(new(application.FileStore), new(*backend.Gateway)),

		// Infrastructure - Neo4j archive
		provideNeo4jClient,
		provideJobRepository,
		provideSearchArchive,
		provideSummaryFinder,

		// Search
		provideListing,
		provideController,

		// Interactions
		provideTracker,
		provideReconciler,

		// Application
		providePolicy,
		application.NewReadiness,
		application.NewCVService,
		provideSubmitter,

		// Export
		provideDashboard,
		provideSheetsExporter,
		provideWorkbookExporter,

		newResources,
	)

	return &Resources{}, nil, nil
}
