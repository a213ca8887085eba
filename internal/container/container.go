package container

import (
	"context"
	"fmt"

	"gotally/adapters/blobstore"
	"gotally/adapters/codec"
	"gotally/adapters/coercer"
	"gotally/adapters/excel"
	"gotally/adapters/postgres"
	"gotally/adapters/sqlite"
	"gotally/app"
	"gotally/internal"
	"gotally/internal/config"
	"gotally/internal/errors"
	"gotally/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Store ports.BlobStore
	Codec *codec.Codec

	// Repositories (data access layer)
	DatasetRepo   ports.DatasetRepository
	SelectionRepo ports.SelectionRepository

	// Application services
	Datasets      *app.DatasetService
	Configuration *app.ConfigurationService
	Dashboard     *app.DashboardService
	Analysis      *app.AnalysisService
	Query         *app.QueryService
}

// New creates a new dependency injection container and opens the blob store
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	policy, err := coercer.ByName(cfg.Data.CoercionPolicy)
	if err != nil {
		return nil, errors.InvalidInput("invalid coercion policy", err)
	}

	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	logger.Info("[Container] Blob store ready (backend=%s, compression=%t)", cfg.Storage.Backend, cfg.Storage.Compression)

	c := &Container{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Codec:  codec.New(cfg.Storage.Compression),
	}
	c.DatasetRepo = codec.NewDatasetRepository(store, c.Codec)
	c.SelectionRepo = codec.NewSelectionRepository(store, c.Codec)

	c.Datasets = app.NewDatasetService(excel.NewDataReader(logger), c.DatasetRepo, cfg.Data.PreviewRows, logger)
	c.Configuration = app.NewConfigurationService(c.SelectionRepo, policy, logger)
	c.Dashboard = app.NewDashboardService(c.Configuration, logger)
	c.Analysis = app.NewAnalysisService(logger)
	c.Query = app.NewQueryService()

	return c, nil
}

// OpenStore opens the blob store selected by the storage config
func OpenStore(ctx context.Context, cfg config.StorageConfig) (ports.BlobStore, error) {
	switch cfg.Backend {
	case config.BackendFile:
		store, err := blobstore.NewLocalBlobStore(cfg.SaveDir)
		if err != nil {
			return nil, errors.StorageError("failed to open file blob store", err)
		}
		return store, nil
	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, errors.StorageError("failed to open sqlite blob store", err)
		}
		return store, nil
	case config.BackendPostgres:
		store, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.DatabaseError("failed to open postgres blob store", err)
		}
		return store, nil
	}
	return nil, errors.ConfigInvalid(fmt.Sprintf("unknown blob backend %q", cfg.Backend))
}

// Close releases the blob store
func (c *Container) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}
