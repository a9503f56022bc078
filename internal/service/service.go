// Package service wires the application's components together: config,
// run-history repository, artifact storage, and the benchmark driver.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/vgbench/runner/internal/repository"
	"github.com/vgbench/runner/internal/runner"
	"github.com/vgbench/runner/internal/storage"
	"github.com/vgbench/runner/pkg/config"
	"github.com/vgbench/runner/pkg/model"
	"github.com/vgbench/runner/pkg/utils"
)

// tracer instruments the repository calls this package makes, since the
// run-history store itself is opened without the gorm tracing plugin.
var tracer = otel.Tracer("vgbench-runner/repository")

// Service is the main application service: it owns the run-history store
// and artifact storage, and hands a ready Driver to the CLI commands.
type Service struct {
	config  *config.Config
	logger  utils.Logger
	store   *repository.Store
	storage storage.Storage
	driver  *runner.Driver

	running bool
}

// New creates a new Service instance.
func New(cfg *config.Config, logger utils.Logger) (*Service, error) {
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}

	return &Service{
		config: cfg,
		logger: logger,
	}, nil
}

// Initialize initializes all service components.
func (s *Service) Initialize(ctx context.Context) error {
	s.logger.Info("Initializing service components...")

	if err := s.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := s.initStorage(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	s.driver = runner.NewDriver(s.storage, s.logger, utils.NewRealClock())

	s.logger.Info("Service components initialized successfully")
	return nil
}

// initDatabase initializes the run-history database connection.
func (s *Service) initDatabase() error {
	s.logger.Info("Connecting to database (%s)...", s.config.Database.Type)

	gormDB, err := repository.NewGormDB(&s.config.Database)
	if err != nil {
		return err
	}

	s.store = repository.NewStore(gormDB)
	s.logger.Info("Database connection established")

	return nil
}

// initStorage initializes artifact storage.
func (s *Service) initStorage() error {
	s.logger.Info("Initializing storage (%s)...", s.config.Storage.Type)

	store, err := storage.New(s.config.Storage)
	if err != nil {
		return err
	}

	s.storage = store
	s.logger.Info("Storage initialized")

	return nil
}

// Driver returns the benchmark driver bound to this service's storage.
func (s *Service) Driver() *runner.Driver {
	return s.driver
}

// History returns the run-history repository.
func (s *Service) History() repository.HistoryRepository {
	if s.store == nil {
		return nil
	}
	return s.store.History
}

// RecordRun persists one bench summary's outcome to run history.
func (s *Service) RecordRun(ctx context.Context, runID string, summary *model.BenchmarkSummary) error {
	if s.store == nil {
		return nil
	}

	ctx, span := tracer.Start(ctx, "repository.SaveRun")
	defer span.End()

	regressionCount := 0
	for _, p := range summary.Profiles {
		regressionCount += len(p.Summaries.Total.Regressions)
	}

	run := &repository.HistoryRun{
		RunID:           runID,
		ModulePath:      summary.ModulePath,
		FunctionName:    summary.FunctionName,
		BenchID:         summary.ID,
		Kind:            string(summary.Kind),
		HasRegressions:  summary.HasRegressions(),
		RegressionCount: regressionCount,
	}

	if len(summary.Profiles) > 0 {
		run.Tool = string(summary.Profiles[0].Tool)
	}

	payload, err := marshalSummary(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary for history: %w", err)
	}
	run.Summary = payload

	return s.store.History.SaveRun(ctx, run)
}

// marshalSummary encodes a BenchmarkSummary for storage in the run-history
// JSON column.
func marshalSummary(summary *model.BenchmarkSummary) (repository.JSONField, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	return repository.JSONField(data), nil
}

// RunHistory returns the stored runs for one bench, newest first.
func (s *Service) RunHistory(ctx context.Context, modulePath, functionName string, limit int) ([]*repository.HistoryRun, error) {
	if s.store == nil {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "repository.GetRunsByFunction")
	defer span.End()
	return s.store.History.GetRunsByFunction(ctx, modulePath, functionName, limit)
}

// RegressedRuns returns every regressed run recorded since the given
// duration ago.
func (s *Service) RegressedRuns(ctx context.Context, since time.Duration) ([]*repository.HistoryRun, error) {
	if s.store == nil {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "repository.GetRegressedRuns")
	defer span.End()
	return s.store.History.GetRegressedRuns(ctx, time.Now().Add(-since))
}

// PruneHistory deletes run-history rows older than the given duration.
func (s *Service) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if s.store == nil {
		return 0, nil
	}
	ctx, span := tracer.Start(ctx, "repository.PruneOlderThan")
	defer span.End()
	return s.store.History.PruneOlderThan(ctx, time.Now().Add(-olderThan))
}

// Stop releases the service's resources.
func (s *Service) Stop() error {
	s.logger.Info("Stopping service...")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close database connection: %v", err)
		}
	}

	s.running = false
	s.logger.Info("Service stopped")

	return nil
}

// IsRunning returns whether the service is running.
func (s *Service) IsRunning() bool {
	return s.running
}

// HealthCheck performs a health check on the service's components.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.store != nil {
		if err := s.store.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
	}

	return nil
}
