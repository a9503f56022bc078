package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormHistoryRepository implements HistoryRepository using GORM.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository.
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// SaveRun records one bench summary's outcome for a run.
func (r *GormHistoryRepository) SaveRun(ctx context.Context, run *HistoryRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRunsByFunction retrieves the most recent runs of one bench, newest
// first, bounded by limit.
func (r *GormHistoryRepository) GetRunsByFunction(ctx context.Context, modulePath, functionName string, limit int) ([]*HistoryRun, error) {
	var runs []*HistoryRun

	err := r.db.WithContext(ctx).
		Where("module_path = ? AND function_name = ?", modulePath, functionName).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	return runs, nil
}

// GetLatestRun retrieves the most recent run of one bench, or nil if none
// has been recorded yet.
func (r *GormHistoryRepository) GetLatestRun(ctx context.Context, modulePath, functionName string) (*HistoryRun, error) {
	var run HistoryRun

	err := r.db.WithContext(ctx).
		Where("module_path = ? AND function_name = ?", modulePath, functionName).
		Order("created_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return &run, nil
}

// GetRegressedRuns retrieves every run recorded since the given time that
// flagged at least one regression.
func (r *GormHistoryRepository) GetRegressedRuns(ctx context.Context, since time.Time) ([]*HistoryRun, error) {
	var runs []*HistoryRun

	err := r.db.WithContext(ctx).
		Where("has_regressions = ? AND created_at >= ?", true, since).
		Order("created_at DESC").
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query regressed runs: %w", err)
	}

	return runs, nil
}

// PruneOlderThan deletes runs recorded before the given time, returning
// the number of rows removed.
func (r *GormHistoryRepository) PruneOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&HistoryRun{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
