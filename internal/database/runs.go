package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/models"
	"gorm.io/gorm"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

const maxListLimit = 100

// RunStore persists runs and their review rounds
type RunStore struct {
	db *gorm.DB
}

func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

// Create inserts a new run
func (s *RunStore) Create(ctx context.Context, run *models.RunRecord) error {
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create run %s: %w", run.ID, err)
	}
	return nil
}

// AppendRounds stores review rounds for a run
func (s *RunStore) AppendRounds(ctx context.Context, rounds []models.ReviewRoundRecord) error {
	if len(rounds) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&rounds).Error; err != nil {
		return fmt.Errorf("failed to store review rounds: %w", err)
	}
	return nil
}

// Finish writes the final state of a run
func (s *RunStore) Finish(ctx context.Context, id string, update models.RunUpdate) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.RunRecord{}).Where("id = ?", id).Updates(map[string]any{
		"status":       update.Status,
		"result":       update.Result,
		"warning":      update.Warning,
		"error":        update.Error,
		"duration_ms":  update.DurationMs,
		"completed_at": &now,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Get loads a run with its review rounds in loop then round order
func (s *RunStore) Get(ctx context.Context, id string) (*models.RunRecord, error) {
	var run models.RunRecord
	err := s.db.WithContext(ctx).
		Preload("Rounds", func(db *gorm.DB) *gorm.DB { return db.Order("loop ASC, round ASC") }).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return &run, nil
}

// ListRecent returns the newest runs first, without rounds or result
// bodies. An empty owner lists every owner's runs.
func (s *RunStore) ListRecent(ctx context.Context, owner string, limit int) ([]models.RunRecord, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	query := s.db.WithContext(ctx).
		Omit("result", "brief").
		Order("created_at DESC").
		Limit(limit)
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}

	var runs []models.RunRecord
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Ping checks the database connection
func (s *RunStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
