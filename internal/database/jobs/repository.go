// Package jobs persists pollable progress records for import and export runs.
//
// One row exists per (user, job type); starting a new run overwrites the
// previous record so the UI always polls a single stable row.
package jobs

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/ir-contacts/internal/entities"
)

// Repository handles job progress records.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new job progress repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Start resets the progress row for a new run.
func (r *Repository) Start(userID uint, jobType entities.JobType) error {
	progress := entities.JobProgress{
		UserID:    userID,
		JobType:   jobType,
		Status:    entities.JobStatusRunning,
		Message:   "Starting",
		Percent:   0,
		StartedAt: time.Now(),
	}

	var existing entities.JobProgress
	err := r.db.Where("user_id = ? AND job_type = ?", userID, jobType).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&progress).Error
	}
	if err != nil {
		return err
	}

	progress.ID = existing.ID
	return r.db.Save(&progress).Error
}

// Update records an in-flight progress message and percentage.
func (r *Repository) Update(userID uint, jobType entities.JobType, message string, percent int) error {
	return r.db.Model(&entities.JobProgress{}).
		Where("user_id = ? AND job_type = ?", userID, jobType).
		Updates(map[string]any{
			"message": message,
			"percent": percent,
			"status":  entities.JobStatusRunning,
		}).Error
}

// Complete marks the run as finished.
func (r *Repository) Complete(userID uint, jobType entities.JobType, message string) error {
	now := time.Now()
	return r.db.Model(&entities.JobProgress{}).
		Where("user_id = ? AND job_type = ?", userID, jobType).
		Updates(map[string]any{
			"message":      message,
			"percent":      100,
			"status":       entities.JobStatusCompleted,
			"completed_at": &now,
		}).Error
}

// Fail marks the run as failed with a terminal error.
func (r *Repository) Fail(userID uint, jobType entities.JobType, jobErr error) error {
	now := time.Now()
	message := ""
	if jobErr != nil {
		message = jobErr.Error()
	}
	return r.db.Model(&entities.JobProgress{}).
		Where("user_id = ? AND job_type = ?", userID, jobType).
		Updates(map[string]any{
			"status":       entities.JobStatusFailed,
			"error":        message,
			"completed_at": &now,
		}).Error
}

// Get returns the latest progress record, or nil if no run has happened.
func (r *Repository) Get(userID uint, jobType entities.JobType) (*entities.JobProgress, error) {
	var progress entities.JobProgress
	err := r.db.Where("user_id = ? AND job_type = ?", userID, jobType).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
