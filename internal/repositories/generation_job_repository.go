package repositories

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"webforge/internal/models"
)

type GenerationJobRepository interface {
	Create(job *models.GenerationJob) error
	GetByID(id string) (*models.GenerationJob, error)
	ListByProject(projectID uint) ([]models.GenerationJob, error)
	// RecordStatus applies a status observation. Backward transitions are
	// logged and dropped; rows never leave a terminal status.
	RecordStatus(id string, status models.JobStatus, errMsg, resultSummary string) error
}

type generationJobRepository struct {
	db *gorm.DB
}

func NewGenerationJobRepository(db *gorm.DB) GenerationJobRepository {
	return &generationJobRepository{db: db}
}

func (r *generationJobRepository) Create(job *models.GenerationJob) error {
	if job == nil {
		return fmt.Errorf("job is required")
	}
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if job.Status == "" {
		job.Status = models.JobStatusQueued
	}
	return r.db.Create(job).Error
}

func (r *generationJobRepository) GetByID(id string) (*models.GenerationJob, error) {
	var job models.GenerationJob
	res := r.db.Take(&job, "id = ?", id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &job, nil
}

func (r *generationJobRepository) ListByProject(projectID uint) ([]models.GenerationJob, error) {
	var jobs []models.GenerationJob
	res := r.db.Where("project_id = ?", projectID).Order("created_at desc").Find(&jobs)
	if res.Error != nil {
		return nil, res.Error
	}
	return jobs, nil
}

func (r *generationJobRepository) RecordStatus(id string, status models.JobStatus, errMsg, resultSummary string) error {
	if id == "" {
		return fmt.Errorf("job ID is required")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var job models.GenerationJob
		if err := tx.Take(&job, "id = ?", id).Error; err != nil {
			return err
		}
		if job.Status == status {
			return nil
		}
		if !models.CanTransition(job.Status, status) {
			log.Printf("generation job %s: ignoring status regression %s -> %s", id, job.Status, status)
			return nil
		}
		updates := map[string]interface{}{"status": status}
		if errMsg != "" {
			updates["error"] = errMsg
		}
		if resultSummary != "" {
			updates["result_summary"] = resultSummary
		}
		return tx.Model(&models.GenerationJob{}).Where("id = ?", id).Updates(updates).Error
	})
}
