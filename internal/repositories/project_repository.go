package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"webforge/internal/models"
)

// ErrSlugTaken is returned when a project's publish slug is already set to a
// different value, or when another project owns the requested slug. Slugs are
// settable once.
var ErrSlugTaken = errors.New("publish slug is already set")

type ProjectRepository interface {
	Create(project *models.Project) error
	GetByID(id uint) (*models.Project, error)
	List() ([]models.Project, error)
	// ClaimSlug sets the slug if it is unset or already equal to slug.
	ClaimSlug(id uint, slug string) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *models.Project) error {
	if project == nil {
		return fmt.Errorf("project is required")
	}
	return r.db.Create(project).Error
}

func (r *projectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	res := r.db.Take(&project, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &project, nil
}

func (r *projectRepository) List() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Order("created_at asc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) ClaimSlug(id uint, slug string) error {
	var taken int64
	if err := r.db.Model(&models.Project{}).
		Where("slug = ? AND id <> ?", slug, id).
		Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return ErrSlugTaken
	}

	res := r.db.Model(&models.Project{}).
		Where("id = ? AND (slug = '' OR slug = ?)", id, slug).
		Update("slug", slug)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSlugTaken
	}
	return nil
}
