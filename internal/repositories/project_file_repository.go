package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"webforge/internal/models"
)

// ErrStaleFileSet is returned when a full file-set replacement finds that
// another writer bumped the project's files_version first. The caller must
// reload before retrying.
var ErrStaleFileSet = errors.New("file set was modified by another session")

type ProjectFileRepository interface {
	ListByProject(projectID uint) ([]models.ProjectFile, error)
	Upsert(projectID uint, path, content string) error
	// ReplaceAll deletes every file row for the project and bulk-inserts the
	// given set in one transaction, guarded by the optimistic version stamp.
	// Returns the new version on success.
	ReplaceAll(projectID uint, expectedVersion uint, files *models.FileSet) (uint, error)
}

type projectFileRepository struct {
	db *gorm.DB
}

func NewProjectFileRepository(db *gorm.DB) ProjectFileRepository {
	return &projectFileRepository{db: db}
}

func (r *projectFileRepository) ListByProject(projectID uint) ([]models.ProjectFile, error) {
	var files []models.ProjectFile
	res := r.db.Where("project_id = ?", projectID).Order("path asc").Find(&files)
	if res.Error != nil {
		return nil, res.Error
	}
	return files, nil
}

func (r *projectFileRepository) Upsert(projectID uint, path, content string) error {
	if projectID == 0 {
		return fmt.Errorf("projectID is required")
	}
	normalized, err := models.NormalizePath(path)
	if err != nil {
		return err
	}
	row := models.ProjectFile{
		ProjectID: projectID,
		Path:      normalized,
		Content:   content,
	}
	// Upsert on composite unique index
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&row).Error
}

func (r *projectFileRepository) ReplaceAll(projectID uint, expectedVersion uint, files *models.FileSet) (uint, error) {
	if projectID == 0 {
		return 0, fmt.Errorf("projectID is required")
	}
	if files == nil {
		return 0, fmt.Errorf("files are required")
	}

	newVersion := expectedVersion + 1
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).
			Where("id = ? AND files_version = ?", projectID, expectedVersion).
			Update("files_version", newVersion)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleFileSet
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectFile{}).Error; err != nil {
			return err
		}

		if files.Len() == 0 {
			return nil
		}
		rows := make([]models.ProjectFile, 0, files.Len())
		for _, p := range files.Paths() {
			content, _ := files.Get(p)
			rows = append(rows, models.ProjectFile{
				ProjectID: projectID,
				Path:      p,
				Content:   content,
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return 0, err
	}
	return newVersion, nil
}
