package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"webforge/internal/models"
)

type SnapshotRepository interface {
	Create(snapshot *models.Snapshot) error
	GetByID(id uint) (*models.Snapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(snapshot *models.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is required")
	}
	if snapshot.ID != 0 {
		// Snapshots are immutable once created.
		return fmt.Errorf("snapshot %d already persisted", snapshot.ID)
	}
	return r.db.Create(snapshot).Error
}

func (r *snapshotRepository) GetByID(id uint) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	res := r.db.Take(&snapshot, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &snapshot, nil
}
