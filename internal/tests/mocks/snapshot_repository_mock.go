package mocks

import (
	"webforge/internal/models"
)

type SnapshotRepositoryMock struct {
	CreateFunc  func(snapshot *models.Snapshot) error
	GetByIDFunc func(id uint) (*models.Snapshot, error)

	nextID uint
}

func (m *SnapshotRepositoryMock) Create(snapshot *models.Snapshot) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(snapshot)
	}
	m.nextID++
	snapshot.ID = m.nextID
	return nil
}

func (m *SnapshotRepositoryMock) GetByID(id uint) (*models.Snapshot, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}
