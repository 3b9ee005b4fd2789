package mocks

import (
	"webforge/internal/models"
)

type GenerationJobRepositoryMock struct {
	CreateFunc        func(job *models.GenerationJob) error
	GetByIDFunc       func(id string) (*models.GenerationJob, error)
	ListByProjectFunc func(projectID uint) ([]models.GenerationJob, error)
	RecordStatusFunc  func(id string, status models.JobStatus, errMsg, resultSummary string) error

	// Recorded collects status observations when RecordStatusFunc is nil.
	Recorded []models.JobStatus
}

func (m *GenerationJobRepositoryMock) Create(job *models.GenerationJob) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(job)
	}
	return nil
}

func (m *GenerationJobRepositoryMock) GetByID(id string) (*models.GenerationJob, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

func (m *GenerationJobRepositoryMock) ListByProject(projectID uint) ([]models.GenerationJob, error) {
	if m.ListByProjectFunc != nil {
		return m.ListByProjectFunc(projectID)
	}
	return nil, nil
}

func (m *GenerationJobRepositoryMock) RecordStatus(id string, status models.JobStatus, errMsg, resultSummary string) error {
	if m.RecordStatusFunc != nil {
		return m.RecordStatusFunc(id, status, errMsg, resultSummary)
	}
	m.Recorded = append(m.Recorded, status)
	return nil
}
