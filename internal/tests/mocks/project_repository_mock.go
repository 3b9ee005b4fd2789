package mocks

import (
	"webforge/internal/models"
)

type ProjectRepositoryMock struct {
	CreateFunc    func(project *models.Project) error
	GetByIDFunc   func(id uint) (*models.Project, error)
	ListFunc      func() ([]models.Project, error)
	ClaimSlugFunc func(id uint, slug string) error
}

func (m *ProjectRepositoryMock) Create(project *models.Project) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(project)
	}
	project.ID = 1
	return nil
}

func (m *ProjectRepositoryMock) GetByID(id uint) (*models.Project, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return &models.Project{ID: id, Name: "project"}, nil
}

func (m *ProjectRepositoryMock) List() ([]models.Project, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return nil, nil
}

func (m *ProjectRepositoryMock) ClaimSlug(id uint, slug string) error {
	if m.ClaimSlugFunc != nil {
		return m.ClaimSlugFunc(id, slug)
	}
	return nil
}
