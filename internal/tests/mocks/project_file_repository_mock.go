package mocks

import (
	"webforge/internal/models"
)

type ProjectFileRepositoryMock struct {
	ListByProjectFunc func(projectID uint) ([]models.ProjectFile, error)
	UpsertFunc        func(projectID uint, path, content string) error
	ReplaceAllFunc    func(projectID uint, expectedVersion uint, files *models.FileSet) (uint, error)
}

func (m *ProjectFileRepositoryMock) ListByProject(projectID uint) ([]models.ProjectFile, error) {
	if m.ListByProjectFunc != nil {
		return m.ListByProjectFunc(projectID)
	}
	return nil, nil
}

func (m *ProjectFileRepositoryMock) Upsert(projectID uint, path, content string) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(projectID, path, content)
	}
	return nil
}

func (m *ProjectFileRepositoryMock) ReplaceAll(projectID uint, expectedVersion uint, files *models.FileSet) (uint, error) {
	if m.ReplaceAllFunc != nil {
		return m.ReplaceAllFunc(projectID, expectedVersion, files)
	}
	return expectedVersion + 1, nil
}
