package services

import (
	"context"
	"fmt"
	"strings"

	"webforge/internal/models"
	"webforge/internal/repositories"
)

type ProjectService interface {
	Startup(ctx context.Context)
	Create(name string) (*models.Project, error)
	Get(id uint) (*models.Project, error)
	List() ([]models.Project, error)
}

type projectService struct {
	repo repositories.ProjectRepository
	ctx  context.Context
}

func NewProjectService(repo repositories.ProjectRepository) ProjectService {
	return &projectService{repo: repo}
}

func (s *projectService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *projectService) Create(name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	project := &models.Project{Name: name}
	if err := s.repo.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Get(id uint) (*models.Project, error) {
	if id == 0 {
		return nil, fmt.Errorf("project ID is required")
	}
	project, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %d not found", id)
	}
	return project, nil
}

func (s *projectService) List() ([]models.Project, error) {
	return s.repo.List()
}
