package mocks

import (
	"context"
	"fmt"

	"webforge/internal/genservice"
	"webforge/internal/models"
)

type GenerationClientMock struct {
	StartFunc       func(ctx context.Context, req genservice.StartRequest) (string, error)
	StatusFunc      func(ctx context.Context, jobID string) (*genservice.Job, error)
	GetFilesFunc    func(ctx context.Context, projectID uint) (*models.FileSet, error)
	CancelFunc      func(ctx context.Context, jobID string) error
	ChatFunc        func(ctx context.Context, req genservice.ChatRequest) (*genservice.ChatResult, error)
	UploadAssetFunc func(ctx context.Context, projectID uint, name string, data []byte) (string, error)
	DeployFunc      func(ctx context.Context, slug, document string) (string, error)

	// Cancelled collects cancelled job IDs when CancelFunc is nil.
	Cancelled []string
}

func (m *GenerationClientMock) Start(ctx context.Context, req genservice.StartRequest) (string, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, req)
	}
	return "job-1", nil
}

func (m *GenerationClientMock) Status(ctx context.Context, jobID string) (*genservice.Job, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, jobID)
	}
	return &genservice.Job{ID: jobID, Status: models.JobStatusSucceeded}, nil
}

func (m *GenerationClientMock) GetFiles(ctx context.Context, projectID uint) (*models.FileSet, error) {
	if m.GetFilesFunc != nil {
		return m.GetFilesFunc(ctx, projectID)
	}
	return models.NewFileSet(), nil
}

func (m *GenerationClientMock) Cancel(ctx context.Context, jobID string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, jobID)
	}
	m.Cancelled = append(m.Cancelled, jobID)
	return nil
}

func (m *GenerationClientMock) Chat(ctx context.Context, req genservice.ChatRequest) (*genservice.ChatResult, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	return &genservice.ChatResult{Kind: genservice.ChatKindMessage, Message: "ok"}, nil
}

func (m *GenerationClientMock) UploadAsset(ctx context.Context, projectID uint, name string, data []byte) (string, error) {
	if m.UploadAssetFunc != nil {
		return m.UploadAssetFunc(ctx, projectID, name, data)
	}
	return fmt.Sprintf("https://assets.webforge.app/%d/%s", projectID, name), nil
}

func (m *GenerationClientMock) Deploy(ctx context.Context, slug, document string) (string, error) {
	if m.DeployFunc != nil {
		return m.DeployFunc(ctx, slug, document)
	}
	return "https://" + slug + ".webforge.app", nil
}
