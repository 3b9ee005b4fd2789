package services

import (
	"context"

	"webforge/internal/genservice"
	"webforge/internal/models"
)

// GenerationClient is the slice of the hosted service the builder needs.
// Satisfied by *genservice.Client; mocked in tests.
type GenerationClient interface {
	Start(ctx context.Context, req genservice.StartRequest) (string, error)
	Status(ctx context.Context, jobID string) (*genservice.Job, error)
	GetFiles(ctx context.Context, projectID uint) (*models.FileSet, error)
	Cancel(ctx context.Context, jobID string) error
	Chat(ctx context.Context, req genservice.ChatRequest) (*genservice.ChatResult, error)
	UploadAsset(ctx context.Context, projectID uint, name string, data []byte) (string, error)
	Deploy(ctx context.Context, slug, document string) (string, error)
}
