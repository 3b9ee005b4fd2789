package services

import (
	"gorm.io/gorm"

	"webforge/internal/repositories"
)

// DbServices aggregates all domain services backed by the database.
type DbServices struct {
	Projects  ProjectService
	Builder   BuilderService
	Snapshots SnapshotService
	Publisher PublishService
	Uploads   UploadService
}

// NewDbServices constructs the service container using repositories backed
// by db. The generation client and poll policy come from the caller so tests
// can substitute both.
func NewDbServices(db *gorm.DB, client GenerationClient, poll PollPolicy, publishHistoryDir string) *DbServices {
	projectRepo := repositories.NewProjectRepository(db)
	fileRepo := repositories.NewProjectFileRepository(db)
	snapshotRepo := repositories.NewSnapshotRepository(db)
	conversationRepo := repositories.NewConversationRepository(db)
	jobRepo := repositories.NewGenerationJobRepository(db)

	snapshots := NewSnapshotService(snapshotRepo, fileRepo, conversationRepo)

	return &DbServices{
		Projects:  NewProjectService(projectRepo),
		Builder:   NewBuilderService(projectRepo, fileRepo, jobRepo, conversationRepo, snapshots, client, poll),
		Snapshots: snapshots,
		Publisher: NewPublishService(projectRepo, client, publishHistoryDir),
		Uploads:   NewUploadService(client),
	}
}
