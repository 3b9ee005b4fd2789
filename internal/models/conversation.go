package models

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Snapshot is an immutable copy of a project's FileSet, captured immediately
// before a mutating turn takes effect. Never updated after creation.
type Snapshot struct {
	ID        uint   `gorm:"primaryKey"`
	ProjectID uint   `gorm:"index;not null"`
	FilesJSON string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// NewSnapshot serializes files into a snapshot row.
func NewSnapshot(projectID uint, files *FileSet) (*Snapshot, error) {
	data, err := json.Marshal(files)
	if err != nil {
		return nil, err
	}
	return &Snapshot{ProjectID: projectID, FilesJSON: string(data)}, nil
}

// FileSet decodes the captured file set.
func (s *Snapshot) FileSet() (*FileSet, error) {
	fs := NewFileSet()
	if err := json.Unmarshal([]byte(s.FilesJSON), fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// ConversationTurn is one message of a project-builder conversation. Only
// assistant turns that correspond to a mutating action carry a SnapshotID.
type ConversationTurn struct {
	ID         uint   `gorm:"primaryKey"`
	ProjectID  uint   `gorm:"index;not null"`
	Role       string `gorm:"size:16;not null"`
	Content    string `gorm:"type:text"`
	SnapshotID *uint  `gorm:"index"`
	CreatedAt  time.Time
}
