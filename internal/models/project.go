package models

import "time"

type Project struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null"`
	// Slug is the settable-once subdomain used by publish. Empty until the
	// first publish configures it.
	Slug string `gorm:"size:63;index"`
	// FilesVersion is the optimistic stamp bumped on every full file-set
	// replacement (job reload, revert, manual edit).
	FilesVersion uint `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ProjectFile struct {
	ID        uint   `gorm:"primaryKey"`
	ProjectID uint   `gorm:"index:idx_file_project_path,unique;not null"`
	Path      string `gorm:"size:512;not null;index:idx_file_project_path,unique"`
	Content   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
