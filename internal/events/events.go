package events

import "time"

type EventType string

const (
	EventJobStatus          EventType = "job:status"
	EventPreviewInvalidated EventType = "preview:invalidated"
	EventUploadFallback     EventType = "upload:fallback"
	EventAutoFix            EventType = "autofix:transition"
	EventPublished          EventType = "publish:done"
)

// Event is one user-visible notification from the project-builder pipeline.
type Event struct {
	Type      EventType `json:"type"`
	ProjectID uint      `json:"projectId,omitempty"`
	JobID     string    `json:"jobId,omitempty"`
	Status    string    `json:"status,omitempty"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}
