package models

import "time"

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

type JobMode string

const (
	JobModeCreate JobMode = "create"
	JobModeEdit   JobMode = "edit"
)

// statusRank orders statuses along the queued -> running -> terminal line.
// Both terminal states share a rank; neither may follow the other.
var statusRank = map[JobStatus]int{
	JobStatusQueued:    0,
	JobStatusRunning:   1,
	JobStatusSucceeded: 2,
	JobStatusFailed:    2,
}

// IsTerminal reports whether s ends the job's lifecycle.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// CanTransition reports whether from -> to is a forward move. Repeats of the
// same non-terminal status are allowed (polling observes them); any step back
// in rank, or any step out of a terminal status, is not.
func CanTransition(from, to JobStatus) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	if toRank == fromRank {
		return from == to
	}
	return toRank > fromRank
}

// GenerationJob mirrors a job on the hosted generation service. The ID is the
// service-issued identifier. Rows become immutable once the status is
// terminal.
type GenerationJob struct {
	ID            string    `gorm:"primaryKey;size:64"`
	ProjectID     uint      `gorm:"index;not null"`
	Mode          JobMode   `gorm:"size:16;not null"`
	Status        JobStatus `gorm:"size:16;not null"`
	Error         string    `gorm:"type:text"`
	ResultSummary string    `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
