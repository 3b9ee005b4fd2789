package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"webforge/internal/events"
	"webforge/internal/models"
	"webforge/internal/repositories"
)

// ErrSnapshotMissing is returned when a revert targets a turn that never
// captured a snapshot. Nothing is mutated in that case.
var ErrSnapshotMissing = errors.New("turn has no snapshot to revert to")

type SnapshotService interface {
	Startup(ctx context.Context)
	// Capture persists an immutable copy of files as the pre-state of the
	// next mutating turn.
	Capture(projectID uint, files *models.FileSet) (*models.Snapshot, error)
	// Attach links a captured snapshot to its persisted assistant turn.
	Attach(turnID, snapshotID uint) error
	// Revert replaces the project's entire file set with the snapshot
	// attached to turnID: all-or-nothing, never an incremental patch.
	Revert(ctx context.Context, sess *ProjectSession, turnID uint) (*models.ConversationTurn, error)
}

type snapshotService struct {
	snapshots     repositories.SnapshotRepository
	files         repositories.ProjectFileRepository
	conversations repositories.ConversationRepository
	ctx           context.Context
}

func NewSnapshotService(
	snapshots repositories.SnapshotRepository,
	files repositories.ProjectFileRepository,
	conversations repositories.ConversationRepository,
) SnapshotService {
	return &snapshotService{snapshots: snapshots, files: files, conversations: conversations}
}

func (s *snapshotService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *snapshotService) Capture(projectID uint, files *models.FileSet) (*models.Snapshot, error) {
	if projectID == 0 {
		return nil, fmt.Errorf("projectID is required")
	}
	if files == nil {
		return nil, fmt.Errorf("files are required")
	}
	snapshot, err := models.NewSnapshot(projectID, files)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.snapshots.Create(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *snapshotService) Attach(turnID, snapshotID uint) error {
	return s.conversations.AttachSnapshot(turnID, snapshotID)
}

func (s *snapshotService) Revert(ctx context.Context, sess *ProjectSession, turnID uint) (*models.ConversationTurn, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}

	// Presence check first; no persisted state is touched on a miss.
	turn, err := s.conversations.GetByID(turnID)
	if err != nil {
		return nil, err
	}
	if turn == nil {
		return nil, fmt.Errorf("turn %d not found", turnID)
	}
	if turn.ProjectID != sess.ProjectID {
		return nil, fmt.Errorf("turn %d belongs to another project", turnID)
	}
	if turn.SnapshotID == nil {
		return nil, ErrSnapshotMissing
	}

	snapshot, err := s.snapshots.GetByID(*turn.SnapshotID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrSnapshotMissing
	}
	restored, err := snapshot.FileSet()
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", snapshot.ID, err)
	}

	if !sess.tryAcquire() {
		return nil, ErrBusy
	}
	defer sess.release()

	before := sess.Files()

	// Delete-all then bulk-insert, one transaction, version-guarded.
	newVersion, err := s.files.ReplaceAll(sess.ProjectID, sess.Version(), restored)
	if err != nil {
		return nil, err
	}
	sess.SetFiles(restored, newVersion)

	touched, summary := DiffSummary(before, restored)
	content := fmt.Sprintf("Reverted to the state captured before turn %d.", turnID)
	if len(touched) > 0 {
		content += " Files touched: " + strings.Join(touched, ", ") + ". " + summary
	}

	// The revert turn documents an event; the restored state is already held
	// by the target snapshot, so this turn is not itself a revert target.
	revertTurn := &models.ConversationTurn{
		ProjectID: sess.ProjectID,
		Role:      models.RoleAssistant,
		Content:   content,
	}
	if err := s.conversations.Append(revertTurn); err != nil {
		return nil, err
	}

	events.Emit(ctx, events.Event{
		Type:      events.EventPreviewInvalidated,
		ProjectID: sess.ProjectID,
		Message:   "file set restored from snapshot",
	})
	return revertTurn, nil
}

// DiffSummary compares two file sets for display: the touched paths and a
// one-line change count. Display only; never used to apply changes.
func DiffSummary(before, after *models.FileSet) ([]string, string) {
	seen := make(map[string]bool)
	var union []string
	for _, p := range append(before.Paths(), after.Paths()...) {
		if !seen[p] {
			seen[p] = true
			union = append(union, p)
		}
	}
	sort.Strings(union)

	dmp := diffmatchpatch.New()
	var touched []string
	var inserted, deleted int
	for _, p := range union {
		oldContent, hadOld := before.Get(p)
		newContent, hasNew := after.Get(p)
		if hadOld && hasNew && oldContent == newContent {
			continue
		}
		touched = append(touched, p)
		for _, d := range dmp.DiffMain(oldContent, newContent, false) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				inserted += len(d.Text)
			case diffmatchpatch.DiffDelete:
				deleted += len(d.Text)
			}
		}
	}
	if len(touched) == 0 {
		return nil, ""
	}
	return touched, fmt.Sprintf("(+%d/-%d characters across %d file(s))", inserted, deleted, len(touched))
}
