package unit_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"webforge/internal/models"
	"webforge/internal/services"
	"webforge/internal/tests/mocks"
)

func newSnapshotService(
	snapshots *mocks.SnapshotRepositoryMock,
	files *mocks.ProjectFileRepositoryMock,
	conversations *mocks.ConversationRepositoryMock,
) services.SnapshotService {
	svc := services.NewSnapshotService(snapshots, files, conversations)
	svc.Startup(context.Background())
	return svc
}

func TestCapture_RoundTrip(t *testing.T) {
	svc := newSnapshotService(&mocks.SnapshotRepositoryMock{}, &mocks.ProjectFileRepositoryMock{}, &mocks.ConversationRepositoryMock{})

	fs := models.NewFileSet()
	if err := fs.Put("/App.js", "function App() {}"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := fs.Put("/styles.css", "body { margin: 0; }"); err != nil {
		t.Fatalf("put: %v", err)
	}

	snapshot, err := svc.Capture(1, fs)
	assert.NoError(t, err)
	assert.NotZero(t, snapshot.ID)

	decoded, err := snapshot.FileSet()
	assert.NoError(t, err)
	assert.True(t, fs.Equal(decoded))
	assert.Equal(t, fs.Paths(), decoded.Paths())
}

func TestCapture_RequiresProjectAndFiles(t *testing.T) {
	svc := newSnapshotService(&mocks.SnapshotRepositoryMock{}, &mocks.ProjectFileRepositoryMock{}, &mocks.ConversationRepositoryMock{})

	_, err := svc.Capture(0, models.NewFileSet())
	assert.Error(t, err)
	_, err = svc.Capture(1, nil)
	assert.Error(t, err)
}

func TestRevert_TurnWithoutSnapshotMutatesNothing(t *testing.T) {
	var replaced bool
	files := &mocks.ProjectFileRepositoryMock{
		ReplaceAllFunc: func(projectID uint, expectedVersion uint, fs *models.FileSet) (uint, error) {
			replaced = true
			return expectedVersion + 1, nil
		},
	}
	conversations := &mocks.ConversationRepositoryMock{}
	userTurn := &models.ConversationTurn{ProjectID: 1, Role: models.RoleUser, Content: "hi"}
	if err := conversations.Append(userTurn); err != nil {
		t.Fatalf("append: %v", err)
	}
	svc := newSnapshotService(&mocks.SnapshotRepositoryMock{}, files, conversations)

	sess := sessionWith(t, map[string]string{"/App.js": "current"})
	_, err := svc.Revert(context.Background(), sess, userTurn.ID)
	assert.ErrorIs(t, err, services.ErrSnapshotMissing)
	assert.False(t, replaced)

	content, _ := sess.Files().Get("/App.js")
	assert.Equal(t, "current", content)
	assert.Equal(t, uint(0), sess.Version())
}

func TestRevert_RestoresSnapshotState(t *testing.T) {
	original := models.NewFileSet()
	_ = original.Put("/App.js", "version one")
	_ = original.Put("/lib/util.js", "helpers")

	snapshots := &mocks.SnapshotRepositoryMock{}
	conversations := &mocks.ConversationRepositoryMock{}
	svc := newSnapshotService(snapshots, &mocks.ProjectFileRepositoryMock{}, conversations)

	snapshot, err := svc.Capture(1, original)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	snapshots.GetByIDFunc = func(id uint) (*models.Snapshot, error) {
		if id == snapshot.ID {
			return snapshot, nil
		}
		return nil, nil
	}

	assistantTurn := &models.ConversationTurn{ProjectID: 1, Role: models.RoleAssistant, Content: "done"}
	if err := conversations.Append(assistantTurn); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := svc.Attach(assistantTurn.ID, snapshot.ID); err != nil {
		t.Fatalf("attach: %v", err)
	}

	// The session has since moved past the captured state.
	mutated := models.NewFileSet()
	_ = mutated.Put("/App.js", "version two")
	_ = mutated.Put("/extra.js", "new file")
	sess := services.NewProjectSession(1, mutated, 3)

	revertTurn, err := svc.Revert(context.Background(), sess, assistantTurn.ID)
	assert.NoError(t, err)
	assert.True(t, original.Equal(sess.Files()))
	assert.Equal(t, uint(4), sess.Version())

	// The revert turn is an event record, not itself a revert target.
	assert.Nil(t, revertTurn.SnapshotID)
	assert.Contains(t, revertTurn.Content, "/App.js")
	assert.Contains(t, revertTurn.Content, "/extra.js")
}

func TestRevert_RejectsTurnFromOtherProject(t *testing.T) {
	conversations := &mocks.ConversationRepositoryMock{}
	other := &models.ConversationTurn{ProjectID: 2, Role: models.RoleAssistant, Content: "elsewhere"}
	if err := conversations.Append(other); err != nil {
		t.Fatalf("append: %v", err)
	}
	svc := newSnapshotService(&mocks.SnapshotRepositoryMock{}, &mocks.ProjectFileRepositoryMock{}, conversations)

	_, err := svc.Revert(context.Background(), sessionWith(t, nil), other.ID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "another project")
}

func TestDiffSummary(t *testing.T) {
	before := models.NewFileSet()
	_ = before.Put("/App.js", "aaaa")
	_ = before.Put("/same.js", "unchanged")
	_ = before.Put("/gone.js", "bye")

	after := models.NewFileSet()
	_ = after.Put("/App.js", "aaaabb")
	_ = after.Put("/same.js", "unchanged")
	_ = after.Put("/new.js", "hello")

	touched, summary := services.DiffSummary(before, after)
	assert.Equal(t, []string{"/App.js", "/gone.js", "/new.js"}, touched)
	assert.Contains(t, summary, "3 file(s)")

	touched, summary = services.DiffSummary(before, before.Clone())
	assert.Nil(t, touched)
	assert.Equal(t, "", summary)
}
