package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"webforge/internal/events"
	"webforge/internal/genservice"
	"webforge/internal/models"
	"webforge/internal/repositories"
)

var (
	// ErrBusy: at most one mutating operation is in flight per session.
	ErrBusy = errors.New("another operation is already in flight for this project")
	// ErrJobTimeout: polling exceeded the bound without a terminal status.
	// The server-side job is cancelled best-effort and its result, if any,
	// is never applied.
	ErrJobTimeout = errors.New("generation job timed out")
	// ErrPlanNotConfirmed: a chat-proposed plan executes only through an
	// explicit confirmation.
	ErrPlanNotConfirmed = errors.New("plan requires explicit confirmation before executing")
)

// PollPolicy bounds the status poll loop.
type PollPolicy struct {
	Interval time.Duration
	// Backoff is added to the interval after every poll, up to MaxWait.
	Backoff time.Duration
	MaxWait time.Duration
	// Timeout bounds the whole job from submission to terminal status.
	Timeout time.Duration
}

func (p PollPolicy) withDefaults() PollPolicy {
	if p.Interval <= 0 {
		p.Interval = 2 * time.Second
	}
	if p.MaxWait <= 0 {
		p.MaxWait = 5 * time.Second
	}
	if p.Timeout <= 0 {
		p.Timeout = 4 * time.Minute
	}
	return p
}

// GenerationOptions carries the optional start parameters.
type GenerationOptions struct {
	Assets           []string
	Theme            string
	UserInstructions string
	Images           []string
}

// GenerationOutcome reports one completed mutating turn.
type GenerationOutcome struct {
	JobID   string
	Summary string
	// TouchedFiles is the service's changed-file list, display only.
	TouchedFiles []string
	Turn         *models.ConversationTurn
}

type BuilderService interface {
	Startup(ctx context.Context)
	// OpenSession loads the project's persisted file set into a fresh
	// session working copy.
	OpenSession(projectID uint) (*ProjectSession, error)
	// StartGeneration runs one full mutating turn: snapshot, submit, poll to
	// terminal, full reload, turn append.
	StartGeneration(ctx context.Context, sess *ProjectSession, mode models.JobMode, prompt string, opts GenerationOptions) (*GenerationOutcome, error)
	// Chat never mutates files. A returned plan is executed separately via
	// ExecutePlan after the user confirms it.
	Chat(ctx context.Context, sess *ProjectSession, prompt string, images []string) (*genservice.ChatResult, error)
	ExecutePlan(ctx context.Context, sess *ProjectSession, plan *genservice.ChatResult, instructions string) (*GenerationOutcome, error)
	// ApplyManualEdit is the synchronous edit path; it still captures a
	// snapshot and bumps the version stamp.
	ApplyManualEdit(ctx context.Context, sess *ProjectSession, path, content string) (*models.ConversationTurn, error)
}

type builderService struct {
	projects      repositories.ProjectRepository
	files         repositories.ProjectFileRepository
	jobs          repositories.GenerationJobRepository
	conversations repositories.ConversationRepository
	snapshots     SnapshotService
	client        GenerationClient
	poll          PollPolicy
	ctx           context.Context
}

func NewBuilderService(
	projects repositories.ProjectRepository,
	files repositories.ProjectFileRepository,
	jobs repositories.GenerationJobRepository,
	conversations repositories.ConversationRepository,
	snapshots SnapshotService,
	client GenerationClient,
	poll PollPolicy,
) BuilderService {
	return &builderService{
		projects:      projects,
		files:         files,
		jobs:          jobs,
		conversations: conversations,
		snapshots:     snapshots,
		client:        client,
		poll:          poll.withDefaults(),
	}
}

func (s *builderService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *builderService) OpenSession(projectID uint) (*ProjectSession, error) {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %d not found", projectID)
	}

	rows, err := s.files.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	fs := models.NewFileSet()
	for _, row := range rows {
		if err := fs.Put(row.Path, row.Content); err != nil {
			return nil, err
		}
	}
	return NewProjectSession(projectID, fs, project.FilesVersion), nil
}

func (s *builderService) StartGeneration(ctx context.Context, sess *ProjectSession, mode models.JobMode, prompt string, opts GenerationOptions) (*GenerationOutcome, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	if mode != models.JobModeCreate && mode != models.JobModeEdit {
		return nil, fmt.Errorf("unknown generation mode %q", mode)
	}

	if !sess.tryAcquire() {
		return nil, ErrBusy
	}
	defer sess.release()

	// State immediately before this turn's effect.
	snapshot, err := s.snapshots.Capture(sess.ProjectID, sess.Files())
	if err != nil {
		return nil, fmt.Errorf("capture snapshot: %w", err)
	}

	userTurn := &models.ConversationTurn{
		ProjectID: sess.ProjectID,
		Role:      models.RoleUser,
		Content:   prompt,
	}
	if err := s.conversations.Append(userTurn); err != nil {
		return nil, err
	}

	jobID, err := s.client.Start(ctx, genservice.StartRequest{
		ProjectID:        sess.ProjectID,
		Mode:             string(mode),
		Prompt:           prompt,
		Assets:           opts.Assets,
		Theme:            opts.Theme,
		UserInstructions: opts.UserInstructions,
		Images:           opts.Images,
	})
	if err != nil {
		return nil, err
	}

	if err := s.jobs.Create(&models.GenerationJob{
		ID:        jobID,
		ProjectID: sess.ProjectID,
		Mode:      mode,
		Status:    models.JobStatusQueued,
	}); err != nil {
		log.Printf("builder: failed to record job %s locally: %v", jobID, err)
	}

	job, err := s.pollUntilTerminal(ctx, sess.ProjectID, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status == models.JobStatusFailed {
		// Surface the service's message verbatim; no automatic retry.
		failTurn := &models.ConversationTurn{
			ProjectID: sess.ProjectID,
			Role:      models.RoleAssistant,
			Content:   "Generation failed: " + job.Error,
		}
		if err := s.conversations.Append(failTurn); err != nil {
			log.Printf("builder: failed to persist failure turn: %v", err)
		}
		return nil, fmt.Errorf("generation job %s failed: %s", jobID, job.Error)
	}

	// Full reload, always. The service may have touched any number of
	// paths; changed-file lists are for display only.
	fresh, err := s.client.GetFiles(ctx, sess.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("reload files after job %s: %w", jobID, err)
	}
	newVersion, err := s.files.ReplaceAll(sess.ProjectID, sess.Version(), fresh)
	if err != nil {
		return nil, err
	}
	sess.SetFiles(fresh, newVersion)

	summary := job.ResultSummary
	if summary == "" {
		summary = "Generation complete."
	}
	assistantTurn := &models.ConversationTurn{
		ProjectID: sess.ProjectID,
		Role:      models.RoleAssistant,
		Content:   summary,
	}
	if err := s.conversations.Append(assistantTurn); err != nil {
		return nil, err
	}
	if err := s.snapshots.Attach(assistantTurn.ID, snapshot.ID); err != nil {
		return nil, err
	}

	events.Emit(ctx, events.Event{
		Type:      events.EventPreviewInvalidated,
		ProjectID: sess.ProjectID,
		JobID:     jobID,
		Message:   "file set reloaded after generation",
	})

	return &GenerationOutcome{
		JobID:        jobID,
		Summary:      summary,
		TouchedFiles: job.ChangedFiles,
		Turn:         assistantTurn,
	}, nil
}

// pollUntilTerminal queries status on a short interval with stepwise backoff
// until the job is terminal, the overall timeout elapses, or ctx is
// cancelled. Observed transitions are recorded monotonically; server-side
// regressions are ignored.
func (s *builderService) pollUntilTerminal(ctx context.Context, projectID uint, jobID string) (*genservice.Job, error) {
	interval := s.poll.Interval
	deadline := time.Now().Add(s.poll.Timeout)
	lastStatus := models.JobStatusQueued

	for {
		select {
		case <-ctx.Done():
			s.cancelAbandoned(jobID)
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		if time.Now().After(deadline) {
			s.cancelAbandoned(jobID)
			return nil, ErrJobTimeout
		}

		job, err := s.client.Status(ctx, jobID)
		if err != nil {
			// Transient poll failure; the deadline bounds the retries.
			log.Printf("builder: status poll for %s failed: %v", jobID, err)
			continue
		}

		if job.Status != lastStatus {
			if !models.CanTransition(lastStatus, job.Status) {
				log.Printf("builder: job %s reported %s after %s, ignoring regression", jobID, job.Status, lastStatus)
			} else {
				lastStatus = job.Status
				if err := s.jobs.RecordStatus(jobID, job.Status, job.Error, job.ResultSummary); err != nil {
					log.Printf("builder: failed to record status for %s: %v", jobID, err)
				}
				events.Emit(ctx, events.Event{
					Type:      events.EventJobStatus,
					ProjectID: projectID,
					JobID:     jobID,
					Status:    string(job.Status),
				})
			}
		}

		if lastStatus.IsTerminal() {
			return job, nil
		}

		if interval < s.poll.MaxWait {
			interval += s.poll.Backoff
			if interval > s.poll.MaxWait {
				interval = s.poll.MaxWait
			}
		}
	}
}

// cancelAbandoned tells the service to stop a job this client gave up on.
// Best effort only; a context independent of the caller's is used because
// the caller's may already be done.
func (s *builderService) cancelAbandoned(jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.client.Cancel(ctx, jobID); err != nil {
		log.Printf("builder: cancel for abandoned job %s failed: %v", jobID, err)
	}
}

func (s *builderService) Chat(ctx context.Context, sess *ProjectSession, prompt string, images []string) (*genservice.ChatResult, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	files := sess.Files()
	current := make(map[string]string, files.Len())
	for _, p := range files.Paths() {
		content, _ := files.Get(p)
		current[p] = content
	}

	result, err := s.client.Chat(ctx, genservice.ChatRequest{
		ProjectID:    sess.ProjectID,
		Prompt:       prompt,
		CurrentFiles: current,
		Images:       images,
	})
	if err != nil {
		return nil, err
	}

	// Chat turns persist without snapshots; nothing was mutated.
	if err := s.conversations.Append(&models.ConversationTurn{
		ProjectID: sess.ProjectID,
		Role:      models.RoleUser,
		Content:   prompt,
	}); err != nil {
		log.Printf("builder: failed to persist chat user turn: %v", err)
	}
	if result.Message != "" {
		if err := s.conversations.Append(&models.ConversationTurn{
			ProjectID: sess.ProjectID,
			Role:      models.RoleAssistant,
			Content:   result.Message,
		}); err != nil {
			log.Printf("builder: failed to persist chat assistant turn: %v", err)
		}
	}
	return result, nil
}

func (s *builderService) ExecutePlan(ctx context.Context, sess *ProjectSession, plan *genservice.ChatResult, instructions string) (*GenerationOutcome, error) {
	if plan == nil || plan.Kind != genservice.ChatKindPlan {
		return nil, ErrPlanNotConfirmed
	}
	prompt := strings.TrimSpace(strings.Join(plan.PlanSteps, "\n"))
	if prompt == "" {
		prompt = plan.Message
	}
	return s.StartGeneration(ctx, sess, models.JobModeEdit, prompt, GenerationOptions{
		UserInstructions: instructions,
	})
}

func (s *builderService) ApplyManualEdit(ctx context.Context, sess *ProjectSession, path, content string) (*models.ConversationTurn, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}
	normalized, err := models.NormalizePath(path)
	if err != nil {
		return nil, err
	}

	if !sess.tryAcquire() {
		return nil, ErrBusy
	}
	defer sess.release()

	before := sess.Files()
	snapshot, err := s.snapshots.Capture(sess.ProjectID, before)
	if err != nil {
		return nil, fmt.Errorf("capture snapshot: %w", err)
	}

	after := before.Clone()
	if err := after.Put(normalized, content); err != nil {
		return nil, err
	}
	newVersion, err := s.files.ReplaceAll(sess.ProjectID, sess.Version(), after)
	if err != nil {
		return nil, err
	}
	sess.SetFiles(after, newVersion)

	turn := &models.ConversationTurn{
		ProjectID: sess.ProjectID,
		Role:      models.RoleAssistant,
		Content:   "Edited " + normalized,
	}
	if err := s.conversations.Append(turn); err != nil {
		return nil, err
	}
	if err := s.snapshots.Attach(turn.ID, snapshot.ID); err != nil {
		return nil, err
	}

	events.Emit(ctx, events.Event{
		Type:      events.EventPreviewInvalidated,
		ProjectID: sess.ProjectID,
		Message:   "manual edit applied",
	})
	return turn, nil
}
