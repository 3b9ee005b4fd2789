package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"webforge/internal/bundler"
	"webforge/internal/events"
	"webforge/internal/repositories"
)

// ErrInvalidSlug rejects slugs that cannot be a subdomain label.
var ErrInvalidSlug = errors.New("slug must be lowercase letters, digits and hyphens")

var slugRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

type PublishService interface {
	Startup(ctx context.Context)
	// Publish bundles the session's working set into the self-contained
	// document, records it in the project's local publish history, and hands
	// it to the static-hosting deploy endpoint under slug. The slug is
	// settable once per project.
	Publish(ctx context.Context, sess *ProjectSession, slug string) (string, error)
}

type publishService struct {
	projects repositories.ProjectRepository
	client   GenerationClient
	// historyDir is the root of the local git history of published
	// artifacts; empty disables history.
	historyDir string
	ctx        context.Context
}

func NewPublishService(projects repositories.ProjectRepository, client GenerationClient, historyDir string) PublishService {
	return &publishService{projects: projects, client: client, historyDir: historyDir}
}

func (s *publishService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *publishService) Publish(ctx context.Context, sess *ProjectSession, slug string) (string, error) {
	if sess == nil {
		return "", fmt.Errorf("session is required")
	}
	if !slugRe.MatchString(slug) {
		return "", ErrInvalidSlug
	}

	project, err := s.projects.GetByID(sess.ProjectID)
	if err != nil {
		return "", err
	}
	if project == nil {
		return "", fmt.Errorf("project %d not found", sess.ProjectID)
	}
	if err := s.projects.ClaimSlug(project.ID, slug); err != nil {
		return "", err
	}

	result := sess.Bundle()
	document := bundler.Document(project.Name, result)

	if s.historyDir != "" {
		if err := s.recordHistory(slug, document); err != nil {
			// History is a convenience; publishing continues without it.
			fmt.Fprintf(os.Stderr, "publish: history commit failed: %v\n", err)
		}
	}

	url, err := s.client.Deploy(ctx, slug, document)
	if err != nil {
		return "", fmt.Errorf("deploy %q: %w", slug, err)
	}

	events.Emit(ctx, events.Event{
		Type:      events.EventPublished,
		ProjectID: sess.ProjectID,
		Message:   "published to " + url,
	})
	return url, nil
}

// recordHistory commits the artifact into a per-slug git repository so every
// published version stays diffable locally.
func (s *publishService) recordHistory(slug, document string) error {
	dir := filepath.Join(s.historyDir, slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return fmt.Errorf("open history repo: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(document), 0644); err != nil {
		return err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := worktree.Add("index.html"); err != nil {
		return err
	}
	_, err = worktree.Commit("publish "+slug, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "webforge",
			Email: "publish@webforge.local",
			When:  time.Now(),
		},
	})
	return err
}
