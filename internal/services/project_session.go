package services

import (
	"sync"

	"webforge/internal/bundler"
	"webforge/internal/models"
)

// ProjectSession owns the in-memory working copy of one open project: the
// FileSet, the optimistic version stamp it was loaded at, the single-flight
// busy flag, and the cached bundle output. There is no ambient global file
// map; everything threads through the session.
type ProjectSession struct {
	ProjectID uint

	mu      sync.Mutex
	files   *models.FileSet
	version uint
	busy    bool

	bundleKey uint64
	bundle    *bundler.Result
}

func NewProjectSession(projectID uint, files *models.FileSet, version uint) *ProjectSession {
	if files == nil {
		files = models.NewFileSet()
	}
	return &ProjectSession{ProjectID: projectID, files: files, version: version}
}

// Files returns a copy of the working set: callers never mutate session
// state behind the lock's back.
func (s *ProjectSession) Files() *models.FileSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Clone()
}

func (s *ProjectSession) Version() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// SetFiles replaces the working copy after a full reload or revert and
// invalidates any cached bundle.
func (s *ProjectSession) SetFiles(files *models.FileSet, version uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = files.Clone()
	s.version = version
	s.bundle = nil
	s.bundleKey = 0
}

// Invalidate drops the cached bundle so the next Bundle call re-derives it.
func (s *ProjectSession) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = nil
	s.bundleKey = 0
}

// Bundle flattens the current working set. The full set is reprocessed on
// every fingerprint change; the only cache is the (fingerprint, result) pair.
func (s *ProjectSession) Bundle() *bundler.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.files.Fingerprint()
	if s.bundle != nil && s.bundleKey == key {
		return s.bundle
	}
	s.bundle = bundler.Bundle(s.files)
	s.bundleKey = key
	return s.bundle
}

// tryAcquire claims the session's single mutating slot. The constraint is
// client-held only; two separate sessions on the same project race at the
// version stamp instead.
func (s *ProjectSession) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *ProjectSession) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}
