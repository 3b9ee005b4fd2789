package services

import (
	"context"
	"log"
	"sync"
	"time"

	"webforge/internal/events"
)

// AutoFixState is the explicit crash auto-fix machine:
//
//	idle -> countdown -> inflight -> cooldown -> idle
//
// A reported crash starts the countdown; unless cancelled it fires one fix
// request. The inflight and cooldown states swallow further reports so a
// crashing preview cannot loop fix requests.
type AutoFixState int32

const (
	AutoFixIdle AutoFixState = iota
	AutoFixCountdown
	AutoFixInflight
	AutoFixCooldown
)

func (s AutoFixState) String() string {
	switch s {
	case AutoFixIdle:
		return "idle"
	case AutoFixCountdown:
		return "countdown"
	case AutoFixInflight:
		return "inflight"
	case AutoFixCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// AutoFixService debounces runtime crash reports from the live preview into
// at most one fix generation at a time.
type AutoFixService struct {
	mu        sync.Mutex
	state     AutoFixState
	timer     *time.Timer
	countdown time.Duration
	cooldown  time.Duration
	projectID uint
	// trigger runs the fix generation; it goes through the normal
	// single-flight mutating path.
	trigger func(reason string) error
	ctx     context.Context
}

func NewAutoFixService(countdown, cooldown time.Duration, trigger func(reason string) error) *AutoFixService {
	if countdown <= 0 {
		countdown = 3 * time.Second
	}
	if cooldown <= 0 {
		cooldown = 15 * time.Second
	}
	return &AutoFixService{
		state:     AutoFixIdle,
		countdown: countdown,
		cooldown:  cooldown,
		trigger:   trigger,
	}
}

func (s *AutoFixService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *AutoFixService) State() AutoFixState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ReportCrash starts the countdown for a fix request. Returns false when the
// report was dropped because the machine is not idle.
func (s *AutoFixService) ReportCrash(projectID uint, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AutoFixIdle {
		log.Printf("autofix: dropping crash report in state %s", s.state)
		return false
	}
	s.state = AutoFixCountdown
	s.projectID = projectID
	s.emitLocked("countdown started: " + message)
	s.timer = time.AfterFunc(s.countdown, func() { s.fire(message) })
	return true
}

// Cancel aborts a pending countdown. Only valid in the countdown state.
func (s *AutoFixService) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AutoFixCountdown {
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = AutoFixIdle
	s.emitLocked("countdown cancelled")
	return true
}

// Shutdown stops any pending timer; the machine ends wherever it was.
func (s *AutoFixService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *AutoFixService) fire(message string) {
	s.mu.Lock()
	if s.state != AutoFixCountdown {
		s.mu.Unlock()
		return
	}
	s.state = AutoFixInflight
	s.timer = nil
	s.emitLocked("fix request submitted")
	trigger := s.trigger
	s.mu.Unlock()

	var err error
	if trigger != nil {
		err = trigger(message)
	}
	if err != nil {
		log.Printf("autofix: fix generation failed: %v", err)
	}

	s.mu.Lock()
	s.state = AutoFixCooldown
	s.emitLocked("cooling down")
	s.timer = time.AfterFunc(s.cooldown, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == AutoFixCooldown {
			s.state = AutoFixIdle
			s.timer = nil
			s.emitLocked("idle")
		}
	})
	s.mu.Unlock()
}

// emitLocked publishes the transition; callers hold s.mu.
func (s *AutoFixService) emitLocked(message string) {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	events.Emit(ctx, events.Event{
		Type:      events.EventAutoFix,
		ProjectID: s.projectID,
		Status:    s.state.String(),
		Message:   message,
	})
}
