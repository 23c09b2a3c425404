// Package timer implements the background poller that watches the session
// countdown and announces expiry.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/logger"
	"github.com/demilade/souschef/internal/session"
)

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor checks the countdown.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// Supervisor polls the session's single timer slot in the background and
// fires one urgent notification when the deadline passes. The one-shot
// guarantee lives in the session: the tick that observes expiry also
// clears the slot, so the supervisor can never announce twice.
type Supervisor struct {
	session      *session.Engine
	notifier     domain.Notifier
	log          *logger.Logger
	tickInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates a timer supervisor with the given dependencies and options.
func New(sess *session.Engine, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		session:      sess,
		notifier:     notifier,
		log:          log,
		tickInterval: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background supervisor loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("timer supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	go s.loop(childCtx)

	s.log.Info("timer supervisor started (tick=%s)", s.tickInterval)
}

// Stop gracefully shuts down the supervisor.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.running = false
	s.log.Info("timer supervisor stopped")
}

// loop is the main tick loop.
func (s *Supervisor) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one cycle against the wall clock.
func (s *Supervisor) tick(ctx context.Context) {
	remaining, expired := s.session.TickTimer(time.Now())
	if expired {
		if err := s.notifier.NotifyUrgent(ctx, "Time is up!"); err != nil {
			s.log.Error("supervisor: notifying timer expiry: %v", err)
		}
		return
	}
	if remaining > 0 {
		s.log.Debug("supervisor: timer has %s left", formatRemaining(remaining))
	}
}

// formatRemaining returns a human-friendly duration for log lines and
// spoken reminders. Rounds to the nearest minute once there's at least
// one minute left.
func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	totalSec := int(d.Seconds())
	if totalSec < 60 {
		if totalSec == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", totalSec)
	}
	m := (totalSec + 30) / 60
	if m <= 0 {
		m = 1
	}
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
