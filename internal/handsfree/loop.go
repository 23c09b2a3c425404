// Package handsfree implements the voice-only control loop. While the
// loop runs the user never touches the keyboard: phrases come in through
// the transcriber, control phrases flip the voice state, and everything
// else goes to the interpreter. Garbled audio is dropped on the floor so
// a noisy kitchen cannot move the session by accident.
package handsfree

import (
	"context"
	"strings"
	"time"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/interpret"
	"github.com/demilade/souschef/internal/logger"
	"github.com/demilade/souschef/internal/session"
	"github.com/demilade/souschef/internal/speech"
)

// triggerWords gate dispatch: a phrase containing none of these is
// treated as background noise and ignored.
var triggerWords = []string{
	"assistant",
	"next",
	"previous",
	"repeat",
	"ingredient",
	"shopping",
	"hello",
	"hi",
	"thank",
	"start",
	"begin",
}

// Option configures the loop.
type Option func(*Loop)

// WithListenTimeout bounds each microphone capture.
func WithListenTimeout(d time.Duration) Option {
	return func(l *Loop) { l.listenTimeout = d }
}

// WithPhraseLimit bounds the length of a single captured phrase.
func WithPhraseLimit(d time.Duration) Option {
	return func(l *Loop) { l.phraseLimit = d }
}

// WithHeardFunc installs a hook that receives every dispatched phrase,
// used by the terminal UI to echo what the microphone picked up.
func WithHeardFunc(fn func(text string)) Option {
	return func(l *Loop) { l.heard = fn }
}

// Loop runs hands-free mode for one session.
type Loop struct {
	session  *session.Engine
	interp   *interpret.Interpreter
	stt      domain.Transcriber
	notifier domain.Notifier
	log      *logger.Logger

	listenTimeout time.Duration
	phraseLimit   time.Duration
	heard         func(text string)
}

// New creates a hands-free loop.
func New(sess *session.Engine, interp *interpret.Interpreter, stt domain.Transcriber, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Loop {
	l := &Loop{
		session:       sess,
		interp:        interp,
		stt:           stt,
		notifier:      notifier,
		log:           log,
		listenTimeout: 6 * time.Second,
		phraseLimit:   4 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run marks the session as listening and captures phrases until a stop
// phrase arrives, the session's voice state is stopped externally, or
// ctx is cancelled. Blocks; call it in a goroutine.
func (l *Loop) Run(ctx context.Context) {
	l.session.SetListening(true)
	l.log.Info("handsfree: started")
	defer func() {
		l.session.SetListening(false)
		l.log.Info("handsfree: stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if l.session.VoiceState() == domain.VoiceStopped {
			return
		}

		text, err := l.stt.ListenOnce(ctx, l.listenTimeout, l.phraseLimit)
		if err != nil {
			// A flaky microphone is the same as silence.
			l.log.Debug("handsfree: listen error: %v", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if done := l.handlePhrase(ctx, text); done {
			return
		}
	}
}

// handlePhrase processes one transcription. Returns true when the loop
// should exit.
func (l *Loop) handlePhrase(ctx context.Context, text string) bool {
	in := strings.ToLower(text)
	l.log.Debug("handsfree: heard %q", text)

	// Control phrases work in every state, including paused.
	switch {
	case containsAny(in, "stop", "exit"):
		l.control(ctx, interpret.Result{Text: speech.LineStopAck(), Command: interpret.CommandStop})
		return true
	case l.session.VoiceState() == domain.VoicePaused:
		if containsAny(in, "continue", "resume") {
			l.control(ctx, interpret.Result{Text: speech.LineResumeAck(), Command: interpret.CommandResume})
		}
		// Everything else is suppressed while paused.
		return false
	case containsAny(in, "pause"):
		l.control(ctx, interpret.Result{Text: speech.LinePauseAck(), Command: interpret.CommandPause})
		return false
	}

	if !containsAny(in, triggerWords...) {
		l.log.Debug("handsfree: no trigger word in %q, ignoring", text)
		return false
	}

	if l.heard != nil {
		l.heard(text)
	}
	l.session.Record(domain.RoleUser, text)

	// "start"/"begin" without "timer" restarts the bound recipe from the
	// first step; with "timer" it falls through to the timer rule.
	if containsAny(in, "start", "begin") && !strings.Contains(in, "timer") {
		l.restart(ctx)
		return false
	}

	res := l.interp.Interpret(text, l.session.Recipe(), l.session.Snapshot())
	l.session.Apply(res)
	l.session.Record(domain.RoleAssistant, res.Text)
	l.notify(ctx, res.Text)
	return false
}

// restart jumps back to the first step and announces it.
func (l *Loop) restart(ctx context.Context) {
	r := l.session.Recipe()
	if r == nil || len(r.Steps) == 0 || !l.session.Restart() {
		l.session.Record(domain.RoleAssistant, speech.LineSelectFirst())
		l.notify(ctx, speech.LineSelectFirst())
		return
	}
	line := speech.LineStarting(r.Name, r.Steps[0].Instruction)
	l.session.Record(domain.RoleAssistant, line)
	l.notify(ctx, line)
}

// control applies a voice-state transition and announces it, using the
// same line for the transcript and the notification.
func (l *Loop) control(ctx context.Context, res interpret.Result) {
	l.session.Apply(res)
	l.session.Record(domain.RoleAssistant, res.Text)
	l.notify(ctx, res.Text)
}

func (l *Loop) notify(ctx context.Context, message string) {
	if err := l.notifier.Notify(ctx, message); err != nil {
		l.log.Error("handsfree: notify: %v", err)
	}
}

func containsAny(in string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(in, w) {
			return true
		}
	}
	return false
}
