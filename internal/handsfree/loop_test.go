package handsfree

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/interpret"
	"github.com/demilade/souschef/internal/logger"
	"github.com/demilade/souschef/internal/recipe"
	"github.com/demilade/souschef/internal/session"
)

// fakeTranscriber plays back a fixed script, one phrase per ListenOnce
// call, then keeps saying "stop" so the loop always terminates.
type fakeTranscriber struct {
	mu      sync.Mutex
	phrases []string
	next    int
}

func (f *fakeTranscriber) ListenOnce(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next >= len(f.phrases) {
		return "stop", nil
	}
	p := f.phrases[f.next]
	f.next++
	return p, nil
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	return "", domain.ErrNotImplemented
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(ctx context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeNotifier) NotifyUrgent(ctx context.Context, message string) error {
	return f.Notify(ctx, message)
}

func (f *fakeNotifier) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func setupLoop(t *testing.T, phrases ...string) (*Loop, *session.Engine, *fakeNotifier) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	sess := session.New(recipe.NewMemorySource(domain.Recipe{
		ID:   "test-rice",
		Name: "Test Rice",
		Steps: []domain.Step{
			{Number: 1, Instruction: "Wash the rice."},
			{Number: 2, Instruction: "Boil the water."},
			{Number: 3, Instruction: "Add rice to boiling water."},
		},
	}), log)
	if _, err := sess.BindRecipe(context.Background(), "test-rice"); err != nil {
		t.Fatalf("binding recipe: %v", err)
	}

	notifier := &fakeNotifier{}
	loop := New(sess, interpret.New(log), &fakeTranscriber{phrases: phrases}, notifier, log)
	return loop, sess, notifier
}

func runLoop(t *testing.T, loop *Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("loop did not stop on its own")
	}
}

func TestLoopDispatchAndStop(t *testing.T) {
	loop, sess, notifier := setupLoop(t,
		"random kitchen noise",
		"next step please",
		"stop listening",
	)
	runLoop(t, loop)

	if got := sess.VoiceState(); got != domain.VoiceStopped {
		t.Fatalf("voice state after run = %s, want stopped", got)
	}
	if got := sess.Snapshot().StepIndex; got != 1 {
		t.Fatalf("step index = %d, want 1 (noise must not move the session)", got)
	}

	messages := notifier.all()
	if len(messages) != 2 {
		t.Fatalf("got %d notifications, want step response plus stop ack: %v", len(messages), messages)
	}
	if !strings.Contains(messages[0], "Boil the water.") {
		t.Fatalf("step response = %q", messages[0])
	}
}

func TestLoopPauseSuppressesDispatch(t *testing.T) {
	loop, sess, notifier := setupLoop(t,
		"pause",
		"next step please", // must be ignored while paused
		"hello assistant",  // also ignored
		"resume",
		"next step please",
		"stop",
	)
	runLoop(t, loop)

	if got := sess.Snapshot().StepIndex; got != 1 {
		t.Fatalf("step index = %d, want exactly one advance", got)
	}

	messages := notifier.all()
	var sawPause, sawResume bool
	for _, m := range messages {
		if strings.Contains(m, "Pausing") {
			sawPause = true
		}
		if strings.Contains(m, "Resuming") || strings.Contains(m, "Where were we") {
			sawResume = true
		}
	}
	if !sawPause || !sawResume {
		t.Fatalf("missing pause or resume ack in %v", messages)
	}
	// pause ack, resume ack, one step response, stop ack. Nothing for the
	// phrases spoken while paused.
	if len(messages) != 4 {
		t.Fatalf("got %d notifications, want 4: %v", len(messages), messages)
	}
}

func TestLoopStopWorksWhilePaused(t *testing.T) {
	loop, sess, _ := setupLoop(t,
		"pause",
		"stop",
	)
	runLoop(t, loop)

	if got := sess.VoiceState(); got != domain.VoiceStopped {
		t.Fatalf("voice state = %s, want stopped", got)
	}
}

func TestLoopRestartPhrase(t *testing.T) {
	loop, sess, notifier := setupLoop(t,
		"next step",
		"next step",
		"start over",
		"stop",
	)
	runLoop(t, loop)

	if got := sess.Snapshot().StepIndex; got != 0 {
		t.Fatalf("step index = %d, want 0 after restart", got)
	}

	var sawStarting bool
	for _, m := range notifier.all() {
		if strings.Contains(m, "Starting Test Rice. Step 1: Wash the rice.") {
			sawStarting = true
		}
	}
	if !sawStarting {
		t.Fatalf("missing restart announcement in %v", notifier.all())
	}
}

func TestLoopStartTimerIsNotARestart(t *testing.T) {
	loop, sess, notifier := setupLoop(t,
		"next step",
		"start a timer for 10 minutes",
		"stop",
	)
	runLoop(t, loop)

	if got := sess.Snapshot().StepIndex; got != 1 {
		t.Fatalf("step index = %d, timer phrase must not restart", got)
	}
	if !sess.Snapshot().TimerSet() {
		t.Fatal("timer was not applied")
	}

	var sawTimer bool
	for _, m := range notifier.all() {
		if strings.Contains(m, "10 minutes") {
			sawTimer = true
		}
	}
	if !sawTimer {
		t.Fatalf("missing timer confirmation in %v", notifier.all())
	}
}

func TestLoopRecordsDialogue(t *testing.T) {
	loop, sess, _ := setupLoop(t,
		"next step please",
		"stop",
	)
	runLoop(t, loop)

	turns := sess.Dialogue().Turns()
	if len(turns) < 3 {
		t.Fatalf("got %d dialogue turns, want the phrase, its response, and the stop ack", len(turns))
	}
	if turns[0].Role != domain.RoleUser || turns[0].Text != "next step please" {
		t.Fatalf("unexpected first turn %+v", turns[0])
	}
	if turns[1].Role != domain.RoleAssistant || !strings.Contains(turns[1].Text, "Boil the water.") {
		t.Fatalf("unexpected second turn %+v", turns[1])
	}
}

func TestLoopHeardHook(t *testing.T) {
	var (
		mu    sync.Mutex
		heard []string
	)
	log := logger.New(logger.LevelOff, nil)
	sess := session.New(recipe.NewMemorySource(), log)
	if _, err := sess.BindRecipe(context.Background(), "jollof-rice"); err != nil {
		t.Fatalf("binding recipe: %v", err)
	}

	loop := New(sess, interpret.New(log),
		&fakeTranscriber{phrases: []string{"just background chatter", "repeat that assistant", "stop"}},
		&fakeNotifier{}, log,
		WithHeardFunc(func(text string) {
			mu.Lock()
			heard = append(heard, text)
			mu.Unlock()
		}))
	runLoop(t, loop)

	mu.Lock()
	defer mu.Unlock()
	if len(heard) != 1 || heard[0] != "repeat that assistant" {
		t.Fatalf("heard hook saw %v, want only the dispatched phrase", heard)
	}
}
