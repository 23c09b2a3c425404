// Package session implements the cooking session state machine. One Engine
// guards one session; every mutation goes through its mutex so voice, typed,
// and HTTP commands serialize into a single consistent history.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/interpret"
	"github.com/demilade/souschef/internal/logger"
)

// Engine owns the mutable session state. The zero-ish Engine returned by
// New starts unbound: no recipe, step 0, no timer, voice stopped.
type Engine struct {
	recipes  domain.RecipeSource
	log      *logger.Logger
	dialogue *Log

	mu     sync.Mutex
	state  domain.SessionContext
	recipe *domain.Recipe
}

// New creates an engine reading recipes from the given source.
func New(recipes domain.RecipeSource, log *logger.Logger) *Engine {
	return &Engine{
		recipes:  recipes,
		log:      log,
		dialogue: NewLog(),
	}
}

// BindRecipe looks up a recipe and makes it the session's active recipe,
// resetting the step index to 0 and clearing any running timer. On lookup
// failure the session is left untouched.
func (e *Engine) BindRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	r, err := e.recipes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("binding recipe %q: %w", id, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.recipe = r
	e.state.RecipeID = r.ID
	e.state.StepIndex = 0
	e.state.TimerDeadline = time.Time{}
	e.log.Info("session: bound recipe %q (%d steps)", r.Name, len(r.Steps))
	return r, nil
}

// Recipes exposes the catalog the session binds from.
func (e *Engine) Recipes() domain.RecipeSource {
	return e.recipes
}

// Recipe returns the bound recipe, or nil.
func (e *Engine) Recipe() *domain.Recipe {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recipe
}

// Restart jumps back to the first step of the bound recipe. It reports
// false when no recipe is bound.
func (e *Engine) Restart() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.recipe == nil {
		return false
	}
	e.state.StepIndex = 0
	return true
}

// AdvanceStep moves one step forward. The index may reach len(steps),
// which marks the recipe finished; past that the call reports false and
// changes nothing. Also false when no recipe is bound.
func (e *Engine) AdvanceStep() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.recipe == nil || e.state.StepIndex >= len(e.recipe.Steps) {
		return e.state.StepIndex, false
	}
	e.state.StepIndex++
	return e.state.StepIndex, true
}

// RetreatStep moves one step back, reporting false at the first step.
func (e *Engine) RetreatStep() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.recipe == nil || e.state.StepIndex <= 0 {
		return e.state.StepIndex, false
	}
	e.state.StepIndex--
	return e.state.StepIndex, true
}

// StartTimer arms the countdown. There is exactly one timer slot; an
// existing deadline is overwritten, not stacked.
func (e *Engine) StartTimer(d time.Duration) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.TimerDeadline = time.Now().Add(d)
	e.log.Debug("session: timer armed for %s", d)
	return e.state.TimerDeadline
}

// ClearTimer disarms the countdown without firing it.
func (e *Engine) ClearTimer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.TimerDeadline = time.Time{}
}

// TickTimer checks the countdown against now. It returns the remaining
// duration while the timer runs, and fires exactly once: the tick that
// observes the deadline passed reports expired=true and clears the slot,
// so later ticks see no timer at all.
func (e *Engine) TickTimer(now time.Time) (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.TimerDeadline.IsZero() {
		return 0, false
	}
	if remaining := e.state.TimerDeadline.Sub(now); remaining > 0 {
		return remaining, false
	}
	e.state.TimerDeadline = time.Time{}
	return 0, true
}

// SetListening starts or stops hands-free mode. Stopping also discards a
// pause, so a later start always begins in the listening state.
func (e *Engine) SetListening(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !active {
		e.state.Voice = domain.VoiceStopped
		return
	}
	if e.state.Voice == domain.VoiceStopped {
		e.state.Voice = domain.VoiceListening
	}
}

// SetPaused suspends or resumes command dispatch. Pausing is a no-op when
// hands-free mode is not running, so a paused session always implies an
// active one.
func (e *Engine) SetPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case paused && e.state.Voice == domain.VoiceListening:
		e.state.Voice = domain.VoicePaused
	case !paused && e.state.Voice == domain.VoicePaused:
		e.state.Voice = domain.VoiceListening
	}
}

// VoiceState returns the current hands-free state.
func (e *Engine) VoiceState() domain.VoiceState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Voice
}

// Snapshot returns a copy of the session context.
func (e *Engine) Snapshot() domain.SessionContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Dialogue returns the session transcript.
func (e *Engine) Dialogue() *Log {
	return e.dialogue
}

// Record appends one turn to the transcript.
func (e *Engine) Record(role domain.Role, text string) {
	e.dialogue.Append(role, text)
}

// Apply folds an interpretation result into the session: the step move,
// the timer request, and the voice command, in that order. The step bounds
// are revalidated here, so a stale result can never push the index out of
// range.
func (e *Engine) Apply(res interpret.Result) domain.SessionContext {
	switch {
	case res.StepDelta > 0:
		e.AdvanceStep()
	case res.StepDelta < 0:
		e.RetreatStep()
	}

	if res.TimerSeconds > 0 {
		e.StartTimer(time.Duration(res.TimerSeconds) * time.Second)
	}

	switch res.Command {
	case interpret.CommandStop:
		e.SetListening(false)
	case interpret.CommandPause:
		e.SetPaused(true)
	case interpret.CommandResume:
		e.SetPaused(false)
	}

	return e.Snapshot()
}
