// Package interpret maps free-text cooking commands onto responses and
// session state changes. The interpreter is deterministic and rule-based:
// an ordered list of matchers is walked top to bottom and the first match
// wins, so adding a rule never changes the meaning of the ones above it.
package interpret

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/logger"
)

// SessionCommand asks the caller to change the hands-free voice state.
// The interpreter itself never emits one; the hands-free loop uses them
// so its control phrases flow through the same Result type.
type SessionCommand int

const (
	CommandNone SessionCommand = iota
	CommandStop
	CommandPause
	CommandResume
)

// Result is the structured outcome of interpreting one command. The caller
// applies it to the session; the interpreter never mutates anything.
type Result struct {
	// Text is the assistant's spoken/displayed response.
	Text string
	// StepDelta is -1, 0, or +1 and is only nonzero when the move is valid
	// from the step index the command was interpreted against.
	StepDelta int
	// TimerSeconds is > 0 when the user asked for a countdown.
	TimerSeconds int
	// Command is a requested voice-state transition, or CommandNone.
	Command SessionCommand
}

// DefaultTimerMinutes is used when the user asks for a timer without
// saying how long.
const DefaultTimerMinutes = 5

var timerPattern = regexp.MustCompile(`(\d+)\s*(minute|min)`)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithRand overrides the random source used for cosmetic encouragements.
// Tests pass a fixed source to make responses reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(i *Interpreter) { i.rng = rng }
}

// Interpreter turns user utterances into Results. Safe for concurrent use
// as long as the rand source is not shared elsewhere.
type Interpreter struct {
	log *logger.Logger
	rng *rand.Rand
}

// New creates an interpreter.
func New(log *logger.Logger, opts ...Option) *Interpreter {
	i := &Interpreter{
		log: log,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// rule pairs a matcher with a handler. Order matters: "next ingredient"
// must resolve as a step move, not an ingredient list.
type rule struct {
	name   string
	match  func(in string) bool
	handle func(i *Interpreter, in string, r *domain.Recipe, snap domain.SessionContext) Result
}

var rules = []rule{
	{"next", matchAny("next", "after"), (*Interpreter).nextStep},
	{"previous", matchAny("previous", "back", "last step"), (*Interpreter).previousStep},
	{"repeat", matchAny("repeat", "say again", "current step", "what is the step"), (*Interpreter).repeatStep},
	{"ingredients", matchAny("ingredient", "shopping", "what do i need"), (*Interpreter).listIngredients},
	{"timer", matchTimer, (*Interpreter).setTimer},
	{"greeting", matchAny("hello", "hi"), (*Interpreter).greet},
	{"thanks", matchAny("thank"), (*Interpreter).thanks},
}

// Interpret evaluates one command against the given recipe and session
// snapshot. recipe may be nil when no recipe is bound; every path returns
// a usable Result and the fallback never fails.
func (i *Interpreter) Interpret(input string, recipe *domain.Recipe, snap domain.SessionContext) Result {
	in := strings.ToLower(strings.TrimSpace(input))

	if recipe == nil {
		if matchAny("hello", "hi")(in) {
			return Result{Text: "Hello! I am your cooking assistant. Please select a recipe to get started."}
		}
		return Result{Text: "Please select a recipe so I can help you cook!"}
	}

	for _, r := range rules {
		if r.match(in) {
			i.log.Debug("interpret: matched rule %q for input %q", r.name, input)
			return r.handle(i, in, recipe, snap)
		}
	}

	i.log.Debug("interpret: no rule matched input %q", input)
	return i.fallback(in, recipe, snap)
}

func matchAny(phrases ...string) func(string) bool {
	return func(in string) bool {
		for _, p := range phrases {
			if strings.Contains(in, p) {
				return true
			}
		}
		return false
	}
}

func matchTimer(in string) bool {
	return strings.Contains(in, "timer") &&
		(strings.Contains(in, "set") || strings.Contains(in, "start"))
}

func (i *Interpreter) nextStep(_ string, r *domain.Recipe, snap domain.SessionContext) Result {
	next := snap.StepIndex + 1
	if next >= len(r.Steps) {
		return Result{Text: "You are at the last step. Enjoy your meal!"}
	}
	step := r.Steps[next]
	text := fmt.Sprintf("%sMoving to step %d: %s", caution(step.Instruction), next+1, step.Instruction)
	if i.rng.Float64() < 0.3 {
		text += " " + encouragements[i.rng.Intn(len(encouragements))]
	}
	return Result{Text: text, StepDelta: 1}
}

func (i *Interpreter) previousStep(_ string, r *domain.Recipe, snap domain.SessionContext) Result {
	if snap.StepIndex <= 0 {
		return Result{Text: "You are at the first step."}
	}
	step := r.Steps[snap.StepIndex-1]
	text := fmt.Sprintf("%sGoing back to step %d: %s", caution(step.Instruction), snap.StepIndex, step.Instruction)
	return Result{Text: text, StepDelta: -1}
}

func (i *Interpreter) repeatStep(_ string, r *domain.Recipe, snap domain.SessionContext) Result {
	if snap.StepIndex >= len(r.Steps) {
		return Result{Text: "You have finished every step. Enjoy your meal!"}
	}
	step := r.Steps[snap.StepIndex]
	return Result{Text: fmt.Sprintf("%sStep %d: %s", caution(step.Instruction), snap.StepIndex+1, step.Instruction)}
}

func (i *Interpreter) listIngredients(_ string, r *domain.Recipe, _ domain.SessionContext) Result {
	if len(r.Ingredients) == 0 {
		return Result{Text: "This recipe has no listed ingredients."}
	}
	parts := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		parts = append(parts, fmt.Sprintf("%s %s of %s", formatQuantity(ing.Quantity), ing.Unit, ing.IngredientID))
	}
	return Result{Text: "You need: " + strings.Join(parts, ", ") + "."}
}

func (i *Interpreter) setTimer(in string, _ *domain.Recipe, _ domain.SessionContext) Result {
	minutes := DefaultTimerMinutes
	if m := timerPattern.FindStringSubmatch(in); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			minutes = n
		}
	}
	return Result{
		Text:         fmt.Sprintf("Okay, setting a timer for %d minutes.", minutes),
		TimerSeconds: minutes * 60,
	}
}

func (i *Interpreter) greet(_ string, r *domain.Recipe, snap domain.SessionContext) Result {
	return Result{Text: fmt.Sprintf("Hello! We are cooking %s. We are on step %d.", r.Name, snap.StepIndex+1)}
}

func (i *Interpreter) thanks(_ string, _ *domain.Recipe, _ domain.SessionContext) Result {
	return Result{Text: "You are welcome! Happy cooking."}
}

func (i *Interpreter) fallback(_ string, r *domain.Recipe, snap domain.SessionContext) Result {
	return Result{Text: fmt.Sprintf(
		"I'm not sure. We are currently on step %d of %s. You can say 'Next Step', 'Repeat', or 'Ingredients'.",
		snap.StepIndex+1, r.Name)}
}

// formatQuantity renders 2.0 as "2" and 0.5 as "0.5".
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

var encouragements = []string{
	"You're doing great!",
	"Keep it up, chef!",
	"Smells good already!",
	"Nice work so far!",
}
