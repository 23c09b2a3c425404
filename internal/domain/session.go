package domain

import "time"

// VoiceState tracks the hands-free listening mode. It is a single tagged
// state rather than a pair of flags, so "paused but not listening" cannot
// be represented.
type VoiceState int

const (
	// VoiceStopped means the hands-free loop is not running.
	VoiceStopped VoiceState = iota
	// VoiceListening means the loop is capturing and dispatching commands.
	VoiceListening
	// VoicePaused means the loop is capturing but only acts on resume/stop.
	VoicePaused
)

// String returns a human-readable voice state.
func (v VoiceState) String() string {
	switch v {
	case VoiceStopped:
		return "stopped"
	case VoiceListening:
		return "listening"
	case VoicePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// SessionContext is a snapshot of one cooking session. StepIndex is 0-based
// and ranges over [0, len(steps)]; the value len(steps) marks a finished
// recipe. A zero TimerDeadline means no timer is set.
type SessionContext struct {
	RecipeID      string
	StepIndex     int
	TimerDeadline time.Time
	Voice         VoiceState
}

// Listening reports whether the hands-free loop is active, paused or not.
func (c SessionContext) Listening() bool { return c.Voice != VoiceStopped }

// Paused reports whether the hands-free loop is suppressing commands.
func (c SessionContext) Paused() bool { return c.Voice == VoicePaused }

// TimerSet reports whether a countdown is currently armed.
func (c SessionContext) TimerSet() bool { return !c.TimerDeadline.IsZero() }

// Role identifies who produced a dialogue turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DialogueTurn is one entry in the session transcript.
type DialogueTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
