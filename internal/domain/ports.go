package domain

import (
	"context"
	"time"
)

// RecipeSource provides read-only recipe lookups. Implementations can be
// JSON-file backed, in-memory (hardcoded), or API-backed.
type RecipeSource interface {
	List(ctx context.Context) ([]Recipe, error)
	Get(ctx context.Context, id string) (*Recipe, error)
	Search(ctx context.Context, query string) ([]Recipe, error)
}

// Transcriber converts speech to text. ListenOnce records from the default
// microphone and returns the recognized phrase; an empty string with a nil
// error means no intelligible speech was captured. Callers must treat errors
// the same as silence so a flaky microphone never kills the loop.
type Transcriber interface {
	ListenOnce(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// Speaker converts text to speech. Implementations play the audio locally
// and return the raw bytes, or return only the bytes for a remote caller.
// A nil byte slice with a nil error means the audio was played in-process.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Notifier delivers assistant messages to the user. Implementations can
// write to the terminal or wrap a Speaker to voice the message as well.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
