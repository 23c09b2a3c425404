package speech

import (
	"context"
	"time"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Speaker     = (*NoOpSpeaker)(nil)
	_ domain.Transcriber = (*NoOpTranscriber)(nil)
)

// NoOpSpeaker swallows speech requests. Used when voice output is
// disabled or the TTS credentials are missing.
type NoOpSpeaker struct {
	log *logger.Logger
}

// NewNoOpSpeaker creates a speaker that does nothing.
func NewNoOpSpeaker(log *logger.Logger) *NoOpSpeaker {
	return &NoOpSpeaker{log: log}
}

// Speak does nothing.
func (n *NoOpSpeaker) Speak(ctx context.Context, text string) ([]byte, error) {
	n.log.Debug("speech no-op: would say %q", text)
	return nil, nil
}

// NoOpTranscriber reports that voice input is unavailable.
type NoOpTranscriber struct{}

// ListenOnce returns ErrNotImplemented so callers can refuse to start
// hands-free mode instead of spinning on silence.
func (NoOpTranscriber) ListenOnce(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	return "", domain.ErrNotImplemented
}

// Transcribe returns ErrNotImplemented.
func (NoOpTranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	return "", domain.ErrNotImplemented
}
