package speech

import (
	"context"
	"regexp"
	"strings"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*SpeakingNotifier)(nil)

// SpeakingNotifier wraps a text notifier and also voices the message.
// Urgent messages interrupt whatever is currently being spoken.
type SpeakingNotifier struct {
	text    domain.Notifier
	speaker domain.Speaker
	log     *logger.Logger
}

// NewSpeakingNotifier creates a notifier that both prints and speaks.
func NewSpeakingNotifier(text domain.Notifier, speaker domain.Speaker, log *logger.Logger) *SpeakingNotifier {
	return &SpeakingNotifier{
		text:    text,
		speaker: speaker,
		log:     log,
	}
}

// Notify prints the message and speaks it. A speech failure is logged
// but never fails the notification; the text already went out.
func (n *SpeakingNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	if _, err := n.speaker.Speak(ctx, cleanForSpeech(message)); err != nil {
		n.log.Warn("speaking notification: %v", err)
	}
	return nil
}

// NotifyUrgent prints the message, cuts off any running speech, and
// speaks it.
func (n *SpeakingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	if v, ok := n.speaker.(*Voice); ok {
		v.Interrupt()
	}
	if _, err := n.speaker.Speak(ctx, cleanForSpeech(message)); err != nil {
		n.log.Warn("speaking urgent notification: %v", err)
	}
	return nil
}

// cleanForSpeech strips formatting artifacts that shouldn't be spoken.
var bracketPrefix = regexp.MustCompile(`^\[[A-Za-z]+\]\s*`)
var ansiCodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func cleanForSpeech(msg string) string {
	cleaned := ansiCodes.ReplaceAllString(msg, "")
	cleaned = bracketPrefix.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	return cleaned
}
