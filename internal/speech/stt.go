package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/logger"
)

// envAnnotation matches whisper environmental annotations like
// "(keyboard clicking)", "[laughter]", "(speaking French)", etc.
var envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z][a-zA-Z\s]*[\)\]]`)

// WhisperOption configures the Whisper transcriber.
type WhisperOption func(*Whisper)

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) WhisperOption {
	return func(w *Whisper) { w.tempDir = dir }
}

// Compile-time interface check.
var _ domain.Transcriber = (*Whisper)(nil)

// Whisper provides speech-to-text using a local Whisper model. ListenOnce
// records one phrase from the default microphone; Transcribe runs the
// model over WAV bytes the caller already has.
type Whisper struct {
	bin     string // path to the whisper-cli executable
	model   string // path to the GGML model file
	tempDir string
	log     *logger.Logger
}

// NewWhisper creates a local Whisper transcriber.
func NewWhisper(bin, model string, log *logger.Logger, opts ...WhisperOption) *Whisper {
	w := &Whisper{
		bin:     bin,
		model:   model,
		tempDir: ".souschef-stt",
		log:     log,
	}
	for _, opt := range opts {
		opt(w)
	}

	// Validate that the whisper binary is reachable.
	if _, err := exec.LookPath(w.bin); err != nil {
		log.Error("stt: whisper binary %q not found in PATH: %v", w.bin, err)
	}

	return w
}

// ListenOnce records from the microphone for at most phraseLimit and
// returns the cleaned transcription. The whole call is bounded by
// timeout. An empty string with a nil error means silence.
func (w *Whisper) ListenOnce(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := w.recordChunk(ctx, phraseLimit)
	if err != nil {
		return "", err
	}
	return cleanTranscription(text), nil
}

// Transcribe runs the model over the given WAV bytes.
func (w *Whisper) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if err := os.MkdirAll(w.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	f, err := os.CreateTemp(w.tempDir, "chunk-*.wav")
	if err != nil {
		return "", fmt.Errorf("creating temp wav: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(wav); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp wav: %w", err)
	}

	// -nt suppresses timestamps so the output is plain text.
	cmd := exec.CommandContext(ctx, w.bin, "-m", w.model, "-f", filepath.Clean(path), "-nt")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("running whisper: %w", err)
	}

	return cleanTranscription(string(out)), nil
}

// recordChunk does one record-and-transcribe cycle with the given
// duration.
func (w *Whisper) recordChunk(ctx context.Context, duration time.Duration) (string, error) {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := w.log.Level() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		w.bin,
		w.model,
		w.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		return "", fmt.Errorf("transcriber init: %w", err)
	}

	if err := t.Start(); err != nil {
		return "", fmt.Errorf("starting recording: %w", err)
	}

	select {
	case <-time.After(duration):
	case <-ctx.Done():
	}

	t.Stop()
	wg.Wait()

	return result, nil
}

// cleanTranscription strips whitespace, normalizes newlines, and removes
// common whisper artifacts like "[BLANK_AUDIO]", parenthesized noise
// annotations, and known hallucinated phrases.
func cleanTranscription(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)

	for _, j := range []string{"[BLANK_AUDIO]", "[BLANK AUDIO]", "[Music]", "[silence]"} {
		s = strings.ReplaceAll(s, j, "")
		s = strings.ReplaceAll(s, strings.ToLower(j), "")
	}

	// Strip (parenthesized) and [bracketed] environmental annotations.
	s = envAnnotation.ReplaceAllString(s, "")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	s = strings.TrimSpace(s)

	// Whisper hallucinates these on silent audio; discard them outright.
	hallucinations := []string{
		"...",
		"you",
		"thank you.",
		"thanks for watching!",
		"thank you for watching.",
		"bye.",
		"bye!",
		"the end.",
	}
	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if h == lower {
			return ""
		}
	}

	// Strip whisper timestamp prefixes like "[00:00:00.000 --> 00:00:05.000]".
	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "]"); idx != -1 && idx < 40 {
			if rest := strings.TrimSpace(s[idx+1:]); rest != "" {
				return rest
			}
		}
	}

	return s
}
