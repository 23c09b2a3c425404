package session

import (
	"sync"

	"github.com/demilade/souschef/internal/domain"
)

// Log is the append-only session transcript. Turns are kept in arrival
// order and never rewritten. Safe for concurrent use.
type Log struct {
	mu    sync.RWMutex
	turns []domain.DialogueTurn
}

// NewLog creates an empty transcript.
func NewLog() *Log {
	return &Log{}
}

// Append records one turn.
func (l *Log) Append(role domain.Role, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, domain.DialogueTurn{Role: role, Text: text})
}

// Turns returns a copy of the transcript, oldest first.
func (l *Log) Turns() []domain.DialogueTurn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.DialogueTurn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of recorded turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// Tail returns up to n most recent turns, oldest first.
func (l *Log) Tail(n int) []domain.DialogueTurn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n > len(l.turns) {
		n = len(l.turns)
	}
	out := make([]domain.DialogueTurn, n)
	copy(out, l.turns[len(l.turns)-n:])
	return out
}
