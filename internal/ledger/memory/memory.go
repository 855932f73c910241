// Package memory provides an in-process ledger for local development
// and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budget/internal/core"
	"budget/internal/ledger"
)

type Ledger struct {
	mu      sync.Mutex
	entries []core.Transaction
}

var _ ledger.Writer = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Append(_ context.Context, t core.Transaction) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, t)
	return fmt.Sprintf("memory:%d", len(l.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (l *Ledger) Entries() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]core.Transaction, len(l.entries))
	copy(out, l.entries)
	return out
}
