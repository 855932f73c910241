// Package ledger defines the outbound port for exporting transactions to
// an external ledger.
package ledger

import (
	"context"

	"budget/internal/core"
)

// Writer appends a transaction to the external ledger and returns an
// opaque reference to the written entry.
type Writer interface {
	Append(ctx context.Context, t core.Transaction) (entryRef string, err error)
}
