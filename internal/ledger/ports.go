// Package ledger defines the boundary to the append-only transaction log and
// normalizes every timestamp crossing it to a single canonical zone. The
// analytics core never sees a naive or mixed-zone timestamp.
package ledger

import (
	"context"
	"time"

	"duit/internal/core"
)

// Ports for the ledger collaborator.
type (
	// Reader supplies a user's transactions inside [since, until), ordered
	// by timestamp. Rows with unparsable timestamps are excluded, never
	// surfaced as errors.
	Reader interface {
		ListTransactions(ctx context.Context, userID string, since, until time.Time) ([]core.Transaction, error)
	}

	// Appender records a new transaction and returns an opaque row
	// reference. The ledger is append-only: there is no update or delete.
	Appender interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)
