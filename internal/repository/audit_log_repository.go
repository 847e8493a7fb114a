package repository

import (
	"context"

	"stockscan/internal/domain/model"
)

// Secondary copy of committed log entries (e.g. a database).
// Failures never undo a committed decision.
type AuditMirror interface {
	Record(ctx context.Context, entry model.LogEntry, source string) error
}
