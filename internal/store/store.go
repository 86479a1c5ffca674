// Package store persists the most recent aggregated corpus so rate queries
// can be answered without re-running the aggregation.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/church-stats/attendance-cli/internal/report"
)

// ErrNoSnapshot is returned by Latest when no aggregation has run yet.
// Callers must surface this distinctly from an empty corpus.
var ErrNoSnapshot = eris.New("store: no snapshot")

// Snapshot is one saved aggregation result.
type Snapshot struct {
	ID        string
	Corpus    *report.Corpus
	CreatedAt time.Time
}

// Store is a single named slot holding the latest aggregated corpus.
// Save replaces the slot; last writer wins.
type Store interface {
	Save(ctx context.Context, corpus *report.Corpus) (*Snapshot, error)
	Latest(ctx context.Context) (*Snapshot, error)
	Close() error
}
