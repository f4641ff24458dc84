// Package store persists classification results and run history between
// pipeline invocations.
package store

import (
	"context"
	"time"

	"github.com/sells-group/retreat-leads/internal/model"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	Source     string    `json:"source,omitempty"`
	Status     string    `json:"status"`
	Scraped    int       `json:"scraped"`
	Appended   int       `json:"appended"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

// Run statuses.
const (
	RunStatusComplete = "complete"
	RunStatusFailed   = "failed"
)

// Store defines the persistence interface used by the pipeline. A Store is
// opened at pipeline start and closed at pipeline end.
type Store interface {
	// Classification cache, keyed by organizer key.
	GetClassification(ctx context.Context, organizerKey string) (*model.AIAnalysis, error)
	SetClassification(ctx context.Context, organizerKey string, a model.AIAnalysis, ttl time.Duration) error
	DeleteExpiredClassifications(ctx context.Context) (int, error)

	// Run history
	RecordRun(ctx context.Context, r Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
