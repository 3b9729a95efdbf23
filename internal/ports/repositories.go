package ports

import (
	"context"
	"encoding/json"
	"errors"

	"venturelens/internal/domain"
)

// ErrNotFound is returned by repositories for unknown ids.
var ErrNotFound = errors.New("not found")

// StartupRepository stores startups keyed by registrable website domain
// (eTLD+1) so duplicate submissions share one row.
type StartupRepository interface {
	GetOrCreate(ctx context.Context, name, website, registrable string) (domain.Startup, error)
	Get(ctx context.Context, startupID string) (domain.Startup, error)
}

// RunRepository manages validation run records.
type RunRepository interface {
	Create(ctx context.Context, startupID string, runContext json.RawMessage) (runID string, err error)
	GetRun(ctx context.Context, runID string) (domain.ValidationRun, error)
}

// ReportRepository persists reports append-only; terminal reports are never
// updated in place.
type ReportRepository interface {
	Save(ctx context.Context, rep domain.Report) error
	GetReport(ctx context.Context, reportID string) (domain.Report, error)
}
