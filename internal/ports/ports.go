package ports

import (
	"context"
	"encoding/json"

	"venturelens/internal/domain"
	"venturelens/internal/registry"
	"venturelens/internal/report"
)

// Validator registers startups and enqueues and tracks validation runs.
type Validator interface {
	RegisterStartup(ctx context.Context, name, website string) (domain.Startup, error)
	Enqueue(ctx context.Context, startupID string, runContext json.RawMessage) (runID string, err error)
	Status(ctx context.Context, runID string) (domain.ValidationRun, error)
}

// AnalysisProvider produces one dimension's sub-score and raw analysis data
// for a run context. Implementations may call a hosted model endpoint; a
// per-dimension failure means that dimension is missing, never a fatal run.
type AnalysisProvider interface {
	Analyze(ctx context.Context, dim registry.DimensionDefinition, runContext json.RawMessage) (report.DimensionResult, error)
}
