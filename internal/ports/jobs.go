package ports

import "context"

type RunJob struct {
	ID    string
	RunID string
}

// JobRepository supports claiming and updating validation run jobs.
type JobRepository interface {
	ClaimNext(ctx context.Context) (job RunJob, found bool, err error)
	MarkRunning(ctx context.Context, jobID string) error
	UpdateRunProgress(ctx context.Context, runID string, progress float64) error
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	StartJobForRun(ctx context.Context, runID string) (jobID string, err error)
}
