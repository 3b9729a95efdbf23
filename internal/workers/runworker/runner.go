package runworker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"venturelens/internal/logger"
	"venturelens/internal/ports"
	"venturelens/internal/registry"
	"venturelens/internal/report"
)

// RunProcessor performs the validation work for a job's run id.
type RunProcessor interface {
	Process(ctx context.Context, runID string) error
}

// Processor executes one validation run: it fans out an analysis call per
// registry dimension, accumulates results as they land, assembles a report
// when everything has reported or the assembly timeout elapses, and saves
// it append-only. A timeout produces a partial report, not an error.
type Processor struct {
	Reg             *registry.Registry
	Runs            ports.RunRepository
	Jobs            ports.JobRepository
	Reports         ports.ReportRepository
	Provider        ports.AnalysisProvider
	Assembler       *report.Assembler
	AssemblyTimeout time.Duration
	Log             *logger.Logger
}

func (p *Processor) Process(ctx context.Context, runID string) error {
	run, err := p.Runs.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	acc := report.NewAccumulator(p.Reg)
	total := p.Reg.Count()
	var landed atomic.Int64

	// Progress writes arrive from concurrent goroutines; keep them
	// monotonic so a straggler never rolls the bar back.
	var progressMu sync.Mutex
	best := 0.0
	setProgress := func(ctx context.Context, v float64) {
		progressMu.Lock()
		defer progressMu.Unlock()
		if v <= best {
			return
		}
		best = v
		if err := p.Jobs.UpdateRunProgress(ctx, runID, v); err != nil {
			p.Log.Warn("progress update failed", "run_id", runID, "err", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range p.Reg.All() {
		d := d
		g.Go(func() error {
			res, err := p.Provider.Analyze(gctx, d, run.Context)
			if err != nil {
				// Missing dimension, not a fatal run.
				p.Log.Warn("dimension analysis failed", "run_id", runID, "dimension", d.ID, "err", err)
				return nil
			}
			acc.Post(res)
			setProgress(gctx, float64(landed.Add(1))/float64(total))
			return nil
		})
	}
	// Stragglers past the timeout keep running until their own deadline but
	// can no longer join this report.
	go func() { _ = g.Wait() }()

	results := acc.Collect(ctx, p.AssemblyTimeout)

	rep := p.Assembler.Assemble(runID, run.StartupRef, results)
	if err := p.Reports.Save(ctx, rep); err != nil {
		return err
	}
	if len(rep.MissingDimensions) > 0 {
		p.Log.Info("assembled partial report", "run_id", runID, "report_id", rep.ID, "missing", rep.MissingDimensions)
	}
	setProgress(ctx, 1.0)
	return nil
}

// Run starts worker goroutines that claim jobs and process them.
func Run(ctx context.Context, repo ports.JobRepository, processor RunProcessor, concurrency int, pollInterval time.Duration, log *logger.Logger) {
	if concurrency < 1 {
		return
	}
	jobsCh := make(chan ports.RunJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNext(ctx)
					if err != nil {
						log.Error("job claim failed", "err", err)
						break
					}
					if !found {
						break
					}
					jobsCh <- job
				}
			}
		}
	}()

	// workers
	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for job := range jobsCh {
				if err := processor.Process(ctx, job.RunID); err != nil {
					_ = repo.MarkFailed(ctx, job.ID, err.Error())
					log.Error("run failed", "worker", idx, "job_id", job.ID, "run_id", job.RunID, "err", err)
					continue
				}
				if err := repo.MarkCompleted(ctx, job.ID); err != nil {
					log.Error("job completion failed", "worker", idx, "job_id", job.ID, "err", err)
				}
			}
		}(i)
	}
}

// ProcessInline runs a specific validation synchronously using the same
// processor logic as the background workers. It marks the job as running,
// processes it, and completes or fails it.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor RunProcessor, runID string) error {
	jobID, err := repo.StartJobForRun(ctx, runID)
	if err != nil {
		return err
	}
	if err := processor.Process(ctx, runID); err != nil {
		_ = repo.MarkFailed(ctx, jobID, err.Error())
		return err
	}
	return repo.MarkCompleted(ctx, jobID)
}
