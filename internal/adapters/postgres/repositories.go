package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"venturelens/internal/domain"
	"venturelens/internal/ports"
)

// StartupRepository

func (db *DB) GetOrCreate(ctx context.Context, name, website, registrable string) (domain.Startup, error) {
	registrable = strings.ToLower(registrable)
	var s domain.Startup
	var row pgx.Row
	if registrable != "" {
		row = db.Pool.QueryRow(ctx, `
            INSERT INTO startups (name, website, registrable_domain)
            VALUES ($1, NULLIF($2, ''), $3)
            ON CONFLICT (registrable_domain) DO UPDATE SET name = EXCLUDED.name
            RETURNING id, name, website, COALESCE(registrable_domain, ''), first_seen_at
        `, name, website, registrable)
	} else {
		row = db.Pool.QueryRow(ctx, `
            INSERT INTO startups (name, website)
            VALUES ($1, NULLIF($2, ''))
            RETURNING id, name, website, COALESCE(registrable_domain, ''), first_seen_at
        `, name, website)
	}
	if err := row.Scan(&s.ID, &s.Name, &s.Website, &s.RegistrableDomain, &s.FirstSeenAt); err != nil {
		return domain.Startup{}, err
	}
	return s, nil
}

func (db *DB) Get(ctx context.Context, startupID string) (domain.Startup, error) {
	var s domain.Startup
	err := db.Pool.QueryRow(ctx, `
        SELECT id, name, website, COALESCE(registrable_domain, ''), first_seen_at
        FROM startups WHERE id = $1
    `, startupID).Scan(&s.ID, &s.Name, &s.Website, &s.RegistrableDomain, &s.FirstSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Startup{}, ports.ErrNotFound
	}
	return s, err
}

// RunRepository

func (db *DB) Create(ctx context.Context, startupID string, runContext json.RawMessage) (string, error) {
	var runID string
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO validation_runs (startup_id, context, status, progress)
        VALUES ($1, $2, 'queued', 0)
        RETURNING id
    `, startupID, runContext).Scan(&runID)
	if err != nil {
		return "", err
	}
	// create job row
	_, err = db.Pool.Exec(ctx, `INSERT INTO run_jobs (run_id) VALUES ($1)`, runID)
	return runID, err
}

func (db *DB) GetRun(ctx context.Context, runID string) (domain.ValidationRun, error) {
	var run domain.ValidationRun
	var status string
	err := db.Pool.QueryRow(ctx, `
        SELECT r.id, r.startup_id, r.status, r.progress, r.context,
               r.queued_at, r.started_at, r.finished_at,
               COALESCE((
                   SELECT rep.id::text FROM reports rep
                   WHERE rep.run_id = r.id
                   ORDER BY rep.created_at DESC LIMIT 1
               ), '')
        FROM validation_runs r WHERE r.id = $1
    `, runID).Scan(&run.ID, &run.StartupRef, &status, &run.Progress, &run.Context,
		&run.QueuedAt, &run.StartedAt, &run.FinishedAt, &run.ReportRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ValidationRun{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.ValidationRun{}, err
	}
	run.Status = domain.RunStatus(status)
	return run, nil
}

// ReportRepository

func (db *DB) Save(ctx context.Context, rep domain.Report) (err error) {
	riskSignals, err := json.Marshal(rep.RiskSignals)
	if err != nil {
		return err
	}
	missing, err := json.Marshal(rep.MissingDimensions)
	if err != nil {
		return err
	}

	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
        INSERT INTO reports (id, run_id, startup_id, state, composite_score, signal,
                             risk_signals, missing_dimensions, failure_reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
    `, rep.ID, rep.RunRef, rep.StartupRef, string(rep.State), rep.CompositeScore,
		signalText(rep.Signal), riskSignals, missing, rep.FailureReason, rep.CreatedAt); err != nil {
		return err
	}
	for i, ds := range rep.DimensionScores {
		if _, err = tx.Exec(ctx, `
            INSERT INTO dimension_scores (report_id, dimension_id, sub_score, data, position)
            VALUES ($1, $2, $3, $4, $5)
        `, rep.ID, ds.DimensionID, ds.SubScore, ds.Data, i); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) GetReport(ctx context.Context, reportID string) (domain.Report, error) {
	var rep domain.Report
	var state string
	var signal *string
	var riskSignals, missing []byte
	var failureReason *string
	err := db.Pool.QueryRow(ctx, `
        SELECT id, run_id, startup_id, state, composite_score, signal,
               risk_signals, missing_dimensions, failure_reason, created_at
        FROM reports WHERE id = $1
    `, reportID).Scan(&rep.ID, &rep.RunRef, &rep.StartupRef, &state, &rep.CompositeScore,
		&signal, &riskSignals, &missing, &failureReason, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Report{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Report{}, err
	}
	rep.State = domain.ReportState(state)
	if signal != nil {
		s := domain.Signal(*signal)
		rep.Signal = &s
	}
	if failureReason != nil {
		rep.FailureReason = *failureReason
	}
	if err := json.Unmarshal(riskSignals, &rep.RiskSignals); err != nil {
		return domain.Report{}, fmt.Errorf("decode risk signals: %w", err)
	}
	if err := json.Unmarshal(missing, &rep.MissingDimensions); err != nil {
		return domain.Report{}, fmt.Errorf("decode missing dimensions: %w", err)
	}

	rows, err := db.Pool.Query(ctx, `
        SELECT dimension_id, sub_score, data
        FROM dimension_scores WHERE report_id = $1
        ORDER BY position
    `, reportID)
	if err != nil {
		return domain.Report{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var ds domain.DimensionScore
		if err := rows.Scan(&ds.DimensionID, &ds.SubScore, &ds.Data); err != nil {
			return domain.Report{}, err
		}
		rep.DimensionScores = append(rep.DimensionScores, ds)
	}
	return rep, rows.Err()
}

func signalText(s *domain.Signal) *string {
	if s == nil {
		return nil
	}
	out := string(*s)
	return &out
}
