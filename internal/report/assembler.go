// Package report turns accumulated per-dimension results into an immutable
// Report. Assembly never fails outright: whatever arrived renders, and an
// incomplete set yields a partial report with the composite withheld.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"venturelens/internal/domain"
	"venturelens/internal/registry"
	"venturelens/internal/risk"
	"venturelens/internal/scoring"
)

type Assembler struct {
	reg    *registry.Registry
	policy risk.Policy
}

func NewAssembler(reg *registry.Registry, policy risk.Policy) *Assembler {
	return &Assembler{reg: reg, policy: policy}
}

// Assemble builds a terminal report from whatever results are present.
// Dimension order follows the registry regardless of arrival order. Results
// with out-of-range sub-scores count as missing, so a composite is never
// computed over malformed input.
func (a *Assembler) Assemble(runID, startupID string, results map[string]DimensionResult) domain.Report {
	rep := domain.Report{
		ID:         uuid.NewString(),
		RunRef:     runID,
		StartupRef: startupID,
		CreatedAt:  time.Now().UTC(),
	}

	subScores := make(map[string]float64, a.reg.Count())
	var missing []string
	for _, d := range a.reg.All() {
		res, ok := results[d.ID]
		if !ok || !validSubScore(res.SubScore) {
			missing = append(missing, d.ID)
			continue
		}
		rep.DimensionScores = append(rep.DimensionScores, domain.DimensionScore{
			DimensionID: d.ID,
			SubScore:    res.SubScore,
			Data:        res.Data,
		})
		subScores[d.ID] = res.SubScore
	}

	if modifier, ok := results[a.reg.Modifier().ID]; ok {
		signals, err := risk.ExtractSignals(a.policy, modifier.Data)
		if err == nil {
			rep.RiskSignals = signals
		}
		// Malformed risk data degrades to no signals; the dimension's raw
		// payload still ships with the report.
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		rep.State = domain.ReportPartial
		rep.MissingDimensions = missing
		return rep
	}

	agg, err := scoring.Compute(a.reg, subScores)
	if err != nil {
		// Unreachable with a validated registry and the sub-score filter
		// above, but a wrong composite must never ship.
		rep.State = domain.ReportFailed
		rep.FailureReason = err.Error()
		return rep
	}
	rep.State = domain.ReportComplete
	rep.CompositeScore = &agg.CompositeScore
	rep.Signal = &agg.Signal
	return rep
}

func validSubScore(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}
