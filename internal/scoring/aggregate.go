// Package scoring computes the weighted composite score and verdict signal.
// Everything here is pure: same input, same output, no I/O.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"venturelens/internal/domain"
	"venturelens/internal/registry"
)

// Verdict thresholds are policy constants; call sites must not restate them.
const (
	thresholdGo      = 75
	thresholdCaution = 50
)

// IncompleteScoreError reports registry dimensions absent from the input.
// The aggregator never computes a composite from a subset.
type IncompleteScoreError struct {
	Missing []string
}

func (e *IncompleteScoreError) Error() string {
	return "incomplete scores, missing dimensions: " + strings.Join(e.Missing, ", ")
}

// InvalidScoreError reports a sub-score outside [0,100] (or NaN).
type InvalidScoreError struct {
	DimensionID string
	Value       float64
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("invalid sub-score %v for dimension %s", e.Value, e.DimensionID)
}

type Result struct {
	CompositeScore int
	Signal         domain.Signal
}

// Compute validates the full sub-score map and returns the rounded weighted
// composite plus its signal. The modifier dimension is validated but never
// enters the sum. All-or-nothing: any invalid input yields no result.
func Compute(reg *registry.Registry, subScores map[string]float64) (Result, error) {
	var missing []string
	for _, d := range reg.All() {
		if _, ok := subScores[d.ID]; !ok {
			missing = append(missing, d.ID)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Result{}, &IncompleteScoreError{Missing: missing}
	}
	for _, d := range reg.All() {
		v := subScores[d.ID]
		if math.IsNaN(v) || v < 0 || v > 100 {
			return Result{}, &InvalidScoreError{DimensionID: d.ID, Value: v}
		}
	}

	var sum float64
	for _, d := range reg.Scored() {
		sum += subScores[d.ID] * d.Weight
	}
	// math.Round is half-away-from-zero; weights sum to 1.0 so the result
	// stays in [0,100].
	composite := int(math.Round(sum))

	return Result{CompositeScore: composite, Signal: SignalFor(composite)}, nil
}

// SignalFor maps a composite score onto the go/caution/no-go verdict.
func SignalFor(composite int) domain.Signal {
	switch {
	case composite >= thresholdGo:
		return domain.SignalGo
	case composite >= thresholdCaution:
		return domain.SignalCaution
	default:
		return domain.SignalNoGo
	}
}
