package report

import (
	"context"
	"encoding/json"
	"time"

	"venturelens/internal/registry"
)

// DimensionResult is one analysis outcome posted by an upstream worker.
type DimensionResult struct {
	DimensionID string
	SubScore    float64
	Data        json.RawMessage
}

// Accumulator collects per-dimension results arriving in any order. Posters
// send; Collect owns all state. Finalization is either "every registry
// dimension reported" or the deadline, whichever comes first.
type Accumulator struct {
	reg *registry.Registry
	ch  chan DimensionResult
}

func NewAccumulator(reg *registry.Registry) *Accumulator {
	return &Accumulator{
		reg: reg,
		// One slot per dimension; a well-behaved producer posts each id once.
		ch: make(chan DimensionResult, reg.Count()),
	}
}

// Post submits a result. It never blocks: once the buffer is full the
// producer is misbehaving and the extra result is dropped.
func (a *Accumulator) Post(res DimensionResult) {
	select {
	case a.ch <- res:
	default:
	}
}

// Collect receives until all dimensions have reported, the timeout elapses,
// or ctx is cancelled. Unknown ids are ignored; the first result per id
// wins. The returned map is whatever arrived in time.
func (a *Accumulator) Collect(ctx context.Context, timeout time.Duration) map[string]DimensionResult {
	results := make(map[string]DimensionResult, a.reg.Count())
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for len(results) < a.reg.Count() {
		select {
		case res := <-a.ch:
			if !a.reg.IsValidID(res.DimensionID) {
				continue
			}
			if _, seen := results[res.DimensionID]; seen {
				continue
			}
			results[res.DimensionID] = res
		case <-timer.C:
			return results
		case <-ctx.Done():
			return results
		}
	}
	return results
}
