package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venturelens/internal/domain"
	"venturelens/internal/registry"
)

func mustRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.Load()
	require.NoError(t, err)
	return r
}

func uniformScores(reg *registry.Registry, v float64) map[string]float64 {
	out := make(map[string]float64, reg.Count())
	for _, d := range reg.All() {
		out[d.ID] = v
	}
	return out
}

func TestComputeUniformScores(t *testing.T) {
	reg := mustRegistry(t)

	cases := []struct {
		sub    float64
		want   int
		signal domain.Signal
	}{
		{80, 80, domain.SignalGo},
		{55, 55, domain.SignalCaution},
		{30, 30, domain.SignalNoGo},
		{75, 75, domain.SignalGo},
		{50, 50, domain.SignalCaution},
		{0, 0, domain.SignalNoGo},
		{100, 100, domain.SignalGo},
	}
	for _, tc := range cases {
		res, err := Compute(reg, uniformScores(reg, tc.sub))
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.CompositeScore, "sub-score %v", tc.sub)
		assert.Equal(t, tc.signal, res.Signal, "sub-score %v", tc.sub)
	}
}

func TestComputeWeighted(t *testing.T) {
	reg := mustRegistry(t)
	scores := uniformScores(reg, 50)
	// market carries weight 0.20; moving it alone moves the composite by
	// 0.20 per point.
	scores["market"] = 100
	res, err := Compute(reg, scores)
	require.NoError(t, err)
	assert.Equal(t, 60, res.CompositeScore)
}

func TestComputeRounding(t *testing.T) {
	reg := mustRegistry(t)
	scores := uniformScores(reg, 70)

	scores["problem"] = 73.2 // 70 + 0.15*3.2 = 70.48 -> 70
	res, err := Compute(reg, scores)
	require.NoError(t, err)
	assert.Equal(t, 70, res.CompositeScore)

	scores["problem"] = 73.4 // 70 + 0.15*3.4 = 70.51 -> 71
	res, err = Compute(reg, scores)
	require.NoError(t, err)
	assert.Equal(t, 71, res.CompositeScore)
}

func TestComputeDeterministic(t *testing.T) {
	reg := mustRegistry(t)
	scores := uniformScores(reg, 63)
	scores["market"] = 81
	scores["team"] = 12

	first, err := Compute(reg, scores)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := Compute(reg, scores)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeMissingDimension(t *testing.T) {
	reg := mustRegistry(t)
	scores := uniformScores(reg, 60)
	delete(scores, "team")
	delete(scores, "customer")

	_, err := Compute(reg, scores)
	var incomplete *IncompleteScoreError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"customer", "team"}, incomplete.Missing)
}

func TestComputeInvalidScore(t *testing.T) {
	reg := mustRegistry(t)

	for _, bad := range []float64{-1, 100.5, math.NaN()} {
		scores := uniformScores(reg, 60)
		scores["solution"] = bad
		_, err := Compute(reg, scores)
		var invalid *InvalidScoreError
		require.ErrorAs(t, err, &invalid, "value %v", bad)
		assert.Equal(t, "solution", invalid.DimensionID)
	}
}

func TestModifierExcludedFromComposite(t *testing.T) {
	reg := mustRegistry(t)
	scores := uniformScores(reg, 70)

	scores["risk"] = 10
	low, err := Compute(reg, scores)
	require.NoError(t, err)

	scores["risk"] = 90
	high, err := Compute(reg, scores)
	require.NoError(t, err)

	assert.Equal(t, 70, low.CompositeScore)
	assert.Equal(t, low, high)
}

func TestModifierStillValidated(t *testing.T) {
	reg := mustRegistry(t)
	scores := uniformScores(reg, 70)
	scores["risk"] = 250
	_, err := Compute(reg, scores)
	var invalid *InvalidScoreError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "risk", invalid.DimensionID)
}

func TestSignalFor(t *testing.T) {
	assert.Equal(t, domain.SignalGo, SignalFor(75))
	assert.Equal(t, domain.SignalCaution, SignalFor(74))
	assert.Equal(t, domain.SignalCaution, SignalFor(50))
	assert.Equal(t, domain.SignalNoGo, SignalFor(49))
}
