package registry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultTable(t *testing.T) {
	r, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9, r.Count())
	assert.Len(t, r.Scored(), 8)
	assert.Equal(t, "risk", r.Modifier().ID)
	assert.Equal(t, RoleModifier, r.Modifier().Role)
	assert.Zero(t, r.Modifier().Weight)
}

func TestScoredWeightsSumToOne(t *testing.T) {
	r, err := Load()
	require.NoError(t, err)

	var sum float64
	for _, d := range r.Scored() {
		sum += d.Weight
	}
	assert.InDelta(t, 1.0, sum, weightTolerance)
}

func TestLoadRejectsBadWeightSum(t *testing.T) {
	defs := append([]DimensionDefinition(nil), dimensions...)
	// 0.15 -> 0.14 leaves the scored sum at 0.99.
	for i := range defs {
		if defs[i].ID == "problem" {
			defs[i].Weight = 0.14
		}
	}
	_, err := load(defs)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "sum to 0.99")
}

func TestLoadRejectsModifierCount(t *testing.T) {
	noModifier := append([]DimensionDefinition(nil), dimensions...)
	for i := range noModifier {
		if noModifier[i].Role == RoleModifier {
			noModifier[i].Role = RoleScored
			noModifier[i].Weight = 0 // keeps the sum at 1.0
		}
	}
	_, err := load(noModifier)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "exactly one modifier")

	twoModifiers := append([]DimensionDefinition(nil), dimensions...)
	twoModifiers = append(twoModifiers, DimensionDefinition{
		ID: "regulatory", Label: "Regulatory Risk", Role: RoleModifier,
		Diagram: DiagramMatrix, Route: "regulatory", Phase: 5,
	})
	_, err = load(twoModifiers)
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "found 2")
}

func TestLoadRejectsDuplicateRoute(t *testing.T) {
	defs := append([]DimensionDefinition(nil), dimensions...)
	defs[1].Route = defs[0].Route
	_, err := load(defs)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "duplicate route")
}

func TestLoadRejectsUnknownDiagram(t *testing.T) {
	defs := append([]DimensionDefinition(nil), dimensions...)
	defs[0].Diagram = DiagramType("sankey")
	_, err := load(defs)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "unknown diagram type")
}

func TestLoadRejectsWeightedModifier(t *testing.T) {
	defs := append([]DimensionDefinition(nil), dimensions...)
	for i := range defs {
		if defs[i].Role == RoleModifier {
			defs[i].Weight = 0.1
		}
	}
	_, err := load(defs)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "weight 0")
}

func TestAccessors(t *testing.T) {
	r, err := Load()
	require.NoError(t, err)

	assert.True(t, r.IsValidID("market"))
	assert.False(t, r.IsValidID("go-to-market")) // route, not an id

	d, ok := r.ByRoute("go-to-market")
	require.True(t, ok)
	assert.Equal(t, "gtm", d.ID)

	_, ok = r.ByRoute("not-a-route")
	assert.False(t, ok)

	// Presentation order is phase-ascending and stable.
	all := r.All()
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Phase, all[i].Phase)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r, err := Load()
	require.NoError(t, err)

	all := r.All()
	all[0].Weight = math.Pi
	again := r.All()
	assert.NotEqual(t, math.Pi, again[0].Weight)
}
