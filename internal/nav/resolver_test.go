package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venturelens/internal/registry"
)

func TestResolveWholeReport(t *testing.T) {
	reg, err := registry.Load()
	require.NoError(t, err)
	r := NewResolver(reg)

	ref := r.Resolve("rep-1", "")
	assert.Equal(t, "rep-1", ref.ReportID)
	assert.Empty(t, ref.DimensionID)
	assert.False(t, ref.Unrecognized)
}

func TestResolveEveryRouteRoundTrips(t *testing.T) {
	reg, err := registry.Load()
	require.NoError(t, err)
	r := NewResolver(reg)

	for _, d := range reg.All() {
		ref := r.Resolve("rep-1", d.Route)
		assert.Equal(t, d.ID, ref.DimensionID, "route %q", d.Route)
		assert.False(t, ref.Unrecognized)
	}
}

func TestResolveAcceptsBareID(t *testing.T) {
	reg, err := registry.Load()
	require.NoError(t, err)
	r := NewResolver(reg)

	// "gtm" is an id whose route is "go-to-market".
	ref := r.Resolve("rep-1", "gtm")
	assert.Equal(t, "gtm", ref.DimensionID)
}

func TestResolveUnknownSection(t *testing.T) {
	reg, err := registry.Load()
	require.NoError(t, err)
	r := NewResolver(reg)

	ref := r.Resolve("rep-1", "not-a-real-section")
	assert.Equal(t, "rep-1", ref.ReportID)
	assert.Empty(t, ref.DimensionID)
	assert.True(t, ref.Unrecognized)
}
