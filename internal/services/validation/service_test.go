package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venturelens/internal/domain"
	"venturelens/internal/ports"
)

type fakeStartups struct {
	created  []domain.Startup
	byDomain map[string]domain.Startup
}

func newFakeStartups() *fakeStartups {
	return &fakeStartups{byDomain: map[string]domain.Startup{}}
}

func (f *fakeStartups) GetOrCreate(_ context.Context, name, website, registrable string) (domain.Startup, error) {
	if registrable != "" {
		if st, ok := f.byDomain[registrable]; ok {
			return st, nil
		}
	}
	st := domain.Startup{ID: fmt.Sprintf("startup-%d", len(f.created)+1), Name: name, RegistrableDomain: registrable, FirstSeenAt: time.Now()}
	if website != "" {
		st.Website = &website
	}
	f.created = append(f.created, st)
	if registrable != "" {
		f.byDomain[registrable] = st
	}
	return st, nil
}

func (f *fakeStartups) Get(_ context.Context, startupID string) (domain.Startup, error) {
	for _, st := range f.created {
		if st.ID == startupID {
			return st, nil
		}
	}
	return domain.Startup{}, ports.ErrNotFound
}

type fakeRuns struct {
	runs map[string]domain.ValidationRun
}

func (f *fakeRuns) Create(_ context.Context, startupID string, runContext json.RawMessage) (string, error) {
	id := fmt.Sprintf("run-%d", len(f.runs)+1)
	f.runs[id] = domain.ValidationRun{ID: id, StartupRef: startupID, Status: domain.RunQueued, Context: runContext}
	return id, nil
}

func (f *fakeRuns) GetRun(_ context.Context, runID string) (domain.ValidationRun, error) {
	run, ok := f.runs[runID]
	if !ok {
		return domain.ValidationRun{}, ports.ErrNotFound
	}
	return run, nil
}

func newService() (*Service, *fakeStartups, *fakeRuns) {
	startups := newFakeStartups()
	runs := &fakeRuns{runs: map[string]domain.ValidationRun{}}
	return New(startups, runs), startups, runs
}

func TestRegisterStartupNormalizesDomain(t *testing.T) {
	svc, _, _ := newService()

	cases := []struct {
		website string
		want    string
	}{
		{"https://www.acme.io/pricing", "acme.io"},
		{"http://acme.io", "acme.io"},
		{"https://APP.Acme.CO.UK", "acme.co.uk"},
	}
	for _, tc := range cases {
		st, err := svc.RegisterStartup(context.Background(), "Acme", tc.website)
		require.NoError(t, err, tc.website)
		assert.Equal(t, tc.want, st.RegistrableDomain, tc.website)
	}
}

func TestRegisterStartupSameDomainSameRow(t *testing.T) {
	svc, startups, _ := newService()

	first, err := svc.RegisterStartup(context.Background(), "Acme", "https://acme.io")
	require.NoError(t, err)
	second, err := svc.RegisterStartup(context.Background(), "Acme Inc", "https://www.acme.io/about")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, startups.created, 1)
}

func TestRegisterStartupRequiresName(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.RegisterStartup(context.Background(), "   ", "https://acme.io")
	assert.Error(t, err)
}

func TestRegisterStartupWithoutWebsite(t *testing.T) {
	svc, _, _ := newService()
	st, err := svc.RegisterStartup(context.Background(), "Stealthco", "")
	require.NoError(t, err)
	assert.Empty(t, st.RegistrableDomain)
	assert.Nil(t, st.Website)
}

func TestEnqueueCreatesIndependentRuns(t *testing.T) {
	svc, _, runs := newService()
	st, err := svc.RegisterStartup(context.Background(), "Acme", "")
	require.NoError(t, err)

	id1, err := svc.Enqueue(context.Background(), st.ID, json.RawMessage(`{"idea":"v1"}`))
	require.NoError(t, err)
	id2, err := svc.Enqueue(context.Background(), st.ID, json.RawMessage(`{"idea":"v2"}`))
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.Len(t, runs.runs, 2)
}

func TestEnqueueUnknownStartup(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.Enqueue(context.Background(), "startup-404", nil)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestStatus(t *testing.T) {
	svc, _, _ := newService()
	st, err := svc.RegisterStartup(context.Background(), "Acme", "")
	require.NoError(t, err)
	runID, err := svc.Enqueue(context.Background(), st.ID, nil)
	require.NoError(t, err)

	run, err := svc.Status(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunQueued, run.Status)
	assert.Equal(t, st.ID, run.StartupRef)
}
