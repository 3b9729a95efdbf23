package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"venturelens/internal/domain"
	"venturelens/internal/ports"
)

type Service struct {
	startups ports.StartupRepository
	runs     ports.RunRepository
}

func New(startups ports.StartupRepository, runs ports.RunRepository) *Service {
	return &Service{startups: startups, runs: runs}
}

// RegisterStartup get-or-creates a startup keyed by the registrable domain
// of its website, so resubmitting the same site lands on the same row.
func (s *Service) RegisterStartup(ctx context.Context, name, website string) (domain.Startup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Startup{}, fmt.Errorf("startup name is required")
	}
	registrable := ""
	if website != "" {
		u, err := url.Parse(website)
		if err != nil {
			return domain.Startup{}, fmt.Errorf("parse website: %w", err)
		}
		host := u.Hostname()
		if host == "" {
			host = u.Path // bare "acme.io" parses as a path
		}
		// The suffix list is lowercase; match it on equal terms.
		host = strings.ToLower(host)
		registrable, err = publicsuffix.EffectiveTLDPlusOne(host)
		if err != nil {
			registrable = host
		}
	}
	return s.startups.GetOrCreate(ctx, name, website, registrable)
}

// Enqueue creates a queued validation run for the startup. Each call is an
// independent run with its own eventual report; double submits race nothing.
func (s *Service) Enqueue(ctx context.Context, startupID string, runContext json.RawMessage) (string, error) {
	if _, err := s.startups.Get(ctx, startupID); err != nil {
		return "", fmt.Errorf("startup %s: %w", startupID, err)
	}
	runID, err := s.runs.Create(ctx, startupID, runContext)
	if err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Service) Status(ctx context.Context, runID string) (domain.ValidationRun, error) {
	return s.runs.GetRun(ctx, runID)
}
