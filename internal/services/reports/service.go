package reports

import (
	"context"
	"errors"

	"venturelens/internal/diagram"
	"venturelens/internal/domain"
	"venturelens/internal/nav"
	"venturelens/internal/ports"
	"venturelens/internal/registry"
)

// ErrUnknownSection marks a section segment that resolves to no dimension.
var ErrUnknownSection = errors.New("unknown report section")

// Service is the read side: whole reports, single dimensions with mapped
// diagram data, and the dimension listing for navigation menus.
type Service struct {
	reg      *registry.Registry
	resolver *nav.Resolver
	reports  ports.ReportRepository
}

func New(reg *registry.Registry, reports ports.ReportRepository) *Service {
	return &Service{reg: reg, resolver: nav.NewResolver(reg), reports: reports}
}

func (s *Service) GetReport(ctx context.Context, reportID string) (domain.Report, error) {
	return s.reports.GetReport(ctx, reportID)
}

// DimensionView is one dimension of a report plus its render payload.
// Pending marks a dimension absent from a partial report. A mapping failure
// is isolated to this view: MappingError is set and Diagram stays nil.
type DimensionView struct {
	Definition   registry.DimensionDefinition
	Score        *domain.DimensionScore
	Diagram      *diagram.Data
	MappingError string
	Pending      bool
}

// GetDimension resolves a section segment against a report and maps the
// dimension's raw data into its declared diagram shape.
func (s *Service) GetDimension(ctx context.Context, reportID, section string) (DimensionView, error) {
	ref := s.resolver.Resolve(reportID, section)
	if ref.Unrecognized || ref.DimensionID == "" {
		return DimensionView{}, ErrUnknownSection
	}
	def, _ := s.reg.Get(ref.DimensionID)

	rep, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		return DimensionView{}, err
	}

	view := DimensionView{Definition: def}
	for i := range rep.DimensionScores {
		if rep.DimensionScores[i].DimensionID == def.ID {
			view.Score = &rep.DimensionScores[i]
			break
		}
	}
	if view.Score == nil {
		view.Pending = true
		return view, nil
	}

	data, err := diagram.Map(def.Diagram, view.Score.Data)
	if err != nil {
		view.MappingError = err.Error()
		return view, nil
	}
	view.Diagram = &data
	return view, nil
}

// ListDimensions returns the registry in presentation order.
func (s *Service) ListDimensions() []registry.DimensionDefinition {
	return s.reg.All()
}
