// Package nav resolves report/{reportId}[/{section}] addressing into a
// validated dimension reference. It never errors on unknown sections: the
// same lookup backs not-found handling and graceful quick-action fallback,
// so the policy belongs to the caller.
package nav

import "venturelens/internal/registry"

// Ref is a resolved report address. DimensionID is empty for the
// whole-report view; Unrecognized marks a section segment that matched
// nothing in the registry.
type Ref struct {
	ReportID     string
	DimensionID  string
	Unrecognized bool
}

type Resolver struct {
	reg *registry.Registry
}

func NewResolver(reg *registry.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve maps a section segment onto a dimension. Routes are the public
// addressing scheme; bare ids are accepted too since quick-action callers
// hold ids rather than routes.
func (r *Resolver) Resolve(reportID, section string) Ref {
	if section == "" {
		return Ref{ReportID: reportID}
	}
	if d, ok := r.reg.ByRoute(section); ok {
		return Ref{ReportID: reportID, DimensionID: d.ID}
	}
	if r.reg.IsValidID(section) {
		return Ref{ReportID: reportID, DimensionID: section}
	}
	return Ref{ReportID: reportID, Unrecognized: true}
}
