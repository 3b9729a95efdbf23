// Package registry is the single source of truth for evaluation dimensions.
// Weights, diagram types, and routes are a product contract; nothing outside
// this package may hardcode them.
package registry

import (
	"fmt"
	"math"
)

// Role distinguishes dimensions that enter the weighted composite from the
// single risk modifier, which only feeds risk-signal extraction.
type Role string

const (
	RoleScored   Role = "scored"
	RoleModifier Role = "modifier"
)

// DiagramType identifies the render payload shape a dimension produces.
type DiagramType string

const (
	DiagramPyramid    DiagramType = "pyramid"
	DiagramFunnel     DiagramType = "funnel"
	DiagramMatrix     DiagramType = "matrix"
	DiagramCapability DiagramType = "capability"
	DiagramTimeline   DiagramType = "timeline"
	DiagramHeatGrid   DiagramType = "heatgrid"
)

type DimensionDefinition struct {
	ID      string      `json:"id"`
	Label   string      `json:"label"`
	Color   string      `json:"color"`
	Weight  float64     `json:"weight"`
	Role    Role        `json:"role"`
	Diagram DiagramType `json:"diagram"`
	Route   string      `json:"route"`
	Phase   int         `json:"phase"`
}

// weightTolerance bounds floating error when checking that scored weights
// sum to 1.0.
const weightTolerance = 1e-6

// dimensions is the compiled-in table, in presentation order (phase, then
// declared order). Load validates it once at startup.
var dimensions = []DimensionDefinition{
	{ID: "problem", Label: "Problem Severity", Color: "#e11d48", Weight: 0.15, Role: RoleScored, Diagram: DiagramPyramid, Route: "problem", Phase: 1},
	{ID: "customer", Label: "Customer Clarity", Color: "#f59e0b", Weight: 0.10, Role: RoleScored, Diagram: DiagramFunnel, Route: "customer", Phase: 1},
	{ID: "market", Label: "Market Opportunity", Color: "#10b981", Weight: 0.20, Role: RoleScored, Diagram: DiagramHeatGrid, Route: "market", Phase: 2},
	{ID: "competition", Label: "Competitive Position", Color: "#3b82f6", Weight: 0.10, Role: RoleScored, Diagram: DiagramMatrix, Route: "competition", Phase: 2},
	{ID: "solution", Label: "Solution Strength", Color: "#8b5cf6", Weight: 0.15, Role: RoleScored, Diagram: DiagramCapability, Route: "solution", Phase: 3},
	{ID: "business-model", Label: "Business Model", Color: "#14b8a6", Weight: 0.10, Role: RoleScored, Diagram: DiagramFunnel, Route: "business-model", Phase: 3},
	{ID: "gtm", Label: "Go-To-Market", Color: "#f97316", Weight: 0.10, Role: RoleScored, Diagram: DiagramTimeline, Route: "go-to-market", Phase: 4},
	{ID: "team", Label: "Team & Execution", Color: "#6366f1", Weight: 0.10, Role: RoleScored, Diagram: DiagramCapability, Route: "team", Phase: 4},
	{ID: "risk", Label: "Risk Assessment", Color: "#64748b", Weight: 0, Role: RoleModifier, Diagram: DiagramMatrix, Route: "risk", Phase: 5},
}

// ConfigError marks a registry invariant violation. Fatal at startup: a bad
// weight table must never serve a score.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "registry config: " + e.Reason }

// Registry is an immutable, ordered view over the dimension table.
type Registry struct {
	ordered  []DimensionDefinition
	byID     map[string]int
	byRoute  map[string]int
	modifier string
}

// Load validates the compiled-in table and returns the registry. It is the
// only constructor; callers must treat the result as read-only.
func Load() (*Registry, error) {
	return load(dimensions)
}

func load(defs []DimensionDefinition) (*Registry, error) {
	r := &Registry{
		ordered: make([]DimensionDefinition, len(defs)),
		byID:    make(map[string]int, len(defs)),
		byRoute: make(map[string]int, len(defs)),
	}
	copy(r.ordered, defs)

	var weightSum float64
	modifiers := 0
	for i, d := range r.ordered {
		if d.ID == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("dimension %d has empty id", i)}
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, &ConfigError{Reason: "duplicate dimension id " + d.ID}
		}
		if _, dup := r.byRoute[d.Route]; dup {
			return nil, &ConfigError{Reason: "duplicate route " + d.Route}
		}
		if d.Weight < 0 {
			return nil, &ConfigError{Reason: fmt.Sprintf("dimension %s has negative weight %v", d.ID, d.Weight)}
		}
		if !knownDiagram(d.Diagram) {
			return nil, &ConfigError{Reason: fmt.Sprintf("dimension %s has unknown diagram type %q", d.ID, d.Diagram)}
		}
		switch d.Role {
		case RoleScored:
			weightSum += d.Weight
		case RoleModifier:
			if d.Weight != 0 {
				return nil, &ConfigError{Reason: fmt.Sprintf("modifier %s must carry weight 0, has %v", d.ID, d.Weight)}
			}
			modifiers++
			r.modifier = d.ID
		default:
			return nil, &ConfigError{Reason: fmt.Sprintf("dimension %s has unknown role %q", d.ID, d.Role)}
		}
		r.byID[d.ID] = i
		r.byRoute[d.Route] = i
	}
	if modifiers != 1 {
		return nil, &ConfigError{Reason: fmt.Sprintf("expected exactly one modifier dimension, found %d", modifiers)}
	}
	if math.Abs(weightSum-1.0) > weightTolerance {
		return nil, &ConfigError{Reason: fmt.Sprintf("scored weights sum to %.6f, must sum to 1.0", weightSum)}
	}
	return r, nil
}

func knownDiagram(t DiagramType) bool {
	switch t {
	case DiagramPyramid, DiagramFunnel, DiagramMatrix, DiagramCapability, DiagramTimeline, DiagramHeatGrid:
		return true
	}
	return false
}

// All returns every dimension in presentation order.
func (r *Registry) All() []DimensionDefinition {
	out := make([]DimensionDefinition, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Scored returns the dimensions that enter the composite, in order.
func (r *Registry) Scored() []DimensionDefinition {
	out := make([]DimensionDefinition, 0, len(r.ordered)-1)
	for _, d := range r.ordered {
		if d.Role == RoleScored {
			out = append(out, d)
		}
	}
	return out
}

// Modifier returns the single risk-modifier dimension.
func (r *Registry) Modifier() DimensionDefinition {
	d, _ := r.Get(r.modifier)
	return d
}

func (r *Registry) Get(id string) (DimensionDefinition, bool) {
	i, ok := r.byID[id]
	if !ok {
		return DimensionDefinition{}, false
	}
	return r.ordered[i], true
}

// ByRoute looks a dimension up by its external path segment.
func (r *Registry) ByRoute(route string) (DimensionDefinition, bool) {
	i, ok := r.byRoute[route]
	if !ok {
		return DimensionDefinition{}, false
	}
	return r.ordered[i], true
}

func (r *Registry) IsValidID(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Registry) Count() int { return len(r.ordered) }
