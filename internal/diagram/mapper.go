// Package diagram converts raw per-dimension analysis output into the render
// payload declared by the dimension's diagram type. Adding a dimension means
// one registry entry plus, at most, one case here; scoring and assembly
// never change.
package diagram

import (
	"encoding/json"
	"fmt"

	"venturelens/internal/registry"
)

// UnmappableDataError reports raw analysis output that lacks a field the
// declared diagram type requires. Required fields are never defaulted.
type UnmappableDataError struct {
	Diagram registry.DiagramType
	Field   string
}

func (e *UnmappableDataError) Error() string {
	return fmt.Sprintf("cannot map data to %s diagram: missing or invalid %s", e.Diagram, e.Field)
}

// Data is the tagged union of render payloads. Exactly one of the shape
// fields is set, matching Type.
type Data struct {
	Type       registry.DiagramType `json:"type"`
	Pyramid    *Pyramid             `json:"pyramid,omitempty"`
	Funnel     *Funnel              `json:"funnel,omitempty"`
	Matrix     *Matrix              `json:"matrix,omitempty"`
	Capability *Capability          `json:"capability,omitempty"`
	Timeline   *Timeline            `json:"timeline,omitempty"`
	HeatGrid   *HeatGrid            `json:"heatgrid,omitempty"`
}

type Tier struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// Pyramid renders ordered tiers, widest (first) at the base.
type Pyramid struct {
	Tiers []Tier `json:"tiers"`
}

type Stage struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Funnel struct {
	Stages []Stage `json:"stages"`
}

// MatrixPoint sits in one quadrant of a 2x2 matrix.
type MatrixPoint struct {
	Label    string `json:"label"`
	Quadrant int    `json:"quadrant"` // 1..4, counter-clockwise from top-right
}

type Matrix struct {
	XAxis  string        `json:"x_axis"`
	YAxis  string        `json:"y_axis"`
	Points []MatrixPoint `json:"points"`
}

type CapabilityItem struct {
	Label string  `json:"label"`
	Level float64 `json:"level"` // 0..100
}

type CapabilityGroup struct {
	Label string           `json:"label"`
	Items []CapabilityItem `json:"items"`
}

// Capability renders stacked capability groups.
type Capability struct {
	Groups []CapabilityGroup `json:"groups"`
}

type Milestone struct {
	Label string `json:"label"`
	At    string `json:"at"` // ISO date or relative marker, rendered verbatim
}

type Timeline struct {
	Milestones []Milestone `json:"milestones"`
}

type HeatCell struct {
	Row       string  `json:"row"`
	Col       string  `json:"col"`
	Intensity float64 `json:"intensity"` // 0..1
}

type HeatGrid struct {
	Rows  []string   `json:"rows"`
	Cols  []string   `json:"cols"`
	Cells []HeatCell `json:"cells"`
}

// Map parses raw analysis JSON into the payload for the given diagram type.
// Optional cosmetic fields (tier colors) may be absent; structural fields
// may not.
func Map(diagramType registry.DiagramType, raw json.RawMessage) (Data, error) {
	if len(raw) == 0 {
		return Data{}, &UnmappableDataError{Diagram: diagramType, Field: "data"}
	}
	switch diagramType {
	case registry.DiagramPyramid:
		return mapPyramid(raw)
	case registry.DiagramFunnel:
		return mapFunnel(raw)
	case registry.DiagramMatrix:
		return mapMatrix(raw)
	case registry.DiagramCapability:
		return mapCapability(raw)
	case registry.DiagramTimeline:
		return mapTimeline(raw)
	case registry.DiagramHeatGrid:
		return mapHeatGrid(raw)
	default:
		// Load() guarantees registry entries carry known types; this is
		// reachable only for callers bypassing the registry.
		return Data{}, &UnmappableDataError{Diagram: diagramType, Field: "type"}
	}
}

func mapPyramid(raw json.RawMessage) (Data, error) {
	var in struct {
		Tiers []struct {
			Label *string  `json:"label"`
			Value *float64 `json:"value"`
			Color string   `json:"color"`
		} `json:"tiers"`
	}
	if err := json.Unmarshal(raw, &in); err != nil || len(in.Tiers) == 0 {
		return Data{}, &UnmappableDataError{Diagram: registry.DiagramPyramid, Field: "tiers"}
	}
	p := &Pyramid{Tiers: make([]Tier, 0, len(in.Tiers))}
	for i, t := range in.Tiers {
		if t.Label == nil {
			return Data{}, &UnmappableDataError{Diagram: registry.DiagramPyramid, Field: fmt.Sprintf("tiers[%d].label", i)}
		}
		if t.Value == nil {
			return Data{}, &UnmappableDataError{Diagram: registry.DiagramPyramid, Field: fmt.Sprintf("tiers[%d].value", i)}
		}
		p.Tiers = append(p.Tiers, Tier{Label: *t.Label, Value: *t.Value, Color: t.Color})
	}
	return Data{Type: registry.DiagramPyramid, Pyramid: p}, nil
}

func mapFunnel(raw json.RawMessage) (Data, error) {
	var in struct {
		Stages []struct {
			Label *string  `json:"label"`
			Value *float64 `json:"value"`
		} `json:"stages"`
	}
	if err := json.Unmarshal(raw, &in); err != nil || len(in.Stages) == 0 {
		return Data{}, &UnmappableDataError{Diagram: registry.DiagramFunnel, Field: "stages"}
	}
	f := &Funnel{Stages: make([]Stage, 0, len(in.Stages))}
	for i, s := range in.Stages {
		if s.Label == nil {
			return Data{}, &UnmappableDataError{Diagram: registry.DiagramFunnel, Field: fmt.Sprintf("stages[%d].label", i)}
		}
		if s.Value == nil {
			return Data{}, &UnmappableDataError{Diagram: registry.DiagramFunnel, Field: fmt.Sprintf("stages[%d].value", i)}
		}
		f.Stages = append(f.Stages, Stage{Label: *s.Label, Value: *s.Value})
	}
	return Data{Type: registry.DiagramFunnel, Funnel: f}, nil
}

func mapMatrix(raw json.RawMessage) (Data, error) {
	var in struct {
		XAxis  string `json:"x_axis"`
		YAxis  string `json:"y_axis"`
		Points []struct {
			Label    *string `json:"label"`
			Quadrant *int    `json:"quadrant"`
		} `json:"points"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return Data{}, &UnmappableDataError{Diagram: registry.DiagramMatrix, Field: "points"}
	}
	if in.XAxis == "" {
		return Data{}, &UnmappableDataError{Diagram: registry.DiagramMatrix, Field: "x_axis"}
	}
	if in.YAxis == "" {
		return Data{}, &UnmappableDataError{Diagram: registry.DiagramMatrix, Field: "y_axis"}
	}
	m := &Matrix{XAxis: in.XAxis, YAxis: in.YAxis, Points: make([]MatrixPoint, 0, len(in.Points))}
	for i, p := range in.Points {
		if p.Label == nil {
			return Data{}, &UnmappableDataError{Diagram: registry.DiagramMatrix, Field: fmt.Sprintf("points[%d].label", i)}
		}
		if p.Quadrant == nil || *p.Quadrant < 1 || *p.Quadrant > 4 {
			return Data{}, &UnmappableDataError{Diagram: registry.DiagramMatrix, Field: fmt.Sprintf("points[%d].quadrant", i)}
		}
		m.Points = append(m.Points, MatrixPoint{Label: *p.Label, Quadrant: *p.Quadrant})
	}
	return Data{Type: registry.DiagramMatrix, Matrix: m}, nil
}

func mapCapability(raw json.RawMessage) (Data, error) {
	var in struct {
		Groups []struct {
			Label *string `json:"label"`
			Items []struct {
				Label *string  `json:"label"`
				Level *float64 `json:"level"`
			} `json:"items"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(raw, &in); err != nil || len(in.Groups) == 0 {
		return Data{}, &UnmappableDataError{Diagram: registry.DiagramCapability, Field: "groups"}
	}
	c := &Capability{Groups: make([]CapabilityGroup, 0, len(in.Groups))}
	for gi, g := range in.Groups {
		if g.Label == nil {
			return Data{}, &UnmappableDataError{Diagram: registry.DiagramCapability, Field: fmt.Sprintf("groups[%d].label", gi)}
		}
		group := CapabilityGroup{Label: *g.Label, Items: make([]CapabilityItem, 0, len(g.Items))}
		for ii, it := range g.Items {
			if it.Label == nil || it.Level == nil {
				return Data{}, &UnmappableDataError{Diagram: registry.DiagramCapability, Field: fmt.Sprintf("groups[%d].items[%d]", gi, ii)}
			}
			group.Items = append(group.Items, CapabilityItem{Label: *it.Label, Level: *it.Level})
		}
		c.Groups = append(c.Groups, group)
	}
	return Data{Type: registry.DiagramCapability, Capability: c}, nil
}

func mapTimeline(raw json.RawMessage) (Data, error) {
	var in struct {
		Milestones []struct {
			Label *string `json:"label"`
			At    *string `json:"at"`
		} `json:"milestones"`
	}
	if err := json.Unmarshal(raw, &in); err != nil || len(in.Milestones) == 0 {
		return Data{}, &UnmappableDataError{Diagram: registry.DiagramTimeline, Field: "milestones"}
	}
	tl := &Timeline{Milestones: make([]Milestone, 0, len(in.Milestones))}
	for i, m := range in.Milestones {
		if m.Label == nil {
			return Data{}, &UnmappableDataError{Diagram: registry.DiagramTimeline, Field: fmt.Sprintf("milestones[%d].label", i)}
		}
		if m.At == nil {
			return Data{}, &UnmappableDataError{Diagram: registry.DiagramTimeline, Field: fmt.Sprintf("milestones[%d].at", i)}
		}
		tl.Milestones = append(tl.Milestones, Milestone{Label: *m.Label, At: *m.At})
	}
	return Data{Type: registry.DiagramTimeline, Timeline: tl}, nil
}

func mapHeatGrid(raw json.RawMessage) (Data, error) {
	var in struct {
		Rows  []string `json:"rows"`
		Cols  []string `json:"cols"`
		Cells []struct {
			Row       *string  `json:"row"`
			Col       *string  `json:"col"`
			Intensity *float64 `json:"intensity"`
		} `json:"cells"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return Data{}, &UnmappableDataError{Diagram: registry.DiagramHeatGrid, Field: "cells"}
	}
	if len(in.Rows) == 0 {
		return Data{}, &UnmappableDataError{Diagram: registry.DiagramHeatGrid, Field: "rows"}
	}
	if len(in.Cols) == 0 {
		return Data{}, &UnmappableDataError{Diagram: registry.DiagramHeatGrid, Field: "cols"}
	}
	g := &HeatGrid{Rows: in.Rows, Cols: in.Cols, Cells: make([]HeatCell, 0, len(in.Cells))}
	for i, c := range in.Cells {
		if c.Row == nil || c.Col == nil || c.Intensity == nil {
			return Data{}, &UnmappableDataError{Diagram: registry.DiagramHeatGrid, Field: fmt.Sprintf("cells[%d]", i)}
		}
		g.Cells = append(g.Cells, HeatCell{Row: *c.Row, Col: *c.Col, Intensity: *c.Intensity})
	}
	return Data{Type: registry.DiagramHeatGrid, HeatGrid: g}, nil
}
