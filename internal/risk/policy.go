// Package risk extracts risk signals from the modifier dimension's analysis
// output. Which severities surface is a policy table, not a hardcoded rule,
// so product can tune the vocabulary without a code change.
package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"venturelens/internal/domain"
)

// Policy declares which severity tags surface as report-level risk signals.
// Unknown severities never surface.
type Policy struct {
	SurfaceSeverities []string `yaml:"surface_severities"`
}

// DefaultPolicy surfaces high and critical items.
func DefaultPolicy() Policy {
	return Policy{SurfaceSeverities: []string{"high", "critical"}}
}

// LoadPolicy reads a policy table from a YAML file.
func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read risk policy: %w", err)
	}
	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse risk policy: %w", err)
	}
	if len(p.SurfaceSeverities) == 0 {
		return Policy{}, fmt.Errorf("risk policy %s declares no surface severities", path)
	}
	return p, nil
}

func (p Policy) surfaces(severity string) bool {
	severity = strings.ToLower(strings.TrimSpace(severity))
	for _, s := range p.SurfaceSeverities {
		if severity == strings.ToLower(s) {
			return true
		}
	}
	return false
}

// riskItem is the expected element shape of the modifier dimension's
// "items" array.
type riskItem struct {
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Note     string `json:"note"`
}

// ExtractSignals pulls the flagged items out of the modifier dimension's raw
// data. Absent or empty items yield no signals; malformed JSON is an error
// the caller may degrade on.
func ExtractSignals(p Policy, raw json.RawMessage) ([]domain.RiskSignal, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var in struct {
		Items []riskItem `json:"items"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("parse risk items: %w", err)
	}
	var out []domain.RiskSignal
	for _, item := range in.Items {
		if item.Title == "" || !p.surfaces(item.Severity) {
			continue
		}
		out = append(out, domain.RiskSignal{
			Title:    item.Title,
			Severity: strings.ToLower(strings.TrimSpace(item.Severity)),
			Note:     item.Note,
		})
	}
	return out, nil
}
