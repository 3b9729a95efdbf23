package domain

import (
	"encoding/json"
	"time"
)

// Core domain models used internally. Transport shapes live in the HTTP
// adapter; keep these decoupled where helpful.

type Startup struct {
	ID                string
	Name              string
	Website           *string
	RegistrableDomain string
	FirstSeenAt       time.Time
}

// RunStatus tracks a validation run through the job pipeline.
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

type ValidationRun struct {
	ID         string
	StartupRef string
	ReportRef  string
	Status     RunStatus
	Progress   float64
	Context    json.RawMessage
	QueuedAt   time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// ReportState follows pending -> assembling -> {complete|partial|failed}.
// Terminal reports are immutable; a retry creates a new report id.
type ReportState string

const (
	ReportPending    ReportState = "pending"
	ReportAssembling ReportState = "assembling"
	ReportComplete   ReportState = "complete"
	ReportPartial    ReportState = "partial"
	ReportFailed     ReportState = "failed"
)

// Signal is the coarse verdict derived from the composite score.
type Signal string

const (
	SignalGo      Signal = "go"
	SignalCaution Signal = "caution"
	SignalNoGo    Signal = "no-go"
)

type DimensionScore struct {
	DimensionID string
	SubScore    float64
	Data        json.RawMessage
}

type RiskSignal struct {
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Note     string `json:"note,omitempty"`
}

type Report struct {
	ID                string
	RunRef            string
	StartupRef        string
	State             ReportState
	CompositeScore    *int
	Signal            *Signal
	DimensionScores   []DimensionScore
	RiskSignals       []RiskSignal
	MissingDimensions []string
	FailureReason     string
	CreatedAt         time.Time
}
