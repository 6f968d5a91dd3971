package models

import "time"

// Severity is the traffic-light tier of one metric.
type Severity string

const (
	SeverityGreen  Severity = "green"
	SeverityOrange Severity = "orange"
	SeverityRed    Severity = "red"
	SeverityNoData Severity = "nodata"
)

// SignalSnapshot maps each metric to its severity.
type SignalSnapshot map[MetricKind]Severity

// Snapshot is the result of one evaluation.
type Snapshot struct {
	RequestID   string            `json:"requestId,omitempty"`
	Security    SecurityIdentity  `json:"security"`
	Market      MarketSnapshot    `json:"market"`
	Fiscal      FiscalFacts       `json:"fiscal"`
	Metrics     DerivedMetrics    `json:"metrics"`
	Signals     SignalSnapshot    `json:"signals,omitempty"`
	PresetName  string            `json:"presetName,omitempty"`
	EvaluatedAt time.Time         `json:"evaluatedAt"`
	Errors      map[string]string `json:"errors,omitempty"`
}
