package models

import "time"

// Severity levels shared by anomalies and alerts.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Detection methods recorded on anomalies.
const (
	MethodThreshold   = "threshold"
	MethodZScore      = "z_score"
	MethodRobustScore = "robust_score"
	MethodRapidChange = "rapid_change"
)

// Deviation direction relative to the normal range.
const (
	DirectionLow  = "low"
	DirectionHigh = "high"
)

// Alert types produced by the critical-deviation evaluator.
const (
	AlertCriticalLow  = "critical_low"
	AlertCriticalHigh = "critical_high"
	AlertRapidChange  = "rapid_change"
)

// VitalReading is one measurement from a monitor/EHR feed. Immutable once created.
type VitalReading struct {
	PatientID string    `json:"patient_id"`
	Vital     string    `json:"vital_name"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// VitalSeries is a time-indexed column of readings for one vital.
type VitalSeries struct {
	Vital      string      `json:"vital_name"`
	Values     []float64   `json:"values"`
	Timestamps []time.Time `json:"timestamps,omitempty"`
}

// Anomaly is a single detector finding. Never mutated after creation.
type Anomaly struct {
	Vital       string  `json:"vital"`
	Value       float64 `json:"value"`
	NormalRange string  `json:"normal_range,omitempty"`
	Direction   string  `json:"direction,omitempty"`
	Severity    string  `json:"severity"`
	Method      string  `json:"method"`
	Index       int     `json:"index,omitempty"`
	Expected    float64 `json:"expected,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// VitalBaseline is the calibrated statistical summary for one vital.
type VitalBaseline struct {
	P5            float64 `json:"p5"`
	P25           float64 `json:"p25"`
	P50           float64 `json:"p50"`
	P75           float64 `json:"p75"`
	P95           float64 `json:"p95"`
	Mean          float64 `json:"mean"`
	Std           float64 `json:"std"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	LowerAlert    float64 `json:"lower_alert"`
	UpperAlert    float64 `json:"upper_alert"`
	LowerCritical float64 `json:"lower_critical"`
	UpperCritical float64 `json:"upper_critical"`
}

// PatientBaseline holds all calibrated vitals for one patient. Replaced
// wholesale on full recalibration, nudged in place by incremental updates.
type PatientBaseline struct {
	PatientID    string                   `json:"patient_id"`
	Vitals       map[string]VitalBaseline `json:"baselines"`
	CalibratedAt time.Time                `json:"calibrated_at"`
	HistoryDays  int                      `json:"history_days"`
}

// Alert is a critical-deviation alert. Immutable except for the
// acknowledgment fields, which transition exactly once.
type Alert struct {
	AlertID       string     `json:"alert_id"`
	PatientID     string     `json:"patient_id"`
	Vital         string     `json:"vital"`
	Type          string     `json:"type"`
	Value         float64    `json:"value"`
	PreviousValue *float64   `json:"previous_value,omitempty"`
	Change        float64    `json:"change,omitempty"`
	Threshold     float64    `json:"threshold"`
	Severity      string     `json:"severity"`
	Timestamp     time.Time  `json:"timestamp"`
	Acknowledged  bool       `json:"acknowledged"`
	AckedAt       *time.Time `json:"acknowledged_at,omitempty"`
	AckNotes      string     `json:"acknowledgment_notes,omitempty"`
}

// AlertSummary aggregates the append-only alert log for dashboards.
type AlertSummary struct {
	TotalAlerts  int            `json:"total_alerts"`
	ActiveAlerts int            `json:"active_alerts"`
	ByType       map[string]int `json:"by_type"`
	BySeverity   map[string]int `json:"by_severity"`
	ByVital      map[string]int `json:"by_vital"`
	Last24h      int            `json:"last_24h"`
	Last7d       int            `json:"last_7d"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // reading, anomaly, alert
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
