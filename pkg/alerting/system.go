package alerting

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/vitalsentry/platform/pkg/common/logger"
	"github.com/vitalsentry/platform/pkg/common/models"
	"github.com/vitalsentry/platform/pkg/vitals"
)

// System evaluates readings against the absolute critical bounds and the
// maximum tolerated rate of change, and owns the alert lifecycle. Alerts
// accumulate in an append-only log; acknowledgment never removes them.
//
// Precedence policy "rapid-change wins": the rate-of-change check runs after
// the absolute checks and replaces any alert they produced, so a reading
// breaching both conditions yields a single rapid_change alert. This mirrors
// the behavior the clinical team reviewed and is pinned by tests; change it
// deliberately, not as a refactor side effect.
type System struct {
	mu         sync.RWMutex
	thresholds map[string]vitals.AlertThreshold
	active     map[string]*models.Alert
	log        []*models.Alert
}

func NewSystem(thresholds map[string]vitals.AlertThreshold) *System {
	return &System{
		thresholds: thresholds,
		active:     make(map[string]*models.Alert),
	}
}

// Evaluate checks one reading, optionally against the previous one, and
// returns the created alert or nil. The caller supplies the evaluation
// timestamp; alert IDs are unique as long as timestamps are.
func (s *System) Evaluate(patientID, vital string, current float64, previous *float64, at time.Time) *models.Alert {
	thresholds, ok := s.thresholds[vital]
	if !ok {
		return nil
	}

	var alert *models.Alert

	if current <= thresholds.CriticalLow {
		alert = &models.Alert{
			Type:      models.AlertCriticalLow,
			Vital:     vital,
			Value:     current,
			Threshold: thresholds.CriticalLow,
			Severity:  models.SeverityCritical,
		}
	} else if current >= thresholds.CriticalHigh {
		alert = &models.Alert{
			Type:      models.AlertCriticalHigh,
			Vital:     vital,
			Value:     current,
			Threshold: thresholds.CriticalHigh,
			Severity:  models.SeverityCritical,
		}
	}

	// Rate-of-change check runs last and wins over the absolute checks.
	if previous != nil {
		change := math.Abs(current - *previous)
		if change > thresholds.CriticalChange {
			alert = &models.Alert{
				Type:          models.AlertRapidChange,
				Vital:         vital,
				Value:         current,
				PreviousValue: previous,
				Change:        change,
				Threshold:     thresholds.CriticalChange,
				Severity:      models.SeverityHigh,
			}
		}
	}

	if alert == nil {
		return nil
	}

	alert.PatientID = patientID
	alert.Timestamp = at
	alert.AlertID = fmt.Sprintf("%s_%s_%d", patientID, vital, at.UnixNano())

	s.mu.Lock()
	s.active[alert.AlertID] = alert
	s.log = append(s.log, alert)
	s.mu.Unlock()

	logger.Log.WithFields(map[string]interface{}{
		"alert_type": alert.Type,
		"patient":    logger.MaskPatientID(patientID),
		"vital":      vital,
		"value":      current,
	}).Warn("Critical deviation alert raised")

	copied := *alert
	return &copied
}

// Acknowledge marks an alert acknowledged. The transition happens exactly
// once; acknowledging an unknown or already-acknowledged alert is a no-op.
// Returns whether a transition occurred.
func (s *System) Acknowledge(alertID, notes string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.active[alertID]
	if !ok || alert.Acknowledged {
		return false
	}

	now := time.Now().UTC()
	alert.Acknowledged = true
	alert.AckedAt = &now
	alert.AckNotes = notes

	logger.Log.WithField("alert_id", alertID).Info("Alert acknowledged")
	return true
}

// ActiveAlerts returns unacknowledged alerts, newest first, optionally
// filtered to one patient. Pass "" for all patients.
func (s *System) ActiveAlerts(patientID string) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked(patientID)
}

func (s *System) activeLocked(patientID string) []models.Alert {
	var active []models.Alert
	for _, alert := range s.active {
		if alert.Acknowledged {
			continue
		}
		if patientID != "" && alert.PatientID != patientID {
			continue
		}
		active = append(active, *alert)
	}

	sort.Slice(active, func(i, j int) bool {
		if !active[i].Timestamp.Equal(active[j].Timestamp) {
			return active[i].Timestamp.After(active[j].Timestamp)
		}
		return active[i].AlertID > active[j].AlertID
	})
	return active
}

// Summary aggregates the whole alert log relative to now.
func (s *System) Summary(now time.Time) models.AlertSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := models.AlertSummary{
		TotalAlerts:  len(s.log),
		ActiveAlerts: len(s.activeLocked("")),
		ByType:       make(map[string]int),
		BySeverity:   make(map[string]int),
		ByVital:      make(map[string]int),
	}

	for _, alert := range s.log {
		summary.ByType[alert.Type]++
		summary.BySeverity[alert.Severity]++
		summary.ByVital[alert.Vital]++
		if alert.Timestamp.After(now.Add(-24 * time.Hour)) {
			summary.Last24h++
		}
		if alert.Timestamp.After(now.Add(-7 * 24 * time.Hour)) {
			summary.Last7d++
		}
	}
	return summary
}

// Log returns a snapshot copy of the append-only alert log, oldest first.
func (s *System) Log() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]models.Alert, len(s.log))
	for i, alert := range s.log {
		snapshot[i] = *alert
	}
	return snapshot
}

// Restore reinstates a persisted alert, used to warm the system at startup.
func (s *System) Restore(alert models.Alert) {
	if alert.AlertID == "" {
		return
	}
	s.mu.Lock()
	copied := alert
	s.active[alert.AlertID] = &copied
	s.log = append(s.log, &copied)
	s.mu.Unlock()
}
