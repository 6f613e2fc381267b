package alerting

import (
	"os"
	"testing"
	"time"

	"github.com/vitalsentry/platform/pkg/common/logger"
	"github.com/vitalsentry/platform/pkg/common/models"
	"github.com/vitalsentry/platform/pkg/vitals"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newTestSystem() *System {
	return NewSystem(vitals.DefaultRangeTable().AlertThresholds)
}

func ptr(v float64) *float64 { return &v }

func TestEvaluateCriticalHigh(t *testing.T) {
	system := newTestSystem()

	alert := system.Evaluate("P1", "heart_rate", 150, nil, time.Now().UTC())
	if alert == nil {
		t.Fatal("expected an alert for heart_rate 150")
	}
	if alert.Type != models.AlertCriticalHigh {
		t.Fatalf("expected critical_high, got %s", alert.Type)
	}
	if alert.Severity != models.SeverityCritical {
		t.Fatalf("expected severity critical, got %s", alert.Severity)
	}
	if alert.Value != 150 {
		t.Fatalf("expected value 150, got %g", alert.Value)
	}
	if alert.Threshold != 130 {
		t.Fatalf("expected threshold 130, got %g", alert.Threshold)
	}
}

func TestEvaluateCriticalLow(t *testing.T) {
	system := newTestSystem()

	alert := system.Evaluate("P1", "oxygen_saturation", 82, nil, time.Now().UTC())
	if alert == nil {
		t.Fatal("expected an alert for SpO2 82")
	}
	if alert.Type != models.AlertCriticalLow {
		t.Fatalf("expected critical_low, got %s", alert.Type)
	}
}

func TestEvaluateNormalReadingNoAlert(t *testing.T) {
	system := newTestSystem()

	if alert := system.Evaluate("P1", "heart_rate", 75, ptr(74), time.Now().UTC()); alert != nil {
		t.Fatalf("expected no alert for a normal reading, got %+v", alert)
	}
}

func TestEvaluateUnknownVital(t *testing.T) {
	system := newTestSystem()

	if alert := system.Evaluate("P1", "not_a_vital", 9999, nil, time.Now().UTC()); alert != nil {
		t.Fatalf("unknown vitals must be ignored, got %+v", alert)
	}
}

// SpO2 dropping 96 -> 82 breaches both the absolute critical_low bound (85)
// and the critical_change delta (10). The rate-of-change check runs last and
// wins, so the single returned alert is rapid_change, not critical_low.
func TestRapidChangeWinsPrecedence(t *testing.T) {
	system := newTestSystem()

	alert := system.Evaluate("P1", "oxygen_saturation", 82, ptr(96), time.Now().UTC())
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if alert.Type != models.AlertRapidChange {
		t.Fatalf("rapid_change must win over critical_low, got %s", alert.Type)
	}
	if alert.Severity != models.SeverityHigh {
		t.Fatalf("rapid_change alerts are high severity, got %s", alert.Severity)
	}
	if alert.Change != 14 {
		t.Fatalf("expected change 14, got %g", alert.Change)
	}
	if alert.PreviousValue == nil || *alert.PreviousValue != 96 {
		t.Fatal("expected the previous value on the alert")
	}
}

func TestAcknowledgeLifecycle(t *testing.T) {
	system := newTestSystem()

	alert := system.Evaluate("P1", "heart_rate", 150, nil, time.Now().UTC())
	if alert == nil {
		t.Fatal("expected an alert")
	}

	active := system.ActiveAlerts("")
	if len(active) != 1 {
		t.Fatalf("expected one active alert, got %d", len(active))
	}

	if !system.Acknowledge(alert.AlertID, "seen by charge nurse") {
		t.Fatal("first acknowledgment must succeed")
	}
	if system.Acknowledge(alert.AlertID, "again") {
		t.Fatal("second acknowledgment must be a no-op")
	}

	if active := system.ActiveAlerts(""); len(active) != 0 {
		t.Fatalf("acknowledged alert still listed active: %d", len(active))
	}

	// Acknowledgment never deletes from the log.
	summary := system.Summary(time.Now().UTC())
	if summary.TotalAlerts != 1 {
		t.Fatalf("expected total 1 after acknowledgment, got %d", summary.TotalAlerts)
	}
	if summary.ActiveAlerts != 0 {
		t.Fatalf("expected no active alerts, got %d", summary.ActiveAlerts)
	}

	log := system.Log()
	if len(log) != 1 || !log[0].Acknowledged || log[0].AckedAt == nil {
		t.Fatalf("log entry must reflect the acknowledgment: %+v", log[0])
	}
	if log[0].AckNotes != "seen by charge nurse" {
		t.Fatalf("expected the first acknowledgment notes, got %q", log[0].AckNotes)
	}
}

func TestAcknowledgeUnknownAlert(t *testing.T) {
	system := newTestSystem()

	if system.Acknowledge("nope", "") {
		t.Fatal("acknowledging an unknown alert must be a no-op")
	}
}

func TestActiveAlertsFilterAndOrder(t *testing.T) {
	system := newTestSystem()
	base := time.Now().UTC()

	system.Evaluate("P1", "heart_rate", 150, nil, base)
	system.Evaluate("P2", "glucose", 30, nil, base.Add(time.Minute))
	system.Evaluate("P1", "respiratory_rate", 40, nil, base.Add(2*time.Minute))

	all := system.ActiveAlerts("")
	if len(all) != 3 {
		t.Fatalf("expected three active alerts, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Fatal("active alerts must be sorted newest first")
		}
	}

	p1 := system.ActiveAlerts("P1")
	if len(p1) != 2 {
		t.Fatalf("expected two alerts for P1, got %d", len(p1))
	}
	for _, alert := range p1 {
		if alert.PatientID != "P1" {
			t.Fatalf("filter leaked alert for %s", alert.PatientID)
		}
	}
}

func TestAlertIDsUniquePerEvaluation(t *testing.T) {
	system := newTestSystem()
	base := time.Now().UTC()

	first := system.Evaluate("P1", "heart_rate", 150, nil, base)
	second := system.Evaluate("P1", "heart_rate", 150, nil, base.Add(time.Nanosecond))
	if first == nil || second == nil {
		t.Fatal("expected two alerts")
	}
	if first.AlertID == second.AlertID {
		t.Fatal("fresh timestamps must yield fresh alert IDs")
	}

	// Repeated breaches accumulate; there is no suppression window.
	if summary := system.Summary(base); summary.TotalAlerts != 2 {
		t.Fatalf("expected both alerts logged, got %d", summary.TotalAlerts)
	}
}

func TestSummaryCountsAndWindows(t *testing.T) {
	system := newTestSystem()
	now := time.Now().UTC()

	system.Evaluate("P1", "heart_rate", 150, nil, now.Add(-48*time.Hour))
	system.Evaluate("P1", "heart_rate", 35, nil, now.Add(-time.Hour))
	system.Evaluate("P2", "glucose", 30, nil, now.Add(-8*24*time.Hour))

	summary := system.Summary(now)
	if summary.TotalAlerts != 3 {
		t.Fatalf("expected 3 total, got %d", summary.TotalAlerts)
	}
	if summary.ByType[models.AlertCriticalHigh] != 1 || summary.ByType[models.AlertCriticalLow] != 2 {
		t.Fatalf("unexpected type counts: %v", summary.ByType)
	}
	if summary.ByVital["heart_rate"] != 2 || summary.ByVital["glucose"] != 1 {
		t.Fatalf("unexpected vital counts: %v", summary.ByVital)
	}
	if summary.BySeverity[models.SeverityCritical] != 3 {
		t.Fatalf("unexpected severity counts: %v", summary.BySeverity)
	}
	if summary.Last24h != 1 {
		t.Fatalf("expected 1 alert in the last 24h, got %d", summary.Last24h)
	}
	if summary.Last7d != 2 {
		t.Fatalf("expected 2 alerts in the last 7d, got %d", summary.Last7d)
	}
}
