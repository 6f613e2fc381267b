package detect

import (
	"testing"

	"github.com/vitalsentry/platform/pkg/common/models"
)

func TestRapidChangesFlagsJump(t *testing.T) {
	detector := NewDetector(testTable(), Config{})
	series := map[string][]float64{
		"oxygen_saturation": {10, 10, 10, 10, 10, 10, 50, 10, 10, 10},
	}

	anomalies := detector.RapidChanges(series)
	if len(anomalies) != 2 {
		t.Fatalf("expected the jump up and back down to be flagged, got %d", len(anomalies))
	}

	if anomalies[0].Index != 5 || anomalies[1].Index != 6 {
		t.Fatalf("expected transitions at indices 5 and 6, got %d and %d",
			anomalies[0].Index, anomalies[1].Index)
	}
	for _, anomaly := range anomalies {
		if anomaly.Method != models.MethodRapidChange {
			t.Fatalf("expected method rapid_change, got %s", anomaly.Method)
		}
		if anomaly.Severity != models.SeverityMedium {
			t.Fatalf("expected severity medium for this magnitude, got %s", anomaly.Severity)
		}
	}

	// The flagged transition carries both endpoints.
	if anomalies[0].Expected != 10 || anomalies[0].Value != 50 {
		t.Fatalf("expected transition 10 -> 50, got %g -> %g",
			anomalies[0].Expected, anomalies[0].Value)
	}
}

func TestRapidChangesSteadySeriesQuiet(t *testing.T) {
	detector := NewDetector(testTable(), Config{})
	series := map[string][]float64{
		"heart_rate": {75, 76, 75, 74, 75, 76, 75, 74, 75},
	}

	if anomalies := detector.RapidChanges(series); len(anomalies) != 0 {
		t.Fatalf("steady series must produce nothing, got %d anomalies", len(anomalies))
	}
}

func TestRapidChangesTooShortSeriesQuiet(t *testing.T) {
	detector := NewDetector(testTable(), Config{})
	series := map[string][]float64{
		"heart_rate": {75},
	}

	if anomalies := detector.RapidChanges(series); len(anomalies) != 0 {
		t.Fatalf("single-point series has no transitions, got %d anomalies", len(anomalies))
	}
}
