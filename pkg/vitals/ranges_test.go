package vitals

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRangeTableCoversAllVitals(t *testing.T) {
	table := DefaultRangeTable()

	vitals := []string{
		HeartRate, BloodPressureSys, BloodPressureDia,
		RespiratoryRate, Temperature, OxygenSaturation, Glucose,
	}
	for _, vital := range vitals {
		if _, ok := table.NormalRanges[vital]; !ok {
			t.Fatalf("missing normal range for %s", vital)
		}
		if _, ok := table.AlertThresholds[vital]; !ok {
			t.Fatalf("missing alert thresholds for %s", vital)
		}
	}

	if err := table.validate(); err != nil {
		t.Fatalf("default table must validate: %v", err)
	}

	// Temperature is Celsius throughout the engine.
	if temp := table.NormalRanges[Temperature]; temp.Min != 36.0 || temp.Max != 38.5 {
		t.Fatalf("unexpected temperature range: %+v", temp)
	}
}

func TestLoadRangeTableEmptyPathUsesDefaults(t *testing.T) {
	table, err := LoadRangeTable("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.NormalRanges) != 7 {
		t.Fatalf("expected 7 normal ranges, got %d", len(table.NormalRanges))
	}
}

func TestLoadRangeTableOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ranges.yaml")

	content := []byte(`
normal_ranges:
  heart_rate:
    min: 55
    max: 105
    unit: bpm
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write override file: %v", err)
	}

	table, err := LoadRangeTable(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hr := table.NormalRanges["heart_rate"]
	if hr.Min != 55 || hr.Max != 105 {
		t.Fatalf("override not applied: %+v", hr)
	}

	// Sections not overridden fall back to the defaults.
	if len(table.AlertThresholds) != 7 {
		t.Fatalf("expected default alert thresholds, got %d", len(table.AlertThresholds))
	}
}

func TestLoadRangeTableRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ranges.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := LoadRangeTable(path); err == nil {
		t.Fatal("expected an error for an empty override file")
	}
}

func TestLoadRangeTableRejectsInvertedRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ranges.yaml")

	content := []byte(`
normal_ranges:
  heart_rate:
    min: 110
    max: 50
    unit: bpm
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := LoadRangeTable(path); err == nil {
		t.Fatal("expected an error for min >= max")
	}
}
