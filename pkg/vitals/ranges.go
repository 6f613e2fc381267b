package vitals

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Canonical vital names used across the engine.
const (
	HeartRate        = "heart_rate"
	BloodPressureSys = "blood_pressure_sys"
	BloodPressureDia = "blood_pressure_dia"
	RespiratoryRate  = "respiratory_rate"
	Temperature      = "temperature"
	OxygenSaturation = "oxygen_saturation"
	Glucose          = "glucose"
)

// NormalRange is the conservative population-level normal band for one vital.
type NormalRange struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Unit string  `yaml:"unit" json:"unit"`
}

// AlertThreshold holds the absolute critical bounds and the maximum
// tolerated change between consecutive readings for one vital.
type AlertThreshold struct {
	CriticalLow    float64 `yaml:"critical_low" json:"critical_low"`
	CriticalHigh   float64 `yaml:"critical_high" json:"critical_high"`
	CriticalChange float64 `yaml:"critical_change" json:"critical_change"`
}

// RangeTable bundles both reference tables so they can be overridden
// together from one operator-supplied file.
type RangeTable struct {
	NormalRanges    map[string]NormalRange    `yaml:"normal_ranges" json:"normal_ranges"`
	AlertThresholds map[string]AlertThreshold `yaml:"alert_thresholds" json:"alert_thresholds"`
}

// LoadRangeTable reads an override file, falling back to the built-in
// table when no path is configured.
func LoadRangeTable(path string) (RangeTable, error) {
	if path == "" {
		return DefaultRangeTable(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultRangeTable(), err
	}

	var table RangeTable
	if err := yaml.Unmarshal(content, &table); err != nil {
		return RangeTable{}, err
	}

	if len(table.NormalRanges) == 0 && len(table.AlertThresholds) == 0 {
		return RangeTable{}, errors.New("no clinical ranges configured")
	}

	defaults := DefaultRangeTable()
	if len(table.NormalRanges) == 0 {
		table.NormalRanges = defaults.NormalRanges
	}
	if len(table.AlertThresholds) == 0 {
		table.AlertThresholds = defaults.AlertThresholds
	}

	if err := table.validate(); err != nil {
		return RangeTable{}, err
	}

	return table, nil
}

func (t RangeTable) validate() error {
	for vital, r := range t.NormalRanges {
		if r.Min >= r.Max {
			return fmt.Errorf("normal range for %s: min %.2f >= max %.2f", vital, r.Min, r.Max)
		}
	}
	for vital, th := range t.AlertThresholds {
		if th.CriticalLow >= th.CriticalHigh {
			return fmt.Errorf("alert thresholds for %s: critical_low %.2f >= critical_high %.2f", vital, th.CriticalLow, th.CriticalHigh)
		}
		if th.CriticalChange <= 0 {
			return fmt.Errorf("alert thresholds for %s: critical_change must be positive", vital)
		}
	}
	return nil
}

// DefaultRangeTable returns the built-in clinical reference data.
// Temperature is Celsius throughout the engine.
func DefaultRangeTable() RangeTable {
	return RangeTable{
		NormalRanges: map[string]NormalRange{
			HeartRate:        {Min: 50, Max: 110, Unit: "bpm"},
			BloodPressureSys: {Min: 90, Max: 140, Unit: "mmHg"},
			BloodPressureDia: {Min: 50, Max: 90, Unit: "mmHg"},
			RespiratoryRate:  {Min: 12, Max: 25, Unit: "breaths/min"},
			Temperature:      {Min: 36.0, Max: 38.5, Unit: "°C"},
			OxygenSaturation: {Min: 92, Max: 100, Unit: "%"},
			Glucose:          {Min: 70, Max: 180, Unit: "mg/dL"},
		},
		AlertThresholds: map[string]AlertThreshold{
			HeartRate:        {CriticalLow: 40, CriticalHigh: 130, CriticalChange: 40},
			BloodPressureSys: {CriticalLow: 80, CriticalHigh: 180, CriticalChange: 50},
			BloodPressureDia: {CriticalLow: 40, CriticalHigh: 120, CriticalChange: 40},
			RespiratoryRate:  {CriticalLow: 8, CriticalHigh: 35, CriticalChange: 15},
			Temperature:      {CriticalLow: 35.0, CriticalHigh: 39.5, CriticalChange: 2.0},
			OxygenSaturation: {CriticalLow: 85, CriticalHigh: 100, CriticalChange: 10},
			Glucose:          {CriticalLow: 50, CriticalHigh: 400, CriticalChange: 100},
		},
	}
}
