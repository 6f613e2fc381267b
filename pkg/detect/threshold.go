package detect

import (
	"fmt"
	"math"
	"sort"

	"github.com/vitalsentry/platform/pkg/common/models"
	"github.com/vitalsentry/platform/pkg/vitals"
)

// Detector runs the stateless anomaly detection strategies. All methods are
// pure: identical input yields identical output, with no shared state, so a
// single Detector is safe to use from any number of goroutines.
type Detector struct {
	table vitals.RangeTable
	cfg   Config
}

// Config carries the tunable detection parameters. Zero values fall back to
// the defaults the clinical team signed off on.
type Config struct {
	ZScoreWindow      int     // rolling window, default 20
	ZScoreFlag        float64 // minimum z to flag, default 3
	RobustFlag        float64 // minimum modified z to flag, default 3.5
	RapidChangeWindow int     // rolling window over diffs, default 3
}

func (c Config) withDefaults() Config {
	if c.ZScoreWindow <= 0 {
		c.ZScoreWindow = 20
	}
	if c.ZScoreFlag <= 0 {
		c.ZScoreFlag = 3
	}
	if c.RobustFlag <= 0 {
		c.RobustFlag = 3.5
	}
	if c.RapidChangeWindow <= 0 {
		c.RapidChangeWindow = 3
	}
	return c
}

func NewDetector(table vitals.RangeTable, cfg Config) *Detector {
	return &Detector{table: table, cfg: cfg.withDefaults()}
}

// Threshold checks one instant of observations against the normal-range
// table. Vitals inside [min, max] emit nothing; unknown vitals and
// non-finite values are skipped silently. Output is ordered by vital name.
func (d *Detector) Threshold(observations map[string]float64) []models.Anomaly {
	names := make([]string, 0, len(observations))
	for name := range observations {
		names = append(names, name)
	}
	sort.Strings(names)

	var anomalies []models.Anomaly
	for _, name := range names {
		value := observations[name]
		ranges, ok := d.table.NormalRanges[name]
		if !ok {
			continue
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}

		switch {
		case value < ranges.Min:
			anomalies = append(anomalies, models.Anomaly{
				Vital:       name,
				Value:       value,
				NormalRange: formatRange(ranges),
				Direction:   models.DirectionLow,
				Severity:    thresholdSeverity(value, ranges, models.DirectionLow),
				Method:      models.MethodThreshold,
			})
		case value > ranges.Max:
			anomalies = append(anomalies, models.Anomaly{
				Vital:       name,
				Value:       value,
				NormalRange: formatRange(ranges),
				Direction:   models.DirectionHigh,
				Severity:    thresholdSeverity(value, ranges, models.DirectionHigh),
				Method:      models.MethodThreshold,
			})
		}
	}
	return anomalies
}

// thresholdSeverity grades the percent deviation from the breached bound.
func thresholdSeverity(value float64, ranges vitals.NormalRange, direction string) string {
	var deviationPercent float64
	if direction == models.DirectionLow {
		deviationPercent = (ranges.Min - value) / ranges.Min * 100
	} else {
		deviationPercent = (value - ranges.Max) / ranges.Max * 100
	}

	switch {
	case deviationPercent > 50:
		return models.SeverityCritical
	case deviationPercent > 30:
		return models.SeverityHigh
	case deviationPercent > 15:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func formatRange(r vitals.NormalRange) string {
	return fmt.Sprintf("%g-%g", r.Min, r.Max)
}
