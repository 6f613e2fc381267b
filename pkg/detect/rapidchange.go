package detect

import (
	"math"
	"sort"

	"github.com/vitalsentry/platform/pkg/common/models"
)

// RapidChanges flags transitions whose first difference stands out against
// the typical variability of the series' own changes. The comparison scale
// is the spread of the trailing rolling std of differences, so a series has
// to establish some history before anything can be flagged. The final index
// has no outgoing difference and is never a source point.
func (d *Detector) RapidChanges(series map[string][]float64) []models.Anomaly {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	var anomalies []models.Anomaly
	for _, vital := range names {
		data := series[vital]
		diffs := diff(data)
		if len(diffs) == 0 {
			continue
		}

		rollingStds := rollingStdTrailing(diffs, d.cfg.RapidChangeWindow)
		scale := nanStd(rollingStds)
		if math.IsNaN(scale) || scale == 0 {
			continue
		}

		for i, change := range diffs {
			if math.Abs(change) <= 2*scale {
				continue
			}
			if i+1 >= len(data) {
				continue
			}

			severity := models.SeverityMedium
			if math.Abs(change) > 3*scale {
				severity = models.SeverityHigh
			}
			anomalies = append(anomalies, models.Anomaly{
				Vital:    vital,
				Index:    i,
				Value:    data[i+1],
				Expected: data[i],
				Score:    change,
				Severity: severity,
				Method:   models.MethodRapidChange,
			})
		}
	}
	return anomalies
}
