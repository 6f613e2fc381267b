package detect

import (
	"math"
	"sort"

	"github.com/vitalsentry/platform/pkg/common/models"
)

// madScale rescales the MAD so the modified z-score is comparable to a
// standard z-score on Gaussian data.
const madScale = 0.6745

// RobustOutliers scores every point with the median/MAD modified z-score,
// a cheap stand-in for isolation-forest style detection. A flat series
// (MAD zero) scores zero everywhere. Results across all vitals are merged
// and sorted most-anomalous-first for triage.
func (d *Detector) RobustOutliers(series map[string][]float64) []models.Anomaly {
	var anomalies []models.Anomaly

	for vital, data := range series {
		if len(data) == 0 {
			continue
		}
		median := Median(data)
		mad := MAD(data)

		for i, value := range data {
			var score float64
			if mad != 0 {
				score = math.Abs(madScale * (value - median) / mad)
			}
			if score <= d.cfg.RobustFlag {
				continue
			}

			severity := models.SeverityHigh
			if score > 5 {
				severity = models.SeverityCritical
			}
			anomalies = append(anomalies, models.Anomaly{
				Vital:    vital,
				Index:    i,
				Value:    value,
				Expected: median,
				Score:    score,
				Severity: severity,
				Method:   models.MethodRobustScore,
			})
		}
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		if anomalies[i].Score != anomalies[j].Score {
			return anomalies[i].Score > anomalies[j].Score
		}
		if anomalies[i].Vital != anomalies[j].Vital {
			return anomalies[i].Vital < anomalies[j].Vital
		}
		return anomalies[i].Index < anomalies[j].Index
	})
	return anomalies
}
