package detect

import (
	"math"

	"github.com/vitalsentry/platform/pkg/common/models"
)

const zScoreEpsilon = 1e-8

// ZScore runs the rolling z-score detector over each vital's series.
// Indices without a full centered window are never flagged. Returns only
// vitals that produced at least one anomaly.
func (d *Detector) ZScore(series map[string][]float64) map[string][]models.Anomaly {
	byVital := make(map[string][]models.Anomaly)

	for vital, data := range series {
		means, stds := rollingMeanStd(data, d.cfg.ZScoreWindow)

		var anomalies []models.Anomaly
		for i, value := range data {
			if math.IsNaN(means[i]) || math.IsNaN(stds[i]) {
				continue
			}
			z := math.Abs(value-means[i]) / (stds[i] + zScoreEpsilon)
			if z <= d.cfg.ZScoreFlag {
				continue
			}

			severity := models.SeverityMedium
			if z > d.cfg.ZScoreFlag+1 {
				severity = models.SeverityHigh
			}
			anomalies = append(anomalies, models.Anomaly{
				Vital:    vital,
				Index:    i,
				Value:    value,
				Expected: means[i],
				Score:    z,
				Severity: severity,
				Method:   models.MethodZScore,
			})
		}

		if len(anomalies) > 0 {
			byVital[vital] = anomalies
		}
	}

	return byVital
}
