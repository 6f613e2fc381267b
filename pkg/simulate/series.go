// Package simulate produces synthetic vital-sign data for the feed
// simulator and for exercising the detectors without a live monitor feed.
package simulate

import (
	"math/rand"

	"github.com/vitalsentry/platform/pkg/vitals"
)

type vitalProfile struct {
	mean float64
	std  float64
}

var profiles = map[string]vitalProfile{
	vitals.HeartRate:        {mean: 75, std: 8},
	vitals.BloodPressureSys: {mean: 130, std: 12},
	vitals.BloodPressureDia: {mean: 80, std: 8},
	vitals.RespiratoryRate:  {mean: 16, std: 2},
	vitals.Temperature:      {mean: 36.8, std: 0.3},
	vitals.OxygenSaturation: {mean: 97, std: 1.5},
	vitals.Glucose:          {mean: 110, std: 15},
}

// SampleSeries builds n Gaussian points per vital with a few injected
// anomalies: a heart-rate spike, an oxygen-saturation dip and a fever.
func SampleSeries(n int, seed int64) map[string][]float64 {
	rng := rand.New(rand.NewSource(seed))

	series := make(map[string][]float64, len(profiles))
	for vital, profile := range profiles {
		data := make([]float64, n)
		for i := range data {
			data[i] = profile.mean + rng.NormFloat64()*profile.std
		}
		series[vital] = data
	}

	if n > 75 {
		series[vitals.HeartRate][50] = 150
		series[vitals.OxygenSaturation][75] = 85
		series[vitals.Temperature][25] = 39.2
	}
	return series
}

// NextReading draws a single plausible value for one vital.
func NextReading(rng *rand.Rand, vital string) (float64, bool) {
	profile, ok := profiles[vital]
	if !ok {
		return 0, false
	}
	return profile.mean + rng.NormFloat64()*profile.std, true
}

// VitalNames lists the vitals the simulator can produce.
func VitalNames() []string {
	return []string{
		vitals.HeartRate,
		vitals.BloodPressureSys,
		vitals.BloodPressureDia,
		vitals.RespiratoryRate,
		vitals.Temperature,
		vitals.OxygenSaturation,
		vitals.Glucose,
	}
}
