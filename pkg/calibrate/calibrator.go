package calibrate

import (
	"errors"
	"sync"
	"time"

	"github.com/vitalsentry/platform/pkg/common/logger"
	"github.com/vitalsentry/platform/pkg/common/models"
	"github.com/vitalsentry/platform/pkg/detect"
)

var ErrNoHistory = errors.New("no history provided for calibration")

// Calibrator owns the per-patient adaptive baselines. All mutations for a
// given patient are serialized behind the store lock; detectors never touch
// this state.
type Calibrator struct {
	mu          sync.RWMutex
	baselines   map[string]models.PatientBaseline
	historyDays int
	alpha       float64
}

func NewCalibrator(historyDays int, alpha float64) *Calibrator {
	if historyDays <= 0 {
		historyDays = 14
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.1
	}
	return &Calibrator{
		baselines:   make(map[string]models.PatientBaseline),
		historyDays: historyDays,
		alpha:       alpha,
	}
}

// Calibrate computes a fresh baseline from the trailing history and replaces
// any prior baseline for the patient wholesale. Calibrating twice with the
// same history yields the same baseline.
func (c *Calibrator) Calibrate(patientID string, history map[string][]float64) (models.PatientBaseline, error) {
	vitalBaselines := make(map[string]models.VitalBaseline)
	for vital, data := range history {
		if len(data) == 0 {
			continue
		}
		vitalBaselines[vital] = computeBaseline(data)
	}
	if len(vitalBaselines) == 0 {
		return models.PatientBaseline{}, ErrNoHistory
	}

	baseline := models.PatientBaseline{
		PatientID:    patientID,
		Vitals:       vitalBaselines,
		CalibratedAt: time.Now().UTC(),
		HistoryDays:  c.historyDays,
	}

	c.mu.Lock()
	c.baselines[patientID] = baseline
	c.mu.Unlock()

	logger.Log.WithFields(map[string]interface{}{
		"patient": logger.MaskPatientID(patientID),
		"vitals":  len(vitalBaselines),
	}).Info("Thresholds calibrated")

	return baseline, nil
}

// Update nudges the mean of one vital with an exponential moving average
// and recomputes the alert bounds from the existing std. The critical
// bounds and the std itself only move on full recalibration. A missing
// baseline or vital is a silent no-op.
func (c *Calibrator) Update(patientID, vital string, newValue float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	patient, ok := c.baselines[patientID]
	if !ok {
		return
	}
	baseline, ok := patient.Vitals[vital]
	if !ok {
		return
	}

	baseline.Mean = c.alpha*newValue + (1-c.alpha)*baseline.Mean
	baseline.LowerAlert = baseline.Mean - 2*baseline.Std
	baseline.UpperAlert = baseline.Mean + 2*baseline.Std

	patient.Vitals[vital] = baseline
	c.baselines[patientID] = patient
}

// Baseline returns a copy of the patient's baseline, if calibrated.
func (c *Calibrator) Baseline(patientID string) (models.PatientBaseline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	patient, ok := c.baselines[patientID]
	if !ok {
		logger.Log.WithField("patient", logger.MaskPatientID(patientID)).
			Warn("No calibrated thresholds for patient")
		return models.PatientBaseline{}, false
	}

	copied := patient
	copied.Vitals = make(map[string]models.VitalBaseline, len(patient.Vitals))
	for vital, baseline := range patient.Vitals {
		copied.Vitals[vital] = baseline
	}
	return copied, true
}

// Restore installs a previously persisted baseline, replacing any current one.
func (c *Calibrator) Restore(baseline models.PatientBaseline) {
	if baseline.PatientID == "" || len(baseline.Vitals) == 0 {
		return
	}
	c.mu.Lock()
	c.baselines[baseline.PatientID] = baseline
	c.mu.Unlock()
}

func computeBaseline(data []float64) models.VitalBaseline {
	mean := detect.Mean(data)
	std := detect.Std(data)

	return models.VitalBaseline{
		P5:            detect.Percentile(data, 5),
		P25:           detect.Percentile(data, 25),
		P50:           detect.Percentile(data, 50),
		P75:           detect.Percentile(data, 75),
		P95:           detect.Percentile(data, 95),
		Mean:          mean,
		Std:           std,
		Min:           detect.Min(data),
		Max:           detect.Max(data),
		LowerAlert:    mean - 2*std,
		UpperAlert:    mean + 2*std,
		LowerCritical: mean - 3*std,
		UpperCritical: mean + 3*std,
	}
}
