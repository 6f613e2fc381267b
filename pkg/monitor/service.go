package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vitalsentry/platform/pkg/alerting"
	"github.com/vitalsentry/platform/pkg/calibrate"
	"github.com/vitalsentry/platform/pkg/common/kafka"
	"github.com/vitalsentry/platform/pkg/common/logger"
	"github.com/vitalsentry/platform/pkg/common/models"
	"github.com/vitalsentry/platform/pkg/detect"
	"github.com/vitalsentry/platform/pkg/observability/metrics"
	"github.com/vitalsentry/platform/pkg/vitals"
)

// Service wires the pure engine (detectors, calibrator, alert system) to
// its collaborators: Redis for previous-reading and summary caches,
// Postgres repositories for durability, Kafka for alert events. The engine
// packages never perform I/O themselves; everything below the Service
// boundary is in-memory.
type Service struct {
	validator  *vitals.Validator
	detector   *detect.Detector
	calibrator *calibrate.Calibrator
	alerts     *alerting.System

	baselineRepo *calibrate.Repository
	alertRepo    *alerting.Repository
	producer     *kafka.Producer
	cache        *redis.Client

	lastReadingTTL time.Duration
	summaryTTL     time.Duration
}

type Options struct {
	BaselineRepo   *calibrate.Repository
	AlertRepo      *alerting.Repository
	Producer       *kafka.Producer
	Cache          *redis.Client
	LastReadingTTL time.Duration
	SummaryTTL     time.Duration
}

func NewService(validator *vitals.Validator, detector *detect.Detector, calibrator *calibrate.Calibrator, alerts *alerting.System, opts Options) *Service {
	return &Service{
		validator:      validator,
		detector:       detector,
		calibrator:     calibrator,
		alerts:         alerts,
		baselineRepo:   opts.BaselineRepo,
		alertRepo:      opts.AlertRepo,
		producer:       opts.Producer,
		cache:          opts.Cache,
		lastReadingTTL: opts.LastReadingTTL,
		summaryTTL:     opts.SummaryTTL,
	}
}

// EvaluationResult is what one reading produced end to end.
type EvaluationResult struct {
	Reading   models.VitalReading `json:"reading"`
	Anomalies []models.Anomaly    `json:"anomalies,omitempty"`
	Alert     *models.Alert       `json:"alert,omitempty"`
}

// ProcessReading runs the full evaluation path for one reading: validate,
// threshold-detect, critical-deviation evaluate against the cached previous
// reading, nudge the adaptive baseline, then persist and publish.
func (s *Service) ProcessReading(ctx context.Context, reading models.VitalReading) (*EvaluationResult, error) {
	reading, err := s.validator.Validate(reading)
	if err != nil {
		metrics.IncReadingsRejected()
		return nil, err
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}

	anomalies := s.detector.Threshold(map[string]float64{reading.Vital: reading.Value})

	previous := s.lastReading(ctx, reading.PatientID, reading.Vital)
	alert := s.alerts.Evaluate(reading.PatientID, reading.Vital, reading.Value, previous, reading.Timestamp)

	s.calibrator.Update(reading.PatientID, reading.Vital, reading.Value)
	s.storeLastReading(ctx, reading)

	metrics.IncReadingsEvaluated()
	metrics.AddAnomaliesDetected(len(anomalies))

	if alert != nil {
		metrics.IncAlertsRaised()
		metrics.SetActiveAlerts(len(s.alerts.ActiveAlerts("")))
		s.persistAlert(ctx, *alert)
		s.publishAlert(ctx, *alert)
	}

	return &EvaluationResult{Reading: reading, Anomalies: anomalies, Alert: alert}, nil
}

// SeriesAnalysis bundles the three statistical detectors' findings over a
// submitted time series.
type SeriesAnalysis struct {
	ZScore       map[string][]models.Anomaly `json:"z_score,omitempty"`
	Robust       []models.Anomaly            `json:"robust,omitempty"`
	RapidChanges []models.Anomaly            `json:"rapid_changes,omitempty"`
}

// AnalyzeSeries runs the windowed detectors over a per-vital time series.
// Pure computation; nothing is persisted.
func (s *Service) AnalyzeSeries(series map[string][]float64) SeriesAnalysis {
	analysis := SeriesAnalysis{
		ZScore:       s.detector.ZScore(series),
		Robust:       s.detector.RobustOutliers(series),
		RapidChanges: s.detector.RapidChanges(series),
	}

	count := len(analysis.Robust) + len(analysis.RapidChanges)
	for _, anomalies := range analysis.ZScore {
		count += len(anomalies)
	}
	metrics.AddAnomaliesDetected(count)
	return analysis
}

// CalibratePatient performs a full recalibration from submitted history and
// persists the resulting baseline.
func (s *Service) CalibratePatient(ctx context.Context, patientID string, history map[string][]float64) (models.PatientBaseline, error) {
	baseline, err := s.calibrator.Calibrate(patientID, history)
	if err != nil {
		return models.PatientBaseline{}, err
	}
	metrics.IncCalibrationsRun()

	if s.baselineRepo != nil {
		if err := s.baselineRepo.Save(ctx, baseline); err != nil {
			logger.Log.WithError(err).WithField("patient", logger.MaskPatientID(patientID)).
				Error("failed to persist baseline")
		}
	}
	return baseline, nil
}

// PatientBaseline returns the current in-memory baseline for a patient.
func (s *Service) PatientBaseline(patientID string) (models.PatientBaseline, bool) {
	return s.calibrator.Baseline(patientID)
}

// AcknowledgeAlert transitions an alert to acknowledged. Returns false when
// the alert is unknown or already acknowledged.
func (s *Service) AcknowledgeAlert(ctx context.Context, alertID, notes string) bool {
	acked := s.alerts.Acknowledge(alertID, notes)
	if !acked {
		return false
	}

	metrics.IncAlertsAcknowledged()
	metrics.SetActiveAlerts(len(s.alerts.ActiveAlerts("")))

	if s.alertRepo != nil {
		if err := s.alertRepo.MarkAcknowledged(ctx, alertID, notes, time.Now().UTC()); err != nil &&
			!errors.Is(err, alerting.ErrAlertNotFound) {
			logger.Log.WithError(err).WithField("alert_id", alertID).
				Error("failed to persist acknowledgment")
		}
	}
	return true
}

// ActiveAlerts lists unacknowledged alerts, newest first.
func (s *Service) ActiveAlerts(patientID string) []models.Alert {
	return s.alerts.ActiveAlerts(patientID)
}

// AlertSummary aggregates the alert log, with a short-lived Redis cache in
// front since dashboards poll it.
func (s *Service) AlertSummary(ctx context.Context) models.AlertSummary {
	if s.cache != nil && s.summaryTTL > 0 {
		if raw, err := s.cache.Get(ctx, summaryCacheKey).Result(); err == nil {
			var summary models.AlertSummary
			if err := json.Unmarshal([]byte(raw), &summary); err == nil {
				return summary
			}
		}
	}

	summary := s.alerts.Summary(time.Now().UTC())

	if s.cache != nil && s.summaryTTL > 0 {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, summaryCacheKey, raw, s.summaryTTL).Err(); err != nil {
				logger.Log.WithError(err).Debug("failed to cache alert summary")
			}
		}
	}
	return summary
}

// WarmStart reloads persisted baselines and unacknowledged alerts so a
// restart does not silently drop active alerts or force recalibration.
func (s *Service) WarmStart(ctx context.Context) error {
	if s.baselineRepo != nil {
		baselines, err := s.baselineRepo.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("loading baselines: %w", err)
		}
		for _, baseline := range baselines {
			s.calibrator.Restore(baseline)
		}
		logger.Log.WithField("count", len(baselines)).Info("Baselines restored")
	}

	if s.alertRepo != nil {
		alerts, err := s.alertRepo.LoadActive(ctx)
		if err != nil {
			return fmt.Errorf("loading active alerts: %w", err)
		}
		for _, alert := range alerts {
			s.alerts.Restore(alert)
		}
		metrics.SetActiveAlerts(len(s.alerts.ActiveAlerts("")))
		logger.Log.WithField("count", len(alerts)).Info("Active alerts restored")
	}
	return nil
}

const summaryCacheKey = "vitals:alert_summary"

func lastReadingKey(patientID, vital string) string {
	return fmt.Sprintf("vitals:last:%s:%s", patientID, vital)
}

func (s *Service) lastReading(ctx context.Context, patientID, vital string) *float64 {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, lastReadingKey(patientID, vital)).Result()
	if err != nil {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

func (s *Service) storeLastReading(ctx context.Context, reading models.VitalReading) {
	if s.cache == nil {
		return
	}
	key := lastReadingKey(reading.PatientID, reading.Vital)
	raw := strconv.FormatFloat(reading.Value, 'f', -1, 64)
	if err := s.cache.Set(ctx, key, raw, s.lastReadingTTL).Err(); err != nil {
		logger.Log.WithError(err).Debug("failed to cache last reading")
	}
}

func (s *Service) persistAlert(ctx context.Context, alert models.Alert) {
	if s.alertRepo == nil {
		return
	}
	if err := s.alertRepo.Append(ctx, alert); err != nil {
		logger.Log.WithError(err).WithField("alert_id", alert.AlertID).
			Error("failed to persist alert")
	}
}

func (s *Service) publishAlert(ctx context.Context, alert models.Alert) {
	if s.producer == nil {
		return
	}
	payload := map[string]interface{}{
		"alert_id":   alert.AlertID,
		"patient_id": alert.PatientID,
		"vital":      alert.Vital,
		"type":       alert.Type,
		"value":      alert.Value,
		"threshold":  alert.Threshold,
		"severity":   alert.Severity,
		"timestamp":  alert.Timestamp,
	}
	if err := s.producer.PublishEvent(ctx, "alert", "vitals-monitor", payload); err != nil {
		logger.Log.WithError(err).WithField("alert_id", alert.AlertID).
			Error("failed to publish alert event")
	}
}
