package monitor

import (
	"context"
	"time"

	"github.com/vitalsentry/platform/pkg/common/logger"
	"github.com/vitalsentry/platform/pkg/common/models"
	"github.com/vitalsentry/platform/pkg/vitals"
)

// HandleReadingEvent adapts vitals-feed events from the event bus into the
// evaluation path. Malformed or invalid readings are logged and committed
// rather than retried; a bad reading will not improve on redelivery.
func (s *Service) HandleReadingEvent(ctx context.Context, event models.Event) error {
	reading, ok := readingFromEvent(event)
	if !ok {
		logger.Log.WithField("event_id", event.ID).Warn("reading event missing required fields")
		return nil
	}

	if _, err := s.ProcessReading(ctx, reading); err != nil {
		if vitals.IsValidationError(err) {
			logger.Log.WithError(err).WithField("event_id", event.ID).Info("reading rejected")
			return nil
		}
		return err
	}
	return nil
}

func readingFromEvent(event models.Event) (models.VitalReading, bool) {
	patientID, _ := event.Data["patient_id"].(string)
	vitalName, _ := event.Data["vital_name"].(string)
	value, okValue := event.Data["value"].(float64)
	if patientID == "" || vitalName == "" || !okValue {
		return models.VitalReading{}, false
	}

	timestamp := event.Timestamp
	if raw, ok := event.Data["timestamp"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			timestamp = parsed
		}
	}

	return models.VitalReading{
		PatientID: patientID,
		Vital:     vitalName,
		Value:     value,
		Timestamp: timestamp,
	}, true
}
