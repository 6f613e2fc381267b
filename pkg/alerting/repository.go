package alerting

import (
	"context"
	"errors"
	"time"

	"github.com/vitalsentry/platform/pkg/common/models"
	"gorm.io/gorm"
)

var ErrAlertNotFound = errors.New("alert not found")

// AlertRecord is the persisted form of an alert, one row per creation
// event. Rows are only ever inserted or ack-updated, never deleted.
type AlertRecord struct {
	AlertID       string     `json:"alert_id" gorm:"primaryKey;column:alert_id"`
	PatientID     string     `json:"patient_id" gorm:"column:patient_id;index"`
	Vital         string     `json:"vital" gorm:"column:vital"`
	Type          string     `json:"type" gorm:"column:type"`
	Value         float64    `json:"value" gorm:"column:value"`
	PreviousValue *float64   `json:"previous_value,omitempty" gorm:"column:previous_value"`
	Change        float64    `json:"change" gorm:"column:change"`
	Threshold     float64    `json:"threshold" gorm:"column:threshold"`
	Severity      string     `json:"severity" gorm:"column:severity"`
	Timestamp     time.Time  `json:"timestamp" gorm:"column:timestamp;index"`
	Acknowledged  bool       `json:"acknowledged" gorm:"column:acknowledged"`
	AckedAt       *time.Time `json:"acknowledged_at,omitempty" gorm:"column:acknowledged_at"`
	AckNotes      string     `json:"acknowledgment_notes,omitempty" gorm:"column:acknowledgment_notes"`
}

func (AlertRecord) TableName() string {
	return "alert_log"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&AlertRecord{})
}

func (r *Repository) Append(ctx context.Context, alert models.Alert) error {
	record := toRecord(alert)
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *Repository) MarkAcknowledged(ctx context.Context, alertID, notes string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&AlertRecord{}).
		Where("alert_id = ? AND acknowledged = ?", alertID, false).
		Updates(map[string]interface{}{
			"acknowledged":         true,
			"acknowledged_at":      at,
			"acknowledgment_notes": notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// LoadActive returns unacknowledged alerts, used to warm the in-memory
// system at startup.
func (r *Repository) LoadActive(ctx context.Context) ([]models.Alert, error) {
	var records []AlertRecord
	if err := r.db.WithContext(ctx).
		Where("acknowledged = ?", false).
		Order("timestamp asc").
		Find(&records).Error; err != nil {
		return nil, err
	}

	alerts := make([]models.Alert, 0, len(records))
	for _, record := range records {
		alerts = append(alerts, record.toModel())
	}
	return alerts, nil
}

func toRecord(alert models.Alert) AlertRecord {
	return AlertRecord{
		AlertID:       alert.AlertID,
		PatientID:     alert.PatientID,
		Vital:         alert.Vital,
		Type:          alert.Type,
		Value:         alert.Value,
		PreviousValue: alert.PreviousValue,
		Change:        alert.Change,
		Threshold:     alert.Threshold,
		Severity:      alert.Severity,
		Timestamp:     alert.Timestamp,
		Acknowledged:  alert.Acknowledged,
		AckedAt:       alert.AckedAt,
		AckNotes:      alert.AckNotes,
	}
}

func (record AlertRecord) toModel() models.Alert {
	return models.Alert{
		AlertID:       record.AlertID,
		PatientID:     record.PatientID,
		Vital:         record.Vital,
		Type:          record.Type,
		Value:         record.Value,
		PreviousValue: record.PreviousValue,
		Change:        record.Change,
		Threshold:     record.Threshold,
		Severity:      record.Severity,
		Timestamp:     record.Timestamp,
		Acknowledged:  record.Acknowledged,
		AckedAt:       record.AckedAt,
		AckNotes:      record.AckNotes,
	}
}
