package calibrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vitalsentry/platform/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBaselineNotFound = errors.New("baseline not found")

// BaselineRecord is the persisted form of a patient baseline. The engine
// stays in-memory; the monitor service uses this repository to survive
// restarts without forcing an immediate recalibration.
type BaselineRecord struct {
	PatientID    string            `json:"patient_id" gorm:"primaryKey;column:patient_id"`
	Baselines    datatypes.JSONMap `json:"baselines" gorm:"column:baselines"`
	HistoryDays  int               `json:"history_days" gorm:"column:history_days"`
	CalibratedAt time.Time         `json:"calibrated_at" gorm:"column:calibrated_at"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"column:updated_at"`
}

func (BaselineRecord) TableName() string {
	return "patient_baselines"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&BaselineRecord{})
}

// Save upserts the baseline; one row per patient, replaced wholesale like
// the in-memory store.
func (r *Repository) Save(ctx context.Context, baseline models.PatientBaseline) error {
	payload := make(datatypes.JSONMap, len(baseline.Vitals))
	for vital, vb := range baseline.Vitals {
		raw, err := json.Marshal(vb)
		if err != nil {
			return fmt.Errorf("encoding baseline for %s: %w", vital, err)
		}
		var asMap map[string]interface{}
		if err := json.Unmarshal(raw, &asMap); err != nil {
			return fmt.Errorf("encoding baseline for %s: %w", vital, err)
		}
		payload[vital] = asMap
	}

	record := BaselineRecord{
		PatientID:    baseline.PatientID,
		Baselines:    payload,
		HistoryDays:  baseline.HistoryDays,
		CalibratedAt: baseline.CalibratedAt,
		UpdatedAt:    time.Now().UTC(),
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "patient_id"}},
		UpdateAll: true,
	}).Create(&record).Error
}

func (r *Repository) Get(ctx context.Context, patientID string) (models.PatientBaseline, error) {
	var record BaselineRecord
	result := r.db.WithContext(ctx).First(&record, "patient_id = ?", patientID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return models.PatientBaseline{}, ErrBaselineNotFound
	}
	if result.Error != nil {
		return models.PatientBaseline{}, result.Error
	}
	return record.toModel()
}

// LoadAll streams every persisted baseline, used to warm the calibrator at startup.
func (r *Repository) LoadAll(ctx context.Context) ([]models.PatientBaseline, error) {
	var records []BaselineRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}

	baselines := make([]models.PatientBaseline, 0, len(records))
	for _, record := range records {
		baseline, err := record.toModel()
		if err != nil {
			return nil, err
		}
		baselines = append(baselines, baseline)
	}
	return baselines, nil
}

func (record BaselineRecord) toModel() (models.PatientBaseline, error) {
	vitalBaselines := make(map[string]models.VitalBaseline, len(record.Baselines))
	for vital, raw := range record.Baselines {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return models.PatientBaseline{}, fmt.Errorf("decoding baseline for %s: %w", vital, err)
		}
		var vb models.VitalBaseline
		if err := json.Unmarshal(encoded, &vb); err != nil {
			return models.PatientBaseline{}, fmt.Errorf("decoding baseline for %s: %w", vital, err)
		}
		vitalBaselines[vital] = vb
	}

	return models.PatientBaseline{
		PatientID:    record.PatientID,
		Vitals:       vitalBaselines,
		CalibratedAt: record.CalibratedAt,
		HistoryDays:  record.HistoryDays,
	}, nil
}
