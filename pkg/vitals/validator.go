package vitals

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vitalsentry/platform/pkg/common/models"
)

var (
	errMissingPatient = errors.New("missing patient id")
	errUnknownVital   = errors.New("unknown vital")
	errNonFinite      = errors.New("value is not a finite number")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Validator normalizes and validates readings at the ingest boundary before
// they reach the detectors. Detectors themselves skip anything unknown, so
// this is the one place a malformed reading is surfaced to the caller.
type Validator struct {
	known map[string]struct{}
}

func NewValidator(table RangeTable) *Validator {
	known := make(map[string]struct{}, len(table.NormalRanges))
	for vital := range table.NormalRanges {
		known[vital] = struct{}{}
	}
	return &Validator{known: known}
}

// Validate checks a reading and returns a normalized copy. Temperature
// readings on an obvious Fahrenheit scale are converted to Celsius, since
// some upstream feeds emit 98.6-style values against a Celsius table.
func (v *Validator) Validate(reading models.VitalReading) (models.VitalReading, error) {
	if strings.TrimSpace(reading.PatientID) == "" {
		return reading, ValidationError{reason: errMissingPatient}
	}

	vital := strings.TrimSpace(strings.ToLower(reading.Vital))
	if vital == "" {
		return reading, ValidationError{reason: fmt.Errorf("vital name required: %w", errUnknownVital)}
	}
	if _, ok := v.known[vital]; !ok {
		return reading, ValidationError{reason: fmt.Errorf("vital '%s': %w", vital, errUnknownVital)}
	}
	reading.Vital = vital

	if math.IsNaN(reading.Value) || math.IsInf(reading.Value, 0) {
		return reading, ValidationError{reason: fmt.Errorf("vital '%s': %w", vital, errNonFinite)}
	}

	if vital == Temperature {
		reading.Value = NormalizeTemperature(reading.Value)
	}

	return reading, nil
}

// NormalizeTemperature converts Fahrenheit-scale body temperatures to
// Celsius. Any plausible human core temperature in Celsius sits well below
// 45; values above that can only be Fahrenheit.
func NormalizeTemperature(value float64) float64 {
	if value > 45 {
		return (value - 32) * 5 / 9
	}
	return value
}
