package vitals

import (
	"math"
	"testing"

	"github.com/vitalsentry/platform/pkg/common/models"
)

func TestValidatorAcceptsWellFormedReading(t *testing.T) {
	validator := NewValidator(DefaultRangeTable())

	reading, err := validator.Validate(models.VitalReading{
		PatientID: "P1",
		Vital:     "heart_rate",
		Value:     75,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Value != 75 {
		t.Fatalf("value must pass through unchanged, got %g", reading.Value)
	}
}

func TestValidatorNormalizesVitalName(t *testing.T) {
	validator := NewValidator(DefaultRangeTable())

	reading, err := validator.Validate(models.VitalReading{
		PatientID: "P1",
		Vital:     "  Heart_Rate ",
		Value:     75,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Vital != "heart_rate" {
		t.Fatalf("expected normalized vital name, got %q", reading.Vital)
	}
}

func TestValidatorRejectsNaNAndInf(t *testing.T) {
	validator := NewValidator(DefaultRangeTable())

	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := validator.Validate(models.VitalReading{
			PatientID: "P1",
			Vital:     "heart_rate",
			Value:     value,
		})
		if err == nil {
			t.Fatalf("expected rejection for %v", value)
		}
		if !IsValidationError(err) {
			t.Fatalf("expected a validation error, got %v", err)
		}
	}
}

func TestValidatorRejectsUnknownVital(t *testing.T) {
	validator := NewValidator(DefaultRangeTable())

	_, err := validator.Validate(models.VitalReading{
		PatientID: "P1",
		Vital:     "shoe_size",
		Value:     42,
	})
	if err == nil || !IsValidationError(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestValidatorRejectsMissingPatient(t *testing.T) {
	validator := NewValidator(DefaultRangeTable())

	_, err := validator.Validate(models.VitalReading{
		Vital: "heart_rate",
		Value: 75,
	})
	if err == nil || !IsValidationError(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestValidatorConvertsFahrenheit(t *testing.T) {
	validator := NewValidator(DefaultRangeTable())

	reading, err := validator.Validate(models.VitalReading{
		PatientID: "P1",
		Vital:     "temperature",
		Value:     98.6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(reading.Value-37.0) > 1e-9 {
		t.Fatalf("expected 98.6°F to normalize to 37°C, got %g", reading.Value)
	}

	// Celsius values pass through untouched.
	reading, err = validator.Validate(models.VitalReading{
		PatientID: "P1",
		Vital:     "temperature",
		Value:     37.2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Value != 37.2 {
		t.Fatalf("expected 37.2 unchanged, got %g", reading.Value)
	}
}
