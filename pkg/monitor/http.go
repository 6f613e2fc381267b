package monitor

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vitalsentry/platform/pkg/calibrate"
	"github.com/vitalsentry/platform/pkg/common/logger"
	"github.com/vitalsentry/platform/pkg/common/models"
	"github.com/vitalsentry/platform/pkg/vitals"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/vitals", h.handleReading).Methods(http.MethodPost)
	router.HandleFunc("/patients/{id}/calibrate", h.handleCalibrate).Methods(http.MethodPost)
	router.HandleFunc("/patients/{id}/baseline", h.handleBaseline).Methods(http.MethodGet)
	router.HandleFunc("/patients/{id}/analyze", h.handleAnalyze).Methods(http.MethodPost)
	router.HandleFunc("/alerts/active", h.handleActiveAlerts).Methods(http.MethodGet)
	router.HandleFunc("/alerts/{id}/acknowledge", h.handleAcknowledge).Methods(http.MethodPost)
	router.HandleFunc("/alerts/summary", h.handleSummary).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleReading(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var reading models.VitalReading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		logger.Log.WithError(err).Warn("invalid reading payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.ProcessReading(r.Context(), reading)
	if err != nil {
		if vitals.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to process reading")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type calibrateRequest struct {
	History map[string][]float64 `json:"history"`
}

func (h *HTTPHandler) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	patientID := mux.Vars(r)["id"]

	var req calibrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	baseline, err := h.service.CalibratePatient(r.Context(), patientID, req.History)
	if err != nil {
		if errors.Is(err, calibrate.ErrNoHistory) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to calibrate patient")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, baseline)
}

func (h *HTTPHandler) handleBaseline(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]

	baseline, ok := h.service.PatientBaseline(patientID)
	if !ok {
		http.Error(w, "no baseline for patient", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, baseline)
}

type analyzeRequest struct {
	Series map[string][]float64 `json:"series"`
}

func (h *HTTPHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Series) == 0 {
		http.Error(w, "series required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.service.AnalyzeSeries(req.Series))
}

func (h *HTTPHandler) handleActiveAlerts(w http.ResponseWriter, r *http.Request) {
	patientID := r.URL.Query().Get("patient_id")
	alerts := h.service.ActiveAlerts(patientID)
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

type acknowledgeRequest struct {
	Notes string `json:"notes"`
}

func (h *HTTPHandler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	alertID := mux.Vars(r)["id"]

	var req acknowledgeRequest
	if r.Body != nil {
		// Notes are optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if !h.service.AcknowledgeAlert(r.Context(), alertID, req.Notes) {
		http.Error(w, "alert not found or already acknowledged", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged", "alert_id": alertID})
}

func (h *HTTPHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.AlertSummary(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
