package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	readingsEvaluated  atomic.Int64
	readingsRejected   atomic.Int64
	anomaliesDetected  atomic.Int64
	alertsRaised       atomic.Int64
	alertsAcknowledged atomic.Int64
	activeAlertsGauge  atomic.Int64
	calibrationsRun    atomic.Int64
)

func Init() {}

func IncReadingsEvaluated()  { readingsEvaluated.Add(1) }
func IncReadingsRejected()   { readingsRejected.Add(1) }
func IncAlertsRaised()       { alertsRaised.Add(1) }
func IncAlertsAcknowledged() { alertsAcknowledged.Add(1) }
func IncCalibrationsRun()    { calibrationsRun.Add(1) }

func AddAnomaliesDetected(n int) { anomaliesDetected.Add(int64(n)) }
func SetActiveAlerts(n int)      { activeAlertsGauge.Store(int64(n)) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP vitalsentry_readings_evaluated_total Number of vital-sign readings evaluated by the engine.\n")
	fmt.Fprintf(w, "# TYPE vitalsentry_readings_evaluated_total counter\n")
	fmt.Fprintf(w, "vitalsentry_readings_evaluated_total %d\n", readingsEvaluated.Load())

	fmt.Fprintf(w, "# HELP vitalsentry_readings_rejected_total Number of readings rejected at the ingest boundary.\n")
	fmt.Fprintf(w, "# TYPE vitalsentry_readings_rejected_total counter\n")
	fmt.Fprintf(w, "vitalsentry_readings_rejected_total %d\n", readingsRejected.Load())

	fmt.Fprintf(w, "# HELP vitalsentry_anomalies_detected_total Number of anomalies flagged across all detection methods.\n")
	fmt.Fprintf(w, "# TYPE vitalsentry_anomalies_detected_total counter\n")
	fmt.Fprintf(w, "vitalsentry_anomalies_detected_total %d\n", anomaliesDetected.Load())

	fmt.Fprintf(w, "# HELP vitalsentry_alerts_raised_total Number of critical-deviation alerts created.\n")
	fmt.Fprintf(w, "# TYPE vitalsentry_alerts_raised_total counter\n")
	fmt.Fprintf(w, "vitalsentry_alerts_raised_total %d\n", alertsRaised.Load())

	fmt.Fprintf(w, "# HELP vitalsentry_alerts_acknowledged_total Number of alerts acknowledged by operators.\n")
	fmt.Fprintf(w, "# TYPE vitalsentry_alerts_acknowledged_total counter\n")
	fmt.Fprintf(w, "vitalsentry_alerts_acknowledged_total %d\n", alertsAcknowledged.Load())

	fmt.Fprintf(w, "# HELP vitalsentry_active_alerts Number of currently unacknowledged alerts.\n")
	fmt.Fprintf(w, "# TYPE vitalsentry_active_alerts gauge\n")
	fmt.Fprintf(w, "vitalsentry_active_alerts %d\n", activeAlertsGauge.Load())

	fmt.Fprintf(w, "# HELP vitalsentry_calibrations_total Number of full baseline calibrations performed.\n")
	fmt.Fprintf(w, "# TYPE vitalsentry_calibrations_total counter\n")
	fmt.Fprintf(w, "vitalsentry_calibrations_total %d\n", calibrationsRun.Load())
}
