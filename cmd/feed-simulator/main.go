package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitalsentry/platform/pkg/common/config"
	"github.com/vitalsentry/platform/pkg/common/kafka"
	"github.com/vitalsentry/platform/pkg/common/logger"
	"github.com/vitalsentry/platform/pkg/simulate"
)

// feed-simulator publishes synthetic readings to the vitals topic so the
// monitor service can be exercised without a live monitor or EHR feed.
// Occasionally it injects a critical excursion to light up the alert path.
func main() {
	logger.Init()
	cfg := config.Load()

	producer := kafka.NewProducer(cfg.VitalsKafkaTopic)
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	patients := make([]string, cfg.SimPatientCount)
	for i := range patients {
		patients[i] = fmt.Sprintf("SIM-%04d", i+1)
	}

	logger.Log.WithFields(map[string]interface{}{
		"patients": len(patients),
		"topic":    cfg.VitalsKafkaTopic,
		"interval": cfg.SimInterval.String(),
	}).Info("Feed simulator started")

	ticker := time.NewTicker(cfg.SimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Feed simulator stopped")
			return
		case <-ticker.C:
			patient := patients[rng.Intn(len(patients))]
			for _, vital := range simulate.VitalNames() {
				value, ok := simulate.NextReading(rng, vital)
				if !ok {
					continue
				}

				// Roughly one reading in 200 becomes a critical excursion.
				if rng.Intn(200) == 0 {
					value *= 1.6
				}

				payload := map[string]interface{}{
					"patient_id": patient,
					"vital_name": vital,
					"value":      value,
					"timestamp":  time.Now().UTC().Format(time.RFC3339),
				}
				if err := producer.PublishEvent(ctx, "reading", "feed-simulator", payload); err != nil {
					logger.Log.WithError(err).Warn("failed to publish reading")
				}
			}
		}
	}
}
