package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/vitalsentry/platform/pkg/alerting"
	"github.com/vitalsentry/platform/pkg/calibrate"
	"github.com/vitalsentry/platform/pkg/common/config"
	"github.com/vitalsentry/platform/pkg/common/database"
	"github.com/vitalsentry/platform/pkg/common/kafka"
	"github.com/vitalsentry/platform/pkg/common/logger"
	"github.com/vitalsentry/platform/pkg/detect"
	"github.com/vitalsentry/platform/pkg/monitor"
	"github.com/vitalsentry/platform/pkg/observability/metrics"
	"github.com/vitalsentry/platform/pkg/vitals"
)

func main() {
	logger.Init()
	metrics.Init()
	cfg := config.Load()

	table, err := vitals.LoadRangeTable(cfg.RangesFile)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.RangesFile).
			Warn("failed to load range overrides, using defaults")
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	baselineRepo := calibrate.NewRepository(db)
	if err := baselineRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate baseline tables")
	}

	alertRepo := alerting.NewRepository(db)
	if err := alertRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate alert tables")
	}

	producer := kafka.NewProducer(cfg.AlertsKafkaTopic)
	defer producer.Close()

	validator := vitals.NewValidator(table)
	detector := detect.NewDetector(table, detect.Config{
		ZScoreWindow:      cfg.ZScoreWindow,
		ZScoreFlag:        cfg.ZScoreThreshold,
		RobustFlag:        cfg.RobustThreshold,
		RapidChangeWindow: cfg.RapidChangeWindow,
	})
	calibrator := calibrate.NewCalibrator(cfg.HistoryWindowDays, cfg.EMALearningRate)
	alertSystem := alerting.NewSystem(table.AlertThresholds)

	svc := monitor.NewService(validator, detector, calibrator, alertSystem, monitor.Options{
		BaselineRepo:   baselineRepo,
		AlertRepo:      alertRepo,
		Producer:       producer,
		Cache:          database.GetRedis(),
		LastReadingTTL: cfg.LastReadingCacheTTL,
		SummaryTTL:     cfg.SummaryCacheTTL,
	})

	if err := svc.WarmStart(context.Background()); err != nil {
		logger.Log.WithError(err).Warn("warm start incomplete")
	}

	handler := monitor.NewHTTPHandler(svc, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.Use(monitor.RecoveryMiddleware, monitor.LoggingMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Monitor Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	consumer := kafka.NewConsumer(cfg.VitalsKafkaTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	go func() {
		logger.Log.WithField("topic", cfg.VitalsKafkaTopic).Info("Consuming vitals feed")
		if err := consumer.Consume(ctx, svc.HandleReadingEvent); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("vitals consumer stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Monitor Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Monitor Service stopped")
}
