package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers     []string
	KafkaGroupID     string
	VitalsKafkaTopic string
	AlertsKafkaTopic string

	// Engine tunables
	RangesFile          string
	ZScoreWindow        int
	ZScoreThreshold     float64
	RobustThreshold     float64
	RapidChangeWindow   int
	HistoryWindowDays   int
	EMALearningRate     float64
	LastReadingCacheTTL time.Duration
	SummaryCacheTTL     time.Duration

	// Feed simulator
	SimPatientCount int
	SimInterval     time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "vitalsentry"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "vitalsentry123"),
		PostgresDB:       getEnv("POSTGRES_DB", "vitalsentry"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "vitalsentry-monitor"),
		VitalsKafkaTopic: getEnv("VITALS_KAFKA_TOPIC", "vitals.readings"),
		AlertsKafkaTopic: getEnv("ALERTS_KAFKA_TOPIC", "vitals.alerts"),

		RangesFile:          getEnv("CLINICAL_RANGES_FILE", ""),
		ZScoreWindow:        getIntEnv("ZSCORE_WINDOW", 20),
		ZScoreThreshold:     getFloatEnv("ZSCORE_THRESHOLD", 3.0),
		RobustThreshold:     getFloatEnv("ROBUST_THRESHOLD", 3.5),
		RapidChangeWindow:   getIntEnv("RAPID_CHANGE_WINDOW", 3),
		HistoryWindowDays:   getIntEnv("HISTORY_WINDOW_DAYS", 14),
		EMALearningRate:     getFloatEnv("EMA_LEARNING_RATE", 0.1),
		LastReadingCacheTTL: getDuration("LAST_READING_CACHE_TTL", 6*time.Hour),
		SummaryCacheTTL:     getDuration("SUMMARY_CACHE_TTL", 30*time.Second),

		SimPatientCount: getIntEnv("SIM_PATIENT_COUNT", 5),
		SimInterval:     getDuration("SIM_INTERVAL", 2*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
