package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	// ScenarioPath points at a YAML scenario used as the default evaluation input.
	// Empty means the built-in defaults.
	ScenarioPath string

	StrictRateValidation bool
	HistoryEnabled       bool
	CacheTTL             time.Duration

	MaxSweepPoints   int
	SweepConcurrency int

	RateLimitPerSecond float64
	RateLimitBurst     int
	AllowedOrigins     []string
	MaxRequestBytes    int64
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./jamtax.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ScenarioPath: getEnv("SCENARIO_PATH", ""),

		StrictRateValidation: getEnvAsBool("STRICT_RATE_VALIDATION", true),
		HistoryEnabled:       getEnvAsBool("HISTORY_ENABLED", true),
		CacheTTL:             getEnvAsDuration("CACHE_TTL", 15*time.Minute),

		MaxSweepPoints:   getEnvAsInt("MAX_SWEEP_POINTS", 500),
		SweepConcurrency: getEnvAsInt("SWEEP_CONCURRENCY", 8),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 30),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		MaxRequestBytes:    int64(getEnvAsInt("MAX_REQUEST_BYTES", 1<<20)),
	}

	if Cfg.MaxSweepPoints < 1 {
		log.Printf("WARNING: MAX_SWEEP_POINTS must be positive, got %d. Using default 500.", Cfg.MaxSweepPoints)
		Cfg.MaxSweepPoints = 500
	}
	if Cfg.SweepConcurrency < 1 {
		log.Printf("WARNING: SWEEP_CONCURRENCY must be positive, got %d. Using 1.", Cfg.SweepConcurrency)
		Cfg.SweepConcurrency = 1
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, StrictRates=%t, History=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.StrictRateValidation, Cfg.HistoryEnabled)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %g", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
