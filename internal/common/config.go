package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	Engine   EngineConfig
	Counter  CounterConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// OCRConfig holds tesseract-related configuration
type OCRConfig struct {
	Tesseract     string
	Lang          string
	PSM           int
	OEM           int
	TessdataDir   string
	DPI           int
	MaxPages      int
	TSVConfidence bool
}

// EngineConfig holds extraction-engine configuration
type EngineConfig struct {
	WorkerMultiplier int
	HeaderLines      int
	ExcludedTaxIDs   []string
	ExcludedNames    []string
	Debug            bool
}

// CounterConfig holds operation-numbering configuration
type CounterConfig struct {
	Prefix     string
	MaxRetries int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_PATH", "tesseract"),
			Lang:          getEnv("TESSERACT_LANG", "spa"),
			PSM:           getEnvAsInt("TESSERACT_PSM", 0),
			OEM:           getEnvAsInt("TESSERACT_OEM", 0),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 150),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 20),
			TSVConfidence: getEnvAsBool("OCR_TSV_CONFIDENCE", false),
		},
		Engine: EngineConfig{
			WorkerMultiplier: getEnvAsInt("ENGINE_WORKER_MULTIPLIER", 2),
			HeaderLines:      getEnvAsInt("ENGINE_HEADER_LINES", 20),
			ExcludedTaxIDs:   getEnvAsList("ENGINE_EXCLUDED_TAX_IDS", "20508558997"),
			ExcludedNames:    getEnvAsList("ENGINE_EXCLUDED_NAMES", ""),
			Debug:            getEnvAsBool("ENGINE_DEBUG", false),
		},
		Counter: CounterConfig{
			Prefix:     getEnv("COUNTER_PREFIX", "DOC"),
			MaxRetries: getEnvAsInt("COUNTER_MAX_RETRIES", 3),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.OCR.Tesseract == "" {
		return NewAppError("CONFIG_ERROR", "TESSERACT_PATH is required", ErrInvalidInput)
	}
	if c.OCR.DPI < 72 || c.OCR.DPI > 600 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI out of range", ErrInvalidInput)
	}
	if c.Counter.Prefix == "" {
		return NewAppError("CONFIG_ERROR", "COUNTER_PREFIX is required", ErrInvalidInput)
	}
	return nil
}
