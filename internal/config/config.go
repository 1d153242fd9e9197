package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	// ProPolicy enables the full availability gate chain. When false the
	// evaluator is replaced by a pass-through policy.
	ProPolicy bool

	// ProfileSync mirrors the primary avatar into the host profile picture.
	ProfileSync bool

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Assignment AssignmentConfig
}

// AssignmentConfig controls the auto-assignment scheduler.
type AssignmentConfig struct {
	Enabled       bool
	RunInterval   time.Duration
	BatchSize     int
	MaxIterations int
	// MatchField is the host profile field compared against avatar
	// names and idnumbers. Empty disables matching entirely.
	MatchField string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "avatarhub"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		ProPolicy:   getenvBool("PRO_POLICY", true),
		ProfileSync: getenvBool("PROFILE_SYNC", false),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "avatarhub"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		Assignment: AssignmentConfig{
			Enabled:       getenvBool("ASSIGNMENT_ENABLED", false),
			RunInterval:   time.Duration(getenvInt("ASSIGNMENT_RUN_INTERVAL_SECONDS", 60)) * time.Second,
			BatchSize:     getenvInt("ASSIGNMENT_BATCH_SIZE", 0),
			MaxIterations: getenvInt("ASSIGNMENT_MAX_ITERATIONS", 0),
			MatchField:    strings.TrimSpace(getenv("ASSIGNMENT_MATCH_FIELD", "")),
		},
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
