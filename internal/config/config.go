package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"unprompted-mcp/internal/api"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath       string
	LogDir         string
	HistoryEnabled bool
	HistoryPath    string
	HTTPAddr       string
	RequestTimeout time.Duration
	Limits         api.Limits
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return fromEnv(exeDir), nil
}

func fromEnv(exeDir string) *AppConfig {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	historyPath := getEnv("HISTORY_DB", filepath.Join(dataPath, "history.db"))

	defaults := api.DefaultLimits()

	return &AppConfig{
		DataPath:       dataPath,
		LogDir:         logDir,
		HistoryEnabled: getEnvBool("HISTORY_ENABLED", true),
		HistoryPath:    historyPath,
		HTTPAddr:       getEnv("HTTP_ADDR", "127.0.0.1:8787"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		Limits: api.Limits{
			MaxNumDays:    getEnvInt("MAX_NUM_DAYS", defaults.MaxNumDays),
			MaxBinsPer24h: getEnvInt("MAX_BINS_PER_24H", defaults.MaxBinsPer24h),
			MaxTotalBins:  getEnvInt("MAX_TOTAL_BINS", defaults.MaxTotalBins),
			MaxTrials:     getEnvInt("MAX_TRIALS", defaults.MaxTrials),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return fallback
}
