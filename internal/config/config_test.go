package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"DATA_PATH", "LOGS_FOLDER", "HISTORY_DB", "HISTORY_ENABLED", "HTTP_ADDR", "REQUEST_TIMEOUT_SECONDS", "MAX_NUM_DAYS", "MAX_BINS_PER_24H", "MAX_TOTAL_BINS", "MAX_TRIALS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := fromEnv("/opt/unprompted")

	if cfg.DataPath != "/opt/unprompted" {
		t.Errorf("Expected data path from binary dir, got %s", cfg.DataPath)
	}
	if cfg.LogDir != filepath.Join("/opt/unprompted", "logs") {
		t.Errorf("Unexpected log dir %s", cfg.LogDir)
	}
	if cfg.HistoryPath != filepath.Join("/opt/unprompted", "history.db") {
		t.Errorf("Unexpected history path %s", cfg.HistoryPath)
	}
	if !cfg.HistoryEnabled {
		t.Error("Expected history enabled by default")
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.Limits.MaxBinsPer24h != 1440 {
		t.Errorf("Expected 1440 max bins, got %d", cfg.Limits.MaxBinsPer24h)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATA_PATH", "/data")
	t.Setenv("HISTORY_ENABLED", "false")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("MAX_NUM_DAYS", "30")
	t.Setenv("MAX_TRIALS", "not-a-number")
	t.Setenv("HTTP_ADDR", ":9000")

	cfg := fromEnv("")

	if cfg.DataPath != "/data" {
		t.Errorf("Expected /data, got %s", cfg.DataPath)
	}
	if cfg.HistoryEnabled {
		t.Error("Expected history disabled")
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.Limits.MaxNumDays != 30 {
		t.Errorf("Expected MaxNumDays 30, got %d", cfg.Limits.MaxNumDays)
	}
	if cfg.Limits.MaxTrials != 1_000_000 {
		t.Errorf("Expected fallback MaxTrials, got %d", cfg.Limits.MaxTrials)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("Expected :9000, got %s", cfg.HTTPAddr)
	}
}

func TestGodotenvQuoting(t *testing.T) {
	content := `HISTORY_DB='/var/lib/unprompted "runs".db'`
	tmpfile, err := os.CreateTemp("", ".env.test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(tmpfile.Name())
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `/var/lib/unprompted "runs".db`
	if env["HISTORY_DB"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["HISTORY_DB"])
	}
}
