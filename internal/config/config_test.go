package config

import (
	"log/slog"
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "test-project")
	t.Setenv("DRIVE_FOLDER_ID", "folder-123")
	t.Setenv("SHEETS_SPREADSHEET_ID", "sheet-456")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned %v", err)
	}

	if cfg.Location != "us-central1" {
		t.Errorf("Location = %q", cfg.Location)
	}
	if cfg.SheetsRange != "Sheet1!A1" {
		t.Errorf("SheetsRange = %q", cfg.SheetsRange)
	}
	if cfg.CredentialsFile != "credentials.json" {
		t.Errorf("CredentialsFile = %q", cfg.CredentialsFile)
	}
	if cfg.MaxOutputTokens != 2048 {
		t.Errorf("MaxOutputTokens = %d", cfg.MaxOutputTokens)
	}
	if cfg.BatchSize != 100 {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadReportsAllMissingRequiredVars(t *testing.T) {
	for _, key := range RequiredVars {
		t.Setenv(key, "")
	}

	_, err := Load("")
	if err == nil {
		t.Fatal("Load returned nil, want error")
	}
	for _, key := range RequiredVars {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("BATCH_SIZE", "lots")

	if _, err := Load(""); err == nil {
		t.Fatal("Load returned nil for malformed BATCH_SIZE, want error")
	}

	t.Setenv("BATCH_SIZE", "")
	t.Setenv("VERTEX_AI_TEMPERATURE", "warm")
	if _, err := Load(""); err == nil {
		t.Fatal("Load returned nil for malformed VERTEX_AI_TEMPERATURE, want error")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := parseLogLevel(raw); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
