package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every process-wide setting. It is built once at
// startup, validated, and passed into the component constructors; no
// package reads the environment after that.
type Config struct {
	// Google Cloud project settings.
	ProjectID string
	Location  string

	// Google Drive settings.
	DriveFolderID   string
	CredentialsFile string

	// Google Sheets settings.
	SpreadsheetID string
	SheetsRange   string

	// Vertex AI settings.
	VertexModel     string
	MaxOutputTokens int32
	Temperature     float32

	// Application settings.
	BatchSize int
	LogLevel  slog.Level
}

// Load builds a Config from the environment, reading envFile first if
// it exists. A missing env file is not an error; missing required
// settings are, and they are all reported together.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	maxTokens, err := intEnv("VERTEX_AI_MAX_OUTPUT_TOKENS", 2048)
	if err != nil {
		return nil, err
	}
	temperature, err := floatEnv("VERTEX_AI_TEMPERATURE", 0.2)
	if err != nil {
		return nil, err
	}
	batchSize, err := intEnv("BATCH_SIZE", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectID:       getEnv("GCP_PROJECT_ID", ""),
		Location:        getEnv("GCP_LOCATION", "us-central1"),
		DriveFolderID:   getEnv("DRIVE_FOLDER_ID", ""),
		CredentialsFile: getEnv("DRIVE_CREDENTIALS_FILE", "credentials.json"),
		SpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsRange:     getEnv("SHEETS_RANGE", "Sheet1!A1"),
		VertexModel:     getEnv("VERTEX_AI_MODEL", "gemini-1.5-flash"),
		MaxOutputTokens: int32(maxTokens),
		Temperature:     float32(temperature),
		BatchSize:       batchSize,
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequiredVars are the settings Validate insists on. Exported so the
// check command can report on them individually.
var RequiredVars = []string{
	"GCP_PROJECT_ID",
	"DRIVE_FOLDER_ID",
	"SHEETS_SPREADSHEET_ID",
}

// Validate fails fast with a single error enumerating every missing
// required field.
func (c *Config) Validate() error {
	var missing []string
	if c.ProjectID == "" {
		missing = append(missing, "GCP_PROJECT_ID")
	}
	if c.DriveFolderID == "" {
		missing = append(missing, "DRIVE_FOLDER_ID")
	}
	if c.SpreadsheetID == "" {
		missing = append(missing, "SHEETS_SPREADSHEET_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s (set these in your .env file or environment)",
			strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToUpper(raw) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
