// Package config loads the statement processor configuration from the
// environment, after an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Document store backends.
const (
	StoreDrive = "drive"
	StoreGCS   = "gcs"
	StoreLocal = "local"
)

// Config holds all application configuration.
type Config struct {
	Ledger    LedgerConfig
	Documents DocumentConfig
	Google    GoogleConfig
	BigQuery  BigQueryConfig
	Worker    WorkerConfig
	HTTP      HTTPConfig
	LogLevel  string
}

// LedgerConfig locates the ledger spreadsheet. When XLSXDir is set the
// ledger is kept in local workbooks instead, one per year.
type LedgerConfig struct {
	SpreadsheetID string
	Worksheet     string
	XLSXDir       string
}

// DocumentConfig locates the statement inbox and archive.
type DocumentConfig struct {
	Store           string
	TempFolderID    string
	RegularFolderID string
	GCSBucket       string
	LocalRoot       string
}

// GoogleConfig holds credentials for the Google APIs.
type GoogleConfig struct {
	CredentialsFile string
}

// BigQueryConfig configures the run audit sink. It is disabled when Project is empty.
type BigQueryConfig struct {
	Project string
	Dataset string
}

// Enabled reports whether a BigQuery project is configured.
func (c BigQueryConfig) Enabled() bool {
	return c.Project != ""
}

// WorkerConfig configures the scheduled worker.
type WorkerConfig struct {
	Schedule    string
	Concurrency int
	MaxRetries  int
}

// HTTPConfig configures the worker's control API. It is disabled when Addr is empty.
type HTTPConfig struct {
	Addr  string
	Token string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment
// variables take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("Load: read .env: %w", err)
	}
	return FromEnv()
}

// LoadRaw is Load without validation, for commands that never touch the
// document store.
func LoadRaw() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("LoadRaw: read .env: %w", err)
	}
	return readEnv(), nil
}

// FromEnv reads configuration from the environment only.
func FromEnv() (*Config, error) {
	cfg := readEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readEnv() *Config {
	return &Config{
		Ledger: LedgerConfig{
			SpreadsheetID: getEnv("SPREADSHEET_ID", ""),
			Worksheet:     getEnv("LEDGER_WORKSHEET", "Transaktionen"),
			XLSXDir:       getEnv("LEDGER_XLSX_DIR", ""),
		},
		Documents: DocumentConfig{
			Store:           strings.ToLower(getEnv("DOCUMENT_STORE", StoreDrive)),
			TempFolderID:    getEnv("TEMP_FOLDER_ID", ""),
			RegularFolderID: getEnv("REGULAR_FOLDER_ID", ""),
			GCSBucket:       getEnv("GCS_BUCKET", ""),
			LocalRoot:       getEnv("LOCAL_ROOT", ""),
		},
		Google: GoogleConfig{
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS_FILE", ""),
		},
		BigQuery: BigQueryConfig{
			Project: getEnv("BIGQUERY_PROJECT", ""),
			Dataset: getEnv("BIGQUERY_DATASET", "statement_ledger"),
		},
		Worker: WorkerConfig{
			Schedule:    getEnv("WORKER_SCHEDULE", "@every 15m"),
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 4),
			MaxRetries:  getEnvAsInt("WORKER_MAX_RETRIES", 3),
		},
		HTTP: HTTPConfig{
			Addr:  getEnv("HTTP_ADDR", ""),
			Token: getEnv("API_TOKEN", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks that the settings required by the chosen document store are present.
func (c *Config) Validate() error {
	switch c.Documents.Store {
	case StoreDrive:
		if c.Documents.TempFolderID == "" || c.Documents.RegularFolderID == "" {
			return errors.New("TEMP_FOLDER_ID and REGULAR_FOLDER_ID are required for the drive store")
		}
	case StoreGCS:
		if c.Documents.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required for the gcs store")
		}
	case StoreLocal:
		if c.Documents.LocalRoot == "" {
			return errors.New("LOCAL_ROOT is required for the local store")
		}
	default:
		return fmt.Errorf("unknown DOCUMENT_STORE %q", c.Documents.Store)
	}
	if c.Worker.Concurrency < 1 {
		return errors.New("WORKER_CONCURRENCY must be at least 1")
	}
	return nil
}

// InboxFolder returns the folder new statements arrive in.
func (c *Config) InboxFolder() string {
	if c.Documents.TempFolderID != "" {
		return c.Documents.TempFolderID
	}
	return "inbox"
}

// ArchiveFolder returns the folder processed statements are moved to.
func (c *Config) ArchiveFolder() string {
	if c.Documents.RegularFolderID != "" {
		return c.Documents.RegularFolderID
	}
	return "archive"
}

// XLSXPathFor returns the local ledger workbook for year.
func (c *Config) XLSXPathFor(year int) string {
	return filepath.Join(c.Ledger.XLSXDir, fmt.Sprintf("Ledger_%d.xlsx", year))
}

// SpreadsheetFor returns the ledger spreadsheet for year: SPREADSHEET_ID_<YEAR>
// when set, SPREADSHEET_ID otherwise.
func (c *Config) SpreadsheetFor(year int) (string, error) {
	if id := os.Getenv(fmt.Sprintf("SPREADSHEET_ID_%d", year)); id != "" {
		return id, nil
	}
	if c.Ledger.SpreadsheetID == "" {
		return "", fmt.Errorf("SpreadsheetFor: no spreadsheet configured for %d", year)
	}
	return c.Ledger.SpreadsheetID, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
