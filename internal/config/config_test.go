package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DOCUMENT_STORE", "")
	t.Setenv("TEMP_FOLDER_ID", "temp")
	t.Setenv("REGULAR_FOLDER_ID", "regular")
	t.Setenv("SPREADSHEET_ID", "sheet")
	t.Setenv("WORKER_SCHEDULE", "")
	t.Setenv("WORKER_CONCURRENCY", "")
	t.Setenv("LEDGER_WORKSHEET", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreDrive, cfg.Documents.Store)
	assert.Equal(t, "Transaktionen", cfg.Ledger.Worksheet)
	assert.Equal(t, "@every 15m", cfg.Worker.Schedule)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, "temp", cfg.InboxFolder())
	assert.Equal(t, "regular", cfg.ArchiveFolder())
}

func TestFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"drive without folders", map[string]string{"DOCUMENT_STORE": "drive", "TEMP_FOLDER_ID": "", "REGULAR_FOLDER_ID": ""}},
		{"gcs without bucket", map[string]string{"DOCUMENT_STORE": "gcs", "GCS_BUCKET": ""}},
		{"local without root", map[string]string{"DOCUMENT_STORE": "local", "LOCAL_ROOT": ""}},
		{"unknown store", map[string]string{"DOCUMENT_STORE": "ftp"}},
		{"zero concurrency", map[string]string{"DOCUMENT_STORE": "local", "LOCAL_ROOT": "/tmp", "WORKER_CONCURRENCY": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_LocalFolders(t *testing.T) {
	t.Setenv("DOCUMENT_STORE", "LOCAL")
	t.Setenv("LOCAL_ROOT", "/data")
	t.Setenv("TEMP_FOLDER_ID", "")
	t.Setenv("REGULAR_FOLDER_ID", "")
	t.Setenv("WORKER_CONCURRENCY", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreLocal, cfg.Documents.Store)
	assert.Equal(t, "inbox", cfg.InboxFolder())
	assert.Equal(t, "archive", cfg.ArchiveFolder())
}

func TestSpreadsheetFor(t *testing.T) {
	cfg := &Config{Ledger: LedgerConfig{SpreadsheetID: "default"}}

	t.Setenv("SPREADSHEET_ID_2024", "sheet-2024")
	t.Setenv("SPREADSHEET_ID_2025", "")

	id, err := cfg.SpreadsheetFor(2024)
	require.NoError(t, err)
	assert.Equal(t, "sheet-2024", id)

	id, err = cfg.SpreadsheetFor(2025)
	require.NoError(t, err)
	assert.Equal(t, "default", id)

	_, err = (&Config{}).SpreadsheetFor(2025)
	assert.Error(t, err)
}

func TestXLSXPathFor(t *testing.T) {
	cfg := &Config{Ledger: LedgerConfig{XLSXDir: "/data/ledger"}}
	assert.Equal(t, "/data/ledger/Ledger_2025.xlsx", cfg.XLSXPathFor(2025))
}

func TestLoadRaw_SkipsValidation(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCUMENT_STORE", "drive")
	t.Setenv("TEMP_FOLDER_ID", "")
	t.Setenv("REGULAR_FOLDER_ID", "")
	t.Setenv("HTTP_ADDR", ":8081")
	t.Setenv("API_TOKEN", "secret")

	cfg, err := LoadRaw()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
	assert.Equal(t, ":8081", cfg.HTTP.Addr)
	assert.Equal(t, "secret", cfg.HTTP.Token)
}
