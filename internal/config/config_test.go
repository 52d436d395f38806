package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.ActiveQuestionnaireID = "2Abc"
	cfg.DatabasePath = filepath.Join(tmpDir, "forms.db")

	if err := SaveConfig(tmpDir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.ActiveQuestionnaireID != "2Abc" {
		t.Errorf("expected active questionnaire '2Abc', got %q", loaded.ActiveQuestionnaireID)
	}
	if loaded.DatabasePath != cfg.DatabasePath {
		t.Errorf("expected database path %q, got %q", cfg.DatabasePath, loaded.DatabasePath)
	}
	if loaded.DriftTolerance != 1 {
		t.Errorf("expected drift tolerance 1, got %d", loaded.DriftTolerance)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	tmpDir := t.TempDir()
	cfgDir := filepath.Join(tmpDir, ".formcraft")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte(`{"version": "1", "poll_interval": "soon"}`)
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(tmpDir); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestSyncSettings(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    time.Duration
		wantErr bool
	}{
		{name: "empty keeps default", cfg: Config{}, want: 2 * time.Second},
		{name: "custom poll", cfg: Config{PollInterval: "750ms"}, want: 750 * time.Millisecond},
		{name: "negative", cfg: Config{PollInterval: "-1s"}, wantErr: true},
		{name: "garbage", cfg: Config{RetryDelay: "fast"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.SyncSettings()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.PollInterval != tt.want {
				t.Errorf("expected poll interval %v, got %v", tt.want, got.PollInterval)
			}
		})
	}
}
