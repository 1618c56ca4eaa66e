package config

import (
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.UploadsDir != "uploads" {
		t.Errorf("Expected default uploads dir 'uploads', got %q", cfg.UploadsDir)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("Expected default listen addr ':8080', got %q", cfg.ListenAddr)
	}
	if cfg.RubricPath != "" {
		t.Errorf("Expected empty rubric path, got %q", cfg.RubricPath)
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.UploadsDir = "cv_uploads"
	cfg.CalibratedDefault = true

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.UploadsDir != "cv_uploads" {
		t.Errorf("Expected uploads dir 'cv_uploads', got %q", loaded.UploadsDir)
	}
	if !loaded.CalibratedDefault {
		t.Error("Expected calibrated_default to roundtrip as true")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GmailCredentialsPath = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}

	cfg.UploadsDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty uploads_dir")
	}

	cfg = DefaultConfig()
	cfg.GmailCredentialsPath = ""
	cfg.RubricPath = "does_not_exist.yaml"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing rubric file")
	}
}
