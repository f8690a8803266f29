package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

// clearEnv unsets every variable Load reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ADDRESS", "127.0.0.1")
	t.Setenv("ENV", "dev")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("CATALOG_PATH", "/data/drugbank.xml")
	t.Setenv("FUZZY_THRESHOLD", "85.5")
	t.Setenv("CLASSIFIER_TIMEOUT", "5s")
	t.Setenv("SOURCE_LANGUAGE", "en")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected env dev, got %s", cfg.Env)
	}
	if cfg.CatalogPath != "/data/drugbank.xml" {
		t.Errorf("Expected catalog path /data/drugbank.xml, got %s", cfg.CatalogPath)
	}
	if cfg.FuzzyThreshold != 85.5 {
		t.Errorf("Expected threshold 85.5, got %v", cfg.FuzzyThreshold)
	}
	if cfg.ClassifierTimeout != 5*time.Second {
		t.Errorf("Expected classifier timeout 5s, got %s", cfg.ClassifierTimeout)
	}
	if cfg.SourceLanguage != language.English {
		t.Errorf("Expected source language en, got %s", cfg.SourceLanguage)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.CatalogPath != "db/full database.xml" {
		t.Errorf("Expected default catalog path, got %s", cfg.CatalogPath)
	}
	if cfg.CatalogReloadAt != "03:00" {
		t.Errorf("Expected default reload time 03:00, got %s", cfg.CatalogReloadAt)
	}
	if cfg.FuzzyThreshold != 80 {
		t.Errorf("Expected default threshold 80, got %v", cfg.FuzzyThreshold)
	}
	if cfg.SearchLimit != 10 {
		t.Errorf("Expected default search limit 10, got %d", cfg.SearchLimit)
	}
	if cfg.MaxDrugsPerRequest != 25 {
		t.Errorf("Expected default drug cap 25, got %d", cfg.MaxDrugsPerRequest)
	}
	if cfg.SourceLanguage != language.Thai || cfg.WorkingLanguage != language.English {
		t.Errorf("Expected th -> en, got %s -> %s", cfg.SourceLanguage, cfg.WorkingLanguage)
	}
	if cfg.TranslatorURL != "" {
		t.Errorf("Expected translation disabled by default, got %s", cfg.TranslatorURL)
	}
	if cfg.ClassifierModel != "llama-3.1-8b-instant" {
		t.Errorf("Expected default model, got %s", cfg.ClassifierModel)
	}
	if cfg.ClassifierTimeout != 20*time.Second {
		t.Errorf("Expected default classifier timeout 20s, got %s", cfg.ClassifierTimeout)
	}
	if cfg.ClassifierRate != 5 {
		t.Errorf("Expected default classifier rate 5, got %v", cfg.ClassifierRate)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	testCases := []struct {
		key      string
		value    string
		expected string
	}{
		{"PORT", "abc", "PORT must be a valid number"},
		{"PORT", "0", "PORT must be between 1 and 65535"},
		{"PORT", "65536", "PORT must be between 1 and 65535"},
		{"PORT", "80", "PORT 80 is privileged"},
		{"ADDRESS", "invalid", "ADDRESS must be a valid IP address"},
		{"ADDRESS", "8.8.8.8", "is a public IP"},
		{"ENV", "invalid", "ENV must be one of"},
		{"LOG_LEVEL", "invalid", "LOG_LEVEL must be one of"},
		{"CATALOG_RELOAD_AT", "3am", "invalid CATALOG_RELOAD_AT"},
		{"CATALOG_RELOAD_AT", "06:00;25:00", "invalid CATALOG_RELOAD_AT"},
		{"FUZZY_THRESHOLD", "101", "invalid FUZZY_THRESHOLD"},
		{"SEARCH_LIMIT", "0", "invalid SEARCH_LIMIT"},
		{"MAX_DRUGS_PER_REQUEST", "1", "invalid MAX_DRUGS_PER_REQUEST"},
		{"SOURCE_LANGUAGE", "not a language", "invalid SOURCE_LANGUAGE"},
		{"TRANSLATOR_URL", "ftp://translate.local", "invalid TRANSLATOR_URL"},
		{"CLASSIFIER_URL", "http://", "invalid CLASSIFIER_URL"},
		{"CLASSIFIER_TIMEOUT", "10m", "invalid CLASSIFIER_TIMEOUT"},
		{"CLASSIFIER_RATE", "-1", "invalid CLASSIFIER_RATE"},
	}

	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s, got nil", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %q", tc.expected, err.Error())
			}
		})
	}
}

func TestLoadUnparsableNumbersUseDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEARCH_LIMIT", "ten")
	t.Setenv("CLASSIFIER_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.SearchLimit != 10 {
		t.Errorf("Expected default search limit, got %d", cfg.SearchLimit)
	}
	if cfg.ClassifierTimeout != 20*time.Second {
		t.Errorf("Expected default timeout, got %s", cfg.ClassifierTimeout)
	}
}

func TestLoadAllowsUnspecifiedAddress(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDRESS", "0.0.0.0")

	if _, err := Load(); err != nil {
		t.Errorf("Expected 0.0.0.0 to be accepted, got %v", err)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SEARCH_LIMIT=7\n"), 0o644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	t.Chdir(dir)

	if err := LoadEnvFiles(); err != nil {
		t.Fatalf("Expected .env to load, got %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("SEARCH_LIMIT") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.SearchLimit != 7 {
		t.Errorf("Expected search limit from .env, got %d", cfg.SearchLimit)
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
		hasError bool
	}{
		{"dev", EnvDevelopment, false},
		{"development", EnvDevelopment, false},
		{"staging", EnvStaging, false},
		{"prod", EnvProduction, false},
		{"Production", EnvProduction, false},
		{"test", EnvTest, false},
		{"invalid", EnvDevelopment, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := ParseEnvironment(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for %s, got none", tt.input)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for %s: %v", tt.input, err)
				}
				if env != tt.expected {
					t.Errorf("Expected %v, got %v", tt.expected, env)
				}
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	tests := []struct {
		env      Environment
		expected string
	}{
		{EnvDevelopment, "dev"},
		{EnvStaging, "staging"},
		{EnvProduction, "prod"},
		{EnvTest, "test"},
	}

	for _, tt := range tests {
		if got := tt.env.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}
