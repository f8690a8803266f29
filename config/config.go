// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Environment is the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// ParseEnvironment accepts the short names and their long forms
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", s)
}

func (e Environment) String() string {
	return string(e)
}

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	CatalogPath        string
	CatalogReloadAt    string // daily reload times, "03:00" or "06:00;18:00"
	FuzzyThreshold     float64
	SearchLimit        int
	MaxDrugsPerRequest int

	SourceLanguage  language.Tag // language of user input and explanations
	WorkingLanguage language.Tag // language of the catalog

	TranslatorURL    string
	TranslatorAPIKey string

	ClassifierURL     string
	ClassifierAPIKey  string
	ClassifierModel   string
	ClassifierTimeout time.Duration
	ClassifierRate    float64 // calls per second, 0 disables throttling
}

// LoadEnvFiles reads .env from the working directory, falling back to the
// executable's directory. Missing files are not an error for the caller to act on.
func LoadEnvFiles() error {
	if err := godotenv.Load(); err == nil {
		return nil
	}

	ex, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	return godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}

	sourceLanguage, err := language.Parse(getEnvWithDefault("SOURCE_LANGUAGE", "th"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid SOURCE_LANGUAGE: %w", err)
	}

	workingLanguage, err := language.Parse(getEnvWithDefault("WORKING_LANGUAGE", "en"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid WORKING_LANGUAGE: %w", err)
	}

	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               env,
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default

		CatalogPath:        getEnvWithDefault("CATALOG_PATH", "db/full database.xml"),
		CatalogReloadAt:    getEnvWithDefault("CATALOG_RELOAD_AT", "03:00"),
		FuzzyThreshold:     getFloatEnvWithDefault("FUZZY_THRESHOLD", 80),
		SearchLimit:        getIntEnvWithDefault("SEARCH_LIMIT", 10),
		MaxDrugsPerRequest: getIntEnvWithDefault("MAX_DRUGS_PER_REQUEST", 25),

		SourceLanguage:  sourceLanguage,
		WorkingLanguage: workingLanguage,

		TranslatorURL:    os.Getenv("TRANSLATOR_URL"),
		TranslatorAPIKey: os.Getenv("TRANSLATOR_API_KEY"),

		ClassifierURL:     getEnvWithDefault("CLASSIFIER_URL", "https://api.groq.com/openai/v1/chat/completions"),
		ClassifierAPIKey:  os.Getenv("CLASSIFIER_API_KEY"),
		ClassifierModel:   getEnvWithDefault("CLASSIFIER_MODEL", "llama-3.1-8b-instant"),
		ClassifierTimeout: getDurationEnvWithDefault("CLASSIFIER_TIMEOUT", 20*time.Second),
		ClassifierRate:    getFloatEnvWithDefault("CLASSIFIER_RATE", 5),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return fmt.Errorf("invalid CATALOG_PATH: cannot be empty")
	}

	if err := validateReloadAt(cfg.CatalogReloadAt); err != nil {
		return fmt.Errorf("invalid CATALOG_RELOAD_AT: %w", err)
	}

	if cfg.FuzzyThreshold < 0 || cfg.FuzzyThreshold > 100 {
		return fmt.Errorf("invalid FUZZY_THRESHOLD: must be between 0 and 100, got: %v", cfg.FuzzyThreshold)
	}

	if cfg.SearchLimit < 1 || cfg.SearchLimit > 100 {
		return fmt.Errorf("invalid SEARCH_LIMIT: must be between 1 and 100, got: %d", cfg.SearchLimit)
	}

	if cfg.MaxDrugsPerRequest < 2 || cfg.MaxDrugsPerRequest > 100 {
		return fmt.Errorf("invalid MAX_DRUGS_PER_REQUEST: must be between 2 and 100, got: %d", cfg.MaxDrugsPerRequest)
	}

	if err := validateServiceURL(cfg.TranslatorURL); err != nil {
		return fmt.Errorf("invalid TRANSLATOR_URL: %w", err)
	}

	if err := validateServiceURL(cfg.ClassifierURL); err != nil {
		return fmt.Errorf("invalid CLASSIFIER_URL: %w", err)
	}

	if cfg.ClassifierTimeout <= 0 || cfg.ClassifierTimeout > 5*time.Minute {
		return fmt.Errorf("invalid CLASSIFIER_TIMEOUT: must be between 0 and 5m, got: %s", cfg.ClassifierTimeout)
	}

	if cfg.ClassifierRate < 0 {
		return fmt.Errorf("invalid CLASSIFIER_RATE: must not be negative, got: %v", cfg.ClassifierRate)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	// Unspecified is allowed for containers behind a proxy
	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE must be positive, got: %d", size)
	}

	// Minimum 1MB, maximum 1GB
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// validateReloadAt checks every ';' separated entry is a HH:MM time
func validateReloadAt(reloadAt string) error {
	if strings.TrimSpace(reloadAt) == "" {
		return fmt.Errorf("cannot be empty")
	}

	for _, entry := range strings.Split(reloadAt, ";") {
		if _, err := time.Parse("15:04", strings.TrimSpace(entry)); err != nil {
			return fmt.Errorf("%q is not a HH:MM time", entry)
		}
	}
	return nil
}

// validateServiceURL accepts an empty URL (service disabled) or an absolute http(s) URL
func validateServiceURL(raw string) error {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %s", raw)
	}
	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getDurationEnvWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"CATALOG_PATH",
		"CATALOG_RELOAD_AT",
		"FUZZY_THRESHOLD",
		"SEARCH_LIMIT",
		"MAX_DRUGS_PER_REQUEST",
		"SOURCE_LANGUAGE",
		"WORKING_LANGUAGE",
		"TRANSLATOR_URL",
		"TRANSLATOR_API_KEY",
		"CLASSIFIER_URL",
		"CLASSIFIER_API_KEY",
		"CLASSIFIER_MODEL",
		"CLASSIFIER_TIMEOUT",
		"CLASSIFIER_RATE",
	}
}
