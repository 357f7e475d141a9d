// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Server     ServerConfig
	Store      StoreConfig
	Classifier ClassifierConfig
	Retention  RetentionConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	// DataPath is the base directory for the Badger database and search index.
	DataPath string
}

// ClassifierConfig holds LLM classifier configuration.
type ClassifierConfig struct {
	// APIKey for the OpenAI-compatible endpoint. Empty disables classification.
	APIKey string
	// Model used for batch classification (default: gpt-4o-mini)
	Model string
	// BatchSize is the number of bookmarks per classification call (default: 20)
	BatchSize int
	// RequestsPerMinute caps outgoing classifier calls (default: 30)
	RequestsPerMinute int
	// Timeout per classification call (default: 60s)
	Timeout time.Duration
}

// RetentionConfig holds bounded-count retention policies.
type RetentionConfig struct {
	// Snapshots kept after pruning (default: 10)
	Snapshots int
	// Operations kept in the operation log (default: 100)
	Operations int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")
	serverName := flag.String("server-name", "", "Name for the server")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	classifierModel := flag.String("classifier-model", "", "Model for bookmark classification (default: gpt-4o-mini)")
	classifierBatchSize := flag.String("classifier-batch-size", "", "Bookmarks per classification call (default: 20)")
	classifierRPM := flag.String("classifier-rpm", "", "Classifier requests per minute (default: 30)")
	classifierTimeout := flag.String("classifier-timeout", "", "Timeout per classification call (default: 60s)")

	snapshotRetain := flag.String("snapshot-retain", "", "Snapshots kept after pruning (default: 10)")
	operationRetain := flag.String("operation-retain", "", "Operation log entries kept (default: 100)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "Markwise Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Store: StoreConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Classifier: ClassifierConfig{
			APIKey:            getConfigValue("", "OPENAI_API_KEY", ""),
			Model:             getConfigValue(*classifierModel, "CLASSIFIER_MODEL", "gpt-4o-mini"),
			BatchSize:         getIntConfigValue(*classifierBatchSize, "CLASSIFIER_BATCH_SIZE", 20),
			RequestsPerMinute: getIntConfigValue(*classifierRPM, "CLASSIFIER_RPM", 30),
		},
		Retention: RetentionConfig{
			Snapshots:  getIntConfigValue(*snapshotRetain, "SNAPSHOT_RETAIN", 10),
			Operations: getIntConfigValue(*operationRetain, "OPERATION_RETAIN", 100),
		},
	}

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	// Parse classifier timeout.
	classifierTimeoutStr := getConfigValue(*classifierTimeout, "CLASSIFIER_TIMEOUT", "60s")
	classifierTimeoutDuration, err := time.ParseDuration(classifierTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid classifier timeout %q: %w", classifierTimeoutStr, err)
	}
	cfg.Classifier.Timeout = classifierTimeoutDuration

	// Expand and validate data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Store.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Classifier.BatchSize < 1 {
		return fmt.Errorf("classifier batch size must be positive, got %d", c.Classifier.BatchSize)
	}
	if c.Classifier.RequestsPerMinute < 1 {
		return fmt.Errorf("classifier requests per minute must be positive, got %d", c.Classifier.RequestsPerMinute)
	}

	if c.Retention.Snapshots < 1 {
		return fmt.Errorf("snapshot retention must be positive, got %d", c.Retention.Snapshots)
	}
	if c.Retention.Operations < 1 {
		return fmt.Errorf("operation retention must be positive, got %d", c.Retention.Operations)
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/Markwise/data if not specified.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Markwise", "data")

	expanded, err := expandPath(c.Store.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Store.DataPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
