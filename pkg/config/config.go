package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the timeline capture engine
type Config struct {
	// Capture phase settings
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// Scroll driver settings
	Scroll ScrollConfig `yaml:"scroll" json:"scroll"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Flush retry behavior
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CaptureConfig holds capture-run configuration
type CaptureConfig struct {
	// Scopes lists the account views to capture, in order.
	Scopes []string `yaml:"scopes" json:"scopes"`
	// ScrollBudget caps the number of scroll steps per scope. 0 leaves the
	// limit to the scroll driver.
	ScrollBudget int `yaml:"scroll_budget" json:"scroll_budget"`
	// BaseURL is the site origin scope destinations are resolved against.
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Account is the handle captured scopes belong to. Optional; when empty
	// the identity is resolved from the first non-reserved location.
	Account string `yaml:"account" json:"account"`
}

// ScrollConfig holds scroll driver configuration
type ScrollConfig struct {
	StepInterval time.Duration `yaml:"step_interval" json:"step_interval"`
	IdleLimit    int           `yaml:"idle_limit" json:"idle_limit"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory   string `yaml:"base_directory" json:"base_directory"`
	TimestampFormat string `yaml:"timestamp_format" json:"timestamp_format"`
}

// RetryConfig holds flush retry configuration
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts" json:"max_attempts"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" json:"backoff_multiplier"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			Scopes:       []string{"tweets", "likes", "bookmarks"},
			ScrollBudget: 0,
			BaseURL:      "https://x.com",
		},
		Scroll: ScrollConfig{
			StepInterval: 2 * time.Second,
			IdleLimit:    5,
		},
		Output: OutputConfig{
			BaseDirectory:   "./captures",
			TimestampFormat: "20060102_150405",
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			RetryDelay:        2 * time.Second,
			BackoffMultiplier: 2.0,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if scopes := os.Getenv("XSCRAPER_SCOPES"); scopes != "" {
		c.Capture.Scopes = splitScopes(scopes)
	}
	if budget := os.Getenv("XSCRAPER_SCROLL_BUDGET"); budget != "" {
		if val, err := strconv.Atoi(budget); err == nil && val >= 0 {
			c.Capture.ScrollBudget = val
		}
	}
	if baseURL := os.Getenv("XSCRAPER_BASE_URL"); baseURL != "" {
		c.Capture.BaseURL = baseURL
	}
	if account := os.Getenv("XSCRAPER_ACCOUNT"); account != "" {
		c.Capture.Account = account
	}
	if outputDir := os.Getenv("XSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if logLevel := os.Getenv("XSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

func splitScopes(s string) []string {
	var scopes []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			scopes = append(scopes, part)
		}
	}
	return scopes
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".xscraper.yaml",
		".xscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// knownScopes are the account views the orchestrator understands.
var knownScopes = map[string]bool{
	"tweets":    true,
	"replies":   true,
	"likes":     true,
	"bookmarks": true,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	for _, scope := range c.Capture.Scopes {
		if !knownScopes[strings.ToLower(scope)] {
			errs = append(errs, fmt.Errorf("unknown scope %q", scope))
		}
	}
	if c.Capture.ScrollBudget < 0 {
		errs = append(errs, errors.New("scroll budget cannot be negative"))
	}
	if c.Capture.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}

	if c.Scroll.StepInterval <= 0 {
		errs = append(errs, errors.New("scroll step interval must be positive"))
	}
	if c.Scroll.IdleLimit <= 0 {
		errs = append(errs, errors.New("scroll idle limit must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.TimestampFormat == "" {
		errs = append(errs, errors.New("timestamp format is required"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if scopes, ok := flags["scopes"].([]string); ok && len(scopes) > 0 {
		c.Capture.Scopes = scopes
	}
	if budget, ok := flags["scroll-budget"].(int); ok && budget > 0 {
		c.Capture.ScrollBudget = budget
	}
	if account, ok := flags["account"].(string); ok && account != "" {
		c.Capture.Account = account
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
