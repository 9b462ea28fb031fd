package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if len(config.Capture.Scopes) == 0 {
		t.Error("expected default scopes to be set")
	}
	if config.Capture.BaseURL != "https://x.com" {
		t.Errorf("expected default base URL https://x.com, got %s", config.Capture.BaseURL)
	}
	if config.Scroll.StepInterval != 2*time.Second {
		t.Errorf("expected default step interval 2s, got %s", config.Scroll.StepInterval)
	}
	if config.Scroll.IdleLimit != 5 {
		t.Errorf("expected default idle limit 5, got %d", config.Scroll.IdleLimit)
	}
	if config.Output.BaseDirectory != "./captures" {
		t.Errorf("expected default output directory ./captures, got %s", config.Output.BaseDirectory)
	}
	if config.Retry.MaxAttempts != 3 {
		t.Errorf("expected default max attempts 3, got %d", config.Retry.MaxAttempts)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("XSCRAPER_SCOPES", "tweets, bookmarks")
	t.Setenv("XSCRAPER_SCROLL_BUDGET", "25")
	t.Setenv("XSCRAPER_BASE_URL", "https://twitter.com")
	t.Setenv("XSCRAPER_ACCOUNT", "alice")
	t.Setenv("XSCRAPER_OUTPUT_DIR", "/tmp/test-captures")
	t.Setenv("XSCRAPER_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if len(config.Capture.Scopes) != 2 || config.Capture.Scopes[0] != "tweets" || config.Capture.Scopes[1] != "bookmarks" {
		t.Errorf("unexpected scopes: %v", config.Capture.Scopes)
	}
	if config.Capture.ScrollBudget != 25 {
		t.Errorf("expected scroll budget 25, got %d", config.Capture.ScrollBudget)
	}
	if config.Capture.BaseURL != "https://twitter.com" {
		t.Errorf("expected base URL override, got %s", config.Capture.BaseURL)
	}
	if config.Capture.Account != "alice" {
		t.Errorf("expected account alice, got %s", config.Capture.Account)
	}
	if config.Output.BaseDirectory != "/tmp/test-captures" {
		t.Errorf("expected output dir override, got %s", config.Output.BaseDirectory)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidBudgetIgnored(t *testing.T) {
	t.Setenv("XSCRAPER_SCROLL_BUDGET", "not-a-number")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if config.Capture.ScrollBudget != 0 {
		t.Errorf("invalid budget should keep default, got %d", config.Capture.ScrollBudget)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
capture:
  scopes:
    - likes
  scroll_budget: 10
  base_url: "https://x.com"
  account: "bob"
scroll:
  step_interval: 500ms
  idle_limit: 3
output:
  base_directory: "/tmp/out"
  timestamp_format: "20060102"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if len(config.Capture.Scopes) != 1 || config.Capture.Scopes[0] != "likes" {
		t.Errorf("unexpected scopes: %v", config.Capture.Scopes)
	}
	if config.Capture.ScrollBudget != 10 {
		t.Errorf("expected scroll budget 10, got %d", config.Capture.ScrollBudget)
	}
	if config.Scroll.StepInterval != 500*time.Millisecond {
		t.Errorf("expected step interval 500ms, got %s", config.Scroll.StepInterval)
	}
	if config.Capture.Account != "bob" {
		t.Errorf("expected account bob, got %s", config.Capture.Account)
	}
}

func TestLoadFromFileMissingIsError(t *testing.T) {
	config := DefaultConfig()
	if err := config.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for explicitly named missing file")
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"scopes":        []string{"replies"},
		"scroll-budget": 50,
		"account":       "carol",
		"output":        "/tmp/flagged",
		"log-level":     "warn",
	})

	if len(config.Capture.Scopes) != 1 || config.Capture.Scopes[0] != "replies" {
		t.Errorf("unexpected scopes: %v", config.Capture.Scopes)
	}
	if config.Capture.ScrollBudget != 50 {
		t.Errorf("expected budget 50, got %d", config.Capture.ScrollBudget)
	}
	if config.Capture.Account != "carol" {
		t.Errorf("expected account carol, got %s", config.Capture.Account)
	}
	if config.Output.BaseDirectory != "/tmp/flagged" {
		t.Errorf("expected output /tmp/flagged, got %s", config.Output.BaseDirectory)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", config.Logging.Level)
	}
}

func TestFlagsBeatEnvironment(t *testing.T) {
	t.Setenv("XSCRAPER_ACCOUNT", "env-account")

	config, err := Load("", map[string]interface{}{"account": "flag-account"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Capture.Account != "flag-account" {
		t.Errorf("expected flag to win over env, got %s", config.Capture.Account)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"unknown scope", func(c *Config) { c.Capture.Scopes = []string{"media"} }, true},
		{"negative budget", func(c *Config) { c.Capture.ScrollBudget = -1 }, true},
		{"missing base url", func(c *Config) { c.Capture.BaseURL = "" }, true},
		{"zero step interval", func(c *Config) { c.Scroll.StepInterval = 0 }, true},
		{"zero idle limit", func(c *Config) { c.Scroll.IdleLimit = 0 }, true},
		{"missing output dir", func(c *Config) { c.Output.BaseDirectory = "" }, true},
		{"missing timestamp format", func(c *Config) { c.Output.TimestampFormat = "" }, true},
		{"zero retry attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"scope case insensitive", func(c *Config) { c.Capture.Scopes = []string{"Tweets"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	config := DefaultConfig()
	config.Capture.Account = "dave"
	if err := config.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Capture.Account != "dave" {
		t.Errorf("expected account dave after reload, got %s", reloaded.Capture.Account)
	}
}
