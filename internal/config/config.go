// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// the prepped client.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env file loading, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.prepped/config.toml
//   - ~/.prepped/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/prepped-health/prepped-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete prepped client configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Backend (intake service) configuration
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Identity (hosted auth service) configuration
	Identity IdentityConfig `toml:"identity" json:"identity"`

	// Voice call polling configuration
	Call CallConfig `toml:"call" json:"call"`

	// Local storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// BackendConfig contains intake backend connection settings.
type BackendConfig struct {
	// BaseURL is the base URL of the intake backend REST API.
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// IdentityConfig contains hosted identity service settings.
type IdentityConfig struct {
	// Endpoint is the identity service REST endpoint.
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// ProjectID is the identity project identifier.
	ProjectID string `toml:"project_id" json:"project_id"`
	// OAuthCallbackPort is the loopback port used to capture OAuth redirects.
	OAuthCallbackPort int `toml:"oauth_callback_port" json:"oauth_callback_port"`
}

// CallConfig contains voice-call status polling settings.
type CallConfig struct {
	// PollIntervalMs is the base interval between status polls.
	PollIntervalMs int `toml:"poll_interval_ms" json:"poll_interval_ms"`
	// MaxPollAttempts bounds the polling loop. A call that never reaches a
	// terminal status stops with a timeout error after this many polls.
	MaxPollAttempts int `toml:"max_poll_attempts" json:"max_poll_attempts"`
	// BackoffFactor grows the interval while the call stays in "ringing".
	BackoffFactor float64 `toml:"backoff_factor" json:"backoff_factor"`
	// CompletedCloseDelayMs is how long the completed state stays on screen
	// before the modal closes and navigates to the briefing.
	CompletedCloseDelayMs int `toml:"completed_close_delay_ms" json:"completed_close_delay_ms"`
}

// StorageConfig contains local cache storage settings.
type StorageConfig struct {
	// Dir is the directory for the local cache database and key file.
	// Empty means ~/.prepped.
	Dir string `toml:"dir" json:"dir"`
	// EncryptCache enables at-rest encryption of cached profile snapshots.
	EncryptCache bool `toml:"encrypt_cache" json:"encrypt_cache"`
}

// UIConfig contains UI preferences.
type UIConfig struct {
	// Theme is "dark", "light" or "auto".
	Theme string `toml:"theme" json:"theme"`
	// Markdown enables glamour rendering of assistant messages.
	Markdown bool `toml:"markdown" json:"markdown"`
	// SidebarWidth is the session sidebar width in columns.
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			BaseURL:     "https://prepped-backend.vercel.app",
			TimeoutSecs: 60,
		},

		Identity: IdentityConfig{
			Endpoint:          "https://cloud.appwrite.io/v1",
			ProjectID:         "",
			OAuthCallbackPort: 53682,
		},

		Call: CallConfig{
			PollIntervalMs:        2000,
			MaxPollAttempts:       90,
			BackoffFactor:         1.5,
			CompletedCloseDelayMs: 2000,
		},

		Storage: StorageConfig{
			Dir:          "",
			EncryptCache: true,
		},

		UI: UIConfig{
			Theme:        "dark",
			Markdown:     true,
			SidebarWidth: 32,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the prepped configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".prepped"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files hold the identity project id and should be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// A .env file in the working directory or config directory is loaded first,
// then TOML, then JSON, falling back to defaults. Environment overrides are
// applied last.
func Load() (*Config, error) {
	cfg := Default()
	loadDotEnv()

	// Try TOML first
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	// Try JSON as fallback
	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	return finishLoad(cfg)
}

// finishLoad applies env overrides, fills defaults and validates.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads a .env file from the working directory or the config
// directory. Missing files are fine; the .env is a development convenience.
func loadDotEnv() {
	_ = godotenv.Load()
	if dir, err := ConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(dir, ".env"))
	}
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse JSON config: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the TOML config file atomically.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}

	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(buf.String()), 0600)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, err := url.ParseRequestURI(c.Backend.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("invalid URL %q", c.Backend.BaseURL),
		})
	}
	if c.Backend.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: "must be positive",
		})
	}

	if _, err := url.ParseRequestURI(c.Identity.Endpoint); err != nil {
		errs = append(errs, ValidationError{
			Field:   "identity.endpoint",
			Message: fmt.Sprintf("invalid URL %q", c.Identity.Endpoint),
		})
	}
	if p := c.Identity.OAuthCallbackPort; p < 1024 || p > 65535 {
		errs = append(errs, ValidationError{
			Field:   "identity.oauth_callback_port",
			Message: fmt.Sprintf("port %d outside valid range 1024-65535", p),
		})
	}

	if c.Call.PollIntervalMs < 250 {
		errs = append(errs, ValidationError{
			Field:   "call.poll_interval_ms",
			Message: "must be at least 250ms",
		})
	}
	if c.Call.MaxPollAttempts <= 0 {
		errs = append(errs, ValidationError{
			Field:   "call.max_poll_attempts",
			Message: "must be positive",
		})
	}
	if c.Call.BackoffFactor < 1.0 {
		errs = append(errs, ValidationError{
			Field:   "call.backoff_factor",
			Message: "must be >= 1.0",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero-valued fields with defaults. Useful for partial
// config files that only set a couple of keys.
func (c *Config) SetDefaults() {
	def := Default()

	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = def.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = def.Backend.TimeoutSecs
	}
	if c.Identity.Endpoint == "" {
		c.Identity.Endpoint = def.Identity.Endpoint
	}
	if c.Identity.OAuthCallbackPort == 0 {
		c.Identity.OAuthCallbackPort = def.Identity.OAuthCallbackPort
	}
	if c.Call.PollIntervalMs == 0 {
		c.Call.PollIntervalMs = def.Call.PollIntervalMs
	}
	if c.Call.MaxPollAttempts == 0 {
		c.Call.MaxPollAttempts = def.Call.MaxPollAttempts
	}
	if c.Call.BackoffFactor == 0 {
		c.Call.BackoffFactor = def.Call.BackoffFactor
	}
	if c.Call.CompletedCloseDelayMs == 0 {
		c.Call.CompletedCloseDelayMs = def.Call.CompletedCloseDelayMs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.SidebarWidth == 0 {
		c.UI.SidebarWidth = def.UI.SidebarWidth
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - PREPPED_BACKEND_URL: overrides backend.base_url
//   - PREPPED_APPWRITE_ENDPOINT: overrides identity.endpoint
//   - PREPPED_APPWRITE_PROJECT: overrides identity.project_id
//   - PREPPED_THEME: overrides ui.theme
//   - PREPPED_STORAGE_DIR: overrides storage.dir
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PREPPED_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("PREPPED_APPWRITE_ENDPOINT"); v != "" {
		c.Identity.Endpoint = v
	}
	if v := os.Getenv("PREPPED_APPWRITE_PROJECT"); v != "" {
		c.Identity.ProjectID = v
	}
	if v := os.Getenv("PREPPED_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("PREPPED_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
}

// =============================================================================
// STORAGE PATH
// =============================================================================

// StorageDir resolves the local storage directory, creating it if needed.
func (c *Config) StorageDir() (string, error) {
	dir := c.Storage.Dir
	if dir == "" {
		var err error
		dir, err = ConfigDir()
		if err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}
	return dir, nil
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
