// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey = "GEMINI_API_KEY"
	EnvModel  = "SITE_AGENT_MODEL"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional in the file; missing values use defaults, the
// environment, or CLI flags.
type Config struct {
	// Gemini API key
	APIKey string `json:"api_key,omitempty"`

	// Gemini model id and sampling temperature
	Model       string  `json:"model,omitempty"`
	Temperature *float32 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`

	// Requested response shape
	Mode string `json:"mode,omitempty" validate:"omitempty,oneof=plain-html single-json json-list"`

	// Main page sent to the model as reference; defaults to index.html under OutDir
	Reference string `json:"reference,omitempty"`

	// Target for replies that are plain HTML
	DefaultFile string `json:"default_file,omitempty"`

	// Directory updates are written under
	OutDir string `json:"out_dir,omitempty"`

	// Write success policy: "all" or "any"
	Policy string `json:"policy,omitempty" validate:"omitempty,oneof=all any"`

	// Model call timeout, e.g. "90s"; empty means none
	Timeout string `json:"timeout,omitempty" validate:"omitempty,duration"`

	Verbose bool `json:"verbose,omitempty"`
}

// Defaults returns the values used when neither file, env nor flags set them.
func Defaults() Config {
	return Config{
		Mode:        "json-list",
		Reference:   "index.html",
		DefaultFile: "index.html",
		OutDir:      ".",
		Policy:      "all",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, &ConfigError{Message: "config path is empty"}
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("failed to read config file %s", path), Cause: err}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Message: "failed to parse config JSON", Cause: err}
	}

	return &cfg, nil
}

// newValidator returns a validator that reports JSON field names and knows
// the "duration" tag.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})
	return validate
}

// Validate checks that the configuration has valid values.
// Required fields are checked separately by RequireAPIKey, since not every
// command needs them.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("'%s' failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return &ConfigError{Message: strings.Join(msgs, "; ")}
		}
		return &ConfigError{Message: "invalid configuration", Cause: err}
	}

	if c.Timeout != "" {
		if d, _ := time.ParseDuration(c.Timeout); d < 0 {
			return &ConfigError{Message: "'timeout' must be non-negative"}
		}
	}
	return nil
}

// TimeoutDuration returns the configured model call timeout; zero means none.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// RequireAPIKey fails when no API key has been configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigError{Message: fmt.Sprintf("API key is required (set %s environment variable or use --api-key flag)", EnvAPIKey)}
	}
	return nil
}

// ApplyEnv fills empty fields from the environment. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if c.APIKey == "" {
		if v, ok := lookup(EnvAPIKey); ok {
			c.APIKey = strings.TrimSpace(v)
		}
	}
	if c.Model == "" {
		if v, ok := lookup(EnvModel); ok {
			c.Model = strings.TrimSpace(v)
		}
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Temperature == nil {
		result.Temperature = defaults.Temperature
	}
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}
	if result.DefaultFile == "" {
		result.DefaultFile = defaults.DefaultFile
	}
	if result.OutDir == "" {
		result.OutDir = defaults.OutDir
	}
	// The default reference is the main page of the site being written
	if result.Reference == "" && defaults.Reference != "" {
		result.Reference = filepath.Join(result.OutDir, defaults.Reference)
	}
	if result.Policy == "" {
		result.Policy = defaults.Policy
	}
	if result.Timeout == "" {
		result.Timeout = defaults.Timeout
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
