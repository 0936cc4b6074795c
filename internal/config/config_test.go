package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"model": "gemini-pro",
		"mode": "single-json",
		"reference": "site/index.html",
		"out_dir": "site",
		"policy": "any",
		"timeout": "90s"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-pro", cfg.Model)
	assert.Equal(t, "single-json", cfg.Mode)
	assert.Equal(t, "site/index.html", cfg.Reference)
	assert.Equal(t, "site", cfg.OutDir)
	assert.Equal(t, "any", cfg.Policy)
	assert.Equal(t, 90*time.Second, cfg.TimeoutDuration())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_ZeroTemperature(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{"temperature": 0}`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Temperature)
	assert.Zero(t, *cfg.Temperature)

	merged := cfg.MergeWithDefaults(Config{Temperature: ptr(float32(0.7))})
	require.NotNil(t, merged.Temperature)
	assert.Zero(t, *merged.Temperature)

	cfg, err = LoadConfig(writeConfig(t, `{}`))
	require.NoError(t, err)
	assert.Nil(t, cfg.Temperature)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeConfig(t, `{not json`))
	assert.ErrorContains(t, err, "failed to parse config JSON")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty is valid", cfg: Config{}},
		{name: "defaults are valid", cfg: Defaults()},
		{name: "bad mode", cfg: Config{Mode: "xml"}, wantErr: "'mode'"},
		{name: "bad policy", cfg: Config{Policy: "most"}, wantErr: "'policy'"},
		{name: "bad timeout", cfg: Config{Timeout: "soon"}, wantErr: "'timeout'"},
		{name: "negative timeout", cfg: Config{Timeout: "-5s"}, wantErr: "non-negative"},
		{name: "temperature out of range", cfg: Config{Temperature: ptr(float32(2.5))}, wantErr: "'temperature'"},
		{name: "zero temperature", cfg: Config{Temperature: ptr(float32(0))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := Config{}
	err := cfg.RequireAPIKey()
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), EnvAPIKey)

	cfg.APIKey = "secret"
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIKey: " from-env \n",
		EnvModel:  "gemini-env",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Config{}
	cfg.ApplyEnv(lookup)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "gemini-env", cfg.Model)

	// File values win over the environment
	cfg = Config{APIKey: "from-file", Model: "gemini-file"}
	cfg.ApplyEnv(lookup)
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "gemini-file", cfg.Model)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Mode: "plain-html", OutDir: "public"}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "plain-html", merged.Mode)
	assert.Equal(t, "public", merged.OutDir)
	assert.Equal(t, filepath.Join("public", "index.html"), merged.Reference)
	assert.Equal(t, "index.html", merged.DefaultFile)
	assert.Equal(t, "all", merged.Policy)
	assert.Equal(t, time.Duration(0), merged.TimeoutDuration())

	// Original is untouched
	assert.Empty(t, cfg.Reference)

	explicit := Config{Reference: "pages/home.html", OutDir: "public"}
	assert.Equal(t, "pages/home.html", explicit.MergeWithDefaults(Defaults()).Reference)

	assert.Equal(t, filepath.Join(".", "index.html"), (&Config{}).MergeWithDefaults(Defaults()).Reference)
}

func ptr[T any](v T) *T {
	return &v
}
