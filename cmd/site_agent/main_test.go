package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/site-updater/internal/config"
	"github.com/jonathan/site-updater/internal/writer"
)

// resetFlags clears flag state left behind by a previous Execute.
func resetFlags() {
	configPath, verbose = "", false
	flagAPIKey, flagModel, flagMode, flagReference = "", "", "", ""
	flagDefaultFile, flagOutDir, flagPolicy = "", "", ""
	flagTimeout, flagDryRun = 0, false
	flagTemperature = 0
	applyResponsePath = ""

	cmds := append([]*cobra.Command{rootCmd}, rootCmd.Commands()...)
	for _, c := range cmds {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		c.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApply_FromFile(t *testing.T) {
	dir := t.TempDir()
	response := filepath.Join(dir, "response.txt")
	require.NoError(t, os.WriteFile(response, []byte("```json\n"+
		`[{"filename":"a.html","html":"<p>A</p>"}, {"filename":"b.html","html":"<p>B</p>"}]`+
		"\n```"), 0644))
	site := filepath.Join(dir, "site")

	out, err := execute(t, "", "apply", "--response", response, "--out-dir", site)
	require.NoError(t, err)

	assert.Contains(t, out, "Updated 2 of 2 file(s)")
	assert.Equal(t, "<p>A</p>", readFile(t, filepath.Join(site, "a.html")))
	assert.Equal(t, "<p>B</p>", readFile(t, filepath.Join(site, "b.html")))
}

func TestApply_FromStdinPlainHTML(t *testing.T) {
	site := t.TempDir()

	out, err := execute(t, "<html><body>hello</body></html>\n",
		"apply", "--response", "-", "--out-dir", site, "--default-file", "home.html")
	require.NoError(t, err)

	assert.Contains(t, out, "Updated 1 of 1 file(s)")
	assert.Equal(t, "<html><body>hello</body></html>", readFile(t, filepath.Join(site, "home.html")))
}

func TestApply_DryRun(t *testing.T) {
	site := t.TempDir()

	out, err := execute(t, `{"filename":"a.html","html":"x"}`,
		"apply", "--response", "-", "--out-dir", site, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "Would update 1 of 1 file(s)")
	_, err = os.Stat(filepath.Join(site, "a.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestApply_PolicyFailure(t *testing.T) {
	site := t.TempDir()

	out, err := execute(t, `[{"filename":"../x.html","html":"x"},{"filename":"ok.html","html":"ok"}]`,
		"apply", "--response", "-", "--out-dir", site)

	var failure *writer.WriteFailureError
	require.True(t, errors.As(err, &failure), "got %v", err)
	assert.Contains(t, out, "failed: ../x.html")
	assert.Equal(t, "ok", readFile(t, filepath.Join(site, "ok.html")))

	_, err = execute(t, `[{"filename":"../x.html","html":"x"},{"filename":"ok.html","html":"ok"}]`,
		"apply", "--response", "-", "--out-dir", site, "--policy", "any")
	assert.NoError(t, err)
}

func TestApply_EmptyResponseFails(t *testing.T) {
	_, err := execute(t, "   ", "apply", "--response", "-", "--out-dir", t.TempDir())
	assert.ErrorContains(t, err, "normalization failed")
}

func TestApply_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	site := filepath.Join(dir, "public")
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"out_dir": "`+filepath.ToSlash(site)+`", "default_file": "main.html"}`), 0644))

	_, err := execute(t, "<p>from config</p>", "apply", "--config", cfgPath, "--response", "-")
	require.NoError(t, err)
	assert.Equal(t, "<p>from config</p>", readFile(t, filepath.Join(site, "main.html")))
}

func TestApply_InvalidMode(t *testing.T) {
	_, err := execute(t, "<p>x</p>", "apply", "--response", "-", "--mode", "xml")
	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr), "got %v", err)
}

func TestUpdate_RequiresAPIKey(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")

	_, err := execute(t, "", "update", "add an about page", "--out-dir", t.TempDir())
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestUpdate_RequiresInstruction(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "test-key")

	for _, args := range [][]string{{"update"}, {"update", "  "}, {"update", "a", "b"}} {
		_, err := execute(t, "", args...)
		var cfgErr *config.ConfigError
		assert.True(t, errors.As(err, &cfgErr), "args %v: got %v", args, err)
	}
}

func TestPrompt(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(ref, []byte("<h1>Welcome</h1>"), 0644))

	out, err := execute(t, "", "prompt", "make the heading blue", "--reference", ref, "--mode", "plain-html")
	require.NoError(t, err)

	assert.Contains(t, out, "You manage a website")
	assert.Contains(t, out, "<h1>Welcome</h1>")
	assert.Contains(t, out, "make the heading blue")
	assert.Contains(t, out, "Return only the complete, updated HTML")
}

func TestPrompt_ReferenceDefaultsToOutDir(t *testing.T) {
	site := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(site, "index.html"), []byte("<h1>Site home</h1>"), 0644))

	out, err := execute(t, "", "prompt", "add a footer", "--out-dir", site)
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>Site home</h1>")
	assert.Contains(t, out, "### Current main page (index.html)")
	assert.NotContains(t, out, "(no main page exists yet)")
}

func TestUpdate_RejectsTemperatureOutOfRange(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "test-key")

	_, err := execute(t, "", "update", "add a page", "--temperature", "3", "--out-dir", t.TempDir())
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Contains(t, err.Error(), "'temperature'")
}
