package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/site-updater/internal/config"
	"github.com/jonathan/site-updater/internal/llm"
	"github.com/jonathan/site-updater/internal/pipeline"
	"github.com/jonathan/site-updater/internal/updates"
	"github.com/jonathan/site-updater/internal/writer"
)

// Flags shared by the update, apply and prompt commands
var (
	flagAPIKey      string
	flagModel       string
	flagMode        string
	flagReference   string
	flagDefaultFile string
	flagOutDir      string
	flagPolicy      string
	flagTimeout     time.Duration
	flagTemperature float32
	flagDryRun      bool
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagMode, "mode", "m", "", "Requested response shape: plain-html, single-json or json-list (default json-list)")
	cmd.Flags().StringVarP(&flagDefaultFile, "default-file", "f", "", "File that receives a plain HTML reply (default index.html)")
	cmd.Flags().StringVarP(&flagOutDir, "out-dir", "o", "", "Directory updates are written under (default .)")
	cmd.Flags().StringVar(&flagPolicy, "policy", "", "Write success policy: all or any (default all)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Normalize and check paths without writing files")
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagReference, "reference", "r", "", "Main page sent to the model as reference (default index.html under --out-dir)")
	cmd.Flags().StringVar(&flagAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Gemini model id (optional, defaults to SITE_AGENT_MODEL env var or gemini-2.5-flash)")
	cmd.Flags().Float32Var(&flagTemperature, "temperature", llm.DefaultTemperature, "Sampling temperature, 0 to 2")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Timeout for the model call, e.g. 90s (default none)")
}

// resolveConfig merges the config file, the environment and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	// Step 2: Apply CLI overrides (only flags that were explicitly set)
	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = flagAPIKey
	}
	if flags.Changed("model") {
		cfg.Model = flagModel
	}
	if flags.Changed("mode") {
		cfg.Mode = flagMode
	}
	if flags.Changed("reference") {
		cfg.Reference = flagReference
	}
	if flags.Changed("default-file") {
		cfg.DefaultFile = flagDefaultFile
	}
	if flags.Changed("out-dir") {
		cfg.OutDir = flagOutDir
	}
	if flags.Changed("policy") {
		cfg.Policy = flagPolicy
	}
	if flags.Changed("temperature") {
		temperature := flagTemperature
		cfg.Temperature = &temperature
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout.String()
	}
	if verbose {
		cfg.Verbose = true
	}

	// Step 3: Environment, then defaults, for anything still empty
	cfg.ApplyEnv(os.LookupEnv)
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// runOptions converts a validated config into pipeline options.
func runOptions(cmd *cobra.Command, cfg config.Config) (pipeline.RunOptions, error) {
	mode, err := updates.ParseMode(cfg.Mode)
	if err != nil {
		return pipeline.RunOptions{}, &config.ConfigError{Message: "invalid mode", Cause: err}
	}
	policy, err := writer.ParsePolicy(cfg.Policy)
	if err != nil {
		return pipeline.RunOptions{}, &config.ConfigError{Message: "invalid policy", Cause: err}
	}

	return pipeline.RunOptions{
		ReferencePath:   cfg.Reference,
		DefaultFilename: cfg.DefaultFile,
		OutDir:          cfg.OutDir,
		Mode:            mode,
		Policy:          policy,
		Timeout:         cfg.TimeoutDuration(),
		DryRun:          flagDryRun,
		Verbose:         cfg.Verbose,
		Logger:          logger,
		Out:             cmd.OutOrStdout(),
	}, nil
}

// printSummary reports the written files on stdout.
func printSummary(cmd *cobra.Command, result *pipeline.Result) {
	if result == nil {
		return
	}
	out := cmd.OutOrStdout()
	verb := "Updated"
	if flagDryRun {
		verb = "Would update"
	}
	written := 0
	for _, r := range result.Results {
		if r.Success {
			written++
		}
	}
	_, _ = fmt.Fprintf(out, "%s %d of %d file(s)\n", verb, written, len(result.Results))
	for _, r := range result.Results {
		if r.Success {
			_, _ = fmt.Fprintf(out, "  %s\n", r.Path)
		} else {
			_, _ = fmt.Fprintf(out, "  failed: %s (%s)\n", r.Filename, r.Error)
		}
	}
}
