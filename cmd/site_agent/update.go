package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/site-updater/internal/config"
	"github.com/jonathan/site-updater/internal/generation"
	"github.com/jonathan/site-updater/internal/llm"
	"github.com/jonathan/site-updater/internal/pipeline"
)

var updateCmd = &cobra.Command{
	Use:   "update <instruction>",
	Short: "Ask the model to update the site and write the resulting files",
	Long: `Sends the instruction and the current main page to Gemini, normalizes the
reply into file updates and writes them under the output directory.

The reply may be plain HTML (written to --default-file), one JSON object with
"filename" and "html", or a JSON array of such objects, optionally wrapped in a
markdown code fence. --mode only selects which shape the prompt asks for.

Exits with status 1 on a missing API key or instruction, a failed model call,
an unusable reply, or when the write policy is not met.`,
	Args: requireInstruction,
	RunE: runUpdate,
}

func init() {
	addModelFlags(updateCmd)
	addOutputFlags(updateCmd)
	rootCmd.AddCommand(updateCmd)
}

// requireInstruction accepts exactly one non-blank positional argument.
func requireInstruction(_ *cobra.Command, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return &config.ConfigError{Message: "exactly one non-empty instruction argument is required"}
	}
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	opts, err := runOptions(cmd, cfg)
	if err != nil {
		return err
	}
	opts.Instruction = args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llmConfig := llm.DefaultConfig().WithModel(cfg.Model)
	if cfg.Temperature != nil {
		llmConfig.Temperature = *cfg.Temperature
	}
	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return &generation.GenerationError{Message: "failed to create LLM client", Model: llmConfig.Model, Cause: err}
	}
	defer func() { _ = client.Close() }()
	opts.Client = client

	logger.Debug("starting update",
		zap.String("model", client.Model()),
		zap.String("mode", string(opts.Mode)),
		zap.String("reference", opts.ReferencePath),
		zap.String("out_dir", opts.OutDir))

	result, err := pipeline.Run(ctx, opts)
	printSummary(cmd, result)
	return err
}
