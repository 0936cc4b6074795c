package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/site-updater/internal/config"
	"github.com/jonathan/site-updater/internal/pipeline"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Normalize a captured model response and write the resulting files",
	Long: `Reads a raw model response from a file (or stdin with "--response -"),
normalizes it exactly like "update" does and writes the files. No API key is
needed, which makes it useful to replay a response saved from an earlier run.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

var applyResponsePath string

func init() {
	applyCmd.Flags().StringVar(&applyResponsePath, "response", "", "Path to the raw response file, or - for stdin (required)")
	if err := applyCmd.MarkFlagRequired("response"); err != nil {
		panic(fmt.Sprintf("failed to mark response flag as required: %v", err))
	}
	addOutputFlags(applyCmd)
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	raw, err := readResponse(cmd, applyResponsePath)
	if err != nil {
		return err
	}

	opts, err := runOptions(cmd, cfg)
	if err != nil {
		return err
	}

	result, err := pipeline.Replay(context.Background(), raw, opts)
	printSummary(cmd, result)
	return err
}

func readResponse(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", &config.ConfigError{Message: fmt.Sprintf("failed to read response %s", path), Cause: err}
	}
	return string(data), nil
}
