package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/site-updater/internal/generation"
	"github.com/jonathan/site-updater/internal/pipeline"
	"github.com/jonathan/site-updater/internal/updates"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <instruction>",
	Short: "Print the prompt that update would send, without calling the model",
	Args:  requireInstruction,
	RunE:  runPrompt,
}

func init() {
	promptCmd.Flags().StringVarP(&flagMode, "mode", "m", "", "Requested response shape: plain-html, single-json or json-list (default json-list)")
	promptCmd.Flags().StringVarP(&flagReference, "reference", "r", "", "Main page sent to the model as reference (default index.html under --out-dir)")
	promptCmd.Flags().StringVarP(&flagOutDir, "out-dir", "o", "", "Site directory the reference is resolved against (default .)")
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := updates.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	reference, err := pipeline.ReadReference(cfg.Reference)
	if err != nil {
		return err
	}

	name := pipeline.ReferenceName(cfg.OutDir, cfg.Reference)
	prompt, err := generation.BuildPrompt(mode, args[0], reference, name)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), prompt)
	return nil
}
