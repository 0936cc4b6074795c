// Package generation turns an instruction and the current main page into a
// prompt and returns the model's raw reply.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/site-updater/internal/llm"
	"github.com/jonathan/site-updater/internal/prompts"
	"github.com/jonathan/site-updater/internal/updates"
)

// Adapter sends update prompts to an LLM client.
type Adapter struct {
	client        llm.Client
	mode          updates.ResponseMode
	referenceName string
}

// NewAdapter returns an Adapter asking for responses in the given mode.
// referenceName is the path of the reference page, shown to the model.
func NewAdapter(client llm.Client, mode updates.ResponseMode, referenceName string) *Adapter {
	return &Adapter{
		client:        client,
		mode:          mode,
		referenceName: referenceName,
	}
}

// Mode returns the response mode the adapter asks for.
func (a *Adapter) Mode() updates.ResponseMode {
	return a.mode
}

// Generate builds the prompt and returns the raw reply text, unmodified.
func (a *Adapter) Generate(ctx context.Context, instruction, reference string) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", &GenerationError{Message: "instruction is empty"}
	}

	prompt, err := BuildPrompt(a.mode, instruction, reference, a.referenceName)
	if err != nil {
		return "", &GenerationError{Message: "failed to build prompt", Cause: err}
	}

	text, err := a.client.GenerateContent(ctx, prompt)
	if err != nil {
		msg := "model call failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "model call timed out"
		}
		return "", &GenerationError{Message: msg, Model: a.client.Model(), Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Message: "model returned no text", Model: a.client.Model()}
	}

	return text, nil
}

// BuildPrompt assembles the update prompt for a response mode.
func BuildPrompt(mode updates.ResponseMode, instruction, reference, referenceName string) (string, error) {
	rules, err := prompts.Get(prompts.SiteFile, "rules-"+string(mode))
	if err != nil {
		return "", fmt.Errorf("no output rules for mode %q: %w", mode, err)
	}

	if reference == "" {
		reference = prompts.MustGet(prompts.SiteFile, "empty-reference")
	}
	if referenceName == "" {
		referenceName = "index.html"
	}

	template := prompts.MustGet(prompts.SiteFile, "update-site")
	return prompts.Format(template, map[string]string{
		"Rules":         rules,
		"ReferenceName": referenceName,
		"Reference":     reference,
		"Instruction":   instruction,
	}), nil
}
