// Package pipeline provides the high-level orchestration for one site update run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/site-updater/internal/config"
	"github.com/jonathan/site-updater/internal/generation"
	"github.com/jonathan/site-updater/internal/llm"
	"github.com/jonathan/site-updater/internal/observability"
	"github.com/jonathan/site-updater/internal/pipeline/steps"
	"github.com/jonathan/site-updater/internal/updates"
	"github.com/jonathan/site-updater/internal/writer"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Instruction     string
	ReferencePath   string
	DefaultFilename string
	OutDir          string
	Mode            updates.ResponseMode
	Policy          writer.Policy
	Timeout         time.Duration
	DryRun          bool
	Verbose         bool
	Client          llm.Client
	Logger          *zap.Logger
	// Out receives verbose output; defaults to os.Stdout
	Out        io.Writer
	OnProgress ProgressCallback
}

// Result holds what one run produced. It is returned alongside a policy
// error so callers can still report the individual writes.
type Result struct {
	RunID   uuid.UUID
	Raw     string
	Batch   *updates.Batch
	Results []writer.WriteResult
}

// run carries the per-invocation state shared by the steps.
type run struct {
	opts    RunOptions
	id      uuid.UUID
	logger  *zap.Logger
	printer *observability.Printer
	tracker *steps.Tracker
}

func newRun(opts RunOptions, done ...string) *run {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Policy == "" {
		opts.Policy = writer.PolicyAll
	}
	if opts.Mode == "" {
		opts.Mode = updates.ModeJSONList
	}
	id := uuid.New()
	return &run{
		opts:    opts,
		id:      id,
		logger:  opts.Logger.With(zap.String("run_id", id.String())),
		printer: observability.NewPrinter(opts.Out),
		tracker: steps.NewTracker(done...),
	}
}

// emitProgress calls the progress callback if configured
func (r *run) emitProgress(step, message string, content any) {
	if r.opts.OnProgress == nil {
		return
	}
	r.opts.OnProgress(ProgressEvent{
		Step:     step,
		Category: steps.StepRegistry[step].Category,
		Message:  message,
		RunID:    r.id.String(),
		Content:  content,
	})
}

// Run executes a full update: read the reference page, ask the model, normalize
// the reply and write the files.
func Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if strings.TrimSpace(opts.Instruction) == "" {
		return nil, &config.ConfigError{Message: "instruction is required"}
	}
	if opts.Client == nil {
		return nil, &config.ConfigError{Message: "no LLM client configured"}
	}

	r := newRun(opts)
	result := &Result{RunID: r.id}

	// Step 1: Read the reference page
	if err := r.tracker.Begin(steps.ReadReference); err != nil {
		return result, err
	}
	reference, err := ReadReference(opts.ReferencePath)
	if err != nil {
		return result, err
	}
	r.logger.Info("reference loaded",
		zap.String("path", opts.ReferencePath),
		zap.Int("bytes", len(reference)))
	if opts.Verbose {
		r.printer.PrintReference(opts.ReferencePath, reference)
	}
	r.tracker.Done(steps.ReadReference)
	r.emitProgress(steps.ReadReference, "reference page loaded", len(reference))

	// Step 2: Generate
	if err := r.tracker.Begin(steps.Generate); err != nil {
		return result, err
	}
	name := ReferenceName(opts.OutDir, opts.ReferencePath)
	adapter := generation.NewAdapter(opts.Client, r.opts.Mode, name)
	if opts.Verbose {
		prompt, err := generation.BuildPrompt(r.opts.Mode, opts.Instruction, reference, name)
		if err == nil {
			r.printer.PrintPrompt(opts.Client.Model(), prompt)
		}
	}

	genCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := adapter.Generate(genCtx, opts.Instruction, reference)
	if err != nil {
		r.logger.Error("generation failed", zap.Error(err))
		return result, err
	}
	r.logger.Info("response received",
		zap.String("model", opts.Client.Model()),
		zap.String("mode", string(adapter.Mode())),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)))
	result.Raw = raw
	r.tracker.Done(steps.Generate)
	r.emitProgress(steps.Generate, "model response received", len(raw))

	return r.finish(result)
}

// Replay normalizes and applies an already captured model response.
// Instruction and Client are ignored.
func Replay(_ context.Context, raw string, opts RunOptions) (*Result, error) {
	r := newRun(opts, steps.ReadReference, steps.Generate)
	result := &Result{RunID: r.id, Raw: raw}
	r.logger.Info("replaying captured response", zap.Int("bytes", len(raw)))
	return r.finish(result)
}

// finish runs the normalize, apply and evaluate steps.
func (r *run) finish(result *Result) (*Result, error) {
	// Step 3: Normalize
	if err := r.tracker.Begin(steps.Normalize); err != nil {
		return result, err
	}
	batch, err := updates.Normalize(result.Raw, updates.Options{
		Mode:            r.opts.Mode,
		DefaultFilename: r.opts.DefaultFilename,
	})
	if err != nil {
		r.logger.Error("normalization failed", zap.Error(err))
		return result, err
	}
	result.Batch = batch

	for _, s := range batch.Skipped {
		r.logger.Warn("skipping malformed entry",
			zap.Int("index", s.Index),
			zap.String("reason", s.Reason))
	}
	if batch.Shape != r.opts.Mode {
		r.logger.Warn("response shape differs from requested mode",
			zap.String("requested", string(r.opts.Mode)),
			zap.String("shape", string(batch.Shape)))
	}
	if len(batch.Updates) == 0 {
		r.logger.Warn("response contained no file updates")
	}
	if r.opts.Verbose {
		r.printer.PrintBatch(batch)
	}
	r.tracker.Done(steps.Normalize)
	r.emitProgress(steps.Normalize, fmt.Sprintf("%d file updates", len(batch.Updates)), batch.Filenames())

	// Step 4: Apply
	if err := r.tracker.Begin(steps.Apply); err != nil {
		return result, err
	}
	w := writer.New(r.opts.OutDir, r.opts.DryRun)
	result.Results = w.Apply(batch.Updates)
	for _, res := range result.Results {
		if res.Success {
			r.logger.Info("file written",
				zap.String("filename", res.Filename),
				zap.String("path", res.Path),
				zap.Bool("dry_run", r.opts.DryRun))
			continue
		}
		r.logger.Warn("file write failed",
			zap.String("filename", res.Filename),
			zap.String("error", res.Error))
	}
	if r.opts.Verbose {
		r.printer.PrintResults(result.Results)
	}
	r.tracker.Done(steps.Apply)
	r.emitProgress(steps.Apply, "files applied", result.Results)

	// Step 5: Evaluate
	if err := r.tracker.Begin(steps.Evaluate); err != nil {
		return result, err
	}
	if err := writer.Evaluate(result.Results, r.opts.Policy); err != nil {
		r.logger.Error("write policy not met", zap.Error(err))
		return result, err
	}
	r.tracker.Done(steps.Evaluate)
	r.emitProgress(steps.Evaluate, "run succeeded", nil)

	return result, nil
}

// ReadReference returns the content of the reference page. A missing file
// is not an error and yields an empty reference.
func ReadReference(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read reference file %s: %w", path, err)
	}
	return string(data), nil
}

// ReferenceName is the name the model sees for the reference page: its path
// relative to outDir when it lives there, so a reply that reuses the name
// writes back to the same file.
func ReferenceName(outDir, path string) string {
	if outDir == "" {
		outDir = "."
	}
	rel, err := filepath.Rel(outDir, path)
	if err != nil || !filepath.IsLocal(rel) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
