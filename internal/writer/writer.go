// Package writer applies normalized file updates to the site directory.
package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/site-updater/internal/updates"
)

const (
	filePerm = 0644
	dirPerm  = 0755
)

// Policy decides when a batch of writes counts as successful.
type Policy string

const (
	// PolicyAll requires every write to succeed
	PolicyAll Policy = "all"
	// PolicyAny requires at least one write to succeed
	PolicyAny Policy = "any"
)

// ParsePolicy converts a flag or config value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAll, PolicyAny:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown write policy %q (want %q or %q)", s, PolicyAll, PolicyAny)
	}
}

// WriteResult is the outcome of one file update.
type WriteResult struct {
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Writer writes file updates below Root.
type Writer struct {
	// Root is the directory every filename is resolved against
	Root string
	// DryRun resolves and checks paths without touching the filesystem
	DryRun bool
}

// New returns a Writer rooted at dir ("" means the working directory).
func New(dir string, dryRun bool) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{Root: dir, DryRun: dryRun}
}

// Apply writes every update in order and reports one result per update.
// A failed write does not stop the remaining ones.
func (w *Writer) Apply(batch []updates.FileUpdate) []WriteResult {
	results := make([]WriteResult, 0, len(batch))
	var (
		root    *os.Root
		rootErr error
	)
	defer func() {
		if root != nil {
			_ = root.Close()
		}
	}()

	for _, u := range batch {
		result := WriteResult{Filename: u.Filename}
		path, err := w.Resolve(u.Filename)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.Path = path

		if !w.DryRun {
			if root == nil && rootErr == nil {
				root, rootErr = w.openRoot()
			}
			if rootErr != nil {
				result.Error = rootErr.Error()
				results = append(results, result)
				continue
			}
			if err := write(root, u); err != nil {
				result.Error = err.Error()
				results = append(results, result)
				continue
			}
		}

		result.Success = true
		results = append(results, result)
	}
	return results
}

// openRoot creates the output directory if needed and opens it as an
// os.Root, so symlinks inside it cannot redirect writes elsewhere.
func (w *Writer) openRoot() (*os.Root, error) {
	if err := os.MkdirAll(w.Root, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	root, err := os.OpenRoot(w.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open output directory: %w", err)
	}
	return root, nil
}

func write(root *os.Root, u updates.FileUpdate) error {
	rel := filepath.Clean(filepath.FromSlash(u.Filename))

	if err := mkdirAll(root, filepath.Dir(rel)); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := root.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if _, err := f.WriteString(u.HTML); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// mkdirAll creates dir and its parents inside root.
func mkdirAll(root *os.Root, dir string) error {
	if dir == "." {
		return nil
	}
	path := ""
	for _, part := range strings.Split(dir, string(filepath.Separator)) {
		path = filepath.Join(path, part)
		if err := root.Mkdir(path, dirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
			return err
		}
	}
	return nil
}

// Resolve maps a model-supplied filename to a path under Root.
// Absolute paths and paths that climb out of Root are rejected. Symlinks are
// only checked when the file is written.
func (w *Writer) Resolve(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("empty filename")
	}
	rel := filepath.FromSlash(filename)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%s: %w", filename, ErrPathOutsideRoot)
	}
	return filepath.Join(w.Root, rel), nil
}

// Evaluate applies the policy to a set of results.
// PolicyAll succeeds on an empty set; PolicyAny does not.
func Evaluate(results []WriteResult, policy Policy) error {
	var failed []string
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
			continue
		}
		failed = append(failed, r.Filename)
	}

	ok := false
	switch policy {
	case PolicyAny:
		ok = succeeded > 0
	default:
		ok = len(failed) == 0
	}
	if ok {
		return nil
	}
	return &WriteFailureError{Policy: policy, Failed: failed, Total: len(results)}
}
