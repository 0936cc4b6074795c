package updates

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/site-updater/internal/schemas"
)

// Options controls how a response is normalized.
type Options struct {
	// Mode is the shape that was requested from the model. It does not change
	// the parse order; callers compare it with Batch.Shape.
	Mode ResponseMode
	// DefaultFilename receives the whole text when the response is not a
	// structured payload.
	DefaultFilename string
}

// Normalize parses a raw model response into file updates.
//
// The outer fence wrapper and surrounding whitespace are stripped first. A JSON array yields one update
// per valid element, dropping invalid elements. A single JSON object with
// "filename" and "html" yields one update. Anything else is treated as the
// full HTML of DefaultFilename.
func Normalize(raw string, opts Options) (*Batch, error) {
	text := strings.TrimSpace(StripFence(raw))
	if text == "" {
		return nil, &NormalizationError{Message: "response is empty"}
	}

	batch, err := parseStructured(text)
	if err == nil {
		return batch, nil
	}

	var pf *parseFailure
	if !errors.As(err, &pf) {
		return nil, &NormalizationError{Message: "failed to decode response", Cause: err}
	}

	if opts.DefaultFilename == "" {
		return nil, &NormalizationError{
			Message: "response is not structured and no default filename is set",
			Cause:   err,
		}
	}

	return &Batch{
		Updates: []FileUpdate{{Filename: opts.DefaultFilename, HTML: text}},
		Shape:   ModePlainHTML,
	}, nil
}

// parseStructured decodes the JSON shapes. Any non-fatal mismatch is
// reported as a *parseFailure.
func parseStructured(text string) (*Batch, error) {
	switch text[0] {
	case '[':
		return parseList(text)
	case '{':
		return parseSingle(text)
	default:
		return nil, &parseFailure{reason: "text is not a JSON object or array"}
	}
}

func parseList(text string) (*Batch, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, &parseFailure{reason: "invalid JSON array", cause: err}
	}

	batch := &Batch{
		Updates: make([]FileUpdate, 0, len(items)),
		Shape:   ModeJSONList,
	}
	for i, item := range items {
		update, err := decodeUpdate(item)
		if err != nil {
			var validationErr *schemas.ValidationError
			if !errors.As(err, &validationErr) {
				return nil, err
			}
			batch.Skipped = append(batch.Skipped, SkippedEntry{Index: i, Reason: validationErr.Summary()})
			continue
		}
		batch.Updates = append(batch.Updates, update)
	}
	return batch, nil
}

func parseSingle(text string) (*Batch, error) {
	if !json.Valid([]byte(text)) {
		return nil, &parseFailure{reason: "invalid JSON object"}
	}

	update, err := decodeUpdate(json.RawMessage(text))
	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return nil, &parseFailure{reason: "object is not a file update", cause: err}
		}
		return nil, err
	}

	return &Batch{
		Updates: []FileUpdate{update},
		Shape:   ModeSingleJSON,
	}, nil
}

// decodeUpdate validates one element against the file update schema and decodes it.
func decodeUpdate(doc json.RawMessage) (FileUpdate, error) {
	if err := schemas.ValidateFileUpdate(doc); err != nil {
		return FileUpdate{}, err
	}

	var update FileUpdate
	if err := json.Unmarshal(doc, &update); err != nil {
		return FileUpdate{}, fmt.Errorf("failed to decode file update: %w", err)
	}
	update.Filename = strings.TrimSpace(update.Filename)
	return update, nil
}
