// Package updates turns raw model output into the file updates to apply to the site.
package updates

import "fmt"

// FileUpdate is one page to write: a relative filename and its full HTML.
type FileUpdate struct {
	Filename string `json:"filename"`
	HTML     string `json:"html"`
}

// ResponseMode is the output convention requested from the model.
type ResponseMode string

const (
	// ModePlainHTML asks for the full HTML of one page and nothing else
	ModePlainHTML ResponseMode = "plain-html"
	// ModeSingleJSON asks for one {"filename", "html"} object
	ModeSingleJSON ResponseMode = "single-json"
	// ModeJSONList asks for an array of {"filename", "html"} objects
	ModeJSONList ResponseMode = "json-list"
)

// Modes lists the supported response modes in their historical order.
var Modes = []ResponseMode{ModePlainHTML, ModeSingleJSON, ModeJSONList}

// ParseMode converts a flag or config value into a ResponseMode.
func ParseMode(s string) (ResponseMode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown response mode %q (want one of %v)", s, Modes)
}

// SkippedEntry records a list element that was dropped during normalization.
type SkippedEntry struct {
	Index  int
	Reason string
}

// Batch is the result of normalizing one model response.
type Batch struct {
	Updates []FileUpdate
	// Shape is the response shape that was actually detected
	Shape   ResponseMode
	Skipped []SkippedEntry
}

// Filenames returns the filenames of the batch in order.
func (b *Batch) Filenames() []string {
	names := make([]string, 0, len(b.Updates))
	for _, u := range b.Updates {
		names = append(names, u.Filename)
	}
	return names
}
