// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/site-updater/internal/updates"
	"github.com/jonathan/site-updater/internal/writer"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
	// maxPromptLines caps how much of the prompt is echoed
	maxPromptLines = 15
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = truncate(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PageTitle returns the text of the document's <title>, or "" if there is none
// or the content is not parseable HTML.
func PageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}

// PageLinks returns the href of every anchor in the document, in order.
func PageLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
			links = append(links, strings.TrimSpace(href))
		}
	})
	return links
}

// PrintReference outputs a summary of the reference page sent to the model.
func (p *Printer) PrintReference(path, content string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Path:  %s\n", path))
	if content == "" {
		sb.WriteString("Status: not found, sending empty reference")
		p.printBox("REFERENCE PAGE", sb.String())
		return
	}

	sb.WriteString(fmt.Sprintf("Size:  %d bytes\n", len(content)))
	if title := PageTitle(content); title != "" {
		sb.WriteString(fmt.Sprintf("Title: %s\n", title))
	}
	sb.WriteString(fmt.Sprintf("Links: %d", len(PageLinks(content))))

	p.printBox("REFERENCE PAGE", sb.String())
}

// PrintPrompt outputs the beginning of the prompt sent to the model.
func (p *Printer) PrintPrompt(model, prompt string) {
	lines := strings.Split(strings.TrimRight(prompt, "\n"), "\n")

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Model: %s\n", model))
	sb.WriteString(fmt.Sprintf("Length: %d chars\n\n", len(prompt)))
	count := min(len(lines), maxPromptLines)
	for i := 0; i < count; i++ {
		sb.WriteString(lines[i])
		sb.WriteString("\n")
	}
	if len(lines) > maxPromptLines {
		sb.WriteString(fmt.Sprintf("... and %d more lines", len(lines)-maxPromptLines))
	}

	p.printBox("PROMPT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatch outputs the normalized updates and any skipped entries.
func (p *Printer) PrintBatch(batch *updates.Batch) {
	if batch == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Shape:   %s\n", batch.Shape))
	sb.WriteString(fmt.Sprintf("Updates: %d\n", len(batch.Updates)))

	count := min(len(batch.Updates), maxItemsToShow)
	for i := 0; i < count; i++ {
		u := batch.Updates[i]
		sb.WriteString(fmt.Sprintf("  • %s (%d bytes)", u.Filename, len(u.HTML)))
		if title := PageTitle(u.HTML); title != "" {
			sb.WriteString(fmt.Sprintf(" %q", title))
		}
		sb.WriteString("\n")
	}
	if len(batch.Updates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(batch.Updates)-maxItemsToShow))
	}

	if len(batch.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("\nSkipped: %d\n", len(batch.Skipped)))
		for _, s := range batch.Skipped {
			sb.WriteString(fmt.Sprintf("  ✗ #%d %s\n", s.Index, s.Reason))
		}
	}

	p.printBox("FILE UPDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResults outputs one line per write and a final tally.
func (p *Printer) PrintResults(results []writer.WriteResult) {
	var sb strings.Builder
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
			sb.WriteString(fmt.Sprintf("✓ %s\n", r.Filename))
			continue
		}
		sb.WriteString(fmt.Sprintf("✗ %s: %s\n", r.Filename, r.Error))
	}
	sb.WriteString(fmt.Sprintf("\n%d/%d written", succeeded, len(results)))

	p.printBox("WRITE RESULTS", sb.String())
}
