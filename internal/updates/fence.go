package updates

import "strings"

const fenceMarker = "```"

// StripFence removes one markdown code fence wrapper from the text.
//
// Only the boundaries are inspected: a leading marker with an optional
// language tag, and a trailing marker. Fence markers inside the payload are
// left alone. Text that does not open with a marker is returned unchanged.
func StripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, fenceMarker) {
		return text
	}

	rest := trimmed[len(fenceMarker):]
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 && isFenceTag(strings.TrimSpace(rest[:idx])) {
		rest = rest[idx+1:]
	} else {
		// "```json[..." or "```html<!DOCTYPE ...": tag glued to the content
		rest = trimInlineTag(rest)
	}

	rest = strings.TrimRightFunc(rest, isSpace)
	rest = strings.TrimSuffix(rest, fenceMarker)
	return strings.TrimSpace(rest)
}

// trimInlineTag drops an html or json tag that sits directly in front of the
// content, as in "```json{...}```".
func trimInlineTag(s string) string {
	for _, tag := range []string{"html", "json"} {
		if !strings.HasPrefix(strings.ToLower(s), tag) {
			continue
		}
		after := s[len(tag):]
		if after == "" || strings.ContainsRune("{[< \t", rune(after[0])) {
			return after
		}
	}
	return s
}

const tagChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_+-."

// isFenceTag reports whether s looks like a code fence info string (html, json, ...).
func isFenceTag(s string) bool {
	if len(s) > 20 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(tagChars, r) {
			return false
		}
	}
	return true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
