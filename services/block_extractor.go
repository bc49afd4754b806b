package services

import "strings"

// StateBlockAnchor marks where the embedded product state object starts in a page.
// Marker is searched verbatim; the object begins right after KeyPrefix.
type StateBlockAnchor struct {
	Marker    string
	KeyPrefix string
}

// ExtractBalancedBlock returns the JSON object that starts right after the anchor's key,
// up to and including the brace that closes it. Braces inside string literals are ignored,
// and a backslash inside a string escapes the next character.
// It returns false when the anchor is missing or the object never closes.
func ExtractBalancedBlock(html string, anchor StateBlockAnchor) (string, bool) {
	if anchor.Marker == "" || !strings.HasPrefix(anchor.Marker, anchor.KeyPrefix) {
		return "", false
	}

	markerIndex := strings.Index(html, anchor.Marker)
	if markerIndex == -1 {
		return "", false
	}

	start := markerIndex + len(anchor.KeyPrefix)
	if start >= len(html) || html[start] != '{' {
		return "", false
	}

	end := scanBalancedObject(html, start)
	if end == -1 {
		return "", false
	}

	return html[start : end+1], true
}

// scanBalancedObject walks from the opening brace at start and returns the index of the
// matching closing brace, or -1.
func scanBalancedObject(text string, start int) int {
	depth := 1 // the opening brace at start
	inString := false
	escaped := false

	for i := start + 1; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
