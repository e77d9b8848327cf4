// ABOUTME: Finds the first JSON object embedded in free-form model output.
// ABOUTME: Matches braces while skipping over string literals and escapes.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/harperreed/liftlog/internal/models"
)

// Scan limits. A reply is one small object, so anything past these is noise.
const (
	maxScanBytes    = 16 << 10
	maxScanAttempts = 32
)

// FindObject returns the first balanced {...} span in text that decodes to
// a JSON object. Unbalanced spans and spans that are not valid JSON are skipped.
// Only the first maxScanBytes of text and maxScanAttempts opening braces are tried.
func FindObject(text string) (models.RawWorkout, bool) {
	if len(text) > maxScanBytes {
		text = text[:maxScanBytes]
	}
	attempts := 0
	for start := strings.IndexByte(text, '{'); start >= 0 && attempts < maxScanAttempts; attempts++ {
		if end, ok := matchBrace(text, start); ok {
			if obj, ok := decodeObject(text[start : end+1]); ok {
				return obj, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += 1 + next
	}
	return nil, false
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
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
				return i, true
			}
		}
	}
	return 0, false
}

func decodeObject(span string) (models.RawWorkout, bool) {
	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return models.RawWorkout(obj), true
}
