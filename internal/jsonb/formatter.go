package jsonb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Format pretty-prints a JSON document with two-space indentation.
func Format(value string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(value)), "", "  "); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	return buf.String(), nil
}

// Compact formats JSON as a single line.
func Compact(value string) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(value)); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	return buf.String(), nil
}

// Truncate shortens compact JSON to width terminal cells, preferring to
// cut after a separator.
func Truncate(value string, width int) string {
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}

	truncated := runewidth.Truncate(value, width-3, "")
	if cut := strings.LastIndexAny(truncated, " ,{}[]"); cut > len(truncated)/2 {
		truncated = truncated[:cut+1]
	}
	return truncated + "..."
}
