package ai

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/bilgisen/adforge/internal/errs"
)

// ExtractJSON decodes a model answer into dst. The text is tried as-is, then
// with markdown fences removed, then as the substring from the first open
// delimiter to the last close delimiter ([ ] for slices, { } otherwise).
func ExtractJSON(text string, open, close byte, dst interface{}, what string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &errs.ParseError{What: what, Err: errors.New("empty response")}
	}

	if err := json.Unmarshal([]byte(text), dst); err == nil {
		return nil
	}

	if unfenced := stripFences(text); unfenced != text {
		if err := json.Unmarshal([]byte(unfenced), dst); err == nil {
			return nil
		}
	}

	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return &errs.ParseError{What: what, Err: errors.New("no JSON found in response")}
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), dst); err != nil {
		return &errs.ParseError{What: what, Err: err}
	}
	return nil
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
