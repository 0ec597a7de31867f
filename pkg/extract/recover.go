// Package extract recovers structured JSON from free-form model output.
// Model output reliably contains a JSON object but unreliably contains
// only that object: preambles, trailing commentary, and markdown fencing
// are all common. Recovery is an ordered list of strategies tried in
// sequence, so new heuristics are additions, not rewrites.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const previewLimit = 200

// ParseError reports that no JSON object could be recovered from the text.
// Preview is truncated so the error value stays safe to surface; full raw
// content belongs only in developer-facing audit records.
type ParseError struct {
	Preview string
	Err     error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "parse error"
	}
	if e.Err != nil {
		return fmt.Sprintf("no JSON object recovered (content starts %q): %v", e.Preview, e.Err)
	}
	return fmt.Sprintf("no JSON object recovered (content starts %q)", e.Preview)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Strategy is one recovery attempt: it returns the parsed object and true,
// or nil and false when the strategy does not apply or fails.
type Strategy func(text string) (map[string]any, bool)

var strategies = []Strategy{
	braceSlice,
	wholeText,
}

// Recover extracts and parses the JSON object embedded in raw model output.
// Fencing is stripped first; then each strategy runs against the cleaned
// text, stopping at the first success. All strategies exhausted means a
// *ParseError with a truncated preview of the original text.
func Recover(raw string) (map[string]any, error) {
	cleaned := stripFence(strings.TrimSpace(raw))

	for _, strategy := range strategies {
		if obj, ok := strategy(cleaned); ok {
			return obj, nil
		}
	}

	// Re-run the direct parse to capture the decoder's reason.
	var obj map[string]any
	err := json.Unmarshal([]byte(cleaned), &obj)
	return nil, &ParseError{Preview: preview(raw), Err: err}
}

// stripFence removes a leading fenced block marker line and, when present,
// the matching trailing fence line.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := text
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	} else {
		// Single-line fence: leave the text alone and let the brace
		// strategies find the object.
		return text
	}
	body = strings.TrimRight(body, " \t\n")
	if idx := strings.LastIndex(body, "\n```"); idx >= 0 {
		body = body[:idx]
	} else if strings.HasSuffix(body, "```") {
		body = body[:len(body)-3]
	}
	return strings.TrimSpace(body)
}

// braceSlice parses the substring from the first '{' to the last '}'.
func braceSlice(text string) (map[string]any, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || start >= end {
		return nil, false
	}
	return parseObject(text[start : end+1])
}

// wholeText parses the cleaned text directly.
func wholeText(text string) (map[string]any, bool) {
	return parseObject(text)
}

func parseObject(candidate string) (map[string]any, bool) {
	if !gjson.Valid(candidate) {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

func preview(text string) string {
	if len(text) <= previewLimit {
		return text
	}
	return text[:previewLimit]
}
