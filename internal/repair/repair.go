// Package repair recovers structured JSON from unreliable model replies.
// Recovery is purely textual; nothing is ever retried against the model.
package repair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError indicates every recovery step was exhausted. It carries the
// original reply for diagnostics.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to recover structured data from model reply: %s", truncate(e.Raw, 200))
}

var (
	fencedJSONBlock = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	fencedAnyBlock  = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\\s*(.*?)```")
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
)

// Parse turns a raw model reply into validated JSON. Ordered attempts,
// first success wins:
//  1. direct parse
//  2. interior of a ```json fenced block
//  3. interior of any fenced block
//  4. direct parse after trailing-comma stripping
//  5. first-{ to last-} substring, trailing commas stripped
func Parse(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)

	if v, ok := tryJSON(trimmed); ok {
		return v, nil
	}

	if m := fencedJSONBlock.FindStringSubmatch(raw); m != nil {
		if v, ok := tryJSON(strings.TrimSpace(m[1])); ok {
			return v, nil
		}
	}

	if m := fencedAnyBlock.FindStringSubmatch(raw); m != nil {
		if v, ok := tryJSON(strings.TrimSpace(m[1])); ok {
			return v, nil
		}
	}

	if v, ok := tryJSON(stripTrailingCommas(trimmed)); ok {
		return v, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		candidate := stripTrailingCommas(strings.TrimSpace(raw[start : end+1]))
		if v, ok := tryJSON(candidate); ok {
			return v, nil
		}
	}

	return nil, &ParseError{Raw: raw}
}

// Decode runs Parse and unmarshals the recovered JSON into target.
func Decode(raw string, target any) error {
	data, err := Parse(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &ParseError{Raw: raw}
	}
	return nil
}

func tryJSON(s string) (json.RawMessage, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return json.RawMessage(s), true
}

// stripTrailingCommas removes commas immediately preceding a closing
// bracket or brace anywhere in the text.
func stripTrailingCommas(s string) string {
	for {
		next := trailingComma.ReplaceAllString(s, "$1")
		if next == s {
			return next
		}
		s = next
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
