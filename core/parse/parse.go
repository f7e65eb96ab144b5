// Package parse decodes model output into typed Go values.
//
// Completion services occasionally return JSON wrapped in Markdown code
// fences or with minor syntax damage (trailing commas, single quotes).
// Decode strips fences, attempts a strict unmarshal, and falls back to
// repairing the payload before failing. It never silently returns a zero
// value: the caller gets either a decoded T or an error.
package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Decode parses content into a value of type T.
//
// It first strips any surrounding Markdown code fences, then unmarshals.
// If strict unmarshaling fails the payload is passed through jsonrepair and
// decoded again; only when both attempts fail is an error returned.
func Decode[T any](content string) (T, error) {
	var result T

	payload := stripFences(content)
	if payload == "" {
		return result, fmt.Errorf("empty content")
	}

	strictErr := json.Unmarshal([]byte(payload), &result)
	if strictErr == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(payload)
	if repairErr != nil {
		return result, fmt.Errorf("decode as %T: %w (repair also failed: %v)", result, strictErr, repairErr)
	}
	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return result, fmt.Errorf("decode repaired content as %T: %w", result, err)
	}
	return result, nil
}

// stripFences removes a surrounding Markdown code fence, with or without a
// language tag, and trims whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		// Drop the language tag line ("json", "JSON", ...).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
