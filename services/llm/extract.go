package llm

import (
	"fmt"
	"strings"
)

// ErrNoJSON signals that no JSON object could be located in a completion.
var ErrNoJSON = fmt.Errorf("no JSON object found in response")

// ExtractJSON pulls the JSON object out of a free-form model completion.
// Models routinely wrap their answer in markdown fences or surround it with
// prose, so the steps are:
//
//  1. If the text contains a ```json fence (case-insensitive) or a generic
//     ``` fence, keep only the fenced body.
//  2. Take the span from the first '{' to the last '}' inclusive.
//
// This is deliberately a heuristic, not a balanced-brace parser. If a model
// emits two JSON objects the span covers both and parsing fails downstream;
// that boundary is pinned by a test rather than silently patched, since the
// prompts all demand a single object.
func ExtractJSON(text string) (string, error) {
	candidate := stripCodeFence(strings.TrimSpace(text))

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSON
	}

	return candidate[start : end+1], nil
}

func stripCodeFence(text string) string {
	lower := strings.ToLower(text)

	if idx := strings.Index(lower, "```json"); idx != -1 {
		body := text[idx+len("```json"):]
		if closing := strings.Index(body, "```"); closing != -1 {
			body = body[:closing]
		}
		return strings.TrimSpace(body)
	}

	if idx := strings.Index(text, "```"); idx != -1 {
		body := text[idx+len("```"):]
		// Drop an info string such as "JSON" on the fence line.
		if newline := strings.Index(body, "\n"); newline != -1 && !strings.Contains(body[:newline], "{") {
			body = body[newline+1:]
		}
		if closing := strings.Index(body, "```"); closing != -1 {
			body = body[:closing]
		}
		return strings.TrimSpace(body)
	}

	return text
}
