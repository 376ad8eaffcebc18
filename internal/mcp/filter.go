package mcp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmespath/go-jmespath"
)

// FilterResult is a reduced response body plus a summary of what was kept
type FilterResult struct {
	Content string         `json:"content"`
	Meta    map[string]any `json:"_meta"`
}

// estimateTokens approximates token count using chars/4 heuristic
func estimateTokens(data string) int {
	return len(data) / 4
}

func sizeMeta(source, returned string) map[string]any {
	return map[string]any{
		"tokens": map[string]any{
			"returned": estimateTokens(returned),
			"source":   estimateTokens(source),
		},
		"bytes": map[string]any{
			"returned": len(returned),
			"source":   len(source),
		},
	}
}

// filterRegex returns every match of pattern in body with surrounding
// context. Overlapping windows are merged.
func filterRegex(body, pattern string, contextLines int) (*FilterResult, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}

	// ~80 characters per line of context
	contextChars := max(contextLines*80, 100)

	type window struct{ start, end int }

	matches := re.FindAllStringIndex(body, -1)
	var merged []window
	for _, match := range matches {
		w := window{start: max(0, match[0]-contextChars), end: min(len(body), match[1]+contextChars)}
		if n := len(merged); n > 0 && w.start <= merged[n-1].end {
			merged[n-1].end = max(merged[n-1].end, w.end)
			continue
		}
		merged = append(merged, w)
	}

	blocks := make([]string, 0, len(merged))
	for i, w := range merged {
		excerpt := body[w.start:w.end]
		if w.start > 0 {
			excerpt = "..." + excerpt
		}
		if w.end < len(body) {
			excerpt += "..."
		}
		blocks = append(blocks, fmt.Sprintf("=== Context Window %d (bytes %d-%d) ===\n%s", i+1, w.start, w.end, excerpt))
	}
	content := strings.Join(blocks, "\n\n")

	meta := sizeMeta(body, content)
	meta["filter"] = map[string]any{
		"type":           "regex",
		"pattern":        pattern,
		"total_matches":  len(matches),
		"merged_windows": len(merged),
	}
	return &FilterResult{Content: content, Meta: meta}, nil
}

// filterJMESPath evaluates a JMESPath expression against a JSON body
func filterJMESPath(body, expression string) (*FilterResult, error) {
	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	result, err := jmespath.Search(expression, data)
	if err != nil {
		return nil, fmt.Errorf("invalid jmespath expression: %w", err)
	}

	filtered, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal filtered result: %w", err)
	}

	resultCount := 0
	if arr, ok := result.([]any); ok {
		resultCount = len(arr)
	} else if result != nil {
		resultCount = 1
	}

	content := string(filtered)
	meta := sizeMeta(body, content)
	meta["filter"] = map[string]any{
		"type":         "jmespath",
		"expression":   expression,
		"result_count": resultCount,
	}
	return &FilterResult{Content: content, Meta: meta}, nil
}
