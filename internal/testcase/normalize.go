// Package testcase converts loosely structured test-case input text into
// the keyed parameter map the generated harness consumes.
package testcase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/algojudge/grader/internal/sigparse"
)

const assignToken = " = "

// Normalize parses raw test-case input into a parameter-name to value map.
//
// "Named" form carries one "name = value" assignment per line, or several
// joined by top-level commas on a single line. "Positional" form carries one
// value per line, matched to paramNames in declaration order. Values are
// decoded as JSON; anything that fails to decode is kept as a plain string
// with one layer of surrounding quotes stripped.
//
// A parameter absent from the input is never dropped: it is set to nil and
// reported in the returned diagnostics.
func Normalize(raw string, paramNames []string) (map[string]any, []string) {
	params := make(map[string]any, len(paramNames))
	var diags []string

	raw = strings.TrimSpace(raw)
	if raw != "" {
		if strings.Contains(raw, assignToken) {
			parseNamed(raw, params)
		} else {
			parsePositional(raw, paramNames, params)
		}
	}

	for _, name := range paramNames {
		if _, ok := params[name]; !ok {
			params[name] = nil
			diags = append(diags, fmt.Sprintf("parameter %q missing from input, defaulting to null", name))
		}
	}
	return params, diags
}

func parseNamed(raw string, params map[string]any) {
	var pairs []string
	if !strings.Contains(raw, "\n") && strings.Count(raw, assignToken) > 1 {
		// Single line, several assignments joined by commas. A comma inside
		// brackets, braces or quotes must not split.
		pairs = sigparse.SplitTopLevel(raw, ',')
	} else {
		pairs = strings.Split(raw, "\n")
	}

	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.Index(pair, assignToken)
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(pair[:idx])
		value := strings.TrimSpace(pair[idx+len(assignToken):])
		params[name] = DecodeValue(value)
	}
}

func parsePositional(raw string, paramNames []string, params map[string]any) {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if i >= len(paramNames) {
			break
		}
		params[paramNames[i]] = DecodeValue(strings.TrimSpace(line))
	}
}

// DecodeValue decodes a JSON-like value, falling back to the bare string
// with one layer of surrounding quotes removed.
func DecodeValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return stripQuotes(s)
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
