// Package sigparse recovers the callable signature of a submitted source
// file: its name, ordered parameter names and the optional return-type
// annotation. It handles only the narrow grammar needed for harness
// generation; it is not a general-purpose parser.
package sigparse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCallable is returned when the source has no locatable function
// definition. The pipeline maps it to a uniform Runtime Error verdict for
// every test case.
var ErrNoCallable = errors.New("no function definition found")

// Signature describes one callable recovered from submitted source.
type Signature struct {
	Name string

	// Parameter names in declaration order, annotations and defaults
	// stripped, the leading instance-reference parameter removed.
	Params []string

	// Raw type annotation per parameter, "" when absent. Parallel to Params.
	ParamTypes []string

	// Return-type annotation text, "" when absent.
	ReturnType string

	// True when the declaration listed self as its first parameter.
	HasReceiver bool
}

// Parse extracts the first non-dunder callable of the source.
func Parse(source string) (*Signature, error) {
	return parse(source, "")
}

// ParseFunc extracts the named callable of the source, used when the
// callable is known up front (class-based and codec-pair problems).
func ParseFunc(source string, name string) (*Signature, error) {
	return parse(source, name)
}

func parse(source string, wanted string) (*Signature, error) {
	offset := 0
	for {
		idx := strings.Index(source[offset:], "def ")
		if idx < 0 {
			return nil, ErrNoCallable
		}
		idx += offset
		offset = idx + len("def ")

		// Only a "def" at the start of a (possibly indented) line counts;
		// anything else is a substring of an identifier or a string literal.
		if !atLineStart(source, idx) {
			continue
		}

		rest := source[idx+len("def "):]
		paren := strings.IndexByte(rest, '(')
		if paren < 0 {
			continue
		}
		name := strings.TrimSpace(rest[:paren])
		if !isIdentifier(name) {
			continue
		}
		if wanted == "" && isDunder(name) {
			continue
		}
		if wanted != "" && name != wanted {
			continue
		}

		sig, err := parseParams(rest, paren)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		sig.Name = name
		return sig, nil
	}
}

func parseParams(rest string, paren int) (*Signature, error) {
	end, err := ScanBalanced(rest, paren)
	if err != nil {
		return nil, err
	}

	sig := &Signature{Params: []string{}, ParamTypes: []string{}}

	inner := rest[paren+1 : end]
	if strings.TrimSpace(inner) != "" {
		for _, part := range SplitTopLevel(inner, ',') {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, typ := splitParam(part)
			if name == "self" && len(sig.Params) == 0 && !sig.HasReceiver {
				sig.HasReceiver = true
				continue
			}
			sig.Params = append(sig.Params, name)
			sig.ParamTypes = append(sig.ParamTypes, typ)
		}
	}

	sig.ReturnType = parseReturnType(rest[end+1:])
	return sig, nil
}

// splitParam separates "name: Type = default" into name and annotation.
func splitParam(part string) (string, string) {
	var typ string
	if colon := indexTopLevel(part, ':'); colon >= 0 {
		typ = strings.TrimSpace(part[colon+1:])
		part = part[:colon]
	}
	if eq := indexTopLevel(part, '='); eq >= 0 {
		part = part[:eq]
	}
	if eq := indexTopLevel(typ, '='); eq >= 0 {
		typ = strings.TrimSpace(typ[:eq])
	}
	return strings.TrimSpace(part), typ
}

// parseReturnType reads an optional "-> Type" annotation between the closing
// parenthesis and the statement-terminating colon.
func parseReturnType(after string) string {
	trimmed := strings.TrimLeft(after, " \t")
	if !strings.HasPrefix(trimmed, "->") {
		return ""
	}
	trimmed = trimmed[2:]
	if colon := indexTopLevel(trimmed, ':'); colon >= 0 {
		trimmed = trimmed[:colon]
	} else if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[:nl]
	}
	return strings.TrimSpace(trimmed)
}

// indexTopLevel finds c at zero bracket depth outside quotes, or -1. The
// annotation of Dict[str, int] contains a colon that must not match.
func indexTopLevel(s string, c byte) int {
	var paren, brack, brace int
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(':
			paren++
		case ')':
			paren--
		case '[':
			brack++
		case ']':
			brack--
		case '{':
			brace++
		case '}':
			brace--
		}
		if ch == c && paren == 0 && brack == 0 && brace == 0 {
			return i
		}
	}
	return -1
}

func atLineStart(source string, idx int) bool {
	for i := idx - 1; i >= 0; i-- {
		switch source[i] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func isDunder(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
