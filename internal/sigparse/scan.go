package sigparse

import "fmt"

// ScanBalanced returns the index of the delimiter that closes the one at
// from. It tracks parenthesis, bracket and brace depth independently and a
// quote state (single or double, with backslash escapes), so delimiters
// inside nested annotations like List[Optional[int]] or inside string
// defaults like s=")," do not end the scan early.
func ScanBalanced(text string, from int) (int, error) {
	if from < 0 || from >= len(text) {
		return 0, fmt.Errorf("scan start %d out of range", from)
	}
	open := text[from]
	var want byte
	switch open {
	case '(':
		want = ')'
	case '[':
		want = ']'
	case '{':
		want = '}'
	default:
		return 0, fmt.Errorf("not an opening delimiter at %d: %q", from, string(open))
	}

	var paren, brack, brace int
	var quote byte
	for i := from; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
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
		if c == want && paren == 0 && brack == 0 && brace == 0 {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unbalanced %q starting at %d", string(open), from)
}

// SplitTopLevel splits s on sep occurrences at zero bracket/brace/paren
// depth outside of quotes. A separator inside [...], {...}, (...) or a
// quoted string never splits.
func SplitTopLevel(s string, sep byte) []string {
	parts := []string{}
	var paren, brack, brace int
	var quote byte
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
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
		if c == sep && paren == 0 && brack == 0 && brace == 0 {
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	parts = append(parts, s[last:])
	return parts
}
