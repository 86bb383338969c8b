package sqsgath

import "strings"

// trimStrToRect bounds a string to at most maxHeight lines of maxWidth
// bytes. Trimmed lines end with "..." and a trimmed line count is appended,
// so queue messages stay small no matter what the program printed.
func trimStrToRect(s string, maxHeight, maxWidth int) string {
	if s == "" {
		return s
	}

	lines := strings.Split(s, "\n")
	trimmedLines := 0
	if len(lines) > maxHeight {
		trimmedLines = len(lines) - maxHeight
		lines = lines[:maxHeight]
	}

	for i, line := range lines {
		if len(line) > maxWidth {
			lines[i] = clampLine(line, maxWidth)
		}
	}

	out := strings.Join(lines, "\n")
	if trimmedLines > 0 {
		out += "\n..."
	}
	return out
}

// clampLine cuts at a UTF-8 boundary within maxWidth, reserving room for
// the ellipsis.
func clampLine(line string, maxWidth int) string {
	limit := maxWidth - 3
	for i := range line {
		if i >= limit {
			return line[:i] + "..."
		}
	}
	return line
}
