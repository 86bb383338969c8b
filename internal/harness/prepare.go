package harness

import (
	"strings"

	"github.com/algojudge/grader/internal/sigparse"
	"github.com/algojudge/grader/internal/strategy"
)

// importRule injects line when token is referenced and line is not already
// present in the source.
type importRule struct {
	token string
	line  string
}

var importRules = []importRule{
	{"collections.", "import collections"},
	{"deque(", "from collections import deque"},
	{"defaultdict(", "from collections import defaultdict"},
	{"heapq.", "import heapq"},
	{"math.", "import math"},
	{"itertools.", "import itertools"},
	{"bisect.", "import bisect"},
}

var typingNames = []string{"List", "Optional", "Dict", "Tuple", "Set"}

// PrepareSource turns the submitted source into a self-contained program
// fragment: missing imports, structure-type definitions and conversion
// helpers are injected at top level, and a callable that declares an
// instance-reference parameter is wrapped into a Solution container when the
// user defined none. Injected helpers stay outside the container so the
// driver can call them directly.
//
// Preparing an already-prepared source is a no-op: every injection checks
// for presence first.
func PrepareSource(strat strategy.Strategy, sig *sigparse.Signature, source string) string {
	var b strings.Builder

	if imports := requiredImports(source); imports != "" {
		b.WriteString(imports)
		b.WriteString("\n")
	}
	if helpers := emitHelpers(requiredHelpers(strat, source)); helpers != "" {
		b.WriteString(helpers)
	}

	body := source
	if sig != nil && sig.HasReceiver && !strings.Contains(source, "class ") {
		body = wrapSolutionClass(source)
	}
	b.WriteString(body)

	return b.String()
}

func requiredImports(source string) string {
	var lines []string

	if !strings.Contains(source, "from typing import") {
		var names []string
		for _, n := range typingNames {
			if strings.Contains(source, n+"[") {
				names = append(names, n)
			}
		}
		if len(names) > 0 {
			lines = append(lines, "from typing import "+strings.Join(names, ", "))
		}
	}

	for _, rule := range importRules {
		if strings.Contains(source, rule.token) && !strings.Contains(source, rule.line) {
			lines = append(lines, rule.line)
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// wrapSolutionClass indents the user's code under "class Solution:". The
// user's own top-level import lines are hoisted out first; everything else,
// callable bodies included, moves inside the container.
func wrapSolutionClass(source string) string {
	var hoisted, body []string
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		atTopLevel := line == "" || (line[0] != ' ' && line[0] != '\t')
		if atTopLevel && (strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ")) {
			hoisted = append(hoisted, line)
			continue
		}
		body = append(body, line)
	}

	var b strings.Builder
	for _, line := range hoisted {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("class Solution:\n")
	for _, line := range body {
		if strings.TrimSpace(line) == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
