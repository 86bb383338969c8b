// Package compare holds the two total comparison functions verdicts are
// based on: exact structural equality and order-independent ("smart")
// equality for problems whose accepted answers are unordered collections.
package compare

import (
	"encoding/json"
	"sort"
)

// Exact reports deep structural equality after canonical serialization.
// Numbers compare as their JSON values, object keys are order-insensitive.
func Exact(expected, actual any) bool {
	return Canonical(expected) == Canonical(actual)
}

// Smart is the order-independent comparison. Exact equality is the fast
// path. Two arrays of equal length whose first element is itself an array
// compare after sorting each inner array and then sorting the outer array
// by serialized form; two flat arrays compare after sorting both. Anything
// that is not a pair of arrays falls back to Exact, so a non-array mismatch
// never passes.
func Smart(expected, actual any) bool {
	if Exact(expected, actual) {
		return true
	}

	ea, eok := expected.([]any)
	aa, aok := actual.([]any)
	if !eok || !aok || len(ea) != len(aa) {
		return false
	}
	if len(ea) == 0 {
		return true
	}

	if _, nested := ea[0].([]any); nested {
		return Canonical(normalizeNested(ea)) == Canonical(normalizeNested(aa))
	}
	return Canonical(sortFlat(ea)) == Canonical(sortFlat(aa))
}

// Canonical returns the canonical serialized form of a decoded JSON value.
func Canonical(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func normalizeNested(outer []any) []any {
	sorted := make([]any, len(outer))
	for i, inner := range outer {
		if arr, ok := inner.([]any); ok {
			sorted[i] = sortFlat(arr)
		} else {
			sorted[i] = inner
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return Canonical(sorted[i]) < Canonical(sorted[j])
	})
	return sorted
}

// sortFlat sorts by natural order: numbers numerically, everything else by
// canonical form.
func sortFlat(arr []any) []any {
	sorted := append([]any(nil), arr...)
	sort.Slice(sorted, func(i, j int) bool {
		ni, iok := sorted[i].(float64)
		nj, jok := sorted[j].(float64)
		if iok && jok {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return Canonical(sorted[i]) < Canonical(sorted[j])
	})
	return sorted
}
