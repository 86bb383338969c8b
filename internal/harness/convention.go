package harness

import (
	"regexp"

	"github.com/algojudge/grader/internal/strategy"
)

// converter pairs the build (flat to structure) and flatten (structure to
// flat) helper names a structural strategy uses around the call.
type converter struct {
	build   string
	flatten string
	marker  string
}

func converterFor(strat strategy.Strategy) *converter {
	switch strat {
	case strategy.LinkedList:
		return &converter{build: "list_to_linkedlist", flatten: "linkedlist_to_list", marker: "ListNode"}
	case strategy.BinaryTree:
		return &converter{build: "list_to_tree", flatten: "tree_to_list", marker: "TreeNode"}
	case strategy.Graph:
		return &converter{build: "adjacency_to_graph", flatten: "graph_to_adjacency", marker: "Node"}
	}
	return nil
}

// Parameter naming conventions for structural arguments. A name convention,
// not a guarantee: the type annotation is checked first, the convention
// second, and when neither matches any parameter the generator refuses to
// guess (ErrStructuralParam).
var (
	linkedNameRe = regexp.MustCompile(`^(head\d*|l\d+|list\d*|node\d*|curr?)$`)
	treeNameRe   = regexp.MustCompile(`^(root\d*|node\d*|subRoot|p|q)$`)
	graphNameRe  = regexp.MustCompile(`^(node\d*|graph|adjList)$`)
)

func isStructural(strat strategy.Strategy, name string, annotation string) bool {
	conv := converterFor(strat)
	if conv == nil {
		return false
	}
	if annotation != "" && containsWord(annotation, conv.marker) {
		return true
	}
	switch strat {
	case strategy.LinkedList:
		return linkedNameRe.MatchString(name)
	case strategy.BinaryTree:
		return treeNameRe.MatchString(name)
	case strategy.Graph:
		return graphNameRe.MatchString(name)
	}
	return false
}
