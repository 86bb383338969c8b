package harness

import (
	"strings"

	"github.com/algojudge/grader/internal/strategy"
	mapset "github.com/deckarep/golang-set/v2"
)

// HelperID names one injectable top-level definition: a structure type or a
// conversion routine between flat arrays and structures.
type HelperID int

const (
	HelperListNodeDef HelperID = iota
	HelperTreeNodeDef
	HelperGraphNodeDef
	HelperListToLinked
	HelperLinkedToList
	HelperListToTree
	HelperTreeToList
	HelperAdjToGraph
	HelperGraphToAdj
)

// helperOrder fixes the emission order so that preparing a source is
// deterministic regardless of how the required set was accumulated.
var helperOrder = []HelperID{
	HelperListNodeDef,
	HelperTreeNodeDef,
	HelperGraphNodeDef,
	HelperListToLinked,
	HelperLinkedToList,
	HelperListToTree,
	HelperTreeToList,
	HelperAdjToGraph,
	HelperGraphToAdj,
}

// helperMarker is the identifier whose presence means the definition already
// exists and must not be injected again.
var helperMarker = map[HelperID]string{
	HelperListNodeDef:  "class ListNode",
	HelperTreeNodeDef:  "class TreeNode",
	HelperGraphNodeDef: "class Node",
	HelperListToLinked: "def list_to_linkedlist",
	HelperLinkedToList: "def linkedlist_to_list",
	HelperListToTree:   "def list_to_tree",
	HelperTreeToList:   "def tree_to_list",
	HelperAdjToGraph:   "def adjacency_to_graph",
	HelperGraphToAdj:   "def graph_to_adjacency",
}

var helperSource = map[HelperID]string{
	HelperListNodeDef: `class ListNode:
    def __init__(self, val=0, next=None):
        self.val = val
        self.next = next
`,
	HelperTreeNodeDef: `class TreeNode:
    def __init__(self, val=0, left=None, right=None):
        self.val = val
        self.left = left
        self.right = right
`,
	HelperGraphNodeDef: `class Node:
    def __init__(self, val=0, neighbors=None):
        self.val = val
        self.neighbors = neighbors if neighbors is not None else []
`,
	HelperListToLinked: `def list_to_linkedlist(values):
    if not isinstance(values, list):
        return values
    head = None
    for v in reversed(values):
        head = ListNode(v, head)
    return head
`,
	HelperLinkedToList: `def linkedlist_to_list(head):
    if head is None:
        return []
    if not isinstance(head, ListNode):
        return head
    out = []
    while head is not None:
        out.append(head.val)
        head = head.next
    return out
`,
	HelperListToTree: `def list_to_tree(values):
    if not isinstance(values, list):
        return values
    if not values or values[0] is None:
        return None
    root = TreeNode(values[0])
    queue = [root]
    i = 1
    while queue and i < len(values):
        node = queue.pop(0)
        if i < len(values):
            v = values[i]
            i += 1
            if v is not None:
                node.left = TreeNode(v)
                queue.append(node.left)
        if i < len(values):
            v = values[i]
            i += 1
            if v is not None:
                node.right = TreeNode(v)
                queue.append(node.right)
    return root
`,
	HelperTreeToList: `def tree_to_list(root):
    if root is None:
        return []
    if not isinstance(root, TreeNode):
        return root
    out = []
    queue = [root]
    while queue:
        node = queue.pop(0)
        if node is None:
            out.append(None)
            continue
        out.append(node.val)
        queue.append(node.left)
        queue.append(node.right)
    while out and out[-1] is None:
        out.pop()
    return out
`,
	HelperAdjToGraph: `def adjacency_to_graph(adj):
    if not isinstance(adj, list):
        return adj
    if not adj:
        return None
    nodes = [Node(i + 1) for i in range(len(adj))]
    for i, neighbors in enumerate(adj):
        nodes[i].neighbors = [nodes[j - 1] for j in neighbors]
    return nodes[0]
`,
	HelperGraphToAdj: `def graph_to_adjacency(node):
    if node is None:
        return []
    if not isinstance(node, Node):
        return node
    seen = {}
    order = []
    stack = [node]
    while stack:
        cur = stack.pop()
        if cur.val in seen:
            continue
        seen[cur.val] = cur
        order.append(cur)
        for nb in cur.neighbors:
            if nb.val not in seen:
                stack.append(nb)
    adj = [[] for _ in range(len(seen))]
    for cur in order:
        adj[cur.val - 1] = [nb.val for nb in cur.neighbors]
    return adj
`,
}

// strategyHelpers lists what each strategy always needs, independent of
// what the source happens to mention.
var strategyHelpers = map[strategy.Strategy][]HelperID{
	strategy.LinkedList: {HelperListNodeDef, HelperListToLinked, HelperLinkedToList},
	strategy.BinaryTree: {HelperTreeNodeDef, HelperListToTree, HelperTreeToList},
	strategy.Graph:      {HelperGraphNodeDef, HelperAdjToGraph, HelperGraphToAdj},

	strategy.SerializeDeserialize: {HelperTreeNodeDef, HelperListToTree, HelperTreeToList},
}

// sourceMarkers maps structure identifiers referenced by the user's code to
// the type definition they need.
var sourceMarkers = map[string]HelperID{
	"ListNode": HelperListNodeDef,
	"TreeNode": HelperTreeNodeDef,
	"Node":     HelperGraphNodeDef,
}

// requiredHelpers computes the full helper set from a single source scan,
// then the caller emits it in helperOrder. Definitions the user already
// wrote are excluded.
func requiredHelpers(strat strategy.Strategy, source string) mapset.Set[HelperID] {
	need := mapset.NewSet[HelperID]()
	for _, id := range strategyHelpers[strat] {
		need.Add(id)
	}
	for marker, id := range sourceMarkers {
		if containsWord(source, marker) {
			need.Add(id)
		}
	}
	for id := range need.Iter() {
		if strings.Contains(source, helperMarker[id]) {
			need.Remove(id)
		}
	}
	return need
}

func emitHelpers(need mapset.Set[HelperID]) string {
	var b strings.Builder
	for _, id := range helperOrder {
		if !need.Contains(id) {
			continue
		}
		b.WriteString(helperSource[id])
		b.WriteString("\n")
	}
	return b.String()
}

// containsWord reports whether text references marker as a whole
// identifier rather than a substring of a longer one.
func containsWord(text, marker string) bool {
	for from := 0; ; {
		idx := strings.Index(text[from:], marker)
		if idx < 0 {
			return false
		}
		idx += from
		before := idx == 0 || !isIdentChar(text[idx-1])
		afterIdx := idx + len(marker)
		after := afterIdx >= len(text) || !isIdentChar(text[afterIdx])
		if before && after {
			return true
		}
		from = idx + len(marker)
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
