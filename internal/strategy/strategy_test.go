package strategy_test

import (
	"testing"

	"github.com/algojudge/grader/internal/sigparse"
	"github.com/algojudge/grader/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *sigparse.Signature {
	t.Helper()
	sig, err := sigparse.Parse(src)
	require.NoError(t, err)
	return sig
}

func TestCatalogWinsOverHeuristics(t *testing.T) {
	// The source mentions Node in a comment; the catalog entry must win.
	src := "def twoSum(self, nums: List[int], target: int) -> List[int]:\n    # no Node type anywhere near this\n    pass\n"
	got := strategy.Classify(strategy.ClassificationInput{
		ProblemID: "two-sum",
		Signature: mustParse(t, src),
		Source:    src,
	})
	assert.Equal(t, strategy.Standard, got)
}

func TestSignatureMarkerLinkedList(t *testing.T) {
	src := "def reverseList(self, head: ListNode) -> ListNode:\n    pass\n"
	got := strategy.Classify(strategy.ClassificationInput{
		ProblemID: "some-unknown-problem",
		Signature: mustParse(t, src),
		Source:    src,
	})
	assert.Equal(t, strategy.LinkedList, got)
}

func TestSignatureMarkerBinaryTree(t *testing.T) {
	src := "def maxDepth(self, root: Optional[TreeNode]) -> int:\n    pass\n"
	got := strategy.Classify(strategy.ClassificationInput{
		ProblemID: "unknown",
		Signature: mustParse(t, src),
		Source:    src,
	})
	assert.Equal(t, strategy.BinaryTree, got)
}

func TestSignatureMarkerGraph(t *testing.T) {
	src := "def cloneGraph(self, node: Node) -> Node:\n    pass\n"
	got := strategy.Classify(strategy.ClassificationInput{
		ProblemID: "unknown",
		Signature: mustParse(t, src),
		Source:    src,
	})
	assert.Equal(t, strategy.Graph, got)
}

func TestSourceFallbackWhenNoSignature(t *testing.T) {
	src := "head = ListNode(1)\n"
	got := strategy.Classify(strategy.ClassificationInput{
		ProblemID: "unknown",
		Source:    src,
	})
	assert.Equal(t, strategy.LinkedList, got)
}

func TestClassBasedNeedsOperations(t *testing.T) {
	src := `class MinStack:
    def __init__(self):
        pass

    def push(self, val: int) -> None:
        pass
`
	in := strategy.ClassificationInput{ProblemID: "unknown", Source: src}
	assert.Equal(t, strategy.Standard, strategy.Classify(in))

	in.HasOperations = true
	assert.Equal(t, strategy.ClassBased, strategy.Classify(in))
}

func TestCodecPairDetection(t *testing.T) {
	enc := "class Codec:\n    def encode(self, strs):\n        pass\n    def decode(self, s):\n        pass\n"
	got := strategy.Classify(strategy.ClassificationInput{ProblemID: "unknown", Source: enc})
	assert.Equal(t, strategy.EncodeDecode, got)

	ser := "class Codec:\n    def serialize(self, root):\n        pass\n    def deserialize(self, data):\n        pass\n"
	got = strategy.Classify(strategy.ClassificationInput{ProblemID: "unknown", Source: ser})
	assert.Equal(t, strategy.SerializeDeserialize, got)
}

func TestDefaultIsStandard(t *testing.T) {
	src := "def add(a, b):\n    return a + b\n"
	got := strategy.Classify(strategy.ClassificationInput{
		ProblemID: "unknown",
		Signature: mustParse(t, src),
		Source:    src,
	})
	assert.Equal(t, strategy.Standard, got)
}

func TestUsesSmartCompare(t *testing.T) {
	assert.True(t, strategy.UsesSmartCompare("permutations"))
	assert.False(t, strategy.UsesSmartCompare("two-sum"))
}
