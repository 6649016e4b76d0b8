package probe

// KnowledgeNode is a single node in the knowledge trie. Children are keyed
// by token, which may be a word (phrase tries) or a single character
// (word tries) - the structure is agnostic.
type KnowledgeNode struct {
	Children map[string]*KnowledgeNode
	Terminal bool
	Payload  string
}

// NewKnowledgeNode creates an empty knowledge node.
func NewKnowledgeNode() *KnowledgeNode {
	return &KnowledgeNode{
		Children: make(map[string]*KnowledgeNode),
	}
}

// Trie is a prefix tree over token sequences. Terminal nodes carry the
// payload recorded at insertion.
type Trie struct {
	root *KnowledgeNode
	size int
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: NewKnowledgeNode()}
}

// Root returns the root node of the trie.
func (t *Trie) Root() *KnowledgeNode {
	return t.root
}

// Size returns the number of sequences inserted into the trie.
// Re-inserting an existing sequence does not increase the size.
func (t *Trie) Size() int {
	return t.size
}

// Insert adds a token sequence with the given terminal payload.
// Empty sequences are ignored.
func (t *Trie) Insert(tokens []string, payload string) {
	if len(tokens) == 0 {
		return
	}

	current := t.root
	for _, token := range tokens {
		child, ok := current.Children[token]
		if !ok {
			child = NewKnowledgeNode()
			current.Children[token] = child
		}
		current = child
	}

	if !current.Terminal {
		t.size++
	}
	current.Terminal = true
	current.Payload = payload
}

// Contains reports whether the exact token sequence was inserted, and
// returns the payload recorded at its terminal node.
func (t *Trie) Contains(tokens []string) (string, bool) {
	node, ok := t.descend(tokens)
	if !ok || !node.Terminal {
		return "", false
	}
	return node.Payload, true
}

// HasPrefix reports whether any inserted sequence starts with the given
// token sequence.
func (t *Trie) HasPrefix(tokens []string) bool {
	_, ok := t.descend(tokens)
	return ok
}

// WalkPrefix returns the payloads of all inserted sequences that start with
// the given token prefix, in depth-first order. An empty prefix walks the
// entire trie.
func (t *Trie) WalkPrefix(tokens []string) []string {
	node, ok := t.descend(tokens)
	if !ok {
		return nil
	}

	var payloads []string
	var walk func(n *KnowledgeNode)
	walk = func(n *KnowledgeNode) {
		if n.Terminal {
			payloads = append(payloads, n.Payload)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(node)

	return payloads
}

func (t *Trie) descend(tokens []string) (*KnowledgeNode, bool) {
	current := t.root
	for _, token := range tokens {
		child, ok := current.Children[token]
		if !ok {
			return nil, false
		}
		current = child
	}
	return current, true
}

// TrieMetrics describes the structural shape of a trie.
type TrieMetrics struct {
	TotalNodes      int
	MaxDepth        int
	TerminalNodes   int
	BranchingFactor float64
}

// Metrics traverses the trie and computes structural metrics.
// The root node counts toward TotalNodes, matching a plain recursive count.
func (t *Trie) Metrics() TrieMetrics {
	var traverse func(n *KnowledgeNode, depth int) (nodes, maxDepth, terminals int)
	traverse = func(n *KnowledgeNode, depth int) (int, int, int) {
		nodes := 1
		maxDepth := depth
		terminals := 0
		if n.Terminal {
			terminals = 1
		}

		for _, child := range n.Children {
			childNodes, childDepth, childTerminals := traverse(child, depth+1)
			nodes += childNodes
			if childDepth > maxDepth {
				maxDepth = childDepth
			}
			terminals += childTerminals
		}

		return nodes, maxDepth, terminals
	}

	nodes, maxDepth, terminals := traverse(t.root, 0)

	metrics := TrieMetrics{
		TotalNodes:    nodes,
		MaxDepth:      maxDepth,
		TerminalNodes: terminals,
	}
	if maxDepth > 0 {
		metrics.BranchingFactor = float64(nodes) / float64(maxDepth)
	}

	return metrics
}
