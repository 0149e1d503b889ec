package branching

import (
	"sync"

	"b3flip/internal/inputs"
)

// Node is the read-only view of a coverage graph node the mutation engine relies on.
type Node interface {
	// Predecessor returns the parent node, or nil for a root.
	Predecessor() Node
	// BestInput returns the most promising input observed for the node, or nil.
	BestInput() *inputs.TypedBits
}

// Branching is a node of the coverage tree. Nodes are owned by their Tree and
// addressed by a stable ID.
type Branching struct {
	id        int
	parent    *Branching
	children  []*Branching
	bestInput *inputs.TypedBits

	tree *Tree
}

func (b *Branching) ID() int { return b.id }

func (b *Branching) Predecessor() Node {
	if b.parent == nil {
		return nil
	}
	return b.parent
}

func (b *Branching) BestInput() *inputs.TypedBits {
	b.tree.mu.RLock()
	defer b.tree.mu.RUnlock()
	return b.bestInput
}

// SetBestInput replaces the best known input of the node.
func (b *Branching) SetBestInput(input *inputs.TypedBits) {
	b.tree.mu.Lock()
	defer b.tree.mu.Unlock()
	b.bestInput = input
}

// Tree is an arena of branchings. It is safe for concurrent use.
type Tree struct {
	mu    sync.RWMutex
	nodes []*Branching
}

func NewTree() *Tree {
	return &Tree{}
}

// Insert adds a node below parent (nil for a new root) and returns it.
func (t *Tree) Insert(parent *Branching, input *inputs.TypedBits) *Branching {
	t.mu.Lock()
	defer t.mu.Unlock()

	node := &Branching{
		id:        len(t.nodes),
		parent:    parent,
		bestInput: input,
		tree:      t,
	}
	if parent != nil {
		parent.children = append(parent.children, node)
	}
	t.nodes = append(t.nodes, node)
	return node
}

// Get returns the node with the given ID.
func (t *Tree) Get(id int) (*Branching, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id < 0 || id >= len(t.nodes) {
		return nil, false
	}
	return t.nodes[id], true
}

func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// Leaves returns the nodes without children, ordered by ID.
func (t *Tree) Leaves() []Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	leaves := make([]Node, 0)
	for _, node := range t.nodes {
		if len(node.children) == 0 {
			leaves = append(leaves, node)
		}
	}
	return leaves
}

// NodeID returns the ID of node when it comes from a Tree.
func NodeID(node Node) (int, bool) {
	if b, ok := node.(*Branching); ok && b != nil {
		return b.id, true
	}
	return 0, false
}
