package branching

import (
	"sync"
	"testing"

	"b3flip/internal/inputs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertLinksPredecessors(t *testing.T) {
	tree := NewTree()
	root := tree.Insert(nil, nil)
	child := tree.Insert(root, inputs.New([]byte{1}, []inputs.Type{inputs.Uint8}))

	assert.Nil(t, root.Predecessor())
	assert.Same(t, root, child.Predecessor())
	assert.Equal(t, 0, root.ID())
	assert.Equal(t, 1, child.ID())
	assert.Equal(t, 2, tree.Len())
}

func TestLeaves(t *testing.T) {
	tree := NewTree()
	root := tree.Insert(nil, nil)
	a := tree.Insert(root, nil)
	b := tree.Insert(root, nil)
	c := tree.Insert(a, nil)

	leaves := tree.Leaves()
	require.Len(t, leaves, 2)
	assert.Same(t, b, leaves[0])
	assert.Same(t, c, leaves[1])
}

func TestGet(t *testing.T) {
	tree := NewTree()
	root := tree.Insert(nil, nil)

	got, ok := tree.Get(0)
	require.True(t, ok)
	assert.Same(t, root, got)

	_, ok = tree.Get(1)
	assert.False(t, ok)
	_, ok = tree.Get(-1)
	assert.False(t, ok)
}

func TestSetBestInput(t *testing.T) {
	tree := NewTree()
	node := tree.Insert(nil, nil)
	assert.Nil(t, node.BestInput())

	input := inputs.New([]byte{0xff}, []inputs.Type{inputs.Untyped8})
	node.SetBestInput(input)
	assert.Same(t, input, node.BestInput())
}

func TestNodeID(t *testing.T) {
	tree := NewTree()
	tree.Insert(nil, nil)
	node := tree.Insert(nil, nil)

	id, ok := NodeID(node)
	require.True(t, ok)
	assert.Equal(t, 1, id)

	_, ok = NodeID(nil)
	assert.False(t, ok)
}

func TestConcurrentInsertAndLeaves(t *testing.T) {
	tree := NewTree()
	root := tree.Insert(nil, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 100 {
				tree.Insert(root, nil)
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				_ = tree.Leaves()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 801, tree.Len())
	assert.Len(t, tree.Leaves(), 800)
}
