package progress

import (
	"testing"

	"b3flip/internal/branching"
	"b3flip/internal/inputs"

	"github.com/stretchr/testify/assert"
)

type event struct {
	name string
	node branching.Node
}

type fakeRecorder struct {
	events *[]event
	name   string
}

func (f *fakeRecorder) OnBitflipStart(node branching.Node, kind StartKind) {
	*f.events = append(*f.events, event{f.name + ".start", node})
}

func (f *fakeRecorder) OnBitflipStop(kind StopKind) {
	*f.events = append(*f.events, event{f.name + ".stop", nil})
}

func testNode() *branching.Branching {
	tree := branching.NewTree()
	root := tree.Insert(nil, nil)
	return tree.Insert(root, inputs.New([]byte{0xab, 0xcd}, []inputs.Type{inputs.Uint8, inputs.Boolean}))
}

func TestMultiFansOutInOrder(t *testing.T) {
	var events []event
	var missing *fakeRecorder
	r := Multi(&fakeRecorder{&events, "a"}, nil, missing, &fakeRecorder{&events, "b"})

	node := testNode()
	r.OnBitflipStart(node, StartRegular)
	r.OnBitflipStop(StopRegular)

	assert.Equal(t, []event{
		{"a.start", node},
		{"b.start", node},
		{"a.stop", nil},
		{"b.stop", nil},
	}, events)
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "regular", StartRegular.String())
	assert.Equal(t, "regular", StopRegular.String())
	assert.Equal(t, "unknown", StartKind(42).String())
	assert.Equal(t, "unknown", StopKind(42).String())
}

func TestTrackerAssignsSessionIDs(t *testing.T) {
	tracker := NewTracker()
	assert.Empty(t, tracker.SessionID())

	tracker.OnBitflipStart(nil, StartRegular)
	first := tracker.SessionID()
	assert.NotEmpty(t, first)
	assert.True(t, tracker.Active())

	tracker.OnBitflipStop(StopRegular)
	assert.False(t, tracker.Active())
	assert.Equal(t, first, tracker.SessionID())

	tracker.OnBitflipStart(nil, StartRegular)
	assert.NotEqual(t, first, tracker.SessionID())
	assert.Equal(t, 2, tracker.Started())
}

func TestNodeInfo(t *testing.T) {
	nodeID, bits, types := nodeInfo(testNode())
	if assert.NotNil(t, nodeID) {
		assert.Equal(t, 1, *nodeID)
	}
	assert.Equal(t, 16, bits)
	assert.Equal(t, 2, types)

	nodeID, bits, types = nodeInfo(nil)
	assert.Nil(t, nodeID)
	assert.Zero(t, bits)
	assert.Zero(t, types)
}
