package progress

import (
	"b3flip/internal/branching"

	"github.com/google/uuid"
)

// SessionIDs exposes the identifier of the current session.
type SessionIDs interface {
	SessionID() string
}

// Tracker assigns a fresh identifier to every session. It must come first in
// a Multi so the recorders after it observe the new identifier.
type Tracker struct {
	current string
	active  bool
	started int
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) OnBitflipStart(branching.Node, StartKind) {
	t.current = uuid.NewString()
	t.active = true
	t.started++
}

func (t *Tracker) OnBitflipStop(StopKind) {
	t.active = false
}

// SessionID returns the identifier of the running session, or of the last
// one once it stopped. It is empty before the first session.
func (t *Tracker) SessionID() string { return t.current }

func (t *Tracker) Active() bool { return t.active }

// Started returns how many sessions were started.
func (t *Tracker) Started() int { return t.started }

// nodeInfo extracts what recorders report about a session target.
func nodeInfo(node branching.Node) (nodeID *int, bits, types int) {
	if id, ok := branching.NodeID(node); ok {
		nodeID = &id
	}
	if node != nil {
		if input := node.BestInput(); input != nil {
			bits = int(input.NumBits())
			types = len(input.Types)
		}
	}
	return nodeID, bits, types
}

func sessionID(ids SessionIDs) string {
	if ids == nil {
		return uuid.NewString()
	}
	return ids.SessionID()
}
