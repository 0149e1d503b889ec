package progress

import (
	"reflect"

	"b3flip/internal/branching"
)

type StartKind int

const (
	StartRegular StartKind = iota
)

func (k StartKind) String() string {
	switch k {
	case StartRegular:
		return "regular"
	default:
		return "unknown"
	}
}

type StopKind int

const (
	StopRegular StopKind = iota
)

func (k StopKind) String() string {
	switch k {
	case StopRegular:
		return "regular"
	default:
		return "unknown"
	}
}

// Recorder is notified when a bitflip session starts and stops.
// Implementations must not fail and must not block for long: they are called
// synchronously from the mutation loop.
type Recorder interface {
	OnBitflipStart(node branching.Node, kind StartKind)
	OnBitflipStop(kind StopKind)
}

// Nop is a Recorder that does nothing.
type Nop struct{}

func (Nop) OnBitflipStart(branching.Node, StartKind) {}
func (Nop) OnBitflipStop(StopKind)                   {}

type multiRecorder []Recorder

// Multi fans notifications out to every non-nil recorder, in order.
func Multi(recorders ...Recorder) Recorder {
	rs := make(multiRecorder, 0, len(recorders))
	for _, r := range recorders {
		if r == nil {
			continue
		}
		if v := reflect.ValueOf(r); v.Kind() == reflect.Ptr && v.IsNil() {
			continue // skip typed nil recorders
		}
		rs = append(rs, r)
	}
	return rs
}

func (m multiRecorder) OnBitflipStart(node branching.Node, kind StartKind) {
	for _, r := range m {
		r.OnBitflipStart(node, kind)
	}
}

func (m multiRecorder) OnBitflipStop(kind StopKind) {
	for _, r := range m {
		r.OnBitflipStop(kind)
	}
}
