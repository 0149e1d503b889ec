package bitflip

import (
	"math/rand"
	"time"

	"b3flip/internal/branching"
	"b3flip/internal/inputs"
	"b3flip/internal/progress"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"
)

type state int

const (
	ready state = iota
	busy
)

// Statistics are accumulated over the whole lifetime of an Analysis.
type Statistics struct {
	StartCalls      int
	GeneratedInputs int
	MaxBits         uint
}

// Analysis enumerates, for one seed input at a time, every single bit flip
// followed by every boundary value of every typed field.
//
// An Analysis is not safe for concurrent use.
type Analysis struct {
	state state

	node      branching.Node
	input     *inputs.TypedBits
	bitIndex  uint
	typeIndex int
	// index into the value table of the type at typeIndex
	valueIndex int

	probedStart uint
	probedEnd   uint

	processed map[*inputs.TypedBits]struct{}
	rnd       *rand.Rand
	recorder  progress.Recorder
	logger    *zap.Logger

	statistics Statistics
}

type Option func(*Analysis)

// WithRand sets the generator used to pick the first leaf in Start.
func WithRand(rnd *rand.Rand) Option {
	return func(a *Analysis) { a.rnd = rnd }
}

// WithSeed seeds the generator used to pick the first leaf in Start.
func WithSeed(seed int64) Option {
	return func(a *Analysis) { a.rnd = rand.New(rand.NewSource(seed)) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Analysis) { a.logger = logger }
}

func NewAnalysis(recorder progress.Recorder, opts ...Option) *Analysis {
	if recorder == nil {
		recorder = progress.Nop{}
	}
	a := &Analysis{
		state:     ready,
		processed: make(map[*inputs.TypedBits]struct{}),
		recorder:  recorder,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rnd == nil {
		a.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return a
}

func (a *Analysis) IsReady() bool { return a.state == ready }
func (a *Analysis) IsBusy() bool  { return a.state == busy }

func (a *Analysis) Statistics() Statistics { return a.statistics }

// ProbedRange returns the [start, end) bit range touched by the last generated input.
func (a *Analysis) ProbedRange() (uint, uint) { return a.probedStart, a.probedEnd }

// TargetNode returns the node whose input is being mutated; nil while ready.
func (a *Analysis) TargetNode() branching.Node {
	if !a.IsBusy() {
		return nil
	}
	return a.node
}

// TargetInput returns the input being mutated; nil while ready.
func (a *Analysis) TargetInput() *inputs.TypedBits {
	if !a.IsBusy() {
		return nil
	}
	return a.input
}

// Start picks a seed among the given leaves and their predecessors and begins
// a session over it. It returns false when every reachable input is empty or
// has already been analysed; the analysis then stays ready.
//
// Start panics when called while busy or with no leaves.
func (a *Analysis) Start(leaves []branching.Node) bool {
	if !a.IsReady() {
		panic("bitflip: Start called while busy")
	}
	if len(leaves) == 0 {
		panic("bitflip: Start called with no leaf branchings")
	}

	node, input := a.pickSeed(leaves)
	if input == nil {
		a.logger.Debug("no unprocessed input reachable from leaves", zap.Int("leaves", len(leaves)))
		return false
	}

	a.state = busy
	a.node = node
	a.input = input
	a.processed[input] = struct{}{}

	a.bitIndex = 0
	a.typeIndex = 0
	a.valueIndex = 0

	a.statistics.StartCalls++
	a.statistics.MaxBits = max(a.statistics.MaxBits, input.NumBits())

	a.logger.Debug("bitflip session started",
		zap.Uint("bits", input.NumBits()),
		zap.Int("types", len(input.Types)),
	)
	a.recorder.OnBitflipStart(node, progress.StartRegular)
	return true
}

// pickSeed walks the leaves from a random one, wrapping around, and for each
// leaf its predecessors up to the root. The first node with a non-empty
// unprocessed input wins.
func (a *Analysis) pickSeed(leaves []branching.Node) (branching.Node, *inputs.TypedBits) {
	first := a.rnd.Intn(len(leaves))
	i := first
	for {
		for node := leaves[i]; node != nil; node = node.Predecessor() {
			input := node.BestInput()
			if input.Empty() {
				continue
			}
			if _, done := a.processed[input]; done {
				continue
			}
			return node, input
		}

		i++
		if i == len(leaves) {
			i = 0
		}
		if i == first {
			return nil, nil
		}
	}
}

// Stop ends the current session. It does nothing when ready.
func (a *Analysis) Stop() {
	if !a.IsBusy() {
		return
	}
	a.state = ready

	a.logger.Debug("bitflip session stopped", zap.Int("generated", a.statistics.GeneratedInputs))
	a.recorder.OnBitflipStop(progress.StopRegular)
}

// GenerateNextInput writes the next mutation of the target input into out.
// It returns false, and stops the session, once every mutation was produced.
func (a *Analysis) GenerateNextInput(out *bitset.BitSet) bool {
	if !a.IsBusy() {
		return false
	}

	if a.bitIndex < a.input.NumBits() {
		a.input.Bits.CopyFull(out)
		out.Flip(a.bitIndex)

		a.probedStart = 8 * (a.bitIndex / 8)
		a.probedEnd = a.probedStart + 8

		a.bitIndex++
	} else if !a.generateNextTypedValue(out) {
		a.Stop()
		return false
	}

	a.statistics.GeneratedInputs++
	return true
}

func (a *Analysis) isTypeIndexValid() bool {
	return a.input.TypeEndBitIndex(a.typeIndex) <= a.input.NumBits()
}

func (a *Analysis) generateNextTypedValue(out *bitset.BitSet) bool {
	for ; a.typeIndex < len(a.input.Types); a.typeIndex++ {
		if !a.isTypeIndexValid() {
			continue
		}
		if a.writeValue(out, valuesOf(a.input.Types[a.typeIndex])) {
			return true
		}
	}
	return false
}

// writeValue writes the value at valueIndex into the field at typeIndex. Once
// the table is exhausted it rewinds valueIndex and returns false.
func (a *Analysis) writeValue(out *bitset.BitSet, table valueTable) bool {
	if a.valueIndex >= len(table.values) {
		a.valueIndex = 0
		return false
	}

	a.probedStart = a.input.TypeStartBitIndex(a.typeIndex)
	a.probedEnd = a.probedStart + 8*uint(table.width)

	a.input.Bits.CopyFull(out)
	inputs.WriteBytes(out, a.probedStart, table.bytes(a.valueIndex))

	a.valueIndex++
	return true
}
