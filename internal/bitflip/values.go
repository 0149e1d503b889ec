package bitflip

import (
	"encoding/binary"
	"fmt"
	"math"

	"b3flip/internal/inputs"
)

// valueTable holds the boundary values substituted for one type, as raw bit
// patterns of the given byte width.
type valueTable struct {
	width  int
	values []uint64
}

// bytes returns the native (little-endian) byte representation of values[i].
func (t valueTable) bytes(i int) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, t.values[i])
	return buf[:t.width]
}

var (
	sint8Values  = valueTable{1, []uint64{0x80, 0x7f}}
	uint8Values  = valueTable{1, []uint64{math.MaxUint8}}
	sint16Values = valueTable{2, []uint64{0x8000, 0x7fff}}
	uint16Values = valueTable{2, []uint64{math.MaxUint16}}
	sint32Values = valueTable{4, []uint64{0x80000000, 0x7fffffff}}
	uint32Values = valueTable{4, []uint64{math.MaxUint32}}
	sint64Values = valueTable{8, []uint64{0x8000000000000000, 0x7fffffffffffffff}}
	uint64Values = valueTable{8, []uint64{math.MaxUint64}}

	float32Values = valueTable{4, []uint64{
		0xff800000, // -inf
		0xff7fffff, // lowest
		0x80800000, // -min normal
		0xb4000000, // -epsilon
		0x34000000, // epsilon
		0x00800000, // min normal
		0x7f7fffff, // max
		0x7f800000, // +inf
		0x7fc00000, // quiet NaN
		0x7fa00000, // signaling NaN
	}}
	float64Values = valueTable{8, []uint64{
		0xfff0000000000000,
		0xffefffffffffffff,
		0x8010000000000000,
		0xbcb0000000000000,
		0x3cb0000000000000,
		0x0010000000000000,
		0x7fefffffffffffff,
		0x7ff0000000000000,
		0x7ff8000000000000,
		0x7ff4000000000000,
	}}

	// booleans are fully covered by the bit flips
	booleanValues = valueTable{1, nil}
)

// valuesOf returns the boundary table of a type. Every type tag has an entry;
// an unknown tag is a programming error.
func valuesOf(t inputs.Type) valueTable {
	switch t {
	case inputs.Boolean:
		return booleanValues
	case inputs.Sint8:
		return sint8Values
	case inputs.Uint8, inputs.Untyped8:
		return uint8Values
	case inputs.Sint16:
		return sint16Values
	case inputs.Uint16, inputs.Untyped16:
		return uint16Values
	case inputs.Sint32:
		return sint32Values
	case inputs.Uint32, inputs.Untyped32:
		return uint32Values
	case inputs.Sint64:
		return sint64Values
	case inputs.Uint64, inputs.Untyped64:
		return uint64Values
	case inputs.Float32:
		return float32Values
	case inputs.Float64:
		return float64Values
	default:
		panic(fmt.Sprintf("bitflip: unreachable input type %d", uint8(t)))
	}
}

// NumTypedValues returns how many boundary values the typed phase produces for t.
func NumTypedValues(t inputs.Type) int {
	return len(valuesOf(t).values)
}
