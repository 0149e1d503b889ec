package inputs

import (
	"github.com/bits-and-blooms/bitset"
)

// TypedBits is an input as the target consumed it: the raw bits plus the
// types the target read them as, in reading order.
type TypedBits struct {
	Bits  *bitset.BitSet
	Types []Type
}

// New builds a TypedBits from raw bytes.
func New(data []byte, types []Type) *TypedBits {
	return &TypedBits{
		Bits:  BytesToBits(data),
		Types: types,
	}
}

// NumBits returns the number of bits of the input.
func (b *TypedBits) NumBits() uint {
	if b == nil || b.Bits == nil {
		return 0
	}
	return b.Bits.Len()
}

// Empty reports whether the input carries no bits at all.
func (b *TypedBits) Empty() bool {
	return b.NumBits() == 0
}

// TypeStartBitIndex returns the first bit read for the type at index i.
func (b *TypedBits) TypeStartBitIndex(i int) uint {
	var offset uint
	for _, t := range b.Types[:i] {
		offset += 8 * uint(t.NumBytes())
	}
	return offset
}

// TypeEndBitIndex returns the bit following the last one read for the type at index i.
func (b *TypedBits) TypeEndBitIndex(i int) uint {
	return b.TypeStartBitIndex(i) + 8*uint(b.Types[i].NumBytes())
}

// Bytes packs the bits back into bytes. A trailing partial byte is padded with zeros.
func (b *TypedBits) Bytes() []byte {
	return BitsToBytes(b.Bits)
}

// Clone returns a deep copy; the clone has its own identity.
func (b *TypedBits) Clone() *TypedBits {
	types := make([]Type, len(b.Types))
	copy(types, b.Types)
	return &TypedBits{
		Bits:  b.Bits.Clone(),
		Types: types,
	}
}

// BytesToBits expands bytes into bits, most significant bit of each byte first.
func BytesToBits(data []byte) *bitset.BitSet {
	bits := bitset.New(uint(len(data)) * 8)
	for i, c := range data {
		for j := uint(0); j < 8; j++ {
			if c&(0x80>>j) != 0 {
				bits.Set(uint(i)*8 + j)
			}
		}
	}
	return bits
}

// BitsToBytes is the inverse of BytesToBits.
func BitsToBytes(bits *bitset.BitSet) []byte {
	if bits == nil {
		return nil
	}
	n := bits.Len()
	data := make([]byte, (n+7)/8)
	for i, ok := bits.NextSet(0); ok && i < n; i, ok = bits.NextSet(i + 1) {
		data[i/8] |= 0x80 >> (i % 8)
	}
	return data
}

// WriteBytes overwrites the bits starting at offset with the bits of data,
// using the same bit order as BytesToBits.
func WriteBytes(bits *bitset.BitSet, offset uint, data []byte) {
	for i, c := range data {
		for j := uint(0); j < 8; j++ {
			bits.SetTo(offset+uint(i)*8+j, c&(0x80>>j) != 0)
		}
	}
}
