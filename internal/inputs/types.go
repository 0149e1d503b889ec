package inputs

import (
	"errors"
	"fmt"
	"strings"
)

// Type tags how a consecutive range of input bytes is read by the target.
type Type uint8

const (
	Boolean Type = iota
	Uint8
	Sint8
	Untyped8
	Uint16
	Sint16
	Untyped16
	Uint32
	Sint32
	Untyped32
	Uint64
	Sint64
	Untyped64
	Float32
	Float64
)

var ErrUnknownType = errors.New("unknown input type")

var typeNames = map[Type]string{
	Boolean:   "bool",
	Uint8:     "uint8",
	Sint8:     "sint8",
	Untyped8:  "untyped8",
	Uint16:    "uint16",
	Sint16:    "sint16",
	Untyped16: "untyped16",
	Uint32:    "uint32",
	Sint32:    "sint32",
	Untyped32: "untyped32",
	Uint64:    "uint64",
	Sint64:    "sint64",
	Untyped64: "untyped64",
	Float32:   "float32",
	Float64:   "float64",
}

// aliases accepted by ParseType on top of the canonical names
var typeAliases = map[string]Type{
	"boolean": Boolean,
	"int8":    Sint8,
	"int16":   Sint16,
	"int32":   Sint32,
	"int64":   Sint64,
	"byte":    Untyped8,
	"float":   Float32,
	"double":  Float64,
}

// NumBytes returns the number of input bytes a value of the type occupies.
// A boolean is read as a whole byte.
func (t Type) NumBytes() int {
	switch t {
	case Boolean, Uint8, Sint8, Untyped8:
		return 1
	case Uint16, Sint16, Untyped16:
		return 2
	case Uint32, Sint32, Untyped32, Float32:
		return 4
	case Uint64, Sint64, Untyped64, Float64:
		return 8
	default:
		panic(fmt.Sprintf("inputs: no width for type %d", uint8(t)))
	}
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// ParseType maps a manifest type name to its tag.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	if t, ok := typeAliases[name]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// ParseTypes parses a list of type names, stopping at the first unknown one.
func ParseTypes(names []string) ([]Type, error) {
	types := make([]Type, 0, len(names))
	for _, name := range names {
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// TypeNames is the inverse of ParseTypes.
func TypeNames(types []Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
