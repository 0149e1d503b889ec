package seeds

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"b3flip/internal/inputs"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingName   = errors.New("branching without name")
	ErrDuplicateName = errors.New("duplicate branching name")
	ErrUnknownParent = errors.New("unknown parent branching")
	ErrBadInput      = errors.New("invalid input")
)

// Manifest describes a chain of branchings and the best inputs observed for them.
//
//	branchings:
//	  - name: root
//	    input: { types: [uint16, bool], hex: "ffff01" }
//	  - name: left
//	    parent: root
type Manifest struct {
	Branchings []BranchingSpec `yaml:"branchings"`
}

type BranchingSpec struct {
	Name   string     `yaml:"name"`
	Parent string     `yaml:"parent,omitempty"`
	Input  *InputSpec `yaml:"input,omitempty"`
}

type InputSpec struct {
	Types []string `yaml:"types"`
	Hex   string   `yaml:"hex"`
	// Bits truncates the input to fewer bits than the hex data holds.
	Bits *uint `yaml:"bits,omitempty"`
}

func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &manifest, nil
}

// Build decodes the input into a typed bit buffer.
func (s *InputSpec) Build() (*inputs.TypedBits, error) {
	data, err := hex.DecodeString(strings.Join(strings.Fields(s.Hex), ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	types, err := inputs.ParseTypes(s.Types)
	if err != nil {
		return nil, err
	}
	input := inputs.New(data, types)
	if s.Bits != nil {
		if *s.Bits > input.NumBits() {
			return nil, fmt.Errorf("%w: %d bits requested, %d available", ErrBadInput, *s.Bits, input.NumBits())
		}
		if *s.Bits == 0 {
			return inputs.New(nil, types), nil
		}
		input.Bits.Shrink(*s.Bits - 1)
	}
	return input, nil
}
