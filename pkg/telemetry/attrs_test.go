package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestSpanAttributes(t *testing.T) {
	attrs := NewSpanAttributes(Fuzzing).
		WithBitflipNode(3).
		WithBitflipBits(64).
		WithBitflipSession("abc").
		WithExtraAttribute("phase", "typed").
		WithExtraAttribute("ratio", 0.5)

	m := attrMap(attrs.Attributes())
	assert.Equal(t, "fuzzing", m["crs.action.category"].AsString())
	assert.Equal(t, int64(3), m["fuzz.bitflip.node"].AsInt64())
	assert.Equal(t, int64(64), m["fuzz.bitflip.bits"].AsInt64())
	assert.Equal(t, "abc", m["fuzz.bitflip.session"].AsString())
	assert.Equal(t, "typed", m["phase"].AsString())
	assert.Equal(t, 0.5, m["ratio"].AsFloat64())
	assert.NotContains(t, m, "fuzz.bitflip.generated")
}

func TestMergeKeepsSetValues(t *testing.T) {
	base := EmptySpanAttributes().WithBitflipNode(1).WithExtraAttribute("k", "base")
	other := NewSpanAttributes(DynamicAnalysis).
		WithBitflipNode(2).
		WithBitflipGenerated(10).
		WithExtraAttribute("k", "other").
		WithExtraAttribute("new", true)

	base.Merge(other)
	base.Merge(nil)

	m := attrMap(base.Attributes())
	assert.Equal(t, "dynamic_analysis", m["crs.action.category"].AsString())
	assert.Equal(t, int64(1), m["fuzz.bitflip.node"].AsInt64())
	assert.Equal(t, int64(10), m["fuzz.bitflip.generated"].AsInt64())
	assert.Equal(t, "base", m["k"].AsString())
	assert.True(t, m["new"].AsBool())
}

func TestActionCategoryString(t *testing.T) {
	assert.Equal(t, "input_generation", InputGeneration.String())
	assert.Equal(t, "unknown", ActionCategory(42).String())
}
