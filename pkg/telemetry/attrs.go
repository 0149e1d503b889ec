package telemetry

import (
	"fmt"
	"maps"

	"go.opentelemetry.io/otel/attribute"
)

type SpanAttributes struct {
	ActionCategory string

	TargetHarness   optional[string] // crs.target.harness
	bitflipNode     optional[int]    // fuzz.bitflip.node
	bitflipBits     optional[int]    // fuzz.bitflip.bits
	bitflipTypes    optional[int]    // fuzz.bitflip.types
	bitflipSession  optional[string] // fuzz.bitflip.session
	bitflipProduced optional[int]    // fuzz.bitflip.generated

	extraAttributes map[string]any
}

func NewSpanAttributes(actionCategory ActionCategory) *SpanAttributes {
	return &SpanAttributes{
		ActionCategory:  actionCategory.String(),
		extraAttributes: make(map[string]any),
	}
}

// returns an empty SpanAttributes instance with no action category.
// this is useful for creating a SpanAttributes instance that can be populated later.
func EmptySpanAttributes() *SpanAttributes {
	return &SpanAttributes{
		extraAttributes: make(map[string]any),
	}
}

// Merge updates the current SpanAttributes with values from another SpanAttributes.
// Optional values are only taken from other when they are unset here; the
// action category is always taken when other has one.
func (o *SpanAttributes) Merge(other *SpanAttributes) {
	if other == nil {
		return
	}

	if other.ActionCategory != "" {
		o.ActionCategory = other.ActionCategory
	}

	mergeOptional(&o.TargetHarness, &other.TargetHarness)
	mergeOptional(&o.bitflipNode, &other.bitflipNode)
	mergeOptional(&o.bitflipBits, &other.bitflipBits)
	mergeOptional(&o.bitflipTypes, &other.bitflipTypes)
	mergeOptional(&o.bitflipSession, &other.bitflipSession)
	mergeOptional(&o.bitflipProduced, &other.bitflipProduced)

	if o.extraAttributes == nil {
		o.extraAttributes = make(map[string]any)
	}
	for k, v := range other.extraAttributes {
		if _, exists := o.extraAttributes[k]; !exists {
			o.extraAttributes[k] = v
		}
	}
}

func (o *SpanAttributes) WithTargetHarness(val string) *SpanAttributes {
	o.TargetHarness.Set(val)
	return o
}

func (o *SpanAttributes) WithBitflipNode(val int) *SpanAttributes {
	o.bitflipNode.Set(val)
	return o
}

func (o *SpanAttributes) WithBitflipBits(val int) *SpanAttributes {
	o.bitflipBits.Set(val)
	return o
}

func (o *SpanAttributes) WithBitflipTypes(val int) *SpanAttributes {
	o.bitflipTypes.Set(val)
	return o
}

func (o *SpanAttributes) WithBitflipSession(val string) *SpanAttributes {
	o.bitflipSession.Set(val)
	return o
}

func (o *SpanAttributes) WithBitflipGenerated(val int) *SpanAttributes {
	o.bitflipProduced.Set(val)
	return o
}

func (o *SpanAttributes) WithExtraAttribute(key string, val any) *SpanAttributes {
	if o.extraAttributes == nil {
		o.extraAttributes = make(map[string]any)
	}
	o.extraAttributes[key] = val
	return o
}

func (o *SpanAttributes) WithExtraAttributes(attrs map[string]any) *SpanAttributes {
	if o.extraAttributes == nil {
		o.extraAttributes = make(map[string]any)
	}
	maps.Copy(o.extraAttributes, attrs)
	return o
}

func (o SpanAttributes) Attributes() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if o.ActionCategory != "" {
		attrs = append(attrs, attribute.String("crs.action.category", o.ActionCategory))
	}
	if o.TargetHarness.set {
		attrs = append(attrs, attribute.String("crs.target.harness", o.TargetHarness.val))
	}
	if o.bitflipNode.set {
		attrs = append(attrs, attribute.Int("fuzz.bitflip.node", o.bitflipNode.val))
	}
	if o.bitflipBits.set {
		attrs = append(attrs, attribute.Int("fuzz.bitflip.bits", o.bitflipBits.val))
	}
	if o.bitflipTypes.set {
		attrs = append(attrs, attribute.Int("fuzz.bitflip.types", o.bitflipTypes.val))
	}
	if o.bitflipSession.set {
		attrs = append(attrs, attribute.String("fuzz.bitflip.session", o.bitflipSession.val))
	}
	if o.bitflipProduced.set {
		attrs = append(attrs, attribute.Int("fuzz.bitflip.generated", o.bitflipProduced.val))
	}

	for k, v := range o.extraAttributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}

	return attrs
}

type EventAttributes []attribute.KeyValue

func NewEventAttributes(attributes map[string]string) EventAttributes {
	attrs := make(EventAttributes, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}

type optional[T any] struct {
	val T
	set bool
}

func (o *optional[T]) Set(val T) { o.val = val; o.set = true }

func mergeOptional[T any](target, source *optional[T]) {
	if !target.set && source.set {
		target.val = source.val
		target.set = true
	}
}
