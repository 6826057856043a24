package tracer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttributeHelpers(t *testing.T) {
	assert.Equal(t, Attribute{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Attribute{Key: "k", Value: true}, Bool("k", true))
	assert.Equal(t, Attribute{Key: "k", Value: int64(7)}, Int64("k", 7))
	assert.Equal(t, Attribute{Key: "k", Value: int64(1500)}, Duration("k", 1500*time.Millisecond))
}

func TestNoopTracer(t *testing.T) {
	tr := NewNoop()
	ctx := context.Background()

	gotCtx, span := tr.Start(ctx, SpanCertifyStudent, String(AttrBadgeID, "2"))
	assert.Equal(t, ctx, gotCtx, "noop tracer must not modify the context")

	// None of these should panic.
	span.SetAttributes(Bool("ok", true))
	span.AddEvent("event")
	span.End(nil)
	span.End(assert.AnError)
}

func TestToOTelAttributesSkipsUnsupportedTypes(t *testing.T) {
	attrs := toOTelAttributes([]Attribute{
		{Key: "s", Value: "str"},
		{Key: "b", Value: true},
		{Key: "i", Value: 42},
		{Key: "x", Value: struct{}{}},
	})
	assert.Len(t, attrs, 3)
}
