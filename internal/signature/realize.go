package signature

import (
	"fmt"

	"github.com/roach88/tdgen/internal/ir"
)

// Widths an open scalar is realized at, in emission order.
var (
	IntWidths   = []int{8, 16, 32, 64}
	FloatWidths = []int{16, 32, 64, 80, 128}
)

// Realize lists the concrete choices for one declared type. Match types
// become Resolved placeholders that a row fills in later. Vectors are never
// expanded.
func Realize(t ir.Type) []ir.Type {
	switch v := t.(type) {
	case ir.Int:
		if v.Width != 0 {
			return []ir.Type{v}
		}
		out := make([]ir.Type, len(IntWidths))
		for i, w := range IntWidths {
			out[i] = ir.Int{Width: w}
		}
		return out

	case ir.Float:
		if v.Width != 0 {
			return []ir.Type{v}
		}
		out := make([]ir.Type, len(FloatWidths))
		for i, w := range FloatWidths {
			out[i] = ir.Float{Width: w}
		}
		return out

	case ir.Pointer:
		if v.Elem == nil {
			return []ir.Type{ir.Pointer{}}
		}
		inner := Realize(v.Elem)
		out := make([]ir.Type, len(inner))
		for i, e := range inner {
			out[i] = ir.Pointer{Elem: e}
		}
		return out

	case ir.Match:
		placeholder := ir.Resolved{Slot: v.Slot, Style: v.Style, Elem: v.Elem}
		switch v.Style {
		case ir.MatchElement:
			return []ir.Type{ir.Pointer{Elem: placeholder}}
		case ir.MatchVecOfPtrs:
			return []ir.Type{ir.Vector{Elem: ir.Pointer{Elem: placeholder}}}
		default:
			return []ir.Type{placeholder}
		}

	case ir.Void, ir.Any, ir.FixedPoint, ir.Vector, ir.Metadata, ir.TokenType,
		ir.VarArg, ir.Descriptor, ir.NativeVecScalar, ir.ArchType, ir.Resolved:
		return []ir.Type{t}

	default:
		panic(fmt.Sprintf("signature: unhandled type %T", t))
	}
}
