package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortNames(t *testing.T) {
	tests := []struct {
		ty   Type
		want string
	}{
		{Void{}, ""},
		{Any{}, ""},
		{Int{Width: 32}, "i32"},
		{Int{}, ""},
		{Float{Width: 16}, "f16"},
		{Float{}, ""},
		{FixedPoint{Width: 16}, "q16"},
		{Pointer{}, "p0"},
		{Pointer{Elem: Int{Width: 8}}, "p0"},
		{Pointer{Open: true}, ""},
		{Vector{Count: 4, Elem: Int{Width: 32}}, "v4i32"},
		{Vector{Elem: Int{Width: 32}}, ""},
		{Vector{Count: 4, Elem: Int{}}, ""},
		{Metadata{}, ""},
		{TokenType{}, ""},
		{VarArg{}, ""},
		{Descriptor{}, ""},
		{NativeVecScalar{}, ""},
		{ArchType{Arch: "x86", Name: "mmx"}, "x86mmx"},
		{Match{Slot: 1}, ""},
		{Resolved{Slot: 1}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.ty.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ty.ShortName())
		})
	}
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "anyint", Int{}.String())
	assert.Equal(t, "ptr(i8)", Pointer{Elem: Int{Width: 8}}.String())
	assert.Equal(t, "anyptr", Pointer{Open: true}.String())
	assert.Equal(t, "<4 x f32>", Vector{Count: 4, Elem: Float{Width: 32}}.String())
	assert.Equal(t, "<#2 x i1>", Vector{Tied: true, Slot: 2, Elem: Int{Width: 1}}.String())
	assert.Equal(t, "<? x any>", Vector{Elem: Any{}}.String())
	assert.Equal(t, "extend(0)", Match{Slot: 0, Style: MatchExtend}.String())
	assert.Equal(t, "samewidth(1, i1)", Match{Slot: 1, Style: MatchSameWidth, Elem: Int{Width: 1}}.String())
	assert.Equal(t, "resolved(3)", Resolved{Slot: 3}.String())
}

func TestEqualIsStructural(t *testing.T) {
	a := Pointer{Elem: Vector{Count: 4, Elem: Int{Width: 32}}}
	b := Pointer{Elem: Vector{Count: 4, Elem: Int{Width: 32}}}
	c := Pointer{Elem: Vector{Count: 8, Elem: Int{Width: 32}}}

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(Int{Width: 32}, Float{Width: 32}))
}

func TestIsOpen(t *testing.T) {
	assert.True(t, IsOpen(Int{}))
	assert.True(t, IsOpen(Float{}))
	assert.True(t, IsOpen(Any{}))
	assert.True(t, IsOpen(Pointer{Open: true}))
	assert.True(t, IsOpen(Pointer{Elem: Int{}}))
	assert.True(t, IsOpen(Vector{Elem: Int{Width: 8}}))

	assert.False(t, IsOpen(Int{Width: 8}))
	assert.False(t, IsOpen(Pointer{}))
	assert.False(t, IsOpen(Vector{Count: 2, Elem: Int{Width: 8}}))
	assert.False(t, IsOpen(Match{Slot: 0}))
	assert.False(t, IsOpen(Void{}))
}

func TestIntrinsicTypeListNormalizesVoid(t *testing.T) {
	in := &Intrinsic{Name: "int_nop", Params: []Type{Int{Width: 32}}}
	assert.Equal(t, []Type{Void{}, Int{Width: 32}}, in.TypeList())

	in.Returns = []Type{Float{Width: 32}}
	assert.Equal(t, []Type{Float{Width: 32}, Int{Width: 32}}, in.TypeList())
}
