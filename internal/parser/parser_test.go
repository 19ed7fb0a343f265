package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tdgen/internal/ir"
	"github.com/roach88/tdgen/internal/lexer"
)

func mustParse(t *testing.T, src string) []ir.Object {
	t.Helper()
	objs, err := Parse("test.td", src)
	require.NoError(t, err)
	return objs
}

func TestParse_ClassWithArgsAndBases(t *testing.T) {
	objs := mustParse(t, `class LLVMMatchType<int num, string s = "x"> : LLVMType<OtherVT>, Base;`)
	require.Len(t, objs, 1)

	cls, ok := objs[0].(*ir.ClassDecl)
	require.True(t, ok)
	assert.Equal(t, "LLVMMatchType", cls.Name)
	assert.False(t, cls.Multi)

	require.Len(t, cls.Args, 2)
	assert.Equal(t, "int", cls.Args[0].Type.Name)
	assert.Equal(t, "num", cls.Args[0].Name)
	assert.Nil(t, cls.Args[0].Default)
	assert.Equal(t, ir.StringValue("x"), cls.Args[1].Default)

	require.Len(t, cls.Bases, 2)
	assert.Equal(t, "LLVMType<OtherVT>", cls.Bases[0].String())
	assert.Equal(t, "Base", cls.Bases[1].String())
	assert.Equal(t, 1, cls.Pos.Line)
}

func TestParse_ClassTerminators(t *testing.T) {
	objs := mustParse(t, `
class A;
class B {}
multiclass C<int n> { def _x : A; }
class D : A { int field = 3; }
`)
	require.Len(t, objs, 4)
	for _, obj := range objs {
		_, ok := obj.(*ir.ClassDecl)
		assert.True(t, ok)
	}
	assert.True(t, objs[2].(*ir.ClassDecl).Multi)
	assert.Empty(t, objs[1].(*ir.ClassDecl).Bases)
	assert.Equal(t, "A", objs[3].(*ir.ClassDecl).Bases[0].Name)
}

func TestParse_ClassTemplateTypeWithArgs(t *testing.T) {
	objs := mustParse(t, `class I<list<LLVMType> ret_types, bits<8> mask = 0xff>;`)
	cls := objs[0].(*ir.ClassDecl)
	require.Len(t, cls.Args, 2)
	assert.Equal(t, "list<LLVMType>", cls.Args[0].Type.String())
	assert.Equal(t, "bits<8>", cls.Args[1].Type.String())
	assert.Equal(t, ir.IntValue(255), cls.Args[1].Default)
}

func TestParse_RecordDefinition(t *testing.T) {
	objs := mustParse(t, `def int_foo : Intrinsic<[llvm_i32_ty], [llvm_anyint_ty], [IntrNoMem]>;`)
	require.Len(t, objs, 1)

	rec, ok := objs[0].(*ir.RecordDef)
	require.True(t, ok)
	assert.Equal(t, "int_foo", rec.Name)
	require.Len(t, rec.Bases, 1)

	base := rec.Bases[0]
	assert.Equal(t, "Intrinsic", base.Name)
	require.Len(t, base.Args, 3)
	assert.Equal(t, ir.ListValue{ir.Ref("llvm_i32_ty")}, base.Args[0])
	assert.Equal(t, ir.ListValue{ir.Ref("llvm_anyint_ty")}, base.Args[1])
}

func TestParse_RecordWithBodyAndNoTerminator(t *testing.T) {
	objs := mustParse(t, `
defm int_x : M<"a">;
def llvm_i8_ty : LLVMType<i8> { let isAny = 1; }
def plain
def last;
`)
	require.Len(t, objs, 4)
	assert.True(t, objs[0].(*ir.RecordDef).Multi)
	assert.Equal(t, "llvm_i8_ty", objs[1].(*ir.RecordDef).Name)
	assert.Equal(t, "plain", objs[2].(*ir.RecordDef).Name)
	assert.Empty(t, objs[2].(*ir.RecordDef).Bases)
	assert.Equal(t, "last", objs[3].(*ir.RecordDef).Name)
}

func TestParse_Values(t *testing.T) {
	objs := mustParse(t, `def r : C<1, -2, "s", [], [a, b<3>], !strconcat("x", "y"), !strconcat("p", n)>;`)
	args := objs[0].(*ir.RecordDef).Bases[0].Args
	require.Len(t, args, 7)

	assert.Equal(t, ir.IntValue(1), args[0])
	assert.Equal(t, ir.IntValue(-2), args[1])
	assert.Equal(t, ir.StringValue("s"), args[2])
	assert.Equal(t, ir.ListValue{}, args[3])
	assert.Equal(t, "[a, b<3>]", ir.ValueString(args[4]))
	assert.Equal(t, ir.StringValue("xy"), args[5])

	concat, ok := args[6].(ir.ConcatValue)
	require.True(t, ok, "non-string operand keeps the concatenation symbolic")
	assert.Equal(t, `!strconcat("p", n)`, ir.ValueString(concat))
}

func TestParse_LetGroups(t *testing.T) {
	objs := mustParse(t, `
let TargetPrefix = "x86", Flags = [a, b] in {
  def int_x86_a : Intrinsic<[], []>;
  let Other = 1 in
  def int_x86_b : Intrinsic<[], []>;
}
let Solo = 0 in class K;
`)
	require.Len(t, objs, 2)

	outer := objs[0].(*ir.LetGroup)
	assert.Equal(t, []string{"TargetPrefix", "Flags"}, outer.Bindings)
	require.Len(t, outer.Objects, 2)
	inner := outer.Objects[1].(*ir.LetGroup)
	assert.Equal(t, []string{"Other"}, inner.Bindings)

	solo := objs[1].(*ir.LetGroup)
	require.Len(t, solo.Objects, 1)
	assert.Equal(t, "K", solo.Objects[0].(*ir.ClassDecl).Name)
}

func TestParse_Include(t *testing.T) {
	objs := mustParse(t, `include "llvm/IR/IntrinsicsX86.td"`)
	require.Len(t, objs, 1)
	inc := objs[0].(*ir.Include)
	assert.Equal(t, "llvm/IR/IntrinsicsX86.td", inc.Path)
}

func TestFlatten_DescendsIntoLetGroups(t *testing.T) {
	objs := mustParse(t, `
include "a.td"
class A;
let X = 1 in {
  class B : A;
  let Y = 2 in { def r1 : B; }
}
def r2 : A;
`)
	f := Flatten(objs)

	var classes, records []string
	for _, c := range f.Classes {
		classes = append(classes, c.Name)
	}
	for _, r := range f.Records {
		records = append(records, r.Name)
	}
	assert.Equal(t, []string{"A", "B"}, classes)
	assert.Equal(t, []string{"r1", "r2"}, records)
	require.Len(t, f.Includes, 1)

	var merged Forest
	merged.Merge(f)
	merged.Merge(Flatten(mustParse(t, `class C;`)))
	assert.Len(t, merged.Classes, 3)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code ErrorCode
		text string
	}{
		{"unexpected keyword", `field x;`, ErrCodeUnexpectedKeyword, "field"},
		{"missing class name", `class ;`, ErrCodeUnexpectedToken, "class name"},
		{"missing terminator at eof", `class A`, ErrCodeUnexpectedEOF, "';' or '{'"},
		{"missing base after colon", `def a : ;`, ErrCodeUnexpectedToken, "type name"},
		{"bad template arg", `class A<int> ;`, ErrCodeUnexpectedEOF, "template argument name"},
		{"missing comma in list", `def a : B<[x y]>;`, ErrCodeUnexpectedToken, "','"},
		{"unknown bang operator", `def a : B<!foo("x")>;`, ErrCodeUnknownOperator, "!foo"},
		{"let without in", `let A = 1 def x;`, ErrCodeUnexpectedToken, "'in'"},
		{"include needs string", `include foo`, ErrCodeUnexpectedToken, "include path"},
		{"value expected", `def a : B<;>;`, ErrCodeUnexpectedToken, "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.td", tt.src)
			require.Error(t, err)

			var pe *Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.code, pe.Code)
			assert.Contains(t, pe.Error(), tt.text)
		})
	}
}

func TestParse_ErrorCarriesOffendingToken(t *testing.T) {
	_, err := Parse("bad.td", "class A;\nclass 42;")
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, lexer.Int, pe.Token.Kind)
	assert.Equal(t, 2, pe.Token.Pos.Line)
	assert.Equal(t, 7, pe.Token.Pos.Col)
	assert.Contains(t, pe.Error(), "bad.td:2:7")
}

func TestParse_LexErrorsPassThrough(t *testing.T) {
	_, err := Parse("", `def a : B<[x>;`)
	require.Error(t, err)
	assert.True(t, lexer.IsUnbalanced(err))
}
