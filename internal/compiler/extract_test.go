package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tdgen/internal/ir"
)

var testExtractorConfig = ExtractorConfig{
	IntrinsicClass: "Intrinsic",
	RecordPrefix:   "int_",
	Targets:        []string{"x86", "aarch64"},
	AliasClasses:   []string{"ClangBuiltin", "GCCBuiltin", "MSBuiltin"},
}

// extractAll runs the extraction pipeline over src and returns intrinsics
// and skip errors by record name.
func extractAll(t *testing.T, src string) (map[string]*ir.Intrinsic, map[string]error) {
	t.Helper()
	classes, records := indexed(t, src)
	x := NewExtractor(testExtractorConfig, classes, newTestInterner())

	var candidates []*ir.RecordDef
	for _, r := range records {
		if x.IsIntrinsic(r) {
			candidates = append(candidates, r)
		}
	}
	require.NoError(t, Resolve(candidates, classes))

	got := map[string]*ir.Intrinsic{}
	errs := map[string]error{}
	for _, r := range candidates {
		in, err := x.Extract(r)
		if err != nil {
			errs[r.Name] = err
			continue
		}
		got[r.Name] = in
	}
	return got, errs
}

func TestExtract(t *testing.T) {
	got, errs := extractAll(t, intrinsicDecls+`
def int_x86_sse2_pause : ClangBuiltin<"__builtin_ia32_pause">, DefaultAttrsIntrinsic<[], [], []>;
def int_foo : Intrinsic<[llvm_i32_ty], [llvm_anyint_ty], [], "llvm.foo.named">;
def int_aarch64_bar : DefaultAttrsIntrinsic<[llvm_anyvector_ty], [LLVMMatchType<0>, llvm_i32_ty]>;
def int_riscv_baz : Intrinsic<[llvm_v4i32_ty]>;
def not_intrinsic : SDPatternOperator;
`)
	assert.Empty(t, errs)
	require.Len(t, got, 4)

	want := map[string]*ir.Intrinsic{
		"int_x86_sse2_pause": {
			Arch:    "x86",
			Name:    "int_x86_sse2_pause",
			Alias:   "__builtin_ia32_pause",
			Params:  []ir.Type{},
			Returns: []ir.Type{},
		},
		"int_foo": {
			Arch:          GenericArch,
			Name:          "int_foo",
			CanonicalName: "llvm.foo.named",
			Params:        []ir.Type{ir.Int{}},
			Returns:       []ir.Type{ir.Int{Width: 32}},
		},
		"int_aarch64_bar": {
			Arch:    "aarch64",
			Name:    "int_aarch64_bar",
			Params:  []ir.Type{ir.Match{Slot: 0}, ir.Int{Width: 32}},
			Returns: []ir.Type{ir.Vector{}},
		},
		"int_riscv_baz": {
			Arch:    GenericArch,
			Name:    "int_riscv_baz",
			Params:  []ir.Type{},
			Returns: []ir.Type{ir.Vector{Count: 4, Elem: ir.Int{Width: 32}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_UnknownDescriptorSkipsRecord(t *testing.T) {
	got, errs := extractAll(t, intrinsicDecls+`
def int_ok : Intrinsic<[llvm_i32_ty], []>;
def int_bad : Intrinsic<[llvm_bogus_ty], []>;
def int_notlist : Intrinsic<llvm_i32_ty, []>;
`)
	assert.Contains(t, got, "int_ok")

	require.Contains(t, errs, "int_bad")
	assert.True(t, IsDescriptorError(errs["int_bad"]))
	assert.Contains(t, errs["int_bad"].Error(), "llvm_bogus_ty")

	require.Contains(t, errs, "int_notlist")
	assert.True(t, IsDescriptorError(errs["int_notlist"]))
}

func TestExtract_UndeclaredIntrinsicClass(t *testing.T) {
	// Without declarations the raw reference is read positionally.
	got, errs := extractAll(t, `def int_foo : Intrinsic<[llvm_i32_ty], [llvm_anyint_ty]>;`)
	assert.Empty(t, errs)
	require.Contains(t, got, "int_foo")
	assert.Equal(t, "", got["int_foo"].CanonicalName)
	assert.Equal(t, []ir.Type{ir.Int{}}, got["int_foo"].Params)
}

func TestExtract_MissingIntrinsicReference(t *testing.T) {
	classes, records := indexed(t, `def int_x : Other;`)
	x := NewExtractor(testExtractorConfig, classes, newTestInterner())

	_, err := x.Extract(records[0])
	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeMissingIntrinsic, re.Code)
	assert.False(t, IsDescriptorError(err))
}
