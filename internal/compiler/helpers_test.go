package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tdgen/internal/ir"
	"github.com/roach88/tdgen/internal/parser"
)

// parseForest parses src and splits it into classes and records.
func parseForest(t *testing.T, src string) parser.Forest {
	t.Helper()
	objs, err := parser.Parse("test.td", src)
	require.NoError(t, err)
	return parser.Flatten(objs)
}

// indexed parses src and builds its class table.
func indexed(t *testing.T, src string) (ClassTable, []*ir.RecordDef) {
	t.Helper()
	f := parseForest(t, src)
	classes, err := IndexClasses(f.Classes)
	require.NoError(t, err)
	return classes, f.Records
}

// value parses one value in source form.
func value(t *testing.T, src string) ir.TDValue {
	t.Helper()
	f := parseForest(t, "def v : V<"+src+">;")
	require.Len(t, f.Records, 1)
	require.Len(t, f.Records[0].Bases[0].Args, 1)
	return f.Records[0].Bases[0].Args[0]
}

func typeStrings(refs []ir.TDType) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

// intrinsicDecls declares the intrinsic class hierarchy used across tests.
const intrinsicDecls = `
class SDPatternOperator;
class Intrinsic<list<LLVMType> ret_types, list<LLVMType> param_types = [],
                list<IntrinsicProperty> intr_properties = [], string name = ""> : SDPatternOperator;
class DefaultAttrsIntrinsic<list<LLVMType> ret_types, list<LLVMType> param_types = [],
                list<IntrinsicProperty> intr_properties = [], string name = "">
    : Intrinsic<ret_types, param_types, intr_properties, name>;
class ClangBuiltin<string name> { string ClangBuiltinName = name; }
`
