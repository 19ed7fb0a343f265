package compiler

import (
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/tdgen/internal/ir"
)

// keywordTypes is the closed table of core type names.
var keywordTypes = map[string]ir.Type{
	"void":       ir.Void{},
	"any":        ir.Any{},
	"anyint":     ir.Int{},
	"anyfloat":   ir.Float{},
	"anyptr":     ir.Pointer{Open: true},
	"ptr":        ir.Pointer{},
	"anyvector":  ir.Vector{},
	"metadata":   ir.Metadata{},
	"token":      ir.TokenType{},
	"vararg":     ir.VarArg{},
	"descriptor": ir.Descriptor{},
	"vecscalar":  ir.NativeVecScalar{},
	"float":      ir.Float{Width: 32},
	"double":     ir.Float{Width: 64},
}

// archTypeNames are core names that only exist under an architecture prefix.
var archTypeNames = map[string]bool{
	"mmx": true,
	"amx": true,
}

// matchStyles maps the match-by-index descriptor classes to their style.
var matchStyles = map[string]ir.MatchStyle{
	"LLVMMatchType":                ir.MatchDirect,
	"LLVMExtendedType":             ir.MatchExtend,
	"LLVMTruncatedType":            ir.MatchTruncate,
	"LLVMPointerToElt":             ir.MatchElement,
	"LLVMVectorOfPointersToElt":    ir.MatchVecOfPtrs,
	"LLVMVectorOfAnyPointersToElt": ir.MatchVecOfPtrs,
}

// Interner maps resolved type descriptors to ir.Type values.
type Interner struct {
	prefixes []string // longest first
	suffix   string
}

// NewInterner returns an interner that derives core names by stripping one
// of prefixes and suffix from a descriptor name.
func NewInterner(prefixes []string, suffix string) *Interner {
	sorted := slices.Clone(prefixes)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return len(b) - len(a)
	})
	return &Interner{prefixes: sorted, suffix: suffix}
}

// Intern converts v to an ir.Type. It reports false when v matches no known
// descriptor convention.
func (in *Interner) Intern(v ir.TDValue) (ir.Type, bool) {
	ref, ok := v.(ir.TypeRefValue)
	if !ok {
		return nil, false
	}
	if len(ref.Ref.Args) == 0 {
		return in.internName(ref.Ref.Name)
	}
	return in.internParameterized(ref.Ref)
}

// internName handles argument-free references such as llvm_v4i32_ty.
func (in *Interner) internName(name string) (ir.Type, bool) {
	if t, ok := lookupCore(name); ok {
		return t, true
	}
	if !strings.HasSuffix(name, in.suffix) {
		return nil, false
	}
	for _, prefix := range in.prefixes {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		core := strings.TrimSuffix(strings.TrimPrefix(name, prefix), in.suffix)
		if archTypeNames[core] {
			arch := in.archOf(prefix)
			if arch == "" {
				return nil, false
			}
			return ir.ArchType{Arch: arch, Name: core}, true
		}
		return lookupCore(core)
	}
	return nil, false
}

// archOf returns the part of prefix that follows the shortest other
// configured prefix, e.g. "x86" for "llvm_x86" when "llvm_" is configured.
func (in *Interner) archOf(prefix string) string {
	for i := len(in.prefixes) - 1; i >= 0; i-- {
		p := in.prefixes[i]
		if p != prefix && strings.HasPrefix(prefix, p) {
			return strings.Trim(strings.TrimPrefix(prefix, p), "_")
		}
	}
	return ""
}

// lookupCore resolves a core name through the keyword table or the
// width-letter convention.
func lookupCore(core string) (ir.Type, bool) {
	if t, ok := keywordTypes[core]; ok {
		return t, true
	}
	return parseWidthType(core)
}

// parseWidthType parses i<N>, f<N>, q<N> and v<N><scalar>.
func parseWidthType(core string) (ir.Type, bool) {
	if len(core) < 2 {
		return nil, false
	}
	letter := core[0]
	digits := 1
	for digits < len(core) && core[digits] >= '0' && core[digits] <= '9' {
		digits++
	}
	if digits == 1 {
		return nil, false
	}
	n, err := strconv.Atoi(core[1:digits])
	if err != nil || n <= 0 {
		return nil, false
	}
	rest := core[digits:]

	switch letter {
	case 'i', 'f', 'q':
		if rest != "" {
			return nil, false
		}
		switch letter {
		case 'i':
			return ir.Int{Width: n}, true
		case 'f':
			return ir.Float{Width: n}, true
		default:
			return ir.FixedPoint{Width: n}, true
		}
	case 'v':
		elem, ok := parseWidthType(rest)
		if !ok {
			return nil, false
		}
		if _, nested := elem.(ir.Vector); nested {
			return nil, false
		}
		return ir.Vector{Count: n, Elem: elem}, true
	default:
		return nil, false
	}
}

// internParameterized handles the descriptor classes that take arguments.
func (in *Interner) internParameterized(ref ir.TDType) (ir.Type, bool) {
	if style, ok := matchStyles[ref.Name]; ok {
		slot, ok := intArg(ref.Args, 0)
		if !ok || len(ref.Args) != 1 {
			return nil, false
		}
		return ir.Match{Slot: slot, Style: style}, true
	}

	switch ref.Name {
	case "LLVMPointerType", "LLVMAnyPointerType":
		if len(ref.Args) != 1 {
			return nil, false
		}
		elem, ok := in.Intern(ref.Args[0])
		if !ok {
			return nil, false
		}
		return ir.Pointer{Elem: elem, Open: ref.Name == "LLVMAnyPointerType"}, true

	case "LLVMScalarOrSameVectorWidth", "LLVMVectorSameWidth":
		if len(ref.Args) != 2 {
			return nil, false
		}
		slot, ok := intArg(ref.Args, 0)
		if !ok {
			return nil, false
		}
		elem, ok := in.Intern(ref.Args[1])
		if !ok {
			return nil, false
		}
		if ref.Name == "LLVMScalarOrSameVectorWidth" {
			return ir.Match{Slot: slot, Style: ir.MatchSameWidth, Elem: elem}, true
		}
		return ir.Vector{Elem: elem, Tied: true, Slot: slot}, true
	}
	return nil, false
}

func intArg(args []ir.TDValue, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	v, ok := args[i].(ir.IntValue)
	if !ok || v < 0 {
		return 0, false
	}
	return int(v), true
}
