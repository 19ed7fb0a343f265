package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tdgen/internal/ir"
)

// GenericArch is the architecture tag of intrinsics with no target prefix.
const GenericArch = "generic"

// ExtractorConfig names the classes and prefixes the extractor looks for.
type ExtractorConfig struct {
	IntrinsicClass string   // base class every intrinsic inherits, "Intrinsic"
	RecordPrefix   string   // intrinsic record name prefix, "int_"
	Targets        []string // recognized architecture tags
	AliasClasses   []string // classes whose first argument is a builtin alias
}

// Extractor builds ir.Intrinsic values from resolved records.
type Extractor struct {
	cfg      ExtractorConfig
	classes  ClassTable
	interner *Interner
}

// NewExtractor returns an extractor over the given class table.
func NewExtractor(cfg ExtractorConfig, classes ClassTable, interner *Interner) *Extractor {
	return &Extractor{cfg: cfg, classes: classes, interner: interner}
}

// IsIntrinsic reports whether rec inherits from the intrinsic class. It must
// be asked before resolution replaces the record's raw bases.
func (x *Extractor) IsIntrinsic(rec *ir.RecordDef) bool {
	return InheritsFrom(rec, x.cfg.IntrinsicClass, x.classes)
}

// Extract builds the Intrinsic of a resolved record. A *DescriptorError
// means the record cannot be used and should be skipped.
func (x *Extractor) Extract(rec *ir.RecordDef) (*ir.Intrinsic, error) {
	ref, ok := x.intrinsicRef(rec.Bases)
	if !ok {
		return nil, &ResolveError{
			Code:    ErrCodeMissingIntrinsic,
			Record:  rec.Name,
			Message: fmt.Sprintf("no %s reference after resolution", x.cfg.IntrinsicClass),
			Pos:     rec.Pos,
		}
	}

	returns, err := x.internList(rec.Name, ref.Args, 0)
	if err != nil {
		return nil, err
	}
	params, err := x.internList(rec.Name, ref.Args, 1)
	if err != nil {
		return nil, err
	}

	in := &ir.Intrinsic{
		Arch:    x.archOf(rec.Name),
		Name:    rec.Name,
		Alias:   x.alias(rec.Bases),
		Params:  params,
		Returns: returns,
	}
	if len(ref.Args) > 3 {
		if s, ok := ref.Args[3].(ir.StringValue); ok {
			in.CanonicalName = string(s)
		}
	}
	return in, nil
}

// intrinsicRef returns the last resolved reference to the intrinsic class.
// Post-order resolution puts the outermost instantiation last.
func (x *Extractor) intrinsicRef(bases []ir.TDType) (ir.TDType, bool) {
	for i := len(bases) - 1; i >= 0; i-- {
		if bases[i].Name == x.cfg.IntrinsicClass {
			return bases[i], true
		}
	}
	return ir.TDType{}, false
}

// internList interns the type list held by argument i. A missing argument is
// an empty list.
func (x *Extractor) internList(record string, args []ir.TDValue, i int) ([]ir.Type, error) {
	if i >= len(args) {
		return []ir.Type{}, nil
	}
	list, ok := args[i].(ir.ListValue)
	if !ok {
		return nil, &DescriptorError{
			Record:     record,
			Descriptor: ir.ValueString(args[i]),
			Message:    "type list is not a list",
		}
	}

	out := make([]ir.Type, 0, len(list))
	for _, v := range list {
		t, ok := x.interner.Intern(v)
		if !ok {
			return nil, &DescriptorError{
				Record:     record,
				Descriptor: ir.ValueString(v),
				Message:    "unknown type descriptor",
			}
		}
		out = append(out, t)
	}
	return out, nil
}

// alias returns the first string argument of the first alias class reference.
func (x *Extractor) alias(bases []ir.TDType) string {
	for _, b := range bases {
		if !slices.Contains(x.cfg.AliasClasses, b.Name) || len(b.Args) == 0 {
			continue
		}
		if s, ok := b.Args[0].(ir.StringValue); ok {
			return string(s)
		}
	}
	return ""
}

// archOf takes the first name component after the record prefix when it is
// a configured target.
func (x *Extractor) archOf(name string) string {
	rest, ok := strings.CutPrefix(name, x.cfg.RecordPrefix)
	if !ok {
		return GenericArch
	}
	head, _, _ := strings.Cut(rest, "_")
	if slices.Contains(x.cfg.Targets, head) {
		return head
	}
	return GenericArch
}
