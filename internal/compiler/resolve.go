package compiler

import (
	"fmt"
	"slices"

	"github.com/roach88/tdgen/internal/ir"
)

// ClassTable maps class names to their declarations.
type ClassTable map[string]*ir.ClassDecl

// IndexClasses builds the class table. Class names must be unique.
func IndexClasses(classes []*ir.ClassDecl) (ClassTable, error) {
	table := make(ClassTable, len(classes))
	for _, cls := range classes {
		if prev, ok := table[cls.Name]; ok {
			return nil, &ResolveError{
				Code:    ErrCodeDuplicateClass,
				Class:   cls.Name,
				Message: fmt.Sprintf("class already declared at %s", prev.Pos),
				Pos:     cls.Pos,
			}
		}
		table[cls.Name] = cls
	}
	return table, nil
}

// Resolve replaces the base list of every record with its fully
// instantiated, flattened form. Records are left untouched on error.
func Resolve(records []*ir.RecordDef, classes ClassTable) error {
	resolved := make([][]ir.TDType, len(records))
	for i, rec := range records {
		bases, err := ResolveBases(rec, classes)
		if err != nil {
			return err
		}
		resolved[i] = bases
	}
	for i, rec := range records {
		rec.Bases = resolved[i]
	}
	return nil
}

// ResolveBases computes the flattened base list of rec without modifying it.
//
// Each reference to a known class is instantiated: template arguments are
// bound positionally (falling back to declared defaults), substituted into
// the class's own bases, and those are resolved recursively. The output is
// post-order: a class's resolved bases come before the class reference
// itself, which carries every argument including defaults. References to
// unknown names are appended unchanged.
func ResolveBases(rec *ir.RecordDef, classes ClassTable) ([]ir.TDType, error) {
	r := &resolver{classes: classes, record: rec, out: []ir.TDType{}}
	for _, base := range rec.Bases {
		if err := r.resolveRef(base); err != nil {
			return nil, err
		}
	}
	return r.out, nil
}

// resolver carries the state of one record's resolution.
type resolver struct {
	classes ClassTable
	record  *ir.RecordDef
	stack   []string // classes being instantiated, outermost first
	out     []ir.TDType
}

func (r *resolver) resolveRef(ref ir.TDType) error {
	cls, ok := r.classes[ref.Name]
	if !ok {
		r.out = append(r.out, ref)
		return nil
	}

	if slices.Contains(r.stack, cls.Name) {
		path := append(slices.Clone(r.stack), cls.Name)
		return &ResolveError{
			Code:    ErrCodeCyclicReference,
			Record:  r.record.Name,
			Class:   cls.Name,
			Path:    path,
			Message: "class inherits from itself",
			Pos:     cls.Pos,
		}
	}

	bindings, args, err := r.bind(cls, ref.Args)
	if err != nil {
		return err
	}

	r.stack = append(r.stack, cls.Name)
	for _, base := range cls.Bases {
		if err := r.resolveRef(substituteType(base, bindings)); err != nil {
			return err
		}
	}
	r.stack = r.stack[:len(r.stack)-1]

	r.out = append(r.out, ir.TDType{Name: cls.Name, Args: args})
	return nil
}

// bind maps cls's template argument names to values. Defaults are
// substituted with the bindings made so far, so a default may refer to an
// earlier argument.
func (r *resolver) bind(cls *ir.ClassDecl, actual []ir.TDValue) (map[string]ir.TDValue, []ir.TDValue, error) {
	if len(actual) > len(cls.Args) {
		return nil, nil, &ResolveError{
			Code:    ErrCodeExtraArguments,
			Record:  r.record.Name,
			Class:   cls.Name,
			Message: fmt.Sprintf("%d arguments given, class declares %d", len(actual), len(cls.Args)),
			Pos:     r.record.Pos,
		}
	}

	bindings := make(map[string]ir.TDValue, len(cls.Args))
	args := make([]ir.TDValue, len(cls.Args))
	for i, arg := range cls.Args {
		var v ir.TDValue
		switch {
		case i < len(actual):
			v = actual[i]
		case arg.Default != nil:
			v = substitute(arg.Default, bindings)
		default:
			return nil, nil, &ResolveError{
				Code:    ErrCodeMissingArgument,
				Record:  r.record.Name,
				Class:   cls.Name,
				Message: fmt.Sprintf("template argument %s has no value and no default", arg.Name),
				Pos:     r.record.Pos,
			}
		}
		bindings[arg.Name] = v
		args[i] = v
	}
	return bindings, args, nil
}

// substituteType replaces bound names in the arguments of ref.
func substituteType(ref ir.TDType, bindings map[string]ir.TDValue) ir.TDType {
	if len(ref.Args) == 0 {
		return ref
	}
	args := make([]ir.TDValue, len(ref.Args))
	for i, a := range ref.Args {
		args[i] = substitute(a, bindings)
	}
	return ir.TDType{Name: ref.Name, Args: args}
}

// substitute returns v with every bare reference to a bound name replaced
// by its value. Concatenations collapse to a string once all operands are
// strings.
func substitute(v ir.TDValue, bindings map[string]ir.TDValue) ir.TDValue {
	switch val := v.(type) {
	case ir.TypeRefValue:
		if len(val.Ref.Args) == 0 {
			if bound, ok := bindings[val.Ref.Name]; ok {
				return bound
			}
			return val
		}
		return ir.TypeRefValue{Ref: substituteType(val.Ref, bindings)}
	case ir.ListValue:
		out := make(ir.ListValue, len(val))
		for i, e := range val {
			out[i] = substitute(e, bindings)
		}
		return out
	case ir.ConcatValue:
		operands := make([]ir.TDValue, len(val))
		for i, e := range val {
			operands[i] = substitute(e, bindings)
		}
		return ir.FoldConcat(operands)
	default:
		return v
	}
}

// InheritsFrom reports whether rec names class target among its raw bases,
// directly or through any chain of declared classes.
func InheritsFrom(rec *ir.RecordDef, target string, classes ClassTable) bool {
	seen := make(map[string]bool)
	queue := make([]string, 0, len(rec.Bases))
	for _, b := range rec.Bases {
		queue = append(queue, b.Name)
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if name == target {
			return true
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		if cls, ok := classes[name]; ok {
			for _, b := range cls.Bases {
				queue = append(queue, b.Name)
			}
		}
	}
	return false
}
