package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos is a 1-based source position.
type Pos struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// IsValid reports whether the position was set.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Object is a sealed interface over the top-level declarations of a document.
// Only *ClassDecl, *RecordDef, *LetGroup and *Include implement it.
type Object interface {
	object()
}

// ClassDecl is a class (template) declaration.
type ClassDecl struct {
	Name  string        `json:"name"`
	Multi bool          `json:"multi,omitempty"` // declared with "multiclass"
	Args  []TemplateArg `json:"args"`
	Bases []TDType      `json:"bases"`
	Pos   Pos           `json:"pos"`
}

// TemplateArg is one declared template argument of a class.
type TemplateArg struct {
	Type    TDType  `json:"type"`
	Name    string  `json:"name"`
	Default TDValue `json:"default,omitempty"` // nil when no default was declared
}

// RecordDef is a concrete record definition.
// Bases holds the raw base-class list until the resolver replaces it.
type RecordDef struct {
	Name  string   `json:"name"`
	Multi bool     `json:"multi,omitempty"` // declared with "defm"
	Bases []TDType `json:"bases"`
	Pos   Pos      `json:"pos"`
}

// LetGroup is a scoped-binding group. Only binding names are kept.
type LetGroup struct {
	Bindings []string `json:"bindings"`
	Objects  []Object `json:"objects"`
	Pos      Pos      `json:"pos"`
}

// Include is an include directive. Expansion happens outside the parser.
type Include struct {
	Path string `json:"path"`
	Pos  Pos    `json:"pos"`
}

func (*ClassDecl) object() {}
func (*RecordDef) object() {}
func (*LetGroup) object()  {}
func (*Include) object()   {}

// TDType is a class or base-class reference: a name plus argument values.
type TDType struct {
	Name string    `json:"name"`
	Args []TDValue `json:"args,omitempty"`
}

func (t TDType) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = ValueString(a)
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}

// TDValue is a sealed interface representing record-language values.
// Only ListValue, ConcatValue, TypeRefValue, StringValue and IntValue implement it.
type TDValue interface {
	tdValue()
}

// ListValue is a bracketed list of values.
type ListValue []TDValue

// ConcatValue is a !strconcat whose operands are not all strings yet.
type ConcatValue []TDValue

// TypeRefValue is a value naming a record or class, optionally with arguments.
type TypeRefValue struct {
	Ref TDType `json:"ref"`
}

// StringValue is a string literal.
type StringValue string

// IntValue is an integer literal.
type IntValue int64

func (ListValue) tdValue()    {}
func (ConcatValue) tdValue()  {}
func (TypeRefValue) tdValue() {}
func (StringValue) tdValue()  {}
func (IntValue) tdValue()     {}

// Ref builds a TypeRefValue.
func Ref(name string, args ...TDValue) TypeRefValue {
	return TypeRefValue{Ref: TDType{Name: name, Args: args}}
}

// ValueString renders a value in source form.
func ValueString(v TDValue) string {
	switch val := v.(type) {
	case nil:
		return "?"
	case ListValue:
		return "[" + joinValues(val) + "]"
	case ConcatValue:
		return "!strconcat(" + joinValues(val) + ")"
	case TypeRefValue:
		return val.Ref.String()
	case StringValue:
		return strconv.Quote(string(val))
	case IntValue:
		return strconv.FormatInt(int64(val), 10)
	default:
		panic(fmt.Sprintf("ir: unhandled value %T", v))
	}
}

func joinValues(vals []TDValue) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = ValueString(v)
	}
	return strings.Join(parts, ", ")
}

// FoldConcat collapses a concatenation to a StringValue when every operand
// is a string; otherwise it returns the symbolic ConcatValue.
func FoldConcat(operands []TDValue) TDValue {
	var b strings.Builder
	for _, op := range operands {
		s, ok := op.(StringValue)
		if !ok {
			return ConcatValue(operands)
		}
		b.WriteString(string(s))
	}
	return StringValue(b.String())
}
