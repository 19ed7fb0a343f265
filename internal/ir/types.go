package ir

import "fmt"

// Type is a sealed interface representing the closed intrinsic type language.
// Implementations are comparable value types, so two Types are structurally
// equal exactly when they compare equal with ==.
type Type interface {
	// ShortName returns the canonical mangling fragment ("i32", "v4f32", "p0").
	// Open, void and marker types return "".
	ShortName() string

	// String returns a human-readable representation of the type.
	String() string

	aType() // Sealed - only the types below implement it
}

// MatchStyle is the transform a matched slot applies to the slot it ties to.
type MatchStyle int

const (
	MatchDirect    MatchStyle = iota // same type as slot K
	MatchExtend                      // slot K with doubled element width
	MatchTruncate                    // slot K with halved element width
	MatchSameWidth                   // vector with slot K's element count
	MatchElement                     // element type of slot K
	MatchVecOfPtrs                   // vector of pointers to slot K's elements
)

var matchStyleNames = map[MatchStyle]string{
	MatchDirect:    "match",
	MatchExtend:    "extend",
	MatchTruncate:  "truncate",
	MatchSameWidth: "samewidth",
	MatchElement:   "element",
	MatchVecOfPtrs: "vecofptrs",
}

func (s MatchStyle) String() string {
	if n, ok := matchStyleNames[s]; ok {
		return n
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// Void is the empty return type.
type Void struct{}

// Any is the fully open type.
type Any struct{}

// Int is an integer of Width bits. Width 0 means any width.
type Int struct{ Width int }

// Float is a floating-point type of Width bits. Width 0 means any width.
type Float struct{ Width int }

// FixedPoint is a fixed-point type of Width bits. Width 0 means any width.
type FixedPoint struct{ Width int }

// Pointer points to Elem. A nil Elem is an opaque pointer.
// Open marks a pointer whose address space is overloaded.
type Pointer struct {
	Elem Type
	Open bool
}

// Vector holds Count elements of Elem. Count 0 means any count.
// When Tied is set, the count follows the vector at slot Slot.
type Vector struct {
	Count int
	Elem  Type
	Tied  bool
	Slot  int
}

// Metadata is the metadata operand type.
type Metadata struct{}

// TokenType is the token operand type.
type TokenType struct{}

// VarArg marks a variadic tail.
type VarArg struct{}

// Descriptor is a descriptor placeholder.
type Descriptor struct{}

// NativeVecScalar marks a scalar of the target's native vector element.
type NativeVecScalar struct{}

// ArchType is a target-specific named type such as x86 mmx.
type ArchType struct {
	Arch string
	Name string
}

// Match ties a slot to the type of slot Slot through Style.
// Elem is the element type requested by MatchSameWidth.
type Match struct {
	Slot  int
	Style MatchStyle
	Elem  Type
}

// Resolved is a placeholder for the concrete type of slot Slot in one
// signature row. Style and Elem carry the transform to apply.
type Resolved struct {
	Slot  int
	Style MatchStyle
	Elem  Type
}

func (Void) aType()            {}
func (Any) aType()             {}
func (Int) aType()             {}
func (Float) aType()           {}
func (FixedPoint) aType()      {}
func (Pointer) aType()         {}
func (Vector) aType()          {}
func (Metadata) aType()        {}
func (TokenType) aType()       {}
func (VarArg) aType()          {}
func (Descriptor) aType()      {}
func (NativeVecScalar) aType() {}
func (ArchType) aType()        {}
func (Match) aType()           {}
func (Resolved) aType()        {}

func (Void) ShortName() string            { return "" }
func (Any) ShortName() string             { return "" }
func (Metadata) ShortName() string        { return "" }
func (TokenType) ShortName() string       { return "" }
func (VarArg) ShortName() string          { return "" }
func (Descriptor) ShortName() string      { return "" }
func (NativeVecScalar) ShortName() string { return "" }
func (Match) ShortName() string           { return "" }

func (t Int) ShortName() string        { return widthName("i", t.Width) }
func (t Float) ShortName() string      { return widthName("f", t.Width) }
func (t FixedPoint) ShortName() string { return widthName("q", t.Width) }
func (t ArchType) ShortName() string   { return t.Arch + t.Name }

// ShortName is "p0" for every concrete pointer; pointee types do not mangle.
func (t Pointer) ShortName() string {
	if t.Open {
		return ""
	}
	return "p0"
}

func (t Vector) ShortName() string {
	if t.Count == 0 || t.Elem == nil {
		return ""
	}
	elem := t.Elem.ShortName()
	if elem == "" {
		return ""
	}
	return fmt.Sprintf("v%d%s", t.Count, elem)
}

func (Resolved) ShortName() string { return "" }

func widthName(prefix string, width int) string {
	if width == 0 {
		return ""
	}
	return fmt.Sprintf("%s%d", prefix, width)
}

func (Void) String() string            { return "void" }
func (Any) String() string             { return "any" }
func (Metadata) String() string        { return "metadata" }
func (TokenType) String() string       { return "token" }
func (VarArg) String() string          { return "..." }
func (Descriptor) String() string      { return "descriptor" }
func (NativeVecScalar) String() string { return "vecscalar" }

func (t Int) String() string {
	if t.Width == 0 {
		return "anyint"
	}
	return t.ShortName()
}

func (t Float) String() string {
	if t.Width == 0 {
		return "anyfloat"
	}
	return t.ShortName()
}

func (t FixedPoint) String() string {
	if t.Width == 0 {
		return "anyfixed"
	}
	return t.ShortName()
}

func (t Pointer) String() string {
	name := "ptr"
	if t.Open {
		name = "anyptr"
	}
	if t.Elem == nil {
		return name
	}
	return name + "(" + t.Elem.String() + ")"
}

func (t Vector) String() string {
	count := "?"
	if t.Tied {
		count = fmt.Sprintf("#%d", t.Slot)
	} else if t.Count > 0 {
		count = fmt.Sprintf("%d", t.Count)
	}
	elem := "any"
	if t.Elem != nil {
		elem = t.Elem.String()
	}
	return fmt.Sprintf("<%s x %s>", count, elem)
}

func (t ArchType) String() string { return t.Arch + t.Name }

func (t Match) String() string {
	if t.Elem != nil {
		return fmt.Sprintf("%s(%d, %s)", t.Style, t.Slot, t.Elem)
	}
	return fmt.Sprintf("%s(%d)", t.Style, t.Slot)
}

func (t Resolved) String() string {
	return fmt.Sprintf("resolved(%d)", t.Slot)
}

// Equal reports structural equality of two types.
func Equal(a, b Type) bool {
	return a == b
}

// IsOpen reports whether t itself is an open (overloaded) descriptor.
// Pointers and vectors are open when they are marked open or when their
// element is open.
func IsOpen(t Type) bool {
	switch v := t.(type) {
	case Any:
		return true
	case Int:
		return v.Width == 0
	case Float:
		return v.Width == 0
	case FixedPoint:
		return v.Width == 0
	case Pointer:
		return v.Open || (v.Elem != nil && IsOpen(v.Elem))
	case Vector:
		return v.Count == 0 || v.Elem == nil || IsOpen(v.Elem)
	case Void, Metadata, TokenType, VarArg, Descriptor, NativeVecScalar, ArchType, Match, Resolved:
		return false
	default:
		panic(fmt.Sprintf("ir: unhandled type %T", t))
	}
}
