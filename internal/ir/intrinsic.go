package ir

import "encoding/json"

// Intrinsic is one described operation extracted from a record definition.
type Intrinsic struct {
	Arch          string `json:"arch"`
	Name          string `json:"name"`                     // record name, e.g. "int_foo"
	Alias         string `json:"alias,omitempty"`          // external builtin name
	CanonicalName string `json:"canonical_name,omitempty"` // declared name, "" when derived
	Params        []Type `json:"-"`
	Returns       []Type `json:"-"`
}

// TypeList returns the return types followed by the parameter types.
// An empty return list is reported as a single Void.
func (in *Intrinsic) TypeList() []Type {
	rets := in.Returns
	if len(rets) == 0 {
		rets = []Type{Void{}}
	}
	tys := make([]Type, 0, len(rets)+len(in.Params))
	tys = append(tys, rets...)
	return append(tys, in.Params...)
}

// Signature is one concrete signature of an intrinsic.
type Signature struct {
	Arch      string
	Intrinsic string // record name the signature came from
	Name      string // selector, e.g. "llvm.foo.i32"
	Params    []Type
	Return    Type
	Overloads []Type // realized types of the overloaded positions
}

// signatureJSON is the wire shape of a Signature. Types render as strings.
type signatureJSON struct {
	Name      string   `json:"name"`
	Arch      string   `json:"arch"`
	Intrinsic string   `json:"intrinsic"`
	Return    string   `json:"return"`
	Params    []string `json:"params"`
	Overloads []string `json:"overloads"`
}

// MarshalJSON implements json.Marshaler for Signature.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(signatureJSON{
		Name:      s.Name,
		Arch:      s.Arch,
		Intrinsic: s.Intrinsic,
		Return:    typeString(s.Return),
		Params:    TypeStrings(s.Params),
		Overloads: TypeStrings(s.Overloads),
	})
}

// TypeStrings renders each type with String. Never returns nil.
func TypeStrings(tys []Type) []string {
	out := make([]string, len(tys))
	for i, t := range tys {
		out[i] = typeString(t)
	}
	return out
}

func typeString(t Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}
