package signature

import (
	"strings"

	"github.com/roach88/tdgen/internal/ir"
)

// DefaultLegacyNames maps records whose emitted name predates the naming
// convention.
var DefaultLegacyNames = map[string]string{
	"int_stepvector": "llvm.experimental.stepvector",
}

// Namer derives base and selector names.
type Namer struct {
	RecordPrefix string            // stripped from record names, "int_"
	NamePrefix   string            // prepended to derived names, "llvm."
	Legacy       map[string]string // record name → fixed base name
}

// BaseName is the declared canonical name, else the legacy name, else the
// record name with the record prefix dropped and underscores as dots.
func (n Namer) BaseName(in *ir.Intrinsic) string {
	if in.CanonicalName != "" {
		return in.CanonicalName
	}
	if legacy, ok := n.Legacy[in.Name]; ok {
		return legacy
	}
	core := strings.TrimPrefix(in.Name, n.RecordPrefix)
	return n.NamePrefix + strings.ReplaceAll(core, "_", ".")
}

// Selector appends the short name of each overloaded type to base.
// Types with an empty short name contribute nothing.
func Selector(base string, overloads []ir.Type) string {
	var b strings.Builder
	b.WriteString(base)
	for _, t := range overloads {
		if short := t.ShortName(); short != "" {
			b.WriteByte('.')
			b.WriteString(short)
		}
	}
	return b.String()
}
