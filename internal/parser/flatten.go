package parser

import "github.com/roach88/tdgen/internal/ir"

// Forest is a parsed document split by declaration kind, in source order.
// Let groups are dissolved into their members.
type Forest struct {
	Classes  []*ir.ClassDecl
	Records  []*ir.RecordDef
	Includes []*ir.Include
}

// Flatten walks objects depth-first, descending into let groups.
func Flatten(objects []ir.Object) Forest {
	var f Forest
	f.add(objects)
	return f
}

func (f *Forest) add(objects []ir.Object) {
	for _, obj := range objects {
		switch o := obj.(type) {
		case *ir.ClassDecl:
			f.Classes = append(f.Classes, o)
		case *ir.RecordDef:
			f.Records = append(f.Records, o)
		case *ir.Include:
			f.Includes = append(f.Includes, o)
		case *ir.LetGroup:
			f.add(o.Objects)
		}
	}
}

// Merge appends other's declarations after f's.
func (f *Forest) Merge(other Forest) {
	f.Classes = append(f.Classes, other.Classes...)
	f.Records = append(f.Records, other.Records...)
	f.Includes = append(f.Includes, other.Includes...)
}
