// Package signature expands an intrinsic's declared types into the concrete
// signatures they imply.
//
// Open scalars are realized at every supported width, pointers to open
// types at every realization of the pointee, and match types are filled in
// from the slot they refer to in the same row. Each row becomes a Signature
// named by the intrinsic's base name plus the short names of its overloaded
// types. Rows with a selector already emitted are dropped.
package signature

import (
	"errors"
	"fmt"

	"github.com/roach88/tdgen/internal/ir"
)

// Generator produces signatures. It holds no per-intrinsic state and may be
// reused.
type Generator struct {
	namer Namer
}

// New returns a generator using namer for base names.
func New(namer Namer) *Generator {
	return &Generator{namer: namer}
}

// Signatures returns the de-duplicated signatures of in, in row order.
func (g *Generator) Signatures(in *ir.Intrinsic) ([]ir.Signature, error) {
	tys := in.TypeList()
	columns := make([][]ir.Type, len(tys))
	for i, t := range tys {
		columns[i] = Realize(t)
	}

	m := buildMatrix(tys, columns)
	base := g.namer.BaseName(in)

	sigs := make([]ir.Signature, 0, len(m.rows))
	seen := make(map[string]bool, len(m.rows))
	for r, row := range m.rows {
		if len(row) != len(tys) {
			return nil, &InvariantError{
				Intrinsic: in.Name,
				Row:       r,
				Slot:      len(row),
				Message:   fmt.Sprintf("row has %d types, want %d", len(row), len(tys)),
			}
		}

		resolved, err := resolveRow(row)
		if err != nil {
			return nil, rowError(in.Name, r, err)
		}
		if err := checkTies(tys, resolved); err != nil {
			return nil, rowError(in.Name, r, err)
		}

		overloads := make([]ir.Type, len(m.overloaded))
		for i, slot := range m.overloaded {
			overloads[i] = resolved[slot]
		}

		name := Selector(base, overloads)
		if seen[name] {
			continue
		}
		seen[name] = true

		sigs = append(sigs, ir.Signature{
			Arch:      in.Arch,
			Intrinsic: in.Name,
			Name:      name,
			Return:    resolved[0],
			Params:    resolved[1:],
			Overloads: overloads,
		})
	}
	return sigs, nil
}

// checkTies verifies that every direct match holds the same type as the
// slot it is tied to.
func checkTies(declared, row []ir.Type) error {
	for i, t := range declared {
		m, ok := t.(ir.Match)
		if !ok || m.Style != ir.MatchDirect {
			continue
		}
		if !ir.Equal(row[i], row[m.Slot]) {
			return &slotError{
				slot: i,
				msg:  fmt.Sprintf("tied to slot %d: %s != %s", m.Slot, row[i], row[m.Slot]),
			}
		}
	}
	return nil
}

func rowError(intrinsic string, row int, err error) error {
	ie := &InvariantError{Intrinsic: intrinsic, Row: row, Slot: -1, Message: err.Error()}
	var se *slotError
	if errors.As(err, &se) {
		ie.Slot = se.slot
	}
	return ie
}
