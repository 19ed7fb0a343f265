package signature

import (
	"errors"
	"fmt"

	"github.com/roach88/tdgen/internal/ir"
)

// matrix is the overload matrix of one intrinsic: every row has one
// type per declared slot.
type matrix struct {
	rows       [][]ir.Type
	overloaded []int // slots that were expanded
}

// buildMatrix expands the realizations column by column. An overloaded
// column with k choices replicates every row k times consecutively and
// replica j takes choice j mod k. Single-choice columns extend every row
// without changing the row count.
//
// Expansion ends at the first single-choice column that follows an
// overloaded one. From there on every column is appended to each row as a
// single type: its only realization, or the declared type itself when it
// is still open.
func buildMatrix(declared []ir.Type, columns [][]ir.Type) *matrix {
	m := &matrix{rows: [][]ir.Type{{}}}
	frozen := false
	for slot, choices := range columns {
		if len(choices) == 1 || frozen {
			if len(m.overloaded) > 0 {
				frozen = true
			}
			t := declared[slot]
			if len(choices) == 1 {
				t = choices[0]
			}
			for i := range m.rows {
				m.rows[i] = append(m.rows[i], t)
			}
			continue
		}

		m.overloaded = append(m.overloaded, slot)
		k := len(choices)
		next := make([][]ir.Type, 0, len(m.rows)*k)
		for _, row := range m.rows {
			for j := 0; j < k; j++ {
				replica := make([]ir.Type, len(row), len(columns))
				copy(replica, row)
				next = append(next, append(replica, choices[j%k]))
			}
		}
		m.rows = next
	}
	return m
}

// resolveRow replaces every placeholder in row with the type found at the
// slot it refers to, applying the placeholder's transform. A slot that
// refers to another placeholder is resolved first.
func resolveRow(row []ir.Type) ([]ir.Type, error) {
	r := &rowResolver{
		row:   row,
		done:  make([]ir.Type, len(row)),
		state: make([]slotState, len(row)),
	}
	for i := range row {
		if _, err := r.slot(i); err != nil {
			return nil, err
		}
	}
	return r.done, nil
}

type slotState int

const (
	pending slotState = iota
	visiting
	resolved
)

type rowResolver struct {
	row   []ir.Type
	done  []ir.Type
	state []slotState
}

// slotError carries the slot a resolution failure occurred in.
type slotError struct {
	slot int
	msg  string
}

func (e *slotError) Error() string { return e.msg }

func (r *rowResolver) slot(i int) (ir.Type, error) {
	if i < 0 || i >= len(r.row) {
		return nil, &slotError{slot: i, msg: fmt.Sprintf("slot %d out of range for %d types", i, len(r.row))}
	}
	switch r.state[i] {
	case resolved:
		return r.done[i], nil
	case visiting:
		return nil, &slotError{slot: i, msg: fmt.Sprintf("slot %d refers back to itself", i)}
	}

	r.state[i] = visiting
	t, err := r.fill(r.row[i])
	if err != nil {
		var se *slotError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, &slotError{slot: i, msg: err.Error()}
	}
	r.state[i] = resolved
	r.done[i] = t
	return t, nil
}

func (r *rowResolver) fill(t ir.Type) (ir.Type, error) {
	switch v := t.(type) {
	case ir.Resolved:
		target, err := r.slot(v.Slot)
		if err != nil {
			return nil, err
		}
		return transform(v, target)

	case ir.Pointer:
		if v.Elem == nil {
			return v, nil
		}
		elem, err := r.fill(v.Elem)
		if err != nil {
			return nil, err
		}
		return ir.Pointer{Elem: elem, Open: v.Open}, nil

	case ir.Vector:
		var elem ir.Type
		if v.Elem != nil {
			var err error
			if elem, err = r.fill(v.Elem); err != nil {
				return nil, err
			}
		}
		if !v.Tied {
			return ir.Vector{Count: v.Count, Elem: elem}, nil
		}
		target, err := r.slot(v.Slot)
		if err != nil {
			return nil, err
		}
		tv, ok := target.(ir.Vector)
		if !ok {
			return nil, fmt.Errorf("vector width tied to non-vector %s", target)
		}
		if tv.Count == 0 {
			return ir.Vector{Elem: elem, Tied: true, Slot: v.Slot}, nil
		}
		return ir.Vector{Count: tv.Count, Elem: elem}, nil

	default:
		return t, nil
	}
}

// transform derives the type a placeholder stands for from its target.
func transform(r ir.Resolved, target ir.Type) (ir.Type, error) {
	switch r.Style {
	case ir.MatchDirect:
		return target, nil
	case ir.MatchExtend:
		return scaleWidth(target, 2, 1)
	case ir.MatchTruncate:
		return scaleWidth(target, 1, 2)
	case ir.MatchSameWidth:
		if tv, ok := target.(ir.Vector); ok {
			return ir.Vector{Count: tv.Count, Elem: r.Elem}, nil
		}
		return r.Elem, nil
	case ir.MatchElement, ir.MatchVecOfPtrs:
		if tv, ok := target.(ir.Vector); ok && tv.Elem != nil {
			return tv.Elem, nil
		}
		return target, nil
	default:
		return nil, fmt.Errorf("unknown match style %s", r.Style)
	}
}

// scaleWidth multiplies the scalar width of t by mul/div. Vectors scale
// their element.
func scaleWidth(t ir.Type, mul, div int) (ir.Type, error) {
	scale := func(w int) (int, error) {
		if w == 0 || (w*mul)%div != 0 || w*mul/div == 0 {
			return 0, fmt.Errorf("cannot scale width %d by %d/%d", w, mul, div)
		}
		return w * mul / div, nil
	}

	switch v := t.(type) {
	case ir.Int:
		w, err := scale(v.Width)
		if err != nil {
			return nil, err
		}
		return ir.Int{Width: w}, nil
	case ir.Float:
		w, err := scale(v.Width)
		if err != nil {
			return nil, err
		}
		return ir.Float{Width: w}, nil
	case ir.Vector:
		if v.Elem == nil {
			return nil, fmt.Errorf("cannot scale open vector %s", v)
		}
		elem, err := scaleWidth(v.Elem, mul, div)
		if err != nil {
			return nil, err
		}
		return ir.Vector{Count: v.Count, Elem: elem}, nil
	default:
		return nil, fmt.Errorf("cannot scale %s", t)
	}
}
