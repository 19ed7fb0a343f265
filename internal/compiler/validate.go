package compiler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/tdgen/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrEmptyName          = "E100" // intrinsic has no name
	ErrMatchOutOfRange    = "E101" // match slot beyond the type list
	ErrSelfMatch          = "E102" // slot matches itself
	ErrMatchCycle         = "E103" // chain of matches leads back to its start
	ErrTiedOutOfRange     = "E104" // tied vector slot beyond the type list
	ErrVarArgNotLast      = "E105" // vararg before the last parameter
	ErrVoidParameter      = "E106" // void used as a parameter
	ErrVoidInMultiReturns = "E107" // void among several return types
)

// ValidationError is one structural problem in an intrinsic's type list.
type ValidationError struct {
	Intrinsic string `json:"intrinsic"`
	Field     string `json:"field"`
	Message   string `json:"message"`
	Code      string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Intrinsic, e.Field, e.Message)
}

// Validate checks an intrinsic's type list for slot references that cannot
// be resolved. Returns all errors found (does not fail-fast).
func Validate(in *ir.Intrinsic) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Intrinsic: in.Name,
			Field:     field,
			Message:   fmt.Sprintf(format, args...),
			Code:      code,
		})
	}

	if in.Name == "" {
		add("name", ErrEmptyName, "intrinsic name is required")
	}

	tys := in.TypeList()
	nret := len(tys) - len(in.Params)

	for i, t := range tys {
		field := slotField(i, nret)

		switch v := t.(type) {
		case ir.Match:
			switch {
			case v.Slot >= len(tys):
				add(field, ErrMatchOutOfRange, "matches slot %d of %d", v.Slot, len(tys))
			case v.Slot == i:
				add(field, ErrSelfMatch, "matches its own slot %d", i)
			default:
				if cycle := matchCycle(tys, i); cycle != nil && slices.Min(cycle) == i {
					add(field, ErrMatchCycle, "match chain loops: %s", formatSlots(cycle))
				}
			}
		case ir.Vector:
			if v.Tied && (v.Slot >= len(tys) || v.Slot == i) {
				add(field, ErrTiedOutOfRange, "vector width tied to invalid slot %d", v.Slot)
			}
		case ir.VarArg:
			if i != len(tys)-1 || i < nret {
				add(field, ErrVarArgNotLast, "vararg must be the last parameter")
			}
		case ir.Void:
			if i >= nret {
				add(field, ErrVoidParameter, "void is not a parameter type")
			} else if nret > 1 {
				add(field, ErrVoidInMultiReturns, "void cannot appear among several return types")
			}
		}
	}

	return errs
}

// matchCycle follows the chain of matches starting at slot start and
// returns the slots visited when the chain comes back to start. Chains that
// end at a concrete type, leave the list, or loop elsewhere return nil.
func matchCycle(tys []ir.Type, start int) []int {
	path := []int{start}
	cur := start
	for range tys {
		m, ok := tys[cur].(ir.Match)
		if !ok || m.Slot < 0 || m.Slot >= len(tys) {
			return nil
		}
		if m.Slot == start {
			return path
		}
		cur = m.Slot
		path = append(path, cur)
	}
	return nil
}

func formatSlots(slots []int) string {
	parts := make([]string, 0, len(slots)+1)
	for _, s := range append(slots, slots[0]) {
		parts = append(parts, strconv.Itoa(s))
	}
	return strings.Join(parts, " -> ")
}

// slotField names slot i as returns[i] or params[j].
func slotField(i, nret int) string {
	if i < nret {
		return fmt.Sprintf("returns[%d]", i)
	}
	return fmt.Sprintf("params[%d]", i-nret)
}
