package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tdgen/internal/ir"
	"github.com/roach88/tdgen/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type       string         // Assertion type for categorization
	Expected   string         // Human-readable expected outcome
	Actual     string         // Human-readable actual outcome
	Signatures []ir.Signature // Emitted signatures for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Signatures) > 0 {
		fmt.Fprintf(&buf, "\nSignatures:\n")
		for i, s := range e.Signatures {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, signatureLine(s))
		}
	}
	return buf.String()
}

// signatureLine renders "name : ret (p1, p2)".
func signatureLine(s ir.Signature) string {
	return fmt.Sprintf("%s : %s (%s)", s.Name, returnString(s), strings.Join(ir.TypeStrings(s.Params), ", "))
}

func returnString(s ir.Signature) string {
	if s.Return == nil {
		return "void"
	}
	return s.Return.String()
}

// assertSignature checks that a signature with the given selector exists and,
// where the assertion sets them, has the given arch, return and params.
func assertSignature(sigs []ir.Signature, a Assertion) error {
	var named []ir.Signature
	for _, s := range sigs {
		if s.Name == a.Name {
			named = append(named, s)
		}
	}
	if len(named) == 0 {
		return &AssertionError{
			Type:       AssertSignature,
			Expected:   fmt.Sprintf("signature %s", a.Name),
			Actual:     "not found",
			Signatures: sigs,
		}
	}

	for _, s := range named {
		if matchSignature(s, a) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertSignature,
		Expected: fmt.Sprintf("signature %s with arch=%q return=%q params=%v", a.Name, a.Arch, a.Return, a.Params),
		Actual:   signatureLine(named[0]) + " [" + named[0].Arch + "]",
	}
}

func matchSignature(s ir.Signature, a Assertion) bool {
	if a.Arch != "" && s.Arch != a.Arch {
		return false
	}
	if a.Return != "" && returnString(s) != a.Return {
		return false
	}
	if a.Params != nil && !slices.Equal(ir.TypeStrings(s.Params), a.Params) {
		return false
	}
	return true
}

// assertSignatureOrder checks if signatures appear in the specified order.
// Selectors don't need to be consecutive (intervening signatures are allowed).
func assertSignatureOrder(sigs []ir.Signature, a Assertion) error {
	positions := make(map[string]int)
	for i, s := range sigs {
		if _, ok := positions[s.Name]; !ok {
			positions[s.Name] = i + 1 // 1-indexed for readability
		}
	}

	for _, name := range a.Names {
		if positions[name] == 0 {
			return &AssertionError{
				Type:       AssertSignatureOrder,
				Expected:   fmt.Sprintf("all signatures present: %v", a.Names),
				Actual:     fmt.Sprintf("missing signature: %s", name),
				Signatures: sigs,
			}
		}
	}

	for i := 1; i < len(a.Names); i++ {
		prev, curr := a.Names[i-1], a.Names[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertSignatureOrder,
				Expected: fmt.Sprintf("signatures in order: %v", a.Names),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Signatures: sigs,
			}
		}
	}
	return nil
}

// assertSignatureCount checks the number of signatures, of one intrinsic when
// the assertion names one.
func assertSignatureCount(sigs []ir.Signature, a Assertion) error {
	count := 0
	for _, s := range sigs {
		if a.Intrinsic == "" || s.Intrinsic == a.Intrinsic {
			count++
		}
	}
	if count == a.Count {
		return nil
	}

	what := "signatures"
	if a.Intrinsic != "" {
		what = "signatures of " + a.Intrinsic
	}
	return &AssertionError{
		Type:     AssertSignatureCount,
		Expected: fmt.Sprintf("%d %s", a.Count, what),
		Actual:   fmt.Sprintf("%d %s", count, what),
	}
}

// assertSkipped checks that the record was skipped during extraction.
func assertSkipped(result *Result, a Assertion) error {
	for _, s := range result.Skipped {
		if s.Record == a.Record {
			return nil
		}
	}
	skipped := make([]string, len(result.Skipped))
	for i, s := range result.Skipped {
		skipped[i] = s.Record
	}
	return &AssertionError{
		Type:     AssertSkipped,
		Expected: fmt.Sprintf("record %s skipped", a.Record),
		Actual:   fmt.Sprintf("skipped records: %v", skipped),
	}
}

// assertError checks that the run failed, in the given stage and with the
// given message text when the assertion sets them.
func assertError(result *Result, a Assertion) error {
	if !result.Failed() {
		return &AssertionError{
			Type:       AssertError,
			Expected:   "run failure",
			Actual:     "run succeeded",
			Signatures: result.Signatures,
		}
	}
	if a.Stage != "" && string(result.Stage) != a.Stage {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("failure in stage %s", a.Stage),
			Actual:   fmt.Sprintf("failure in stage %s: %s", result.Stage, result.Failure),
		}
	}
	if a.Contains != "" && !strings.Contains(result.Failure, a.Contains) {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("failure containing %q", a.Contains),
			Actual:   result.Failure,
		}
	}
	return nil
}

// assertCatalog queries the catalog for a selector and checks the row count.
func assertCatalog(ctx context.Context, st *store.Store, a Assertion) error {
	recs, err := st.LookupSelector(ctx, a.Name)
	if err != nil {
		return fmt.Errorf("catalog query for %s failed: %w", a.Name, err)
	}
	if len(recs) != a.Count {
		return &AssertionError{
			Type:     AssertCatalog,
			Expected: fmt.Sprintf("%d catalog rows named %s", a.Count, a.Name),
			Actual:   fmt.Sprintf("%d rows", len(recs)),
		}
	}
	return nil
}

// AssertionContext provides catalog access for catalog assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for catalog assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertSignature:
			err = assertSignature(result.Signatures, assertion)
		case AssertSignatureOrder:
			err = assertSignatureOrder(result.Signatures, assertion)
		case AssertSignatureCount:
			err = assertSignatureCount(result.Signatures, assertion)
		case AssertSkipped:
			err = assertSkipped(result, assertion)
		case AssertError:
			err = assertError(result, assertion)
		case AssertCatalog:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: catalog requires database context", i)
			} else {
				err = assertCatalog(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
