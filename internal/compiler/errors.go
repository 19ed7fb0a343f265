package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tdgen/internal/ir"
)

// ErrorCode categorizes resolution failures.
type ErrorCode string

const (
	ErrCodeMissingArgument  ErrorCode = "MISSING_ARGUMENT"
	ErrCodeExtraArguments   ErrorCode = "EXTRA_ARGUMENTS"
	ErrCodeCyclicReference  ErrorCode = "CYCLIC_REFERENCE"
	ErrCodeDuplicateClass   ErrorCode = "DUPLICATE_CLASS"
	ErrCodeMissingIntrinsic ErrorCode = "MISSING_INTRINSIC"
)

// ResolveError is a fatal error raised while instantiating classes.
type ResolveError struct {
	Code    ErrorCode
	Record  string   // record being resolved, "" for class-table errors
	Class   string   // class where the failure occurred
	Path    []string // class chain for cyclic references
	Message string
	Pos     ir.Pos
}

func (e *ResolveError) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		fmt.Fprintf(&b, "%s: ", e.Pos)
	}
	b.WriteString(string(e.Code))
	if e.Record != "" {
		fmt.Fprintf(&b, ": record %s", e.Record)
	}
	if e.Class != "" {
		fmt.Fprintf(&b, ": class %s", e.Class)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Path, " -> "))
	}
	return b.String()
}

// IsCycleError reports whether err is a cyclic class reference.
func IsCycleError(err error) bool {
	var re *ResolveError
	return errors.As(err, &re) && re.Code == ErrCodeCyclicReference
}

// IsMissingArgument reports whether err is an unbound template argument
// without a default.
func IsMissingArgument(err error) bool {
	var re *ResolveError
	return errors.As(err, &re) && re.Code == ErrCodeMissingArgument
}

// DescriptorError marks a record whose type descriptors cannot be interned.
// It is not fatal: the record is skipped.
type DescriptorError struct {
	Record     string
	Descriptor string // source form of the offending value
	Message    string
}

func (e *DescriptorError) Error() string {
	if e.Descriptor != "" {
		return fmt.Sprintf("record %s: %s: %s", e.Record, e.Message, e.Descriptor)
	}
	return fmt.Sprintf("record %s: %s", e.Record, e.Message)
}

// IsDescriptorError reports whether err only invalidates a single record.
func IsDescriptorError(err error) bool {
	var de *DescriptorError
	return errors.As(err, &de)
}
