package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tdgen/internal/compiler"
	"github.com/roach88/tdgen/internal/ir"
)

// Stage names a pipeline stage.
type Stage string

const (
	StageLex      Stage = "lex"
	StageParse    Stage = "parse"
	StageInclude  Stage = "include"
	StageIndex    Stage = "index"
	StageResolve  Stage = "resolve"
	StageExtract  Stage = "extract"
	StageValidate Stage = "validate"
	StagePermute  Stage = "permute"
)

// StageError wraps the fatal error that stopped a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage of a run error, or "" when err did not come
// from a stage.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// IncludeErrorCode categorizes include failures.
type IncludeErrorCode string

const (
	ErrCodeIncludeNotFound IncludeErrorCode = "INCLUDE_NOT_FOUND"
	ErrCodeIncludeCycle    IncludeErrorCode = "INCLUDE_CYCLE"
	ErrCodeNoLoader        IncludeErrorCode = "NO_INCLUDE_LOADER"
)

// IncludeError reports an include directive that could not be expanded.
type IncludeError struct {
	Code  IncludeErrorCode
	Path  string   // path as written in the directive
	Pos   ir.Pos   // position of the directive
	Chain []string // documents being expanded, outermost first
	Err   error
}

func (e *IncludeError) Error() string {
	msg := fmt.Sprintf("%s: %s: include %q", e.Pos, e.Code, e.Path)
	if len(e.Chain) > 0 {
		msg += " (" + strings.Join(e.Chain, " -> ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IncludeError) Unwrap() error {
	return e.Err
}

// ValidationFailure carries every validation error of a run.
type ValidationFailure struct {
	Errors []compiler.ValidationError
}

func (e *ValidationFailure) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors, first: %s", len(e.Errors), e.Errors[0].Error())
}

// IsValidationFailure reports whether err carries intrinsic validation errors.
func IsValidationFailure(err error) bool {
	var vf *ValidationFailure
	return errors.As(err, &vf)
}
