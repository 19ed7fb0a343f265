package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tdgen/internal/engine"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid" yaml:"valid"`
	Report *engine.Report `json:"report" yaml:"report"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file-or-dir>...",
		Short: "Check definitions without generating signatures",
		Long: `Check record-language files without expanding signatures.

Reports class inheritance cycles, records that fail to resolve, intrinsics
whose type lists are invalid and records skipped for unknown type
descriptors. Unlike generate, every problem is reported, not just the first.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	inputs, err := LoadInputs(opts, paths)
	if err != nil {
		return loadFailure(formatter, err)
	}

	eng := inputs.NewEngine(engine.WithLogger(newLogger(opts, cmd.ErrOrStderr())))
	prog, err := loadProgram(ctx, formatter, eng, inputs)
	if err != nil {
		return err
	}

	report, err := eng.Check(ctx, prog)
	if err != nil {
		return stageFailure(formatter, err)
	}

	if report.OK() {
		return outputValidateSuccess(formatter, report)
	}
	return outputValidationErrors(formatter, report)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, report *engine.Report) error {
	if formatter.Format != "text" {
		return formatter.Success(ValidationResult{Valid: true, Report: report})
	}

	fmt.Fprintf(formatter.Writer, "✓ All definitions valid (%d intrinsic(s))\n", report.Intrinsics)
	writeSkipped(formatter, report.Skipped)
	return nil
}

// outputValidationErrors outputs every problem in the report.
func outputValidationErrors(formatter *OutputFormatter, report *engine.Report) error {
	problems := countProblems(report)
	code, message := firstProblem(report)

	if formatter.Format != "text" {
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Report: report},
			Error:  &CLIError{Code: code, Message: message},
		}); err != nil {
			return err
		}
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", problems))
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)

	for _, c := range report.Cycles {
		fmt.Fprintf(w, "  %s: %s (%s)\n", ErrCodeResolve, c.Message, strings.Join(c.Path, " -> "))
	}
	for _, msg := range report.ResolveErrors {
		fmt.Fprintf(w, "  %s: %s\n", ErrCodeResolve, msg)
	}
	for _, v := range report.Invalid {
		fmt.Fprintf(w, "  %s: %s: %s: %s\n", v.Code, v.Intrinsic, v.Field, v.Message)
	}
	writeSkipped(formatter, report.Skipped)

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", problems))
}

func writeSkipped(formatter *OutputFormatter, skipped []engine.SkippedRecord) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "Skipped %d record(s):\n", len(skipped))
	for _, s := range skipped {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", s.Record, s.Reason)
	}
}

func countProblems(r *engine.Report) int {
	return len(r.Cycles) + len(r.ResolveErrors) + len(r.Invalid)
}

// firstProblem picks the code and message of the response's error field.
func firstProblem(r *engine.Report) (string, string) {
	switch {
	case len(r.Cycles) > 0:
		return ErrCodeResolve, r.Cycles[0].Message
	case len(r.ResolveErrors) > 0:
		return ErrCodeResolve, r.ResolveErrors[0]
	case len(r.Invalid) > 0:
		return r.Invalid[0].Code, r.Invalid[0].Error()
	}
	return ErrCodeGeneric, "no problems"
}
