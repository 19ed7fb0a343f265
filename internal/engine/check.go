package engine

import (
	"context"

	"github.com/roach88/tdgen/internal/compiler"
	"github.com/roach88/tdgen/internal/ir"
)

// Report collects every problem in a program without stopping at the first.
type Report struct {
	Cycles        []compiler.CycleWarning    `json:"cycles" yaml:"cycles"`
	ResolveErrors []string                   `json:"resolve_errors" yaml:"resolve_errors"`
	Invalid       []compiler.ValidationError `json:"invalid" yaml:"invalid"`
	Skipped       []SkippedRecord            `json:"skipped" yaml:"skipped"`
	Intrinsics    int                        `json:"intrinsics" yaml:"intrinsics"`
}

// OK reports whether the program would generate without a fatal error.
func (r *Report) OK() bool {
	return len(r.Cycles) == 0 && len(r.ResolveErrors) == 0 && len(r.Invalid) == 0
}

// Check analyzes prog the way Generate would, but records problems per
// record instead of failing. A duplicate class is still returned as an error
// because nothing can be resolved without a class table.
func (e *Engine) Check(ctx context.Context, prog *Program) (*Report, error) {
	report := &Report{
		Cycles:        compiler.AnalyzeClassCycles(prog.Forest.Classes),
		ResolveErrors: []string{},
		Invalid:       []compiler.ValidationError{},
		Skipped:       []SkippedRecord{},
	}

	classes, err := compiler.IndexClasses(prog.Forest.Classes)
	if err != nil {
		return nil, &StageError{Stage: StageIndex, Err: err}
	}
	x := compiler.NewExtractor(e.extractorConfig(), classes, e.interner)

	for _, rec := range prog.Forest.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !x.IsIntrinsic(rec) {
			continue
		}

		bases, err := compiler.ResolveBases(rec, classes)
		if err != nil {
			report.ResolveErrors = append(report.ResolveErrors, err.Error())
			continue
		}
		// Extract a copy so prog stays unresolved for later stages.
		resolved := &ir.RecordDef{Name: rec.Name, Multi: rec.Multi, Bases: bases, Pos: rec.Pos}
		in, err := x.Extract(resolved)
		if err != nil {
			if compiler.IsDescriptorError(err) {
				report.Skipped = append(report.Skipped, SkippedRecord{Record: rec.Name, Reason: err.Error()})
				continue
			}
			report.ResolveErrors = append(report.ResolveErrors, err.Error())
			continue
		}
		report.Intrinsics++
		report.Invalid = append(report.Invalid, compiler.Validate(in)...)
	}
	return report, nil
}
