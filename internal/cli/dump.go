package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tdgen/internal/compiler"
	"github.com/roach88/tdgen/internal/engine"
	"github.com/roach88/tdgen/internal/ir"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Filter string // record and class filter (glob pattern)
}

// DumpOutput is the parsed view of the inputs.
type DumpOutput struct {
	Documents []string     `json:"documents" yaml:"documents"`
	Classes   []ClassDump  `json:"classes" yaml:"classes"`
	Records   []RecordDump `json:"records" yaml:"records"`
}

// ClassDump is one class declaration.
type ClassDump struct {
	Name  string   `json:"name" yaml:"name"`
	Kind  string   `json:"kind" yaml:"kind"` // "class" or "multiclass"
	Pos   string   `json:"pos" yaml:"pos"`
	Args  []string `json:"args" yaml:"args"`
	Bases []string `json:"bases" yaml:"bases"`
}

// RecordDump is one record with its written and resolved base lists.
// Error is set instead of Resolved when resolution fails.
type RecordDump struct {
	Name     string   `json:"name" yaml:"name"`
	Kind     string   `json:"kind" yaml:"kind"` // "def" or "defm"
	Pos      string   `json:"pos" yaml:"pos"`
	Bases    []string `json:"bases" yaml:"bases"`
	Resolved []string `json:"resolved,omitempty" yaml:"resolved,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump <file-or-dir>...",
		Short: "Print parsed classes and records",
		Long: `Print the classes and records of the inputs after include expansion,
with each record's base classes as written and fully resolved.

Examples:
  tdgen dump Intrinsics.td -I include
  tdgen dump ./defs --filter "int_x86_*" --format yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter classes and records by glob pattern")

	return cmd
}

func runDump(opts *DumpOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid filter pattern: %v", err), nil)
		}
	}

	inputs, err := LoadInputs(opts.RootOptions, paths)
	if err != nil {
		return loadFailure(formatter, err)
	}

	eng := inputs.NewEngine(engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	prog, err := loadProgram(ctx, formatter, eng, inputs)
	if err != nil {
		return err
	}

	classes, err := compiler.IndexClasses(prog.Forest.Classes)
	if err != nil {
		return stageFailure(formatter, &engine.StageError{Stage: engine.StageIndex, Err: err})
	}

	out := buildDump(prog, classes, opts.Filter)
	if formatter.Format != "text" {
		return formatter.Success(out)
	}
	writeDumpText(formatter, out)
	return nil
}

// buildDump renders prog. The program itself is not modified.
func buildDump(prog *engine.Program, classes compiler.ClassTable, filter string) DumpOutput {
	out := DumpOutput{
		Documents: prog.Documents,
		Classes:   []ClassDump{},
		Records:   []RecordDump{},
	}

	for _, cls := range prog.Forest.Classes {
		if !matchFilter(filter, cls.Name) {
			continue
		}
		kind := "class"
		if cls.Multi {
			kind = "multiclass"
		}
		args := make([]string, len(cls.Args))
		for i, a := range cls.Args {
			args[i] = templateArgString(a)
		}
		out.Classes = append(out.Classes, ClassDump{
			Name:  cls.Name,
			Kind:  kind,
			Pos:   cls.Pos.String(),
			Args:  args,
			Bases: typeStrings(cls.Bases),
		})
	}

	for _, rec := range prog.Forest.Records {
		if !matchFilter(filter, rec.Name) {
			continue
		}
		kind := "def"
		if rec.Multi {
			kind = "defm"
		}
		d := RecordDump{
			Name:  rec.Name,
			Kind:  kind,
			Pos:   rec.Pos.String(),
			Bases: typeStrings(rec.Bases),
		}
		if resolved, err := compiler.ResolveBases(rec, classes); err != nil {
			d.Error = err.Error()
		} else {
			d.Resolved = typeStrings(resolved)
		}
		out.Records = append(out.Records, d)
	}
	return out
}

func matchFilter(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, _ := filepath.Match(pattern, name)
	return ok
}

func templateArgString(a ir.TemplateArg) string {
	s := a.Type.String() + " " + a.Name
	if a.Default != nil {
		s += " = " + ir.ValueString(a.Default)
	}
	return s
}

func typeStrings(refs []ir.TDType) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

func writeDumpText(f *OutputFormatter, out DumpOutput) {
	w := f.Writer
	fmt.Fprintf(w, "Documents: %s\n\n", strings.Join(out.Documents, ", "))

	if len(out.Classes) > 0 {
		fmt.Fprintln(w, "Classes:")
		for _, c := range out.Classes {
			fmt.Fprintf(w, "  %s %s", c.Kind, c.Name)
			if len(c.Args) > 0 {
				fmt.Fprintf(w, "<%s>", strings.Join(c.Args, ", "))
			}
			if len(c.Bases) > 0 {
				fmt.Fprintf(w, " : %s", strings.Join(c.Bases, ", "))
			}
			fmt.Fprintf(w, "  [%s]\n", c.Pos)
		}
		fmt.Fprintln(w)
	}

	if len(out.Records) > 0 {
		fmt.Fprintln(w, "Records:")
		for _, r := range out.Records {
			fmt.Fprintf(w, "  %s %s : %s  [%s]\n", r.Kind, r.Name, strings.Join(r.Bases, ", "), r.Pos)
			if r.Error != "" {
				fmt.Fprintf(w, "    error: %s\n", r.Error)
				continue
			}
			for _, b := range r.Resolved {
				fmt.Fprintf(w, "    -> %s\n", b)
			}
		}
	}
}
