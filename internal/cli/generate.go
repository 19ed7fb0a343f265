package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tdgen/internal/engine"
	"github.com/roach88/tdgen/internal/ir"
	"github.com/roach88/tdgen/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Output   string // output file path
	Database string // optional catalog to record the run in

	// RunIDs overrides the run id generator (for testing).
	// If nil, the engine default (UUIDv7) is used.
	RunIDs engine.RunIDGenerator
}

// GenerateOutput is the machine-readable result of a generate run.
type GenerateOutput struct {
	RunID       string                 `json:"run_id" yaml:"run_id"`
	Fingerprint string                 `json:"fingerprint" yaml:"fingerprint"`
	Stats       engine.Stats           `json:"stats" yaml:"stats"`
	Archs       []ArchOutput           `json:"archs" yaml:"archs"`
	Skipped     []engine.SkippedRecord `json:"skipped" yaml:"skipped"`
}

// ArchOutput lists the signatures of one architecture.
type ArchOutput struct {
	Arch       string            `json:"arch" yaml:"arch"`
	Signatures []SignatureOutput `json:"signatures" yaml:"signatures"`
}

// SignatureOutput is one signature with its types rendered.
type SignatureOutput struct {
	Name      string   `json:"name" yaml:"name"`
	Intrinsic string   `json:"intrinsic" yaml:"intrinsic"`
	Return    string   `json:"return" yaml:"return"`
	Params    []string `json:"params" yaml:"params"`
	Overloads []string `json:"overloads" yaml:"overloads"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <file-or-dir>...",
		Short: "Expand intrinsic definitions into signatures",
		Long: `Parse record-language files, resolve class inheritance and expand every
intrinsic into its concrete signatures, grouped by architecture.

Directories contribute every .td file below them. Includes are resolved
relative to the including file, then under --include directories and the
include_dirs of --config.

Examples:
  tdgen generate Intrinsics.td -I include
  tdgen generate ./defs --format json -o signatures.json
  tdgen generate ./defs --db catalog.db`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite catalog to record the run in")

	return cmd
}

func runGenerate(opts *GenerateOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	inputs, err := LoadInputs(opts.RootOptions, paths)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Found %d root document(s)", len(inputs.Files))

	engOpts := []engine.Option{engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr()))}
	if opts.RunIDs != nil {
		engOpts = append(engOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("opening catalog: %v", err), nil)
		}
		defer st.Close()
		engOpts = append(engOpts, engine.WithStore(st))
	}

	eng := inputs.NewEngine(engOpts...)
	res, err := eng.Run(ctx, inputs.Documents)
	if err != nil {
		return stageFailure(formatter, err)
	}

	out := buildGenerateOutput(res)
	if opts.Output != "" {
		if err := writeOutputFile(out, opts.Output); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	if formatter.Format != "text" {
		return formatter.Success(out)
	}
	writeGenerateText(formatter, out, opts.Output, opts.Database)
	return nil
}

// buildGenerateOutput renders a result for output.
func buildGenerateOutput(res *engine.Result) GenerateOutput {
	out := GenerateOutput{
		RunID:       res.RunID,
		Fingerprint: res.Fingerprint,
		Stats:       res.Stats,
		Archs:       make([]ArchOutput, 0, len(res.Groups)),
		Skipped:     res.Skipped,
	}
	if out.Skipped == nil {
		out.Skipped = []engine.SkippedRecord{}
	}

	for _, g := range res.Groups {
		arch := ArchOutput{Arch: g.Arch, Signatures: []SignatureOutput{}}
		for _, is := range g.Intrinsics {
			for _, s := range is.Signatures {
				arch.Signatures = append(arch.Signatures, signatureOutput(s))
			}
		}
		out.Archs = append(out.Archs, arch)
	}
	return out
}

func signatureOutput(s ir.Signature) SignatureOutput {
	ret := "void"
	if s.Return != nil {
		ret = s.Return.String()
	}
	return SignatureOutput{
		Name:      s.Name,
		Intrinsic: s.Intrinsic,
		Return:    ret,
		Params:    ir.TypeStrings(s.Params),
		Overloads: ir.TypeStrings(s.Overloads),
	}
}

// writeGenerateText prints one block per architecture.
func writeGenerateText(f *OutputFormatter, out GenerateOutput, outputFile, database string) {
	w := f.Writer
	fmt.Fprintf(w, "✓ Generated %d signature(s) for %d intrinsic(s) in %d architecture(s)\n\n",
		out.Stats.Signatures, out.Stats.Intrinsics, len(out.Archs))

	for _, arch := range out.Archs {
		fmt.Fprintf(w, "[%s]\n", arch.Arch)
		for _, s := range arch.Signatures {
			fmt.Fprintf(w, "  %s : %s (%s)\n", s.Name, s.Return, strings.Join(s.Params, ", "))
		}
		fmt.Fprintln(w)
	}

	if len(out.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped:")
		for _, s := range out.Skipped {
			fmt.Fprintf(w, "  %s: %s\n", s.Record, s.Reason)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Fingerprint: %s\n", out.Fingerprint)
	if database != "" {
		fmt.Fprintf(w, "Recorded run %s in %s\n", out.RunID, database)
	}
	if outputFile != "" {
		fmt.Fprintf(w, "Wrote signatures to %s\n", outputFile)
	}
}

// writeOutputFile writes out as YAML for .yaml/.yml paths and as indented
// JSON otherwise.
func writeOutputFile(out GenerateOutput, filename string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(out)
	default:
		data, err = json.MarshalIndent(out, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling signatures: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
