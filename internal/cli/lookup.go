package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tdgen/internal/store"
)

// LookupOptions holds flags for the lookup command.
type LookupOptions struct {
	*RootOptions
	Database string
	RunID    string // list one run; defaults to the latest when no selector is given
}

// LookupResult holds the catalog rows found.
type LookupResult struct {
	Run        *store.Run              `json:"run,omitempty" yaml:"run,omitempty"`
	Signatures []store.SignatureRecord `json:"signatures" yaml:"signatures"`
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookup [selector]...",
		Short: "Query the signature catalog",
		Long: `Query a catalog written by "generate --db".

With selectors, prints every recorded signature with that name across all
runs, oldest run first. Without selectors, prints the signatures of the run
given by --run, or of the latest run.

Examples:
  tdgen lookup --db catalog.db llvm.foo.i32
  tdgen lookup --db catalog.db --run 0191e7a2-...
  tdgen lookup --db catalog.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite catalog (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to list")

	return cmd
}

func runLookup(opts *LookupOptions, selectors []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Opening would create an empty catalog.
	if _, err := os.Stat(opts.Database); errors.Is(err, fs.ErrNotExist) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("opening catalog: %v", err), nil)
	}
	defer st.Close()

	result, err := lookup(ctx, st, opts.RunID, selectors)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, "run not found", nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("querying catalog: %v", err), nil)
	}

	if formatter.Format != "text" {
		return formatter.Success(result)
	}
	writeLookupText(formatter, result)
	return nil
}

func lookup(ctx context.Context, st *store.Store, runID string, selectors []string) (*LookupResult, error) {
	result := &LookupResult{Signatures: []store.SignatureRecord{}}

	if len(selectors) > 0 {
		for _, name := range selectors {
			recs, err := st.LookupSelector(ctx, name)
			if err != nil {
				return nil, err
			}
			result.Signatures = append(result.Signatures, recs...)
		}
		return result, nil
	}

	var (
		run store.Run
		err error
	)
	if runID != "" {
		run, err = st.ReadRun(ctx, runID)
	} else {
		run, err = st.LatestRun(ctx)
	}
	if err != nil {
		return nil, err
	}

	recs, err := st.ReadSignatures(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	result.Run = &run
	result.Signatures = append(result.Signatures, recs...)
	return result, nil
}

func writeLookupText(f *OutputFormatter, result *LookupResult) {
	w := f.Writer
	if result.Run != nil {
		fmt.Fprintf(w, "Run %s (#%d)\n", result.Run.ID, result.Run.Seq)
		fmt.Fprintf(w, "  fingerprint: %s\n", result.Run.Fingerprint)
		fmt.Fprintf(w, "  documents:   %s\n\n", strings.Join(result.Run.Documents, ", "))
	}

	if len(result.Signatures) == 0 {
		fmt.Fprintln(w, "No signatures found.")
		return
	}
	for _, s := range result.Signatures {
		fmt.Fprintf(w, "%s : %s (%s)  [%s, run %s]\n",
			s.Name, s.Return, strings.Join(s.Params, ", "), s.Arch, s.RunID)
	}
}
