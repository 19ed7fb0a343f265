package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/roach88/tdgen/internal/config"
	"github.com/roach88/tdgen/internal/engine"
)

// Error code constants - unified across all CLI commands.
// Validation failures report the E1xx code of their first error.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No .td files found
	ErrCodeConfig      = "E004" // Configuration load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeDatabase    = "E006" // Catalog open or query failed
	ErrCodeWriteFailed = "E007" // File write error

	// Pipeline stage errors
	ErrCodeLex      = "E010"
	ErrCodeParse    = "E011"
	ErrCodeInclude  = "E012"
	ErrCodeIndex    = "E013"
	ErrCodeResolve  = "E014"
	ErrCodeExtract  = "E015"
	ErrCodeValidate = "E016"
	ErrCodePermute  = "E017"
)

var stageCodes = map[engine.Stage]string{
	engine.StageLex:      ErrCodeLex,
	engine.StageParse:    ErrCodeParse,
	engine.StageInclude:  ErrCodeInclude,
	engine.StageIndex:    ErrCodeIndex,
	engine.StageResolve:  ErrCodeResolve,
	engine.StageExtract:  ErrCodeExtract,
	engine.StageValidate: ErrCodeValidate,
	engine.StagePermute:  ErrCodePermute,
}

// MapStageToErrorCode maps a failed pipeline stage to an error code.
func MapStageToErrorCode(stage engine.Stage) string {
	if code, ok := stageCodes[stage]; ok {
		return code
	}
	return ErrCodeGeneric
}

// LoadError represents an error that occurred while collecting inputs.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Inputs is everything a command needs to run the pipeline.
type Inputs struct {
	Config    *config.Config
	Documents []engine.Document
	Files     []string // root documents in load order
}

// LoadInputs loads the configuration and reads every root document named
// by paths. A directory contributes all .td files below it, in lexical
// order. Included files found this way are still parsed only once.
func LoadInputs(opts *RootOptions, paths []string) (*Inputs, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: fmt.Sprintf("loading config: %v", err), Err: err}
	}
	if opts.Config != "" {
		cfg.ResolveIncludeDirs(filepath.Dir(opts.Config))
	}
	cfg.IncludeDirs = append(cfg.IncludeDirs, opts.IncludeDirs...)

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", p), Err: err}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", p, err), Err: err}
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		found, err := FindTDFiles(p)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: "no .td files found"}
	}

	docs := make([]engine.Document, 0, len(files))
	for _, f := range files {
		doc, err := engine.ReadDocument(f)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", f, err), Err: err}
		}
		docs = append(docs, doc)
	}

	return &Inputs{Config: cfg, Documents: docs, Files: files}, nil
}

// FindTDFiles walks the directory and returns all .td file paths.
func FindTDFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".td" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// NewEngine builds an engine for in that resolves includes on disk.
func (in *Inputs) NewEngine(opts ...engine.Option) *engine.Engine {
	loader := engine.FileLoader{IncludeDirs: slices.Clone(in.Config.IncludeDirs)}
	return engine.New(in.Config, append([]engine.Option{engine.WithIncludeLoader(loader)}, opts...)...)
}

// loadProgram reads, parses and include-expands the inputs. Failures are
// reported through f.
func loadProgram(ctx context.Context, f *OutputFormatter, eng *engine.Engine, in *Inputs) (*engine.Program, error) {
	prog, err := eng.Load(ctx, in.Documents)
	if err != nil {
		return nil, stageFailure(f, err)
	}
	f.VerboseLog("Loaded %d document(s): %d class(es), %d record(s)",
		len(prog.Documents), len(prog.Forest.Classes), len(prog.Forest.Records))
	return prog, nil
}

// loadFailure reports an input error.
func loadFailure(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return f.fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
	}
	return f.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

// stageFailure reports a pipeline error. Invalid intrinsics are validation
// failures; everything else is a command error.
func stageFailure(f *OutputFormatter, err error) error {
	var vf *engine.ValidationFailure
	if errors.As(err, &vf) {
		return f.fail(ExitFailure, vf.Errors[0].Code, err.Error(), vf.Errors)
	}

	stage := engine.FailedStage(err)
	exitCode := ExitCommandError
	if stage == engine.StagePermute {
		exitCode = ExitFailure
	}
	return f.fail(exitCode, MapStageToErrorCode(stage), err.Error(), nil)
}
