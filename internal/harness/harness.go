package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/roach88/tdgen/internal/config"
	"github.com/roach88/tdgen/internal/engine"
	"github.com/roach88/tdgen/internal/store"
	"github.com/roach88/tdgen/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory catalog for isolation.
// A run error is not returned: it is recorded in the result so error
// assertions can check it. The returned error is reserved for scenarios
// that cannot be set up (bad config, unreadable files).
//
// Execution flow:
// 1. Load configuration and open an in-memory catalog
// 2. Collect inline sources and files as documents
// 3. Run the generation pipeline with a fixed run id
// 4. Evaluate assertions against the result and the catalog
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with pipeline logs sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	cfg, err := config.Load(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if scenario.Config != "" {
		cfg.ResolveIncludeDirs(filepath.Dir(scenario.Config))
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	docs, inline, err := scenarioDocuments(scenario)
	if err != nil {
		return nil, err
	}

	loader := scenarioLoader{
		inline: inline,
		files:  engine.FileLoader{IncludeDirs: append(slices.Clone(cfg.IncludeDirs), scenario.IncludeDirs...)},
	}
	eng := engine.New(cfg,
		engine.WithLogger(logger),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		engine.WithIncludeLoader(loader),
		engine.WithStore(st),
	)

	ctx := context.Background()
	result := NewResult()

	res, err := eng.Run(ctx, docs)
	if err != nil {
		result.Stage = engine.FailedStage(err)
		result.Failure = err.Error()
		logger.Info("scenario run failed", "scenario", scenario.Name, "stage", result.Stage, "error", err)
	} else {
		result.RunID = res.RunID
		result.Signatures = append(result.Signatures, res.Signatures()...)
		result.Skipped = append(result.Skipped, res.Skipped...)
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	if result.Failed() && !expectsError(scenario.Assertions) {
		result.AddError(fmt.Sprintf("unexpected run failure: %s", result.Failure))
	}

	return result, nil
}

func expectsError(assertions []Assertion) bool {
	return slices.ContainsFunc(assertions, func(a Assertion) bool {
		return a.Type == AssertError
	})
}

// scenarioDocuments returns the root documents of a scenario and the inline
// sources by name.
func scenarioDocuments(s *Scenario) ([]engine.Document, engine.MapLoader, error) {
	inline := make(engine.MapLoader, len(s.Sources))
	docs := make([]engine.Document, 0, len(s.Sources)+len(s.Files))
	for _, src := range s.Sources {
		inline[src.Name] = src.Text
		docs = append(docs, engine.Document{Name: src.Name, Source: src.Text})
	}
	for _, f := range s.Files {
		doc, err := engine.ReadDocument(f)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		docs = append(docs, doc)
	}
	return docs, inline, nil
}

// scenarioLoader resolves includes against inline sources first, then the
// filesystem.
type scenarioLoader struct {
	inline engine.MapLoader
	files  engine.FileLoader
}

func (l scenarioLoader) Include(from, path string) (engine.Document, error) {
	if _, ok := l.inline[path]; ok {
		return l.inline.Include(from, path)
	}
	return l.files.Include(from, path)
}
