package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tdgen/internal/engine"
	"github.com/roach88/tdgen/internal/ir"
)

// Snapshot captures the observable output of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	RunID        string
	Signatures   []ir.Signature
	Skipped      []engine.SkippedRecord
	Stage        engine.Stage
	Failure      string
}

// NewSnapshot captures result under the given scenario name.
func NewSnapshot(name string, result *Result) Snapshot {
	return Snapshot{
		ScenarioName: name,
		RunID:        result.RunID,
		Signatures:   result.Signatures,
		Skipped:      result.Skipped,
		Stage:        result.Stage,
		Failure:      result.Failure,
	}
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. ir.MarshalCanonical only handles primitives, slices and maps.
func (s *Snapshot) toCanonicalMap() map[string]any {
	sigs := make([]any, len(s.Signatures))
	for i, sig := range s.Signatures {
		sigs[i] = ir.SignatureObject(sig)
	}

	skipped := make([]any, len(s.Skipped))
	for i, sk := range s.Skipped {
		skipped[i] = map[string]any{
			"record": sk.Record,
			"reason": sk.Reason,
		}
	}

	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"signatures":    sigs,
		"skipped":       skipped,
	}
	if s.RunID != "" {
		m["run_id"] = s.RunID
	}
	if s.Failure != "" {
		m["error"] = map[string]any{
			"stage":   string(s.Stage),
			"message": s.Failure,
		}
	}
	return m
}

// MarshalCanonical returns the snapshot as canonical JSON.
func (s *Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass and Errors.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewSnapshot(scenarioName, result)
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
