package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is an optional fixed run id. If empty, defaults to
	// "test-run-default" for deterministic golden file comparison.
	RunID string `yaml:"run_id,omitempty"`

	// Config is an optional YAML or CUE configuration file.
	Config string `yaml:"config,omitempty"`

	// IncludeDirs are searched for includes after the including
	// document's own directory, after any include_dirs from Config.
	IncludeDirs []string `yaml:"include_dirs,omitempty"`

	// Sources are inline documents, parsed in order before Files.
	Sources []Source `yaml:"sources,omitempty"`

	// Files are documents read from disk.
	Files []string `yaml:"files,omitempty"`

	// Assertions validate the run's output.
	Assertions []Assertion `yaml:"assertions"`
}

// Source is one inline document.
type Source struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

// Assertion validates the signatures, skips or failure of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "signature": Check a signature exists (with optional shape)
	// - "signature_order": Check signatures appear in order
	// - "signature_count": Check the number of signatures
	// - "skipped": Check a record was skipped
	// - "error": Check the run failed
	// - "catalog": Query the catalog by selector name
	Type string `yaml:"type"`

	// Name is the selector (used by signature and catalog).
	Name string `yaml:"name,omitempty"`

	// Arch, Return and Params constrain the signature when set
	// (used by signature).
	Arch   string   `yaml:"arch,omitempty"`
	Return string   `yaml:"return,omitempty"`
	Params []string `yaml:"params,omitempty"`

	// Names is the expected selector order (used by signature_order).
	Names []string `yaml:"names,omitempty"`

	// Intrinsic restricts counting to one record (used by signature_count).
	Intrinsic string `yaml:"intrinsic,omitempty"`

	// Count is the expected number of matches (used by signature_count
	// and catalog).
	Count int `yaml:"count,omitempty"`

	// Record is the skipped record name (used by skipped).
	Record string `yaml:"record,omitempty"`

	// Stage and Contains constrain the failure (used by error).
	Stage    string `yaml:"stage,omitempty"`
	Contains string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertSignature      = "signature"
	AssertSignatureOrder = "signature_order"
	AssertSignatureCount = "signature_count"
	AssertSkipped        = "skipped"
	AssertError          = "error"
	AssertCatalog        = "catalog"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// Relative config, file and include paths are resolved against the
// scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, f := range scenario.Files {
		scenario.Files[i] = resolvePath(base, f)
	}
	for i, d := range scenario.IncludeDirs {
		scenario.IncludeDirs[i] = resolvePath(base, d)
	}
	if scenario.Config != "" {
		scenario.Config = resolvePath(base, scenario.Config)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// validateScenario checks required fields and assertion shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Sources) == 0 && len(s.Files) == 0 {
		return fmt.Errorf("at least one source or file is required")
	}

	seen := make(map[string]bool, len(s.Sources))
	for i, src := range s.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, src.Name)
		}
		seen[src.Name] = true
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSignature:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for signature", index)
		}
	case AssertSignatureOrder:
		if len(a.Names) == 0 {
			return fmt.Errorf("assertions[%d]: names list is required for signature_order", index)
		}
	case AssertSignatureCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for signature_count", index)
		}
	case AssertSkipped:
		if a.Record == "" {
			return fmt.Errorf("assertions[%d]: record is required for skipped", index)
		}
	case AssertError:
	case AssertCatalog:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for catalog", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for catalog", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
