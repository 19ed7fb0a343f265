// Package config holds the naming conventions and search paths of a run.
//
// Defaults describe the upstream intrinsic tables. A YAML or CUE file may
// override any field; unset fields keep their defaults and legacy names are
// merged key by key.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE []byte

// Config is the full configuration of one run.
type Config struct {
	IntrinsicClass string            `yaml:"intrinsic_class" json:"intrinsic_class"`
	RecordPrefix   string            `yaml:"record_prefix" json:"record_prefix"`
	NamePrefix     string            `yaml:"name_prefix" json:"name_prefix"`
	TypePrefixes   []string          `yaml:"type_prefixes" json:"type_prefixes"`
	TypeSuffix     string            `yaml:"type_suffix" json:"type_suffix"`
	Targets        []string          `yaml:"targets" json:"targets"`
	AliasClasses   []string          `yaml:"alias_classes" json:"alias_classes"`
	LegacyNames    map[string]string `yaml:"legacy_names" json:"legacy_names"`
	IncludeDirs    []string          `yaml:"include_dirs" json:"include_dirs"`
}

// Default returns the built-in configuration. Each call returns fresh
// slices and maps.
func Default() *Config {
	return &Config{
		IntrinsicClass: "Intrinsic",
		RecordPrefix:   "int_",
		NamePrefix:     "llvm.",
		TypePrefixes:   []string{"llvm_x86", "llvm_"},
		TypeSuffix:     "_ty",
		Targets: []string{
			"aarch64", "amdgcn", "arm", "bpf", "dx", "hexagon", "loongarch",
			"mips", "nvvm", "ppc", "riscv", "s390", "spv", "ve", "wasm",
			"x86", "xcore",
		},
		AliasClasses: []string{"ClangBuiltin", "GCCBuiltin", "MSBuiltin"},
		LegacyNames: map[string]string{
			"int_stepvector": "llvm.experimental.stepvector",
		},
		IncludeDirs: []string{},
	}
}

// fileConfig is the on-disk shape. Nil fields are absent from the file.
type fileConfig struct {
	IntrinsicClass *string           `yaml:"intrinsic_class" json:"intrinsic_class,omitempty"`
	RecordPrefix   *string           `yaml:"record_prefix" json:"record_prefix,omitempty"`
	NamePrefix     *string           `yaml:"name_prefix" json:"name_prefix,omitempty"`
	TypePrefixes   []string          `yaml:"type_prefixes" json:"type_prefixes,omitempty"`
	TypeSuffix     *string           `yaml:"type_suffix" json:"type_suffix,omitempty"`
	Targets        []string          `yaml:"targets" json:"targets,omitempty"`
	AliasClasses   []string          `yaml:"alias_classes" json:"alias_classes,omitempty"`
	LegacyNames    map[string]string `yaml:"legacy_names" json:"legacy_names,omitempty"`
	IncludeDirs    []string          `yaml:"include_dirs" json:"include_dirs,omitempty"`
}

func (f *fileConfig) apply(cfg *Config) {
	if f.IntrinsicClass != nil {
		cfg.IntrinsicClass = *f.IntrinsicClass
	}
	if f.RecordPrefix != nil {
		cfg.RecordPrefix = *f.RecordPrefix
	}
	if f.NamePrefix != nil {
		cfg.NamePrefix = *f.NamePrefix
	}
	if f.TypePrefixes != nil {
		cfg.TypePrefixes = f.TypePrefixes
	}
	if f.TypeSuffix != nil {
		cfg.TypeSuffix = *f.TypeSuffix
	}
	if f.Targets != nil {
		cfg.Targets = f.Targets
	}
	if f.AliasClasses != nil {
		cfg.AliasClasses = f.AliasClasses
	}
	maps.Copy(cfg.LegacyNames, f.LegacyNames)
	if f.IncludeDirs != nil {
		cfg.IncludeDirs = f.IncludeDirs
	}
}

// Error is a configuration error with an optional CUE source position.
type Error struct {
	File    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .cue. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f *fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		f, err = decodeYAML(path, data)
	case ".cue":
		f, err = decodeCUE(path, data)
	default:
		return nil, &Error{File: path, Message: fmt.Sprintf("unsupported config format %q", ext)}
	}
	if err != nil {
		return nil, err
	}

	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, &Error{File: path, Message: err.Error()}
	}
	return cfg, nil
}

func decodeYAML(path string, data []byte) (*fileConfig, error) {
	var f fileConfig
	if len(bytes.TrimSpace(data)) == 0 {
		return &f, nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return nil, &Error{File: path, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	return &f, nil
}

func decodeCUE(path string, data []byte) (*fileConfig, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("config schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(path, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(path, err)
	}

	var f fileConfig
	if err := unified.Decode(&f); err != nil {
		return nil, formatCUEError(path, err)
	}
	return &f, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(path string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{File: path, Message: err.Error()}
	}

	first := errs[0]
	e := &Error{File: path, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}

// Validate checks fields the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.IntrinsicClass == "" {
		return fmt.Errorf("intrinsic_class must be non-empty")
	}
	if c.RecordPrefix == "" {
		return fmt.Errorf("record_prefix must be non-empty")
	}
	if slices.Contains(c.TypePrefixes, "") {
		return fmt.Errorf("type_prefixes must not contain empty strings")
	}
	for record, name := range c.LegacyNames {
		if name == "" {
			return fmt.Errorf("legacy_names[%s] must be non-empty", record)
		}
	}
	return nil
}

// ResolveIncludeDirs makes relative include directories relative to base.
func (c *Config) ResolveIncludeDirs(base string) {
	for i, dir := range c.IncludeDirs {
		if !filepath.IsAbs(dir) {
			c.IncludeDirs[i] = filepath.Join(base, dir)
		}
	}
}
