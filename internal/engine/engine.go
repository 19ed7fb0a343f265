package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"

	"github.com/roach88/tdgen/internal/compiler"
	"github.com/roach88/tdgen/internal/config"
	"github.com/roach88/tdgen/internal/ir"
	"github.com/roach88/tdgen/internal/lexer"
	"github.com/roach88/tdgen/internal/parser"
	"github.com/roach88/tdgen/internal/signature"
	"github.com/roach88/tdgen/internal/store"
)

// Document is one source text. Name identifies it for positions and for
// include de-duplication, so two documents with the same Name are the same
// document.
type Document struct {
	Name   string
	Source string
}

// IncludeLoader fetches the document named by an include directive.
type IncludeLoader interface {
	// Include returns the document that path refers to when included
	// from the document named from.
	Include(from, path string) (Document, error)
}

// Program is the parsed, include-expanded input of a run.
type Program struct {
	Documents []string    // names of every document parsed, in parse order
	Objects   []ir.Object // top-level objects, included documents spliced in
	Forest    parser.Forest
}

// Result is the output of a successful run.
type Result struct {
	RunID       string
	Fingerprint string
	Groups      []ArchGroup
	Skipped     []SkippedRecord
	Stats       Stats
}

// ArchGroup holds the intrinsics of one architecture, sorted by name.
type ArchGroup struct {
	Arch       string
	Intrinsics []IntrinsicSignatures
}

// IntrinsicSignatures pairs an intrinsic with its expanded signatures.
type IntrinsicSignatures struct {
	Intrinsic  *ir.Intrinsic
	Signatures []ir.Signature
}

// SkippedRecord is an intrinsic record dropped during extraction.
type SkippedRecord struct {
	Record string `json:"record"`
	Reason string `json:"reason"`
}

// Stats counts what a run saw and produced.
type Stats struct {
	Documents  int `json:"documents"`
	Classes    int `json:"classes"`
	Records    int `json:"records"`
	Intrinsics int `json:"intrinsics"`
	Overloaded int `json:"overloaded"`
	Signatures int `json:"signatures"`
}

// Signatures returns every signature of the result in emission order.
func (r *Result) Signatures() []ir.Signature {
	var out []ir.Signature
	for _, g := range r.Groups {
		for _, is := range g.Intrinsics {
			out = append(out, is.Signatures...)
		}
	}
	return out
}

// Engine runs the generation pipeline under one configuration.
//
// An Engine holds no per-run state and may be reused, but Run is not safe
// for concurrent use when a store is attached.
type Engine struct {
	cfg      *config.Config
	interner *compiler.Interner
	gen      *signature.Generator
	logger   *slog.Logger
	runIDs   RunIDGenerator
	loader   IncludeLoader
	store    *store.Store
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRunIDGenerator sets the run id source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// WithIncludeLoader sets the loader used to expand include directives.
// Without one, any include directive fails the run.
func WithIncludeLoader(l IncludeLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithStore records every successful run and its signatures in s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// New creates an Engine for cfg. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:      cfg,
		interner: compiler.NewInterner(cfg.TypePrefixes, cfg.TypeSuffix),
		gen: signature.New(signature.Namer{
			RecordPrefix: cfg.RecordPrefix,
			NamePrefix:   cfg.NamePrefix,
			Legacy:       cfg.LegacyNames,
		}),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runIDs: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run parses docs and generates their signatures.
func (e *Engine) Run(ctx context.Context, docs []Document) (*Result, error) {
	prog, err := e.Load(ctx, docs)
	if err != nil {
		return nil, err
	}
	return e.Generate(ctx, prog)
}

// Load lexes and parses docs in order, expanding includes.
func (e *Engine) Load(ctx context.Context, docs []Document) (*Program, error) {
	l := &loadState{
		engine: e,
		seen:   make(map[string]bool),
		prog:   &Program{},
	}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		objs, err := l.document(doc, nil)
		if err != nil {
			return nil, err
		}
		l.prog.Objects = append(l.prog.Objects, objs...)
	}
	l.prog.Forest = parser.Flatten(l.prog.Objects)

	e.logger.Debug("parsed documents",
		"documents", len(l.prog.Documents),
		"classes", len(l.prog.Forest.Classes),
		"records", len(l.prog.Forest.Records))
	return l.prog, nil
}

// Generate runs every stage after parsing.
func (e *Engine) Generate(ctx context.Context, prog *Program) (*Result, error) {
	classes, err := compiler.IndexClasses(prog.Forest.Classes)
	if err != nil {
		return nil, &StageError{Stage: StageIndex, Err: err}
	}

	x := compiler.NewExtractor(e.extractorConfig(), classes, e.interner)

	// Selection must see the raw bases, so it runs before resolution.
	var selected []*ir.RecordDef
	for _, rec := range prog.Forest.Records {
		if x.IsIntrinsic(rec) {
			selected = append(selected, rec)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := compiler.Resolve(selected, classes); err != nil {
		return nil, &StageError{Stage: StageResolve, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Stats: Stats{
			Documents: len(prog.Documents),
			Classes:   len(classes),
			Records:   len(prog.Forest.Records),
		},
	}

	var intrinsics []*ir.Intrinsic
	for _, rec := range selected {
		in, err := x.Extract(rec)
		if err != nil {
			if compiler.IsDescriptorError(err) {
				e.logger.Warn("skipping record", "record", rec.Name, "reason", err.Error())
				res.Skipped = append(res.Skipped, SkippedRecord{Record: rec.Name, Reason: err.Error()})
				continue
			}
			return nil, &StageError{Stage: StageExtract, Err: err}
		}
		intrinsics = append(intrinsics, in)
	}

	var invalid []compiler.ValidationError
	for _, in := range intrinsics {
		invalid = append(invalid, compiler.Validate(in)...)
	}
	if len(invalid) > 0 {
		return nil, &StageError{Stage: StageValidate, Err: &ValidationFailure{Errors: invalid}}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Groups, err = e.expand(intrinsics)
	if err != nil {
		return nil, err
	}

	sigs := res.Signatures()
	res.Stats.Intrinsics = len(intrinsics)
	res.Stats.Signatures = len(sigs)
	for _, in := range intrinsics {
		if slices.ContainsFunc(in.TypeList(), ir.IsOpen) {
			res.Stats.Overloaded++
		}
	}

	res.Fingerprint, err = ir.Fingerprint(sigs)
	if err != nil {
		return nil, err
	}
	res.RunID = e.runIDs.Generate()

	if e.store != nil {
		run := store.Run{
			ID:               res.RunID,
			Fingerprint:      res.Fingerprint,
			IRVersion:        ir.IRVersion,
			GeneratorVersion: ir.GeneratorVersion,
			Documents:        prog.Documents,
		}
		if err := e.store.WriteRun(ctx, run, sigs); err != nil {
			return nil, fmt.Errorf("record run %s: %w", res.RunID, err)
		}
	}

	e.logger.Info("generated signatures",
		"run_id", res.RunID,
		"intrinsics", res.Stats.Intrinsics,
		"signatures", res.Stats.Signatures,
		"skipped", len(res.Skipped))
	return res, nil
}

// expand generates signatures and groups them by architecture.
func (e *Engine) expand(intrinsics []*ir.Intrinsic) ([]ArchGroup, error) {
	byArch := make(map[string][]IntrinsicSignatures)
	for _, in := range intrinsics {
		sigs, err := e.gen.Signatures(in)
		if err != nil {
			return nil, &StageError{Stage: StagePermute, Err: err}
		}
		byArch[in.Arch] = append(byArch[in.Arch], IntrinsicSignatures{Intrinsic: in, Signatures: sigs})
	}

	archs := make([]string, 0, len(byArch))
	for arch := range byArch {
		archs = append(archs, arch)
	}
	sort.Strings(archs)

	groups := make([]ArchGroup, 0, len(archs))
	for _, arch := range archs {
		members := byArch[arch]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Intrinsic.Name < members[j].Intrinsic.Name
		})
		groups = append(groups, ArchGroup{Arch: arch, Intrinsics: members})
	}
	return groups, nil
}

func (e *Engine) extractorConfig() compiler.ExtractorConfig {
	return compiler.ExtractorConfig{
		IntrinsicClass: e.cfg.IntrinsicClass,
		RecordPrefix:   e.cfg.RecordPrefix,
		Targets:        e.cfg.Targets,
		AliasClasses:   e.cfg.AliasClasses,
	}
}

// loadState tracks include expansion across the documents of one Load.
type loadState struct {
	engine *Engine
	seen   map[string]bool
	prog   *Program
}

// document parses doc and splices in its includes. stack holds the names
// of the documents currently being expanded.
func (l *loadState) document(doc Document, stack []string) ([]ir.Object, error) {
	if l.seen[doc.Name] {
		return nil, nil
	}
	l.seen[doc.Name] = true
	l.prog.Documents = append(l.prog.Documents, doc.Name)

	objs, err := parser.Parse(doc.Name, doc.Source)
	if err != nil {
		var le *lexer.Error
		if errors.As(err, &le) {
			return nil, &StageError{Stage: StageLex, Err: err}
		}
		return nil, &StageError{Stage: StageParse, Err: err}
	}
	return l.expand(objs, doc.Name, append(stack, doc.Name))
}

// expand returns objs with the objects of each included document placed
// right after its include directive.
func (l *loadState) expand(objs []ir.Object, from string, stack []string) ([]ir.Object, error) {
	out := make([]ir.Object, 0, len(objs))
	for _, obj := range objs {
		out = append(out, obj)
		switch o := obj.(type) {
		case *ir.Include:
			included, err := l.include(o, from, stack)
			if err != nil {
				return nil, err
			}
			out = append(out, included...)
		case *ir.LetGroup:
			inner, err := l.expand(o.Objects, from, stack)
			if err != nil {
				return nil, err
			}
			o.Objects = inner
		}
	}
	return out, nil
}

func (l *loadState) include(inc *ir.Include, from string, stack []string) ([]ir.Object, error) {
	if l.engine.loader == nil {
		return nil, &StageError{Stage: StageInclude, Err: &IncludeError{
			Code: ErrCodeNoLoader,
			Path: inc.Path,
			Pos:  inc.Pos,
		}}
	}
	doc, err := l.engine.loader.Include(from, inc.Path)
	if err != nil {
		return nil, &StageError{Stage: StageInclude, Err: &IncludeError{
			Code: ErrCodeIncludeNotFound,
			Path: inc.Path,
			Pos:  inc.Pos,
			Err:  err,
		}}
	}
	if slices.Contains(stack, doc.Name) {
		chain := append(slices.Clone(stack), doc.Name)
		return nil, &StageError{Stage: StageInclude, Err: &IncludeError{
			Code:  ErrCodeIncludeCycle,
			Path:  inc.Path,
			Pos:   inc.Pos,
			Chain: chain,
		}}
	}
	l.engine.logger.Debug("including document", "from", from, "path", inc.Path, "document", doc.Name)
	return l.document(doc, stack)
}

// MapLoader serves includes from memory, keyed by the path as written.
type MapLoader map[string]string

// Include implements IncludeLoader.
func (m MapLoader) Include(_, path string) (Document, error) {
	src, ok := m[path]
	if !ok {
		return Document{}, fmt.Errorf("no document %q", path)
	}
	return Document{Name: path, Source: src}, nil
}
