package cli

import (
	scafferrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/internal/models"
	"github.com/toyz/scaffold/internal/synth"
	"github.com/toyz/scaffold/internal/tagging"
	"github.com/toyz/scaffold/internal/typeref"
)

// TypeReport is the synthesis outcome for one type.
type TypeReport struct {
	Identity    string          `json:"identity"`
	Valid       bool            `json:"valid"`
	HandleField *models.Field   `json:"handle_field,omitempty"`
	Methods     []models.Method `json:"methods,omitempty"`
	Finders     []string        `json:"finders,omitempty"`
}

// RunReport is the outcome of one full engine run: per-type synthesis results
// plus the capability-tagged generation.
type RunReport struct {
	TypesProcessed int          `json:"types_processed"`
	Synthesized    []TypeReport `json:"synthesized"`

	Generation *models.Generation `json:"-"`
}

// Engine drives the pipeline: snapshot in, synthesized members and a tagged
// generation out. A failure for one type is recorded and never blocks its
// siblings; the accumulated errors come back alongside the partial report.
type Engine struct {
	reporter *DiagnosticReporter
}

// NewEngine builds an engine reporting through the given reporter.
func NewEngine(reporter *DiagnosticReporter) *Engine {
	return &Engine{reporter: reporter}
}

// Run executes the full pipeline over one snapshot.
func (e *Engine) Run(snap *Snapshot) (*RunReport, error) {
	gen, err := snap.BuildGeneration()
	if err != nil {
		return nil, err
	}
	e.reporter.Debug("loaded %d type structures from %s", gen.Len(), snap.SourcePath)

	report := &RunReport{TypesProcessed: gen.Len()}
	multi := &scafferrors.MultipleErrors{}
	builder := tagging.NewGenerationBuilder(gen)

	synthesizers, err := e.buildSynthesizers(snap, gen, multi)
	if err != nil {
		return nil, err
	}

	for _, spec := range snap.Types {
		s, ok := synthesizers[spec.Type]
		if !ok {
			continue
		}
		res, err := s.Synthesize()
		if err != nil {
			e.reporter.Debug("synthesis failed for %s: %v", spec.Type, err)
			multi.Add(asScaffoldError(err))
			continue
		}
		if !res.Valid {
			report.Synthesized = append(report.Synthesized, TypeReport{Identity: s.Identity()})
			continue
		}
		report.Synthesized = append(report.Synthesized, TypeReport{
			Identity:    s.Identity(),
			Valid:       true,
			HandleField: res.HandleField,
			Methods:     res.Methods,
			Finders:     res.Finders,
		})
		if err := e.applyTags(builder, gen, s.Identity(), res); err != nil {
			multi.Add(asScaffoldError(err))
		}
	}

	tagged, err := builder.Build()
	if err != nil {
		multi.Add(asScaffoldError(err))
		tagged = gen
	}
	report.Generation = tagged

	if !multi.IsEmpty() {
		return report, multi
	}
	return report, nil
}

// buildSynthesizers constructs one synthesizer per behavior-carrying type,
// linking each to its supertype's synthesizer when that supertype carries a
// behavior of its own. A type whose own configuration is broken is recorded
// in multi and skipped; its subtypes proceed as chain roots. Supertype cycles
// are fatal for the whole run.
func (e *Engine) buildSynthesizers(snap *Snapshot, gen *models.Generation, multi *scafferrors.MultipleErrors) (map[string]*synth.Synthesizer, error) {
	byType := make(map[string]*TypeSpec, len(snap.Types))
	for i := range snap.Types {
		byType[snap.Types[i].Type] = &snap.Types[i]
	}

	built := make(map[string]*synth.Synthesizer)
	visited := make(map[string]bool)
	var build func(spec *TypeSpec, trail map[string]bool) (*synth.Synthesizer, error)
	build = func(spec *TypeSpec, trail map[string]bool) (*synth.Synthesizer, error) {
		if visited[spec.Type] {
			return built[spec.Type], nil
		}
		if trail[spec.Type] {
			return nil, scafferrors.Newf(scafferrors.SnapshotErrorCode,
				"supertype chain of %s contains a cycle", spec.Type)
		}
		trail[spec.Type] = true

		var parent *synth.Synthesizer
		if spec.Supertype != "" {
			if super, ok := byType[spec.Supertype]; ok && super.Behavior != nil {
				p, err := build(super, trail)
				if err != nil {
					return nil, err
				}
				parent = p
			}
		}

		var view models.TypeStructureView
		if ts, ok := gen.StructureFor(structureIdentity(snap, spec)); ok {
			view = ts
		}
		s, err := synth.New(synth.Config{
			Identity: structureIdentity(snap, spec),
			View:     view,
			Spec:     spec.Behavior,
			Parent:   parent,
		})
		visited[spec.Type] = true
		if err != nil {
			e.reporter.Debug("skipping %s: %v", spec.Type, err)
			multi.Add(asScaffoldError(err))
			return nil, nil
		}
		built[spec.Type] = s
		return s, nil
	}

	for i := range snap.Types {
		spec := &snap.Types[i]
		if spec.Behavior == nil {
			continue
		}
		if _, err := build(spec, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	return built, nil
}

// applyTags marks the members synthesis touched so downstream passes can
// recognize them. Only members present in the generation can carry tags:
// the identifier field always, a reused handle field or user method when one
// was picked up instead of synthesizing a fresh member.
func (e *Engine) applyTags(builder *tagging.GenerationBuilder, gen *models.Generation, id string, res synth.Result) error {
	ts, ok := gen.StructureFor(id)
	if !ok {
		return nil
	}

	for _, f := range ts.Fields() {
		if models.AnnotationNamed(f.Annotations, models.DirectiveID) != nil {
			err := builder.Tag(tagging.Request{
				Identity: id,
				Kind:     tagging.KindField,
				Member:   f.Name,
				Tags:     models.TagSet{models.TagIdentifierField: nil},
			})
			if err != nil {
				return err
			}
			break
		}
	}

	// The handle field can carry a tag only when the structure already
	// declares it; a freshly synthesized handle is not in the generation.
	if res.HandleField != nil && ts.FieldNamed(res.HandleField.Name) != nil {
		err := builder.Tag(tagging.Request{
			Identity: id,
			Kind:     tagging.KindField,
			Member:   res.HandleField.Name,
			Tags:     models.TagSet{models.TagStoreHandle: nil},
		})
		if err != nil {
			return err
		}
	}

	for _, m := range res.Methods {
		if ts.MethodNamed(m.Name, m.ParamTypes()) == nil {
			continue
		}
		err := builder.Tag(tagging.Request{
			Identity: id,
			Kind:     tagging.KindMethod,
			Member:   m.Name,
			Params:   m.ParamTypes(),
			Tags:     m.Tags,
		})
		if err != nil {
			return err
		}
	}

	if len(res.Finders) > 0 {
		err := builder.Tag(tagging.Request{
			Identity: id,
			Kind:     tagging.KindStructure,
			Tags:     models.TagSet{models.TagNamedFinders: res.Finders},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func structureIdentity(snap *Snapshot, spec *TypeSpec) string {
	typ, err := typeref.Parse(spec.Type)
	if err != nil {
		return ""
	}
	return snap.IdentityFor(typ)
}

func asScaffoldError(err error) scafferrors.ScaffoldError {
	if se, ok := err.(scafferrors.ScaffoldError); ok {
		return se
	}
	return scafferrors.Wrap(scafferrors.UnknownErrorCode, "unexpected failure", err)
}
