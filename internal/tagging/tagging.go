// Package tagging applies capability tags to the members of an immutable
// generation. Structures are never mutated in place: tagging collects deltas
// per declaring type and Build produces a derived generation in which only the
// touched structures are rebuilt, siblings are carried over untouched, and a
// fully redundant set of requests yields the original generation itself.
package tagging

import (
	scafferrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/internal/models"
	"github.com/toyz/scaffold/internal/typeref"
)

// MemberKind selects the dispatch target of a tag request.
type MemberKind int

const (
	// KindField targets a field by name.
	KindField MemberKind = iota
	// KindMethod targets a method by name and parameter signature.
	KindMethod
	// KindConstructor targets a constructor by parameter signature.
	KindConstructor
	// KindStructure targets the type structure's own tag set.
	KindStructure
)

// String returns the kind name for diagnostics.
func (k MemberKind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindStructure:
		return "structure"
	default:
		return "unknown"
	}
}

// Request describes one tag application. Member and Params are interpreted
// per Kind; both are ignored for KindStructure.
type Request struct {
	Identity string
	Kind     MemberKind
	Member   string
	Params   []typeref.TypeRef
	Tags     models.TagSet
}

// GenerationBuilder accumulates tag requests against one generation. Requests
// whose keys are already all present on the target are dropped without
// triggering a rebuild; tag keys only ever grow.
type GenerationBuilder struct {
	original *models.Generation
	builders map[string]*models.StructureBuilder
	changed  bool
}

// NewGenerationBuilder starts a tagging pass over gen.
func NewGenerationBuilder(gen *models.Generation) *GenerationBuilder {
	return &GenerationBuilder{
		original: gen,
		builders: make(map[string]*models.StructureBuilder),
	}
}

// Changed reports whether any request so far produced an effective delta.
func (b *GenerationBuilder) Changed() bool {
	return b.changed
}

// Tag applies one request. Requests against members the generation does not
// contain fail; requests whose keys are all present already are no-ops.
func (b *GenerationBuilder) Tag(req Request) error {
	if len(req.Tags) == 0 {
		return nil
	}
	ts, ok := b.original.StructureFor(req.Identity)
	if !ok {
		return scafferrors.Newf(scafferrors.SnapshotErrorCode,
			"generation contains no structure declared by %s", req.Identity).
			WithLocation(scafferrors.MemberLocation{Identity: req.Identity})
	}

	switch req.Kind {
	case KindField:
		return b.tagField(ts, req)
	case KindMethod:
		return b.tagMethod(ts, req)
	case KindConstructor:
		return b.tagConstructor(ts, req)
	case KindStructure:
		return b.tagStructure(ts, req)
	default:
		return scafferrors.Newf(scafferrors.ConfigurationErrorCode,
			"cannot tag unknown member kind %d", int(req.Kind)).
			WithLocation(scafferrors.MemberLocation{Identity: req.Identity})
	}
}

func (b *GenerationBuilder) tagField(ts models.TypeStructure, req Request) error {
	field := ts.FieldNamed(req.Member)
	if field == nil {
		return b.missingMember(req, "field")
	}
	if field.Tags.ContainsAllKeys(req.Tags) {
		return nil
	}
	sb := b.builderFor(ts)
	for _, k := range req.Tags.Keys() {
		sb.TagField(req.Member, k, req.Tags[k])
	}
	b.changed = true
	return nil
}

func (b *GenerationBuilder) tagMethod(ts models.TypeStructure, req Request) error {
	method := ts.MethodNamed(req.Member, req.Params)
	if method == nil {
		return b.missingMember(req, "method")
	}
	if method.Tags.ContainsAllKeys(req.Tags) {
		return nil
	}
	sb := b.builderFor(ts)
	for _, k := range req.Tags.Keys() {
		sb.TagMethod(req.Member, req.Params, k, req.Tags[k])
	}
	b.changed = true
	return nil
}

func (b *GenerationBuilder) tagConstructor(ts models.TypeStructure, req Request) error {
	ctor := ts.ConstructorMatching(req.Params)
	if ctor == nil {
		return b.missingMember(req, "constructor")
	}
	if ctor.Tags.ContainsAllKeys(req.Tags) {
		return nil
	}
	sb := b.builderFor(ts)
	for _, k := range req.Tags.Keys() {
		sb.TagConstructor(req.Params, k, req.Tags[k])
	}
	b.changed = true
	return nil
}

func (b *GenerationBuilder) tagStructure(ts models.TypeStructure, req Request) error {
	if ts.Tags().ContainsAllKeys(req.Tags) {
		return nil
	}
	sb := b.builderFor(ts)
	for _, k := range req.Tags.Keys() {
		sb.TagStructure(k, req.Tags[k])
	}
	b.changed = true
	return nil
}

func (b *GenerationBuilder) builderFor(ts models.TypeStructure) *models.StructureBuilder {
	id := ts.Identity()
	sb, ok := b.builders[id]
	if !ok {
		sb = models.NewStructureBuilder(ts)
		b.builders[id] = sb
	}
	return sb
}

func (b *GenerationBuilder) missingMember(req Request, kind string) *scafferrors.BaseError {
	return scafferrors.Newf(scafferrors.SnapshotErrorCode,
		"structure has no %s matching %q", kind, req.Member).
		WithLocation(scafferrors.MemberLocation{Identity: req.Identity, Member: req.Member})
}

// Build returns the tagged generation. When no request produced a delta the
// original generation is returned as-is; otherwise a derived generation under
// the same ID carries rebuilt copies of the touched structures and the very
// same untouched siblings.
func (b *GenerationBuilder) Build() (*models.Generation, error) {
	if !b.changed {
		return b.original, nil
	}
	structures := b.original.Structures()
	for i, ts := range structures {
		sb, ok := b.builders[ts.Identity()]
		if !ok {
			continue
		}
		rebuilt, err := sb.Build()
		if err != nil {
			return nil, err
		}
		structures[i] = rebuilt
	}
	return b.original.Derive(structures), nil
}
