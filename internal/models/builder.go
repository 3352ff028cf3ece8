package models

import (
	"github.com/toyz/scaffold/internal/typeref"

	scafferrors "github.com/toyz/scaffold/internal/errors"
)

// StructureBuilder is a mutable value-copy of every attribute of an existing
// TypeStructure. Deltas are applied to the copy only; Build constructs a new
// immutable structure of the original's variant and the original is never
// touched. A rebuilt structure therefore either fully reflects an update or
// the original is reused unchanged, never anything in between.
type StructureBuilder struct {
	original TypeStructure
	cfg      StructureConfig
	source   typeref.TypeRef // augmented variant only
}

// NewStructureBuilder snapshots all attributes of ts into a fresh builder.
func NewStructureBuilder(ts TypeStructure) *StructureBuilder {
	cfg := StructureConfig{
		Identity:  ts.Identity(),
		Type:      ts.Type(),
		Modifiers: ts.Modifiers(),
		Tags:      ts.Tags().Clone(),
	}
	if super := ts.Supertype(); super != nil {
		s := *super
		cfg.Supertype = &s
	}
	for _, f := range ts.Fields() {
		cfg.Fields = append(cfg.Fields, f.Clone())
	}
	for _, m := range ts.Methods() {
		cfg.Methods = append(cfg.Methods, m.Clone())
	}
	for _, c := range ts.Constructors() {
		cfg.Constructors = append(cfg.Constructors, c.Clone())
	}
	if cfg.Tags == nil {
		cfg.Tags = TagSet{}
	}

	b := &StructureBuilder{original: ts, cfg: cfg}
	if aug, ok := ts.(*AugmentedStructure); ok {
		b.source = aug.Source()
	}
	return b
}

// TagField applies a tag to the copied field with the given name. It reports
// whether a matching field was found.
func (b *StructureBuilder) TagField(name, key string, value interface{}) bool {
	for i := range b.cfg.Fields {
		if b.cfg.Fields[i].Name == name {
			if b.cfg.Fields[i].Tags == nil {
				b.cfg.Fields[i].Tags = TagSet{}
			}
			b.cfg.Fields[i].Tags[key] = value
			return true
		}
	}
	return false
}

// TagMethod applies a tag to the copied method matching name and parameter
// signature. It reports whether a matching method was found.
func (b *StructureBuilder) TagMethod(name string, params []typeref.TypeRef, key string, value interface{}) bool {
	for i := range b.cfg.Methods {
		if b.cfg.Methods[i].Name == name && SignatureEqual(b.cfg.Methods[i].ParamTypes(), params) {
			if b.cfg.Methods[i].Tags == nil {
				b.cfg.Methods[i].Tags = TagSet{}
			}
			b.cfg.Methods[i].Tags[key] = value
			return true
		}
	}
	return false
}

// TagConstructor applies a tag to the copied constructor matching the
// parameter signature. It reports whether a matching constructor was found.
func (b *StructureBuilder) TagConstructor(params []typeref.TypeRef, key string, value interface{}) bool {
	for i := range b.cfg.Constructors {
		if SignatureEqual(b.cfg.Constructors[i].ParamTypes(), params) {
			if b.cfg.Constructors[i].Tags == nil {
				b.cfg.Constructors[i].Tags = TagSet{}
			}
			b.cfg.Constructors[i].Tags[key] = value
			return true
		}
	}
	return false
}

// TagStructure applies a tag to the copied structure's own tag set.
func (b *StructureBuilder) TagStructure(key string, value interface{}) {
	b.cfg.Tags[key] = value
}

// Build constructs a new immutable structure from the copied attributes,
// dispatching to the constructor matching the original's variant. Any variant
// outside the two supported kinds is an internal invariant violation.
func (b *StructureBuilder) Build() (TypeStructure, error) {
	switch b.original.Variant() {
	case VariantDeclared:
		return NewDeclaredStructure(b.cfg), nil
	case VariantAugmented:
		return NewAugmentedStructure(b.cfg, b.source), nil
	default:
		return nil, scafferrors.Newf(scafferrors.UnsupportedVariantErrorCode,
			"cannot rebuild structure variant %d", b.original.Variant()).
			WithLocation(scafferrors.MemberLocation{Identity: b.cfg.Identity})
	}
}
