package models

import (
	"github.com/toyz/scaffold/internal/typeref"
)

// StructureVariant distinguishes the two supported concrete kinds of
// TypeStructure. The set is closed: rebuild logic dispatches on the variant
// and treats anything else as an internal invariant violation.
type StructureVariant int

const (
	// VariantDeclared is a freestanding type with all members declared in
	// its own source.
	VariantDeclared StructureVariant = iota
	// VariantAugmented is a type whose members were attached by an
	// out-of-band augmentation mechanism.
	VariantAugmented
)

// String returns the variant name for diagnostics.
func (v StructureVariant) String() string {
	switch v {
	case VariantDeclared:
		return "declared"
	case VariantAugmented:
		return "augmented"
	default:
		return "unknown"
	}
}

// TypeStructureView is the read-only query surface over one type's declared
// members that synthesis operates on. It never exposes mutation.
type TypeStructureView interface {
	// Identity returns the declaring-type identity token.
	Identity() string
	// Type returns the declared type itself.
	Type() typeref.TypeRef
	// Supertype returns the single supertype link, or nil for roots.
	Supertype() *typeref.TypeRef
	// Modifiers returns the type-level modifier set.
	Modifiers() Modifiers

	// FieldNamed returns a copy of the field with the given name, or nil.
	FieldNamed(name string) *Field
	// MethodNamed returns a copy of the method matching name and parameter
	// signature, or nil.
	MethodNamed(name string, params []typeref.TypeRef) *Method
	// ConstructorMatching returns a copy of the constructor matching the
	// parameter signature, or nil.
	ConstructorMatching(params []typeref.TypeRef) *Constructor

	// Fields returns the declared fields in order.
	Fields() []Field
	// Methods returns the declared methods in order.
	Methods() []Method
}

// TypeStructure is an immutable snapshot of one type: its members, identity,
// supertype metadata and own tag set. Instances are never mutated in place;
// the tagging pass produces rebuilt copies instead.
type TypeStructure interface {
	TypeStructureView

	// Variant identifies the concrete kind for rebuild dispatch.
	Variant() StructureVariant
	// Constructors returns the declared constructors in order.
	Constructors() []Constructor
	// Tags returns the structure's own tag set.
	Tags() TagSet
}

// StructureConfig carries every attribute of a type structure. Both concrete
// variants are built from it.
type StructureConfig struct {
	Identity     string
	Type         typeref.TypeRef
	Supertype    *typeref.TypeRef
	Modifiers    Modifiers
	Fields       []Field
	Methods      []Method
	Constructors []Constructor
	Tags         TagSet
}

// structureData is the shared implementation behind both variants.
type structureData struct {
	identity     string
	typ          typeref.TypeRef
	supertype    *typeref.TypeRef
	modifiers    Modifiers
	fields       []Field
	methods      []Method
	constructors []Constructor
	tags         TagSet
}

func newStructureData(cfg StructureConfig) structureData {
	tags := cfg.Tags
	if tags == nil {
		tags = TagSet{}
	}
	return structureData{
		identity:     cfg.Identity,
		typ:          cfg.Type,
		supertype:    cfg.Supertype,
		modifiers:    cfg.Modifiers,
		fields:       cfg.Fields,
		methods:      cfg.Methods,
		constructors: cfg.Constructors,
		tags:         tags,
	}
}

func (s *structureData) Identity() string            { return s.identity }
func (s *structureData) Type() typeref.TypeRef       { return s.typ }
func (s *structureData) Supertype() *typeref.TypeRef { return s.supertype }
func (s *structureData) Modifiers() Modifiers        { return s.modifiers }
func (s *structureData) Fields() []Field             { return s.fields }
func (s *structureData) Methods() []Method           { return s.methods }
func (s *structureData) Constructors() []Constructor { return s.constructors }
func (s *structureData) Tags() TagSet                { return s.tags }

// FieldNamed returns a copy of the field with the given name, or nil.
func (s *structureData) FieldNamed(name string) *Field {
	for i := range s.fields {
		if s.fields[i].Name == name {
			f := s.fields[i].Clone()
			return &f
		}
	}
	return nil
}

// MethodNamed returns a copy of the method matching name and signature, or nil.
func (s *structureData) MethodNamed(name string, params []typeref.TypeRef) *Method {
	for i := range s.methods {
		if s.methods[i].Name == name && SignatureEqual(s.methods[i].ParamTypes(), params) {
			m := s.methods[i].Clone()
			return &m
		}
	}
	return nil
}

// ConstructorMatching returns a copy of the matching constructor, or nil.
func (s *structureData) ConstructorMatching(params []typeref.TypeRef) *Constructor {
	for i := range s.constructors {
		if SignatureEqual(s.constructors[i].ParamTypes(), params) {
			c := s.constructors[i].Clone()
			return &c
		}
	}
	return nil
}

// DeclaredStructure is the freestanding declared variant.
type DeclaredStructure struct {
	structureData
}

// NewDeclaredStructure builds the freestanding declared variant.
func NewDeclaredStructure(cfg StructureConfig) *DeclaredStructure {
	return &DeclaredStructure{structureData: newStructureData(cfg)}
}

// Variant identifies the concrete kind for rebuild dispatch.
func (s *DeclaredStructure) Variant() StructureVariant { return VariantDeclared }

// AugmentedStructure is the externally-augmented variant: its members were
// attached by an out-of-band mechanism identified by Source.
type AugmentedStructure struct {
	structureData
	source typeref.TypeRef
}

// NewAugmentedStructure builds the externally-augmented variant. source names
// the augmentation mechanism that attached the members.
func NewAugmentedStructure(cfg StructureConfig, source typeref.TypeRef) *AugmentedStructure {
	return &AugmentedStructure{structureData: newStructureData(cfg), source: source}
}

// Variant identifies the concrete kind for rebuild dispatch.
func (s *AugmentedStructure) Variant() StructureVariant { return VariantAugmented }

// Source returns the augmentation mechanism that attached this structure's
// members.
func (s *AugmentedStructure) Source() typeref.TypeRef { return s.source }
