package cli

import (
	"encoding/json"
	"os"

	scafferrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/internal/identity"
	"github.com/toyz/scaffold/internal/models"
	"github.com/toyz/scaffold/internal/synth"
	"github.com/toyz/scaffold/internal/typeref"
)

// Snapshot is the JSON input format of the scaffold tool: one source root and
// the declared member structure of every type under it, plus the per-type
// behavior configuration driving synthesis. Types without a behavior block are
// carried along untouched.
type Snapshot struct {
	SourcePath string     `json:"source_path"`
	Types      []TypeSpec `json:"types"`
}

// TypeSpec is one type's declared structure in the snapshot.
type TypeSpec struct {
	Type               string               `json:"type"`
	Variant            string               `json:"variant,omitempty"` // "declared" (default) or "augmented"
	AugmentationSource string               `json:"augmentation_source,omitempty"`
	Supertype          string               `json:"supertype,omitempty"`
	Modifiers          []string             `json:"modifiers,omitempty"`
	Fields             []FieldSpec          `json:"fields,omitempty"`
	Methods            []MethodSpec         `json:"methods,omitempty"`
	Constructors       []ConstructorSpec    `json:"constructors,omitempty"`
	Behavior           *models.BehaviorSpec `json:"behavior,omitempty"`
}

// FieldSpec is one declared field in the snapshot.
type FieldSpec struct {
	Name        string              `json:"name"`
	Type        string              `json:"type"`
	Modifiers   []string            `json:"modifiers,omitempty"`
	Annotations []models.Annotation `json:"annotations,omitempty"`
}

// ParamSpec is one parameter of a method or constructor in the snapshot.
type ParamSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// MethodSpec is one declared method in the snapshot.
type MethodSpec struct {
	Name        string              `json:"name"`
	Params      []ParamSpec         `json:"params,omitempty"`
	Returns     string              `json:"returns,omitempty"`
	Modifiers   []string            `json:"modifiers,omitempty"`
	Annotations []models.Annotation `json:"annotations,omitempty"`
	Body        string              `json:"body,omitempty"`
}

// ConstructorSpec is one declared constructor in the snapshot.
type ConstructorSpec struct {
	Params      []ParamSpec         `json:"params,omitempty"`
	Modifiers   []string            `json:"modifiers,omitempty"`
	Annotations []models.Annotation `json:"annotations,omitempty"`
	Body        string              `json:"body,omitempty"`
}

// LoadSnapshot reads and decodes a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scafferrors.Wrapf(scafferrors.SnapshotErrorCode, err,
			"cannot read snapshot file %s", path)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, scafferrors.Wrapf(scafferrors.SnapshotErrorCode, err,
			"snapshot file %s is not valid JSON", path).
			WithSuggestion("check the file against the snapshot schema in the README")
	}
	if snap.SourcePath == "" {
		return nil, scafferrors.New(scafferrors.SnapshotErrorCode,
			"snapshot is missing the source_path attribute")
	}
	if len(snap.Types) == 0 {
		return nil, scafferrors.New(scafferrors.SnapshotErrorCode,
			"snapshot declares no types")
	}
	return &snap, nil
}

// IdentityFor returns the identity token the snapshot assigns to a type.
func (s *Snapshot) IdentityFor(typ typeref.TypeRef) string {
	return identity.Create(synth.Provider, s.SourcePath, typ)
}

// BuildGeneration converts the snapshot into an immutable generation.
func (s *Snapshot) BuildGeneration() (*models.Generation, error) {
	structures := make([]models.TypeStructure, 0, len(s.Types))
	for i := range s.Types {
		ts, err := s.buildStructure(&s.Types[i])
		if err != nil {
			return nil, err
		}
		structures = append(structures, ts)
	}
	return models.NewGeneration(structures...), nil
}

func (s *Snapshot) buildStructure(spec *TypeSpec) (models.TypeStructure, error) {
	typ, err := typeref.Parse(spec.Type)
	if err != nil {
		return nil, scafferrors.Wrapf(scafferrors.SnapshotErrorCode, err,
			"type expression %q is invalid", spec.Type)
	}
	id := s.IdentityFor(typ)

	cfg := models.StructureConfig{
		Identity: id,
		Type:     typ,
	}
	if cfg.Modifiers, err = parseModifiers(spec.Modifiers, id); err != nil {
		return nil, err
	}
	if spec.Supertype != "" {
		super, err := typeref.Parse(spec.Supertype)
		if err != nil {
			return nil, scafferrors.Wrapf(scafferrors.SnapshotErrorCode, err,
				"supertype expression %q of %s is invalid", spec.Supertype, spec.Type)
		}
		cfg.Supertype = &super
	}

	for _, f := range spec.Fields {
		ft, err := typeref.Parse(f.Type)
		if err != nil {
			return nil, memberError(id, f.Name, err)
		}
		mods, err := parseModifiers(f.Modifiers, id)
		if err != nil {
			return nil, err
		}
		cfg.Fields = append(cfg.Fields, models.Field{
			DeclaredBy:  id,
			Name:        f.Name,
			Type:        ft,
			Modifiers:   mods,
			Annotations: f.Annotations,
		})
	}

	for _, m := range spec.Methods {
		params, err := buildParams(id, m.Name, m.Params)
		if err != nil {
			return nil, err
		}
		mods, err := parseModifiers(m.Modifiers, id)
		if err != nil {
			return nil, err
		}
		method := models.Method{
			DeclaredBy:  id,
			Name:        m.Name,
			Params:      params,
			Modifiers:   mods,
			Annotations: m.Annotations,
			Body:        m.Body,
		}
		if m.Returns != "" {
			ret, err := typeref.Parse(m.Returns)
			if err != nil {
				return nil, memberError(id, m.Name, err)
			}
			method.Returns = &ret
		}
		cfg.Methods = append(cfg.Methods, method)
	}

	for _, c := range spec.Constructors {
		params, err := buildParams(id, "<init>", c.Params)
		if err != nil {
			return nil, err
		}
		mods, err := parseModifiers(c.Modifiers, id)
		if err != nil {
			return nil, err
		}
		cfg.Constructors = append(cfg.Constructors, models.Constructor{
			DeclaredBy:  id,
			Params:      params,
			Modifiers:   mods,
			Annotations: c.Annotations,
			Body:        c.Body,
		})
	}

	switch spec.Variant {
	case "", "declared":
		return models.NewDeclaredStructure(cfg), nil
	case "augmented":
		if spec.AugmentationSource == "" {
			return nil, scafferrors.Newf(scafferrors.SnapshotErrorCode,
				"augmented type %s is missing augmentation_source", spec.Type).
				WithLocation(scafferrors.MemberLocation{Identity: id})
		}
		source, err := typeref.Parse(spec.AugmentationSource)
		if err != nil {
			return nil, scafferrors.Wrapf(scafferrors.SnapshotErrorCode, err,
				"augmentation_source %q of %s is invalid", spec.AugmentationSource, spec.Type)
		}
		return models.NewAugmentedStructure(cfg, source), nil
	default:
		return nil, scafferrors.Newf(scafferrors.SnapshotErrorCode,
			"type %s has unknown variant %q", spec.Type, spec.Variant).
			WithLocation(scafferrors.MemberLocation{Identity: id}).
			WithSuggestion(`use "declared" or "augmented"`)
	}
}

func buildParams(id, member string, specs []ParamSpec) ([]models.Param, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	params := make([]models.Param, 0, len(specs))
	for _, p := range specs {
		pt, err := typeref.Parse(p.Type)
		if err != nil {
			return nil, memberError(id, member, err)
		}
		params = append(params, models.Param{Name: p.Name, Type: pt})
	}
	return params, nil
}

func parseModifiers(names []string, id string) (models.Modifiers, error) {
	var mods models.Modifiers
	for _, n := range names {
		flag, ok := models.ParseModifier(n)
		if !ok {
			return 0, scafferrors.Newf(scafferrors.SnapshotErrorCode,
				"unknown modifier %q", n).
				WithLocation(scafferrors.MemberLocation{Identity: id})
		}
		mods |= flag
	}
	return mods, nil
}

func memberError(id, member string, err error) *scafferrors.BaseError {
	return scafferrors.Wrap(scafferrors.SnapshotErrorCode, "invalid member declaration", err).
		WithLocation(scafferrors.MemberLocation{Identity: id, Member: member})
}
