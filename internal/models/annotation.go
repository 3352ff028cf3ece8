package models

// Directives recognized by the engine. Members carry these as annotations;
// the emission collaborator renders them into whatever marker form the target
// source uses.
const (
	// DirectiveID marks the identifier member of an entity type.
	DirectiveID = "scaffold::id"
	// DirectiveStore marks the injected infrastructure handle field. The
	// naming resolver requires it on visible candidate fields.
	DirectiveStore = "scaffold::store"
	// DirectiveTx wraps a synthesized operation in a demarcated unit of work.
	// Attributes: "manager" (optional qualifier), "propagation".
	DirectiveTx = "scaffold::tx"
	// DirectiveNoLint suppresses unchecked-cast warnings on raw-dialect
	// query methods.
	DirectiveNoLint = "scaffold::nolint"
)

// PropagationNested is the DirectiveTx propagation value forcing an
// independent unit of work.
const PropagationNested = "requires_new"

// Annotation is a declarative marker attached to a member or type.
type Annotation struct {
	Directive  string            `json:"directive"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Attribute returns the named attribute value, or "" when absent.
func (a Annotation) Attribute(name string) string {
	return a.Attributes[name]
}

// Clone returns a deep copy of the annotation.
func (a Annotation) Clone() Annotation {
	out := Annotation{Directive: a.Directive}
	if a.Attributes != nil {
		out.Attributes = make(map[string]string, len(a.Attributes))
		for k, v := range a.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// AnnotationNamed returns the first annotation with the given directive, or
// nil when none is present.
func AnnotationNamed(list []Annotation, directive string) *Annotation {
	for i := range list {
		if list[i].Directive == directive {
			return &list[i]
		}
	}
	return nil
}

func cloneAnnotations(list []Annotation) []Annotation {
	if list == nil {
		return nil
	}
	out := make([]Annotation, len(list))
	for i, a := range list {
		out[i] = a.Clone()
	}
	return out
}
