package synth

import (
	"strings"

	"github.com/toyz/scaffold/internal/models"
	"github.com/toyz/scaffold/internal/typeref"
)

// ManagerType is the exact expected type of the shared infrastructure handle.
var ManagerType = typeref.Named("github.com/toyz/scaffold/pkg/store", "Manager")

// HandleFieldBase is the conventional name of the infrastructure handle
// field. Collisions with unsuitable user fields are resolved by prepending
// underscore markers.
const HandleFieldBase = "storeManager"

// ResolveHandleField deterministically picks or creates the infrastructure
// handle field on the viewed type. Starting from base, each iteration either
// accepts an existing suitable field under the candidate name, skips an
// unsuitable one by prepending another marker, or synthesizes a fresh
// ephemeral field once an unused name is reached. An unused name is always
// reached eventually, so this terminates.
func ResolveHandleField(view models.TypeStructureView, base string, want typeref.TypeRef, qualifier, declaredBy string) models.Field {
	for markers := 0; ; markers++ {
		name := strings.Repeat("_", markers) + base
		candidate := view.FieldNamed(name)
		if candidate == nil {
			return newHandleField(declaredBy, name, want, qualifier)
		}
		if suitableHandle(*candidate, want) {
			return *candidate
		}
	}
}

// suitableHandle decides whether an existing field can serve as the shared
// handle. The type must match exactly. A purely ephemeral field is accepted
// as-is: subtypes still see the inherited field, and the observed behavior
// does not require the marker annotation in that case. Otherwise the field
// must be visible to subtypes and carry the store marker.
func suitableHandle(f models.Field, want typeref.TypeRef) bool {
	if !f.Type.Equal(want) {
		return false
	}
	if f.Modifiers == models.ModEphemeral {
		return true
	}
	if !f.Modifiers.VisibleToSubtypes() {
		return false
	}
	return models.AnnotationNamed(f.Annotations, models.DirectiveStore) != nil
}

func newHandleField(declaredBy, name string, want typeref.TypeRef, qualifier string) models.Field {
	marker := models.Annotation{Directive: models.DirectiveStore}
	if qualifier != "" {
		marker.Attributes = map[string]string{"unit": qualifier}
	}
	return models.Field{
		DeclaredBy:  declaredBy,
		Name:        name,
		Type:        want,
		Modifiers:   models.ModEphemeral,
		Annotations: []models.Annotation{marker},
		Tags:        models.TagSet{models.TagStoreHandle: nil},
	}
}
