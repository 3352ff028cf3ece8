// Package typeref models structured references to the types that synthesized
// members mention: an import path, a type name, optional type parameters and
// an optional slice marker. References compare structurally, which is what the
// synthesizer's "exact expected type" and return-contract checks rely on.
package typeref

import (
	"strings"
)

// TypeRef is a structured reference to a type. The zero value is invalid.
type TypeRef struct {
	Pkg    string    // import path, empty for primitives
	Name   string    // type name, e.g. "Manager" or "int64"
	Slice  bool      // true for "[]T"
	Params []TypeRef // type parameters, e.g. the T in "List[T]"
}

// Common primitive references used by synthesized members.
var (
	Int    = Primitive("int")
	Int64  = Primitive("int64")
	String = Primitive("string")
)

// Named returns a reference to a type declared in the given package.
func Named(pkg, name string) TypeRef {
	return TypeRef{Pkg: pkg, Name: name}
}

// Primitive returns a reference to a built-in type.
func Primitive(name string) TypeRef {
	return TypeRef{Name: name}
}

// Generic returns a reference to a parameterized type.
func Generic(pkg, name string, params ...TypeRef) TypeRef {
	return TypeRef{Pkg: pkg, Name: name, Params: params}
}

// SliceOf returns a slice reference to t.
func SliceOf(t TypeRef) TypeRef {
	t.Slice = true
	return t
}

// IsZero reports whether t is the zero (invalid) reference.
func (t TypeRef) IsZero() bool {
	return t.Name == ""
}

// IsPrimitive reports whether t refers to a built-in, non-slice type.
func (t TypeRef) IsPrimitive() bool {
	if t.Pkg != "" || t.Slice || t.Name == "" {
		return false
	}
	c := t.Name[0]
	return c >= 'a' && c <= 'z'
}

// IsText reports whether t is the built-in string type. The find-by-identifier
// guard treats text identifiers differently from reference-typed ones.
func (t TypeRef) IsText() bool {
	return t.IsPrimitive() && t.Name == "string"
}

// Simple returns the bare type name without package or parameters.
func (t TypeRef) Simple() string {
	return t.Name
}

// Equal reports whether two references are structurally identical.
func (t TypeRef) Equal(other TypeRef) bool {
	if t.Pkg != other.Pkg || t.Name != other.Name || t.Slice != other.Slice {
		return false
	}
	if len(t.Params) != len(other.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equal(other.Params[i]) {
			return false
		}
	}
	return true
}

// String renders the reference back into its expression form, e.g.
// "[]example.com/app.Pet" or "store.Manager" or "int64".
func (t TypeRef) String() string {
	var sb strings.Builder
	if t.Slice {
		sb.WriteString("[]")
	}
	if t.Pkg != "" {
		sb.WriteString(t.Pkg)
		sb.WriteByte('.')
	}
	sb.WriteString(t.Name)
	if len(t.Params) > 0 {
		sb.WriteByte('[')
		for i, p := range t.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteByte(']')
	}
	return sb.String()
}
