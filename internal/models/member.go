package models

import (
	"strings"

	"github.com/toyz/scaffold/internal/typeref"
)

// Param is one parameter of a method or constructor signature.
type Param struct {
	Name string          `json:"name"`
	Type typeref.TypeRef `json:"type"`
}

// Field is a declared or synthesized field member.
type Field struct {
	DeclaredBy  string          `json:"declared_by"` // declaring-type identity token
	Name        string          `json:"name"`
	Type        typeref.TypeRef `json:"type"`
	Modifiers   Modifiers       `json:"modifiers"`
	Annotations []Annotation    `json:"annotations,omitempty"`
	Tags        TagSet          `json:"tags,omitempty"`
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	out.Annotations = cloneAnnotations(f.Annotations)
	out.Tags = f.Tags.Clone()
	return out
}

// Method is a declared or synthesized method member. Body is opaque to the
// engine; only the emission collaborator interprets it.
type Method struct {
	DeclaredBy  string           `json:"declared_by"`
	Name        string           `json:"name"`
	Params      []Param          `json:"params,omitempty"`
	Returns     *typeref.TypeRef `json:"returns,omitempty"` // nil means no return value
	Modifiers   Modifiers        `json:"modifiers"`
	Annotations []Annotation     `json:"annotations,omitempty"`
	Body        string           `json:"body,omitempty"`
	Tags        TagSet           `json:"tags,omitempty"`
}

// ParamTypes returns the parameter types in declaration order.
func (m Method) ParamTypes() []typeref.TypeRef {
	return paramTypes(m.Params)
}

// Signature renders "name(T1, T2)" for matching and error reporting.
func (m Method) Signature() string {
	return m.Name + signatureSuffix(m.Params)
}

// Clone returns a deep copy of the method.
func (m Method) Clone() Method {
	out := m
	out.Params = append([]Param(nil), m.Params...)
	if m.Returns != nil {
		r := *m.Returns
		out.Returns = &r
	}
	out.Annotations = cloneAnnotations(m.Annotations)
	out.Tags = m.Tags.Clone()
	return out
}

// Constructor is a declared or synthesized constructor member.
type Constructor struct {
	DeclaredBy  string       `json:"declared_by"`
	Params      []Param      `json:"params,omitempty"`
	Modifiers   Modifiers    `json:"modifiers"`
	Annotations []Annotation `json:"annotations,omitempty"`
	Body        string       `json:"body,omitempty"`
	Tags        TagSet       `json:"tags,omitempty"`
}

// ParamTypes returns the parameter types in declaration order.
func (c Constructor) ParamTypes() []typeref.TypeRef {
	return paramTypes(c.Params)
}

// Signature renders "<init>(T1, T2)" for matching and error reporting.
func (c Constructor) Signature() string {
	return "<init>" + signatureSuffix(c.Params)
}

// Clone returns a deep copy of the constructor.
func (c Constructor) Clone() Constructor {
	out := c
	out.Params = append([]Param(nil), c.Params...)
	out.Annotations = cloneAnnotations(c.Annotations)
	out.Tags = c.Tags.Clone()
	return out
}

// SignatureEqual reports whether two parameter-type lists match exactly.
func SignatureEqual(a, b []typeref.TypeRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func paramTypes(params []Param) []typeref.TypeRef {
	if len(params) == 0 {
		return nil
	}
	types := make([]typeref.TypeRef, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	return types
}

func signatureSuffix(params []Param) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Type.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
