package typeref

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/mod/module"
)

// typeExpr is the participle grammar for a type expression:
//
//	[]pkg/path.Name[Param, Param]
//
// The path is lexed as a single token and split into package and name here,
// because import paths themselves contain dots.
type typeExpr struct {
	Slice  string      `parser:"@SliceMark?"`
	Path   string      `parser:"@Path"`
	Params []*typeExpr `parser:"( '[' @@ ( ',' @@ )* ']' )?"`
}

var typeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "SliceMark", Pattern: `\[\]`},
	{Name: "Path", Pattern: `[a-zA-Z_][a-zA-Z0-9_./\-]*`},
	{Name: "Punct", Pattern: `[\[\],]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var typeParser = participle.MustBuild[typeExpr](
	participle.Lexer(typeLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a type expression string into a TypeRef. Package paths are
// validated as importable paths.
func Parse(input string) (TypeRef, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return TypeRef{}, fmt.Errorf("empty type expression")
	}
	expr, err := typeParser.ParseString("", input)
	if err != nil {
		return TypeRef{}, fmt.Errorf("invalid type expression %q: %w", input, err)
	}
	return expr.toRef()
}

// MustParse is Parse for expressions known to be well-formed, such as
// compile-time constants. It panics on error.
func MustParse(input string) TypeRef {
	ref, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return ref
}

func (e *typeExpr) toRef() (TypeRef, error) {
	ref := TypeRef{Slice: e.Slice != ""}
	ref.Pkg, ref.Name = splitPath(e.Path)
	if ref.Name == "" {
		return TypeRef{}, fmt.Errorf("type expression %q has no type name", e.Path)
	}
	if ref.Pkg != "" {
		if err := module.CheckImportPath(ref.Pkg); err != nil {
			return TypeRef{}, fmt.Errorf("invalid package path in %q: %w", e.Path, err)
		}
	}
	for _, p := range e.Params {
		pr, err := p.toRef()
		if err != nil {
			return TypeRef{}, err
		}
		ref.Params = append(ref.Params, pr)
	}
	return ref, nil
}

// splitPath separates "github.com/toyz/scaffold/pkg/store.Manager" into the
// package path and the type name. The name is the segment after the last dot
// that follows the last slash; a path without such a dot is a bare name.
func splitPath(path string) (pkg, name string) {
	slash := strings.LastIndexByte(path, '/')
	dot := strings.LastIndexByte(path, '.')
	if dot > slash {
		return path[:dot], path[dot+1:]
	}
	return "", path
}
