// Package identity creates and parses declaring-type identity tokens. A token
// ties a member or type structure to the provider that produced it, the source
// root it lives under, and the type it describes:
//
//	MID:<provider>#<source-path>?<type-expression>
//
// Tokens are plain strings so they can key maps and travel through snapshots,
// but every consumer validates them before use.
package identity

import (
	"fmt"
	"strings"

	"github.com/toyz/scaffold/internal/typeref"
)

const prefix = "MID:"

// Token is a parsed identity token.
type Token struct {
	Provider string
	Path     string
	Type     typeref.TypeRef
}

// Create builds an identity token string for the given provider, source path
// and type.
func Create(provider, path string, typ typeref.TypeRef) string {
	return fmt.Sprintf("%s%s#%s?%s", prefix, provider, path, typ.String())
}

// Parse splits and validates an identity token.
func Parse(token string) (Token, error) {
	if !strings.HasPrefix(token, prefix) {
		return Token{}, fmt.Errorf("identity token %q must start with %q", token, prefix)
	}
	rest := strings.TrimPrefix(token, prefix)

	provider, rest, ok := strings.Cut(rest, "#")
	if !ok || provider == "" {
		return Token{}, fmt.Errorf("identity token %q has no provider segment", token)
	}
	path, typeExpr, ok := strings.Cut(rest, "?")
	if !ok || path == "" {
		return Token{}, fmt.Errorf("identity token %q has no source path segment", token)
	}
	typ, err := typeref.Parse(typeExpr)
	if err != nil {
		return Token{}, fmt.Errorf("identity token %q: %w", token, err)
	}
	return Token{Provider: provider, Path: path, Type: typ}, nil
}

// IsValid reports whether token is well-formed and was created by the given
// provider.
func IsValid(provider, token string) bool {
	parsed, err := Parse(token)
	if err != nil {
		return false
	}
	return parsed.Provider == provider
}

// TypeOf returns the type a valid token describes.
func TypeOf(token string) (typeref.TypeRef, error) {
	parsed, err := Parse(token)
	if err != nil {
		return typeref.TypeRef{}, err
	}
	return parsed.Type, nil
}
