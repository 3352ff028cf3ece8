package models

import "strings"

// Modifiers is the visibility and storage modifier set of a member or type.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModAbstract
	ModFinal
	// ModEphemeral marks a member that is not persisted with its owner.
	// Ephemeral members stay visible to subtypes regardless of visibility.
	ModEphemeral
)

// Has reports whether all the given flags are set.
func (m Modifiers) Has(flags Modifiers) bool {
	return m&flags == flags
}

// VisibleToSubtypes reports whether a member with these modifiers can be seen
// by subtypes of its declaring type.
func (m Modifiers) VisibleToSubtypes() bool {
	return m.Has(ModPublic) || m.Has(ModProtected)
}

// String returns a space-separated rendering, mainly for diagnostics.
func (m Modifiers) String() string {
	names := []struct {
		flag Modifiers
		name string
	}{
		{ModPublic, "public"},
		{ModProtected, "protected"},
		{ModPrivate, "private"},
		{ModStatic, "static"},
		{ModAbstract, "abstract"},
		{ModFinal, "final"},
		{ModEphemeral, "ephemeral"},
	}
	var parts []string
	for _, n := range names {
		if m.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// ParseModifier converts a single modifier name into its flag.
func ParseModifier(s string) (Modifiers, bool) {
	switch s {
	case "public":
		return ModPublic, true
	case "protected":
		return ModProtected, true
	case "private":
		return ModPrivate, true
	case "static":
		return ModStatic, true
	case "abstract":
		return ModAbstract, true
	case "final":
		return ModFinal, true
	case "ephemeral":
		return ModEphemeral, true
	default:
		return 0, false
	}
}
