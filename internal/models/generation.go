package models

import (
	"github.com/google/uuid"
)

// Generation is the full collection of type structures processed together in
// one pass. It is immutable for its duration: the tagging pass produces new
// Generations sharing the same ID rather than mutating this one. Concurrent
// use across different Generations is safe; calls against the same Generation
// must be sequenced by the caller.
type Generation struct {
	id         uuid.UUID
	structures []TypeStructure
}

// NewGeneration groups the given structures into a freshly-identified
// generation.
func NewGeneration(structures ...TypeStructure) *Generation {
	return &Generation{
		id:         uuid.New(),
		structures: structures,
	}
}

// ID returns the generation's unique identity.
func (g *Generation) ID() uuid.UUID {
	return g.id
}

// Len returns the number of structures in the generation.
func (g *Generation) Len() int {
	return len(g.structures)
}

// Structures returns the structures in order. The returned slice is a copy;
// the elements are the generation's own immutable structures.
func (g *Generation) Structures() []TypeStructure {
	return append([]TypeStructure(nil), g.structures...)
}

// StructureFor returns the structure declared by the given identity token.
func (g *Generation) StructureFor(identity string) (TypeStructure, bool) {
	for _, ts := range g.structures {
		if ts.Identity() == identity {
			return ts, true
		}
	}
	return nil, false
}

// Derive returns a new generation carrying the given structures under the
// same generation ID. Used by the tagging pass for copy-on-write rebuilds.
func (g *Generation) Derive(structures []TypeStructure) *Generation {
	return &Generation{id: g.id, structures: structures}
}
