// Package ident assigns deterministic, collision-safe identifiers from
// text labels.
//
// Identifiers are grammar-neutral snake_case tokens derived from display
// labels, stable across runs for diff-friendly output. Assignment is
// deterministic given a fixed processing order: the same sequence of
// Assign calls always yields the same ids.
//
// The assigned-id set is carried inside an [Assigner] value created per
// extraction, never as ambient state, so parallel batch processing of
// independent scenes needs no coordination.
package ident

import (
	"strconv"
	"strings"
)

// Assigner tracks already-assigned ids and disambiguates collisions.
// The zero value is not usable; create one with [NewAssigner].
type Assigner struct {
	assigned map[string]bool
}

// NewAssigner creates an empty assigner.
func NewAssigner() *Assigner {
	return &Assigner{assigned: make(map[string]bool)}
}

// Normalize converts a display label to a grammar-neutral token:
// lower-cased, runs of non-alphanumerics collapsed to single underscores,
// trimmed. Empty or digit-leading results get a "node" prefix so the
// token is a valid identifier in every target grammar.
func Normalize(label string) string {
	var b strings.Builder
	b.Grow(len(label))

	sep := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
		default:
			sep = true
		}
	}

	s := b.String()
	if s == "" {
		return "node"
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "node_" + s
	}
	return s
}

// Assign normalizes label and returns a unique id, recording it as taken.
//
// Collisions are disambiguated in order:
//  1. append the normalized enclosing context name (e.g. the owning
//     group's label) when that still avoids a collision
//  2. append a numeric suffix starting at 2
//
// Pass an empty context when the element has no enclosing context.
func (a *Assigner) Assign(label, context string) string {
	return a.take(Normalize(label), context)
}

// AssignQualified is like [Assigner.Assign] but applies the context
// qualifier up front instead of waiting for a collision. Extraction uses
// it for labels known to be ambiguous within a scene so all occurrences
// come out qualified, not just the later ones.
func (a *Assigner) AssignQualified(label, context string) string {
	base := Normalize(label)
	if context != "" {
		return a.take(base+"_"+Normalize(context), "")
	}
	return a.take(base, "")
}

// AssignEdge returns a unique edge id of the form {from}_to_{to}.
// Parallel edges sharing the same endpoints get numeric suffixes.
func (a *Assigner) AssignEdge(from, to string) string {
	return a.take(from+"_to_"+to, "")
}

// Taken reports whether id has already been assigned.
func (a *Assigner) Taken(id string) bool {
	return a.assigned[id]
}

func (a *Assigner) take(base, context string) string {
	if !a.assigned[base] {
		a.assigned[base] = true
		return base
	}

	if context != "" {
		qualified := base + "_" + Normalize(context)
		if !a.assigned[qualified] {
			a.assigned[qualified] = true
			return qualified
		}
	}

	for i := 2; ; i++ {
		candidate := base + "_" + strconv.Itoa(i)
		if !a.assigned[candidate] {
			a.assigned[candidate] = true
			return candidate
		}
	}
}
