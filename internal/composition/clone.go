package composition

import "strings"

// CloneSuffix marks a composition copied into the current user's collection.
const CloneSuffix = " (My Version)"

// Clone returns a new draft built from src: the name gains CloneSuffix and the
// lines are copied as (food, grams) pairs. Identity, ownership and totals are
// not part of a Composition, so none of them carry over.
func Clone(src Composition) Composition {
	lines := make([]Line, len(src.Lines))
	copy(lines, src.Lines)
	return Composition{
		Kind:        src.Kind,
		Name:        strings.TrimSpace(src.Name) + CloneSuffix,
		Description: src.Description,
		Lines:       lines,
	}
}
