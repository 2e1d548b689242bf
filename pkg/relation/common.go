package relation

import (
	"github.com/gitrdm/logikflow/pkg/goal"
	"github.com/gitrdm/logikflow/pkg/stream"
	"github.com/gitrdm/logikflow/pkg/term"
)

// Subst, Stream and Goal are aliases onto package goal's, so every relation
// built in this package composes directly with And/Or/Conde without a
// conversion at the call site — the same pattern package constraint and
// package aggregate use to avoid redeclaring a structurally identical but
// assignment-incompatible type.
type Subst = term.Subst
type Stream = stream.Observable[*Subst]
type Goal = goal.Goal

// perElement lifts a per-Subst Stream-producing function into a Goal, one
// inner subscription per incoming Subst, merging their outputs. Every
// relation in this package is built on top of this: a relation decides,
// independently for each candidate world it is handed, what (if anything)
// to emit.
func perElement(in Stream, fn func(s *Subst) Stream) Stream {
	return stream.FlatMap(in, fn)
}

func oneOf(s *Subst) Stream { return stream.Of(s) }
func emptyOf() Stream       { return stream.Empty[*Subst]() }
