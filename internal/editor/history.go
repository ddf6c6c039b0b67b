// Package editor implements the authoring side of the platform: the generic
// undo/redo history store, the canvas editing engine and the quiz authoring
// model. It has no knowledge of transport or persistence.
package editor

import "reflect"

// History is a generic past/present/future snapshot container. It knows
// nothing about course semantics and is reusable for any snapshot type.
type History[T any] struct {
	past    []T
	present T
	future  []T
}

// NewHistory starts a history at the given snapshot with empty stacks.
func NewHistory[T any](initial T) *History[T] {
	return &History[T]{present: initial}
}

// Present returns the current snapshot.
func (h *History[T]) Present() T {
	return h.present
}

// Set installs a candidate next snapshot. A candidate deep-equal to the
// present is a no-op and never creates an undo step. With preventPush the
// present is replaced without touching past or future, for live-typing
// intermediate states that should not be individually undoable.
func (h *History[T]) Set(next T, preventPush bool) {
	if reflect.DeepEqual(next, h.present) {
		return
	}
	if preventPush {
		h.present = next
		return
	}
	h.past = append(h.past, h.present)
	h.present = next
	h.future = nil
}

// Undo moves one snapshot back. It is a no-op when the past is empty.
func (h *History[T]) Undo() T {
	if len(h.past) == 0 {
		return h.present
	}
	h.future = append([]T{h.present}, h.future...)
	h.present = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return h.present
}

// Redo is the mirror of Undo; a no-op when the future is empty.
func (h *History[T]) Redo() T {
	if len(h.future) == 0 {
		return h.present
	}
	h.past = append(h.past, h.present)
	h.present = h.future[0]
	h.future = h.future[1:]
	return h.present
}

func (h *History[T]) CanUndo() bool { return len(h.past) > 0 }
func (h *History[T]) CanRedo() bool { return len(h.future) > 0 }
