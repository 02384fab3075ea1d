// Package message holds the scalar vocabulary of HTTP messages as this
// wrapper sees it: the closed method and version enumerations, their token
// decoders, and the cached-value cell message descriptors use for lazy
// fields.
package message

// Value is a cached scalar that distinguishes "not yet computed, holding a
// default" from "computed and authoritative". Once set, a Value is never
// silently recomputed, even if the storage it was derived from changes
// out-of-band.
type Value[T any] struct {
	v   T
	set bool
}

// NewValue creates an uninitialized Value holding def.
func NewValue[T any](def T) Value[T] {
	return Value[T]{v: def}
}

// Get returns the current value, default or computed.
func (v *Value[T]) Get() T {
	return v.v
}

// Set stores a computed value and marks the cell initialized.
func (v *Value[T]) Set(x T) {
	v.v = x
	v.set = true
}

// Initialized reports whether the cell holds an authoritative value.
func (v *Value[T]) Initialized() bool {
	return v.set
}
