// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package optional

// Optional is a value that may or may not be present. Iterators return it so
// that the end of a stream is distinguishable from a zero value.
type Optional[T any] struct {
	present bool
	value   T
}

func (self Optional[T]) IsPresent() bool {
	return self.present
}

// Value returns the wrapped value, or the zero value of T when absent.
func (self Optional[T]) Value() T {
	return self.value
}

// Get is the two-value form of Value.
func (self Optional[T]) Get() (T, bool) {
	return self.value, self.present
}

// OrElse returns the wrapped value or the given fallback when absent.
func (self Optional[T]) OrElse(fallback T) T {
	if !self.present {
		return fallback
	}
	return self.value
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{
		present: true,
		value:   v,
	}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}
