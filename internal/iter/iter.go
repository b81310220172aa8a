// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"context"

	"github.com/edmundito/agsscript/internal/optional"
	"github.com/edmundito/agsscript/internal/script"
)

// NewSlice converts a slice of values into an Iterator implementation.
func NewSlice[T any](vs []T) script.Iterator[T] {
	return &iteratorSlice[T]{slice: vs, offset: -1}
}

type iteratorSlice[T any] struct {
	slice  []T
	offset int
}

func (it *iteratorSlice[T]) Next(ctx context.Context) optional.Optional[T] {
	it.offset = it.offset + 1
	if it.offset >= len(it.slice) {
		return optional.None[T]()
	}
	return optional.Some(it.slice[it.offset])
}

func (it *iteratorSlice[T]) Close(ctx context.Context) error {
	return nil
}

// NewIteratorFilter wraps an iterator with a filter so that only values that
// pass the filter are returned.
func NewIteratorFilter[T any](it script.Iterator[T], f script.Filter[T]) script.Iterator[T] {
	return &iteratorFilter[T]{
		iter:   it,
		filter: f,
	}
}

type iteratorFilter[T any] struct {
	iter   script.Iterator[T]
	filter script.Filter[T]
}

func (it *iteratorFilter[T]) Next(ctx context.Context) optional.Optional[T] {
	for {
		v := it.iter.Next(ctx)
		if !v.IsPresent() {
			return v
		}
		if it.filter.Keep(ctx, v.Value()) {
			return v
		}
	}
}

func (it *iteratorFilter[T]) Close(ctx context.Context) error {
	return it.iter.Close(ctx)
}

// NewLookahead wraps an iterator in a Lookahead implementation to enable
// peeking at the next n values.
func NewLookahead[T any](it script.Iterator[T], n uint8) script.Lookahead[T] {
	return &lookahead[T]{
		iter: it,
		n:    n,
	}
}

type lookahead[T any] struct {
	iter  script.Iterator[T]
	n     uint8
	peeks []optional.Optional[T]
}

func (look *lookahead[T]) init(ctx context.Context) {
	if look.peeks == nil {
		look.peeks = make([]optional.Optional[T], look.n+1)
		for x := 0; x <= int(look.n); x = x + 1 {
			look.peeks[x] = look.iter.Next(ctx)
		}
	}
}

func (look *lookahead[T]) Next(ctx context.Context) optional.Optional[T] {
	if look.peeks == nil {
		look.init(ctx)
		return look.peeks[0]
	}
	copy(look.peeks, look.peeks[1:])
	look.peeks[len(look.peeks)-1] = look.iter.Next(ctx)
	return look.peeks[0]
}
func (look *lookahead[T]) Close(ctx context.Context) error {
	return look.iter.Close(ctx)
}
func (look *lookahead[T]) Lookahead(ctx context.Context, n uint8) optional.Optional[T] {
	if look.peeks == nil {
		look.init(ctx)
	}
	if n > look.n {
		return optional.None[T]()
	}
	return look.peeks[n]
}

// FilterFunc is an adaptor for simple filter functions that makes them
// compatible with the Filter interface. Use like:
//
//	FilterFunc[T](func(ctx context.Context, val T) bool { return true })
//
// Note that this type should never be referenced directly in any signature.
// Always use Filter as an input or output type.
type FilterFunc[T any] func(ctx context.Context, val T) bool

func (f FilterFunc[T]) Keep(ctx context.Context, val T) bool {
	return f(ctx, val)
}

// NewBuffer wraps an iterator so that every value it produces is retained.
// The cursor can then be rewound to any earlier mark, which is what a
// backtracking parser needs. Values are still pulled lazily.
func NewBuffer[T any](it script.Iterator[T]) *Buffer[T] {
	return &Buffer[T]{iter: it}
}

type Buffer[T any] struct {
	iter   script.Iterator[T]
	values []T
	pos    int
	done   bool
}

func (b *Buffer[T]) fill(ctx context.Context, n int) {
	for !b.done && len(b.values) < n {
		v := b.iter.Next(ctx)
		if !v.IsPresent() {
			b.done = true
			return
		}
		b.values = append(b.values, v.Value())
	}
}

// Next returns the value under the cursor and moves past it.
func (b *Buffer[T]) Next(ctx context.Context) optional.Optional[T] {
	v := b.Peek(ctx, 0)
	if v.IsPresent() {
		b.pos = b.pos + 1
	}
	return v
}

// Peek returns the value n positions past the cursor without consuming it.
func (b *Buffer[T]) Peek(ctx context.Context, n int) optional.Optional[T] {
	b.fill(ctx, b.pos+n+1)
	if b.pos+n >= len(b.values) {
		return optional.None[T]()
	}
	return optional.Some(b.values[b.pos+n])
}

// Lookahead is Peek with the Lookahead interface signature.
func (b *Buffer[T]) Lookahead(ctx context.Context, n uint8) optional.Optional[T] {
	return b.Peek(ctx, int(n))
}

// Mark returns the current cursor position.
func (b *Buffer[T]) Mark() int {
	return b.pos
}

// Reset moves the cursor back to a position previously returned by Mark.
func (b *Buffer[T]) Reset(mark int) {
	if mark < 0 || mark > len(b.values) {
		panic("iter: reset to a position that was never buffered")
	}
	b.pos = mark
}

func (b *Buffer[T]) Close(ctx context.Context) error {
	return b.iter.Close(ctx)
}
