// Package streams provides generic pull-based iterators.
//
// A Stream produces its items on demand, in the consumer's goroutine. Stages
// such as Map and Filter wrap the upstream Stream without spawning goroutines
// or allocating channels, so a pipeline like
//
//	names := streams.Map(streams.FromSlice(instances), func(i bench.Instance) string { return i.Name })
//
// costs nothing until its consumer starts pulling. The runner relies on this to
// execute one benchmark instance per pulled report.
package streams

// Stream is a lazy iterator over items of type T.
//
// The zero value of a Stream is not useful and will panic if Next() is called.
type Stream[T any] struct {
	// next returns the next item and whether it is valid.
	next func() (T, bool)
}

// FromSlice creates a Stream over the elements of a slice.
// The slice must not be modified while the Stream is consumed.
func FromSlice[T any](items []T) *Stream[T] {
	index := 0
	return FromFunc(func() (T, bool) {
		if index >= len(items) {
			var zero T
			return zero, false
		}
		index++
		return items[index-1], true
	})
}

// FromFunc creates a Stream backed by a generator function. Once the function
// returns false, it is not called again.
func FromFunc[T any](next func() (T, bool)) *Stream[T] {
	done := false
	return &Stream[T]{
		next: func() (T, bool) {
			if done {
				var zero T
				return zero, false
			}
			val, ok := next()
			if !ok {
				done = true
			}
			return val, ok
		},
	}
}

// Map returns a Stream that applies conv to each item of the source.
// conv is only called when an item is pulled.
func Map[T, U any](source *Stream[T], conv func(T) U) *Stream[U] {
	return FromFunc(func() (U, bool) {
		val, ok := source.Next()
		if !ok {
			var zeroU U
			return zeroU, false
		}
		return conv(val), true
	})
}

// Filter returns a Stream that only yields the items for which keep is true.
func Filter[T any](source *Stream[T], keep func(T) bool) *Stream[T] {
	return FromFunc(func() (T, bool) {
		for {
			val, ok := source.Next()
			if !ok || keep(val) {
				return val, ok
			}
		}
	})
}

// Next produces the next item from the stream.
//
// The boolean is false once the stream is exhausted, in which case the item
// is the zero value.
func (s *Stream[T]) Next() (T, bool) {
	return s.next()
}

// All ranges over the remaining items of the stream:
//
//	for item := range stream.All { ... }
func (s *Stream[T]) All(yield func(T) bool) {
	for {
		item, ok := s.next()
		if !ok {
			return
		}

		if !yield(item) {
			return
		}
	}
}

// Collect drains the stream into a slice.
func (s *Stream[T]) Collect() []T {
	var items []T
	for item := range s.All {
		items = append(items, item)
	}
	return items
}
