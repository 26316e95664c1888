package cppcore

import "iter"

// Begin is the constraint on the begin side of a C++ iterator range. It
// yields values of type V and compares against an end of type E.
type Begin[E, V any] interface {
	comparable
	Deletable
	Incrementer
	Indirection[V]
	Equaler[E]
}

// End is the constraint on the end side of a forward range
type End interface {
	comparable
	Deletable
}

// BidiEnd is the constraint on the end side of a range that can also be
// walked from the back
type BidiEnd[V any] interface {
	End
	Decrementer
	Indirection[V]
}

// Iterator walks a C++ range [begin, end) forward. It owns both iterators
// and destroys them on Close.
type Iterator[V any, B Begin[E, V], E End] struct {
	begin *Box[B]
	end   *Box[E]
}

// UnsafeIter builds an iterator from a begin/end pair.
//
// The caller guarantees that begin and end belong to the same live
// container, that end is reachable from begin, and that the container is
// not modified or used from another goroutine while iterating. Nothing in
// this package can check these conditions.
func UnsafeIter[V any, B Begin[E, V], E End](begin *Box[B], end *Box[E]) *Iterator[V, B, E] {
	return &Iterator[V, B, E]{begin: begin, end: end}
}

func (it *Iterator[V, B, E]) exhausted() bool {
	if !it.begin.IsLive() || !it.end.IsLive() {
		return true
	}
	return it.begin.Get().EqualTo(it.end.Get())
}

// Next returns the value at begin and advances begin. It returns false once
// begin reaches end.
func (it *Iterator[V, B, E]) Next() (V, bool) {
	if it.exhausted() {
		var zero V
		return zero, false
	}
	b := it.begin.Get()
	value := b.Indirection()
	b.Inc()
	return value, true
}

// All returns a single-use sequence of the remaining values
func (it *Iterator[V, B, E]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Close destroys both iterators. Calling it again has no effect.
func (it *Iterator[V, B, E]) Close() {
	if it.begin.IsLive() {
		it.begin.Delete()
	}
	if it.end.IsLive() {
		it.end.Delete()
	}
}

// BidiIterator walks a C++ range from both ends. Values taken from the
// front and from the back never overlap.
type BidiIterator[V any, B Begin[E, V], E BidiEnd[V]] struct {
	Iterator[V, B, E]
}

// UnsafeBidiIter builds a double-ended iterator from a begin/end pair. The
// preconditions of UnsafeIter apply.
func UnsafeBidiIter[V any, B Begin[E, V], E BidiEnd[V]](begin *Box[B], end *Box[E]) *BidiIterator[V, B, E] {
	return &BidiIterator[V, B, E]{Iterator: Iterator[V, B, E]{begin: begin, end: end}}
}

// NextBack moves end back by one and returns the value there. It returns
// false once end reaches begin.
func (it *BidiIterator[V, B, E]) NextBack() (V, bool) {
	if it.exhausted() {
		var zero V
		return zero, false
	}
	e := it.end.Get()
	e.Dec()
	return e.Indirection(), true
}

// Backward returns a single-use sequence of the remaining values in
// reverse order
func (it *BidiIterator[V, B, E]) Backward() iter.Seq[V] {
	return func(yield func(V) bool) {
		for {
			v, ok := it.NextBack()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
