// Package cppcore is the runtime support used by generated C++ bindings.
// It provides the owning handle Box, the non-owning Ptr and Ref, the
// operator interfaces that wrapper types implement, and an adapter from a
// C++ begin/end iterator pair to Go iteration.
//
// None of the types in this package are safe for concurrent use.
package cppcore

import "errors"

var (
	// ErrMovedOut is the panic value when a Box is used after Move or Release
	ErrMovedOut = errors.New("cppcore: box was moved out")
	// ErrDeleted is the panic value when a Box is used after Delete
	ErrDeleted = errors.New("cppcore: box was deleted")
	// ErrNullPointer is the panic value when a null pointer is dereferenced
	ErrNullPointer = errors.New("cppcore: null pointer")
)

// Deletable is implemented by wrapper types that can destroy the C++
// object they point to
type Deletable interface {
	Delete()
}

type boxState uint8

const (
	boxLive boxState = iota
	boxMoved
	boxDeleted
)

// Box owns a C++ object. The object is destroyed by Delete, which must be
// called exactly once unless ownership is moved to another Box or released.
type Box[T interface {
	comparable
	Deletable
}] struct {
	value T
	state boxState
}

// NewBox takes ownership of value. It returns nil for a null value.
func NewBox[T interface {
	comparable
	Deletable
}](value T) *Box[T] {
	var zero T
	if value == zero {
		return nil
	}
	return &Box[T]{value: value}
}

func (b *Box[T]) check() {
	switch b.state {
	case boxMoved:
		panic(ErrMovedOut)
	case boxDeleted:
		panic(ErrDeleted)
	}
}

// IsLive reports whether the box still owns its object
func (b *Box[T]) IsLive() bool {
	return b != nil && b.state == boxLive
}

// Get returns the owned object. The result must not outlive the box.
func (b *Box[T]) Get() T {
	b.check()
	return b.value
}

// Ptr returns a non-owning pointer to the owned object
func (b *Box[T]) Ptr() Ptr[T] {
	b.check()
	return Ptr[T]{value: b.value}
}

// Ref returns a non-owning reference to the owned object
func (b *Box[T]) Ref() Ref[T] {
	b.check()
	return Ref[T]{value: b.value}
}

// Move transfers ownership to a new box. b cannot be used afterwards.
func (b *Box[T]) Move() *Box[T] {
	b.check()
	moved := &Box[T]{value: b.value}
	b.state = boxMoved
	return moved
}

// Release gives up ownership without destroying the object. The caller
// becomes responsible for it.
func (b *Box[T]) Release() T {
	b.check()
	b.state = boxMoved
	return b.value
}

// Delete destroys the owned object
func (b *Box[T]) Delete() {
	b.check()
	b.state = boxDeleted
	b.value.Delete()
}
