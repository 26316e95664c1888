package cppcore

// Ptr is a nullable pointer to a C++ object owned elsewhere
type Ptr[T comparable] struct {
	value T
}

// NewPtr wraps a raw pointer
func NewPtr[T comparable](value T) Ptr[T] {
	return Ptr[T]{value: value}
}

// NullPtr returns a null pointer
func NullPtr[T comparable]() Ptr[T] {
	return Ptr[T]{}
}

// IsNull reports whether the pointer is null
func (p Ptr[T]) IsNull() bool {
	var zero T
	return p.value == zero
}

// Get returns the raw pointer and false when it is null
func (p Ptr[T]) Get() (T, bool) {
	return p.value, !p.IsNull()
}

// MustGet returns the raw pointer and panics with ErrNullPointer when it is
// null
func (p Ptr[T]) MustGet() T {
	if p.IsNull() {
		panic(ErrNullPointer)
	}
	return p.value
}

// Ref converts a non-null pointer to a reference
func (p Ptr[T]) Ref() (Ref[T], bool) {
	if p.IsNull() {
		return Ref[T]{}, false
	}
	return Ref[T]{value: p.value}, true
}

// Equal reports whether both pointers refer to the same object
func (p Ptr[T]) Equal(other Ptr[T]) bool {
	return p.value == other.value
}

// Ref is a non-null reference to a C++ object owned elsewhere
type Ref[T comparable] struct {
	value T
}

// NewRef wraps a raw pointer that must not be null
func NewRef[T comparable](value T) Ref[T] {
	var zero T
	if value == zero {
		panic(ErrNullPointer)
	}
	return Ref[T]{value: value}
}

// Get returns the raw pointer
func (r Ref[T]) Get() T {
	return r.value
}

// Ptr converts the reference to a pointer
func (r Ref[T]) Ptr() Ptr[T] {
	return Ptr[T]{value: r.value}
}

// Equal reports whether both references refer to the same object
func (r Ref[T]) Equal(other Ref[T]) bool {
	return r.value == other.value
}
