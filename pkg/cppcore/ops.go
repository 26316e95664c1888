package cppcore

// Incrementer is implemented by wrappers of types with a prefix operator++
type Incrementer interface {
	Inc()
}

// Decrementer is implemented by wrappers of types with a prefix operator--
type Decrementer interface {
	Dec()
}

// Indirection is implemented by wrappers of types with a unary operator*.
// V is the result of dereferencing.
type Indirection[V any] interface {
	Indirection() V
}

// Equaler is implemented by wrappers of types with an operator== taking E
type Equaler[E any] interface {
	EqualTo(other E) bool
}
