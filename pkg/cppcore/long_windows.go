package cppcore

// Long and ULong have the width of the C long types, which stay 32 bits on
// 64-bit Windows.
type (
	Long  = int32
	ULong = uint32
)
