//go:build !windows

package cppcore

// Long and ULong have the width of the C long types. Unix data models keep
// long at the word size.
type (
	Long  = int
	ULong = uint
)
