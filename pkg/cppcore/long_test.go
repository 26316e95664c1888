package cppcore

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestLongWidth(t *testing.T) {
	want := unsafe.Sizeof(uintptr(0))
	if runtime.GOOS == "windows" {
		want = 4
	}
	assert.Equal(t, want, unsafe.Sizeof(Long(0)))
	assert.Equal(t, want, unsafe.Sizeof(ULong(0)))
}
