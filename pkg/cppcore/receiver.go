package cppcore

import "unsafe"

// ReceiverKind tells signals from slots
type ReceiverKind int

const (
	ReceiverSignal ReceiverKind = iota
	ReceiverSlot
)

// Receiver names a signal or slot of a live object. ID uses the encoding
// of Qt's SIGNAL and SLOT macros ("2clicked(bool)", "1update()") and is
// what connection functions such as QObject::connect take.
type Receiver struct {
	Object unsafe.Pointer
	Kind   ReceiverKind
	ID     string
}

// CString returns ID as a NUL-terminated byte slice for passing to C
func (r Receiver) CString() []byte {
	return append([]byte(r.ID), 0)
}
