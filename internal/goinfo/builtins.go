package goinfo

import "strings"

// Builtin maps a native builtin type to its Go and cgo spellings
type Builtin struct {
	Cpp string
	Go  string
	// C is the type name after the "C." prefix in cgo
	C string
}

// RuntimePrefix marks Go spellings declared by the cppcore runtime. The
// width of C long differs between platforms, so it has no fixed Go type.
const RuntimePrefix = "cppcore."

// RuntimeName returns the name of a runtime-declared Go type
func (b Builtin) RuntimeName() (string, bool) {
	return strings.CutPrefix(b.Go, RuntimePrefix)
}

// IsVoid reports whether the builtin stands for void (only used behind a
// pointer)
func (b Builtin) IsVoid() bool {
	return b.Cpp == "void"
}

var builtins = map[string]Builtin{
	"bool":               {"bool", "bool", "bool"},
	"char":               {"char", "int8", "char"},
	"signed char":        {"signed char", "int8", "schar"},
	"unsigned char":      {"unsigned char", "uint8", "uchar"},
	"short":              {"short", "int16", "short"},
	"unsigned short":     {"unsigned short", "uint16", "ushort"},
	"int":                {"int", "int32", "int"},
	"unsigned int":       {"unsigned int", "uint32", "uint"},
	"long":               {"long", RuntimePrefix + "Long", "long"},
	"unsigned long":      {"unsigned long", RuntimePrefix + "ULong", "ulong"},
	"long long":          {"long long", "int64", "longlong"},
	"unsigned long long": {"unsigned long long", "uint64", "ulonglong"},
	"float":              {"float", "float32", "float"},
	"double":             {"double", "float64", "double"},
	"size_t":             {"size_t", "uint64", "size_t"},
	"int8_t":             {"int8_t", "int8", "int8_t"},
	"uint8_t":            {"uint8_t", "uint8", "uint8_t"},
	"int16_t":            {"int16_t", "int16", "int16_t"},
	"uint16_t":           {"uint16_t", "uint16", "uint16_t"},
	"int32_t":            {"int32_t", "int32", "int32_t"},
	"uint32_t":           {"uint32_t", "uint32", "uint32_t"},
	"int64_t":            {"int64_t", "int64", "int64_t"},
	"uint64_t":           {"uint64_t", "uint64", "uint64_t"},
}

var voidBuiltin = Builtin{Cpp: "void", Go: "unsafe.Pointer", C: "void"}

// LookupBuiltin returns the mapping for a native builtin spelling
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}
