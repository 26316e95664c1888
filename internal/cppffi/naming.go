package cppffi

import (
	"fmt"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	utilstrings "github.com/conduit-lang/cppbind/internal/util/strings"
)

var operatorNames = map[string]string{
	"==":  "eq",
	"!=":  "neq",
	"<":   "lt",
	"<=":  "le",
	">":   "gt",
	">=":  "ge",
	"++":  "inc",
	"--":  "dec",
	"+":   "add",
	"-":   "sub",
	"*":   "mul",
	"/":   "div",
	"%":   "rem",
	"!":   "not",
	"&&":  "and",
	"||":  "or",
	"&":   "bit_and",
	"|":   "bit_or",
	"^":   "bit_xor",
	"~":   "bit_not",
	"<<":  "shl",
	">>":  "shr",
	"=":   "assign",
	"+=":  "add_assign",
	"-=":  "sub_assign",
	"*=":  "mul_assign",
	"/=":  "div_assign",
	"%=":  "rem_assign",
	"&=":  "bit_and_assign",
	"|=":  "bit_or_assign",
	"^=":  "bit_xor_assign",
	"<<=": "shl_assign",
	">>=": "shr_assign",
	"[]":  "index",
	"()":  "call",
	"->":  "arrow",
}

// IsUnaryOperator reports whether an operator method takes no explicit
// operand besides the receiver (or exactly one for free operators).
func IsUnaryOperator(m *cppdata.Method) bool {
	operands := len(m.Arguments)
	if m.HasReceiver() {
		operands++
	}
	return operands == 1
}

// MangledName returns the identifier-safe part of a method's symbol
func MangledName(m *cppdata.Method) string {
	switch {
	case m.IsConstructor:
		return "constructor"
	case m.IsDestructor:
		return "destructor"
	case m.ConversionOperator != nil:
		return "convert_to_" + utilstrings.ToIdentifier(m.ConversionOperator.ToCppCode())
	case m.Operator != "":
		name, ok := operatorNames[m.Operator]
		if !ok {
			name = utilstrings.ToIdentifier(m.Operator)
		}
		if IsUnaryOperator(m) {
			switch m.Operator {
			case "*":
				name = "indirection"
			case "-":
				name = "neg"
			case "+":
				name = "pos"
			case "&":
				name = "address_of"
			}
		}
		return "operator_" + name
	}
	return utilstrings.ToIdentifier(m.Name)
}

// baseSymbol returns <lib>_<scope>_<mangled> without an overload suffix
func baseSymbol(lib string, m *cppdata.Method) string {
	mangled := MangledName(m)
	if m.IsFree() {
		return fmt.Sprintf("%s_%s", lib, mangled)
	}
	return fmt.Sprintf("%s_%s_%s", lib, utilstrings.ToIdentifier(m.Scope), mangled)
}

// symbolTable hands out unique symbols. Overloads of the same base symbol
// are numbered in the order they are requested.
type symbolTable struct {
	used   map[string]bool
	counts map[string]int
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		used:   make(map[string]bool),
		counts: make(map[string]int),
	}
}

func (st *symbolTable) next(base string) string {
	for {
		n := st.counts[base]
		st.counts[base] = n + 1
		name := base
		if n > 0 {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		if !st.used[name] {
			st.used[name] = true
			return name
		}
	}
}
