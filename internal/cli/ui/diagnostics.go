// Package ui renders command output: diagnostics, tables and status lines.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/cppbind/internal/errors"
)

// Level is the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// MessageOptions describes one formatted message
type MessageOptions struct {
	Level Level
	// Code is printed before the problem, e.g. "ABI202"
	Code        string
	Problem     string
	Detail      string
	Suggestions []string
	Hints       []string
	NoColor     bool
}

// FormatMessage renders a message in the form
//
//	✗ ABI202: Type 'T&&' cannot cross the boundary
//	   in gfx/widget.h
//
//	   Did you mean: Widget?
//
//	   → cppbind inspect --abi
func FormatMessage(opts MessageOptions) string {
	var b strings.Builder

	var header, body *color.Color
	var symbol string
	switch opts.Level {
	case LevelError:
		header, body, symbol = color.New(color.FgRed, color.Bold), color.New(color.FgRed), "✗"
	case LevelWarning:
		header, body, symbol = color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "!"
	default:
		header, body, symbol = color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "i"
	}
	hint := color.New(color.FgCyan)
	if opts.NoColor {
		header.DisableColor()
		body.DisableColor()
		hint.DisableColor()
	}

	if opts.Code != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, opts.Code, opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}
	if opts.Detail != "" {
		for _, line := range strings.Split(strings.TrimRight(opts.Detail, "\n"), "\n") {
			body.Fprintf(&b, "   %s\n", line)
		}
	}
	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		body.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}
	if len(opts.Hints) > 0 {
		b.WriteString("\n")
		for _, h := range opts.Hints {
			hint.Fprintf(&b, "   → %s\n", h)
		}
	}
	return b.String()
}

// FormatDiagnostic renders a generator diagnostic
func FormatDiagnostic(e *errors.BindError, noColor bool) string {
	level := LevelInfo
	switch e.Severity {
	case errors.SeverityError:
		level = LevelError
	case errors.SeverityWarning:
		level = LevelWarning
	}

	var detail []string
	if e.Header != "" {
		detail = append(detail, "in "+e.Header)
	}
	if e.Output != "" {
		detail = append(detail, strings.TrimRight(e.Output, "\n"))
	}

	opts := MessageOptions{
		Level:   level,
		Code:    string(e.Code),
		Problem: e.Message,
		Detail:  strings.Join(detail, "\n"),
		NoColor: noColor,
	}
	if e.Suggestion != "" {
		opts.Hints = []string{e.Suggestion}
	}
	return FormatMessage(opts)
}

// WriteDiagnostics writes every diagnostic followed by a count summary
func WriteDiagnostics(w io.Writer, list errors.ErrorList, noColor bool) {
	if len(list) == 0 {
		return
	}
	for _, e := range list {
		fmt.Fprint(w, FormatDiagnostic(e, noColor))
	}
	errCount, warnCount, _ := list.ErrorCount()
	fmt.Fprintf(w, "\n%d error(s), %d warning(s)\n", errCount, warnCount)
}

// WriteError writes any error, expanding generator error lists
func WriteError(w io.Writer, err error, noColor bool) {
	switch e := err.(type) {
	case errors.ErrorList:
		WriteDiagnostics(w, e, noColor)
	case *errors.BindError:
		fmt.Fprint(w, FormatDiagnostic(e, noColor))
	default:
		fmt.Fprint(w, FormatMessage(MessageOptions{Level: LevelError, Problem: err.Error(), NoColor: noColor}))
	}
}

// TypeNotFound reports an unknown native type name
func TypeNotFound(name string, suggestions []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelError,
		Problem:     fmt.Sprintf("No type named '%s' in the model", name),
		Suggestions: suggestions,
		Hints:       []string{"List all types: cppbind inspect"},
		NoColor:     noColor,
	})
}

// WriteSuccess writes a success line
func WriteSuccess(w io.Writer, message string, noColor bool) {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	green.Fprintf(w, "✓ %s\n", message)
}
