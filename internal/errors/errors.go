// Package errors provides structured error handling for the binding generator.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a unique error code in the generator
type ErrorCode string

// ErrorCategory represents the category of a generator error
type ErrorCategory string

const (
	// CategoryModel represents native model inconsistencies (MOD100-199)
	CategoryModel ErrorCategory = "model"
	// CategoryABI represents ABI synthesis problems (ABI200-299)
	CategoryABI ErrorCategory = "abi"
	// CategoryEmission represents emission ambiguities (EMI300-399)
	CategoryEmission ErrorCategory = "emission"
	// CategoryProcess represents external process failures (PRC400-499)
	CategoryProcess ErrorCategory = "process"
	// CategoryCache represents snapshot cache problems (CAC500-599)
	CategoryCache ErrorCategory = "cache"
	// CategoryConfig represents configuration errors (CFG600-699)
	CategoryConfig ErrorCategory = "config"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError indicates an error that aborts the generation run
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a diagnostic that does not abort the run
	SeverityWarning ErrorSeverity = "warning"
	// SeverityInfo indicates informational messages
	SeverityInfo ErrorSeverity = "info"
)

// BindError represents a structured generator error
type BindError struct {
	// Code is the unique error code (e.g., "MOD101", "ABI201")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Subject names the entity the error is about (class, method, command)
	Subject string `json:"subject,omitempty"`
	// Header is the declaring header of the subject (optional)
	Header string `json:"header,omitempty"`
	// Output holds captured process output (optional)
	Output string `json:"output,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`
}

// Error implements the error interface
func (e *BindError) Error() string {
	return e.Format()
}

// Format returns a human-readable error message for terminal output
func (e *BindError) Format() string {
	return FormatError(e)
}

// IsFatal reports whether the error aborts the generation run
func (e *BindError) IsFatal() bool {
	return e.Severity == SeverityError
}

// ToJSON returns the error as a JSON string
func (e *BindError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithHeader sets the declaring header for the error
func (e *BindError) WithHeader(header string) *BindError {
	e.Header = header
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *BindError) WithSuggestion(suggestion string) *BindError {
	e.Suggestion = suggestion
	return e
}

// WithOutput attaches captured process output
func (e *BindError) WithOutput(output string) *BindError {
	e.Output = output
	return e
}

// AsFatal returns a copy of the error promoted to error severity.
// Strict mode uses it to turn diagnostics into failures.
func (e *BindError) AsFatal() *BindError {
	c := *e
	c.Severity = SeverityError
	return &c
}

// ErrorList is a collection of generator errors
type ErrorList []*BindError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// HasErrors returns true if the list contains any errors (excludes warnings/info)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if the list contains any warnings
func (el ErrorList) HasWarnings() bool {
	for _, err := range el {
		if err.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Fatal returns only the entries with error severity
func (el ErrorList) Fatal() ErrorList {
	var out ErrorList
	for _, err := range el {
		if err.IsFatal() {
			out = append(out, err)
		}
	}
	return out
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// ErrorCount returns the number of errors by severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return
}

// newError creates a new BindError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	subject string,
	format string,
	args ...any,
) *BindError {
	return &BindError{
		Code:     code,
		Type:     typ,
		Category: category,
		Severity: severity,
		Subject:  subject,
		Message:  fmt.Sprintf(format, args...),
	}
}
