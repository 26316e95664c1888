package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *BindError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s [%s]\n", severityIcon(e.Severity), categoryDisplayName(e.Category), e.Code)

	if e.Header != "" {
		fmt.Fprintf(&b, "In %s:\n", e.Header)
	}
	fmt.Fprintf(&b, "  %s\n", e.Message)

	if e.Output != "" {
		b.WriteString("\nOutput:\n")
		for _, line := range strings.Split(strings.TrimRight(e.Output, "\n"), "\n") {
			fmt.Fprintf(&b, "  | %s\n", line)
		}
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}

	return b.String()
}

// FormatErrorList returns a formatted string of all errors
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder

	errCount, warnCount, infoCount := errors.ErrorCount()
	fmt.Fprintf(&b, "Generation failed with %d error(s), %d warning(s), %d info\n\n",
		errCount, warnCount, infoCount)

	for i, err := range errors {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
		}
		b.WriteString(err.Format())
	}

	return b.String()
}

// FormatCompact returns a compact one-line error format
func FormatCompact(e *BindError) string {
	subject := e.Subject
	if subject == "" {
		subject = "<unit>"
	}
	return fmt.Sprintf("%s: %s: %s [%s]", subject, e.Severity, e.Message, e.Code)
}

func severityIcon(severity ErrorSeverity) string {
	switch severity {
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️ "
	case SeverityInfo:
		return "ℹ️ "
	default:
		return "❓"
	}
}

func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategoryModel:
		return "Model Inconsistency"
	case CategoryABI:
		return "ABI Synthesis Diagnostic"
	case CategoryEmission:
		return "Emission Ambiguity"
	case CategoryProcess:
		return "External Process Failure"
	case CategoryCache:
		return "Stale Cache"
	case CategoryConfig:
		return "Configuration Error"
	default:
		return "Generator Error"
	}
}
