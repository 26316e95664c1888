package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts CamelCase to snake_case
// Handles acronyms properly (HTTPRequest -> http_request)
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				// Underscore before an uppercase letter that follows a lowercase
				// one or starts a word after an acronym.
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					result.WriteRune('_')
				} else if prev != '_' && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ToPascalCase converts snake_case or camelCase to PascalCase
// (draw_all -> DrawAll, setValue -> SetValue)
func ToPascalCase(s string) string {
	var result strings.Builder
	upperNext := true
	for _, r := range s {
		if r == '_' || r == ' ' || r == '-' {
			upperNext = true
			continue
		}
		if upperNext {
			result.WriteRune(unicode.ToUpper(r))
			upperNext = false
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ToCamelCase converts snake_case to camelCase (unsigned_int -> unsignedInt)
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if pascal == "" {
		return ""
	}
	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// ToIdentifier replaces every character that cannot appear in a C or Go
// identifier with an underscore and collapses runs of underscores
// (QVector<unsigned int> -> QVector_unsigned_int).
func ToIdentifier(s string) string {
	var result strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			result.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && result.Len() > 0 {
			result.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(result.String(), "_")
}

// ToPackageName converts a namespace component to a Go package name
// (QtCore -> qtcore)
func ToPackageName(s string) string {
	return strings.ToLower(strings.ReplaceAll(ToIdentifier(s), "_", ""))
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// IsGoKeyword reports whether s is a reserved word in Go
func IsGoKeyword(s string) bool {
	return goKeywords[s]
}

// SafeIdentifier makes s usable as a local Go identifier by appending an
// underscore to keywords and prefixing names that start with a digit
func SafeIdentifier(s string) string {
	if s == "" {
		return "arg"
	}
	if IsGoKeyword(s) {
		return s + "_"
	}
	if unicode.IsDigit([]rune(s)[0]) {
		return "_" + s
	}
	return s
}
