package nameutil

import (
	"strings"
	"unicode"
)

// Words splits s into words at separators, camelCase boundaries and acronym
// boundaries: "getHTTPResponse_v2" -> [get HTTP Response v2].
func Words(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// PascalCase joins the words of s as "ListPetsById".
func PascalCase(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(title(w))
	}
	return b.String()
}

// CamelCase joins the words of s as "listPetsById".
func CamelCase(s string) string {
	words := Words(s)
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(title(w))
	}
	return b.String()
}

func title(w string) string {
	r := []rune(strings.ToLower(w))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// IsIdentifier reports whether s is usable as a TypeScript identifier as-is.
func IsIdentifier(s string) bool {
	if s == "" || reserved[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// Identifier makes s safe for use as a TypeScript identifier, preferring the
// original spelling when it is already valid.
func Identifier(s string) string {
	if IsIdentifier(s) {
		return s
	}
	id := PascalCase(s)
	if id == "" {
		return "_"
	}
	if unicode.IsDigit([]rune(id)[0]) || reserved[id] {
		id = "_" + id
	}
	return id
}

var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "let": true, "static": true, "yield": true, "await": true,
	"interface": true, "package": true, "private": true, "protected": true, "public": true,
}
