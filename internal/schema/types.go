// Package schema turns a tool's JSON Schema input description into CLI flags.
package schema

import "strings"

// Kind is the flag value type derived from a property's JSON Schema type.
type Kind string

const (
	KindString  Kind = "string"
	KindInt     Kind = "int"
	KindFloat   Kind = "float"
	KindBool    Kind = "bool"
	KindStrings Kind = "strings"
)

// Flag is one CLI flag backed by a schema property.
type Flag struct {
	Property    string // JSON key, e.g. "httpClient"
	Name        string // kebab-case flag, e.g. "http-client"
	Description string
	Required    bool
	Kind        Kind
	Default     any      // nil when the schema has no default
	Enum        []string // allowed values, nil when unrestricted
}

// Usage is the help text shown for the flag.
func (f Flag) Usage() string {
	if len(f.Enum) == 0 {
		return f.Description
	}
	return f.Description + " (" + strings.Join(f.Enum, "|") + ")"
}
