package tsgen

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const typeNull = "null"

// maxTypeDepth bounds inline expansion of recursive schemas without refs.
const maxTypeDepth = 12

// typeMapper turns schemas into TypeScript type expressions. Output uses tab
// indentation and is reindented when files are written.
type typeMapper struct {
	names   map[string]string // component ref -> model name
	imports map[string]bool
}

func newTypeMapper(names map[string]string) *typeMapper {
	return &typeMapper{names: names, imports: make(map[string]bool)}
}

// takeImports returns and resets the model names referenced since the last call.
func (m *typeMapper) takeImports() []string {
	out := make([]string, 0, len(m.imports))
	for name := range m.imports {
		out = append(out, name)
	}
	sort.Strings(out)
	m.imports = make(map[string]bool)
	return out
}

// refName maps "#/components/schemas/Pet" (or "other.yaml#/Pet") to a model name.
func (m *typeMapper) refName(ref string) (string, bool) {
	if name, ok := m.names[ref]; ok {
		return name, true
	}
	i := strings.LastIndex(ref, "/")
	if i < 0 {
		return "", false
	}
	name, ok := m.names[componentRef(ref[i+1:])]
	return name, ok
}

func componentRef(key string) string {
	return "#/components/schemas/" + key
}

// typeOf returns the TypeScript type for ref. depth is the indentation level
// of the enclosing block.
func (m *typeMapper) typeOf(ref *openapi3.SchemaRef, depth int) string {
	if ref == nil {
		return "any"
	}
	if ref.Ref != "" {
		if name, ok := m.refName(ref.Ref); ok {
			m.imports[name] = true
			return name
		}
	}
	if ref.Value == nil || depth > maxTypeDepth {
		return "any"
	}
	return m.schemaType(ref.Value, depth)
}

func (m *typeMapper) schemaType(s *openapi3.Schema, depth int) string {
	t := m.baseType(s, depth)
	if isNullable(s) && t != "any" && t != "null" {
		t = wrapUnion(t) + " | null"
	}
	return t
}

func (m *typeMapper) baseType(s *openapi3.Schema, depth int) string {
	if len(s.Enum) > 0 {
		return enumUnion(s.Enum)
	}

	switch {
	case len(s.AllOf) > 0:
		return m.combine(s.AllOf, " & ", depth)
	case len(s.OneOf) > 0:
		return m.combine(s.OneOf, " | ", depth)
	case len(s.AnyOf) > 0:
		return m.combine(s.AnyOf, " | ", depth)
	}

	types := schemaTypes(s)
	if len(types) > 1 {
		parts := make([]string, 0, len(types))
		for _, typ := range types {
			if typ == typeNull {
				continue
			}
			parts = append(parts, m.primitive(typ, s, depth))
		}
		return strings.Join(parts, " | ")
	}
	typ := ""
	if len(types) == 1 {
		typ = types[0]
	} else if len(s.Properties) > 0 || s.AdditionalProperties.Has != nil || s.AdditionalProperties.Schema != nil {
		typ = openapi3.TypeObject
	} else if s.Items != nil {
		typ = openapi3.TypeArray
	}
	return m.primitive(typ, s, depth)
}

func (m *typeMapper) primitive(typ string, s *openapi3.Schema, depth int) string {
	switch typ {
	case openapi3.TypeString:
		if s.Format == "binary" {
			return "Blob"
		}
		return "string"
	case openapi3.TypeInteger, openapi3.TypeNumber:
		return "number"
	case openapi3.TypeBoolean:
		return "boolean"
	case typeNull:
		return "null"
	case openapi3.TypeArray:
		return "Array<" + m.typeOf(s.Items, depth) + ">"
	case openapi3.TypeObject:
		return m.objectType(s, depth)
	default:
		return "any"
	}
}

func (m *typeMapper) combine(refs openapi3.SchemaRefs, sep string, depth int) string {
	var parts []string
	seen := make(map[string]bool)
	for _, r := range refs {
		t := m.typeOf(r, depth)
		if seen[t] {
			continue
		}
		seen[t] = true
		parts = append(parts, t)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	for i, p := range parts {
		parts[i] = wrapUnion(p)
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func (m *typeMapper) objectType(s *openapi3.Schema, depth int) string {
	additional := ""
	switch {
	case s.AdditionalProperties.Schema != nil:
		additional = m.typeOf(s.AdditionalProperties.Schema, depth)
	case s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has:
		additional = "any"
	}

	if len(s.Properties) == 0 {
		if additional != "" {
			return "Record<string, " + additional + ">"
		}
		return "Record<string, any>"
	}

	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}

	inner := strings.Repeat("\t", depth+1)
	var b strings.Builder
	b.WriteString("{\n")
	for _, name := range sortedKeys(s.Properties) {
		prop := s.Properties[name]
		if prop != nil && prop.Value != nil {
			writeDoc(&b, inner, prop.Value.Description, prop.Value.Deprecated)
		}
		b.WriteString(inner)
		if prop != nil && prop.Value != nil && prop.Value.ReadOnly {
			b.WriteString("readonly ")
		}
		b.WriteString(propertyKey(name))
		if !required[name] {
			b.WriteString("?")
		}
		b.WriteString(": ")
		b.WriteString(m.typeOf(prop, depth+1))
		b.WriteString(";\n")
	}
	if additional != "" {
		b.WriteString(inner + "[key: string]: " + additional + ";\n")
	}
	b.WriteString(strings.Repeat("\t", depth) + "}")
	return b.String()
}

// writeDoc emits a JSDoc block at the given indent when there is anything to say.
func writeDoc(b *strings.Builder, indent, description string, deprecated bool) {
	description = strings.TrimSpace(description)
	if description == "" && !deprecated {
		return
	}
	b.WriteString(indent + "/**\n")
	if deprecated {
		b.WriteString(indent + " * @deprecated\n")
	}
	for _, line := range strings.Split(description, "\n") {
		if description == "" {
			break
		}
		b.WriteString(strings.TrimRight(indent+" * "+escapeComment(line), " ") + "\n")
	}
	b.WriteString(indent + " */\n")
}

func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}

func schemaTypes(s *openapi3.Schema) []string {
	if s.Type == nil {
		return nil
	}
	return s.Type.Slice()
}

func isNullable(s *openapi3.Schema) bool {
	if s.Nullable {
		return true
	}
	for _, typ := range schemaTypes(s) {
		if typ == typeNull {
			return true
		}
	}
	return false
}

func wrapUnion(t string) string {
	if strings.Contains(t, " | ") || strings.Contains(t, " & ") {
		if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
			return t
		}
		return "(" + t + ")"
	}
	return t
}

func enumUnion(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, literal(v))
	}
	return strings.Join(parts, " | ")
}

// literal renders an enum value as a TypeScript literal.
func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return quote(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return "any"
		}
		return string(data)
	}
}

// quote renders s as a single-quoted TypeScript string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

func propertyKey(name string) string {
	if isPlainKey(name) {
		return name
	}
	return quote(name)
}

func isPlainKey(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// enumMemberName derives an enum member name from a literal value.
func enumMemberName(v any) string {
	var raw string
	switch x := v.(type) {
	case string:
		raw = x
	default:
		raw = fmt.Sprint(x)
	}
	var b strings.Builder
	for _, w := range splitEnumWords(raw) {
		if b.Len() > 0 {
			b.WriteByte('_')
		}
		b.WriteString(strings.ToUpper(w))
	}
	name := b.String()
	switch {
	case name == "":
		return "_"
	case name[0] >= '0' && name[0] <= '9':
		return "_" + name
	}
	return name
}

func splitEnumWords(s string) []string {
	var words []string
	var cur strings.Builder
	prevLower := false
	for _, r := range s {
		isAlnum := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		if !isAlnum {
			if cur.Len() > 0 {
				words = append(words, cur.String())
				cur.Reset()
			}
			prevLower = false
			continue
		}
		if r >= 'A' && r <= 'Z' && prevLower && cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
		prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}
