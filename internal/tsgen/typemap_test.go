package tsgen

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

func TestTypeOf(t *testing.T) {
	petRef := &openapi3.SchemaRef{Ref: "#/components/schemas/Pet", Value: openapi3.NewObjectSchema()}
	names := map[string]string{"#/components/schemas/Pet": "Pet"}

	tests := []struct {
		name   string
		schema *openapi3.SchemaRef
		want   string
	}{
		{"nil", nil, "any"},
		{"string", openapi3.NewStringSchema().NewRef(), "string"},
		{"binary", openapi3.NewStringSchema().WithFormat("binary").NewRef(), "Blob"},
		{"integer", openapi3.NewInt64Schema().NewRef(), "number"},
		{"boolean", openapi3.NewBoolSchema().NewRef(), "boolean"},
		{"nullable", openapi3.NewStringSchema().WithNullable().NewRef(), "string | null"},
		{"ref", petRef, "Pet"},
		{"array of refs", openapi3.NewArraySchema().WithItems(petRef.Value).NewRef(), "Array<Record<string, any>>"},
		{"map", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewInt64Schema()).NewRef(), "Record<string, number>"},
		{"free object", openapi3.NewObjectSchema().NewRef(), "Record<string, any>"},
		{"enum", openapi3.NewStringSchema().WithEnum("a", "b").NewRef(), "'a' | 'b'"},
		{"oneOf", (&openapi3.Schema{OneOf: openapi3.SchemaRefs{petRef, openapi3.NewStringSchema().NewRef()}}).NewRef(), "(Pet | string)"},
		{"allOf single", (&openapi3.Schema{AllOf: openapi3.SchemaRefs{petRef}}).NewRef(), "Pet"},
		{"untyped", (&openapi3.Schema{}).NewRef(), "any"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTypeMapper(names)
			if got := m.typeOf(tc.schema, 0); got != tc.want {
				t.Errorf("typeOf() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestObjectType(t *testing.T) {
	s := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("display-name", openapi3.NewStringSchema())
	s.Required = []string{"id"}

	m := newTypeMapper(nil)
	want := "{\n\t'display-name'?: string;\n\tid: number;\n}"
	if got := m.typeOf(s.NewRef(), 0); got != want {
		t.Errorf("typeOf() =\n%s\nwant\n%s", got, want)
	}
}

func TestImportsCollected(t *testing.T) {
	names := map[string]string{"#/components/schemas/Pet": "Pet", "#/components/schemas/Tag": "Tag"}
	s := openapi3.NewObjectSchema()
	s.Properties = openapi3.Schemas{
		"pet":  &openapi3.SchemaRef{Ref: "#/components/schemas/Pet"},
		"tags": openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()).NewRef(),
		"tag":  &openapi3.SchemaRef{Ref: "#/components/schemas/Tag"},
	}

	m := newTypeMapper(names)
	m.typeOf(s.NewRef(), 0)
	got := m.takeImports()
	if len(got) != 2 || got[0] != "Pet" || got[1] != "Tag" {
		t.Errorf("imports = %v, want [Pet Tag]", got)
	}
	if again := m.takeImports(); len(again) != 0 {
		t.Errorf("imports not reset: %v", again)
	}
}

func TestLiteralAndQuote(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"it's", `'it\'s'`},
		{float64(3), "3"},
		{1.5, "1.5"},
		{true, "true"},
		{nil, "null"},
	}
	for _, tc := range tests {
		if got := literal(tc.in); got != tc.want {
			t.Errorf("literal(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEnumMemberName(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"available", "AVAILABLE"},
		{"inStock", "IN_STOCK"},
		{"out-of-stock", "OUT_OF_STOCK"},
		{float64(404), "_404"},
		{"", "_"},
	}
	for _, tc := range tests {
		if got := enumMemberName(tc.in); got != tc.want {
			t.Errorf("enumMemberName(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReindent(t *testing.T) {
	src := []byte("a {\n\tb;\n\t\tc;\n}")
	if got := string(reindent(src, "  ")); got != "a {\n  b;\n    c;\n}" {
		t.Errorf("reindent = %q", got)
	}
	if got := string(reindent(src, "\t")); got != string(src) {
		t.Errorf("tab reindent changed input: %q", got)
	}
}
