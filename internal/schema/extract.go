package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
)

// ExtractFlags returns one Flag per property of an object schema, required
// flags first and then alphabetical by flag name.
func ExtractFlags(inputSchema json.RawMessage) ([]Flag, error) {
	if len(inputSchema) == 0 || string(inputSchema) == "null" {
		return nil, nil
	}
	if !gjson.ValidBytes(inputSchema) {
		return nil, fmt.Errorf("schema: invalid JSON in input schema")
	}

	root := gjson.ParseBytes(inputSchema)
	props := root.Get("properties")
	if !props.IsObject() {
		return nil, nil
	}

	required := make(map[string]bool)
	for _, r := range root.Get("required").Array() {
		required[r.String()] = true
	}

	var flags []Flag
	props.ForEach(func(key, prop gjson.Result) bool {
		if !prop.IsObject() {
			return true
		}
		f := Flag{
			Property:    key.String(),
			Name:        ToFlagName(key.String()),
			Description: prop.Get("description").String(),
			Required:    required[key.String()],
			Kind:        kindOf(prop),
		}
		if def := prop.Get("default"); def.Exists() {
			f.Default = def.Value()
		}
		for _, v := range prop.Get("enum").Array() {
			f.Enum = append(f.Enum, v.String())
		}
		flags = append(flags, f)
		return true
	})

	sort.Slice(flags, func(i, j int) bool {
		if flags[i].Required != flags[j].Required {
			return flags[i].Required
		}
		return flags[i].Name < flags[j].Name
	})
	return flags, nil
}

// kindOf maps a property's "type" (a string or a nullable type list) to a Kind.
func kindOf(prop gjson.Result) Kind {
	typ := prop.Get("type")
	name := typ.String()
	if typ.IsArray() {
		name = ""
		for _, t := range typ.Array() {
			if t.String() != "null" {
				name = t.String()
				break
			}
		}
	}
	switch name {
	case "integer":
		return KindInt
	case "number":
		return KindFloat
	case "boolean":
		return KindBool
	case "array":
		return KindStrings
	default:
		return KindString
	}
}
