// Package jsonschema derives JSON Schema documents from Go types via
// reflection. The generated schema describes the output shape declared to
// the completion service, so it follows the subset of JSON Schema that
// strict structured outputs accept: typed properties, required lists, enums
// and closed objects (additionalProperties: false).
package jsonschema

import (
	"reflect"
	"strings"
)

// Schema is a JSON Schema node.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	// AdditionalProperties is emitted as false on objects so that strict
	// schema validation rejects unknown keys.
	AdditionalProperties any `json:"additionalProperties,omitempty"`
}

// For derives the schema of type T.
//
// Struct fields map to properties named by their json tag (fields tagged
// "-" are skipped). A field is listed as required when it is a non-pointer
// without omitempty, or when its jsonschema tag says "required". The
// jsonschema tag also supports "description=..." and repeated "enum=..."
// entries. Recursive types are cut off rather than expanded without bound.
func For[T any]() *Schema {
	return typeSchema(reflect.TypeFor[T](), make(map[reflect.Type]bool))
}

func typeSchema(t reflect.Type, seen map[reflect.Type]bool) *Schema {
	switch t.Kind() {
	case reflect.Ptr:
		return typeSchema(t.Elem(), seen)

	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: typeSchema(t.Elem(), seen)}

	case reflect.Map:
		// Open-ended maps cannot be described as closed objects; allow any
		// value shape for them.
		return &Schema{Type: "object"}

	case reflect.Struct:
		if seen[t] {
			return &Schema{Type: "object"}
		}
		seen[t] = true
		defer delete(seen, t)
		return structSchema(t, seen)

	default:
		return &Schema{Type: "object"}
	}
}

func structSchema(t reflect.Type, seen map[reflect.Type]bool) *Schema {
	s := &Schema{
		Type:                 "object",
		Properties:           map[string]*Schema{},
		AdditionalProperties: false,
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		omitEmpty := false
		if tag := field.Tag.Get("json"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, p := range parts[1:] {
				if p == "omitempty" {
					omitEmpty = true
				}
			}
		}

		prop := typeSchema(field.Type, seen)
		requiredByTag := applyFieldTag(field.Tag.Get("jsonschema"), prop)
		s.Properties[name] = prop

		if requiredByTag || (field.Type.Kind() != reflect.Ptr && !omitEmpty) {
			s.Required = append(s.Required, name)
		}
	}

	return s
}

// applyFieldTag applies a jsonschema struct tag to prop and reports whether
// the tag marks the field required. Tag items are comma-separated, so
// descriptions cannot contain commas; none of ours do.
func applyFieldTag(tag string, prop *Schema) bool {
	if tag == "" {
		return false
	}
	required := false
	for _, item := range strings.Split(tag, ",") {
		switch key, value, hasValue := strings.Cut(item, "="); {
		case !hasValue && key == "required":
			required = true
		case key == "description":
			prop.Description = value
		case key == "enum":
			prop.Enum = append(prop.Enum, value)
		}
	}
	return required
}
