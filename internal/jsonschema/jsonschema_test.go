package jsonschema

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

type testEntity struct {
	Name     string   `json:"name" jsonschema:"description=Entity name,required"`
	Tags     []string `json:"tags" jsonschema:"description=Free-form tags"`
	Kind     string   `json:"kind" jsonschema:"enum=acute,enum=chronic"`
	Score    float64  `json:"score,omitempty"`
	Hidden   string   `json:"-"`
	internal int      //nolint:unused // verifies unexported fields are skipped
}

type testList struct {
	Entities []testEntity `json:"entities" jsonschema:"required"`
}

func TestFor_ObjectShape(t *testing.T) {
	s := For[testList]()

	if s.Type != "object" {
		t.Fatalf("root type = %q, want object", s.Type)
	}
	if s.AdditionalProperties != false {
		t.Error("objects must be closed (additionalProperties: false)")
	}
	if !reflect.DeepEqual(s.Required, []string{"entities"}) {
		t.Errorf("required = %v, want [entities]", s.Required)
	}

	entities := s.Properties["entities"]
	if entities == nil || entities.Type != "array" {
		t.Fatalf("entities schema = %+v, want array", entities)
	}
	if entities.Items == nil || entities.Items.Type != "object" {
		t.Fatalf("entities items = %+v, want object", entities.Items)
	}
}

func TestFor_FieldTags(t *testing.T) {
	s := For[testEntity]()

	if got := s.Properties["name"].Description; got != "Entity name" {
		t.Errorf("name description = %q", got)
	}
	if got := s.Properties["kind"].Enum; len(got) != 2 || got[0] != "acute" || got[1] != "chronic" {
		t.Errorf("kind enum = %v", got)
	}
	if _, ok := s.Properties["Hidden"]; ok {
		t.Error("json:\"-\" field must be skipped")
	}
	if _, ok := s.Properties["internal"]; ok {
		t.Error("unexported field must be skipped")
	}

	// name/tags/kind are non-pointer without omitempty, score has omitempty.
	want := []string{"name", "tags", "kind"}
	if !reflect.DeepEqual(s.Required, want) {
		t.Errorf("required = %v, want %v", s.Required, want)
	}
}

func TestFor_Primitives(t *testing.T) {
	type prims struct {
		S string  `json:"s"`
		B bool    `json:"b"`
		I int     `json:"i"`
		F float64 `json:"f"`
	}
	s := For[prims]()

	cases := map[string]string{"s": "string", "b": "boolean", "i": "integer", "f": "number"}
	for field, wantType := range cases {
		if got := s.Properties[field].Type; got != wantType {
			t.Errorf("%s type = %q, want %q", field, got, wantType)
		}
	}
}

func TestFor_MarshalsCleanly(t *testing.T) {
	raw, err := json.Marshal(For[testList]())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	// Spot-check the wire form the completion service receives.
	for _, want := range []string{`"type":"object"`, `"additionalProperties":false`, `"entities"`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("serialized schema missing %s:\n%s", want, raw)
		}
	}
}

func TestFor_RecursiveTypeTerminates(t *testing.T) {
	type node struct {
		Value    string  `json:"value"`
		Children []*node `json:"children,omitempty"`
	}
	s := For[node]() // must not hang or overflow

	if s.Properties["children"].Items.Type != "object" {
		t.Errorf("recursive reference should degrade to a plain object")
	}
}
