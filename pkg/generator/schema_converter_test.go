package generator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/openapi"
)

func parseRegistry(t *testing.T, src string) (openapi.Registry, ir.IRDialect) {
	t.Helper()
	doc, err := openapi.ParseDocument([]byte(src))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	return doc.Schemas, doc.Dialect
}

func convertSource(t *testing.T, src string) *ConvertResult {
	t.Helper()
	reg, dialect := parseRegistry(t, src)
	res, err := ConvertRegistry(reg, ConvertOptions{Dialect: dialect})
	if err != nil {
		t.Fatalf("ConvertRegistry: %v", err)
	}
	return res
}

func definition(t *testing.T, res *ConvertResult, name string) ir.IRType {
	t.Helper()
	d, ok := res.Schema.Lookup(name)
	if !ok {
		t.Fatalf("definition %s missing; have %v", name, res.Schema.Names())
	}
	return d.Type
}

func hasWarning(res *ConvertResult, code string) bool {
	for _, w := range res.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestConvertObject(t *testing.T) {
	res := convertSource(t, `openapi: 3.0.3
components:
  schemas:
    User:
      type: object
      description: A user
      properties:
        id: {type: number}
        name: {type: string}
      required: [id, name]
`)
	obj, ok := definition(t, res, "User").(*ir.IRObject)
	if !ok {
		t.Fatalf("User is %T, want *ir.IRObject", definition(t, res, "User"))
	}
	if obj.Metadata == nil || obj.Metadata.Description != "A user" {
		t.Errorf("metadata not attached: %+v", obj.Metadata)
	}
	want := map[string]ir.IRPrimitiveKind{"id": ir.IRPrimitiveNumber, "name": ir.IRPrimitiveString}
	for name, kind := range want {
		p, ok := obj.Property(name)
		if !ok {
			t.Fatalf("property %s missing", name)
		}
		if !p.Required {
			t.Errorf("property %s should be required", name)
		}
		if prim, ok := p.Type.(*ir.IRPrimitive); !ok || prim.Name != kind {
			t.Errorf("property %s = %#v, want %s", name, p.Type, kind)
		}
	}
	if obj.Additional.Mode != ir.IRAdditionalAbsent {
		t.Errorf("additionalProperties mode = %v, want absent", obj.Additional.Mode)
	}
}

func TestConvertRequiredCount(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		required int
	}{
		{"none", `{type: object, properties: {a: {type: string}}}`, 0},
		{"all", `{type: object, properties: {a: {type: string}, b: {type: string}}, required: [a, b]}`, 2},
		{"undeclared names ignored", `{type: object, properties: {a: {type: string}}, required: [a, ghost]}`, 1},
		{"empty", `{type: object, required: [ghost]}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := convertSource(t, "openapi: 3.0.0\ncomponents:\n  schemas:\n    X: "+tt.src+"\n")
			obj := definition(t, res, "X").(*ir.IRObject)
			got := 0
			for _, p := range obj.Properties {
				if p.Required {
					got++
				}
			}
			if got != tt.required {
				t.Errorf("required properties = %d, want %d", got, tt.required)
			}
		})
	}
}

func TestConvertPropertyOrder(t *testing.T) {
	res := convertSource(t, `openapi: 3.0.0
components:
  schemas:
    Ordered:
      type: object
      properties:
        zeta: {type: string}
        alpha: {type: string}
        mid: {type: string}
`)
	obj := definition(t, res, "Ordered").(*ir.IRObject)
	var names []string
	for _, p := range obj.Properties {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, ","); got != "zeta,alpha,mid" {
		t.Errorf("property order = %s, want document order", got)
	}
}

func isNullableOf(t ir.IRType, kind ir.IRPrimitiveKind) bool {
	u, ok := t.(*ir.IRUnion)
	if !ok || len(u.Members) != 2 {
		return false
	}
	var base, null bool
	for _, m := range u.Members {
		if ir.IsNull(m) {
			null = true
		} else if p, ok := m.(*ir.IRPrimitive); ok && p.Name == kind {
			base = true
		}
	}
	return base && null
}

func TestConvertNullability(t *testing.T) {
	t.Run("3.0 nullable flag", func(t *testing.T) {
		res := convertSource(t, `openapi: 3.0.3
components:
  schemas:
    Name: {type: string, nullable: true, maxLength: 5}
`)
		name := definition(t, res, "Name")
		if !isNullableOf(name, ir.IRPrimitiveString) {
			t.Fatalf("Name = %#v, want union of string and null", name)
		}
		if c := name.Annotations().Constraints; c == nil || c.MaxLength == nil || *c.MaxLength != 5 {
			t.Errorf("constraints not attached to the union: %+v", c)
		}
	})

	t.Run("3.1 type list", func(t *testing.T) {
		res := convertSource(t, `{"openapi": "3.1.0", "components": {"schemas": {"Age": {"type": ["integer", "null"]}}}}`)
		if age := definition(t, res, "Age"); !isNullableOf(age, ir.IRPrimitiveInteger) {
			t.Errorf("Age = %#v, want union of integer and null", age)
		}
		if len(res.Warnings) != 0 {
			t.Errorf("unexpected warnings %v", res.Warnings)
		}
	})

	t.Run("3.1 ignores nullable flag", func(t *testing.T) {
		res := convertSource(t, `{"openapi": "3.1.0", "components": {"schemas": {"Name": {"type": "string", "nullable": true}}}}`)
		if p, ok := definition(t, res, "Name").(*ir.IRPrimitive); !ok || p.Name != ir.IRPrimitiveString {
			t.Errorf("Name = %#v, want plain string", definition(t, res, "Name"))
		}
		if !hasWarning(res, ir.WarnNullableIgnored) {
			t.Errorf("expected %s warning, got %v", ir.WarnNullableIgnored, res.Warnings)
		}
	})

	t.Run("3.0 type list warns", func(t *testing.T) {
		res := convertSource(t, "openapi: 3.0.0\ncomponents:\n  schemas:\n    X: {type: [string, 'null']}\n")
		if !isNullableOf(definition(t, res, "X"), ir.IRPrimitiveString) {
			t.Errorf("X = %#v", definition(t, res, "X"))
		}
		if !hasWarning(res, ir.WarnDialectMismatch) {
			t.Errorf("expected %s warning, got %v", ir.WarnDialectMismatch, res.Warnings)
		}
	})

	t.Run("nullable enum gains one null member", func(t *testing.T) {
		res := convertSource(t, "openapi: 3.0.0\ncomponents:\n  schemas:\n    E: {type: string, nullable: true, enum: [a, b, null]}\n")
		u := definition(t, res, "E").(*ir.IRUnion)
		if len(u.Members) != 3 {
			t.Errorf("members = %d, want 3", len(u.Members))
		}
	})
}

func TestConvertEnum(t *testing.T) {
	res := convertSource(t, `openapi: 3.0.0
components:
  schemas:
    Only: {type: string, enum: [only]}
    Status: {type: string, enum: [active, inactive, banned]}
    Mixed: {enum: [1, "two", true]}
    Nested: {enum: [{a: 1}]}
`)
	lit, ok := definition(t, res, "Only").(*ir.IRLiteral)
	if !ok || lit.Value != "only" {
		t.Fatalf("Only = %#v, want literal \"only\"", definition(t, res, "Only"))
	}

	u := definition(t, res, "Status").(*ir.IRUnion)
	var values []string
	for _, m := range u.Members {
		values = append(values, m.(*ir.IRLiteral).Value.(string))
	}
	if got := strings.Join(values, ","); got != "active,inactive,banned" {
		t.Errorf("enum order = %s", got)
	}
	if c := u.Constraints; c == nil || len(c.Enum) != 3 {
		t.Errorf("enum values not kept as constraints: %+v", c)
	}

	mixed := definition(t, res, "Mixed").(*ir.IRUnion)
	if v := mixed.Members[0].(*ir.IRLiteral).Value; v != int64(1) {
		t.Errorf("integer literal = %#v, want int64(1)", v)
	}

	if p, ok := definition(t, res, "Nested").(*ir.IRPrimitive); !ok || p.Name != ir.IRPrimitiveAny {
		t.Errorf("Nested = %#v, want any", definition(t, res, "Nested"))
	}
	if !hasWarning(res, ir.WarnUnsupportedLiteral) {
		t.Errorf("expected %s warning", ir.WarnUnsupportedLiteral)
	}
}

func TestConvertConst(t *testing.T) {
	res := convertSource(t, `{"openapi": "3.1.0", "components": {"schemas": {"Kind": {"const": "cat"}}}}`)
	if lit, ok := definition(t, res, "Kind").(*ir.IRLiteral); !ok || lit.Value != "cat" {
		t.Errorf("Kind = %#v", definition(t, res, "Kind"))
	}
}

func TestConvertCompositions(t *testing.T) {
	res := convertSource(t, `openapi: 3.0.0
components:
  schemas:
    Cat: {type: object, properties: {kind: {type: string}}}
    Dog: {type: object, properties: {kind: {type: string}}}
    Pet:
      oneOf:
        - $ref: '#/components/schemas/Cat'
        - $ref: '#/components/schemas/Dog'
      discriminator:
        propertyName: kind
        mapping:
          cat: '#/components/schemas/Cat'
          dog: Dog
    Loose:
      anyOf:
        - {type: string}
        - {type: number}
    Named:
      allOf:
        - $ref: '#/components/schemas/Cat'
        - {type: object, properties: {name: {type: string}}}
      properties:
        extra: {type: boolean}
    Mixed:
      oneOf:
        - $ref: '#/components/schemas/Cat'
        - {type: string}
      discriminator: {propertyName: kind}
`)
	pet := definition(t, res, "Pet").(*ir.IRUnion)
	if pet.Discriminator == nil || pet.Discriminator.PropertyName != "kind" {
		t.Fatalf("discriminator = %+v", pet.Discriminator)
	}
	if pet.Discriminator.Mapping["cat"] != "Cat" || pet.Discriminator.Mapping["dog"] != "Dog" {
		t.Errorf("mapping not normalized to names: %v", pet.Discriminator.Mapping)
	}

	if _, ok := definition(t, res, "Loose").(*ir.IRUnion); !ok {
		t.Errorf("Loose = %T, want union", definition(t, res, "Loose"))
	}
	if !hasWarning(res, ir.WarnAnyOfApproximated) {
		t.Errorf("expected %s warning", ir.WarnAnyOfApproximated)
	}

	named := definition(t, res, "Named").(*ir.IRIntersection)
	if len(named.Members) != 3 {
		t.Errorf("intersection members = %d, want 3 (two allOf members plus sibling properties)", len(named.Members))
	}

	mixed := definition(t, res, "Mixed").(*ir.IRUnion)
	if mixed.Discriminator != nil {
		t.Error("discriminator on a union with a string member should be dropped")
	}
	if !hasWarning(res, ir.WarnDiscriminatorDropped) {
		t.Errorf("expected %s warning", ir.WarnDiscriminatorDropped)
	}
}

func TestConvertMapAndAdditional(t *testing.T) {
	res := convertSource(t, `openapi: 3.0.0
components:
  schemas:
    Labels: {type: object, additionalProperties: {type: string}}
    Closed: {type: object, properties: {a: {type: string}}, additionalProperties: false}
    Open: {type: object, properties: {a: {type: string}}, additionalProperties: {type: integer}}
    Items: {type: array}
`)
	m, ok := definition(t, res, "Labels").(*ir.IRMap)
	if !ok {
		t.Fatalf("Labels = %T, want map", definition(t, res, "Labels"))
	}
	if p := m.Value.(*ir.IRPrimitive); p.Name != ir.IRPrimitiveString {
		t.Errorf("map value = %s", p.Name)
	}
	closed := definition(t, res, "Closed").(*ir.IRObject)
	if closed.Additional.Mode != ir.IRAdditionalBool || closed.Additional.Allowed {
		t.Errorf("Closed additional = %+v", closed.Additional)
	}
	open := definition(t, res, "Open").(*ir.IRObject)
	if open.Additional.Mode != ir.IRAdditionalSchema {
		t.Errorf("Open additional = %+v", open.Additional)
	}
	arr := definition(t, res, "Items").(*ir.IRArray)
	if p := arr.Items.(*ir.IRPrimitive); p.Name != ir.IRPrimitiveAny {
		t.Errorf("array without items = %s, want any", p.Name)
	}
}

func TestConvertInference(t *testing.T) {
	res := convertSource(t, `openapi: 3.0.0
components:
  schemas:
    Implicit: {properties: {a: {type: string}}}
    Anything: {description: free form}
    Negated: {not: {type: string}}
`)
	if _, ok := definition(t, res, "Implicit").(*ir.IRObject); !ok {
		t.Errorf("Implicit = %T, want object", definition(t, res, "Implicit"))
	}
	if !hasWarning(res, ir.WarnTypeInferred) || !hasWarning(res, ir.WarnNotUnsupported) {
		t.Errorf("warnings = %v", res.Warnings)
	}
	anything := definition(t, res, "Anything").(*ir.IRPrimitive)
	if anything.Name != ir.IRPrimitiveAny || anything.Metadata == nil || anything.Metadata.Description != "free form" {
		t.Errorf("Anything = %#v", anything)
	}
}

func TestConvertConstraints(t *testing.T) {
	res := convertSource(t, `{"openapi": "3.1.0", "components": {"schemas": {
  "Age": {"type": "integer", "exclusiveMinimum": 0, "maximum": 150, "format": "int32"}
}}}`)
	age := definition(t, res, "Age").(*ir.IRPrimitive)
	if age.Format != "int32" {
		t.Errorf("format = %q", age.Format)
	}
	c := age.Constraints
	if c == nil || c.Minimum == nil || *c.Minimum != 0 || !c.ExclusiveMinimum || c.Maximum == nil || *c.Maximum != 150 {
		t.Errorf("constraints = %+v", c)
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   error
		detail string
		path   string
	}{
		{
			name: "circular references",
			src: `openapi: 3.0.0
components:
  schemas:
    A: {$ref: '#/components/schemas/B'}
    B: {$ref: '#/components/schemas/A'}
`,
			want:   ir.ErrCircularTypeReference,
			detail: "A -> B -> A",
		},
		{
			name: "self allOf",
			src: `openapi: 3.0.0
components:
  schemas:
    A:
      allOf:
        - $ref: '#/components/schemas/A'
        - {type: object}
`,
			want: ir.ErrCircularTypeReference,
		},
		{
			name: "unsupported ref",
			src: `openapi: 3.0.0
components:
  schemas:
    Pet:
      type: object
      properties:
        owner: {$ref: 'people.yaml#/Owner'}
`,
			want:   ir.ErrUnsupportedReferenceFormat,
			detail: "people.yaml#/Owner",
			path:   "#/components/schemas/Pet/properties/owner",
		},
		{
			name: "unresolved ref",
			src: `openapi: 3.0.0
components:
  schemas:
    Pet:
      type: array
      items: {$ref: '#/components/schemas/Missing'}
`,
			want:   ir.ErrUnresolvedReference,
			detail: "#/components/schemas/Missing",
			path:   "#/components/schemas/Pet/items",
		},
		{
			name: "unresolved discriminator mapping",
			src: `openapi: 3.0.0
components:
  schemas:
    Cat: {type: object}
    Pet:
      oneOf: [{$ref: '#/components/schemas/Cat'}]
      discriminator: {propertyName: kind, mapping: {dog: Dog}}
`,
			want: ir.ErrUnresolvedReference,
		},
		{
			name: "unresolved discriminator mapping ref",
			src: `openapi: 3.0.0
components:
  schemas:
    Cat: {type: object}
    Pet:
      oneOf: [{$ref: '#/components/schemas/Cat'}]
      discriminator: {propertyName: kind, mapping: {dog: '#/components/schemas/Dog'}}
`,
			want:   ir.ErrUnresolvedReference,
			detail: "#/components/schemas/Dog",
			path:   "#/components/schemas/Pet/discriminator/mapping/dog",
		},
		{
			name: "unsupported discriminator mapping ref",
			src: `openapi: 3.0.0
components:
  schemas:
    Cat: {type: object}
    Pet:
      oneOf: [{$ref: '#/components/schemas/Cat'}]
      discriminator: {propertyName: kind, mapping: {cat: '#/definitions/Cat'}}
`,
			want:   ir.ErrUnsupportedReferenceFormat,
			detail: "#/definitions/Cat",
			path:   "#/components/schemas/Pet/discriminator/mapping/cat",
		},
		{
			name: "duplicate property",
			src: `openapi: 3.0.0
components:
  schemas:
    B: {type: object, properties: {x: {type: string}, x: {type: number}}}
`,
			want: ir.ErrInvalidType,
			path: "#/components/schemas/B/properties/x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, dialect := parseRegistry(t, tt.src)
			_, err := ConvertRegistry(reg, ConvertOptions{Dialect: dialect})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var e *ir.Error
			if !errors.As(err, &e) {
				t.Fatalf("err is %T, want *ir.Error", err)
			}
			if tt.detail != "" && e.Detail != tt.detail {
				t.Errorf("detail = %q, want %q", e.Detail, tt.detail)
			}
			if tt.path != "" && e.Path != tt.path {
				t.Errorf("path = %q, want %q", e.Path, tt.path)
			}
		})
	}
}

func TestConvertRecursionThroughStructure(t *testing.T) {
	res := convertSource(t, `openapi: 3.0.0
components:
  schemas:
    Node:
      type: object
      properties:
        children:
          type: array
          items: {$ref: '#/components/schemas/Node'}
        parent: {$ref: '#/components/schemas/Node'}
    Tree:
      oneOf:
        - $ref: '#/components/schemas/Node'
        - {type: string}
`)
	if len(res.Schema.Definitions) != 2 {
		t.Errorf("definitions = %v", res.Schema.Names())
	}
}

func TestConvertDuplicateNames(t *testing.T) {
	reg := openapi.Registry{
		{Name: "A", Schema: &openapi.Schema{Types: []string{"string"}}},
		{Name: "A", Schema: &openapi.Schema{Types: []string{"number"}}},
	}
	_, err := ConvertRegistry(reg, ConvertOptions{})
	if !errors.Is(err, ir.ErrDuplicateSchemaName) {
		t.Fatalf("err = %v, want ErrDuplicateSchemaName", err)
	}
}

func TestConvertDepthGuard(t *testing.T) {
	loop := &openapi.Schema{Types: []string{"array"}}
	loop.Items = loop
	reg := openapi.Registry{{Name: "Loop", Schema: loop}}
	_, err := ConvertRegistry(reg, ConvertOptions{MaxDepth: 8})
	if !errors.Is(err, ir.ErrCircularTypeReference) {
		t.Fatalf("err = %v, want ErrCircularTypeReference", err)
	}
}

func TestConvertDeterministic(t *testing.T) {
	src := `openapi: 3.0.0
components:
  schemas:
    Pet:
      type: object
      properties:
        id: {type: integer, format: int64}
        name: {type: string, nullable: true}
        tags: {type: array, items: {type: string}}
        meta: {type: object, additionalProperties: {type: number}}
      required: [id]
`
	first, err := convertSource(t, src).Schema.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	second, err := convertSource(t, src).Schema.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("conversion is not deterministic:\n%s\n%s", first, second)
	}
}
