package openapi

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Schema is a schema object as written in the document. Unlike the kin-openapi
// model it keeps property order, remembers which keywords were present, and
// accepts both the 3.0 and the 3.1 spelling of type, nullability and exclusive
// bounds. It does not interpret anything.
type Schema struct {
	Ref string

	// Types holds the `type` keyword; TypeList is set when it was written as a list.
	Types    []string
	TypeList bool
	Format   string

	Title       string
	Description string
	Deprecated  bool
	ReadOnly    bool
	WriteOnly   bool
	Nullable    bool

	Default    any
	HasDefault bool
	Example    any
	HasExample bool
	Examples   []any

	Const    any
	HasConst bool
	Enum     []any
	HasEnum  bool

	OneOf         []*Schema
	AnyOf         []*Schema
	AllOf         []*Schema
	Not           *Schema
	Discriminator *Discriminator

	Items                *Schema
	Properties           []Property
	Required             []string
	AdditionalProperties *AdditionalProperties

	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum Exclusive
	ExclusiveMaximum Exclusive
	MultipleOf       *float64
	MinLength        *int
	MaxLength        *int
	Pattern          string
	MinItems         *int
	MaxItems         *int
	UniqueItems      bool
	MinProperties    *int
	MaxProperties    *int

	// Line and Column locate the schema in the source document.
	Line   int
	Column int
}

// Property is one entry of `properties`, in document order.
type Property struct {
	Name   string
	Schema *Schema
}

// Discriminator is the `discriminator` object of a schema.
type Discriminator struct {
	PropertyName string            `yaml:"propertyName"`
	Mapping      map[string]string `yaml:"mapping"`
}

// AdditionalProperties is either a boolean or a schema.
type AdditionalProperties struct {
	Allowed *bool
	Schema  *Schema
}

// Exclusive holds exclusiveMinimum/exclusiveMaximum, a boolean flag in 3.0 and
// a bound of its own in 3.1.
type Exclusive struct {
	Flag  bool
	Bound *float64
}

// IsSet reports whether the keyword excludes anything.
func (e Exclusive) IsSet() bool { return e.Flag || e.Bound != nil }

// Property returns the schema of the named property.
func (s *Schema) Property(name string) (*Schema, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is listed in `required`.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// maxNesting bounds schema nesting while decoding. YAML aliases can point at
// an ancestor, which would otherwise never terminate.
const maxNesting = 256

// UnmarshalYAML decodes a schema object, or a boolean schema in 3.1 documents.
func (s *Schema) UnmarshalYAML(n *yaml.Node) error {
	return s.decode(n, 0)
}

func (s *Schema) decode(n *yaml.Node, depth int) error {
	if depth > maxNesting {
		return fmt.Errorf("line %d: schema nesting deeper than %d", n.Line, maxNesting)
	}
	n = resolveAlias(n)
	s.Line, s.Column = n.Line, n.Column
	if n.Kind == yaml.ScalarNode && n.Tag == "!!bool" {
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		if !b {
			s.Not = &Schema{Line: n.Line, Column: n.Column}
		}
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: schema must be an object, got %s", n.Line, kindName(n))
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, resolveAlias(n.Content[i+1])
		if err := s.decodeKeyword(key, val, depth); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func decodeChild(val *yaml.Node, depth int) (*Schema, error) {
	child := &Schema{}
	if err := child.decode(val, depth+1); err != nil {
		return nil, err
	}
	return child, nil
}

func decodeChildren(val *yaml.Node, depth int) ([]*Schema, error) {
	if val.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: must be an array, got %s", val.Line, kindName(val))
	}
	out := make([]*Schema, 0, len(val.Content))
	for _, item := range val.Content {
		child, err := decodeChild(item, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func (s *Schema) decodeKeyword(key string, val *yaml.Node, depth int) (err error) {
	switch key {
	case "$ref":
		return val.Decode(&s.Ref)
	case "type":
		if val.Kind == yaml.SequenceNode {
			s.TypeList = true
			return val.Decode(&s.Types)
		}
		var t string
		if err := val.Decode(&t); err != nil {
			return err
		}
		s.Types = []string{t}
	case "format":
		return val.Decode(&s.Format)
	case "title":
		return val.Decode(&s.Title)
	case "description":
		return val.Decode(&s.Description)
	case "deprecated":
		return val.Decode(&s.Deprecated)
	case "readOnly":
		return val.Decode(&s.ReadOnly)
	case "writeOnly":
		return val.Decode(&s.WriteOnly)
	case "nullable":
		return val.Decode(&s.Nullable)
	case "default":
		s.HasDefault = true
		return decodeValue(val, &s.Default)
	case "example":
		s.HasExample = true
		return decodeValue(val, &s.Example)
	case "examples":
		if val.Kind != yaml.SequenceNode {
			return nil
		}
		return val.Decode(&s.Examples)
	case "const":
		s.HasConst = true
		return decodeValue(val, &s.Const)
	case "enum":
		s.HasEnum = true
		return val.Decode(&s.Enum)
	case "oneOf":
		s.OneOf, err = decodeChildren(val, depth)
	case "anyOf":
		s.AnyOf, err = decodeChildren(val, depth)
	case "allOf":
		s.AllOf, err = decodeChildren(val, depth)
	case "not":
		s.Not, err = decodeChild(val, depth)
	case "discriminator":
		s.Discriminator = &Discriminator{}
		return val.Decode(s.Discriminator)
	case "items":
		if val.Kind == yaml.SequenceNode {
			// tuple form; only the first schema is kept
			tuple, err := decodeChildren(val, depth)
			if err != nil {
				return err
			}
			if len(tuple) > 0 {
				s.Items = tuple[0]
			}
			return nil
		}
		s.Items, err = decodeChild(val, depth)
	case "properties":
		return s.decodeProperties(val, depth)
	case "required":
		return val.Decode(&s.Required)
	case "additionalProperties":
		s.AdditionalProperties = &AdditionalProperties{}
		if val.Kind == yaml.ScalarNode && val.Tag == "!!bool" {
			var b bool
			if err := val.Decode(&b); err != nil {
				return err
			}
			s.AdditionalProperties.Allowed = &b
			return nil
		}
		s.AdditionalProperties.Schema, err = decodeChild(val, depth)
	case "minimum":
		return val.Decode(&s.Minimum)
	case "maximum":
		return val.Decode(&s.Maximum)
	case "exclusiveMinimum":
		return decodeExclusive(val, &s.ExclusiveMinimum)
	case "exclusiveMaximum":
		return decodeExclusive(val, &s.ExclusiveMaximum)
	case "multipleOf":
		return val.Decode(&s.MultipleOf)
	case "minLength":
		return val.Decode(&s.MinLength)
	case "maxLength":
		return val.Decode(&s.MaxLength)
	case "pattern":
		return val.Decode(&s.Pattern)
	case "minItems":
		return val.Decode(&s.MinItems)
	case "maxItems":
		return val.Decode(&s.MaxItems)
	case "uniqueItems":
		return val.Decode(&s.UniqueItems)
	case "minProperties":
		return val.Decode(&s.MinProperties)
	case "maxProperties":
		return val.Decode(&s.MaxProperties)
	}
	return err
}

// decodeProperties keeps document order and keeps duplicate keys so the
// converter can report them with a path.
func (s *Schema) decodeProperties(val *yaml.Node, depth int) error {
	if val.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: must be an object, got %s", val.Line, kindName(val))
	}
	s.Properties = make([]Property, 0, len(val.Content)/2)
	for i := 0; i+1 < len(val.Content); i += 2 {
		ps, err := decodeChild(val.Content[i+1], depth)
		if err != nil {
			return fmt.Errorf("%s: %w", val.Content[i].Value, err)
		}
		s.Properties = append(s.Properties, Property{Name: val.Content[i].Value, Schema: ps})
	}
	return nil
}

func decodeExclusive(val *yaml.Node, out *Exclusive) error {
	if val.Kind == yaml.ScalarNode && val.Tag == "!!bool" {
		return val.Decode(&out.Flag)
	}
	var f float64
	if err := val.Decode(&f); err != nil {
		return err
	}
	out.Bound = &f
	return nil
}

// decodeValue decodes an instance value (const, default, example). Explicit
// nulls decode to a nil interface.
func decodeValue(val *yaml.Node, out *any) error {
	if val.Kind == yaml.ScalarNode && val.Tag == "!!null" {
		*out = nil
		return nil
	}
	return val.Decode(out)
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "array"
	case yaml.ScalarNode:
		return "scalar " + n.Tag
	}
	return "node"
}
