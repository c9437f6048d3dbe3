// Package ir defines the language-neutral type algebra that sits between an
// OpenAPI document and the emitted declarations of a target language.
//
// An IRSchema is built once per conversion and treated as read-only afterwards.
// Nodes have structural identity: two independently built nodes with the same
// shape are interchangeable. IRReference nodes are the only cross-tree links and
// they resolve by name against IRSchema.Definitions, never by pointer.
package ir

// IRTypeKind identifies the variant of an IRType node
type IRTypeKind string

const (
	IRKindPrimitive    IRTypeKind = "primitive"
	IRKindLiteral      IRTypeKind = "literal"
	IRKindUnion        IRTypeKind = "union"
	IRKindIntersection IRTypeKind = "intersection"
	IRKindArray        IRTypeKind = "array"
	IRKindMap          IRTypeKind = "map"
	IRKindObject       IRTypeKind = "object"
	IRKindReference    IRTypeKind = "reference"
)

// IRType is implemented by the closed set of node types in this package.
type IRType interface {
	Kind() IRTypeKind
	// Annotations returns the metadata and constraints attached to the node.
	Annotations() *IRAnnotations
	sealed()
}

// IRAnnotations holds the optional, additive data every node may carry.
// Neither field ever changes the kind of the node it is attached to.
type IRAnnotations struct {
	Metadata    *IRMetadata
	Constraints *IRConstraints
}

func (a *IRAnnotations) Annotations() *IRAnnotations { return a }
func (a *IRAnnotations) sealed()                     {}

// Annotate sets metadata and constraints on t and returns it.
// Nil arguments leave the existing values untouched.
func Annotate(t IRType, meta *IRMetadata, cons *IRConstraints) IRType {
	if t == nil {
		return nil
	}
	a := t.Annotations()
	if meta != nil {
		a.Metadata = meta
	}
	if cons != nil {
		a.Constraints = cons
	}
	return t
}

// IRMetadata captures documentation-level information about a node.
type IRMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty"`
	WriteOnly   bool   `json:"writeOnly,omitempty"`
	// HasDefault distinguishes an explicit `default: null` from an absent default.
	HasDefault bool  `json:"hasDefault,omitempty"`
	Default    any   `json:"default,omitempty"`
	Examples   []any `json:"examples,omitempty"`
}

// IsZero reports whether m carries no information.
func (m *IRMetadata) IsZero() bool {
	return m == nil || (m.Title == "" && m.Description == "" && !m.Deprecated && !m.ReadOnly &&
		!m.WriteOnly && !m.HasDefault && len(m.Examples) == 0)
}

// IRConstraints captures validation keywords. They are carried for emitters and
// downstream tooling; the IR itself never enforces them.
type IRConstraints struct {
	// Numeric
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum bool     `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool     `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Array
	MinItems    *int `json:"minItems,omitempty"`
	MaxItems    *int `json:"maxItems,omitempty"`
	UniqueItems bool `json:"uniqueItems,omitempty"`

	// Object
	MinProperties *int `json:"minProperties,omitempty"`
	MaxProperties *int `json:"maxProperties,omitempty"`

	// Enum holds the declared enum values in declaration order.
	Enum []any `json:"enum,omitempty"`
}

// IsZero reports whether c carries no constraint.
func (c *IRConstraints) IsZero() bool {
	return c == nil || (c.Minimum == nil && c.Maximum == nil && !c.ExclusiveMinimum && !c.ExclusiveMaximum &&
		c.MultipleOf == nil && c.MinLength == nil && c.MaxLength == nil && c.Pattern == "" &&
		c.MinItems == nil && c.MaxItems == nil && !c.UniqueItems && c.MinProperties == nil &&
		c.MaxProperties == nil && len(c.Enum) == 0)
}

// IRPrimitiveKind enumerates the built-in scalar kinds
type IRPrimitiveKind string

const (
	IRPrimitiveString  IRPrimitiveKind = "string"
	IRPrimitiveNumber  IRPrimitiveKind = "number"
	IRPrimitiveInteger IRPrimitiveKind = "integer"
	IRPrimitiveBoolean IRPrimitiveKind = "boolean"
	IRPrimitiveNull    IRPrimitiveKind = "null"
	IRPrimitiveAny     IRPrimitiveKind = "any"
	IRPrimitiveVoid    IRPrimitiveKind = "void"
)

// IRPrimitive is a built-in scalar, the top type (any) or the bottom type (void).
type IRPrimitive struct {
	IRAnnotations
	Name IRPrimitiveKind
	// Format is only meaningful for string, number and integer.
	Format string
}

func (*IRPrimitive) Kind() IRTypeKind { return IRKindPrimitive }

// IRLiteral is a type restricted to exactly one scalar value.
type IRLiteral struct {
	IRAnnotations
	// Value is one of string, bool, int64, float64 or nil (null).
	Value any
}

func (*IRLiteral) Kind() IRTypeKind { return IRKindLiteral }

// Base returns the primitive kind of the literal's value.
func (l *IRLiteral) Base() IRPrimitiveKind {
	switch l.Value.(type) {
	case nil:
		return IRPrimitiveNull
	case string:
		return IRPrimitiveString
	case bool:
		return IRPrimitiveBoolean
	case int64:
		return IRPrimitiveInteger
	default:
		return IRPrimitiveNumber
	}
}

// IRDiscriminator names the property that selects a union member at runtime.
type IRDiscriminator struct {
	PropertyName string `json:"propertyName"`
	// Mapping maps discriminator values to schema names (not $ref strings).
	Mapping map[string]string `json:"mapping,omitempty"`
}

// IRUnion is an ordered sum of member types.
type IRUnion struct {
	IRAnnotations
	Members       []IRType
	Discriminator *IRDiscriminator
}

func (*IRUnion) Kind() IRTypeKind { return IRKindUnion }

// IRIntersection is a structural merge of member types.
type IRIntersection struct {
	IRAnnotations
	Members []IRType
}

func (*IRIntersection) Kind() IRTypeKind { return IRKindIntersection }

// IRArray is a homogeneous sequence.
type IRArray struct {
	IRAnnotations
	Items IRType
}

func (*IRArray) Kind() IRTypeKind { return IRKindArray }

// IRMap is a string-keyed mapping with no fixed property set.
type IRMap struct {
	IRAnnotations
	Key   IRType
	Value IRType
}

func (*IRMap) Kind() IRTypeKind { return IRKindMap }

// IRAdditionalMode tells how additionalProperties was declared on an object.
type IRAdditionalMode int

const (
	IRAdditionalAbsent IRAdditionalMode = iota
	IRAdditionalBool
	IRAdditionalSchema
)

// IRAdditional is the additionalProperties setting of an IRObject.
type IRAdditional struct {
	Mode IRAdditionalMode
	// Allowed is meaningful when Mode is IRAdditionalBool.
	Allowed bool
	// Schema is set when Mode is IRAdditionalSchema.
	Schema IRType
}

// IRProperty is a named member of an IRObject.
type IRProperty struct {
	Name     string
	Type     IRType
	Required bool
	Metadata *IRMetadata
}

// IRObject is a record with an ordered property list.
type IRObject struct {
	IRAnnotations
	Properties []IRProperty
	Additional IRAdditional
}

func (*IRObject) Kind() IRTypeKind { return IRKindObject }

// Property returns the property with the given name.
func (o *IRObject) Property(name string) (IRProperty, bool) {
	for _, p := range o.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return IRProperty{}, false
}

// IRReference points at a named definition of the same IRSchema.
type IRReference struct {
	IRAnnotations
	Name string
}

func (*IRReference) Kind() IRTypeKind { return IRKindReference }

// IRDialect is the revision of the schema grammar a document conforms to
type IRDialect string

const (
	IRDialectUnknown IRDialect = ""
	IRDialect30      IRDialect = "3.0"
	IRDialect31      IRDialect = "3.1"
)

// IRTypeDefinition binds a schema name to its type tree.
type IRTypeDefinition struct {
	Name string
	Type IRType
}

// IRSchema is the complete result of converting one document.
type IRSchema struct {
	Definitions []IRTypeDefinition
	Dialect     IRDialect
	// Methods is filled by the operation extraction path, which does not go through the converter.
	Methods []IRMethod
}

// Lookup returns the definition with the given name.
func (s *IRSchema) Lookup(name string) (IRTypeDefinition, bool) {
	if s == nil {
		return IRTypeDefinition{}, false
	}
	for _, d := range s.Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return IRTypeDefinition{}, false
}

// Names returns the definition names in order.
func (s *IRSchema) Names() []string {
	out := make([]string, 0, len(s.Definitions))
	for _, d := range s.Definitions {
		out = append(out, d.Name)
	}
	return out
}
