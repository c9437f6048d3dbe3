package generator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/openapi"
)

// DefaultMaxDepth bounds how many schemas may nest inside one definition.
const DefaultMaxDepth = 64

// ConvertOptions configures a registry conversion.
type ConvertOptions struct {
	// Dialect selects the nullability rule. Empty means unknown and behaves like 3.0.
	Dialect ir.IRDialect
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

// ConvertResult is a converted registry plus the warnings raised on the way.
type ConvertResult struct {
	Schema   *ir.IRSchema
	Warnings []ir.Warning
}

// ConvertContext carries the registry and position of one conversion. Child
// contexts share the warning list of their parent.
type ConvertContext struct {
	Registry openapi.Registry
	Dialect  ir.IRDialect
	MaxDepth int

	schema   string
	path     string
	depth    int
	warnings *[]ir.Warning
}

// NewConvertContext returns a context positioned at the root of definition name.
func NewConvertContext(reg openapi.Registry, name string, opts ConvertOptions) *ConvertContext {
	limit := opts.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	return &ConvertContext{
		Registry: reg,
		Dialect:  opts.Dialect,
		MaxDepth: limit,
		schema:   name,
		path:     ir.DefinitionPath(name),
		warnings: &[]ir.Warning{},
	}
}

// Warnings returns the warnings collected so far.
func (c *ConvertContext) Warnings() []ir.Warning {
	return *c.warnings
}

// Path is the JSON pointer of the schema being converted.
func (c *ConvertContext) Path() string { return c.path }

func (c *ConvertContext) at(segments ...string) *ConvertContext {
	child := *c
	for _, s := range segments {
		child.path += "/" + ir.EscapePointer(s)
	}
	child.depth++
	return &child
}

func (c *ConvertContext) warn(code, format string, args ...any) {
	*c.warnings = append(*c.warnings, ir.Warning{
		Code:    code,
		Schema:  c.schema,
		Path:    c.path,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *ConvertContext) fail(err error, detail string) *ir.Error {
	return ir.NewError(err, c.schema, c.path, detail)
}

// resolve looks a schema ref up in the registry and reports a failure at the
// current location.
func (c *ConvertContext) resolve(ref string) (string, error) {
	_, name, err := c.Registry.Resolve(ref)
	if err != nil {
		var ie *ir.Error
		if errors.As(err, &ie) {
			return "", c.fail(ie.Err, ref)
		}
		return "", c.fail(err, ref)
	}
	return name, nil
}

// honorNullable reports whether the 3.0 `nullable` flag applies.
func (c *ConvertContext) honorNullable() bool {
	return c.Dialect != ir.IRDialect31
}

// ConvertRegistry converts every schema of reg into one IR schema, in registry
// order. Any failure aborts the whole conversion.
func ConvertRegistry(reg openapi.Registry, opts ConvertOptions) (*ConvertResult, error) {
	seen := make(map[string]struct{}, len(reg))
	for _, e := range reg {
		if _, dup := seen[e.Name]; dup {
			return nil, ir.NewError(ir.ErrDuplicateSchemaName, e.Name, ir.DefinitionPath(e.Name), e.Name)
		}
		seen[e.Name] = struct{}{}
	}

	out := &ir.IRSchema{Dialect: opts.Dialect, Definitions: make([]ir.IRTypeDefinition, 0, len(reg))}
	var warnings []ir.Warning
	for _, e := range reg {
		ctx := NewConvertContext(reg, e.Name, opts)
		t, err := Convert(e.Schema, ctx)
		if err != nil {
			return nil, err
		}
		out.Definitions = append(out.Definitions, ir.IRTypeDefinition{Name: e.Name, Type: t})
		warnings = append(warnings, ctx.Warnings()...)
	}

	warnings = append(warnings, dropInvalidDiscriminators(out)...)
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &ConvertResult{Schema: out, Warnings: warnings}, nil
}

// Convert turns one raw schema into an IR node. Metadata and constraints are
// read before dispatch and attached to whatever node is produced.
func Convert(s *openapi.Schema, ctx *ConvertContext) (ir.IRType, error) {
	if s == nil {
		return ir.Any(), nil
	}
	if ctx.depth > ctx.MaxDepth {
		return nil, ctx.fail(ir.ErrCircularTypeReference, fmt.Sprintf("schema nesting deeper than %d", ctx.MaxDepth))
	}
	meta := extractMetadata(s)
	cons := extractConstraints(s)

	if s.Nullable && !ctx.honorNullable() {
		ctx.warn(ir.WarnNullableIgnored, "nullable is not a 3.1 keyword; use a type list instead")
	}

	t, err := dispatch(s, ctx)
	if err != nil {
		return nil, err
	}
	return ir.Annotate(t, meta, cons), nil
}

func dispatch(s *openapi.Schema, ctx *ConvertContext) (ir.IRType, error) {
	switch {
	case s.Ref != "":
		return convertRef(s, ctx)
	case s.HasConst:
		if ctx.Dialect == ir.IRDialect30 {
			ctx.warn(ir.WarnDialectMismatch, "const is not a 3.0 keyword")
		}
		return nullable(s, ctx, convertLiteral(s.Const, ctx)), nil
	case s.HasEnum:
		return nullable(s, ctx, convertEnum(s, ctx)), nil
	case len(s.OneOf) > 0:
		return convertUnion(s, s.OneOf, "oneOf", ctx)
	case len(s.AnyOf) > 0:
		ctx.warn(ir.WarnAnyOfApproximated, "anyOf converted to a union; a value matching several members is not modeled")
		return convertUnion(s, s.AnyOf, "anyOf", ctx)
	case len(s.AllOf) > 0:
		return convertIntersection(s, ctx)
	case len(s.Types) > 0:
		return convertTyped(s, ctx)
	case s.Not != nil:
		ctx.warn(ir.WarnNotUnsupported, "not cannot be expressed as a type; converted to any")
		return nullable(s, ctx, ir.Any()), nil
	case len(s.Properties) > 0 || s.AdditionalProperties != nil:
		ctx.warn(ir.WarnTypeInferred, "schema without type converted as an object")
		t, err := convertObject(s, ctx)
		if err != nil {
			return nil, err
		}
		return nullable(s, ctx, t), nil
	case s.Items != nil:
		ctx.warn(ir.WarnTypeInferred, "schema without type converted as an array")
		t, err := convertArray(s, ctx)
		if err != nil {
			return nil, err
		}
		return nullable(s, ctx, t), nil
	}
	return nullable(s, ctx, ir.Any()), nil
}

// nullable applies the 3.0 `nullable: true` flag to t.
func nullable(s *openapi.Schema, ctx *ConvertContext, t ir.IRType) ir.IRType {
	if !s.Nullable || !ctx.honorNullable() {
		return t
	}
	return ir.WithNull(t)
}

func convertRef(s *openapi.Schema, ctx *ConvertContext) (ir.IRType, error) {
	name, err := ctx.resolve(s.Ref)
	if err != nil {
		return nil, err
	}
	if hasStructure(s) {
		ctx.warn(ir.WarnRefSiblingsIgnored, "keywords next to $ref %s are ignored", s.Ref)
	}
	return ir.NewReference(name), nil
}

// hasStructure reports whether s declares anything beyond annotations.
func hasStructure(s *openapi.Schema) bool {
	return len(s.Types) > 0 || s.HasConst || s.HasEnum || s.Nullable ||
		len(s.OneOf) > 0 || len(s.AnyOf) > 0 || len(s.AllOf) > 0 || s.Not != nil ||
		s.Items != nil || len(s.Properties) > 0 || s.AdditionalProperties != nil
}

func convertLiteral(v any, ctx *ConvertContext) ir.IRType {
	lit, err := ir.NewLiteral(v)
	if err != nil {
		ctx.warn(ir.WarnUnsupportedLiteral, "%v; converted to any", err)
		return ir.Any()
	}
	return lit
}

func convertEnum(s *openapi.Schema, ctx *ConvertContext) ir.IRType {
	if len(s.Enum) == 0 {
		ctx.warn(ir.WarnUnsupportedLiteral, "empty enum converted to any")
		return ir.Any()
	}
	members := make([]ir.IRType, 0, len(s.Enum))
	for _, v := range s.Enum {
		lit, err := ir.NewLiteral(v)
		if err != nil {
			ctx.warn(ir.WarnUnsupportedLiteral, "enum %v; converted to any", err)
			return ir.Any()
		}
		members = append(members, lit)
	}
	if len(members) == 1 {
		return members[0]
	}
	return ir.NewUnion(members...)
}

func convertMembers(list []*openapi.Schema, keyword string, ctx *ConvertContext) ([]ir.IRType, error) {
	members := make([]ir.IRType, 0, len(list))
	for i, m := range list {
		t, err := Convert(m, ctx.at(keyword, fmt.Sprint(i)))
		if err != nil {
			return nil, err
		}
		members = append(members, t)
	}
	return members, nil
}

func convertUnion(s *openapi.Schema, list []*openapi.Schema, keyword string, ctx *ConvertContext) (ir.IRType, error) {
	members, err := convertMembers(list, keyword, ctx)
	if err != nil {
		return nil, err
	}
	u := ir.NewUnion(members...)
	if s.Discriminator != nil {
		d, err := convertDiscriminator(s.Discriminator, ctx)
		if err != nil {
			return nil, err
		}
		u.Discriminator = d
	}
	var t ir.IRType = nullable(s, ctx, u)
	// properties declared next to the composition constrain every member
	if sibling, ok, err := siblingObject(s, ctx); err != nil {
		return nil, err
	} else if ok {
		t = ir.NewIntersection(t, sibling)
	}
	return t, nil
}

func convertIntersection(s *openapi.Schema, ctx *ConvertContext) (ir.IRType, error) {
	members, err := convertMembers(s.AllOf, "allOf", ctx)
	if err != nil {
		return nil, err
	}
	sibling, ok, err := siblingObject(s, ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		members = append(members, sibling)
	}
	return nullable(s, ctx, ir.NewIntersection(members...)), nil
}

// siblingObject converts properties declared next to a composition keyword.
func siblingObject(s *openapi.Schema, ctx *ConvertContext) (ir.IRType, bool, error) {
	if len(s.Properties) == 0 && s.AdditionalProperties == nil {
		return nil, false, nil
	}
	obj, err := convertObject(s, ctx)
	if err != nil {
		return nil, false, err
	}
	return obj, true, nil
}

func convertDiscriminator(d *openapi.Discriminator, ctx *ConvertContext) (*ir.IRDiscriminator, error) {
	out := &ir.IRDiscriminator{PropertyName: d.PropertyName}
	if d.PropertyName == "" {
		return nil, ctx.at("discriminator").fail(ir.ErrInvalidType, "discriminator without propertyName")
	}
	if len(d.Mapping) == 0 {
		return out, nil
	}
	values := make([]string, 0, len(d.Mapping))
	for v := range d.Mapping {
		values = append(values, v)
	}
	sort.Strings(values)
	out.Mapping = make(map[string]string, len(d.Mapping))
	for _, value := range values {
		target := d.Mapping[value]
		mctx := ctx.at("discriminator", "mapping", value)
		if strings.ContainsAny(target, "#/") {
			name, err := mctx.resolve(target)
			if err != nil {
				return nil, err
			}
			out.Mapping[value] = name
			continue
		}
		if _, ok := ctx.Registry.Lookup(target); !ok {
			return nil, mctx.fail(ir.ErrUnresolvedReference, target)
		}
		out.Mapping[value] = target
	}
	return out, nil
}

func convertTyped(s *openapi.Schema, ctx *ConvertContext) (ir.IRType, error) {
	if !s.TypeList && len(s.Types) == 1 {
		t, err := convertSingleType(s.Types[0], s, ctx)
		if err != nil {
			return nil, err
		}
		return nullable(s, ctx, t), nil
	}
	if ctx.Dialect == ir.IRDialect30 {
		ctx.warn(ir.WarnDialectMismatch, "type lists are not a 3.0 feature")
	}
	members := make([]ir.IRType, 0, len(s.Types))
	seen := make(map[string]struct{}, len(s.Types))
	for _, name := range s.Types {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		t, err := convertSingleType(name, s, ctx)
		if err != nil {
			return nil, err
		}
		members = append(members, t)
	}
	var t ir.IRType
	if len(members) == 1 {
		t = members[0]
	} else {
		t = ir.NewUnion(members...)
	}
	return nullable(s, ctx, t), nil
}

func convertSingleType(name string, s *openapi.Schema, ctx *ConvertContext) (ir.IRType, error) {
	switch name {
	case "string":
		return ir.NewPrimitive(ir.IRPrimitiveString, s.Format), nil
	case "number":
		return ir.NewPrimitive(ir.IRPrimitiveNumber, s.Format), nil
	case "integer":
		return ir.NewPrimitive(ir.IRPrimitiveInteger, s.Format), nil
	case "boolean":
		return ir.Boolean(), nil
	case "null":
		return ir.Null(), nil
	case "array":
		return convertArray(s, ctx)
	case "object":
		return convertObject(s, ctx)
	}
	ctx.warn(ir.WarnTypeInferred, "unknown type %q converted to any", name)
	return ir.Any(), nil
}

func convertArray(s *openapi.Schema, ctx *ConvertContext) (ir.IRType, error) {
	if s.Items == nil {
		return ir.NewArray(ir.Any()), nil
	}
	items, err := Convert(s.Items, ctx.at("items"))
	if err != nil {
		return nil, err
	}
	return ir.NewArray(items), nil
}

func convertObject(s *openapi.Schema, ctx *ConvertContext) (ir.IRType, error) {
	props := make([]ir.IRProperty, 0, len(s.Properties))
	seen := make(map[string]struct{}, len(s.Properties))
	for _, p := range s.Properties {
		pctx := ctx.at("properties", p.Name)
		if _, dup := seen[p.Name]; dup {
			return nil, pctx.fail(ir.ErrInvalidType, fmt.Sprintf("duplicate property %q", p.Name))
		}
		seen[p.Name] = struct{}{}
		t, err := Convert(p.Schema, pctx)
		if err != nil {
			return nil, err
		}
		var meta *ir.IRMetadata
		if p.Schema != nil {
			meta = extractMetadata(p.Schema)
		}
		props = append(props, ir.IRProperty{
			Name:     p.Name,
			Type:     t,
			Required: s.IsRequired(p.Name),
			Metadata: meta,
		})
	}

	var additional ir.IRAdditional
	if ap := s.AdditionalProperties; ap != nil {
		switch {
		case ap.Schema != nil:
			t, err := Convert(ap.Schema, ctx.at("additionalProperties"))
			if err != nil {
				return nil, err
			}
			if len(props) == 0 {
				return ir.NewMap(t), nil
			}
			additional = ir.AdditionalSchema(t)
		case ap.Allowed != nil:
			additional = ir.AdditionalBool(*ap.Allowed)
		}
	}

	obj := ir.NewObject(props...)
	obj.Additional = additional
	return obj, nil
}

func extractMetadata(s *openapi.Schema) *ir.IRMetadata {
	m := &ir.IRMetadata{
		Title:       s.Title,
		Description: s.Description,
		Deprecated:  s.Deprecated,
		ReadOnly:    s.ReadOnly,
		WriteOnly:   s.WriteOnly,
		HasDefault:  s.HasDefault,
		Default:     s.Default,
	}
	if s.HasExample {
		m.Examples = append(m.Examples, s.Example)
	}
	m.Examples = append(m.Examples, s.Examples...)
	if m.IsZero() {
		return nil
	}
	return m
}

func extractConstraints(s *openapi.Schema) *ir.IRConstraints {
	c := &ir.IRConstraints{
		Minimum:          s.Minimum,
		Maximum:          s.Maximum,
		ExclusiveMinimum: s.ExclusiveMinimum.Flag,
		ExclusiveMaximum: s.ExclusiveMaximum.Flag,
		MultipleOf:       s.MultipleOf,
		MinLength:        s.MinLength,
		MaxLength:        s.MaxLength,
		Pattern:          s.Pattern,
		MinItems:         s.MinItems,
		MaxItems:         s.MaxItems,
		UniqueItems:      s.UniqueItems,
		MinProperties:    s.MinProperties,
		MaxProperties:    s.MaxProperties,
	}
	// 3.1 exclusive bounds carry their own value
	if b := s.ExclusiveMinimum.Bound; b != nil {
		v := *b
		c.Minimum, c.ExclusiveMinimum = &v, true
	}
	if b := s.ExclusiveMaximum.Bound; b != nil {
		v := *b
		c.Maximum, c.ExclusiveMaximum = &v, true
	}
	if s.HasEnum {
		c.Enum = append([]any(nil), s.Enum...)
	}
	if c.IsZero() {
		return nil
	}
	return c
}

// dropInvalidDiscriminators removes discriminators from unions that have a
// member whose values are not always objects.
func dropInvalidDiscriminators(s *ir.IRSchema) []ir.Warning {
	var warnings []ir.Warning
	for _, d := range s.Definitions {
		ir.Walk(d.Type, func(n ir.IRType) bool {
			u, ok := n.(*ir.IRUnion)
			if !ok || u.Discriminator == nil {
				return true
			}
			for _, m := range u.Members {
				if ir.IsNull(m) || s.ObjectShaped(m) {
					continue
				}
				warnings = append(warnings, ir.Warning{
					Code:    ir.WarnDiscriminatorDropped,
					Schema:  d.Name,
					Path:    ir.DefinitionPath(d.Name),
					Message: fmt.Sprintf("discriminator %q dropped: union has a member that is not an object", u.Discriminator.PropertyName),
				})
				u.Discriminator = nil
				break
			}
			return true
		})
	}
	return warnings
}
