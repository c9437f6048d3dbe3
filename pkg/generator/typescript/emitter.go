package typescript

import (
	"fmt"
	"strings"

	"github.com/blimu-dev/typegen/pkg/emit"
	"github.com/blimu-dev/typegen/pkg/ir"
)

const indentUnit = "  "

// Emitter renders IR definitions as TypeScript declarations. Object
// definitions become interfaces, everything else a type alias.
//
// An object without additionalProperties is closed by default: it gets no
// index signature, the same as additionalProperties: false. Set OpenObjects
// to give such objects the `[key: string]: unknown` signature that
// additionalProperties: true produces.
type Emitter struct {
	// Export prefixes every declaration with `export`.
	Export bool
	// OpenObjects treats absent additionalProperties like true.
	OpenObjects bool
}

// NewEmitter returns an emitter producing exported declarations.
func NewEmitter() *Emitter {
	return &Emitter{Export: true}
}

// Emit renders one declaration per definition, in definition order.
func (e *Emitter) Emit(s *ir.IRSchema) (emit.Declarations, error) {
	if err := emit.Check(s); err != nil {
		return nil, err
	}
	r, err := newRenderer(s)
	if err != nil {
		return nil, err
	}
	r.openObjects = e.OpenObjects
	out := make(emit.Declarations, 0, len(s.Definitions))
	for _, d := range s.Definitions {
		out = append(out, emit.Declaration{Name: d.Name, Text: r.declaration(d, e.Export)})
	}
	return out, nil
}

type renderer struct {
	schema      *ir.IRSchema
	ids         map[string]string
	openObjects bool
}

func newRenderer(s *ir.IRSchema) (*renderer, error) {
	ids, err := emit.Identifiers(s, tsIdentifier)
	if err != nil {
		return nil, err
	}
	return &renderer{schema: s, ids: ids}, nil
}

func (r *renderer) declaration(d ir.IRTypeDefinition, export bool) string {
	var b strings.Builder
	b.WriteString(jsDoc(d.Type.Annotations().Metadata, ""))
	if export {
		b.WriteString("export ")
	}
	name := r.ids[d.Name]
	if obj, ok := d.Type.(*ir.IRObject); ok && !needsIntersection(obj) {
		fmt.Fprintf(&b, "interface %s %s\n", name, r.objectBody(obj, ""))
		return b.String()
	}
	fmt.Fprintf(&b, "type %s = %s;\n", name, r.typeExpr(d.Type, ""))
	return b.String()
}

// needsIntersection reports whether an additionalProperties schema has to be
// split from the named properties: TS requires every property to be assignable
// to an index signature declared in the same type literal.
func needsIntersection(o *ir.IRObject) bool {
	return o.Additional.Mode == ir.IRAdditionalSchema && len(o.Properties) > 0
}

// typeExpr renders t as a type expression. indent is the indentation of the
// line the expression starts on.
func (r *renderer) typeExpr(t ir.IRType, indent string) string {
	switch n := t.(type) {
	case *ir.IRPrimitive:
		return primitiveType(n)
	case *ir.IRLiteral:
		return literalType(n.Value)
	case *ir.IRReference:
		return r.ids[n.Name]
	case *ir.IRArray:
		return "Array<" + r.typeExpr(n.Items, indent) + ">"
	case *ir.IRMap:
		return "Record<string, " + r.typeExpr(n.Value, indent) + ">"
	case *ir.IRUnion:
		parts := make([]string, 0, len(n.Members))
		for _, m := range n.Members {
			parts = append(parts, r.typeExpr(m, indent))
		}
		return strings.Join(parts, " | ")
	case *ir.IRIntersection:
		parts := make([]string, 0, len(n.Members))
		for _, m := range n.Members {
			expr := r.typeExpr(m, indent)
			if u, ok := m.(*ir.IRUnion); ok && len(u.Members) > 1 {
				expr = "(" + expr + ")"
			}
			parts = append(parts, expr)
		}
		return strings.Join(parts, " & ")
	case *ir.IRObject:
		if needsIntersection(n) {
			named := *n
			named.Additional = ir.AdditionalBool(false)
			return r.objectBody(&named, indent) + " & Record<string, " + r.typeExpr(n.Additional.Schema, indent) + ">"
		}
		return r.objectBody(n, indent)
	}
	return "unknown"
}

// objectBody renders a type literal. The closing brace sits at indent.
func (r *renderer) objectBody(o *ir.IRObject, indent string) string {
	inner := indent + indentUnit
	var lines []string
	for _, p := range o.Properties {
		var b strings.Builder
		b.WriteString(jsDoc(propertyMetadata(p), inner))
		b.WriteString(inner)
		if meta := propertyMetadata(p); meta != nil && meta.ReadOnly {
			b.WriteString("readonly ")
		}
		b.WriteString(quoteTSPropertyName(p.Name))
		if !p.Required {
			b.WriteString("?")
		}
		b.WriteString(": ")
		b.WriteString(r.typeExpr(p.Type, inner))
		b.WriteString(";")
		lines = append(lines, b.String())
	}
	switch o.Additional.Mode {
	case ir.IRAdditionalAbsent:
		if r.openObjects {
			lines = append(lines, inner+"[key: string]: unknown;")
		}
	case ir.IRAdditionalBool:
		if o.Additional.Allowed {
			lines = append(lines, inner+"[key: string]: unknown;")
		}
	case ir.IRAdditionalSchema:
		lines = append(lines, inner+"[key: string]: "+r.typeExpr(o.Additional.Schema, inner)+";")
	}
	if len(lines) == 0 {
		return "{}"
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + indent + "}"
}

// propertyMetadata prefers the metadata recorded on the property over the
// metadata of its type node.
func propertyMetadata(p ir.IRProperty) *ir.IRMetadata {
	if p.Metadata != nil {
		return p.Metadata
	}
	if p.Type != nil {
		return p.Type.Annotations().Metadata
	}
	return nil
}

func primitiveType(p *ir.IRPrimitive) string {
	switch p.Name {
	case ir.IRPrimitiveString:
		if p.Format == "binary" {
			return "Blob"
		}
		return "string"
	case ir.IRPrimitiveNumber, ir.IRPrimitiveInteger:
		return "number"
	case ir.IRPrimitiveBoolean:
		return "boolean"
	case ir.IRPrimitiveNull:
		return "null"
	case ir.IRPrimitiveVoid:
		return "void"
	}
	return "unknown"
}
