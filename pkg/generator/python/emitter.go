package python

import (
	"fmt"
	"strings"

	"github.com/blimu-dev/typegen/pkg/emit"
	"github.com/blimu-dev/typegen/pkg/ir"
)

// Emitter renders IR definitions as Python typing declarations.
//
// Objects become TypedDict classes, with NotRequired for optional keys and the
// functional form when a key is not a valid attribute name. An intersection
// whose members are all TypedDicts or inline objects becomes a subclass of the
// referenced members. Everything else is a TypeAlias. References are quoted so
// declaration order does not matter.
type Emitter struct{}

// NewEmitter returns a Python emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Emit renders one declaration per definition.
func (e *Emitter) Emit(s *ir.IRSchema) (emit.Declarations, error) {
	decls, _, err := e.EmitWithImports(s)
	return decls, err
}

// EmitWithImports is Emit plus the sorted names the declarations import from typing.
func (e *Emitter) EmitWithImports(s *ir.IRSchema) (emit.Declarations, []string, error) {
	if err := emit.Check(s); err != nil {
		return nil, nil, err
	}
	ids, err := emit.Identifiers(s, pyIdentifier)
	if err != nil {
		return nil, nil, err
	}
	r := &renderer{schema: s, ids: ids, imports: map[string]struct{}{}, order: make(map[string]int, len(s.Definitions))}
	for i, d := range s.Definitions {
		r.order[d.Name] = i
	}
	out := make(emit.Declarations, 0, len(s.Definitions))
	for _, d := range s.Definitions {
		out = append(out, emit.Declaration{Name: d.Name, Text: r.declaration(d)})
	}
	return out, emit.SortedKeys(r.imports), nil
}

type renderer struct {
	schema  *ir.IRSchema
	ids     map[string]string
	imports map[string]struct{}
	order   map[string]int
}

func (r *renderer) use(name string) string {
	r.imports[name] = struct{}{}
	return name
}

func (r *renderer) declaration(d ir.IRTypeDefinition) string {
	name := r.ids[d.Name]
	meta := d.Type.Annotations().Metadata

	switch t := d.Type.(type) {
	case *ir.IRObject:
		if isClassObject(t) {
			return r.class(name, meta, nil, t.Properties, additionalNote(r, t.Additional))
		}
	case *ir.IRIntersection:
		if bases, props, ok := r.classParts(t, d.Name, map[string]bool{d.Name: true}); ok {
			return r.class(name, meta, bases, props, nil)
		}
		members := make([]string, 0, len(t.Members))
		for _, m := range t.Members {
			members = append(members, r.typeExpr(m))
		}
		note := "Intersection of " + strings.Join(members, ", ") + "."
		return r.alias(name, meta, []string{note}, r.use("Any"))
	case *ir.IRUnion:
		var notes []string
		if t.Discriminator != nil {
			notes = append(notes, fmt.Sprintf("Discriminated by the %q key.", t.Discriminator.PropertyName))
		}
		return r.alias(name, meta, notes, r.typeExpr(t))
	}
	return r.alias(name, meta, nil, r.typeExpr(d.Type))
}

func (r *renderer) alias(name string, meta *ir.IRMetadata, notes []string, expr string) string {
	var b strings.Builder
	if doc := docText(meta, notes); doc != "" {
		b.WriteString(formatComment(doc, ""))
	}
	fmt.Fprintf(&b, "%s: %s = %s\n", name, r.use("TypeAlias"), expr)
	return b.String()
}

// class renders a TypedDict. The functional form is used when a key cannot
// be an attribute name; it takes no bases, so classParts never yields both.
func (r *renderer) class(name string, meta *ir.IRMetadata, bases []string, props []ir.IRProperty, notes []string) string {
	r.use("TypedDict")
	doc := docText(meta, notes)
	var b strings.Builder

	for _, p := range props {
		if !isPyName(p.Name) {
			if doc != "" {
				b.WriteString(formatComment(doc, ""))
			}
			fmt.Fprintf(&b, "%s = TypedDict(%s, {\n", name, pyString(name))
			for _, q := range props {
				fmt.Fprintf(&b, "    %s: %s,\n", pyString(q.Name), r.fieldType(q))
			}
			b.WriteString("})\n")
			return b.String()
		}
	}

	if len(bases) == 0 {
		bases = []string{"TypedDict"}
	}
	fmt.Fprintf(&b, "class %s(%s):\n", name, strings.Join(bases, ", "))
	if doc != "" {
		b.WriteString(formatDocstring(doc, "    "))
		if len(props) > 0 {
			b.WriteString("\n")
		}
	}
	for _, p := range props {
		fmt.Fprintf(&b, "    %s: %s\n", p.Name, r.fieldType(p))
		if d := propertyDoc(p); d != "" {
			b.WriteString("    " + formatPythonComment(d) + "\n")
		}
	}
	if doc == "" && len(props) == 0 {
		b.WriteString("    pass\n")
	}
	return b.String()
}

func (r *renderer) fieldType(p ir.IRProperty) string {
	t := r.typeExpr(p.Type)
	if !p.Required {
		return r.use("NotRequired") + "[" + t + "]"
	}
	return t
}

// classParts splits the intersection declared as self into TypedDict bases
// and inline properties, or reports that it cannot be a class. Bases must be
// declared before self.
func (r *renderer) classParts(n *ir.IRIntersection, self string, seen map[string]bool) ([]string, []ir.IRProperty, bool) {
	var bases []string
	var props []ir.IRProperty
	seenBase := map[string]bool{}
	seenProp := map[string]bool{}
	for _, m := range n.Members {
		switch t := m.(type) {
		case *ir.IRReference:
			if r.order[t.Name] >= r.order[self] || !r.declaresClass(t.Name, seen) {
				return nil, nil, false
			}
			if id := r.ids[t.Name]; !seenBase[id] {
				seenBase[id] = true
				bases = append(bases, id)
			}
		case *ir.IRObject:
			if !isClassObject(t) {
				return nil, nil, false
			}
			for _, p := range t.Properties {
				if !isPyName(p.Name) {
					return nil, nil, false
				}
				if !seenProp[p.Name] {
					seenProp[p.Name] = true
					props = append(props, p)
				}
			}
		default:
			return nil, nil, false
		}
	}
	return bases, props, len(n.Members) > 0
}

// declaresClass reports whether the named definition is declared as a class
// that can be subclassed.
func (r *renderer) declaresClass(name string, seen map[string]bool) bool {
	if seen[name] {
		return false
	}
	seen[name] = true
	defer delete(seen, name)
	d, ok := r.schema.Lookup(name)
	if !ok {
		return false
	}
	switch t := d.Type.(type) {
	case *ir.IRObject:
		if !isClassObject(t) {
			return false
		}
		for _, p := range t.Properties {
			if !isPyName(p.Name) {
				return false
			}
		}
		return true
	case *ir.IRIntersection:
		_, _, ok := r.classParts(t, name, seen)
		return ok
	}
	return false
}

// isClassObject reports whether o is declared as a TypedDict rather than a
// Dict alias: it has properties, or it allows no extra keys.
func isClassObject(o *ir.IRObject) bool {
	if len(o.Properties) > 0 {
		return true
	}
	switch o.Additional.Mode {
	case ir.IRAdditionalSchema:
		return false
	case ir.IRAdditionalBool:
		return !o.Additional.Allowed
	}
	return true
}

func additionalNote(r *renderer, a ir.IRAdditional) []string {
	switch a.Mode {
	case ir.IRAdditionalSchema:
		return []string{"Additional keys hold " + r.typeExpr(a.Schema) + "."}
	case ir.IRAdditionalBool:
		if a.Allowed {
			return []string{"Additional keys are allowed."}
		}
	}
	return nil
}

// typeExpr renders t as a typing expression.
func (r *renderer) typeExpr(t ir.IRType) string {
	switch n := t.(type) {
	case *ir.IRPrimitive:
		return r.primitive(n)
	case *ir.IRLiteral:
		if n.Value == nil {
			return "None"
		}
		return r.use("Literal") + "[" + pyLiteral(n.Value) + "]"
	case *ir.IRReference:
		return pyString(r.ids[n.Name])
	case *ir.IRArray:
		return r.use("List") + "[" + r.typeExpr(n.Items) + "]"
	case *ir.IRMap:
		return r.use("Dict") + "[str, " + r.typeExpr(n.Value) + "]"
	case *ir.IRObject:
		if len(n.Properties) == 0 && n.Additional.Mode == ir.IRAdditionalSchema {
			return r.use("Dict") + "[str, " + r.typeExpr(n.Additional.Schema) + "]"
		}
		return r.use("Dict") + "[str, " + r.use("Any") + "]"
	case *ir.IRUnion:
		return r.union(n)
	}
	return r.use("Any")
}

func (r *renderer) primitive(p *ir.IRPrimitive) string {
	switch p.Name {
	case ir.IRPrimitiveString:
		if p.Format == "binary" {
			return "bytes"
		}
		return "str"
	case ir.IRPrimitiveNumber:
		return "float"
	case ir.IRPrimitiveInteger:
		return "int"
	case ir.IRPrimitiveBoolean:
		return "bool"
	case ir.IRPrimitiveNull, ir.IRPrimitiveVoid:
		return "None"
	}
	return r.use("Any")
}

// union merges literal members into one Literal[...] and moves null into Optional.
func (r *renderer) union(u *ir.IRUnion) string {
	var literals, parts []string
	seen := map[string]bool{}
	hasNull := false
	for _, m := range u.Members {
		if ir.IsNull(m) {
			hasNull = true
			continue
		}
		if lit, ok := m.(*ir.IRLiteral); ok {
			literals = append(literals, pyLiteral(lit.Value))
			continue
		}
		if e := r.typeExpr(m); !seen[e] {
			seen[e] = true
			parts = append(parts, e)
		}
	}
	if len(literals) > 0 {
		parts = append([]string{r.use("Literal") + "[" + strings.Join(literals, ", ") + "]"}, parts...)
	}

	var expr string
	switch len(parts) {
	case 0:
		return "None"
	case 1:
		expr = parts[0]
	default:
		expr = r.use("Union") + "[" + strings.Join(parts, ", ") + "]"
	}
	if hasNull {
		return r.use("Optional") + "[" + expr + "]"
	}
	return expr
}

// docText joins the metadata text and extra notes into one comment body.
func docText(meta *ir.IRMetadata, notes []string) string {
	var parts []string
	if meta != nil {
		if meta.Title != "" {
			parts = append(parts, meta.Title)
		}
		if meta.Description != "" {
			parts = append(parts, meta.Description)
		}
		if meta.Deprecated {
			parts = append(parts, "Deprecated.")
		}
	}
	parts = append(parts, notes...)
	return strings.Join(parts, "\n\n")
}

func propertyDoc(p ir.IRProperty) string {
	meta := p.Metadata
	if meta == nil && p.Type != nil {
		meta = p.Type.Annotations().Metadata
	}
	return docText(meta, nil)
}
