package golang

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/blimu-dev/typegen/pkg/emit"
	"github.com/blimu-dev/typegen/pkg/ir"
)

// Emitter renders IR definitions as Go declarations.
//
// Go has no literal or union types. Literals widen to their primitive, and a
// definition that is a union of same-kind literals becomes a named type with
// one constant per value. A union with null becomes a pointer. Any other union
// is `any`, documented with its variants. Intersections of object-shaped
// members become structs embedding the referenced members.
type Emitter struct{}

// NewEmitter returns a Go emitter
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Emit renders one gofmt-formatted declaration per definition.
func (e *Emitter) Emit(s *ir.IRSchema) (emit.Declarations, error) {
	decls, _, err := e.emit(s)
	return decls, err
}

// EmitWithImports is Emit plus the import paths the declarations need, sorted.
func (e *Emitter) EmitWithImports(s *ir.IRSchema) (emit.Declarations, []string, error) {
	return e.emit(s)
}

func (e *Emitter) emit(s *ir.IRSchema) (emit.Declarations, []string, error) {
	if err := emit.Check(s); err != nil {
		return nil, nil, err
	}
	ids, err := emit.Identifiers(s, goTypeName)
	if err != nil {
		return nil, nil, err
	}
	r := &renderer{schema: s, ids: ids, imports: map[string]struct{}{}}
	out := make(emit.Declarations, 0, len(s.Definitions))
	for _, d := range s.Definitions {
		src := r.declaration(d)
		formatted, err := format.Source([]byte(src))
		if err != nil {
			return nil, nil, fmt.Errorf("go: format declaration %s: %w", d.Name, err)
		}
		out = append(out, emit.Declaration{Name: d.Name, Text: string(formatted)})
	}
	return out, emit.SortedKeys(r.imports), nil
}

type renderer struct {
	schema  *ir.IRSchema
	ids     map[string]string
	imports map[string]struct{}
}

func (r *renderer) declaration(d ir.IRTypeDefinition) string {
	name := r.ids[d.Name]
	meta := d.Type.Annotations().Metadata
	var b strings.Builder

	if values, base, ok := literalSet(d.Type); ok {
		b.WriteString(docComment(meta, nil, ""))
		fmt.Fprintf(&b, "type %s %s\n\n", name, primitiveGoType(base, ""))
		b.WriteString(r.constBlock(name, values))
		return b.String()
	}

	var notes []string
	if u, ok := d.Type.(*ir.IRUnion); ok {
		notes = r.unionNotes(u)
	}
	if inner, ok := nullableOf(d.Type); ok {
		d.Type = inner
		notes = append(notes, "A null value is allowed.")
	}
	b.WriteString(docComment(meta, notes, ""))

	switch t := d.Type.(type) {
	case *ir.IRObject:
		fmt.Fprintf(&b, "type %s %s\n", name, r.structType(t.Properties, nil, t.Additional))
	case *ir.IRIntersection:
		if r.structurable(t, map[string]bool{}) {
			fmt.Fprintf(&b, "type %s %s\n", name, r.intersectionStruct(t))
		} else {
			fmt.Fprintf(&b, "type %s = any\n", name)
		}
	case *ir.IRReference:
		fmt.Fprintf(&b, "type %s = %s\n", name, r.ids[t.Name])
	default:
		expr := r.goType(d.Type)
		// a defined type would drop the methods of time.Time, MarshalJSON included
		if expr == "any" || expr == "time.Time" {
			fmt.Fprintf(&b, "type %s = %s\n", name, expr)
		} else {
			fmt.Fprintf(&b, "type %s %s\n", name, expr)
		}
	}
	return b.String()
}

// constBlock declares one typed constant per literal value.
func (r *renderer) constBlock(typeName string, values []any) string {
	used := map[string]bool{}
	var b strings.Builder
	b.WriteString("const (\n")
	for i, v := range values {
		suffix := toPascalCase(fmt.Sprint(v))
		if suffix == "" || (suffix[0] >= '0' && suffix[0] <= '9') {
			suffix = fmt.Sprintf("Value%d", i)
		}
		name := typeName + suffix
		if used[name] {
			name = fmt.Sprintf("%sValue%d", typeName, i)
		}
		used[name] = true
		fmt.Fprintf(&b, "\t%s %s = %s\n", name, typeName, goLiteral(v))
	}
	b.WriteString(")\n")
	return b.String()
}

func (r *renderer) unionNotes(u *ir.IRUnion) []string {
	var variants []string
	for _, m := range u.Members {
		if ir.IsNull(m) {
			continue
		}
		variants = append(variants, r.describe(m))
	}
	if len(variants) < 2 {
		return nil
	}
	notes := []string{"One of: " + strings.Join(variants, ", ") + "."}
	if d := u.Discriminator; d != nil {
		note := fmt.Sprintf("Discriminated by the %q property", d.PropertyName)
		if len(d.Mapping) > 0 {
			pairs := make([]string, 0, len(d.Mapping))
			for _, k := range emit.SortedKeys(d.Mapping) {
				pairs = append(pairs, fmt.Sprintf("%q: %s", k, r.ids[d.Mapping[k]]))
			}
			note += " (" + strings.Join(pairs, ", ") + ")"
		}
		notes = append(notes, note+".")
	}
	return notes
}

// describe names a union variant in a comment.
func (r *renderer) describe(t ir.IRType) string {
	switch n := t.(type) {
	case *ir.IRLiteral:
		return goLiteral(n.Value)
	case *ir.IRObject:
		return "object"
	case *ir.IRIntersection:
		return "intersection"
	}
	return r.goType(t)
}

// goType renders t as a Go type expression.
func (r *renderer) goType(t ir.IRType) string {
	switch n := t.(type) {
	case *ir.IRPrimitive:
		expr := primitiveGoType(n.Name, n.Format)
		if expr == "time.Time" {
			r.imports["time"] = struct{}{}
		}
		return expr
	case *ir.IRLiteral:
		return primitiveGoType(n.Base(), "")
	case *ir.IRReference:
		return r.ids[n.Name]
	case *ir.IRArray:
		return "[]" + r.goType(n.Items)
	case *ir.IRMap:
		return "map[string]" + r.goType(n.Value)
	case *ir.IRObject:
		return r.structType(n.Properties, nil, n.Additional)
	case *ir.IRIntersection:
		if r.structurable(n, map[string]bool{}) {
			return r.intersectionStruct(n)
		}
		return "any"
	case *ir.IRUnion:
		if inner, ok := nullableOf(n); ok {
			return pointerTo(r.goType(inner))
		}
		if _, base, ok := literalSet(n); ok {
			return primitiveGoType(base, "")
		}
		return "any"
	}
	return "any"
}

func primitiveGoType(kind ir.IRPrimitiveKind, format string) string {
	switch kind {
	case ir.IRPrimitiveString:
		switch format {
		case "binary", "byte":
			return "[]byte"
		case "date-time":
			return "time.Time"
		}
		return "string"
	case ir.IRPrimitiveNumber:
		if format == "float" {
			return "float32"
		}
		return "float64"
	case ir.IRPrimitiveInteger:
		if format == "int32" {
			return "int32"
		}
		return "int64"
	case ir.IRPrimitiveBoolean:
		return "bool"
	case ir.IRPrimitiveVoid:
		return "struct{}"
	}
	return "any"
}

// pointerTo makes expr nilable. Slices, maps, pointers and any already are.
func pointerTo(expr string) string {
	if expr == "any" || strings.HasPrefix(expr, "[]") || strings.HasPrefix(expr, "map[") || strings.HasPrefix(expr, "*") {
		return expr
	}
	return "*" + expr
}

type field struct {
	name, typ, tag, doc string
}

// structType renders an anonymous struct with one field per property plus the
// given embedded types.
func (r *renderer) structType(props []ir.IRProperty, embedded []string, additional ir.IRAdditional) string {
	var fields []field
	used := map[string]bool{}
	for _, e := range embedded {
		used[e] = true
	}
	for _, p := range props {
		name := goFieldName(p.Name)
		for i := 2; used[name]; i++ {
			name = fmt.Sprintf("%s%d", goFieldName(p.Name), i)
		}
		used[name] = true

		typ := r.goType(p.Type)
		tag := p.Name
		if !p.Required {
			typ = pointerTo(typ)
			tag += ",omitempty"
		} else if r.nullable(p.Type) {
			typ = pointerTo(typ)
		}
		meta := p.Metadata
		if meta == nil && p.Type != nil {
			meta = p.Type.Annotations().Metadata
		}
		var notes []string
		if values, _, ok := literalSet(p.Type); ok {
			lits := make([]string, 0, len(values))
			for _, v := range values {
				lits = append(lits, goLiteral(v))
			}
			notes = append(notes, "One of: "+strings.Join(lits, ", ")+".")
		}
		fields = append(fields, field{name: name, typ: typ, tag: tag, doc: docComment(meta, notes, "\t")})
	}
	switch additional.Mode {
	case ir.IRAdditionalSchema:
		if len(props) > 0 {
			fields = append(fields, field{name: "AdditionalProperties", typ: "map[string]" + r.goType(additional.Schema), tag: "-",
				doc: "\t// AdditionalProperties holds the properties not listed above.\n"})
		}
	case ir.IRAdditionalBool:
		if additional.Allowed && len(props) > 0 {
			fields = append(fields, field{name: "AdditionalProperties", typ: "map[string]any", tag: "-",
				doc: "\t// AdditionalProperties holds the properties not listed above.\n"})
		}
	}

	if len(fields) == 0 && len(embedded) == 0 {
		return "struct{}"
	}
	var b strings.Builder
	b.WriteString("struct {\n")
	for _, e := range embedded {
		fmt.Fprintf(&b, "\t%s\n", e)
	}
	for _, f := range fields {
		b.WriteString(f.doc)
		fmt.Fprintf(&b, "\t%s %s `json:%q`\n", f.name, f.typ, f.tag)
	}
	b.WriteString("}")
	return b.String()
}

// intersectionStruct embeds referenced members and flattens inline objects.
func (r *renderer) intersectionStruct(n *ir.IRIntersection) string {
	var embedded []string
	var props []ir.IRProperty
	additional := ir.IRAdditional{}
	for _, m := range n.Members {
		switch t := m.(type) {
		case *ir.IRReference:
			embedded = append(embedded, r.ids[t.Name])
		case *ir.IRObject:
			props = append(props, t.Properties...)
			if t.Additional.Mode != ir.IRAdditionalAbsent {
				additional = t.Additional
			}
		case *ir.IRIntersection:
			// structurable guarantees nested members are objects or references
			for _, inner := range t.Members {
				if ref, ok := inner.(*ir.IRReference); ok {
					embedded = append(embedded, r.ids[ref.Name])
				} else if obj, ok := inner.(*ir.IRObject); ok {
					props = append(props, obj.Properties...)
				}
			}
		}
	}
	return r.structType(props, dedupe(embedded), additional)
}

// structurable reports whether an intersection can be declared as a struct:
// every member is an inline object, a nested structurable intersection one
// level deep, or a reference to a definition declared as a struct.
func (r *renderer) structurable(n *ir.IRIntersection, seen map[string]bool) bool {
	for _, m := range n.Members {
		switch t := m.(type) {
		case *ir.IRObject:
		case *ir.IRReference:
			if !r.declaresStruct(t.Name, seen) {
				return false
			}
		case *ir.IRIntersection:
			for _, inner := range t.Members {
				if _, ok := inner.(*ir.IRObject); ok {
					continue
				}
				ref, ok := inner.(*ir.IRReference)
				if !ok || !r.declaresStruct(ref.Name, seen) {
					return false
				}
			}
		default:
			return false
		}
	}
	return len(n.Members) > 0
}

// declaresStruct reports whether the named definition is declared as a struct type.
func (r *renderer) declaresStruct(name string, seen map[string]bool) bool {
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
		return true
	case *ir.IRIntersection:
		return r.structurable(t, seen)
	case *ir.IRReference:
		return r.declaresStruct(t.Name, seen)
	}
	return false
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// nullable reports whether null is a valid value of t, following references.
func (r *renderer) nullable(t ir.IRType) bool {
	return r.nullableVisit(t, map[string]bool{})
}

func (r *renderer) nullableVisit(t ir.IRType, seen map[string]bool) bool {
	switch n := t.(type) {
	case *ir.IRUnion:
		for _, m := range n.Members {
			if ir.IsNull(m) || r.nullableVisit(m, seen) {
				return true
			}
		}
	case *ir.IRReference:
		if seen[n.Name] {
			return false
		}
		seen[n.Name] = true
		if d, ok := r.schema.Lookup(n.Name); ok {
			return r.nullableVisit(d.Type, seen)
		}
	case *ir.IRPrimitive:
		return n.Name == ir.IRPrimitiveNull
	case *ir.IRLiteral:
		return n.Value == nil
	}
	return false
}

// nullableOf returns T for a union of exactly one non-null member and null.
func nullableOf(t ir.IRType) (ir.IRType, bool) {
	u, ok := t.(*ir.IRUnion)
	if !ok {
		return nil, false
	}
	var inner ir.IRType
	nulls := 0
	for _, m := range u.Members {
		if ir.IsNull(m) {
			nulls++
			continue
		}
		if inner != nil {
			return nil, false
		}
		inner = m
	}
	if nulls == 0 || inner == nil {
		return nil, false
	}
	return inner, true
}

// literalSet reports whether t is a literal, or a union of literals sharing
// one base kind (null members aside), and returns their values in order.
func literalSet(t ir.IRType) ([]any, ir.IRPrimitiveKind, bool) {
	var members []ir.IRType
	switch n := t.(type) {
	case *ir.IRLiteral:
		members = []ir.IRType{n}
	case *ir.IRUnion:
		members = n.Members
	default:
		return nil, "", false
	}
	var values []any
	var base ir.IRPrimitiveKind
	for _, m := range members {
		if ir.IsNull(m) {
			continue
		}
		lit, ok := m.(*ir.IRLiteral)
		if !ok {
			return nil, "", false
		}
		k := lit.Base()
		// integers and floats share one Go type
		if k == ir.IRPrimitiveInteger && base == ir.IRPrimitiveNumber {
			k = ir.IRPrimitiveNumber
		}
		if base == ir.IRPrimitiveInteger && k == ir.IRPrimitiveNumber {
			base = ir.IRPrimitiveNumber
		}
		if base != "" && base != k {
			return nil, "", false
		}
		base = k
		values = append(values, lit.Value)
	}
	if len(values) == 0 {
		return nil, "", false
	}
	return values, base, true
}
