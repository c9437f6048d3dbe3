package typescript

import (
	"fmt"
	"strings"

	"github.com/blimu-dev/typegen/pkg/ir"
)

// EmitOperations renders the operation records of s as one `Operations`
// interface keyed by method name. Each entry carries the HTTP method, the path
// template, the parameter groups, the request body and the success response.
// It returns an empty string when s has no operations.
func (e *Emitter) EmitOperations(s *ir.IRSchema) (string, error) {
	if len(s.Methods) == 0 {
		return "", nil
	}
	r, err := newRenderer(s)
	if err != nil {
		return "", err
	}
	r.openObjects = e.OpenObjects
	var b strings.Builder
	if e.Export {
		b.WriteString("export ")
	}
	b.WriteString("interface Operations {\n")
	used := make(map[string]bool, len(s.Methods))
	for _, m := range s.Methods {
		name := uniqueOperationName(m.Name, used)
		used[name] = true
		b.WriteString(r.operation(m, name, indentUnit))
	}
	b.WriteString("}\n")
	return b.String(), nil
}

// uniqueOperationName returns name, or name followed by the smallest suffix
// from 2 up that is not yet in used.
func uniqueOperationName(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s%d", name, n)
		if !used[candidate] {
			return candidate
		}
	}
}

func (r *renderer) operation(m ir.IRMethod, name, indent string) string {
	inner := indent + indentUnit
	var b strings.Builder
	b.WriteString(jsDoc(&ir.IRMetadata{Title: m.Summary, Description: m.Description, Deprecated: m.Deprecated}, indent))
	fmt.Fprintf(&b, "%s%s: {\n", indent, quoteTSPropertyName(name))
	fmt.Fprintf(&b, "%smethod: %s;\n", inner, stringLiteral(m.Method))
	fmt.Fprintf(&b, "%spath: %s;\n", inner, stringLiteral(m.Path))
	var groups []ir.IRProperty
	for _, g := range []struct {
		key    string
		params []ir.IRParam
	}{
		{"path", m.Params.Path},
		{"query", m.Params.Query},
		{"header", m.Params.Header},
		{"cookie", m.Params.Cookie},
	} {
		if len(g.params) == 0 {
			continue
		}
		props := make([]ir.IRProperty, 0, len(g.params))
		required := false
		for _, p := range g.params {
			required = required || p.Required
			props = append(props, ir.IRProperty{
				Name:     p.Name,
				Type:     p.Type,
				Required: p.Required,
				Metadata: &ir.IRMetadata{Description: p.Description, Deprecated: p.Deprecated},
			})
		}
		groups = append(groups, ir.IRProperty{Name: g.key, Type: ir.NewObject(props...), Required: required})
	}
	if len(groups) > 0 {
		fmt.Fprintf(&b, "%sparams: %s;\n", inner, r.objectBody(ir.NewObject(groups...), inner))
	}
	if rb := m.RequestBody; rb != nil {
		opt := "?"
		if rb.Required {
			opt = ""
		}
		fmt.Fprintf(&b, "%sbody%s: %s;\n", inner, opt, r.typeExpr(rb.Type, inner))
	}
	response := "void"
	if resp, ok := m.SuccessResponse(); ok {
		response = r.typeExpr(resp.Type, inner)
	}
	fmt.Fprintf(&b, "%sresponse: %s;\n", inner, response)
	fmt.Fprintf(&b, "%s};\n", indent)
	return b.String()
}
