package generator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/openapi"
	"github.com/blimu-dev/typegen/pkg/utils"
)

// httpMethods lists the operations of a path item in output order.
var httpMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD", "TRACE"}

func pathOperation(item *openapi3.PathItem, method string) *openapi3.Operation {
	switch method {
	case "GET":
		return item.Get
	case "POST":
		return item.Post
	case "PUT":
		return item.Put
	case "PATCH":
		return item.Patch
	case "DELETE":
		return item.Delete
	case "OPTIONS":
		return item.Options
	case "HEAD":
		return item.Head
	case "TRACE":
		return item.Trace
	}
	return nil
}

// ExtractMethods walks the path table of doc and returns one record per
// operation, sorted by path and then method, plus the warnings raised while
// converting their schemas. Schemas are converted shallowly: component refs
// become references and everything else is inlined.
func ExtractMethods(doc *openapi3.T) ([]ir.IRMethod, []ir.Warning, error) {
	if doc == nil || doc.Paths == nil {
		return nil, nil, nil
	}
	paths := make([]string, 0, doc.Paths.Len())
	for p := range doc.Paths.Map() {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var out []ir.IRMethod
	var warnings []ir.Warning
	for _, path := range paths {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		for _, method := range httpMethods {
			op := pathOperation(item, method)
			if op == nil {
				continue
			}
			w := &operationWalker{doc: doc, path: "#/paths/" + ir.EscapePointer(path) + "/" + strings.ToLower(method)}
			m, err := extractMethod(w, item, op, method, path)
			if err != nil {
				return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
			}
			out = append(out, m)
			warnings = append(warnings, w.warnings...)
		}
	}
	return out, warnings, nil
}

// operationWalker converts the schemas of one operation and collects the
// warnings raised on the way.
type operationWalker struct {
	doc      *openapi3.T
	path     string
	warnings []ir.Warning
}

func (w *operationWalker) warn(code, format string, args ...any) {
	w.warnings = append(w.warnings, ir.Warning{Code: code, Path: w.path, Message: fmt.Sprintf(format, args...)})
}

// enumToIR turns enum values into a literal or a union of literals. A value
// that cannot be a literal turns the whole enum into any.
func (w *operationWalker) enumToIR(values []any) ir.IRType {
	members := make([]ir.IRType, 0, len(values))
	for _, v := range values {
		lit, err := ir.NewLiteral(v)
		if err != nil {
			w.warn(ir.WarnUnsupportedLiteral, "enum %v; converted to any", err)
			return ir.Any()
		}
		members = append(members, lit)
	}
	if len(members) == 1 {
		return members[0]
	}
	return ir.NewUnion(members...)
}

func extractMethod(w *operationWalker, item *openapi3.PathItem, op *openapi3.Operation, method, path string) (ir.IRMethod, error) {
	params, err := w.collectParams(item, op)
	if err != nil {
		return ir.IRMethod{}, err
	}
	body, err := w.extractRequestBody(op)
	if err != nil {
		return ir.IRMethod{}, err
	}
	responses, err := w.extractResponses(op)
	if err != nil {
		return ir.IRMethod{}, err
	}
	// untagged operations are grouped under "misc"
	tags := append([]string(nil), op.Tags...)
	if len(tags) == 0 {
		tags = []string{"misc"}
	}
	return ir.IRMethod{
		Name:        methodName(op.OperationID, method, path),
		OperationID: op.OperationID,
		Method:      method,
		Path:        path,
		Tags:        tags,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
		Params:      params,
		RequestBody: body,
		Responses:   responses,
	}, nil
}

// methodName returns the operationId with any "XxxController_" prefix
// stripped, or a name derived from method and path.
func methodName(operationID, method, path string) string {
	if operationID != "" {
		if idx := strings.Index(operationID, "Controller_"); idx >= 0 {
			operationID = operationID[idx+len("Controller_"):]
		}
		return utils.ToCamelCase(operationID)
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			b.WriteString("By")
			seg = strings.Trim(seg, "{}")
		}
		b.WriteString(utils.ToPascalCase(seg))
	}
	return b.String()
}

// collectParams merges path-level and operation-level parameters (the
// operation wins on the same name and location) and groups them by location.
func (w *operationWalker) collectParams(item *openapi3.PathItem, op *openapi3.Operation) (ir.IRParams, error) {
	type key struct{ in, name string }
	merged := map[key]*openapi3.Parameter{}
	for _, list := range []openapi3.Parameters{item.Parameters, op.Parameters} {
		for _, pr := range list {
			p, err := openapi.ResolveParameter(w.doc, pr)
			if err != nil {
				return ir.IRParams{}, err
			}
			if p == nil {
				continue
			}
			merged[key{p.In, p.Name}] = p
		}
	}

	var params ir.IRParams
	for _, p := range merged {
		t, err := w.schemaRefToIR(p.Schema)
		if err != nil {
			return ir.IRParams{}, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		param := ir.IRParam{
			Name:        p.Name,
			Required:    p.Required || p.In == openapi3.ParameterInPath,
			Deprecated:  p.Deprecated,
			Description: p.Description,
			Type:        t,
		}
		switch p.In {
		case openapi3.ParameterInPath:
			params.Path = append(params.Path, param)
		case openapi3.ParameterInQuery:
			params.Query = append(params.Query, param)
		case openapi3.ParameterInHeader:
			params.Header = append(params.Header, param)
		case openapi3.ParameterInCookie:
			params.Cookie = append(params.Cookie, param)
		}
	}
	for _, group := range [][]ir.IRParam{params.Path, params.Query, params.Header, params.Cookie} {
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
	}
	return params, nil
}

// mediaPreference is the order in which content types are chosen.
var mediaPreference = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// pickMedia returns the preferred media type of content, falling back to the
// alphabetically first one.
func pickMedia(content openapi3.Content) (string, *openapi3.MediaType) {
	if len(content) == 0 {
		return "", nil
	}
	for _, ct := range mediaPreference {
		if media, ok := content[ct]; ok {
			return ct, media
		}
	}
	types := make([]string, 0, len(content))
	for ct := range content {
		types = append(types, ct)
	}
	sort.Strings(types)
	return types[0], content[types[0]]
}

func (w *operationWalker) extractRequestBody(op *openapi3.Operation) (*ir.IRRequestBody, error) {
	rb, err := openapi.ResolveRequestBody(w.doc, op.RequestBody)
	if err != nil || rb == nil {
		return nil, err
	}
	ct, media := pickMedia(rb.Content)
	if media == nil {
		return nil, nil
	}
	t, err := w.schemaRefToIR(media.Schema)
	if err != nil {
		return nil, fmt.Errorf("request body: %w", err)
	}
	return &ir.IRRequestBody{
		ContentType: ct,
		Required:    rb.Required,
		Description: rb.Description,
		Type:        t,
	}, nil
}

// extractResponses returns every declared response sorted by status code.
// A 204 or a response without content has a void type.
func (w *operationWalker) extractResponses(op *openapi3.Operation) ([]ir.IRResponse, error) {
	if op.Responses == nil {
		return nil, nil
	}
	codes := make([]string, 0, op.Responses.Len())
	for code := range op.Responses.Map() {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]ir.IRResponse, 0, len(codes))
	for _, code := range codes {
		resp, err := openapi.ResolveResponse(w.doc, op.Responses.Value(code))
		if err != nil {
			return nil, fmt.Errorf("response %s: %w", code, err)
		}
		if resp == nil {
			continue
		}
		r := ir.IRResponse{Status: code, Type: ir.Void()}
		if resp.Description != nil {
			r.Description = *resp.Description
		}
		if code != "204" {
			if ct, media := pickMedia(resp.Content); media != nil {
				t, err := w.schemaRefToIR(media.Schema)
				if err != nil {
					return nil, fmt.Errorf("response %s: %w", code, err)
				}
				r.ContentType, r.Type = ct, t
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// schemaRefToIR converts a kin-openapi schema used inside an operation.
func (w *operationWalker) schemaRefToIR(sr *openapi3.SchemaRef) (ir.IRType, error) {
	if sr == nil {
		return ir.Any(), nil
	}
	if sr.Ref != "" {
		name, err := openapi.ParseRef(sr.Ref, openapi.SectionSchemas)
		if err != nil {
			return nil, err
		}
		return ir.NewReference(name), nil
	}
	s := sr.Value
	if s == nil {
		return ir.Any(), nil
	}

	var t ir.IRType
	switch {
	case len(s.OneOf) > 0 || len(s.AnyOf) > 0:
		members, err := w.schemaRefsToIR(append(append(openapi3.SchemaRefs(nil), s.OneOf...), s.AnyOf...))
		if err != nil {
			return nil, err
		}
		t = ir.NewUnion(members...)
	case len(s.AllOf) > 0:
		members, err := w.schemaRefsToIR(s.AllOf)
		if err != nil {
			return nil, err
		}
		t = ir.NewIntersection(members...)
	case len(s.Enum) > 0:
		t = w.enumToIR(s.Enum)
	case s.Type != nil && len(s.Type.Slice()) > 0:
		types := s.Type.Slice()
		members := make([]ir.IRType, 0, len(types))
		for _, name := range types {
			m, err := w.kinTypeToIR(name, s)
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		if len(members) == 1 {
			t = members[0]
		} else {
			t = ir.NewUnion(members...)
		}
	case len(s.Properties) > 0:
		obj, err := w.kinObjectToIR(s)
		if err != nil {
			return nil, err
		}
		t = obj
	default:
		t = ir.Any()
	}
	if s.Nullable {
		t = ir.WithNull(t)
	}
	if s.Description != "" || s.Deprecated {
		ir.Annotate(t, &ir.IRMetadata{Description: s.Description, Deprecated: s.Deprecated}, nil)
	}
	return t, nil
}

func (w *operationWalker) schemaRefsToIR(refs openapi3.SchemaRefs) ([]ir.IRType, error) {
	out := make([]ir.IRType, 0, len(refs))
	for _, r := range refs {
		t, err := w.schemaRefToIR(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (w *operationWalker) kinTypeToIR(name string, s *openapi3.Schema) (ir.IRType, error) {
	switch name {
	case openapi3.TypeString:
		return ir.NewPrimitive(ir.IRPrimitiveString, s.Format), nil
	case openapi3.TypeNumber:
		return ir.NewPrimitive(ir.IRPrimitiveNumber, s.Format), nil
	case openapi3.TypeInteger:
		return ir.NewPrimitive(ir.IRPrimitiveInteger, s.Format), nil
	case openapi3.TypeBoolean:
		return ir.Boolean(), nil
	case openapi3.TypeNull:
		return ir.Null(), nil
	case openapi3.TypeArray:
		items, err := w.schemaRefToIR(s.Items)
		if err != nil {
			return nil, err
		}
		return ir.NewArray(items), nil
	case openapi3.TypeObject:
		return w.kinObjectToIR(s)
	}
	return ir.Any(), nil
}

// kinObjectToIR lists properties by name; kin-openapi does not keep document order.
func (w *operationWalker) kinObjectToIR(s *openapi3.Schema) (ir.IRType, error) {
	names := make([]string, 0, len(s.Properties))
	for n := range s.Properties {
		names = append(names, n)
	}
	sort.Strings(names)
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	props := make([]ir.IRProperty, 0, len(names))
	for _, n := range names {
		t, err := w.schemaRefToIR(s.Properties[n])
		if err != nil {
			return nil, err
		}
		props = append(props, ir.IRProperty{Name: n, Type: t, Required: required[n]})
	}

	ap := s.AdditionalProperties
	if ap.Schema != nil {
		value, err := w.schemaRefToIR(ap.Schema)
		if err != nil {
			return nil, err
		}
		if len(props) == 0 {
			return ir.NewMap(value), nil
		}
		obj := ir.NewObject(props...)
		obj.Additional = ir.AdditionalSchema(value)
		return obj, nil
	}
	obj := ir.NewObject(props...)
	if ap.Has != nil {
		obj.Additional = ir.AdditionalBool(*ap.Has)
	}
	return obj, nil
}

// collectTags returns the distinct tags of methods, sorted.
func collectTags(methods []ir.IRMethod) []string {
	uniq := map[string]struct{}{}
	for _, m := range methods {
		for _, t := range m.Tags {
			uniq[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(uniq))
	for t := range uniq {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// compileTagFilters compiles regex patterns for tag filtering
func compileTagFilters(include, exclude []string) ([]*regexp.Regexp, []*regexp.Regexp, error) {
	inc := make([]*regexp.Regexp, 0, len(include))
	for _, p := range include {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid includeTags pattern %q: %w", p, err)
		}
		inc = append(inc, r)
	}
	exc := make([]*regexp.Regexp, 0, len(exclude))
	for _, p := range exclude {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid excludeTags pattern %q: %w", p, err)
		}
		exc = append(exc, r)
	}
	return inc, exc, nil
}

// shouldIncludeOperation keeps an operation when any tag matches an include
// pattern (or there are none) and no tag matches an exclude pattern.
func shouldIncludeOperation(tags []string, include, exclude []*regexp.Regexp) bool {
	included := len(include) == 0
	for _, tag := range tags {
		if included {
			break
		}
		for _, r := range include {
			if r.MatchString(tag) {
				included = true
				break
			}
		}
	}
	if !included {
		return false
	}
	for _, tag := range tags {
		for _, r := range exclude {
			if r.MatchString(tag) {
				return false
			}
		}
	}
	return true
}

// FilterSchema returns a copy of schema restricted to the methods selected by
// the include/exclude tag patterns. When any pattern is given, definitions not
// reachable from a kept method are dropped as well.
func FilterSchema(schema *ir.IRSchema, includeTags, excludeTags []string) (*ir.IRSchema, error) {
	include, exclude, err := compileTagFilters(includeTags, excludeTags)
	if err != nil {
		return nil, err
	}
	out := &ir.IRSchema{Dialect: schema.Dialect, Definitions: schema.Definitions}
	for _, m := range schema.Methods {
		if shouldIncludeOperation(m.Tags, include, exclude) {
			out.Methods = append(out.Methods, m)
		}
	}
	if len(include) == 0 && len(exclude) == 0 {
		return out, nil
	}
	out.Definitions = filterUnusedDefinitions(schema, out.Methods)
	return out, nil
}

// filterUnusedDefinitions keeps the definitions referenced, directly or
// transitively, by methods. Registry order is preserved.
func filterUnusedDefinitions(schema *ir.IRSchema, methods []ir.IRMethod) []ir.IRTypeDefinition {
	referenced := map[string]bool{}
	var collect func(t ir.IRType)
	collect = func(t ir.IRType) {
		for _, name := range ir.ReferencedNames(t) {
			if referenced[name] {
				continue
			}
			referenced[name] = true
			if d, ok := schema.Lookup(name); ok {
				collect(d.Type)
			}
		}
	}
	for _, m := range methods {
		for _, p := range m.Params.All() {
			collect(p.Type)
		}
		if m.RequestBody != nil {
			collect(m.RequestBody.Type)
		}
		for _, r := range m.Responses {
			collect(r.Type)
		}
	}
	out := make([]ir.IRTypeDefinition, 0, len(referenced))
	for _, d := range schema.Definitions {
		if referenced[d.Name] {
			out = append(out, d)
		}
	}
	return out
}
