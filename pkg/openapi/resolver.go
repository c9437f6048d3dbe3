package openapi

import (
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/typegen/pkg/ir"
)

// Registry sections a local $ref may point into.
const (
	SectionSchemas       = "schemas"
	SectionParameters    = "parameters"
	SectionRequestBodies = "requestBodies"
	SectionResponses     = "responses"
)

// ParseRef returns the component name of a local reference into section.
// Only `#/components/<section>/<Name>` is accepted; anything else, including
// external documents and deeper pointers, is ir.ErrUnsupportedReferenceFormat.
func ParseRef(ref, section string) (string, error) {
	prefix := "#/components/" + section + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", ir.NewError(ir.ErrUnsupportedReferenceFormat, "", "", ref)
	}
	token := strings.TrimPrefix(ref, prefix)
	if token == "" || strings.Contains(token, "/") {
		return "", ir.NewError(ir.ErrUnsupportedReferenceFormat, "", "", ref)
	}
	if strings.Contains(token, "%") {
		unescaped, err := url.PathUnescape(token)
		if err != nil {
			return "", ir.NewError(ir.ErrUnsupportedReferenceFormat, "", "", ref)
		}
		token = unescaped
	}
	return unescapePointer(token), nil
}

func unescapePointer(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

// Resolve returns the registry schema a `#/components/schemas/...` ref points to.
func (r Registry) Resolve(ref string) (*Schema, string, error) {
	name, err := ParseRef(ref, SectionSchemas)
	if err != nil {
		return nil, "", err
	}
	s, ok := r.Lookup(name)
	if !ok {
		return nil, name, ir.NewError(ir.ErrUnresolvedReference, "", "", ref)
	}
	return s, name, nil
}

// ResolveParameter returns the parameter behind pr, following a local
// components.parameters reference.
func ResolveParameter(doc *openapi3.T, pr *openapi3.ParameterRef) (*openapi3.Parameter, error) {
	if pr == nil {
		return nil, nil
	}
	if pr.Ref == "" {
		return pr.Value, nil
	}
	name, err := ParseRef(pr.Ref, SectionParameters)
	if err != nil {
		return nil, err
	}
	if doc.Components == nil {
		return nil, ir.NewError(ir.ErrUnresolvedReference, "", "", pr.Ref)
	}
	target, ok := doc.Components.Parameters[name]
	if !ok || target == nil || target.Value == nil {
		return nil, ir.NewError(ir.ErrUnresolvedReference, "", "", pr.Ref)
	}
	return target.Value, nil
}

// ResolveRequestBody returns the request body behind rr, following a local
// components.requestBodies reference.
func ResolveRequestBody(doc *openapi3.T, rr *openapi3.RequestBodyRef) (*openapi3.RequestBody, error) {
	if rr == nil {
		return nil, nil
	}
	if rr.Ref == "" {
		return rr.Value, nil
	}
	name, err := ParseRef(rr.Ref, SectionRequestBodies)
	if err != nil {
		return nil, err
	}
	if doc.Components == nil {
		return nil, ir.NewError(ir.ErrUnresolvedReference, "", "", rr.Ref)
	}
	target, ok := doc.Components.RequestBodies[name]
	if !ok || target == nil || target.Value == nil {
		return nil, ir.NewError(ir.ErrUnresolvedReference, "", "", rr.Ref)
	}
	return target.Value, nil
}

// ResolveResponse returns the response behind rr, following a local
// components.responses reference.
func ResolveResponse(doc *openapi3.T, rr *openapi3.ResponseRef) (*openapi3.Response, error) {
	if rr == nil {
		return nil, nil
	}
	if rr.Ref == "" {
		return rr.Value, nil
	}
	name, err := ParseRef(rr.Ref, SectionResponses)
	if err != nil {
		return nil, err
	}
	if doc.Components == nil {
		return nil, ir.NewError(ir.ErrUnresolvedReference, "", "", rr.Ref)
	}
	target, ok := doc.Components.Responses[name]
	if !ok || target == nil || target.Value == nil {
		return nil, ir.NewError(ir.ErrUnresolvedReference, "", "", rr.Ref)
	}
	return target.Value, nil
}
