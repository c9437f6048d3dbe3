package openapi

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/typegen/pkg/ir"
)

// NamedSchema is one entry of components.schemas.
type NamedSchema struct {
	Name   string
	Schema *Schema
}

// Registry is the schema registry of a document in declaration order.
// Duplicate names are kept so that conversion can reject them.
type Registry []NamedSchema

// Lookup returns the first schema registered under name.
func (r Registry) Lookup(name string) (*Schema, bool) {
	for _, e := range r {
		if e.Name == name {
			return e.Schema, true
		}
	}
	return nil, false
}

// Names returns the registered names in order.
func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for _, e := range r {
		out = append(out, e.Name)
	}
	return out
}

// Document is the part of an OpenAPI document the type converter reads.
type Document struct {
	// OpenAPI is the raw `openapi` version string.
	OpenAPI string
	Dialect ir.IRDialect
	Schemas Registry
}

// ParseDocument decodes YAML or JSON document bytes.
func ParseDocument(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("failed to parse document: empty document")
	}
	top := resolveAlias(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse document: top level must be an object, got %s", kindName(top))
	}

	doc := &Document{}
	if v := mappingValue(top, "openapi"); v != nil {
		doc.OpenAPI = v.Value
		doc.Dialect = DetectDialect(v.Value)
	}

	components := mappingValue(top, "components")
	if components == nil {
		return doc, nil
	}
	schemas := mappingValue(components, "schemas")
	if schemas == nil {
		return doc, nil
	}
	if schemas.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("components.schemas must be an object, got %s", kindName(schemas))
	}
	for i := 0; i+1 < len(schemas.Content); i += 2 {
		name := schemas.Content[i].Value
		s := &Schema{}
		if err := s.UnmarshalYAML(schemas.Content[i+1]); err != nil {
			return nil, fmt.Errorf("components.schemas.%s: %w", name, err)
		}
		doc.Schemas = append(doc.Schemas, NamedSchema{Name: name, Schema: s})
	}
	return doc, nil
}

// DetectDialect maps an `openapi` version string to a dialect. Anything that is
// not a 3.x version is unknown.
func DetectDialect(version string) ir.IRDialect {
	v, err := semver.NewVersion(version)
	if err != nil || v.Major() != 3 {
		return ir.IRDialectUnknown
	}
	if v.Minor() >= 1 {
		return ir.IRDialect31
	}
	return ir.IRDialect30
}

// ParseDialect accepts a user supplied dialect hint ("3.0", "3.1.0", "").
func ParseDialect(hint string) (ir.IRDialect, error) {
	if hint == "" {
		return ir.IRDialectUnknown, nil
	}
	d := DetectDialect(hint)
	if d == ir.IRDialectUnknown {
		return d, fmt.Errorf("unsupported dialect %q (must be 3.0 or 3.1)", hint)
	}
	return d, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	n = resolveAlias(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolveAlias(n.Content[i+1])
		}
	}
	return nil
}
