// Package emit defines the contract between the IR and the target-language
// emitters: one declaration per definition, in definition order.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blimu-dev/typegen/pkg/ir"
)

// Emitter renders every definition of a schema as target-language source.
type Emitter interface {
	Emit(s *ir.IRSchema) (Declarations, error)
}

// Declaration is the source text declaring one definition.
type Declaration struct {
	// Name is the definition name as it appears in the schema, before sanitizing.
	Name string
	Text string
}

// Declarations keeps the order of IRSchema.Definitions.
type Declarations []Declaration

// Lookup returns the text declared for name.
func (d Declarations) Lookup(name string) (string, bool) {
	for _, decl := range d {
		if decl.Name == name {
			return decl.Text, true
		}
	}
	return "", false
}

// Names returns the declared names in order.
func (d Declarations) Names() []string {
	out := make([]string, 0, len(d))
	for _, decl := range d {
		out = append(out, decl.Name)
	}
	return out
}

// Join separates the declarations with one blank line.
func (d Declarations) Join() string {
	parts := make([]string, 0, len(d))
	for _, decl := range d {
		parts = append(parts, strings.TrimRight(decl.Text, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// Check runs before any output is produced. It rejects duplicate names, dangling
// references from definitions or operation records, and invalid IR nodes.
func Check(s *ir.IRSchema) error {
	if s == nil {
		return fmt.Errorf("%w: nil schema", ir.ErrInvalidType)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	for _, m := range s.Methods {
		for _, t := range methodTypes(m) {
			for _, ref := range ir.ReferencedNames(t) {
				if _, ok := s.Lookup(ref); !ok {
					return ir.NewError(ir.ErrUnresolvedReference, "", "", fmt.Sprintf("%s (operation %s %s)", ref, m.Method, m.Path))
				}
			}
		}
	}
	return nil
}

func methodTypes(m ir.IRMethod) []ir.IRType {
	var out []ir.IRType
	for _, p := range m.Params.All() {
		out = append(out, p.Type)
	}
	if m.RequestBody != nil {
		out = append(out, m.RequestBody.Type)
	}
	for _, r := range m.Responses {
		out = append(out, r.Type)
	}
	return out
}

// Identifiers maps definition names onto target identifiers with sanitize and
// rejects two names that land on the same identifier.
func Identifiers(s *ir.IRSchema, sanitize func(string) string) (map[string]string, error) {
	out := make(map[string]string, len(s.Definitions))
	owner := make(map[string]string, len(s.Definitions))
	for _, d := range s.Definitions {
		id := sanitize(d.Name)
		if prev, taken := owner[id]; taken {
			return nil, ir.NewError(ir.ErrDuplicateSchemaName, d.Name, ir.DefinitionPath(d.Name),
				fmt.Sprintf("%q and %q both map to %s", prev, d.Name, id))
		}
		owner[id] = d.Name
		out[d.Name] = id
	}
	return out, nil
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
