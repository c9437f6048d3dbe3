package ir

import (
	"fmt"
	"sort"
)

// Walk calls fn for t and every node below it in depth-first order. Returning
// false from fn skips the children of that node. References are not followed.
func Walk(t IRType, fn func(IRType) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch n := t.(type) {
	case *IRUnion:
		for _, m := range n.Members {
			Walk(m, fn)
		}
	case *IRIntersection:
		for _, m := range n.Members {
			Walk(m, fn)
		}
	case *IRArray:
		Walk(n.Items, fn)
	case *IRMap:
		Walk(n.Key, fn)
		Walk(n.Value, fn)
	case *IRObject:
		for _, p := range n.Properties {
			Walk(p.Type, fn)
		}
		if n.Additional.Mode == IRAdditionalSchema {
			Walk(n.Additional.Schema, fn)
		}
	}
}

// ReferencedNames returns the distinct reference targets found under t, sorted.
func ReferencedNames(t IRType) []string {
	seen := map[string]struct{}{}
	Walk(t, func(n IRType) bool {
		if r, ok := n.(*IRReference); ok {
			seen[r.Name] = struct{}{}
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Validate checks the structural invariants of a single type tree.
func Validate(t IRType) error {
	return validate(t, "#")
}

func validate(t IRType, path string) error {
	if t == nil {
		return NewError(ErrInvalidType, "", path, "nil node")
	}
	switch n := t.(type) {
	case *IRPrimitive:
		switch n.Name {
		case IRPrimitiveString, IRPrimitiveNumber, IRPrimitiveInteger, IRPrimitiveBoolean,
			IRPrimitiveNull, IRPrimitiveAny, IRPrimitiveVoid:
		default:
			return NewError(ErrInvalidType, "", path, fmt.Sprintf("unknown primitive %q", n.Name))
		}
	case *IRLiteral:
		switch n.Value.(type) {
		case nil, string, bool, int64, float64:
		default:
			return NewError(ErrInvalidType, "", path, fmt.Sprintf("literal of type %T", n.Value))
		}
	case *IRUnion:
		if len(n.Members) == 0 {
			return NewError(ErrInvalidType, "", path, "empty union")
		}
		if n.Discriminator != nil && n.Discriminator.PropertyName == "" {
			return NewError(ErrInvalidType, "", path, "discriminator without propertyName")
		}
		for i, m := range n.Members {
			if err := validate(m, fmt.Sprintf("%s/members/%d", path, i)); err != nil {
				return err
			}
		}
	case *IRIntersection:
		if len(n.Members) == 0 {
			return NewError(ErrInvalidType, "", path, "empty intersection")
		}
		for i, m := range n.Members {
			if err := validate(m, fmt.Sprintf("%s/members/%d", path, i)); err != nil {
				return err
			}
		}
	case *IRArray:
		return validate(n.Items, path+"/items")
	case *IRMap:
		k, ok := n.Key.(*IRPrimitive)
		if !ok || k.Name != IRPrimitiveString {
			return NewError(ErrInvalidType, "", path, "map key must be a string primitive")
		}
		return validate(n.Value, path+"/value")
	case *IRObject:
		seen := make(map[string]struct{}, len(n.Properties))
		for _, p := range n.Properties {
			if _, dup := seen[p.Name]; dup {
				return NewError(ErrInvalidType, "", path, fmt.Sprintf("duplicate property %q", p.Name))
			}
			seen[p.Name] = struct{}{}
			if err := validate(p.Type, path+"/properties/"+EscapePointer(p.Name)); err != nil {
				return err
			}
		}
		if n.Additional.Mode == IRAdditionalSchema {
			return validate(n.Additional.Schema, path+"/additionalProperties")
		}
	case *IRReference:
		if n.Name == "" {
			return NewError(ErrInvalidType, "", path, "reference without a name")
		}
	default:
		return NewError(ErrInvalidType, "", path, fmt.Sprintf("unknown node %T", t))
	}
	return nil
}

// Validate checks every definition, name uniqueness, reference targets, the
// placement of discriminators and that no definition expands into itself.
func (s *IRSchema) Validate() error {
	seen := make(map[string]struct{}, len(s.Definitions))
	for _, d := range s.Definitions {
		if _, dup := seen[d.Name]; dup {
			return NewError(ErrDuplicateSchemaName, d.Name, "", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	for _, d := range s.Definitions {
		if err := validate(d.Type, DefinitionPath(d.Name)); err != nil {
			if e, ok := err.(*Error); ok {
				e.Schema = d.Name
			}
			return err
		}
		for _, ref := range ReferencedNames(d.Type) {
			if _, ok := seen[ref]; !ok {
				return NewError(ErrUnresolvedReference, d.Name, DefinitionPath(d.Name), ref)
			}
		}
		var bad error
		Walk(d.Type, func(n IRType) bool {
			u, ok := n.(*IRUnion)
			if !ok || u.Discriminator == nil || bad != nil {
				return bad == nil
			}
			for _, m := range u.Members {
				if !IsNull(m) && !s.ObjectShaped(m) {
					bad = NewError(ErrInvalidType, d.Name, DefinitionPath(d.Name),
						fmt.Sprintf("discriminator %q on a union with a non-object member", u.Discriminator.PropertyName))
					return false
				}
			}
			return true
		})
		if bad != nil {
			return bad
		}
	}
	return s.checkCycles()
}

// ObjectShaped reports whether values of t are always JSON objects. References
// are followed through the definitions; a reference cycle is not object-shaped.
func (s *IRSchema) ObjectShaped(t IRType) bool {
	return s.objectShaped(t, map[string]bool{})
}

func (s *IRSchema) objectShaped(t IRType, visiting map[string]bool) bool {
	switch n := t.(type) {
	case *IRObject, *IRMap:
		return true
	case *IRIntersection:
		for _, m := range n.Members {
			if !s.objectShaped(m, visiting) {
				return false
			}
		}
		return len(n.Members) > 0
	case *IRUnion:
		for _, m := range n.Members {
			if !s.objectShaped(m, visiting) {
				return false
			}
		}
		return len(n.Members) > 0
	case *IRReference:
		if visiting[n.Name] {
			return false
		}
		d, ok := s.Lookup(n.Name)
		if !ok {
			return false
		}
		visiting[n.Name] = true
		defer delete(visiting, n.Name)
		return s.objectShaped(d.Type, visiting)
	}
	return false
}

// DefinitionPath is the JSON pointer of a schema registry entry.
func DefinitionPath(name string) string {
	return "#/components/schemas/" + EscapePointer(name)
}

// EscapePointer escapes a JSON pointer reference token.
func EscapePointer(token string) string {
	b := make([]byte, 0, len(token))
	for i := 0; i < len(token); i++ {
		switch token[i] {
		case '~':
			b = append(b, '~', '0')
		case '/':
			b = append(b, '~', '1')
		default:
			b = append(b, token[i])
		}
	}
	return string(b)
}
