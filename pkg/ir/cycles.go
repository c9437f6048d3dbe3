package ir

import "strings"

// unguardedRefs returns the definitions t expands into without passing
// through an object property, an array item or a map value.
func unguardedRefs(t IRType) []string {
	var out []string
	var walk func(IRType)
	walk = func(t IRType) {
		switch n := t.(type) {
		case *IRReference:
			out = append(out, n.Name)
		case *IRUnion:
			for _, m := range n.Members {
				walk(m)
			}
		case *IRIntersection:
			for _, m := range n.Members {
				walk(m)
			}
		}
	}
	walk(t)
	return out
}

// checkCycles rejects definitions that expand into themselves.
func (s *IRSchema) checkCycles() error {
	edges := make(map[string][]string, len(s.Definitions))
	for _, d := range s.Definitions {
		edges[d.Name] = unguardedRefs(d.Type)
	}
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(s.Definitions))
	var stack []string
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
					break
				}
			}
			chain := append(append([]string(nil), stack[start:]...), name)
			return NewError(ErrCircularTypeReference, chain[0], DefinitionPath(chain[0]), strings.Join(chain, " -> "))
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, next := range edges[name] {
			if err := visit(next); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}
	for _, d := range s.Definitions {
		if err := visit(d.Name); err != nil {
			return err
		}
	}
	return nil
}
