package ir

import (
	"fmt"
	"math"
)

// NewPrimitive returns a primitive node of the given kind.
func NewPrimitive(kind IRPrimitiveKind, format string) *IRPrimitive {
	switch kind {
	case IRPrimitiveString, IRPrimitiveNumber, IRPrimitiveInteger:
	default:
		format = ""
	}
	return &IRPrimitive{Name: kind, Format: format}
}

func String() *IRPrimitive  { return NewPrimitive(IRPrimitiveString, "") }
func Number() *IRPrimitive  { return NewPrimitive(IRPrimitiveNumber, "") }
func Integer() *IRPrimitive { return NewPrimitive(IRPrimitiveInteger, "") }
func Boolean() *IRPrimitive { return NewPrimitive(IRPrimitiveBoolean, "") }
func Null() *IRPrimitive    { return NewPrimitive(IRPrimitiveNull, "") }
func Any() *IRPrimitive     { return NewPrimitive(IRPrimitiveAny, "") }
func Void() *IRPrimitive    { return NewPrimitive(IRPrimitiveVoid, "") }

// NewLiteral returns a literal node for v. Integers of any width are widened to
// int64, floats to float64, and whole floats stay floats. Non-scalar values are
// rejected.
func NewLiteral(v any) (*IRLiteral, error) {
	n, err := normalizeScalar(v)
	if err != nil {
		return nil, err
	}
	return &IRLiteral{Value: n}, nil
}

// MustLiteral is NewLiteral for values known to be scalars.
func MustLiteral(v any) *IRLiteral {
	l, err := NewLiteral(v)
	if err != nil {
		panic(err)
	}
	return l
}

func normalizeScalar(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return float64(x), nil
		}
		return int64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("literal value %v is not representable", x)
		}
		return x, nil
	default:
		return nil, fmt.Errorf("literal value of type %T is not a scalar", v)
	}
}

// NewUnion returns a union of the non-nil members, in order.
func NewUnion(members ...IRType) *IRUnion {
	return &IRUnion{Members: compact(members)}
}

// NewIntersection returns an intersection of the non-nil members, in order.
func NewIntersection(members ...IRType) *IRIntersection {
	return &IRIntersection{Members: compact(members)}
}

// NewArray returns an array of items; nil items become any.
func NewArray(items IRType) *IRArray {
	if items == nil {
		items = Any()
	}
	return &IRArray{Items: items}
}

// NewMap returns a string-keyed map of value; nil values become any.
func NewMap(value IRType) *IRMap {
	if value == nil {
		value = Any()
	}
	return &IRMap{Key: String(), Value: value}
}

// NewObject returns an object with a copy of props and no additionalProperties.
func NewObject(props ...IRProperty) *IRObject {
	cp := make([]IRProperty, len(props))
	copy(cp, props)
	return &IRObject{Properties: cp}
}

// NewReference returns a reference to the named definition.
func NewReference(name string) *IRReference {
	return &IRReference{Name: name}
}

// AdditionalBool is an additionalProperties: true|false setting.
func AdditionalBool(allowed bool) IRAdditional {
	return IRAdditional{Mode: IRAdditionalBool, Allowed: allowed}
}

// AdditionalSchema is an additionalProperties: {schema} setting.
func AdditionalSchema(t IRType) IRAdditional {
	return IRAdditional{Mode: IRAdditionalSchema, Schema: t}
}

// WithNull returns t widened to also accept null. Unions gain a null member
// unless they already have one; anything else is wrapped in a new union that
// takes over t's annotations.
func WithNull(t IRType) IRType {
	if IsNull(t) {
		return t
	}
	if u, ok := t.(*IRUnion); ok {
		for _, m := range u.Members {
			if IsNull(m) {
				return u
			}
		}
		u.Members = append(u.Members, Null())
		return u
	}
	a := *t.Annotations()
	*t.Annotations() = IRAnnotations{}
	u := NewUnion(t, Null())
	u.IRAnnotations = a
	return u
}

// IsNull reports whether t is the null primitive or the null literal.
func IsNull(t IRType) bool {
	switch n := t.(type) {
	case *IRPrimitive:
		return n.Name == IRPrimitiveNull
	case *IRLiteral:
		return n.Value == nil
	}
	return false
}

func compact(members []IRType) []IRType {
	out := make([]IRType, 0, len(members))
	for _, m := range members {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
