package ir

import (
	"github.com/goccy/go-json"
)

// encodedType is the tagged JSON form of an IRType.
type encodedType struct {
	Kind          IRTypeKind        `json:"kind"`
	Name          string            `json:"name,omitempty"`
	Format        string            `json:"format,omitempty"`
	Literal       json.RawMessage   `json:"literal,omitempty"`
	Members       []*encodedType    `json:"members,omitempty"`
	Discriminator *IRDiscriminator  `json:"discriminator,omitempty"`
	Items         *encodedType      `json:"items,omitempty"`
	Key           *encodedType      `json:"key,omitempty"`
	Value         *encodedType      `json:"value,omitempty"`
	Properties    []encodedProperty `json:"properties,omitempty"`
	Additional    json.RawMessage   `json:"additionalProperties,omitempty"`
	Metadata      *IRMetadata       `json:"metadata,omitempty"`
	Constraints   *IRConstraints    `json:"constraints,omitempty"`
}

type encodedProperty struct {
	Name     string       `json:"name"`
	Type     *encodedType `json:"type"`
	Required bool         `json:"required"`
	Metadata *IRMetadata  `json:"metadata,omitempty"`
}

type encodedDefinition struct {
	Name string       `json:"name"`
	Type *encodedType `json:"type"`
}

type encodedParam struct {
	Name        string       `json:"name"`
	Required    bool         `json:"required,omitempty"`
	Deprecated  bool         `json:"deprecated,omitempty"`
	Description string       `json:"description,omitempty"`
	Type        *encodedType `json:"type"`
}

type encodedBody struct {
	ContentType string       `json:"contentType"`
	Required    bool         `json:"required,omitempty"`
	Description string       `json:"description,omitempty"`
	Type        *encodedType `json:"type"`
}

type encodedResponse struct {
	Status      string       `json:"status"`
	ContentType string       `json:"contentType,omitempty"`
	Description string       `json:"description,omitempty"`
	Type        *encodedType `json:"type"`
}

type encodedMethod struct {
	Name        string            `json:"name"`
	OperationID string            `json:"operationId,omitempty"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Tags        []string          `json:"tags,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Deprecated  bool              `json:"deprecated,omitempty"`
	PathParams  []encodedParam    `json:"pathParams,omitempty"`
	QueryParams []encodedParam    `json:"queryParams,omitempty"`
	Headers     []encodedParam    `json:"headerParams,omitempty"`
	Cookies     []encodedParam    `json:"cookieParams,omitempty"`
	RequestBody *encodedBody      `json:"requestBody,omitempty"`
	Responses   []encodedResponse `json:"responses,omitempty"`
}

type encodedSchema struct {
	Dialect     IRDialect           `json:"dialect,omitempty"`
	Definitions []encodedDefinition `json:"definitions"`
	Methods     []encodedMethod     `json:"methods,omitempty"`
}

// Encode returns the tagged JSON form of t.
func Encode(t IRType) ([]byte, error) {
	e, err := encodeType(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// MarshalJSON encodes the schema with definitions in order.
func (s *IRSchema) MarshalJSON() ([]byte, error) {
	out := encodedSchema{Dialect: s.Dialect, Definitions: make([]encodedDefinition, 0, len(s.Definitions))}
	for _, d := range s.Definitions {
		e, err := encodeType(d.Type)
		if err != nil {
			return nil, err
		}
		out.Definitions = append(out.Definitions, encodedDefinition{Name: d.Name, Type: e})
	}
	for _, m := range s.Methods {
		em, err := encodeMethod(m)
		if err != nil {
			return nil, err
		}
		out.Methods = append(out.Methods, em)
	}
	return json.Marshal(out)
}

func encodeType(t IRType) (*encodedType, error) {
	if t == nil {
		return nil, nil
	}
	a := t.Annotations()
	e := &encodedType{Kind: t.Kind()}
	if !a.Metadata.IsZero() {
		e.Metadata = a.Metadata
	}
	if !a.Constraints.IsZero() {
		e.Constraints = a.Constraints
	}
	var err error
	switch n := t.(type) {
	case *IRPrimitive:
		e.Name = string(n.Name)
		e.Format = n.Format
	case *IRLiteral:
		if e.Literal, err = json.Marshal(n.Value); err != nil {
			return nil, err
		}
	case *IRUnion:
		if e.Members, err = encodeTypes(n.Members); err != nil {
			return nil, err
		}
		e.Discriminator = n.Discriminator
	case *IRIntersection:
		if e.Members, err = encodeTypes(n.Members); err != nil {
			return nil, err
		}
	case *IRArray:
		if e.Items, err = encodeType(n.Items); err != nil {
			return nil, err
		}
	case *IRMap:
		if e.Key, err = encodeType(n.Key); err != nil {
			return nil, err
		}
		if e.Value, err = encodeType(n.Value); err != nil {
			return nil, err
		}
	case *IRObject:
		for _, p := range n.Properties {
			pt, err := encodeType(p.Type)
			if err != nil {
				return nil, err
			}
			ep := encodedProperty{Name: p.Name, Type: pt, Required: p.Required}
			if !p.Metadata.IsZero() {
				ep.Metadata = p.Metadata
			}
			e.Properties = append(e.Properties, ep)
		}
		switch n.Additional.Mode {
		case IRAdditionalBool:
			if e.Additional, err = json.Marshal(n.Additional.Allowed); err != nil {
				return nil, err
			}
		case IRAdditionalSchema:
			as, err := encodeType(n.Additional.Schema)
			if err != nil {
				return nil, err
			}
			if e.Additional, err = json.Marshal(as); err != nil {
				return nil, err
			}
		}
	case *IRReference:
		e.Name = n.Name
	}
	return e, nil
}

func encodeTypes(ts []IRType) ([]*encodedType, error) {
	out := make([]*encodedType, 0, len(ts))
	for _, t := range ts {
		e, err := encodeType(t)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func encodeParams(ps []IRParam) ([]encodedParam, error) {
	var out []encodedParam
	for _, p := range ps {
		t, err := encodeType(p.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, encodedParam{Name: p.Name, Required: p.Required, Deprecated: p.Deprecated, Description: p.Description, Type: t})
	}
	return out, nil
}

func encodeMethod(m IRMethod) (encodedMethod, error) {
	em := encodedMethod{
		Name:        m.Name,
		OperationID: m.OperationID,
		Method:      m.Method,
		Path:        m.Path,
		Tags:        m.Tags,
		Summary:     m.Summary,
		Description: m.Description,
		Deprecated:  m.Deprecated,
	}
	var err error
	if em.PathParams, err = encodeParams(m.Params.Path); err != nil {
		return em, err
	}
	if em.QueryParams, err = encodeParams(m.Params.Query); err != nil {
		return em, err
	}
	if em.Headers, err = encodeParams(m.Params.Header); err != nil {
		return em, err
	}
	if em.Cookies, err = encodeParams(m.Params.Cookie); err != nil {
		return em, err
	}
	if rb := m.RequestBody; rb != nil {
		t, err := encodeType(rb.Type)
		if err != nil {
			return em, err
		}
		em.RequestBody = &encodedBody{ContentType: rb.ContentType, Required: rb.Required, Description: rb.Description, Type: t}
	}
	for _, r := range m.Responses {
		t, err := encodeType(r.Type)
		if err != nil {
			return em, err
		}
		em.Responses = append(em.Responses, encodedResponse{Status: r.Status, ContentType: r.ContentType, Description: r.Description, Type: t})
	}
	return em, nil
}
