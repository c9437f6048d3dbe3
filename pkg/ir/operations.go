package ir

// IRMethod is a single API operation (path + HTTP method) taken from the
// document's path table. It is extracted by a shallow walk that does not share
// the converter's rules.
type IRMethod struct {
	// Name is the operationId, or a name derived from method and path when absent.
	Name        string
	OperationID string
	Method      string
	Path        string
	Tags        []string
	Summary     string
	Description string
	Deprecated  bool
	Params      IRParams
	RequestBody *IRRequestBody
	Responses   []IRResponse
}

// IRParams groups parameters by location, each group sorted by name.
type IRParams struct {
	Path   []IRParam
	Query  []IRParam
	Header []IRParam
	Cookie []IRParam
}

// All returns every parameter, path first.
func (p IRParams) All() []IRParam {
	out := make([]IRParam, 0, len(p.Path)+len(p.Query)+len(p.Header)+len(p.Cookie))
	out = append(out, p.Path...)
	out = append(out, p.Query...)
	out = append(out, p.Header...)
	return append(out, p.Cookie...)
}

// IRParam is one operation parameter
type IRParam struct {
	Name        string
	Required    bool
	Deprecated  bool
	Description string
	Type        IRType
}

// IRRequestBody is the chosen media type of a request body
type IRRequestBody struct {
	ContentType string
	Required    bool
	Description string
	Type        IRType
}

// IRResponse is the chosen media type of one response status code.
// Type is void when the response has no content.
type IRResponse struct {
	Status      string
	ContentType string
	Description string
	Type        IRType
}

// SuccessResponse picks the response a caller receives on success: 200, then
// 201, then the first other 2xx status.
func (m IRMethod) SuccessResponse() (IRResponse, bool) {
	for _, want := range []string{"200", "201"} {
		for _, r := range m.Responses {
			if r.Status == want {
				return r, true
			}
		}
	}
	for _, r := range m.Responses {
		if len(r.Status) == 3 && r.Status[0] == '2' {
			return r, true
		}
	}
	return IRResponse{}, false
}
