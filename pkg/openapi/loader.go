package openapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"
)

// Source is one loaded OpenAPI document. The same bytes are decoded twice:
// once into the order-preserving schema registry used by the type converter,
// and once by kin-openapi for validation and the path table.
type Source struct {
	Location string
	Data     []byte
	Raw      *Document
	// Doc is nil when kin-openapi could not load the document; DocErr says why.
	Doc    *openapi3.T
	DocErr error

	loader *openapi3.Loader
}

// LoadSource reads a document from a local file path or an HTTP(S) URL.
// A document kin-openapi rejects still loads; its types can be converted but
// its operations cannot be extracted.
func LoadSource(ctx context.Context, input string) (*Source, error) {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true, Context: ctx}
	return LoadSourceWithLoader(loader, input)
}

// LoadSourceWithLoader is LoadSource with a caller supplied kin-openapi loader.
func LoadSourceWithLoader(loader *openapi3.Loader, input string) (*Source, error) {
	location, err := sourceURL(input)
	if err != nil {
		return nil, err
	}
	read := loader.ReadFromURIFunc
	if read == nil {
		read = openapi3.ReadFromURIs(openapi3.ReadFromHTTP(http.DefaultClient), openapi3.ReadFromFile)
	}
	data, err := read(loader, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", input, err)
	}
	return sourceFromData(loader, input, location, data)
}

// LoadSourceFromData loads an in-memory document.
func LoadSourceFromData(ctx context.Context, data []byte) (*Source, error) {
	loader := &openapi3.Loader{Context: ctx}
	return sourceFromData(loader, "", nil, data)
}

func sourceFromData(loader *openapi3.Loader, input string, location *url.URL, data []byte) (*Source, error) {
	raw, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	src := &Source{Location: input, Data: data, Raw: raw, loader: loader}
	if location != nil {
		src.Doc, src.DocErr = loader.LoadFromDataWithPath(data, location)
	} else {
		src.Doc, src.DocErr = loader.LoadFromData(data)
	}
	return src, nil
}

// Validate runs kin-openapi validation on the document.
func (s *Source) Validate() error {
	if s.DocErr != nil {
		return s.DocErr
	}
	ctx := s.loader.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return s.Doc.Validate(ctx)
}

func sourceURL(input string) (*url.URL, error) {
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return u, nil
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	return &url.URL{Path: filepath.ToSlash(abs)}, nil
}

// ValidateDocument validates an OpenAPI document
func ValidateDocument(input string) error {
	src, err := LoadSource(context.Background(), input)
	if err != nil {
		return err
	}
	return src.Validate()
}
