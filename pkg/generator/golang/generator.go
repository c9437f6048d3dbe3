package golang

import (
	"embed"
	"fmt"
	"go/format"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/utils"
)

//go:embed templates/*
var templatesFS embed.FS

// DefaultFileName is written when the client sets no fileName.
const DefaultFileName = "types.go"

// GoGenerator implements the Generator interface for Go
type GoGenerator struct {
	emitter *Emitter
}

// NewGoGenerator creates a new Go generator
func NewGoGenerator() *GoGenerator {
	return &GoGenerator{emitter: NewEmitter()}
}

// GetType returns the generator type identifier
func (g *GoGenerator) GetType() string {
	return "go"
}

// Generate writes every definition into one Go source file.
func (g *GoGenerator) Generate(client config.Client, schema *ir.IRSchema, opts utils.WriteOptions) ([]utils.WriteResult, error) {
	target := client.OutputFile(DefaultFileName)
	// Check if file should be excluded
	if client.ShouldExcludeFile(target) {
		return nil, nil
	}
	data, err := g.Render(client, schema)
	if err != nil {
		return nil, err
	}
	res, err := utils.WriteFile(target, data, opts)
	if err != nil {
		return nil, err
	}
	return []utils.WriteResult{res}, nil
}

// Render returns the gofmt-formatted file content Generate writes.
func (g *GoGenerator) Render(client config.Client, schema *ir.IRSchema) ([]byte, error) {
	decls, imports, err := g.emitter.EmitWithImports(schema)
	if err != nil {
		return nil, err
	}
	src, err := utils.RenderTemplate(templatesFS, "types.go.gotmpl", utils.FuncMap(nil), map[string]any{
		"Package":      sanitizePackageName(client.PackageName),
		"Imports":      imports,
		"Declarations": decls,
	})
	if err != nil {
		return nil, err
	}
	out, err := format.Source(src)
	if err != nil {
		return nil, fmt.Errorf("go: format generated file: %w", err)
	}
	return out, nil
}
