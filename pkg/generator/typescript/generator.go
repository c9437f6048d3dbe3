package typescript

import (
	"embed"
	"fmt"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/utils"
)

//go:embed templates/*
var templatesFS embed.FS

// DefaultFileName is written when the client sets no fileName.
const DefaultFileName = "schema.ts"

// TypeScriptGenerator implements the Generator interface for TypeScript
type TypeScriptGenerator struct {
	emitter *Emitter
}

// NewTypeScriptGenerator creates a new TypeScript generator
func NewTypeScriptGenerator() *TypeScriptGenerator {
	return &TypeScriptGenerator{emitter: NewEmitter()}
}

// GetType returns the generator type identifier
func (g *TypeScriptGenerator) GetType() string {
	return "typescript"
}

// Generate writes every definition, followed by the Operations interface,
// into one TypeScript module.
func (g *TypeScriptGenerator) Generate(client config.Client, schema *ir.IRSchema, opts utils.WriteOptions) ([]utils.WriteResult, error) {
	target := client.OutputFile(DefaultFileName)
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

// Render returns the file content Generate writes.
func (g *TypeScriptGenerator) Render(client config.Client, schema *ir.IRSchema) ([]byte, error) {
	decls, err := g.emitter.Emit(schema)
	if err != nil {
		return nil, err
	}
	ops, err := g.emitter.EmitOperations(schema)
	if err != nil {
		return nil, err
	}
	out, err := utils.RenderTemplate(templatesFS, "schema.ts.gotmpl", utils.FuncMap(nil), map[string]any{
		"Title":        client.PackageName,
		"Declarations": decls,
		"Operations":   ops,
	})
	if err != nil {
		return nil, fmt.Errorf("typescript: %w", err)
	}
	return out, nil
}
