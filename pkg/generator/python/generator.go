package python

import (
	"embed"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/utils"
)

//go:embed templates/*
var templatesFS embed.FS

// DefaultFileName is written when the client sets no fileName.
const DefaultFileName = "models.py"

// PythonGenerator implements the Generator interface for Python
type PythonGenerator struct {
	emitter *Emitter
}

// NewPythonGenerator creates a new Python generator
func NewPythonGenerator() *PythonGenerator {
	return &PythonGenerator{emitter: NewEmitter()}
}

// GetType returns the generator type identifier
func (g *PythonGenerator) GetType() string {
	return "python"
}

// Generate writes every definition into one typing module.
func (g *PythonGenerator) Generate(client config.Client, schema *ir.IRSchema, opts utils.WriteOptions) ([]utils.WriteResult, error) {
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

// Render returns the module content Generate writes.
func (g *PythonGenerator) Render(client config.Client, schema *ir.IRSchema) ([]byte, error) {
	decls, imports, err := g.emitter.EmitWithImports(schema)
	if err != nil {
		return nil, err
	}
	return utils.RenderTemplate(templatesFS, "models.py.gotmpl", utils.FuncMap(nil), map[string]any{
		"Title":        client.PackageName,
		"Imports":      imports,
		"Declarations": decls,
	})
}
