package typescripttypes

import (
	"embed"
	"errors"
	"fmt"
	"text/template"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/emit"
	"github.com/blimu-dev/typegen/pkg/generator/typescript"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/utils"
)

//go:embed templates/*
var templatesFS embed.FS

// TypeScriptTypesGenerator implements the Generator interface for TypeScript type augmentation
type TypeScriptTypesGenerator struct{}

// NewTypeScriptTypesGenerator creates a new TypeScript types generator
func NewTypeScriptTypesGenerator() *TypeScriptTypesGenerator {
	return &TypeScriptTypesGenerator{}
}

// GetType returns the generator type identifier
func (g *TypeScriptTypesGenerator) GetType() string {
	return "typescript-types"
}

// Generate writes a declaration file that augments an existing module's
// namespace with the schema's definitions.
func (g *TypeScriptTypesGenerator) Generate(client config.Client, schema *ir.IRSchema, opts utils.WriteOptions) ([]utils.WriteResult, error) {
	aug, err := augmentationOptions(client)
	if err != nil {
		return nil, err
	}
	target := client.OutputFile(aug.OutputFileName)
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
func (g *TypeScriptTypesGenerator) Render(client config.Client, schema *ir.IRSchema) ([]byte, error) {
	aug, err := augmentationOptions(client)
	if err != nil {
		return nil, err
	}
	decls, err := (&typescript.Emitter{Export: true}).Emit(schema)
	if err != nil {
		return nil, err
	}
	decls, err = selectDeclarations(schema, decls, aug.TypeNames)
	if err != nil {
		return nil, err
	}

	funcMap := utils.FuncMap(template.FuncMap{
		"tsString": func(s string) string { return fmt.Sprintf("'%s'", s) },
	})
	return utils.RenderTemplate(templatesFS, "types.d.ts.gotmpl", funcMap, map[string]any{
		"Client":       client,
		"Options":      aug,
		"Declarations": decls,
	})
}

// augmentationOptions fills the defaults of the typeAugmentation block.
func augmentationOptions(client config.Client) (config.TypeAugmentationOptions, error) {
	opts := client.TypeAugmentationOptions
	if opts.ModuleName == "" {
		opts.ModuleName = client.PackageName
	}
	if opts.ModuleName == "" {
		return opts, errors.New("typescript-types: typeAugmentation.moduleName or packageName is required")
	}
	if opts.Namespace == "" {
		opts.Namespace = "Schema"
	}
	if opts.OutputFileName == "" {
		opts.OutputFileName = client.FileName
	}
	if opts.OutputFileName == "" {
		opts.OutputFileName = utils.ToSnakeCase(opts.ModuleName) + ".d.ts"
	}
	return opts, nil
}

// selectDeclarations keeps the declarations named in names plus every
// definition they reference, in schema order. Empty names keeps everything.
func selectDeclarations(schema *ir.IRSchema, decls emit.Declarations, names []string) (emit.Declarations, error) {
	if len(names) == 0 {
		return decls, nil
	}
	want := make(map[string]bool, len(names))
	queue := append([]string(nil), names...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if want[name] {
			continue
		}
		d, ok := schema.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("typescript-types: type %q is not defined", name)
		}
		want[name] = true
		queue = append(queue, ir.ReferencedNames(d.Type)...)
	}
	out := make(emit.Declarations, 0, len(want))
	for _, d := range decls {
		if want[d.Name] {
			out = append(out, d)
		}
	}
	return out, nil
}
