// Package typegen generates type declarations from OpenAPI specifications.
//
// Component schemas are converted into a language-neutral type algebra (see
// package ir) and rendered as TypeScript, Go or Python declarations. The
// conversion is pure: it needs document bytes and nothing else.
//
// Quick Start:
//
//	import "github.com/blimu-dev/typegen"
//
//	// Write schema.ts for a spec
//	err := typegen.GenerateTypeScriptTypes("./openapi.yaml", "./src/api")
//
//	// Or get the declarations in memory
//	decls, err := typegen.EmitTypeScript(data)
//	fmt.Println(decls.Join())
//
// For more advanced usage, see the generator package.
package typegen

import (
	"github.com/blimu-dev/typegen/pkg/emit"
	"github.com/blimu-dev/typegen/pkg/generator"
	"github.com/blimu-dev/typegen/pkg/generator/typescript"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/openapi"
)

// GenerateOptions contains options for GenerateTypes
type GenerateOptions = generator.GenerateTypesOptions

// Convert converts the component schemas of a YAML or JSON document into an
// IR schema. Warnings describe approximations such as anyOf.
//
// Example:
//
//	schema, warnings, err := typegen.Convert(data)
//	for _, w := range warnings {
//		log.Printf("%s: %s", w.Path, w.Message)
//	}
func Convert(data []byte) (*ir.IRSchema, []ir.Warning, error) {
	doc, err := openapi.ParseDocument(data)
	if err != nil {
		return nil, nil, err
	}
	res, err := generator.ConvertRegistry(doc.Schemas, generator.ConvertOptions{Dialect: doc.Dialect})
	if err != nil {
		return nil, nil, err
	}
	return res.Schema, res.Warnings, nil
}

// EmitTypeScript converts a document and renders one exported TypeScript
// declaration per component schema, in document order.
func EmitTypeScript(data []byte) (emit.Declarations, error) {
	schema, _, err := Convert(data)
	if err != nil {
		return nil, err
	}
	return typescript.NewEmitter().Emit(schema)
}

// GenerateTypes generates declarations with full configuration options.
//
// Example:
//
//	err := typegen.GenerateTypes(typegen.GenerateOptions{
//		Spec:        "./openapi.yaml",
//		Type:        "go",
//		OutDir:      "./internal/api",
//		PackageName: "api",
//		IncludeTags: []string{"users", "orders"},
//	})
func GenerateTypes(opts GenerateOptions) error {
	return generator.GenerateTypes(opts)
}

// GenerateTypeScriptTypes writes schema.ts for spec into outDir.
func GenerateTypeScriptTypes(spec, outDir string) error {
	return generator.GenerateTypeScriptTypes(spec, outDir)
}

// GenerateFromConfig generates every client of a typegen.yaml or typegen.toml
// file. Optionally, you can specify a single client name to generate only that client.
//
// Example:
//
//	err := typegen.GenerateFromConfig("./typegen.yaml", "web")
func GenerateFromConfig(configPath string, singleClient ...string) error {
	return generator.GenerateFromConfig(configPath, singleClient...)
}

// ValidateSpec validates an OpenAPI specification file.
// This is useful for checking if a spec is valid before attempting to generate.
func ValidateSpec(specPath string) error {
	return generator.ValidateSpec(specPath)
}
