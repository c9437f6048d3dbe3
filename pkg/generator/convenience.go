package generator

import (
	"context"

	"github.com/blimu-dev/typegen/pkg/openapi"
)

// GenerateTypes is a convenience function for generating with minimal configuration
func GenerateTypes(opts GenerateTypesOptions) error {
	service := NewService()

	genOpts := GenerateOptions{
		ConfigPath:   opts.ConfigPath,
		SingleClient: opts.SingleClient,
		Check:        opts.Check,
		Fallback: FallbackOptions{
			Spec:        opts.Spec,
			Type:        opts.Type,
			OutDir:      opts.OutDir,
			FileName:    opts.FileName,
			PackageName: opts.PackageName,
			Name:        opts.Name,
			Dialect:     opts.Dialect,
			IncludeTags: opts.IncludeTags,
			ExcludeTags: opts.ExcludeTags,
		},
	}

	_, err := service.Generate(context.Background(), genOpts)
	return err
}

// GenerateTypesOptions contains options for the convenience GenerateTypes function
type GenerateTypesOptions struct {
	// ConfigPath is the path to the configuration file (optional)
	ConfigPath string

	// SingleClient generates only the named client from config (optional)
	SingleClient string

	// Check reports stale output instead of writing it
	Check bool

	// Fallback options when no config file is provided
	Spec        string   // OpenAPI spec file or URL
	Type        string   // Generator type (e.g., "typescript")
	OutDir      string   // Output directory
	FileName    string   // Output file name, defaults per generator type
	PackageName string   // Package or module name used by the go and typescript-types targets
	Name        string   // Client name used in logs
	Dialect     string   // "3.0" or "3.1" to override the document version
	IncludeTags []string // Regex patterns for tags to include
	ExcludeTags []string // Regex patterns for tags to exclude
}

// GenerateTypeScriptTypes is a convenience function specifically for TypeScript declarations
func GenerateTypeScriptTypes(spec, outDir string) error {
	return GenerateTypes(GenerateTypesOptions{
		Spec:   spec,
		Type:   "typescript",
		OutDir: outDir,
	})
}

// GenerateFromConfig is a convenience function for generating from a config file
func GenerateFromConfig(configPath string, singleClient ...string) error {
	onlyClient := ""
	if len(singleClient) > 0 {
		onlyClient = singleClient[0]
	}
	_, err := NewService().Generate(context.Background(), GenerateOptions{
		ConfigPath:   configPath,
		SingleClient: onlyClient,
	})
	return err
}

// ValidateSpec validates an OpenAPI specification
func ValidateSpec(specPath string) error {
	return openapi.ValidateDocument(specPath)
}
