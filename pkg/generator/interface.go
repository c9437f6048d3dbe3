package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/docker/go-units"
	"golang.org/x/sync/errgroup"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/emit"
	"github.com/blimu-dev/typegen/pkg/generator/golang"
	"github.com/blimu-dev/typegen/pkg/generator/irdump"
	"github.com/blimu-dev/typegen/pkg/generator/python"
	"github.com/blimu-dev/typegen/pkg/generator/typescript"
	typescripttypes "github.com/blimu-dev/typegen/pkg/generator/typescript-types"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/openapi"
	"github.com/blimu-dev/typegen/pkg/utils"
)

// Generator defines the interface for output targets
type Generator interface {
	// Generate renders the schema for one configured client and writes its files
	Generate(client config.Client, schema *ir.IRSchema, opts utils.WriteOptions) ([]utils.WriteResult, error)
	// GetType returns the type identifier for this generator (e.g., "typescript")
	GetType() string
}

// Registry manages available generators
type Registry struct {
	generators map[string]Generator
}

// NewRegistry creates a new generator registry
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

// Register adds a generator to the registry
func (r *Registry) Register(gen Generator) {
	r.generators[gen.GetType()] = gen
}

// Get retrieves a generator by type
func (r *Registry) Get(genType string) (Generator, bool) {
	gen, exists := r.generators[genType]
	return gen, exists
}

// GetAvailableTypes returns all registered generator types, sorted
func (r *Registry) GetAvailableTypes() []string {
	types := make([]string, 0, len(r.generators))
	for t := range r.generators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// GenerateOptions contains options for type generation
type GenerateOptions struct {
	ConfigPath   string
	SingleClient string
	// Check compares the rendered output with the files on disk instead of
	// writing. Pre and post commands are skipped.
	Check bool
	// Parallelism bounds how many clients render at once. Zero means one per CPU.
	Parallelism int
	Fallback    FallbackOptions
}

// FallbackOptions contains fallback options when no config file is provided
type FallbackOptions struct {
	Spec        string
	Type        string
	OutDir      string
	FileName    string
	PackageName string
	Name        string
	Dialect     string
	IncludeTags []string
	ExcludeTags []string
}

// Service provides high-level generation functionality
type Service struct {
	registry *Registry
	logger   *slog.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithLogger sets the logger used for progress and conversion warnings.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a new generator service with default generators
func NewService(opts ...ServiceOption) *Service {
	registry := NewRegistry()
	registry.Register(typescript.NewTypeScriptGenerator())
	registry.Register(typescripttypes.NewTypeScriptTypesGenerator())
	registry.Register(golang.NewGoGenerator())
	registry.Register(python.NewPythonGenerator())
	registry.Register(irdump.NewIRGenerator())
	return NewServiceWithRegistry(registry, opts...)
}

// NewServiceWithRegistry creates a new generator service with a custom registry
func NewServiceWithRegistry(registry *Registry, opts ...ServiceOption) *Service {
	s := &Service{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRegistry returns the generator registry
func (s *Service) GetRegistry() *Registry {
	return s.registry
}

// Generate generates output based on the provided options
func (s *Service) Generate(ctx context.Context, opts GenerateOptions) ([]utils.WriteResult, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}
	return s.GenerateFromConfig(ctx, cfg, opts)
}

func resolveConfig(opts GenerateOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	fb := opts.Fallback
	if fb.Spec == "" || fb.Type == "" || fb.OutDir == "" {
		return nil, errors.New("either config path or the fallback spec, type and out directory must be provided")
	}
	name := fb.Name
	if name == "" {
		name = fb.Type
	}
	cfg := &config.Config{
		Spec:    fb.Spec,
		Dialect: fb.Dialect,
		Clients: []config.Client{
			{
				Type:        fb.Type,
				OutDir:      fb.OutDir,
				FileName:    fb.FileName,
				PackageName: fb.PackageName,
				Name:        name,
				IncludeTags: fb.IncludeTags,
				ExcludeTags: fb.ExcludeTags,
			},
		},
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BuildSchema loads a document and converts it into an IR schema with its
// operation records. dialect overrides the document's own version when set.
func (s *Service) BuildSchema(ctx context.Context, spec, dialect string) (*ConvertResult, error) {
	src, err := openapi.LoadSource(ctx, spec)
	if err != nil {
		return nil, err
	}
	return s.BuildSchemaFromSource(src, dialect)
}

// BuildSchemaFromSource is BuildSchema for an already loaded document.
func (s *Service) BuildSchemaFromSource(src *openapi.Source, dialect string) (*ConvertResult, error) {
	opts := ConvertOptions{Dialect: src.Raw.Dialect}
	if dialect != "" {
		d, err := openapi.ParseDialect(dialect)
		if err != nil {
			return nil, err
		}
		opts.Dialect = d
	}

	res, err := ConvertRegistry(src.Raw.Schemas, opts)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		s.logger.Warn(w.Message, "code", w.Code, "schema", w.Schema, "path", w.Path)
	}

	if src.DocErr != nil {
		s.logger.Warn("operations skipped, document could not be loaded", "spec", src.Location, "error", src.DocErr)
	} else {
		methods, warnings, err := ExtractMethods(src.Doc)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			s.logger.Warn(w.Message, "code", w.Code, "path", w.Path)
		}
		res.Schema.Methods = methods
		res.Warnings = append(res.Warnings, warnings...)
	}

	if err := emit.Check(res.Schema); err != nil {
		return nil, err
	}
	s.logger.Debug("schema converted",
		"spec", src.Location,
		"dialect", string(res.Schema.Dialect),
		"definitions", len(res.Schema.Definitions),
		"operations", len(res.Schema.Methods),
		"warnings", len(res.Warnings))
	return res, nil
}

// GenerateFromConfig generates every configured client, or only
// opts.SingleClient when set. Clients render concurrently.
func (s *Service) GenerateFromConfig(ctx context.Context, cfg *config.Config, opts GenerateOptions) ([]utils.WriteResult, error) {
	var clients []config.Client
	for _, client := range cfg.Clients {
		if opts.SingleClient != "" && client.Name != opts.SingleClient {
			continue
		}
		if _, exists := s.registry.Get(client.Type); !exists {
			return nil, fmt.Errorf("unsupported client type: %s (available: %s)",
				client.Type, strings.Join(s.registry.GetAvailableTypes(), ", "))
		}
		clients = append(clients, client)
	}
	if opts.SingleClient != "" && len(clients) == 0 {
		return nil, fmt.Errorf("client %q not found in config", opts.SingleClient)
	}

	res, err := s.BuildSchema(ctx, cfg.Spec, cfg.Dialect)
	if err != nil {
		return nil, err
	}

	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	results := make([][]utils.WriteResult, len(clients))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, client := range clients {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files, err := s.generateClient(gctx, client, res.Schema, opts.Check)
			if err != nil {
				return fmt.Errorf("client %s: %w", client.Name, err)
			}
			results[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []utils.WriteResult
	for _, files := range results {
		out = append(out, files...)
	}
	return out, nil
}

func (s *Service) generateClient(ctx context.Context, client config.Client, schema *ir.IRSchema, check bool) ([]utils.WriteResult, error) {
	generator, _ := s.registry.Get(client.Type)
	logger := s.logger.With("client", client.Name, "type", client.Type)

	if !check {
		// Ensure output directory exists before pre-commands
		if err := os.MkdirAll(client.OutDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := s.executeCommand(ctx, client.GetPreCommand(), client.OutDir, "pre-command"); err != nil {
			return nil, fmt.Errorf("pre-generation commands failed: %w", err)
		}
	}

	filtered, err := FilterSchema(schema, client.IncludeTags, client.ExcludeTags)
	if err != nil {
		return nil, err
	}
	if len(filtered.Definitions) != len(schema.Definitions) {
		logger.Debug("definitions filtered by tags", "kept", len(filtered.Definitions), "total", len(schema.Definitions))
	}

	files, err := generator.Generate(client, filtered, utils.WriteOptions{Check: check})
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		logger.Info("generated file",
			"path", f.Path,
			"size", units.HumanSize(float64(f.Size)),
			"changed", f.Changed)
	}

	if !check {
		if err := s.executeCommand(ctx, client.GetPostCommand(), client.OutDir, "post-command"); err != nil {
			return nil, fmt.Errorf("post-generation commands failed: %w", err)
		}
	}
	return files, nil
}

// executeCommand executes a single command in Docker Compose array format
func (s *Service) executeCommand(ctx context.Context, command []string, workDir, commandLabel string) error {
	if len(command) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmdDescription := strings.Join(command, " ")
	s.logger.Debug("running command", "label", commandLabel, "command", cmdDescription, "dir", workDir)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s (%s) failed: %w", commandLabel, cmdDescription, err)
	}
	return nil
}
