package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/typegen/pkg/logging"
)

// Config represents the complete configuration for type generation
type Config struct {
	// Spec is the OpenAPI document, a local path or an http(s) URL.
	Spec string `yaml:"spec" toml:"spec"`
	Name string `yaml:"name" toml:"name"`
	// Dialect forces "3.0" or "3.1" instead of reading the document's openapi field.
	Dialect string         `yaml:"dialect" toml:"dialect"`
	Logging logging.Config `yaml:"logging" toml:"logging"`
	Clients []Client       `yaml:"clients" toml:"clients"`
}

// Client represents one output target
type Client struct {
	// Type selects the target: typescript, typescript-types, go, python or ir.
	Type   string `yaml:"type" toml:"type"`
	OutDir string `yaml:"outDir" toml:"outDir"`
	// FileName overrides the target's default output file name.
	FileName    string `yaml:"fileName" toml:"fileName"`
	PackageName string `yaml:"packageName" toml:"packageName"`
	Name        string `yaml:"name" toml:"name"`
	// IncludeTags and ExcludeTags are regular expressions matched against
	// operation tags. When either is set, only schemas reachable from the
	// selected operations are generated.
	IncludeTags []string `yaml:"includeTags" toml:"includeTags"`
	ExcludeTags []string `yaml:"excludeTags" toml:"excludeTags"`
	// PreCommand is an optional command to run before generation starts.
	// Uses Docker Compose array format: ["goimports", "-w", "."]
	// The command will be executed in the output directory.
	PreCommand []string `yaml:"preCommand" toml:"preCommand"`
	// PostCommand is an optional command to run after generation completes,
	// in the output directory.
	PostCommand []string `yaml:"postCommand" toml:"postCommand"`
	// ExcludeFiles is a list of file paths (relative to outDir) that should not be written
	ExcludeFiles []string `yaml:"exclude" toml:"exclude"`
	// TypeAugmentationOptions are options specific to the typescript-types target
	TypeAugmentationOptions TypeAugmentationOptions `yaml:"typeAugmentation" toml:"typeAugmentation"`
}

// TypeAugmentationOptions contains options for type augmentation generators
type TypeAugmentationOptions struct {
	// ModuleName is the module name to augment (e.g., "@blimu/backend")
	ModuleName string `yaml:"moduleName" toml:"moduleName"`
	// Namespace is the namespace within the module to augment (e.g., "Schema")
	Namespace string `yaml:"namespace" toml:"namespace"`
	// TypeNames restricts the augmentation to these definitions. Empty means all.
	TypeNames []string `yaml:"typeNames" toml:"typeNames"`
	// OutputFileName is the name of the output file (defaults to packageName + ".d.ts")
	OutputFileName string `yaml:"outputFileName" toml:"outputFileName"`
}

// GetPreCommand returns the pre-generation command to execute.
func (c *Client) GetPreCommand() []string {
	return c.PreCommand
}

// GetPostCommand returns the post-generation command to execute.
func (c *Client) GetPostCommand() []string {
	return c.PostCommand
}

// OutputFile returns the file the client writes, FileName or fallback, inside OutDir.
func (c *Client) OutputFile(fallback string) string {
	name := c.FileName
	if name == "" {
		name = fallback
	}
	return filepath.Join(c.OutDir, name)
}

// ShouldExcludeFile checks if a file path should be excluded based on the ExcludeFiles list.
// targetPath should be an absolute path, and the comparison is done relative to OutDir.
func (c *Client) ShouldExcludeFile(targetPath string) bool {
	if len(c.ExcludeFiles) == 0 {
		return false
	}
	relPath, err := filepath.Rel(c.OutDir, targetPath)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	if relPath == "." {
		relPath = ""
	}
	for _, pattern := range c.ExcludeFiles {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		if relPath == pattern {
			return true
		}
		// a directory entry excludes everything below it
		if pattern != "" && strings.HasPrefix(relPath, pattern+"/") {
			return true
		}
	}
	return false
}

// Load loads configuration from a YAML file, or a TOML file when the
// extension is .toml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	// relative paths in a config file are relative to the file itself
	if err := cfg.NormalizeRelativeTo(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and makes local paths absolute against
// the working directory.
func (cfg *Config) Normalize() error {
	return cfg.NormalizeRelativeTo("")
}

// NormalizeRelativeTo is Normalize with relative paths resolved against base.
func (cfg *Config) NormalizeRelativeTo(base string) error {
	if cfg.Spec == "" {
		return errors.New("config.spec is required")
	}
	seen := make(map[string]struct{}, len(cfg.Clients))
	for i := range cfg.Clients {
		c := &cfg.Clients[i]
		if c.Type == "" || c.OutDir == "" || c.Name == "" {
			return fmt.Errorf("clients[%d] missing required fields (type, outDir, name)", i)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("clients[%d]: duplicate client name %q", i, c.Name)
		}
		seen[c.Name] = struct{}{}
		abs, err := absPath(base, c.OutDir)
		if err != nil {
			return err
		}
		c.OutDir = abs
	}
	// Do not absolutize when spec is an HTTP(S) URL
	if isURL(cfg.Spec) || filepath.IsAbs(cfg.Spec) {
		return nil
	}
	abs, err := absPath(base, cfg.Spec)
	if err != nil {
		return err
	}
	cfg.Spec = abs
	return nil
}

func absPath(base, p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Abs(filepath.Join(base, p))
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
