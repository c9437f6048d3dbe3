package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/generator"
	"github.com/blimu-dev/typegen/pkg/generator/irdump"
	"github.com/blimu-dev/typegen/pkg/openapi"
	"github.com/blimu-dev/typegen/pkg/utils"
)

type FallbackParams struct {
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

type RunGenerateParams struct {
	ConfigPath   string
	SingleClient string
	Check        bool
	Fallback     FallbackParams
	Log          LogParams
}

type RunIRParams struct {
	Input   string
	Dialect string
	// Out is the file to write; empty writes to the command's output.
	Out string
	Log LogParams
}

// RunValidate validates a document with kin-openapi.
func RunValidate(input string) error {
	return openapi.ValidateDocument(input)
}

// RunGenerate generates every configured client, or the single fallback
// client described by the flags, and reports a summary to w.
func RunGenerate(ctx context.Context, p RunGenerateParams, w io.Writer) error {
	opts := generator.GenerateOptions{
		ConfigPath:   p.ConfigPath,
		SingleClient: p.SingleClient,
		Check:        p.Check,
		Fallback: generator.FallbackOptions{
			Spec:        p.Fallback.Spec,
			Type:        p.Fallback.Type,
			OutDir:      p.Fallback.OutDir,
			FileName:    p.Fallback.FileName,
			PackageName: p.Fallback.PackageName,
			Name:        p.Fallback.Name,
			Dialect:     p.Fallback.Dialect,
			IncludeTags: p.Fallback.IncludeTags,
			ExcludeTags: p.Fallback.ExcludeTags,
		},
	}

	var (
		files []utils.WriteResult
		err   error
	)
	if p.ConfigPath != "" {
		cfg, lerr := config.Load(p.ConfigPath)
		if lerr != nil {
			return lerr
		}
		logger, lerr := newLogger(p.Log, &cfg.Logging)
		if lerr != nil {
			return lerr
		}
		files, err = generator.NewService(generator.WithLogger(logger)).GenerateFromConfig(ctx, cfg, opts)
	} else {
		logger, lerr := newLogger(p.Log, nil)
		if lerr != nil {
			return lerr
		}
		files, err = generator.NewService(generator.WithLogger(logger)).Generate(ctx, opts)
	}
	if err != nil {
		return err
	}

	changed := 0
	for _, f := range files {
		if f.Changed {
			changed++
		}
	}
	if p.Check {
		_, err = fmt.Fprintf(w, "%d file(s) up to date\n", len(files))
	} else {
		_, err = fmt.Fprintf(w, "%d file(s) generated, %d changed\n", len(files), changed)
	}
	return err
}

// RunIR converts a document and writes the IR as JSON.
func RunIR(ctx context.Context, p RunIRParams, w io.Writer) error {
	logger, err := newLogger(p.Log, nil)
	if err != nil {
		return err
	}
	res, err := generator.NewService(generator.WithLogger(logger)).BuildSchema(ctx, p.Input, p.Dialect)
	if err != nil {
		return err
	}
	if p.Out == "" {
		return irdump.Dump(w, res.Schema)
	}
	data, err := irdump.Render(res.Schema)
	if err != nil {
		return err
	}
	_, err = utils.WriteFile(p.Out, data, utils.WriteOptions{})
	return err
}
