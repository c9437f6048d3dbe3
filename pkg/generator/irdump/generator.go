// Package irdump writes the intermediate representation itself as JSON, for
// debugging conversions and for tools outside this module.
package irdump

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/utils"
)

// DefaultFileName is written when the client sets no fileName.
const DefaultFileName = "schema.ir.json"

// IRGenerator implements the Generator interface for the IR dump
type IRGenerator struct{}

// NewIRGenerator creates a new IR dump generator
func NewIRGenerator() *IRGenerator {
	return &IRGenerator{}
}

// GetType returns the generator type identifier
func (g *IRGenerator) GetType() string {
	return "ir"
}

// Generate writes the schema as indented JSON.
func (g *IRGenerator) Generate(client config.Client, schema *ir.IRSchema, opts utils.WriteOptions) ([]utils.WriteResult, error) {
	target := client.OutputFile(DefaultFileName)
	if client.ShouldExcludeFile(target) {
		return nil, nil
	}
	data, err := Render(schema)
	if err != nil {
		return nil, err
	}
	res, err := utils.WriteFile(target, data, opts)
	if err != nil {
		return nil, err
	}
	return []utils.WriteResult{res}, nil
}

// Render validates schema and returns its indented JSON form with a trailing newline.
func Render(schema *ir.IRSchema) ([]byte, error) {
	if schema == nil {
		return nil, fmt.Errorf("irdump: nil schema")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	data, err := schema.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("irdump: encode schema: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("irdump: indent schema: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Dump writes Render's output to w.
func Dump(w io.Writer, schema *ir.IRSchema) error {
	data, err := Render(schema)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
