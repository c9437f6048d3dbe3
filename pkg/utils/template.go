package utils

import (
	"bytes"
	"fmt"
	"io/fs"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// FuncMap returns the sprig text functions merged with extra. Entries of extra
// win over sprig functions of the same name.
func FuncMap(extra template.FuncMap) template.FuncMap {
	funcMap := sprig.TxtFuncMap()
	for k, v := range extra {
		funcMap[k] = v
	}
	return funcMap
}

// RenderTemplate executes templates/<name> from fsys with the given functions.
func RenderTemplate(fsys fs.FS, name string, funcMap template.FuncMap, data any) ([]byte, error) {
	content, err := fs.ReadFile(fsys, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Funcs(funcMap).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
