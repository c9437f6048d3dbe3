package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"text/template"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "schema.ts")

	res, err := WriteFile(path, []byte("a"), WriteOptions{})
	if err != nil || !res.Changed || res.Size != 1 {
		t.Fatalf("first write = %+v, %v", res, err)
	}
	res, err = WriteFile(path, []byte("a"), WriteOptions{})
	if err != nil || res.Changed {
		t.Fatalf("identical write = %+v, %v", res, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}

	if _, err := WriteFile(path, []byte("a"), WriteOptions{Check: true}); err != nil {
		t.Errorf("check on fresh file: %v", err)
	}
	_, err = WriteFile(path, []byte("b"), WriteOptions{Check: true})
	if !errors.Is(err, ErrCheckFailed) || !strings.Contains(err.Error(), "differs") {
		t.Errorf("check on stale file: %v", err)
	}
	if got, _ := os.ReadFile(path); string(got) != "a" {
		t.Errorf("check mode wrote the file: %q", got)
	}
	_, err = WriteFile(filepath.Join(t.TempDir(), "missing.ts"), []byte("a"), WriteOptions{Check: true})
	if !errors.Is(err, ErrCheckFailed) || !strings.Contains(err.Error(), "would be written") {
		t.Errorf("check on missing file: %v", err)
	}
}

func TestRenderTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/hello.gotmpl": {Data: []byte(`{{ shout .Name }} {{ .Name | upper }}`)},
		"templates/broken.gotmpl": {Data: []byte(`{{ .Name `)},
	}
	funcs := FuncMap(template.FuncMap{"shout": func(s string) string { return s + "!" }})

	out, err := RenderTemplate(fsys, "hello.gotmpl", funcs, map[string]string{"Name": "pet"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "pet! PET" {
		t.Errorf("got %q", out)
	}
	if _, err := RenderTemplate(fsys, "broken.gotmpl", funcs, nil); err == nil {
		t.Error("expected a parse error")
	}
	if _, err := RenderTemplate(fsys, "missing.gotmpl", funcs, nil); err == nil {
		t.Error("expected a read error")
	}
}
