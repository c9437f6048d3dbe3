package typescript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/utils"
)

func TestGeneratorWritesModule(t *testing.T) {
	dir := t.TempDir()
	client := config.Client{Type: "typescript", OutDir: dir, Name: "web"}
	s := schemaOf(
		def("Pet", ir.NewObject(ir.IRProperty{Name: "name", Type: ir.String(), Required: true})),
		def("Pets", ir.NewArray(ir.NewReference("Pet"))),
	)
	s.Methods = []ir.IRMethod{{Name: "listPets", Method: "GET", Path: "/pets",
		Responses: []ir.IRResponse{{Status: "200", Type: ir.NewReference("Pets")}}}}

	g := NewTypeScriptGenerator()
	files, err := g.Generate(client, s, utils.WriteOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(files) != 1 || files[0].Path != filepath.Join(dir, DefaultFileName) || !files[0].Changed {
		t.Fatalf("files = %+v", files)
	}
	data, err := os.ReadFile(files[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	want := `// Code generated by typegen. DO NOT EDIT.

export interface Pet {
  name: string;
}

export type Pets = Array<Pet>;

export interface Operations {
  listPets: {
    method: "GET";
    path: "/pets";
    response: Pets;
  };
}
`
	if string(data) != want {
		t.Errorf("got:\n%s\nwant:\n%s", data, want)
	}

	// unchanged output passes check mode
	files, err = g.Generate(client, s, utils.WriteOptions{Check: true})
	if err != nil || files[0].Changed {
		t.Fatalf("check = %+v, %v", files, err)
	}

	s.Definitions[0].Type = ir.NewObject()
	if _, err := g.Generate(client, s, utils.WriteOptions{Check: true}); !errors.Is(err, utils.ErrCheckFailed) {
		t.Errorf("stale check err = %v", err)
	}
}

func TestGeneratorHonorsFileNameAndExclude(t *testing.T) {
	dir := t.TempDir()
	s := schemaOf(def("Pet", ir.NewObject()))

	client := config.Client{OutDir: dir, FileName: "models.ts", PackageName: "pets"}
	files, err := NewTypeScriptGenerator().Generate(client, s, utils.WriteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "models.ts"))
	if !strings.HasPrefix(string(data), "// Code generated by typegen. DO NOT EDIT.\n// pets\n") {
		t.Errorf("header = %q", data)
	}
	if len(files) != 1 {
		t.Errorf("files = %+v", files)
	}

	client.ExcludeFiles = []string{"models.ts"}
	files, err = NewTypeScriptGenerator().Generate(client, s, utils.WriteOptions{Check: true})
	if err != nil || len(files) != 0 {
		t.Errorf("excluded file = %+v, %v", files, err)
	}
}
