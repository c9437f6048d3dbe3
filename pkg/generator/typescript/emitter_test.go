package typescript

import (
	"errors"
	"strings"
	"testing"

	"github.com/blimu-dev/typegen/pkg/ir"
)

func schemaOf(defs ...ir.IRTypeDefinition) *ir.IRSchema {
	return &ir.IRSchema{Definitions: defs}
}

func def(name string, t ir.IRType) ir.IRTypeDefinition {
	return ir.IRTypeDefinition{Name: name, Type: t}
}

func TestEmitDeclarations(t *testing.T) {
	pet := ir.Annotate(ir.NewObject(
		ir.IRProperty{Name: "id", Type: ir.Integer(), Required: true},
		ir.IRProperty{Name: "name", Type: ir.String(), Required: true},
		ir.IRProperty{Name: "tag", Type: ir.String(), Metadata: &ir.IRMetadata{Description: "Free-form tag"}},
		ir.IRProperty{Name: "status", Type: ir.NewUnion(ir.MustLiteral("available"), ir.MustLiteral("sold"))},
		ir.IRProperty{Name: "x-rate", Type: ir.Number()},
	), &ir.IRMetadata{Description: "A pet"}, nil)

	withMeta := ir.NewObject(ir.IRProperty{Name: "id", Type: ir.String(), Required: true})
	withMeta.Additional = ir.AdditionalSchema(ir.Number())
	bag := ir.NewObject()
	bag.Additional = ir.AdditionalBool(true)
	closed := ir.NewObject()
	closed.Additional = ir.AdditionalBool(false)

	s := schemaOf(
		def("Pet", pet),
		def("MaybeName", ir.WithNull(ir.String())),
		def("Alias", ir.NewReference("Pet")),
		def("Labels", ir.NewMap(ir.String())),
		def("Pets", ir.NewArray(ir.NewReference("Pet"))),
		def("Empty", ir.NewObject()),
		def("Closed", closed),
		def("Bag", bag),
		def("Meta", withMeta),
		def("Both", ir.NewIntersection(ir.NewReference("Pet"), ir.NewUnion(ir.NewReference("Alias"), ir.NewReference("Bag")))),
		def("Five", ir.MustLiteral(5)),
		def("string", ir.String()),
		def("Old", ir.Annotate(ir.String(), &ir.IRMetadata{Deprecated: true, HasDefault: true, Default: "x"}, nil)),
		def("Upload", ir.NewPrimitive(ir.IRPrimitiveString, "binary")),
		def("Outer", ir.NewObject(ir.IRProperty{
			Name: "inner", Required: true,
			Type: ir.NewObject(ir.IRProperty{Name: "a", Type: ir.String(), Required: true}),
		})),
		def("Anything", ir.Any()),
	)

	decls, err := NewEmitter().Emit(s)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := map[string]string{
		"Pet": `/**
 * A pet
 */
export interface Pet {
  id: number;
  name: string;
  /**
   * Free-form tag
   */
  tag?: string;
  status?: "available" | "sold";
  "x-rate"?: number;
}
`,
		"MaybeName": "export type MaybeName = string | null;\n",
		"Alias":     "export type Alias = Pet;\n",
		"Labels":    "export type Labels = Record<string, string>;\n",
		"Pets":      "export type Pets = Array<Pet>;\n",
		"Empty":     "export interface Empty {}\n",
		"Closed":    "export interface Closed {}\n",
		"Bag":       "export interface Bag {\n  [key: string]: unknown;\n}\n",
		"Meta":      "export type Meta = {\n  id: string;\n} & Record<string, number>;\n",
		"Both":      "export type Both = Pet & (Alias | Bag);\n",
		"Five":      "export type Five = 5;\n",
		"string":    "export type string_ = string;\n",
		"Old":       "/**\n * @deprecated\n * @default \"x\"\n */\nexport type Old = string;\n",
		"Upload":    "export type Upload = Blob;\n",
		"Outer":     "export interface Outer {\n  inner: {\n    a: string;\n  };\n}\n",
		"Anything":  "export type Anything = unknown;\n",
	}
	if got, wantN := len(decls), len(s.Definitions); got != wantN {
		t.Fatalf("got %d declarations, want %d", got, wantN)
	}
	for i, d := range decls {
		if d.Name != s.Definitions[i].Name {
			t.Errorf("declaration %d is %s, want %s", i, d.Name, s.Definitions[i].Name)
		}
		if d.Text != want[d.Name] {
			t.Errorf("%s:\n got: %q\nwant: %q", d.Name, d.Text, want[d.Name])
		}
	}
}

func TestEmitOpenObjects(t *testing.T) {
	closed := ir.NewObject(ir.IRProperty{Name: "id", Type: ir.String(), Required: true})
	closed.Additional = ir.AdditionalBool(false)
	meta := ir.NewObject(ir.IRProperty{Name: "id", Type: ir.String(), Required: true})
	meta.Additional = ir.AdditionalSchema(ir.Number())
	s := schemaOf(
		def("Open", ir.NewObject(ir.IRProperty{Name: "id", Type: ir.String(), Required: true})),
		def("Closed", closed),
		def("Meta", meta),
	)

	tests := []struct {
		open bool
		want map[string]string
	}{
		{false, map[string]string{
			"Open":   "export interface Open {\n  id: string;\n}\n",
			"Closed": "export interface Closed {\n  id: string;\n}\n",
			"Meta":   "export type Meta = {\n  id: string;\n} & Record<string, number>;\n",
		}},
		{true, map[string]string{
			"Open":   "export interface Open {\n  id: string;\n  [key: string]: unknown;\n}\n",
			"Closed": "export interface Closed {\n  id: string;\n}\n",
			"Meta":   "export type Meta = {\n  id: string;\n} & Record<string, number>;\n",
		}},
	}
	for _, tt := range tests {
		e := NewEmitter()
		e.OpenObjects = tt.open
		decls, err := e.Emit(s)
		if err != nil {
			t.Fatal(err)
		}
		for _, d := range decls {
			if d.Text != tt.want[d.Name] {
				t.Errorf("open=%v %s:\n got: %q\nwant: %q", tt.open, d.Name, d.Text, tt.want[d.Name])
			}
		}
	}
}

func TestEmitRejectsSanitizedCollision(t *testing.T) {
	_, err := NewEmitter().Emit(schemaOf(def("pet-store", ir.String()), def("pet_store", ir.String())))
	if !errors.Is(err, ir.ErrDuplicateSchemaName) {
		t.Fatalf("err = %v, want ErrDuplicateSchemaName", err)
	}
}

func TestEmitRejectsDanglingReference(t *testing.T) {
	_, err := NewEmitter().Emit(schemaOf(def("A", ir.NewReference("B"))))
	if !errors.Is(err, ir.ErrUnresolvedReference) {
		t.Fatalf("err = %v, want ErrUnresolvedReference", err)
	}
}

func TestEmitOperations(t *testing.T) {
	s := schemaOf(def("Pet", ir.NewObject()))
	s.Methods = []ir.IRMethod{
		{
			Name: "getPet", Method: "GET", Path: "/pets/{petId}", Summary: "Find a pet",
			Params: ir.IRParams{
				Path:  []ir.IRParam{{Name: "petId", Required: true, Type: ir.String()}},
				Query: []ir.IRParam{{Name: "verbose", Type: ir.Boolean()}},
			},
			Responses: []ir.IRResponse{
				{Status: "200", Type: ir.NewReference("Pet")},
				{Status: "404", Type: ir.Void()},
			},
		},
		{
			Name: "createPet", Method: "POST", Path: "/pets",
			RequestBody: &ir.IRRequestBody{ContentType: "application/json", Required: true, Type: ir.NewReference("Pet")},
		},
	}
	got, err := NewEmitter().EmitOperations(s)
	if err != nil {
		t.Fatal(err)
	}
	want := `export interface Operations {
  /**
   * Find a pet
   */
  getPet: {
    method: "GET";
    path: "/pets/{petId}";
    params: {
      path: {
        petId: string;
      };
      query?: {
        verbose?: boolean;
      };
    };
    response: Pet;
  };
  createPet: {
    method: "POST";
    path: "/pets";
    body: Pet;
    response: void;
  };
}
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	empty, err := NewEmitter().EmitOperations(schemaOf())
	if err != nil || empty != "" {
		t.Errorf("no operations = %q, %v", empty, err)
	}
}

func TestEmitOperationsSuffixesDuplicateNames(t *testing.T) {
	s := schemaOf()
	for _, m := range []struct{ name, path string }{
		{"getX", "/a"},
		{"getX", "/b"},
		{"getX2", "/c"},
		{"getX", "/d"},
	} {
		s.Methods = append(s.Methods, ir.IRMethod{Name: m.name, Method: "GET", Path: m.path})
	}
	got, err := NewEmitter().EmitOperations(s)
	if err != nil {
		t.Fatal(err)
	}
	wantKeys := []struct{ key, path string }{
		{"getX", "/a"},
		{"getX2", "/b"},
		{"getX22", "/c"},
		{"getX3", "/d"},
	}
	for _, w := range wantKeys {
		entry := "  " + w.key + ": {\n    method: \"GET\";\n    path: \"" + w.path + "\";"
		if !strings.Contains(got, entry) {
			t.Errorf("missing entry %s for %s in:\n%s", w.key, w.path, got)
		}
		if n := strings.Count(got, "\n  "+w.key+": {"); n != 1 {
			t.Errorf("key %s declared %d times, want 1", w.key, n)
		}
	}
}

func TestQuoteTSPropertyName(t *testing.T) {
	tests := map[string]string{
		"name":     "name",
		"$ref":     "$ref",
		"x-rate":   `"x-rate"`,
		"2fa":      `"2fa"`,
		`a"b`:      `"a\"b"`,
		"a<b":      `"a<b"`,
		"":         `""`,
		"snake_ok": "snake_ok",
	}
	for in, want := range tests {
		if got := quoteTSPropertyName(in); got != want {
			t.Errorf("quoteTSPropertyName(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestJSDocEscapesCommentTerminator(t *testing.T) {
	got := jsDoc(&ir.IRMetadata{Description: "ends */ here"}, "")
	if strings.Contains(strings.TrimSuffix(got, " */\n"), "*/") {
		t.Errorf("comment terminator not escaped: %q", got)
	}
}
