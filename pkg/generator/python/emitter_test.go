package python

import (
	"errors"
	"reflect"
	"testing"

	"github.com/blimu-dev/typegen/pkg/ir"
)

func def(name string, t ir.IRType) ir.IRTypeDefinition {
	return ir.IRTypeDefinition{Name: name, Type: t}
}

func TestEmitDeclarations(t *testing.T) {
	pet := ir.Annotate(ir.NewObject(
		ir.IRProperty{Name: "id", Type: ir.Integer(), Required: true},
		ir.IRProperty{Name: "name", Type: ir.String(), Required: true},
		ir.IRProperty{Name: "tag", Type: ir.String(), Metadata: &ir.IRMetadata{Description: "Free-form tag"}},
	), &ir.IRMetadata{Description: "A pet."}, nil)
	bag := ir.NewObject()
	bag.Additional = ir.AdditionalBool(true)
	scores := ir.NewObject()
	scores.Additional = ir.AdditionalSchema(ir.Number())
	closed := ir.NewObject()
	closed.Additional = ir.AdditionalBool(false)
	open := ir.NewObject(ir.IRProperty{Name: "id", Type: ir.String(), Required: true})
	open.Additional = ir.AdditionalBool(true)

	s := &ir.IRSchema{Definitions: []ir.IRTypeDefinition{
		def("Pet", pet),
		def("Status", ir.NewUnion(ir.MustLiteral("available"), ir.MustLiteral("sold"))),
		def("MaybeName", ir.WithNull(ir.String())),
		def("Alias", ir.NewReference("Pet")),
		def("Pets", ir.NewArray(ir.NewReference("Pet"))),
		def("Labels", ir.NewMap(ir.String())),
		def("Bag", bag),
		def("Scores", scores),
		def("Empty", ir.NewObject()),
		def("Closed", closed),
		def("Open", open),
		def("Combined", ir.NewIntersection(ir.NewReference("Pet"),
			ir.NewObject(ir.IRProperty{Name: "extra", Type: ir.String(), Required: true}))),
		def("Mixed", ir.NewIntersection(ir.NewReference("Pet"), ir.String())),
		def("Early", ir.NewIntersection(ir.NewReference("Zed"), ir.NewObject())),
		def("Headers", ir.NewObject(
			ir.IRProperty{Name: "x-rate", Type: ir.Number()},
			ir.IRProperty{Name: "id", Type: ir.String(), Required: true},
		)),
		def("Loose", ir.NewUnion(ir.String(), ir.Integer(), ir.MustLiteral("a"), ir.Null())),
		def("class", ir.String()),
		def("Kind", ir.MustLiteral(true)),
		def("Old", ir.Annotate(ir.String(), &ir.IRMetadata{Description: "Legacy.\nUse New.", Deprecated: true}, nil)),
		def("Zed", ir.NewObject()),
	}}

	decls, imports, err := NewEmitter().EmitWithImports(s)
	if err != nil {
		t.Fatalf("EmitWithImports: %v", err)
	}
	wantImports := []string{"Any", "Dict", "List", "Literal", "NotRequired", "Optional", "TypeAlias", "TypedDict", "Union"}
	if !reflect.DeepEqual(imports, wantImports) {
		t.Errorf("imports = %v, want %v", imports, wantImports)
	}

	want := map[string]string{
		"Pet": `class Pet(TypedDict):
    """A pet."""

    id: int
    name: str
    tag: NotRequired[str]
    r"""Free-form tag"""
`,
		"Status":    "Status: TypeAlias = Literal[\"available\", \"sold\"]\n",
		"MaybeName": "MaybeName: TypeAlias = Optional[str]\n",
		"Alias":     "Alias: TypeAlias = \"Pet\"\n",
		"Pets":      "Pets: TypeAlias = List[\"Pet\"]\n",
		"Labels":    "Labels: TypeAlias = Dict[str, str]\n",
		"Bag":       "Bag: TypeAlias = Dict[str, Any]\n",
		"Scores":    "Scores: TypeAlias = Dict[str, float]\n",
		"Empty":     "class Empty(TypedDict):\n    pass\n",
		"Closed":    "class Closed(TypedDict):\n    pass\n",
		"Open": `class Open(TypedDict):
    """Additional keys are allowed."""

    id: str
`,
		"Combined": "class Combined(Pet):\n    extra: str\n",
		"Mixed":    "# Intersection of \"Pet\", str.\nMixed: TypeAlias = Any\n",
		"Early":    "# Intersection of \"Zed\", Dict[str, Any].\nEarly: TypeAlias = Any\n",
		"Headers": `Headers = TypedDict("Headers", {
    "x-rate": NotRequired[float],
    "id": str,
})
`,
		"Loose": "Loose: TypeAlias = Optional[Union[Literal[\"a\"], str, int]]\n",
		"class": "class_: TypeAlias = str\n",
		"Kind":  "Kind: TypeAlias = Literal[True]\n",
		"Old":   "# Legacy.\n# Use New.\n#\n# Deprecated.\nOld: TypeAlias = str\n",
		"Zed":   "class Zed(TypedDict):\n    pass\n",
	}
	if len(decls) != len(want) {
		t.Fatalf("got %d declarations, want %d", len(decls), len(want))
	}
	for name, text := range want {
		d, ok := decls.Lookup(name)
		if !ok {
			t.Errorf("declaration %s missing", name)
			continue
		}
		if d != text {
			t.Errorf("%s:\n got: %q\nwant: %q", name, d, text)
		}
	}
}

func TestEmitDiscriminatedUnion(t *testing.T) {
	u := ir.NewUnion(ir.NewReference("Cat"), ir.NewReference("Dog"))
	u.Discriminator = &ir.IRDiscriminator{PropertyName: "kind"}
	s := &ir.IRSchema{Definitions: []ir.IRTypeDefinition{
		def("Cat", ir.NewObject()),
		def("Dog", ir.NewObject()),
		def("Animal", u),
	}}
	decls, err := NewEmitter().Emit(s)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	d, _ := decls.Lookup("Animal")
	want := "# Discriminated by the \"kind\" key.\nAnimal: TypeAlias = Union[\"Cat\", \"Dog\"]\n"
	if d != want {
		t.Errorf("got %q, want %q", d, want)
	}
}

func TestEmitRejectsDanglingReference(t *testing.T) {
	s := &ir.IRSchema{Definitions: []ir.IRTypeDefinition{def("Pet", ir.NewReference("Missing"))}}
	if _, err := NewEmitter().Emit(s); !errors.Is(err, ir.ErrUnresolvedReference) {
		t.Fatalf("err = %v, want ErrUnresolvedReference", err)
	}
}

func TestHelpers(t *testing.T) {
	ids := map[string]string{"Pet": "Pet", "pet-store": "pet_store", "class": "class_", "Any": "Any_", "1st": "_1st"}
	for in, want := range ids {
		if got := pyIdentifier(in); got != want {
			t.Errorf("pyIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
	lits := []struct {
		in   any
		want string
	}{
		{nil, "None"}, {true, "True"}, {false, "False"}, {int64(7), "7"}, {2.5, "2.5"}, {"a\"b", `"a\"b"`},
	}
	for _, l := range lits {
		if got := pyLiteral(l.in); got != l.want {
			t.Errorf("pyLiteral(%v) = %s, want %s", l.in, got, l.want)
		}
	}
	if got := formatDocstring("one\n\ntwo", "    "); got != "    \"\"\"\n    one\n\n    two\n    \"\"\"\n" {
		t.Errorf("formatDocstring = %q", got)
	}
	if got := formatPythonComment(`ends with \`); got != `r"""ends with \ """` {
		t.Errorf("formatPythonComment = %q", got)
	}
}
