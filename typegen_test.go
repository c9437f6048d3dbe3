package typegen_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blimu-dev/typegen"
	"github.com/blimu-dev/typegen/pkg/ir"
)

const petDoc = `openapi: 3.0.3
info: {title: Pets, version: "1"}
paths: {}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name: {type: string}
        tag: {type: string, nullable: true}
    Pets:
      type: array
      items: {$ref: '#/components/schemas/Pet'}
`

func TestConvert(t *testing.T) {
	schema, warnings, err := typegen.Convert([]byte(petDoc))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %+v", warnings)
	}
	if got := schema.Names(); len(got) != 2 || got[0] != "Pet" || got[1] != "Pets" {
		t.Errorf("definitions = %v", got)
	}
	if schema.Dialect != ir.IRDialect30 {
		t.Errorf("dialect = %q", schema.Dialect)
	}
}

func TestEmitTypeScriptRejectsCycles(t *testing.T) {
	doc := `openapi: 3.0.3
components:
  schemas:
    A: {$ref: '#/components/schemas/B'}
    B: {$ref: '#/components/schemas/A'}
`
	if _, err := typegen.EmitTypeScript([]byte(doc)); !errors.Is(err, ir.ErrCircularTypeReference) {
		t.Fatalf("err = %v, want ErrCircularTypeReference", err)
	}
}

func ExampleEmitTypeScript() {
	decls, err := typegen.EmitTypeScript([]byte(petDoc))
	if err != nil {
		panic(err)
	}
	fmt.Println(decls.Join())
	// Output:
	// export interface Pet {
	//   name: string;
	//   tag?: string | null;
	// }
	//
	// export type Pets = Array<Pet>;
}
