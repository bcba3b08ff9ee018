package analyze

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hintbind/hint"
	"hintbind/internal/diagnostic"
	"hintbind/primitive"
)

const fixtureSrc = `package fixture

type Base struct {
	ID int64 ` + "`mark:\"min(1)\"`" + `
}

type Good struct {
	Base
	Name  string   ` + "`json:\"name\" mark:\"trim; length(1, 10)\"`" + `
	Tags  []string ` + "`mark:\"length(max=3)\"`" + `
	Ptr   *int     ` + "`mark:\"min(0)\"`" + `
	Skip  string   ` + "`mark:\"-\"`" + `
	plain int
}

type Inner struct {
	ID    string ` + "`mark:\"trim\"`" + `
	Extra int
}

type Outer struct {
	Inner
	ID int ` + "`mark:\"min(0)\"`" + `
}

type Mismatch struct {
	Count int    ` + "`mark:\"trim\"`" + `
	Twice string ` + "`mark:\"trim; trim\"`" + `
}

type Unknown struct {
	Oops string ` + "`mark:\"rang(1, 2)\"`" + `
}

type Any struct {
	V interface{} ` + "`mark:\"trim\"`" + `
}

type Plain struct {
	N int
}

type unexported struct {
	N int ` + "`mark:\"min(0)\"`" + `
}
`

func fixtureAnalyzer(t *testing.T) *Analyzer {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "fixture.go", fixtureSrc, 0)
	require.NoError(t, err)

	pkg, err := (&types.Config{}).Check("example.com/fixture", fset, []*ast.File{file}, nil)
	require.NoError(t, err)

	a := NewAnalyzer()
	a.AddPackage(fset, pkg)

	return a
}

func TestAddPackage_VisibleFields(t *testing.T) {
	graph := fixtureAnalyzer(t).Graph()

	assert.Len(t, graph.Structs, 8)
	assert.Nil(t, graph.GetStruct(TypeID{PkgPath: "example.com/fixture", Name: "unexported"}))

	good := graph.GetStruct(TypeID{PkgPath: "example.com/fixture", Name: "Good"})
	require.NotNil(t, good)

	var names []string
	for _, f := range good.Fields {
		names = append(names, f.Name)
	}

	assert.Equal(t, []string{"ID", "Name", "Tags", "Ptr", "Skip"}, names)

	id := findField(t, good, "ID")
	assert.True(t, id.Embedded)
	assert.Equal(t, []int{0, 0}, id.Index)
	assert.Equal(t, primitive.KindInt64, id.Kind)

	outer := graph.GetStruct(TypeID{PkgPath: "example.com/fixture", Name: "Outer"})
	require.NotNil(t, outer)
	require.Len(t, outer.Fields, 2)
	assert.Equal(t, "Extra", outer.Fields[0].Name)
	assert.Equal(t, []int{0, 1}, outer.Fields[0].Index)
	assert.Equal(t, "ID", outer.Fields[1].Name)
	assert.Equal(t, primitive.KindInt, outer.Fields[1].Kind)

	anyField := findField(t, graph.GetStruct(TypeID{PkgPath: "example.com/fixture", Name: "Any"}), "V")
	assert.Equal(t, primitive.KindAny, anyField.Kind)
}

func TestCheck(t *testing.T) {
	res := fixtureAnalyzer(t).Check()
	d := res.Diagnostics

	var names []string
	for _, target := range res.Targets {
		names = append(names, target.Name)
	}

	assert.Equal(t, []string{"fixture.Any", "fixture.Base", "fixture.Good", "fixture.Inner", "fixture.Outer"}, names)

	good := res.Targets[2]
	assert.Equal(t, hint.KindStruct, good.Kind)
	assert.Equal(t, []string{"ID", "name", "Tags", "Ptr"}, good.Names())

	ptr, ok := good.Hint("Ptr")
	require.True(t, ok)
	assert.True(t, ptr.Optional)

	require.Len(t, d.Errors, 3)

	assert.Equal(t, diagnostic.CodeTypeMismatch, d.Errors[0].Code)
	assert.Equal(t, "fixture.Mismatch", d.Errors[0].Target)
	assert.Equal(t, "Count", d.Errors[0].Field)
	assert.True(t, strings.HasPrefix(d.Errors[0].Position, "fixture.go:"), d.Errors[0].Position)

	assert.Equal(t, diagnostic.CodeConflict, d.Errors[1].Code)
	assert.Equal(t, "Twice", d.Errors[1].Field)
	assert.NotEmpty(t, d.Errors[1].Suggestions)

	assert.Equal(t, diagnostic.CodeUnknownMarker, d.Errors[2].Code)
	assert.Equal(t, "fixture.Unknown", d.Errors[2].Target)
	assert.Equal(t, "Oops", d.Errors[2].Field)
	assert.Equal(t, []string{"range"}, d.Errors[2].Suggestions)

	require.Len(t, d.Warnings, 1)
	assert.Equal(t, diagnostic.CodeUntyped, d.Warnings[0].Code)
	assert.Equal(t, "V", d.Warnings[0].Field)
	assert.Contains(t, d.Warnings[0].Message, "interface{}")

	require.Len(t, d.Infos, 1)
	assert.Equal(t, diagnostic.CodeUnmarked, d.Infos[0].Code)
	assert.Equal(t, "fixture.Plain", d.Infos[0].Target)
}

func TestCheck_TagKey(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "alt.go", "package alt\n\ntype T struct {\n\tA string `check:\"trim\"`\n}\n", 0)
	require.NoError(t, err)

	pkg, err := (&types.Config{}).Check("alt", fset, []*ast.File{file}, nil)
	require.NoError(t, err)

	a := NewAnalyzer(WithTagKey("check"))
	a.AddPackage(fset, pkg)

	res := a.Check()
	require.Len(t, res.Targets, 1)
	assert.Equal(t, "alt.T", res.Targets[0].Name)
	assert.True(t, res.Diagnostics.IsValid())
}
