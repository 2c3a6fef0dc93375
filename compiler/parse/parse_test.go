package parse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/toonketels/jack-compiler/compiler/ast"
	"github.com/toonketels/jack-compiler/compiler/lex"
)

func TestFoo(t *testing.T) {
	x, err := Parse(context.Background(), []byte(`
class Foo {
	field int x;

	constructor Foo new() {
		return this;
	}
}
`))
	require.NoError(t, err)

	assert.Equal(t, &ast.Class{
		Name: "Foo",
		Vars: []*ast.ClassVarDec{
			{Kind: ast.Field, Type: "int", Names: []string{"x"}},
		},
		Subroutines: []*ast.SubroutineDec{{
			Kind:   ast.Constructor,
			Return: "Foo",
			Name:   "new",
			Body: &ast.SubroutineBody{
				Stmts: []ast.Statement{
					&ast.ReturnStmt{Value: &ast.Expression{Term: ast.This}},
				},
			},
		}},
	}, x)
}

func TestStatements(t *testing.T) {
	x, err := Parse(context.Background(), []byte(`
class Main {
	static boolean ready, done;

	function void main(int a, Array b) {
		var int i, j;
		var String s;

		let i = a * (j + 1);
		let b[i] = -j;
		if (~ready) { do draw(); } else { }
		while (i < 10) { let i = i + 1; }
		do Output.printString("hi", null);
		return;
	}

	method int get() { return Math.abs(i); }
}
`))
	require.NoError(t, err)

	require.Len(t, x.Vars, 1)
	assert.Equal(t, ast.Static, x.Vars[0].Kind)
	assert.Equal(t, []string{"ready", "done"}, x.Vars[0].Names)
	assert.Equal(t, 0, x.FieldCount())

	require.Len(t, x.Subroutines, 2)

	main := x.Subroutines[0]
	assert.Equal(t, ast.Function, main.Kind)
	assert.Equal(t, ast.Type("void"), main.Return)
	assert.Equal(t, []ast.Param{{Type: "int", Name: "a"}, {Type: "Array", Name: "b"}}, main.Params)
	assert.Equal(t, 3, main.Body.VarCount())

	st := main.Body.Stmts
	require.Len(t, st, 6)

	assert.Equal(t, &ast.LetStmt{
		Name: "i",
		Value: &ast.Expression{
			Term: &ast.Var{Name: "a"},
			Rest: &ast.OpTerm{Op: ast.Multiply, Term: &ast.Paren{X: &ast.Expression{
				Term: &ast.Var{Name: "j"},
				Rest: &ast.OpTerm{Op: ast.Plus, Term: ast.IntConst(1)},
			}}},
		},
	}, st[0])

	assert.Equal(t, &ast.LetStmt{
		Name:  "b",
		Index: &ast.Expression{Term: &ast.Var{Name: "i"}},
		Value: &ast.Expression{Term: &ast.Unary{Op: ast.Minus, X: &ast.Var{Name: "j"}}},
	}, st[1])

	assert.Equal(t, &ast.IfStmt{
		Cond: &ast.Expression{Term: &ast.Unary{Op: ast.Negate, X: &ast.Var{Name: "ready"}}},
		Then: []ast.Statement{&ast.DoStmt{Call: &ast.Call{Name: "draw"}}},
		Else: []ast.Statement{},
	}, st[2])

	w, ok := st[3].(*ast.WhileStmt)
	require.True(t, ok)
	assert.Equal(t, ast.LessThan, w.Cond.Rest.Op)
	assert.Len(t, w.Body, 1)

	assert.Equal(t, &ast.DoStmt{Call: &ast.QualifiedCall{
		Target: "Output",
		Name:   "printString",
		Args: []*ast.Expression{
			{Term: ast.StringConst("hi")},
			{Term: ast.Null},
		},
	}}, st[4])

	assert.Equal(t, &ast.ReturnStmt{}, st[5])

	get := x.Subroutines[1]
	assert.Equal(t, ast.Method, get.Kind)
	assert.Equal(t, []ast.Statement{
		&ast.ReturnStmt{Value: &ast.Expression{Term: &ast.QualifiedCall{
			Target: "Math",
			Name:   "abs",
			Args:   []*ast.Expression{{Term: &ast.Var{Name: "i"}}},
		}}},
	}, get.Body.Stmts)
}

func TestIfWithoutElse(t *testing.T) {
	x, err := Parse(context.Background(), []byte(`class A { function void f() { if (true) { return; } return; } }`))
	require.NoError(t, err)

	s := x.Subroutines[0].Body.Stmts[0].(*ast.IfStmt)
	assert.Nil(t, s.Else)
	assert.Equal(t, []ast.Statement{&ast.ReturnStmt{}}, s.Then)
}

func TestOperatorChain(t *testing.T) {
	_, err := Parse(context.Background(), []byte(`class A { function int f() { return 1 + 2 + 3; } }`))
	assert.ErrorIs(t, err, ErrOperatorChain)

	var lerr *lex.Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, lex.Pos{Line: 1, Col: 43}, lerr.Pos)

	_, err = Parse(context.Background(), []byte(`class A { function int f() { return 1 + (2 + 3); } }`))
	assert.NoError(t, err)
}

func TestErrors(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		Text string
		Want string
	}{
		{"function", `"class"`},
		{"class 1 {}", "identifier"},
		{"class A { field void x; }", "type"},
		{"class A { function void f() { let x = ; } }", "term"},
		{"class A { function void f() { x = 1; } }", "statement"},
		{"class A { function void f(int a b) {} }", `","`},
		{"class A { function void f() { do A.g(1 2); } }", `","`},
		{"class A { function void f() { return", "term"},
		{"class A { static int x }", `";"`},
	} {
		_, err := Parse(ctx, []byte(tc.Text))

		var eerr *ExpectedError
		if assert.True(t, errors.As(err, &eerr), "%v: %v", tc.Text, err) {
			assert.Equal(t, tc.Want, eerr.Want, tc.Text)
		}
	}

	_, err := Parse(ctx, []byte("class A {} class B {}"))

	var terr *TrailingError
	require.True(t, errors.As(err, &terr), "%v", err)
	assert.Equal(t, lex.Pos{Line: 1, Col: 12}, terr.Pos)

	_, err = Parse(ctx, []byte("class A { field int x = 99999; }"))
	assert.ErrorIs(t, err, lex.ErrIntRange)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "Empty.jack")

	err := os.WriteFile(name, []byte("class Empty {}\n"), 0o644)
	require.NoError(t, err)

	x, err := ParseFile(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, &ast.Class{Name: "Empty"}, x)

	_, err = ParseFile(context.Background(), filepath.Join(dir, "Missing.jack"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
