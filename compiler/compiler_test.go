package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toonketels/jack-compiler/compiler/back"
	"github.com/toonketels/jack-compiler/compiler/parse"
)

const fooSource = `// Foo holds one field.
class Foo {
	field int x;

	constructor Foo new() {
		return this;
	}
}
`

func TestCompileVM(t *testing.T) {
	obj, err := Compile(context.Background(), "Foo.jack", []byte(fooSource), VM)
	require.NoError(t, err)

	assert.Equal(t, `function Foo.new 0
push constant 1
call Memory.alloc 1
pop pointer 0
push pointer 0
return
`, string(obj))
}

func TestCompileXML(t *testing.T) {
	ctx := context.Background()

	a, err := Compile(ctx, "Foo.jack", []byte(fooSource), XML)
	require.NoError(t, err)

	b, err := Compile(ctx, "Foo.jack", []byte(fooSource), XML)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(string(a), "<class>\n  <keyword> class </keyword>\n  <identifier> Foo </identifier>\n"), "%s", a)
	assert.True(t, strings.HasSuffix(string(a), "  <symbol> } </symbol>\n</class>\n"), "%s", a)
}

func TestCompileDo(t *testing.T) {
	obj, err := Compile(context.Background(), "Main.jack", []byte(`class Main {
	function void main() {
		do Foo.bar(1, 2);
		return;
	}
}`), VM)
	require.NoError(t, err)

	assert.Equal(t, `function Main.main 0
push constant 1
push constant 2
call Foo.bar 2
pop temp 0
push constant 0
return
`, string(obj))
}

func TestCompileUnsupported(t *testing.T) {
	src := []byte(`class Loop {
	function void run(int n) {
		do Sys.wait(n);
		while (n) { do Sys.wait(1); }
		return;
	}
}`)

	obj, err := Compile(context.Background(), "Loop.jack", src, VM)
	assert.ErrorIs(t, err, back.ErrUnsupported)
	assert.Nil(t, obj)

	obj, err = Compile(context.Background(), "Loop.jack", src, XML)
	require.NoError(t, err, "the parse tree form has no lowering gaps")
	assert.Contains(t, string(obj), "<whileStatement>")
}

func TestCompileParseError(t *testing.T) {
	obj, err := Compile(context.Background(), "Bad.jack", []byte("class Bad {"), XML)
	assert.Nil(t, obj)

	var perr *parse.ExpectedError
	assert.ErrorAs(t, err, &perr)
}

func TestSources(t *testing.T) {
	dir := t.TempDir()

	write(t, dir, "B.jack", "class B {}")
	write(t, dir, "A.jack", "class A {}")
	write(t, dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jack"), 0o755))

	files, err := Sources([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "A.jack"), filepath.Join(dir, "B.jack")}, files)

	files, err = Sources([]string{filepath.Join(dir, "B.jack")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "B.jack")}, files)

	_, err = Sources([]string{filepath.Join(dir, "notes.txt")})
	assert.ErrorIs(t, err, ErrNotSource)

	_, err = Sources([]string{filepath.Join(dir, "missing.jack")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompileFiles(t *testing.T) {
	dir := t.TempDir()

	names := []string{
		write(t, dir, "Foo.jack", fooSource),
		write(t, dir, "Bad.jack", "class Bad { function void f() { while (true) { } return; } }"),
		write(t, dir, "Broken.jack", "class {"),
		write(t, dir, "Empty.jack", "class Empty {}"),
	}

	res := CompileFiles(context.Background(), names, VM, 2)
	require.Len(t, res, len(names))

	for i, r := range res {
		assert.Equal(t, names[i], r.Name)
	}

	assert.NoError(t, res[0].Err)
	assert.Contains(t, string(res[0].Out), "function Foo.new 0\n")

	assert.ErrorIs(t, res[1].Err, back.ErrUnsupported)
	assert.Nil(t, res[1].Out)

	assert.Error(t, res[2].Err)
	assert.Nil(t, res[2].Out)

	assert.NoError(t, res[3].Err)
	assert.Empty(t, res[3].Out)
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()

	obj, err := CompileFile(context.Background(), write(t, dir, "Foo.jack", fooSource), VM)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "call Memory.alloc 1\n")

	obj, err = CompileFile(context.Background(), filepath.Join(dir, "Missing.jack"), VM)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, obj)
}

func TestCompileFilesCanceled(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := CompileFiles(ctx, []string{write(t, dir, "Foo.jack", fooSource)}, XML, 0)
	require.Len(t, res, 1)
	assert.ErrorIs(t, res[0].Err, context.Canceled)
}

func TestJobsOrder(t *testing.T) {
	d := []job{{idx: 0, size: 10}, {idx: 1, size: 30}, {idx: 2, size: 30}}

	assert.True(t, jobsLess(d, 1, 0))
	assert.True(t, jobsLess(d, 1, 2))
	assert.False(t, jobsLess(d, 0, 2))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, filepath.Join("src", "Foo.vm"), OutputName(filepath.Join("src", "Foo.jack"), "", VM))
	assert.Equal(t, filepath.Join("out", "Foo.xml"), OutputName(filepath.Join("src", "Foo.jack"), "out", XML))
}

func write(t *testing.T, dir, name, text string) string {
	t.Helper()

	p := filepath.Join(dir, name)

	err := os.WriteFile(p, []byte(text), 0o644)
	require.NoError(t, err)

	return p
}
