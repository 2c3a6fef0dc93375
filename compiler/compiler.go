package compiler

import (
	"context"
	"path/filepath"
	"strings"

	"tlog.app/go/errors"

	"github.com/toonketels/jack-compiler/compiler/ast"
	"github.com/toonketels/jack-compiler/compiler/back"
	"github.com/toonketels/jack-compiler/compiler/format"
	"github.com/toonketels/jack-compiler/compiler/parse"
)

type (
	Target int
)

const (
	XML Target = iota
	VM
)

const SourceExt = ".jack"

func CompileFile(ctx context.Context, name string, target Target) (obj []byte, err error) {
	x, err := parse.ParseFile(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "parse %v", name)
	}

	return emit(ctx, name, x, target)
}

// Compile turns one source text into the target artifact.
// On error no output is returned.
func Compile(ctx context.Context, name string, text []byte, target Target) (obj []byte, err error) {
	x, err := parse.Parse(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse %v", name)
	}

	return emit(ctx, name, x, target)
}

func emit(ctx context.Context, name string, x *ast.Class, target Target) (obj []byte, err error) {
	switch target {
	case XML:
		obj, err = format.XML(ctx, nil, x)
	case VM:
		obj, err = back.New().CompileClass(ctx, nil, x)
	default:
		return nil, errors.New("unsupported target: %v", target)
	}

	if err != nil {
		return nil, errors.Wrap(err, "%v %v", target, name)
	}

	return obj, nil
}

// OutputName is the artifact path for source src.
// Empty dir means next to the source.
func OutputName(src, dir string, target Target) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + target.Ext()

	if dir == "" {
		dir = filepath.Dir(src)
	}

	return filepath.Join(dir, base)
}

func (t Target) Ext() string {
	switch t {
	case XML:
		return ".xml"
	case VM:
		return ".vm"
	default:
		return ""
	}
}

func (t Target) String() string {
	switch t {
	case XML:
		return "xml"
	case VM:
		return "vm"
	default:
		return "Target(?)"
	}
}
