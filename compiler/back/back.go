package back

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/toonketels/jack-compiler/compiler/ast"
	"github.com/toonketels/jack-compiler/compiler/symtab"
	"github.com/toonketels/jack-compiler/compiler/vm"
)

type (
	Compiler struct{}

	classContext struct {
		*ast.Class

		sym *symtab.Table
	}

	lowering func(b []byte) []byte

	UnsupportedError struct {
		Construct string
	}
)

var ErrUnsupported = errors.New("unsupported construct")

var (
	// nil slots are operators without a lowering yet.
	binaryOps = [ast.NumOperators]lowering{
		ast.Plus: vm.Add,
		ast.Multiply: func(b []byte) []byte {
			return vm.Call(b, "Math.multiply", 2)
		},
	}

	unaryOps = [ast.NumOperators]lowering{}

	segments = [...]vm.Segment{
		symtab.Static:   vm.Static,
		symtab.Field:    vm.This,
		symtab.Argument: vm.Argument,
		symtab.Var:      vm.Local,
	}

	kinds = [...]symtab.Kind{
		ast.Static: symtab.Static,
		ast.Field:  symtab.Field,
	}
)

func New() *Compiler { return &Compiler{} }

// CompileClass appends the VM form of cls to b.
// It returns nil output on any error.
func (c *Compiler) CompileClass(ctx context.Context, b []byte, cls *ast.Class) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile class", "name", cls.Name, "fields", cls.FieldCount(), "subroutines", len(cls.Subroutines))
	defer tr.Finish("err", &err)

	p := &classContext{
		Class: cls,
		sym:   symtab.New(),
	}

	st := len(b)

	b, err = c.compileClass(ctx, b, p)
	if err != nil {
		return nil, err
	}

	tr.Printw("compiled", "size", len(b)-st)

	return b, nil
}

// Generate lowers a single node using sym and the enclosing class cls.
// Declarations define their names in sym and emit nothing.
func (c *Compiler) Generate(ctx context.Context, b []byte, sym *symtab.Table, cls *ast.Class, x ast.Node) (_ []byte, err error) {
	if cls == nil {
		return nil, errors.New("no enclosing class")
	}

	if sym == nil {
		return nil, errors.New("no symbol table")
	}

	p := &classContext{
		Class: cls,
		sym:   sym,
	}

	switch x := x.(type) {
	case *ast.Class:
		p.Class = x

		b, err = c.compileClass(ctx, b, p)
	case *ast.ClassVarDec:
		err = c.defineClassVars(ctx, p, x)
	case *ast.SubroutineDec:
		b, err = c.compileSubroutine(ctx, b, p, x)
	case *ast.SubroutineBody:
		b, err = c.compileStmts(ctx, b, p, x.Stmts)
	case *ast.VarDec:
		err = c.defineLocals(ctx, p, x)
	case ast.Statement:
		b, err = c.compileStmt(ctx, b, p, x)
	case *ast.Expression:
		b, err = c.compileExpr(ctx, b, p, x)
	case ast.Term:
		b, err = c.compileTerm(ctx, b, p, x)
	default:
		err = errors.New("unsupported node: %T", x)
	}

	if err != nil {
		return nil, err
	}

	return b, nil
}

func (c *Compiler) compileClass(ctx context.Context, b []byte, p *classContext) (_ []byte, err error) {
	for _, d := range p.Vars {
		err = c.defineClassVars(ctx, p, d)
		if err != nil {
			return nil, errors.Wrap(err, "class %v", p.Name)
		}
	}

	for _, s := range p.Subroutines {
		b, err = c.compileSubroutine(ctx, b, p, s)
		if err != nil {
			return nil, errors.Wrap(err, "subroutine %v.%v", p.Name, s.Name)
		}
	}

	return b, nil
}

func (c *Compiler) defineClassVars(ctx context.Context, p *classContext, d *ast.ClassVarDec) error {
	if d.Kind < 0 || int(d.Kind) >= len(kinds) {
		return errors.New("bad class var kind: %v", d.Kind)
	}

	for _, n := range d.Names {
		_, err := p.sym.Define(n, string(d.Type), kinds[d.Kind])
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Compiler) defineLocals(ctx context.Context, p *classContext, d *ast.VarDec) error {
	for _, n := range d.Names {
		_, err := p.sym.Define(n, string(d.Type), symtab.Var)
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Compiler) compileSubroutine(ctx context.Context, b []byte, p *classContext, x *ast.SubroutineDec) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile subroutine", "class", p.Name, "name", x.Name, "kind", x.Kind)
	defer tr.Finish("err", &err)

	if x.Body == nil {
		return nil, errors.New("no body")
	}

	p.sym.EnterSubroutine(x.Name)
	defer p.sym.LeaveSubroutine()

	// TODO: methods need argument 0 reserved for the receiver
	// and "push argument 0; pop pointer 0" before the body.

	for _, a := range x.Params {
		_, err = p.sym.Define(a.Name, string(a.Type), symtab.Argument)
		if err != nil {
			return nil, errors.Wrap(err, "param")
		}
	}

	for _, d := range x.Body.Vars {
		err = c.defineLocals(ctx, p, d)
		if err != nil {
			return nil, errors.Wrap(err, "var")
		}
	}

	b = vm.Function(b, p.Name+"."+x.Name, p.sym.LocalCount())

	if x.Kind == ast.Constructor {
		b = vm.Push(b, vm.Constant, p.FieldCount())
		b = vm.Call(b, "Memory.alloc", 1)
		b = vm.Pop(b, vm.Pointer, 0)
	}

	b, err = c.compileStmts(ctx, b, p, x.Body.Stmts)
	if err != nil {
		return nil, err
	}

	tr.Printw("subroutine compiled", "args", p.sym.Count(symtab.Argument), "locals", p.sym.LocalCount())

	return b, nil
}

func (c *Compiler) compileStmts(ctx context.Context, b []byte, p *classContext, list []ast.Statement) (_ []byte, err error) {
	for i, s := range list {
		b, err = c.compileStmt(ctx, b, p, s)
		if err != nil {
			return nil, errors.Wrap(err, "statement %d", i)
		}
	}

	return b, nil
}

func (c *Compiler) compileStmt(ctx context.Context, b []byte, p *classContext, x ast.Statement) (_ []byte, err error) {
	switch s := x.(type) {
	case *ast.LetStmt:
		if s.Index != nil {
			return nil, NewUnsupported("ArrayAccess")
		}

		e, err := p.sym.Lookup(s.Name)
		if err != nil {
			return nil, errors.Wrap(err, "let")
		}

		b, err = c.compileExpr(ctx, b, p, s.Value)
		if err != nil {
			return nil, errors.Wrap(err, "let %v", s.Name)
		}

		b = vm.Pop(b, segments[e.Kind], e.Index)
	case *ast.DoStmt:
		b, err = c.compileCall(ctx, b, p, s.Call)
		if err != nil {
			return nil, errors.Wrap(err, "do")
		}

		b = vm.Pop(b, vm.Temp, 0)
	case *ast.ReturnStmt:
		if s.Value == nil {
			b = vm.Push(b, vm.Constant, 0)
		} else {
			b, err = c.compileExpr(ctx, b, p, s.Value)
			if err != nil {
				return nil, errors.Wrap(err, "return")
			}
		}

		b = vm.Return(b)
	case *ast.IfStmt:
		return nil, NewUnsupported("IfStatement")
	case *ast.WhileStmt:
		return nil, NewUnsupported("WhileStatement")
	default:
		return nil, errors.New("unsupported stmt: %T", x)
	}

	return b, nil
}

func (c *Compiler) compileExpr(ctx context.Context, b []byte, p *classContext, x *ast.Expression) (_ []byte, err error) {
	if x == nil {
		return nil, errors.New("nil expression")
	}

	var op lowering

	if x.Rest != nil {
		op, err = lookupOp(binaryOps[:], x.Rest.Op, "")
		if err != nil {
			return nil, err
		}
	}

	b, err = c.compileTerm(ctx, b, p, x.Term)
	if err != nil {
		return nil, err
	}

	if x.Rest == nil {
		return b, nil
	}

	b, err = c.compileTerm(ctx, b, p, x.Rest.Term)
	if err != nil {
		return nil, errors.Wrap(err, "%v term", x.Rest.Op)
	}

	return op(b), nil
}

func (c *Compiler) compileTerm(ctx context.Context, b []byte, p *classContext, x ast.Term) (_ []byte, err error) {
	switch t := x.(type) {
	case ast.IntConst:
		if t < 0 || t > ast.MaxInt {
			return nil, errors.New("integer constant out of range: %d", int(t))
		}

		b = vm.Push(b, vm.Constant, int(t))
	case ast.KeywordConst:
		if t != ast.This {
			return nil, NewUnsupported("KeywordConstant " + string(t))
		}

		b = vm.Push(b, vm.Pointer, 0)
	case ast.StringConst:
		return nil, NewUnsupported("StringConstant")
	case *ast.Var:
		e, err := p.sym.Lookup(t.Name)
		if err != nil {
			return nil, err
		}

		if e.Kind == symtab.Field {
			return nil, NewUnsupported("FieldRead")
		}

		b = vm.Push(b, segments[e.Kind], e.Index)
	case *ast.Index:
		return nil, NewUnsupported("ArrayAccess")
	case *ast.Paren:
		b, err = c.compileExpr(ctx, b, p, t.X)
		if err != nil {
			return nil, errors.Wrap(err, "paren")
		}
	case *ast.Unary:
		op, err := lookupOp(unaryOps[:], t.Op, "unary ")
		if err != nil {
			return nil, err
		}

		b, err = c.compileTerm(ctx, b, p, t.X)
		if err != nil {
			return nil, errors.Wrap(err, "unary %v", t.Op)
		}

		b = op(b)
	case ast.SubroutineCall:
		b, err = c.compileCall(ctx, b, p, t)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported term: %T", x)
	}

	return b, nil
}

func (c *Compiler) compileCall(ctx context.Context, b []byte, p *classContext, x ast.SubroutineCall) (_ []byte, err error) {
	switch f := x.(type) {
	case *ast.QualifiedCall:
		for i, a := range f.Args {
			b, err = c.compileExpr(ctx, b, p, a)
			if err != nil {
				return nil, errors.Wrap(err, "%v.%v arg %d", f.Target, f.Name, i)
			}
		}

		b = vm.Call(b, f.Target+"."+f.Name, len(f.Args))
	case *ast.Call:
		return nil, NewUnsupported("UnqualifiedCall")
	default:
		return nil, errors.New("unsupported call: %T", x)
	}

	return b, nil
}

func lookupOp(tab []lowering, op ast.Operator, pos string) (lowering, error) {
	if op < 0 || int(op) >= len(tab) || tab[op] == nil {
		return nil, NewUnsupported(pos + op.String())
	}

	return tab[op], nil
}

func NewUnsupported(construct string) UnsupportedError {
	return UnsupportedError{
		Construct: construct,
	}
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported construct: %v", e.Construct)
}

func (e UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}
