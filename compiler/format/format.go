package format

import (
	"context"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/toonketels/jack-compiler/compiler/ast"
)

// XML appends the parse tree form of x to b.
// Output depends only on x, so equal trees give equal bytes.
func XML(ctx context.Context, b []byte, x ast.Node) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "format: xml", "typ", tlog.NextAsType, x)
	defer tr.Finish("err", &err)

	st := len(b)

	b, err = format(ctx, b, x, 0)
	if err != nil {
		return nil, err
	}

	tr.Printw("formatted", "size", len(b)-st)

	return b, nil
}

func format(ctx context.Context, b []byte, x ast.Node, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.Class:
		return formatClass(ctx, b, x, d)
	case *ast.ClassVarDec:
		return formatClassVarDec(b, x, d), nil
	case *ast.SubroutineDec:
		return formatSubroutine(ctx, b, x, d)
	case *ast.SubroutineBody:
		return formatBody(ctx, b, x, d)
	case *ast.VarDec:
		return formatVarDec(b, x, d), nil
	case ast.Statement:
		return formatStmt(ctx, b, x, d)
	case *ast.Expression:
		return formatExpr(ctx, b, x, d)
	case ast.Term:
		return formatTerm(ctx, b, x, d)
	default:
		return nil, errors.New("unsupported node: %T", x)
	}
}

func formatClass(ctx context.Context, b []byte, x *ast.Class, d int) (_ []byte, err error) {
	b = open(b, d, "class")
	b = leaf(b, d+1, "keyword", "class")
	b = leaf(b, d+1, "identifier", x.Name)
	b = leaf(b, d+1, "symbol", "{")

	for _, v := range x.Vars {
		b = formatClassVarDec(b, v, d+1)
	}

	for _, s := range x.Subroutines {
		b, err = formatSubroutine(ctx, b, s, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "subroutine %v", s.Name)
		}
	}

	b = leaf(b, d+1, "symbol", "}")
	b = closeTag(b, d, "class")

	return b, nil
}

func formatClassVarDec(b []byte, x *ast.ClassVarDec, d int) []byte {
	b = open(b, d, "classVarDec")
	b = leaf(b, d+1, "keyword", x.Kind.String())
	b = typeLeaf(b, d+1, x.Type)
	b = names(b, d+1, x.Names)
	b = leaf(b, d+1, "symbol", ";")
	b = closeTag(b, d, "classVarDec")

	return b
}

func formatSubroutine(ctx context.Context, b []byte, x *ast.SubroutineDec, d int) (_ []byte, err error) {
	if x.Body == nil {
		return nil, errors.New("no body")
	}

	b = open(b, d, "subroutineDec")
	b = leaf(b, d+1, "keyword", x.Kind.String())
	b = typeLeaf(b, d+1, x.Return)
	b = leaf(b, d+1, "identifier", x.Name)
	b = leaf(b, d+1, "symbol", "(")

	b = open(b, d+1, "parameterList")

	for i, p := range x.Params {
		if i != 0 {
			b = leaf(b, d+2, "symbol", ",")
		}

		b = typeLeaf(b, d+2, p.Type)
		b = leaf(b, d+2, "identifier", p.Name)
	}

	b = closeTag(b, d+1, "parameterList")
	b = leaf(b, d+1, "symbol", ")")

	b, err = formatBody(ctx, b, x.Body, d+1)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	b = closeTag(b, d, "subroutineDec")

	return b, nil
}

func formatBody(ctx context.Context, b []byte, x *ast.SubroutineBody, d int) (_ []byte, err error) {
	b = open(b, d, "subroutineBody")
	b = leaf(b, d+1, "symbol", "{")

	for _, v := range x.Vars {
		b = formatVarDec(b, v, d+1)
	}

	b, err = formatStmts(ctx, b, x.Stmts, d+1)
	if err != nil {
		return nil, err
	}

	b = leaf(b, d+1, "symbol", "}")
	b = closeTag(b, d, "subroutineBody")

	return b, nil
}

func formatVarDec(b []byte, x *ast.VarDec, d int) []byte {
	b = open(b, d, "varDec")
	b = leaf(b, d+1, "keyword", "var")
	b = typeLeaf(b, d+1, x.Type)
	b = names(b, d+1, x.Names)
	b = leaf(b, d+1, "symbol", ";")
	b = closeTag(b, d, "varDec")

	return b
}

func formatStmts(ctx context.Context, b []byte, list []ast.Statement, d int) (_ []byte, err error) {
	b = open(b, d, "statements")

	for i, s := range list {
		b, err = formatStmt(ctx, b, s, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "statement %d", i)
		}
	}

	b = closeTag(b, d, "statements")

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, x ast.Statement, d int) (_ []byte, err error) {
	switch s := x.(type) {
	case *ast.LetStmt:
		b = open(b, d, "letStatement")
		b = leaf(b, d+1, "keyword", "let")
		b = leaf(b, d+1, "identifier", s.Name)

		if s.Index != nil {
			b = leaf(b, d+1, "symbol", "[")

			b, err = formatExpr(ctx, b, s.Index, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "index")
			}

			b = leaf(b, d+1, "symbol", "]")
		}

		b = leaf(b, d+1, "symbol", "=")

		b, err = formatExpr(ctx, b, s.Value, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "value")
		}

		b = leaf(b, d+1, "symbol", ";")
		b = closeTag(b, d, "letStatement")
	case *ast.IfStmt:
		b = open(b, d, "ifStatement")
		b = leaf(b, d+1, "keyword", "if")

		b, err = formatCond(ctx, b, s.Cond, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "if cond")
		}

		b, err = formatBlock(ctx, b, s.Then, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}

		if s.Else != nil {
			b = leaf(b, d+1, "keyword", "else")

			b, err = formatBlock(ctx, b, s.Else, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "else")
			}
		}

		b = closeTag(b, d, "ifStatement")
	case *ast.WhileStmt:
		b = open(b, d, "whileStatement")
		b = leaf(b, d+1, "keyword", "while")

		b, err = formatCond(ctx, b, s.Cond, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "while cond")
		}

		b, err = formatBlock(ctx, b, s.Body, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "body")
		}

		b = closeTag(b, d, "whileStatement")
	case *ast.DoStmt:
		b = open(b, d, "doStatement")
		b = leaf(b, d+1, "keyword", "do")

		b, err = formatCall(ctx, b, s.Call, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "call")
		}

		b = leaf(b, d+1, "symbol", ";")
		b = closeTag(b, d, "doStatement")
	case *ast.ReturnStmt:
		b = open(b, d, "returnStatement")
		b = leaf(b, d+1, "keyword", "return")

		if s.Value != nil {
			b, err = formatExpr(ctx, b, s.Value, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "value")
			}
		}

		b = leaf(b, d+1, "symbol", ";")
		b = closeTag(b, d, "returnStatement")
	default:
		return nil, errors.New("unsupported stmt: %T", x)
	}

	return b, nil
}

func formatCond(ctx context.Context, b []byte, x *ast.Expression, d int) (_ []byte, err error) {
	b = leaf(b, d, "symbol", "(")

	b, err = formatExpr(ctx, b, x, d)
	if err != nil {
		return nil, err
	}

	b = leaf(b, d, "symbol", ")")

	return b, nil
}

func formatBlock(ctx context.Context, b []byte, list []ast.Statement, d int) (_ []byte, err error) {
	b = leaf(b, d, "symbol", "{")

	b, err = formatStmts(ctx, b, list, d)
	if err != nil {
		return nil, err
	}

	b = leaf(b, d, "symbol", "}")

	return b, nil
}

func formatExpr(ctx context.Context, b []byte, x *ast.Expression, d int) (_ []byte, err error) {
	if x == nil {
		return nil, errors.New("nil expression")
	}

	b = open(b, d, "expression")

	b, err = formatTerm(ctx, b, x.Term, d+1)
	if err != nil {
		return nil, errors.Wrap(err, "term")
	}

	if x.Rest != nil {
		b = leaf(b, d+1, "symbol", x.Rest.Op.Symbol())

		b, err = formatTerm(ctx, b, x.Rest.Term, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "%v term", x.Rest.Op)
		}
	}

	b = closeTag(b, d, "expression")

	return b, nil
}

func formatTerm(ctx context.Context, b []byte, x ast.Term, d int) (_ []byte, err error) {
	b = open(b, d, "term")

	switch t := x.(type) {
	case ast.IntConst:
		b = leaf(b, d+1, "integerConstant", strconv.Itoa(int(t)))
	case ast.StringConst:
		b = leaf(b, d+1, "stringConstant", string(t))
	case ast.KeywordConst:
		b = leaf(b, d+1, "keyword", string(t))
	case *ast.Var:
		b = leaf(b, d+1, "identifier", t.Name)
	case *ast.Index:
		b = leaf(b, d+1, "identifier", t.Name)
		b = leaf(b, d+1, "symbol", "[")

		b, err = formatExpr(ctx, b, t.Index, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "index")
		}

		b = leaf(b, d+1, "symbol", "]")
	case *ast.Paren:
		b = leaf(b, d+1, "symbol", "(")

		b, err = formatExpr(ctx, b, t.X, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "paren")
		}

		b = leaf(b, d+1, "symbol", ")")
	case *ast.Unary:
		b = leaf(b, d+1, "symbol", t.Op.Symbol())

		b, err = formatTerm(ctx, b, t.X, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "unary %v", t.Op)
		}
	case ast.SubroutineCall:
		b, err = formatCall(ctx, b, t, d+1)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported term: %T", x)
	}

	b = closeTag(b, d, "term")

	return b, nil
}

func formatCall(ctx context.Context, b []byte, x ast.SubroutineCall, d int) (_ []byte, err error) {
	var args []*ast.Expression

	switch c := x.(type) {
	case *ast.Call:
		b = leaf(b, d, "identifier", c.Name)
		args = c.Args
	case *ast.QualifiedCall:
		b = leaf(b, d, "identifier", c.Target)
		b = leaf(b, d, "symbol", ".")
		b = leaf(b, d, "identifier", c.Name)
		args = c.Args
	default:
		return nil, errors.New("unsupported call: %T", x)
	}

	b = leaf(b, d, "symbol", "(")
	b = open(b, d, "expressionList")

	for i, a := range args {
		if i != 0 {
			b = leaf(b, d+1, "symbol", ",")
		}

		b, err = formatExpr(ctx, b, a, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "arg %d", i)
		}
	}

	b = closeTag(b, d, "expressionList")
	b = leaf(b, d, "symbol", ")")

	return b, nil
}

func names(b []byte, d int, list []string) []byte {
	for i, n := range list {
		if i != 0 {
			b = leaf(b, d, "symbol", ",")
		}

		b = leaf(b, d, "identifier", n)
	}

	return b
}

func typeLeaf(b []byte, d int, t ast.Type) []byte {
	if t.Primitive() {
		return leaf(b, d, "keyword", string(t))
	}

	return leaf(b, d, "identifier", string(t))
}

func open(b []byte, d int, tag string) []byte {
	return app(b, d, "<%s>\n", tag)
}

func closeTag(b []byte, d int, tag string) []byte {
	return app(b, d, "</%s>\n", tag)
}

func leaf(b []byte, d int, tag, text string) []byte {
	b = app(b, d, "<%s> ", tag)
	b = escape(b, text)
	b = hfmt.Appendf(b, " </%s>\n", tag)

	return b
}

func escape(b []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			b = append(b, "&lt;"...)
		case '>':
			b = append(b, "&gt;"...)
		case '&':
			b = append(b, "&amp;"...)
		case '"':
			b = append(b, "&quot;"...)
		default:
			b = append(b, c)
		}
	}

	return b
}

func app(b []byte, d int, f string, args ...any) []byte {
	const spaces = "                                "

	for d*2 > len(spaces) {
		b = append(b, spaces...)
		d -= len(spaces) / 2
	}

	b = append(b, spaces[:d*2]...)
	b = hfmt.Appendf(b, f, args...)

	return b
}
