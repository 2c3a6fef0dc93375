package parse

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/toonketels/jack-compiler/compiler/ast"
	"github.com/toonketels/jack-compiler/compiler/lex"
)

type (
	State struct {
		b    []byte
		toks []lex.Token
		i    int
	}

	ExpectedError struct {
		Want string
		Got  lex.Token
		Pos  lex.Pos
	}

	TrailingError struct {
		Got lex.Token
		Pos lex.Pos
	}
)

var ErrOperatorChain = errors.New("more than one operator in expression, use parentheses")

func ParseFile(ctx context.Context, name string) (*ast.Class, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(data), "name", name)

	return Parse(ctx, data)
}

// Parse reads exactly one class declaration from text.
func Parse(ctx context.Context, text []byte) (x *ast.Class, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "size", len(text))
	defer tr.Finish("err", &err)

	toks, err := lex.Tokens(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "tokenize")
	}

	s := &State{
		b:    text,
		toks: toks,
	}

	x, err = s.class()
	if err != nil {
		return nil, err
	}

	if t := s.peek(); t.Kind != lex.EOF {
		return nil, &TrailingError{Got: t, Pos: s.pos(t)}
	}

	tr.Printw("parsed", "class", x.Name, "vars", len(x.Vars), "subroutines", len(x.Subroutines))

	return x, nil
}

func (s *State) class() (x *ast.Class, err error) {
	if err = s.keyword("class"); err != nil {
		return nil, err
	}

	x = &ast.Class{}

	x.Name, err = s.ident()
	if err != nil {
		return nil, errors.Wrap(err, "class name")
	}

	if err = s.symbol("{"); err != nil {
		return nil, errors.Wrap(err, "class %v", x.Name)
	}

	for s.isKeyword("static", "field") {
		d, err := s.classVarDec()
		if err != nil {
			return nil, errors.Wrap(err, "class %v", x.Name)
		}

		x.Vars = append(x.Vars, d)
	}

	for s.isKeyword("constructor", "function", "method") {
		d, err := s.subroutineDec()
		if err != nil {
			return nil, errors.Wrap(err, "class %v", x.Name)
		}

		x.Subroutines = append(x.Subroutines, d)
	}

	if err = s.symbol("}"); err != nil {
		return nil, errors.Wrap(err, "class %v", x.Name)
	}

	return x, nil
}

func (s *State) classVarDec() (_ *ast.ClassVarDec, err error) {
	x := &ast.ClassVarDec{Kind: ast.Field}

	if s.next().Text == "static" {
		x.Kind = ast.Static
	}

	x.Type, err = s.typ(false)
	if err != nil {
		return nil, err
	}

	x.Names, err = s.names()
	if err != nil {
		return nil, errors.Wrap(err, "%v %v", x.Kind, x.Type)
	}

	return x, nil
}

func (s *State) subroutineDec() (_ *ast.SubroutineDec, err error) {
	x := &ast.SubroutineDec{}

	switch s.next().Text {
	case "constructor":
		x.Kind = ast.Constructor
	case "function":
		x.Kind = ast.Function
	default:
		x.Kind = ast.Method
	}

	x.Return, err = s.typ(true)
	if err != nil {
		return nil, errors.Wrap(err, "return type")
	}

	x.Name, err = s.ident()
	if err != nil {
		return nil, errors.Wrap(err, "%v name", x.Kind)
	}

	if err = s.symbol("("); err != nil {
		return nil, errors.Wrap(err, "subroutine %v", x.Name)
	}

	for !s.isSymbol(")") {
		if len(x.Params) != 0 {
			if err = s.symbol(","); err != nil {
				return nil, errors.Wrap(err, "subroutine %v params", x.Name)
			}
		}

		var p ast.Param

		p.Type, err = s.typ(false)
		if err != nil {
			return nil, errors.Wrap(err, "subroutine %v param type", x.Name)
		}

		p.Name, err = s.ident()
		if err != nil {
			return nil, errors.Wrap(err, "subroutine %v param name", x.Name)
		}

		x.Params = append(x.Params, p)
	}

	s.next()

	x.Body, err = s.body()
	if err != nil {
		return nil, errors.Wrap(err, "subroutine %v", x.Name)
	}

	return x, nil
}

func (s *State) body() (_ *ast.SubroutineBody, err error) {
	if err = s.symbol("{"); err != nil {
		return nil, err
	}

	x := &ast.SubroutineBody{}

	for s.isKeyword("var") {
		s.next()

		d := &ast.VarDec{}

		d.Type, err = s.typ(false)
		if err != nil {
			return nil, errors.Wrap(err, "var")
		}

		d.Names, err = s.names()
		if err != nil {
			return nil, errors.Wrap(err, "var %v", d.Type)
		}

		x.Vars = append(x.Vars, d)
	}

	x.Stmts, err = s.statements()
	if err != nil {
		return nil, err
	}

	return x, nil
}

// statements parses up to and including the closing brace.
func (s *State) statements() (list []ast.Statement, err error) {
	for !s.isSymbol("}") {
		x, err := s.statement()
		if err != nil {
			return nil, errors.Wrap(err, "statement %d", len(list))
		}

		list = append(list, x)
	}

	s.next()

	if list == nil {
		list = []ast.Statement{}
	}

	return list, nil
}

func (s *State) block() ([]ast.Statement, error) {
	if err := s.symbol("{"); err != nil {
		return nil, err
	}

	return s.statements()
}

func (s *State) statement() (_ ast.Statement, err error) {
	t := s.peek()
	if t.Kind != lex.Keyword {
		return nil, s.expected("statement", t)
	}

	switch t.Text {
	case "let":
		s.next()

		x := &ast.LetStmt{}

		x.Name, err = s.ident()
		if err != nil {
			return nil, errors.Wrap(err, "let")
		}

		if s.isSymbol("[") {
			s.next()

			x.Index, err = s.expr()
			if err != nil {
				return nil, errors.Wrap(err, "let %v index", x.Name)
			}

			if err = s.symbol("]"); err != nil {
				return nil, errors.Wrap(err, "let %v index", x.Name)
			}
		}

		if err = s.symbol("="); err != nil {
			return nil, errors.Wrap(err, "let %v", x.Name)
		}

		x.Value, err = s.expr()
		if err != nil {
			return nil, errors.Wrap(err, "let %v", x.Name)
		}

		if err = s.symbol(";"); err != nil {
			return nil, errors.Wrap(err, "let %v", x.Name)
		}

		return x, nil
	case "if":
		s.next()

		x := &ast.IfStmt{}

		x.Cond, err = s.cond()
		if err != nil {
			return nil, errors.Wrap(err, "if cond")
		}

		x.Then, err = s.block()
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}

		if s.isKeyword("else") {
			s.next()

			x.Else, err = s.block()
			if err != nil {
				return nil, errors.Wrap(err, "else")
			}
		}

		return x, nil
	case "while":
		s.next()

		x := &ast.WhileStmt{}

		x.Cond, err = s.cond()
		if err != nil {
			return nil, errors.Wrap(err, "while cond")
		}

		x.Body, err = s.block()
		if err != nil {
			return nil, errors.Wrap(err, "while body")
		}

		return x, nil
	case "do":
		s.next()

		name, err := s.ident()
		if err != nil {
			return nil, errors.Wrap(err, "do")
		}

		call, err := s.call(name)
		if err != nil {
			return nil, errors.Wrap(err, "do")
		}

		if err = s.symbol(";"); err != nil {
			return nil, errors.Wrap(err, "do")
		}

		return &ast.DoStmt{Call: call}, nil
	case "return":
		s.next()

		x := &ast.ReturnStmt{}

		if !s.isSymbol(";") {
			x.Value, err = s.expr()
			if err != nil {
				return nil, errors.Wrap(err, "return")
			}
		}

		if err = s.symbol(";"); err != nil {
			return nil, errors.Wrap(err, "return")
		}

		return x, nil
	default:
		return nil, s.expected("statement", t)
	}
}

func (s *State) cond() (x *ast.Expression, err error) {
	if err = s.symbol("("); err != nil {
		return nil, err
	}

	x, err = s.expr()
	if err != nil {
		return nil, err
	}

	if err = s.symbol(")"); err != nil {
		return nil, err
	}

	return x, nil
}

func (s *State) expr() (_ *ast.Expression, err error) {
	x := &ast.Expression{}

	x.Term, err = s.term()
	if err != nil {
		return nil, err
	}

	op, ok := s.binaryOp()
	if !ok {
		return x, nil
	}

	s.next()

	r, err := s.term()
	if err != nil {
		return nil, errors.Wrap(err, "%v", op)
	}

	x.Rest = &ast.OpTerm{Op: op, Term: r}

	if _, ok := s.binaryOp(); ok {
		t := s.peek()

		return nil, &lex.Error{Pos: s.pos(t), Err: ErrOperatorChain}
	}

	return x, nil
}

func (s *State) binaryOp() (ast.Operator, bool) {
	t := s.peek()
	if t.Kind != lex.Symbol {
		return 0, false
	}

	return ast.BinaryOperator(t.Text)
}

func (s *State) term() (_ ast.Term, err error) {
	t := s.next()

	switch t.Kind {
	case lex.IntConst:
		v, err := strconv.Atoi(t.Text)
		if err != nil {
			return nil, errors.Wrap(err, "integer constant")
		}

		return ast.IntConst(v), nil
	case lex.StringConst:
		return ast.StringConst(t.Text), nil
	case lex.Keyword:
		k := ast.KeywordConst(t.Text)
		if !k.Valid() {
			return nil, s.expected("term", t)
		}

		return k, nil
	case lex.Identifier:
		switch {
		case s.isSymbol("["):
			s.next()

			idx, err := s.expr()
			if err != nil {
				return nil, errors.Wrap(err, "%v index", t.Text)
			}

			if err = s.symbol("]"); err != nil {
				return nil, errors.Wrap(err, "%v index", t.Text)
			}

			return &ast.Index{Name: t.Text, Index: idx}, nil
		case s.isSymbol("("), s.isSymbol("."):
			return s.call(t.Text)
		}

		return &ast.Var{Name: t.Text}, nil
	case lex.Symbol:
		if t.Text == "(" {
			x, err := s.expr()
			if err != nil {
				return nil, errors.Wrap(err, "paren")
			}

			if err = s.symbol(")"); err != nil {
				return nil, errors.Wrap(err, "paren")
			}

			return &ast.Paren{X: x}, nil
		}

		if op, ok := ast.UnaryOperator(t.Text); ok {
			x, err := s.term()
			if err != nil {
				return nil, errors.Wrap(err, "unary %v", op)
			}

			return &ast.Unary{Op: op, X: x}, nil
		}
	}

	return nil, s.expected("term", t)
}

// call parses the rest of a subroutine call after its first identifier.
func (s *State) call(first string) (_ ast.SubroutineCall, err error) {
	var target string

	name := first

	if s.isSymbol(".") {
		s.next()

		target = first

		name, err = s.ident()
		if err != nil {
			return nil, errors.Wrap(err, "call %v", first)
		}
	}

	if err = s.symbol("("); err != nil {
		return nil, errors.Wrap(err, "call %v", name)
	}

	var args []*ast.Expression

	for !s.isSymbol(")") {
		if len(args) != 0 {
			if err = s.symbol(","); err != nil {
				return nil, errors.Wrap(err, "call %v args", name)
			}
		}

		a, err := s.expr()
		if err != nil {
			return nil, errors.Wrap(err, "call %v arg %d", name, len(args))
		}

		args = append(args, a)
	}

	s.next()

	if target == "" {
		return &ast.Call{Name: name, Args: args}, nil
	}

	return &ast.QualifiedCall{Target: target, Name: name, Args: args}, nil
}

func (s *State) typ(void bool) (ast.Type, error) {
	t := s.next()

	switch {
	case t.Kind == lex.Identifier:
		return ast.Type(t.Text), nil
	case t.Kind == lex.Keyword && (t.Text == "int" || t.Text == "char" || t.Text == "boolean"):
		return ast.Type(t.Text), nil
	case t.Kind == lex.Keyword && void && t.Text == "void":
		return ast.Type(t.Text), nil
	}

	return "", s.expected("type", t)
}

// names parses "name (, name)* ;".
func (s *State) names() (list []string, err error) {
	for {
		n, err := s.ident()
		if err != nil {
			return nil, err
		}

		list = append(list, n)

		if !s.isSymbol(",") {
			break
		}

		s.next()
	}

	if err = s.symbol(";"); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *State) ident() (string, error) {
	t := s.next()
	if t.Kind != lex.Identifier {
		return "", s.expected("identifier", t)
	}

	return t.Text, nil
}

func (s *State) symbol(sym string) error {
	t := s.next()
	if t.Kind != lex.Symbol || t.Text != sym {
		return s.expected(strconv.Quote(sym), t)
	}

	return nil
}

func (s *State) keyword(kw string) error {
	t := s.next()
	if t.Kind != lex.Keyword || t.Text != kw {
		return s.expected(strconv.Quote(kw), t)
	}

	return nil
}

func (s *State) isSymbol(sym string) bool {
	t := s.peek()

	return t.Kind == lex.Symbol && t.Text == sym
}

func (s *State) isKeyword(kws ...string) bool {
	t := s.peek()
	if t.Kind != lex.Keyword {
		return false
	}

	for _, kw := range kws {
		if t.Text == kw {
			return true
		}
	}

	return false
}

func (s *State) peek() lex.Token {
	return s.toks[s.i]
}

// next consumes a token. EOF is never consumed.
func (s *State) next() lex.Token {
	t := s.toks[s.i]

	if t.Kind != lex.EOF {
		s.i++
	}

	return t
}

func (s *State) pos(t lex.Token) lex.Pos {
	return lex.Position(s.b, t.Pos)
}

func (s *State) expected(want string, got lex.Token) *ExpectedError {
	return &ExpectedError{
		Want: want,
		Got:  got,
		Pos:  s.pos(got),
	}
}

func (e *ExpectedError) Error() string {
	return fmt.Sprintf("%v: %v expected, got %v", e.Pos, e.Want, e.Got)
}

func (e *TrailingError) Error() string {
	return fmt.Sprintf("%v: unexpected %v after class", e.Pos, e.Got)
}
