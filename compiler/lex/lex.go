package lex

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/toonketels/jack-compiler/compiler/ast"
)

type (
	Kind int

	Token struct {
		Kind Kind
		Text string
		Pos  int
	}

	// Pos is a 1-based line and column.
	Pos struct {
		Line int
		Col  int
	}

	Error struct {
		Pos Pos
		Err error
	}
)

const (
	EOF Kind = iota
	Keyword
	Symbol
	Identifier
	IntConst
	StringConst
)

const MaxInt = ast.MaxInt

const symbols = "{}()[].,;+-*/&|<>=~"

var keywords = map[string]struct{}{
	"class": {}, "constructor": {}, "function": {}, "method": {},
	"field": {}, "static": {}, "var": {},
	"int": {}, "char": {}, "boolean": {}, "void": {},
	"true": {}, "false": {}, "null": {}, "this": {},
	"let": {}, "do": {}, "if": {}, "else": {}, "while": {}, "return": {},
}

var (
	ErrUnclosedComment = errors.New("unclosed comment")
	ErrUnclosedString  = errors.New("unclosed string")
	ErrIntRange        = errors.New("integer constant out of range")
	ErrUnexpectedChar  = errors.New("unexpected character")
)

// Tokens splits the whole text into tokens. The last token is always EOF.
func Tokens(ctx context.Context, b []byte) (toks []Token, err error) {
	i := 0

	for {
		var t Token

		t, i, err = Next(b, i)
		if err != nil {
			return nil, err
		}

		toks = append(toks, t)

		if t.Kind == EOF {
			break
		}
	}

	tlog.SpanFromContext(ctx).V("tokens").Printw("tokenized", "tokens", len(toks), "size", len(b))

	return toks, nil
}

// Next reads one token starting at st.
func Next(b []byte, st int) (t Token, i int, err error) {
	i, err = skipSpaces(b, st)
	if err != nil {
		return
	}

	st = i

	if i == len(b) {
		return Token{Kind: EOF, Pos: i}, i, nil
	}

	c := b[i]

	switch {
	case strings.IndexByte(symbols, c) >= 0:
		return Token{Kind: Symbol, Text: string(c), Pos: st}, i + 1, nil
	case c == '"':
		i++

		for i < len(b) && b[i] != '"' && b[i] != '\n' {
			i++
		}

		if i == len(b) || b[i] != '"' {
			return t, st, newError(b, st, ErrUnclosedString)
		}

		return Token{Kind: StringConst, Text: string(b[st+1 : i]), Pos: st}, i + 1, nil
	case isDigit(c):
		for i < len(b) && isDigit(b[i]) {
			i++
		}

		v, err := strconv.Atoi(string(b[st:i]))
		if err != nil || v > MaxInt {
			return t, st, newError(b, st, ErrIntRange)
		}

		return Token{Kind: IntConst, Text: string(b[st:i]), Pos: st}, i, nil
	case isLetter(c):
		for i < len(b) && (isLetter(b[i]) || isDigit(b[i])) {
			i++
		}

		text := string(b[st:i])

		k := Identifier
		if _, ok := keywords[text]; ok {
			k = Keyword
		}

		return Token{Kind: k, Text: text, Pos: st}, i, nil
	default:
		return t, st, newError(b, st, errors.Wrap(ErrUnexpectedChar, "%q", c))
	}
}

func skipSpaces(b []byte, i int) (int, error) {
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		case '/':
			if i+1 == len(b) {
				return i, nil
			}

			switch b[i+1] {
			case '/':
				for i < len(b) && b[i] != '\n' {
					i++
				}

				continue
			case '*':
				end := bytes.Index(b[i+2:], []byte("*/"))
				if end < 0 {
					return i, newError(b, i, ErrUnclosedComment)
				}

				i += 2 + end + 2

				continue
			}
		}

		break
	}

	return i, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

// Position converts a byte offset into a line and column.
func Position(b []byte, off int) Pos {
	if off > len(b) {
		off = len(b)
	}

	line := 1 + bytes.Count(b[:off], []byte{'\n'})
	col := off - bytes.LastIndexByte(b[:off], '\n')

	return Pos{Line: line, Col: col}
}

func newError(b []byte, off int, err error) *Error {
	return &Error{
		Pos: Position(b, off),
		Err: err,
	}
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Keyword:
		return "keyword"
	case Symbol:
		return "symbol"
	case Identifier:
		return "identifier"
	case IntConst:
		return "integerConstant"
	case StringConst:
		return "stringConstant"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "EOF"
	}

	return fmt.Sprintf("%v %q", t.Kind, t.Text)
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Pos, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
