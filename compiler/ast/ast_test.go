package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldCount(t *testing.T) {
	c := &Class{
		Name: "Point",
		Vars: []*ClassVarDec{
			{Kind: Field, Type: "int", Names: []string{"x", "y"}},
			{Kind: Static, Type: "int", Names: []string{"count", "max", "min"}},
			{Kind: Field, Type: "Point", Names: []string{"next"}},
		},
	}

	assert.Equal(t, 2, c.Vars[0].FieldCount())
	assert.Equal(t, 0, c.Vars[1].FieldCount())
	assert.Equal(t, 3, c.FieldCount())

	assert.Equal(t, 0, (&Class{Name: "Empty"}).FieldCount())
}

func TestVarCount(t *testing.T) {
	b := &SubroutineBody{
		Vars: []*VarDec{
			{Type: "int", Names: []string{"i", "j"}},
			{Type: "Array", Names: []string{"a"}},
		},
	}

	assert.Equal(t, 3, b.VarCount())
	assert.Equal(t, 0, (&SubroutineBody{}).VarCount())
}

func TestOperators(t *testing.T) {
	for op := Plus; op < NumOperators; op++ {
		assert.NotEqual(t, "?", op.Symbol(), "%d", op)
		assert.NotEqual(t, "Operator(?)", op.String(), "%d", op)
	}

	op, ok := BinaryOperator("<")
	assert.True(t, ok)
	assert.Equal(t, LessThan, op)

	_, ok = BinaryOperator("~")
	assert.False(t, ok)

	op, ok = UnaryOperator("-")
	assert.True(t, ok)
	assert.Equal(t, Minus, op)

	_, ok = UnaryOperator("+")
	assert.False(t, ok)

	assert.Equal(t, "MULTIPLY", Multiply.String())
	assert.Equal(t, "&", And.Symbol())
}

func TestTypePrimitive(t *testing.T) {
	assert.True(t, Type("int").Primitive())
	assert.True(t, Type("void").Primitive())
	assert.False(t, Type("String").Primitive())
	assert.True(t, This.Valid())
	assert.False(t, KeywordConst("self").Valid())
}
