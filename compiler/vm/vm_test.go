package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriters(t *testing.T) {
	var b []byte

	b = Function(b, "Main.main", 2)
	b = Push(b, Constant, 7)
	b = Push(b, Argument, 1)
	b = Add(b)
	b = Call(b, "Math.multiply", 2)
	b = Pop(b, Local, 0)
	b = Pop(b, Temp, 0)
	b = Push(b, Pointer, 0)
	b = Return(b)

	assert.Equal(t, `function Main.main 2
push constant 7
push argument 1
add
call Math.multiply 2
pop local 0
pop temp 0
push pointer 0
return
`, string(b))
}
