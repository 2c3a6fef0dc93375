package vm

import (
	"github.com/nikandfor/hacked/hfmt"
)

type (
	Segment string
)

const (
	Constant Segment = "constant"
	Argument Segment = "argument"
	Local    Segment = "local"
	Static   Segment = "static"
	This     Segment = "this"
	That     Segment = "that"
	Pointer  Segment = "pointer"
	Temp     Segment = "temp"
)

func Push(b []byte, seg Segment, idx int) []byte {
	return hfmt.Appendf(b, "push %s %d\n", seg, idx)
}

func Pop(b []byte, seg Segment, idx int) []byte {
	return hfmt.Appendf(b, "pop %s %d\n", seg, idx)
}

func Add(b []byte) []byte {
	return append(b, "add\n"...)
}

func Call(b []byte, name string, nargs int) []byte {
	return hfmt.Appendf(b, "call %s %d\n", name, nargs)
}

func Function(b []byte, name string, nlocals int) []byte {
	return hfmt.Appendf(b, "function %s %d\n", name, nlocals)
}

func Return(b []byte) []byte {
	return append(b, "return\n"...)
}
