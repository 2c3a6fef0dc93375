package ast

type (
	Operator int

	KeywordConst string
)

const (
	Plus Operator = iota
	Minus
	Multiply
	Divided
	And
	Or
	LessThan
	GreaterThan
	Equals
	Negate

	NumOperators
)

const (
	True  KeywordConst = "true"
	False KeywordConst = "false"
	Null  KeywordConst = "null"
	This  KeywordConst = "this"
)

var (
	opSymbols = [NumOperators]string{
		Plus:        "+",
		Minus:       "-",
		Multiply:    "*",
		Divided:     "/",
		And:         "&",
		Or:          "|",
		LessThan:    "<",
		GreaterThan: ">",
		Equals:      "=",
		Negate:      "~",
	}

	opNames = [NumOperators]string{
		Plus:        "PLUS",
		Minus:       "MINUS",
		Multiply:    "MULTIPLY",
		Divided:     "DIVIDED",
		And:         "AND",
		Or:          "OR",
		LessThan:    "LESS_THAN",
		GreaterThan: "GREATER_THAN",
		Equals:      "EQUALS",
		Negate:      "NEGATE",
	}
)

// BinaryOperator returns the operator spelled s in binary position.
func BinaryOperator(s string) (Operator, bool) {
	for op, sym := range opSymbols {
		if sym == s && Operator(op) != Negate {
			return Operator(op), true
		}
	}

	return 0, false
}

// UnaryOperator returns the operator spelled s in unary position.
func UnaryOperator(s string) (Operator, bool) {
	switch s {
	case "-":
		return Minus, true
	case "~":
		return Negate, true
	}

	return 0, false
}

// Symbol is the operator as written in source, unescaped.
func (op Operator) Symbol() string {
	if op < 0 || op >= NumOperators {
		return "?"
	}

	return opSymbols[op]
}

func (op Operator) String() string {
	if op < 0 || op >= NumOperators {
		return "Operator(?)"
	}

	return opNames[op]
}

func (k KeywordConst) Valid() bool {
	switch k {
	case True, False, Null, This:
		return true
	}

	return false
}
