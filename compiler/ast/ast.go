package ast

type (
	Node interface {
		node()
	}

	Statement interface {
		Node
		stmt()
	}

	Term interface {
		Node
		term()
	}

	SubroutineCall interface {
		Term
		call()
	}

	Type string

	VarKind int

	SubroutineKind int

	Class struct {
		Name string

		Vars        []*ClassVarDec
		Subroutines []*SubroutineDec
	}

	ClassVarDec struct {
		Kind  VarKind
		Type  Type
		Names []string
	}

	SubroutineDec struct {
		Kind   SubroutineKind
		Return Type
		Name   string

		Params []Param

		Body *SubroutineBody
	}

	Param struct {
		Type Type
		Name string
	}

	SubroutineBody struct {
		Vars  []*VarDec
		Stmts []Statement
	}

	VarDec struct {
		Type  Type
		Names []string
	}

	// LetStmt assigns Value to Name, or to Name[Index] if Index is set.
	LetStmt struct {
		Name  string
		Index *Expression
		Value *Expression
	}

	IfStmt struct {
		Cond *Expression
		Then []Statement
		Else []Statement
	}

	WhileStmt struct {
		Cond *Expression
		Body []Statement
	}

	DoStmt struct {
		Call SubroutineCall
	}

	// ReturnStmt with nil Value is a void return.
	ReturnStmt struct {
		Value *Expression
	}

	// Expression holds one term and at most one trailing operation.
	// Longer chains are expressed with Paren terms.
	Expression struct {
		Term Term
		Rest *OpTerm
	}

	OpTerm struct {
		Op   Operator
		Term Term
	}

	IntConst    int
	StringConst string

	Var struct {
		Name string
	}

	Index struct {
		Name  string
		Index *Expression
	}

	Paren struct {
		X *Expression
	}

	Unary struct {
		Op Operator
		X  Term
	}

	Call struct {
		Name string
		Args []*Expression
	}

	QualifiedCall struct {
		Target string
		Name   string
		Args   []*Expression
	}
)

// MaxInt is the largest integer constant the VM can push.
const MaxInt = 32767

const (
	Static VarKind = iota
	Field
)

const (
	Constructor SubroutineKind = iota
	Function
	Method
)

func (c *Class) FieldCount() (n int) {
	for _, d := range c.Vars {
		n += d.FieldCount()
	}

	return n
}

func (d *ClassVarDec) FieldCount() int {
	if d.Kind != Field {
		return 0
	}

	return len(d.Names)
}

func (b *SubroutineBody) VarCount() (n int) {
	for _, d := range b.Vars {
		n += len(d.Names)
	}

	return n
}

func (t Type) Primitive() bool {
	switch t {
	case "int", "char", "boolean", "void":
		return true
	}

	return false
}

func (k VarKind) String() string {
	switch k {
	case Static:
		return "static"
	case Field:
		return "field"
	default:
		return "VarKind(?)"
	}
}

func (k SubroutineKind) String() string {
	switch k {
	case Constructor:
		return "constructor"
	case Function:
		return "function"
	case Method:
		return "method"
	default:
		return "SubroutineKind(?)"
	}
}

func (*Class) node()          {}
func (*ClassVarDec) node()    {}
func (*SubroutineDec) node()  {}
func (*SubroutineBody) node() {}
func (*VarDec) node()         {}
func (*Expression) node()     {}

func (*LetStmt) node()    {}
func (*IfStmt) node()     {}
func (*WhileStmt) node()  {}
func (*DoStmt) node()     {}
func (*ReturnStmt) node() {}

func (*LetStmt) stmt()    {}
func (*IfStmt) stmt()     {}
func (*WhileStmt) stmt()  {}
func (*DoStmt) stmt()     {}
func (*ReturnStmt) stmt() {}

func (IntConst) node()       {}
func (StringConst) node()    {}
func (KeywordConst) node()   {}
func (*Var) node()           {}
func (*Index) node()         {}
func (*Paren) node()         {}
func (*Unary) node()         {}
func (*Call) node()          {}
func (*QualifiedCall) node() {}

func (IntConst) term()       {}
func (StringConst) term()    {}
func (KeywordConst) term()   {}
func (*Var) term()           {}
func (*Index) term()         {}
func (*Paren) term()         {}
func (*Unary) term()         {}
func (*Call) term()          {}
func (*QualifiedCall) term() {}

func (*Call) call()          {}
func (*QualifiedCall) call() {}
