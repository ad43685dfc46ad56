// Package ast defines the tree produced by the parser and consumed by the
// generator.
//
// Design: closed sum types via marker methods, the same shape the Go
// standard library uses for its own syntax trees. Nodes are immutable
// after construction and every node carries its source position.
package ast

// Pos is a 1-based source position. Col counts characters.
type Pos struct {
	Line int
	Col  int
}

type Node interface {
	node()
	Position() Pos
}

// Expr is any mathematical term or predicate.
type Expr interface {
	Node
	expr()
}

// Para is one top-level document item.
type Para interface {
	Node
	para()
}

// Document is the root of a parse: the ordered top-level items of one
// whiteboard source file.
type Document struct {
	Items []Para
}

// ---- Expressions ----

type UnaryKind int

const (
	OpNot UnaryKind = iota
	OpNeg
	OpCount  // # prefix
	OpPower  // P prefix
	OpFinset // F prefix
	OpInverse
	OpClosureStar
	OpClosurePlus
)

type BinKind int

const (
	OpIff BinKind = iota
	OpImplies
	OpOr
	OpAnd
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpIn
	OpNotin
	OpSubset
	OpSubseteq
	OpMaplet
	OpRel
	OpFun
	OpPfun
	OpInj
	OpSurj
	OpDres
	OpRres
	OpNdres
	OpNrres
	OpPlus
	OpMinus
	OpUnion
	OpSetminus
	OpCat
	OpStar
	OpDiv
	OpMod
	OpIntersect
	OpComp
	OpCross
)

type QuantKind int

const (
	QForall QuantKind = iota
	QExists
	QExists1
)

type BuiltinKind int

const (
	SetNat BuiltinKind = iota
	SetInt
)

// BinderGroup is one `x, y : T` clause. Groups separated by semicolons
// are independent entries in a binder list; names inside one group share
// the domain type.
type BinderGroup struct {
	Pos   Pos
	Names []string
	Type  Expr
}

type (
	Ident struct {
		Pos  Pos
		Name string
	}

	NumLit struct {
		Pos   Pos
		Value string
	}

	Builtin struct {
		Pos Pos
		Set BuiltinKind
	}

	UnaryOp struct {
		Pos     Pos
		Op      UnaryKind
		Operand Expr
	}

	BinOp struct {
		Pos   Pos
		Op    BinKind
		Left  Expr
		Right Expr
	}

	// Chain is a comparison chain like a < b <= c, equivalent to the
	// conjunction of its adjacent pairs but kept as one node so the
	// generator can render it without inserting connectives.
	Chain struct {
		Pos      Pos
		Operands []Expr // len(Operands) == len(Ops)+1
		Ops      []BinKind
	}

	Quantifier struct {
		Pos     Pos
		Q       QuantKind
		Binders []BinderGroup
		Pred    Expr
	}

	// Mu is a definite-description expression. Yield is nil when the
	// value of the bound variable itself is meant.
	Mu struct {
		Pos     Pos
		Binders []BinderGroup
		Pred    Expr
		Yield   Expr
	}

	Lambda struct {
		Pos     Pos
		Binders []BinderGroup
		Body    Expr
	}

	Cond struct {
		Pos  Pos
		Cond Expr
		Then Expr
		Else Expr
	}

	SetLit struct {
		Pos   Pos
		Elems []Expr
	}

	SeqLit struct {
		Pos   Pos
		Elems []Expr
	}

	BagLit struct {
		Pos   Pos
		Elems []Expr
	}

	// Compr is a set comprehension. Yield is nil when the characteristic
	// tuple of the binders is meant.
	Compr struct {
		Pos     Pos
		Binders []BinderGroup
		Pred    Expr
		Yield   Expr
	}

	Tuple struct {
		Pos   Pos
		Elems []Expr
	}

	// Proj selects one component of a tuple: t.1, t.2, ...
	Proj struct {
		Pos   Pos
		Tuple Expr
		Index int
	}

	// Apply is curried application; f x y parses as Apply(Apply(f,x),y)
	// and f(x, y) as Apply(f, Tuple(x, y)).
	Apply struct {
		Pos Pos
		Fn  Expr
		Arg Expr
	}

	GenericInst struct {
		Pos  Pos
		Fn   Expr
		Args []Expr
	}

	// Image is a relational image r(| s |).
	Image struct {
		Pos Pos
		Rel Expr
		Arg Expr
	}

	// Range is the integer range a .. b.
	Range struct {
		Pos Pos
		Lo  Expr
		Hi  Expr
	}

	// Iterate is relational iteration r^n.
	Iterate struct {
		Pos Pos
		Rel Expr
		Exp Expr
	}
)

func (x *Ident) Position() Pos       { return x.Pos }
func (x *NumLit) Position() Pos      { return x.Pos }
func (x *Builtin) Position() Pos     { return x.Pos }
func (x *UnaryOp) Position() Pos     { return x.Pos }
func (x *BinOp) Position() Pos       { return x.Pos }
func (x *Chain) Position() Pos       { return x.Pos }
func (x *Quantifier) Position() Pos  { return x.Pos }
func (x *Mu) Position() Pos          { return x.Pos }
func (x *Lambda) Position() Pos      { return x.Pos }
func (x *Cond) Position() Pos        { return x.Pos }
func (x *SetLit) Position() Pos      { return x.Pos }
func (x *SeqLit) Position() Pos      { return x.Pos }
func (x *BagLit) Position() Pos      { return x.Pos }
func (x *Compr) Position() Pos       { return x.Pos }
func (x *Tuple) Position() Pos       { return x.Pos }
func (x *Proj) Position() Pos        { return x.Pos }
func (x *Apply) Position() Pos       { return x.Pos }
func (x *GenericInst) Position() Pos { return x.Pos }
func (x *Image) Position() Pos       { return x.Pos }
func (x *Range) Position() Pos       { return x.Pos }
func (x *Iterate) Position() Pos     { return x.Pos }

func (*Ident) node()       {}
func (*NumLit) node()      {}
func (*Builtin) node()     {}
func (*UnaryOp) node()     {}
func (*BinOp) node()       {}
func (*Chain) node()       {}
func (*Quantifier) node()  {}
func (*Mu) node()          {}
func (*Lambda) node()      {}
func (*Cond) node()        {}
func (*SetLit) node()      {}
func (*SeqLit) node()      {}
func (*BagLit) node()      {}
func (*Compr) node()       {}
func (*Tuple) node()       {}
func (*Proj) node()        {}
func (*Apply) node()       {}
func (*GenericInst) node() {}
func (*Image) node()       {}
func (*Range) node()       {}
func (*Iterate) node()     {}

func (*Ident) expr()       {}
func (*NumLit) expr()      {}
func (*Builtin) expr()     {}
func (*UnaryOp) expr()     {}
func (*BinOp) expr()       {}
func (*Chain) expr()       {}
func (*Quantifier) expr()  {}
func (*Mu) expr()          {}
func (*Lambda) expr()      {}
func (*Cond) expr()        {}
func (*SetLit) expr()      {}
func (*SeqLit) expr()      {}
func (*BagLit) expr()      {}
func (*Compr) expr()       {}
func (*Tuple) expr()       {}
func (*Proj) expr()        {}
func (*Apply) expr()       {}
func (*GenericInst) expr() {}
func (*Image) expr()       {}
func (*Range) expr()       {}
func (*Iterate) expr()     {}

// ---- Declarations ----

// Decl is one `x, y : T` line of a schema, axdef or gendef declaration
// section.
type Decl struct {
	Pos   Pos
	Names []string
	Type  Expr
}

// ---- Paragraphs ----

type TextMode int

const (
	TextSmart TextMode = iota // formula detection over prose
	TextEscape                // escape special characters only
	TextRaw                   // passed through untouched
)

type Branch struct {
	Pos     Pos
	Name    string
	Payload []Expr // empty for a nullary constructor; >1 means cross product
}

type EquivStep struct {
	Pos  Pos
	Expr Expr
	Just string
}

type (
	Section struct {
		Pos   Pos
		Level int // 1 = SECTION, 2 = SUBSECTION
		Title string
	}

	Solution struct {
		Pos Pos
	}

	PartLabel struct {
		Pos   Pos
		Label string
	}

	GivenTypes struct {
		Pos   Pos
		Names []string
	}

	FreeType struct {
		Pos      Pos
		Name     string
		Params   []string
		Branches []Branch
	}

	AbbrevDef struct {
		Pos    Pos
		Name   string
		Params []string
		Expr   Expr
	}

	// Schema is a named or anonymous schema box.
	Schema struct {
		Pos    Pos
		Name   string // "" for anonymous
		Params []string
		Decls  []Decl
		Preds  []Expr
	}

	Axdef struct {
		Pos   Pos
		Decls []Decl
		Preds []Expr
	}

	Gendef struct {
		Pos    Pos
		Params []string
		Decls  []Decl
		Preds  []Expr
	}

	ZedBlock struct {
		Pos   Pos
		Preds []Expr
	}

	TextBlock struct {
		Pos  Pos
		Mode TextMode
		Body string
	}

	TruthTable struct {
		Pos    Pos
		Header []Expr
		Rows   [][]bool
	}

	EquivChain struct {
		Pos   Pos
		Start Expr
		Steps []EquivStep
	}

	Proof struct {
		Pos  Pos
		Root *ProofNode
	}
)

func (p *Section) Position() Pos    { return p.Pos }
func (p *Solution) Position() Pos   { return p.Pos }
func (p *PartLabel) Position() Pos  { return p.Pos }
func (p *GivenTypes) Position() Pos { return p.Pos }
func (p *FreeType) Position() Pos   { return p.Pos }
func (p *AbbrevDef) Position() Pos  { return p.Pos }
func (p *Schema) Position() Pos     { return p.Pos }
func (p *Axdef) Position() Pos      { return p.Pos }
func (p *Gendef) Position() Pos     { return p.Pos }
func (p *ZedBlock) Position() Pos   { return p.Pos }
func (p *TextBlock) Position() Pos  { return p.Pos }
func (p *TruthTable) Position() Pos { return p.Pos }
func (p *EquivChain) Position() Pos { return p.Pos }
func (p *Proof) Position() Pos      { return p.Pos }

func (*Section) node()    {}
func (*Solution) node()   {}
func (*PartLabel) node()  {}
func (*GivenTypes) node() {}
func (*FreeType) node()   {}
func (*AbbrevDef) node()  {}
func (*Schema) node()     {}
func (*Axdef) node()      {}
func (*Gendef) node()     {}
func (*ZedBlock) node()   {}
func (*TextBlock) node()  {}
func (*TruthTable) node() {}
func (*EquivChain) node() {}
func (*Proof) node()      {}

func (*Section) para()    {}
func (*Solution) para()   {}
func (*PartLabel) para()  {}
func (*GivenTypes) para() {}
func (*FreeType) para()   {}
func (*AbbrevDef) para()  {}
func (*Schema) para()     {}
func (*Axdef) para()      {}
func (*Gendef) para()     {}
func (*ZedBlock) para()   {}
func (*TextBlock) para()  {}
func (*TruthTable) para() {}
func (*EquivChain) para() {}
func (*Proof) para()      {}

// ---- Proof trees ----

// ProofStep is either another derivation node or an or-elimination case
// split.
type ProofStep interface {
	Node
	proofStep()
}

// ProofNode is one derivation step. Children are its premises. Label is
// 0 when the step introduces no assumption. Sibling marks a step written
// with the & grouping marker.
type ProofNode struct {
	Pos      Pos
	Expr     Expr
	Just     string
	Label    int
	Sibling  bool
	Children []ProofStep
}

// CaseBranch is one branch of an or-elimination, an independent subtree.
type CaseBranch struct {
	Pos  Pos
	Case Expr
	Root *ProofNode
}

// CaseAnalysis groups the branches of one or-elimination.
type CaseAnalysis struct {
	Pos      Pos
	Branches []CaseBranch
}

func (n *ProofNode) Position() Pos    { return n.Pos }
func (c *CaseAnalysis) Position() Pos { return c.Pos }

func (*ProofNode) node()    {}
func (*CaseAnalysis) node() {}

func (*ProofNode) proofStep()    {}
func (*CaseAnalysis) proofStep() {}
