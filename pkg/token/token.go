// Package token defines the lexical vocabulary of whiteboard Z notation
// and the scanner that produces it.
//
// Design: Hand-written maximal-munch scanner over a rune slice. Every
// operator has an ASCII spelling and a Unicode spelling; both map to the
// same Kind. Columns are measured in characters, not bytes.
package token

import "fmt"

type Kind int

const (
	EOF Kind = iota
	Newline

	// Literals and names
	Ident
	Number
	Text // raw body of a TEXT:/PLAIN:/RAW: block

	// Logical connectives
	Iff     // <=>  ⇔
	Implies // =>   ⇒
	Or      // or   ∨
	And     // and  ∧
	Not     // not  ¬

	// Quantifier machinery
	Forall  // forall ∀
	Exists  // exists ∃
	Exists1 // exists1 ∃1
	Mu      // mu μ
	Lambda  // lambda λ
	Bar     // |
	At      // @ •   yield separator

	// Relational tier
	Eq       // =
	Neq      // /=  ≠
	Lt       // <   (when not a sequence bracket)
	Le       // <=  ≤
	Gt       // >
	Ge       // >=  ≥
	In       // in  ∈
	Notin    // notin ∉
	Subset   // subset ⊂
	Subseteq // subseteq ⊆
	Maplet   // |-> ↦
	Rel      // <-> ↔
	Fun      // ->  →
	Pfun     // +-> ⇸
	Inj      // >-> ↣
	Surj     // -->> ↠
	Dres     // <|  ◁
	Rres     // |>  ▷
	Ndres    // <<| ⩤
	Nrres    // |>> ⩥

	// Additive tier
	Plus     // +
	Minus    // -
	Union    // union ∪
	Setminus // \  ∖
	Cat      // ++ ⌢
	Range    // .. ‥

	// Multiplicative tier
	Star      // *
	Div       // div
	Mod       // mod
	Intersect // intersect ∩
	Comp      // comp ∘
	Cross     // cross ×

	// Postfix / closure
	Caret    // ^   iteration superscript
	IterStar // ^*  reflexive-transitive closure
	IterPlus // ^+  transitive closure
	Tilde    // ~   relational inverse
	Hash     // #   prefix cardinality
	Dot      // .   tuple projection (.1, .2, ...)

	// Prefix type constructors and number-set atoms
	Power  // P ℙ
	Finset // F 𝔽
	Nat    // N ℕ
	Intset // Z ℤ

	// Brackets
	LParen     // (
	RParen     // )
	LBrack     // [   with preceding whitespace or non-operand
	InstLBrack // [   glued to an operand: generic instantiation
	RBrack     // ]
	LBrace     // {
	RBrace     // }
	SeqOpen    // <   opening a sequence literal, or ⟨
	SeqClose   // >   closing a sequence literal, or ⟩
	BagOpen    // [[  ⟦
	BagClose   // ]]  ⟧
	ImgOpen    // (|  ⦇
	ImgClose   // |)  ⦈
	DataOpen   // <<  ⟪   free-type payload
	DataClose  // >>  ⟫

	// Definition glue
	Colon    // :
	Semi     // ;
	Comma    // ,
	Defs     // ::= ⩴
	Abbrev   // == ≜
	Amp      // &   proof sibling marker
	KwIf     // if
	KwThen   // then
	KwElse   // else

	// Block directives (recognized at the start of a line)
	DSection
	DSubsection
	DSolution
	DPart
	DSchema
	DAxdef
	DGendef
	DZed
	DText
	DPlain
	DRaw
	DTable
	DEquiv
	DProof
	KwWhere
	KwEnd
	KwCase
)

var kindNames = map[Kind]string{
	EOF:        "end of input",
	Newline:    "newline",
	Ident:      "identifier",
	Number:     "numeral",
	Text:       "text block",
	Iff:        "<=>",
	Implies:    "=>",
	Or:         "or",
	And:        "and",
	Not:        "not",
	Forall:     "forall",
	Exists:     "exists",
	Exists1:    "exists1",
	Mu:         "mu",
	Lambda:     "lambda",
	Bar:        "|",
	At:         "@",
	Eq:         "=",
	Neq:        "/=",
	Lt:         "<",
	Le:         "<=",
	Gt:         ">",
	Ge:         ">=",
	In:         "in",
	Notin:      "notin",
	Subset:     "subset",
	Subseteq:   "subseteq",
	Maplet:     "|->",
	Rel:        "<->",
	Fun:        "->",
	Pfun:       "+->",
	Inj:        ">->",
	Surj:       "-->>",
	Dres:       "<|",
	Rres:       "|>",
	Ndres:      "<<|",
	Nrres:      "|>>",
	Plus:       "+",
	Minus:      "-",
	Union:      "union",
	Setminus:   "\\",
	Cat:        "++",
	Range:      "..",
	Star:       "*",
	Div:        "div",
	Mod:        "mod",
	Intersect:  "intersect",
	Comp:       "comp",
	Cross:      "cross",
	Caret:      "^",
	IterStar:   "^*",
	IterPlus:   "^+",
	Tilde:      "~",
	Hash:       "#",
	Dot:        ".",
	Power:      "P",
	Finset:     "F",
	Nat:        "N",
	Intset:     "Z",
	LParen:     "(",
	RParen:     ")",
	LBrack:     "[",
	InstLBrack: "[",
	RBrack:     "]",
	LBrace:     "{",
	RBrace:     "}",
	SeqOpen:    "<",
	SeqClose:   ">",
	BagOpen:    "[[",
	BagClose:   "]]",
	ImgOpen:    "(|",
	ImgClose:   "|)",
	DataOpen:   "<<",
	DataClose:  ">>",
	Colon:      ":",
	Semi:       ";",
	Comma:      ",",
	Defs:       "::=",
	Abbrev:     "==",
	Amp:        "&",
	KwIf:       "if",
	KwThen:     "then",
	KwElse:     "else",
	DSection:   "SECTION",
	DSubsection: "SUBSECTION",
	DSolution:  "SOLUTION",
	DPart:      "PART",
	DSchema:    "SCHEMA",
	DAxdef:     "AXDEF",
	DGendef:    "GENDEF",
	DZed:       "ZED",
	DText:      "TEXT",
	DPlain:     "PLAIN",
	DRaw:       "RAW",
	DTable:     "TABLE",
	DEquiv:     "EQUIV",
	DProof:     "PROOF",
	KwWhere:    "WHERE",
	KwEnd:      "END",
	KwCase:     "CASE",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical unit. Line and Col are 1-based; Col counts
// characters, not bytes.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Col    int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %d:%d", t.Kind, t.Lexeme, t.Line, t.Col)
}

// LexError reports a character the scanner cannot start a token with.
type LexError struct {
	Line int
	Col  int
	Char rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d, col %d: unexpected character %q", e.Line, e.Col, e.Char)
}

// keywords maps lowercase word spellings to operator kinds.
var keywords = map[string]Kind{
	"and":       And,
	"or":        Or,
	"not":       Not,
	"in":        In,
	"notin":     Notin,
	"subset":    Subset,
	"subseteq":  Subseteq,
	"union":     Union,
	"intersect": Intersect,
	"div":       Div,
	"mod":       Mod,
	"comp":      Comp,
	"cross":     Cross,
	"forall":    Forall,
	"exists":    Exists,
	"exists1":   Exists1,
	"mu":        Mu,
	"lambda":    Lambda,
	"if":        KwIf,
	"then":      KwThen,
	"else":      KwElse,
}

// directives maps block keywords to their kinds. Recognized only when a
// line's first token is one of these (END / WHERE / CASE may be indented).
var directives = map[string]Kind{
	"SECTION":    DSection,
	"SUBSECTION": DSubsection,
	"SOLUTION":   DSolution,
	"PART":       DPart,
	"SCHEMA":     DSchema,
	"AXDEF":      DAxdef,
	"GENDEF":     DGendef,
	"ZED":        DZed,
	"TEXT":       DText,
	"PLAIN":      DPlain,
	"RAW":        DRaw,
	"TABLE":      DTable,
	"EQUIV":      DEquiv,
	"PROOF":      DProof,
	"WHERE":      KwWhere,
	"END":        KwEnd,
	"CASE":       KwCase,
}

// singles maps standalone Unicode operator characters to kinds. Multi-rune
// Unicode sequences (like the ∃1 of exists1) are handled in the scanner.
var singles = map[rune]Kind{
	'⇔': Iff,
	'⇒': Implies,
	'∨': Or,
	'∧': And,
	'¬': Not,
	'∀': Forall,
	'∃': Exists,
	'μ': Mu,
	'λ': Lambda,
	'•': At,
	'≠': Neq,
	'≤': Le,
	'≥': Ge,
	'∈': In,
	'∉': Notin,
	'⊂': Subset,
	'⊆': Subseteq,
	'↦': Maplet,
	'↔': Rel,
	'→': Fun,
	'⇸': Pfun,
	'↣': Inj,
	'↠': Surj,
	'◁': Dres,
	'▷': Rres,
	'⩤': Ndres,
	'⩥': Nrres,
	'∪': Union,
	'∖': Setminus,
	'⌢': Cat,
	'‥': Range,
	'∩': Intersect,
	'∘': Comp,
	'×': Cross,
	'∼': Tilde,
	'ℙ': Power,
	'𝔽': Finset,
	'ℕ': Nat,
	'ℤ': Intset,
	'⟨': SeqOpen,
	'⟩': SeqClose,
	'⟦': BagOpen,
	'⟧': BagClose,
	'⦇': ImgOpen,
	'⦈': ImgClose,
	'⟪': DataOpen,
	'⟫': DataClose,
	'⩴': Defs,
	'≜': Abbrev,
}
