// Dual-dialect symbol table. Every operator, quantifier, delimiter and
// builtin the generator can emit has exactly one entry carrying both
// spellings; a missing entry is an internal defect surfaced as a
// GenError, never a silent fallback.
//
// ModeFuzz spells symbols with the macros fuzz.sty defines (and the
// fuzz type checker expects); ModeZed spells them with the plain
// amssymb/stmaryrd forms used alongside zed-csp.sty.
package gen

import (
	"fmt"

	"github.com/zboard/zboard/pkg/ast"
)

// Mode selects the output symbol dialect.
type Mode int

const (
	ModeFuzz Mode = iota
	ModeZed
)

func (m Mode) String() string {
	if m == ModeZed {
		return "zed"
	}
	return "fuzz"
}

// ParseMode maps a dialect name to its Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "fuzz":
		return ModeFuzz, nil
	case "zed", "zed-csp":
		return ModeZed, nil
	}
	return ModeFuzz, fmt.Errorf("unknown notation mode %q (want fuzz or zed)", name)
}

// Package returns the LaTeX package the emitted markup depends on.
func (m Mode) Package() string {
	if m == ModeZed {
		return "zed-csp"
	}
	return "fuzz"
}

// Symbol names one emittable notation element.
type Symbol int

const (
	SymIff Symbol = iota
	SymImplies
	SymOr
	SymAnd
	SymNot
	SymEq
	SymNeq
	SymLt
	SymLe
	SymGt
	SymGe
	SymIn
	SymNotin
	SymSubset
	SymSubseteq
	SymMaplet
	SymRel
	SymFun
	SymPfun
	SymInj
	SymSurj
	SymDres
	SymRres
	SymNdres
	SymNrres
	SymPlus
	SymMinus
	SymUnion
	SymSetminus
	SymCat
	SymStar
	SymDiv
	SymMod
	SymIntersect
	SymComp
	SymCross
	SymUpto
	SymNeg
	SymCount
	SymPower
	SymFinset
	SymInverse
	SymClosureStar
	SymClosurePlus
	SymForall
	SymExists
	SymExists1
	SymMu
	SymLambda
	SymMid
	SymSpot
	SymNat
	SymInt
	SymSeqOpen
	SymSeqClose
	SymBagOpen
	SymBagClose
	SymImgOpen
	SymImgClose
	SymDataOpen
	SymDataClose
	SymSetOpen
	SymSetClose
	SymDefs
	SymAbbrev
	symCount // sentinel, keep last
)

// spellings holds [fuzz, zed] for every Symbol. Both columns are
// non-empty and the columns never coincide, so a generated document
// always betrays its dialect.
var spellings = [symCount][2]string{
	SymIff:         {`\iff`, `\Leftrightarrow`},
	SymImplies:     {`\implies`, `\Rightarrow`},
	SymOr:          {`\lor`, `\vee`},
	SymAnd:         {`\land`, `\wedge`},
	SymNot:         {`\lnot`, `\neg`},
	SymEq:          {`=`, `\mathrel{=}`},
	SymNeq:         {`\neq`, `\not=`},
	SymLt:          {`<`, `\mathrel{<}`},
	SymLe:          {`\leq`, `\le`},
	SymGt:          {`>`, `\mathrel{>}`},
	SymGe:          {`\geq`, `\ge`},
	SymIn:          {`\in`, `\mathrel{\in}`},
	SymNotin:       {`\notin`, `\not\in`},
	SymSubset:      {`\subset`, `\subsetneq`},
	SymSubseteq:    {`\subseteq`, `\subseteqq`},
	SymMaplet:      {`\mapsto`, `\mapstochar\rightarrow`},
	SymRel:         {`\rel`, `\leftrightarrow`},
	SymFun:         {`\fun`, `\rightarrow`},
	SymPfun:        {`\pfun`, `\partialfun`},
	SymInj:         {`\inj`, `\rightarrowtail`},
	SymSurj:        {`\surj`, `\twoheadrightarrow`},
	SymDres:        {`\dres`, `\lhd`},
	SymRres:        {`\rres`, `\rhd`},
	SymNdres:       {`\ndres`, `\unlhd`},
	SymNrres:       {`\nrres`, `\unrhd`},
	SymPlus:        {`+`, `\mathbin{+}`},
	SymMinus:       {`-`, `\mathbin{-}`},
	SymUnion:       {`\cup`, `\mathbin{\cup}`},
	SymSetminus:    {`\setminus`, `\smallsetminus`},
	SymCat:         {`\cat`, `\frown`},
	SymStar:        {`*`, `\mathbin{*}`},
	SymDiv:         {`\div`, `\bdiv`},
	SymMod:         {`\mod`, `\bmod`},
	SymIntersect:   {`\cap`, `\mathbin{\cap}`},
	SymComp:        {`\comp`, `\circ`},
	SymCross:       {`\cross`, `\times`},
	SymUpto:        {`\upto`, `\mathbin{..}`},
	SymNeg:         {`-`, `\mathord{-}`},
	SymCount:       {`\#`, `\mathop{\#}`},
	SymPower:       {`\power`, `\mathbb{P}`},
	SymFinset:      {`\finset`, `\mathbb{F}`},
	SymInverse:     {`\inv`, `^{-1}`},
	SymClosureStar: {`^{\star}`, `^{*}`},
	SymClosurePlus: {`^{\plus}`, `^{+}`},
	SymForall:      {`\forall`, `\mathop{\forall}`},
	SymExists:      {`\exists`, `\mathop{\exists}`},
	SymExists1:     {`\exists_1`, `\exists^{1}`},
	SymMu:          {`\mu`, `\mathop{\mu}`},
	SymLambda:      {`\lambda`, `\mathop{\lambda}`},
	SymMid:         {`\mid`, `\,|\,`},
	SymSpot:        {`\spot`, `\bullet`},
	SymNat:         {`\nat`, `\mathbb{N}`},
	SymInt:         {`\num`, `\mathbb{Z}`},
	SymSeqOpen:     {`\langle`, `\lseq`},
	SymSeqClose:    {`\rangle`, `\rseq`},
	SymBagOpen:     {`\lbag`, `\llbracket`},
	SymBagClose:    {`\rbag`, `\rrbracket`},
	SymImgOpen:     {`\limg`, `(\!|`},
	SymImgClose:    {`\rimg`, `|\!)`},
	SymDataOpen:    {`\ldata`, `\langle\!\langle`},
	SymDataClose:   {`\rdata`, `\rangle\!\rangle`},
	SymSetOpen:     {`\{`, `\lbrace`},
	SymSetClose:    {`\}`, `\rbrace`},
	SymDefs:        {`::=`, `\mathrel{::=}`},
	SymAbbrev:      {`==`, `\triangleq`},
}

var binSymbols = map[ast.BinKind]Symbol{
	ast.OpIff:       SymIff,
	ast.OpImplies:   SymImplies,
	ast.OpOr:        SymOr,
	ast.OpAnd:       SymAnd,
	ast.OpEq:        SymEq,
	ast.OpNeq:       SymNeq,
	ast.OpLt:        SymLt,
	ast.OpLe:        SymLe,
	ast.OpGt:        SymGt,
	ast.OpGe:        SymGe,
	ast.OpIn:        SymIn,
	ast.OpNotin:     SymNotin,
	ast.OpSubset:    SymSubset,
	ast.OpSubseteq:  SymSubseteq,
	ast.OpMaplet:    SymMaplet,
	ast.OpRel:       SymRel,
	ast.OpFun:       SymFun,
	ast.OpPfun:      SymPfun,
	ast.OpInj:       SymInj,
	ast.OpSurj:      SymSurj,
	ast.OpDres:      SymDres,
	ast.OpRres:      SymRres,
	ast.OpNdres:     SymNdres,
	ast.OpNrres:     SymNrres,
	ast.OpPlus:      SymPlus,
	ast.OpMinus:     SymMinus,
	ast.OpUnion:     SymUnion,
	ast.OpSetminus:  SymSetminus,
	ast.OpCat:       SymCat,
	ast.OpStar:      SymStar,
	ast.OpDiv:       SymDiv,
	ast.OpMod:       SymMod,
	ast.OpIntersect: SymIntersect,
	ast.OpComp:      SymComp,
	ast.OpCross:     SymCross,
}

var unarySymbols = map[ast.UnaryKind]Symbol{
	ast.OpNot:         SymNot,
	ast.OpNeg:         SymNeg,
	ast.OpCount:       SymCount,
	ast.OpPower:       SymPower,
	ast.OpFinset:      SymFinset,
	ast.OpInverse:     SymInverse,
	ast.OpClosureStar: SymClosureStar,
	ast.OpClosurePlus: SymClosurePlus,
}

var quantSymbols = map[ast.QuantKind]Symbol{
	ast.QForall:  SymForall,
	ast.QExists:  SymExists,
	ast.QExists1: SymExists1,
}

// sym resolves one symbol in the generator's dialect.
func (g *Generator) sym(s Symbol) (string, error) {
	if s < 0 || s >= symCount {
		return "", &GenError{Msg: fmt.Sprintf("symbol %d outside the dialect table", int(s))}
	}
	sp := spellings[s][g.mode]
	if sp == "" {
		return "", &GenError{Msg: fmt.Sprintf("symbol %d has no %s spelling", int(s), g.mode)}
	}
	return sp, nil
}
