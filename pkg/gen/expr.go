// Expression emission. Exhaustive over every ast.Expr variant; each
// subexpression is rendered against the precedence its position
// requires and parenthesized iff its own precedence is strictly lower.
//
// The ladder mirrors the parser: quantified forms 0, iff 1, implies 2,
// or 3, and 4, not 5, comparison/restriction tier 7, arrow types 8,
// additive 9, multiplicative 10, postfix 11, atoms 12. Tie-break: the
// right operand of a left-associative operator needs one tier more, and
// symmetrically; the non-associative comparison tier demands more than
// itself on both sides, which is what lets an arrow type sit bare as a
// membership operand.
package gen

import (
	"fmt"

	"github.com/zboard/zboard/pkg/ast"
)

const (
	precAny   = 0
	precIff   = 1
	precImp   = 2
	precOr    = 3
	precAnd   = 4
	precNot   = 5
	precRel   = 7
	precArrow = 8
	precAdd   = 9
	precMul   = 10
	precPost  = 11
	precAtom  = 12
)

func binTier(op ast.BinKind) int {
	switch op {
	case ast.OpIff:
		return precIff
	case ast.OpImplies:
		return precImp
	case ast.OpOr:
		return precOr
	case ast.OpAnd:
		return precAnd
	case ast.OpRel, ast.OpFun, ast.OpPfun, ast.OpInj, ast.OpSurj:
		return precArrow
	case ast.OpPlus, ast.OpMinus, ast.OpUnion, ast.OpSetminus, ast.OpCat:
		return precAdd
	case ast.OpStar, ast.OpDiv, ast.OpMod, ast.OpIntersect, ast.OpComp, ast.OpCross:
		return precMul
	default:
		return precRel
	}
}

func rightAssoc(op ast.BinKind) bool {
	switch op {
	case ast.OpImplies, ast.OpRel, ast.OpFun, ast.OpPfun, ast.OpInj, ast.OpSurj:
		return true
	}
	return false
}

// prec is the binding strength an expression presents to its parent.
func prec(e ast.Expr) int {
	switch x := e.(type) {
	case *ast.Quantifier, *ast.Mu, *ast.Lambda, *ast.Cond:
		return precAny
	case *ast.BinOp:
		return binTier(x.Op)
	case *ast.Chain:
		return precRel
	case *ast.Range:
		return precAdd
	case *ast.UnaryOp:
		if x.Op == ast.OpNot {
			return precNot
		}
		return precPost
	case *ast.Apply, *ast.GenericInst, *ast.Image, *ast.Iterate, *ast.Proj:
		return precPost
	default:
		return precAtom
	}
}

// expr renders e for a position requiring at least the given precedence.
func (g *Generator) expr(e ast.Expr, req int) (string, error) {
	s, err := g.exprRaw(e)
	if err != nil {
		return "", err
	}
	if prec(e) < req {
		return "(" + s + ")", nil
	}
	return s, nil
}

func (g *Generator) exprRaw(e ast.Expr) (string, error) {
	switch x := e.(type) {
	case *ast.Ident:
		return texName(x.Name), nil
	case *ast.NumLit:
		return x.Value, nil
	case *ast.Builtin:
		if x.Set == ast.SetInt {
			return g.sym(SymInt)
		}
		return g.sym(SymNat)
	case *ast.UnaryOp:
		return g.unaryOp(x)
	case *ast.BinOp:
		return g.binOp(x)
	case *ast.Chain:
		return g.chain(x)
	case *ast.Quantifier:
		return g.quantified(x)
	case *ast.Mu:
		return g.muExpr(x)
	case *ast.Lambda:
		return g.lambdaExpr(x)
	case *ast.Cond:
		return g.condExpr(x)
	case *ast.SetLit:
		return g.delimited(SymSetOpen, SymSetClose, x.Elems)
	case *ast.SeqLit:
		return g.delimited(SymSeqOpen, SymSeqClose, x.Elems)
	case *ast.BagLit:
		return g.delimited(SymBagOpen, SymBagClose, x.Elems)
	case *ast.Compr:
		return g.comprehension(x)
	case *ast.Tuple:
		return g.tuple(x)
	case *ast.Proj:
		t, err := g.expr(x.Tuple, precAtom)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%d", t, x.Index), nil
	case *ast.Apply:
		return g.apply(x)
	case *ast.GenericInst:
		return g.genericInst(x)
	case *ast.Image:
		return g.image(x)
	case *ast.Range:
		return g.rangeExpr(x)
	case *ast.Iterate:
		return g.iterate(x)
	}
	return "", &GenError{Msg: fmt.Sprintf("unhandled expression variant %T", e)}
}

func (g *Generator) unaryOp(x *ast.UnaryOp) (string, error) {
	s, ok := unarySymbols[x.Op]
	if !ok {
		return "", &GenError{Msg: fmt.Sprintf("unary operator %d outside the dialect table", x.Op)}
	}
	sym, err := g.sym(s)
	if err != nil {
		return "", err
	}
	switch x.Op {
	case ast.OpInverse, ast.OpClosureStar, ast.OpClosurePlus:
		operand, err := g.expr(x.Operand, precAtom)
		if err != nil {
			return "", err
		}
		return operand + sym, nil
	case ast.OpNot:
		operand, err := g.expr(x.Operand, precNot)
		if err != nil {
			return "", err
		}
		return sym + " " + operand, nil
	default:
		operand, err := g.expr(x.Operand, precPost)
		if err != nil {
			return "", err
		}
		return sym + " " + operand, nil
	}
}

func (g *Generator) binOp(x *ast.BinOp) (string, error) {
	s, ok := binSymbols[x.Op]
	if !ok {
		return "", &GenError{Msg: fmt.Sprintf("binary operator %d outside the dialect table", x.Op)}
	}
	sym, err := g.sym(s)
	if err != nil {
		return "", err
	}
	tier := binTier(x.Op)
	reqL, reqR := tier, tier+1
	if rightAssoc(x.Op) {
		reqL, reqR = tier+1, tier
	}
	if tier == precRel {
		reqL, reqR = tier+1, tier+1
	}
	left, err := g.expr(x.Left, reqL)
	if err != nil {
		return "", err
	}
	right, err := g.expr(x.Right, reqR)
	if err != nil {
		return "", err
	}
	return left + " " + sym + " " + right, nil
}

func (g *Generator) chain(x *ast.Chain) (string, error) {
	out, err := g.expr(x.Operands[0], precRel+1)
	if err != nil {
		return "", err
	}
	for i, op := range x.Ops {
		s, ok := binSymbols[op]
		if !ok {
			return "", &GenError{Msg: fmt.Sprintf("chain operator %d outside the dialect table", op)}
		}
		sym, err := g.sym(s)
		if err != nil {
			return "", err
		}
		operand, err := g.expr(x.Operands[i+1], precRel+1)
		if err != nil {
			return "", err
		}
		out += " " + sym + " " + operand
	}
	return out, nil
}

func (g *Generator) binders(groups []ast.BinderGroup) (string, error) {
	var parts []string
	for _, grp := range groups {
		t, err := g.expr(grp.Type, precAny)
		if err != nil {
			return "", err
		}
		parts = append(parts, texNames(grp.Names)+" : "+t)
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "; " + p
	}
	return out, nil
}

func (g *Generator) quantified(x *ast.Quantifier) (string, error) {
	s, ok := quantSymbols[x.Q]
	if !ok {
		return "", &GenError{Msg: fmt.Sprintf("quantifier %d outside the dialect table", x.Q)}
	}
	q, err := g.sym(s)
	if err != nil {
		return "", err
	}
	mid, err := g.sym(SymMid)
	if err != nil {
		return "", err
	}
	b, err := g.binders(x.Binders)
	if err != nil {
		return "", err
	}
	pred, err := g.expr(x.Pred, precAny)
	if err != nil {
		return "", err
	}
	return q + " " + b + " " + mid + " " + pred, nil
}

func (g *Generator) muExpr(x *ast.Mu) (string, error) {
	mu, err := g.sym(SymMu)
	if err != nil {
		return "", err
	}
	mid, err := g.sym(SymMid)
	if err != nil {
		return "", err
	}
	b, err := g.binders(x.Binders)
	if err != nil {
		return "", err
	}
	pred, err := g.expr(x.Pred, precAny)
	if err != nil {
		return "", err
	}
	out := mu + " " + b + " " + mid + " " + pred
	if x.Yield != nil {
		spot, err := g.sym(SymSpot)
		if err != nil {
			return "", err
		}
		y, err := g.expr(x.Yield, precAny)
		if err != nil {
			return "", err
		}
		out += " " + spot + " " + y
	}
	return out, nil
}

func (g *Generator) lambdaExpr(x *ast.Lambda) (string, error) {
	lam, err := g.sym(SymLambda)
	if err != nil {
		return "", err
	}
	spot, err := g.sym(SymSpot)
	if err != nil {
		return "", err
	}
	b, err := g.binders(x.Binders)
	if err != nil {
		return "", err
	}
	body, err := g.expr(x.Body, precAny)
	if err != nil {
		return "", err
	}
	return lam + " " + b + " " + spot + " " + body, nil
}

func (g *Generator) condExpr(x *ast.Cond) (string, error) {
	c, err := g.expr(x.Cond, precAny)
	if err != nil {
		return "", err
	}
	t, err := g.expr(x.Then, precAny)
	if err != nil {
		return "", err
	}
	e, err := g.expr(x.Else, precAny)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`\mathrm{if}\; %s \;\mathrm{then}\; %s \;\mathrm{else}\; %s`, c, t, e), nil
}

func (g *Generator) delimited(open, closeSym Symbol, elems []ast.Expr) (string, error) {
	o, err := g.sym(open)
	if err != nil {
		return "", err
	}
	c, err := g.sym(closeSym)
	if err != nil {
		return "", err
	}
	if len(elems) == 0 {
		return o + c, nil
	}
	out := o + " "
	for i, e := range elems {
		s, err := g.expr(e, precAny)
		if err != nil {
			return "", err
		}
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out + " " + c, nil
}

func (g *Generator) comprehension(x *ast.Compr) (string, error) {
	o, err := g.sym(SymSetOpen)
	if err != nil {
		return "", err
	}
	c, err := g.sym(SymSetClose)
	if err != nil {
		return "", err
	}
	mid, err := g.sym(SymMid)
	if err != nil {
		return "", err
	}
	b, err := g.binders(x.Binders)
	if err != nil {
		return "", err
	}
	pred, err := g.expr(x.Pred, precAny)
	if err != nil {
		return "", err
	}
	out := o + " " + b + " " + mid + " " + pred
	if x.Yield != nil {
		spot, err := g.sym(SymSpot)
		if err != nil {
			return "", err
		}
		y, err := g.expr(x.Yield, precAny)
		if err != nil {
			return "", err
		}
		out += " " + spot + " " + y
	}
	return out + " " + c, nil
}

func (g *Generator) tuple(x *ast.Tuple) (string, error) {
	out := "("
	for i, e := range x.Elems {
		s, err := g.expr(e, precAny)
		if err != nil {
			return "", err
		}
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out + ")", nil
}

func (g *Generator) apply(x *ast.Apply) (string, error) {
	fn, err := g.expr(x.Fn, precPost)
	if err != nil {
		return "", err
	}
	// A tuple argument reads as a conventional call: f(a, b).
	if t, ok := x.Arg.(*ast.Tuple); ok {
		arg, err := g.tuple(t)
		if err != nil {
			return "", err
		}
		return fn + arg, nil
	}
	arg, err := g.expr(x.Arg, precAtom)
	if err != nil {
		return "", err
	}
	return fn + "~" + arg, nil
}

func (g *Generator) genericInst(x *ast.GenericInst) (string, error) {
	fn, err := g.expr(x.Fn, precAtom)
	if err != nil {
		return "", err
	}
	out := fn + "["
	for i, a := range x.Args {
		s, err := g.expr(a, precAny)
		if err != nil {
			return "", err
		}
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out + "]", nil
}

func (g *Generator) image(x *ast.Image) (string, error) {
	o, err := g.sym(SymImgOpen)
	if err != nil {
		return "", err
	}
	c, err := g.sym(SymImgClose)
	if err != nil {
		return "", err
	}
	rel, err := g.expr(x.Rel, precPost)
	if err != nil {
		return "", err
	}
	arg, err := g.expr(x.Arg, precAny)
	if err != nil {
		return "", err
	}
	return rel + o + " " + arg + " " + c, nil
}

func (g *Generator) rangeExpr(x *ast.Range) (string, error) {
	upto, err := g.sym(SymUpto)
	if err != nil {
		return "", err
	}
	lo, err := g.expr(x.Lo, precAdd)
	if err != nil {
		return "", err
	}
	hi, err := g.expr(x.Hi, precMul)
	if err != nil {
		return "", err
	}
	return lo + " " + upto + " " + hi, nil
}

func (g *Generator) iterate(x *ast.Iterate) (string, error) {
	rel, err := g.expr(x.Rel, precAtom)
	if err != nil {
		return "", err
	}
	exp, err := g.expr(x.Exp, precAny)
	if err != nil {
		return "", err
	}
	return rel + "^{" + exp + "}", nil
}
