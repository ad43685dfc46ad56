// Expression grammar. The precedence ladder, loosest first:
//
//	1 iff   2 implies (right)   3 or   4 and   5 not
//	6 quantified forms (body extends maximally)
//	7 comparison / restriction tier (non-associative; comparisons chain)
//	8 arrow types (right-associative; a comparison operand absorbs them)
//	9 additive and ranges   10 multiplicative
//	11 postfix: application, instantiation, image, iteration, closures,
//	   inverse, projection; prefix #, P, F, unary minus
//	12 atoms
//
// The generator's parenthesization table must agree with this ladder.
package parser

import (
	"github.com/zboard/zboard/pkg/ast"
	"github.com/zboard/zboard/pkg/token"
)

var binKinds = map[token.Kind]ast.BinKind{
	token.Iff:       ast.OpIff,
	token.Implies:   ast.OpImplies,
	token.Or:        ast.OpOr,
	token.And:       ast.OpAnd,
	token.Eq:        ast.OpEq,
	token.Neq:       ast.OpNeq,
	token.Lt:        ast.OpLt,
	token.Le:        ast.OpLe,
	token.Gt:        ast.OpGt,
	token.Ge:        ast.OpGe,
	token.In:        ast.OpIn,
	token.Notin:     ast.OpNotin,
	token.Subset:    ast.OpSubset,
	token.Subseteq:  ast.OpSubseteq,
	token.Maplet:    ast.OpMaplet,
	token.Rel:       ast.OpRel,
	token.Fun:       ast.OpFun,
	token.Pfun:      ast.OpPfun,
	token.Inj:       ast.OpInj,
	token.Surj:      ast.OpSurj,
	token.Dres:      ast.OpDres,
	token.Rres:      ast.OpRres,
	token.Ndres:     ast.OpNdres,
	token.Nrres:     ast.OpNrres,
	token.Plus:      ast.OpPlus,
	token.Minus:     ast.OpMinus,
	token.Union:     ast.OpUnion,
	token.Setminus:  ast.OpSetminus,
	token.Cat:       ast.OpCat,
	token.Star:      ast.OpStar,
	token.Div:       ast.OpDiv,
	token.Mod:       ast.OpMod,
	token.Intersect: ast.OpIntersect,
	token.Comp:      ast.OpComp,
	token.Cross:     ast.OpCross,
}

func isComparison(k token.Kind) bool {
	switch k {
	case token.Eq, token.Neq, token.Lt, token.Le, token.Gt, token.Ge,
		token.In, token.Notin, token.Subset, token.Subseteq:
		return true
	}
	return false
}

func isArrow(k token.Kind) bool {
	switch k {
	case token.Rel, token.Fun, token.Pfun, token.Inj, token.Surj:
		return true
	}
	return false
}

func isRestriction(k token.Kind) bool {
	switch k {
	case token.Maplet, token.Dres, token.Rres, token.Ndres, token.Nrres:
		return true
	}
	return false
}

func isRelational(k token.Kind) bool {
	return isComparison(k) || isArrow(k) || isRestriction(k)
}

func isAtomStart(k token.Kind) bool {
	switch k {
	case token.Ident, token.Number, token.Nat, token.Intset,
		token.LParen, token.LBrace, token.SeqOpen, token.BagOpen:
		return true
	}
	return false
}

func (p *Parser) expr() (ast.Expr, error) { return p.iff() }

func (p *Parser) iff() (ast.Expr, error) {
	left, err := p.implies()
	if err != nil {
		return nil, err
	}
	for p.check(token.Iff) {
		tok := p.advance()
		right, err := p.implies()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Pos: pos(tok), Op: ast.OpIff, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) implies() (ast.Expr, error) {
	left, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.check(token.Implies) {
		tok := p.advance()
		right, err := p.implies() // right-associative
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Pos: pos(tok), Op: ast.OpImplies, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) or() (ast.Expr, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.check(token.Or) {
		tok := p.advance()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Pos: pos(tok), Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) and() (ast.Expr, error) {
	left, err := p.negation()
	if err != nil {
		return nil, err
	}
	for p.check(token.And) {
		tok := p.advance()
		right, err := p.negation()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Pos: pos(tok), Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) negation() (ast.Expr, error) {
	if p.check(token.Not) {
		tok := p.advance()
		operand, err := p.negation()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Pos: pos(tok), Op: ast.OpNot, Operand: operand}, nil
	}
	return p.relational()
}

// relational parses the non-associative comparison/restriction tier.
// Comparisons chain (a < b <= c) and each operand may be an arrow type
// (f in A +-> B); restrictions take exactly one operator, so a second
// one without parentheses is an error.
func (p *Parser) relational() (ast.Expr, error) {
	left, err := p.arrowType()
	if err != nil {
		return nil, err
	}
	k := p.cur().Kind
	switch {
	case isComparison(k):
		operands := []ast.Expr{left}
		var ops []ast.BinKind
		first := p.cur()
		for isComparison(p.cur().Kind) {
			op := binKinds[p.advance().Kind]
			right, err := p.arrowType()
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
			operands = append(operands, right)
		}
		if isRelational(p.cur().Kind) {
			return nil, p.fail("no further relational operator without parentheses")
		}
		if len(ops) == 1 {
			return &ast.BinOp{Pos: pos(first), Op: ops[0], Left: operands[0], Right: operands[1]}, nil
		}
		return &ast.Chain{Pos: pos(first), Operands: operands, Ops: ops}, nil
	case isRestriction(k):
		tok := p.advance()
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		if isRelational(p.cur().Kind) {
			return nil, p.fail("no further relational operator without parentheses")
		}
		return &ast.BinOp{Pos: pos(tok), Op: binKinds[tok.Kind], Left: left, Right: right}, nil
	}
	return left, nil
}

// arrowType parses an additive expression followed by an optional
// right-associated run of arrow operators. Arrows bind tighter than
// comparisons, so a membership operand can be a function type without
// parentheses.
func (p *Parser) arrowType() (ast.Expr, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	if isArrow(p.cur().Kind) {
		tok := p.advance()
		right, err := p.arrowType()
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Pos: pos(tok), Op: binKinds[tok.Kind], Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) additive() (ast.Expr, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		k := p.cur().Kind
		switch k {
		case token.Plus, token.Minus, token.Union, token.Setminus, token.Cat:
			tok := p.advance()
			right, err := p.multiplicative()
			if err != nil {
				return nil, err
			}
			left = &ast.BinOp{Pos: pos(tok), Op: binKinds[tok.Kind], Left: left, Right: right}
		case token.Range:
			tok := p.advance()
			hi, err := p.multiplicative()
			if err != nil {
				return nil, err
			}
			left = &ast.Range{Pos: pos(tok), Lo: left, Hi: hi}
		default:
			return left, nil
		}
	}
}

func (p *Parser) multiplicative() (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.Star, token.Div, token.Mod, token.Intersect, token.Comp, token.Cross:
			tok := p.advance()
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			left = &ast.BinOp{Pos: pos(tok), Op: binKinds[tok.Kind], Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

// unary parses prefix operators and the quantified forms. A quantifier
// body runs to the end of the surrounding expression, which is exactly
// what parsing the body at the lowest tier gives.
func (p *Parser) unary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.Minus:
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Pos: pos(tok), Op: ast.OpNeg, Operand: operand}, nil
	case token.Hash:
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Pos: pos(tok), Op: ast.OpCount, Operand: operand}, nil
	case token.Power:
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Pos: pos(tok), Op: ast.OpPower, Operand: operand}, nil
	case token.Finset:
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Pos: pos(tok), Op: ast.OpFinset, Operand: operand}, nil
	case token.Forall, token.Exists, token.Exists1:
		return p.quantifier()
	case token.Mu:
		return p.muExpr()
	case token.Lambda:
		return p.lambdaExpr()
	case token.KwIf:
		return p.conditional()
	}
	return p.postfix()
}

func (p *Parser) quantifier() (ast.Expr, error) {
	tok := p.advance()
	var q ast.QuantKind
	switch tok.Kind {
	case token.Forall:
		q = ast.QForall
	case token.Exists:
		q = ast.QExists
	case token.Exists1:
		q = ast.QExists1
	}
	binders, err := p.binderGroups()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Bar, "| before the quantifier predicate"); err != nil {
		return nil, err
	}
	pred, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &ast.Quantifier{Pos: pos(tok), Q: q, Binders: binders, Pred: pred}, nil
}

func (p *Parser) muExpr() (ast.Expr, error) {
	tok := p.advance()
	binders, err := p.binderGroups()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Bar, "| before the mu predicate"); err != nil {
		return nil, err
	}
	pred, err := p.expr()
	if err != nil {
		return nil, err
	}
	mu := &ast.Mu{Pos: pos(tok), Binders: binders, Pred: pred}
	if p.check(token.At) {
		p.advance()
		if mu.Yield, err = p.expr(); err != nil {
			return nil, err
		}
	}
	return mu, nil
}

func (p *Parser) lambdaExpr() (ast.Expr, error) {
	tok := p.advance()
	binders, err := p.binderGroups()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.At, "@ before the lambda body"); err != nil {
		return nil, err
	}
	body, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Pos: pos(tok), Binders: binders, Body: body}, nil
}

func (p *Parser) conditional() (ast.Expr, error) {
	tok := p.advance()
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwThen, "then"); err != nil {
		return nil, err
	}
	thenE, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwElse, "else"); err != nil {
		return nil, err
	}
	elseE, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &ast.Cond{Pos: pos(tok), Cond: cond, Then: thenE, Else: elseE}, nil
}

// binderGroups parses `x, y : T ; z : U` up to the | or @ that ends the
// binder list.
func (p *Parser) binderGroups() ([]ast.BinderGroup, error) {
	var groups []ast.BinderGroup
	for {
		first, err := p.expect(token.Ident, "bound variable name")
		if err != nil {
			return nil, err
		}
		g := ast.BinderGroup{Pos: pos(first), Names: []string{first.Lexeme}}
		for p.check(token.Comma) {
			p.advance()
			name, err := p.expect(token.Ident, "bound variable name")
			if err != nil {
				return nil, err
			}
			g.Names = append(g.Names, name.Lexeme)
		}
		if _, err := p.expect(token.Colon, ": before the binder domain"); err != nil {
			return nil, err
		}
		if g.Type, err = p.expr(); err != nil {
			return nil, err
		}
		groups = append(groups, g)
		if !p.check(token.Semi) {
			return groups, nil
		}
		p.advance()
	}
}

// postfix parses atoms and their postfix operators: curried application,
// generic instantiation, relational image, iteration, closures, inverse
// and tuple projection.
func (p *Parser) postfix() (ast.Expr, error) {
	e, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		switch tok.Kind {
		case token.InstLBrack:
			p.advance()
			p.nlDepth++
			inst := &ast.GenericInst{Pos: pos(tok), Fn: e}
			for {
				arg, err := p.expr()
				if err != nil {
					return nil, err
				}
				inst.Args = append(inst.Args, arg)
				if !p.check(token.Comma) {
					break
				}
				p.advance()
			}
			p.nlDepth--
			if _, err := p.expect(token.RBrack, "] closing the instantiation"); err != nil {
				return nil, err
			}
			e = inst
		case token.ImgOpen:
			p.advance()
			p.nlDepth++
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			p.nlDepth--
			if _, err := p.expect(token.ImgClose, "|) closing the relational image"); err != nil {
				return nil, err
			}
			e = &ast.Image{Pos: pos(tok), Rel: e, Arg: arg}
		case token.Caret:
			p.advance()
			exp, err := p.atom()
			if err != nil {
				return nil, err
			}
			e = &ast.Iterate{Pos: pos(tok), Rel: e, Exp: exp}
		case token.IterStar:
			p.advance()
			e = &ast.UnaryOp{Pos: pos(tok), Op: ast.OpClosureStar, Operand: e}
		case token.IterPlus:
			p.advance()
			e = &ast.UnaryOp{Pos: pos(tok), Op: ast.OpClosurePlus, Operand: e}
		case token.Tilde:
			p.advance()
			e = &ast.UnaryOp{Pos: pos(tok), Op: ast.OpInverse, Operand: e}
		case token.Dot:
			p.advance()
			idx, err := p.expect(token.Number, "component index after .")
			if err != nil {
				return nil, err
			}
			e = &ast.Proj{Pos: pos(tok), Tuple: e, Index: atoiSafe(idx.Lexeme)}
		default:
			if isAtomStart(tok.Kind) {
				arg, err := p.atom()
				if err != nil {
					return nil, err
				}
				e = &ast.Apply{Pos: pos(tok), Fn: e, Arg: arg}
				continue
			}
			return e, nil
		}
	}
}

func (p *Parser) atom() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return &ast.Ident{Pos: pos(tok), Name: tok.Lexeme}, nil
	case token.Number:
		p.advance()
		return &ast.NumLit{Pos: pos(tok), Value: tok.Lexeme}, nil
	case token.Nat:
		p.advance()
		return &ast.Builtin{Pos: pos(tok), Set: ast.SetNat}, nil
	case token.Intset:
		p.advance()
		return &ast.Builtin{Pos: pos(tok), Set: ast.SetInt}, nil
	case token.LParen:
		return p.parenOrTuple()
	case token.LBrace:
		return p.setExpr()
	case token.SeqOpen:
		return p.seqLit()
	case token.BagOpen:
		return p.bagLit()
	}
	return nil, p.fail("an expression")
}

func (p *Parser) parenOrTuple() (ast.Expr, error) {
	tok := p.advance()
	p.nlDepth++
	defer func() { p.nlDepth-- }()
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.check(token.Comma) {
		if _, err := p.expect(token.RParen, ") closing the group"); err != nil {
			return nil, err
		}
		return first, nil
	}
	tuple := &ast.Tuple{Pos: pos(tok), Elems: []ast.Expr{first}}
	for p.check(token.Comma) {
		p.advance()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		tuple.Elems = append(tuple.Elems, e)
	}
	if _, err := p.expect(token.RParen, ") closing the tuple"); err != nil {
		return nil, err
	}
	return tuple, nil
}

// setExpr parses a set literal or a comprehension. The lookahead that
// separates them: a comprehension starts with `name (, name)* :`.
func (p *Parser) setExpr() (ast.Expr, error) {
	tok := p.advance()
	p.nlDepth++
	defer func() { p.nlDepth-- }()

	if p.check(token.RBrace) {
		p.advance()
		return &ast.SetLit{Pos: pos(tok)}, nil
	}

	if p.comprehensionAhead() {
		binders, err := p.binderGroups()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Bar, "| before the comprehension predicate"); err != nil {
			return nil, err
		}
		pred, err := p.expr()
		if err != nil {
			return nil, err
		}
		c := &ast.Compr{Pos: pos(tok), Binders: binders, Pred: pred}
		if p.check(token.At) {
			p.advance()
			if c.Yield, err = p.expr(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RBrace, "} closing the comprehension"); err != nil {
			return nil, err
		}
		return c, nil
	}

	lit := &ast.SetLit{Pos: pos(tok)}
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, e)
		if !p.check(token.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.RBrace, "} closing the set literal"); err != nil {
		return nil, err
	}
	return lit, nil
}

// comprehensionAhead looks for `name (, name)* :` from the current
// position without consuming anything.
func (p *Parser) comprehensionAhead() bool {
	i := 0
	if p.peekKind(i) != token.Ident {
		return false
	}
	i++
	for p.peekKind(i) == token.Comma {
		if p.peekKind(i+1) != token.Ident {
			return false
		}
		i += 2
	}
	return p.peekKind(i) == token.Colon
}

func (p *Parser) seqLit() (ast.Expr, error) {
	tok := p.advance()
	p.nlDepth++
	defer func() { p.nlDepth-- }()
	lit := &ast.SeqLit{Pos: pos(tok)}
	if p.check(token.SeqClose) {
		p.advance()
		return lit, nil
	}
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, e)
		if !p.check(token.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.SeqClose, "> closing the sequence literal"); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) bagLit() (ast.Expr, error) {
	tok := p.advance()
	p.nlDepth++
	defer func() { p.nlDepth-- }()
	lit := &ast.BagLit{Pos: pos(tok)}
	if p.check(token.BagClose) {
		p.advance()
		return lit, nil
	}
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, e)
		if !p.check(token.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.BagClose, "]] closing the bag literal"); err != nil {
		return nil, err
	}
	return lit, nil
}
