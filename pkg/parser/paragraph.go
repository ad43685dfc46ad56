// Boxed paragraph grammars: schema, axiomatic and generic definitions,
// zed blocks, truth tables and equivalence chains.
package parser

import (
	"strings"

	"github.com/zboard/zboard/pkg/ast"
	"github.com/zboard/zboard/pkg/token"
)

func (p *Parser) schema() (ast.Para, error) {
	tok := p.advance()
	s := &ast.Schema{Pos: pos(tok)}
	if p.check(token.Ident) {
		s.Name = p.advance().Lexeme
	}
	var err error
	if s.Params, err = p.genericParams(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon, ": after the schema header"); err != nil {
		return nil, err
	}
	if err := p.expectNewline("newline after the schema header"); err != nil {
		return nil, err
	}
	if s.Decls, s.Preds, err = p.boxBody(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) axdef() (ast.Para, error) {
	tok := p.advance()
	if _, err := p.expect(token.Colon, ": after AXDEF"); err != nil {
		return nil, err
	}
	if err := p.expectNewline("newline after AXDEF:"); err != nil {
		return nil, err
	}
	a := &ast.Axdef{Pos: pos(tok)}
	var err error
	if a.Decls, a.Preds, err = p.boxBody(); err != nil {
		return nil, err
	}
	return a, nil
}

func (p *Parser) gendef() (ast.Para, error) {
	tok := p.advance()
	g := &ast.Gendef{Pos: pos(tok)}
	var err error
	if g.Params, err = p.genericParams(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon, ": after GENDEF"); err != nil {
		return nil, err
	}
	if err := p.expectNewline("newline after GENDEF:"); err != nil {
		return nil, err
	}
	if g.Decls, g.Preds, err = p.boxBody(); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *Parser) zedBlock() (ast.Para, error) {
	tok := p.advance()
	if _, err := p.expect(token.Colon, ": after ZED"); err != nil {
		return nil, err
	}
	if err := p.expectNewline("newline after ZED:"); err != nil {
		return nil, err
	}
	z := &ast.ZedBlock{Pos: pos(tok)}
	for {
		p.skipNewlines()
		if p.check(token.KwEnd) {
			p.advance()
			return z, nil
		}
		if p.check(token.EOF) {
			return nil, p.fail("END closing the zed block")
		}
		pred, err := p.expr()
		if err != nil {
			return nil, err
		}
		z.Preds = append(z.Preds, pred)
		if err := p.expectNewline("newline after a predicate"); err != nil {
			return nil, err
		}
	}
}

// boxBody parses the declaration section, an optional WHERE plus
// predicate section, and the closing END.
func (p *Parser) boxBody() ([]ast.Decl, []ast.Expr, error) {
	var decls []ast.Decl
	for {
		p.skipNewlines()
		switch p.cur().Kind {
		case token.KwEnd:
			p.advance()
			return decls, nil, nil
		case token.KwWhere:
			p.advance()
			preds, err := p.predSection()
			return decls, preds, err
		case token.EOF:
			return nil, nil, p.fail("WHERE or END closing the definition")
		}
		d, err := p.decl()
		if err != nil {
			return nil, nil, err
		}
		decls = append(decls, d)
	}
}

func (p *Parser) decl() (ast.Decl, error) {
	first, err := p.expect(token.Ident, "declared name")
	if err != nil {
		return ast.Decl{}, err
	}
	d := ast.Decl{Pos: pos(first), Names: []string{first.Lexeme}}
	for p.check(token.Comma) {
		p.advance()
		name, err := p.expect(token.Ident, "declared name")
		if err != nil {
			return ast.Decl{}, err
		}
		d.Names = append(d.Names, name.Lexeme)
	}
	if _, err := p.expect(token.Colon, ": before the declared type"); err != nil {
		return ast.Decl{}, err
	}
	if d.Type, err = p.expr(); err != nil {
		return ast.Decl{}, err
	}
	if err := p.expectNewline("newline after a declaration"); err != nil {
		return ast.Decl{}, err
	}
	return d, nil
}

func (p *Parser) predSection() ([]ast.Expr, error) {
	var preds []ast.Expr
	for {
		p.skipNewlines()
		if p.check(token.KwEnd) {
			p.advance()
			return preds, nil
		}
		if p.check(token.EOF) {
			return nil, p.fail("END closing the predicate section")
		}
		pred, err := p.expr()
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
		if err := p.expectNewline("newline after a predicate"); err != nil {
			return nil, err
		}
	}
}

// truthTable parses a TABLE: block. The header row lists expressions,
// every following row lists T/F cells, all separated by bars.
func (p *Parser) truthTable() (ast.Para, error) {
	tok := p.advance()
	if _, err := p.expect(token.Colon, ": after TABLE"); err != nil {
		return nil, err
	}
	if err := p.expectNewline("newline after TABLE:"); err != nil {
		return nil, err
	}
	p.skipNewlines()

	t := &ast.TruthTable{Pos: pos(tok)}
	for {
		h, err := p.expr()
		if err != nil {
			return nil, err
		}
		t.Header = append(t.Header, h)
		if !p.check(token.Bar) {
			break
		}
		p.advance()
	}
	if err := p.expectNewline("newline after the table header"); err != nil {
		return nil, err
	}

	for {
		p.skipNewlines()
		if p.check(token.KwEnd) {
			p.advance()
			return t, nil
		}
		if p.check(token.EOF) {
			return nil, p.fail("END closing the truth table")
		}
		var row []bool
		for {
			cell, err := p.truthCell()
			if err != nil {
				return nil, err
			}
			row = append(row, cell)
			if !p.check(token.Bar) {
				break
			}
			p.advance()
		}
		if len(row) != len(t.Header) {
			return nil, p.fail("a truth-table row as wide as the header")
		}
		t.Rows = append(t.Rows, row)
		if err := p.expectNewline("newline after a truth-table row"); err != nil {
			return nil, err
		}
	}
}

// truthCell accepts T or F. F happens to scan as the finite-set symbol,
// so the lexeme decides, not the kind.
func (p *Parser) truthCell() (bool, error) {
	tok := p.cur()
	switch tok.Lexeme {
	case "T":
		p.advance()
		return true, nil
	case "F":
		p.advance()
		return false, nil
	}
	return false, p.fail("T or F")
}

// equivChain parses an EQUIV: block: a starting expression followed by
// <=> steps, each with an optional bracketed justification.
func (p *Parser) equivChain() (ast.Para, error) {
	tok := p.advance()
	if _, err := p.expect(token.Colon, ": after EQUIV"); err != nil {
		return nil, err
	}
	if err := p.expectNewline("newline after EQUIV:"); err != nil {
		return nil, err
	}
	p.skipNewlines()

	c := &ast.EquivChain{Pos: pos(tok)}
	start, err := p.expr()
	if err != nil {
		return nil, err
	}
	c.Start = start
	if err := p.expectNewline("newline after the starting expression"); err != nil {
		return nil, err
	}

	for {
		p.skipNewlines()
		if p.check(token.KwEnd) {
			p.advance()
			if len(c.Steps) == 0 {
				return nil, p.fail("at least one <=> step")
			}
			return c, nil
		}
		stepTok, err := p.expect(token.Iff, "<=> starting an equivalence step")
		if err != nil {
			return nil, err
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		just, err := p.justification()
		if err != nil {
			return nil, err
		}
		c.Steps = append(c.Steps, ast.EquivStep{Pos: pos(stepTok), Expr: e, Just: just})
		if err := p.expectNewline("newline after an equivalence step"); err != nil {
			return nil, err
		}
	}
}

// justification reads an optional trailing [ ... ] note, reconstructing
// its text from the raw lexemes.
func (p *Parser) justification() (string, error) {
	if !p.check(token.LBrack) {
		return "", nil
	}
	p.advance()
	var parts []string
	depth := 1
	for {
		tok := p.cur()
		switch tok.Kind {
		case token.LBrack, token.InstLBrack:
			depth++
		case token.BagOpen:
			depth += 2
		case token.BagClose:
			depth -= 2
		case token.RBrack:
			depth--
		case token.Newline, token.EOF:
			return "", p.fail("] closing the justification")
		}
		if depth <= 0 {
			p.advance()
			return strings.Join(parts, " "), nil
		}
		parts = append(parts, tok.Lexeme)
		p.advance()
	}
}
