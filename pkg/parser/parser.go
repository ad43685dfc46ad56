// Package parser turns a token stream into an ast.Document.
//
// Design: Predictive recursive descent, fail-fast on the first grammar
// violation, zero backtracking. Newlines are significant at paragraph
// level and transparent inside brackets.
package parser

import (
	"fmt"
	"strconv"

	"github.com/zboard/zboard/pkg/ast"
	"github.com/zboard/zboard/pkg/logger"
	"github.com/zboard/zboard/pkg/token"
)

// ParseError reports a grammar violation: the construct that was
// expected and the token that was found instead.
type ParseError struct {
	Expected string
	Tok      token.Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, col %d: expected %s, found %s %q",
		e.Tok.Line, e.Tok.Col, e.Expected, e.Tok.Kind, e.Tok.Lexeme)
}

type Parser struct {
	toks []token.Token
	pos  int

	// nlDepth > 0 makes newline tokens transparent; incremented inside
	// any bracket pair so expressions may span lines when bracketed.
	nlDepth int
}

// Parse consumes the whole source text and returns its Document. The
// error is a *token.LexError or a *ParseError.
func Parse(src string) (*ast.Document, error) {
	toks, err := token.Scan(src)
	if err != nil {
		return nil, err
	}
	logger.Debug("Lexing complete", "tokens", len(toks))
	p := &Parser{toks: toks}
	return p.document()
}

func (p *Parser) document() (*ast.Document, error) {
	doc := &ast.Document{}
	for {
		p.skipNewlines()
		if p.check(token.EOF) {
			return doc, nil
		}
		item, err := p.paragraph()
		if err != nil {
			return nil, err
		}
		doc.Items = append(doc.Items, item)
	}
}

func (p *Parser) paragraph() (ast.Para, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.DSection, token.DSubsection:
		return p.section()
	case token.DSolution:
		p.advance()
		return &ast.Solution{Pos: pos(tok)}, nil
	case token.DPart:
		p.advance()
		title, err := p.expect(token.Text, "part label")
		if err != nil {
			return nil, err
		}
		return &ast.PartLabel{Pos: pos(tok), Label: title.Lexeme}, nil
	case token.DText, token.DPlain, token.DRaw:
		return p.textBlock()
	case token.DSchema:
		return p.schema()
	case token.DAxdef:
		return p.axdef()
	case token.DGendef:
		return p.gendef()
	case token.DZed:
		return p.zedBlock()
	case token.DTable:
		return p.truthTable()
	case token.DEquiv:
		return p.equivChain()
	case token.DProof:
		return p.proof()
	case token.LBrack:
		return p.givenTypes()
	case token.Ident:
		return p.definition()
	}
	return nil, p.fail("a top-level item")
}

func (p *Parser) section() (ast.Para, error) {
	tok := p.advance()
	level := 1
	if tok.Kind == token.DSubsection {
		level = 2
	}
	title, err := p.expect(token.Text, "section title")
	if err != nil {
		return nil, err
	}
	return &ast.Section{Pos: pos(tok), Level: level, Title: title.Lexeme}, nil
}

func (p *Parser) textBlock() (ast.Para, error) {
	tok := p.advance()
	var mode ast.TextMode
	switch tok.Kind {
	case token.DText:
		mode = ast.TextSmart
	case token.DPlain:
		mode = ast.TextEscape
	case token.DRaw:
		mode = ast.TextRaw
	}
	body, err := p.expect(token.Text, "text block body")
	if err != nil {
		return nil, err
	}
	return &ast.TextBlock{Pos: pos(tok), Mode: mode, Body: body.Lexeme}, nil
}

// givenTypes parses a given-set paragraph: [X, Y]
func (p *Parser) givenTypes() (ast.Para, error) {
	tok := p.advance()
	var names []string
	for {
		name, err := p.expect(token.Ident, "given-set name")
		if err != nil {
			return nil, err
		}
		names = append(names, name.Lexeme)
		if !p.check(token.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.RBrack, "] closing the given-set list"); err != nil {
		return nil, err
	}
	return &ast.GivenTypes{Pos: pos(tok), Names: names}, nil
}

// definition parses a free type (T ::= ...) or an abbreviation
// (name == expr), both optionally generic.
func (p *Parser) definition() (ast.Para, error) {
	name := p.advance()
	params, err := p.genericParams()
	if err != nil {
		return nil, err
	}
	switch p.cur().Kind {
	case token.Defs:
		return p.freeType(name, params)
	case token.Abbrev:
		p.advance()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &ast.AbbrevDef{Pos: pos(name), Name: name.Lexeme, Params: params, Expr: e}, nil
	}
	return nil, p.fail("::= or == after a definition name")
}

func (p *Parser) freeType(name token.Token, params []string) (ast.Para, error) {
	p.advance() // ::=
	ft := &ast.FreeType{Pos: pos(name), Name: name.Lexeme, Params: params}
	for {
		br, err := p.branch()
		if err != nil {
			return nil, err
		}
		ft.Branches = append(ft.Branches, br)
		if !p.check(token.Bar) {
			break
		}
		p.advance()
		// A branch list may continue on the next line after the bar.
		p.skipNewlines()
	}
	return ft, nil
}

func (p *Parser) branch() (ast.Branch, error) {
	name, err := p.expect(token.Ident, "free-type constructor name")
	if err != nil {
		return ast.Branch{}, err
	}
	br := ast.Branch{Pos: pos(name), Name: name.Lexeme}
	if p.check(token.DataOpen) {
		p.advance()
		p.nlDepth++
		for {
			t, err := p.expr()
			if err != nil {
				return ast.Branch{}, err
			}
			br.Payload = append(br.Payload, t)
			if !p.check(token.Comma) {
				break
			}
			p.advance()
		}
		p.nlDepth--
		if _, err := p.expect(token.DataClose, ">> closing the constructor payload"); err != nil {
			return ast.Branch{}, err
		}
	}
	return br, nil
}

// genericParams parses an optional [X, Y] formal parameter list.
func (p *Parser) genericParams() ([]string, error) {
	if !p.check(token.LBrack) && !p.check(token.InstLBrack) {
		return nil, nil
	}
	p.advance()
	var params []string
	for {
		name, err := p.expect(token.Ident, "generic parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, name.Lexeme)
		if !p.check(token.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.RBrack, "] closing the generic parameters"); err != nil {
		return nil, err
	}
	return params, nil
}

// ---- helpers ----

func pos(t token.Token) ast.Pos { return ast.Pos{Line: t.Line, Col: t.Col} }

func (p *Parser) sync() {
	if p.nlDepth > 0 {
		for p.toks[p.pos].Kind == token.Newline {
			p.pos++
		}
	}
}

func (p *Parser) cur() token.Token {
	p.sync()
	return p.toks[p.pos]
}

func (p *Parser) peekKind(n int) token.Kind {
	i := p.pos
	seen := 0
	for i < len(p.toks) {
		if p.nlDepth > 0 && p.toks[i].Kind == token.Newline {
			i++
			continue
		}
		if seen == n {
			return p.toks[i].Kind
		}
		seen++
		i++
	}
	return token.EOF
}

func (p *Parser) advance() token.Token {
	p.sync()
	t := p.toks[p.pos]
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) expect(k token.Kind, what string) (token.Token, error) {
	if !p.check(k) {
		return token.Token{}, p.fail(what)
	}
	return p.advance(), nil
}

func (p *Parser) fail(expected string) error {
	return &ParseError{Expected: expected, Tok: p.cur()}
}

func (p *Parser) skipNewlines() {
	for p.toks[p.pos].Kind == token.Newline {
		p.pos++
	}
}

// expectNewline closes a line-bounded construct; EOF is as good as a
// newline.
func (p *Parser) expectNewline(what string) error {
	if p.check(token.EOF) {
		return nil
	}
	if _, err := p.expect(token.Newline, what); err != nil {
		return err
	}
	return nil
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
