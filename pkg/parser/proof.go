// Proof-tree grammar. Indentation is parsed with an explicit stack of
// (column, node) frames rather than recursion, which keeps the
// assumption-scope rule auditable: a frame on the stack is exactly an
// enclosing scope.
package parser

import (
	"fmt"

	"github.com/zboard/zboard/pkg/ast"
	"github.com/zboard/zboard/pkg/token"
)

// indentUnit is the fixed number of columns between a proof node and
// its children.
const indentUnit = 2

type proofFrame struct {
	col    int
	node   *ast.ProofNode  // set for a derivation step
	branch *ast.CaseBranch // set for an open case branch
}

type proofBuilder struct {
	root    *ast.ProofNode
	stack   []proofFrame
	labels  map[int]*ast.ProofNode
	pending []*ast.ProofNode // & siblings awaiting their conclusion
	pendCol int

	openCase    *ast.CaseAnalysis
	openCaseCol int
}

func (p *Parser) proof() (ast.Para, error) {
	tok := p.advance()
	if _, err := p.expect(token.Colon, ": after PROOF"); err != nil {
		return nil, err
	}
	if err := p.expectNewline("newline after PROOF:"); err != nil {
		return nil, err
	}

	b := &proofBuilder{labels: make(map[int]*ast.ProofNode)}
	for {
		p.skipNewlines()
		switch p.cur().Kind {
		case token.KwEnd:
			p.advance()
			return p.finishProof(tok, b)
		case token.EOF:
			return nil, p.fail("END closing the proof")
		case token.KwCase:
			if err := p.caseLine(b); err != nil {
				return nil, err
			}
		default:
			if err := p.proofLine(b); err != nil {
				return nil, err
			}
		}
	}
}

// proofLine parses `[&] [[N]] expr [[justification]]` and attaches the
// node by column.
func (p *Parser) proofLine(b *proofBuilder) error {
	first := p.cur()
	col := first.Col

	sibling := false
	if p.check(token.Amp) {
		p.advance()
		sibling = true
	}

	label := 0
	if p.check(token.LBrack) && p.peekKind(1) == token.Number && p.peekKind(2) == token.RBrack {
		p.advance()
		label = atoiSafe(p.advance().Lexeme)
		p.advance()
	}

	expr, err := p.expr()
	if err != nil {
		return err
	}
	just, err := p.justification()
	if err != nil {
		return err
	}
	if err := p.expectNewline("newline after a proof step"); err != nil {
		return err
	}

	node := &ast.ProofNode{Pos: pos(first), Expr: expr, Just: just, Label: label, Sibling: sibling}
	if label != 0 {
		if _, dup := b.labels[label]; dup {
			return &ParseError{Expected: fmt.Sprintf("a fresh assumption label, %d is already in use", label), Tok: first}
		}
		b.labels[label] = node
	}

	b.unwind(col)
	if b.openCase != nil && col <= b.openCaseCol {
		b.openCase = nil
	}

	if sibling {
		if len(b.pending) > 0 && b.pendCol != col {
			return &ParseError{Expected: "sibling premises at one indentation level", Tok: first}
		}
		b.pendCol = col
		b.pending = append(b.pending, node)
		b.stack = append(b.stack, proofFrame{col: col, node: node})
		return nil
	}

	if len(b.pending) > 0 {
		if b.pendCol != col+indentUnit {
			return &ParseError{Expected: "a conclusion one unit shallower than its sibling premises", Tok: first}
		}
		node.Children = append(node.Children, siblingSteps(b.pending)...)
		b.pending = nil
	}

	if err := b.attach(node, col, first); err != nil {
		return err
	}
	b.stack = append(b.stack, proofFrame{col: col, node: node})
	return nil
}

// caseLine parses `CASE expr :` and opens a branch of the current (or a
// new) case analysis.
func (p *Parser) caseLine(b *proofBuilder) error {
	first := p.cur()
	col := first.Col
	p.advance()
	caseExpr, err := p.expr()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Colon, ": after a CASE expression"); err != nil {
		return err
	}
	if err := p.expectNewline("newline after a CASE line"); err != nil {
		return err
	}

	b.unwind(col)
	if len(b.pending) > 0 {
		return &ParseError{Expected: "a conclusion for the pending sibling premises before CASE", Tok: first}
	}

	branch := ast.CaseBranch{Pos: pos(first), Case: caseExpr}
	if b.openCase != nil && b.openCaseCol == col {
		b.openCase.Branches = append(b.openCase.Branches, branch)
	} else {
		ca := &ast.CaseAnalysis{Pos: pos(first), Branches: []ast.CaseBranch{branch}}
		if len(b.stack) == 0 {
			if b.root != nil {
				return &ParseError{Expected: "CASE below an enclosing proof step", Tok: first}
			}
			// Root-level case split; a synthetic conclusion wraps it at END.
		} else {
			top := b.stack[len(b.stack)-1]
			if col != top.col+indentUnit {
				return &ParseError{Expected: fmt.Sprintf("CASE indented to column %d", top.col+indentUnit+1), Tok: first}
			}
			if top.branch != nil {
				return &ParseError{Expected: "a branch conclusion before a nested CASE", Tok: first}
			}
			top.node.Children = append(top.node.Children, ca)
		}
		b.openCase = ca
		b.openCaseCol = col
	}
	idx := len(b.openCase.Branches) - 1
	b.stack = append(b.stack, proofFrame{col: col, branch: &b.openCase.Branches[idx]})
	return nil
}

// unwind closes every scope at or deeper than col.
func (b *proofBuilder) unwind(col int) {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].col >= col {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// attach hangs a non-sibling node under the enclosing frame, or makes
// it the root.
func (b *proofBuilder) attach(node *ast.ProofNode, col int, at token.Token) error {
	if len(b.stack) == 0 {
		if b.root != nil {
			return &ParseError{Expected: "exactly one conclusion at the top of the proof", Tok: at}
		}
		b.root = node
		return nil
	}
	top := b.stack[len(b.stack)-1]
	if col != top.col+indentUnit {
		return &ParseError{Expected: fmt.Sprintf("a proof step indented to column %d", top.col+indentUnit+1), Tok: at}
	}
	if top.branch != nil {
		if top.branch.Root != nil {
			return &ParseError{Expected: "one conclusion per case branch", Tok: at}
		}
		top.branch.Root = node
		return nil
	}
	top.node.Children = append(top.node.Children, node)
	return nil
}

func siblingSteps(nodes []*ast.ProofNode) []ast.ProofStep {
	steps := make([]ast.ProofStep, len(nodes))
	for i, n := range nodes {
		steps[i] = n
	}
	return steps
}

func (p *Parser) finishProof(tok token.Token, b *proofBuilder) (ast.Para, error) {
	if len(b.pending) > 0 {
		return nil, &ParseError{Expected: "a conclusion for the trailing sibling premises", Tok: tok}
	}
	if b.root == nil {
		if b.openCase != nil {
			// A proof that is nothing but a case split gets a synthetic
			// conclusion so the tree keeps its single root.
			b.root = &ast.ProofNode{Pos: b.openCase.Pos, Children: []ast.ProofStep{b.openCase}}
		} else {
			return nil, &ParseError{Expected: "at least one proof step", Tok: tok}
		}
	}
	if err := checkCitations(b.root, b.labels); err != nil {
		return nil, err
	}
	return &ast.Proof{Pos: pos(tok), Root: b.root}, nil
}

// checkCitations rejects discharge justifications citing labels that no
// assumption in this tree introduces. Scope (proper-ancestor) checking
// is the generator's advisory concern; a dangling label is a hard error.
func checkCitations(n *ast.ProofNode, labels map[int]*ast.ProofNode) error {
	for _, cited := range ast.CitedLabels(n.Just) {
		if _, ok := labels[cited]; !ok {
			return &ParseError{
				Expected: fmt.Sprintf("a justification citing an introduced label, label %d is undefined", cited),
				Tok:      token.Token{Kind: token.Text, Lexeme: n.Just, Line: n.Pos.Line, Col: n.Pos.Col},
			}
		}
	}
	for _, step := range n.Children {
		switch s := step.(type) {
		case *ast.ProofNode:
			if err := checkCitations(s, labels); err != nil {
				return err
			}
		case *ast.CaseAnalysis:
			for _, br := range s.Branches {
				if br.Root != nil {
					if err := checkCitations(br.Root, labels); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
