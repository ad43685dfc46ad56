// Proof-tree emission: nested itemize, one item per derivation step,
// assumption labels and justifications set flush right. The walk also
// checks discharge citations against the labels introduced by proper
// ancestors; violations become advisory warnings, never errors.
package gen

import (
	"fmt"
	"strings"

	"github.com/zboard/zboard/pkg/ast"
)

func (g *Generator) proof(p *ast.Proof) error {
	g.buf.WriteString("\\begin{itemize}\n")
	if err := g.proofNode(p.Root, 1, map[int]bool{}); err != nil {
		return err
	}
	g.buf.WriteString("\\end{itemize}\n")
	return nil
}

// proofNode emits one step and recurses into its premises. ancestors
// holds every assumption label introduced on the path above this node.
func (g *Generator) proofNode(n *ast.ProofNode, depth int, ancestors map[int]bool) error {
	indent := strings.Repeat("  ", depth)

	for _, cited := range ast.CitedLabels(n.Just) {
		if !ancestors[cited] {
			g.warnings = append(g.warnings, Warning{
				Line: n.Pos.Line,
				Msg: fmt.Sprintf("discharge cites label %d, which no enclosing assumption introduces", cited),
			})
		}
	}

	var item string
	switch {
	case n.Expr == nil:
		// Synthetic conclusion wrapping a root-level case split.
		item = `\textit{by cases:}`
	default:
		s, err := g.expr(n.Expr, precAny)
		if err != nil {
			return err
		}
		item = "$" + s + "$"
		if n.Label != 0 {
			item = fmt.Sprintf(`$[%d]$~%s`, n.Label, item)
		}
		if n.Just != "" {
			item += fmt.Sprintf(` \hfill \mbox{[%s]}`, escapeLatex(n.Just))
		}
	}
	fmt.Fprintf(&g.buf, "%s\\item %s\n", indent, item)

	if len(n.Children) == 0 {
		return nil
	}

	inner := ancestors
	if n.Label != 0 {
		inner = make(map[int]bool, len(ancestors)+1)
		for k := range ancestors {
			inner[k] = true
		}
		inner[n.Label] = true
	}

	fmt.Fprintf(&g.buf, "%s\\begin{itemize}\n", indent)
	for _, step := range n.Children {
		switch s := step.(type) {
		case *ast.ProofNode:
			if err := g.proofNode(s, depth+1, inner); err != nil {
				return err
			}
		case *ast.CaseAnalysis:
			if err := g.caseAnalysis(s, depth+1, inner); err != nil {
				return err
			}
		default:
			return &GenError{Msg: fmt.Sprintf("unhandled proof step variant %T", step)}
		}
	}
	fmt.Fprintf(&g.buf, "%s\\end{itemize}\n", indent)
	return nil
}

func (g *Generator) caseAnalysis(ca *ast.CaseAnalysis, depth int, ancestors map[int]bool) error {
	indent := strings.Repeat("  ", depth)
	for _, br := range ca.Branches {
		c, err := g.expr(br.Case, precAny)
		if err != nil {
			return err
		}
		fmt.Fprintf(&g.buf, "%s\\item \\textbf{Case} $%s$:\n", indent, c)
		if br.Root != nil {
			fmt.Fprintf(&g.buf, "%s\\begin{itemize}\n", indent)
			if err := g.proofNode(br.Root, depth+1, ancestors); err != nil {
				return err
			}
			fmt.Fprintf(&g.buf, "%s\\end{itemize}\n", indent)
		}
	}
	return nil
}
