// Package gen emits LaTeX from an ast.Document.
//
// Design: One Generator value per run. Structural emission dispatches
// exhaustively over paragraph kinds; anything unhandled is a GenError,
// which signals a defect in this package, not bad input: the parser
// cannot produce a Document the generator rejects.
package gen

import (
	"fmt"
	"strings"

	"github.com/zboard/zboard/pkg/ast"
	"github.com/zboard/zboard/pkg/logger"
)

// DefaultWidth is the advisory output line length.
const DefaultWidth = 78

// Warning is a non-fatal advisory collected during one run.
type Warning struct {
	Line int // output line for overflow, source line for proof scope
	Msg  string
}

func (w Warning) String() string { return fmt.Sprintf("line %d: %s", w.Line, w.Msg) }

// GenError reports an internal invariant violation.
type GenError struct {
	Msg string
}

func (e *GenError) Error() string { return "generator defect: " + e.Msg }

// Generator holds one run's state: the dialect, the overflow threshold
// and the warning accumulator. It is not reused across runs.
type Generator struct {
	mode     Mode
	width    int
	buf      strings.Builder
	warnings []Warning
}

// Generate renders doc in the given dialect. width <= 0 selects
// DefaultWidth. The returned warnings are advisory; the output is
// complete whenever err is nil.
func Generate(doc *ast.Document, mode Mode, width int) (string, []Warning, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	g := &Generator{mode: mode, width: width}
	logger.Debug("Generating LaTeX", "mode", mode.String(), "items", len(doc.Items))

	if err := g.document(doc); err != nil {
		return "", nil, err
	}
	out := g.buf.String()
	g.scanOverflow(out)

	logger.Info("Generation complete", "mode", mode.String(), "warnings", len(g.warnings))
	return out, g.warnings, nil
}

func (g *Generator) document(doc *ast.Document) error {
	fmt.Fprintf(&g.buf, "\\documentclass{article}\n\\usepackage{%s}\n\\begin{document}\n\n", g.mode.Package())
	for _, item := range doc.Items {
		if err := g.paragraph(item); err != nil {
			return err
		}
		g.buf.WriteString("\n")
	}
	g.buf.WriteString("\\end{document}\n")
	return nil
}

func (g *Generator) paragraph(item ast.Para) error {
	switch p := item.(type) {
	case *ast.Section:
		if p.Level >= 2 {
			fmt.Fprintf(&g.buf, "\\subsection*{%s}\n", escapeLatex(p.Title))
		} else {
			fmt.Fprintf(&g.buf, "\\section*{%s}\n", escapeLatex(p.Title))
		}
	case *ast.Solution:
		g.buf.WriteString("\\medskip\\noindent\\textbf{Solution.}\n")
	case *ast.PartLabel:
		fmt.Fprintf(&g.buf, "\\smallskip\\noindent\\textbf{(%s)}\\quad\n", escapeLatex(p.Label))
	case *ast.GivenTypes:
		fmt.Fprintf(&g.buf, "\\begin{zed}\n  [%s]\n\\end{zed}\n", strings.Join(p.Names, ", "))
	case *ast.FreeType:
		return g.freeType(p)
	case *ast.AbbrevDef:
		return g.abbrev(p)
	case *ast.Schema:
		return g.schema(p)
	case *ast.Axdef:
		return g.box("axdef", "", p.Decls, p.Preds)
	case *ast.Gendef:
		return g.box("gendef", genericSuffix(p.Params), p.Decls, p.Preds)
	case *ast.ZedBlock:
		return g.zedBlock(p)
	case *ast.TextBlock:
		return g.textBlock(p)
	case *ast.TruthTable:
		return g.truthTable(p)
	case *ast.EquivChain:
		return g.equivChain(p)
	case *ast.Proof:
		return g.proof(p)
	default:
		return &GenError{Msg: fmt.Sprintf("unhandled paragraph variant %T", item)}
	}
	return nil
}

func genericSuffix(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "[" + strings.Join(params, ", ") + "]"
}

func (g *Generator) freeType(p *ast.FreeType) error {
	defs, err := g.sym(SymDefs)
	if err != nil {
		return err
	}
	var branches []string
	for _, br := range p.Branches {
		s, err := g.branch(br)
		if err != nil {
			return err
		}
		branches = append(branches, s)
	}
	fmt.Fprintf(&g.buf, "\\begin{zed}\n  %s%s %s %s\n\\end{zed}\n",
		texName(p.Name), genericSuffix(p.Params), defs, strings.Join(branches, " | "))
	return nil
}

func (g *Generator) branch(br ast.Branch) (string, error) {
	if len(br.Payload) == 0 {
		return texName(br.Name), nil
	}
	open, err := g.sym(SymDataOpen)
	if err != nil {
		return "", err
	}
	cross, err := g.sym(SymCross)
	if err != nil {
		return "", err
	}
	closeSym, err := g.sym(SymDataClose)
	if err != nil {
		return "", err
	}
	var parts []string
	for _, t := range br.Payload {
		s, err := g.expr(t, precMul)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return texName(br.Name) + " " + open + " " + strings.Join(parts, " "+cross+" ") + " " + closeSym, nil
}

func (g *Generator) abbrev(p *ast.AbbrevDef) error {
	eq, err := g.sym(SymAbbrev)
	if err != nil {
		return err
	}
	body, err := g.expr(p.Expr, precAny)
	if err != nil {
		return err
	}
	fmt.Fprintf(&g.buf, "\\begin{zed}\n  %s%s %s %s\n\\end{zed}\n",
		texName(p.Name), genericSuffix(p.Params), eq, body)
	return nil
}

func (g *Generator) schema(p *ast.Schema) error {
	if p.Name == "" {
		return g.box("schema*", genericSuffix(p.Params), p.Decls, p.Preds)
	}
	header := "{" + texName(p.Name) + "}" + genericSuffix(p.Params)
	return g.box("schema", header, p.Decls, p.Preds)
}

// box emits a schema, axdef or gendef body: declarations, \where, then
// predicates.
func (g *Generator) box(env, header string, decls []ast.Decl, preds []ast.Expr) error {
	fmt.Fprintf(&g.buf, "\\begin{%s}%s\n", env, header)
	for i, d := range decls {
		t, err := g.expr(d.Type, precAny)
		if err != nil {
			return err
		}
		sep := " \\\\"
		if i == len(decls)-1 {
			sep = ""
		}
		fmt.Fprintf(&g.buf, "  %s : %s%s\n", texNames(d.Names), t, sep)
	}
	if len(preds) > 0 {
		g.buf.WriteString("\\where\n")
		for i, pred := range preds {
			s, err := g.expr(pred, precAny)
			if err != nil {
				return err
			}
			sep := " \\\\"
			if i == len(preds)-1 {
				sep = ""
			}
			fmt.Fprintf(&g.buf, "  %s%s\n", s, sep)
		}
	}
	fmt.Fprintf(&g.buf, "\\end{%s}\n", env)
	return nil
}

func (g *Generator) zedBlock(p *ast.ZedBlock) error {
	g.buf.WriteString("\\begin{zed}\n")
	for i, pred := range p.Preds {
		s, err := g.expr(pred, precAny)
		if err != nil {
			return err
		}
		sep := " \\\\"
		if i == len(p.Preds)-1 {
			sep = ""
		}
		fmt.Fprintf(&g.buf, "  %s%s\n", s, sep)
	}
	g.buf.WriteString("\\end{zed}\n")
	return nil
}

func (g *Generator) textBlock(p *ast.TextBlock) error {
	switch p.Mode {
	case ast.TextRaw:
		g.buf.WriteString(p.Body)
		g.buf.WriteString("\n")
	case ast.TextEscape:
		g.buf.WriteString(escapeLatex(p.Body))
		g.buf.WriteString("\n")
	case ast.TextSmart:
		out, err := g.smartText(p.Body)
		if err != nil {
			return err
		}
		g.buf.WriteString(out)
		g.buf.WriteString("\n")
	default:
		return &GenError{Msg: fmt.Sprintf("unhandled text mode %d", p.Mode)}
	}
	return nil
}

func (g *Generator) truthTable(p *ast.TruthTable) error {
	cols := strings.Repeat("|c", len(p.Header)) + "|"
	fmt.Fprintf(&g.buf, "\\begin{center}\n\\begin{tabular}{%s}\n\\hline\n", cols)
	var heads []string
	for _, h := range p.Header {
		s, err := g.expr(h, precAny)
		if err != nil {
			return err
		}
		heads = append(heads, "$"+s+"$")
	}
	fmt.Fprintf(&g.buf, "%s \\\\\n\\hline\n", strings.Join(heads, " & "))
	for _, row := range p.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v {
				cells[i] = "T"
			} else {
				cells[i] = "F"
			}
		}
		fmt.Fprintf(&g.buf, "%s \\\\\n", strings.Join(cells, " & "))
	}
	g.buf.WriteString("\\hline\n\\end{tabular}\n\\end{center}\n")
	return nil
}

func (g *Generator) equivChain(p *ast.EquivChain) error {
	iff, err := g.sym(SymIff)
	if err != nil {
		return err
	}
	start, err := g.expr(p.Start, precAny)
	if err != nil {
		return err
	}
	g.buf.WriteString("\\[\n\\begin{array}{cl}\n")
	fmt.Fprintf(&g.buf, " & %s \\\\\n", start)
	for _, step := range p.Steps {
		s, err := g.expr(step.Expr, precAny)
		if err != nil {
			return err
		}
		if step.Just != "" {
			fmt.Fprintf(&g.buf, "%s & %s \\quad \\mbox{[%s]} \\\\\n", iff, s, escapeLatex(step.Just))
		} else {
			fmt.Fprintf(&g.buf, "%s & %s \\\\\n", iff, s)
		}
	}
	g.buf.WriteString("\\end{array}\n\\]\n")
	return nil
}

// scanOverflow warns about every physical output line longer than the
// threshold. Purely advisory; the output is never rewrapped.
func (g *Generator) scanOverflow(out string) {
	for i, line := range strings.Split(out, "\n") {
		if n := len([]rune(line)); n > g.width {
			g.warnings = append(g.warnings, Warning{
				Line: i + 1,
				Msg:  fmt.Sprintf("output line is %d characters, over the %d limit", n, g.width),
			})
		}
	}
}

// escapeLatex makes prose safe outside math mode.
func escapeLatex(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '\\':
			b.WriteString(`\textbackslash{}`)
		case '&', '%', '$', '#', '_', '{', '}':
			b.WriteByte('\\')
			b.WriteRune(c)
		case '~':
			b.WriteString(`\textasciitilde{}`)
		case '^':
			b.WriteString(`\textasciicircum{}`)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// texName renders an identifier, turning the first underscore into a
// subscript.
func texName(name string) string {
	if i := strings.IndexByte(name, '_'); i > 0 && i < len(name)-1 {
		rest := strings.ReplaceAll(name[i+1:], "_", `\_`)
		return name[:i] + "_{" + rest + "}"
	}
	return strings.ReplaceAll(name, "_", `\_`)
}

func texNames(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = texName(n)
	}
	return strings.Join(out, ", ")
}
