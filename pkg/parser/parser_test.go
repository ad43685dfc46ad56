package parser

import (
	"strings"
	"testing"

	"github.com/zboard/zboard/pkg/ast"
	"github.com/zboard/zboard/pkg/token"
)

// parseExpr parses src as a single expression.
func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	toks, err := token.Scan(src)
	if err != nil {
		t.Fatalf("Scan(%q): %v", src, err)
	}
	p := &Parser{toks: toks}
	e, err := p.expr()
	if err != nil {
		t.Fatalf("expr(%q): %v", src, err)
	}
	return e
}

func binOp(t *testing.T, e ast.Expr, op ast.BinKind) *ast.BinOp {
	t.Helper()
	b, ok := e.(*ast.BinOp)
	if !ok {
		t.Fatalf("node = %T, want *ast.BinOp", e)
	}
	if b.Op != op {
		t.Fatalf("op = %v, want %v", b.Op, op)
	}
	return b
}

// TestPrecedence checks how the ladder groups mixed operators
func TestPrecedence(t *testing.T) {
	t.Run("and_binds_tighter_than_implies", func(t *testing.T) {
		e := binOp(t, parseExpr(t, "p and q => r"), ast.OpImplies)
		binOp(t, e.Left, ast.OpAnd)
	})

	t.Run("implies_is_right_associative", func(t *testing.T) {
		e := binOp(t, parseExpr(t, "p => q => r"), ast.OpImplies)
		if _, ok := e.Left.(*ast.Ident); !ok {
			t.Errorf("left = %T, want identifier", e.Left)
		}
		binOp(t, e.Right, ast.OpImplies)
	})

	t.Run("star_binds_tighter_than_plus", func(t *testing.T) {
		e := binOp(t, parseExpr(t, "a + b * c"), ast.OpPlus)
		binOp(t, e.Right, ast.OpStar)
	})

	t.Run("union_is_additive", func(t *testing.T) {
		e := binOp(t, parseExpr(t, "x in A union B"), ast.OpIn)
		binOp(t, e.Right, ast.OpUnion)
	})

	t.Run("arrows_nest_right", func(t *testing.T) {
		e := binOp(t, parseExpr(t, "A -> B -> C"), ast.OpFun)
		binOp(t, e.Right, ast.OpFun)
	})

	t.Run("membership_operand_is_arrow_type", func(t *testing.T) {
		e := binOp(t, parseExpr(t, "f in A +-> B"), ast.OpIn)
		binOp(t, e.Right, ast.OpPfun)
	})

	t.Run("membership_operand_arrow_nests_right", func(t *testing.T) {
		e := binOp(t, parseExpr(t, "f in A -> B -> C"), ast.OpIn)
		outer := binOp(t, e.Right, ast.OpFun)
		binOp(t, outer.Right, ast.OpFun)
	})

	t.Run("not_binds_tighter_than_and", func(t *testing.T) {
		e := binOp(t, parseExpr(t, "not p and q"), ast.OpAnd)
		if _, ok := e.Left.(*ast.UnaryOp); !ok {
			t.Errorf("left = %T, want unary not", e.Left)
		}
	})

	t.Run("parens_override", func(t *testing.T) {
		e := binOp(t, parseExpr(t, "(p => q) and r"), ast.OpAnd)
		binOp(t, e.Left, ast.OpImplies)
	})
}

// TestComparisonChains covers the chaining special case of the
// non-associative tier
func TestComparisonChains(t *testing.T) {
	t.Run("two_links_chain", func(t *testing.T) {
		e := parseExpr(t, "a < b <= c")
		c, ok := e.(*ast.Chain)
		if !ok {
			t.Fatalf("node = %T, want *ast.Chain", e)
		}
		if len(c.Operands) != 3 || len(c.Ops) != 2 {
			t.Fatalf("chain shape = %d operands, %d ops", len(c.Operands), len(c.Ops))
		}
		if c.Ops[0] != ast.OpLt || c.Ops[1] != ast.OpLe {
			t.Errorf("ops = %v", c.Ops)
		}
	})

	t.Run("single_comparison_stays_binop", func(t *testing.T) {
		binOp(t, parseExpr(t, "a = b"), ast.OpEq)
	})

	t.Run("mixed_relational_needs_parens", func(t *testing.T) {
		toks, err := token.Scan("a < b |-> c")
		if err != nil {
			t.Fatal(err)
		}
		p := &Parser{toks: toks}
		if _, err := p.expr(); err == nil {
			t.Error("expected an error for a comparison followed by a maplet")
		}
	})

	t.Run("double_restriction_needs_parens", func(t *testing.T) {
		toks, err := token.Scan("A <| r |> B")
		if err != nil {
			t.Fatal(err)
		}
		p := &Parser{toks: toks}
		if _, err := p.expr(); err == nil {
			t.Error("expected an error for stacked restrictions")
		}
	})
}

// TestQuantifiedForms covers quantifiers, mu, lambda and comprehensions
func TestQuantifiedForms(t *testing.T) {
	t.Run("forall_body_extends_maximally", func(t *testing.T) {
		e := parseExpr(t, "forall x : N | x >= 0 => x + 1 > 0")
		q, ok := e.(*ast.Quantifier)
		if !ok {
			t.Fatalf("node = %T, want *ast.Quantifier", e)
		}
		if q.Q != ast.QForall {
			t.Errorf("quantifier = %v", q.Q)
		}
		binOp(t, q.Pred, ast.OpImplies)
	})

	t.Run("binder_groups", func(t *testing.T) {
		e := parseExpr(t, "exists x, y : N ; s : P N | x in s")
		q := e.(*ast.Quantifier)
		if len(q.Binders) != 2 {
			t.Fatalf("binder groups = %d, want 2", len(q.Binders))
		}
		if len(q.Binders[0].Names) != 2 || q.Binders[0].Names[1] != "y" {
			t.Errorf("first group names = %v", q.Binders[0].Names)
		}
	})

	t.Run("lambda", func(t *testing.T) {
		e := parseExpr(t, "lambda x : N @ x * x")
		l, ok := e.(*ast.Lambda)
		if !ok {
			t.Fatalf("node = %T, want *ast.Lambda", e)
		}
		binOp(t, l.Body, ast.OpStar)
	})

	t.Run("mu_with_yield", func(t *testing.T) {
		e := parseExpr(t, "mu x : N | x > 3 @ x + 1")
		m, ok := e.(*ast.Mu)
		if !ok {
			t.Fatalf("node = %T, want *ast.Mu", e)
		}
		if m.Yield == nil {
			t.Error("yield missing")
		}
	})

	t.Run("mu_without_yield", func(t *testing.T) {
		m := parseExpr(t, "mu x : N | x > 3").(*ast.Mu)
		if m.Yield != nil {
			t.Errorf("yield = %v, want none", m.Yield)
		}
	})

	t.Run("comprehension", func(t *testing.T) {
		e := parseExpr(t, "{ x : N | x > 0 @ x * x }")
		c, ok := e.(*ast.Compr)
		if !ok {
			t.Fatalf("node = %T, want *ast.Compr", e)
		}
		if c.Yield == nil {
			t.Error("yield missing")
		}
	})

	t.Run("set_literal_not_comprehension", func(t *testing.T) {
		e := parseExpr(t, "{1, 2, 3}")
		s, ok := e.(*ast.SetLit)
		if !ok {
			t.Fatalf("node = %T, want *ast.SetLit", e)
		}
		if len(s.Elems) != 3 {
			t.Errorf("elements = %d, want 3", len(s.Elems))
		}
	})
}

// TestPostfix covers application, instantiation, image, iteration and
// projection
func TestPostfix(t *testing.T) {
	t.Run("application_curried_left", func(t *testing.T) {
		e := parseExpr(t, "f x y")
		outer, ok := e.(*ast.Apply)
		if !ok {
			t.Fatalf("node = %T, want *ast.Apply", e)
		}
		if _, ok := outer.Fn.(*ast.Apply); !ok {
			t.Errorf("fn = %T, want inner application", outer.Fn)
		}
	})

	t.Run("generic_instantiation", func(t *testing.T) {
		e := parseExpr(t, "emptyset[N cross N]")
		g, ok := e.(*ast.GenericInst)
		if !ok {
			t.Fatalf("node = %T, want *ast.GenericInst", e)
		}
		if len(g.Args) != 1 {
			t.Errorf("args = %d, want 1", len(g.Args))
		}
	})

	t.Run("relational_image", func(t *testing.T) {
		e := parseExpr(t, "r(| {1, 2} |)")
		if _, ok := e.(*ast.Image); !ok {
			t.Fatalf("node = %T, want *ast.Image", e)
		}
	})

	t.Run("iteration", func(t *testing.T) {
		e := parseExpr(t, "r^3")
		it, ok := e.(*ast.Iterate)
		if !ok {
			t.Fatalf("node = %T, want *ast.Iterate", e)
		}
		if n, ok := it.Exp.(*ast.NumLit); !ok || n.Value != "3" {
			t.Errorf("exponent = %v", it.Exp)
		}
	})

	t.Run("closure_then_inverse", func(t *testing.T) {
		e := parseExpr(t, "r^*~")
		inv, ok := e.(*ast.UnaryOp)
		if !ok || inv.Op != ast.OpInverse {
			t.Fatalf("node = %v, want inverse", e)
		}
		star, ok := inv.Operand.(*ast.UnaryOp)
		if !ok || star.Op != ast.OpClosureStar {
			t.Errorf("operand = %v, want star closure", inv.Operand)
		}
	})

	t.Run("projection", func(t *testing.T) {
		e := parseExpr(t, "pair.2")
		pr, ok := e.(*ast.Proj)
		if !ok {
			t.Fatalf("node = %T, want *ast.Proj", e)
		}
		if pr.Index != 2 {
			t.Errorf("index = %d, want 2", pr.Index)
		}
	})

	t.Run("tuple", func(t *testing.T) {
		e := parseExpr(t, "(a, b, c)")
		tp, ok := e.(*ast.Tuple)
		if !ok {
			t.Fatalf("node = %T, want *ast.Tuple", e)
		}
		if len(tp.Elems) != 3 {
			t.Errorf("elements = %d, want 3", len(tp.Elems))
		}
	})

	t.Run("conditional", func(t *testing.T) {
		e := parseExpr(t, "if x > 0 then x else - x")
		if _, ok := e.(*ast.Cond); !ok {
			t.Fatalf("node = %T, want *ast.Cond", e)
		}
	})
}

// TestParagraphs checks each top-level paragraph form
func TestParagraphs(t *testing.T) {
	t.Run("given_types", func(t *testing.T) {
		doc, err := Parse("[NAME, DATE]\n")
		if err != nil {
			t.Fatal(err)
		}
		g, ok := doc.Items[0].(*ast.GivenTypes)
		if !ok {
			t.Fatalf("item = %T, want *ast.GivenTypes", doc.Items[0])
		}
		if len(g.Names) != 2 || g.Names[0] != "NAME" {
			t.Errorf("names = %v", g.Names)
		}
	})

	t.Run("schema", func(t *testing.T) {
		src := "SCHEMA Counter:\n" +
			"  count : N\n" +
			"  limit : N\n" +
			"WHERE\n" +
			"  count <= limit\n" +
			"END\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		s, ok := doc.Items[0].(*ast.Schema)
		if !ok {
			t.Fatalf("item = %T, want *ast.Schema", doc.Items[0])
		}
		if s.Name != "Counter" || len(s.Decls) != 2 || len(s.Preds) != 1 {
			t.Errorf("schema = %q, %d decls, %d preds", s.Name, len(s.Decls), len(s.Preds))
		}
	})

	t.Run("anonymous_generic_schema", func(t *testing.T) {
		src := "SCHEMA [X]:\n  s : P X\nEND\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		s := doc.Items[0].(*ast.Schema)
		if s.Name != "" || len(s.Params) != 1 {
			t.Errorf("schema = %q, params %v", s.Name, s.Params)
		}
	})

	t.Run("axdef", func(t *testing.T) {
		src := "AXDEF:\n  limit : N\nWHERE\n  limit <= 100\nEND\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		a := doc.Items[0].(*ast.Axdef)
		if len(a.Decls) != 1 || len(a.Preds) != 1 {
			t.Errorf("axdef = %d decls, %d preds", len(a.Decls), len(a.Preds))
		}
	})

	t.Run("gendef", func(t *testing.T) {
		src := "GENDEF [X]:\n  first : X cross X -> X\nEND\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		g := doc.Items[0].(*ast.Gendef)
		if len(g.Params) != 1 || g.Params[0] != "X" {
			t.Errorf("params = %v", g.Params)
		}
	})

	t.Run("free_type", func(t *testing.T) {
		doc, err := Parse("Tree ::= leaf | node<<Tree, Tree>>\n")
		if err != nil {
			t.Fatal(err)
		}
		ft := doc.Items[0].(*ast.FreeType)
		if len(ft.Branches) != 2 {
			t.Fatalf("branches = %d, want 2", len(ft.Branches))
		}
		if len(ft.Branches[1].Payload) != 2 {
			t.Errorf("node payload = %d types, want 2", len(ft.Branches[1].Payload))
		}
	})

	t.Run("free_type_continues_after_bar", func(t *testing.T) {
		doc, err := Parse("Colour ::= red |\n  green | blue\n")
		if err != nil {
			t.Fatal(err)
		}
		ft := doc.Items[0].(*ast.FreeType)
		if len(ft.Branches) != 3 {
			t.Errorf("branches = %d, want 3", len(ft.Branches))
		}
	})

	t.Run("abbreviation", func(t *testing.T) {
		doc, err := Parse("Pair == N cross N\n")
		if err != nil {
			t.Fatal(err)
		}
		ab := doc.Items[0].(*ast.AbbrevDef)
		if ab.Name != "Pair" {
			t.Errorf("name = %q", ab.Name)
		}
	})

	t.Run("zed_block", func(t *testing.T) {
		doc, err := Parse("ZED:\n  x > 0\n  y > 0\nEND\n")
		if err != nil {
			t.Fatal(err)
		}
		z := doc.Items[0].(*ast.ZedBlock)
		if len(z.Preds) != 2 {
			t.Errorf("predicates = %d, want 2", len(z.Preds))
		}
	})

	t.Run("truth_table", func(t *testing.T) {
		src := "TABLE:\n" +
			"  p | q | p and q\n" +
			"  T | T | T\n" +
			"  T | F | F\n" +
			"END\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		tbl := doc.Items[0].(*ast.TruthTable)
		if len(tbl.Header) != 3 || len(tbl.Rows) != 2 {
			t.Fatalf("table = %d columns, %d rows", len(tbl.Header), len(tbl.Rows))
		}
		if tbl.Rows[1][2] != false {
			t.Errorf("row 2 = %v", tbl.Rows[1])
		}
	})

	t.Run("truth_table_row_width", func(t *testing.T) {
		src := "TABLE:\n  p | q\n  T\nEND\n"
		if _, err := Parse(src); err == nil {
			t.Error("expected an error for a short row")
		}
	})

	t.Run("equiv_chain", func(t *testing.T) {
		src := "EQUIV:\n" +
			"  not (p or q)\n" +
			"  <=> not p and not q  [de Morgan]\n" +
			"  <=> not p and not q\n" +
			"END\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		c := doc.Items[0].(*ast.EquivChain)
		if len(c.Steps) != 2 {
			t.Fatalf("steps = %d, want 2", len(c.Steps))
		}
		if c.Steps[0].Just != "de Morgan" {
			t.Errorf("justification = %q", c.Steps[0].Just)
		}
	})

	t.Run("equiv_chain_needs_a_step", func(t *testing.T) {
		if _, err := Parse("EQUIV:\n  p\nEND\n"); err == nil {
			t.Error("expected an error for a chain with no steps")
		}
	})

	t.Run("sections_and_text", func(t *testing.T) {
		src := "SECTION: Sets\nSUBSECTION: Operations\nSOLUTION\nPART: (a)\n" +
			"TEXT:\nA short note.\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		if len(doc.Items) != 5 {
			t.Fatalf("items = %d, want 5", len(doc.Items))
		}
		sec := doc.Items[0].(*ast.Section)
		if sec.Level != 1 || sec.Title != "Sets" {
			t.Errorf("section = %+v", sec)
		}
		sub := doc.Items[1].(*ast.Section)
		if sub.Level != 2 {
			t.Errorf("subsection level = %d", sub.Level)
		}
		txt := doc.Items[4].(*ast.TextBlock)
		if txt.Mode != ast.TextSmart || txt.Body != "A short note." {
			t.Errorf("text block = %+v", txt)
		}
	})

	t.Run("multiline_bracketed_expression", func(t *testing.T) {
		src := "Big == {1,\n  2,\n  3}\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		ab := doc.Items[0].(*ast.AbbrevDef)
		if len(ab.Expr.(*ast.SetLit).Elems) != 3 {
			t.Errorf("set = %+v", ab.Expr)
		}
	})
}

// TestProofs covers indentation, labels, siblings and case analysis
func TestProofs(t *testing.T) {
	t.Run("nested_steps", func(t *testing.T) {
		src := "PROOF:\n" +
			"p => p\n" +
			"  [1] p\n" +
			"    p  [from 1]\n" +
			"END\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		pr := doc.Items[0].(*ast.Proof)
		if len(pr.Root.Children) != 1 {
			t.Fatalf("root children = %d, want 1", len(pr.Root.Children))
		}
		child := pr.Root.Children[0].(*ast.ProofNode)
		if child.Label != 1 || len(child.Children) != 1 {
			t.Errorf("assumption = label %d, %d children", child.Label, len(child.Children))
		}
	})

	t.Run("sibling_premises", func(t *testing.T) {
		src := "PROOF:\n" +
			"  & p  [given]\n" +
			"  & q  [given]\n" +
			"p and q  [conj from premises]\n" +
			"END\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		pr := doc.Items[0].(*ast.Proof)
		if len(pr.Root.Children) != 2 {
			t.Fatalf("root children = %d, want 2", len(pr.Root.Children))
		}
		for _, c := range pr.Root.Children {
			if !c.(*ast.ProofNode).Sibling {
				t.Error("premise not marked as sibling")
			}
		}
	})

	t.Run("case_analysis", func(t *testing.T) {
		src := "PROOF:\n" +
			"q\n" +
			"  CASE p:\n" +
			"    q  [left]\n" +
			"  CASE not p:\n" +
			"    q  [right]\n" +
			"END\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		pr := doc.Items[0].(*ast.Proof)
		ca, ok := pr.Root.Children[0].(*ast.CaseAnalysis)
		if !ok {
			t.Fatalf("child = %T, want *ast.CaseAnalysis", pr.Root.Children[0])
		}
		if len(ca.Branches) != 2 {
			t.Fatalf("branches = %d, want 2", len(ca.Branches))
		}
		for i, br := range ca.Branches {
			if br.Root == nil {
				t.Errorf("branch %d has no conclusion", i)
			}
		}
	})

	t.Run("root_level_case_split", func(t *testing.T) {
		src := "PROOF:\n" +
			"CASE a:\n" +
			"  p\n" +
			"CASE b:\n" +
			"  p\n" +
			"END\n"
		doc, err := Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		pr := doc.Items[0].(*ast.Proof)
		if pr.Root.Expr != nil {
			t.Error("synthetic root should carry no expression")
		}
		ca := pr.Root.Children[0].(*ast.CaseAnalysis)
		if len(ca.Branches) != 2 {
			t.Errorf("branches = %d, want 2", len(ca.Branches))
		}
	})

	t.Run("undefined_label_rejected", func(t *testing.T) {
		src := "PROOF:\n" +
			"p\n" +
			"  p  [from 7]\n" +
			"END\n"
		_, err := Parse(src)
		if err == nil {
			t.Fatal("expected an error for an undefined label")
		}
		if !strings.Contains(err.Error(), "label 7") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("duplicate_label_rejected", func(t *testing.T) {
		src := "PROOF:\n" +
			"p\n" +
			"  [1] a\n" +
			"  [1] b\n" +
			"END\n"
		if _, err := Parse(src); err == nil {
			t.Error("expected an error for a duplicate label")
		}
	})

	t.Run("bad_indent_rejected", func(t *testing.T) {
		src := "PROOF:\n" +
			"p\n" +
			"     q\n" +
			"END\n"
		if _, err := Parse(src); err == nil {
			t.Error("expected an error for indentation off the grid")
		}
	})

	t.Run("two_roots_rejected", func(t *testing.T) {
		src := "PROOF:\np\nq\nEND\n"
		if _, err := Parse(src); err == nil {
			t.Error("expected an error for a second top-level conclusion")
		}
	})
}

// TestErrorReporting checks position and phrasing of failures
func TestErrorReporting(t *testing.T) {
	t.Run("positions_are_reported", func(t *testing.T) {
		_, err := Parse("SCHEMA Counter:\n  count :\nEND\n")
		if err == nil {
			t.Fatal("expected an error")
		}
		perr, ok := err.(*ParseError)
		if !ok {
			t.Fatalf("error type = %T, want *ParseError", err)
		}
		if perr.Tok.Line != 2 {
			t.Errorf("line = %d, want 2", perr.Tok.Line)
		}
	})

	t.Run("unknown_top_level", func(t *testing.T) {
		if _, err := Parse("+ 2\n"); err == nil {
			t.Error("expected an error for a stray operator")
		}
	})
}
