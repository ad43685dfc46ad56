package gen

import (
	"strings"
	"testing"

	"github.com/zboard/zboard/pkg/ast"
	"github.com/zboard/zboard/pkg/parser"
)

// parsePred parses src as a single predicate.
func parsePred(t *testing.T, src string) ast.Expr {
	t.Helper()
	doc, err := parser.Parse("ZED:\n" + src + "\nEND\n")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return doc.Items[0].(*ast.ZedBlock).Preds[0]
}

// render emits src as one expression in the given dialect.
func render(t *testing.T, mode Mode, src string) string {
	t.Helper()
	g := &Generator{mode: mode, width: DefaultWidth}
	s, err := g.expr(parsePred(t, src), precAny)
	if err != nil {
		t.Fatalf("render %q: %v", src, err)
	}
	return s
}

// TestDialectTotality checks that every symbol has two distinct
// non-empty spellings
func TestDialectTotality(t *testing.T) {
	for s := Symbol(0); s < symCount; s++ {
		fuzz, zed := spellings[s][ModeFuzz], spellings[s][ModeZed]
		if fuzz == "" {
			t.Errorf("symbol %d has no fuzz spelling", int(s))
		}
		if zed == "" {
			t.Errorf("symbol %d has no zed spelling", int(s))
		}
		if fuzz != "" && fuzz == zed {
			t.Errorf("symbol %d spells %q in both dialects", int(s), fuzz)
		}
	}
}

// TestExpressionRendering covers operator spelling and spacing
func TestExpressionRendering(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"connectives", "p and q => r", `p \land q \implies r`},
		{"negation", "not p or q", `\lnot p \lor q`},
		{"membership", "x in A union B", `x \in A \cup B`},
		{"comparison_chain", "a < b <= c", `a < b \leq c`},
		{"arrow_type", "f in A +-> B", `f \in A \pfun B`},
		{"restriction", "A <| r", `A \dres r`},
		{"range", "1 .. 10", `1 \upto 10`},
		{"setminus", "s \\ t", `s \setminus t`},
		{"cardinality", "# s", `\# s`},
		{"powerset", "P A", `\power A`},
		{"closure", "r^*", `r^{\star}`},
		{"inverse", "r~", `r\inv`},
		{"iteration", "r^3", `r^{3}`},
		{"set_literal", "{1, 2}", `\{ 1, 2 \}`},
		{"empty_set", "{}", `\{\}`},
		{"sequence", "s = <1, 2>", `s = \langle 1, 2 \rangle`},
		{"bag", "b = [[a, a]]", `b = \lbag a, a \rbag`},
		{"image", "r(| s |)", `r\limg s \rimg`},
		{"maplet", "a |-> b", `a \mapsto b`},
		{"application_spaced", "f x", `f~x`},
		{"application_tuple", "f(a, b)", `f(a, b)`},
		{"instantiation", "id[N]", `id[\nat]`},
		{"projection", "pair.1", `pair.1`},
		{"quantifier", "forall x : N | x >= 0", `\forall x : \nat \mid x \geq 0`},
		{"lambda", "lambda x : N @ x * x", `\lambda x : \nat \spot x * x`},
		{"mu_with_yield", "mu x : N | x > 3 @ x + 1", `\mu x : \nat \mid x > 3 \spot x + 1`},
		{"comprehension", "{ x : N | x > 0 @ x * x }", `\{ x : \nat \mid x > 0 \spot x * x \}`},
		{"conditional", "if p then 1 else 0", `\mathrm{if}\; p \;\mathrm{then}\; 1 \;\mathrm{else}\; 0`},
		{"subscript_name", "max_size > 0", `max_{size} > 0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, ModeFuzz, tt.src)
			if got != tt.want {
				t.Errorf("render(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

// TestParenthesization checks that parens appear exactly where the
// precedence ladder demands
func TestParenthesization(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"loose_child_needs_parens", "(p => q) and r", `(p \implies q) \land r`},
		{"tight_child_needs_none", "p and q => r", `p \land q \implies r`},
		{"right_nested_implies_flat", "p => (q => r)", `p \implies q \implies r`},
		{"left_nested_implies_kept", "(p => q) => r", `(p \implies q) \implies r`},
		{"left_assoc_flat", "a - b - c", `a - b - c`},
		{"right_grouped_subtraction", "a - (b - c)", `a - (b - c)`},
		{"nonassoc_keeps_parens", "(a = b) = c", `(a = b) = c`},
		{"quantifier_operand", "(forall x : N | p) and q", `(\forall x : \nat \mid p) \land q`},
		{"relational_inside_additive", "(a = b) + c = d", `(a = b) + c = d`},
		{"mul_inside_add_flat", "a + b * c", `a + b * c`},
		{"add_inside_mul_kept", "(a + b) * c", `(a + b) * c`},
		{"arrow_operand_flat", "f in A +-> B", `f \in A \pfun B`},
		{"left_nested_arrow_kept", "f in (A -> B) -> C", `f \in (A \fun B) \fun C`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, ModeFuzz, tt.src)
			if got != tt.want {
				t.Errorf("render(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

// TestZedDialect spot-checks the alternative spellings
func TestZedDialect(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"connectives", "p and q or r", `p \wedge q \vee r`},
		{"nat", "x in N", `x \mathrel{\in} \mathbb{N}`},
		{"total_function", "f in A -> B", `f \mathrel{\in} A \rightarrow B`},
		{"powerset", "P A", `\mathbb{P} A`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, ModeZed, tt.src)
			if got != tt.want {
				t.Errorf("render(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

// TestDocumentStructure checks preamble and paragraph environments
func TestDocumentStructure(t *testing.T) {
	src := "SECTION: Counters\n" +
		"[NAME]\n" +
		"SCHEMA Counter:\n" +
		"  count : N\n" +
		"WHERE\n" +
		"  count <= 100\n" +
		"END\n"
	doc, err := parser.Parse(src)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("fuzz_preamble", func(t *testing.T) {
		out, _, err := Generate(doc, ModeFuzz, 0)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{
			`\documentclass{article}`,
			`\usepackage{fuzz}`,
			`\begin{document}`,
			`\section*{Counters}`,
			`\begin{schema}{Counter}`,
			`\where`,
			`count \leq 100`,
			`\end{schema}`,
			`\end{document}`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("zed_preamble", func(t *testing.T) {
		out, _, err := Generate(doc, ModeZed, 0)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, `\usepackage{zed-csp}`) {
			t.Errorf("zed output missing zed-csp package:\n%s", out)
		}
		if strings.Contains(out, `\usepackage{fuzz}`) {
			t.Error("zed output pulls in the fuzz package")
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a, _, err := Generate(doc, ModeFuzz, 0)
		if err != nil {
			t.Fatal(err)
		}
		b, _, err := Generate(doc, ModeFuzz, 0)
		if err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Error("two runs over one document differ")
		}
	})
}

// TestParagraphRendering covers the remaining paragraph forms
func TestParagraphRendering(t *testing.T) {
	gen := func(t *testing.T, src string) string {
		t.Helper()
		doc, err := parser.Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		out, _, err := Generate(doc, ModeFuzz, 0)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	t.Run("free_type", func(t *testing.T) {
		out := gen(t, "Tree ::= leaf | node<<Tree, Tree>>\n")
		want := `Tree ::= leaf | node \ldata Tree \cross Tree \rdata`
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	})

	t.Run("abbreviation", func(t *testing.T) {
		out := gen(t, "Pair == N cross N\n")
		if !strings.Contains(out, `Pair == \nat \cross \nat`) {
			t.Errorf("output = %s", out)
		}
	})

	t.Run("axdef", func(t *testing.T) {
		out := gen(t, "AXDEF:\n  limit : N\nWHERE\n  limit > 0\nEND\n")
		for _, want := range []string{`\begin{axdef}`, `limit : \nat`, `\where`, `\end{axdef}`} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("gendef_carries_params", func(t *testing.T) {
		out := gen(t, "GENDEF [X]:\n  first : X cross X -> X\nEND\n")
		if !strings.Contains(out, `\begin{gendef}[X]`) {
			t.Errorf("output = %s", out)
		}
	})

	t.Run("truth_table", func(t *testing.T) {
		out := gen(t, "TABLE:\n  p | p or p\n  T | T\n  F | F\nEND\n")
		for _, want := range []string{
			`\begin{tabular}{|c|c|}`,
			`$p$ & $p \lor p$ \\`,
			`T & T \\`,
			`F & F \\`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("equiv_chain", func(t *testing.T) {
		out := gen(t, "EQUIV:\n  not (p or q)\n  <=> not p and not q  [de Morgan]\nEND\n")
		for _, want := range []string{
			`\begin{array}{cl}`,
			` & \lnot (p \lor q) \\`,
			`\iff & \lnot p \land \lnot q \quad \mbox{[de Morgan]} \\`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("proof_tree", func(t *testing.T) {
		out := gen(t, "PROOF:\np => p\n  [1] p\n    p  [from 1]\nEND\n")
		for _, want := range []string{
			`\begin{itemize}`,
			`$[1]$~$p$`,
			`\hfill \mbox{[from 1]}`,
			`\end{itemize}`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("raw_text_untouched", func(t *testing.T) {
		out := gen(t, "RAW:\n\\newcommand{\\foo}{bar}\n")
		if !strings.Contains(out, `\newcommand{\foo}{bar}`) {
			t.Errorf("output = %s", out)
		}
	})

	t.Run("plain_text_escaped", func(t *testing.T) {
		out := gen(t, "PLAIN:\nCosts rose 10% for S_1 & friends.\n")
		if !strings.Contains(out, `Costs rose 10\% for S\_1 \& friends.`) {
			t.Errorf("output = %s", out)
		}
	})
}

// TestWarnings covers overflow and discharge-scope advisories
func TestWarnings(t *testing.T) {
	t.Run("overflow", func(t *testing.T) {
		doc, err := parser.Parse("ZED:\n  averylongname + anotherlongname + athirdname > 0\nEND\n")
		if err != nil {
			t.Fatal(err)
		}
		_, warnings, err := Generate(doc, ModeFuzz, 20)
		if err != nil {
			t.Fatal(err)
		}
		if len(warnings) == 0 {
			t.Fatal("expected overflow warnings at width 20")
		}
		if !strings.Contains(warnings[0].Msg, "over the 20 limit") {
			t.Errorf("warning = %v", warnings[0])
		}
	})

	t.Run("no_overflow_at_default_width", func(t *testing.T) {
		doc, err := parser.Parse("ZED:\n  x > 0\nEND\n")
		if err != nil {
			t.Fatal(err)
		}
		_, warnings, err := Generate(doc, ModeFuzz, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %v", warnings)
		}
	})

	t.Run("discharge_outside_scope", func(t *testing.T) {
		src := "PROOF:\n" +
			"c\n" +
			"  [1] a\n" +
			"    a  [from 1]\n" +
			"  b  [weaken from 1]\n" +
			"END\n"
		doc, err := parser.Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		_, warnings, err := Generate(doc, ModeFuzz, 0)
		if err != nil {
			t.Fatal(err)
		}
		var found bool
		for _, w := range warnings {
			if strings.Contains(w.Msg, "discharge cites label 1") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected a scope warning, got %v", warnings)
		}
	})

	t.Run("discharge_inside_scope_clean", func(t *testing.T) {
		src := "PROOF:\nc\n  [1] a\n    a  [from 1]\nEND\n"
		doc, err := parser.Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		_, warnings, err := Generate(doc, ModeFuzz, 0)
		if err != nil {
			t.Fatal(err)
		}
		for _, w := range warnings {
			if strings.Contains(w.Msg, "discharge") {
				t.Errorf("unexpected scope warning: %v", w)
			}
		}
	})
}

// TestModeParsing checks the dialect-name mapping
func TestModeParsing(t *testing.T) {
	tests := []struct {
		name    string
		want    Mode
		wantErr bool
	}{
		{"fuzz", ModeFuzz, false},
		{"zed", ModeZed, false},
		{"zed-csp", ModeZed, false},
		{"latex", ModeFuzz, true},
	}
	for _, tt := range tests {
		m, err := ParseMode(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q) accepted", tt.name)
			}
			continue
		}
		if err != nil || m != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.name, m, err)
		}
	}
}
