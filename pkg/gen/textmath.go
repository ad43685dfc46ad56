// Free-text math extraction: a fixed, ordered pipeline of rewrite
// passes over prose. Each pass recognizes one category of formula and
// wraps matches in $ delimiters. Order matters: every pass operates
// only outside spans already delimited by earlier passes, so the
// pipeline never rewrites its own output.
package gen

import (
	"regexp"
	"strings"
)

// rewritePass is one stage. Its precondition documents what earlier
// stages guarantee about the text it sees.
type rewritePass struct {
	name  string
	apply func(f *formulaizer, s string) string
}

// textPasses runs in exactly this order.
var textPasses = []rewritePass{
	// 1. Manual markup. Precondition: none; backticks are the author's
	// explicit math brackets and win over every detector.
	{name: "manual", apply: (*formulaizer).manual},
	// 2. Set-builder syntax. Precondition: backtick content is already
	// fenced, so a brace here is a real set display.
	{name: "set-builder", apply: (*formulaizer).setBuilder},
	// 3. Parenthesized logical groups. Precondition: set builders are
	// fenced, so braces no longer appear in candidate groups.
	{name: "paren-logic", apply: (*formulaizer).parenLogic},
	// 4. Bare connective phrases (p => q). Precondition: grouped
	// connectives are fenced, so only ungrouped ones remain.
	{name: "connectives", apply: (*formulaizer).connectives},
	// 5. Super- and subscripts.
	{name: "scripts", apply: (*formulaizer).scripts},
	// 6. Quantifier phrases.
	{name: "quantifiers", apply: (*formulaizer).quantifiers},
	// 7. Declarations (x : N). Precondition: quantifier phrases, which
	// also contain colons, are already fenced.
	{name: "declarations", apply: (*formulaizer).declarations},
	// 8. Function application f(x). Precondition: logical groups are
	// fenced, so remaining parens after a word are argument lists.
	{name: "application", apply: (*formulaizer).application},
	// 9. Simple relational expressions (x >= 0).
	{name: "relational", apply: (*formulaizer).relational},
}

// smartText runs the pipeline and escapes whatever prose is left.
func (g *Generator) smartText(body string) (string, error) {
	f, err := newFormulaizer(g)
	if err != nil {
		return "", err
	}
	out := body
	for _, pass := range textPasses {
		out = pass.apply(f, out)
	}
	return mapOutsideMath(out, escapeLatex), nil
}

// mapOutsideMath applies fn to every segment not already inside $...$.
func mapOutsideMath(s string, fn func(string) string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '$')
		if open < 0 {
			b.WriteString(fn(s))
			return b.String()
		}
		rest := s[open+1:]
		closing := strings.IndexByte(rest, '$')
		if closing < 0 {
			b.WriteString(fn(s))
			return b.String()
		}
		b.WriteString(fn(s[:open]))
		b.WriteString(s[open : open+closing+2])
		s = s[open+closing+2:]
	}
}

// formulaizer converts whiteboard spellings inside one recognized
// formula to dialect macros. Built once per generation run.
type formulaizer struct {
	symbolic *strings.Replacer
	words    []wordRepl
}

type wordRepl struct {
	re  *regexp.Regexp
	rep string
}

// symbolicOrder lists multi-character spellings longest first so the
// replacer never truncates an operator.
var symbolicOrder = []struct {
	spell string
	sym   Symbol
}{
	{"-->>", SymSurj},
	{"<=>", SymIff},
	{"|->", SymMaplet},
	{"<->", SymRel},
	{"<<|", SymNdres},
	{"|>>", SymNrres},
	{">->", SymInj},
	{"+->", SymPfun},
	{"=>", SymImplies},
	{"<=", SymLe},
	{">=", SymGe},
	{"/=", SymNeq},
	{"<|", SymDres},
	{"|>", SymRres},
	{"->", SymFun},
	{"++", SymCat},
	{"..", SymUpto},
	{"{", SymSetOpen},
	{"}", SymSetClose},
	{"|", SymMid},
}

var wordOrder = []struct {
	word string
	sym  Symbol
}{
	{"forall", SymForall},
	{"exists1", SymExists1},
	{"exists", SymExists},
	{"lambda", SymLambda},
	{"mu", SymMu},
	{"and", SymAnd},
	{"or", SymOr},
	{"notin", SymNotin},
	{"not", SymNot},
	{"in", SymIn},
	{"subseteq", SymSubseteq},
	{"subset", SymSubset},
	{"union", SymUnion},
	{"intersect", SymIntersect},
	{"div", SymDiv},
	{"mod", SymMod},
	{"cross", SymCross},
	{"N", SymNat},
	{"Z", SymInt},
	{"P", SymPower},
	{"F", SymFinset},
}

func newFormulaizer(g *Generator) (*formulaizer, error) {
	var pairs []string
	for _, s := range symbolicOrder {
		sp, err := g.sym(s.sym)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, s.spell, sp+" ")
	}
	f := &formulaizer{symbolic: strings.NewReplacer(pairs...)}
	for _, w := range wordOrder {
		sp, err := g.sym(w.sym)
		if err != nil {
			return nil, err
		}
		f.words = append(f.words, wordRepl{
			re:  regexp.MustCompile(`\b` + w.word + `\b`),
			rep: sp + " ",
		})
	}
	return f, nil
}

// formula converts one recognized source snippet to dialect markup.
func (f *formulaizer) formula(src string) string {
	out := f.symbolic.Replace(src)
	for _, w := range f.words {
		out = w.re.ReplaceAllString(out, strings.ReplaceAll(w.rep, "$", "$$"))
	}
	return strings.Join(strings.Fields(out), " ")
}

func (f *formulaizer) math(src string) string {
	return "$" + f.formula(src) + "$"
}

var (
	backtickRe   = regexp.MustCompile("`([^`]+)`")
	setBuilderRe = regexp.MustCompile(`\{[^{}$]*\|[^{}$]*\}`)
	parenLogicRe = regexp.MustCompile(`\(([^()$]*\s(?:and|or|=>|<=>)\s[^()$]*)\)`)
	connectiveRe = regexp.MustCompile(`([A-Za-z0-9_']+)\s*(=>|<=>)\s*([A-Za-z0-9_']+)`)
	scriptsRe    = regexp.MustCompile(`\b([A-Za-z][A-Za-z0-9]*)([\^_])([A-Za-z0-9]+)`)
	quantRe      = regexp.MustCompile(`\b(forall|exists1|exists|lambda|mu)\s+[A-Za-z_][\w']*\s*:\s*[^,.;]+`)
	declRe       = regexp.MustCompile(`\b([A-Za-z_][\w']*)\s*:\s*(N|Z|[A-Z]\w*)\b`)
	applyRe      = regexp.MustCompile(`\b([a-z][\w']*)\(([^()$]*)\)`)
	relSymRe     = regexp.MustCompile(`([A-Za-z0-9_']+)\s*(=|/=|<=|>=|<|>)\s*([A-Za-z0-9_']+)`)
	relWordRe    = regexp.MustCompile(`\b([A-Za-z]\d*)\s+(in|notin|subset|subseteq)\s+([A-Z]\w*|[a-z]\d*)\b`)
)

func (f *formulaizer) manual(s string) string {
	return mapOutsideMath(s, func(seg string) string {
		return backtickRe.ReplaceAllStringFunc(seg, func(m string) string {
			return f.math(m[1 : len(m)-1])
		})
	})
}

func (f *formulaizer) setBuilder(s string) string {
	return mapOutsideMath(s, func(seg string) string {
		return setBuilderRe.ReplaceAllStringFunc(seg, f.math)
	})
}

func (f *formulaizer) parenLogic(s string) string {
	return mapOutsideMath(s, func(seg string) string {
		return parenLogicRe.ReplaceAllStringFunc(seg, f.math)
	})
}

func (f *formulaizer) connectives(s string) string {
	return mapOutsideMath(s, func(seg string) string {
		return connectiveRe.ReplaceAllStringFunc(seg, f.math)
	})
}

func (f *formulaizer) scripts(s string) string {
	return mapOutsideMath(s, func(seg string) string {
		return scriptsRe.ReplaceAllStringFunc(seg, func(m string) string {
			sub := scriptsRe.FindStringSubmatch(m)
			return "$" + sub[1] + sub[2] + "{" + sub[3] + "}$"
		})
	})
}

func (f *formulaizer) quantifiers(s string) string {
	return mapOutsideMath(s, func(seg string) string {
		return quantRe.ReplaceAllStringFunc(seg, f.math)
	})
}

func (f *formulaizer) declarations(s string) string {
	return mapOutsideMath(s, func(seg string) string {
		return declRe.ReplaceAllStringFunc(seg, f.math)
	})
}

func (f *formulaizer) application(s string) string {
	return mapOutsideMath(s, func(seg string) string {
		return applyRe.ReplaceAllStringFunc(seg, f.math)
	})
}

func (f *formulaizer) relational(s string) string {
	s = mapOutsideMath(s, func(seg string) string {
		return relSymRe.ReplaceAllStringFunc(seg, f.math)
	})
	return mapOutsideMath(s, func(seg string) string {
		return relWordRe.ReplaceAllStringFunc(seg, f.math)
	})
}
