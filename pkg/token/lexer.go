// Lexer for whiteboard Z notation.
//
// Design: maximal-munch with an explicit attempt order among overlapping
// prefixes (three-character spellings like |-> and <<| before their two-
// and one-character prefixes). Zero grammar knowledge beyond the sequence
// bracket heuristic, which is purely lexical.
package token

import "unicode"

type Lexer struct {
	source []rune
	pos    int
	line   int
	col    int

	// prev is the kind of the last significant token (Newline resets it),
	// consulted by the sequence-bracket heuristic.
	prev     Kind
	hasPrev  bool
	hadSpace bool
	// lineStart is true until the first token of the current line is emitted.
	lineStart bool
	seqDepth  int

	pending []Token
}

func NewLexer(source string) *Lexer {
	return &Lexer{
		source:    []rune(source),
		line:      1,
		col:       1,
		lineStart: true,
	}
}

// Scan tokenizes the whole input, always ending with an EOF token.
func Scan(source string) ([]Token, error) {
	l := NewLexer(source)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

// Next returns the next token or a *LexError.
func (l *Lexer) Next() (Token, error) {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return l.emit(tok), nil
	}

	l.skipSpace()

	if l.atEnd() {
		return l.emit(Token{Kind: EOF, Line: l.line, Col: l.col}), nil
	}

	startLine, startCol := l.line, l.col
	c := l.peek()

	if c == '\n' {
		l.advance()
		tok := Token{Kind: Newline, Lexeme: "\n", Line: startLine, Col: startCol}
		l.line++
		l.col = 1
		l.lineStart = true
		l.hasPrev = false
		return tok, nil
	}

	if isIdentStart(c) {
		return l.word(startLine, startCol)
	}
	if unicode.IsDigit(c) {
		return l.numberOrIdent(startLine, startCol)
	}

	return l.operator(startLine, startCol)
}

func (l *Lexer) skipSpace() {
	l.hadSpace = false
	for !l.atEnd() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance()
			l.hadSpace = true
		case c == '-' && l.peekAt(1) == '-' && l.peekAt(2) != '>':
			// -- starts a comment unless it is the surjection -->>.
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
			l.hadSpace = true
		default:
			return
		}
	}
}

// word scans an identifier, keyword, or line-leading block directive.
// Identifier characters are letters, digits, underscore and the prime
// decoration; a trailing ? or ! decoration is part of the name.
func (l *Lexer) word(line, col int) (Token, error) {
	start := l.pos
	for !l.atEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	if !l.atEnd() && (l.peek() == '?' || l.peek() == '!') {
		l.advance()
	}
	text := string(l.source[start:l.pos])

	if l.lineStart {
		if kind, ok := directives[text]; ok {
			return l.directive(kind, text, line, col)
		}
	}
	if kind, ok := keywords[text]; ok {
		return l.emit(Token{Kind: kind, Lexeme: text, Line: line, Col: col}), nil
	}
	switch text {
	case "N":
		return l.emit(Token{Kind: Nat, Lexeme: text, Line: line, Col: col}), nil
	case "Z":
		return l.emit(Token{Kind: Intset, Lexeme: text, Line: line, Col: col}), nil
	case "P":
		return l.emit(Token{Kind: Power, Lexeme: text, Line: line, Col: col}), nil
	case "F":
		return l.emit(Token{Kind: Finset, Lexeme: text, Line: line, Col: col}), nil
	}
	return l.emit(Token{Kind: Ident, Lexeme: text, Line: line, Col: col}), nil
}

// directive emits a block keyword. SECTION, SUBSECTION and PART take the
// rest of the line as opaque text; TEXT, PLAIN and RAW swallow a whole
// block body into a single Text token.
func (l *Lexer) directive(kind Kind, text string, line, col int) (Token, error) {
	tok := Token{Kind: kind, Lexeme: text, Line: line, Col: col}

	switch kind {
	case DSection, DSubsection, DPart:
		l.skipColon()
		bodyLine, bodyCol := l.line, l.col
		body := l.restOfLine()
		l.pending = append(l.pending, Token{Kind: Text, Lexeme: body, Line: bodyLine, Col: bodyCol})
	case DText, DPlain, DRaw:
		l.skipColon()
		bodyLine, bodyCol := l.line, l.col
		body := l.blockBody()
		l.pending = append(l.pending, Token{Kind: Text, Lexeme: body, Line: bodyLine, Col: bodyCol})
	}
	return l.emit(tok), nil
}

func (l *Lexer) skipColon() {
	for !l.atEnd() && (l.peek() == ' ' || l.peek() == '\t') {
		l.advance()
	}
	if !l.atEnd() && l.peek() == ':' {
		l.advance()
	}
	for !l.atEnd() && (l.peek() == ' ' || l.peek() == '\t') {
		l.advance()
	}
}

func (l *Lexer) restOfLine() string {
	start := l.pos
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
	return string(l.source[start:l.pos])
}

// blockBody captures raw text up to a blank line or a line whose first
// word is a block directive. The terminator is left unconsumed.
func (l *Lexer) blockBody() string {
	if !l.atEnd() && l.peek() == '\n' {
		l.advance()
		l.line++
		l.col = 1
	}
	start := l.pos
	end := l.pos
	for !l.atEnd() {
		l.restOfLine()
		end = l.pos
		if l.atEnd() {
			break
		}
		// Peek the next line without consuming it.
		probe := l.pos + 1 // past the newline
		ws := 0
		for probe+ws < len(l.source) && (l.source[probe+ws] == ' ' || l.source[probe+ws] == '\t') {
			ws++
		}
		rest := probe + ws
		if rest >= len(l.source) || l.source[rest] == '\n' {
			break // blank line ends the block
		}
		if l.directiveAhead(rest) {
			break
		}
		// Consume the newline and keep going.
		l.advance()
		l.line++
		l.col = 1
	}
	return string(l.source[start:end])
}

func (l *Lexer) directiveAhead(at int) bool {
	end := at
	for end < len(l.source) && unicode.IsUpper(l.source[end]) {
		end++
	}
	if end == at {
		return false
	}
	_, ok := directives[string(l.source[at:end])]
	return ok
}

// numberOrIdent scans a digit run; if a letter or underscore follows the
// digits the whole lexeme is a (digit-leading) identifier, otherwise it
// is a numeral.
func (l *Lexer) numberOrIdent(line, col int) (Token, error) {
	start := l.pos
	for !l.atEnd() && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	if !l.atEnd() && (unicode.IsLetter(l.peek()) || l.peek() == '_') {
		for !l.atEnd() && isIdentPart(l.peek()) {
			l.advance()
		}
		if !l.atEnd() && (l.peek() == '?' || l.peek() == '!') {
			l.advance()
		}
		return l.emit(Token{Kind: Ident, Lexeme: string(l.source[start:l.pos]), Line: line, Col: col}), nil
	}
	return l.emit(Token{Kind: Number, Lexeme: string(l.source[start:l.pos]), Line: line, Col: col}), nil
}

func (l *Lexer) operator(line, col int) (Token, error) {
	c := l.peek()
	spaceBefore := l.hadSpace || l.lineStart

	// Longest spellings first within each family.
	switch c {
	case '<':
		switch {
		case l.lookingAt("<=>"):
			return l.take(Iff, 3, line, col)
		case l.lookingAt("<->"):
			return l.take(Rel, 3, line, col)
		case l.lookingAt("<<|"):
			return l.take(Ndres, 3, line, col)
		case l.lookingAt("<<"):
			return l.take(DataOpen, 2, line, col)
		case l.lookingAt("<="):
			return l.take(Le, 2, line, col)
		case l.lookingAt("<|"):
			return l.take(Dres, 2, line, col)
		default:
			return l.angleOpen(spaceBefore, line, col)
		}
	case '|':
		switch {
		case l.lookingAt("|->"):
			return l.take(Maplet, 3, line, col)
		case l.lookingAt("|>>"):
			return l.take(Nrres, 3, line, col)
		case l.lookingAt("|>"):
			return l.take(Rres, 2, line, col)
		case l.lookingAt("|)"):
			return l.take(ImgClose, 2, line, col)
		default:
			return l.take(Bar, 1, line, col)
		}
	case '-':
		switch {
		case l.lookingAt("-->>"):
			return l.take(Surj, 4, line, col)
		case l.lookingAt("->"):
			return l.take(Fun, 2, line, col)
		default:
			return l.take(Minus, 1, line, col)
		}
	case '+':
		switch {
		case l.lookingAt("+->"):
			return l.take(Pfun, 3, line, col)
		case l.lookingAt("++"):
			return l.take(Cat, 2, line, col)
		default:
			return l.take(Plus, 1, line, col)
		}
	case '>':
		switch {
		case l.lookingAt(">->"):
			return l.take(Inj, 3, line, col)
		case l.lookingAt(">>"):
			return l.take(DataClose, 2, line, col)
		case l.lookingAt(">="):
			return l.take(Ge, 2, line, col)
		default:
			if l.seqDepth > 0 {
				l.seqDepth--
				return l.take(SeqClose, 1, line, col)
			}
			return l.take(Gt, 1, line, col)
		}
	case '=':
		switch {
		case l.lookingAt("=>"):
			return l.take(Implies, 2, line, col)
		case l.lookingAt("=="):
			return l.take(Abbrev, 2, line, col)
		default:
			return l.take(Eq, 1, line, col)
		}
	case '/':
		if l.lookingAt("/=") {
			return l.take(Neq, 2, line, col)
		}
	case ':':
		if l.lookingAt("::=") {
			return l.take(Defs, 3, line, col)
		}
		return l.take(Colon, 1, line, col)
	case '.':
		if l.lookingAt("..") {
			return l.take(Range, 2, line, col)
		}
		return l.take(Dot, 1, line, col)
	case '(':
		if l.lookingAt("(|") {
			return l.take(ImgOpen, 2, line, col)
		}
		return l.take(LParen, 1, line, col)
	case ')':
		return l.take(RParen, 1, line, col)
	case '[':
		if l.lookingAt("[[") {
			return l.take(BagOpen, 2, line, col)
		}
		if !spaceBefore && l.endsOperand() {
			return l.take(InstLBrack, 1, line, col)
		}
		return l.take(LBrack, 1, line, col)
	case ']':
		if l.lookingAt("]]") {
			return l.take(BagClose, 2, line, col)
		}
		return l.take(RBrack, 1, line, col)
	case '{':
		return l.take(LBrace, 1, line, col)
	case '}':
		return l.take(RBrace, 1, line, col)
	case '^':
		switch {
		case l.lookingAt("^*"):
			return l.take(IterStar, 2, line, col)
		case l.lookingAt("^+"):
			return l.take(IterPlus, 2, line, col)
		default:
			return l.take(Caret, 1, line, col)
		}
	case '~':
		return l.take(Tilde, 1, line, col)
	case '#':
		return l.take(Hash, 1, line, col)
	case '@':
		return l.take(At, 1, line, col)
	case ';':
		return l.take(Semi, 1, line, col)
	case ',':
		return l.take(Comma, 1, line, col)
	case '&':
		return l.take(Amp, 1, line, col)
	case '\\':
		return l.take(Setminus, 1, line, col)
	case '*':
		return l.take(Star, 1, line, col)
	case '∃':
		// ∃1 is the unique-existence quantifier when the 1 is glued on.
		if l.peekAt(1) == '1' && !isIdentPart(l.peekAt(2)) {
			return l.take(Exists1, 2, line, col)
		}
		return l.take(Exists, 1, line, col)
	}

	if kind, ok := singles[c]; ok {
		switch kind {
		case SeqOpen:
			l.seqDepth++
		case SeqClose:
			if l.seqDepth > 0 {
				l.seqDepth--
			}
		}
		return l.take(kind, 1, line, col)
	}

	return Token{}, &LexError{Line: line, Col: col, Char: c}
}

// angleOpen decides whether a bare < opens a sequence literal or is the
// less-than operator. The decision table, with S = whitespace before the
// bracket and G = no whitespace after it:
//
//	preceding token            S     G     decision
//	--------------------------------------------------
//	none / cannot end operand  any   any   sequence
//	ends an operand            yes   yes   sequence
//	ends an operand            yes   no    less-than
//	ends an operand            no    any   less-than
//
// So `<1, 2, 3>` and `s = <x>` are literals, `a<b` and `x < 1` are
// comparisons. `a<b,c>d` lexes as comparisons and is left for the parser
// to reject; the rule is deterministic, not clairvoyant.
func (l *Lexer) angleOpen(spaceBefore bool, line, col int) (Token, error) {
	glued := !isSpaceRune(l.peekAt(1))
	if !l.endsOperand() || (spaceBefore && glued) {
		l.seqDepth++
		return l.take(SeqOpen, 1, line, col)
	}
	return l.take(Lt, 1, line, col)
}

// endsOperand reports whether the previous token on this line can be the
// end of an operand.
func (l *Lexer) endsOperand() bool {
	if !l.hasPrev {
		return false
	}
	switch l.prev {
	case Ident, Number, RParen, RBrack, RBrace, SeqClose, BagClose, ImgClose,
		Nat, Intset, Tilde, IterStar, IterPlus:
		return true
	}
	return false
}

func (l *Lexer) take(kind Kind, n int, line, col int) (Token, error) {
	start := l.pos
	for i := 0; i < n; i++ {
		l.advance()
	}
	return l.emit(Token{Kind: kind, Lexeme: string(l.source[start:l.pos]), Line: line, Col: col}), nil
}

func (l *Lexer) emit(tok Token) Token {
	if tok.Kind != Newline && tok.Kind != EOF {
		l.prev = tok.Kind
		l.hasPrev = true
		l.lineStart = false
	}
	return tok
}

func (l *Lexer) lookingAt(s string) bool {
	for i, r := range []rune(s) {
		if l.peekAt(i) != r {
			return false
		}
	}
	return true
}

func (l *Lexer) peek() rune { return l.peekAt(0) }

func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.source) {
		return '\x00'
	}
	return l.source[l.pos+n]
}

func (l *Lexer) advance() rune {
	c := l.source[l.pos]
	l.pos++
	l.col++
	return c
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.source) }

func isIdentStart(c rune) bool {
	return unicode.IsLetter(c) && !isReservedLetter(c) || c == '_'
}

// isReservedLetter keeps standalone Unicode operator letters (μ, λ) out
// of identifiers.
func isReservedLetter(c rune) bool {
	switch c {
	case 'μ', 'λ', 'ℙ', '𝔽', 'ℕ', 'ℤ':
		return true
	}
	return false
}

func isIdentPart(c rune) bool {
	return (unicode.IsLetter(c) && !isReservedLetter(c)) || unicode.IsDigit(c) || c == '_' || c == '\''
}

func isSpaceRune(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\x00'
}
