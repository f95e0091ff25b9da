package lang

import (
	"strings"
	"unicode/utf8"
)

// TokenKind classifies a lexical token.
type TokenKind int

// Token kinds.
const (
	TokenText TokenKind = iota
	TokenVar
	TokenIf
	TokenElse
	TokenEndIf
	TokenEach
	TokenEndEach
	TokenMedia
)

var tokenNames = [...]string{
	TokenText:    "text",
	TokenVar:     "variable",
	TokenIf:      "if",
	TokenElse:    "else",
	TokenEndIf:   "endif",
	TokenEach:    "each",
	TokenEndEach: "endeach",
	TokenMedia:   "media",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenNames) {
		return tokenNames[k]
	}

	return "unknown"
}

// MarshalText implements [encoding.TextMarshaler].
func (k TokenKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Delimiters recognized by the lexer.
const (
	openDelim   = "{{"
	closeDelim  = "}}"
	mediaPrefix = "[media:"
	escapeChar  = '\\'
)

// Token is one lexical unit of template source. Concatenating the Raw text of
// every token returned by [Lex] reproduces the input exactly.
type Token struct {
	Kind TokenKind `json:"kind"  yaml:"kind"`
	Raw  string    `json:"raw"   yaml:"raw"`
	// Value is the literal text of a Text token (escapes removed), the
	// variable name of a Var token, the expression of an If or Each token,
	// or the trimmed id of a Media token.
	Value string   `json:"value" yaml:"value"`
	Pos   Position `json:"pos"   yaml:"pos"`
}

// End returns the byte offset just past the token.
func (t Token) End() int { return t.Pos.Offset + len(t.Raw) }

// Lex splits text into tokens in a single left-to-right pass. It never fails:
// anything that is not a well-formed tag is text.
func Lex(text string) []Token {
	l := &lexer{src: text, line: 1, col: 1}
	l.run()

	return l.toks
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
	toks []Token
}

func (l *lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Col: l.col}
}

// advance moves n bytes forward, tracking line and column.
func (l *lexer) advance(n int) {
	end := min(l.pos+n, len(l.src))

	for l.pos < end {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size

		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
}

func (l *lexer) emit(kind TokenKind, n int, value string) {
	pos := l.position()
	raw := l.src[pos.Offset : pos.Offset+n]

	l.advance(n)

	if kind == TokenText && len(l.toks) > 0 {
		last := &l.toks[len(l.toks)-1]
		if last.Kind == TokenText {
			last.Raw += raw
			last.Value += value

			return
		}
	}

	l.toks = append(l.toks, Token{Kind: kind, Raw: raw, Value: value, Pos: pos})
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		rest := l.src[l.pos:]

		switch {
		case rest[0] == escapeChar && strings.HasPrefix(rest[1:], openDelim):
			l.emit(TokenText, 1+len(openDelim), openDelim)

		case rest[0] == escapeChar && strings.HasPrefix(rest[1:], mediaPrefix):
			l.emit(TokenText, 1+len(mediaPrefix), mediaPrefix)

		case strings.HasPrefix(rest, openDelim):
			l.lexTag(rest)

		case strings.HasPrefix(rest, mediaPrefix):
			l.lexMedia(rest)

		default:
			n := nextSpecial(rest)
			l.emit(TokenText, n, rest[:n])
		}
	}
}

// nextSpecial returns the length of the plain text prefix of s, which is at
// least one byte.
func nextSpecial(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '{', '[', escapeChar:
			return i
		}
	}

	return len(s)
}

func (l *lexer) lexTag(rest string) {
	end := strings.Index(rest[len(openDelim):], closeDelim)
	if end < 0 {
		l.emit(TokenText, len(openDelim), openDelim)

		return
	}

	inner := rest[len(openDelim) : len(openDelim)+end]

	// "{{a {{b}}" opens a tag only at the innermost "{{"
	if i := strings.Index(inner, openDelim); i >= 0 {
		n := len(openDelim) + i
		l.emit(TokenText, n, rest[:n])

		return
	}

	n := len(openDelim) + end + len(closeDelim)
	body := strings.TrimSpace(inner)

	switch {
	case keyword(body, "#if"):
		l.emit(TokenIf, n, strings.TrimSpace(body[len("#if"):]))
	case body == "#else":
		l.emit(TokenElse, n, "")
	case body == "/if":
		l.emit(TokenEndIf, n, "")
	case keyword(body, "#each"):
		l.emit(TokenEach, n, strings.TrimSpace(body[len("#each"):]))
	case body == "/each":
		l.emit(TokenEndEach, n, "")
	case strings.HasPrefix(body, "#"), strings.HasPrefix(body, "/"):
		l.emit(TokenText, n, rest[:n])
	default:
		l.emit(TokenVar, n, body)
	}
}

// keyword reports whether s is kw alone or kw followed by whitespace.
func keyword(s, kw string) bool {
	if !strings.HasPrefix(s, kw) {
		return false
	}

	if len(s) == len(kw) {
		return true
	}

	switch s[len(kw)] {
	case ' ', '\t', '\n', '\r':
		return true
	}

	return false
}

func (l *lexer) lexMedia(rest string) {
	body := rest[len(mediaPrefix):]

	end := strings.IndexAny(body, "]\n[")
	if end < 0 || body[end] != ']' {
		l.emit(TokenText, len(mediaPrefix), mediaPrefix)

		return
	}

	l.emit(TokenMedia, len(mediaPrefix)+end+1, strings.TrimSpace(body[:end]))
}
