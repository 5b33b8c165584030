package els

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokText
	tokExpr
	tokRaw
	tokIf
	tokElseIf
	tokElse
	tokEndIf
	tokEach
	tokEndEach
	tokSlot
)

var tokenNames = map[tokenKind]string{
	tokEOF:     "end of template",
	tokText:    "text",
	tokExpr:    "{expr}",
	tokRaw:     "{@html}",
	tokIf:      "{#if}",
	tokElseIf:  "{:else if}",
	tokElse:    "{:else}",
	tokEndIf:   "{/if}",
	tokEach:    "{#each}",
	tokEndEach: "{/each}",
	tokSlot:    "<slot />",
}

func (k tokenKind) String() string {
	return tokenNames[k]
}

type token struct {
	kind   tokenKind
	val    string
	pos    Position
	offset int
}

var slotTag = regexp.MustCompile(`^<slot\s*/>|^<slot\s*>\s*</slot>`)

// lexer splits a template body into text, tag and slot tokens.
// The region [skipFrom, skipTo) holds the script block and is not emitted.
type lexer struct {
	name       string
	src        string
	skipFrom   int
	skipTo     int
	lineStarts []int
}

func newLexer(name, src string, skipFrom, skipTo int) *lexer {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lexer{name: name, src: src, skipFrom: skipFrom, skipTo: skipTo, lineStarts: starts}
}

func (l *lexer) position(offset int) Position {
	line := sort.Search(len(l.lineStarts), func(i int) bool { return l.lineStarts[i] > offset }) - 1
	return Position{Line: line + 1, Column: offset - l.lineStarts[line] + 1}
}

func (l *lexer) errorAt(offset int, err error, detail string) *Error {
	return &Error{Template: l.name, Pos: l.position(offset), Err: err, Detail: detail}
}

func (l *lexer) tokens() ([]token, error) {
	var (
		out       []token
		text      strings.Builder
		textStart = -1
	)
	flush := func() {
		if text.Len() > 0 {
			out = append(out, token{kind: tokText, val: text.String(), pos: l.position(textStart)})
		}
		text.Reset()
		textStart = -1
	}
	appendByte := func(offset int, c byte) {
		if textStart < 0 {
			textStart = offset
		}
		text.WriteByte(c)
	}

	i := 0
	for i < len(l.src) {
		if i == l.skipFrom && l.skipTo > l.skipFrom {
			i = l.skipTo
			continue
		}

		switch c := l.src[i]; {
		case c == '{' && l.opensTag(i):
			flush()
			end, err := l.tagEnd(i)
			if err != nil {
				return nil, err
			}
			tok, err := l.classify(i, l.src[i+1:end])
			if err != nil {
				return nil, err
			}
			tok.offset = i
			out = append(out, tok)
			i = end + 1

		case c == '<' && strings.HasPrefix(l.src[i:], "<slot"):
			if m := slotTag.FindString(l.src[i:]); m != "" {
				flush()
				out = append(out, token{kind: tokSlot, pos: l.position(i)})
				i += len(m)
				continue
			}
			appendByte(i, '<')
			i++

		default:
			appendByte(i, c)
			i++
		}
	}
	flush()
	out = append(out, token{kind: tokEOF, pos: l.position(len(l.src))})
	return out, nil
}

// opensTag reports whether the brace at i starts a tag. A brace followed by
// any Unicode whitespace, a closing brace or the end of input is literal
// text, which keeps inline CSS and JSON snippets intact.
func (l *lexer) opensTag(i int) bool {
	if i+1 >= len(l.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(l.src[i+1:])
	return r != '}' && !unicode.IsSpace(r)
}

// tagEnd returns the offset of the brace closing the tag opened at start,
// skipping nested braces and quoted strings inside the expression.
func (l *lexer) tagEnd(start int) (int, error) {
	depth := 0
	var quote byte
	for i := start + 1; i < len(l.src); i++ {
		c := l.src[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, l.errorAt(start, ErrSyntax, "tag is never closed with }")
}

func (l *lexer) classify(offset int, inner string) (token, error) {
	pos := l.position(offset)
	body := strings.TrimSpace(inner)
	if body == "" {
		return token{}, l.errorAt(offset, ErrSyntax, "empty tag")
	}

	keyword := func(prefix string) (string, bool) {
		if body == prefix {
			return "", true
		}
		if rest, ok := strings.CutPrefix(body, prefix+" "); ok {
			return strings.TrimSpace(rest), true
		}
		return "", false
	}

	switch body[0] {
	case '#':
		if expr, ok := keyword("#if"); ok {
			if expr == "" {
				return token{}, l.errorAt(offset, ErrSyntax, "{#if} needs a condition")
			}
			return token{kind: tokIf, val: expr, pos: pos}, nil
		}
		if expr, ok := keyword("#each"); ok {
			if expr == "" {
				return token{}, l.errorAt(offset, ErrSyntax, "{#each} needs a list")
			}
			return token{kind: tokEach, val: expr, pos: pos}, nil
		}
	case ':':
		if expr, ok := keyword(":else if"); ok {
			if expr == "" {
				return token{}, l.errorAt(offset, ErrSyntax, "{:else if} needs a condition")
			}
			return token{kind: tokElseIf, val: expr, pos: pos}, nil
		}
		if body == ":else" {
			return token{kind: tokElse, pos: pos}, nil
		}
	case '/':
		switch body {
		case "/if":
			return token{kind: tokEndIf, pos: pos}, nil
		case "/each":
			return token{kind: tokEndEach, pos: pos}, nil
		}
	case '@':
		if expr, ok := keyword("@html"); ok && expr != "" {
			return token{kind: tokRaw, val: expr, pos: pos}, nil
		}
	default:
		return token{kind: tokExpr, val: body, pos: pos}, nil
	}
	return token{}, l.errorAt(offset, ErrSyntax, "unknown tag {"+body+"}")
}
