package els

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var eachClause = regexp.MustCompile(`^(.+)\s+as\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*(?:,\s*([A-Za-z_$][A-Za-z0-9_$]*))?$`)

// parser builds the syntax tree from the token stream by recursive descent.
// Blocks must be balanced: every {#if} closes with {/if} and every {#each}
// with {/each}, in nesting order.
type parser struct {
	lex    *lexer
	tokens []token
	pos    int
}

func parse(l *lexer) ([]node, error) {
	tokens, err := l.tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{lex: l, tokens: tokens}
	nodes, end, err := p.parseUntil(tokEOF)
	if err != nil {
		return nil, err
	}
	if end.kind != tokEOF {
		return nil, p.unexpected(end)
	}
	return nodes, nil
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) tokenError(tok token, err error, detail string) *Error {
	return &Error{Template: p.lex.name, Pos: tok.pos, Err: err, Detail: detail}
}

func (p *parser) unexpected(tok token) *Error {
	return p.tokenError(tok, ErrUnexpected, tok.kind.String())
}

// parseUntil collects nodes until one of the terminator kinds is reached and
// returns that terminator. Reaching the end of input when it is not a
// terminator is reported to the caller as a tokEOF terminator.
func (p *parser) parseUntil(terminators ...tokenKind) ([]node, token, error) {
	var nodes []node
	for {
		tok := p.next()
		if slices.Contains(terminators, tok.kind) {
			return nodes, tok, nil
		}

		switch tok.kind {
		case tokEOF:
			return nodes, tok, nil
		case tokText:
			nodes = append(nodes, textNode(tok.val))
		case tokExpr, tokRaw:
			e, err := p.expression(tok, tok.val)
			if err != nil {
				return nil, tok, err
			}
			nodes = append(nodes, &exprNode{expr: e, raw: tok.kind == tokRaw})
		case tokSlot:
			nodes = append(nodes, slotNode{})
		case tokIf:
			n, err := p.parseIf(tok)
			if err != nil {
				return nil, tok, err
			}
			nodes = append(nodes, n)
		case tokEach:
			n, err := p.parseEach(tok)
			if err != nil {
				return nil, tok, err
			}
			nodes = append(nodes, n)
		default:
			return nil, tok, p.unexpected(tok)
		}
	}
}

func (p *parser) expression(tok token, src string) (*expression, error) {
	return compileExpression(p.lex, tok.offset, src)
}

func (p *parser) parseIf(open token) (*ifNode, error) {
	n := &ifNode{}
	cond, err := p.expression(open, open.val)
	if err != nil {
		return nil, err
	}

	for {
		body, end, err := p.parseUntil(tokElseIf, tokElse, tokEndIf)
		if err != nil {
			return nil, err
		}
		n.branches = append(n.branches, ifBranch{cond: cond, body: body})

		switch end.kind {
		case tokElseIf:
			if cond, err = p.expression(end, end.val); err != nil {
				return nil, err
			}
		case tokElse:
			els, closing, err := p.parseUntil(tokEndIf)
			if err != nil {
				return nil, err
			}
			if closing.kind != tokEndIf {
				return nil, p.unterminated(open, "{#if}")
			}
			n.otherwise = els
			return n, nil
		case tokEndIf:
			return n, nil
		default:
			return nil, p.unterminated(open, "{#if}")
		}
	}
}

func (p *parser) parseEach(open token) (*eachNode, error) {
	m := eachClause.FindStringSubmatch(open.val)
	if m == nil {
		return nil, p.tokenError(open, ErrSyntax, fmt.Sprintf("expected {#each LIST as ITEM[, INDEX]}, got {#each %s}", open.val))
	}
	list, err := p.expression(open, strings.TrimSpace(m[1]))
	if err != nil {
		return nil, err
	}
	n := &eachNode{list: list, item: m[2], index: m[3]}

	body, end, err := p.parseUntil(tokElse, tokEndEach)
	if err != nil {
		return nil, err
	}
	n.body = body

	switch end.kind {
	case tokEndEach:
		return n, nil
	case tokElse:
		els, closing, err := p.parseUntil(tokEndEach)
		if err != nil {
			return nil, err
		}
		if closing.kind != tokEndEach {
			return nil, p.unterminated(open, "{#each}")
		}
		n.otherwise = els
		return n, nil
	}
	return nil, p.unterminated(open, "{#each}")
}

func (p *parser) unterminated(open token, block string) *Error {
	return p.tokenError(open, ErrUnterminated, block+" opened here is never closed")
}
