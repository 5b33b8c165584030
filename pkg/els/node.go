package els

import (
	"context"
	"errors"
	"html"
	"io"
	"maps"

	"github.com/a-h/templ"
)

// scope is the render state shared by the nodes of one render call.
type scope struct {
	ctx  context.Context
	name string
	w    io.Writer
	env  map[string]any
	slot templ.Component
}

func (s *scope) with(vars map[string]any) *scope {
	env := maps.Clone(s.env)
	maps.Copy(env, vars)
	return &scope{ctx: s.ctx, name: s.name, w: s.w, env: env, slot: s.slot}
}

type node interface {
	render(s *scope) error
}

func renderAll(s *scope, nodes []node) error {
	for _, n := range nodes {
		if err := n.render(s); err != nil {
			return err
		}
	}
	return nil
}

type textNode string

func (t textNode) render(s *scope) error {
	_, err := io.WriteString(s.w, string(t))
	return err
}

// exprNode writes an expression value, HTML-escaped unless raw.
// Values that are templ components render themselves.
type exprNode struct {
	expr *expression
	raw  bool
}

func (n *exprNode) render(s *scope) error {
	v, err := n.expr.eval(s)
	if err != nil {
		return err
	}
	if c, ok := v.(templ.Component); ok {
		return c.Render(s.ctx, s.w)
	}
	out := stringify(v)
	if !n.raw {
		out = html.EscapeString(out)
	}
	_, err = io.WriteString(s.w, out)
	return err
}

type ifBranch struct {
	cond *expression
	body []node
}

type ifNode struct {
	branches  []ifBranch
	otherwise []node
}

func (n *ifNode) render(s *scope) error {
	for _, b := range n.branches {
		v, err := b.cond.eval(s)
		if err != nil {
			return err
		}
		if truthy(v) {
			return renderAll(s, b.body)
		}
	}
	return renderAll(s, n.otherwise)
}

type eachNode struct {
	list      *expression
	item      string
	index     string
	body      []node
	otherwise []node
}

func (n *eachNode) render(s *scope) error {
	v, err := n.list.eval(s)
	if err != nil {
		return err
	}
	count, err := iterate(v, func(index, item any) error {
		vars := map[string]any{n.item: item}
		if n.index != "" {
			vars[n.index] = index
		}
		return renderAll(s.with(vars), n.body)
	})
	var located *Error
	if errors.Is(err, ErrNotIterable) && !errors.As(err, &located) {
		return &Error{Template: s.name, Pos: n.list.pos, Err: ErrNotIterable, Detail: n.list.src}
	}
	if err != nil {
		return err
	}
	if count == 0 {
		return renderAll(s, n.otherwise)
	}
	return nil
}

type slotNode struct{}

func (slotNode) render(s *scope) error {
	if s.slot == nil {
		return nil
	}
	return s.slot.Render(s.ctx, s.w)
}
