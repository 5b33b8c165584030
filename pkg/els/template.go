package els

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"maps"
	"os"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/elysium/pkg/logger"
)

// Template is a compiled .els component. It is immutable and safe for
// concurrent use.
type Template struct {
	// Name identifies the template in errors and logs, usually its path.
	Name string
	// Imports lists the import lines stripped from the script block.
	Imports []string

	decls []declaration
	nodes []node
	slot  bool
	err   error
	log   *slog.Logger
}

// Option configures compilation.
type Option func(*Template)

// WithLogger sets the logger used for isolated render failures.
func WithLogger(log *slog.Logger) Option {
	return func(t *Template) {
		if log != nil {
			t.log = log
		}
	}
}

// Compile parses src into a Template. Syntax errors carry the line and
// column of the offending tag.
func Compile(name, src string, opts ...Option) (_ *Template, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Template: name, Err: ErrSyntax, Detail: fmt.Sprintf("compiler panicked: %v", r)}
		}
	}()

	t := newTemplate(name, opts)
	l := newLexer(name, src, -1, -1)

	if from, to, bodyFrom, bodyTo, ok := findScript(src); ok {
		s, err := parseScript(l, from, to, bodyFrom, bodyTo)
		if err != nil {
			return nil, err
		}
		l.skipFrom, l.skipTo = s.from, s.to
		t.Imports = s.imports
		t.decls = s.decls
	}

	nodes, err := parse(l)
	if err != nil {
		return nil, err
	}
	t.nodes = nodes
	t.slot = hasSlot(nodes)
	return t, nil
}

// CompileOrFallback compiles src and, when that fails, logs the error and
// returns a template that renders the error message inline.
func CompileOrFallback(name, src string, opts ...Option) *Template {
	t, err := Compile(name, src, opts...)
	if err == nil {
		return t
	}
	fallback := newTemplate(name, opts)
	fallback.err = err
	fallback.log.Error("template compilation failed",
		logger.Component("els"),
		slog.String("template", name),
		logger.Error(err),
	)
	return fallback
}

// ParseFile reads and compiles a template file.
func ParseFile(path string, opts ...Option) (*Template, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("els: read %s: %w", path, err)
	}
	return Compile(path, string(src), opts...)
}

func newTemplate(name string, opts []Option) *Template {
	t := &Template{Name: name, log: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func hasSlot(nodes []node) bool {
	for _, n := range nodes {
		switch v := n.(type) {
		case slotNode:
			return true
		case *ifNode:
			for _, b := range v.branches {
				if hasSlot(b.body) {
					return true
				}
			}
			if hasSlot(v.otherwise) {
				return true
			}
		case *eachNode:
			if hasSlot(v.body) || hasSlot(v.otherwise) {
				return true
			}
		}
	}
	return false
}

// HasSlot reports whether the template contains a <slot /> and can act as
// a layout.
func (t *Template) HasSlot() bool {
	return t.slot
}

// Err returns the compile error of a fallback template, or nil.
func (t *Template) Err() error {
	return t.err
}

type renderConfig struct {
	slot   templ.Component
	strict bool
}

// RenderOption configures a single render.
type RenderOption func(*renderConfig)

// WithSlot sets the content placed at <slot />.
func WithSlot(child templ.Component) RenderOption {
	return func(c *renderConfig) {
		c.slot = child
	}
}

// Strict makes render failures return an error instead of writing the
// inline error fragment.
func Strict() RenderOption {
	return func(c *renderConfig) {
		c.strict = true
	}
}

// Render writes the template output for data to w. Output is buffered, so
// nothing is written when rendering fails. By default a failure is logged
// and replaced with an inline error fragment; only write errors reach the
// caller. With Strict the failure is returned instead.
func (t *Template) Render(ctx context.Context, w io.Writer, data map[string]any, opts ...RenderOption) error {
	var cfg renderConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var buf bytes.Buffer
	err := t.execute(ctx, &buf, data, cfg.slot)
	if err == nil {
		_, err = buf.WriteTo(w)
		return err
	}
	if cfg.strict {
		return err
	}

	if t.err == nil {
		t.log.ErrorContext(ctx, "template render failed",
			logger.Component("els"),
			slog.String("template", t.Name),
			logger.Error(err),
		)
	}
	_, werr := io.WriteString(w, ErrorFragment(err))
	return werr
}

// Component binds data to the template as a templ.Component.
func (t *Template) Component(data map[string]any, opts ...RenderOption) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.Render(ctx, w, data, opts...)
	})
}

func (t *Template) execute(ctx context.Context, w io.Writer, data map[string]any, slot templ.Component) (err error) {
	if t.err != nil {
		return t.err
	}
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Template: t.Name, Err: ErrPanic, Detail: fmt.Sprint(r)}
		}
	}()

	s := &scope{ctx: ctx, name: t.Name, w: w, env: maps.Clone(data), slot: slot}
	if s.env == nil {
		s.env = make(map[string]any)
	}
	for _, d := range t.decls {
		if d.prop {
			if _, ok := s.env[d.name]; ok {
				continue
			}
		}
		var v any
		if d.expr != nil {
			if v, err = d.expr.eval(s); err != nil {
				return err
			}
		}
		s.env[d.name] = v
	}
	return renderAll(s, t.nodes)
}

// ErrorFragment renders err as the inline error element shown in place of
// a failed component.
func ErrorFragment(err error) string {
	return `<div class="els-error" role="alert">` + html.EscapeString(err.Error()) + `</div>`
}

// IsCompileError reports whether err came from parsing a template rather
// than from rendering it.
func IsCompileError(err error) bool {
	return errors.Is(err, ErrSyntax) || errors.Is(err, ErrUnterminated) ||
		errors.Is(err, ErrUnexpected) || errors.Is(err, ErrScript) || errors.Is(err, ErrExpression)
}
