package els

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax       = errors.New("els: syntax error")
	ErrUnterminated = errors.New("els: unterminated block")
	ErrUnexpected   = errors.New("els: unexpected block tag")
	ErrScript       = errors.New("els: invalid script block")
	ErrExpression   = errors.New("els: invalid expression")
	ErrEvaluation   = errors.New("els: evaluation failed")
	ErrNotIterable  = errors.New("els: value is not iterable")
	ErrPanic        = errors.New("els: render panicked")
)

// Position is a 1-based line and column in the template source.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error describes a compile or render failure at a source position.
type Error struct {
	Template string
	Pos      Position
	Err      error
	Detail   string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s:%s: %v", e.Template, e.Pos, e.Err)
	}
	return fmt.Sprintf("%s:%s: %v: %s", e.Template, e.Pos, e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}
