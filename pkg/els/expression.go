package els

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// expression is a compiled expr-lang program with its source location.
type expression struct {
	src     string
	pos     Position
	program *vm.Program
}

func compileExpression(l *lexer, offset int, src string) (*expression, error) {
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, l.errorAt(offset, ErrExpression, fmt.Sprintf("%s: %v", src, err))
	}
	return &expression{src: src, pos: l.position(offset), program: program}, nil
}

func (e *expression) eval(s *scope) (any, error) {
	out, err := expr.Run(e.program, s.env)
	if err != nil {
		return nil, &Error{Template: s.name, Pos: e.pos, Err: ErrEvaluation, Detail: fmt.Sprintf("%s: %v", e.src, err)}
	}
	return out, nil
}

// truthy follows template conventions: nil, false, zero numbers, empty
// strings and empty collections are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case float64:
		return t != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	}
	return true
}

// iterate calls fn for every element of a slice or array (index, item) and
// every entry of a map (key, value) in sorted key order. Nil is empty.
func iterate(v any, fn func(index, item any) error) (int, error) {
	if v == nil {
		return 0, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if err := fn(i, rv.Index(i).Interface()); err != nil {
				return i, err
			}
		}
		return rv.Len(), nil
	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return compareKeys(a, b)
		})
		for i, k := range keys {
			if err := fn(k.Interface(), rv.MapIndex(k).Interface()); err != nil {
				return i, err
			}
		}
		return len(keys), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := int(rv.Int())
		for i := range n {
			if err := fn(i, i); err != nil {
				return i, err
			}
		}
		return max(n, 0), nil
	}
	return 0, fmt.Errorf("%w: %T", ErrNotIterable, v)
}

func compareKeys(a, b reflect.Value) int {
	if a.CanInt() && b.CanInt() {
		return cmp.Compare(a.Int(), b.Int())
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

// stringify renders a value the way it appears in output.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
