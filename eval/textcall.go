package eval

import (
	"strings"

	"github.com/openxl/xl/formula"
	"github.com/openxl/xl/value"
)

func (e *Env) evalTextCall(n formula.TextCall) (value.CellValue, *Error) {
	name, minArgs, maxArgs := textFnArity(n.Fn)
	if len(n.Args) < minArgs || len(n.Args) > maxArgs {
		return value.CellValue{}, &Error{Kind: InvalidArgCount, Fn: name, Expected: minArgs, Actual: len(n.Args)}
	}
	args, err := e.evalTextArgs(n.Args)
	if err != nil {
		return value.CellValue{}, err
	}
	switch n.Fn {
	case formula.FnLeft:
		n, err := e.intArgOrDefault(args, 1, 1)
		if err != nil {
			return value.CellValue{}, err
		}
		return value.NewText(takeLeft(args[0], n)), nil
	case formula.FnRight:
		n, err := e.intArgOrDefault(args, 1, 1)
		if err != nil {
			return value.CellValue{}, err
		}
		return value.NewText(takeRight(args[0], n)), nil
	case formula.FnMid:
		start, err := e.intArgOrDefault(args, 1, 1)
		if err != nil {
			return value.CellValue{}, err
		}
		count, err := e.intArgOrDefault(args, 2, 0)
		if err != nil {
			return value.CellValue{}, err
		}
		return value.NewText(takeMid(args[0], start, count)), nil
	case formula.FnLen:
		return value.NewNumberFromInt(int64(len([]rune(args[0])))), nil
	case formula.FnUpper:
		return value.NewText(strings.ToUpper(args[0])), nil
	case formula.FnLower:
		return value.NewText(strings.ToLower(args[0])), nil
	}
	return value.CellValue{}, &Error{Kind: NotImplemented, Fn: name}
}

func (e *Env) evalTextArgs(exprs []formula.Expr) ([]string, *Error) {
	out := make([]string, len(exprs))
	for i, a := range exprs {
		v, err := e.Eval(a)
		if err != nil {
			return nil, err
		}
		if err := checkPropagated(v); err != nil {
			return nil, err
		}
		s, err := toText(v)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// intArgOrDefault parses the already-evaluated text of args[idx] as a
// number and truncates it to an int, or returns def if idx is beyond the
// supplied argument count. Non-numeric text yields a TypeMismatch error.
func (e *Env) intArgOrDefault(args []string, idx int, def int) (int, *Error) {
	if idx >= len(args) {
		return def, nil
	}
	d, derr := decimalFromText(args[idx])
	if derr != nil {
		return 0, &Error{Kind: TypeMismatch, Op: "numeric argument", Have: value.Text}
	}
	return int(d.IntPart()), nil
}

func takeLeft(s string, n int) string {
	r := []rune(s)
	if n < 0 {
		n = 0
	}
	if n > len(r) {
		n = len(r)
	}
	return string(r[:n])
}

func takeRight(s string, n int) string {
	r := []rune(s)
	if n < 0 {
		n = 0
	}
	if n > len(r) {
		n = len(r)
	}
	return string(r[len(r)-n:])
}

func takeMid(s string, start, count int) string {
	r := []rune(s)
	i := start - 1
	if i < 0 {
		i = 0
	}
	if i > len(r) {
		return ""
	}
	end := i + count
	if end > len(r) {
		end = len(r)
	}
	if end < i {
		end = i
	}
	return string(r[i:end])
}

func textFnArity(fn formula.TextFn) (name string, min, max int) {
	switch fn {
	case formula.FnLeft:
		return "LEFT", 1, 2
	case formula.FnRight:
		return "RIGHT", 1, 2
	case formula.FnMid:
		return "MID", 3, 3
	case formula.FnLen:
		return "LEN", 1, 1
	case formula.FnUpper:
		return "UPPER", 1, 1
	case formula.FnLower:
		return "LOWER", 1, 1
	}
	return "?", 0, 0
}
