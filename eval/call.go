package eval

import (
	"strings"

	"github.com/openxl/xl/formula"
	"github.com/openxl/xl/value"
)

// evalCall dispatches the generic, extensible Call node: function names
// that reached the parser's closed knownFunctions list but do not have a
// dedicated AST node of their own.
func (e *Env) evalCall(n formula.Call) (value.CellValue, *Error) {
	switch n.Name {
	case "ISERROR":
		return e.evalIsError(n.Args)
	case "ISBLANK":
		return e.evalIsBlank(n.Args)
	case "ROUND":
		return e.evalRound(n.Args)
	case "ABS":
		return e.evalAbs(n.Args)
	case "TRIM":
		return e.evalTrim(n.Args)
	case "TRANSPOSE":
		return value.CellValue{}, &Error{Kind: TypeMismatch, Op: "TRANSPOSE used outside an array formula", Have: value.Empty}
	}
	return value.CellValue{}, &Error{Kind: NotImplemented, Fn: n.Name}
}

func (e *Env) evalIsError(args []formula.Expr) (value.CellValue, *Error) {
	if len(args) != 1 {
		return value.CellValue{}, &Error{Kind: InvalidArgCount, Fn: "ISERROR", Expected: 1, Actual: len(args)}
	}
	v, err := e.Eval(args[0])
	if err != nil {
		if err.Kind == Propagated {
			return value.NewBool(true), nil
		}
		return value.CellValue{}, err
	}
	return value.NewBool(v.Kind() == value.Error), nil
}

func (e *Env) evalIsBlank(args []formula.Expr) (value.CellValue, *Error) {
	if len(args) != 1 {
		return value.CellValue{}, &Error{Kind: InvalidArgCount, Fn: "ISBLANK", Expected: 1, Actual: len(args)}
	}
	v, err := e.Eval(args[0])
	if err != nil {
		return value.CellValue{}, err
	}
	return value.NewBool(v.Kind() == value.Empty), nil
}

func (e *Env) evalRound(args []formula.Expr) (value.CellValue, *Error) {
	if len(args) != 2 {
		return value.CellValue{}, &Error{Kind: InvalidArgCount, Fn: "ROUND", Expected: 2, Actual: len(args)}
	}
	v, err := e.Eval(args[0])
	if err != nil {
		return value.CellValue{}, err
	}
	if err := checkPropagated(v); err != nil {
		return value.CellValue{}, err
	}
	num, err := toNumber(v)
	if err != nil {
		return value.CellValue{}, err
	}
	dv, err := e.Eval(args[1])
	if err != nil {
		return value.CellValue{}, err
	}
	if err := checkPropagated(dv); err != nil {
		return value.CellValue{}, err
	}
	digitsD, err := toNumber(dv)
	if err != nil {
		return value.CellValue{}, err
	}
	return value.NewNumber(num.Round(int32(digitsD.IntPart()))), nil
}

func (e *Env) evalAbs(args []formula.Expr) (value.CellValue, *Error) {
	if len(args) != 1 {
		return value.CellValue{}, &Error{Kind: InvalidArgCount, Fn: "ABS", Expected: 1, Actual: len(args)}
	}
	v, err := e.Eval(args[0])
	if err != nil {
		return value.CellValue{}, err
	}
	if err := checkPropagated(v); err != nil {
		return value.CellValue{}, err
	}
	num, err := toNumber(v)
	if err != nil {
		return value.CellValue{}, err
	}
	return value.NewNumber(num.Abs()), nil
}

func (e *Env) evalTrim(args []formula.Expr) (value.CellValue, *Error) {
	if len(args) != 1 {
		return value.CellValue{}, &Error{Kind: InvalidArgCount, Fn: "TRIM", Expected: 1, Actual: len(args)}
	}
	v, err := e.Eval(args[0])
	if err != nil {
		return value.CellValue{}, err
	}
	if err := checkPropagated(v); err != nil {
		return value.CellValue{}, err
	}
	s, err := toText(v)
	if err != nil {
		return value.CellValue{}, err
	}
	fields := strings.Fields(s)
	return value.NewText(strings.Join(fields, " ")), nil
}
