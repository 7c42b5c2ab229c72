package eval

import (
	"time"

	"github.com/openxl/xl/formula"
	"github.com/openxl/xl/value"
)

func (e *Env) evalDateCall(n formula.DateCall) (value.CellValue, *Error) {
	switch n.Fn {
	case formula.FnToday:
		if len(n.Args) != 0 {
			return value.CellValue{}, &Error{Kind: InvalidArgCount, Fn: "TODAY", Expected: 0, Actual: len(n.Args)}
		}
		now := e.Clock.Now()
		return value.NewDateTime(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)), nil
	case formula.FnNow:
		if len(n.Args) != 0 {
			return value.CellValue{}, &Error{Kind: InvalidArgCount, Fn: "NOW", Expected: 0, Actual: len(n.Args)}
		}
		return value.NewDateTime(e.Clock.Now()), nil
	case formula.FnDate:
		if len(n.Args) != 3 {
			return value.CellValue{}, &Error{Kind: InvalidArgCount, Fn: "DATE", Expected: 3, Actual: len(n.Args)}
		}
		y, m, d, err := e.evalIntArgs(n.Args)
		if err != nil {
			return value.CellValue{}, err
		}
		return value.NewDateTime(time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)), nil
	case formula.FnYear, formula.FnMonth, formula.FnDay:
		if len(n.Args) != 1 {
			return value.CellValue{}, &Error{Kind: InvalidArgCount, Fn: dateFnName(n.Fn), Expected: 1, Actual: len(n.Args)}
		}
		t, err := e.evalAsTime(n.Args[0])
		if err != nil {
			return value.CellValue{}, err
		}
		switch n.Fn {
		case formula.FnYear:
			return value.NewNumberFromInt(int64(t.Year())), nil
		case formula.FnMonth:
			return value.NewNumberFromInt(int64(t.Month())), nil
		case formula.FnDay:
			return value.NewNumberFromInt(int64(t.Day())), nil
		}
	}
	return value.CellValue{}, &Error{Kind: NotImplemented, Fn: dateFnName(n.Fn)}
}

func (e *Env) evalIntArgs(exprs []formula.Expr) (a, b, c int, err *Error) {
	vals := make([]int, 3)
	for i, ex := range exprs {
		v, verr := e.Eval(ex)
		if verr != nil {
			return 0, 0, 0, verr
		}
		if err := checkPropagated(v); err != nil {
			return 0, 0, 0, err
		}
		n, nerr := toNumber(v)
		if nerr != nil {
			return 0, 0, 0, nerr
		}
		vals[i] = int(n.IntPart())
	}
	return vals[0], vals[1], vals[2], nil
}

func (e *Env) evalAsTime(expr formula.Expr) (time.Time, *Error) {
	v, err := e.Eval(expr)
	if err != nil {
		return time.Time{}, err
	}
	if err := checkPropagated(v); err != nil {
		return time.Time{}, err
	}
	if v.Kind() == value.DateTime {
		return v.DateTime(), nil
	}
	n, nerr := toNumber(v)
	if nerr != nil {
		return time.Time{}, nerr
	}
	return value.FromSerial(n).DateTime(), nil
}

func dateFnName(fn formula.DateFn) string {
	switch fn {
	case formula.FnToday:
		return "TODAY"
	case formula.FnNow:
		return "NOW"
	case formula.FnDate:
		return "DATE"
	case formula.FnYear:
		return "YEAR"
	case formula.FnMonth:
		return "MONTH"
	case formula.FnDay:
		return "DAY"
	}
	return "?"
}
