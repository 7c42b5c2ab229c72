package eval

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/formula"
	"github.com/openxl/xl/value"
)

// Eval walks e and returns its value against the Env's current sheet.
func (e *Env) Eval(expr formula.Expr) (value.CellValue, *Error) {
	switch n := expr.(type) {
	case formula.Literal:
		return n.Value, nil
	case formula.Ref:
		return e.resolveCell(e.SheetName, n.At)
	case formula.QualifiedRef:
		sheet, serr := addr.NewSheetName(n.Sheet)
		if serr != nil {
			return value.CellValue{}, &Error{Kind: NameNotFound, Name: n.Sheet}
		}
		return e.resolveCell(sheet, n.At)
	case formula.RangeRef:
		return value.CellValue{}, &Error{Kind: TypeMismatch, Op: "range in scalar context", Have: value.Empty}
	case formula.QualifiedRangeRef:
		return value.CellValue{}, &Error{Kind: TypeMismatch, Op: "range in scalar context", Have: value.Empty}
	case formula.Binary:
		return e.evalBinary(n)
	case formula.Neg:
		return e.evalNeg(n)
	case formula.Percent:
		return e.evalPercent(n)
	case formula.And:
		return e.evalAnd(n)
	case formula.Or:
		return e.evalOr(n)
	case formula.Not:
		return e.evalNot(n)
	case formula.Concatenate:
		return e.evalConcatenate(n)
	case formula.TextCall:
		return e.evalTextCall(n)
	case formula.If:
		return e.evalIf(n)
	case formula.Aggregate:
		return e.evalAggregate(n)
	case formula.DateCall:
		return e.evalDateCall(n)
	case formula.Call:
		return e.evalCall(n)
	}
	return value.CellValue{}, &Error{Kind: NotImplemented, Fn: "unknown node"}
}

func (e *Env) evalBinary(n formula.Binary) (value.CellValue, *Error) {
	switch n.Op {
	case formula.OpEq, formula.OpNeq, formula.OpLt, formula.OpLe, formula.OpGt, formula.OpGe:
		return e.evalComparison(n)
	}
	left, err := e.Eval(n.Left)
	if err != nil {
		return value.CellValue{}, err
	}
	if err := checkPropagated(left); err != nil {
		return value.CellValue{}, err
	}
	right, err := e.Eval(n.Right)
	if err != nil {
		return value.CellValue{}, err
	}
	if err := checkPropagated(right); err != nil {
		return value.CellValue{}, err
	}
	ln, err := toNumber(left)
	if err != nil {
		return value.CellValue{}, err
	}
	rn, err := toNumber(right)
	if err != nil {
		return value.CellValue{}, err
	}
	switch n.Op {
	case formula.OpAdd:
		return value.NewNumber(ln.Add(rn)), nil
	case formula.OpSub:
		return value.NewNumber(ln.Sub(rn)), nil
	case formula.OpMul:
		return value.NewNumber(ln.Mul(rn)), nil
	case formula.OpDiv:
		if rn.IsZero() {
			return value.CellValue{}, &Error{Kind: DivByZero, Num: ln.String(), Denom: rn.String()}
		}
		return value.NewNumber(divide(ln, rn)), nil
	case formula.OpPow:
		return value.NewNumber(ln.Pow(rn)), nil
	}
	return value.CellValue{}, &Error{Kind: NotImplemented, Fn: "binary operator"}
}

// divide performs exact decimal division, rounding half-to-even at 15
// significant digits when the quotient does not terminate.
func divide(a, b decimal.Decimal) decimal.Decimal {
	mag := int32(a.NumDigits()) + a.Exponent() - int32(b.NumDigits()) - b.Exponent()
	q := a.DivRound(b, 15+10-mag)
	if q.Mul(b).Equal(a) {
		return q
	}
	qmag := int32(q.NumDigits()) + q.Exponent()
	return q.RoundBank(15 - qmag)
}

func (e *Env) evalComparison(n formula.Binary) (value.CellValue, *Error) {
	left, err := e.Eval(n.Left)
	if err != nil {
		return value.CellValue{}, err
	}
	right, err := e.Eval(n.Right)
	if err != nil {
		return value.CellValue{}, err
	}
	cmp, err := compareValues(left, right)
	if err != nil {
		return value.CellValue{}, err
	}
	var result bool
	switch n.Op {
	case formula.OpEq:
		result = cmp == 0
	case formula.OpNeq:
		result = cmp != 0
	case formula.OpLt:
		result = cmp < 0
	case formula.OpLe:
		result = cmp <= 0
	case formula.OpGt:
		result = cmp > 0
	case formula.OpGe:
		result = cmp >= 0
	}
	return value.NewBool(result), nil
}

func (e *Env) evalNeg(n formula.Neg) (value.CellValue, *Error) {
	v, err := e.Eval(n.X)
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
	return value.NewNumber(num.Neg()), nil
}

func (e *Env) evalPercent(n formula.Percent) (value.CellValue, *Error) {
	v, err := e.Eval(n.X)
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
	return value.NewNumber(num.Div(decimal.NewFromInt(100))), nil
}

func (e *Env) evalAnd(n formula.And) (value.CellValue, *Error) {
	for _, arg := range n.Args {
		v, err := e.Eval(arg)
		if err != nil {
			return value.CellValue{}, err
		}
		if err := checkPropagated(v); err != nil {
			return value.CellValue{}, err
		}
		b, err := toBool(v)
		if err != nil {
			return value.CellValue{}, err
		}
		if !b {
			return value.NewBool(false), nil
		}
	}
	return value.NewBool(true), nil
}

func (e *Env) evalOr(n formula.Or) (value.CellValue, *Error) {
	for _, arg := range n.Args {
		v, err := e.Eval(arg)
		if err != nil {
			return value.CellValue{}, err
		}
		if err := checkPropagated(v); err != nil {
			return value.CellValue{}, err
		}
		b, err := toBool(v)
		if err != nil {
			return value.CellValue{}, err
		}
		if b {
			return value.NewBool(true), nil
		}
	}
	return value.NewBool(false), nil
}

func (e *Env) evalNot(n formula.Not) (value.CellValue, *Error) {
	v, err := e.Eval(n.X)
	if err != nil {
		return value.CellValue{}, err
	}
	if err := checkPropagated(v); err != nil {
		return value.CellValue{}, err
	}
	b, err := toBool(v)
	if err != nil {
		return value.CellValue{}, err
	}
	return value.NewBool(!b), nil
}

func (e *Env) evalConcatenate(n formula.Concatenate) (value.CellValue, *Error) {
	var b strings.Builder
	for _, arg := range n.Args {
		v, err := e.Eval(arg)
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
		b.WriteString(s)
	}
	return value.NewText(b.String()), nil
}

func (e *Env) evalIf(n formula.If) (value.CellValue, *Error) {
	cond, err := e.Eval(n.Cond)
	if err != nil {
		return value.CellValue{}, err
	}
	if err := checkPropagated(cond); err != nil {
		return value.CellValue{}, err
	}
	b, err := toBool(cond)
	if err != nil {
		return value.CellValue{}, err
	}
	if b {
		return e.Eval(n.Then)
	}
	return e.Eval(n.Else)
}
