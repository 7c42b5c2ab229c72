package formula

import (
	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/value"
)

// Shift rewrites e by (deltaCol, deltaRow): Ref and RangeRef nodes move
// only on axes whose anchor is relative; absolute axes are preserved
// byte-exact. A reference that would fall outside the addressable grid
// becomes an Error(Ref) literal at that position.
// QualifiedRef/QualifiedRangeRef preserve their sheet component.
func Shift(e Expr, deltaCol, deltaRow int) Expr {
	switch n := e.(type) {
	case Literal:
		return n
	case Ref:
		return shiftRef(n.At, deltaCol, deltaRow, func(r addr.ARef) Expr {
			return Ref{At: r, Decoder: n.Decoder}
		})
	case QualifiedRef:
		return shiftRef(n.At, deltaCol, deltaRow, func(r addr.ARef) Expr {
			return QualifiedRef{Sheet: n.Sheet, At: r, Decoder: n.Decoder}
		})
	case RangeRef:
		return shiftRange(n.Range, deltaCol, deltaRow, func(r addr.CellRange) Expr {
			return RangeRef{Range: r}
		})
	case QualifiedRangeRef:
		return shiftRange(n.Range, deltaCol, deltaRow, func(r addr.CellRange) Expr {
			return QualifiedRangeRef{Sheet: n.Sheet, Range: r}
		})
	case Binary:
		return Binary{Op: n.Op, Left: Shift(n.Left, deltaCol, deltaRow), Right: Shift(n.Right, deltaCol, deltaRow)}
	case Neg:
		return Neg{X: Shift(n.X, deltaCol, deltaRow)}
	case Percent:
		return Percent{X: Shift(n.X, deltaCol, deltaRow)}
	case And:
		return And{Args: shiftAll(n.Args, deltaCol, deltaRow)}
	case Or:
		return Or{Args: shiftAll(n.Args, deltaCol, deltaRow)}
	case Not:
		return Not{X: Shift(n.X, deltaCol, deltaRow)}
	case Concatenate:
		return Concatenate{Args: shiftAll(n.Args, deltaCol, deltaRow)}
	case TextCall:
		return TextCall{Fn: n.Fn, Args: shiftAll(n.Args, deltaCol, deltaRow)}
	case If:
		return If{Cond: Shift(n.Cond, deltaCol, deltaRow), Then: Shift(n.Then, deltaCol, deltaRow), Else: Shift(n.Else, deltaCol, deltaRow)}
	case Aggregate:
		return Aggregate{Fn: n.Fn, Args: shiftAll(n.Args, deltaCol, deltaRow)}
	case DateCall:
		return DateCall{Fn: n.Fn, Args: shiftAll(n.Args, deltaCol, deltaRow)}
	case Call:
		return Call{Name: n.Name, Args: shiftAll(n.Args, deltaCol, deltaRow)}
	}
	return e
}

func shiftAll(args []Expr, deltaCol, deltaRow int) []Expr {
	out := make([]Expr, len(args))
	for i, a := range args {
		out[i] = Shift(a, deltaCol, deltaRow)
	}
	return out
}

func shiftRef(at addr.ARef, deltaCol, deltaRow int, build func(addr.ARef) Expr) Expr {
	if at.WouldOverflow(deltaCol, deltaRow) {
		return Literal{Value: value.NewError(value.Ref)}
	}
	return build(at.Shift(deltaCol, deltaRow))
}

func shiftRange(r addr.CellRange, deltaCol, deltaRow int, build func(addr.CellRange) Expr) Expr {
	if r.Start.WouldOverflow(deltaCol, deltaRow) || r.End.WouldOverflow(deltaCol, deltaRow) {
		return Literal{Value: value.NewError(value.Ref)}
	}
	return build(addr.NewRange(r.Start.Shift(deltaCol, deltaRow), r.End.Shift(deltaCol, deltaRow)))
}
