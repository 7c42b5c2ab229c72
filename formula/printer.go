package formula

import (
	"strings"

	"github.com/openxl/xl/value"
)

// precedence levels, low to high, mirroring the parser's grammar.
const (
	precComparison = 1
	precConcat     = 2
	precAddSub     = 3
	precMulDiv     = 4
	precPow        = 5
	precUnary      = 6
	precPostfix    = 7
	precPrimary    = 8
)

// Print renders e in canonical A1 form, minimizing parenthesization by
// precedence. Parse(Print(e)) is equivalent to e, except for error
// literals: they print as their Excel code (e.g. #REF!), which Parse does
// not accept.
func Print(e Expr) string {
	return printExpr(e, 0)
}

func printExpr(e Expr, minPrec int) string {
	s, prec := printExprPrec(e)
	if prec < minPrec {
		return "(" + s + ")"
	}
	return s
}

func printExprPrec(e Expr) (string, int) {
	switch n := e.(type) {
	case Literal:
		return printLiteral(n.Value), precPrimary
	case Ref:
		return n.At.A1(), precPrimary
	case QualifiedRef:
		return quoteSheet(n.Sheet) + "!" + n.At.A1(), precPrimary
	case RangeRef:
		return n.Range.A1(), precPrimary
	case QualifiedRangeRef:
		return quoteSheet(n.Sheet) + "!" + n.Range.A1(), precPrimary
	case Neg:
		return "-" + printExpr(n.X, precUnary), precUnary
	case Percent:
		return printExpr(n.X, precPostfix) + "%", precPostfix
	case Binary:
		return printBinary(n)
	case And:
		return printCallArgs("AND", n.Args), precPrimary
	case Or:
		return printCallArgs("OR", n.Args), precPrimary
	case Not:
		return printCallArgs("NOT", []Expr{n.X}), precPrimary
	case Concatenate:
		return printConcatenate(n), precConcat
	case TextCall:
		return printCallArgs(textFnName(n.Fn), n.Args), precPrimary
	case If:
		return printCallArgs("IF", []Expr{n.Cond, n.Then, n.Else}), precPrimary
	case Aggregate:
		return printCallArgs(aggFnName(n.Fn), n.Args), precPrimary
	case DateCall:
		return printCallArgs(dateFnName(n.Fn), n.Args), precPrimary
	case Call:
		return printCallArgs(n.Name, n.Args), precPrimary
	}
	return "", precPrimary
}

func printBinary(n Binary) (string, int) {
	op, prec, rightAssoc := binOpText(n.Op)
	leftMin := prec
	rightMin := prec + 1
	if rightAssoc {
		leftMin = prec + 1
		rightMin = prec
	}
	return printExpr(n.Left, leftMin) + op + printExpr(n.Right, rightMin), prec
}

func binOpText(op BinOp) (text string, prec int, rightAssoc bool) {
	switch op {
	case OpAdd:
		return "+", precAddSub, false
	case OpSub:
		return "-", precAddSub, false
	case OpMul:
		return "*", precMulDiv, false
	case OpDiv:
		return "/", precMulDiv, false
	case OpPow:
		return "^", precPow, true
	case OpEq:
		return "=", precComparison, false
	case OpNeq:
		return "<>", precComparison, false
	case OpLt:
		return "<", precComparison, false
	case OpLe:
		return "<=", precComparison, false
	case OpGt:
		return ">", precComparison, false
	case OpGe:
		return ">=", precComparison, false
	}
	return "?", precComparison, false
}

func printConcatenate(n Concatenate) string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = printExpr(a, precAddSub)
	}
	return strings.Join(parts, "&")
}

func printCallArgs(name string, args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = printExpr(a, 0)
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

func printLiteral(v value.CellValue) string {
	switch v.Kind() {
	case value.Number:
		return v.Number().String()
	case value.Text:
		return `"` + strings.ReplaceAll(v.Text(), `"`, `""`) + `"`
	case value.Bool:
		if v.Bool() {
			return "TRUE"
		}
		return "FALSE"
	case value.Error:
		return v.ErrorKind().String()
	case value.Empty:
		return `""`
	}
	return ""
}

func quoteSheet(name string) string {
	if isBareIdent(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
		if !ok {
			return false
		}
	}
	return true
}

func textFnName(fn TextFn) string {
	switch fn {
	case FnLeft:
		return "LEFT"
	case FnRight:
		return "RIGHT"
	case FnMid:
		return "MID"
	case FnLen:
		return "LEN"
	case FnUpper:
		return "UPPER"
	case FnLower:
		return "LOWER"
	}
	return "?"
}

func aggFnName(fn AggFn) string {
	switch fn {
	case AggSum:
		return "SUM"
	case AggCount:
		return "COUNT"
	case AggAverage:
		return "AVERAGE"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggCountA:
		return "COUNTA"
	}
	return "?"
}

func dateFnName(fn DateFn) string {
	switch fn {
	case FnToday:
		return "TODAY"
	case FnNow:
		return "NOW"
	case FnDate:
		return "DATE"
	case FnYear:
		return "YEAR"
	case FnMonth:
		return "MONTH"
	case FnDay:
		return "DAY"
	}
	return "?"
}
