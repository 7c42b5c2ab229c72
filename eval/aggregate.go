package eval

import (
	"github.com/shopspring/decimal"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/formula"
	"github.com/openxl/xl/value"
)

func (e *Env) evalAggregate(n formula.Aggregate) (value.CellValue, *Error) {
	values, err := e.collectAggregateValues(n.Args)
	if err != nil {
		return value.CellValue{}, err
	}
	switch n.Fn {
	case formula.AggSum:
		return aggregateSum(values)
	case formula.AggCount:
		return aggregateCount(values)
	case formula.AggAverage:
		return aggregateAverage(values)
	case formula.AggMin:
		return aggregateMinMax(values, true)
	case formula.AggMax:
		return aggregateMinMax(values, false)
	case formula.AggCountA:
		return aggregateCountA(values)
	}
	return value.CellValue{}, &Error{Kind: NotImplemented, Fn: "aggregate"}
}

// collectAggregateValues flattens each argument to its constituent cell
// values: a range argument expands to every cell in it (in row-major
// order), a scalar argument evaluates to its single value.
func (e *Env) collectAggregateValues(args []formula.Expr) ([]value.CellValue, *Error) {
	var out []value.CellValue
	for _, a := range args {
		switch r := a.(type) {
		case formula.RangeRef:
			vs, err := e.valuesInRange(e.SheetName, r.Range)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		case formula.QualifiedRangeRef:
			sheet, serr := addr.NewSheetName(r.Sheet)
			if serr != nil {
				return nil, &Error{Kind: NameNotFound, Name: r.Sheet}
			}
			vs, err := e.valuesInRange(sheet, r.Range)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		default:
			v, err := e.Eval(a)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func (e *Env) valuesInRange(sheet addr.SheetName, rng addr.CellRange) ([]value.CellValue, *Error) {
	cells := rng.Cells()
	out := make([]value.CellValue, 0, len(cells))
	for _, ref := range cells {
		v, err := e.resolveCell(sheet, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// numericOperands filters values down to the numeric ones that
// aggregates actually fold over: text and empty cells are skipped, but
// a propagated error still fails the whole aggregate.
func numericOperands(values []value.CellValue) ([]decimal.Decimal, *Error) {
	var out []decimal.Decimal
	for _, v := range values {
		if err := checkPropagated(v); err != nil {
			return nil, err
		}
		switch v.Kind() {
		case value.Text, value.RichText, value.Empty:
			continue
		}
		n, err := toNumber(v)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func aggregateSum(values []value.CellValue) (value.CellValue, *Error) {
	nums, err := numericOperands(values)
	if err != nil {
		return value.CellValue{}, err
	}
	sum := decimal.Zero
	for _, n := range nums {
		sum = sum.Add(n)
	}
	return value.NewNumber(sum), nil
}

func aggregateCount(values []value.CellValue) (value.CellValue, *Error) {
	nums, err := numericOperands(values)
	if err != nil {
		return value.CellValue{}, err
	}
	return value.NewNumberFromInt(int64(len(nums))), nil
}

func aggregateAverage(values []value.CellValue) (value.CellValue, *Error) {
	nums, err := numericOperands(values)
	if err != nil {
		return value.CellValue{}, err
	}
	if len(nums) == 0 {
		return value.CellValue{}, &Error{Kind: DivByZero, Num: "0", Denom: "0"}
	}
	sum := decimal.Zero
	for _, n := range nums {
		sum = sum.Add(n)
	}
	return value.NewNumber(sum.DivRound(decimal.NewFromInt(int64(len(nums))), 15)), nil
}

func aggregateMinMax(values []value.CellValue, min bool) (value.CellValue, *Error) {
	nums, err := numericOperands(values)
	if err != nil {
		return value.CellValue{}, err
	}
	if len(nums) == 0 {
		return value.NewNumberFromInt(0), nil
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if (min && n.LessThan(best)) || (!min && n.GreaterThan(best)) {
			best = n
		}
	}
	return value.NewNumber(best), nil
}

func aggregateCountA(values []value.CellValue) (value.CellValue, *Error) {
	count := 0
	for _, v := range values {
		if err := checkPropagated(v); err != nil {
			return value.CellValue{}, err
		}
		if v.Kind() != value.Empty {
			count++
		}
	}
	return value.NewNumberFromInt(int64(count)), nil
}
