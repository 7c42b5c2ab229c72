package eval

import (
	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/depgraph"
	"github.com/openxl/xl/formula"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/value"
)

// EvaluateArrayFormula evaluates an array-producing expression anchored
// at originRef and returns the rectangle it spills into plus an updated
// sheet with the spilled values materialized. Only TRANSPOSE(range) is
// supported as a spilling expression; any other expression spills to a
// single cell at originRef. Spilling over an existing non-empty cell
// (other than originRef itself) fails with SpillOverlap.
func EvaluateArrayFormula(text string, originRef addr.ARef, sheetName addr.SheetName, sheet *model.Sheet, wb *model.Workbook, overrides map[depgraph.NodeID]value.CellValue, clock Clock) (addr.CellRange, *model.Sheet, *Error) {
	expr, perr := formula.Parse(text)
	if perr != nil {
		return addr.CellRange{}, nil, &Error{Kind: ParseError, Err: perr}
	}

	env := NewEnv(sheetName, sheet, wb, clock, overrides)

	call, ok := expr.(formula.Call)
	if ok && call.Name == "TRANSPOSE" && len(call.Args) == 1 {
		return env.evalTranspose(originRef, call.Args[0])
	}

	v, err := env.Eval(expr)
	if err != nil {
		return addr.CellRange{}, nil, err
	}
	spillRange := addr.NewRange(originRef, originRef)
	if err := checkSpillOverlap(sheet, spillRange, originRef); err != nil {
		return addr.CellRange{}, nil, err
	}
	return spillRange, sheet.Put(originRef, v), nil
}

func (e *Env) evalTranspose(originRef addr.ARef, arg formula.Expr) (addr.CellRange, *model.Sheet, *Error) {
	var srcSheet addr.SheetName
	var srcRange addr.CellRange
	switch r := arg.(type) {
	case formula.RangeRef:
		srcSheet, srcRange = e.SheetName, r.Range
	case formula.QualifiedRangeRef:
		sheet, serr := addr.NewSheetName(r.Sheet)
		if serr != nil {
			return addr.CellRange{}, nil, &Error{Kind: NameNotFound, Name: r.Sheet}
		}
		srcSheet, srcRange = sheet, r.Range
	default:
		return addr.CellRange{}, nil, &Error{Kind: TypeMismatch, Op: "TRANSPOSE argument", Have: value.Empty}
	}

	width, height := srcRange.Width(), srcRange.Height()
	endCol := originRef.Col.Shift(height - 1)
	endRow := originRef.Row.Shift(width - 1)
	spillRange := addr.NewRange(originRef, addr.ARef{Col: endCol, Row: endRow})

	if err := checkSpillOverlap(e.Sheet, spillRange, originRef); err != nil {
		return addr.CellRange{}, nil, err
	}

	specs := make([]model.PutSpec, 0, width*height)
	for srcCol := 0; srcCol < width; srcCol++ {
		for srcRow := 0; srcRow < height; srcRow++ {
			from := addr.ARef{
				Col: srcRange.Start.Col.Shift(srcCol),
				Row: srcRange.Start.Row.Shift(srcRow),
			}
			v, err := e.resolveCell(srcSheet, from)
			if err != nil {
				return addr.CellRange{}, nil, err
			}
			to := addr.ARef{
				Col: originRef.Col.Shift(srcRow),
				Row: originRef.Row.Shift(srcCol),
			}
			specs = append(specs, model.PutSpec{Ref: to, Value: v})
		}
	}
	return spillRange, e.Sheet.PutAll(specs), nil
}

func checkSpillOverlap(sheet *model.Sheet, rng addr.CellRange, origin addr.ARef) *Error {
	for _, ref := range rng.Cells() {
		if ref == origin {
			continue
		}
		if !sheet.Get(ref).IsEmpty() {
			return &Error{Kind: SpillOverlap, Loc: ref.A1(), Reason: "cell is not empty"}
		}
	}
	return nil
}
