package depgraph

import (
	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/formula"
)

// UsedRangeHint resolves a sheet name to its used-range bounding rectangle,
// letting range-reference extraction clip an oversized literal range (e.g.
// "A1:A1000000" against a sheet whose real content stops at row 40) down
// to the cells that can actually hold a value.
type UsedRangeHint func(sheet addr.SheetName) (addr.CellRange, bool)

// extractRefs walks e and returns every concrete cell dependency it
// implies, with unqualified references resolved against home. Range
// references are clipped to hint(targetSheet) before being enumerated,
// so a formula referencing far more cells than the sheet actually uses
// does not explode the graph.
func extractRefs(home addr.SheetName, e formula.Expr, hint UsedRangeHint) []NodeID {
	var out []NodeID
	var walk func(formula.Expr)
	walk = func(e formula.Expr) {
		switch n := e.(type) {
		case formula.Literal:
		case formula.Ref:
			out = append(out, NodeID{Sheet: home, Ref: n.At})
		case formula.QualifiedRef:
			sheet, err := addr.NewSheetName(n.Sheet)
			if err != nil {
				return
			}
			out = append(out, NodeID{Sheet: sheet, Ref: n.At})
		case formula.RangeRef:
			out = append(out, clippedCells(home, n.Range, hint)...)
		case formula.QualifiedRangeRef:
			sheet, err := addr.NewSheetName(n.Sheet)
			if err != nil {
				return
			}
			out = append(out, clippedCells(sheet, n.Range, hint)...)
		case formula.Binary:
			walk(n.Left)
			walk(n.Right)
		case formula.Neg:
			walk(n.X)
		case formula.Percent:
			walk(n.X)
		case formula.And:
			walkAll(n.Args, walk)
		case formula.Or:
			walkAll(n.Args, walk)
		case formula.Not:
			walk(n.X)
		case formula.Concatenate:
			walkAll(n.Args, walk)
		case formula.TextCall:
			walkAll(n.Args, walk)
		case formula.If:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case formula.Aggregate:
			walkAll(n.Args, walk)
		case formula.DateCall:
			walkAll(n.Args, walk)
		case formula.Call:
			walkAll(n.Args, walk)
		}
	}
	walk(e)
	return out
}

func walkAll(args []formula.Expr, walk func(formula.Expr)) {
	for _, a := range args {
		walk(a)
	}
}

func clippedCells(sheet addr.SheetName, rng addr.CellRange, hint UsedRangeHint) []NodeID {
	if hint == nil {
		return cellsOf(sheet, rng)
	}
	bound, ok := hint(sheet)
	if !ok {
		return nil
	}
	clipped, ok := rng.Clip(bound)
	if !ok {
		return nil
	}
	return cellsOf(sheet, clipped)
}

func cellsOf(sheet addr.SheetName, rng addr.CellRange) []NodeID {
	cells := rng.Cells()
	out := make([]NodeID, len(cells))
	for i, c := range cells {
		out[i] = NodeID{Sheet: sheet, Ref: c}
	}
	return out
}
