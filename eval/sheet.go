package eval

import (
	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/depgraph"
	"github.com/openxl/xl/formula"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/value"
)

// EvaluateFormula parses and evaluates an ad-hoc expression against
// sheet, honoring wb for cross-sheet references and clock for
// TODAY()/NOW(). overrides lets a caller substitute values for specific
// cells without mutating sheet.
func EvaluateFormula(text string, sheetName addr.SheetName, sheet *model.Sheet, wb *model.Workbook, overrides map[depgraph.NodeID]value.CellValue, clock Clock) (value.CellValue, *Error) {
	expr, err := formula.Parse(text)
	if err != nil {
		return value.CellValue{}, &Error{Kind: ParseError, Err: err}
	}
	env := NewEnv(sheetName, sheet, wb, clock, overrides)
	return env.Eval(expr)
}

// EvaluateCell evaluates the cell at ref: a Formula cell is parsed and
// evaluated, any other cell's stored value is returned as-is.
func EvaluateCell(ref addr.ARef, sheetName addr.SheetName, sheet *model.Sheet, wb *model.Workbook, overrides map[depgraph.NodeID]value.CellValue, clock Clock) (value.CellValue, *Error) {
	cell := sheet.Get(ref)
	if cell.Value.Kind() != value.Formula {
		return cell.Value, nil
	}
	return EvaluateFormula(cell.Value.FormulaText(), sheetName, sheet, wb, overrides, clock)
}

// EvaluateWithDependencyCheck builds the dependency graph over every
// formula cell reachable from sheet (across the whole workbook when wb
// is non-nil), topologically sorts it, and evaluates every formula cell
// in that order, reusing each already-computed value for the cells that
// depend on it. Returns the cycle error if the graph is not a DAG.
func EvaluateWithDependencyCheck(sheetName addr.SheetName, sheet *model.Sheet, wb *model.Workbook, overrides map[depgraph.NodeID]value.CellValue, clock Clock) (map[depgraph.NodeID]value.CellValue, *Error) {
	g, buildErr := buildGraph(sheetName, sheet, wb)
	if buildErr != nil {
		return nil, &Error{Kind: ParseError, Err: buildErr}
	}
	order, serr := g.TopoSort()
	if serr != nil {
		var cycleErr *depgraph.CycleError
		if asCycleError(serr, &cycleErr) {
			return nil, &Error{Kind: CycleDetected, Path: flattenCycles(cycleErr.Cycles)}
		}
		return nil, &Error{Kind: ParseError, Err: serr}
	}

	env := NewEnv(sheetName, sheet, wb, clock, overrides)
	results := make(map[depgraph.NodeID]value.CellValue, len(order))
	for _, node := range order {
		v, verr := env.resolveCell(node.Sheet, node.Ref)
		if verr != nil {
			results[node] = verr.AsCellValue()
			continue
		}
		results[node] = v
	}
	return results, nil
}

// EvaluateForRange restricts EvaluateWithDependencyCheck's work to the
// formula cells inside rng on sheet plus their transitive dependencies —
// an optimization for recalculating a small edited region without
// walking the whole workbook's graph.
func EvaluateForRange(rng addr.CellRange, sheetName addr.SheetName, sheet *model.Sheet, wb *model.Workbook, overrides map[depgraph.NodeID]value.CellValue, clock Clock) (map[depgraph.NodeID]value.CellValue, *Error) {
	g, buildErr := buildGraph(sheetName, sheet, wb)
	if buildErr != nil {
		return nil, &Error{Kind: ParseError, Err: buildErr}
	}

	inScope := map[depgraph.NodeID]bool{}
	for _, ref := range rng.Cells() {
		node := depgraph.NodeID{Sheet: sheetName, Ref: ref}
		if sheet.Get(ref).Value.Kind() != value.Formula {
			continue
		}
		inScope[node] = true
		for _, dep := range g.TransitiveDependencies(node) {
			inScope[dep] = true
		}
	}

	order, serr := g.TopoSort()
	if serr != nil {
		var cycleErr *depgraph.CycleError
		if asCycleError(serr, &cycleErr) {
			return nil, &Error{Kind: CycleDetected, Path: flattenCycles(cycleErr.Cycles)}
		}
		return nil, &Error{Kind: ParseError, Err: serr}
	}

	env := NewEnv(sheetName, sheet, wb, clock, overrides)
	results := make(map[depgraph.NodeID]value.CellValue)
	for _, node := range order {
		if !inScope[node] {
			continue
		}
		v, verr := env.resolveCell(node.Sheet, node.Ref)
		if verr != nil {
			results[node] = verr.AsCellValue()
			continue
		}
		results[node] = v
	}
	return results, nil
}

func buildGraph(sheetName addr.SheetName, sheet *model.Sheet, wb *model.Workbook) (*depgraph.Graph, error) {
	if wb != nil {
		return depgraph.FromWorkbook(wb)
	}
	hint := func(addr.SheetName) (addr.CellRange, bool) { return sheet.UsedRange() }
	return depgraph.FromSheet(sheetName, sheet, hint)
}

func flattenCycles(cycles [][]depgraph.NodeID) []depgraph.NodeID {
	var out []depgraph.NodeID
	for _, c := range cycles {
		out = append(out, c...)
	}
	return out
}

func asCycleError(err error, target **depgraph.CycleError) bool {
	if ce, ok := err.(*depgraph.CycleError); ok {
		*target = ce
		return true
	}
	return false
}
