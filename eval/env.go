package eval

import (
	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/depgraph"
	"github.com/openxl/xl/formula"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/value"
)

// Env is the evaluation context for one expression: the home sheet
// (against which unqualified references resolve), an optional workbook
// (for sheet-qualified references), a Clock for TODAY()/NOW(), and an
// override map that lets callers substitute values for specific cells
// without mutating the sheet (used by what-if recalculation previews).
type Env struct {
	SheetName addr.SheetName
	Sheet     *model.Sheet
	Workbook  *model.Workbook
	Clock     Clock
	Overrides map[depgraph.NodeID]value.CellValue

	cache      map[depgraph.NodeID]value.CellValue
	inProgress map[depgraph.NodeID]bool
}

// NewEnv constructs an Env. wb may be nil for a standalone sheet with no
// cross-sheet references; overrides may be nil.
func NewEnv(sheetName addr.SheetName, sheet *model.Sheet, wb *model.Workbook, clock Clock, overrides map[depgraph.NodeID]value.CellValue) *Env {
	if clock == nil {
		clock = RealClock{}
	}
	return &Env{
		SheetName:  sheetName,
		Sheet:      sheet,
		Workbook:   wb,
		Clock:      clock,
		Overrides:  overrides,
		cache:      map[depgraph.NodeID]value.CellValue{},
		inProgress: map[depgraph.NodeID]bool{},
	}
}

// sheetNamed resolves an addr.SheetName to its *model.Sheet, consulting
// the home sheet first and falling back to the workbook for others.
func (e *Env) sheetNamed(name addr.SheetName) (*model.Sheet, *Error) {
	if name == e.SheetName || name == "" {
		return e.Sheet, nil
	}
	if e.Workbook == nil {
		return nil, &Error{Kind: RefError, Loc: string(name), Reason: "no workbook context for cross-sheet reference"}
	}
	s, ok := e.Workbook.Sheet(name)
	if !ok {
		return nil, &Error{Kind: NameNotFound, Name: string(name)}
	}
	return s, nil
}

// resolveCell returns the effective value of (sheet, ref): an override
// if one was supplied, the memoized result if already computed, the
// stored value directly if it is not a formula, or the recursive
// evaluation of its formula text otherwise. A formula whose evaluation
// is already in progress on the call stack reports CycleDetected rather
// than recursing forever.
func (e *Env) resolveCell(sheetName addr.SheetName, ref addr.ARef) (value.CellValue, *Error) {
	if sheetName == "" {
		sheetName = e.SheetName
	}
	node := depgraph.NodeID{Sheet: sheetName, Ref: ref}

	if v, ok := e.Overrides[node]; ok {
		return v, nil
	}
	if v, ok := e.cache[node]; ok {
		return v, nil
	}
	if e.inProgress[node] {
		return value.CellValue{}, &Error{Kind: CycleDetected, Path: []depgraph.NodeID{node}}
	}

	sheet, err := e.sheetNamed(sheetName)
	if err != nil {
		return value.CellValue{}, err
	}
	cell := sheet.Get(ref)
	if cell.Value.Kind() != value.Formula {
		e.cache[node] = cell.Value
		return cell.Value, nil
	}

	expr, perr := formula.Parse(cell.Value.FormulaText())
	if perr != nil {
		return value.CellValue{}, &Error{Kind: ParseError, Err: perr}
	}

	e.inProgress[node] = true
	savedSheetName, savedSheet := e.SheetName, e.Sheet
	e.SheetName, e.Sheet = sheetName, sheet
	v, evalErr := e.Eval(expr)
	e.SheetName, e.Sheet = savedSheetName, savedSheet
	delete(e.inProgress, node)

	if evalErr != nil {
		return value.CellValue{}, evalErr
	}
	e.cache[node] = v
	return v, nil
}
