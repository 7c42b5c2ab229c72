package depgraph

import (
	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/formula"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/value"
)

// Graph is the precedent/dependent index over a set of formula cells.
// Nodes are discovered implicitly by the edges added to them; a cell with
// a formula but no references still appears (with no precedents) once it
// has been registered via FromSheet/FromWorkbook.
type Graph struct {
	order      []NodeID // first-seen order, for deterministic tie-breaking
	seen       map[NodeID]bool
	precedents map[NodeID][]NodeID // node -> cells it reads from
	dependents map[NodeID][]NodeID // node -> cells that read from it

	transCache map[NodeID][]NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		seen:       map[NodeID]bool{},
		precedents: map[NodeID][]NodeID{},
		dependents: map[NodeID][]NodeID{},
	}
}

func (g *Graph) register(n NodeID) {
	if g.seen[n] {
		return
	}
	g.seen[n] = true
	g.order = append(g.order, n)
}

// AddEdge records that dependent reads from precedent, registering both
// nodes if new.
func (g *Graph) AddEdge(dependent, precedent NodeID) {
	g.register(dependent)
	g.register(precedent)
	g.precedents[dependent] = append(g.precedents[dependent], precedent)
	g.dependents[precedent] = append(g.dependents[precedent], dependent)
}

// Precedents returns the cells n directly reads from.
func (g *Graph) Precedents(n NodeID) []NodeID { return g.precedents[n] }

// Dependents returns the cells that directly read from n.
func (g *Graph) Dependents(n NodeID) []NodeID { return g.dependents[n] }

// Nodes returns every registered node in first-seen order.
func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, len(g.order))
	copy(out, g.order)
	return out
}

// FromSheet builds the dependency graph for every formula cell in sheet,
// using hint to clip any range reference (including ones that qualify
// into other sheets) to a bounded cell set.
func FromSheet(name addr.SheetName, sheet *model.Sheet, hint UsedRangeHint) (*Graph, error) {
	g := New()
	if err := addSheetFormulas(g, name, sheet, hint); err != nil {
		return nil, err
	}
	return g, nil
}

// FromWorkbook builds the dependency graph across every sheet in wb,
// resolving qualified references by sheet name and clipping range
// references to each referenced sheet's own used range.
func FromWorkbook(wb *model.Workbook) (*Graph, error) {
	g := New()
	hint := func(sheet addr.SheetName) (addr.CellRange, bool) {
		s, ok := wb.Sheet(sheet)
		if !ok {
			return addr.CellRange{}, false
		}
		return s.UsedRange()
	}
	for _, sheet := range wb.Sheets() {
		if err := addSheetFormulas(g, sheet.Name(), sheet, hint); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func addSheetFormulas(g *Graph, name addr.SheetName, sheet *model.Sheet, hint UsedRangeHint) error {
	for ref, cell := range sheet.Cells() {
		if cell.Value.Kind() != value.Formula {
			continue
		}
		node := NodeID{Sheet: name, Ref: ref}
		g.register(node)
		expr, err := formula.Parse(cell.Value.FormulaText())
		if err != nil {
			return &FormulaParseError{Node: node, Err: err}
		}
		for _, dep := range extractRefs(name, expr, hint) {
			g.AddEdge(node, dep)
		}
	}
	return nil
}
