// Package depgraph builds and analyzes the cell dependency graph implied
// by a sheet or workbook's formulas: precedent/dependent indices, cycle
// detection, and topological ordering for recalculation.
package depgraph

import (
	"fmt"

	"github.com/openxl/xl/addr"
)

// NodeID identifies one formula-bearing cell by its sheet and address.
type NodeID struct {
	Sheet addr.SheetName
	Ref   addr.ARef
}

// String renders the node as a sheet-qualified A1 reference.
func (n NodeID) String() string {
	return fmt.Sprintf("%s!%s", n.Sheet, n.Ref.A1())
}
