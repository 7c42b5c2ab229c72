// Package model implements the in-memory spreadsheet model: Cell, Sheet,
// and Workbook, plus their pure (copy-on-write) transforms.
package model

import (
	"github.com/openxl/xl/style"
	"github.com/openxl/xl/value"
)

// Hyperlink is a cell's outbound link target.
type Hyperlink struct {
	Target  string
	Tooltip string
}

// Cell is value-semantic; its identity is the (Sheet, ARef) location it is
// stored under, not any field of the struct itself.
type Cell struct {
	Value      value.CellValue
	Style      style.ID
	HasComment bool
	Hyperlink  *Hyperlink
}

// IsEmpty reports whether the cell carries no value, style, comment, or
// hyperlink — i.e. whether it would be omitted from a sparse cell map.
func (c Cell) IsEmpty() bool {
	return c.Value.IsEmpty() && c.Style == 0 && !c.HasComment && c.Hyperlink == nil
}

// Comment is a cell annotation: rich text body plus an optional author.
type Comment struct {
	Body   []value.RichRun
	Author string
}
