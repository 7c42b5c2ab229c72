// Package transform implements the worksheet transformer: applying a small
// set of targeted cell, row, merge, and column patches directly to an
// existing .xlsx package without decoding it into a full Workbook. It
// walks each worksheet part token by token, passing unpatched rows
// through verbatim and only decoding, merging, and re-encoding the rows a
// patch actually touches.
package transform

import (
	"sort"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/value"
)

// CellPatch requests a change to one cell's value, style, or both. Style
// resolution itself is not this package's concern: StyleID is already a
// concrete cellXfs index by the time a CellPatch reaches the transcoder,
// resolved upstream by package stylepatch from whatever overlay/replace
// request the caller made. A patch that leaves SetStyleID false keeps the
// cell's existing style id (or 0, for a synthesized cell) untouched.
type CellPatch struct {
	Ref        addr.ARef
	SetValue   bool
	Value      value.CellValue
	SetStyleID bool
	StyleID    int
}

// RowPatch requests a change to a row's own properties (height, hidden,
// outline level). A RowPatch with no accompanying CellPatch for that row
// still forces the row to be decoded and re-encoded.
type RowPatch struct {
	RowIndex     addr.Row
	Height       float64
	Hidden       bool
	OutlineLevel int
	CustomHeight bool
}

// MergePatch replaces the worksheet's entire <mergeCells> list. A nil
// Ranges clears all merges.
type MergePatch struct {
	Set    bool
	Ranges []addr.CellRange
}

// ColsPatch replaces the worksheet's entire <cols> list.
type ColsPatch struct {
	Set  bool
	Cols map[addr.Column]ColProps
}

// ColProps mirrors model.ColumnProps; duplicated here rather than
// importing model, since a column patch operates directly on OOXML column
// records and need not round-trip through the in-memory sheet model.
type ColProps struct {
	Width        float64
	Hidden       bool
	OutlineLevel int
}

// PatchSet collects every patch destined for one worksheet part. Cells is
// keyed by row so the transcoder can look up a row's cell patches in a
// single map lookup while walking the source XML in row order.
type PatchSet struct {
	SheetTarget string // e.g. "xl/worksheets/sheet1.xml"
	Cells       map[addr.Row][]CellPatch
	Rows        map[addr.Row]RowPatch
	Merges      MergePatch
	Cols        ColsPatch
}

// NewPatchSet returns an empty PatchSet for the given worksheet part.
func NewPatchSet(target string) *PatchSet {
	return &PatchSet{SheetTarget: target, Cells: map[addr.Row][]CellPatch{}, Rows: map[addr.Row]RowPatch{}}
}

// AddCell registers a cell patch, bucketed by its row.
func (p *PatchSet) AddCell(c CellPatch) {
	p.Cells[c.Ref.Row] = append(p.Cells[c.Ref.Row], c)
}

// AddRow registers a row-property patch.
func (p *PatchSet) AddRow(r RowPatch) {
	p.Rows[r.RowIndex] = r
}

// touchedRows returns every row index this patch set must decode, in
// ascending order: rows with cell patches, rows with row-property
// patches, and rows the synthesizer must create because a patched cell
// falls on a row the source XML never had.
func (p *PatchSet) touchedRows() []addr.Row {
	set := make(map[addr.Row]bool, len(p.Cells)+len(p.Rows))
	for r := range p.Cells {
		set[r] = true
	}
	for r := range p.Rows {
		set[r] = true
	}
	out := make([]addr.Row, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// maxRow returns the highest row index touched, and whether any row was
// touched at all.
func (p *PatchSet) maxRow() (addr.Row, bool) {
	rows := p.touchedRows()
	if len(rows) == 0 {
		return 0, false
	}
	return rows[len(rows)-1], true
}
