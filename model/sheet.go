package model

import (
	"sort"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/style"
	"github.com/openxl/xl/value"
)

// Visibility is a sheet's visibility state.
type Visibility int

const (
	VisibilityNormal Visibility = iota
	VisibilityHidden
	VisibilityVeryHidden
)

// ColumnProps holds the per-column formatting tracked outside individual
// cells.
type ColumnProps struct {
	Width        float64
	Hidden       bool
	OutlineLevel int
}

// RowProps holds the per-row formatting tracked outside individual cells.
type RowProps struct {
	Height        float64
	Hidden        bool
	OutlineLevel  int
	CustomHeight  bool
}

// Table is a named, ranged table definition, preserved structurally but
// not interpreted (no calculated columns, no totals-row formulas).
type Table struct {
	Name  string
	Range addr.CellRange
}

// PutSpec pairs a reference with the value to store there, for Sheet.PutAll.
type PutSpec struct {
	Ref   addr.ARef
	Value value.CellValue
}

// Sheet is an immutable worksheet value: a sparse cell map plus its
// associated style registry, merges, column/row properties, comments, and
// tables. All mutator methods return a new Sheet; the receiver is
// unmodified.
type Sheet struct {
	name      addr.SheetName
	cells     map[addr.ARef]Cell
	registry  *style.Registry
	merges    []addr.CellRange
	cols      map[addr.Column]ColumnProps
	rows      map[addr.Row]RowProps
	comments  map[addr.ARef]Comment
	tables    []Table
	visible   Visibility
}

// NewSheet creates an empty sheet with the given validated name.
func NewSheet(name addr.SheetName) *Sheet {
	return &Sheet{
		name:     name,
		cells:    map[addr.ARef]Cell{},
		registry: style.NewRegistry(),
		cols:     map[addr.Column]ColumnProps{},
		rows:     map[addr.Row]RowProps{},
		comments: map[addr.ARef]Comment{},
	}
}

// Name returns the sheet's name.
func (s *Sheet) Name() addr.SheetName { return s.name }

// Visibility returns the sheet's visibility state.
func (s *Sheet) Visibility() Visibility { return s.visible }

// Registry returns the sheet's style registry. Callers must not mutate it
// directly; use Style/Put to produce a new Sheet with updated styles.
func (s *Sheet) Registry() *style.Registry { return s.registry }

// clone performs the shallow copy-on-write step shared by every mutator:
// a fresh Sheet struct referencing the same maps/slices as the receiver,
// which callers then selectively deep-copy before mutating.
func (s *Sheet) clone() *Sheet {
	out := *s
	return &out
}

func cloneCells(m map[addr.ARef]Cell) map[addr.ARef]Cell {
	out := make(map[addr.ARef]Cell, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Get returns the cell at ref, or the zero Cell if absent.
func (s *Sheet) Get(ref addr.ARef) Cell {
	return s.cells[ref]
}

// Cells returns every non-empty (ref, Cell) pair. Order is unspecified.
func (s *Sheet) Cells() map[addr.ARef]Cell {
	return s.cells
}

// Put returns a new Sheet with the cell at ref replaced by value. An Empty
// value removes the entry entirely, keeping storage sparse, unless the cell
// carries a style, a comment, or a hyperlink; such an entry is kept with
// only its value cleared.
func (s *Sheet) Put(ref addr.ARef, v value.CellValue) *Sheet {
	out := s.clone()
	out.cells = cloneCells(s.cells)
	if v.IsEmpty() {
		existing := out.cells[ref]
		if existing.Style == 0 && !existing.HasComment && existing.Hyperlink == nil {
			delete(out.cells, ref)
			return out
		}
		existing.Value = v
		out.cells[ref] = existing
		return out
	}
	c := out.cells[ref]
	c.Value = v
	out.cells[ref] = c
	return out
}

// PutAll applies a sequence of Put operations in order, cloning the cell
// map once regardless of batch size.
func (s *Sheet) PutAll(specs []PutSpec) *Sheet {
	out := s.clone()
	out.cells = cloneCells(s.cells)
	for _, spec := range specs {
		if spec.Value.IsEmpty() {
			existing := out.cells[spec.Ref]
			if existing.Style == 0 && !existing.HasComment && existing.Hyperlink == nil {
				delete(out.cells, spec.Ref)
				continue
			}
			existing.Value = spec.Value
			out.cells[spec.Ref] = existing
			continue
		}
		c := out.cells[spec.Ref]
		c.Value = spec.Value
		out.cells[spec.Ref] = c
	}
	return out
}

// Style returns a new Sheet with st applied to every cell in rng. With
// mode Replace (the default), every cell's style id is set to st's
// interned id. With mode Merge, st is component-wise overlaid onto each
// cell's existing style.
func (s *Sheet) Style(rng addr.CellRange, st style.CellStyle, mode ...style.MergeMode) *Sheet {
	m := style.Replace
	if len(mode) > 0 {
		m = mode[0]
	}
	out := s.clone()
	out.registry = s.registry.Clone()
	out.cells = cloneCells(s.cells)

	if m == style.Replace {
		id := out.registry.Add(st)
		for _, ref := range rng.Cells() {
			c := out.cells[ref]
			c.Style = id
			out.cells[ref] = c
		}
		return out
	}

	for _, ref := range rng.Cells() {
		c := out.cells[ref]
		base, _ := out.registry.Get(c.Style)
		merged := style.MergeOverlay(base, st)
		c.Style = out.registry.Add(merged)
		out.cells[ref] = c
	}
	return out
}

// Merge returns a new Sheet with rng added to the merged-range set. It
// fails with OverlappingMergeError if rng intersects an existing merge.
func (s *Sheet) Merge(rng addr.CellRange) (*Sheet, error) {
	for _, existing := range s.merges {
		if rng.Intersects(existing) {
			return nil, &OverlappingMergeError{Requested: rng.A1(), Existing: existing.A1()}
		}
	}
	out := s.clone()
	out.merges = append(append([]addr.CellRange{}, s.merges...), rng)
	return out, nil
}

// Unmerge returns a new Sheet with the exact range rng removed from the
// merge set. Removing an unknown range is a no-op (returns an
// otherwise-identical Sheet).
func (s *Sheet) Unmerge(rng addr.CellRange) *Sheet {
	out := s.clone()
	merges := make([]addr.CellRange, 0, len(s.merges))
	for _, m := range s.merges {
		if m == rng {
			continue
		}
		merges = append(merges, m)
	}
	if len(merges) != len(s.merges) {
		out.merges = merges
	}
	return out
}

// Merges returns the current set of merged ranges.
func (s *Sheet) Merges() []addr.CellRange { return s.merges }

// WithColumn returns a new Sheet with col's properties replaced.
func (s *Sheet) WithColumn(col addr.Column, props ColumnProps) *Sheet {
	out := s.clone()
	out.cols = cloneColProps(s.cols)
	out.cols[col] = props
	return out
}

func cloneColProps(m map[addr.Column]ColumnProps) map[addr.Column]ColumnProps {
	out := make(map[addr.Column]ColumnProps, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Column returns col's properties, or the zero value if unset.
func (s *Sheet) Column(col addr.Column) ColumnProps { return s.cols[col] }

// Columns returns every explicitly-set column's properties.
func (s *Sheet) Columns() map[addr.Column]ColumnProps { return s.cols }

// WithRow returns a new Sheet with row's properties replaced.
func (s *Sheet) WithRow(row addr.Row, props RowProps) *Sheet {
	out := s.clone()
	out.rows = cloneRowProps(s.rows)
	out.rows[row] = props
	return out
}

func cloneRowProps(m map[addr.Row]RowProps) map[addr.Row]RowProps {
	out := make(map[addr.Row]RowProps, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Row returns row's properties, or the zero value if unset.
func (s *Sheet) Row(row addr.Row) RowProps { return s.rows[row] }

// Rows returns every explicitly-set row's properties.
func (s *Sheet) Rows() map[addr.Row]RowProps { return s.rows }

// WithComment returns a new Sheet with ref's comment set (or cleared, if
// c is nil).
func (s *Sheet) WithComment(ref addr.ARef, c *Comment) *Sheet {
	out := s.clone()
	out.comments = cloneComments(s.comments)
	out.cells = cloneCells(s.cells)
	cell := out.cells[ref]
	if c == nil {
		delete(out.comments, ref)
		cell.HasComment = false
	} else {
		out.comments[ref] = *c
		cell.HasComment = true
	}
	if !cell.IsEmpty() || c != nil {
		out.cells[ref] = cell
	} else {
		delete(out.cells, ref)
	}
	return out
}

func cloneComments(m map[addr.ARef]Comment) map[addr.ARef]Comment {
	out := make(map[addr.ARef]Comment, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Comment returns the comment at ref, and whether one is present.
func (s *Sheet) Comment(ref addr.ARef) (Comment, bool) {
	c, ok := s.comments[ref]
	return c, ok
}

// WithTable returns a new Sheet with t appended to its table list.
func (s *Sheet) WithTable(t Table) *Sheet {
	out := s.clone()
	out.tables = append(append([]Table{}, s.tables...), t)
	return out
}

// Tables returns the sheet's defined tables.
func (s *Sheet) Tables() []Table { return s.tables }

// WithVisibility returns a new Sheet with its visibility state changed.
func (s *Sheet) WithVisibility(v Visibility) *Sheet {
	out := s.clone()
	out.visible = v
	return out
}

// UsedRange computes the minimum bounding rectangle over every stored cell
// entry, merge, and table range. Column and row properties are not
// counted. Returns ok=false when the sheet has none of these.
func (s *Sheet) UsedRange() (addr.CellRange, bool) {
	has := false
	var minC, maxC addr.Column
	var minR, maxR addr.Row

	grow := func(c addr.Column, r addr.Row) {
		if !has {
			minC, maxC, minR, maxR = c, c, r, r
			has = true
			return
		}
		if c < minC {
			minC = c
		}
		if c > maxC {
			maxC = c
		}
		if r < minR {
			minR = r
		}
		if r > maxR {
			maxR = r
		}
	}

	for ref := range s.cells {
		grow(ref.Col, ref.Row)
	}
	for _, m := range s.merges {
		grow(m.Start.Col, m.Start.Row)
		grow(m.End.Col, m.End.Row)
	}
	for _, t := range s.tables {
		grow(t.Range.Start.Col, t.Range.Start.Row)
		grow(t.Range.End.Col, t.Range.End.Row)
	}
	if !has {
		return addr.CellRange{}, false
	}
	return addr.NewRange(addr.ARef{Col: minC, Row: minR}, addr.ARef{Col: maxC, Row: maxR}), true
}

// CheckInvariants validates the sheet-level invariants: every referenced
// style id exists, merged ranges do not overlap, and table ranges lie
// inside the used bounds.
func (s *Sheet) CheckInvariants() error {
	for ref, c := range s.cells {
		if !s.registry.Has(c.Style) {
			return &InvalidWorkbookError{Reason: "cell " + ref.A1() + " references unknown style id"}
		}
	}
	sorted := append([]addr.CellRange{}, s.merges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].A1() < sorted[j].A1() })
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[i].Intersects(sorted[j]) {
				return &OverlappingMergeError{Requested: sorted[j].A1(), Existing: sorted[i].A1()}
			}
		}
	}
	used, ok := s.UsedRange()
	if ok {
		for _, t := range s.tables {
			if _, inter := t.Range.Intersection(used); !inter {
				return &InvalidWorkbookError{Reason: "table " + t.Name + " lies outside used range"}
			}
		}
	}
	return nil
}
