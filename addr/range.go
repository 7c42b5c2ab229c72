package addr

// CellRange is a normalized, inclusive rectangle of cells: Start is
// componentwise <= End. Construction always normalizes.
type CellRange struct {
	Start ARef
	End   ARef
}

// NewRange builds a normalized range from two corners, sorting each axis
// independently and preserving each corner's own anchor mode per axis.
func NewRange(a, b ARef) CellRange {
	start, end := a, b
	if start.Col > end.Col {
		start.Col, end.Col = end.Col, start.Col
		start.Anchor, end.Anchor = swapColAnchor(start.Anchor, end.Anchor)
	}
	if start.Row > end.Row {
		start.Row, end.Row = end.Row, start.Row
		start.Anchor, end.Anchor = swapRowAnchor(start.Anchor, end.Anchor)
	}
	return CellRange{Start: start, End: end}
}

func swapColAnchor(a, b Anchor) (Anchor, Anchor) {
	aRow, bRow := a.rowAbsolute(), b.rowAbsolute()
	return anchorFrom(b.colAbsolute(), aRow), anchorFrom(a.colAbsolute(), bRow)
}

func swapRowAnchor(a, b Anchor) (Anchor, Anchor) {
	aCol, bCol := a.colAbsolute(), b.colAbsolute()
	return anchorFrom(aCol, b.rowAbsolute()), anchorFrom(bCol, a.rowAbsolute())
}

// Width returns the number of columns spanned.
func (r CellRange) Width() int {
	return int(r.End.Col-r.Start.Col) + 1
}

// Height returns the number of rows spanned.
func (r CellRange) Height() int {
	return int(r.End.Row-r.Start.Row) + 1
}

// CellCount returns Width * Height.
func (r CellRange) CellCount() int {
	return r.Width() * r.Height()
}

// Contains reports whether ref lies within the range.
func (r CellRange) Contains(ref ARef) bool {
	return ref.Col >= r.Start.Col && ref.Col <= r.End.Col &&
		ref.Row >= r.Start.Row && ref.Row <= r.End.Row
}

// Intersects reports whether the two ranges share any cell.
func (r CellRange) Intersects(o CellRange) bool {
	return r.Start.Col <= o.End.Col && o.Start.Col <= r.End.Col &&
		r.Start.Row <= o.End.Row && o.Start.Row <= r.End.Row
}

// Intersection returns the overlapping rectangle and true, or the zero value
// and false if the ranges do not intersect.
func (r CellRange) Intersection(o CellRange) (CellRange, bool) {
	if !r.Intersects(o) {
		return CellRange{}, false
	}
	startCol := maxCol(r.Start.Col, o.Start.Col)
	startRow := maxRow(r.Start.Row, o.Start.Row)
	endCol := minCol(r.End.Col, o.End.Col)
	endRow := minRow(r.End.Row, o.End.Row)
	return CellRange{
		Start: ARef{Col: startCol, Row: startRow},
		End:   ARef{Col: endCol, Row: endRow},
	}, true
}

func maxCol(a, b Column) Column {
	if a > b {
		return a
	}
	return b
}
func minCol(a, b Column) Column {
	if a < b {
		return a
	}
	return b
}
func maxRow(a, b Row) Row {
	if a > b {
		return a
	}
	return b
}
func minRow(a, b Row) Row {
	if a < b {
		return a
	}
	return b
}

// Cells enumerates every ARef in the range in row-major order (left to
// right, top to bottom).
func (r CellRange) Cells() []ARef {
	out := make([]ARef, 0, r.CellCount())
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			out = append(out, ARef{Col: col, Row: row})
		}
	}
	return out
}

// CellsColMajor enumerates every ARef in the range column-major (top to
// bottom within each column, left to right across columns).
func (r CellRange) CellsColMajor() []ARef {
	out := make([]ARef, 0, r.CellCount())
	for col := r.Start.Col; col <= r.End.Col; col++ {
		for row := r.Start.Row; row <= r.End.Row; row++ {
			out = append(out, ARef{Col: col, Row: row})
		}
	}
	return out
}

// Clip returns the intersection of r with bound, or false if disjoint. It
// is used to bound unbounded-looking ranges (e.g. full-column "A:A") to a
// sheet's used-range hint before enumeration.
func (r CellRange) Clip(bound CellRange) (CellRange, bool) {
	return r.Intersection(bound)
}

// A1 renders the range in "start:end" A1 notation.
func (r CellRange) A1() string {
	return r.Start.A1() + ":" + r.End.A1()
}

// ParseRange parses a "start:end" A1 range and normalizes it.
func ParseRange(s string) (CellRange, error) {
	i := indexByte(s, ':')
	if i < 0 {
		return CellRange{}, &InvalidRangeError{Text: s, Reason: "missing ':'"}
	}
	a, err := ParseARef(s[:i])
	if err != nil {
		return CellRange{}, &InvalidRangeError{Text: s, Reason: err.Error()}
	}
	b, err := ParseARef(s[i+1:])
	if err != nil {
		return CellRange{}, &InvalidRangeError{Text: s, Reason: err.Error()}
	}
	return NewRange(a, b), nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
