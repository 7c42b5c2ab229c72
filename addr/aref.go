package addr

import (
	"fmt"
	"strconv"
)

// Anchor is the per-axis relative/absolute marker that controls how a
// reference participates in shift operations and how it prints in A1 form.
type Anchor int

const (
	// Relative means both axes move with a shift ("A1").
	Relative Anchor = iota
	// AbsoluteCol pins the column only ("$A1").
	AbsoluteCol
	// AbsoluteRow pins the row only ("A$1").
	AbsoluteRow
	// Absolute pins both axes ("$A$1").
	Absolute
)

// colAbsolute reports whether the column axis is pinned.
func (a Anchor) colAbsolute() bool {
	return a == AbsoluteCol || a == Absolute
}

// rowAbsolute reports whether the row axis is pinned.
func (a Anchor) rowAbsolute() bool {
	return a == AbsoluteRow || a == Absolute
}

func anchorFrom(colAbs, rowAbs bool) Anchor {
	switch {
	case colAbs && rowAbs:
		return Absolute
	case colAbs:
		return AbsoluteCol
	case rowAbs:
		return AbsoluteRow
	default:
		return Relative
	}
}

// ARef is a single cell reference: a (Column, Row) pair plus the anchor mode
// controlling how each axis behaves under shift and how it is printed.
type ARef struct {
	Col    Column
	Row    Row
	Anchor Anchor
}

// NewARef builds a fully relative reference.
func NewARef(col Column, row Row) ARef {
	return ARef{Col: col, Row: row, Anchor: Relative}
}

// Valid reports whether both axes are within their legal ranges.
func (r ARef) Valid() bool {
	return r.Col.Valid() && r.Row.Valid()
}

// Shift moves the reference by (deltaCol, deltaRow), skipping axes that are
// anchored absolute. The anchor mode itself is preserved.
func (r ARef) Shift(deltaCol, deltaRow int) ARef {
	out := r
	if !r.Anchor.colAbsolute() {
		out.Col = r.Col.Shift(deltaCol)
	}
	if !r.Anchor.rowAbsolute() {
		out.Row = r.Row.Shift(deltaRow)
	}
	return out
}

// WouldOverflow reports whether shifting by (deltaCol, deltaRow) would carry
// a relative axis outside [0, MaxColumn]/[0, MaxRow]. Absolute axes never
// overflow since Shift leaves them untouched.
func (r ARef) WouldOverflow(deltaCol, deltaRow int) bool {
	if !r.Anchor.colAbsolute() {
		n := int(r.Col) + deltaCol
		if n < 0 || n > MaxColumn {
			return true
		}
	}
	if !r.Anchor.rowAbsolute() {
		n := int(r.Row) + deltaRow
		if n < 0 || n > MaxRow {
			return true
		}
	}
	return false
}

// A1 renders the reference in A1 notation, including anchor dollar signs.
func (r ARef) A1() string {
	colDollar := ""
	if r.Anchor.colAbsolute() {
		colDollar = "$"
	}
	rowDollar := ""
	if r.Anchor.rowAbsolute() {
		rowDollar = "$"
	}
	return fmt.Sprintf("%s%s%s%d", colDollar, r.Col.Letters(), rowDollar, int(r.Row)+1)
}

// String implements fmt.Stringer.
func (r ARef) String() string { return r.A1() }

// ParseARef parses a single-cell A1 reference such as "A1", "$A1", "A$1",
// or "$A$1". It does not accept a sheet qualifier or range colon; use
// ParseRef for the general grammar.
func ParseARef(s string) (ARef, error) {
	colDollar, letters, rest := splitColumnPrefix(s)
	if letters == "" {
		return ARef{}, &InvalidRefError{Text: s, Reason: "missing column letters"}
	}
	rowDollar := false
	if len(rest) > 0 && rest[0] == '$' {
		rowDollar = true
		rest = rest[1:]
	}
	if rest == "" {
		return ARef{}, &InvalidRefError{Text: s, Reason: "missing row digits"}
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return ARef{}, &InvalidRefError{Text: s, Reason: "trailing garbage after row digits"}
		}
	}
	col, ok := ColumnFromLetters(letters)
	if !ok {
		return ARef{}, &InvalidColumnError{Text: letters}
	}
	rowNum, err := strconv.Atoi(rest)
	if err != nil {
		return ARef{}, &InvalidRefError{Text: s, Reason: "malformed row number"}
	}
	row := Row(rowNum - 1)
	if !row.Valid() {
		return ARef{}, &InvalidRowError{Text: rest}
	}
	return ARef{Col: col, Row: row, Anchor: anchorFrom(colDollar, rowDollar)}, nil
}
