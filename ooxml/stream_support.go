package ooxml

import (
	"encoding/xml"
	"io"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/value"
)

// NewHardenedDecoder wraps r in an xml.Decoder configured the same way
// decodeZipEntry configures one: Strict mode on, no entity table, so a
// worksheet part streamed row-by-row gets the same protection against
// external/undefined entity expansion as a fully-buffered part does.
func NewHardenedDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.Entity = map[string]string{}
	return dec
}

// StreamRow is one decoded <row> element: its 1-based row number and its
// cells keyed by 0-based column index.
type StreamRow struct {
	RowIndex int
	Cells    map[addr.Column]value.CellValue
}

// DecodeRow fully decodes the <row> element dec is positioned at (start
// having just been read as its opening token) and returns its cells,
// resolving shared-string/formula/error/numeric values exactly as the
// buffered reader does. Used by the streaming row reader, which otherwise
// never materializes more than one row at a time.
func DecodeRow(dec *xml.Decoder, start xml.StartElement, shared []value.CellValue) (StreamRow, error) {
	var row xlsxRow
	if err := dec.DecodeElement(&row, &start); err != nil {
		return StreamRow{}, err
	}
	out := StreamRow{RowIndex: row.R, Cells: make(map[addr.Column]value.CellValue, len(row.C))}
	for _, c := range row.C {
		ref, err := addr.ParseARef(c.R)
		if err != nil {
			return StreamRow{}, &ReadError{Reason: "cell has invalid reference " + c.R, Err: err}
		}
		out.Cells[ref.Col] = decodeCellValue(c, shared)
	}
	return out, nil
}

// CellWrite is one cell value destined for a streamed row, in the shape
// the streaming writer's callers supply them (column-ordered, already
// resolved to a concrete style id from a registry the caller owns).
type CellWrite struct {
	Ref     string
	StyleID int
	Value   value.CellValue
}

// EncodeRow marshals one <row> element (with its <c> children) into enc,
// reusing encodeCell so a streamed row is byte-identical to the same row
// produced by the buffered writer.
func EncodeRow(enc *xml.Encoder, rowIndex int, cells []CellWrite, strings *StringTable) error {
	return EncodeRowFull(enc, RowWrite{RowIndex: rowIndex, Cells: cells}, strings)
}

// RowWrite is a full <row> element, including the per-row properties the
// worksheet transformer needs to preserve or rewrite alongside its cells.
type RowWrite struct {
	RowIndex     int
	Height       float64
	Hidden       bool
	OutlineLevel int
	CustomHeight bool
	Cells        []CellWrite
}

// EncodeRowFull marshals a full RowWrite, carrying row-level properties
// that the simpler EncodeRow leaves at their zero value.
func EncodeRowFull(enc *xml.Encoder, rw RowWrite, strings *StringTable) error {
	row := xlsxRow{
		R: rw.RowIndex, Ht: rw.Height, CustomHeight: rw.CustomHeight,
		Hidden: rw.Hidden, OutlineLevel: rw.OutlineLevel,
	}
	for _, cw := range rw.Cells {
		row.C = append(row.C, encodeCell(cw.Ref, cw.StyleID, cw.Value, strings.inner))
	}
	return enc.EncodeElement(row, xml.StartElement{Name: xml.Name{Local: "row"}})
}

// RawCell is one decoded <c> element's full record: reference, style id,
// and resolved value. Unlike DecodeRow (which the streaming reader uses
// and which only needs values), the worksheet transformer must also see
// each cell's existing style id to merge or pass it through.
type RawCell struct {
	Ref     string
	Col     addr.Column
	StyleID int
	Value   value.CellValue
}

// RawRow is a fully decoded <row>, including per-row properties.
type RawRow struct {
	RowIndex     int
	Height       float64
	Hidden       bool
	OutlineLevel int
	CustomHeight bool
	Cells        []RawCell
}

// DecodeRowCells fully decodes the <row> element dec is positioned at,
// preserving each cell's style id alongside its value.
func DecodeRowCells(dec *xml.Decoder, start xml.StartElement, shared []value.CellValue) (RawRow, error) {
	var row xlsxRow
	if err := dec.DecodeElement(&row, &start); err != nil {
		return RawRow{}, err
	}
	out := RawRow{
		RowIndex: row.R, Height: row.Ht, Hidden: row.Hidden,
		OutlineLevel: row.OutlineLevel, CustomHeight: row.CustomHeight,
		Cells: make([]RawCell, 0, len(row.C)),
	}
	for _, c := range row.C {
		ref, err := addr.ParseARef(c.R)
		if err != nil {
			return RawRow{}, &ReadError{Reason: "cell has invalid reference " + c.R, Err: err}
		}
		out.Cells = append(out.Cells, RawCell{Ref: c.R, Col: ref.Col, StyleID: c.S, Value: decodeCellValue(c, shared)})
	}
	return out, nil
}

// StringTable is the exported handle streaming writers use to intern
// strings into the same shared-string numbering the buffered writer
// produces.
type StringTable struct{ inner *stringTable }

// NewStringTable returns an empty shared-string table.
func NewStringTable() *StringTable { return &StringTable{inner: newStringTable()} }

// NewSeededStringTable returns a shared-string table pre-populated with
// existing's entries at their existing indices, so interning a brand new
// string yields an index that extends the table rather than colliding
// with one a passed-through (unre-encoded) cell still references.
func NewSeededStringTable(existing []value.CellValue) *StringTable {
	t := newStringTable()
	for _, v := range existing {
		t.intern(v.PlainText())
	}
	return &StringTable{inner: t}
}

// Intern adds s if new and returns its shared-string index.
func (t *StringTable) Intern(s string) int { return t.inner.intern(s) }

// Strings returns the interned strings in assigned-index order.
func (t *StringTable) Strings() []string { return t.inner.order }
