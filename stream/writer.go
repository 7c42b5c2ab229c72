package stream

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/ooxml"
)

// spillThreshold is the buffered-row size at which RowWriter spills to a
// temp file rather than continuing to grow its in-memory buffer.
const spillThreshold = 1 << 24

// RowWriter builds one worksheet part's <sheetData> a row at a time.
// Once the buffered row XML exceeds spillThreshold it is appended to a
// temp file and the buffer is reset. The shared-string table stays in
// memory, and Flush reads the spilled rows back and returns the complete
// part as one in-memory byte slice. Styles referenced by streamed cells must already be registered
// in a style.Registry the caller manages; RowWriter never infers or
// creates styles from row values.
type RowWriter struct {
	strings *ooxml.StringTable

	tmp *os.File
	buf bytes.Buffer

	hinted    bool
	dimension string

	haveBounds bool
	minCol     addr.Column
	maxCol     addr.Column
	minRow     addr.Row
	maxRow     addr.Row

	closed bool
}

// NewRowWriter returns a RowWriter that auto-detects the worksheet's used
// range from the rows it is given, computing <dimension ref="..."/> only
// once Flush is called.
func NewRowWriter() *RowWriter {
	return &RowWriter{strings: ooxml.NewStringTable()}
}

// NewHintedRowWriter returns a RowWriter that writes the caller-supplied
// dimension immediately, avoiding the bookkeeping auto-detection needs.
// The caller is responsible for dimension's accuracy; it is not verified
// against the rows actually written.
func NewHintedRowWriter(dimension string) *RowWriter {
	return &RowWriter{strings: ooxml.NewStringTable(), hinted: true, dimension: dimension}
}

// Strings returns the shared-string table this writer interns into; the
// caller must persist its final Strings() into the package's
// sharedStrings part under the same numbering used here.
func (w *RowWriter) Strings() *ooxml.StringTable { return w.strings }

// WriteRow encodes one row's cells and appends it to the spooled stream.
func (w *RowWriter) WriteRow(rowIndex int, cells []ooxml.CellWrite) error {
	if w.closed {
		return fmt.Errorf("stream: WriteRow called after Flush")
	}
	if !w.hinted {
		w.trackBounds(rowIndex, cells)
	}
	enc := xml.NewEncoder(&w.buf)
	if err := ooxml.EncodeRow(enc, rowIndex, cells, w.strings); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	if w.buf.Len() >= spillThreshold {
		if err := w.spill(); err != nil {
			return err
		}
	}
	return nil
}

func (w *RowWriter) trackBounds(rowIndex int, cells []ooxml.CellWrite) {
	row := addr.Row(rowIndex - 1)
	for _, cw := range cells {
		ref, err := addr.ParseARef(cw.Ref)
		if err != nil {
			continue
		}
		if !w.haveBounds {
			w.minCol, w.maxCol, w.minRow, w.maxRow = ref.Col, ref.Col, row, row
			w.haveBounds = true
			continue
		}
		if ref.Col < w.minCol {
			w.minCol = ref.Col
		}
		if ref.Col > w.maxCol {
			w.maxCol = ref.Col
		}
		if row < w.minRow {
			w.minRow = row
		}
		if row > w.maxRow {
			w.maxRow = row
		}
	}
}

func (w *RowWriter) spill() error {
	if w.tmp == nil {
		f, err := os.CreateTemp("", "xl-stream-*.xml")
		if err != nil {
			return err
		}
		w.tmp = f
	}
	if _, err := w.tmp.Write(w.buf.Bytes()); err != nil {
		return err
	}
	w.buf.Reset()
	return nil
}

// Flush finalizes the worksheet part, splicing the computed (or hinted)
// <dimension/> in front of the spooled <sheetData> content and returning
// the full <worksheet>...</worksheet> document bytes. The RowWriter must
// not be used after Flush.
func (w *RowWriter) Flush() ([]byte, error) {
	if w.closed {
		return nil, fmt.Errorf("stream: Flush called twice")
	}
	w.closed = true

	dimension := w.dimension
	if !w.hinted {
		if w.haveBounds {
			rng := addr.NewRange(addr.ARef{Col: w.minCol, Row: w.minRow}, addr.ARef{Col: w.maxCol, Row: w.maxRow})
			dimension = rng.A1()
		} else {
			dimension = "A1"
		}
	}

	var out bytes.Buffer
	out.WriteString(xml.Header)
	out.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
	fmt.Fprintf(&out, `<dimension ref=%q/>`, dimension)
	out.WriteString(`<sheetData>`)

	if w.tmp != nil {
		if _, err := w.tmp.Write(w.buf.Bytes()); err != nil {
			w.tmp.Close()
			return nil, err
		}
		if _, err := w.tmp.Seek(0, io.SeekStart); err != nil {
			w.tmp.Close()
			return nil, err
		}
		if _, err := io.Copy(&out, w.tmp); err != nil {
			w.tmp.Close()
			return nil, err
		}
		name := w.tmp.Name()
		w.tmp.Close()
		os.Remove(name)
	} else {
		out.Write(w.buf.Bytes())
	}

	out.WriteString(`</sheetData></worksheet>`)
	return out.Bytes(), nil
}
