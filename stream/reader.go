// Package stream implements the row-at-a-time reader and writer: an
// event-driven worksheet reader that holds at most one row in memory, and
// a companion writer that spools rows through a bounded buffer before
// spilling to a temp file, so neither side materializes a full Sheet.
package stream

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/ooxml"
	"github.com/openxl/xl/value"
)

// RowData is one decoded worksheet row: its 1-based row number and its
// cells, keyed by 0-based column index. A row with no cells in the
// requested range is still emitted, with an empty Cells map.
type RowData struct {
	RowIndex int
	Cells    map[int]value.CellValue
}

// RowReader walks a worksheet part's <sheetData> element by element,
// decoding and discarding one <row> at a time. Memory use is bounded by
// the widest single row, not by the sheet's total size.
type RowReader struct {
	rc      io.ReadCloser
	dec     *xml.Decoder
	shared  []value.CellValue
	rng     *addr.CellRange
	current RowData
	err     error
	done    bool
}

// OpenSheet opens a streaming reader over the sheet named name.
func OpenSheet(ra io.ReaderAt, size int64, name addr.SheetName) (*RowReader, error) {
	idx, err := ooxml.OpenIndex(ra, size)
	if err != nil {
		return nil, err
	}
	ref, ok := idx.SheetByName(name)
	if !ok {
		return nil, &model.SheetNotFoundError{Name: string(name)}
	}
	return openSheetPart(idx, ref)
}

// OpenSheetIndex opens a streaming reader over the i'th sheet (0-based, in
// workbook order).
func OpenSheetIndex(ra io.ReaderAt, size int64, i int) (*RowReader, error) {
	idx, err := ooxml.OpenIndex(ra, size)
	if err != nil {
		return nil, err
	}
	ref, ok := idx.SheetByIndex(i)
	if !ok {
		return nil, fmt.Errorf("stream: sheet index %d out of range", i)
	}
	return openSheetPart(idx, ref)
}

func openSheetPart(idx *ooxml.PackageIndex, ref ooxml.SheetRef) (*RowReader, error) {
	rc, err := idx.Open(ref.Target)
	if err != nil {
		return nil, err
	}
	return &RowReader{rc: rc, dec: ooxml.NewHardenedDecoder(rc), shared: idx.Shared}, nil
}

// WithRange restricts iteration to rows and columns inside rng: rows
// entirely outside it are skipped without being decoded into the caller's
// view, and cells outside its column bounds are dropped from the emitted
// row. Must be called before the first Next.
func (r *RowReader) WithRange(rng addr.CellRange) *RowReader {
	r.rng = &rng
	return r
}

// Next advances to the next matching row, returning false at end of
// stream or on error (distinguish the two with Err).
func (r *RowReader) Next() bool {
	if r.done || r.err != nil {
		return false
	}
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			r.done = true
			return false
		}
		if err != nil {
			r.err = err
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "row" {
				continue
			}
			row, derr := ooxml.DecodeRow(r.dec, t, r.shared)
			if derr != nil {
				r.err = derr
				return false
			}
			rowIdx := addr.Row(row.RowIndex - 1)
			if r.rng != nil && !rowInRange(rowIdx, *r.rng) {
				continue
			}
			r.current = toRowData(row, r.rng)
			return true
		case xml.EndElement:
			if t.Name.Local == "sheetData" {
				r.done = true
				return false
			}
		}
	}
}

func rowInRange(row addr.Row, rng addr.CellRange) bool {
	return row >= rng.Start.Row && row <= rng.End.Row
}

func toRowData(row ooxml.StreamRow, rng *addr.CellRange) RowData {
	out := RowData{RowIndex: row.RowIndex, Cells: make(map[int]value.CellValue, len(row.Cells))}
	for col, v := range row.Cells {
		if rng != nil && (col < rng.Start.Col || col > rng.End.Col) {
			continue
		}
		out.Cells[int(col)] = v
	}
	return out
}

// Row returns the row decoded by the most recent successful Next.
func (r *RowReader) Row() RowData { return r.current }

// Err returns the first error encountered, if any.
func (r *RowReader) Err() error { return r.err }

// Close releases the underlying part reader.
func (r *RowReader) Close() error { return r.rc.Close() }
