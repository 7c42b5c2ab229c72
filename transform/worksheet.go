package transform

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/ooxml"
	"github.com/openxl/xl/value"
)

// earlyAbortThreshold and earlyAbortMaxRow bound the early-abort
// optimization in transcodeSheetData: once every patched row has been
// passed and the remaining, certainly-unpatched tail of the part is large
// enough to be worth skipping, the remainder of <sheetData> is spliced
// through as one byte range (found by scanning for its closing tag)
// instead of being tokenized row by row.
const (
	earlyAbortThreshold = 1 << 20
	earlyAbortMaxRow    = 10000
)

// posDecoder is an xml.Decoder paired with the absolute offset, into the
// original worksheet bytes, that its underlying reader starts at. The
// early-abort optimization re-seeds a fresh decoder partway through src;
// posDecoder lets the rest of the transcoder keep reasoning in absolute
// offsets without caring whether it is on the first decoder or a
// re-seeded one.
type posDecoder struct {
	dec  *xml.Decoder
	base int64
}

func newPosDecoder(src []byte, base int64) *posDecoder {
	return &posDecoder{dec: ooxml.NewHardenedDecoder(bytes.NewReader(src[base:])), base: base}
}

func (p *posDecoder) Token() (xml.Token, error) { return p.dec.Token() }
func (p *posDecoder) Skip() error                { return p.dec.Skip() }
func (p *posDecoder) Offset() int64              { return p.base + p.dec.InputOffset() }
func (p *posDecoder) decodeRowCells(start xml.StartElement, shared []value.CellValue) (ooxml.RawRow, error) {
	return ooxml.DecodeRowCells(p.dec, start, shared)
}

// TransformWorksheet rewrites one worksheet part's XML according to ps,
// leaving every row, cell, column, merge, and dimension ps does not
// require changing byte-identical to src. shared is the package's
// shared-string table, for decoding values already present on touched
// rows; strings is where newly-written string values are interned — the
// caller is responsible for persisting its final contents back into
// sharedStrings.xml under the same numbering.
func TransformWorksheet(src []byte, ps *PatchSet, shared []value.CellValue, strings *ooxml.StringTable) ([]byte, error) {
	finalDim, err := computeDimension(src, ps)
	if err != nil {
		return nil, err
	}

	pd := newPosDecoder(src, 0)
	var out bytes.Buffer
	var lastOffset int64
	depth := 0
	injectCols := ps.Cols.Set && !bytes.Contains(src, []byte("<cols"))
	injectMerges := ps.Merges.Set && !bytes.Contains(src, []byte("<mergeCells"))

	for {
		offsetBefore := pd.Offset()
		tok, terr := pd.Token()
		if terr == io.EOF {
			break
		}
		if terr != nil {
			return nil, fmt.Errorf("transform: %w", terr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 {
				continue
			}
			switch t.Name.Local {
			case "dimension":
				if orig, ok, _ := readDimension(src); ok && orig.A1() == finalDim {
					continue
				}
				out.Write(src[lastOffset:offsetBefore])
				if err := pd.Skip(); err != nil {
					return nil, fmt.Errorf("transform: skip dimension: %w", err)
				}
				depth--
				lastOffset = pd.Offset()
				fmt.Fprintf(&out, `<dimension ref=%q/>`, finalDim)
			case "cols":
				if !ps.Cols.Set {
					continue
				}
				out.Write(src[lastOffset:offsetBefore])
				if err := pd.Skip(); err != nil {
					return nil, fmt.Errorf("transform: skip cols: %w", err)
				}
				depth--
				lastOffset = pd.Offset()
				writeCols(&out, ps.Cols.Cols)
			case "sheetData":
				out.Write(src[lastOffset:offsetBefore])
				if injectCols {
					writeCols(&out, ps.Cols.Cols)
				}
				newPd, end, werr := transcodeSheetData(pd, src, offsetBefore, ps, shared, strings, &out)
				if werr != nil {
					return nil, werr
				}
				pd = newPd
				depth--
				lastOffset = end
				if injectMerges {
					writeMergeCells(&out, ps.Merges.Ranges)
				}
			case "mergeCells":
				if !ps.Merges.Set {
					continue
				}
				out.Write(src[lastOffset:offsetBefore])
				if err := pd.Skip(); err != nil {
					return nil, fmt.Errorf("transform: skip mergeCells: %w", err)
				}
				depth--
				lastOffset = pd.Offset()
				writeMergeCells(&out, ps.Merges.Ranges)
			}
		case xml.EndElement:
			depth--
		}
	}

	out.Write(src[lastOffset:])
	return out.Bytes(), nil
}

// transcodeSheetData walks the <sheetData> element starting at
// sheetDataStart (the offset of its opening '<'), splicing unpatched rows
// straight from src and decoding, merging, and re-encoding only rows a
// patch touches. It writes the full replacement content (the opening
// <sheetData...> tag, every row, and the closing tag) into out, and
// returns the decoder to resume the outer walk with (possibly re-seeded,
// if the early-abort optimization fired) along with the absolute offset
// immediately after </sheetData>.
func transcodeSheetData(pd *posDecoder, src []byte, sheetDataStart int64, ps *PatchSet, shared []value.CellValue, strings *ooxml.StringTable, out *bytes.Buffer) (*posDecoder, int64, error) {
	patchRows := ps.touchedRows()
	maxPatched, hasPatches := ps.maxRow()
	pendingIdx := 0
	lastOffset := sheetDataStart

	for {
		offsetBefore := pd.Offset()
		tok, terr := pd.Token()
		if terr != nil {
			return nil, 0, fmt.Errorf("transform: %w", terr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "row" {
				continue
			}
			rowNum, rerr := rowNumberOf(t)
			if rerr != nil {
				return nil, 0, rerr
			}
			rowIdx := addr.Row(rowNum - 1)

			out.Write(src[lastOffset:offsetBefore])
			lastOffset = offsetBefore
			if err := flushSynthesized(out, ps, patchRows, &pendingIdx, rowIdx, true, strings); err != nil {
				return nil, 0, err
			}

			cps, cellPatched := ps.Cells[rowIdx]
			rp, rowPatched := ps.Rows[rowIdx]
			if !cellPatched && !rowPatched {
				if err := pd.Skip(); err != nil {
					return nil, 0, fmt.Errorf("transform: skip row %d: %w", rowNum, err)
				}
				allPatchesEmitted := hasPatches && rowIdx >= maxPatched && pendingIdx >= len(patchRows)
				if allPatchesEmitted && int64(len(src))-pd.Offset() >= earlyAbortThreshold && rowNum < earlyAbortMaxRow {
					if cut, ok := findSheetDataEnd(src, pd.Offset()); ok {
						end := cut + int64(len("</sheetData>"))
						out.Write(src[lastOffset:end])
						return newPosDecoder(src, end), end, nil
					}
				}
				continue
			}

			out.Write(src[lastOffset:offsetBefore])
			row, derr := pd.decodeRowCells(t, shared)
			if derr != nil {
				return nil, 0, fmt.Errorf("transform: decode row %d: %w", rowNum, derr)
			}
			lastOffset = pd.Offset()

			merged := mergeRow(row, cps, rp, rowPatched)
			if err := ooxml.EncodeRowFull(xml.NewEncoder(out), merged, strings); err != nil {
				return nil, 0, err
			}
			if idx := indexOf(patchRows, rowIdx); idx >= 0 && idx >= pendingIdx {
				pendingIdx = idx + 1
			}

		case xml.EndElement:
			if t.Name.Local != "sheetData" {
				continue
			}
			out.Write(src[lastOffset:offsetBefore])
			if err := flushSynthesized(out, ps, patchRows, &pendingIdx, addr.Row(1<<30), false, strings); err != nil {
				return nil, 0, err
			}
			out.Write(src[offsetBefore:pd.Offset()])
			return pd, pd.Offset(), nil
		}
	}
}

// findSheetDataEnd locates the byte offset of "</sheetData>" at or after
// from, returning false if the closing tag cannot be found (in which case
// the caller falls back to ordinary token-by-token transcoding).
func findSheetDataEnd(src []byte, from int64) (int64, bool) {
	idx := bytes.Index(src[from:], []byte("</sheetData>"))
	if idx < 0 {
		return 0, false
	}
	return from + int64(idx), true
}

// flushSynthesized emits every still-pending patched row whose row index
// is below (or, for the final flush, at-or-below) boundary: rows a patch
// requested that the source worksheet never had at all.
func flushSynthesized(out *bytes.Buffer, ps *PatchSet, patchRows []addr.Row, pendingIdx *int, boundary addr.Row, strictlyBefore bool, strings *ooxml.StringTable) error {
	for *pendingIdx < len(patchRows) {
		r := patchRows[*pendingIdx]
		if strictlyBefore && r >= boundary {
			break
		}
		if !strictlyBefore && r > boundary {
			break
		}
		if err := encodeSynthesizedRow(out, ps, r, strings); err != nil {
			return err
		}
		*pendingIdx++
	}
	return nil
}

func encodeSynthesizedRow(out *bytes.Buffer, ps *PatchSet, rowIdx addr.Row, strings *ooxml.StringTable) error {
	merged := mergeRow(ooxml.RawRow{RowIndex: int(rowIdx) + 1}, ps.Cells[rowIdx], ps.Rows[rowIdx], true)
	return ooxml.EncodeRowFull(xml.NewEncoder(out), merged, strings)
}

// mergeRow applies a row's cell patches (and, if present, its row-property
// patch) onto a decoded source row, producing the RowWrite the transcoder
// re-encodes. Cells present in the source but not patched pass through
// with their existing reference, style id, and value; cells a patch
// mentions are overridden; cells a patch adds that the source never had
// are inserted in column-sorted order.
func mergeRow(row ooxml.RawRow, cps []CellPatch, rp RowPatch, rowPatched bool) ooxml.RowWrite {
	byCol := make(map[addr.Column]ooxml.CellWrite, len(row.Cells)+len(cps))
	for _, c := range row.Cells {
		byCol[c.Col] = ooxml.CellWrite{Ref: c.Ref, StyleID: c.StyleID, Value: c.Value}
	}
	for _, p := range cps {
		cw, existed := byCol[p.Ref.Col]
		if !existed {
			cw = ooxml.CellWrite{Ref: p.Ref.A1()}
		}
		if p.SetValue {
			cw.Value = p.Value
		}
		if p.SetStyleID {
			cw.StyleID = p.StyleID
		}
		byCol[p.Ref.Col] = cw
	}

	cols := make([]int, 0, len(byCol))
	for c := range byCol {
		cols = append(cols, int(c))
	}
	sort.Ints(cols)
	cells := make([]ooxml.CellWrite, len(cols))
	for i, c := range cols {
		cells[i] = byCol[addr.Column(c)]
	}

	out := ooxml.RowWrite{
		RowIndex: row.RowIndex, Height: row.Height, Hidden: row.Hidden,
		OutlineLevel: row.OutlineLevel, CustomHeight: row.CustomHeight, Cells: cells,
	}
	if rowPatched {
		out.Height, out.Hidden, out.OutlineLevel, out.CustomHeight = rp.Height, rp.Hidden, rp.OutlineLevel, rp.CustomHeight
	}
	return out
}

func rowNumberOf(t xml.StartElement) (int, error) {
	for _, a := range t.Attr {
		if a.Name.Local == "r" {
			n, err := strconv.Atoi(a.Value)
			if err != nil {
				return 0, fmt.Errorf("transform: invalid row number %q: %w", a.Value, err)
			}
			return n, nil
		}
	}
	return 0, fmt.Errorf("transform: row element has no r attribute")
}

func indexOf(rows []addr.Row, r addr.Row) int {
	for i, v := range rows {
		if v == r {
			return i
		}
	}
	return -1
}
