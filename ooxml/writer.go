package ooxml

import (
	"archive/zip"
	"compress/flate"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/style"
)

// epoch is the fixed modification timestamp stamped on every ZIP entry so
// two writes of the same workbook produce byte-identical archives.
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

const pinnedDeflateLevel = 6

// Write serializes wb as an XLSX package to w. Parts are emitted in a
// fixed order; deflate level and entry timestamps are pinned so repeated
// writes of an unchanged workbook are byte-equal.
func Write(w io.Writer, wb *model.Workbook) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, pinnedDeflateLevel)
	})

	registry := sharedRegistry(wb)
	strings := newStringTable()
	sheetXMLs := make([][]byte, len(wb.Sheets()))
	for i, sheet := range wb.Sheets() {
		data, err := encodeWorksheet(sheet, registry, strings)
		if err != nil {
			return err
		}
		sheetXMLs[i] = data
	}

	hasSharedStrings := len(strings.order) > 0
	hasTheme := true

	if err := writePartXML(zw, partContentTypes, buildContentTypes(len(wb.Sheets()), hasSharedStrings, hasTheme, manifestOverrides(wb))); err != nil {
		return err
	}
	if err := writePartXML(zw, partRootRels, rootRelationships()); err != nil {
		return err
	}
	if err := writePartXML(zw, partWorkbook, encodeWorkbookXML(wb)); err != nil {
		return err
	}
	if err := writePartXML(zw, partWorkbookRels, workbookRelationships(len(wb.Sheets()), hasSharedStrings, hasTheme)); err != nil {
		return err
	}
	if err := writePartXML(zw, partStyles, encodeStyleSheet(registry)); err != nil {
		return err
	}
	if hasSharedStrings {
		if err := writePartXML(zw, partSharedStrings, encodeSharedStrings(strings.order)); err != nil {
			return err
		}
	}
	if hasTheme {
		if err := writePartXML(zw, partTheme, encodeTheme(wb.Theme())); err != nil {
			return err
		}
	}
	for i, data := range sheetXMLs {
		if err := writePartRaw(zw, sheetPartName(i), data); err != nil {
			return err
		}
	}

	manifest := append([]model.Part{}, wb.Manifest().Parts...)
	sort.Slice(manifest, func(i, j int) bool { return manifest[i].Path < manifest[j].Path })
	for _, part := range manifest {
		if err := writePartRaw(zw, part.Path, part.Data); err != nil {
			return err
		}
	}

	return zw.Close()
}

func writePartRaw(zw *zip.Writer, name string, data []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	hdr.Modified = epoch
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return &WriteError{Part: name, Reason: "cannot create zip entry", Err: err}
	}
	if _, err := w.Write(data); err != nil {
		return &WriteError{Part: name, Reason: "cannot write zip entry", Err: err}
	}
	return nil
}

// NewPinnedZipWriter returns a zip.Writer configured with the same fixed
// deflate level Write uses, so a part-by-part copier (e.g. the worksheet
// transformer, which recompresses every unchanged part it streams
// through) produces entries byte-identical to a full rewrite.
func NewPinnedZipWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, pinnedDeflateLevel)
	})
	return zw
}

// WriteRawEntry writes one whole-part entry (already-decoded bytes) with
// the pinned modification timestamp.
func WriteRawEntry(zw *zip.Writer, name string, data []byte) error {
	return writePartRaw(zw, name, data)
}

func writePartXML(zw *zip.Writer, name string, v interface{}) error {
	data, err := xml.Marshal(v)
	if err != nil {
		return &WriteError{Part: name, Reason: "cannot marshal xml", Err: err}
	}
	return writePartRaw(zw, name, append([]byte(xml.Header), data...))
}

// sharedRegistry merges every sheet's style registry into one, since
// styles.xml is workbook-scoped while Sheet carries its own Registry.
// Each sheet was built with its own registry during editing, so a style
// id is only meaningful relative to its owning sheet; merging here
// assigns the single id space the OOXML format requires.
func sharedRegistry(wb *model.Workbook) *style.Registry {
	out := style.NewRegistry()
	for _, sheet := range wb.Sheets() {
		out.Merge(sheet.Registry())
	}
	return out
}

func manifestOverrides(wb *model.Workbook) []xlsxOverrideType {
	var extra []xlsxOverrideType
	for _, p := range wb.Manifest().Parts {
		if p.ContentType == "" {
			continue
		}
		extra = append(extra, xlsxOverrideType{PartName: "/" + p.Path, ContentType: p.ContentType})
	}
	return extra
}

func rootRelationships() *xlsxRelationships {
	return &xlsxRelationships{Relationship: []xlsxRelationship{
		{ID: "rId1", Type: relNSOfficeDoc, Target: "xl/workbook.xml"},
	}}
}

func encodeWorkbookXML(wb *model.Workbook) *xlsxWorkbook {
	out := &xlsxWorkbook{}
	for i, sheet := range wb.Sheets() {
		state := ""
		switch sheet.Visibility() {
		case model.VisibilityHidden:
			state = "hidden"
		case model.VisibilityVeryHidden:
			state = "veryHidden"
		}
		out.Sheets.Sheet = append(out.Sheets.Sheet, xlsxSheetEntry{
			Name:    string(sheet.Name()),
			SheetID: i + 1,
			State:   state,
			RID:     sheetRID(i),
		})
	}
	if names := wb.DefinedNames(); len(names) > 0 {
		out.DefinedNames = &xlsxDefinedNames{}
		for _, dn := range names {
			out.DefinedNames.DefinedName = append(out.DefinedNames.DefinedName, xlsxDefinedName{
				Name: dn.Name, Value: dn.RefersTo,
			})
		}
	}
	return out
}

func sheetRID(index int) string {
	return "rId" + strconv.Itoa(index+1)
}

func workbookRelationships(sheetCount int, hasSharedStrings, hasTheme bool) *xlsxRelationships {
	rels := &xlsxRelationships{}
	for i := 0; i < sheetCount; i++ {
		rels.Relationship = append(rels.Relationship, xlsxRelationship{
			ID: sheetRID(i), Type: relNSWorksheet, Target: "worksheets/sheet" + strconv.Itoa(i+1) + ".xml",
		})
	}
	next := sheetCount + 1
	rels.Relationship = append(rels.Relationship, xlsxRelationship{
		ID: "rId" + strconv.Itoa(next), Type: relNSStyles, Target: "styles.xml",
	})
	next++
	if hasSharedStrings {
		rels.Relationship = append(rels.Relationship, xlsxRelationship{
			ID: "rId" + strconv.Itoa(next), Type: relNSSharedStr, Target: "sharedStrings.xml",
		})
		next++
	}
	if hasTheme {
		rels.Relationship = append(rels.Relationship, xlsxRelationship{
			ID: "rId" + strconv.Itoa(next), Type: relNSTheme, Target: "theme/theme1.xml",
		})
	}
	return rels
}

func encodeWorksheet(sheet *model.Sheet, registry *style.Registry, strings *stringTable) ([]byte, error) {
	ws := &xlsxWorksheet{}

	if used, ok := sheet.UsedRange(); ok {
		ws.Dimension = &xlsxDimension{Ref: used.A1()}
	}

	cols := sheet.Columns()
	if len(cols) > 0 {
		keys := make([]int, 0, len(cols))
		for c := range cols {
			keys = append(keys, int(c))
		}
		sort.Ints(keys)
		ws.Cols = &xlsxCols{}
		for _, k := range keys {
			p := cols[addr.Column(k)]
			ws.Cols.Col = append(ws.Cols.Col, xlsxCol{
				Min: k + 1, Max: k + 1, Width: p.Width, Hidden: p.Hidden, OutlineLevel: p.OutlineLevel,
			})
		}
	}

	type colCell struct {
		col int
		c   xlsxC
	}
	rowIndex := map[int][]colCell{}
	// Cells are visited in row-major order so shared-string indices, which
	// are assigned on first use, do not depend on map iteration order.
	sheetCells := sheet.Cells()
	refs := make([]addr.ARef, 0, len(sheetCells))
	for ref := range sheetCells {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Row != refs[j].Row {
			return refs[i].Row < refs[j].Row
		}
		return refs[i].Col < refs[j].Col
	})
	for _, ref := range refs {
		cell := sheetCells[ref]
		styleID := remapStyle(registry, sheet.Registry(), cell.Style)
		c := encodeCell(ref.A1(), int(styleID), cell.Value, strings)
		r := int(ref.Row)
		rowIndex[r] = append(rowIndex[r], colCell{col: int(ref.Col), c: c})
	}
	rowProps := sheet.Rows()
	rowNums := make(map[int]bool, len(rowIndex)+len(rowProps))
	for r := range rowIndex {
		rowNums[r] = true
	}
	for r := range rowProps {
		rowNums[int(r)] = true
	}
	sortedRows := make([]int, 0, len(rowNums))
	for r := range rowNums {
		sortedRows = append(sortedRows, r)
	}
	sort.Ints(sortedRows)

	for _, r := range sortedRows {
		cells := rowIndex[r]
		sort.Slice(cells, func(i, j int) bool { return cells[i].col < cells[j].col })
		out := make([]xlsxC, len(cells))
		for i, cc := range cells {
			out[i] = cc.c
		}
		props := rowProps[addr.Row(r)]
		ws.SheetData.Row = append(ws.SheetData.Row, xlsxRow{
			R: r + 1, Ht: props.Height, CustomHeight: props.CustomHeight,
			Hidden: props.Hidden, OutlineLevel: props.OutlineLevel, C: out,
		})
	}

	if merges := sheet.Merges(); len(merges) > 0 {
		ws.MergeCells = &xlsxMergeCells{Count: len(merges)}
		refs := make([]string, 0, len(merges))
		for _, m := range merges {
			refs = append(refs, m.A1())
		}
		sort.Strings(refs)
		for _, ref := range refs {
			ws.MergeCells.Cell = append(ws.MergeCells.Cell, xlsxMergeCell{Ref: ref})
		}
	}

	data, err := xml.Marshal(ws)
	if err != nil {
		return nil, &WriteError{Reason: "cannot marshal worksheet xml", Err: err}
	}
	return append([]byte(xml.Header), data...), nil
}

// remapStyle resolves a per-sheet style id against the sheet's own
// registry and re-interns it into the workbook-wide registry, since
// sharedRegistry already performed this Merge once; looking the style up
// by value here keeps encodeCell oblivious to the remap.
func remapStyle(shared, own *style.Registry, id style.ID) style.ID {
	if id == 0 {
		return 0
	}
	st, ok := own.Get(id)
	if !ok {
		return 0
	}
	return shared.Add(st)
}

