package transform

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/ooxml"
	"github.com/openxl/xl/value"
)

func mustARef(t *testing.T, s string) addr.ARef {
	t.Helper()
	ref, err := addr.ParseARef(s)
	require.NoError(t, err)
	return ref
}

// buildPackage writes a minimal two-row workbook and returns the full
// .xlsx package bytes, the raw worksheet XML for "Sheet1", and its
// package-wide shared-string table (in on-disk index order, which
// encodeWorksheet assigns by visiting cells in row-major order).
func buildPackage(t *testing.T) ([]byte, []byte, []value.CellValue) {
	t.Helper()
	name, err := addr.NewSheetName("Sheet1")
	require.NoError(t, err)
	sheet := model.NewSheet(name).
		Put(mustARef(t, "A1"), value.NewText("hello")).
		Put(mustARef(t, "B1"), value.NewNumberFromInt(1)).
		Put(mustARef(t, "A2"), value.NewText("row two"))

	wb, err := model.NewWorkbook().Append(sheet)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ooxml.Write(&buf, wb))
	pkg := buf.Bytes()

	idx, err := ooxml.OpenIndex(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	ref, ok := idx.SheetByName(name)
	require.True(t, ok)
	rc, err := idx.Open(ref.Target)
	require.NoError(t, err)
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()

	return pkg, raw, idx.Shared
}

func TestTransformWorksheetPassthroughUnpatchedRows(t *testing.T) {
	_, raw, shared := buildPackage(t)

	ps := NewPatchSet("xl/worksheets/sheet1.xml")
	out, err := TransformWorksheet(raw, ps, shared, ooxml.NewSeededStringTable(shared))
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestTransformWorksheetPatchesExistingCell(t *testing.T) {
	_, raw, shared := buildPackage(t)

	ps := NewPatchSet("xl/worksheets/sheet1.xml")
	ps.AddCell(CellPatch{Ref: mustARef(t, "A1"), SetValue: true, Value: value.NewText("world")})

	out, err := TransformWorksheet(raw, ps, shared, ooxml.NewSeededStringTable(shared))
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(out), `r="A1"`))
	// A2's original row is untouched and still present.
	assert.True(t, strings.Contains(string(out), `r="A2"`))
}

func TestTransformWorksheetSynthesizesMissingRow(t *testing.T) {
	_, raw, shared := buildPackage(t)

	ps := NewPatchSet("xl/worksheets/sheet1.xml")
	ps.AddCell(CellPatch{Ref: mustARef(t, "A5"), SetValue: true, Value: value.NewText("new row")})

	out, err := TransformWorksheet(raw, ps, shared, ooxml.NewSeededStringTable(shared))
	require.NoError(t, err)

	idxRow2 := strings.Index(string(out), `r="2"`)
	idxRow5 := strings.Index(string(out), `r="5"`)
	require.GreaterOrEqual(t, idxRow2, 0)
	require.GreaterOrEqual(t, idxRow5, 0)
	assert.Less(t, idxRow2, idxRow5, "synthesized row 5 must come after existing row 2")
}

func TestTransformWorksheetRecomputesDimension(t *testing.T) {
	_, raw, shared := buildPackage(t)

	ps := NewPatchSet("xl/worksheets/sheet1.xml")
	ps.AddCell(CellPatch{Ref: mustARef(t, "D10"), SetValue: true, Value: value.NewNumberFromInt(42)})

	out, err := TransformWorksheet(raw, ps, shared, ooxml.NewSeededStringTable(shared))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<dimension ref="A1:D10"/>`)
}

func TestTransformWorksheetReplacesMergeCells(t *testing.T) {
	_, raw, shared := buildPackage(t)

	rng, err := addr.ParseRange("A1:B2")
	require.NoError(t, err)
	ps := NewPatchSet("xl/worksheets/sheet1.xml")
	ps.Merges = MergePatch{Set: true, Ranges: []addr.CellRange{rng}}

	out, err := TransformWorksheet(raw, ps, shared, ooxml.NewSeededStringTable(shared))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<mergeCells count="1"><mergeCell ref="A1:B2"/></mergeCells>`)
}

func TestApplyFileRoundTrips(t *testing.T) {
	pkg, _, _ := buildPackage(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "src.xlsx")
	dst := filepath.Join(dir, "dst.xlsx")
	require.NoError(t, os.WriteFile(src, pkg, 0o644))

	name, err := addr.NewSheetName("Sheet1")
	require.NoError(t, err)

	err = ApplyFile(src, dst, FilePatch{
		Cells: []CellEdit{
			{Sheet: name, Ref: mustARef(t, "A1"), SetValue: true, Value: value.NewText("patched")},
		},
	})
	require.NoError(t, err)

	out, err := os.ReadFile(dst)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	var sheetXML []byte
	for _, f := range zr.File {
		if f.Name == "xl/worksheets/sheet1.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			sheetXML, err = io.ReadAll(rc)
			require.NoError(t, err)
			rc.Close()
		}
	}
	require.NotNil(t, sheetXML)
	assert.Contains(t, string(sheetXML), `r="A1"`)
}

func TestApplyFileUnknownSheetErrors(t *testing.T) {
	pkg, _, _ := buildPackage(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "src.xlsx")
	dst := filepath.Join(dir, "dst.xlsx")
	require.NoError(t, os.WriteFile(src, pkg, 0o644))

	bogus, err := addr.NewSheetName("DoesNotExist")
	require.NoError(t, err)

	err = ApplyFile(src, dst, FilePatch{
		Cells: []CellEdit{{Sheet: bogus, Ref: mustARef(t, "A1"), SetValue: true, Value: value.NewText("x")}},
	})
	assert.Error(t, err)
}
