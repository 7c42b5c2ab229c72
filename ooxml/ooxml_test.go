package ooxml

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/style"
	"github.com/openxl/xl/value"
)

func mustSheetName(t *testing.T, s string) addr.SheetName {
	t.Helper()
	n, err := addr.NewSheetName(s)
	require.NoError(t, err)
	return n
}

func mustARef(t *testing.T, s string) addr.ARef {
	t.Helper()
	r, err := addr.ParseARef(s)
	require.NoError(t, err)
	return r
}

func buildFixtureWorkbook(t *testing.T) *model.Workbook {
	t.Helper()

	name := mustSheetName(t, "Sheet1")
	sheet := model.NewSheet(name)

	bold := style.CellStyle{
		Font:   style.Font{Name: "Calibri", Size: 14, Bold: true, Color: style.RGB(0xFFFF0000)},
		Fill:   style.NewSolidFill(style.RGB(0xFFFFFF00)),
		Border: style.Border{Bottom: style.BorderSide{Style: style.BorderThin}},
		NumFmt: style.NewCustom("0.0\"x\""),
		Align:  style.Align{Horizontal: style.HCenter, Wrap: true},
	}

	sheet = sheet.Put(mustARef(t, "A1"), value.NewText("Quarter"))
	sheet = sheet.Style(addr.NewRange(mustARef(t, "A1"), mustARef(t, "A1")), bold, style.Replace)
	sheet = sheet.Put(mustARef(t, "B1"), value.NewNumberFromInt(42))
	sheet = sheet.Put(mustARef(t, "C1"), value.NewBool(true))
	sheet = sheet.Put(mustARef(t, "D1"), value.NewError(value.Div0))

	cached := value.NewNumberFromInt(3)
	sheet = sheet.Put(mustARef(t, "E1"), value.NewFormula("1+2", &cached))

	sheet = sheet.Put(mustARef(t, "A2"), value.NewText("Quarter"))

	sheet = sheet.WithColumn(addr.Column(0), model.ColumnProps{Width: 18.5})
	sheet = sheet.WithRow(addr.Row(0), model.RowProps{Height: 20, CustomHeight: true})

	merged, err := sheet.Merge(addr.NewRange(mustARef(t, "A3"), mustARef(t, "B3")))
	require.NoError(t, err)
	sheet = merged

	sheet2 := model.NewSheet(mustSheetName(t, "Hidden")).WithVisibility(model.VisibilityHidden)

	wb := model.NewWorkbook().WithDefinedName(model.DefinedName{Name: "TaxRate", RefersTo: "Sheet1!$B$1"})
	wb, err = wb.Append(sheet)
	require.NoError(t, err)
	wb, err = wb.Append(sheet2)
	require.NoError(t, err)

	return wb
}

func TestWriteReadRoundTrip(t *testing.T) {
	wb := buildFixtureWorkbook(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, wb))

	data := buf.Bytes()
	got, err := Read(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	require.Len(t, got.Sheets(), 2)
	s1, ok := got.Sheet(mustSheetName(t, "Sheet1"))
	require.True(t, ok)

	c := s1.Get(mustARef(t, "A1"))
	assert.Equal(t, value.Text, c.Value.Kind())
	assert.Equal(t, "Quarter", c.Value.Text())
	require.NotZero(t, c.Style)
	st, ok := s1.Registry().Get(c.Style)
	require.True(t, ok)
	assert.True(t, st.Font.Bold)
	assert.Equal(t, "Calibri", st.Font.Name)
	assert.Equal(t, 14.0, st.Font.Size)
	assert.Equal(t, style.RGB(0xFFFF0000), st.Font.Color)
	assert.Equal(t, style.FillSolidKind, st.Fill.Kind)
	assert.Equal(t, style.BorderThin, st.Border.Bottom.Style)
	assert.Equal(t, style.Custom, st.NumFmt.Tag)
	assert.Equal(t, `0.0"x"`, st.NumFmt.Code)
	assert.Equal(t, style.HCenter, st.Align.Horizontal)
	assert.True(t, st.Align.Wrap)

	b := s1.Get(mustARef(t, "B1"))
	assert.Equal(t, value.Number, b.Value.Kind())
	assert.Equal(t, "42", b.Value.Number().String())

	boolCell := s1.Get(mustARef(t, "C1"))
	assert.Equal(t, value.Bool, boolCell.Value.Kind())
	assert.True(t, boolCell.Value.Bool())

	errCell := s1.Get(mustARef(t, "D1"))
	assert.Equal(t, value.Error, errCell.Value.Kind())
	assert.Equal(t, value.Div0, errCell.Value.ErrorKind())

	formulaCell := s1.Get(mustARef(t, "E1"))
	assert.Equal(t, value.Formula, formulaCell.Value.Kind())
	assert.Equal(t, "1+2", formulaCell.Value.FormulaText())
	require.NotNil(t, formulaCell.Value.CachedValue())
	assert.Equal(t, "3", formulaCell.Value.CachedValue().Number().String())

	a2 := s1.Get(mustARef(t, "A2"))
	assert.Equal(t, "Quarter", a2.Value.Text())

	colProps := s1.Column(addr.Column(0))
	assert.Equal(t, 18.5, colProps.Width)

	rowProps := s1.Row(addr.Row(0))
	assert.Equal(t, 20.0, rowProps.Height)
	assert.True(t, rowProps.CustomHeight)

	merges := s1.Merges()
	require.Len(t, merges, 1)
	assert.Equal(t, "A3:B3", merges[0].A1())

	s2, ok := got.Sheet(mustSheetName(t, "Hidden"))
	require.True(t, ok)
	assert.Equal(t, model.VisibilityHidden, s2.Visibility())

	names := got.DefinedNames()
	require.Len(t, names, 1)
	assert.Equal(t, "TaxRate", names[0].Name)
	assert.Equal(t, "Sheet1!$B$1", names[0].RefersTo)
}

func TestWriteIsDeterministic(t *testing.T) {
	wb := buildFixtureWorkbook(t)

	var a, b bytes.Buffer
	require.NoError(t, Write(&a, wb))
	require.NoError(t, Write(&b, wb))

	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestSharedStringsInternedOnce(t *testing.T) {
	name := mustSheetName(t, "Sheet1")
	sheet := model.NewSheet(name)
	sheet = sheet.Put(mustARef(t, "A1"), value.NewText("repeat"))
	sheet = sheet.Put(mustARef(t, "A2"), value.NewText("repeat"))
	sheet = sheet.Put(mustARef(t, "A3"), value.NewText("other"))

	wb, err := model.NewWorkbook().Append(sheet)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, wb))

	data := buf.Bytes()
	got, err := Read(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	s1, ok := got.Sheet(name)
	require.True(t, ok)
	assert.Equal(t, "repeat", s1.Get(mustARef(t, "A1")).Value.Text())
	assert.Equal(t, "repeat", s1.Get(mustARef(t, "A2")).Value.Text())
	assert.Equal(t, "other", s1.Get(mustARef(t, "A3")).Value.Text())
}

func TestEmptyWorkbookRoundTrip(t *testing.T) {
	wb, err := model.NewWorkbook().Append(model.NewSheet(mustSheetName(t, "Sheet1")))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, wb))

	data := buf.Bytes()
	got, err := Read(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	require.Len(t, got.Sheets(), 1)
	s1, ok := got.Sheet(mustSheetName(t, "Sheet1"))
	require.True(t, ok)
	assert.Empty(t, s1.Cells())
}

func TestDecodeZipEntryRejectsUndefinedEntity(t *testing.T) {
	bad := `<?xml version="1.0"?><!DOCTYPE worksheet [<!ENTITY xxe "boom">]><worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData><row r="1"><c r="A1"><v>&xxe;</v></c></row></sheetData></worksheet>`

	var zbuf bytes.Buffer
	zw := zip.NewWriter(&zbuf)
	w, err := zw.Create("xl/worksheets/sheet1.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(bad))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(zbuf.Bytes()), int64(zbuf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)

	var target xlsxWorksheet
	err = decodeZipEntry(zr.File[0], &target)
	assert.Error(t, err)
}

func TestReadRejectsNonZipNonCompoundInput(t *testing.T) {
	garbage := bytes.Repeat([]byte("not a package"), 8)
	_, err := Read(bytes.NewReader(garbage), int64(len(garbage)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid zip archive")
}
