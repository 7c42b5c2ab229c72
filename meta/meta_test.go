package meta

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/ooxml"
	"github.com/openxl/xl/value"
)

func buildTwoSheetPackage(t *testing.T) []byte {
	t.Helper()
	name1, err := addr.NewSheetName("Sheet1")
	require.NoError(t, err)
	name2, err := addr.NewSheetName("Hidden")
	require.NoError(t, err)

	ref, err := addr.ParseARef("A1")
	require.NoError(t, err)

	sheet1 := model.NewSheet(name1).Put(ref, value.NewText("hello"))
	sheet2 := model.NewSheet(name2).WithVisibility(model.VisibilityHidden)

	wb, err := model.NewWorkbook().Append(sheet1)
	require.NoError(t, err)
	wb, err = wb.Append(sheet2)
	require.NoError(t, err)
	wb = wb.WithDefinedName(model.DefinedName{Name: "TotalRange", RefersTo: "Sheet1!$A$1"})

	var buf bytes.Buffer
	require.NoError(t, ooxml.Write(&buf, wb))
	return buf.Bytes()
}

func TestReadResolvesSheetsAndVisibility(t *testing.T) {
	pkg := buildTwoSheetPackage(t)
	wb, err := Read(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)

	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "Sheet1", string(wb.Sheets[0].Name))
	assert.False(t, wb.Sheets[0].Hidden)
	assert.Equal(t, "Hidden", string(wb.Sheets[1].Name))
	assert.True(t, wb.Sheets[1].Hidden)
}

func TestReadExtractsDimension(t *testing.T) {
	pkg := buildTwoSheetPackage(t)
	wb, err := Read(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)

	require.True(t, wb.Sheets[0].HasDimension)
	assert.Equal(t, "A1:A1", wb.Sheets[0].Dimension.A1())
}

func TestReadExposesDefinedNames(t *testing.T) {
	pkg := buildTwoSheetPackage(t)
	wb, err := Read(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)

	require.Len(t, wb.DefinedNames, 1)
	assert.Equal(t, "TotalRange", wb.DefinedNames[0].Name)
}
