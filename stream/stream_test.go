package stream

import (
	"bytes"
	"strconv"
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
	r, err := addr.ParseARef(s)
	require.NoError(t, err)
	return r
}

func mustSheetName(t *testing.T, s string) addr.SheetName {
	t.Helper()
	n, err := addr.NewSheetName(s)
	require.NoError(t, err)
	return n
}

func buildStreamedWorkbook(t *testing.T, rows int, cols int) *bytes.Buffer {
	t.Helper()

	rw := NewRowWriter()
	for r := 1; r <= rows; r++ {
		cells := make([]ooxml.CellWrite, 0, cols)
		for c := 0; c < cols; c++ {
			ref := addr.ARef{Col: addr.Column(c), Row: addr.Row(r - 1)}
			cells = append(cells, ooxml.CellWrite{
				Ref:   ref.A1(),
				Value: value.NewNumberFromInt(int64(r*100 + c)),
			})
		}
		require.NoError(t, rw.WriteRow(r, cells))
	}
	wsBody, err := rw.Flush()
	require.NoError(t, err)
	assert.Contains(t, string(wsBody), "<sheetData>")
	assert.Contains(t, string(wsBody), "<dimension")

	name := mustSheetName(t, "Sheet1")
	sheet := model.NewSheet(name)
	for r := 1; r <= rows; r++ {
		for c := 0; c < cols; c++ {
			ref := addr.ARef{Col: addr.Column(c), Row: addr.Row(r - 1)}
			sheet = sheet.Put(ref, value.NewNumberFromInt(int64(r*100+c)))
		}
	}
	wb, err := model.NewWorkbook().Append(sheet)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ooxml.Write(&buf, wb))
	return &buf
}

func TestRowReaderUnfiltered(t *testing.T) {
	buf := buildStreamedWorkbook(t, 5, 3)
	data := buf.Bytes()

	rr, err := OpenSheet(bytes.NewReader(data), int64(len(data)), mustSheetName(t, "Sheet1"))
	require.NoError(t, err)
	defer rr.Close()

	var seen []int
	for rr.Next() {
		row := rr.Row()
		seen = append(seen, row.RowIndex)
		for c, v := range row.Cells {
			assert.Equal(t, int64(row.RowIndex*100+c), v.Number().IntPart())
		}
	}
	require.NoError(t, rr.Err())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestRowReaderRangeBounded(t *testing.T) {
	buf := buildStreamedWorkbook(t, 5, 4)
	data := buf.Bytes()

	rr, err := OpenSheet(bytes.NewReader(data), int64(len(data)), mustSheetName(t, "Sheet1"))
	require.NoError(t, err)
	defer rr.Close()

	rng := addr.NewRange(mustARef(t, "B2"), mustARef(t, "C4"))
	rr = rr.WithRange(rng)

	var rows []int
	for rr.Next() {
		row := rr.Row()
		rows = append(rows, row.RowIndex)
		for c := range row.Cells {
			assert.True(t, c >= int(rng.Start.Col) && c <= int(rng.End.Col))
		}
	}
	require.NoError(t, rr.Err())
	assert.Equal(t, []int{2, 3, 4}, rows)
}

func TestRowReaderBySheetIndex(t *testing.T) {
	buf := buildStreamedWorkbook(t, 2, 2)
	data := buf.Bytes()

	rr, err := OpenSheetIndex(bytes.NewReader(data), int64(len(data)), 0)
	require.NoError(t, err)
	defer rr.Close()

	count := 0
	for rr.Next() {
		count++
	}
	require.NoError(t, rr.Err())
	assert.Equal(t, 2, count)
}

func TestRowReaderUnknownSheet(t *testing.T) {
	buf := buildStreamedWorkbook(t, 1, 1)
	data := buf.Bytes()

	_, err := OpenSheet(bytes.NewReader(data), int64(len(data)), mustSheetName(t, "NoSuchSheet"))
	assert.Error(t, err)
}

func TestRowWriterHintedDimension(t *testing.T) {
	rw := NewHintedRowWriter("A1:B2")
	require.NoError(t, rw.WriteRow(1, []ooxml.CellWrite{
		{Ref: "A1", Value: value.NewText("x")},
		{Ref: "B1", Value: value.NewNumberFromInt(1)},
	}))
	out, err := rw.Flush()
	require.NoError(t, err)
	assert.Contains(t, string(out), `<dimension ref="A1:B2"/>`)
}

func TestRowWriterSpillsToTempFile(t *testing.T) {
	rw := NewRowWriter()
	longText := string(bytes.Repeat([]byte("a"), 2048))
	for r := 1; r <= 400000; r++ {
		require.NoError(t, rw.WriteRow(r, []ooxml.CellWrite{
			{Ref: "A" + strconv.Itoa(r), Value: value.NewText(longText)},
		}))
	}
	assert.NotNil(t, rw.tmp)
	out, err := rw.Flush()
	require.NoError(t, err)
	assert.Contains(t, string(out), "<sheetData>")
}
