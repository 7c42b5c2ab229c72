package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/style"
	"github.com/openxl/xl/value"
)

func mustRef(s string) addr.ARef {
	r, err := addr.ParseARef(s)
	if err != nil {
		panic(err)
	}
	return r
}

func mustRange(s string) addr.CellRange {
	r, err := addr.ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

func mustName(s string) addr.SheetName {
	n, err := addr.NewSheetName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func TestSheetPutAndImmutability(t *testing.T) {
	s1 := NewSheet(mustName("Sheet1"))
	s2 := s1.Put(mustRef("A1"), value.NewText("hi"))

	assert.True(t, s1.Get(mustRef("A1")).Value.IsEmpty())
	assert.Equal(t, "hi", s2.Get(mustRef("A1")).Value.Text())
}

func TestSheetPutEmptyRemoves(t *testing.T) {
	s1 := NewSheet(mustName("Sheet1")).Put(mustRef("A1"), value.NewText("x"))
	s2 := s1.Put(mustRef("A1"), value.NewEmpty())
	_, ok := s2.Cells()[mustRef("A1")]
	assert.False(t, ok)
}

func TestSheetStyleReplaceAndMerge(t *testing.T) {
	s := NewSheet(mustName("Sheet1")).Put(mustRef("A1"), value.NewNumberFromInt(1))
	bold := style.CellStyle{Font: style.Font{Bold: true}}
	s2 := s.Style(mustRange("A1:A1"), bold)
	c := s2.Get(mustRef("A1"))
	got, _ := s2.Registry().Get(c.Style)
	assert.True(t, got.Font.Bold)

	wrap := style.CellStyle{Align: style.Align{Wrap: true}}
	s3 := s2.Style(mustRange("A1:A1"), wrap, style.Merge)
	c3 := s3.Get(mustRef("A1"))
	got3, _ := s3.Registry().Get(c3.Style)
	assert.True(t, got3.Font.Bold, "merge should preserve existing bold")
	assert.True(t, got3.Align.Wrap)
}

func TestSheetMergeOverlapRejected(t *testing.T) {
	s := NewSheet(mustName("Sheet1"))
	s2, err := s.Merge(mustRange("A1:B2"))
	require.NoError(t, err)
	_, err = s2.Merge(mustRange("B2:C3"))
	assert.Error(t, err)
}

func TestSheetUnmergeIsNoOpForUnknown(t *testing.T) {
	s := NewSheet(mustName("Sheet1"))
	s2 := s.Unmerge(mustRange("A1:B2"))
	assert.Equal(t, s.Merges(), s2.Merges())
}

func TestWorkbookUniqueNames(t *testing.T) {
	wb := NewWorkbook()
	wb, err := wb.Append(NewSheet(mustName("Sheet1")))
	require.NoError(t, err)
	_, err = wb.Append(NewSheet(mustName("sheet1")))
	assert.Error(t, err, "names must be unique case-insensitively")
}

func TestWorkbookRenameChecksUniqueness(t *testing.T) {
	wb := NewWorkbook()
	wb, _ = wb.Append(NewSheet(mustName("A")))
	wb, _ = wb.Append(NewSheet(mustName("B")))
	_, err := wb.Rename(mustName("A"), mustName("B"))
	assert.Error(t, err)

	wb2, err := wb.Rename(mustName("A"), mustName("C"))
	require.NoError(t, err)
	_, ok := wb2.Sheet(mustName("C"))
	assert.True(t, ok)
}

func TestWorkbookReorderValidatesPermutation(t *testing.T) {
	wb := NewWorkbook()
	wb, _ = wb.Append(NewSheet(mustName("A")))
	wb, _ = wb.Append(NewSheet(mustName("B")))

	_, err := wb.Reorder([]addr.SheetName{mustName("A")})
	assert.Error(t, err)

	wb2, err := wb.Reorder([]addr.SheetName{mustName("B"), mustName("A")})
	require.NoError(t, err)
	assert.Equal(t, addr.SheetName("B"), wb2.Sheets()[0].Name())
}

func TestWorkbookUpdate(t *testing.T) {
	wb := NewWorkbook()
	wb, _ = wb.Append(NewSheet(mustName("A")))
	wb2, err := wb.Update(mustName("A"), func(s *Sheet) *Sheet {
		return s.Put(mustRef("A1"), value.NewNumberFromInt(7))
	})
	require.NoError(t, err)
	sheet, _ := wb2.Sheet(mustName("A"))
	assert.Equal(t, int64(7), mustInt(sheet.Get(mustRef("A1")).Value))
}

func mustInt(v value.CellValue) int64 {
	n := v.Number()
	i := n.IntPart()
	return i
}

func TestUsedRange(t *testing.T) {
	s := NewSheet(mustName("A")).Put(mustRef("B2"), value.NewText("x")).Put(mustRef("D5"), value.NewText("y"))
	rng, ok := s.UsedRange()
	require.True(t, ok)
	assert.Equal(t, "B2:D5", rng.A1())
}

func TestCheckInvariantsDetectsUnknownStyle(t *testing.T) {
	s := NewSheet(mustName("A"))
	s2 := s.clone()
	s2.cells = cloneCells(s.cells)
	s2.cells[mustRef("A1")] = Cell{Style: 99}
	assert.Error(t, s2.CheckInvariants())
}
