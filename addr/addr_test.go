package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLettersRoundTrip(t *testing.T) {
	cases := []struct {
		col     Column
		letters string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{701, "ZZ"},
		{702, "AAA"},
		{MaxColumn, "XFD"},
	}
	for _, c := range cases {
		assert.Equal(t, c.letters, c.col.Letters())
		got, ok := ColumnFromLetters(c.letters)
		require.True(t, ok)
		assert.Equal(t, c.col, got)
	}
}

func TestColumnFromLettersRejectsOverlong(t *testing.T) {
	_, ok := ColumnFromLetters("AAAA")
	assert.False(t, ok)
	_, ok = ColumnFromLetters("")
	assert.False(t, ok)
	_, ok = ColumnFromLetters("1A")
	assert.False(t, ok)
}

func TestARefRoundTrip(t *testing.T) {
	for _, s := range []string{"A1", "$A1", "A$1", "$A$1", "XFD1048576", "z99"} {
		r, err := ParseARef(s)
		require.NoError(t, err, s)
		assert.Equal(t, upper(s), r.A1())
	}
}

func TestARefShiftSkipsAbsoluteAxes(t *testing.T) {
	r, err := ParseARef("$B2")
	require.NoError(t, err)
	shifted := r.Shift(3, 5)
	assert.Equal(t, Column(1), shifted.Col, "column is absolute, must not move")
	assert.Equal(t, Row(6), shifted.Row, "row is relative, must move by 5")
}

func TestARefShiftClampsAtBounds(t *testing.T) {
	r := NewARef(0, 0)
	shifted := r.Shift(-5, -5)
	assert.Equal(t, Column(0), shifted.Col)
	assert.Equal(t, Row(0), shifted.Row)
}

func TestShiftComposition(t *testing.T) {
	r := NewARef(10, 10)
	composed := r.Shift(1, 2).Shift(3, 4)
	direct := r.Shift(4, 6)
	assert.Equal(t, direct, composed)
}

func TestParseARefRejectsInvalid(t *testing.T) {
	for _, s := range []string{"", "A", "1", "AAAA1", "A1048577", "A1x"} {
		_, err := ParseARef(s)
		assert.Error(t, err, s)
	}
}

func TestRangeNormalizes(t *testing.T) {
	a, _ := ParseARef("C3")
	b, _ := ParseARef("A1")
	r := NewRange(a, b)
	assert.Equal(t, "A1:C3", r.A1())
	assert.Equal(t, 3, r.Width())
	assert.Equal(t, 3, r.Height())
	assert.Equal(t, 9, r.CellCount())
}

func TestRangeRoundTrip(t *testing.T) {
	r, err := ParseRange("B2:D5")
	require.NoError(t, err)
	assert.Equal(t, "B2:D5", r.A1())
	r2, err := ParseRange(r.A1())
	require.NoError(t, err)
	assert.Equal(t, r, r2)
}

func TestRangeContainsAndIntersects(t *testing.T) {
	r, _ := ParseRange("A1:C3")
	cell, _ := ParseARef("B2")
	assert.True(t, r.Contains(cell))
	outside, _ := ParseARef("D4")
	assert.False(t, r.Contains(outside))

	other, _ := ParseRange("C3:E5")
	assert.True(t, r.Intersects(other))
	inter, ok := r.Intersection(other)
	require.True(t, ok)
	assert.Equal(t, "C3:C3", inter.A1())

	disjoint, _ := ParseRange("E5:F6")
	assert.False(t, r.Intersects(disjoint))
}

func TestRangeCellsRowMajor(t *testing.T) {
	r, _ := ParseRange("A1:B2")
	cells := r.Cells()
	want := []string{"A1", "B1", "A2", "B2"}
	for i, c := range cells {
		assert.Equal(t, want[i], c.A1())
	}
}

func TestSheetNameValidation(t *testing.T) {
	_, err := NewSheetName("")
	assert.Error(t, err)
	_, err = NewSheetName("History")
	assert.Error(t, err)
	_, err = NewSheetName("HISTORY")
	assert.Error(t, err)
	_, err = NewSheetName("a/b")
	assert.Error(t, err)
	long := ""
	for i := 0; i < 32; i++ {
		long += "a"
	}
	_, err = NewSheetName(long)
	assert.Error(t, err)

	ok, err := NewSheetName("Sheet 1")
	require.NoError(t, err)
	assert.Equal(t, SheetName("Sheet 1"), ok)
}

func TestParseRefQualified(t *testing.T) {
	ref, err := ParseRef("Sheet1!A1")
	require.NoError(t, err)
	assert.Equal(t, KindQualifiedCell, ref.Kind)
	assert.Equal(t, "Sheet1", ref.Sheet)
	assert.Equal(t, "Sheet1!A1", ref.A1())

	ref2, err := ParseRef("'My Sheet'!A1:B2")
	require.NoError(t, err)
	assert.Equal(t, KindQualifiedRange, ref2.Kind)
	assert.Equal(t, "My Sheet", ref2.Sheet)
	assert.Equal(t, "'My Sheet'!A1:B2", ref2.A1())
}

func TestParseRefEscapedQuote(t *testing.T) {
	ref, err := ParseRef("'It''s Mine'!A1")
	require.NoError(t, err)
	assert.Equal(t, "It's Mine", ref.Sheet)
	assert.Equal(t, "'It''s Mine'!A1", ref.A1())
}

func TestParseRefUnqualified(t *testing.T) {
	ref, err := ParseRef("A1")
	require.NoError(t, err)
	assert.Equal(t, KindCell, ref.Kind)

	ref2, err := ParseRef("A1:B2")
	require.NoError(t, err)
	assert.Equal(t, KindRange, ref2.Kind)
}
