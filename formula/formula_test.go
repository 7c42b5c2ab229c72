package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openxl/xl/value"
)

func TestParsePrintRoundTrip(t *testing.T) {
	cases := []string{
		"1+2*3",
		"(1+2)*3",
		"A1+B2",
		"SUM(A1:A10)",
		"IF(A1>0,\"pos\",\"non-pos\")",
		"Sheet1!A1+'My Sheet'!B2",
		"-A1^2",
		"A1^2^3",
		"A1&B1&\"x\"",
		"50%",
		"AND(A1>0,B1>0)",
		"$A$1:$B$2",
	}
	for _, src := range cases {
		e, err := Parse(src)
		require.NoError(t, err, src)
		printed := Print(e)
		e2, err := Parse(printed)
		require.NoError(t, err, printed)
		assert.Equal(t, Print(e2), printed, "re-parsing the printed form must be stable: %s", src)
	}
}

func TestParseScientificNotation(t *testing.T) {
	e, err := Parse("=1.5E10 + 3.14E-5")
	require.NoError(t, err)
	bin, ok := e.(Binary)
	require.True(t, ok)
	assert.Equal(t, OpAdd, bin.Op)
	left, ok := bin.Left.(Literal)
	require.True(t, ok)
	assert.Equal(t, "15000000000", left.Value.Number().String())
	right, ok := bin.Right.(Literal)
	require.True(t, ok)
	assert.Equal(t, "0.0000314", right.Value.Number().String())
}

func TestUnknownFunctionSuggestsNearestName(t *testing.T) {
	_, err := Parse("SUN(A1:A10)")
	require.Error(t, err)
	pe, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, KindUnknownFunction, pe.Kind)
	assert.Equal(t, "SUM", pe.Suggestion)
}

func TestUnbalancedParenError(t *testing.T) {
	_, err := Parse("SUM(A1:A10")
	require.Error(t, err)
	pe, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, KindUnbalancedParen, pe.Kind)
}

func TestShiftPreservesAbsoluteAxes(t *testing.T) {
	e, err := Parse("$A$1+B2")
	require.NoError(t, err)
	shifted := Shift(e, 2, 3)
	assert.Equal(t, "$A$1+D5", Print(shifted))
}

func TestShiftComposition(t *testing.T) {
	e, err := Parse("SUM(B2:C3)")
	require.NoError(t, err)
	once := Shift(Shift(e, 2, 1), 1, 4)
	combined := Shift(e, 3, 5)
	assert.Equal(t, Print(combined), Print(once))
}

func TestShiftOutOfRangeProducesRefError(t *testing.T) {
	e, err := Parse("A1")
	require.NoError(t, err)
	shifted := Shift(e, -5, 0)
	lit, ok := shifted.(Literal)
	require.True(t, ok)
	assert.Equal(t, value.Error, lit.Value.Kind())
	assert.Equal(t, value.Ref, lit.Value.ErrorKind())
}

func TestShiftQualifiedRefPreservesSheet(t *testing.T) {
	e, err := Parse("Sheet1!A1")
	require.NoError(t, err)
	shifted := Shift(e, 1, 1)
	q, ok := shifted.(QualifiedRef)
	require.True(t, ok)
	assert.Equal(t, "Sheet1", q.Sheet)
	assert.Equal(t, "B2", q.At.A1())
}
