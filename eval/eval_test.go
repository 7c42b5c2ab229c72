package eval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/depgraph"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/value"
)

func newSheet(t *testing.T, name string) (addr.SheetName, *model.Sheet) {
	t.Helper()
	n, err := addr.NewSheetName(name)
	require.NoError(t, err)
	return n, model.NewSheet(n)
}

func mustRef(t *testing.T, s string) addr.ARef {
	t.Helper()
	r, err := addr.ParseARef(s)
	require.NoError(t, err)
	return r
}

func TestEvaluateArithmetic(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	v, err := EvaluateFormula("1+2*3", name, sheet, nil, nil, RealClock{})
	require.Nil(t, err)
	assert.Equal(t, "7", v.Number().String())
}

func TestEvaluateDivByZero(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	_, err := EvaluateFormula("1/0", name, sheet, nil, nil, RealClock{})
	require.NotNil(t, err)
	assert.Equal(t, DivByZero, err.Kind)
}

func TestEvaluateCellResolvesPrecedent(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	sheet = sheet.Put(mustRef(t, "A1"), value.NewNumberFromInt(10))
	sheet = sheet.Put(mustRef(t, "A2"), value.NewFormula("A1*2", nil))

	v, err := EvaluateCell(mustRef(t, "A2"), name, sheet, nil, nil, RealClock{})
	require.Nil(t, err)
	assert.Equal(t, "20", v.Number().String())
}

func TestShortCircuitAndOr(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	sheet = sheet.Put(mustRef(t, "A1"), value.NewNumberFromInt(1))
	sheet = sheet.Put(mustRef(t, "A2"), value.NewFormula("1/0", nil))

	// OR short-circuits once TRUE is found; the second arg (which would
	// divide by zero if evaluated) is never reached.
	v, err := EvaluateFormula("OR(TRUE,A2>0)", name, sheet, nil, nil, RealClock{})
	require.Nil(t, err, "expected OR to short-circuit before evaluating A2")
	assert.True(t, v.Bool())

	v, err = EvaluateFormula("AND(FALSE,A2>0)", name, sheet, nil, nil, RealClock{})
	require.Nil(t, err, "expected AND to short-circuit before evaluating A2")
	assert.False(t, v.Bool())
}

func TestIfEvaluatesOnlyTakenBranch(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	v, err := EvaluateFormula(`IF(TRUE,1,1/0)`, name, sheet, nil, nil, RealClock{})
	require.Nil(t, err)
	assert.Equal(t, "1", v.Number().String())
}

func TestAggregateSumOverRangeSkipsTextAndEmpty(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	sheet = sheet.Put(mustRef(t, "A1"), value.NewNumberFromInt(1))
	sheet = sheet.Put(mustRef(t, "A2"), value.NewText("not a number"))
	sheet = sheet.Put(mustRef(t, "A3"), value.NewNumberFromInt(3))

	v, err := EvaluateFormula("SUM(A1:A3)", name, sheet, nil, nil, RealClock{})
	require.Nil(t, err)
	assert.Equal(t, "4", v.Number().String())
}

func TestComparisonMixedTypes(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	v, err := EvaluateFormula(`1<"a"`, name, sheet, nil, nil, RealClock{})
	require.Nil(t, err)
	assert.True(t, v.Bool())
}

func TestCrossSheetReference(t *testing.T) {
	name1, sheet1 := newSheet(t, "Sheet1")
	name2, sheet2 := newSheet(t, "Sheet2")
	sheet2 = sheet2.Put(mustRef(t, "A1"), value.NewNumberFromInt(5))
	wb := model.NewWorkbook()
	wb, err := wb.Append(sheet1)
	require.NoError(t, err)
	wb, err = wb.Append(sheet2)
	require.NoError(t, err)

	v, everr := EvaluateFormula("Sheet2!A1+1", name1, sheet1, wb, nil, RealClock{})
	require.Nil(t, everr)
	assert.Equal(t, "6", v.Number().String())
}

func TestEvaluateWithDependencyCheckDetectsCycle(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	sheet = sheet.Put(mustRef(t, "A1"), value.NewFormula("A2", nil))
	sheet = sheet.Put(mustRef(t, "A2"), value.NewFormula("A1", nil))

	_, err := EvaluateWithDependencyCheck(name, sheet, nil, nil, RealClock{})
	require.NotNil(t, err)
	assert.Equal(t, CycleDetected, err.Kind)
}

func TestEvaluateWithDependencyCheckOrdersChain(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	sheet = sheet.Put(mustRef(t, "A1"), value.NewNumberFromInt(1))
	sheet = sheet.Put(mustRef(t, "A2"), value.NewFormula("A1+1", nil))
	sheet = sheet.Put(mustRef(t, "A3"), value.NewFormula("A2+1", nil))

	results, err := EvaluateWithDependencyCheck(name, sheet, nil, nil, RealClock{})
	require.Nil(t, err)
	assert.Equal(t, "3", results[nodeAt(name, "A3", t)].Number().String())
}

func TestTodayUsesInjectedClock(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	clock := FixedClock{At: time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)}
	v, err := EvaluateFormula("TODAY()", name, sheet, nil, nil, clock)
	require.Nil(t, err)
	assert.Equal(t, 2026, v.DateTime().Year())
	assert.Equal(t, time.Month(7), v.DateTime().Month())
	assert.Equal(t, 30, v.DateTime().Day())
}

func TestTransposeArrayFormula(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	sheet = sheet.Put(mustRef(t, "A1"), value.NewNumberFromInt(1))
	sheet = sheet.Put(mustRef(t, "B1"), value.NewNumberFromInt(2))

	spill, newSheetVal, err := EvaluateArrayFormula("TRANSPOSE(A1:B1)", mustRef(t, "D1"), name, sheet, nil, nil, RealClock{})
	require.Nil(t, err)
	assert.Equal(t, "D1:D2", spill.A1())
	assert.Equal(t, "1", newSheetVal.Get(mustRef(t, "D1")).Value.Number().String())
	assert.Equal(t, "2", newSheetVal.Get(mustRef(t, "D2")).Value.Number().String())
}

func TestTransposeRejectsSpillOverlap(t *testing.T) {
	name, sheet := newSheet(t, "Sheet1")
	sheet = sheet.Put(mustRef(t, "A1"), value.NewNumberFromInt(1))
	sheet = sheet.Put(mustRef(t, "B1"), value.NewNumberFromInt(2))
	sheet = sheet.Put(mustRef(t, "D2"), value.NewNumberFromInt(99))

	_, _, err := EvaluateArrayFormula("TRANSPOSE(A1:B1)", mustRef(t, "D1"), name, sheet, nil, nil, RealClock{})
	require.NotNil(t, err)
	assert.Equal(t, SpillOverlap, err.Kind)
}

func nodeAt(sheet addr.SheetName, ref string, t *testing.T) depgraph.NodeID {
	t.Helper()
	return depgraph.NodeID{Sheet: sheet, Ref: mustRef(t, ref)}
}
