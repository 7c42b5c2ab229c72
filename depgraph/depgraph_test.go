package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/value"
)

func mustRef(t *testing.T, s string) addr.ARef {
	t.Helper()
	r, err := addr.ParseARef(s)
	require.NoError(t, err)
	return r
}

func TestTopoSortOrdersPrecedentsFirst(t *testing.T) {
	name, err := addr.NewSheetName("Sheet1")
	require.NoError(t, err)
	sheet := model.NewSheet(name)
	sheet = sheet.Put(mustRef(t, "A1"), value.NewNumberFromInt(1))
	sheet = sheet.Put(mustRef(t, "A2"), value.NewFormula("A1+1", nil))
	sheet = sheet.Put(mustRef(t, "A3"), value.NewFormula("A2+1", nil))

	g, err := FromSheet(name, sheet, nil)
	require.NoError(t, err)

	order, err := g.TopoSort()
	require.NoError(t, err)

	pos := map[NodeID]int{}
	for i, n := range order {
		pos[n] = i
	}
	a1 := NodeID{Sheet: name, Ref: mustRef(t, "A1")}
	a2 := NodeID{Sheet: name, Ref: mustRef(t, "A2")}
	a3 := NodeID{Sheet: name, Ref: mustRef(t, "A3")}
	assert.Less(t, pos[a1], pos[a2])
	assert.Less(t, pos[a2], pos[a3])
}

func TestDetectCyclesFindsMutualReference(t *testing.T) {
	name, err := addr.NewSheetName("Sheet1")
	require.NoError(t, err)
	sheet := model.NewSheet(name)
	sheet = sheet.Put(mustRef(t, "A4"), value.NewFormula("A5", nil))
	sheet = sheet.Put(mustRef(t, "A5"), value.NewFormula("A4", nil))

	g, err := FromSheet(name, sheet, nil)
	require.NoError(t, err)

	cycles := g.DetectCycles()
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0], 2)

	_, err = g.TopoSort()
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestDetectCyclesFindsSelfReference(t *testing.T) {
	name, err := addr.NewSheetName("Sheet1")
	require.NoError(t, err)
	sheet := model.NewSheet(name)
	sheet = sheet.Put(mustRef(t, "A1"), value.NewFormula("A1+1", nil))

	g, err := FromSheet(name, sheet, nil)
	require.NoError(t, err)

	cycles := g.DetectCycles()
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0], 1)
}

func TestTransitiveDependencies(t *testing.T) {
	name, err := addr.NewSheetName("Sheet1")
	require.NoError(t, err)
	sheet := model.NewSheet(name)
	sheet = sheet.Put(mustRef(t, "A1"), value.NewNumberFromInt(1))
	sheet = sheet.Put(mustRef(t, "A2"), value.NewFormula("A1+1", nil))
	sheet = sheet.Put(mustRef(t, "A3"), value.NewFormula("A2+1", nil))

	g, err := FromSheet(name, sheet, nil)
	require.NoError(t, err)

	a3 := NodeID{Sheet: name, Ref: mustRef(t, "A3")}
	a2 := NodeID{Sheet: name, Ref: mustRef(t, "A2")}
	a1 := NodeID{Sheet: name, Ref: mustRef(t, "A1")}
	deps := g.TransitiveDependencies(a3)
	assert.Contains(t, deps, a2)
	assert.Contains(t, deps, a1)
}

func TestRangeReferenceClippedToUsedRangeHint(t *testing.T) {
	name, err := addr.NewSheetName("Sheet1")
	require.NoError(t, err)
	sheet := model.NewSheet(name)
	sheet = sheet.Put(mustRef(t, "A1"), value.NewNumberFromInt(1))
	sheet = sheet.Put(mustRef(t, "A2"), value.NewNumberFromInt(2))
	sheet = sheet.Put(mustRef(t, "B1"), value.NewFormula("SUM(A1:A1000000)", nil))

	g, err := FromSheet(name, sheet, func(addr.SheetName) (addr.CellRange, bool) {
		return sheet.UsedRange()
	})
	require.NoError(t, err)

	b1 := NodeID{Sheet: name, Ref: mustRef(t, "B1")}
	prec := g.Precedents(b1)
	assert.LessOrEqual(t, len(prec), 3, "range must be clipped to the sheet's used range, not the literal 1,000,000 rows")
}
