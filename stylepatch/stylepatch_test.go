package stylepatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openxl/xl/model"
	"github.com/openxl/xl/ooxml"
	"github.com/openxl/xl/style"
)

func themeColors() []uint32 {
	return model.DefaultTheme().Colors
}

func TestApplyNoStylesPartReplace(t *testing.T) {
	patches := []Patch{
		{ExistingCellXf: -1, Style: style.CellStyle{Font: style.Font{Bold: true}}, Mode: style.Replace},
	}
	res, err := Apply(nil, themeColors(), patches)
	require.NoError(t, err)
	require.False(t, res.Unchanged)
	require.Len(t, res.CellXfIDs, 1)
	assert.NotEmpty(t, res.StylesXML)

	reg, ids, err := ooxml.DecodeStyleSheetBytes(res.StylesXML, themeColors())
	require.NoError(t, err)
	idx := res.CellXfIDs[0]
	require.Less(t, idx, len(ids))
	st, ok := reg.Get(ids[idx])
	require.True(t, ok)
	assert.True(t, st.Font.Bold)
}

func TestApplyMergePreservesUnrelatedComponents(t *testing.T) {
	base := style.CellStyle{Font: style.Font{Name: "Calibri", Size: 11}, Fill: style.NewSolidFill(style.RGB(0xFFFF0000))}
	seeded, err := Apply(nil, themeColors(), []Patch{{ExistingCellXf: -1, Style: base, Mode: style.Replace}})
	require.NoError(t, err)

	overlay := style.CellStyle{Font: style.Font{Bold: true}}
	res, err := Apply(seeded.StylesXML, themeColors(), []Patch{
		{ExistingCellXf: seeded.CellXfIDs[0], Style: overlay, Mode: style.Merge},
	})
	require.NoError(t, err)

	reg, ids, err := ooxml.DecodeStyleSheetBytes(res.StylesXML, themeColors())
	require.NoError(t, err)
	st, ok := reg.Get(ids[res.CellXfIDs[0]])
	require.True(t, ok)
	assert.True(t, st.Font.Bold)
	assert.Equal(t, style.FillSolidKind, st.Fill.Kind)
}

func TestApplyEmptyPatchSetIsNoop(t *testing.T) {
	res, err := Apply(nil, themeColors(), nil)
	require.NoError(t, err)
	assert.True(t, res.Unchanged)
	assert.Nil(t, res.StylesXML)
}

func TestApplyDeduplicatesIdenticalStyles(t *testing.T) {
	st := style.CellStyle{Font: style.Font{Italic: true}}
	res, err := Apply(nil, themeColors(), []Patch{
		{ExistingCellXf: -1, Style: st, Mode: style.Replace},
		{ExistingCellXf: -1, Style: st, Mode: style.Replace},
	})
	require.NoError(t, err)
	assert.Equal(t, res.CellXfIDs[0], res.CellXfIDs[1])
}
