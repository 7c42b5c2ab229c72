package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDedup(t *testing.T) {
	r := NewRegistry()
	bold := CellStyle{Font: Font{Name: "Calibri", Size: 11, Bold: true}}
	id1 := r.Add(bold)
	id2 := r.Add(bold)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 2, r.Len()) // default + bold

	other := CellStyle{Font: Font{Name: "Arial", Size: 12}}
	id3 := r.Add(other)
	assert.NotEqual(t, id1, id3)
}

func TestRegistryDefaultIsZero(t *testing.T) {
	r := NewRegistry()
	got, ok := r.Get(0)
	require.True(t, ok)
	assert.True(t, got.Equal(Default))
}

func TestRegistryCustomNumFmtDedup(t *testing.T) {
	r := NewRegistry()
	a := CellStyle{NumFmt: NewCustom("0.0000")}
	b := CellStyle{NumFmt: NewCustom("0.0000")}
	id1 := r.Add(a)
	id2 := r.Add(b)
	assert.Equal(t, id1, id2)

	got, _ := r.Get(id1)
	assert.GreaterOrEqual(t, got.NumFmt.ID, 164)
}

func TestRegistryMergeRemaps(t *testing.T) {
	src := NewRegistry()
	idA := src.Add(CellStyle{Font: Font{Name: "A", Size: 10}})

	dst := NewRegistry()
	preexisting := dst.Add(CellStyle{Font: Font{Name: "B", Size: 10}})
	remap := dst.Merge(src)

	got, ok := dst.Get(remap[idA])
	require.True(t, ok)
	assert.Equal(t, "A", got.Font.Name)
	assert.NotEqual(t, preexisting, remap[idA])
}

func TestMergeOverlayORsBoldAndWrap(t *testing.T) {
	base := CellStyle{Font: Font{Bold: true}}
	overlay := CellStyle{Align: Align{Wrap: true}}
	out := MergeOverlay(base, overlay)
	assert.True(t, out.Font.Bold)
	assert.True(t, out.Align.Wrap)
}

func TestMergeOverlayPrefersOverlayNonDefault(t *testing.T) {
	base := CellStyle{Font: Font{Size: 11}}
	overlay := CellStyle{Font: Font{Size: 14}}
	out := MergeOverlay(base, overlay)
	assert.Equal(t, 14.0, out.Font.Size)
}

func TestColorThemeResolve(t *testing.T) {
	scheme := []uint32{0xFF112233, 0xFF445566}
	c := Theme(1, 0)
	assert.Equal(t, uint32(0xFF445566), c.Resolve(scheme))
}
