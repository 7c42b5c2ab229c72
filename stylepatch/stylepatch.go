// Package stylepatch implements the style patcher: applying a set of
// style overlays/replacements to an existing, full-buffered styles.xml
// document without touching anything else in the package. It is the
// styles-side half of the worksheet transformer pipeline in package
// transform.
package stylepatch

import (
	"github.com/openxl/xl/ooxml"
	"github.com/openxl/xl/style"
)

// Patch describes one cell's requested style change, keyed by its
// current cellXfs index (as read from the target worksheet) so Apply can
// look up the existing style to merge against.
type Patch struct {
	ExistingCellXf int // index into the source styles.xml's cellXfs, -1 if the cell had none
	Style          style.CellStyle
	Mode           style.MergeMode
}

// Result is the outcome of applying a patch set: the re-encoded
// styles.xml bytes (nil if nothing changed) and, for every patch
// (matched by its slice position in the Apply call), the cellXfs index
// cells should now reference.
type Result struct {
	StylesXML  []byte
	CellXfIDs  []int
	Registry   *style.Registry
	Unchanged  bool
}

// Apply decodes stylesXML (which may be nil for a workbook with no
// styles part yet), interns every patch's resulting style by find-or-add
// over the existing registry, and returns the updated document plus the
// cellXfs index each patch resolved to.
//
// Patches with Mode == style.Merge first resolve the cell's existing
// style via ExistingCellXf, then component-wise overlay Style onto it
// (style.MergeOverlay) before interning — matching the workbook-level
// Sheet.Style(..., style.Merge) semantics so a patched file and an
// in-memory Workbook produce identical styles for the same request.
func Apply(stylesXML []byte, theme []uint32, patches []Patch) (Result, error) {
	var reg *style.Registry
	var ids []style.ID
	if len(stylesXML) > 0 {
		var err error
		reg, ids, err = ooxml.DecodeStyleSheetBytes(stylesXML, theme)
		if err != nil {
			return Result{}, err
		}
	} else {
		reg = style.NewRegistry()
	}

	if len(patches) == 0 {
		return Result{Unchanged: true, Registry: reg}, nil
	}

	cellXfIDs := make([]int, len(patches))
	for i, p := range patches {
		want := p.Style
		if p.Mode == style.Merge {
			base := style.Default
			if p.ExistingCellXf >= 0 && p.ExistingCellXf < len(ids) {
				if st, ok := reg.Get(ids[p.ExistingCellXf]); ok {
					base = st
				}
			}
			want = style.MergeOverlay(base, p.Style)
		}
		// encodeStyleSheet always emits reg.All() in registry order, so a
		// style id doubles as its post-encode cellXfs index.
		id := reg.Add(want)
		cellXfIDs[i] = int(id)
	}

	out, err := ooxml.EncodeStyleSheetBytes(reg)
	if err != nil {
		return Result{}, err
	}
	return Result{StylesXML: out, CellXfIDs: cellXfIDs, Registry: reg}, nil
}
