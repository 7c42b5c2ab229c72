package transform

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/openxl/xl/addr"
)

// readDimension extracts the <dimension ref="..."/> attribute from a
// worksheet part without decoding it, by a byte search for the first
// <dimension tag. A missing or unparsable dimension (some writers omit
// it) yields the zero range and ok=false; an unterminated tag or ref
// attribute is an error.
func readDimension(src []byte) (addr.CellRange, bool, error) {
	idx := bytes.Index(src, []byte("<dimension"))
	if idx < 0 {
		return addr.CellRange{}, false, nil
	}
	tagEnd := bytes.IndexByte(src[idx:], '>')
	if tagEnd < 0 {
		return addr.CellRange{}, false, fmt.Errorf("transform: unterminated dimension element")
	}
	tag := src[idx : idx+tagEnd+1]
	refIdx := bytes.Index(tag, []byte(`ref="`))
	if refIdx < 0 {
		return addr.CellRange{}, false, nil
	}
	rest := tag[refIdx+len(`ref="`):]
	end := bytes.IndexByte(rest, '"')
	if end < 0 {
		return addr.CellRange{}, false, fmt.Errorf("transform: unterminated dimension ref attribute")
	}
	ref := string(rest[:end])
	if !strings.Contains(ref, ":") {
		a, err := addr.ParseARef(ref)
		if err != nil {
			return addr.CellRange{}, false, nil
		}
		return addr.NewRange(a, a), true, nil
	}
	rng, err := addr.ParseRange(ref)
	if err != nil {
		return addr.CellRange{}, false, nil
	}
	return rng, true, nil
}

// computeDimension returns the A1 "start:end" string the rewritten
// worksheet's <dimension/> should carry: the union of the source part's
// existing used range and every cell a patch touches or adds.
func computeDimension(src []byte, ps *PatchSet) (string, error) {
	orig, hasOrig, err := readDimension(src)
	if err != nil {
		return "", err
	}

	have := hasOrig
	bounds := orig
	extend := func(ref addr.ARef) {
		if !have {
			bounds = addr.NewRange(ref, ref)
			have = true
			return
		}
		bounds = addr.NewRange(
			addr.ARef{Col: minColumn(bounds.Start.Col, ref.Col), Row: minRow2(bounds.Start.Row, ref.Row)},
			addr.ARef{Col: maxColumn(bounds.End.Col, ref.Col), Row: maxRow2(bounds.End.Row, ref.Row)},
		)
	}

	for _, cps := range ps.Cells {
		for _, p := range cps {
			extend(p.Ref)
		}
	}
	if ps.Cols.Set {
		for c := range ps.Cols.Cols {
			extend(addr.ARef{Col: c, Row: 0})
		}
	}

	if !have {
		return "A1", nil
	}
	return bounds.A1(), nil
}

func minColumn(a, b addr.Column) addr.Column {
	if a < b {
		return a
	}
	return b
}
func maxColumn(a, b addr.Column) addr.Column {
	if a > b {
		return a
	}
	return b
}
func minRow2(a, b addr.Row) addr.Row {
	if a < b {
		return a
	}
	return b
}
func maxRow2(a, b addr.Row) addr.Row {
	if a > b {
		return a
	}
	return b
}

// writeCols emits a full <cols>...</cols> element from cols, one <col>
// record per entry, sorted by column index and numbered 1-based inclusive
// (min==max, since a patch always replaces the whole list with individual
// per-column entries rather than re-deriving run-length ranges).
func writeCols(out *bytes.Buffer, cols map[addr.Column]ColProps) {
	if len(cols) == 0 {
		return
	}
	keys := make([]int, 0, len(cols))
	for c := range cols {
		keys = append(keys, int(c))
	}
	sort.Ints(keys)
	out.WriteString("<cols>")
	for _, k := range keys {
		p := cols[addr.Column(k)]
		fmt.Fprintf(out, `<col min="%d" max="%d" width="%g" hidden="%t" outlineLevel="%d" customWidth="1"/>`,
			k+1, k+1, p.Width, p.Hidden, p.OutlineLevel)
	}
	out.WriteString("</cols>")
}

// writeMergeCells emits a full <mergeCells>...</mergeCells> element from
// ranges, sorted by their A1 text the same way the buffered writer orders
// them, so a package round-tripped through an unrelated patch produces an
// unchanged mergeCells element.
func writeMergeCells(out *bytes.Buffer, ranges []addr.CellRange) {
	if len(ranges) == 0 {
		return
	}
	refs := make([]string, 0, len(ranges))
	for _, r := range ranges {
		refs = append(refs, r.A1())
	}
	sort.Strings(refs)
	fmt.Fprintf(out, `<mergeCells count="%d">`, len(refs))
	for _, ref := range refs {
		fmt.Fprintf(out, `<mergeCell ref=%q/>`, ref)
	}
	out.WriteString("</mergeCells>")
}
