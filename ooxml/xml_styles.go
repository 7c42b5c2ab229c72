package ooxml

import (
	"encoding/xml"

	"github.com/openxl/xl/style"
)

// The xlsx*-prefixed types below mirror the shape of styles.xml records:
// dual attr/omitempty tags, wrapper collections carrying an explicit
// Count, and pointer fields so an absent attribute is distinguishable
// from its zero value.

type xlsxStyleSheet struct {
	XMLName      xml.Name          `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main styleSheet"`
	NumFmts      *xlsxNumFmts      `xml:"numFmts"`
	Fonts        *xlsxFonts        `xml:"fonts"`
	Fills        *xlsxFills        `xml:"fills"`
	Borders      *xlsxBorders      `xml:"borders"`
	CellStyleXfs *xlsxCellStyleXfs `xml:"cellStyleXfs"`
	CellXfs      *xlsxCellXfs      `xml:"cellXfs"`
}

type xlsxNumFmts struct {
	Count  int           `xml:"count,attr"`
	NumFmt []*xlsxNumFmt `xml:"numFmt"`
}

type xlsxNumFmt struct {
	NumFmtID   int    `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

type xlsxFonts struct {
	Count int         `xml:"count,attr"`
	Font  []*xlsxFont `xml:"font"`
}

type xlsxFont struct {
	B      *attrValEmpty  `xml:"b"`
	I      *attrValEmpty  `xml:"i"`
	U      *attrValEmpty  `xml:"u"`
	Sz     *attrValFloat  `xml:"sz"`
	Color  *xlsxColor     `xml:"color"`
	Name   *attrValString `xml:"name"`
}

type xlsxFills struct {
	Count int         `xml:"count,attr"`
	Fill  []*xlsxFill `xml:"fill"`
}

type xlsxFill struct {
	PatternFill *xlsxPatternFill `xml:"patternFill"`
}

type xlsxPatternFill struct {
	PatternType string     `xml:"patternType,attr,omitempty"`
	FgColor     *xlsxColor `xml:"fgColor"`
	BgColor     *xlsxColor `xml:"bgColor"`
}

type xlsxBorders struct {
	Count  int           `xml:"count,attr"`
	Border []*xlsxBorder `xml:"border"`
}

type xlsxBorder struct {
	Left   xlsxLine `xml:"left"`
	Right  xlsxLine `xml:"right"`
	Top    xlsxLine `xml:"top"`
	Bottom xlsxLine `xml:"bottom"`
}

type xlsxLine struct {
	Style string     `xml:"style,attr,omitempty"`
	Color *xlsxColor `xml:"color"`
}

type xlsxColor struct {
	RGB   string  `xml:"rgb,attr,omitempty"`
	Theme *int    `xml:"theme,attr"`
	Tint  float64 `xml:"tint,attr,omitempty"`
}

type xlsxCellStyleXfs struct {
	Count int      `xml:"count,attr"`
	Xf    []xlsxXf `xml:"xf"`
}

type xlsxCellXfs struct {
	Count int      `xml:"count,attr"`
	Xf    []xlsxXf `xml:"xf"`
}

type xlsxXf struct {
	NumFmtID  *int           `xml:"numFmtId,attr"`
	FontID    *int           `xml:"fontId,attr"`
	FillID    *int           `xml:"fillId,attr"`
	BorderID  *int           `xml:"borderId,attr"`
	Alignment *xlsxAlignment `xml:"alignment"`
}

type xlsxAlignment struct {
	Horizontal string `xml:"horizontal,attr,omitempty"`
	Vertical   string `xml:"vertical,attr,omitempty"`
	WrapText   bool   `xml:"wrapText,attr,omitempty"`
	Indent     int    `xml:"indent,attr,omitempty"`
}

// attrValEmpty, attrValFloat and attrValString mirror excelize's val-attr
// wrapper pattern for child elements whose only payload is a single `val`
// attribute (e.g. `<b/>` meaning bold-true, `<sz val="11"/>`).
type attrValEmpty struct{}

type attrValFloat struct {
	Val float64 `xml:"val,attr"`
}

type attrValString struct {
	Val string `xml:"val,attr"`
}

func intPtr(n int) *int { return &n }

// decodeStyleSheet builds a style.Registry from a decoded styles.xml tree,
// along with the mapping from each cellXfs index (the raw value a
// worksheet cell's `s` attribute carries) to the registry id that record
// interned to. Registry.Add deduplicates structurally-equal styles, so a
// file with two equal cellXfs entries does not get two distinct ids —
// callers must translate through the returned slice rather than treating
// a cell's `s` attribute as a registry id directly.
func decodeStyleSheet(ss *xlsxStyleSheet, theme []uint32) (*style.Registry, []style.ID) {
	reg := style.NewRegistry()
	if ss == nil || ss.CellXfs == nil {
		return reg, nil
	}

	fonts := ss.Fonts
	fills := ss.Fills
	borders := ss.Borders
	numFmts := map[int]string{}
	if ss.NumFmts != nil {
		for _, nf := range ss.NumFmts.NumFmt {
			numFmts[nf.NumFmtID] = nf.FormatCode
		}
	}

	ids := make([]style.ID, len(ss.CellXfs.Xf))
	for i, xf := range ss.CellXfs.Xf {
		st := style.Default
		if xf.FontID != nil && fonts != nil && *xf.FontID < len(fonts.Font) {
			st.Font = decodeFont(fonts.Font[*xf.FontID])
		}
		if xf.FillID != nil && fills != nil && *xf.FillID < len(fills.Fill) {
			st.Fill = decodeFill(fills.Fill[*xf.FillID])
		}
		if xf.BorderID != nil && borders != nil && *xf.BorderID < len(borders.Border) {
			st.Border = decodeBorder(borders.Border[*xf.BorderID])
		}
		if xf.NumFmtID != nil {
			st.NumFmt = decodeNumFmt(*xf.NumFmtID, numFmts)
		}
		if xf.Alignment != nil {
			st.Align = decodeAlign(xf.Alignment)
		}
		ids[i] = reg.Add(st)
	}
	return reg, ids
}

func decodeFont(f *xlsxFont) style.Font {
	out := style.DefaultFont
	if f == nil {
		return out
	}
	if f.Name != nil {
		out.Name = f.Name.Val
	}
	if f.Sz != nil {
		out.Size = f.Sz.Val
	}
	out.Bold = f.B != nil
	out.Italic = f.I != nil
	out.Underline = f.U != nil
	if f.Color != nil {
		out.Color = decodeColor(f.Color)
	}
	return out
}

func decodeFill(f *xlsxFill) style.Fill {
	if f == nil || f.PatternFill == nil {
		return style.NoFill
	}
	pf := f.PatternFill
	switch pf.PatternType {
	case "", "none":
		return style.NoFill
	case "solid":
		if pf.FgColor != nil {
			return style.NewSolidFill(decodeColor(pf.FgColor))
		}
		return style.NoFill
	default:
		var fg, bg style.Color
		if pf.FgColor != nil {
			fg = decodeColor(pf.FgColor)
		}
		if pf.BgColor != nil {
			bg = decodeColor(pf.BgColor)
		}
		return style.NewPatternFill(fg, bg, style.PatternType(pf.PatternType))
	}
}

func decodeBorder(b *xlsxBorder) style.Border {
	if b == nil {
		return style.Border{}
	}
	return style.Border{
		Left:   decodeBorderSide(b.Left),
		Right:  decodeBorderSide(b.Right),
		Top:    decodeBorderSide(b.Top),
		Bottom: decodeBorderSide(b.Bottom),
	}
}

func decodeBorderSide(l xlsxLine) style.BorderSide {
	st := borderStyleFromCode(l.Style)
	if st == style.BorderNone {
		return style.BorderSide{}
	}
	side := style.BorderSide{Style: st}
	if l.Color != nil {
		side.Color = decodeColor(l.Color)
	}
	return side
}

func decodeColor(c *xlsxColor) style.Color {
	if c == nil {
		return style.Color{}
	}
	if c.Theme != nil {
		return style.Theme(*c.Theme, c.Tint)
	}
	if c.RGB != "" {
		return style.RGB(parseARGBHex(c.RGB))
	}
	return style.Color{}
}

func decodeNumFmt(id int, custom map[int]string) style.NumFmt {
	if code, ok := style.BuiltinCode(id); ok {
		for tag := style.General; tag <= style.CurrencyFixed2; tag++ {
			if b := style.Builtin(tag); b.ID == id {
				return b
			}
		}
		return style.NumFmt{Tag: style.Custom, ID: id, Code: code}
	}
	if code, ok := custom[id]; ok {
		return style.NumFmt{Tag: style.Custom, ID: id, Code: code}
	}
	return style.Builtin(style.General)
}

func decodeAlign(a *xlsxAlignment) style.Align {
	return style.Align{
		Horizontal: hAlignFromCode(a.Horizontal),
		Vertical:   vAlignFromCode(a.Vertical),
		Wrap:       a.WrapText,
		Indent:     a.Indent,
	}
}

func borderStyleFromCode(code string) style.BorderStyle {
	switch code {
	case "thin":
		return style.BorderThin
	case "medium":
		return style.BorderMedium
	case "thick":
		return style.BorderThick
	case "dashed":
		return style.BorderDashed
	case "dotted":
		return style.BorderDotted
	case "double":
		return style.BorderDouble
	default:
		return style.BorderNone
	}
}

func borderCodeFromStyle(s style.BorderStyle) string {
	switch s {
	case style.BorderThin:
		return "thin"
	case style.BorderMedium:
		return "medium"
	case style.BorderThick:
		return "thick"
	case style.BorderDashed:
		return "dashed"
	case style.BorderDotted:
		return "dotted"
	case style.BorderDouble:
		return "double"
	default:
		return ""
	}
}

func hAlignFromCode(s string) style.HAlign {
	switch s {
	case "left":
		return style.HLeft
	case "center":
		return style.HCenter
	case "right":
		return style.HRight
	case "fill":
		return style.HFill
	case "justify":
		return style.HJustify
	case "centerContinuous":
		return style.HCenterContinuous
	default:
		return style.HGeneral
	}
}

func hAlignCode(h style.HAlign) string {
	switch h {
	case style.HLeft:
		return "left"
	case style.HCenter:
		return "center"
	case style.HRight:
		return "right"
	case style.HFill:
		return "fill"
	case style.HJustify:
		return "justify"
	case style.HCenterContinuous:
		return "centerContinuous"
	default:
		return ""
	}
}

func vAlignFromCode(s string) style.VAlign {
	switch s {
	case "top":
		return style.VTop
	case "center":
		return style.VMiddle
	case "justify":
		return style.VJustify
	case "distributed":
		return style.VDistributed
	default:
		return style.VBottom
	}
}

func vAlignCode(v style.VAlign) string {
	switch v {
	case style.VTop:
		return "top"
	case style.VMiddle:
		return "center"
	case style.VJustify:
		return "justify"
	case style.VDistributed:
		return "distributed"
	default:
		return ""
	}
}

// encodeStyleSheet serializes reg into the styles.xml tree, deduplicating
// fonts/fills/borders/numFmts by find-or-add so structurally identical
// sub-records share one index.
func encodeStyleSheet(reg *style.Registry) *xlsxStyleSheet {
	fc := newFontCatalog()
	flc := newFillCatalog()
	bc := newBorderCatalog()
	nc := newNumFmtCatalog()

	xfs := make([]xlsxXf, 0, reg.Len())
	for _, st := range reg.All() {
		fontID := fc.add(st.Font)
		fillID := flc.add(st.Fill)
		borderID := bc.add(st.Border)
		numFmtID := nc.add(st.NumFmt)
		xf := xlsxXf{
			NumFmtID: intPtr(numFmtID),
			FontID:   intPtr(fontID),
			FillID:   intPtr(fillID),
			BorderID: intPtr(borderID),
		}
		if st.Align != (style.Align{}) {
			xf.Alignment = &xlsxAlignment{
				Horizontal: hAlignCode(st.Align.Horizontal),
				Vertical:   vAlignCode(st.Align.Vertical),
				WrapText:   st.Align.Wrap,
				Indent:     st.Align.Indent,
			}
		}
		xfs = append(xfs, xf)
	}

	return &xlsxStyleSheet{
		NumFmts:      nc.toXML(),
		Fonts:        fc.toXML(),
		Fills:        flc.toXML(),
		Borders:      bc.toXML(),
		CellStyleXfs: &xlsxCellStyleXfs{Count: 1, Xf: []xlsxXf{{}}},
		CellXfs:      &xlsxCellXfs{Count: len(xfs), Xf: xfs},
	}
}

// The four catalogs below implement find-or-add over the XML form of each
// style sub-component: two structurally equal records always resolve to
// the same index.

type fontCatalog struct {
	items []style.Font
	index map[style.Font]int
}

func newFontCatalog() *fontCatalog {
	return &fontCatalog{index: map[style.Font]int{}}
}

func (c *fontCatalog) add(f style.Font) int {
	if id, ok := c.index[f]; ok {
		return id
	}
	id := len(c.items)
	c.items = append(c.items, f)
	c.index[f] = id
	return id
}

func (c *fontCatalog) toXML() *xlsxFonts {
	out := &xlsxFonts{Count: len(c.items)}
	for _, f := range c.items {
		xf := &xlsxFont{Name: &attrValString{Val: f.Name}, Sz: &attrValFloat{Val: f.Size}}
		if f.Bold {
			xf.B = &attrValEmpty{}
		}
		if f.Italic {
			xf.I = &attrValEmpty{}
		}
		if f.Underline {
			xf.U = &attrValEmpty{}
		}
		if f.Color.Kind != style.ColorNone {
			xf.Color = encodeColor(f.Color)
		}
		out.Font = append(out.Font, xf)
	}
	return out
}

type fillCatalog struct {
	items []style.Fill
	index map[style.Fill]int
}

func newFillCatalog() *fillCatalog {
	c := &fillCatalog{index: map[style.Fill]int{}}
	c.add(style.NoFill)
	c.add(style.Fill{Kind: style.FillPatternKind, Pattern: style.PatternGray125})
	return c
}

func (c *fillCatalog) add(f style.Fill) int {
	if id, ok := c.index[f]; ok {
		return id
	}
	id := len(c.items)
	c.items = append(c.items, f)
	c.index[f] = id
	return id
}

func (c *fillCatalog) toXML() *xlsxFills {
	out := &xlsxFills{Count: len(c.items)}
	for _, f := range c.items {
		pf := &xlsxPatternFill{}
		switch f.Kind {
		case style.FillNoneKind:
			pf.PatternType = "none"
		case style.FillSolidKind:
			pf.PatternType = "solid"
			pf.FgColor = encodeColor(f.Solid)
		case style.FillPatternKind:
			pf.PatternType = string(f.Pattern)
			if f.Foreground.Kind != style.ColorNone {
				pf.FgColor = encodeColor(f.Foreground)
			}
			if f.Background.Kind != style.ColorNone {
				pf.BgColor = encodeColor(f.Background)
			}
		}
		out.Fill = append(out.Fill, &xlsxFill{PatternFill: pf})
	}
	return out
}

type borderCatalog struct {
	items []style.Border
	index map[style.Border]int
}

func newBorderCatalog() *borderCatalog {
	c := &borderCatalog{index: map[style.Border]int{}}
	c.add(style.Border{})
	return c
}

func (c *borderCatalog) add(b style.Border) int {
	if id, ok := c.index[b]; ok {
		return id
	}
	id := len(c.items)
	c.items = append(c.items, b)
	c.index[b] = id
	return id
}

func (c *borderCatalog) toXML() *xlsxBorders {
	out := &xlsxBorders{Count: len(c.items)}
	for _, b := range c.items {
		out.Border = append(out.Border, &xlsxBorder{
			Left:   encodeBorderSide(b.Left),
			Right:  encodeBorderSide(b.Right),
			Top:    encodeBorderSide(b.Top),
			Bottom: encodeBorderSide(b.Bottom),
		})
	}
	return out
}

func encodeBorderSide(s style.BorderSide) xlsxLine {
	if s.Style == style.BorderNone {
		return xlsxLine{}
	}
	l := xlsxLine{Style: borderCodeFromStyle(s.Style)}
	if s.Color.Kind != style.ColorNone {
		l.Color = encodeColor(s.Color)
	}
	return l
}

func encodeColor(c style.Color) *xlsxColor {
	switch c.Kind {
	case style.ColorTheme:
		return &xlsxColor{Theme: intPtr(c.Slot), Tint: c.Tint}
	case style.ColorRGB:
		return &xlsxColor{RGB: formatARGBHex(c.ARGB)}
	default:
		return nil
	}
}

type numFmtCatalog struct {
	byCode map[string]int
	custom []*xlsxNumFmt
	next   int
}

func newNumFmtCatalog() *numFmtCatalog {
	return &numFmtCatalog{byCode: map[string]int{}, next: 164}
}

func (c *numFmtCatalog) add(n style.NumFmt) int {
	if n.Tag != style.Custom {
		return n.ID
	}
	if id, ok := c.byCode[n.Code]; ok {
		return id
	}
	id := c.next
	if n.ID >= 164 {
		id = n.ID
	}
	c.next = id + 1
	c.byCode[n.Code] = id
	c.custom = append(c.custom, &xlsxNumFmt{NumFmtID: id, FormatCode: n.Code})
	return id
}

func (c *numFmtCatalog) toXML() *xlsxNumFmts {
	if len(c.custom) == 0 {
		return nil
	}
	return &xlsxNumFmts{Count: len(c.custom), NumFmt: c.custom}
}

func parseARGBHex(s string) uint32 {
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		default:
			continue
		}
		n = n<<4 | d
	}
	if len(s) <= 6 {
		n |= 0xFF000000
	}
	return uint32(n)
}

func formatARGBHex(v uint32) string {
	const hex = "0123456789ABCDEF"
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = hex[v&0xF]
		v >>= 4
	}
	return string(buf)
}
