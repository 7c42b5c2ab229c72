package style

// CellStyle is the full formatting record of a cell: font, fill, border,
// number format, and alignment. Two styles are equal iff every component
// is structurally equal.
type CellStyle struct {
	Font    Font
	Fill    Fill
	Border  Border
	NumFmt  NumFmt
	Align   Align
}

// Default is the implicit style for id 0.
var Default = CellStyle{Font: DefaultFont, NumFmt: Builtin(General)}

// Equal reports structural equality across every component.
func (s CellStyle) Equal(o CellStyle) bool {
	return s.Font.Equal(o.Font) && s.Fill.Equal(o.Fill) && s.Border.Equal(o.Border) &&
		s.NumFmt.Equal(o.NumFmt) && s.Align.Equal(o.Align)
}

// MergeMode selects how Sheet.Style combines an overlay onto each cell's
// existing style.
type MergeMode int

const (
	// Replace discards the cell's current style entirely.
	Replace MergeMode = iota
	// Merge component-wise overlays the new style onto the existing one.
	Merge
)

// MergeOverlay applies overlay onto base using componentwise merge
// semantics: the overlay wins wherever it differs from the component's
// zero/default value; boolean typographic flags and wrap are OR'd; indent
// and size prefer the overlay when it is non-default.
func MergeOverlay(base, overlay CellStyle) CellStyle {
	out := base

	if overlay.Font.Name != "" {
		out.Font.Name = overlay.Font.Name
	}
	if overlay.Font.Size != 0 {
		out.Font.Size = overlay.Font.Size
	}
	out.Font.Bold = base.Font.Bold || overlay.Font.Bold
	out.Font.Italic = base.Font.Italic || overlay.Font.Italic
	out.Font.Underline = base.Font.Underline || overlay.Font.Underline
	if overlay.Font.Color != (Color{}) {
		out.Font.Color = overlay.Font.Color
	}

	if overlay.Fill.Kind != FillNoneKind {
		out.Fill = overlay.Fill
	}

	if overlay.Border.Left.Style != BorderNone {
		out.Border.Left = overlay.Border.Left
	}
	if overlay.Border.Right.Style != BorderNone {
		out.Border.Right = overlay.Border.Right
	}
	if overlay.Border.Top.Style != BorderNone {
		out.Border.Top = overlay.Border.Top
	}
	if overlay.Border.Bottom.Style != BorderNone {
		out.Border.Bottom = overlay.Border.Bottom
	}

	if overlay.NumFmt.Tag != General || overlay.NumFmt.ID != 0 {
		out.NumFmt = overlay.NumFmt
	}

	if overlay.Align.Horizontal != HGeneral {
		out.Align.Horizontal = overlay.Align.Horizontal
	}
	if overlay.Align.Vertical != VBottom {
		out.Align.Vertical = overlay.Align.Vertical
	}
	out.Align.Wrap = base.Align.Wrap || overlay.Align.Wrap
	if overlay.Align.Indent != 0 {
		out.Align.Indent = overlay.Align.Indent
	}

	return out
}
