package style

// Font is the typographic portion of a CellStyle.
type Font struct {
	Name      string
	Size      float64 // points
	Bold      bool
	Italic    bool
	Underline bool
	Color     Color
}

// DefaultFont is the style registry's implicit font for style id 0.
var DefaultFont = Font{Name: "Calibri", Size: 11}

// Equal reports structural equality.
func (f Font) Equal(o Font) bool {
	return f.Name == o.Name && f.Size == o.Size && f.Bold == o.Bold &&
		f.Italic == o.Italic && f.Underline == o.Underline && f.Color == o.Color
}
