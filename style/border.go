package style

// BorderStyle enumerates the line styles a border side may use.
type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderThin
	BorderMedium
	BorderThick
	BorderDashed
	BorderDotted
	BorderDouble
)

// BorderSide is one edge of a cell's border.
type BorderSide struct {
	Style BorderStyle
	Color Color
}

// Border is the four-sided border record of a CellStyle.
type Border struct {
	Left, Right, Top, Bottom BorderSide
}

// Equal reports structural equality.
func (b Border) Equal(o Border) bool {
	return b.Left == o.Left && b.Right == o.Right && b.Top == o.Top && b.Bottom == o.Bottom
}
