package model

import (
	"strings"

	"github.com/mohae/deepcopy"

	"github.com/openxl/xl/addr"
)

// Theme is the workbook's color scheme, indexed by the twelve standard
// OOXML theme color slots (dk1, lt1, dk2, lt2, accent1-6, hlink, folHlink).
type Theme struct {
	Name   string
	Colors []uint32
}

// DefinedName is a workbook- or sheet-scoped named reference.
type DefinedName struct {
	Name    string
	RefersTo string // formula text, e.g. "Sheet1!$A$1:$B$2"
	Sheet   string // "" for workbook scope
}

// Part is one opaque, unmodelled ZIP entry preserved verbatim across a
// read-modify-write cycle.
type Part struct {
	Path           string
	ContentType    string
	Data           []byte
	CompressionRaw bool // not consulted by the writer; Data is always deflated when written
}

// PartManifest tracks the unmodelled parts of a source workbook so the
// writer can carry them through a read-modify-write cycle unchanged.
type PartManifest struct {
	Parts []Part
}

// Workbook is an immutable ordered sequence of sheets plus workbook-level
// metadata. All mutator methods return a new Workbook.
type Workbook struct {
	sheets       []*Sheet
	theme        Theme
	definedNames []DefinedName
	manifest     PartManifest
}

// NewWorkbook creates an empty workbook with a default theme.
func NewWorkbook() *Workbook {
	return &Workbook{theme: DefaultTheme()}
}

// DefaultTheme returns the Office-default theme color scheme.
func DefaultTheme() Theme {
	return Theme{
		Name: "Office",
		Colors: []uint32{
			0xFF000000, 0xFFFFFFFF, 0xFF44546A, 0xFFE7E6E6,
			0xFF4472C4, 0xFFED7D31, 0xFFA5A5A5, 0xFFFFC000,
			0xFF5B9BD5, 0xFF70AD47, 0xFF0563C1, 0xFF954F72,
		},
	}
}

func (w *Workbook) clone() *Workbook {
	out := *w
	return &out
}

// Sheets returns the ordered sheet sequence. The returned slice must not
// be mutated.
func (w *Workbook) Sheets() []*Sheet { return w.sheets }

// Theme returns the workbook's theme.
func (w *Workbook) Theme() Theme { return w.theme }

// DefinedNames returns the workbook's defined names.
func (w *Workbook) DefinedNames() []DefinedName { return w.definedNames }

// Manifest returns the workbook's pass-through part manifest.
func (w *Workbook) Manifest() PartManifest { return w.manifest }

// WithManifest returns a new Workbook with its part manifest replaced.
func (w *Workbook) WithManifest(m PartManifest) *Workbook {
	out := w.clone()
	out.manifest = m
	return out
}

// WithTheme returns a new Workbook with its theme replaced.
func (w *Workbook) WithTheme(t Theme) *Workbook {
	out := w.clone()
	out.theme = t
	return out
}

// WithDefinedName returns a new Workbook with dn appended.
func (w *Workbook) WithDefinedName(dn DefinedName) *Workbook {
	out := w.clone()
	out.definedNames = append(append([]DefinedName{}, w.definedNames...), dn)
	return out
}

func (w *Workbook) indexOf(name addr.SheetName) int {
	for i, s := range w.sheets {
		if s.Name().EqualFold(name) {
			return i
		}
	}
	return -1
}

// Sheet returns the sheet named name, or nil and false if absent.
func (w *Workbook) Sheet(name addr.SheetName) (*Sheet, bool) {
	i := w.indexOf(name)
	if i < 0 {
		return nil, false
	}
	return w.sheets[i], true
}

// Append returns a new Workbook with s added at the end. Fails with
// DuplicateSheetError if the name collides (case-insensitively).
func (w *Workbook) Append(s *Sheet) (*Workbook, error) {
	return w.InsertAt(len(w.sheets), s)
}

// InsertAt returns a new Workbook with s inserted at position idx.
func (w *Workbook) InsertAt(idx int, s *Sheet) (*Workbook, error) {
	if w.indexOf(s.Name()) >= 0 {
		return nil, &DuplicateSheetError{Name: string(s.Name())}
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(w.sheets) {
		idx = len(w.sheets)
	}
	out := w.clone()
	sheets := make([]*Sheet, 0, len(w.sheets)+1)
	sheets = append(sheets, w.sheets[:idx]...)
	sheets = append(sheets, s)
	sheets = append(sheets, w.sheets[idx:]...)
	out.sheets = sheets
	return out, nil
}

// Remove returns a new Workbook with the named sheet removed. Fails with
// SheetNotFoundError if it does not exist.
func (w *Workbook) Remove(name addr.SheetName) (*Workbook, error) {
	i := w.indexOf(name)
	if i < 0 {
		return nil, &SheetNotFoundError{Name: string(name)}
	}
	out := w.clone()
	sheets := make([]*Sheet, 0, len(w.sheets)-1)
	sheets = append(sheets, w.sheets[:i]...)
	sheets = append(sheets, w.sheets[i+1:]...)
	out.sheets = sheets
	return out, nil
}

// Rename returns a new Workbook with the named sheet renamed, checking
// that newName does not collide with any other sheet.
func (w *Workbook) Rename(oldName addr.SheetName, newName addr.SheetName) (*Workbook, error) {
	i := w.indexOf(oldName)
	if i < 0 {
		return nil, &SheetNotFoundError{Name: string(oldName)}
	}
	for j, s := range w.sheets {
		if j != i && s.Name().EqualFold(newName) {
			return nil, &DuplicateSheetError{Name: string(newName)}
		}
	}
	out := w.clone()
	sheets := append([]*Sheet{}, w.sheets...)
	renamed := sheets[i].clone()
	renamed.name = newName
	sheets[i] = renamed
	out.sheets = sheets
	return out, nil
}

// Reorder returns a new Workbook whose sheet sequence matches order, which
// must be a permutation of the current sheet names.
func (w *Workbook) Reorder(order []addr.SheetName) (*Workbook, error) {
	if len(order) != len(w.sheets) {
		return nil, &InvalidWorkbookError{Reason: "reorder list length mismatch"}
	}
	byName := make(map[string]*Sheet, len(w.sheets))
	for _, s := range w.sheets {
		byName[normalizeName(s.Name())] = s
	}
	seen := make(map[string]bool, len(order))
	sheets := make([]*Sheet, 0, len(order))
	for _, name := range order {
		key := normalizeName(name)
		s, ok := byName[key]
		if !ok || seen[key] {
			return nil, &InvalidWorkbookError{Reason: "reorder list is not a permutation of sheet names"}
		}
		seen[key] = true
		sheets = append(sheets, s)
	}
	out := w.clone()
	out.sheets = sheets
	return out, nil
}

func normalizeName(n addr.SheetName) string {
	return strings.ToLower(string(n))
}

// Update returns a new Workbook with the named sheet replaced by fn's
// result. Fails with SheetNotFoundError if the sheet does not exist.
func (w *Workbook) Update(name addr.SheetName, fn func(*Sheet) *Sheet) (*Workbook, error) {
	i := w.indexOf(name)
	if i < 0 {
		return nil, &SheetNotFoundError{Name: string(name)}
	}
	out := w.clone()
	sheets := append([]*Sheet{}, w.sheets...)
	sheets[i] = fn(sheets[i])
	out.sheets = sheets
	return out, nil
}

// SetVisibility returns a new Workbook with the named sheet's visibility
// changed.
func (w *Workbook) SetVisibility(name addr.SheetName, v Visibility) (*Workbook, error) {
	return w.Update(name, func(s *Sheet) *Sheet { return s.WithVisibility(v) })
}

// ImportComment deep-copies a donor comment (taken from another sheet or
// workbook, e.g. during a merge) so the new sheet does not alias the
// donor's rich-text run slice.
func ImportComment(c Comment) Comment {
	return deepcopy.Copy(c).(Comment)
}
