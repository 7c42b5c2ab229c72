// Package meta implements a light workbook metadata reader: it resolves
// sheet names, visibility, and defined names from workbook.xml and
// workbook.xml.rels, then scans only the worksheet-header prefix of each
// sheet part up to and including its <dimension/> element before closing
// the stream. It never reads styles.xml or any <sheetData>; the
// shared-string table is still loaded in full, because the
// ooxml.PackageIndex it opens carries it. This keeps it far cheaper than a
// full Read for callers that only need a workbook's shape.
package meta

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/ooxml"
)

// SheetInfo describes one worksheet without decoding its contents.
type SheetInfo struct {
	Name       addr.SheetName
	Target     string // e.g. "xl/worksheets/sheet1.xml"
	Hidden     bool
	VeryHidden bool

	Dimension    addr.CellRange
	HasDimension bool
}

// Workbook is the result of a light metadata scan.
type Workbook struct {
	Sheets       []SheetInfo
	DefinedNames []model.DefinedName
}

// ReadFile opens path and scans its metadata.
func ReadFile(path string) (Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return Workbook{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Workbook{}, err
	}
	return Read(f, info.Size())
}

// Read scans the package's metadata without decoding any sheet's cell
// data. ra must support random access for the ZIP central directory;
// each worksheet part is then opened and read only up to its dimension
// element.
func Read(ra io.ReaderAt, size int64) (Workbook, error) {
	idx, err := ooxml.OpenIndex(ra, size)
	if err != nil {
		return Workbook{}, err
	}

	sheets := make([]SheetInfo, 0, len(idx.Sheets))
	for _, ref := range idx.Sheets {
		si := SheetInfo{
			Name:       ref.Name,
			Target:     ref.Target,
			Hidden:     ref.State == "hidden",
			VeryHidden: ref.State == "veryHidden",
		}

		rc, err := idx.Open(ref.Target)
		if err != nil {
			return Workbook{}, err
		}
		dim, ok, derr := scanDimension(rc)
		rc.Close()
		if derr != nil {
			return Workbook{}, derr
		}
		si.Dimension, si.HasDimension = dim, ok

		sheets = append(sheets, si)
	}

	return Workbook{Sheets: sheets, DefinedNames: idx.DefinedNames()}, nil
}

// scanDimension token-walks r only as far as the worksheet's <dimension/>
// element (or its <sheetData>, whichever comes first), so a worksheet
// with no dimension never forces a read past its header. r is never read
// to EOF; the caller closes it regardless of how far this gets.
func scanDimension(r io.Reader) (addr.CellRange, bool, error) {
	dec := ooxml.NewHardenedDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return addr.CellRange{}, false, nil
		}
		if err != nil {
			return addr.CellRange{}, false, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "dimension":
			var dim struct {
				Ref string `xml:"ref,attr"`
			}
			if err := dec.DecodeElement(&dim, &start); err != nil {
				return addr.CellRange{}, false, err
			}
			rng, ok := parseDimensionRef(dim.Ref)
			return rng, ok, nil
		case "sheetData":
			// No dimension was present before the row data starts; callers
			// that need bounds fall back to a streaming scan.
			return addr.CellRange{}, false, nil
		}
	}
}

func parseDimensionRef(ref string) (addr.CellRange, bool) {
	if ref == "" {
		return addr.CellRange{}, false
	}
	if rng, err := addr.ParseRange(ref); err == nil {
		return rng, true
	}
	if a, err := addr.ParseARef(ref); err == nil {
		return addr.NewRange(a, a), true
	}
	return addr.CellRange{}, false
}
