package ooxml

import (
	"archive/zip"
	"io"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/value"
)

// SheetRef names one worksheet entry from workbook.xml, resolved to its
// worksheet part path via workbook.xml.rels.
type SheetRef struct {
	Name   addr.SheetName
	Target string // e.g. "xl/worksheets/sheet1.xml"
	State  string // "", "hidden", "veryHidden"
}

// PackageIndex is the lightweight, un-materialized view of an XLSX package
// that the streaming reader, the worksheet transformer, and the
// metadata reader all share: the ZIP directory, the resolved sheet list,
// and (eagerly, since the table is assumed bounded) the shared-string
// table. Unlike Read, it never decodes a worksheet part.
type PackageIndex struct {
	Files  map[string]*zip.File
	Sheets []SheetRef
	Shared []value.CellValue

	definedNames []model.DefinedName
}

// DefinedNames returns the workbook's defined names.
func (idx *PackageIndex) DefinedNames() []model.DefinedName {
	return idx.definedNames
}

// OpenIndex builds a PackageIndex from an XLSX package without decoding any
// worksheet. Callers needing worksheet content stream it directly from
// idx.Files[target].
func OpenIndex(ra io.ReaderAt, size int64) (*PackageIndex, error) {
	zr, err := openZip(ra, size)
	if err != nil {
		return nil, err
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	wbRels, err := readRelationships(files, partWorkbookRels)
	if err != nil {
		return nil, err
	}
	targetByID := map[string]string{}
	for _, r := range wbRels.Relationship {
		targetByID[r.ID] = resolveTarget("xl/", r.Target)
	}

	var wbXML xlsxWorkbook
	if err := decodePart(files, partWorkbook, &wbXML); err != nil {
		return nil, err
	}

	var shared []value.CellValue
	if f, ok := files[partSharedStrings]; ok {
		var sst xlsxSST
		if err := decodeZipEntry(f, &sst); err != nil {
			return nil, &ReadError{Part: partSharedStrings, Reason: "malformed sharedStrings xml", Err: err}
		}
		shared = decodeSharedStrings(&sst)
	}

	sheets := make([]SheetRef, 0, len(wbXML.Sheets.Sheet))
	for _, entry := range wbXML.Sheets.Sheet {
		target, ok := targetByID[entry.RID]
		if !ok {
			return nil, &ReadError{Part: partWorkbook, Reason: "sheet " + entry.Name + " has no resolvable relationship target"}
		}
		name, nerr := addr.NewSheetName(entry.Name)
		if nerr != nil {
			return nil, &ReadError{Part: target, Reason: "invalid sheet name", Err: nerr}
		}
		sheets = append(sheets, SheetRef{Name: name, Target: target, State: entry.State})
	}

	definedNames := decodeDefinedNames(wbXML.DefinedNames)

	return &PackageIndex{Files: files, Sheets: sheets, Shared: shared, definedNames: definedNames}, nil
}

// SheetByName returns the SheetRef matching name, or false if absent.
func (idx *PackageIndex) SheetByName(name addr.SheetName) (SheetRef, bool) {
	for _, s := range idx.Sheets {
		if s.Name.EqualFold(name) {
			return s, true
		}
	}
	return SheetRef{}, false
}

// SheetByIndex returns the i'th SheetRef (0-based) in workbook order, or
// false if i is out of range.
func (idx *PackageIndex) SheetByIndex(i int) (SheetRef, bool) {
	if i < 0 || i >= len(idx.Sheets) {
		return SheetRef{}, false
	}
	return idx.Sheets[i], true
}

// Open opens the named part for streaming; callers must Close the
// returned reader.
func (idx *PackageIndex) Open(part string) (io.ReadCloser, error) {
	f, ok := idx.Files[part]
	if !ok {
		return nil, &ReadError{Part: part, Reason: "part not found in package"}
	}
	return f.Open()
}
