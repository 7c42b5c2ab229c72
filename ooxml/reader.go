package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/style"
	"github.com/openxl/xl/value"
)

// Read parses an XLSX package from ra (an io.ReaderAt over size bytes, the
// shape archive/zip requires for random access into a ZIP central
// directory) into a Workbook. Unrecognized parts are preserved verbatim
// in the returned workbook's part manifest.
func Read(ra io.ReaderAt, size int64) (*model.Workbook, error) {
	zr, err := openZip(ra, size)
	if err != nil {
		return nil, err
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	recognized := map[string]bool{
		partContentTypes: true, partRootRels: true, partWorkbook: true,
		partWorkbookRels: true, partStyles: true, partSharedStrings: true, partTheme: true,
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

	var theme model.Theme
	if f, ok := files[partTheme]; ok {
		var t xlsxTheme
		if err := decodeZipEntry(f, &t); err != nil {
			return nil, &ReadError{Part: partTheme, Reason: "malformed theme xml", Err: err}
		}
		theme = decodeTheme(&t)
	} else {
		theme = model.DefaultTheme()
	}

	var shared []value.CellValue
	if f, ok := files[partSharedStrings]; ok {
		var sst xlsxSST
		if err := decodeZipEntry(f, &sst); err != nil {
			return nil, &ReadError{Part: partSharedStrings, Reason: "malformed sharedStrings xml", Err: err}
		}
		shared = decodeSharedStrings(&sst)
	}

	var styleSheet *xlsxStyleSheet
	if f, ok := files[partStyles]; ok {
		styleSheet = &xlsxStyleSheet{}
		if err := decodeZipEntry(f, styleSheet); err != nil {
			return nil, &ReadError{Part: partStyles, Reason: "malformed styles xml", Err: err}
		}
	}
	registry, styleIDs := decodeStyleSheet(styleSheet, theme.Colors)

	wb := model.NewWorkbook().WithTheme(theme)
	for _, dn := range decodeDefinedNames(wbXML.DefinedNames) {
		wb = wb.WithDefinedName(dn)
	}

	for _, entry := range wbXML.Sheets.Sheet {
		target, ok := targetByID[entry.RID]
		if !ok {
			return nil, &ReadError{Part: partWorkbook, Reason: "sheet " + entry.Name + " has no resolvable relationship target"}
		}
		recognized[target] = true
		f, ok := files[target]
		if !ok {
			return nil, &ReadError{Part: target, Reason: "worksheet part referenced by workbook.xml.rels is missing"}
		}
		var ws xlsxWorksheet
		if err := decodeZipEntry(f, &ws); err != nil {
			return nil, &ReadError{Part: target, Reason: "malformed worksheet xml", Err: err}
		}
		name, nerr := addr.NewSheetName(entry.Name)
		if nerr != nil {
			return nil, &ReadError{Part: target, Reason: "invalid sheet name", Err: nerr}
		}
		sheet, serr := buildSheet(name, &ws, shared, registry, styleIDs)
		if serr != nil {
			return nil, serr
		}
		if entry.State == "hidden" {
			sheet = sheet.WithVisibility(model.VisibilityHidden)
		} else if entry.State == "veryHidden" {
			sheet = sheet.WithVisibility(model.VisibilityVeryHidden)
		}
		wb, err = wb.Append(sheet)
		if err != nil {
			return nil, &ReadError{Part: target, Reason: "duplicate sheet name", Err: err}
		}
	}

	manifest, merr := buildManifest(files, recognized)
	if merr != nil {
		return nil, merr
	}
	wb = wb.WithManifest(manifest)

	return wb, nil
}

func resolveTarget(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return base + target
}

func readRelationships(files map[string]*zip.File, part string) (*xlsxRelationships, error) {
	f, ok := files[part]
	if !ok {
		return &xlsxRelationships{}, nil
	}
	var rels xlsxRelationships
	if err := decodeZipEntry(f, &rels); err != nil {
		return nil, &ReadError{Part: part, Reason: "malformed relationships xml", Err: err}
	}
	return &rels, nil
}

func decodePart(files map[string]*zip.File, part string, v interface{}) error {
	f, ok := files[part]
	if !ok {
		return &ReadError{Part: part, Reason: "required part is missing"}
	}
	if err := decodeZipEntry(f, v); err != nil {
		return &ReadError{Part: part, Reason: "malformed xml", Err: err}
	}
	return nil
}

// decodeZipEntry decodes XML with entity expansion disabled: the decoder
// is never pointed at an external entity resolver, and Strict mode
// rejects undefined entities outright rather than silently expanding
// them, so a package carrying external DTDs or SYSTEM/PUBLIC entity
// references cannot make the reader resolve or fetch anything external.
func decodeZipEntry(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	dec := xml.NewDecoder(rc)
	dec.Strict = true
	dec.Entity = map[string]string{}
	return dec.Decode(v)
}

func decodeDefinedNames(dn *xlsxDefinedNames) []model.DefinedName {
	if dn == nil {
		return nil
	}
	out := make([]model.DefinedName, 0, len(dn.DefinedName))
	for _, d := range dn.DefinedName {
		out = append(out, model.DefinedName{Name: d.Name, RefersTo: d.Value})
	}
	return out
}

func buildSheet(name addr.SheetName, ws *xlsxWorksheet, shared []value.CellValue, registry *style.Registry, styleIDs []style.ID) (*model.Sheet, error) {
	sheet := model.NewSheet(name)

	if ws.Cols != nil {
		for _, col := range ws.Cols.Col {
			for n := col.Min; n <= col.Max; n++ {
				c := addr.Column(n - 1)
				if !c.Valid() {
					continue
				}
				sheet = sheet.WithColumn(c, model.ColumnProps{
					Width: col.Width, Hidden: col.Hidden, OutlineLevel: col.OutlineLevel,
				})
			}
		}
	}

	var specs []model.PutSpec
	for _, row := range ws.SheetData.Row {
		r := addr.Row(row.R - 1)
		if row.Ht != 0 || row.Hidden || row.OutlineLevel != 0 || row.CustomHeight {
			sheet = sheet.WithRow(r, model.RowProps{
				Height: row.Ht, Hidden: row.Hidden, OutlineLevel: row.OutlineLevel, CustomHeight: row.CustomHeight,
			})
		}
		for _, c := range row.C {
			ref, err := addr.ParseARef(c.R)
			if err != nil {
				return nil, &ReadError{Part: string(name), Reason: "cell has invalid reference " + c.R, Err: err}
			}
			v := decodeCellValue(c, shared)
			specs = append(specs, model.PutSpec{Ref: ref, Value: v})
			if c.S != 0 {
				if c.S < 0 || c.S >= len(styleIDs) {
					return nil, &ReadError{Part: string(name), Reason: "cell references out-of-range style index"}
				}
				sheet = applyCellStyle(sheet, registry, ref, styleIDs[c.S])
			}
		}
	}
	sheet = sheet.PutAll(specs)

	if ws.MergeCells != nil {
		for _, m := range ws.MergeCells.Cell {
			rng, err := addr.ParseRange(m.Ref)
			if err != nil {
				continue
			}
			merged, merr := sheet.Merge(rng)
			if merr == nil {
				sheet = merged
			}
		}
	}

	return sheet, nil
}

func applyCellStyle(sheet *model.Sheet, registry *style.Registry, ref addr.ARef, id style.ID) *model.Sheet {
	rng := addr.NewRange(ref, ref)
	st, _ := registry.Get(id)
	return sheet.Style(rng, st, style.Replace)
}

// buildManifest preserves every ZIP part Read did not model: media,
// drawings, comments, tables, calcChain, VBA projects, custom XML, and
// any future part type this engine does not interpret.
func buildManifest(files map[string]*zip.File, recognized map[string]bool) (model.PartManifest, error) {
	var parts []model.Part
	var names []string
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if recognized[name] {
			continue
		}
		f := files[name]
		rc, err := f.Open()
		if err != nil {
			return model.PartManifest{}, &ReadError{Part: name, Reason: "cannot open part for pass-through", Err: err}
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return model.PartManifest{}, &ReadError{Part: name, Reason: "cannot read part for pass-through", Err: err}
		}
		ct := ""
		if strings.HasSuffix(name, "vbaProject.bin") {
			ct = "application/vnd.ms-office.vbaProject"
			_, _ = sniffVBAProject(data)
		}
		parts = append(parts, model.Part{Path: name, ContentType: ct, Data: data})
	}
	return model.PartManifest{Parts: parts}, nil
}

