package ooxml

import "encoding/xml"

type xlsxTypes struct {
	XMLName  xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Default  []xlsxDefaultType `xml:"Default"`
	Override []xlsxOverrideType `xml:"Override"`
}

type xlsxDefaultType struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xlsxOverrideType struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

const (
	ctWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	ctTheme         = "application/vnd.openxmlformats-officedocument.theme+xml"
)

// buildContentTypes regenerates [Content_Types].xml from scratch on every
// write, merging in any Override entries carried for unmodelled parts in
// the manifest.
func buildContentTypes(sheetCount int, hasSharedStrings, hasTheme bool, extra []xlsxOverrideType) *xlsxTypes {
	t := &xlsxTypes{
		Default: []xlsxDefaultType{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Override: []xlsxOverrideType{
			{PartName: "/xl/workbook.xml", ContentType: ctWorkbook},
			{PartName: "/xl/styles.xml", ContentType: ctStyles},
		},
	}
	for i := 0; i < sheetCount; i++ {
		t.Override = append(t.Override, xlsxOverrideType{
			PartName:    sheetPartPath(i),
			ContentType: ctWorksheet,
		})
	}
	if hasSharedStrings {
		t.Override = append(t.Override, xlsxOverrideType{PartName: "/xl/sharedStrings.xml", ContentType: ctSharedStrings})
	}
	if hasTheme {
		t.Override = append(t.Override, xlsxOverrideType{PartName: "/xl/theme/theme1.xml", ContentType: ctTheme})
	}
	t.Override = append(t.Override, extra...)
	return t
}
