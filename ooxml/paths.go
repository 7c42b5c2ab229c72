package ooxml

import "fmt"

const (
	partContentTypes   = "[Content_Types].xml"
	partRootRels       = "_rels/.rels"
	partWorkbook       = "xl/workbook.xml"
	partWorkbookRels   = "xl/_rels/workbook.xml.rels"
	partStyles         = "xl/styles.xml"
	partSharedStrings  = "xl/sharedStrings.xml"
	partTheme          = "xl/theme/theme1.xml"
)

func sheetPartPath(index int) string {
	return fmt.Sprintf("/xl/worksheets/sheet%d.xml", index+1)
}

func sheetPartName(index int) string {
	return sheetPartPath(index)[1:]
}
