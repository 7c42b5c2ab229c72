package ooxml

import (
	"encoding/xml"

	"github.com/openxl/xl/value"
)

// xlsxSST is the root element of sharedStrings.xml. Reads load it eagerly
// in full: the table is assumed bounded, small relative to worksheet data.
type xlsxSST struct {
	XMLName     xml.Name  `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main sst"`
	Count       int       `xml:"count,attr"`
	UniqueCount int       `xml:"uniqueCount,attr"`
	SI          []xlsxSI  `xml:"si"`
}

type xlsxSI struct {
	T *xlsxSSTText `xml:"t"`
	R []xlsxSSTRun `xml:"r"`
}

type xlsxSSTText struct {
	Space string `xml:"http://www.w3.org/XML/1998/namespace space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type xlsxSSTRun struct {
	RPr *xlsxRunProps `xml:"rPr"`
	T   string        `xml:"t"`
}

type xlsxRunProps struct {
	B     *attrValEmpty  `xml:"b"`
	I     *attrValEmpty  `xml:"i"`
	Sz    *attrValFloat  `xml:"sz"`
	Color *xlsxColor     `xml:"color"`
	RFont *attrValString `xml:"rFont"`
}

func decodeSharedStrings(sst *xlsxSST) []value.CellValue {
	if sst == nil {
		return nil
	}
	out := make([]value.CellValue, 0, len(sst.SI))
	for _, si := range sst.SI {
		if len(si.R) > 0 {
			runs := make([]value.RichRun, 0, len(si.R))
			for _, r := range si.R {
				runs = append(runs, value.RichRun{Text: r.T})
			}
			out = append(out, value.NewRichText(runs))
			continue
		}
		if si.T != nil {
			out = append(out, value.NewText(si.T.Value))
			continue
		}
		out = append(out, value.NewText(""))
	}
	return out
}

// encodeSharedStrings collects the unique strings referenced by cells
// (built up by the caller via a stringTable) into the sharedStrings.xml
// tree. The part is only emitted at all when at least one string is referenced.
func encodeSharedStrings(strings []string) *xlsxSST {
	if len(strings) == 0 {
		return nil
	}
	sst := &xlsxSST{Count: len(strings), UniqueCount: len(strings)}
	for _, s := range strings {
		sst.SI = append(sst.SI, xlsxSI{T: &xlsxSSTText{Value: s, Space: preserveSpaceIfNeeded(s)}})
	}
	return sst
}

func preserveSpaceIfNeeded(s string) string {
	if s == "" {
		return ""
	}
	if s[0] == ' ' || s[len(s)-1] == ' ' || s[0] == '\t' || s[len(s)-1] == '\t' {
		return "preserve"
	}
	return ""
}

// stringTable interns strings in first-seen order for shared-string
// emission, returning a stable index per string.
type stringTable struct {
	order []string
	index map[string]int
}

func newStringTable() *stringTable {
	return &stringTable{index: map[string]int{}}
}

func (t *stringTable) intern(s string) int {
	if i, ok := t.index[s]; ok {
		return i
	}
	i := len(t.order)
	t.order = append(t.order, s)
	t.index[s] = i
	return i
}
