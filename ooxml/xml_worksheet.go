package ooxml

import (
	"encoding/xml"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/openxl/xl/value"
)

type xlsxWorksheet struct {
	XMLName     xml.Name         `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main worksheet"`
	Dimension   *xlsxDimension   `xml:"dimension"`
	Cols        *xlsxCols        `xml:"cols"`
	SheetData   xlsxSheetData    `xml:"sheetData"`
	MergeCells  *xlsxMergeCells  `xml:"mergeCells"`
}

type xlsxDimension struct {
	Ref string `xml:"ref,attr"`
}

type xlsxCols struct {
	Col []xlsxCol `xml:"col"`
}

type xlsxCol struct {
	Min          int     `xml:"min,attr"`
	Max          int     `xml:"max,attr"`
	Width        float64 `xml:"width,attr,omitempty"`
	Hidden       bool    `xml:"hidden,attr,omitempty"`
	OutlineLevel int     `xml:"outlineLevel,attr,omitempty"`
}

type xlsxSheetData struct {
	Row []xlsxRow `xml:"row"`
}

type xlsxRow struct {
	R            int      `xml:"r,attr"`
	Ht           float64  `xml:"ht,attr,omitempty"`
	CustomHeight bool     `xml:"customHeight,attr,omitempty"`
	Hidden       bool     `xml:"hidden,attr,omitempty"`
	OutlineLevel int      `xml:"outlineLevel,attr,omitempty"`
	C            []xlsxC  `xml:"c"`
}

type xlsxC struct {
	R string       `xml:"r,attr"`
	S int          `xml:"s,attr,omitempty"`
	T string       `xml:"t,attr,omitempty"`
	F *xlsxF       `xml:"f"`
	V string       `xml:"v"`
	Is *xlsxIs     `xml:"is"`
}

type xlsxF struct {
	Content string `xml:",chardata"`
}

type xlsxIs struct {
	T string `xml:"t"`
}

type xlsxMergeCells struct {
	Count int             `xml:"count,attr,omitempty"`
	Cell  []xlsxMergeCell `xml:"mergeCell"`
}

type xlsxMergeCell struct {
	Ref string `xml:"ref,attr"`
}

// decodeCellValue interprets one <c> element per its t attribute:
// t="s" indexes sharedStrings, t="str" is a formula's cached string
// result, t="inlineStr" carries its own text, t="b"/"e" are
// boolean/error, and the default (absent or "n") is numeric.
func decodeCellValue(c xlsxC, shared []value.CellValue) value.CellValue {
	if c.F != nil {
		cached := decodeCachedValue(c, shared)
		return value.NewFormula(c.F.Content, &cached)
	}
	return decodeCachedValue(c, shared)
}

func decodeCachedValue(c xlsxC, shared []value.CellValue) value.CellValue {
	switch c.T {
	case "s":
		idx, err := strconv.Atoi(c.V)
		if err != nil || idx < 0 || idx >= len(shared) {
			return value.NewText("")
		}
		return shared[idx]
	case "str":
		return value.NewText(c.V)
	case "inlineStr":
		if c.Is != nil {
			return value.NewText(c.Is.T)
		}
		return value.NewText("")
	case "b":
		return value.NewBool(c.V == "1")
	case "e":
		return value.NewError(errorKindFromCode(c.V))
	default:
		if c.V == "" {
			return value.NewEmpty()
		}
		d, err := decimal.NewFromString(c.V)
		if err != nil {
			return value.NewText(c.V)
		}
		return value.NewNumber(d)
	}
}

func errorKindFromCode(code string) value.ErrorKind {
	switch code {
	case "#DIV/0!":
		return value.Div0
	case "#N/A":
		return value.NA
	case "#NAME?":
		return value.Name
	case "#NULL!":
		return value.Null
	case "#NUM!":
		return value.Num
	case "#REF!":
		return value.Ref
	default:
		return value.ValueErr
	}
}

// encodeCell converts a value.CellValue plus its interned style id into a
// worksheet <c> element. Shared-string interning is handled by the
// caller's stringTable, keeping this function pure.
func encodeCell(ref string, styleID int, v value.CellValue, strings *stringTable) xlsxC {
	c := xlsxC{R: ref}
	if styleID != 0 {
		c.S = styleID
	}

	formulaText := ""
	stored := v
	if v.Kind() == value.Formula {
		formulaText = v.FormulaText()
		c.F = &xlsxF{Content: formulaText}
		if cached := v.CachedValue(); cached != nil {
			stored = *cached
		} else {
			stored = value.NewEmpty()
		}
	}

	switch stored.Kind() {
	case value.Empty:
	case value.Number:
		c.V = stored.Number().String()
	case value.Bool:
		c.T = "b"
		if stored.Bool() {
			c.V = "1"
		} else {
			c.V = "0"
		}
	case value.Error:
		c.T = "e"
		c.V = stored.ErrorKind().String()
	case value.DateTime:
		c.V = stored.Serial().String()
	case value.Text:
		if c.F != nil {
			c.T = "str"
			c.V = stored.Text()
		} else {
			c.T = "s"
			c.V = strconv.Itoa(strings.intern(stored.Text()))
		}
	case value.RichText:
		plain := stored.PlainText()
		if c.F != nil {
			c.T = "str"
			c.V = plain
		} else {
			c.T = "s"
			c.V = strconv.Itoa(strings.intern(plain))
		}
	}
	return c
}
