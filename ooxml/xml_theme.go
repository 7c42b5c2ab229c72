package ooxml

import (
	"encoding/xml"

	"github.com/openxl/xl/model"
)

// xlsxTheme mirrors only the color-scheme portion of theme1.xml; the font
// scheme and format scheme are dropped on write, since this engine only
// resolves indexed/theme colors and never renders with the theme's fonts.
type xlsxTheme struct {
	XMLName     xml.Name        `xml:"http://schemas.openxmlformats.org/drawingml/2006/main theme"`
	ThemeElements xlsxThemeElements `xml:"themeElements"`
}

type xlsxThemeElements struct {
	ClrScheme xlsxClrScheme `xml:"clrScheme"`
}

type xlsxClrScheme struct {
	Name    string          `xml:"name,attr"`
	Colors  []xlsxSchemeClr `xml:",any"`
}

// xlsxSchemeClr captures one of the twelve dk1/lt1/dk2/lt2/accent1-6/
// hlink/folHlink slots. Each element wraps either a <sysClr> (for dk1/lt1,
// which reference a system color with a fallback RGB) or an <srgbClr>.
type xlsxSchemeClr struct {
	XMLName xml.Name
	SysClr  *xlsxSysClr  `xml:"sysClr"`
	SrgbClr *xlsxSrgbClr `xml:"srgbClr"`
}

type xlsxSysClr struct {
	Val       string `xml:"val,attr"`
	LastClr   string `xml:"lastClr,attr"`
}

type xlsxSrgbClr struct {
	Val string `xml:"val,attr"`
}

// themeSlotOrder is the fixed order the twelve scheme colors appear in
// theme1.xml, matching model.Theme.Colors' slot indexing.
var themeSlotOrder = []string{
	"dk1", "lt1", "dk2", "lt2",
	"accent1", "accent2", "accent3", "accent4", "accent5", "accent6",
	"hlink", "folHlink",
}

func decodeTheme(t *xlsxTheme) model.Theme {
	if t == nil {
		return model.DefaultTheme()
	}
	bySlot := map[string]uint32{}
	for _, c := range t.ThemeElements.ClrScheme.Colors {
		name := c.XMLName.Local
		var argb uint32
		switch {
		case c.SrgbClr != nil:
			argb = parseARGBHex(c.SrgbClr.Val)
		case c.SysClr != nil:
			argb = parseARGBHex(c.SysClr.LastClr)
		default:
			continue
		}
		bySlot[name] = argb
	}
	colors := make([]uint32, len(themeSlotOrder))
	def := model.DefaultTheme()
	for i, slot := range themeSlotOrder {
		if argb, ok := bySlot[slot]; ok {
			colors[i] = argb
		} else if i < len(def.Colors) {
			colors[i] = def.Colors[i]
		}
	}
	name := t.ThemeElements.ClrScheme.Name
	if name == "" {
		name = "Office"
	}
	return model.Theme{Name: name, Colors: colors}
}

func encodeTheme(th model.Theme) *xlsxTheme {
	t := &xlsxTheme{}
	t.ThemeElements.ClrScheme.Name = th.Name
	for i, slot := range themeSlotOrder {
		var argb uint32
		if i < len(th.Colors) {
			argb = th.Colors[i]
		}
		elem := xlsxSchemeClr{XMLName: xml.Name{Local: slot}}
		if slot == "dk1" || slot == "lt1" {
			sysName := "windowText"
			if slot == "lt1" {
				sysName = "window"
			}
			elem.SysClr = &xlsxSysClr{Val: sysName, LastClr: formatARGBHex(argb)[2:]}
		} else {
			elem.SrgbClr = &xlsxSrgbClr{Val: formatARGBHex(argb)[2:]}
		}
		t.ThemeElements.ClrScheme.Colors = append(t.ThemeElements.ClrScheme.Colors, elem)
	}
	return t
}
