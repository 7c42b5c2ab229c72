package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/model"
	"github.com/openxl/xl/ooxml"
	"github.com/openxl/xl/value"
)

// sheetSpec is one sheet of a write subcommand's YAML input: a flat map
// from A1 reference to a scalar value, kept intentionally simple since
// the CLI only needs to exercise the writer, not describe styling.
type sheetSpec struct {
	Name   string                 `yaml:"name"`
	Hidden bool                   `yaml:"hidden"`
	Cells  map[string]interface{} `yaml:"cells"`
}

type workbookSpec struct {
	Sheets []sheetSpec `yaml:"sheets"`
}

func runWrite(args []string) {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 2 {
		log.Fatalf("usage: xl write <spec.yaml> <out.xlsx>")
	}
	specPath, outPath := fs.Arg(0), fs.Arg(1)

	raw, err := os.ReadFile(specPath)
	if err != nil {
		log.Fatalf("xl write: %v", err)
	}
	var spec workbookSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		log.Fatalf("xl write: parsing %s: %v", specPath, err)
	}

	wb := model.NewWorkbook()
	for _, ss := range spec.Sheets {
		name, err := addr.NewSheetName(ss.Name)
		if err != nil {
			log.Fatalf("xl write: sheet %q: %v", ss.Name, err)
		}
		sheet := model.NewSheet(name)
		for refText, scalar := range ss.Cells {
			ref, err := addr.ParseARef(refText)
			if err != nil {
				log.Fatalf("xl write: sheet %q cell %q: %v", ss.Name, refText, err)
			}
			sheet = sheet.Put(ref, scalarToCellValue(scalar))
		}
		if ss.Hidden {
			sheet = sheet.WithVisibility(model.VisibilityHidden)
		}
		wb, err = wb.Append(sheet)
		if err != nil {
			log.Fatalf("xl write: appending sheet %q: %v", ss.Name, err)
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("xl write: %v", err)
	}
	defer out.Close()

	if err := ooxml.Write(out, wb); err != nil {
		log.Fatalf("xl write: %v", err)
	}
}

func scalarToCellValue(raw interface{}) value.CellValue {
	switch v := raw.(type) {
	case string:
		return value.NewText(v)
	case bool:
		return value.NewBool(v)
	case int:
		return value.NewNumberFromInt(int64(v))
	case int64:
		return value.NewNumberFromInt(v)
	case float64:
		return value.NewNumberFromFloat(v)
	case nil:
		return value.NewEmpty()
	default:
		return value.NewText(fmt.Sprint(v))
	}
}
