package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/ooxml"
)

func runRead(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	sheetName := fs.String("sheet", "", "print only this sheet (default: all)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatalf("usage: xl read [-sheet NAME] <path.xlsx>")
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("xl read: %v", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Fatalf("xl read: %v", err)
	}

	wb, err := ooxml.Read(f, info.Size())
	if err != nil {
		log.Fatalf("xl read: %v", err)
	}

	for _, sheet := range wb.Sheets() {
		if *sheetName != "" && string(sheet.Name()) != *sheetName {
			continue
		}
		fmt.Printf("# %s\n", sheet.Name())
		cells := sheet.Cells()
		refs := make([]addr.ARef, 0, len(cells))
		for ref := range cells {
			refs = append(refs, ref)
		}
		sort.Slice(refs, func(i, j int) bool {
			if refs[i].Row != refs[j].Row {
				return refs[i].Row < refs[j].Row
			}
			return refs[i].Col < refs[j].Col
		})
		for _, ref := range refs {
			c := cells[ref]
			if c.Value.IsEmpty() {
				continue
			}
			fmt.Printf("%s\t%s\n", ref.A1(), c.Value.PlainText())
		}
	}
}
