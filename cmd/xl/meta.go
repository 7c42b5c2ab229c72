package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/openxl/xl/meta"
)

func runMeta(args []string) {
	fs := flag.NewFlagSet("meta", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatalf("usage: xl meta <path.xlsx>")
	}

	wb, err := meta.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatalf("xl meta: %v", err)
	}

	for _, s := range wb.Sheets {
		state := "visible"
		switch {
		case s.VeryHidden:
			state = "veryHidden"
		case s.Hidden:
			state = "hidden"
		}
		dim := "(none)"
		if s.HasDimension {
			dim = s.Dimension.A1()
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", s.Name, state, s.Target, dim)
	}
	for _, dn := range wb.DefinedNames {
		scope := dn.Sheet
		if scope == "" {
			scope = "(workbook)"
		}
		fmt.Printf("defined-name\t%s\t%s\t%s\n", dn.Name, scope, dn.RefersTo)
	}
}
