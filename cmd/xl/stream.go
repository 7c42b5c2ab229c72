package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/stream"
)

func runStream(args []string) {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	sheetName := fs.String("sheet", "", "sheet name to stream (default: first sheet)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatalf("usage: xl stream [-sheet NAME] <path.xlsx>")
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("xl stream: %v", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Fatalf("xl stream: %v", err)
	}

	var r *stream.RowReader
	if *sheetName != "" {
		name, nerr := addr.NewSheetName(*sheetName)
		if nerr != nil {
			log.Fatalf("xl stream: %v", nerr)
		}
		r, err = stream.OpenSheet(f, info.Size(), name)
	} else {
		r, err = stream.OpenSheetIndex(f, info.Size(), 0)
	}
	if err != nil {
		log.Fatalf("xl stream: %v", err)
	}
	defer r.Close()

	for r.Next() {
		row := r.Row()
		cols := make([]int, 0, len(row.Cells))
		for c := range row.Cells {
			cols = append(cols, c)
		}
		sort.Ints(cols)
		fmt.Printf("row %d:", row.RowIndex)
		for _, c := range cols {
			fmt.Printf(" %s=%s", addr.Column(c).Letters(), row.Cells[c].PlainText())
		}
		fmt.Println()
	}
	if err := r.Err(); err != nil {
		log.Fatalf("xl stream: %v", err)
	}
}
