// Command xl is a thin CLI driver over the openxl/xl library: each
// subcommand parses its own flags and calls straight into the published
// package API, never reimplementing anything itself.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

var subcommands = map[string]func([]string){
	"read":   runRead,
	"meta":   runMeta,
	"stream": runStream,
	"patch":  runPatch,
	"write":  runWrite,
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: xl <read|meta|stream|patch|write> [flags]")
	for name := range subcommands {
		fmt.Fprintf(os.Stderr, "  xl %s -h\n", name)
	}
}

func main() {
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	run, ok := subcommands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "xl: unknown subcommand %q\n", args[0])
		usage()
		os.Exit(1)
	}
	run(args[1:])
}
