package main

import (
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openxl/xl/addr"
	"github.com/openxl/xl/transform"
)

// cellEditSpec is one cell edit from a patch subcommand's YAML input.
type cellEditSpec struct {
	Sheet string      `yaml:"sheet"`
	Ref   string      `yaml:"ref"`
	Value interface{} `yaml:"value"`
	Bold  bool        `yaml:"bold"`
}

type patchSpec struct {
	Cells []cellEditSpec `yaml:"cells"`
}

func runPatch(args []string) {
	fs := flag.NewFlagSet("patch", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 3 {
		log.Fatalf("usage: xl patch <patch.yaml> <src.xlsx> <dst.xlsx>")
	}
	patchPath, srcPath, dstPath := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	raw, err := os.ReadFile(patchPath)
	if err != nil {
		log.Fatalf("xl patch: %v", err)
	}
	var spec patchSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		log.Fatalf("xl patch: parsing %s: %v", patchPath, err)
	}

	var fp transform.FilePatch
	for _, ce := range spec.Cells {
		name, err := addr.NewSheetName(ce.Sheet)
		if err != nil {
			log.Fatalf("xl patch: sheet %q: %v", ce.Sheet, err)
		}
		ref, err := addr.ParseARef(ce.Ref)
		if err != nil {
			log.Fatalf("xl patch: ref %q: %v", ce.Ref, err)
		}
		edit := transform.CellEdit{Sheet: name, Ref: ref, SetValue: true, Value: scalarToCellValue(ce.Value)}
		if ce.Bold {
			edit.SetStyle = true
			edit.Style.Font.Bold = true
		}
		fp.Cells = append(fp.Cells, edit)
	}

	if err := transform.ApplyFile(srcPath, dstPath, fp); err != nil {
		log.Fatalf("xl patch: %v", err)
	}
}
