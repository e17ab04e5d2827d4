// roundtrip — Verifies lossless translation: imports a CIBD file,
// re-exports it, imports the export, and compares the two models
// field by field. Exit status 0 means the round trip is lossless.
//
// Usage:
//
//	roundtrip [flags]
//	  -in     string   Input CIBD file (required)
//	  -keep   string   Directory to keep intermediate files in (default: discard)
//	  -v               Verbose logging
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/emtools/cbecc-translate/internal/cibdxml"
	"github.com/emtools/cbecc-translate/internal/logging"
	"github.com/emtools/cbecc-translate/internal/model"
	"github.com/emtools/cbecc-translate/internal/xmltree"
)

func main() {
	in := flag.String("in", "", "input CIBD file")
	keep := flag.String("keep", "", "directory to keep intermediate files in")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logging.New(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	tables := cibdxml.MustTables()

	first, err := cibdxml.NewImporter(tables, log).Translate(*in)
	if err != nil {
		log.Error("first import failed", "error", err)
		os.Exit(1)
	}

	exported, expDiags, err := cibdxml.NewExporter(log).Serialize(first)
	if err != nil {
		log.Error("export failed", "error", err)
		os.Exit(1)
	}

	root, err := xmltree.Parse(exported)
	if err != nil {
		log.Error("exported document is unparseable", "error", err)
		os.Exit(1)
	}
	second := cibdxml.NewImporter(tables, log).TranslateTree(root, nil)

	if *keep != "" {
		base := filepath.Base(*in)
		writeIntermediate(log, filepath.Join(*keep, base+".first.json"), first)
		writeIntermediate(log, filepath.Join(*keep, base+".second.json"), second)
		if err := os.WriteFile(filepath.Join(*keep, base+".export.xml"), exported, 0o644); err != nil {
			log.Warn("keep export failed", "error", err)
		}
	}

	ok := true
	ok = compare(log, "geometry", first.Geometry, second.Geometry) && ok
	ok = compare(log, "catalogs", first.Catalogs, second.Catalogs) && ok
	ok = compare(log, "systems", first.Systems, second.Systems) && ok

	if !ok {
		log.Error("round trip is NOT lossless", "input", *in)
		os.Exit(1)
	}
	log.Info("round trip verified",
		"input", *in,
		"zones", len(first.Geometry.Zones),
		"import_diagnostics", len(first.Diagnostics),
		"export_diagnostics", len(expDiags))
}

func compare(log *logging.Logger, section string, a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	log.Error("section differs after round trip", "section", section)
	return false
}

func writeIntermediate(log *logging.Logger, path string, m *model.Model) {
	if err := model.Write(path, m); err != nil {
		log.Warn("keep intermediate failed", "path", path, "error", err)
	}
}
