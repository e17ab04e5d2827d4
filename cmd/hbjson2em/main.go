// hbjson2em — Converts a Honeybee Model JSON (.hbjson) file into a
// canonical EMJSON v6 document. Read-only adapter: there is no
// EMJSON → HBJSON direction.
//
// Usage:
//
//	hbjson2em [flags]
//	  -in     string   Input HBJSON file (required)
//	  -out    string   Output EMJSON file (default: input with .json)
//	  -v               Verbose logging
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/emtools/cbecc-translate/internal/hbjson"
	"github.com/emtools/cbecc-translate/internal/logging"
	"github.com/emtools/cbecc-translate/internal/model"
)

func main() {
	in := flag.String("in", "", "input HBJSON file")
	out := flag.String("out", "", "output EMJSON file")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" {
		base := strings.TrimSuffix(*in, ".hbjson")
		base = strings.TrimSuffix(base, ".json")
		*out = base + ".json"
	}

	log, err := logging.New(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	m, err := hbjson.NewImporter(log).Translate(*in)
	if err != nil {
		log.Error("translate failed", "error", err)
		os.Exit(1)
	}
	if err := model.Write(*out, m); err != nil {
		log.Error("write failed", "error", err)
		os.Exit(1)
	}
	log.Info("wrote emjson", "path", *out,
		"zones", len(m.Geometry.Zones),
		"diagnostics", len(m.Diagnostics))
}
