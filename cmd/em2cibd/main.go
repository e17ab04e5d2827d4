// em2cibd — Serializes an EMJSON v6 document back to CIBD22X XML.
//
// When the EMJSON carries an ID registry snapshot (any document
// produced by cibd2em does), references resolve back to the original
// source names; otherwise unresolvable references are written with
// placeholder names and a warning.
//
// Usage:
//
//	em2cibd [flags]
//	  -in     string   Input EMJSON file (required)
//	  -out    string   Output XML file (default: input with .cibd22x)
//	  -v               Verbose logging
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/emtools/cbecc-translate/internal/cibdxml"
	"github.com/emtools/cbecc-translate/internal/logging"
	"github.com/emtools/cbecc-translate/internal/model"
)

func main() {
	in := flag.String("in", "", "input EMJSON file")
	out := flag.String("out", "", "output CIBD22X file")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" {
		*out = strings.TrimSuffix(*in, ".json") + ".cibd22x"
	}

	log, err := logging.New(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	m, err := model.Read(*in)
	if err != nil {
		log.Error("read failed", "error", err)
		os.Exit(1)
	}
	if diags := model.Validate(m); len(diags) > 0 {
		for _, d := range diags {
			log.Warn(d.Message, "code", d.Code, "source", d.Source)
		}
	}

	diags, err := cibdxml.NewExporter(log).SerializeToFile(*out, m)
	if err != nil {
		log.Error("export failed", "error", err)
		os.Exit(1)
	}
	for _, d := range diags {
		log.Warn(d.Message, "code", d.Code, "source", d.Source)
	}
	log.Info("wrote cibd22x", "path", *out, "diagnostics", len(diags))
}
