// cibd2em — Converts CBECC CIBD input files (CIBD22 text, CIBD22X or
// CIBD25 XML) into canonical EMJSON v6 documents.
//
// The input format is detected from content; the file extension is
// only a hint. Recoverable data-quality problems are recorded in the
// output's diagnostics array rather than failing the run, so the
// array is worth inspecting even on success.
//
// Usage:
//
//	cibd2em [flags]
//	  -in     string   Input CIBD file (required)
//	  -out    string   Output EMJSON file (default: input with .json)
//	  -v               Verbose logging
//
// Examples:
//
//	cibd2em -in house.cibd22x                      # writes house.json
//	cibd2em -in house.cibd22x -out model.json -v
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
	in := flag.String("in", "", "input CIBD file")
	out := flag.String("out", "", "output EMJSON file")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" {
		*out = strings.TrimSuffix(*in, ext(*in)) + ".json"
	}

	log, err := logging.New(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	m, err := cibdxml.NewImporter(cibdxml.MustTables(), log).Translate(*in)
	if err != nil {
		log.Error("translate failed", "error", err)
		os.Exit(1)
	}
	if err := model.Write(*out, m); err != nil {
		log.Error("write failed", "error", err)
		os.Exit(1)
	}

	reportDiagnostics(log, m.Diagnostics)
	log.Info("wrote emjson", "path", *out,
		"zones", len(m.Geometry.Zones),
		"surfaces", len(m.Geometry.Surfaces.All()),
		"diagnostics", len(m.Diagnostics))
}

func ext(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i:]
	}
	return ""
}

func reportDiagnostics(log *logging.Logger, diags []model.Diagnostic) {
	for _, d := range diags {
		switch d.Level {
		case model.LevelError:
			log.Error(d.Message, "code", d.Code, "source", d.Source)
		case model.LevelWarning:
			log.Warn(d.Message, "code", d.Code, "source", d.Source)
		default:
			log.Debug(d.Message, "code", d.Code, "source", d.Source)
		}
	}
}
