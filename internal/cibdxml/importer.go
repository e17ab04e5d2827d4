package cibdxml

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/emtools/cbecc-translate/internal/cibd22"
	"github.com/emtools/cbecc-translate/internal/idreg"
	"github.com/emtools/cbecc-translate/internal/logging"
	"github.com/emtools/cbecc-translate/internal/model"
	"github.com/emtools/cbecc-translate/internal/xmltree"
)

// Stage tracks the importer's progress through its passes. The order
// is fixed: catalogs must be complete before geometry begins, since
// geometry resolves references into them.
type Stage int

const (
	StageStart Stage = iota
	StageCatalogsParsed
	StageGeometryParsed
	StageSystemsParsed
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageCatalogsParsed:
		return "catalogs-parsed"
	case StageGeometryParsed:
		return "geometry-parsed"
	case StageSystemsParsed:
		return "systems-parsed"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Importer orchestrates a CIBD → EMJSON translation run. Each run owns
// its own ID registry, so instances are not safe for concurrent use.
type Importer struct {
	tables *Tables
	log    *logging.Logger
	stage  Stage
}

// NewImporter builds an importer over the static lookup tables.
func NewImporter(t *Tables, log *logging.Logger) *Importer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Importer{tables: t, log: log}
}

// Stage reports how far the last Translate call progressed.
func (im *Importer) Stage() Stage { return im.stage }

// Translate reads a CIBD file and produces an EMJSON model. Structural
// problems are reported through the model's diagnostics; only
// unreadable or unparseable input returns an error.
func (im *Importer) Translate(path string) (*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	info, err := DetectFile(path)
	if err != nil {
		return nil, err
	}
	im.log.Info("input classified", "path", path, "format", info.Format.String(), "version", info.Version)

	var diag model.Log
	var root *xmltree.Node
	switch info.Format {
	case FormatCIBD22:
		root, err = cibd22.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case FormatCIBD22X, FormatCIBD25:
		root, err = xmltree.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if info.Format == FormatCIBD25 {
			Migrate(root, im.tables.Migrations["cibd25"], &diag)
		}
	case FormatEMJSON:
		// Already canonical; pass through.
		return model.Read(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnrecognizedFormat)
	}

	m := im.TranslateTree(root, &diag)
	m.Metadata.SourceFormat = info.Format.String()
	m.Metadata.SourceFile = path
	return m, nil
}

// TranslateTree runs the three parse passes over an already-parsed
// document tree. diag may carry migration diagnostics recorded before
// parsing started; nil starts a fresh log.
func (im *Importer) TranslateTree(root *xmltree.Node, diag *model.Log) *model.Model {
	if diag == nil {
		diag = &model.Log{}
	}
	m := model.New()
	reg := idreg.New()
	p := newParser(im.tables, reg, diag, m)

	im.stage = StageStart

	p.parseCatalogs(root)
	im.stage = StageCatalogsParsed
	im.log.Debug("catalogs parsed",
		"materials", len(m.Catalogs.Materials),
		"constructions", len(m.Catalogs.Constructions),
		"window_types", len(m.Catalogs.WindowTypes))

	p.parseGeometry(root)
	im.stage = StageGeometryParsed
	im.log.Debug("geometry parsed",
		"zones", len(m.Geometry.Zones),
		"surfaces", len(m.Geometry.Surfaces.All()),
		"openings", len(m.Geometry.Openings.All()))

	p.parseSystems(root)
	im.stage = StageSystemsParsed

	if entries := diag.Entries(); entries != nil {
		m.Diagnostics = entries
	}
	snap := reg.Snapshot()
	m.Metadata.IDRegistry = &snap
	m.Metadata.RunID = uuid.NewString()
	m.Metadata.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	im.stage = StageDone

	if diag.HasErrors() {
		im.log.Warn("translation completed with errors", "diagnostics", len(m.Diagnostics))
	}
	return m
}
