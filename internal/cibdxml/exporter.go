package cibdxml

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/emtools/cbecc-translate/internal/idreg"
	"github.com/emtools/cbecc-translate/internal/logging"
	"github.com/emtools/cbecc-translate/internal/model"
	"github.com/emtools/cbecc-translate/internal/units"
	"github.com/emtools/cbecc-translate/internal/xmltree"
)

// Exporter serializes an EMJSON model back to CIBD22X XML. Catalogs
// are written first as reusable definitions, then geometry referencing
// them by name, then systems. Measurements convert SI → Imperial.
type Exporter struct {
	log *logging.Logger
}

// NewExporter builds an exporter.
func NewExporter(log *logging.Logger) *Exporter {
	if log == nil {
		log = logging.NewNop()
	}
	return &Exporter{log: log}
}

// exportRun holds per-serialization state: the id → source-name
// resolution maps and the diagnostics log.
type exportRun struct {
	m     *model.Model
	reg   *idreg.Registry
	names map[string]string
	diag  *model.Log
}

// Serialize renders the model as a CIBD22X document. The returned
// diagnostics record every reference that had to be written with a
// placeholder name.
func (e *Exporter) Serialize(m *model.Model) ([]byte, []model.Diagnostic, error) {
	run := &exportRun{m: m, names: make(map[string]string), diag: &model.Log{}}

	if m.Metadata.IDRegistry != nil {
		reg, err := idreg.Restore(*m.Metadata.IDRegistry)
		if err != nil {
			return nil, nil, fmt.Errorf("restore id registry: %w", err)
		}
		run.reg = reg
	}
	run.indexNames()

	root := xmltree.New("SDDXML")
	proj := root.Add("Proj")
	if m.Project.Name != "" {
		proj.SetAttr("Name", m.Project.Name)
	}
	run.writeLocation(proj)
	run.writeCatalogs(proj)
	run.writeGeometry(proj.Add("Bldg"))
	run.writeSystems(proj)

	out, err := xmltree.Marshal(root)
	if err != nil {
		return nil, nil, err
	}
	if run.diag.HasErrors() {
		e.log.Warn("export completed with errors", "diagnostics", len(run.diag.Entries()))
	}
	return out, run.diag.Entries(), nil
}

// SerializeToFile writes the serialized document to path.
func (e *Exporter) SerializeToFile(path string, m *model.Model) ([]model.Diagnostic, error) {
	data, diags, err := e.Serialize(m)
	if err != nil {
		return diags, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return diags, fmt.Errorf("write %s: %w", path, err)
	}
	return diags, nil
}

// indexNames maps every generated ID back to its source name, using
// the model's own collections first and the restored registry second.
func (r *exportRun) indexNames() {
	add := func(id, name string) {
		if id != "" && name != "" {
			r.names[id] = name
		}
	}
	for _, g := range r.m.Geometry.ZoneGroups {
		add(g.ID, g.Name)
	}
	for _, z := range r.m.Geometry.Zones {
		add(z.ID, z.Name)
	}
	for _, s := range r.m.Geometry.Surfaces.All() {
		add(s.ID, s.Name)
	}
	for _, o := range r.m.Geometry.Openings.All() {
		add(o.ID, o.Name)
	}
	for _, mat := range r.m.Catalogs.Materials {
		add(mat.ID, mat.Name)
	}
	for _, c := range r.m.Catalogs.Constructions {
		add(c.ID, c.Name)
	}
	for _, w := range r.m.Catalogs.WindowTypes {
		add(w.ID, w.Name)
	}
	for _, d := range r.m.Catalogs.DUTypes {
		add(d.ID, d.Name)
	}
}

// resolveName turns a generated ID back into the source-document name.
// When neither the model nor the restored registry knows the ID, a
// placeholder is synthesized and an EXP-001 warning recorded; the
// reference is never dropped silently.
func (r *exportRun) resolveName(id string) string {
	if name, ok := r.names[id]; ok {
		return name
	}
	if r.reg != nil {
		if name, ok := r.reg.SourceName(id); ok && name != "" {
			return name
		}
	}
	placeholder := "unresolved-" + id
	r.diag.Warnf("EXP-001", id, "no source name for %q, writing placeholder %q", id, placeholder)
	return placeholder
}

// fmtNum renders a measurement for XML, rounding away float conversion
// noise so round-tripped values match the source text.
func fmtNum(v float64) string {
	rounded := math.Round(v*1e6) / 1e6
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func setNum(el *xmltree.Node, attr string, v float64) {
	if v != 0 {
		el.SetAttr(attr, fmtNum(v))
	}
}

func setSI(el *xmltree.Node, attr string, v float64, kind units.Kind) {
	if v != 0 {
		el.SetAttr(attr, fmtNum(units.MustSIToIP(v, kind)))
	}
}

func setAnnotations(el *xmltree.Node, ann map[string]string) {
	keys := make([]string, 0, len(ann))
	for k := range ann {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		el.SetAttr(k, ann[k])
	}
}

func (r *exportRun) writeLocation(proj *xmltree.Node) {
	loc := r.m.Project.Location
	if loc == nil {
		return
	}
	if loc.ClimateZone != "" {
		proj.SetAttr("CliZn", loc.ClimateZone)
	}
	if loc.City != "" || loc.Elevation != 0 {
		site := proj.Add("Loc")
		if loc.City != "" {
			site.SetAttr("City", loc.City)
		}
		setSI(site, "Elevation", loc.Elevation, units.KindLength)
	}
}

func (r *exportRun) writeCatalogs(proj *xmltree.Node) {
	for _, du := range r.m.Catalogs.DUTypes {
		el := proj.Add("DwellUnitType")
		el.SetAttr("Name", du.Name)
		setSI(el, "FlrArea", du.FloorArea, units.KindArea)
		if du.Bedrooms > 0 {
			el.SetAttr("NumBedrooms", strconv.Itoa(du.Bedrooms))
		}
		if du.Count > 0 {
			el.SetAttr("Count", strconv.Itoa(du.Count))
		}
		setAnnotations(el, du.Annotations)
	}
	for _, mat := range r.m.Catalogs.Materials {
		el := proj.Add("ResMat")
		el.SetAttr("Name", mat.Name)
		setNum(el, "Thkns", mat.Thickness/inchToMeter)
		setSI(el, "RVal", mat.RValue, units.KindRValue)
		setAnnotations(el, mat.Annotations)
	}
	for _, cons := range r.m.Catalogs.Constructions {
		el := proj.Add("ResConsAssm")
		el.SetAttr("Name", cons.Name)
		setSI(el, "UFactor", cons.UFactor, units.KindUFactor)
		for _, layer := range cons.Layers {
			el.AddText("MatRef", r.resolveName(layer))
		}
		setAnnotations(el, cons.Annotations)
	}
	for _, wt := range r.m.Catalogs.WindowTypes {
		el := proj.Add("ResWinType")
		el.SetAttr("Name", wt.Name)
		setSI(el, "UFactor", wt.UFactor, units.KindUFactor)
		setNum(el, "SHGC", wt.SHGC)
		setNum(el, "VT", wt.VT)
		setAnnotations(el, wt.Annotations)
	}
	for _, pv := range r.m.Catalogs.PVArrays {
		el := proj.Add("ResPVArray")
		el.SetAttr("Name", pv.Name)
		setSI(el, "MaxPower", pv.PowerW, units.KindPower)
		setNum(el, "Az", pv.Azimuth)
		setNum(el, "Tilt", pv.Tilt)
		setAnnotations(el, pv.Annotations)
	}
}

func zoneTag(kind string) string {
	switch kind {
	case model.ZoneCom:
		return "ComZn"
	case model.ZoneOther:
		return "ResOtherZn"
	default:
		return "ResZn"
	}
}

func surfaceTag(s *model.Surface) string {
	switch s.Kind {
	case model.SurfaceWall:
		switch s.Boundary {
		case model.BoundaryInterior:
			return "ResIntWall"
		case model.BoundaryGround:
			return "ResUndgrWall"
		default:
			return "ResExtWall"
		}
	case model.SurfaceRoof:
		return "ResRoof"
	default:
		if s.Boundary == model.BoundaryGround {
			return "ResSlabFlr"
		}
		return "ResFlr"
	}
}

func openingTag(kind string) string {
	switch kind {
	case model.OpeningDoor:
		return "ResDoor"
	case model.OpeningSkylight:
		return "ResSkylt"
	default:
		return "ResWin"
	}
}

func boundaryCode(boundary string) string {
	switch boundary {
	case model.BoundaryInterior:
		return "Interior"
	case model.BoundaryGround:
		return "Ground"
	default:
		return "Exterior"
	}
}

func (r *exportRun) writeGeometry(bldg *xmltree.Node) {
	surfacesByZone := make(map[string][]*model.Surface)
	for _, s := range r.m.Geometry.Surfaces.All() {
		surfacesByZone[s.Zone] = append(surfacesByZone[s.Zone], s)
	}
	openingsBySurface := make(map[string][]*model.Opening)
	for _, o := range r.m.Geometry.Openings.All() {
		openingsBySurface[o.Surface] = append(openingsBySurface[o.Surface], o)
	}

	groupEls := make(map[string]*xmltree.Node)
	for _, g := range r.m.Geometry.ZoneGroups {
		el := bldg.Add("ResZnGrp")
		el.SetAttr("Name", g.Name)
		setSI(el, "FlrToFlrHgt", g.FloorToFloorHt, units.KindLength)
		setAnnotations(el, g.Annotations)
		groupEls[g.ID] = el
	}

	for _, z := range r.m.Geometry.Zones {
		parent := bldg
		if z.ZoneGroup != "" {
			if grpEl, ok := groupEls[z.ZoneGroup]; ok {
				parent = grpEl
			}
		}
		el := parent.Add(zoneTag(z.Kind))
		el.SetAttr("Name", z.Name)
		setSI(el, "FlrArea", z.FloorArea, units.KindArea)
		setSI(el, "Volume", z.Volume, units.KindVolume)
		if z.Multiplier > 1 {
			el.SetAttr("ZnMult", strconv.Itoa(z.Multiplier))
		}
		if z.DUTypeRef != "" {
			el.SetAttr("DwellUnitTypeRef", r.resolveName(z.DUTypeRef))
		}
		setAnnotations(el, z.Annotations)

		for _, s := range surfacesByZone[z.ID] {
			r.writeSurface(el, s, openingsBySurface[s.ID])
		}
	}
}

func (r *exportRun) writeSurface(zoneEl *xmltree.Node, s *model.Surface, openings []*model.Opening) {
	el := zoneEl.Add(surfaceTag(s))
	el.SetAttr("Name", s.Name)
	setSI(el, "Area", s.Area, units.KindArea)
	setNum(el, "Az", s.Azimuth)
	setNum(el, "Tilt", s.Tilt)
	el.SetAttr("BoundaryCond", boundaryCode(s.Boundary))
	if s.Construction != "" {
		el.SetAttr("ConsAssmRef", r.resolveName(s.Construction))
	}
	if s.AdjacentZone != "" {
		el.SetAttr("AdjacentZnRef", r.resolveName(s.AdjacentZone))
	}
	setAnnotations(el, s.Annotations)

	for _, o := range openings {
		oEl := el.Add(openingTag(o.Kind))
		oEl.SetAttr("Name", o.Name)
		setSI(oEl, "Area", o.Area, units.KindArea)
		setSI(oEl, "Hgt", o.Height, units.KindLength)
		setSI(oEl, "Wdth", o.Width, units.KindLength)
		if o.WindowType != "" {
			oEl.SetAttr("WinTypeRef", r.resolveName(o.WindowType))
		}
		setSI(oEl, "UFactor", o.UFactor, units.KindUFactor)
		setNum(oEl, "SHGC", o.SHGC)
		setNum(oEl, "VT", o.VT)
		setAnnotations(oEl, o.Annotations)
	}
}

func (r *exportRun) writeSystems(proj *xmltree.Node) {
	for _, sys := range r.m.Systems.HVAC {
		el := proj.Add("ResHVACSys")
		el.SetAttr("Name", sys.Name)
		if sys.Type != "" {
			el.SetAttr("Type", sys.Type)
		}
		setAnnotations(el, sys.Annotations)
		for _, zoneID := range sys.Zones {
			el.AddText("ZoneRef", r.resolveName(zoneID))
		}
	}
	for _, sys := range r.m.Systems.DHW {
		el := proj.Add("ResDHWSys")
		el.SetAttr("Name", sys.Name)
		if sys.Type != "" {
			el.SetAttr("Type", sys.Type)
		}
		setAnnotations(el, sys.Annotations)
	}
	for _, fan := range r.m.Systems.IAQFans {
		el := proj.Add("ResIAQFan")
		el.SetAttr("Name", fan.Name)
		setNum(el, "FlowRate", fan.FlowCFM)
		setNum(el, "FanPwr", fan.PowerW)
		setAnnotations(el, fan.Annotations)
	}
}
