package cibdxml

import (
	"github.com/emtools/cbecc-translate/internal/idreg"
	"github.com/emtools/cbecc-translate/internal/model"
	"github.com/emtools/cbecc-translate/internal/units"
	"github.com/emtools/cbecc-translate/internal/xmltree"
)

// catalogContext scopes all catalog entries in the ID registry.
const catalogContext = "catalog"

// Material thickness appears in inches in CBECC documents.
const inchToMeter = 0.0254

// parser carries the per-run state shared by the parse passes.
type parser struct {
	tables *Tables
	reg    *idreg.Registry
	log    *model.Log
	m      *model.Model

	// Source-name → generated-ID lookups filled by the catalog pass
	// and consumed by the geometry and systems passes.
	materialIDs map[string]string
	consIDs     map[string]string
	winTypeIDs  map[string]string
	duTypeIDs   map[string]string
	duTypes     map[string]*model.DUType

	// Filled by the geometry pass.
	zoneIDs      map[string]string
	surfaceNodes []surfaceNode
}

func newParser(t *Tables, reg *idreg.Registry, log *model.Log, m *model.Model) *parser {
	return &parser{
		tables:      t,
		reg:         reg,
		log:         log,
		m:           m,
		materialIDs: make(map[string]string),
		consIDs:     make(map[string]string),
		winTypeIDs:  make(map[string]string),
		duTypeIDs:   make(map[string]string),
		duTypes:     make(map[string]*model.DUType),
		zoneIDs:     make(map[string]string),
	}
}

// parseCatalogs extracts location and every reference catalog. This
// pass must complete before geometry or systems parsing so that later
// by-name lookups resolve regardless of document order.
func (p *parser) parseCatalogs(root *xmltree.Node) {
	p.parseLocation(root)
	p.parseDUTypes(root)
	p.parseMaterials(root)
	p.parseConstructions(root)
	p.parseWindowTypes(root)
	p.parsePVArrays(root)
}

func (p *parser) parseLocation(root *xmltree.Node) {
	proj := root.Child("Proj")
	if proj == nil {
		proj = root
	}
	loc := &model.Location{
		ClimateZone: proj.Prop("CliZn", "ClimateZone", "CZ"),
		City:        proj.Prop("City"),
	}
	if site := proj.Child("Loc"); site != nil {
		if loc.ClimateZone == "" {
			loc.ClimateZone = site.Prop("CliZn", "ClimateZone", "CZ")
		}
		if loc.City == "" {
			loc.City = site.Prop("City")
		}
		if elev, ok := site.PropFloat("Elevation"); ok {
			loc.Elevation = units.MustIPToSI(elev, units.KindLength)
		}
	}
	if loc.ClimateZone != "" || loc.City != "" || loc.Elevation != 0 {
		p.m.Project.Location = loc
	}
	p.m.Project.Name = proj.Name()
}

func (p *parser) parseDUTypes(root *xmltree.Node) {
	for _, el := range root.Descendants("DwellUnitType", "DUType") {
		name := el.Name()
		du := &model.DUType{
			ID:   p.reg.Allocate(idreg.PrefixDUType, name, catalogContext),
			Name: name,
		}
		if v, ok := el.PropFloat("FlrArea", "FloorArea", "Area"); ok {
			du.FloorArea = units.MustIPToSI(v, units.KindArea)
		}
		if v, ok := el.PropInt("NumBedrooms", "Bedrooms"); ok {
			du.Bedrooms = v
		}
		if v, ok := el.PropInt("Count", "NumDwellUnits"); ok {
			du.Count = v
		}
		p.m.Catalogs.DUTypes = append(p.m.Catalogs.DUTypes, du)
		if name != "" {
			p.duTypeIDs[name] = du.ID
			p.duTypes[name] = du
		}
	}
}

func (p *parser) parseMaterials(root *xmltree.Node) {
	for _, el := range root.Descendants("ResMat", "Mat", "Material") {
		name := el.Name()
		mat := &model.Material{
			ID:   p.reg.Allocate(idreg.PrefixMaterial, name, catalogContext),
			Name: name,
		}
		if v, ok := el.PropFloat("Thkns", "Thickness"); ok {
			mat.Thickness = v * inchToMeter
		}
		if v, ok := el.PropFloat("RVal", "RValue", "Resistance"); ok {
			mat.RValue = units.MustIPToSI(v, units.KindRValue)
		}
		p.m.Catalogs.Materials = append(p.m.Catalogs.Materials, mat)
		if name != "" {
			p.materialIDs[name] = mat.ID
		}
	}
}

func (p *parser) parseConstructions(root *xmltree.Node) {
	for _, el := range root.Descendants("ResConsAssm", "ConsAssm", "Construction") {
		name := el.Name()
		cons := &model.Construction{
			ID:   p.reg.Allocate(idreg.PrefixConstruction, name, catalogContext),
			Name: name,
		}
		if v, ok := el.PropFloat("UFactor", "UValue"); ok {
			cons.UFactor = units.MustIPToSI(v, units.KindUFactor)
		}
		// MatRef children are the layer stack, outermost first.
		for _, ref := range el.AllChildren("MatRef") {
			layerName := ref.Text()
			if layerName == "" {
				layerName = ref.Attr("Name")
			}
			if layerName == "" {
				continue
			}
			id, ok := p.materialIDs[layerName]
			if !ok {
				p.log.Warnf("CAT-001", cons.ID, "construction %q layer references unknown material %q", name, layerName)
				continue
			}
			cons.Layers = append(cons.Layers, id)
		}
		p.m.Catalogs.Constructions = append(p.m.Catalogs.Constructions, cons)
		if name != "" {
			p.consIDs[name] = cons.ID
		}
	}
}

func (p *parser) parseWindowTypes(root *xmltree.Node) {
	for _, el := range root.Descendants("ResWinType", "WinType", "WindowType") {
		name := el.Name()
		wt := &model.WindowType{
			ID:   p.reg.Allocate(idreg.PrefixWindowType, name, catalogContext),
			Name: name,
		}
		if v, ok := el.PropFloat("UFactor", "NFRCUfactor", "UValue"); ok {
			wt.UFactor = units.MustIPToSI(v, units.KindUFactor)
		}
		if v, ok := el.PropFloat("SHGC", "NFRCSHGC"); ok {
			wt.SHGC = v
		}
		if v, ok := el.PropFloat("VT", "NFRCVT", "VisibleTransmittance"); ok {
			wt.VT = v
		}
		p.m.Catalogs.WindowTypes = append(p.m.Catalogs.WindowTypes, wt)
		if name != "" {
			p.winTypeIDs[name] = wt.ID
		}
	}
}

func (p *parser) parsePVArrays(root *xmltree.Node) {
	for _, el := range root.Descendants("ResPVArray", "PVArray", "PhotovoltaicArray") {
		name := el.Name()
		pv := &model.PVArray{
			ID:   p.reg.Allocate(idreg.PrefixPVArray, name, catalogContext),
			Name: name,
		}
		if v, ok := el.PropFloat("MaxPower", "CapacityKW", "Capacity"); ok {
			pv.PowerW = units.MustIPToSI(v, units.KindPower)
		}
		if v, ok := el.PropFloat("Az", "Azimuth"); ok {
			pv.Azimuth = v
		}
		if v, ok := el.PropFloat("Tilt", "TiltAngle"); ok {
			pv.Tilt = v
		}
		p.m.Catalogs.PVArrays = append(p.m.Catalogs.PVArrays, pv)
	}
}
