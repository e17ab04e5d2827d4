package cibdxml

import (
	"github.com/emtools/cbecc-translate/internal/idreg"
	"github.com/emtools/cbecc-translate/internal/model"
	"github.com/emtools/cbecc-translate/internal/units"
	"github.com/emtools/cbecc-translate/internal/xmltree"
)

// parseGeometry walks zone groups, zones, surfaces, and openings, in
// that order, resolving catalog references filled by the catalog pass.
func (p *parser) parseGeometry(root *xmltree.Node) {
	p.parseZoneGroups(root)
	p.parseZones(root)
	p.parseSurfaces(root)
	p.parseOpenings(root)
}

func (p *parser) parseZoneGroups(root *xmltree.Node) {
	for _, el := range root.Descendants("ResZnGrp", "ZnGrp") {
		name := el.Name()
		zg := &model.ZoneGroup{
			ID:   p.reg.Allocate(idreg.PrefixZoneGroup, name, "bldg"),
			Name: name,
		}
		if v, ok := el.PropFloat("FlrToFlrHgt", "FlrToFlrHeight"); ok {
			zg.FloorToFloorHt = units.MustIPToSI(v, units.KindLength)
		}
		p.m.Geometry.ZoneGroups = append(p.m.Geometry.ZoneGroups, zg)
	}
}

// zoneElements pairs each zone element with its owning group's ID ("" when
// the zone sits directly under Bldg).
type zoneElement struct {
	node    *xmltree.Node
	groupID string
	kind    string
}

// surfaceNode ties a parsed surface back to its source element so the
// opening pass can find its children.
type surfaceNode struct {
	node    *xmltree.Node
	surface *model.Surface
}

func (p *parser) zoneElements(root *xmltree.Node) []zoneElement {
	var out []zoneElement
	groupIdx := 0
	seen := make(map[*xmltree.Node]bool)

	for _, grp := range root.Descendants("ResZnGrp", "ZnGrp") {
		groupID := ""
		if groupIdx < len(p.m.Geometry.ZoneGroups) {
			groupID = p.m.Geometry.ZoneGroups[groupIdx].ID
		}
		groupIdx++
		for _, tag := range p.tables.zoneTagList() {
			for _, zn := range grp.Descendants(tag) {
				out = append(out, zoneElement{node: zn, groupID: groupID, kind: p.tables.ZoneTags[tag]})
				seen[zn] = true
			}
		}
	}
	// Zones outside any group.
	for _, tag := range p.tables.zoneTagList() {
		for _, zn := range root.Descendants(tag) {
			if !seen[zn] {
				out = append(out, zoneElement{node: zn, kind: p.tables.ZoneTags[tag]})
			}
		}
	}
	return out
}

func (p *parser) parseZones(root *xmltree.Node) {
	namesSeen := make(map[string]int)
	duplicates := 0

	for _, ze := range p.zoneElements(root) {
		el := ze.node
		name := el.Name()
		ctx := ze.groupID
		if ctx == "" {
			ctx = "bldg"
		}
		if name != "" {
			namesSeen[ctx+"\x00"+name]++
			if namesSeen[ctx+"\x00"+name] > 1 {
				duplicates++
			}
		}

		z := &model.Zone{
			ID:         p.reg.Allocate(idreg.PrefixZone, name, ctx),
			Name:       name,
			Kind:       ze.kind,
			ZoneGroup:  ze.groupID,
			Multiplier: 1,
		}
		if v, ok := el.PropInt("ZnMult", "Mult", "Multiplier"); ok && v >= 1 {
			z.Multiplier = v
		}
		if v, ok := el.PropFloat("Volume", "Vol"); ok {
			z.Volume = units.MustIPToSI(v, units.KindVolume)
		}

		duRef := el.Prop("DwellUnitTypeRef", "DUTypeRef")
		if duRef != "" {
			if id, ok := p.duTypeIDs[duRef]; ok {
				z.DUTypeRef = id
			} else {
				p.log.Warnf("GEO-006", z.ID, "zone %q references unknown DU type %q", name, duRef)
			}
		}

		if v, ok := el.PropFloat("FlrArea", "FloorArea", "Area"); ok {
			z.FloorArea = units.MustIPToSI(v, units.KindArea)
		} else if du, ok := p.duTypes[duRef]; ok && du.FloorArea > 0 {
			// DU-type fallback: area comes from the unit template.
			z.FloorArea = du.FloorArea
			p.log.Infof("GEO-005", z.ID, "zone %q floor area taken from DU type %q", name, duRef)
		}

		p.m.Geometry.Zones = append(p.m.Geometry.Zones, z)
		if name != "" {
			if _, exists := p.zoneIDs[name]; !exists {
				p.zoneIDs[name] = z.ID
			}
		}
	}

	if duplicates > 0 {
		p.log.Infof("GEO-007", "", "%d zone name(s) were duplicated within their group and disambiguated", duplicates)
	}
}

// surfaceDefaults returns the default tilt and boundary for a surface
// element tag.
func (p *parser) surfaceDefaults(tag, kind string) (tilt float64, boundary string) {
	switch kind {
	case model.SurfaceWall:
		tilt = 90
	case model.SurfaceRoof:
		tilt = 0
	case model.SurfaceFloor:
		tilt = 180
	}
	switch tag {
	case "ResIntWall":
		boundary = model.BoundaryInterior
	case "ResUndgrWall", "ResSlabFlr":
		boundary = model.BoundaryGround
	default:
		boundary = model.BoundaryExterior
	}
	return tilt, boundary
}

// surfaceHosts maps each surface element back to its owning zone's
// generated ID, walking zone elements in the same order parseZones did
// so IDs line up.
func (p *parser) parseSurfaces(root *xmltree.Node) {
	zoneEls := p.zoneElements(root)
	for i, ze := range zoneEls {
		if i >= len(p.m.Geometry.Zones) {
			break
		}
		zone := p.m.Geometry.Zones[i]
		for _, tag := range p.tables.surfaceTagList() {
			for _, el := range ze.node.AllChildren(tag) {
				p.parseSurface(el, tag, zone)
			}
		}
	}
}

func (p *parser) parseSurface(el *xmltree.Node, tag string, zone *model.Zone) {
	kind := p.tables.SurfaceTags[tag]
	name := el.Name()
	id := p.reg.Allocate(idreg.PrefixSurface, name, zone.ID)

	areaIP, ok := el.PropFloat("Area")
	if !ok || areaIP <= 0 {
		// Zero/negative areas would corrupt area sums downstream, so
		// the surface is excluded rather than kept with a zeroed value.
		p.log.Errorf("GEO-002", id, "surface %q has non-positive area %s and was excluded", name, el.Prop("Area"))
		return
	}

	tilt, boundary := p.surfaceDefaults(tag, kind)
	s := &model.Surface{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Zone:     zone.ID,
		Area:     units.MustIPToSI(areaIP, units.KindArea),
		Tilt:     tilt,
		Boundary: boundary,
	}
	if v, ok := el.PropFloat("Tilt"); ok {
		s.Tilt = v
	}
	s.Azimuth = p.parseAzimuth(el, id)

	if code := el.Prop("BoundaryCond", "Boundary"); code != "" {
		if mapped, ok := p.tables.BoundaryCodes[code]; ok {
			s.Boundary = mapped
		} else {
			p.log.Warnf("GEO-003", id, "unknown boundary code %q on surface %q, assuming exterior", code, name)
			s.Boundary = model.BoundaryExterior
		}
	}

	if ref := el.Prop("ConsAssmRef", "ConstructionRef"); ref != "" {
		if consID, ok := p.consIDs[ref]; ok {
			s.Construction = consID
		} else {
			p.log.Warnf("GEO-001", id, "surface %q references unknown construction %q", name, ref)
		}
	}
	if adj := el.Prop("AdjacentZnRef", "OtherSideZnRef"); adj != "" {
		if zoneID, ok := p.zoneIDs[adj]; ok {
			s.AdjacentZone = zoneID
		} else {
			p.log.Warnf("GEO-003", id, "surface %q adjacent zone %q not found", name, adj)
		}
	}

	switch kind {
	case model.SurfaceWall:
		p.m.Geometry.Surfaces.Walls = append(p.m.Geometry.Surfaces.Walls, s)
	case model.SurfaceRoof:
		p.m.Geometry.Surfaces.Roofs = append(p.m.Geometry.Surfaces.Roofs, s)
	case model.SurfaceFloor:
		p.m.Geometry.Surfaces.Floors = append(p.m.Geometry.Surfaces.Floors, s)
	}
	p.surfaceNodes = append(p.surfaceNodes, surfaceNode{node: el, surface: s})
}

func (p *parser) parseAzimuth(el *xmltree.Node, source string) float64 {
	if v, ok := el.PropFloat("Az", "Azimuth"); ok {
		return v
	}
	if word := el.Prop("Az", "Azimuth", "Orientation"); word != "" {
		if v, ok := p.tables.OrientationAzimuth[word]; ok {
			return v
		}
		p.log.Warnf("GEO-003", source, "unrecognized azimuth %q, assuming 0", word)
	}
	return 0
}

func (p *parser) parseOpenings(root *xmltree.Node) {
	for _, sn := range p.surfaceNodes {
		for _, tag := range p.tables.openingTagList() {
			for _, el := range sn.node.AllChildren(tag) {
				p.parseOpening(el, tag, sn.surface)
			}
		}
	}
}

func (p *parser) parseOpening(el *xmltree.Node, tag string, host *model.Surface) {
	kind := p.tables.OpeningTags[tag]
	name := el.Name()
	id := p.reg.Allocate(idreg.PrefixOpening, name, host.ID)

	o := &model.Opening{
		ID:      id,
		Name:    name,
		Kind:    kind,
		Surface: host.ID,
	}
	if v, ok := el.PropFloat("Hgt", "Height"); ok {
		o.Height = units.MustIPToSI(v, units.KindLength)
	}
	if v, ok := el.PropFloat("Wdth", "Width"); ok {
		o.Width = units.MustIPToSI(v, units.KindLength)
	}

	areaIP, ok := el.PropFloat("Area")
	switch {
	case ok && areaIP > 0:
		o.Area = units.MustIPToSI(areaIP, units.KindArea)
	case o.Height > 0 && o.Width > 0:
		o.Area = o.Height * o.Width
	default:
		p.log.Errorf("GEO-002", id, "opening %q has no positive area and was excluded", name)
		return
	}

	if ref := el.Prop("WinTypeRef", "WindowTypeRef"); ref != "" {
		if wtID, ok := p.winTypeIDs[ref]; ok {
			o.WindowType = wtID
		} else {
			p.log.Warnf("GEO-004", id, "opening %q references unknown window type %q", name, ref)
		}
	}
	if v, ok := el.PropFloat("UFactor", "NFRCUfactor"); ok {
		o.UFactor = units.MustIPToSI(v, units.KindUFactor)
	}
	if v, ok := el.PropFloat("SHGC", "NFRCSHGC"); ok {
		o.SHGC = v
	}
	if v, ok := el.PropFloat("VT", "NFRCVT"); ok {
		o.VT = v
	}

	switch kind {
	case model.OpeningWindow:
		p.m.Geometry.Openings.Windows = append(p.m.Geometry.Openings.Windows, o)
	case model.OpeningDoor:
		p.m.Geometry.Openings.Doors = append(p.m.Geometry.Openings.Doors, o)
	case model.OpeningSkylight:
		p.m.Geometry.Openings.Skylights = append(p.m.Geometry.Openings.Skylights, o)
	}
}
