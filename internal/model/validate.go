package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a model and returns VAL diagnostics. Struct-level
// constraints (required fields, ranges, enums) come from validator
// tags; referential integrity between sections is checked here.
//
//	VAL-001  field constraint violation
//	VAL-002  duplicate object ID
//	VAL-003  surface references unknown zone
//	VAL-004  opening references unknown surface
//	VAL-005  surface references unknown construction
//	VAL-006  construction references unknown material
//	VAL-007  opening references unknown window type
//	VAL-008  system references unknown zone
//	VAL-009  zone references unknown group or DU type
func Validate(m *Model) []Diagnostic {
	var log Log

	validateStructs(m, &log)

	ids := make(map[string]string) // id -> section
	claim := func(id, section string) {
		if id == "" {
			return
		}
		if prev, ok := ids[id]; ok {
			log.Errorf("VAL-002", id, "duplicate id %q (%s and %s)", id, prev, section)
			return
		}
		ids[id] = section
	}

	groups := make(map[string]bool)
	for _, g := range m.Geometry.ZoneGroups {
		claim(g.ID, "zone_groups")
		groups[g.ID] = true
	}
	duTypes := make(map[string]bool)
	for _, d := range m.Catalogs.DUTypes {
		claim(d.ID, "du_types")
		duTypes[d.ID] = true
	}
	materials := make(map[string]bool)
	for _, mat := range m.Catalogs.Materials {
		claim(mat.ID, "materials")
		materials[mat.ID] = true
	}
	constructions := make(map[string]bool)
	for _, c := range m.Catalogs.Constructions {
		claim(c.ID, "constructions")
		constructions[c.ID] = true
		for _, layer := range c.Layers {
			if !materials[layer] {
				log.Errorf("VAL-006", c.ID, "construction %q references unknown material %q", c.ID, layer)
			}
		}
	}
	windowTypes := make(map[string]bool)
	for _, w := range m.Catalogs.WindowTypes {
		claim(w.ID, "window_types")
		windowTypes[w.ID] = true
	}
	for _, p := range m.Catalogs.PVArrays {
		claim(p.ID, "pv_arrays")
	}

	zones := make(map[string]bool)
	for _, z := range m.Geometry.Zones {
		claim(z.ID, "zones")
		zones[z.ID] = true
		if z.ZoneGroup != "" && !groups[z.ZoneGroup] {
			log.Errorf("VAL-009", z.ID, "zone %q references unknown group %q", z.ID, z.ZoneGroup)
		}
		if z.DUTypeRef != "" && !duTypes[z.DUTypeRef] {
			log.Errorf("VAL-009", z.ID, "zone %q references unknown DU type %q", z.ID, z.DUTypeRef)
		}
	}

	surfaces := make(map[string]bool)
	for _, s := range m.Geometry.Surfaces.All() {
		claim(s.ID, "surfaces")
		surfaces[s.ID] = true
		if !zones[s.Zone] {
			log.Errorf("VAL-003", s.ID, "surface %q references unknown zone %q", s.ID, s.Zone)
		}
		if s.AdjacentZone != "" && !zones[s.AdjacentZone] {
			log.Errorf("VAL-003", s.ID, "surface %q references unknown adjacent zone %q", s.ID, s.AdjacentZone)
		}
		if s.Construction != "" && !constructions[s.Construction] {
			log.Errorf("VAL-005", s.ID, "surface %q references unknown construction %q", s.ID, s.Construction)
		}
	}

	for _, o := range m.Geometry.Openings.All() {
		claim(o.ID, "openings")
		if !surfaces[o.Surface] {
			log.Errorf("VAL-004", o.ID, "opening %q references unknown surface %q", o.ID, o.Surface)
		}
		if o.WindowType != "" && !windowTypes[o.WindowType] {
			log.Errorf("VAL-007", o.ID, "opening %q references unknown window type %q", o.ID, o.WindowType)
		}
	}

	for _, h := range m.Systems.HVAC {
		claim(h.ID, "hvac")
		for _, z := range h.Zones {
			if !zones[z] {
				log.Errorf("VAL-008", h.ID, "hvac system %q references unknown zone %q", h.ID, z)
			}
		}
	}
	for _, d := range m.Systems.DHW {
		claim(d.ID, "dhw")
	}
	for _, f := range m.Systems.IAQFans {
		claim(f.ID, "iaq_fans")
	}

	return log.Entries()
}

// validateStructs applies the tag constraints. The validator does not
// descend into slice elements on its own, so each collection entry is
// checked individually with its ID as the diagnostic source.
func validateStructs(m *Model, log *Log) {
	if m.Version == "" {
		log.Errorf("VAL-001", "", "emjson_version is required")
	}

	check := func(source string, v any) {
		err := structValidator.Struct(v)
		if err == nil {
			return
		}
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			log.Errorf("VAL-001", source, "validation failed: %v", err)
			return
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				log.Errorf("VAL-001", source,
					"field %s fails %q (value %s)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value()))
			}
		}
	}

	for _, g := range m.Geometry.ZoneGroups {
		check(g.ID, g)
	}
	for _, z := range m.Geometry.Zones {
		check(z.ID, z)
	}
	for _, s := range m.Geometry.Surfaces.All() {
		check(s.ID, s)
	}
	for _, o := range m.Geometry.Openings.All() {
		check(o.ID, o)
	}
	for _, mat := range m.Catalogs.Materials {
		check(mat.ID, mat)
	}
	for _, c := range m.Catalogs.Constructions {
		check(c.ID, c)
	}
	for _, w := range m.Catalogs.WindowTypes {
		check(w.ID, w)
	}
	for _, d := range m.Catalogs.DUTypes {
		check(d.ID, d)
	}
	for _, p := range m.Catalogs.PVArrays {
		check(p.ID, p)
	}
	for _, h := range m.Systems.HVAC {
		check(h.ID, h)
	}
	for _, d := range m.Systems.DHW {
		check(d.ID, d)
	}
	for _, f := range m.Systems.IAQFans {
		check(f.ID, f)
	}
}
