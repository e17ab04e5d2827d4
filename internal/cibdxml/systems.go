package cibdxml

import (
	"github.com/emtools/cbecc-translate/internal/idreg"
	"github.com/emtools/cbecc-translate/internal/model"
	"github.com/emtools/cbecc-translate/internal/xmltree"
)

// The CIBD schemas carry dozens of optional equipment attributes that
// vary by system type. They round-trip through the annotation map
// instead of typed fields; these are the known keys.
var (
	hvacAnnotationKeys = []string{
		// equipment references
		"HeatingEqpRef", "CoolingEqpRef", "DistribSysRef",
		"FanRef", "CoilRef", "AirSegRef", "TrmlUnitRef",
		// heating
		"HtgSysType", "HtgFuel", "HtgCap", "HtgEff", "HtgAFUE",
		"HtgHSPF", "HtgSSEER", "HtgEIR", "HtgCapFunTempCrvRef",
		"HtgCapFunFlowCrvRef", "HtgEIRFunTempCrvRef", "HtgEIRFunFlowCrvRef",
		// cooling
		"ClgSysType", "ClgCap", "ClgEff", "ClgSEER", "ClgEER",
		"ClgCOP", "ClgIEER", "ClgCapFunTempCrvRef", "ClgCapFunFlowCrvRef",
		"ClgEIRFunTempCrvRef", "ClgEIRFunFlowCrvRef",
		// fan and distribution
		"FanType", "FanCtrl", "FanPwr", "FanFlowCap",
		"DuctLoc", "DuctInsulRValue", "DuctLeakage",
		"SupAirflowRate", "SupAirflowMethod",
		// control
		"CtrlType", "Thermostat", "SetptHeat", "SetptCool",
		"DeadBand", "NightSetBack", "EconomizerType",
	}

	dhwAnnotationKeys = []string{
		"CentralDHWType", "DHWHeaterFuel", "DHWHeaterType", "DHWHeaterEF",
		"DHWStorageVol", "DHWStorageTankUA", "DHWPipeInsulLevel",
		"DHWPipeInsulType", "DHWPumpPower", "SolarFracSchRef", "RecircType",
	}

	iaqAnnotationKeys = []string{
		"FanCtrl", "FanCtrlMethod", "VentSysType", "FanLoc",
		"DuctLoc", "DuctInsul", "DuctSurfArea", "VentPreHtSrc",
		"VentPreCoolSrc", "RecoveryEff",
	}
)

// collectAnnotations copies the known optional attributes present on
// an element into a map, preserving only non-empty values.
func collectAnnotations(el *xmltree.Node, keys []string) map[string]string {
	ann := make(map[string]string)
	for _, key := range keys {
		if v := el.Prop(key); v != "" {
			ann[key] = v
		}
	}
	if len(ann) == 0 {
		return nil
	}
	return ann
}

// parseSystems extracts HVAC, DHW, and IAQ fan systems and binds HVAC
// systems to previously parsed zones.
func (p *parser) parseSystems(root *xmltree.Node) {
	p.parseHVAC(root)
	p.parseDHW(root)
	p.parseIAQFans(root)
}

func (p *parser) parseHVAC(root *xmltree.Node) {
	for _, el := range root.Descendants("ResHVACSys", "ComHVACSys", "HVACSys") {
		name := el.Name()
		sys := &model.HVACSystem{
			ID:          p.reg.Allocate(idreg.PrefixHVAC, name, "systems"),
			Name:        name,
			Zones:       []string{},
			Annotations: collectAnnotations(el, hvacAnnotationKeys),
		}

		sys.Type = el.Prop("Type", "SysType")
		if sys.Type == "" || sys.Type == "unknown" {
			// Infer from the equipment attributes when untyped.
			htg := sys.Annotations["HtgSysType"]
			clg := sys.Annotations["ClgSysType"]
			switch {
			case htg != "" && clg != "":
				sys.Type = htg + " + " + clg
			case htg != "":
				sys.Type = htg
			case clg != "":
				sys.Type = clg
			}
		}

		for _, zr := range el.Descendants("ZoneRef", "ZoneServed", "ServedZone", "ZnRef") {
			zname := zr.Text()
			if zname == "" {
				continue
			}
			zoneID, ok := p.zoneIDs[zname]
			if !ok {
				// The system entry survives with an empty binding so
				// callers can see the gap.
				p.log.Errorf("SYS-001", sys.ID, "hvac system %q references unknown zone %q", name, zname)
				continue
			}
			sys.Zones = append(sys.Zones, zoneID)
		}

		p.m.Systems.HVAC = append(p.m.Systems.HVAC, sys)
	}
}

func (p *parser) parseDHW(root *xmltree.Node) {
	for _, el := range root.Descendants("ResDHWSys", "DHWSys") {
		name := el.Name()
		sys := &model.DHWSystem{
			ID:          p.reg.Allocate(idreg.PrefixDHW, name, "systems"),
			Name:        name,
			Annotations: collectAnnotations(el, dhwAnnotationKeys),
		}
		sys.Type = el.Prop("Type", "SysType")
		if sys.Type == "" {
			if central := el.Prop("CentralDHWType"); central != "" {
				sys.Type = central
			}
		}
		p.m.Systems.DHW = append(p.m.Systems.DHW, sys)
	}
}

func (p *parser) parseIAQFans(root *xmltree.Node) {
	for _, el := range root.Descendants("ResIAQFan", "IAQFan") {
		name := el.Name()
		if name == "" {
			name = "IAQ Fan"
		}
		fan := &model.IAQFan{
			ID:          p.reg.Allocate(idreg.PrefixIAQFan, name, "systems"),
			Name:        name,
			Annotations: collectAnnotations(el, iaqAnnotationKeys),
		}
		if v, ok := el.PropFloat("FlowRate", "Airflow"); ok {
			fan.FlowCFM = v
		}
		if v, ok := el.PropFloat("FanPwr", "Power"); ok {
			fan.PowerW = v
		}
		p.m.Systems.IAQFans = append(p.m.Systems.IAQFans, fan)
	}
}
