// Package model defines the EMJSON v6 energy-model document and its
// validation rules. All numeric quantities are SI: areas in m²,
// volumes in m³, lengths in m, U-factors in W/m²K, R-values in m²K/W,
// power in W.
package model

import "github.com/emtools/cbecc-translate/internal/idreg"

// Version is the emjson_version written to every document.
const Version = "6.0"

// Model is a complete EMJSON v6 document.
type Model struct {
	Version     string       `json:"emjson_version" validate:"required"`
	Project     Project      `json:"project"`
	Geometry    Geometry     `json:"geometry"`
	Catalogs    Catalogs     `json:"catalogs"`
	Systems     Systems      `json:"systems"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Metadata    Metadata     `json:"metadata"`
}

// New returns an empty model with the current version and non-nil
// collections, so serialized documents carry [] instead of null.
func New() *Model {
	return &Model{
		Version: Version,
		Geometry: Geometry{
			Zones:      []*Zone{},
			ZoneGroups: []*ZoneGroup{},
			Surfaces:   SurfaceSet{Walls: []*Surface{}, Roofs: []*Surface{}, Floors: []*Surface{}},
			Openings:   OpeningSet{Windows: []*Opening{}, Doors: []*Opening{}, Skylights: []*Opening{}},
		},
		Catalogs: Catalogs{
			Materials:     []*Material{},
			Constructions: []*Construction{},
			WindowTypes:   []*WindowType{},
			DUTypes:       []*DUType{},
			PVArrays:      []*PVArray{},
		},
		Systems: Systems{
			HVAC:    []*HVACSystem{},
			DHW:     []*DHWSystem{},
			IAQFans: []*IAQFan{},
		},
		Diagnostics: []Diagnostic{},
	}
}

// Project carries document-level identification and siting.
type Project struct {
	Name        string            `json:"name"`
	Location    *Location         `json:"location,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Location is the project siting record.
type Location struct {
	ClimateZone string            `json:"climate_zone,omitempty"`
	City        string            `json:"city,omitempty"`
	Elevation   float64           `json:"elevation_m,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Geometry groups the building's spatial objects.
type Geometry struct {
	ZoneGroups []*ZoneGroup `json:"zone_groups"`
	Zones      []*Zone      `json:"zones"`
	Surfaces   SurfaceSet   `json:"surfaces"`
	Openings   OpeningSet   `json:"openings"`
}

// SurfaceSet buckets surfaces by kind.
type SurfaceSet struct {
	Walls  []*Surface `json:"walls"`
	Roofs  []*Surface `json:"roofs"`
	Floors []*Surface `json:"floors"`
}

// All returns every surface in document order: walls, roofs, floors.
func (s *SurfaceSet) All() []*Surface {
	out := make([]*Surface, 0, len(s.Walls)+len(s.Roofs)+len(s.Floors))
	out = append(out, s.Walls...)
	out = append(out, s.Roofs...)
	out = append(out, s.Floors...)
	return out
}

// OpeningSet buckets openings by kind.
type OpeningSet struct {
	Windows   []*Opening `json:"windows"`
	Doors     []*Opening `json:"doors"`
	Skylights []*Opening `json:"skylights"`
}

// All returns every opening in document order: windows, doors, skylights.
func (o *OpeningSet) All() []*Opening {
	out := make([]*Opening, 0, len(o.Windows)+len(o.Doors)+len(o.Skylights))
	out = append(out, o.Windows...)
	out = append(out, o.Doors...)
	out = append(out, o.Skylights...)
	return out
}

// ZoneGroup is a story-level grouping of zones.
type ZoneGroup struct {
	ID             string            `json:"id" validate:"required"`
	Name           string            `json:"name"`
	FloorToFloorHt float64           `json:"floor_to_floor_m,omitempty"`
	Annotations    map[string]string `json:"annotations,omitempty"`
}

// Zone kinds.
const (
	ZoneRes   = "residential"
	ZoneCom   = "commercial"
	ZoneOther = "other"
)

// Zone is a thermal zone.
type Zone struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	Kind        string            `json:"kind" validate:"oneof=residential commercial other"`
	ZoneGroup   string            `json:"zone_group,omitempty"`
	FloorArea   float64           `json:"floor_area_m2" validate:"gte=0"`
	Volume      float64           `json:"volume_m3,omitempty" validate:"gte=0"`
	Multiplier  int               `json:"multiplier" validate:"gte=1"`
	DUTypeRef   string            `json:"du_type,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Surface kinds.
const (
	SurfaceWall  = "wall"
	SurfaceRoof  = "roof"
	SurfaceFloor = "floor"
)

// Boundary conditions.
const (
	BoundaryExterior = "exterior"
	BoundaryInterior = "interior"
	BoundaryGround   = "ground"
)

// Surface is an opaque envelope surface.
type Surface struct {
	ID           string            `json:"id" validate:"required"`
	Name         string            `json:"name"`
	Kind         string            `json:"kind" validate:"oneof=wall roof floor"`
	Zone         string            `json:"zone" validate:"required"`
	Area         float64           `json:"area_m2" validate:"gt=0"`
	Azimuth      float64           `json:"azimuth_deg" validate:"gte=0,lte=360"`
	Tilt         float64           `json:"tilt_deg" validate:"gte=0,lte=180"`
	Boundary     string            `json:"boundary" validate:"oneof=exterior interior ground"`
	Construction string            `json:"construction,omitempty"`
	AdjacentZone string            `json:"adjacent_zone,omitempty"`
	Annotations  map[string]string `json:"annotations,omitempty"`
}

// Opening kinds.
const (
	OpeningWindow   = "window"
	OpeningDoor     = "door"
	OpeningSkylight = "skylight"
)

// Opening is a window, door, or skylight hosted by a surface.
type Opening struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	Kind        string            `json:"kind" validate:"oneof=window door skylight"`
	Surface     string            `json:"surface" validate:"required"`
	Area        float64           `json:"area_m2" validate:"gt=0"`
	Height      float64           `json:"height_m,omitempty" validate:"gte=0"`
	Width       float64           `json:"width_m,omitempty" validate:"gte=0"`
	WindowType  string            `json:"window_type,omitempty"`
	UFactor     float64           `json:"u_factor_w_m2k,omitempty" validate:"gte=0"`
	SHGC        float64           `json:"shgc,omitempty" validate:"gte=0,lte=1"`
	VT          float64           `json:"vt,omitempty" validate:"gte=0,lte=1"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Catalogs holds the reusable type definitions referenced by geometry
// and systems.
type Catalogs struct {
	Materials     []*Material     `json:"materials"`
	Constructions []*Construction `json:"constructions"`
	WindowTypes   []*WindowType   `json:"window_types"`
	DUTypes       []*DUType       `json:"du_types"`
	PVArrays      []*PVArray      `json:"pv_arrays"`
}

// Material is a catalog material layer.
type Material struct {
	ID           string            `json:"id" validate:"required"`
	Name         string            `json:"name"`
	Thickness    float64           `json:"thickness_m,omitempty" validate:"gte=0"`
	Conductivity float64           `json:"conductivity_w_mk,omitempty" validate:"gte=0"`
	RValue       float64           `json:"r_value_m2k_w,omitempty" validate:"gte=0"`
	Annotations  map[string]string `json:"annotations,omitempty"`
}

// Construction is an ordered stack of material layers.
type Construction struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	Layers      []string          `json:"layers"`
	UFactor     float64           `json:"u_factor_w_m2k,omitempty" validate:"gte=0"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// WindowType is a catalog fenestration definition.
type WindowType struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	UFactor     float64           `json:"u_factor_w_m2k" validate:"gte=0"`
	SHGC        float64           `json:"shgc" validate:"gte=0,lte=1"`
	VT          float64           `json:"vt,omitempty" validate:"gte=0,lte=1"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// DUType is a dwelling-unit type definition.
type DUType struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	FloorArea   float64           `json:"floor_area_m2,omitempty" validate:"gte=0"`
	Bedrooms    int               `json:"bedrooms,omitempty" validate:"gte=0"`
	Count       int               `json:"count,omitempty" validate:"gte=0"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// PVArray is a photovoltaic array definition.
type PVArray struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	PowerW      float64           `json:"power_w,omitempty" validate:"gte=0"`
	Azimuth     float64           `json:"azimuth_deg,omitempty" validate:"gte=0,lte=360"`
	Tilt        float64           `json:"tilt_deg,omitempty" validate:"gte=0,lte=180"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Systems groups the building's mechanical systems.
type Systems struct {
	HVAC    []*HVACSystem `json:"hvac"`
	DHW     []*DHWSystem  `json:"dhw"`
	IAQFans []*IAQFan     `json:"iaq_fans"`
}

// HVACSystem is a heating/cooling system serving one or more zones.
type HVACSystem struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	Type        string            `json:"type,omitempty"`
	Zones       []string          `json:"zones"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// DHWSystem is a domestic hot water system.
type DHWSystem struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	Type        string            `json:"type,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// IAQFan is a ventilation fan record.
type IAQFan struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	FlowCFM     float64           `json:"flow_cfm,omitempty" validate:"gte=0"`
	PowerW      float64           `json:"power_w,omitempty" validate:"gte=0"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Metadata records translation provenance.
type Metadata struct {
	RunID        string          `json:"run_id,omitempty"`
	SourceFormat string          `json:"source_format,omitempty"`
	SourceFile   string          `json:"source_file,omitempty"`
	GeneratedAt  string          `json:"generated_at,omitempty"`
	IDRegistry   *idreg.Snapshot `json:"id_registry,omitempty"`
}
