// Package hbjson is a read-only adapter from the Honeybee Model JSON
// schema to the EMJSON v6 model. Rooms become zones, faces become
// surfaces, and apertures/doors become openings; face areas come from
// the 3D boundary polygons since HBJSON carries geometry, not areas.
package hbjson

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/emtools/cbecc-translate/internal/idreg"
	"github.com/emtools/cbecc-translate/internal/logging"
	"github.com/emtools/cbecc-translate/internal/model"
)

// Honeybee geometry is already metric when units is "Meters" (the
// schema default); other unit systems scale linearly.
var unitScale = map[string]float64{
	"Meters":      1,
	"Millimeters": 0.001,
	"Centimeters": 0.01,
	"Feet":        0.3048,
	"Inches":      0.0254,
}

type hbModel struct {
	Type        string   `json:"type"`
	Identifier  string   `json:"identifier"`
	DisplayName string   `json:"display_name"`
	Units       string   `json:"units"`
	Rooms       []hbRoom `json:"rooms"`
}

type hbRoom struct {
	Identifier  string   `json:"identifier"`
	DisplayName string   `json:"display_name"`
	Multiplier  int      `json:"multiplier"`
	Faces       []hbFace `json:"faces"`
}

type hbFace struct {
	Identifier  string       `json:"identifier"`
	DisplayName string       `json:"display_name"`
	FaceType    string       `json:"face_type"`
	Boundary    hbBC         `json:"boundary_condition"`
	Geometry    hbGeometry   `json:"geometry"`
	Apertures   []hbAperture `json:"apertures"`
	Doors       []hbAperture `json:"doors"`
}

type hbBC struct {
	Type string `json:"type"`
}

type hbGeometry struct {
	Boundary [][]float64 `json:"boundary"`
}

type hbAperture struct {
	Identifier  string     `json:"identifier"`
	DisplayName string     `json:"display_name"`
	Geometry    hbGeometry `json:"geometry"`
}

// PolygonArea computes the area of a 3D polygon by Newell's method.
// Degenerate polygons (fewer than three vertices) have zero area.
func PolygonArea(vertices [][]float64) float64 {
	if len(vertices) < 3 {
		return 0
	}
	var nx, ny, nz float64
	n := len(vertices)
	for i := 0; i < n; i++ {
		v1 := vertices[i]
		v2 := vertices[(i+1)%n]
		if len(v1) < 3 || len(v2) < 3 {
			return 0
		}
		nx += (v1[1] - v2[1]) * (v1[2] + v2[2])
		ny += (v1[2] - v2[2]) * (v1[0] + v2[0])
		nz += (v1[0] - v2[0]) * (v1[1] + v2[1])
	}
	return math.Sqrt(nx*nx+ny*ny+nz*nz) / 2
}

// Importer reads HBJSON files into EMJSON models.
type Importer struct {
	log *logging.Logger
}

// NewImporter builds an HBJSON importer.
func NewImporter(log *logging.Logger) *Importer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Importer{log: log}
}

// Translate reads a Honeybee Model JSON file and produces an EMJSON
// model. Degenerate faces are excluded with diagnostics; only
// unreadable or undecodable input returns an error.
func (im *Importer) Translate(path string) (*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	m, err := im.TranslateBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Metadata.SourceFile = path
	return m, nil
}

// TranslateBytes converts raw Honeybee Model JSON content.
func (im *Importer) TranslateBytes(data []byte) (*model.Model, error) {
	var hb hbModel
	if err := json.Unmarshal(data, &hb); err != nil {
		return nil, fmt.Errorf("decode hbjson: %w", err)
	}
	if hb.Type != "" && hb.Type != "Model" {
		return nil, fmt.Errorf("top-level type %q is not a Honeybee Model", hb.Type)
	}
	return im.convert(&hb), nil
}

func (im *Importer) convert(hb *hbModel) *model.Model {
	m := model.New()
	reg := idreg.New()
	var diag model.Log

	scale, ok := unitScale[hb.Units]
	if !ok {
		scale = 1
		if hb.Units != "" {
			diag.Warnf("FMT-002", "", "unknown HBJSON unit system %q, assuming meters", hb.Units)
		}
	}
	areaScale := scale * scale

	name := hb.DisplayName
	if name == "" {
		name = hb.Identifier
	}
	m.Project.Name = name

	for _, room := range hb.Rooms {
		im.convertRoom(m, reg, &diag, room, areaScale)
	}

	if entries := diag.Entries(); entries != nil {
		m.Diagnostics = entries
	}
	snap := reg.Snapshot()
	m.Metadata.IDRegistry = &snap
	m.Metadata.RunID = uuid.NewString()
	m.Metadata.SourceFormat = "HBJSON"
	m.Metadata.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	im.log.Info("hbjson converted",
		"zones", len(m.Geometry.Zones),
		"surfaces", len(m.Geometry.Surfaces.All()),
		"openings", len(m.Geometry.Openings.All()))
	return m
}

func displayName(display, identifier string) string {
	if display != "" {
		return display
	}
	return identifier
}

func (im *Importer) convertRoom(m *model.Model, reg *idreg.Registry, diag *model.Log, room hbRoom, areaScale float64) {
	zone := &model.Zone{
		ID:         reg.Allocate(idreg.PrefixZone, room.Identifier, "bldg"),
		Name:       displayName(room.DisplayName, room.Identifier),
		Kind:       model.ZoneRes,
		Multiplier: 1,
	}
	if room.Multiplier > 1 {
		zone.Multiplier = room.Multiplier
	}

	// Zone floor area is the sum of its floor faces.
	for _, face := range room.Faces {
		if face.FaceType == "Floor" {
			zone.FloorArea += PolygonArea(face.Geometry.Boundary) * areaScale
		}
	}
	m.Geometry.Zones = append(m.Geometry.Zones, zone)

	for _, face := range room.Faces {
		im.convertFace(m, reg, diag, zone, face, areaScale)
	}
}

func faceKind(faceType string) string {
	switch faceType {
	case "RoofCeiling", "Roof":
		return model.SurfaceRoof
	case "Floor":
		return model.SurfaceFloor
	default:
		return model.SurfaceWall
	}
}

func faceBoundary(bc string) string {
	switch bc {
	case "Ground":
		return model.BoundaryGround
	case "Surface", "Adiabatic":
		return model.BoundaryInterior
	default:
		return model.BoundaryExterior
	}
}

func (im *Importer) convertFace(m *model.Model, reg *idreg.Registry, diag *model.Log, zone *model.Zone, face hbFace, areaScale float64) {
	id := reg.Allocate(idreg.PrefixSurface, face.Identifier, zone.ID)
	area := PolygonArea(face.Geometry.Boundary) * areaScale
	if area <= 0 {
		diag.Errorf("GEO-002", id, "face %q has degenerate geometry and was excluded", face.Identifier)
		return
	}

	kind := faceKind(face.FaceType)
	s := &model.Surface{
		ID:       id,
		Name:     displayName(face.DisplayName, face.Identifier),
		Kind:     kind,
		Zone:     zone.ID,
		Area:     area,
		Boundary: faceBoundary(face.Boundary.Type),
	}
	switch kind {
	case model.SurfaceWall:
		s.Tilt = 90
		m.Geometry.Surfaces.Walls = append(m.Geometry.Surfaces.Walls, s)
	case model.SurfaceRoof:
		m.Geometry.Surfaces.Roofs = append(m.Geometry.Surfaces.Roofs, s)
	case model.SurfaceFloor:
		s.Tilt = 180
		m.Geometry.Surfaces.Floors = append(m.Geometry.Surfaces.Floors, s)
	}

	for _, ap := range face.Apertures {
		im.convertOpening(m, reg, diag, s, ap, openingKindFor(kind), areaScale)
	}
	for _, door := range face.Doors {
		im.convertOpening(m, reg, diag, s, door, model.OpeningDoor, areaScale)
	}
}

// openingKindFor classifies an aperture by its host: apertures in
// roofs are skylights, everything else is a window.
func openingKindFor(surfaceKind string) string {
	if surfaceKind == model.SurfaceRoof {
		return model.OpeningSkylight
	}
	return model.OpeningWindow
}

func (im *Importer) convertOpening(m *model.Model, reg *idreg.Registry, diag *model.Log, host *model.Surface, ap hbAperture, kind string, areaScale float64) {
	id := reg.Allocate(idreg.PrefixOpening, ap.Identifier, host.ID)
	area := PolygonArea(ap.Geometry.Boundary) * areaScale
	if area <= 0 {
		diag.Errorf("GEO-002", id, "aperture %q has degenerate geometry and was excluded", ap.Identifier)
		return
	}

	o := &model.Opening{
		ID:      id,
		Name:    displayName(ap.DisplayName, ap.Identifier),
		Kind:    kind,
		Surface: host.ID,
		Area:    area,
	}
	switch kind {
	case model.OpeningDoor:
		m.Geometry.Openings.Doors = append(m.Geometry.Openings.Doors, o)
	case model.OpeningSkylight:
		m.Geometry.Openings.Skylights = append(m.Geometry.Openings.Skylights, o)
	default:
		m.Geometry.Openings.Windows = append(m.Geometry.Openings.Windows, o)
	}
}
