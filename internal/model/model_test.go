package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModel() *Model {
	m := New()
	m.Project.Name = "Sample House"
	m.Catalogs.Materials = append(m.Catalogs.Materials, &Material{ID: "mat-gypsum", Name: "Gypsum Board"})
	m.Catalogs.Constructions = append(m.Catalogs.Constructions, &Construction{
		ID: "cons-r21-wall", Name: "R-21 Wall", Layers: []string{"mat-gypsum"},
	})
	m.Catalogs.WindowTypes = append(m.Catalogs.WindowTypes, &WindowType{
		ID: "win-type-default", Name: "Default", UFactor: 1.704, SHGC: 0.35,
	})
	m.Geometry.Zones = append(m.Geometry.Zones, &Zone{
		ID: "zone-unit-101", Name: "Unit 101", Kind: ZoneRes,
		FloorArea: 78.967584, Multiplier: 1,
	})
	m.Geometry.Surfaces.Walls = append(m.Geometry.Surfaces.Walls, &Surface{
		ID: "surf-front-wall", Name: "Front Wall", Kind: SurfaceWall,
		Zone: "zone-unit-101", Area: 11.148, Azimuth: 180, Tilt: 90,
		Boundary: BoundaryExterior, Construction: "cons-r21-wall",
	})
	m.Geometry.Openings.Windows = append(m.Geometry.Openings.Windows, &Opening{
		ID: "open-front-window", Name: "Front Window", Kind: OpeningWindow,
		Surface: "surf-front-wall", Area: 1.858, WindowType: "win-type-default",
	})
	m.Systems.HVAC = append(m.Systems.HVAC, &HVACSystem{
		ID: "hvac-system-1", Name: "System 1", Type: "SplitHeatPump",
		Zones: []string{"zone-unit-101"},
	})
	return m
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := sampleModel()
	m.Metadata.RunID = "test-run"

	data, err := Encode(m)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, m.Project.Name, back.Project.Name)
	require.Len(t, back.Geometry.Zones, 1)
	assert.Equal(t, "zone-unit-101", back.Geometry.Zones[0].ID)
	assert.InDelta(t, 78.967584, back.Geometry.Zones[0].FloorArea, 1e-9)
	assert.Equal(t, "test-run", back.Metadata.RunID)
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	_, err := Decode([]byte(`{"emjson_version":"5.0"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emjson_version")
}

func TestEncodeDeterministic(t *testing.T) {
	m := sampleModel()
	m.Geometry.Zones[0].Annotations = map[string]string{"b": "2", "a": "1", "c": "3"}

	first, err := Encode(m)
	require.NoError(t, err)
	second, err := Encode(m)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Write(path, sampleModel()))

	back, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, Version, back.Version)
	assert.Equal(t, "Sample House", back.Project.Name)
}

func TestValidateCleanModel(t *testing.T) {
	diags := Validate(sampleModel())
	assert.Empty(t, diags)
}

func TestValidateDanglingReferences(t *testing.T) {
	m := sampleModel()
	m.Geometry.Surfaces.Walls[0].Zone = "zone-missing"
	m.Geometry.Openings.Windows[0].WindowType = "win-type-missing"
	m.Systems.HVAC[0].Zones = []string{"zone-missing"}

	diags := Validate(m)
	codes := make(map[string]int)
	for _, d := range diags {
		codes[d.Code]++
	}
	assert.Equal(t, 1, codes["VAL-003"])
	assert.Equal(t, 1, codes["VAL-007"])
	assert.Equal(t, 1, codes["VAL-008"])
}

func TestValidateDuplicateIDs(t *testing.T) {
	m := sampleModel()
	m.Geometry.Zones = append(m.Geometry.Zones, &Zone{
		ID: "zone-unit-101", Name: "Copy", Kind: ZoneRes, Multiplier: 1,
	})

	diags := Validate(m)
	var found bool
	for _, d := range diags {
		if d.Code == "VAL-002" {
			found = true
		}
	}
	assert.True(t, found, "expected VAL-002 for duplicate zone id")
}

func TestValidateFieldConstraints(t *testing.T) {
	m := sampleModel()
	m.Geometry.Surfaces.Walls[0].Tilt = 250 // outside 0..180

	diags := Validate(m)
	var found bool
	for _, d := range diags {
		if d.Code == "VAL-001" {
			found = true
		}
	}
	assert.True(t, found, "expected VAL-001 for out-of-range tilt")
}

func TestDiagnosticLog(t *testing.T) {
	var log Log
	log.Infof("GEO-005", "zone-a", "floor area taken from DU type %q", "du-type-1")
	log.Errorf("GEO-002", "surf-b", "non-positive area %g", -4.0)

	require.Len(t, log.Entries(), 2)
	assert.True(t, log.HasErrors())
	assert.Equal(t, LevelInfo, log.Entries()[0].Level)
	assert.Contains(t, log.Entries()[1].String(), "GEO-002")
}
