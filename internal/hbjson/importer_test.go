package hbjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emtools/cbecc-translate/internal/logging"
	"github.com/emtools/cbecc-translate/internal/model"
)

const sampleHB = `{
  "type": "Model",
  "identifier": "sample_model",
  "display_name": "Sample Model",
  "units": "Meters",
  "rooms": [
    {
      "identifier": "room_1",
      "display_name": "Room 1",
      "faces": [
        {
          "identifier": "room_1_floor",
          "face_type": "Floor",
          "boundary_condition": {"type": "Ground"},
          "geometry": {"boundary": [[0,0,0],[10,0,0],[10,10,0],[0,10,0]]}
        },
        {
          "identifier": "room_1_wall_s",
          "face_type": "Wall",
          "boundary_condition": {"type": "Outdoors"},
          "geometry": {"boundary": [[0,0,0],[10,0,0],[10,0,3],[0,0,3]]},
          "apertures": [
            {
              "identifier": "room_1_win_1",
              "geometry": {"boundary": [[1,0,1],[3,0,1],[3,0,2.5],[1,0,2.5]]}
            }
          ]
        },
        {
          "identifier": "room_1_roof",
          "face_type": "RoofCeiling",
          "boundary_condition": {"type": "Outdoors"},
          "geometry": {"boundary": [[0,0,3],[10,0,3],[10,10,3],[0,10,3]]},
          "apertures": [
            {
              "identifier": "room_1_sky_1",
              "geometry": {"boundary": [[4,4,3],[6,4,3],[6,6,3],[4,6,3]]}
            }
          ]
        },
        {
          "identifier": "room_1_degenerate",
          "face_type": "Wall",
          "boundary_condition": {"type": "Outdoors"},
          "geometry": {"boundary": [[0,0,0],[1,0,0]]}
        }
      ]
    }
  ]
}`

func TestPolygonArea(t *testing.T) {
	square := [][]float64{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}, {0, 10, 0}}
	assert.InDelta(t, 100.0, PolygonArea(square), 1e-9)

	vertical := [][]float64{{0, 0, 0}, {10, 0, 0}, {10, 0, 3}, {0, 0, 3}}
	assert.InDelta(t, 30.0, PolygonArea(vertical), 1e-9)

	assert.Equal(t, 0.0, PolygonArea([][]float64{{0, 0, 0}, {1, 0, 0}}))
}

func TestTranslateModel(t *testing.T) {
	im := NewImporter(logging.NewNop())
	m, err := im.TranslateBytes([]byte(sampleHB))
	require.NoError(t, err)

	assert.Equal(t, "Sample Model", m.Project.Name)
	assert.Equal(t, "HBJSON", m.Metadata.SourceFormat)

	require.Len(t, m.Geometry.Zones, 1)
	zone := m.Geometry.Zones[0]
	assert.Equal(t, "Room 1", zone.Name)
	assert.InDelta(t, 100.0, zone.FloorArea, 1e-9)

	// Degenerate wall is excluded; the good wall, roof, and floor remain.
	require.Len(t, m.Geometry.Surfaces.Walls, 1)
	require.Len(t, m.Geometry.Surfaces.Roofs, 1)
	require.Len(t, m.Geometry.Surfaces.Floors, 1)
	assert.InDelta(t, 30.0, m.Geometry.Surfaces.Walls[0].Area, 1e-9)
	assert.Equal(t, model.BoundaryGround, m.Geometry.Surfaces.Floors[0].Boundary)

	// Wall aperture is a window; roof aperture is a skylight.
	require.Len(t, m.Geometry.Openings.Windows, 1)
	require.Len(t, m.Geometry.Openings.Skylights, 1)
	assert.InDelta(t, 3.0, m.Geometry.Openings.Windows[0].Area, 1e-9)
	assert.Equal(t, m.Geometry.Surfaces.Walls[0].ID, m.Geometry.Openings.Windows[0].Surface)

	var degenerate bool
	for _, d := range m.Diagnostics {
		if d.Code == "GEO-002" {
			degenerate = true
		}
	}
	assert.True(t, degenerate, "expected GEO-002 for the degenerate face")

	// The result passes model validation.
	assert.Empty(t, model.Validate(m))
}

func TestTranslateRejectsNonModel(t *testing.T) {
	im := NewImporter(nil)
	_, err := im.TranslateBytes([]byte(`{"type": "SensorGrid"}`))
	require.Error(t, err)
}

func TestUnknownUnitsWarn(t *testing.T) {
	im := NewImporter(nil)
	m, err := im.TranslateBytes([]byte(`{"type":"Model","units":"Furlongs","rooms":[]}`))
	require.NoError(t, err)
	require.Len(t, m.Diagnostics, 1)
	assert.Equal(t, "FMT-002", m.Diagnostics[0].Code)
}
