package cibdxml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emtools/cbecc-translate/internal/model"
	"github.com/emtools/cbecc-translate/internal/xmltree"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<SDDXML>
  <Proj Name="Sample House" CliZn="CZ12">
    <RulesetFilename file="T24 Multifamily 2022.bin"/>
    <DwellUnitType Name="1 Bed Unit" FlrArea="850" NumBedrooms="1" Count="4"/>
    <ResMat Name="Gypsum Board" Thkns="0.5" RVal="0.45"/>
    <ResConsAssm Name="R21 Wall">
      <MatRef>Gypsum Board</MatRef>
    </ResConsAssm>
    <ResWinType Name="Default Win" UFactor="0.32" SHGC="0.25" VT="0.42"/>
    <ResPVArray Name="Roof PV" MaxPower="5" Az="180" Tilt="20"/>
    <Bldg>
      <ResZnGrp Name="Floor 1" FlrToFlrHgt="9">
        <ResZn Name="Unit 101" FlrArea="850" Volume="7650" DwellUnitTypeRef="1 Bed Unit">
          <ResExtWall Name="Front Wall" Area="400" Az="180" ConsAssmRef="R21 Wall">
            <ResWin Name="W1" Area="20" WinTypeRef="Default Win"/>
          </ResExtWall>
        </ResZn>
        <ResZn Name="Unit 102" DwellUnitTypeRef="1 Bed Unit"/>
      </ResZnGrp>
    </Bldg>
    <ResHVACSys Name="HVAC1" HtgSysType="Furnace" ClgSysType="SplitAC">
      <ZoneRef>Unit 101</ZoneRef>
    </ResHVACSys>
    <ResDHWSys Name="DHW1" DHWHeaterFuel="Gas"/>
    <ResIAQFan Name="Vent 1" FlowRate="110" FanPwr="35"/>
  </Proj>
</SDDXML>
`

func translateDoc(t *testing.T, doc string) *model.Model {
	t.Helper()
	root, err := xmltree.Parse([]byte(doc))
	require.NoError(t, err)
	return NewImporter(MustTables(), nil).TranslateTree(root, nil)
}

func diagCodes(diags []model.Diagnostic) map[string]int {
	codes := make(map[string]int)
	for _, d := range diags {
		codes[d.Code]++
	}
	return codes
}

// ── Detection ─────────────────────────────────────────────────────────────────

func TestDetectXMLContentWins(t *testing.T) {
	// A .cibd22 extension with XML content classifies as XML.
	info, err := Detect([]byte(sampleDoc), ".cibd22")
	require.NoError(t, err)
	assert.Equal(t, FormatCIBD22X, info.Format)
	assert.Equal(t, "2022", info.Version)
}

func TestDetectCIBD25ByRuleset(t *testing.T) {
	doc := `<SDDXML><Proj Name="P"><RulesetFilename file="T24 2025.bin"/></Proj></SDDXML>`
	info, err := Detect([]byte(doc), ".xml")
	require.NoError(t, err)
	assert.Equal(t, FormatCIBD25, info.Format)
	assert.Equal(t, "2025", info.Version)
}

func TestDetectCIBDText(t *testing.T) {
	text := "Proj \"House\"\n   ResZn \"Z1\"\n      FlrArea = 100\n      ..\n   ..\n"
	info, err := Detect([]byte(text), ".cibd22")
	require.NoError(t, err)
	assert.Equal(t, FormatCIBD22, info.Format)
}

func TestDetectBOMPrefixedXML(t *testing.T) {
	data := append([]byte("\uFEFF"), []byte(sampleDoc)...)
	info, err := Detect(data, ".xml")
	require.NoError(t, err)
	assert.Equal(t, FormatCIBD22X, info.Format)
}

func TestDetectEMJSON(t *testing.T) {
	info, err := Detect([]byte(`{"emjson_version": "6.0"}`), ".json")
	require.NoError(t, err)
	assert.Equal(t, FormatEMJSON, info.Format)
}

func TestDetectHBJSON(t *testing.T) {
	info, err := Detect([]byte(`{"type": "Model", "rooms": []}`), ".hbjson")
	require.NoError(t, err)
	assert.Equal(t, FormatHBJSON, info.Format)
}

func TestDetectUnrecognized(t *testing.T) {
	_, err := Detect([]byte("not a known format at all"), ".txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedFormat))
}

// ── Migration ─────────────────────────────────────────────────────────────────

func TestMigrateRenamesAndDrops(t *testing.T) {
	doc := `<SDDXML><Proj Name="P" CompReportPDF="x.pdf">
	  <Bldg><ResZn Name="Z"><ResExtWall Name="W" Area="100">
	    <ResWin Name="Win" Area="10" NFRCUfactor="0.3" NFRCSHGC="0.2"/>
	  </ResExtWall></ResZn></Bldg></Proj></SDDXML>`
	root, err := xmltree.Parse([]byte(doc))
	require.NoError(t, err)

	var log model.Log
	rules := MustTables().Migrations["cibd25"]
	Migrate(root, rules, &log)

	win := root.Descendants("ResWin")[0]
	assert.Equal(t, "0.3", win.Attr("UFactor"))
	assert.Equal(t, "", win.Attr("NFRCUfactor"))
	assert.Equal(t, "", root.Child("Proj").Attr("CompReportPDF"))

	codes := diagCodes(log.Entries())
	assert.Equal(t, 2, codes["MIG-001"])
	assert.Equal(t, 1, codes["MIG-002"])

	// Second run is a no-op.
	var log2 model.Log
	Migrate(root, rules, &log2)
	assert.Empty(t, log2.Entries())
	assert.Equal(t, "0.3", win.Attr("UFactor"))
}

// ── Importing ─────────────────────────────────────────────────────────────────

func TestExampleScenario(t *testing.T) {
	doc := `<SDDXML><Proj Name="P"><Bldg>
	  <ResZn Name="Unit 101" FlrArea="850">
	    <ResExtWall Name="Wall" Area="400" ConsAssmRef="Missing Assm"/>
	  </ResZn>
	</Bldg></Proj></SDDXML>`
	m := translateDoc(t, doc)

	require.Len(t, m.Geometry.Zones, 1)
	assert.InDelta(t, 78.97, m.Geometry.Zones[0].FloorArea, 0.01)
	require.Len(t, m.Geometry.Surfaces.Walls, 1)
	assert.InDelta(t, 37.16, m.Geometry.Surfaces.Walls[0].Area, 0.01)
	assert.Equal(t, "", m.Geometry.Surfaces.Walls[0].Construction)
	assert.Equal(t, 1, diagCodes(m.Diagnostics)["GEO-001"])

	// Export reproduces the source area text.
	out, _, err := NewExporter(nil).Serialize(m)
	require.NoError(t, err)
	back, err := xmltree.Parse(out)
	require.NoError(t, err)
	zn := back.Descendants("ResZn")[0]
	assert.Equal(t, "850", zn.Attr("FlrArea"))
}

func TestCatalogFirstOrdering(t *testing.T) {
	// The construction appears after the surface that references it.
	doc := `<SDDXML><Proj Name="P">
	  <Bldg><ResZn Name="Z" FlrArea="100">
	    <ResExtWall Name="W" Area="50" ConsAssmRef="Late Assm"/>
	  </ResZn></Bldg>
	  <ResConsAssm Name="Late Assm"/>
	</Proj></SDDXML>`
	m := translateDoc(t, doc)

	require.Len(t, m.Geometry.Surfaces.Walls, 1)
	assert.NotEmpty(t, m.Geometry.Surfaces.Walls[0].Construction)
	assert.Zero(t, diagCodes(m.Diagnostics)["GEO-001"])
}

func TestNegativeAreaExcluded(t *testing.T) {
	doc := `<SDDXML><Proj Name="P"><Bldg><ResZn Name="Z" FlrArea="100">
	  <ResExtWall Name="Bad" Area="-5"/>
	  <ResExtWall Name="Good" Area="120"/>
	</ResZn></Bldg></Proj></SDDXML>`
	m := translateDoc(t, doc)

	require.Len(t, m.Geometry.Surfaces.Walls, 1)
	assert.Equal(t, "Good", m.Geometry.Surfaces.Walls[0].Name)
	assert.Equal(t, 1, diagCodes(m.Diagnostics)["GEO-002"])
}

func TestUnknownBoundaryCodeDefaultsExterior(t *testing.T) {
	doc := `<SDDXML><Proj Name="P"><Bldg><ResZn Name="Z" FlrArea="100">
	  <ResExtWall Name="W" Area="50" BoundaryCond="Mystery"/>
	</ResZn></Bldg></Proj></SDDXML>`
	m := translateDoc(t, doc)

	require.Len(t, m.Geometry.Surfaces.Walls, 1)
	assert.Equal(t, model.BoundaryExterior, m.Geometry.Surfaces.Walls[0].Boundary)
	assert.Equal(t, 1, diagCodes(m.Diagnostics)["GEO-003"])
}

func TestDUTypeFloorAreaFallback(t *testing.T) {
	m := translateDoc(t, sampleDoc)

	require.Len(t, m.Geometry.Zones, 2)
	unit102 := m.Geometry.Zones[1]
	assert.Equal(t, "Unit 102", unit102.Name)
	assert.InDelta(t, 850*0.09290304, unit102.FloorArea, 1e-9)
	assert.Equal(t, 1, diagCodes(m.Diagnostics)["GEO-005"])
}

func TestDuplicateZoneNamesFlagged(t *testing.T) {
	doc := `<SDDXML><Proj Name="P"><Bldg><ResZnGrp Name="G">
	  <ResZn Name="Office" FlrArea="100"/>
	  <ResZn Name="Office" FlrArea="200"/>
	</ResZnGrp></Bldg></Proj></SDDXML>`
	m := translateDoc(t, doc)

	require.Len(t, m.Geometry.Zones, 2)
	assert.NotEqual(t, m.Geometry.Zones[0].ID, m.Geometry.Zones[1].ID)
	assert.Equal(t, 1, diagCodes(m.Diagnostics)["GEO-007"])
}

func TestUnresolvedHVACZone(t *testing.T) {
	doc := `<SDDXML><Proj Name="P"><Bldg><ResZn Name="Z" FlrArea="100"/></Bldg>
	  <ResHVACSys Name="Sys"><ZoneRef>Nowhere</ZoneRef></ResHVACSys>
	</Proj></SDDXML>`
	m := translateDoc(t, doc)

	require.Len(t, m.Systems.HVAC, 1)
	assert.Empty(t, m.Systems.HVAC[0].Zones)
	assert.Equal(t, 1, diagCodes(m.Diagnostics)["SYS-001"])
}

func TestHVACTypeInference(t *testing.T) {
	m := translateDoc(t, sampleDoc)
	require.Len(t, m.Systems.HVAC, 1)
	assert.Equal(t, "Furnace + SplitAC", m.Systems.HVAC[0].Type)
	assert.Equal(t, "Furnace", m.Systems.HVAC[0].Annotations["HtgSysType"])
}

func TestImporterStages(t *testing.T) {
	im := NewImporter(MustTables(), nil)
	root, err := xmltree.Parse([]byte(sampleDoc))
	require.NoError(t, err)
	im.TranslateTree(root, nil)
	assert.Equal(t, StageDone, im.Stage())
}

func TestTranslateCIBDTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "house.cibd22")
	text := "Proj \"House\"\n   ResZn \"Living\"\n      FlrArea = 500\n      ..\n   ..\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	m, err := NewImporter(MustTables(), nil).Translate(path)
	require.NoError(t, err)
	assert.Equal(t, "CIBD22", m.Metadata.SourceFormat)
	require.Len(t, m.Geometry.Zones, 1)
	assert.InDelta(t, 500*0.09290304, m.Geometry.Zones[0].FloorArea, 1e-9)
}

// ── Round trip ────────────────────────────────────────────────────────────────

func TestRoundTrip(t *testing.T) {
	first := translateDoc(t, sampleDoc)
	require.Empty(t, model.Validate(first))

	out, expDiags, err := NewExporter(nil).Serialize(first)
	require.NoError(t, err)
	assert.Empty(t, expDiags)

	root, err := xmltree.Parse(out)
	require.NoError(t, err)
	second := NewImporter(MustTables(), nil).TranslateTree(root, nil)

	// Identity level: same objects get the same IDs on re-import.
	assert.Equal(t, first.Geometry.Zones[0].ID, second.Geometry.Zones[0].ID)
	assert.Equal(t, first.Systems.HVAC[0].ID, second.Systems.HVAC[0].ID)

	// Value level: every observable collection matches field by field.
	assert.Equal(t, first.Geometry, second.Geometry)
	assert.Equal(t, first.Catalogs, second.Catalogs)
	assert.Equal(t, first.Systems, second.Systems)
	assert.Equal(t, first.Project.Name, second.Project.Name)
}

func TestExportPlaceholderForUnknownReference(t *testing.T) {
	m := translateDoc(t, sampleDoc)
	// Simulate a reference whose target was lost across a process
	// boundary along with the registry state.
	m.Geometry.Surfaces.Walls[0].Construction = "cons-vanished"
	m.Metadata.IDRegistry = nil

	out, diags, err := NewExporter(nil).Serialize(m)
	require.NoError(t, err)
	assert.Equal(t, 1, diagCodes(diags)["EXP-001"])

	root, err := xmltree.Parse(out)
	require.NoError(t, err)
	wall := root.Descendants("ResExtWall")[0]
	assert.Equal(t, "unresolved-cons-vanished", wall.Attr("ConsAssmRef"))
}

func TestSerializeDeterministic(t *testing.T) {
	m := translateDoc(t, sampleDoc)
	first, _, err := NewExporter(nil).Serialize(m)
	require.NoError(t, err)
	second, _, err := NewExporter(nil).Serialize(m)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
