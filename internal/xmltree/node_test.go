package xmltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<SDDXML>
  <Proj Name="Sample House">
    <ResZn Name="Unit 101" FlrArea="850" Volume="7,650">
      <ZnMult>2</ZnMult>
    </ResZn>
    <ResZn>
      <Name>Unit 102</Name>
      <FlrArea>900.5</FlrArea>
    </ResZn>
  </Proj>
</SDDXML>
`

func TestParseAndNavigate(t *testing.T) {
	root, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, "SDDXML", root.Local())

	proj := root.Child("Proj")
	require.NotNil(t, proj)
	assert.Equal(t, "Sample House", proj.Name())

	zones := proj.AllChildren("ResZn")
	require.Len(t, zones, 2)
	assert.Equal(t, "Unit 101", zones[0].Name())
	assert.Equal(t, "Unit 102", zones[1].Name())
}

func TestPropAttrBeforeChild(t *testing.T) {
	root, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	zones := root.Child("Proj").AllChildren("ResZn")

	// Attribute-encoded value.
	area, ok := zones[0].PropFloat("FlrArea")
	require.True(t, ok)
	assert.Equal(t, 850.0, area)

	// Child-element-encoded value.
	area, ok = zones[1].PropFloat("FlrArea")
	require.True(t, ok)
	assert.Equal(t, 900.5, area)

	// Thousands separator.
	vol, ok := zones[0].PropFloat("Volume")
	require.True(t, ok)
	assert.Equal(t, 7650.0, vol)

	mult, ok := zones[0].PropInt("ZnMult")
	require.True(t, ok)
	assert.Equal(t, 2, mult)

	_, ok = zones[1].PropFloat("Volume")
	assert.False(t, ok)
}

func TestDescendants(t *testing.T) {
	root, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	zones := root.Descendants("ResZn")
	require.Len(t, zones, 2)
	assert.Equal(t, "Unit 101", zones[0].Name())
}

func TestAttrMutation(t *testing.T) {
	n := New("ResExtWall")
	n.SetAttr("Area", "120")
	n.SetAttr("Area", "130")
	assert.Equal(t, "130", n.Attr("Area"))
	assert.True(t, n.RemoveAttr("Area"))
	assert.False(t, n.RemoveAttr("Area"))
	assert.Equal(t, "", n.Attr("Area"))
}

func TestBuildAndMarshalRoundTrip(t *testing.T) {
	root := New("SDDXML")
	proj := root.Add("Proj")
	proj.SetAttr("Name", "Built")
	zn := proj.Add("ResZn")
	zn.SetAttr("Name", "Zone A")
	zn.AddText("FlrArea", "850")

	out, err := Marshal(root)
	require.NoError(t, err)

	back, err := Parse(out)
	require.NoError(t, err)
	got := back.Child("Proj").Child("ResZn")
	require.NotNil(t, got)
	assert.Equal(t, "Zone A", got.Name())
	area, ok := got.PropFloat("FlrArea")
	require.True(t, ok)
	assert.Equal(t, 850.0, area)
}
