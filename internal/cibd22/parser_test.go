package cibd22

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = `Proj "Sample House"
   CliZn = "CZ12"
   ResZnGrp "First Floor"
      FlrToFlrHgt = 9
      ResZn "Living Room"
         FlrArea = 500
         ZnMult = 1
         ..
      ResZn "Kitchen"
         FlrArea = 220.5
         ..
      ..
   ..
`

func TestParseObjectsAndProperties(t *testing.T) {
	root, err := Parse([]byte(sampleText))
	require.NoError(t, err)

	proj := root.Child("Proj")
	require.NotNil(t, proj)
	assert.Equal(t, "Sample House", proj.Name())
	assert.Equal(t, "CZ12", proj.Attr("CliZn"))

	grp := proj.Child("ResZnGrp")
	require.NotNil(t, grp)
	assert.Equal(t, "First Floor", grp.Name())

	zones := grp.AllChildren("ResZn")
	require.Len(t, zones, 2)
	assert.Equal(t, "Living Room", zones[0].Name())
	area, ok := zones[0].PropFloat("FlrArea")
	require.True(t, ok)
	assert.Equal(t, 500.0, area)
	area, ok = zones[1].PropFloat("FlrArea")
	require.True(t, ok)
	assert.Equal(t, 220.5, area)
}

func TestParseIndexedProperties(t *testing.T) {
	text := "ResPVArray \"Roof PV\"\n   ModuleRef[1] = \"Panel A\"\n   ModuleRef[2] = \"Panel B\"\n   ..\n"
	root, err := Parse([]byte(text))
	require.NoError(t, err)

	pv := root.Child("Proj").Child("ResPVArray")
	require.NotNil(t, pv)
	assert.Equal(t, "Panel A", pv.Attr("ModuleRef[1]"))
	assert.Equal(t, "Panel B", pv.Attr("ModuleRef[2]"))
}

func TestParseUnclosedObjects(t *testing.T) {
	text := "ResZn \"Open Zone\"\n   FlrArea = 100\n"
	root, err := Parse([]byte(text))
	require.NoError(t, err)

	zn := root.Child("Proj").Child("ResZn")
	require.NotNil(t, zn)
	assert.Equal(t, "Open Zone", zn.Name())
}

func TestParseSkipsComments(t *testing.T) {
	text := "; header comment\nResZn \"Z\"\n   ..\n"
	root, err := Parse([]byte(text))
	require.NoError(t, err)
	require.NotNil(t, root.Child("Proj").Child("ResZn"))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("ResZn \"Z\"\n   <<<not a property>>>\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
