// Package cibdxml translates CBECC CIBD22X/CIBD25 XML documents to and
// from the EMJSON v6 model. Parsing is catalog-first: reference data
// (location, DU types, materials, constructions, window types, PV
// arrays) is registered before any geometry or system element is read,
// so forward references resolve regardless of document order.
package cibdxml

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var tablesYAML []byte

// Migration is one element/attribute rename rule.
type Migration struct {
	Element    string `yaml:"element"`
	Attr       string `yaml:"attr"`
	NewElement string `yaml:"new_element"`
	NewAttr    string `yaml:"new_attr"`
	Drop       bool   `yaml:"drop"`
}

// Tables holds the static lookup data shared by all parsers.
type Tables struct {
	ZoneTags           map[string]string      `yaml:"zone_tags"`
	SurfaceTags        map[string]string      `yaml:"surface_tags"`
	OpeningTags        map[string]string      `yaml:"opening_tags"`
	BoundaryCodes      map[string]string      `yaml:"boundary_codes"`
	OrientationAzimuth map[string]float64     `yaml:"orientation_azimuths"`
	Migrations         map[string][]Migration `yaml:"migrations"`
}

// LoadTables parses the embedded lookup tables.
func LoadTables() (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(tablesYAML, &t); err != nil {
		return nil, fmt.Errorf("load lookup tables: %w", err)
	}
	return &t, nil
}

// MustTables is LoadTables for initialization paths where the embedded
// data is known-good.
func MustTables() *Tables {
	t, err := LoadTables()
	if err != nil {
		panic(err)
	}
	return t
}

// zoneTagList returns the zone element tags in a fixed order so
// document walks are deterministic.
func (t *Tables) zoneTagList() []string {
	return []string{"ResZn", "ComZn", "ResOtherZn"}
}

func (t *Tables) surfaceTagList() []string {
	return []string{
		"ResExtWall", "ResIntWall", "ResUndgrWall",
		"ResRoof", "ResCathedralCeiling",
		"ResFlr", "ResSlabFlr", "ResExtFlr",
	}
}

func (t *Tables) openingTagList() []string {
	return []string{"ResWin", "ResDoor", "ResSkylt"}
}
