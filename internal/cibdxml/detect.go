package cibdxml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/emtools/cbecc-translate/internal/xmltree"
)

// Format identifies the supported file formats.
type Format int

const (
	FormatUnknown Format = iota
	FormatCIBD22         // legacy indented text
	FormatCIBD22X        // SDDXML, 2022 ruleset
	FormatCIBD25         // SDDXML, 2025 ruleset
	FormatEMJSON
	FormatHBJSON
)

func (f Format) String() string {
	switch f {
	case FormatCIBD22:
		return "CIBD22"
	case FormatCIBD22X:
		return "CIBD22X"
	case FormatCIBD25:
		return "CIBD25"
	case FormatEMJSON:
		return "EMJSON"
	case FormatHBJSON:
		return "HBJSON"
	default:
		return "unknown"
	}
}

// ErrUnrecognizedFormat is returned when content is neither parseable
// XML nor a recognized JSON or CIBD text shape.
var ErrUnrecognizedFormat = errors.New("unrecognized format")

// FormatInfo is the result of format detection.
type FormatInfo struct {
	Format  Format
	Version string // ruleset code year when derivable, e.g. "2022"
	Ruleset string
}

var (
	yearPat     = regexp.MustCompile(`20[12][0-9]`)
	textObjPat  = regexp.MustCompile(`(?m)^\s*[A-Za-z][A-Za-z0-9]*\s+"[^"]*"\s*$`)
	textEndPat  = regexp.MustCompile(`(?m)^\s*\.\.\s*$`)
	rulesetTags = []string{"RulesetFilename", "Ruleset"}
)

// DetectFile reads and classifies a file. The extension is consulted
// only when the content itself is ambiguous; content always wins when
// the two disagree.
func DetectFile(path string) (FormatInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FormatInfo{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Detect(data, strings.ToLower(filepath.Ext(path)))
}

// Detect classifies raw content. extHint is the lowercase file
// extension including the dot, or "".
func Detect(data []byte, extHint string) (FormatInfo, error) {
	body := strings.TrimLeft(strings.TrimPrefix(string(data), "\uFEFF"), " \t\r\n")

	switch {
	case strings.HasPrefix(body, "<"):
		return detectXML(data, extHint)
	case strings.HasPrefix(body, "{"):
		return detectJSON(body)
	case textObjPat.MatchString(body) && textEndPat.MatchString(body):
		info := FormatInfo{Format: FormatCIBD22, Version: "2022"}
		if m := yearPat.FindString(body); m != "" {
			info.Version = m
		}
		return info, nil
	default:
		return FormatInfo{}, fmt.Errorf("%w: content is neither XML, JSON, nor CIBD text", ErrUnrecognizedFormat)
	}
}

func detectXML(data []byte, extHint string) (FormatInfo, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return FormatInfo{}, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}
	if root.Local() != "SDDXML" && root.Child("Proj") == nil {
		return FormatInfo{}, fmt.Errorf("%w: XML root %q is not a CBECC document", ErrUnrecognizedFormat, root.Local())
	}

	info := FormatInfo{Format: FormatCIBD22X, Ruleset: findRuleset(root)}
	if y := yearPat.FindString(info.Ruleset); y != "" {
		info.Version = y
	}
	switch {
	case info.Version >= "2025":
		info.Format = FormatCIBD25
	case info.Version == "" && extHint == ".cibd25":
		// Extension is only a hint when the ruleset is silent.
		info.Format = FormatCIBD25
		info.Version = "2025"
	case info.Version == "":
		info.Version = "2022"
	}
	return info, nil
}

func findRuleset(root *xmltree.Node) string {
	for _, tag := range rulesetTags {
		for _, n := range root.Descendants(tag) {
			if v := n.Attr("file"); v != "" {
				return v
			}
			if v := n.Text(); v != "" {
				return v
			}
		}
	}
	if p := root.Child("Proj"); p != nil {
		return p.Prop("Ruleset", "RulesetFilename")
	}
	return ""
}

func detectJSON(body string) (FormatInfo, error) {
	switch {
	case strings.Contains(body, `"emjson_version"`) || strings.Contains(body, `"schema_version"`):
		return FormatInfo{Format: FormatEMJSON, Version: "6.0"}, nil
	case strings.Contains(body, `"rooms"`) && strings.Contains(body, `"type"`):
		return FormatInfo{Format: FormatHBJSON}, nil
	default:
		return FormatInfo{}, fmt.Errorf("%w: JSON content has no known schema marker", ErrUnrecognizedFormat)
	}
}
