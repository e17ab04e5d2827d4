// Package cibd22 reads the legacy indented CIBD text format and
// normalizes it into the same document tree the XML parsers consume,
// so every downstream pass works on either input unchanged.
//
// The format is line-oriented:
//
//	ResZn "Living Room"
//	   FlrArea = 500
//	   ..
//
// Objects open with `Type "name"`, carry `key = value` properties
// (arrays as `key[i] = value`), nest by appearing before the parent's
// terminator, and close with a bare `..` line.
package cibd22

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/emtools/cbecc-translate/internal/xmltree"
)

var (
	objectPat = regexp.MustCompile(`^([A-Z][A-Za-z0-9]+)\s+"([^"]*)"`)
	propPat   = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*(?:\[(\d+)\])?\s*=\s*(.+)$`)
)

// Parse converts CIBD text content into an SDDXML-shaped node tree.
// Unclosed objects at end of input are closed implicitly; unparseable
// lines are an error, carrying the line number.
func Parse(data []byte) (*xmltree.Node, error) {
	root := xmltree.New("SDDXML")
	proj := root.Add("Proj")
	stack := []*xmltree.Node{proj}

	for lineNum, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "//") {
			continue
		}

		if line == ".." {
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		if m := objectPat.FindStringSubmatch(line); m != nil {
			objType, objName := m[1], m[2]
			var el *xmltree.Node
			if objType == "Proj" && stack[len(stack)-1] == proj {
				el = proj
			} else {
				el = stack[len(stack)-1].Add(objType)
			}
			el.SetAttr("Name", objName)
			stack = append(stack, el)
			continue
		}

		if m := propPat.FindStringSubmatch(line); m != nil {
			key, index, value := m[1], m[2], strings.TrimSpace(m[3])
			value = strings.TrimSuffix(strings.TrimPrefix(value, `"`), `"`)
			if index != "" {
				key = fmt.Sprintf("%s[%s]", key, index)
			}
			cur := stack[len(stack)-1]
			// Name property doubles as the object header; the header wins.
			if key == "Name" && cur.Attr("Name") != "" {
				continue
			}
			cur.SetAttr(key, value)
			continue
		}

		return nil, fmt.Errorf("line %d: unparseable CIBD text: %q", lineNum+1, line)
	}

	return root, nil
}
