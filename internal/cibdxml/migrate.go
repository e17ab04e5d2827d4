package cibdxml

import (
	"github.com/emtools/cbecc-translate/internal/model"
	"github.com/emtools/cbecc-translate/internal/xmltree"
)

// Migrate rewrites a parsed tree in place so newer-vintage element and
// attribute names match the names the parsers expect. Rules come from
// the static migration table keyed by lowercase format name ("cibd25").
// Running it on already-current data is a no-op: a rule only fires
// when the old name is actually present.
//
// Rules marked drop remove the attribute and record MIG-002 so the
// loss is traceable. Elements with no rule at all pass through
// untouched.
func Migrate(root *xmltree.Node, rules []Migration, log *model.Log) {
	if len(rules) == 0 {
		return
	}
	byElement := make(map[string][]Migration)
	for _, r := range rules {
		byElement[r.Element] = append(byElement[r.Element], r)
	}

	root.Walk(func(n *xmltree.Node) {
		for _, r := range byElement[n.Local()] {
			applyRule(n, r, log)
		}
	})
}

func applyRule(n *xmltree.Node, r Migration, log *model.Log) {
	// Element rename, no attribute involved.
	if r.Attr == "" {
		if r.NewElement != "" && n.Local() != r.NewElement {
			log.Infof("MIG-001", r.Element, "element %s renamed to %s", r.Element, r.NewElement)
			n.XMLName.Local = r.NewElement
		}
		return
	}

	if r.Drop {
		if n.RemoveAttr(r.Attr) {
			log.Warnf("MIG-002", r.Element, "attribute %s.%s has no successor and was dropped", r.Element, r.Attr)
		}
		if c := n.Child(r.Attr); c != nil {
			removeChild(n, c)
			log.Warnf("MIG-002", r.Element, "element %s.%s has no successor and was dropped", r.Element, r.Attr)
		}
		return
	}

	// Attribute rename; the value may be attribute- or child-encoded.
	if v := n.Attr(r.Attr); v != "" {
		n.RemoveAttr(r.Attr)
		n.SetAttr(r.NewAttr, v)
		log.Infof("MIG-001", r.Element, "attribute %s.%s renamed to %s", r.Element, r.Attr, r.NewAttr)
		return
	}
	if c := n.Child(r.Attr); c != nil {
		c.XMLName.Local = r.NewAttr
		log.Infof("MIG-001", r.Element, "element %s.%s renamed to %s", r.Element, r.Attr, r.NewAttr)
	}
}

func removeChild(parent, child *xmltree.Node) {
	for i, c := range parent.Children {
		if c == child {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return
		}
	}
}
