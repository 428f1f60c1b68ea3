// Package codegen turns a diagram snapshot into the C/C++ scaffolding the
// EDROOM runtime builds against: per-node deployment glue, signal conversion
// declarations, queue sizing, and the main project file. Output is fully
// deterministic; the same snapshot always yields byte-identical text.
package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/panyam/connectus/diagram"
)

// DefaultNode is the logical node used when no component declares one.
const DefaultNode = "node0"

// EffectiveNode maps a component to its deployment target, folding an empty
// assignment onto the default node.
func EffectiveNode(c *diagram.Component) string {
	if c.Node == "" {
		return DefaultNode
	}
	return c.Node
}

// Names carries the three identifiers generated artifacts need for one
// component, resolved relative to a target node.
type Names struct {
	// Instance is the variable name: lowercased, whitespace-stripped
	// component name suffixed with the component number, r-prefixed for
	// remote components.
	Instance string

	// Class is the (possibly proxy) class name the node instantiates.
	Class string

	// IncludePrefix is prepended to the lowercased component name to form
	// the interface header file name.
	IncludePrefix string
}

// Namer resolves component names for one generation pass. Locality and role
// are fixed when the namer is built: locality from the target node, role
// from the diagram's top mark.
//
// The prefix table is the single source of truth for generated naming:
//
//	              local        remote
//	top           "" / ""      "R" / "r"
//	ordinary      "CC" / "cc"  "RCC" / "rcc"
//
// (class prefix / include prefix in each cell).
type Namer struct {
	target string
	topID  string
}

// NewNamer builds a namer for one target node.
func NewNamer(d *diagram.Diagram, targetNode string) *Namer {
	return &Namer{target: targetNode, topID: d.TopComponentID}
}

// Names resolves the full identifier set for c.
func (n *Namer) Names(c *diagram.Component) Names {
	local := EffectiveNode(c) == n.target
	top := n.topID != "" && c.ID == n.topID

	var classPrefix, includePrefix string
	switch {
	case top && local:
		classPrefix, includePrefix = "", ""
	case top && !local:
		classPrefix, includePrefix = "R", "r"
	case !top && local:
		classPrefix, includePrefix = "CC", "cc"
	default:
		classPrefix, includePrefix = "RCC", "rcc"
	}

	instance := fmt.Sprintf("%s_%d", strings.ToLower(stripSpace(c.Name)), c.ComponentID)
	if !local {
		instance = "r" + instance
	}

	return Names{
		Instance:      instance,
		Class:         classPrefix + stripSpace(c.Class()),
		IncludePrefix: includePrefix,
	}
}

// Include returns the interface header file name for c, prefix plus the
// lowercased component name.
func (n *Namer) Include(c *diagram.Component) string {
	return n.Names(c).IncludePrefix + strings.ToLower(stripSpace(c.Name)) + "_iface.h"
}

// stripSpace removes every whitespace rune so display names become usable
// identifier fragments.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
