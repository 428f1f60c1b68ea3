// package viz defines common interfaces and data structures for rendering
// diagram views.
package viz

import "github.com/panyam/connectus/diagram"

// --- Common Data Structures ---

// Node represents one component in a rendered view.
type Node struct {
	ID    string // Unique identifier for the node
	Name  string // Display name
	Class string // Component class for display
	Node  string // Logical deployment node
	IsTop bool   // Whether this is the system's top component
}

// Edge represents a connection between nodes in a rendered view.
type Edge struct {
	FromID   string
	ToID     string
	Label    string // Protocol name joining the two ports
	FromPort string
	ToPort   string
}

// --- Interfaces for Generators ---

// DiagramGenerator defines the interface for rendering a component view.
type DiagramGenerator interface {
	Generate(diagramName string, nodes []Node, edges []Edge) (string, error)
}

// Build flattens a diagram snapshot into view nodes and edges, in the
// diagram's own order. Edges whose endpoints no longer resolve are dropped
// from the view; the generators render structure, not diagnostics.
func Build(d *diagram.Diagram) (nodes []Node, edges []Edge) {
	ix := diagram.NewIndex(d)
	for _, c := range d.Components {
		nodes = append(nodes, Node{
			ID:    c.ID,
			Name:  c.Name,
			Class: c.Class(),
			Node:  c.Node,
			IsTop: d.IsTop(c.ID),
		})
	}
	for _, conn := range d.Connections {
		srcP, okSrc := ix.Port(conn.SourceComponentID, conn.SourcePortID)
		dstP, okDst := ix.Port(conn.TargetComponentID, conn.TargetPortID)
		if !okSrc || !okDst {
			continue
		}
		edges = append(edges, Edge{
			FromID:   conn.SourceComponentID,
			ToID:     conn.TargetComponentID,
			Label:    srcP.ProtocolName,
			FromPort: srcP.Name,
			ToPort:   dstP.Name,
		})
	}
	return nodes, edges
}
