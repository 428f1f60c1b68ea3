package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The persisted document keeps the editor's wire shape: two top level
// arrays whose elements mirror the in-memory model, with the top mark
// carried as a per-node boolean. There is no schema version; a document
// that does not decode is reported as one generic parse failure.

type documentNode struct {
	Component
	IsTop bool `json:"isTop,omitempty"`
}

type document struct {
	Nodes []documentNode `json:"nodes"`
	Edges []Connection   `json:"edges"`
}

// Marshal serializes d into the nodes/edges document, indented the way the
// editor saves it.
func Marshal(d *Diagram) ([]byte, error) {
	doc := document{
		Nodes: make([]documentNode, 0, len(d.Components)),
		Edges: make([]Connection, 0, len(d.Connections)),
	}
	for _, c := range d.Components {
		doc.Nodes = append(doc.Nodes, documentNode{
			Component: *c,
			IsTop:     d.IsTop(c.ID),
		})
	}
	doc.Edges = append(doc.Edges, d.Connections...)
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal decodes a nodes/edges document back into a diagram. Any
// structural mismatch, including more than one node claiming the top mark,
// comes back as ErrInvalidDocument; semantic invariants are checked
// separately via Validate.
func Unmarshal(data []byte) (*Diagram, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	d := &Diagram{
		Components:  make([]*Component, 0, len(doc.Nodes)),
		Connections: doc.Edges,
	}
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		c := n.Component
		d.Components = append(d.Components, &c)
		if n.IsTop {
			if d.TopComponentID != "" {
				return nil, fmt.Errorf("%w: more than one node is marked top", ErrInvalidDocument)
			}
			d.TopComponentID = c.ID
		}
	}
	return d, nil
}

// Load is Unmarshal plus a name, for callers loading a stored diagram.
func Load(name string, data []byte) (*Diagram, error) {
	d, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	d.Name = name
	return d, nil
}
