package viz

import (
	"bytes"
	"fmt"
)

// --- DOT Generator ---

type DotGenerator struct{}

func (g *DotGenerator) Generate(diagramName string, nodes []Node, edges []Edge) (string, error) {
	var b bytes.Buffer
	b.WriteString(fmt.Sprintf("digraph \"%s\" {\n", diagramName))
	b.WriteString("  rankdir=LR;\n")
	b.WriteString(fmt.Sprintf("  label=\"Component Diagram: %s\";\n", diagramName))
	b.WriteString("  node [shape=record];\n")

	for _, node := range nodes {
		label := fmt.Sprintf("%s\\n(%s)", node.Name, node.Class)
		if node.IsTop {
			label += "\\n[top]"
		}
		if node.Node != "" {
			label += fmt.Sprintf("\\n@%s", node.Node)
		}
		b.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\"];\n", node.ID, label))
	}

	for _, edge := range edges {
		b.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\"];\n", edge.FromID, edge.ToID, edge.Label))
	}
	b.WriteString("}\n")
	return b.String(), nil
}
