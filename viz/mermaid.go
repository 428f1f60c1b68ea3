package viz

import (
	"bytes"
	"fmt"
)

// --- Mermaid Generator ---

type MermaidGenerator struct{}

func (g *MermaidGenerator) Generate(diagramName string, nodes []Node, edges []Edge) (string, error) {
	var b bytes.Buffer
	b.WriteString("graph TD;\n")
	b.WriteString(fmt.Sprintf("  subgraph %s\n", diagramName))

	for _, node := range nodes {
		label := fmt.Sprintf("%s (%s)", node.Name, node.Class)
		if node.IsTop {
			label += " *"
		}
		b.WriteString(fmt.Sprintf("    %s[\"%s\"];\n", node.ID, label))
	}

	for _, edge := range edges {
		b.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s;\n", edge.FromID, edge.Label, edge.ToID))
	}
	b.WriteString("  end\n")
	return b.String(), nil
}
