package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/panyam/connectus/viz"
)

var exportCmd = &cobra.Command{
	Use:   "export <diagram.json>",
	Short: "Export a diagram as DOT or Mermaid",
	Long: `Renders the component topology as a text diagram for documentation.
Formats:
  dot:     Graphviz digraph, one record node per component.
  mermaid: Mermaid graph wrapping the components in one subgraph.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		outputFile, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")

		var gen viz.DiagramGenerator
		switch format {
		case "dot":
			gen = &viz.DotGenerator{}
		case "mermaid":
			gen = &viz.MermaidGenerator{}
		default:
			fmt.Fprintf(os.Stderr, "Error: Unknown format '%s'. Choose 'dot' or 'mermaid'.\n", format)
			os.Exit(1)
		}

		d := loadDiagramFile(args[0])
		nodes, edges := viz.Build(d)
		out, err := gen.Generate(d.Name, nodes, edges)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering diagram: %v\n", err)
			os.Exit(1)
		}
		writeOutput(outputFile, out)
	},
}

// writeOutput writes content to the file, or stdout when no file was named.
func writeOutput(outputFile, content string) {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output to %s: %v\n", outputFile, err)
			os.Exit(1)
		}
		fmt.Printf("✅ Diagram written to %s\n", outputFile)
		return
	}
	fmt.Println(content)
}

func init() {
	AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().StringP("format", "t", "mermaid", "Output format: dot or mermaid")
}
