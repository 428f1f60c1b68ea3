package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panyam/connectus/archive"
	"github.com/panyam/connectus/codegen"
	"github.com/panyam/connectus/diagram"
)

var generateCmd = &cobra.Command{
	Use:   "generate <diagram.json>",
	Short: "Generate the EDROOM deployment project for a diagram",
	Long: `Reads a diagram document, runs the code generator, and writes the
per-node project tree. By default the tree is packaged as a zip named
after the diagram; use --unpack to write the files into a directory
instead.

Example:
  connectus generate pingpong.json
  connectus generate pingpong.json --output build/pingpong.zip
  connectus generate pingpong.json --unpack build/pingpong/`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		outputFile, _ := cmd.Flags().GetString("output")
		unpackDir, _ := cmd.Flags().GetString("unpack")

		d := loadDiagramFile(args[0])
		if ec := d.Validate(); ec.HasErrors() {
			reportValidation(args[0], ec)
			os.Exit(1)
		}

		files, err := codegen.Assemble(d)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating project: %v\n", err)
			os.Exit(1)
		}

		if unpackDir != "" {
			for _, f := range files {
				target := filepath.Join(unpackDir, filepath.FromSlash(f.Path))
				if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
					fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", filepath.Dir(target), err)
					os.Exit(1)
				}
				if err := os.WriteFile(target, []byte(f.Content), 0644); err != nil {
					fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", target, err)
					os.Exit(1)
				}
			}
			fmt.Printf("✅ %d files written to %s\n", len(files), unpackDir)
			return
		}

		tree := make(map[string]string, len(files))
		for _, f := range files {
			tree[f.Path] = f.Content
		}
		blob, err := archive.NewZipPackager().Package(tree)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error packaging project: %v\n", err)
			os.Exit(1)
		}

		if outputFile == "" {
			outputFile = codegen.ArchiveName(d)
		}
		if err := os.WriteFile(outputFile, blob, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputFile, err)
			os.Exit(1)
		}
		fmt.Printf("✅ Project archive written to %s\n", outputFile)
	},
}

// loadDiagramFile reads and decodes one diagram document, exiting on failure.
func loadDiagramFile(path string) *diagram.Diagram {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading diagram file %s: %v\n", path, err)
		os.Exit(1)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	d, err := diagram.Load(name, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing diagram file %s: %v\n", path, err)
		os.Exit(1)
	}
	return d
}

func init() {
	AddCommand(generateCmd)
	generateCmd.Flags().StringP("output", "o", "", "Archive path (default: <diagram>_project.zip)")
	generateCmd.Flags().String("unpack", "", "Write the tree into this directory instead of a zip")
}
