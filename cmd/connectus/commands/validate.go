package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panyam/connectus/diagram"
)

var validateCmd = &cobra.Command{
	Use:   "validate <diagram.json...>",
	Short: "Check diagram file(s) against the model invariants",
	Long: `The validate command decodes one or more diagram documents and runs the
full semantic check: port typing, protocol signal uniqueness, reply
pairing, and connection endpoint compatibility. It generates nothing.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failed := 0
		for _, path := range args {
			d := loadDiagramFile(path)
			ec := d.Validate()
			if ec.HasErrors() {
				failed++
				reportValidation(path, ec)
			} else {
				color.Green("✓ %s", path)
			}
		}
		if failed > 0 {
			fmt.Fprintf(os.Stderr, "\n%d of %d file(s) failed validation\n", failed, len(args))
			os.Exit(1)
		}
	},
}

// reportValidation prints one line per violation under the file name.
func reportValidation(path string, ec *diagram.ErrorCollector) {
	color.Red("✗ %s", path)
	for _, err := range ec.Errors {
		fmt.Fprintf(os.Stderr, "  - %v\n", err)
	}
}

func init() {
	AddCommand(validateCmd)
}
