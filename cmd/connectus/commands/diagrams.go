package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var diagramsCmd = &cobra.Command{
	Use:   "diagrams",
	Short: "Manage diagrams on a running Connectus server",
}

var diagramsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all diagrams",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkServerConnection(); err != nil {
			return err
		}
		resp, err := makeAPICall[map[string]any]("GET", "/diagrams", nil)
		if err != nil {
			return fmt.Errorf("failed to list diagrams: %w", err)
		}

		items, _ := resp["diagrams"].([]any)
		if len(items) == 0 {
			fmt.Println("No diagrams found")
			return nil
		}
		fmt.Printf("Diagrams (%d):\n", len(items))
		for _, item := range items {
			d, _ := item.(map[string]any)
			fmt.Printf("  - %s", d["id"])
			if name, _ := d["name"].(string); name != "" {
				fmt.Printf(" (%s)", name)
			}
			fmt.Println()
		}
		return nil
	},
}

var diagramsCreateCmd = &cobra.Command{
	Use:   "create <name> [document.json]",
	Short: "Create a new diagram, optionally seeded from a document file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkServerConnection(); err != nil {
			return err
		}
		body := map[string]any{"name": args[0]}
		if len(args) == 2 {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read document: %w", err)
			}
			var doc any
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("document is not valid JSON: %w", err)
			}
			body["document"] = doc
		}

		resp, err := makeAPICall[map[string]any]("POST", "/diagrams", body)
		if err != nil {
			return fmt.Errorf("failed to create diagram: %w", err)
		}
		fmt.Printf("Diagram '%s' created with id %s\n", args[0], resp["id"])
		return nil
	},
}

var diagramsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Short:   "Delete a diagram",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkServerConnection(); err != nil {
			return err
		}
		if _, err := makeAPICall[map[string]any]("DELETE", "/diagrams/"+args[0], nil); err != nil {
			return fmt.Errorf("failed to delete diagram: %w", err)
		}
		fmt.Printf("Diagram '%s' deleted\n", args[0])
		return nil
	},
}

var diagramsDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Generate and download a diagram's project archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkServerConnection(); err != nil {
			return err
		}
		outputFile, _ := cmd.Flags().GetString("output")

		// The generate endpoint streams a zip, so this one bypasses the
		// JSON helper.
		resp, err := http.Get(apiEndpoint("/diagrams/" + args[0] + "/generate"))
		if err != nil {
			return fmt.Errorf("failed to generate project: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, body)
		}

		if outputFile == "" {
			outputFile = args[0] + "_project.zip"
		}
		out, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outputFile, err)
		}
		defer out.Close()
		n, err := io.Copy(out, resp.Body)
		if err != nil {
			return fmt.Errorf("failed to save archive: %w", err)
		}
		fmt.Printf("✅ %d bytes written to %s\n", n, outputFile)
		return nil
	},
}

func init() {
	diagramsCmd.AddCommand(diagramsListCmd)
	diagramsCmd.AddCommand(diagramsCreateCmd)
	diagramsCmd.AddCommand(diagramsDeleteCmd)
	diagramsCmd.AddCommand(diagramsDownloadCmd)
	diagramsDownloadCmd.Flags().StringP("output", "o", "", "Archive path (default: <id>_project.zip)")
	AddCommand(diagramsCmd)
}
