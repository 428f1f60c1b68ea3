package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags shared by subcommands.
var (
	configPath string
	serverURL  string
	serveHost  string
	servePort  int
)

var rootCmd = &cobra.Command{
	Use:   "connectus",
	Short: "Connectus is an EDROOM component diagram editor and code generator",
	Long: `Connectus edits EDROOM component diagrams and generates the C/C++
deployment artifacts (glue headers, deployment sources, and entry points)
for each logical node the diagram deploys onto.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a connectus.toml config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Connectus server URL (default: CONNECTUS_SERVER_URL env var or http://localhost:8080)")

	// Serve command flags
	rootCmd.PersistentFlags().StringVar(&serveHost, "host", "", "Server host (default: config server.host)")
	rootCmd.PersistentFlags().IntVar(&servePort, "port", 0, "Server port (default: config server.port)")
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
