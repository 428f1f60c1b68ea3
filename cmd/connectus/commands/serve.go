package commands

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/panyam/connectus/config"
	"github.com/panyam/connectus/console"
	"github.com/panyam/connectus/services"
)

// Serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Connectus console server",
	Long: `Start the Connectus console that hosts the diagram editor, the REST API,
and the code generator.

The server provides:
- Filesystem-backed diagram library
- REST API for diagram CRUD, validation, export, and project generation
- WebSocket connection for live diagram events
- Server-rendered listing and editor pages

Example:
  # Start on the configured host/port
  connectus serve

  # Start on a custom port
  connectus serve --port 9090`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if serveHost != "" {
			cfg.Server.Host = serveHost
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := config.Validate(cfg); err != nil {
			log.Fatalf("Invalid config: %v", err)
		}

		diagrams := services.NewDiagramService(cfg.Storage.DiagramsDir)
		generator := services.NewGeneratorService(diagrams, nil)
		webServer := console.NewWebServer(diagrams, generator, cfg.Web.TemplatesDir, cfg.Web.StaticDir)

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		addr := cfg.Addr()
		server := &http.Server{
			Addr:    addr,
			Handler: webServer.Handler(),
		}

		baseURL := fmt.Sprintf("http://%s", addr)
		fmt.Printf("🚀 Connectus Console %s\n", Version)
		fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		fmt.Printf("📊 Editor:       %s/diagrams\n", baseURL)
		fmt.Printf("🛠️  REST API:     %s/api/diagrams\n", baseURL)
		fmt.Printf("📡 WebSocket:    ws://%s/api/live\n", addr)
		fmt.Printf("📁 Library:      %s\n", cfg.Storage.DiagramsDir)
		fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

		// Start server in goroutine
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server failed to start: %v", err)
			}
		}()
		services.Success("Server started on %s", addr)

		// Wait for shutdown signal
		<-sigChan

		fmt.Println()
		services.Stop("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			services.Failure("Server shutdown error: %v", err)
		} else {
			services.Success("Server stopped gracefully")
		}
	},
}

func init() {
	AddCommand(serveCmd)
}
