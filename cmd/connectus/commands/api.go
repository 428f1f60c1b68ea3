package commands

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	ghttp "github.com/panyam/goutils/http"
)

// getServerURL returns the server URL using the priority:
// 1. Command line flag (--server)
// 2. Environment variable (CONNECTUS_SERVER_URL)
// 3. Default (http://localhost:8080)
func getServerURL() string {
	if serverURL != "" {
		return serverURL
	}
	if envURL := os.Getenv("CONNECTUS_SERVER_URL"); envURL != "" {
		return envURL
	}
	return "http://localhost:8080"
}

func apiEndpoint(endpoint string) string {
	return strings.TrimSuffix(getServerURL(), "/") + "/api" + endpoint
}

// makeAPICall makes HTTP requests to the Connectus server
func makeAPICall[T any](method, endpoint string, body map[string]any) (out T, err error) {
	req, err := ghttp.NewJsonRequest(method, apiEndpoint(endpoint), body)
	if err != nil {
		return
	}
	resp, err := ghttp.Call(req, nil)
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		return
	}
	var ok bool
	if out, ok = resp.(T); !ok {
		err = fmt.Errorf("unexpected response shape: %v", resp)
	}
	return
}

// checkServerConnection checks if the server is reachable and provides
// guidance when it is not.
func checkServerConnection() error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(apiEndpoint("/diagrams"))
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return nil
		}
		err = fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	baseURL := getServerURL()
	fmt.Printf("❌ Cannot connect to Connectus server at %s\n\n", baseURL)
	fmt.Printf("To use remote commands, first start the server:\n\n")
	fmt.Printf("🚀 Terminal 1: Start Connectus server\n")
	fmt.Printf("   connectus serve\n\n")
	fmt.Printf("🔌 Terminal 2: Use CLI commands\n")
	fmt.Printf("   connectus diagrams list\n\n")
	fmt.Printf("Or connect to a different server:\n")
	fmt.Printf("   export CONNECTUS_SERVER_URL=http://other-host:8080\n")
	return err
}
