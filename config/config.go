// Package config loads the Connectus configuration from defaults, an
// optional TOML file, and CONNECTUS_-prefixed environment variables, in
// that order of precedence (later layers win).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Host string `koanf:"host"`
		Port int    `koanf:"port"`
	} `koanf:"server"`

	Storage struct {
		// DiagramsDir is where the diagram library keeps its entities,
		// one directory per diagram.
		DiagramsDir string `koanf:"diagrams_dir"`
	} `koanf:"storage"`

	Web struct {
		TemplatesDir string `koanf:"templates_dir"`
		StaticDir    string `koanf:"static_dir"`
	} `koanf:"web"`
}

// Addr returns the host:port the console should listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"server.host":          "localhost",
		"server.port":          8080,
		"storage.diagrams_dir": "./data/diagrams",
		"web.templates_dir":    "./web/templates",
		"web.static_dir":       "./web/dist",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try default locations
		defaultPaths := []string{"./connectus.toml", "$HOME/.connectus.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix CONNECTUS_
	k.Load(env.Provider("CONNECTUS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "CONNECTUS_")), "_", ".", -1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# Connectus Configuration

[server]
host = "localhost"
port = 8080

[storage]
diagrams_dir = "./data/diagrams"

[web]
templates_dir = "./web/templates"
static_dir = "./web/dist"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", config.Server.Port)
	}
	if config.Storage.DiagramsDir == "" {
		return fmt.Errorf("storage diagrams_dir is required")
	}
	return nil
}
