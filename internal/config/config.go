// Package config loads the kidivis configuration file.
//
// Configuration lives in a TOML file (kidivis.toml by default) with two
// sections: [common] for the renderer and layer list, [server] for the
// review server. Every field has a default; a missing file means defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the configuration file looked up in the working directory
// when none is given explicitly.
const DefaultFile = "kidivis.toml"

// Config is the full kidivis configuration.
type Config struct {
	Common Common `toml:"common"`
	Server Server `toml:"server"`
}

// Common configures the renderer invocation.
type Common struct {
	// KicadCLI is the path to the kicad-cli executable.
	KicadCLI string `toml:"kicad_cli"`
	// Layers is the list of board layers offered for diffing.
	Layers []string `toml:"layers"`
}

// Server configures the review server.
type Server struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

// DefaultLayers is the layer list used when the configuration does not
// name one: front/back copper, silkscreen and mask, plus the board outline.
func DefaultLayers() []string {
	var layers []string
	for _, side := range []string{"F", "B"} {
		for _, kind := range []string{"Cu", "Silkscreen", "Mask"} {
			layers = append(layers, side+"."+kind)
		}
	}
	return append(layers, "Edge.Cuts")
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Common: Common{
			KicadCLI: "kicad-cli",
			Layers:   DefaultLayers(),
		},
		Server: Server{
			Host:     "0.0.0.0",
			Port:     8000,
			LogLevel: "info",
		},
	}
}

// Load reads the configuration at path on top of the defaults. An empty
// path falls back to DefaultFile in the working directory; if that file
// does not exist, the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Common.Layers) == 0 {
		cfg.Common.Layers = DefaultLayers()
	}
	return cfg, nil
}
