package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultLayers(t *testing.T) {
	want := []string{"F.Cu", "F.Silkscreen", "F.Mask", "B.Cu", "B.Silkscreen", "B.Mask", "Edge.Cuts"}
	if got := DefaultLayers(); !reflect.DeepEqual(got, want) {
		t.Errorf("DefaultLayers() = %v, want %v", got, want)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("missing default file should yield defaults, got %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("an explicitly named missing file must be an error")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kidivis.toml")
	content := `[common]
kicad_cli = "/opt/kicad/bin/kicad-cli"
layers = ["F.Cu", "B.Cu"]

[server]
port = 9000
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Common.KicadCLI != "/opt/kicad/bin/kicad-cli" {
		t.Errorf("KicadCLI = %q", cfg.Common.KicadCLI)
	}
	if !reflect.DeepEqual(cfg.Common.Layers, []string{"F.Cu", "B.Cu"}) {
		t.Errorf("Layers = %v", cfg.Common.Layers)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.Server.LogLevel)
	}
	// Unset fields keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want default", cfg.Server.Host)
	}
}

func TestLoadEmptyLayersFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kidivis.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = 8080\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Common.Layers) == 0 {
		t.Error("layer list should fall back to the defaults")
	}
}
