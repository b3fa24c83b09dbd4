package main

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"earthlod/internal/config"
	"gopkg.in/yaml.v3"
)

func TestWriteConfigFromEnvJSON(t *testing.T) {
	t.Setenv(envConfigYAMLB64, "")

	cfg := config.Default()
	cfg.LOD.TileWidth = 32
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	t.Setenv(envConfigJSON, string(data))

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	wrote, err := writeConfigFromEnv(path)
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected config to be written")
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if loaded.LOD.TileWidth != 32 {
		t.Fatalf("unexpected tile width: %d", loaded.LOD.TileWidth)
	}
}

func TestWriteConfigFromEnvYAMLKeepsDefaults(t *testing.T) {
	t.Setenv(envConfigJSON, "")
	payload := []byte("world:\n  seaLevel: 70\n")
	t.Setenv(envConfigYAMLB64, base64.StdEncoding.EncodeToString(payload))

	path := filepath.Join(t.TempDir(), "config.json")
	wrote, err := writeConfigFromEnv(path)
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected config to be written")
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var decoded config.Config
	if err := json.Unmarshal(contents, &decoded); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if decoded.World.SeaLevel != 70 {
		t.Fatalf("unexpected sea level: %d", decoded.World.SeaLevel)
	}
	if decoded.LOD.TileWidth != config.Default().LOD.TileWidth {
		t.Fatalf("expected default tile width, got %d", decoded.LOD.TileWidth)
	}
}

func TestWriteConfigFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv(envConfigYAMLB64, "")
	cfg := config.Default()
	cfg.Geo.Source = "ftp"
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, base64.StdEncoding.EncodeToString(data))

	if _, err := writeConfigFromEnv(filepath.Join(t.TempDir(), "config.json")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestWriteConfigFromEnvNoPayload(t *testing.T) {
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, "")

	wrote, err := writeConfigFromEnv("/tmp/unused.json")
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if wrote {
		t.Fatalf("expected no config to be written")
	}
}
