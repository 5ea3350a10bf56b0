package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"planetforge/internal/config"
)

// loadPlanetManifest overlays a YAML planet manifest onto the configuration.
// Manifests describe only the coarse planet parameters; the full generation
// config is derived from them.
func loadPlanetManifest(cfg *config.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read planet manifest: %w", err)
	}

	planet := cfg.Planet
	if err := yaml.Unmarshal(data, &planet); err != nil {
		return fmt.Errorf("parse planet manifest: %w", err)
	}
	cfg.Planet = planet

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate planet manifest: %w", err)
	}
	return nil
}
