package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadAll reads the equipment catalog, the ship models and the AI settings from dir.
// A missing ai.yaml falls back to defaults.
func LoadAll(dir string) (*EquipmentConfig, *ModelsConfig, *AIConfig, error) {
	var ec EquipmentConfig
	var mc ModelsConfig
	ac := DefaultAI()
	if err := loadYAML(filepath.Join(dir, "equipment.yaml"), &ec); err != nil {
		return nil, nil, nil, err
	}
	if err := loadYAML(filepath.Join(dir, "models.yaml"), &mc); err != nil {
		return nil, nil, nil, err
	}
	aiPath := filepath.Join(dir, "ai.yaml")
	if _, err := os.Stat(aiPath); err == nil {
		if err := loadYAML(aiPath, ac); err != nil {
			return nil, nil, nil, err
		}
	}
	return &ec, &mc, ac, nil
}
