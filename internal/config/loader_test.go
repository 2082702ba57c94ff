package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadAllAssets(t *testing.T) {
	ec, mc, ac, err := LoadAll(filepath.Join("..", "..", "assets"))
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(ec.Equipment) == 0 || len(mc.Models) == 0 {
		t.Fatalf("equipment %d models %d", len(ec.Equipment), len(mc.Models))
	}
	var torpedo *EquipmentTemplate
	for i := range ec.Equipment {
		if ec.Equipment[i].Code == "torpedo-rack" {
			torpedo = &ec.Equipment[i]
		}
	}
	if torpedo == nil || torpedo.Action == nil || torpedo.Action.Kind != "trigger" || torpedo.Action.Blast != 120 {
		t.Fatalf("torpedo rack = %+v", torpedo)
	}
	if ac.Weights["active_effects"] != 3 || ac.RandomMoves != 40 {
		t.Fatalf("ai config = %+v", ac)
	}
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadAllDefaultsAI(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "equipment.yaml", "equipment: []\n")
	writeFile(t, dir, "models.yaml", "models: []\n")
	_, _, ac, err := LoadAll(dir)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if ac.MaxTurns != DefaultAI().MaxTurns || ac.Weights["enemy_damage"] != 5 {
		t.Fatalf("ai config = %+v", ac)
	}
}

func TestLoadAllErrors(t *testing.T) {
	dir := t.TempDir()
	if _, _, _, err := LoadAll(dir); err == nil {
		t.Fatalf("missing files should fail")
	}
	writeFile(t, dir, "equipment.yaml", "equipment: [\n")
	writeFile(t, dir, "models.yaml", "models: []\n")
	_, _, _, err := LoadAll(dir)
	if err == nil || !strings.Contains(err.Error(), "equipment.yaml") {
		t.Fatalf("err = %v, want a parse error naming the file", err)
	}
}
