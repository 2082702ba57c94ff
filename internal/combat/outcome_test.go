package combat

import (
	"testing"

	"fleetsim/internal/util"
)

func TestCreateLoot(t *testing.T) {
	alive, wreck, enemy := NewShip("alive", ""), NewShip("wreck", ""), NewShip("enemy", "")
	h1 := equip(wreck, NewEquipment("h1", SlotHull))
	h2 := equip(wreck, NewEquipment("h2", SlotShield))
	g1 := equip(enemy, NewEquipment("g1", SlotWeapon))
	wreck.Alive, enemy.Alive = false, false
	winner := NewFleet("f1", "p1", alive, wreck)
	b := NewBattle([]*Fleet{winner, NewFleet("f2", "p2", enemy)})

	o := NewOutcome(winner)
	o.CreateLoot(b, util.NewScripted(0.99, 0, 0, 0.7, 0))

	want := []*Equipment{h1, h2, g1}
	if len(o.Loot) != len(want) {
		t.Fatalf("loot = %d items, want %d", len(o.Loot), len(want))
	}
	for i, eq := range want {
		if o.Loot[i] != eq {
			t.Errorf("loot[%d] = %s, want %s", i, o.Loot[i].Code, eq.Code)
		}
	}
}

func TestCreateLootSkipsUnluckyWrecks(t *testing.T) {
	alive, enemy := NewShip("alive", ""), NewShip("enemy", "")
	equip(enemy, NewEquipment("g1", SlotWeapon))
	enemy.Alive = false
	winner := NewFleet("f1", "p1", alive)
	b := NewBattle([]*Fleet{winner, NewFleet("f2", "p2", enemy)})

	o := NewOutcome(winner)
	o.CreateLoot(b, util.NewScripted(0.3))
	if len(o.Loot) != 0 {
		t.Fatalf("loot = %v", o.Loot)
	}
	draw := NewOutcome(nil)
	draw.CreateLoot(b, util.NewScripted(0.9, 0))
	if !draw.Draw || len(draw.Loot) != 0 {
		t.Fatalf("a draw has no loot")
	}
}
