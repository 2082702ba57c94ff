package ai

import (
	"math"
	"testing"

	"fleetsim/internal/combat"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTurnCost(t *testing.T) {
	a, e := armed("a", 10, gun(3, 300, 10), 0), armed("e", 10, nil, 0)
	a.Pos, e.Pos = combat.Vec2{X: 100, Y: 100}, combat.Vec2{X: 300, Y: 100}
	b := duel(a, e)
	a.StartTurn()

	shot := NewManeuver(a, weaponOf(a), combat.ShipTarget(e), 0)
	if got := TurnCost(b, a, shot); !approx(got, 0.7) {
		t.Fatalf("turn cost = %v, want 0.7", got)
	}

	idle := NewManeuver(a, combat.EndTurnAction, combat.ShipTarget(a), 0)
	if got := TurnCost(b, a, idle); got != -1 {
		t.Fatalf("turn cost of doing nothing = %v, want -1", got)
	}

	a.SetValue(combat.Power, 2, false)
	if got := TurnCost(b, a, NewManeuver(a, weaponOf(a), combat.ShipTarget(e), 0)); got != -1 {
		t.Fatalf("turn cost over the reserve = %v, want -1", got)
	}

	weaponOf(a).Spec.(*combat.TriggerSpec).Power = 15
	if got := TurnCost(b, a, NewManeuver(a, weaponOf(a), combat.ShipTarget(e), 0)); got != Infeasible {
		t.Fatalf("turn cost over capacity = %v, want %v", got, Infeasible)
	}
}

func TestEnemyDamage(t *testing.T) {
	a, e := armed("a", 10, gun(3, 300, 10), 0), armed("e", 10, nil, 0)
	a.Pos, e.Pos = combat.Vec2{X: 100, Y: 100}, combat.Vec2{X: 300, Y: 100}
	b := duel(a, e)
	a.StartTurn()

	m := NewManeuver(a, weaponOf(a), combat.ShipTarget(e), 0)
	if got := EnemyDamage(b, a, m); !approx(got, 0.25) {
		t.Fatalf("enemy damage = %v, want 0.25", got)
	}
	idle := NewManeuver(a, combat.EndTurnAction, combat.ShipTarget(a), 0)
	if got := EnemyDamage(b, a, idle); got != 0 {
		t.Fatalf("enemy damage of ending the turn = %v", got)
	}
}

func TestClustering(t *testing.T) {
	a, e := armed("a", 10, nil, 0), armed("e", 10, nil, 0)
	a.Pos, e.Pos = combat.Vec2{X: 100, Y: 100}, combat.Vec2{X: 280.8, Y: 100}
	b := duel(a, e)
	a.StartTurn()

	m := NewManeuver(a, combat.EndTurnAction, combat.ShipTarget(a), 0)
	if got := Clustering(b, a, m); !approx(got, -0.1) {
		t.Fatalf("clustering = %v, want -0.1", got)
	}

	e.Pos = combat.Vec2{X: 101, Y: 100}
	if got := Clustering(b, a, m); got != -1 {
		t.Fatalf("clustering next to a ship = %v, want -1", got)
	}
}

func TestPosition(t *testing.T) {
	a, e := armed("a", 10, nil, 0), armed("e", 10, nil, 0)
	b := duel(a, e)
	arena := b.Arena()

	tests := []struct {
		name string
		pos  combat.Vec2
		want float64
	}{
		{"center", combat.Vec2{X: arena.Width / 2, Y: arena.Height / 2}, 1},
		{"left edge", combat.Vec2{X: 0, Y: arena.Height / 2}, -1},
		{"halfway", combat.Vec2{X: arena.Width / 2, Y: arena.Height / 4}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.Pos = tt.pos
			m := NewManeuver(a, combat.EndTurnAction, combat.ShipTarget(a), 0)
			if got := Position(b, a, m); !approx(got, tt.want) {
				t.Fatalf("position = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverheat(t *testing.T) {
	a, e := armed("a", 10, gun(3, 300, 10), 0), armed("e", 10, nil, 0)
	a.Pos, e.Pos = combat.Vec2{X: 100, Y: 100}, combat.Vec2{X: 300, Y: 100}
	b := duel(a, e)
	a.StartTurn()
	cooldown := &weaponOf(a).Equipment.Cooldown

	m := NewManeuver(a, weaponOf(a), combat.ShipTarget(e), 0)
	if got := Overheat(b, a, m); got != 0 {
		t.Fatalf("overheat without limit = %v", got)
	}

	cooldown.Configure(1, 2)
	if got := Overheat(b, a, m); !approx(got, -0.8) {
		t.Fatalf("overheat = %v, want -0.8", got)
	}
	cooldown.Configure(1, 3)
	if got := Overheat(b, a, m); got != -1 {
		t.Fatalf("overheat = %v, want -1", got)
	}
}

func TestActiveEffects(t *testing.T) {
	a, ally, e := armed("a", 10, nil, 0), armed("ally", 10, nil, 0), armed("e", 10, nil, 0)
	a.Pos, ally.Pos, e.Pos = combat.Vec2{X: 100, Y: 100}, combat.Vec2{X: 200, Y: 100}, combat.Vec2{X: 700, Y: 100}
	aura := combat.NewEquipment("aura", combat.SlotShield)
	aura.SetAction("Aura", &combat.ToggleSpec{
		Power: 2, Radius: 200,
		Payload: []combat.Effect{&combat.AttributeEffect{Attr: combat.ShieldCapacity, Value: 5}},
	})
	a.AddSlot(combat.SlotShield)
	a.Install(aura)
	b := combat.NewBattle([]*combat.Fleet{
		combat.NewFleet("f1", "p1", a, ally),
		combat.NewFleet("f2", "p2", e),
	})
	a.StartTurn()

	m := NewManeuver(a, aura.Action, combat.ShipTarget(a), 0)
	if got := ActiveEffects(b, a, m); !approx(got, 2.0/3) {
		t.Fatalf("active effects = %v, want 2/3", got)
	}

	e.Pos = combat.Vec2{X: 150, Y: 150}
	if got := ActiveEffects(b, a, m); !approx(got, 1.0/3) {
		t.Fatalf("active effects with an enemy in range = %v, want 1/3", got)
	}
}
