package ai

import (
	"strings"
	"testing"

	"fleetsim/internal/combat"
	"fleetsim/internal/config"
	"fleetsim/internal/util"
)

func TestNewTacticalRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.AIConfig
		want string
	}{
		{"unknown axis", &config.AIConfig{Weights: map[string]float64{"luck": 1}}, "unknown scoring axis"},
		{"bad formula", &config.AIConfig{Formula: "turn_cost +"}, "compile formula"},
		{"unknown variable", &config.AIConfig{Formula: "bravery * 2"}, "compile formula"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTactical(tt.cfg, util.New(1), nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestWeightedSum(t *testing.T) {
	got := WeightedSum(map[string]float64{"position": 2, "clustering": 1})
	if got != "w.clustering * clustering + w.position * position" {
		t.Fatalf("formula = %q", got)
	}
}

func TestTacticalCustomFormula(t *testing.T) {
	a, e := armed("a", 10, gun(3, 300, 10), 0), armed("e", 10, nil, 0)
	a.Pos, e.Pos = combat.Vec2{X: 100, Y: 100}, combat.Vec2{X: 300, Y: 100}
	b := duel(a, e)
	a.StartTurn()

	tac, err := NewTactical(&config.AIConfig{Formula: "enemy_damage * 10 + w.turn_cost"}, util.New(1), nil)
	if err != nil {
		t.Fatalf("NewTactical: %v", err)
	}
	score, err := tac.Score(b, a, NewManeuver(a, weaponOf(a), combat.ShipTarget(e), moveMargin))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !approx(score, 3.5) {
		t.Fatalf("score = %v, want 3.5", score)
	}
}

func TestTacticalPrefersShooting(t *testing.T) {
	a, e := armed("a", 10, gun(3, 300, 10), 0), armed("e", 10, nil, 0)
	a.Pos, e.Pos = combat.Vec2{X: 300, Y: 300}, combat.Vec2{X: 500, Y: 300}
	b := duel(a, e)
	a.StartTurn()

	tac, err := NewTactical(&config.AIConfig{}, util.New(1), nil)
	if err != nil {
		t.Fatalf("NewTactical: %v", err)
	}
	if got := len(tac.Candidates(b, a)); got != 2 {
		t.Fatalf("candidates = %d, want end turn and one shot", got)
	}
	m := tac.Plan(b, a)
	if m == nil || m.Action != weaponOf(a) || m.Target.ShipID != "e" {
		t.Fatalf("plan = %v, want a shot at e", m)
	}
}

func TestTacticalEndsTurnWithoutOptions(t *testing.T) {
	a, e := armed("a", 10, nil, 0), armed("e", 10, nil, 0)
	a.Pos, e.Pos = combat.Vec2{X: 300, Y: 300}, combat.Vec2{X: 500, Y: 300}
	b := duel(a, e)
	a.StartTurn()

	tac, err := NewTactical(nil, util.New(1), nil)
	if err != nil {
		t.Fatalf("NewTactical: %v", err)
	}
	if m := tac.Plan(b, a); m != nil {
		t.Fatalf("plan = %v, want nil", m)
	}
	a.EndTurn()
	if m := tac.Plan(b, a); m != nil {
		t.Fatalf("plan for a ship out of turn = %v", m)
	}
}

func TestTacticalBlastCandidates(t *testing.T) {
	a := armed("a", 10, &combat.TriggerSpec{
		Power: 4, RangeRadius: 500, Blast: 100,
		Payload: []combat.Effect{&combat.DamageEffect{Base: 10}},
	}, 0)
	e1, e2 := armed("e1", 10, nil, 0), armed("e2", 10, nil, 0)
	a.Pos = combat.Vec2{X: 200, Y: 300}
	e1.Pos, e2.Pos = combat.Vec2{X: 500, Y: 300}, combat.Vec2{X: 500, Y: 450}
	b := combat.NewBattle([]*combat.Fleet{
		combat.NewFleet("f1", "p1", a),
		combat.NewFleet("f2", "p2", e1, e2),
	})
	a.StartTurn()

	tac, err := NewTactical(&config.AIConfig{}, util.New(1), nil)
	if err != nil {
		t.Fatalf("NewTactical: %v", err)
	}
	var mid bool
	for _, m := range tac.Candidates(b, a) {
		if near(m.Target.Pos(), combat.Vec2{X: 500, Y: 375}) {
			mid = true
		}
	}
	if !mid {
		t.Fatalf("expected a candidate between both enemies")
	}
	m := tac.Plan(b, a)
	if m == nil || !near(m.Target.Pos(), combat.Vec2{X: 500, Y: 375}) {
		t.Fatalf("plan = %v, want the shot hitting both enemies", m)
	}
}

func TestScanArena(t *testing.T) {
	r := util.NewScripted(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5)
	got := ScanArena(combat.DefaultArena(), 4, r)
	want := []combat.Vec2{{X: 452, Y: 237}, {X: 1356, Y: 237}, {X: 452, Y: 711}, {X: 1356, Y: 711}}
	if len(got) != len(want) {
		t.Fatalf("locations = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !near(got[i].Pos(), want[i]) {
			t.Fatalf("location %d = %v, want %v", i, got[i].Pos(), want[i])
		}
	}
	if ScanArena(combat.DefaultArena(), 0, r) != nil {
		t.Fatalf("no location expected")
	}
}
