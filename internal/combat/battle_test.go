package combat

import (
	"math"
	"testing"

	"fleetsim/internal/util"
)

func TestThrowInitiativeOrdersByWeightedThrow(t *testing.T) {
	maneuvrability := []int{2, 4, 1, 8, 2}
	ships := make([]*Ship, len(maneuvrability))
	for i, m := range maneuvrability {
		ships[i] = NewShip("ship"+string(rune('1'+i)), "")
		ships[i].SetLevel(Maneuvrability, m)
	}
	b := NewBattle([]*Fleet{
		NewFleet("f1", "p1", ships[0], ships[1]),
		NewFleet("f2", "p2", ships[2], ships[3], ships[4]),
	})

	b.ThrowInitiative(util.NewScripted(1.0, 0.1, 1.0, 0.2, 0.6))

	want := []string{"ship1", "ship4", "ship5", "ship3", "ship2"}
	if len(b.PlayOrder) != len(want) {
		t.Fatalf("play order has %d ships, want %d", len(b.PlayOrder), len(want))
	}
	for i, id := range want {
		if b.PlayOrder[i].ID != id {
			t.Errorf("play order[%d] = %s, want %s", i, b.PlayOrder[i].ID, id)
		}
	}
	if b.PlayIndex != -1 {
		t.Errorf("play index = %d, want -1", b.PlayIndex)
	}
}

func TestCollectShipsInCircleIsInclusive(t *testing.T) {
	pos := []Vec2{{0, 0}, {5, 8}, {6.5, 9.5}, {12, 12}}
	fleet := NewFleet("f1", "p1")
	for i, p := range pos {
		s := NewShip("ship"+string(rune('1'+i)), "")
		s.Pos = p
		fleet.AddShip(s)
	}
	b := NewBattle([]*Fleet{fleet})

	got := b.ShipsInCircle(Vec2{5, 8}, 3, false)
	if len(got) != 2 || got[0].ID != "ship2" || got[1].ID != "ship3" {
		t.Fatalf("ships in circle = %v, want [ship2 ship3]", ids(got))
	}
	edge := b.ShipsInCircle(Vec2{0, 3}, 3, false)
	if len(edge) != 1 || edge[0].ID != "ship1" {
		t.Fatalf("ship on the circle border should be collected, got %v", ids(edge))
	}
}

func ids(ships []*Ship) []string {
	out := make([]string, len(ships))
	for i, s := range ships {
		out[i] = s.ID
	}
	return out
}

func TestCheckEndBattleWinner(t *testing.T) {
	a, c := NewShip("a", ""), NewShip("c", "")
	f1, f2 := NewFleet("f1", "p1", a), NewFleet("f2", "p2", c)
	b := NewBattle([]*Fleet{f1, f2})

	if b.CheckEndBattle(true) {
		t.Fatalf("battle should go on with two alive fleets")
	}
	a.Alive = false
	if !b.CheckEndBattle(true) {
		t.Fatalf("battle should be over")
	}
	if b.Log.Len() != 1 || b.Log.Events()[0].Type != EvEndBattle {
		t.Fatalf("expected a single end battle event, got %v", b.Log.Events())
	}
	if b.Outcome == nil || b.Outcome.Draw || b.Outcome.Winner != "f2" {
		t.Fatalf("outcome = %+v, want f2 winner", b.Outcome)
	}
	if !b.Ended() || b.State() != StateEnded {
		t.Fatalf("battle state = %s", b.State())
	}

	b.CheckEndBattle(true)
	b.EndBattle(f1, true)
	if b.Log.Len() != 1 || b.Outcome.Winner != "f2" {
		t.Fatalf("ended battle must stay frozen, log=%d winner=%s", b.Log.Len(), b.Outcome.Winner)
	}
}

func TestCheckEndBattleDraw(t *testing.T) {
	a, c := NewShip("a", ""), NewShip("c", "")
	b := NewBattle([]*Fleet{NewFleet("f1", "p1", a), NewFleet("f2", "p2", c)})
	a.Alive = false
	c.Alive = false

	if !b.CheckEndBattle(true) {
		t.Fatalf("battle should be over")
	}
	events := b.Log.Events()
	if len(events) != 1 || events[0].Payload["winner"] != nil {
		t.Fatalf("expected one end battle event without winner, got %v", events)
	}
	if !b.Outcome.Draw || b.Outcome.Winner != "" {
		t.Fatalf("outcome = %+v, want draw", b.Outcome)
	}
}

func TestEquipmentWearsByTurnsAtBattleEnd(t *testing.T) {
	s1 := testShip("s1", 50, 0, 5)
	s2 := testShip("s2", 50, 0, 5)
	s3 := testShip("s3", 50, 0, 5)
	equip(s1, weapon("w1", &TriggerSpec{Power: 1, RangeRadius: 100}))
	equip(s2, weapon("w2", &TriggerSpec{Power: 1, RangeRadius: 100}))
	equip(s2, newEngine("engine", 10))
	equip(s3, weapon("w3", &TriggerSpec{Power: 1, RangeRadius: 100}))
	b := NewBattle([]*Fleet{NewFleet("f1", "p1", s1, s2), NewFleet("f2", "p2", s3)})

	b.Start()
	for i := 0; i < 8; i++ {
		b.AdvanceToNextShip(true)
	}
	if b.Ended() {
		t.Fatalf("battle ended unexpectedly")
	}
	if b.Turn != 3 {
		t.Fatalf("turn = %d, want 3", b.Turn)
	}
	for _, s := range b.Ships(false) {
		for _, eq := range s.AllEquipment() {
			if eq.Wear != 0 {
				t.Fatalf("%s wear = %d before battle end", eq.Code, eq.Wear)
			}
		}
	}

	b.EndBattle(nil, true)
	for _, s := range b.Ships(false) {
		for _, eq := range s.AllEquipment() {
			if eq.Wear != 3 {
				t.Errorf("%s on %s wear = %d, want 3", eq.Code, s.ID, eq.Wear)
			}
		}
	}
}

func TestStartPlacesFleetsFacingEachOther(t *testing.T) {
	a1, a2 := testShip("a1", 10, 0, 1), testShip("a2", 10, 0, 1)
	c1 := testShip("c1", 10, 0, 1)
	b := NewBattle([]*Fleet{NewFleet("f1", "p1", a1, a2), NewFleet("f2", "p2", c1)})

	b.Start()

	if b.State() != StateRunning {
		t.Fatalf("state = %s", b.State())
	}
	if a1.Pos.X != 452 || c1.Pos.X != 1356 {
		t.Fatalf("fleet lines at %v and %v", a1.Pos.X, c1.Pos.X)
	}
	if a1.Angle != 0 || c1.Angle != math.Pi {
		t.Fatalf("angles = %v, %v", a1.Angle, c1.Angle)
	}
	if math.Abs(a2.Pos.Y-a1.Pos.Y-948*0.2) > 1e-9 || c1.Pos.Y != 474 {
		t.Fatalf("vertical placement a1=%v a2=%v c1=%v", a1.Pos, a2.Pos, c1.Pos)
	}
	if b.PlayingShip() == nil || !b.PlayingShip().Playing() {
		t.Fatalf("first ship should be playing")
	}
	if len(eventsOf(b.Log, EvShipChange, "")) != 1 {
		t.Fatalf("expected one ship change event")
	}
}

func TestDeadShipKeepsItsSlotInRotation(t *testing.T) {
	s1, s2, s3 := testShip("s1", 10, 0, 1), testShip("s2", 10, 0, 1), testShip("s3", 10, 0, 1)
	b := NewBattle([]*Fleet{NewFleet("f1", "p1", s1, s2), NewFleet("f2", "p2", s3)})
	b.Start()
	if b.PlayingShip() != s1 {
		t.Fatalf("playing = %s", b.PlayingShip().ID)
	}
	s2.AddDamage(10, 0, true)

	b.AdvanceToNextShip(true)
	if b.PlayingShip() != s2 {
		t.Fatalf("dead ship should still get its slot, playing = %s", b.PlayingShip().ID)
	}
	if s2.IsAbleToPlay(false) {
		t.Fatalf("dead ship must not be able to play")
	}
	b.AdvanceToNextShip(true)
	if b.PlayingShip() != s3 || s2.Playing() {
		t.Fatalf("rotation should move on to s3")
	}
}

func TestApplyActionEndsTurnOfDestroyedPlayer(t *testing.T) {
	x, y, z := testShip("x", 10, 0, 5), testShip("y", 10, 0, 5), testShip("z", 10, 0, 5)
	selfDestruct := equip(x, weapon("self-destruct", &TriggerSpec{
		Payload: []Effect{&DamageEffect{Base: 50}},
	}))
	b := NewBattle([]*Fleet{NewFleet("f1", "p1", x, y), NewFleet("f2", "p2", z)})
	b.Start()
	if b.PlayingShip() != x {
		t.Fatalf("playing = %s", b.PlayingShip().ID)
	}

	if !b.ApplyAction(selfDestruct.Action, x, ShipTarget(x)) {
		t.Fatalf("action should apply")
	}
	if x.Alive || x.Playing() {
		t.Fatalf("x alive=%v playing=%v", x.Alive, x.Playing())
	}
	if b.PlayingShip() != y {
		t.Fatalf("turn should pass to y, playing = %s", b.PlayingShip().ID)
	}
}

func TestEndTurnActionAdvancesBattle(t *testing.T) {
	s1, s2 := testShip("s1", 10, 0, 5), testShip("s2", 10, 0, 5)
	b := NewBattle([]*Fleet{NewFleet("f1", "p1", s1), NewFleet("f2", "p2", s2)})
	b.Start()
	first := b.PlayingShip()

	if !b.ApplyAction(EndTurnAction, first, ShipTarget(first)) {
		t.Fatalf("end turn should apply")
	}
	if b.PlayingShip() == first || first.Playing() {
		t.Fatalf("turn did not pass")
	}
	if EndTurnAction.Apply(first, ShipTarget(first)) {
		t.Fatalf("end turn of a ship not playing should be rejected")
	}
}

func TestDroneProjectsEffectsUntilLifetimeEnds(t *testing.T) {
	owner, other := testShip("owner", 100, 0, 5), testShip("other", 100, 0, 5)
	owner.Pos = Vec2{100, 100}
	other.Pos = Vec2{250, 100}
	bay := equip(owner, NewEquipment("bay", SlotWeapon))
	bay.SetAction("Deploy", &DroneSpec{
		Power: 1, DeployDistance: 200, Radius: 50, Lifetime: 1,
		Payload: []Effect{&DamageModifierEffect{Percent: -50}},
	})
	b := NewBattle([]*Fleet{NewFleet("f1", "p1", owner), NewFleet("f2", "p2", other)})
	owner.StartTurn()

	if !bay.Action.Apply(owner, LocationTarget(250, 100)) {
		t.Fatalf("deploy should apply")
	}
	if len(b.Drones) != 1 {
		t.Fatalf("drones = %d", len(b.Drones))
	}
	applied := eventsOf(b.Log, EvDroneApplied, "")
	if len(applied) != 1 || len(applied[0].Payload["ships"].([]string)) != 1 {
		t.Fatalf("drone applied events = %v", applied)
	}
	if other.damageFactor() != 0.5 {
		t.Fatalf("damage factor = %v, want 0.5", other.damageFactor())
	}

	b.tickDrones(owner)
	if len(b.Drones) != 0 || len(eventsOf(b.Log, EvDroneDestroyed, "")) != 1 {
		t.Fatalf("drone should be destroyed")
	}
	if other.damageFactor() != 1 {
		t.Fatalf("damage factor = %v after drone removal", other.damageFactor())
	}

	d := &Drone{ID: "d", Owner: "owner"}
	b.AddDrone(d)
	b.AddDrone(d)
	b.RemoveDrone(d)
	b.RemoveDrone(d)
	if len(eventsOf(b.Log, EvDroneDeployed, "")) != 2 || len(eventsOf(b.Log, EvDroneDestroyed, "")) != 2 {
		t.Fatalf("drone membership changes should be idempotent")
	}
}

func TestInitialEventsDoNotTouchLog(t *testing.T) {
	s1, s2 := testShip("s1", 10, 5, 5), testShip("s2", 10, 5, 5)
	b := NewBattle([]*Fleet{NewFleet("f1", "p1", s1), NewFleet("f2", "p2", s2)})
	b.Start()
	before := b.Log.Len()

	events := b.InitialEvents()
	if b.Log.Len() != before {
		t.Fatalf("log changed")
	}
	// per ship: one move and three values, plus the current ship change
	if len(events) != 2*4+1 {
		t.Fatalf("initial events = %d", len(events))
	}
	if last := events[len(events)-1]; last.Type != EvShipChange || last.Ship != b.PlayingShip().ID {
		t.Fatalf("last initial event = %+v", last)
	}
}

func TestLogSubscription(t *testing.T) {
	l := NewLog()
	var seen []string
	cancel := l.Subscribe(func(ev Event) { seen = append(seen, ev.Type) })
	l.Add(Event{Type: EvMove})
	cancel()
	l.Add(Event{Type: EvValue})

	if len(seen) != 1 || seen[0] != EvMove {
		t.Fatalf("seen = %v", seen)
	}
	if l.Len() != 2 || l.Events()[1].Seq != 1 {
		t.Fatalf("log content = %v", l.Events())
	}
	var nilLog *Log
	nilLog.Add(Event{Type: EvMove})
	if nilLog.Len() != 0 {
		t.Fatalf("nil log should drop events")
	}
}
