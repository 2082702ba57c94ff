package ai

import (
	"fmt"
	"math"

	"fleetsim/internal/combat"
)

// Part is one action of a maneuver, applied on its own.
type Part struct {
	Action   *combat.Action
	Target   combat.Target
	Power    int
	Possible bool
}

// Simulation is the predicted outcome of a move+fire sequence.
type Simulation struct {
	// Success is false only when no route brings the target in range.
	Success  bool
	Parts    []Part
	Complete bool

	NeedMove   bool
	CanMove    bool
	CanEndMove bool
	MovePower  int
	MoveTo     combat.Target

	NeedFire  bool
	CanFire   bool
	FirePower int
	FireAt    combat.Target
}

// Maneuver is the use of one action on a target, preceded by an approach move when the
// target is out of range.
type Maneuver struct {
	Ship   *combat.Ship
	Action *combat.Action
	Target combat.Target
	Sim    Simulation
	// Final maneuvers end the ship turn once applied.
	Final bool
}

func NewManeuver(ship *combat.Ship, action *combat.Action, target combat.Target, margin float64) *Maneuver {
	return &Maneuver{
		Ship:   ship,
		Action: action,
		Target: target,
		Sim:    Simulate(ship, action, target, margin),
	}
}

func (m *Maneuver) String() string {
	return fmt.Sprintf("use %s on (%.0f, %.0f)", m.Action.Code, m.Target.X, m.Target.Y)
}

// Possible reports whether the whole maneuver fits in the current turn.
func (m *Maneuver) Possible() bool {
	return m.Sim.Success && m.Sim.Complete
}

// MayContinue reports whether another maneuver could follow on the same ship.
func (m *Maneuver) MayContinue() bool {
	return m.Ship.Playing() && m.Possible() && m.Action != combat.EndTurnAction && !m.Final
}

// FinalLocation is where the ship stands once the maneuver is done.
func (m *Maneuver) FinalLocation() combat.Vec2 {
	if m.Sim.NeedMove {
		return m.Sim.MoveTo.Pos()
	}
	return m.Ship.Pos
}

func (m *Maneuver) PowerUsage() int {
	return m.Sim.MovePower + m.Sim.FirePower
}

// Apply plays every part through the battle. It stops at the first impossible or
// rejected part.
func (m *Maneuver) Apply(b *combat.Battle) bool {
	if !m.Sim.Success {
		return false
	}
	for _, p := range m.Sim.Parts {
		if p.Action == combat.EndTurnAction || !p.Possible || !b.ApplyAction(p.Action, m.Ship, p.Target) {
			return false
		}
	}
	return true
}

// Simulate predicts the parts needed to use an action on a target, moving first with the
// best engine when the target is out of range.
func Simulate(ship *combat.Ship, action *combat.Action, target combat.Target, margin float64) Simulation {
	var res Simulation
	power := ship.Value(combat.Power)
	res.MoveTo = combat.LocationTarget(ship.Pos.X, ship.Pos.Y)

	var moveAction *combat.Action
	var moveTarget *combat.Target
	if spec, ok := action.Spec.(*combat.MoveSpec); ok {
		corrected := spec.ApplyReachableRange(ship, target, power, margin)
		corrected = spec.ApplyExclusion(ship, corrected)
		res.NeedMove = target.DistanceTo(ship.Pos) > 0
		moveAction, moveTarget = action, &corrected
	} else if engine := BestEngine(ship); engine != nil {
		approach, needed, found := Approach(ship, engine, target, action.Range(ship), margin)
		switch {
		case !needed:
		case found:
			res.NeedMove = true
			moveAction, moveTarget = engine, &approach
		default:
			res.NeedMove = true
			return res
		}
	} else if target.DistanceTo(ship.Pos) > action.Range(ship) {
		res.NeedMove = true
		return res
	}
	if moveTarget != nil && moveTarget.DistanceTo(ship.Pos) < 1e-6 {
		res.NeedMove = false
	}

	if res.NeedMove && moveTarget != nil {
		res.MovePower = moveAction.Cost(ship, moveTarget)
		res.CanMove = power > 0
		res.CanEndMove = res.MovePower <= power
		res.MoveTo = *moveTarget
		res.Parts = append(res.Parts, Part{Action: moveAction, Target: *moveTarget, Power: res.MovePower, Possible: res.CanMove})
		power -= res.MovePower
	}

	if _, ok := action.Spec.(*combat.MoveSpec); ok {
		res.Success = res.NeedMove && res.CanMove
	} else {
		res.NeedFire = true
		res.FirePower = action.Cost(ship, &target)
		res.CanFire = res.FirePower <= power
		res.FireAt = target
		res.Parts = append(res.Parts, Part{
			Action: action, Target: target, Power: res.FirePower,
			Possible: (!res.NeedMove || res.CanEndMove) && res.CanFire,
		})
		res.Success = true
	}
	res.Complete = (!res.NeedMove || res.CanEndMove) && (!res.NeedFire || res.CanFire)
	return res
}

// BestEngine returns the usable engine covering the most distance per power point.
func BestEngine(ship *combat.Ship) *combat.Action {
	var best *combat.Action
	bestDPP := 0.0
	for _, eq := range ship.EquipmentIn(combat.SlotEngine) {
		if eq.Action == nil || !eq.Cooldown.CanUse() {
			continue
		}
		spec, ok := eq.Action.Spec.(*combat.MoveSpec)
		if !ok {
			continue
		}
		if best == nil || spec.DistancePerPower > bestDPP {
			best, bestDPP = eq.Action, spec.DistancePerPower
		}
	}
	return best
}

// Approach finds the nearest reachable location putting the target within radius.
// needed is false when the target is already in range.
func Approach(ship *combat.Ship, engine *combat.Action, target combat.Target, radius, margin float64) (loc combat.Target, needed, found bool) {
	d := target.Pos().Sub(ship.Pos)
	dist := d.Len()
	if dist <= radius {
		return combat.Target{}, false, false
	}
	if margin > 0 && radius > margin {
		radius -= margin
	}
	factor := (dist - radius) / dist
	candidate := combat.LocationTarget(ship.Pos.X+d.X*factor, ship.Pos.Y+d.Y*factor)
	if canMoveTo(ship, engine, candidate) {
		return candidate, true, true
	}
	bestDist := math.Inf(1)
	for _, c := range scanCircle(target.Pos(), radius, 6, 30) {
		if !canMoveTo(ship, engine, c) {
			continue
		}
		if cd := c.DistanceTo(ship.Pos); cd < bestDist {
			loc, bestDist, found = c, cd, true
		}
	}
	return loc, true, found
}

func canMoveTo(ship *combat.Ship, engine *combat.Action, t combat.Target) bool {
	checked, ok := engine.CheckTarget(ship, t)
	return ok && checked.X == t.X && checked.Y == t.Y
}

// scanCircle lists points on rings concentric to center, from the center outwards.
func scanCircle(center combat.Vec2, radius float64, rings, angles int) []combat.Target {
	var out []combat.Target
	for i := 0; i < rings; i++ {
		r, n := 0.0, 1
		if rings > 1 {
			r = float64(i) / float64(rings-1)
			n = max(1, (angles*i+rings-2)/(rings-1))
		}
		for j := 0; j < n; j++ {
			a := 2 * math.Pi * float64(j) / float64(n)
			p := center.Polar(a, r*radius)
			out = append(out, combat.LocationTarget(p.X, p.Y))
		}
	}
	return out
}
