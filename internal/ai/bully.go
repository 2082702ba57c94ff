package ai

import (
	"fleetsim/internal/combat"
)

// approachFactor is the part of the remaining distance covered by a fallback move.
const approachFactor = 0.5

// Planner picks the next maneuver for the playing ship, or nil when the turn should end.
type Planner interface {
	Plan(b *combat.Battle, ship *combat.Ship) *Maneuver
}

// Bully moves toward enemies and shoots the nearest one it can reach this turn.
type Bully struct {
	// Margin absorbs rounding errors on approach moves.
	Margin float64
}

func NewBully() *Bully {
	return &Bully{Margin: 0.1}
}

func (bl *Bully) Plan(b *combat.Battle, ship *combat.Ship) *Maneuver {
	if !ship.IsAbleToPlay(true) {
		return nil
	}
	var best *Maneuver
	bestScore := 0.0
	for _, m := range bl.Maneuvers(b, ship) {
		if score := -ship.Pos.Dist(m.Sim.FireAt.Pos()); best == nil || score > bestScore {
			best, bestScore = m, score
		}
	}
	if best != nil {
		return best
	}
	return bl.Fallback(b, ship)
}

// Maneuvers lists every feasible shot of a damaging weapon at a living enemy, moving first
// when needed.
func (bl *Bully) Maneuvers(b *combat.Battle, ship *combat.Ship) []*Maneuver {
	var out []*Maneuver
	weapons := Weapons(ship)
	for _, enemy := range Enemies(b, ship) {
		for _, w := range weapons {
			m := NewManeuver(ship, w, combat.ShipTarget(enemy), bl.Margin)
			if m.Possible() {
				out = append(out, m)
			}
		}
	}
	return out
}

// Fallback closes half the distance to the nearest enemy, keeping a safety distance. It
// ends the turn once applied.
func (bl *Bully) Fallback(b *combat.Battle, ship *combat.Ship) *Maneuver {
	var nearest *combat.Ship
	for _, e := range Enemies(b, ship) {
		if nearest == nil || ship.Pos.Dist(e.Pos) < ship.Pos.Dist(nearest.Pos) {
			nearest = e
		}
	}
	engine := BestEngine(ship)
	if nearest == nil || engine == nil {
		return nil
	}
	spec := engine.Spec.(*combat.MoveSpec)
	dist := ship.Pos.Dist(nearest.Pos)
	if dist <= spec.SafetyDistance {
		return nil
	}
	target := combat.ShipTarget(nearest).ConstrainInRange(ship.Pos, (dist-spec.SafetyDistance)*approachFactor)
	checked, ok := engine.CheckTarget(ship, target)
	if !ok {
		return nil
	}
	m := NewManeuver(ship, engine, checked, 0)
	if !m.Possible() {
		return nil
	}
	m.Final = true
	return m
}

// Enemies lists living enemy ships in play order.
func Enemies(b *combat.Battle, ship *combat.Ship) []*combat.Ship {
	var out []*combat.Ship
	for _, s := range b.Ships(true) {
		if s.IsEnemy(ship) {
			out = append(out, s)
		}
	}
	return out
}

// Weapons lists usable damaging weapon actions.
func Weapons(ship *combat.Ship) []*combat.Action {
	var out []*combat.Action
	for _, eq := range ship.EquipmentIn(combat.SlotWeapon) {
		if eq.HasDamage() && eq.Cooldown.CanUse() {
			out = append(out, eq.Action)
		}
	}
	return out
}
