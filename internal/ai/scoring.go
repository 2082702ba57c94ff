package ai

import (
	"math"

	"fleetsim/internal/combat"
)

// Infeasible scores a maneuver that cannot be done even with a full power reserve.
const Infeasible = -1000.0

// Scorer rates one aspect of a maneuver in [-1, 1]. Scorers have no side effects.
type Scorer func(b *combat.Battle, ship *combat.Ship, m *Maneuver) float64

// Scorers are the scoring axes by name, as used in weights and formulas.
var Scorers = map[string]Scorer{
	"turn_cost":      TurnCost,
	"enemy_damage":   EnemyDamage,
	"clustering":     Clustering,
	"position":       Position,
	"overheat":       Overheat,
	"active_effects": ActiveEffects,
}

// TurnCost is the fraction of the power reserve left after the maneuver.
func TurnCost(_ *combat.Battle, ship *combat.Ship, m *Maneuver) float64 {
	usage := m.PowerUsage()
	capacity := ship.Attr(combat.PowerCapacity)
	switch {
	case usage == 0:
		return -1
	case m.Sim.FirePower > capacity:
		return Infeasible
	case usage > ship.Value(combat.Power):
		return -1
	}
	return float64(ship.Value(combat.Power)-usage) / float64(capacity)
}

// EnemyDamage sums the expected health fraction removed from each ship hit, enemies counting
// positively and allies negatively.
func EnemyDamage(_ *combat.Battle, ship *combat.Ship, m *Maneuver) float64 {
	spec, ok := m.Action.Spec.(*combat.TriggerSpec)
	if !ok {
		return 0
	}
	score := 0.0
	for _, s := range spec.ImpactedFrom(ship, m.FinalLocation(), m.Sim.FireAt) {
		health := s.Value(combat.Hull) + s.Value(combat.Shield)
		if health <= 0 {
			continue
		}
		removed := 0
		for _, e := range spec.Payload {
			if d, ok := e.(*combat.DamageEffect); ok {
				hull, shield := d.Effective(s, 0.5)
				removed += hull + shield
			}
		}
		fraction := math.Min(1, float64(removed)/float64(health))
		if s.IsEnemy(ship) {
			score += fraction
		} else {
			score -= fraction
		}
	}
	return score
}

// Clustering penalizes ending close to other ships.
func Clustering(b *combat.Battle, ship *combat.Ship, m *Maneuver) float64 {
	loc := m.FinalLocation()
	arena := b.Arena()
	factor := math.Max(arena.Width, arena.Height) * 0.01
	total := 0.0
	others := 0
	for _, s := range b.Ships(true) {
		if s == ship {
			continue
		}
		others++
		total += factor / s.Pos.Dist(loc)
	}
	if others == 0 {
		return 0
	}
	return -math.Min(1, math.Max(0, total))
}

// Position favors the arena center over its borders.
func Position(b *combat.Battle, _ *combat.Ship, m *Maneuver) float64 {
	p := m.FinalLocation()
	arena := b.Arena()
	d := min(p.X, p.Y, arena.Width-p.X, arena.Height-p.Y)
	factor := min(arena.Width/2, arena.Height/2)
	return -1 + 2*d/factor
}

// Overheat penalizes using equipment that would overheat, by its cooling time.
func Overheat(_ *combat.Battle, _ *combat.Ship, m *Maneuver) float64 {
	eq := m.Action.Equipment
	if eq == nil || !eq.Cooldown.WillOverheat() {
		return 0
	}
	return -math.Min(1, 0.4*float64(eq.Cooldown.Cooling))
}

// ActiveEffects counts lasting effects landing on the right side: beneficial ones on allies,
// harmful ones on enemies.
func ActiveEffects(b *combat.Battle, ship *combat.Ship, m *Maneuver) float64 {
	type hit struct {
		ship   *combat.Ship
		effect combat.Effect
	}
	var hits []hit
	switch spec := m.Action.Spec.(type) {
	case *combat.TriggerSpec:
		for _, s := range spec.ImpactedFrom(ship, m.FinalLocation(), m.Sim.FireAt) {
			for _, e := range spec.Payload {
				if _, ok := e.(*combat.StickyEffect); ok {
					hits = append(hits, hit{s, e})
				}
			}
		}
	case *combat.ToggleSpec:
		if spec.Activated {
			break
		}
		for _, s := range b.ShipsInCircle(m.FinalLocation(), spec.Radius, true) {
			for _, e := range spec.Payload {
				hits = append(hits, hit{s, e})
			}
		}
	case *combat.DroneSpec:
		for _, s := range b.ShipsInCircle(m.Sim.FireAt.Pos(), spec.Radius, true) {
			for _, e := range spec.Payload {
				hits = append(hits, hit{s, e})
			}
		}
	}
	total := len(b.Ships(true))
	if total == 0 {
		return 0
	}
	score := 0
	for _, h := range hits {
		if h.effect.Beneficial() != h.ship.IsEnemy(ship) {
			score++
		} else {
			score--
		}
	}
	return math.Max(-1, math.Min(1, float64(score)/float64(total)))
}
