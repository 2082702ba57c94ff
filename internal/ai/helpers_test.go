package ai

import (
	"fleetsim/internal/combat"
)

func armed(id string, power int, gun *combat.TriggerSpec, distancePerPower float64) *combat.Ship {
	s := combat.NewShip(id, id)
	s.Levels[combat.HullCapacity] = 40
	s.Levels[combat.PowerCapacity] = power
	if gun != nil {
		eq := combat.NewEquipment("gun", combat.SlotWeapon)
		eq.SetAction("Gun", gun)
		s.AddSlot(combat.SlotWeapon)
		s.Install(eq)
	}
	if distancePerPower > 0 {
		eq := combat.NewEquipment("engine", combat.SlotEngine)
		eq.SetAction("Engine", combat.NewMoveSpec(distancePerPower))
		s.AddSlot(combat.SlotEngine)
		s.Install(eq)
	}
	s.UpdateAttributes()
	s.InitializeForBattle()
	return s
}

func gun(power int, rangeRadius float64, damage int) *combat.TriggerSpec {
	return &combat.TriggerSpec{
		Power: power, RangeRadius: rangeRadius,
		Payload: []combat.Effect{&combat.DamageEffect{Base: damage}},
	}
}

func duel(a, e *combat.Ship) *combat.Battle {
	return combat.NewBattle([]*combat.Fleet{
		combat.NewFleet("f1", "p1", a),
		combat.NewFleet("f2", "p2", e),
	})
}

func weaponOf(s *combat.Ship) *combat.Action {
	return s.EquipmentIn(combat.SlotWeapon)[0].Action
}

func near(a, b combat.Vec2) bool {
	return a.Dist(b) < 1e-6
}
