package combat

func testShip(id string, hull, shield, power int) *Ship {
	s := NewShip(id, id)
	s.Levels[HullCapacity] = hull
	s.Levels[ShieldCapacity] = shield
	s.Levels[PowerCapacity] = power
	s.UpdateAttributes()
	s.InitializeForBattle()
	return s
}

func equip(s *Ship, eq *Equipment) *Equipment {
	s.AddSlot(eq.Slot)
	if !s.Install(eq) {
		panic("cannot install " + eq.Code)
	}
	return eq
}

func weapon(code string, spec *TriggerSpec) *Equipment {
	eq := NewEquipment(code, SlotWeapon)
	eq.SetAction(code, spec)
	return eq
}

func eventsOf(l *Log, typ, ship string) []Event {
	var out []Event
	for _, ev := range l.Events() {
		if ev.Type == typ && (ship == "" || ev.Ship == ship) {
			out = append(out, ev)
		}
	}
	return out
}
