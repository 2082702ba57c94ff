package combat

import "fleetsim/internal/util"

// Outcome is the frozen result of an ended battle.
type Outcome struct {
	Draw   bool
	Winner string
	Loot   []*Equipment
}

func NewOutcome(winner *Fleet) *Outcome {
	if winner == nil {
		return &Outcome{Draw: true}
	}
	return &Outcome{Winner: winner.ID}
}

// CreateLoot lets the winner salvage part of its own wrecks, plus one random item from some
// destroyed enemies.
func (o *Outcome) CreateLoot(b *Battle, r *util.Rand) {
	if o.Draw {
		return
	}
	var salvage []*Equipment
	for _, s := range b.Ships(false) {
		if s.Alive || s.FleetID != o.Winner {
			continue
		}
		salvage = append(salvage, s.AllEquipment()...)
	}
	if len(salvage) > 0 {
		o.Loot = append(o.Loot, util.Sample(r, salvage, r.RandInt(0, len(salvage)))...)
	}
	for _, s := range b.Ships(false) {
		if s.Alive || s.FleetID == o.Winner {
			continue
		}
		if r.Random() <= 0.5 {
			continue
		}
		if item, ok := util.Choice(r, s.AllEquipment()); ok {
			o.Loot = append(o.Loot, item)
		}
	}
}
