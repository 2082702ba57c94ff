package combat

import (
	"fmt"
	"math"
)

// Effect is an atomic mutation applied to a ship. Attribute effects act through the attribute
// pipeline while they are equipped, stuck or in an area; the others act when applied.
type Effect interface {
	Code() string
	Beneficial() bool
	ApplyOn(ship, source *Ship, success float64)
	String() string
}

type AttributeEffect struct {
	Attr  AttrCode
	Value int
}

func (e *AttributeEffect) Code() string     { return "attr" }
func (e *AttributeEffect) Beneficial() bool { return e.Value >= 0 }
func (e *AttributeEffect) ApplyOn(ship, _ *Ship, _ float64) {
	ship.UpdateAttributes()
}
func (e *AttributeEffect) String() string { return fmt.Sprintf("%s %+d", e.Attr, e.Value) }

type AttributeMultiplyEffect struct {
	Attr    AttrCode
	Percent int
}

func (e *AttributeMultiplyEffect) Code() string     { return "attrmult" }
func (e *AttributeMultiplyEffect) Beneficial() bool { return e.Percent >= 0 }
func (e *AttributeMultiplyEffect) ApplyOn(ship, _ *Ship, _ float64) {
	ship.UpdateAttributes()
}
func (e *AttributeMultiplyEffect) String() string {
	return fmt.Sprintf("%s %+d%%", e.Attr, e.Percent)
}

type AttributeLimitEffect struct {
	Attr  AttrCode
	Limit int
}

func (e *AttributeLimitEffect) Code() string     { return "attrlimit" }
func (e *AttributeLimitEffect) Beneficial() bool { return false }
func (e *AttributeLimitEffect) ApplyOn(ship, _ *Ship, _ float64) {
	ship.UpdateAttributes()
}
func (e *AttributeLimitEffect) String() string {
	return fmt.Sprintf("limit %s to %d", e.Attr, e.Limit)
}

// DamageEffect deals between Base and Base+Span damage, shield first.
type DamageEffect struct {
	Base int
	Span int
}

func (e *DamageEffect) Code() string     { return "damage" }
func (e *DamageEffect) Beneficial() bool { return false }

// Expected is the mean damage before modifiers.
func (e *DamageEffect) Expected() float64 { return float64(e.Base) + float64(e.Span)/2 }

// Effective splits the damage dealt to a ship into hull and shield parts.
func (e *DamageEffect) Effective(ship *Ship, success float64) (hull, shield int) {
	dmg := int(math.Round((float64(e.Base) + float64(e.Span)*success) * ship.damageFactor()))
	shield = min(dmg, ship.Value(Shield))
	dmg -= shield
	hull = min(dmg, ship.Value(Hull))
	return hull, shield
}

func (e *DamageEffect) ApplyOn(ship, _ *Ship, success float64) {
	hull, shield := e.Effective(ship, success)
	if hull > 0 || shield > 0 {
		ship.AddDamage(hull, shield, true)
	}
}

func (e *DamageEffect) String() string {
	if e.Span > 0 {
		return fmt.Sprintf("do %d-%d damage", e.Base, e.Base+e.Span)
	}
	return fmt.Sprintf("do %d damage", e.Base)
}

// DamageModifierEffect changes damage taken by a percentage, clamped to [-100, 100] overall.
type DamageModifierEffect struct {
	Percent int
}

func (e *DamageModifierEffect) Code() string                { return "damagemod" }
func (e *DamageModifierEffect) Beneficial() bool            { return e.Percent <= 0 }
func (e *DamageModifierEffect) ApplyOn(_, _ *Ship, _ float64) {}
func (e *DamageModifierEffect) String() string {
	return fmt.Sprintf("%+d%% damage taken", e.Percent)
}

type ValueEffect struct {
	Value ValueCode
	Delta int
}

func (e *ValueEffect) Code() string     { return "value" }
func (e *ValueEffect) Beneficial() bool { return e.Delta >= 0 }
func (e *ValueEffect) ApplyOn(ship, _ *Ship, _ float64) {
	ship.AddValue(e.Value, e.Delta, true)
}
func (e *ValueEffect) String() string { return fmt.Sprintf("%s %+d", e.Value, e.Delta) }

// ValueTransferEffect gives Amount of a value from the source to the ship. A negative amount
// steals from the ship instead. The transfer is capped by the giver's current value.
type ValueTransferEffect struct {
	Value  ValueCode
	Amount int
}

func (e *ValueTransferEffect) Code() string     { return "valuetransfer" }
func (e *ValueTransferEffect) Beneficial() bool { return e.Amount >= 0 }
func (e *ValueTransferEffect) ApplyOn(ship, source *Ship, _ float64) {
	if source == nil || e.Amount == 0 {
		return
	}
	giver, receiver, amount := source, ship, e.Amount
	if amount < 0 {
		giver, receiver, amount = ship, source, -amount
	}
	amount = min(amount, giver.Value(e.Value))
	if amount <= 0 {
		return
	}
	giver.AddValue(e.Value, -amount, true)
	receiver.AddValue(e.Value, amount, true)
}
func (e *ValueTransferEffect) String() string {
	if e.Amount < 0 {
		return fmt.Sprintf("steal %d %s", -e.Amount, e.Value)
	}
	return fmt.Sprintf("give %d %s", e.Amount, e.Value)
}

// StickyEffect keeps a base effect on a ship for a number of turns. The base is applied once
// per turn, at the owner's turn start or turn end depending on OnTurnEnd. The duration
// counts down at the owner's turn end.
type StickyEffect struct {
	Base      Effect
	Duration  int
	OnStick   bool
	OnTurnEnd bool
}

func (e *StickyEffect) Code() string     { return e.Base.Code() }
func (e *StickyEffect) Beneficial() bool { return e.Base.Beneficial() }

func (e *StickyEffect) ApplyOn(ship, source *Ship, success float64) {
	ship.AddStickyEffect(&StickyEffect{
		Base: e.Base, Duration: e.Duration, OnStick: e.OnStick, OnTurnEnd: e.OnTurnEnd,
	}, true)
	if e.OnStick {
		e.Base.ApplyOn(ship, source, success)
	}
}

func (e *StickyEffect) String() string {
	return fmt.Sprintf("%s for %d turn(s)", e.Base, e.Duration)
}

func (e *StickyEffect) startTurn(ship *Ship) {
	if !e.OnTurnEnd && e.Duration > 0 {
		e.Base.ApplyOn(ship, nil, 1)
	}
}

// endTurn counts down one turn. The expired effect stays attached until the cleanup that
// follows.
func (e *StickyEffect) endTurn(ship *Ship) {
	if e.Duration <= 0 {
		return
	}
	if e.OnTurnEnd {
		e.Base.ApplyOn(ship, nil, 1)
		if !ship.Alive {
			return
		}
	}
	e.Duration--
	ship.log.emit(EvEffectChanged, ship.ID, map[string]any{
		"effect": e.Code(), "duration": e.Duration, "previous": e.Duration + 1,
	})
}

// IsHarmful reports whether any effect in the list is harmful to its target.
func IsHarmful(effects []Effect) bool {
	for _, e := range effects {
		if !e.Beneficial() {
			return true
		}
	}
	return false
}
