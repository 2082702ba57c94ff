package combat

import (
	"go.uber.org/zap"

	"fleetsim/internal/util"
)

// World is the battle as seen by its ships: lookups, area effects and the random source.
// Ships never own it.
type World interface {
	Ships(aliveOnly bool) []*Ship
	ShipsInCircle(center Vec2, radius float64, aliveOnly bool) []*Ship
	AreaEffectsAt(p Vec2) []Effect
	Arena() Arena
	Random() *util.Rand
	AddDrone(d *Drone)
	EndTurn(s *Ship)
}

type Ship struct {
	ID      string
	Name    string
	Model   string
	FleetID string
	Alive   bool

	Pos   Vec2
	Angle float64

	// Levels are the base attribute values before effects.
	Levels     Attributes
	Slots      []*Slot
	Cargo      []*Equipment
	CargoSpace int
	Sticky     []*StickyEffect

	PlayPriority float64

	attrs      Attributes
	values     [valueCount]int
	activeArea []Effect
	playing    bool

	world World
	log   *Log
	diag  *zap.Logger
}

func NewShip(id, name string) *Ship {
	return &Ship{ID: id, Name: name, Alive: true, diag: zap.NewNop()}
}

func (s *Ship) bind(w World, log *Log, diag *zap.Logger) {
	s.world = w
	s.log = log
	if diag != nil {
		s.diag = diag
	}
}

func (s *Ship) Attr(c AttrCode) int      { return s.attrs[c] }
func (s *Ship) Attributes() Attributes   { return s.attrs }
func (s *Ship) Value(c ValueCode) int    { return s.values[c] }
func (s *Ship) Playing() bool            { return s.playing }
func (s *Ship) IsEnemy(other *Ship) bool { return s.FleetID != other.FleetID }

// SetLevel changes a base attribute and refreshes derived attributes.
func (s *Ship) SetLevel(c AttrCode, v int) {
	s.Levels[c] = v
	s.UpdateAttributes()
}

// SetValue sets a value, clamped to [0, capacity]. The ship dies when its hull reaches zero.
func (s *Ship) SetValue(c ValueCode, v int, log bool) {
	if s.setValue(c, v, log) && c == Hull {
		s.checkDeath(log)
	}
}

func (s *Ship) setValue(c ValueCode, v int, log bool) bool {
	v = min(max(v, 0), s.attrs[c.Capacity()])
	prev := s.values[c]
	if prev == v {
		return false
	}
	s.values[c] = v
	if log {
		s.log.emit(EvValue, s.ID, map[string]any{
			"value": c.String(), "current": v, "previous": prev, "maximal": s.attrs[c.Capacity()],
		})
	}
	return true
}

func (s *Ship) AddValue(c ValueCode, delta int, log bool) {
	s.SetValue(c, s.values[c]+delta, log)
}

func (s *Ship) checkDeath(log bool) {
	if s.Alive && s.values[Hull] == 0 {
		s.setDead(log)
	}
}

// UsePower spends power, refusing to go below zero.
func (s *Ship) UsePower(n int) bool {
	if n < 0 || n > s.values[Power] {
		return false
	}
	s.AddValue(Power, -n, true)
	return true
}

// Effects lists every effect currently acting on the ship: equipment, sticky and area.
func (s *Ship) Effects() []Effect {
	var out []Effect
	for _, slot := range s.Slots {
		if slot.Attached != nil {
			out = append(out, slot.Attached.Effects...)
		}
	}
	for _, st := range s.Sticky {
		out = append(out, st.Base)
	}
	return append(out, s.activeArea...)
}

// ActiveAreaEffects is the last snapshot of area effects covering the ship.
func (s *Ship) ActiveAreaEffects() []Effect {
	return append([]Effect(nil), s.activeArea...)
}

// UpdateAttributes rebuilds derived attributes from levels and effects, then clamps values
// to their capacity.
func (s *Ship) UpdateAttributes() {
	p := attrPipeline{base: s.Levels}
	for _, e := range s.Effects() {
		p.collect(e)
	}
	s.attrs = p.result()
	for c := ValueCode(0); c < valueCount; c++ {
		if limit := s.attrs[c.Capacity()]; s.values[c] > limit {
			s.SetValue(c, limit, true)
		}
	}
}

func (s *Ship) damageFactor() float64 {
	percent := 0
	for _, e := range s.Effects() {
		if m, ok := e.(*DamageModifierEffect); ok {
			percent += m.Percent
		}
	}
	return float64(min(max(percent, -100), 100)+100) / 100
}

func (s *Ship) IsAbleToPlay(checkPower bool) bool {
	return s.Alive && (!checkPower || s.values[Power] > 0)
}

func (s *Ship) ThrowInitiative(r *util.Rand) {
	s.PlayPriority = r.Random() * float64(s.Attr(Maneuvrability))
}

// InitializeForBattle resets the ship to full health and power, with cool equipment.
func (s *Ship) InitializeForBattle() {
	s.playing = false
	s.Sticky = nil
	s.activeArea = nil
	for _, eq := range s.AllEquipment() {
		eq.Cooldown.Reset()
		if t, ok := actionSpec[*ToggleSpec](eq.Action); ok {
			t.Activated = false
		}
	}
	s.UpdateAttributes()
	if !s.Alive {
		return
	}
	for c := ValueCode(0); c < valueCount; c++ {
		s.SetValue(c, s.attrs[c.Capacity()], false)
	}
}

func (s *Ship) StartTurn() {
	if s.playing {
		s.diag.Error("turn started while already playing", zap.String("ship", s.ID))
		return
	}
	s.playing = true
	if !s.Alive {
		return
	}
	s.UpdateAttributes()
	for _, st := range append([]*StickyEffect(nil), s.Sticky...) {
		if !s.Alive {
			break
		}
		st.startTurn(s)
	}
	for _, a := range s.Actions() {
		if t, ok := actionSpec[*ToggleSpec](a); ok && t.Activated {
			t.setActivated(a, s, false)
		}
	}
}

func (s *Ship) EndTurn() {
	if !s.playing {
		s.diag.Error("turn ended while not playing", zap.String("ship", s.ID))
		return
	}
	s.playing = false
	if !s.Alive {
		return
	}
	s.UpdateAttributes()
	s.AddValue(Power, s.Attr(PowerGeneration), true)
	for _, st := range append([]*StickyEffect(nil), s.Sticky...) {
		if !s.Alive {
			break
		}
		st.endTurn(s)
	}
	s.cleanStickyEffects()
	for _, eq := range s.AllEquipment() {
		eq.Cooldown.Cool()
	}
}

// AddStickyEffect sticks an effect to the ship.
func (s *Ship) AddStickyEffect(e *StickyEffect, log bool) {
	if !s.Alive {
		return
	}
	s.Sticky = append(s.Sticky, e)
	if log {
		s.log.emit(EvEffectAdded, s.ID, map[string]any{"effect": e.Code(), "duration": e.Duration})
	}
	s.UpdateAttributes()
}

func (s *Ship) cleanStickyEffects() {
	kept := s.Sticky[:0]
	removed := false
	for _, st := range s.Sticky {
		if st.Duration > 0 {
			kept = append(kept, st)
			continue
		}
		removed = true
		s.log.emit(EvEffectRemoved, s.ID, map[string]any{"effect": st.Code()})
	}
	s.Sticky = kept
	if removed {
		s.UpdateAttributes()
	}
}

// AddDamage removes shield then hull points. The ship dies when its hull reaches zero.
func (s *Ship) AddDamage(hull, shield int, log bool) {
	if shield > 0 {
		s.setValue(Shield, s.values[Shield]-shield, log)
	}
	if hull > 0 {
		s.setValue(Hull, s.values[Hull]-hull, log)
	}
	if log {
		s.log.emit(EvDamage, s.ID, map[string]any{"hull": hull, "shield": shield})
	}
	s.checkDeath(log)
}

func (s *Ship) setDead(log bool) {
	s.Alive = false
	s.Sticky = nil
	for c := ValueCode(0); c < valueCount; c++ {
		s.SetValue(c, 0, log)
	}
	if log {
		s.log.emit(EvDeath, s.ID, nil)
	}
	for _, a := range s.Actions() {
		if t, ok := actionSpec[*ToggleSpec](a); ok && t.Activated {
			t.setActivated(a, s, false)
		}
	}
}

// Rotate changes the facing without moving.
func (s *Ship) Rotate(angle float64, log bool) {
	s.Angle = angle
	if log {
		s.log.emit(EvMove, s.ID, map[string]any{"x": s.Pos.X, "y": s.Pos.Y, "angle": angle})
	}
}

// MoveTo relocates the ship. When an engine is used, the ship faces its destination.
// Every ship whose active area effects may have changed, including this one, is refreshed
// exactly once.
func (s *Ship) MoveTo(dest Vec2, engine, log bool) {
	before := s.areaImpacted()
	oldSelf := s.activeArea

	if engine && s.Pos.Dist(dest) > epsilon {
		s.Angle = s.Pos.AngleTo(dest)
	}
	s.Pos = dest
	if log {
		s.log.emit(EvMove, s.ID, map[string]any{"x": dest.X, "y": dest.Y, "angle": s.Angle})
	}

	after := s.areaImpacted()
	var changed []*Ship
	seen := map[*Ship]bool{}
	mark := func(o *Ship) {
		if !seen[o] {
			seen[o] = true
			changed = append(changed, o)
		}
	}
	for _, o := range symmetricDifference(before, after) {
		mark(o)
	}
	if s.world != nil && !sameEffects(oldSelf, s.world.AreaEffectsAt(s.Pos)) {
		mark(s)
	}
	for _, o := range changed {
		o.SetActiveEffectsChanged()
	}
}

// SetActiveEffectsChanged refreshes the area effects snapshot, logs it and recomputes
// attributes.
func (s *Ship) SetActiveEffectsChanged() {
	s.activeArea = nil
	if s.world != nil && s.Alive {
		s.activeArea = s.world.AreaEffectsAt(s.Pos)
	}
	codes := make([]string, len(s.activeArea))
	for i, e := range s.activeArea {
		codes[i] = e.String()
	}
	s.log.emit(EvActiveEffects, s.ID, map[string]any{"effects": codes})
	s.UpdateAttributes()
}

// areaImpacted lists ships covered by this ship's active toggles.
func (s *Ship) areaImpacted() []*Ship {
	if s.world == nil {
		return nil
	}
	var out []*Ship
	seen := map[*Ship]bool{}
	for _, a := range s.Actions() {
		t, ok := actionSpec[*ToggleSpec](a)
		if !ok || !t.Activated {
			continue
		}
		for _, o := range s.world.ShipsInCircle(s.Pos, t.Radius, true) {
			if !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	return out
}

// AreaEffectsAt lists the effects this ship projects on a location.
func (s *Ship) AreaEffectsAt(p Vec2) []Effect {
	if !s.Alive {
		return nil
	}
	var out []Effect
	d := s.Pos.Dist(p)
	for _, a := range s.Actions() {
		if t, ok := actionSpec[*ToggleSpec](a); ok && t.Activated && d <= t.Radius {
			out = append(out, t.Payload...)
		}
	}
	return out
}

func (s *Ship) IsInCircle(center Vec2, radius float64) bool {
	return s.Pos.Dist(center) <= radius
}

// Actions lists the equipment actions, in slot order, then the innate end turn.
func (s *Ship) Actions() []*Action {
	var out []*Action
	for _, eq := range s.AllEquipment() {
		if eq.Action != nil {
			out = append(out, eq.Action)
		}
	}
	return append(out, EndTurnAction)
}

func (s *Ship) AllEquipment() []*Equipment {
	var out []*Equipment
	for _, slot := range s.Slots {
		if slot.Attached != nil {
			out = append(out, slot.Attached)
		}
	}
	return out
}

func (s *Ship) EquipmentIn(t SlotType) []*Equipment {
	var out []*Equipment
	for _, slot := range s.Slots {
		if slot.Type == t && slot.Attached != nil {
			out = append(out, slot.Attached)
		}
	}
	return out
}

func (s *Ship) AddSlot(t SlotType) *Slot {
	slot := &Slot{Type: t}
	s.Slots = append(s.Slots, slot)
	return slot
}

func (s *Ship) equipped(item *Equipment) bool {
	for _, slot := range s.Slots {
		if slot.Attached == item {
			return true
		}
	}
	return false
}

func (s *Ship) owns(item *Equipment) bool {
	if s.equipped(item) {
		return true
	}
	for _, c := range s.Cargo {
		if c == item {
			return true
		}
	}
	return false
}

func (s *Ship) freeSlot(item *Equipment) *Slot {
	if !item.CanBeEquipped(s.Levels) {
		return nil
	}
	for _, slot := range s.Slots {
		if slot.Type == item.Slot && slot.Attached == nil {
			return slot
		}
	}
	return nil
}

// Install attaches an item that is not held anywhere on the ship, at construction time.
func (s *Ship) Install(item *Equipment) bool {
	if s.owns(item) {
		return false
	}
	slot := s.freeSlot(item)
	if slot == nil {
		return false
	}
	slot.Attached = item
	s.UpdateAttributes()
	return true
}

func (s *Ship) AddCargo(item *Equipment) bool {
	if len(s.Cargo) >= s.CargoSpace || s.owns(item) {
		return false
	}
	s.Cargo = append(s.Cargo, item)
	return true
}

func (s *Ship) RemoveCargo(item *Equipment) bool {
	for i, c := range s.Cargo {
		if c == item {
			s.Cargo = append(s.Cargo[:i], s.Cargo[i+1:]...)
			return true
		}
	}
	return false
}

// Equip moves an item from cargo to the first free slot accepting it.
func (s *Ship) Equip(item *Equipment) bool {
	inCargo := false
	for _, c := range s.Cargo {
		if c == item {
			inCargo = true
		}
	}
	if !inCargo {
		return false
	}
	slot := s.freeSlot(item)
	if slot == nil {
		return false
	}
	s.RemoveCargo(item)
	slot.Attached = item
	s.UpdateAttributes()
	return true
}

// Unequip moves an attached item back to cargo, if there is room.
func (s *Ship) Unequip(item *Equipment) bool {
	if len(s.Cargo) >= s.CargoSpace {
		return false
	}
	for _, slot := range s.Slots {
		if slot.Attached == item {
			slot.Attached = nil
			s.Cargo = append(s.Cargo, item)
			s.UpdateAttributes()
			return true
		}
	}
	return false
}

func actionSpec[T ActionSpec](a *Action) (T, bool) {
	var zero T
	if a == nil {
		return zero, false
	}
	t, ok := a.Spec.(T)
	return t, ok
}

func symmetricDifference(a, b []*Ship) []*Ship {
	inA := map[*Ship]bool{}
	inB := map[*Ship]bool{}
	for _, s := range a {
		inA[s] = true
	}
	for _, s := range b {
		inB[s] = true
	}
	var out []*Ship
	for _, s := range a {
		if !inB[s] {
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !inA[s] {
			out = append(out, s)
		}
	}
	return out
}

func sameEffects(a, b []Effect) bool {
	if len(a) != len(b) {
		return false
	}
	count := map[Effect]int{}
	for _, e := range a {
		count[e]++
	}
	for _, e := range b {
		count[e]--
		if count[e] < 0 {
			return false
		}
	}
	return true
}
