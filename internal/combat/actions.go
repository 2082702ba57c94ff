package combat

import (
	"errors"
	"math"

	"go.uber.org/zap"
)

type TargetingMode int

const (
	TargetSelfConfirm TargetingMode = iota
	TargetShip
	TargetSpace
	TargetSurroundings
)

// InfinitePower is the cost of an action that can never be afforded.
const InfinitePower = math.MaxInt32

var (
	ErrNotPlaying     = errors.New("ship is not playing")
	ErrDead           = errors.New("ship is destroyed")
	ErrNotEnoughPower = errors.New("not enough power")
	ErrOverheated     = errors.New("equipment is overheated")
	ErrInvalidTarget  = errors.New("invalid target")
	ErrNoEquipment    = errors.New("equipment is not equipped")
)

// ActionSpec is the behavior of one kind of action: cost, targeting and effect production.
type ActionSpec interface {
	Kind() string
	// PowerUsage is the cost for a target; nil asks for the base cost.
	PowerUsage(ship *Ship, target *Target) int
	Targeting(ship *Ship) TargetingMode
	Range(ship *Ship) float64
	Effects() []Effect

	checkPower(ship *Ship, power int) error
	checkShipTarget(a *Action, ship *Ship, target Target) (Target, bool)
	checkLocationTarget(a *Action, ship *Ship, target Target) (Target, bool)
	produce(a *Action, ship *Ship, target Target)
}

// Action binds a spec to the equipment providing it. Innate actions have no equipment.
type Action struct {
	Code      string
	Name      string
	Equipment *Equipment
	Spec      ActionSpec
}

func (a *Action) Kind() string                       { return a.Spec.Kind() }
func (a *Action) Effects() []Effect                  { return a.Spec.Effects() }
func (a *Action) Range(ship *Ship) float64           { return a.Spec.Range(ship) }
func (a *Action) Targeting(ship *Ship) TargetingMode { return a.Spec.Targeting(ship) }

// Cost is the power needed to apply the action on a target.
func (a *Action) Cost(ship *Ship, target *Target) int {
	return a.Spec.PowerUsage(ship, target)
}

// CheckCannotBeApplied returns why the action cannot be used right now, or nil.
func (a *Action) CheckCannotBeApplied(ship *Ship) error {
	return a.CheckWithPower(ship, ship.Value(Power))
}

// CheckWithPower is CheckCannotBeApplied with a hypothetical power budget.
func (a *Action) CheckWithPower(ship *Ship, power int) error {
	if !ship.Playing() {
		return ErrNotPlaying
	}
	if !ship.Alive {
		return ErrDead
	}
	if a.Equipment != nil && !ship.equipped(a.Equipment) {
		return ErrNoEquipment
	}
	if err := a.Spec.checkPower(ship, power); err != nil {
		return err
	}
	if a.Equipment != nil && !a.Equipment.Cooldown.CanUse() {
		return ErrOverheated
	}
	return nil
}

// CheckTarget validates a target, possibly altering it.
func (a *Action) CheckTarget(ship *Ship, target Target) (Target, bool) {
	if a.CheckCannotBeApplied(ship) != nil {
		return Target{}, false
	}
	if target.IsShip() {
		return a.Spec.checkShipTarget(a, ship, target)
	}
	return a.Spec.checkLocationTarget(a, ship, target)
}

// Apply performs the action. Rejections return false without touching any state.
func (a *Action) Apply(ship *Ship, target Target) bool {
	reject := func(reason error) bool {
		ship.diag.Debug("action rejected",
			zap.String("ship", ship.ID),
			zap.String("action", a.Code),
			zap.Error(reason))
		return false
	}
	if err := a.CheckCannotBeApplied(ship); err != nil {
		return reject(err)
	}
	checked, ok := a.CheckTarget(ship, target)
	if !ok {
		return reject(ErrInvalidTarget)
	}
	cost := a.Cost(ship, &checked)
	if cost > ship.Value(Power) {
		return reject(ErrNotEnoughPower)
	}

	if cost != 0 {
		ship.AddValue(Power, -cost, true)
	}
	if a.Equipment != nil {
		a.Equipment.AddWear(1)
		a.Equipment.Cooldown.Use()
	}
	if cost > 0 {
		for _, eq := range ship.EquipmentIn(SlotPower) {
			eq.AddWear(1)
		}
	}
	ship.log.emit(EvActionApplied, ship.ID, map[string]any{
		"action": a.Code, "cost": cost,
		"x": checked.X, "y": checked.Y, "target": checked.ShipID,
	})
	a.Spec.produce(a, ship, checked)
	return true
}

// DefaultTarget suggests a target: the nearest enemy for harmful actions, the nearest ally
// otherwise, and the ship itself for self-centered actions.
func (a *Action) DefaultTarget(ship *Ship) Target {
	switch a.Targeting(ship) {
	case TargetSelfConfirm, TargetSurroundings:
		return ShipTarget(ship)
	}
	if _, ok := a.Spec.(*MoveSpec); ok {
		p := ship.Pos.Polar(ship.Angle, 100)
		return LocationTarget(p.X, p.Y)
	}
	if ship.world == nil {
		return ShipTarget(ship)
	}
	harmful := IsHarmful(a.Effects())
	var best *Ship
	bestDist := math.Inf(1)
	for _, other := range ship.world.Ships(true) {
		if other == ship || other.IsEnemy(ship) != harmful {
			continue
		}
		if d := ship.Pos.Dist(other.Pos); d < bestDist {
			best, bestDist = other, d
		}
	}
	if best == nil {
		return ShipTarget(ship)
	}
	return ShipTarget(best)
}

func basicPowerCheck(cost, power int) error {
	if power < cost {
		return ErrNotEnoughPower
	}
	return nil
}

// EndTurnSpec ends the ship's turn. It is innate to every ship.
type EndTurnSpec struct{}

// EndTurnAction is shared by all ships.
var EndTurnAction = &Action{Code: "endturn", Name: "End turn", Spec: EndTurnSpec{}}

func (EndTurnSpec) Kind() string                      { return "endturn" }
func (EndTurnSpec) PowerUsage(_ *Ship, _ *Target) int { return 0 }
func (EndTurnSpec) Targeting(_ *Ship) TargetingMode   { return TargetSelfConfirm }
func (EndTurnSpec) Range(_ *Ship) float64             { return 0 }
func (EndTurnSpec) Effects() []Effect                 { return nil }
func (EndTurnSpec) checkPower(_ *Ship, _ int) error   { return nil }
func (EndTurnSpec) checkShipTarget(_ *Action, ship *Ship, t Target) (Target, bool) {
	return t, t.ShipID == ship.ID
}
func (EndTurnSpec) checkLocationTarget(_ *Action, ship *Ship, _ Target) (Target, bool) {
	return ShipTarget(ship), true
}
func (EndTurnSpec) produce(_ *Action, ship *Ship, _ Target) {
	if ship.world != nil {
		ship.world.EndTurn(ship)
		return
	}
	ship.EndTurn()
}

// MoveSpec moves the ship, spending power per distance unit.
type MoveSpec struct {
	DistancePerPower float64
	SafetyDistance   float64
}

func NewMoveSpec(distancePerPower float64) *MoveSpec {
	return &MoveSpec{DistancePerPower: distancePerPower, SafetyDistance: 120}
}

func (m *MoveSpec) Kind() string                    { return "move" }
func (m *MoveSpec) Targeting(_ *Ship) TargetingMode { return TargetSpace }
func (m *MoveSpec) Effects() []Effect               { return nil }

func (m *MoveSpec) PowerUsage(ship *Ship, target *Target) int {
	switch {
	case m.DistancePerPower == 0:
		return InfinitePower
	case target == nil:
		return 0
	}
	return int(math.Ceil(target.DistanceTo(ship.Pos) / m.DistancePerPower))
}

func (m *MoveSpec) Range(ship *Ship) float64 { return m.RangeForPower(ship.Value(Power)) }

// RangeForPower is the distance reachable with a power budget.
func (m *MoveSpec) RangeForPower(power int) float64 {
	return float64(power) * m.DistancePerPower
}

func (m *MoveSpec) checkPower(_ *Ship, power int) error {
	if power <= 0 {
		return ErrNotEnoughPower
	}
	return nil
}

func (m *MoveSpec) checkShipTarget(a *Action, ship *Ship, t Target) (Target, bool) {
	return m.checkLocationTarget(a, ship, LocationTarget(t.X, t.Y))
}

func (m *MoveSpec) checkLocationTarget(_ *Action, ship *Ship, t Target) (Target, bool) {
	t = m.ApplyReachableRange(ship, t, ship.Value(Power), 0.1)
	t = m.ApplyExclusion(ship, t)
	return t, t.DistanceTo(ship.Pos) > 0
}

// ApplyReachableRange constrains a destination to what a power budget can reach.
func (m *MoveSpec) ApplyReachableRange(ship *Ship, t Target, power int, margin float64) Target {
	radius := max(0, m.RangeForPower(power)-margin)
	return t.ConstrainInRange(ship.Pos, radius)
}

// ApplyExclusion keeps the destination away from arena borders and other ships.
func (m *MoveSpec) ApplyExclusion(ship *Ship, t Target) Target {
	if ship.world == nil {
		return t
	}
	ex := newExclusion(ship.world.Arena(), ship, m.SafetyDistance)
	p := ex.stopBefore(t.Pos(), ship.Pos)
	return LocationTarget(p.X, p.Y)
}

func (m *MoveSpec) produce(_ *Action, ship *Ship, t Target) {
	ship.MoveTo(t.Pos(), true, true)
}

// TriggerSpec fires or triggers effects on ships, with optional range, blast and arc.
type TriggerSpec struct {
	Power       int
	RangeRadius float64
	Blast       float64
	// Angle is the arc width in degrees.
	Angle   float64
	Payload []Effect
}

func (t *TriggerSpec) Kind() string                      { return "fire" }
func (t *TriggerSpec) PowerUsage(_ *Ship, _ *Target) int { return t.Power }
func (t *TriggerSpec) Range(_ *Ship) float64             { return t.RangeRadius }
func (t *TriggerSpec) Effects() []Effect                 { return t.Payload }

func (t *TriggerSpec) Targeting(_ *Ship) TargetingMode {
	switch {
	case t.Blast > 0 && t.RangeRadius > 0:
		return TargetSpace
	case t.Blast > 0:
		return TargetSurroundings
	case t.RangeRadius > 0 && t.Angle > 0:
		return TargetSpace
	case t.RangeRadius > 0:
		return TargetShip
	}
	return TargetSelfConfirm
}

func (t *TriggerSpec) checkPower(_ *Ship, power int) error {
	return basicPowerCheck(t.Power, power)
}

func (t *TriggerSpec) checkShipTarget(a *Action, ship *Ship, target Target) (Target, bool) {
	if t.RangeRadius > 0 && target.ShipID == ship.ID {
		return Target{}, false
	}
	if t.Blast > 0 || t.Angle > 0 {
		return t.checkLocationTarget(a, ship, target)
	}
	return target, target.InRange(ship.Pos, t.RangeRadius)
}

func (t *TriggerSpec) checkLocationTarget(_ *Action, ship *Ship, target Target) (Target, bool) {
	if t.Blast > 0 || t.Angle > 0 {
		c := target.ConstrainInRange(ship.Pos, t.RangeRadius)
		if t.Angle > 0 && c.DistanceTo(ship.Pos) <= epsilon {
			return Target{}, false
		}
		return c, true
	}
	return Target{}, false
}

// FilterImpacted selects the ships hit when firing from source at target.
func (t *TriggerSpec) FilterImpacted(source Vec2, target Target, ships []*Ship) []*Ship {
	var out []*Ship
	switch {
	case t.Blast > 0:
		for _, s := range ships {
			if target.DistanceTo(s.Pos) <= t.Blast {
				out = append(out, s)
			}
		}
	case t.Angle > 0:
		axis := source.AngleTo(target.Pos())
		half := degToRad(t.Angle / 2)
		for _, s := range ships {
			d := source.Dist(s.Pos)
			if d <= epsilon || d > t.RangeRadius {
				continue
			}
			if math.Abs(AngularDistance(axis, source.AngleTo(s.Pos))) < half {
				out = append(out, s)
			}
		}
	default:
		for _, s := range ships {
			if s.ID == target.ShipID {
				out = append(out, s)
			}
		}
	}
	return out
}

// Impacted lists the ships this trigger would hit from the ship's position.
func (t *TriggerSpec) Impacted(ship *Ship, target Target) []*Ship {
	return t.ImpactedFrom(ship, ship.Pos, target)
}

// ImpactedFrom is Impacted with the ship placed at source.
func (t *TriggerSpec) ImpactedFrom(ship *Ship, source Vec2, target Target) []*Ship {
	candidates := []*Ship{ship}
	if ship.world != nil {
		candidates = ship.world.Ships(true)
	}
	return t.FilterImpacted(source, target, candidates)
}

func (t *TriggerSpec) produce(a *Action, ship *Ship, target Target) {
	src := ship.Pos
	if target.DistanceTo(src) > epsilon {
		ship.Rotate(src.AngleTo(target.Pos()), true)
		if t.RangeRadius > 0 {
			ship.log.emit(EvFire, ship.ID, map[string]any{
				"action": a.Code, "x": target.X, "y": target.Y, "target": target.ShipID,
			})
		}
	}
	success := 1.0
	if ship.world != nil {
		success = ship.world.Random().Random()
	}
	for _, s := range t.Impacted(ship, target) {
		for _, e := range t.Payload {
			e.ApplyOn(s, ship, success)
		}
	}
}

// ToggleSpec switches area effects on around the ship until its next turn start.
// Activation costs power, deactivation gives it back.
type ToggleSpec struct {
	Power     int
	Radius    float64
	Payload   []Effect
	Activated bool
}

func (t *ToggleSpec) Kind() string          { return "toggle" }
func (t *ToggleSpec) Range(_ *Ship) float64 { return 0 }
func (t *ToggleSpec) Effects() []Effect     { return t.Payload }

func (t *ToggleSpec) PowerUsage(_ *Ship, _ *Target) int {
	if t.Activated {
		return -t.Power
	}
	return t.Power
}

func (t *ToggleSpec) Targeting(_ *Ship) TargetingMode {
	if t.Activated || t.Radius == 0 {
		return TargetSelfConfirm
	}
	return TargetSurroundings
}

func (t *ToggleSpec) checkPower(ship *Ship, power int) error {
	return basicPowerCheck(t.PowerUsage(ship, nil), power)
}

func (t *ToggleSpec) checkShipTarget(_ *Action, ship *Ship, target Target) (Target, bool) {
	return target, target.ShipID == ship.ID
}

func (t *ToggleSpec) checkLocationTarget(_ *Action, ship *Ship, _ Target) (Target, bool) {
	return ShipTarget(ship), true
}

// Impacted lists ships within the toggle radius of the ship.
func (t *ToggleSpec) Impacted(ship *Ship) []*Ship {
	if ship.world == nil {
		return []*Ship{ship}
	}
	return ship.world.ShipsInCircle(ship.Pos, t.Radius, true)
}

func (t *ToggleSpec) produce(a *Action, ship *Ship, _ Target) {
	t.setActivated(a, ship, !t.Activated)
}

func (t *ToggleSpec) setActivated(a *Action, ship *Ship, on bool) {
	t.Activated = on
	ship.log.emit(EvToggle, ship.ID, map[string]any{"action": a.Code, "activated": on})
	impacted := t.Impacted(ship)
	for _, s := range impacted {
		for _, e := range t.Payload {
			if on {
				ship.log.emit(EvEffectAdded, s.ID, map[string]any{"effect": e.Code(), "source": a.Code})
				e.ApplyOn(s, ship, 1)
			} else {
				ship.log.emit(EvEffectRemoved, s.ID, map[string]any{"effect": e.Code(), "source": a.Code})
			}
		}
	}
	for _, s := range impacted {
		s.SetActiveEffectsChanged()
	}
}

// DroneSpec deploys a drone projecting area effects for a number of owner turns.
type DroneSpec struct {
	Power          int
	DeployDistance float64
	Radius         float64
	Lifetime       int
	Payload        []Effect
}

func (d *DroneSpec) Kind() string                      { return "deploy" }
func (d *DroneSpec) PowerUsage(_ *Ship, _ *Target) int { return d.Power }
func (d *DroneSpec) Targeting(_ *Ship) TargetingMode   { return TargetSpace }
func (d *DroneSpec) Range(_ *Ship) float64             { return d.DeployDistance }
func (d *DroneSpec) Effects() []Effect                 { return d.Payload }

func (d *DroneSpec) checkPower(_ *Ship, power int) error {
	return basicPowerCheck(d.Power, power)
}

func (d *DroneSpec) checkShipTarget(a *Action, ship *Ship, t Target) (Target, bool) {
	return d.checkLocationTarget(a, ship, LocationTarget(t.X, t.Y))
}

func (d *DroneSpec) checkLocationTarget(_ *Action, ship *Ship, t Target) (Target, bool) {
	return t.ConstrainInRange(ship.Pos, d.DeployDistance), true
}

func (d *DroneSpec) produce(a *Action, ship *Ship, t Target) {
	if ship.world == nil {
		return
	}
	code := "drone"
	if a.Equipment != nil {
		code = a.Equipment.Code
	}
	drone := &Drone{
		ID:       ship.world.Random().ID(),
		Owner:    ship.ID,
		Code:     code,
		Pos:      t.Pos(),
		Radius:   d.Radius,
		Lifetime: d.Lifetime,
		Effects:  d.Payload,
	}
	ship.world.AddDrone(drone)
}
