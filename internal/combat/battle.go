package combat

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"fleetsim/internal/util"
)

const (
	StateNotStarted = "not_started"
	StateRunning    = "running"
	StateEnded      = "ended"
)

type Option func(*Battle)

func WithRandom(r *util.Rand) Option   { return func(b *Battle) { b.rng = r } }
func WithLogger(l *zap.Logger) Option  { return func(b *Battle) { b.diag = l } }
func WithArena(a Arena) Option         { return func(b *Battle) { b.arena = a } }
func WithID(id string) Option          { return func(b *Battle) { b.ID = id } }

// Battle owns fleets, the play order and the event log, and schedules ship turns.
type Battle struct {
	ID        string
	Fleets    []*Fleet
	PlayOrder []*Ship
	PlayIndex int
	Turn      int
	Drones    []*Drone
	Log       *Log
	Outcome   *Outcome

	arena Arena
	rng   *util.Rand
	diag  *zap.Logger
	state *fsm.FSM
}

func NewBattle(fleets []*Fleet, opts ...Option) *Battle {
	b := &Battle{
		ID:        uuid.NewString(),
		Fleets:    fleets,
		PlayIndex: -1,
		Log:       NewLog(),
		arena:     DefaultArena(),
		rng:       util.New(1),
		diag:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.Log.turn = func() int { return b.Turn }
	b.state = fsm.NewFSM(
		StateNotStarted,
		fsm.Events{
			{Name: "start", Src: []string{StateNotStarted}, Dst: StateRunning},
			{Name: "end", Src: []string{StateNotStarted, StateRunning}, Dst: StateEnded},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				b.diag.Debug("battle state changed",
					zap.String("battle", b.ID),
					zap.String("from", e.Src),
					zap.String("to", e.Dst))
			},
		},
	)
	for _, f := range fleets {
		for _, s := range f.Ships {
			s.bind(b, b.Log, b.diag)
		}
	}
	return b
}

func (b *Battle) State() string      { return b.state.Current() }
func (b *Battle) Ended() bool        { return b.state.Is(StateEnded) }
func (b *Battle) Arena() Arena       { return b.arena }
func (b *Battle) Random() *util.Rand { return b.rng }

// Ships lists ships in play order once initiative is thrown, in fleet order before.
func (b *Battle) Ships(aliveOnly bool) []*Ship {
	src := b.PlayOrder
	if len(src) == 0 {
		for _, f := range b.Fleets {
			src = append(src, f.Ships...)
		}
	}
	var out []*Ship
	for _, s := range src {
		if !aliveOnly || s.Alive {
			out = append(out, s)
		}
	}
	return out
}

func (b *Battle) Ship(id string) *Ship {
	for _, s := range b.Ships(false) {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (b *Battle) Fleet(id string) *Fleet {
	for _, f := range b.Fleets {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// PlayingShip returns the ship under the play cursor, if any.
func (b *Battle) PlayingShip() *Ship {
	if b.PlayIndex < 0 || b.PlayIndex >= len(b.PlayOrder) {
		return nil
	}
	return b.PlayOrder[b.PlayIndex]
}

// ShipsInCircle scans the play order with an inclusive distance test.
func (b *Battle) ShipsInCircle(center Vec2, radius float64, aliveOnly bool) []*Ship {
	var out []*Ship
	for _, s := range b.Ships(aliveOnly) {
		if s.IsInCircle(center, radius) {
			out = append(out, s)
		}
	}
	return out
}

// AreaEffectsAt lists drone and toggle effects covering a location.
func (b *Battle) AreaEffectsAt(p Vec2) []Effect {
	var out []Effect
	for _, d := range b.Drones {
		if d.IsInRange(p) {
			out = append(out, d.Effects...)
		}
	}
	for _, s := range b.Ships(true) {
		out = append(out, s.AreaEffectsAt(p)...)
	}
	return out
}

// ThrowInitiative rebuilds the play order from every ship of every fleet.
func (b *Battle) ThrowInitiative(r *util.Rand) {
	var order []*Ship
	for _, f := range b.Fleets {
		for _, s := range f.Ships {
			s.ThrowInitiative(r)
			order = append(order, s)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].PlayPriority > order[j].PlayPriority
	})
	b.PlayOrder = order
	b.PlayIndex = -1
}

// PlaceShips lines fleets up across the arena, facing its center.
func (b *Battle) PlaceShips() {
	n := float64(len(b.Fleets))
	for i, f := range b.Fleets {
		x := b.arena.Width * (float64(i) + 0.5) / n
		angle := 0.0
		if x > b.arena.Width/2 {
			angle = math.Pi
		}
		spacing := b.arena.Height * 0.2
		count := float64(len(f.Ships))
		for j, s := range f.Ships {
			y := b.arena.Height/2 + spacing*(float64(j)-(count-1)/2)
			s.Pos = Vec2{X: x, Y: y}
			s.Angle = angle
		}
	}
}

// Start places ships, throws initiative, resets every ship and gives the first turn.
func (b *Battle) Start() {
	if err := b.state.Event(context.Background(), "start"); err != nil {
		b.diag.Error("battle start refused", zap.String("battle", b.ID), zap.Error(err))
		return
	}
	b.Turn = 1
	b.PlaceShips()
	b.ThrowInitiative(b.rng)
	for _, s := range b.PlayOrder {
		s.InitializeForBattle()
	}
	b.AdvanceToNextShip(true)
}

// AdvanceToNextShip ends the current turn and starts the next one. Dead ships keep their slot
// in the rotation; their turn is a no-op the controller skips.
func (b *Battle) AdvanceToNextShip(log bool) {
	if b.Ended() {
		return
	}
	if b.CheckEndBattle(log) {
		return
	}
	prev := b.PlayingShip()
	if prev != nil && prev.Playing() {
		prev.EndTurn()
	}
	if len(b.PlayOrder) == 0 {
		return
	}
	b.PlayIndex++
	if b.PlayIndex >= len(b.PlayOrder) {
		b.PlayIndex = 0
		b.Turn++
	}
	next := b.PlayOrder[b.PlayIndex]
	next.StartTurn()
	b.tickDrones(next)
	if log {
		payload := map[string]any{"turn": b.Turn}
		if prev != nil {
			payload["previous"] = prev.ID
		}
		b.Log.emit(EvShipChange, next.ID, payload)
	}
}

// EndTurn ends a ship's turn, advancing the battle when that ship is the playing one.
func (b *Battle) EndTurn(s *Ship) {
	if s == b.PlayingShip() {
		b.AdvanceToNextShip(true)
		return
	}
	s.EndTurn()
}

// ApplyAction applies an action for a ship, then checks for the battle end. A playing ship
// destroyed by its own action loses its turn.
func (b *Battle) ApplyAction(a *Action, s *Ship, target Target) bool {
	if !a.Apply(s, target) {
		return false
	}
	if b.CheckEndBattle(true) {
		return true
	}
	if p := b.PlayingShip(); p != nil && !p.Alive && p.Playing() {
		b.AdvanceToNextShip(true)
	}
	return true
}

// CheckEndBattle ends the battle when at most one fleet is alive, and reports whether the
// battle is over.
func (b *Battle) CheckEndBattle(log bool) bool {
	if b.Ended() {
		return true
	}
	var alive []*Fleet
	for _, f := range b.Fleets {
		if f.IsAlive() {
			alive = append(alive, f)
		}
	}
	switch len(alive) {
	case 0:
		b.EndBattle(nil, log)
	case 1:
		b.EndBattle(alive[0], log)
	default:
		return false
	}
	return true
}

// EndBattle freezes the outcome. Every piece of equipment wears by the elapsed turns.
func (b *Battle) EndBattle(winner *Fleet, log bool) {
	if b.Ended() {
		return
	}
	if err := b.state.Event(context.Background(), "end"); err != nil {
		b.diag.Error("battle end refused", zap.String("battle", b.ID), zap.Error(err))
		return
	}
	outcome := NewOutcome(winner)
	if winner != nil {
		outcome.CreateLoot(b, b.rng)
	}
	for _, s := range b.Ships(false) {
		for _, eq := range s.AllEquipment() {
			eq.AddWear(b.Turn)
		}
	}
	b.Outcome = outcome
	if log {
		payload := map[string]any{"draw": outcome.Draw, "winner": nil}
		if winner != nil {
			payload["winner"] = winner.ID
		}
		b.Log.emit(EvEndBattle, "", payload)
	}
	b.diag.Info("battle ended",
		zap.String("battle", b.ID),
		zap.Bool("draw", outcome.Draw),
		zap.Int("turn", b.Turn))
}

func (b *Battle) AddDrone(d *Drone) {
	for _, o := range b.Drones {
		if o == d {
			return
		}
	}
	b.Drones = append(b.Drones, d)
	b.Log.emit(EvDroneDeployed, d.Owner, map[string]any{
		"drone": d.ID, "code": d.Code, "x": d.Pos.X, "y": d.Pos.Y, "radius": d.Radius,
	})
	affected := d.AffectedShips(b)
	ids := make([]string, len(affected))
	for i, s := range affected {
		ids[i] = s.ID
	}
	b.Log.emit(EvDroneApplied, d.Owner, map[string]any{"drone": d.ID, "ships": ids})
	for _, s := range affected {
		s.SetActiveEffectsChanged()
	}
}

func (b *Battle) RemoveDrone(d *Drone) {
	for i, o := range b.Drones {
		if o != d {
			continue
		}
		b.Drones = append(b.Drones[:i], b.Drones[i+1:]...)
		b.Log.emit(EvDroneDestroyed, d.Owner, map[string]any{"drone": d.ID})
		for _, s := range d.AffectedShips(b) {
			s.SetActiveEffectsChanged()
		}
		return
	}
}

func (b *Battle) tickDrones(owner *Ship) {
	for _, d := range append([]*Drone(nil), b.Drones...) {
		if d.Owner != owner.ID {
			continue
		}
		d.Lifetime--
		if d.Lifetime <= 0 {
			b.RemoveDrone(d)
		}
	}
}

// InitialEvents describes the current state as events, so a late observer can bootstrap
// without replaying history. The log itself is not touched.
func (b *Battle) InitialEvents() []Event {
	var out []Event
	add := func(typ, ship string, payload map[string]any) {
		out = append(out, Event{Seq: len(out), Turn: b.Turn, Type: typ, Ship: ship, Payload: payload})
	}
	for _, s := range b.Ships(false) {
		add(EvMove, s.ID, map[string]any{"x": s.Pos.X, "y": s.Pos.Y, "angle": s.Angle})
		for c := ValueCode(0); c < valueCount; c++ {
			add(EvValue, s.ID, map[string]any{
				"value": c.String(), "current": s.Value(c), "previous": s.Value(c),
				"maximal": s.Attr(c.Capacity()),
			})
		}
		for _, st := range s.Sticky {
			add(EvEffectAdded, s.ID, map[string]any{"effect": st.Code(), "duration": st.Duration})
		}
		if len(s.activeArea) > 0 {
			codes := make([]string, len(s.activeArea))
			for i, e := range s.activeArea {
				codes[i] = e.String()
			}
			add(EvActiveEffects, s.ID, map[string]any{"effects": codes})
		}
		if !s.Alive {
			add(EvDeath, s.ID, nil)
		}
	}
	for _, d := range b.Drones {
		add(EvDroneDeployed, d.Owner, map[string]any{
			"drone": d.ID, "code": d.Code, "x": d.Pos.X, "y": d.Pos.Y, "radius": d.Radius,
		})
	}
	if p := b.PlayingShip(); p != nil {
		add(EvShipChange, p.ID, map[string]any{"turn": b.Turn})
	}
	return out
}
