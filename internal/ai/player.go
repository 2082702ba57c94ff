package ai

import (
	"time"

	"go.uber.org/zap"

	"fleetsim/internal/combat"
	"fleetsim/internal/util"
)

// maxManeuvers bounds the maneuvers played in one turn.
const maxManeuvers = 32

// Player drives the playing ship of a battle with a planner. Every maneuver part is applied
// in its own timer callback, so a stopped player never leaves a part half applied.
type Player struct {
	battle  *combat.Battle
	planner Planner
	timer   util.Timer
	delay   time.Duration
	diag    *zap.Logger

	stopped bool
	played  int
}

func NewPlayer(b *combat.Battle, planner Planner, timer util.Timer, delay time.Duration, diag *zap.Logger) *Player {
	if timer == nil {
		timer = &util.Synchronous{}
	}
	if diag == nil {
		diag = zap.NewNop()
	}
	return &Player{battle: b, planner: planner, timer: timer, delay: delay, diag: diag}
}

// Play starts the turn of the playing ship. A ship unable to play passes its turn.
func (p *Player) Play() {
	ship := p.battle.PlayingShip()
	if p.stopped || ship == nil || p.battle.Ended() {
		return
	}
	p.played = 0
	if !ship.IsAbleToPlay(false) {
		p.endTurn(ship)
		return
	}
	p.next(ship)
}

// Stop cancels every pending step. The current ship keeps its turn.
func (p *Player) Stop() {
	p.stopped = true
	p.timer.CancelAll()
}

func (p *Player) Stopped() bool { return p.stopped }

func (p *Player) active(ship *combat.Ship) bool {
	return !p.stopped && !p.battle.Ended() && p.battle.PlayingShip() == ship && ship.Playing()
}

func (p *Player) next(ship *combat.Ship) {
	if !p.active(ship) {
		return
	}
	if p.played >= maxManeuvers {
		p.diag.Warn("too many maneuvers, forcing turn end", zap.String("ship", ship.ID))
		p.endTurn(ship)
		return
	}
	m := p.planner.Plan(p.battle, ship)
	if m == nil {
		p.endTurn(ship)
		return
	}
	p.played++
	p.diag.Debug("maneuver",
		zap.String("ship", ship.ID),
		zap.Stringer("maneuver", m),
		zap.Int("power", m.PowerUsage()))
	p.step(ship, m, 0)
}

func (p *Player) step(ship *combat.Ship, m *Maneuver, i int) {
	p.timer.Schedule(p.delay, func() {
		if !p.active(ship) {
			return
		}
		if i >= len(m.Sim.Parts) {
			if m.Final {
				p.endTurn(ship)
			} else {
				p.next(ship)
			}
			return
		}
		part := m.Sim.Parts[i]
		if !part.Possible || !p.battle.ApplyAction(part.Action, ship, part.Target) {
			p.diag.Debug("maneuver part failed",
				zap.String("ship", ship.ID),
				zap.String("action", part.Action.Code))
			p.endTurn(ship)
			return
		}
		p.step(ship, m, i+1)
	})
}

func (p *Player) endTurn(ship *combat.Ship) {
	if p.battle.Ended() || p.battle.PlayingShip() != ship {
		return
	}
	p.battle.EndTurn(ship)
}
