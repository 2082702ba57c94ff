package duel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"fleetsim/internal/ai"
	"fleetsim/internal/combat"
	"fleetsim/internal/config"
	"fleetsim/internal/util"
)

// DefaultMaxTurns caps a duel when neither the setup nor the AI settings do.
const DefaultMaxTurns = 50

var ErrNoShips = errors.New("entrant has no ship")

// Entrant is one side of a duel: a player, its ship models and the AI flying them.
type Entrant struct {
	Name   string   `json:"name"`
	Models []string `json:"models"`
	// AI is "tactical" (default) or "bully".
	AI     string   `json:"ai,omitempty"`
}

type Setup struct {
	ID       string
	Seed     int64
	A, B     Entrant
	MaxTurns int
	// Record keeps the full event log in the result.
	Record   bool

	Registry *combat.Registry
	AI       *config.AIConfig
	Logger   *zap.Logger
}

type Result struct {
	ID       string         `json:"id"`
	Seed     int64          `json:"seed"`
	Entrants []string       `json:"entrants"`
	Winner   string         `json:"winner,omitempty"`
	Draw     bool           `json:"draw"`
	Turns    int            `json:"turns"`
	Loot     []string       `json:"loot,omitempty"`
	Ships    []ShipMeta     `json:"ships"`
	Events   []combat.Event `json:"events,omitempty"`
}

type ShipMeta struct {
	ID     string `json:"id"`
	Model  string `json:"model"`
	Player string `json:"player"`
	Alive  bool   `json:"alive"`
	Hull   int    `json:"hull"`
	Shield int    `json:"shield"`
	Power  int    `json:"power"`
}

// fleetPlanners routes each ship to the planner of its fleet.
type fleetPlanners map[string]ai.Planner

func (p fleetPlanners) Plan(b *combat.Battle, ship *combat.Ship) *ai.Maneuver {
	if pl, ok := p[ship.FleetID]; ok {
		return pl.Plan(b, ship)
	}
	return nil
}

func NewPlanner(kind string, cfg *config.AIConfig, r *util.Rand, diag *zap.Logger) (ai.Planner, error) {
	switch kind {
	case "", "tactical":
		t, err := ai.NewTactical(cfg, r, diag)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "bully":
		return ai.NewBully(), nil
	}
	return nil, fmt.Errorf("unknown ai %q", kind)
}

// Run plays an AI-versus-AI battle to its end. Past the turn cap the battle ends in a draw.
func Run(ctx context.Context, s Setup) (*Result, error) {
	if s.Registry == nil {
		s.Registry = combat.NewRegistry()
	}
	if s.AI == nil {
		s.AI = config.DefaultAI()
	}
	diag := s.Logger
	if diag == nil {
		diag = zap.NewNop()
	}
	maxTurns := s.MaxTurns
	if maxTurns <= 0 {
		maxTurns = s.AI.MaxTurns
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	rng := util.New(s.Seed)
	if s.ID == "" {
		s.ID = rng.ID()
	}
	var fleets []*combat.Fleet
	planners := fleetPlanners{}
	for i, e := range []Entrant{s.A, s.B} {
		if len(e.Models) == 0 {
			return nil, fmt.Errorf("entrant %q: %w", e.Name, ErrNoShips)
		}
		fleet := combat.NewFleet(fmt.Sprintf("f%d", i+1), e.Name)
		for _, code := range e.Models {
			ship, err := s.Registry.Build(code, rng.ID(), rng)
			if err != nil {
				return nil, fmt.Errorf("entrant %q: %w", e.Name, err)
			}
			fleet.AddShip(ship)
		}
		pl, err := NewPlanner(e.AI, s.AI, rng, diag)
		if err != nil {
			return nil, fmt.Errorf("entrant %q: %w", e.Name, err)
		}
		planners[fleet.ID] = pl
		fleets = append(fleets, fleet)
	}

	b := combat.NewBattle(fleets,
		combat.WithID(s.ID),
		combat.WithRandom(rng),
		combat.WithLogger(diag))
	b.Start()
	player := ai.NewPlayer(b, planners, nil, 0, diag)
	for !b.Ended() {
		if err := ctx.Err(); err != nil {
			player.Stop()
			return nil, fmt.Errorf("duel %s: %w", s.ID, err)
		}
		if b.Turn > maxTurns {
			b.EndBattle(nil, true)
			break
		}
		ship := b.PlayingShip()
		player.Play()
		if !b.Ended() && b.PlayingShip() == ship && ship.Playing() {
			diag.Warn("turn left open by the player", zap.String("battle", b.ID), zap.String("ship", ship.ID))
			b.EndTurn(ship)
		}
	}

	res := newResult(s, b)
	diag.Info("duel finished",
		zap.String("duel", res.ID),
		zap.Int64("seed", res.Seed),
		zap.String("winner", res.Winner),
		zap.Int("turns", res.Turns))
	return res, nil
}

func newResult(s Setup, b *combat.Battle) *Result {
	res := &Result{
		ID:       b.ID,
		Seed:     s.Seed,
		Entrants: []string{s.A.Name, s.B.Name},
		Draw:     b.Outcome.Draw,
		Turns:    b.Turn,
	}
	if !res.Draw {
		if f := b.Fleet(b.Outcome.Winner); f != nil {
			res.Winner = f.Player
		}
	}
	for _, eq := range b.Outcome.Loot {
		res.Loot = append(res.Loot, eq.Code)
	}
	for _, f := range b.Fleets {
		for _, ship := range f.Ships {
			res.Ships = append(res.Ships, ShipMeta{
				ID:     ship.ID,
				Model:  ship.Model,
				Player: f.Player,
				Alive:  ship.Alive,
				Hull:   ship.Value(combat.Hull),
				Shield: ship.Value(combat.Shield),
				Power:  ship.Value(combat.Power),
			})
		}
	}
	if s.Record {
		res.Events = b.Log.Events()
	}
	return res
}

// MarshalPretty renders v as indented JSON.
func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
