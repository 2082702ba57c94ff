package ai

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"

	"fleetsim/internal/combat"
	"fleetsim/internal/config"
	"fleetsim/internal/util"
)

// moveMargin keeps planned moves slightly short of the reachable range.
const moveMargin = 1.0

// ScoreEnv is what a scoring formula sees: every axis value, and the weights under w.
type ScoreEnv struct {
	TurnCost      float64            `expr:"turn_cost"`
	EnemyDamage   float64            `expr:"enemy_damage"`
	Clustering    float64            `expr:"clustering"`
	Position      float64            `expr:"position"`
	Overheat      float64            `expr:"overheat"`
	ActiveEffects float64            `expr:"active_effects"`
	W             map[string]float64 `expr:"w"`
}

// Tactical produces candidate maneuvers and keeps the best one under a scoring formula.
type Tactical struct {
	program     *vm.Program
	weights     map[string]float64
	randomMoves int
	rng         *util.Rand
	diag        *zap.Logger
}

// WeightedSum is the default formula: every axis times its weight.
func WeightedSum(weights map[string]float64) string {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)
	terms := make([]string, len(names))
	for i, name := range names {
		terms[i] = fmt.Sprintf("w.%s * %s", name, name)
	}
	return strings.Join(terms, " + ")
}

func NewTactical(cfg *config.AIConfig, rng *util.Rand, diag *zap.Logger) (*Tactical, error) {
	if cfg == nil {
		cfg = config.DefaultAI()
	}
	if diag == nil {
		diag = zap.NewNop()
	}
	weights := map[string]float64{}
	for name := range Scorers {
		weights[name] = 0
	}
	for name, w := range config.DefaultAI().Weights {
		weights[name] = w
	}
	for name, w := range cfg.Weights {
		if _, ok := Scorers[name]; !ok {
			return nil, fmt.Errorf("unknown scoring axis %q", name)
		}
		weights[name] = w
	}
	src := cfg.Formula
	if src == "" {
		src = WeightedSum(weights)
	}
	program, err := expr.Compile(src, expr.Env(ScoreEnv{}), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("compile formula %q: %w", src, err)
	}
	return &Tactical{
		program:     program,
		weights:     weights,
		randomMoves: cfg.RandomMoves,
		rng:         rng,
		diag:        diag,
	}, nil
}

// Score evaluates every axis of a maneuver, then combines them with the formula.
func (t *Tactical) Score(b *combat.Battle, ship *combat.Ship, m *Maneuver) (float64, error) {
	env := ScoreEnv{
		TurnCost:      TurnCost(b, ship, m),
		EnemyDamage:   EnemyDamage(b, ship, m),
		Clustering:    Clustering(b, ship, m),
		Position:      Position(b, ship, m),
		Overheat:      Overheat(b, ship, m),
		ActiveEffects: ActiveEffects(b, ship, m),
		W:             t.weights,
	}
	out, err := vm.Run(t.program, env)
	if err != nil {
		return 0, err
	}
	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("formula returned %T", out)
	}
	return v, nil
}

// Plan scores every possible candidate. Ties are broken at random. Ending the turn as the
// best option yields nil.
func (t *Tactical) Plan(b *combat.Battle, ship *combat.Ship) *Maneuver {
	if !ship.IsAbleToPlay(false) || !ship.Playing() {
		return nil
	}
	var best *Maneuver
	bestScore := math.Inf(-1)
	produced, evaluated := 0, 0
	for _, m := range t.Candidates(b, ship) {
		produced++
		if !m.Possible() {
			continue
		}
		score, err := t.Score(b, ship, m)
		if err != nil {
			t.diag.Warn("maneuver scoring failed", zap.Stringer("maneuver", m), zap.Error(err))
			continue
		}
		evaluated++
		if (math.Abs(score-bestScore) < 0.0001 && t.rng.Bool()) || score > bestScore {
			best, bestScore = m, score
		}
	}
	t.diag.Debug("tactical plan",
		zap.String("ship", ship.ID),
		zap.Int("produced", produced),
		zap.Int("evaluated", evaluated),
		zap.Float64("score", bestScore))
	if best == nil || best.Action == combat.EndTurnAction {
		return nil
	}
	return best
}

// Candidates chains every producer: turn end, direct shots, blast shots, toggles, drones and
// random moves.
func (t *Tactical) Candidates(b *combat.Battle, ship *combat.Ship) []*Maneuver {
	out := []*Maneuver{NewManeuver(ship, combat.EndTurnAction, combat.ShipTarget(ship), moveMargin)}
	playable := playableActions(ship)
	enemies := Enemies(b, ship)

	for _, a := range playable {
		spec, ok := a.Spec.(*combat.TriggerSpec)
		if !ok {
			continue
		}
		if spec.Blast == 0 {
			for _, e := range enemies {
				out = append(out, NewManeuver(ship, a, combat.ShipTarget(e), moveMargin))
			}
			continue
		}
		for i, e1 := range enemies {
			for _, e2 := range enemies[i+1:] {
				if e1.Pos.Dist(e2.Pos) < spec.Blast*2 {
					mid := e1.Pos.Add(e2.Pos).Scale(0.5)
					out = append(out, NewManeuver(ship, a, combat.LocationTarget(mid.X, mid.Y), moveMargin))
				}
			}
			out = append(out, NewManeuver(ship, a, combat.LocationTarget(e1.Pos.X, e1.Pos.Y), moveMargin))
		}
	}

	for _, a := range playable {
		switch spec := a.Spec.(type) {
		case *combat.ToggleSpec:
			if !spec.Activated {
				out = append(out, NewManeuver(ship, a, combat.ShipTarget(ship), moveMargin))
			}
		case *combat.DroneSpec:
			for _, s := range b.Ships(true) {
				if !s.IsEnemy(ship) {
					out = append(out, NewManeuver(ship, a, combat.LocationTarget(s.Pos.X, s.Pos.Y), moveMargin))
				}
			}
		}
	}

	for _, a := range playable {
		if _, ok := a.Spec.(*combat.MoveSpec); !ok {
			continue
		}
		for _, loc := range ScanArena(b.Arena(), t.randomMoves, t.rng) {
			out = append(out, NewManeuver(ship, a, loc, moveMargin))
		}
	}
	return out
}

// ScanArena spreads n locations over a grid covering the arena, each jittered inside its cell.
func ScanArena(arena combat.Arena, n int, r *util.Rand) []combat.Target {
	if n <= 0 {
		return nil
	}
	cells := int(math.Ceil(math.Sqrt(float64(n))))
	out := make([]combat.Target, 0, n)
	for i := 0; i < n; i++ {
		y := i / cells
		x := i - y*cells
		out = append(out, combat.LocationTarget(
			(float64(x)+r.Random())*arena.Width/float64(cells),
			(float64(y)+r.Random())*arena.Height/float64(cells),
		))
	}
	return out
}

func playableActions(ship *combat.Ship) []*combat.Action {
	var out []*combat.Action
	for _, a := range ship.Actions() {
		if a != combat.EndTurnAction && a.CheckCannotBeApplied(ship) == nil {
			out = append(out, a)
		}
	}
	return out
}
