package duel

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fleetsim/internal/combat"
	"fleetsim/internal/config"
)

// Points per duel outcome in standings.
const (
	WinPoints  = 3
	DrawPoints = 1
)

// Tournament plays every pair of entrants twice, each side opening once.
type Tournament struct {
	Entrants []Entrant
	Seed     int64
	Workers  int
	MaxTurns int

	Registry *combat.Registry
	AI       *config.AIConfig
	Logger   *zap.Logger
}

type Standing struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Draws  int    `json:"draws"`
	Losses int    `json:"losses"`
	Points int    `json:"points"`
}

type TournamentResult struct {
	Duels     []*Result  `json:"duels"`
	Standings []Standing `json:"standings"`
}

// Pairings lists the duels of a round robin, both ways.
func Pairings(n int) [][2]int {
	var out [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, [2]int{i, j}, [2]int{j, i})
		}
	}
	return out
}

func (t *Tournament) Run(ctx context.Context) (*TournamentResult, error) {
	if len(t.Entrants) < 2 {
		return nil, fmt.Errorf("tournament needs at least two entrants, got %d", len(t.Entrants))
	}
	seen := map[string]bool{}
	for _, e := range t.Entrants {
		if seen[e.Name] {
			return nil, fmt.Errorf("duplicate entrant %q", e.Name)
		}
		seen[e.Name] = true
	}

	pairs := Pairings(len(t.Entrants))
	results := make([]*Result, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, t.Workers))
	for k, p := range pairs {
		g.Go(func() error {
			res, err := Run(ctx, Setup{
				Seed:     t.Seed + int64(k)*7919,
				A:        t.Entrants[p[0]],
				B:        t.Entrants[p[1]],
				MaxTurns: t.MaxTurns,
				Registry: t.Registry,
				AI:       t.AI,
				Logger:   t.Logger,
			})
			if err != nil {
				return err
			}
			results[k] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &TournamentResult{Duels: results, Standings: Tally(t.Entrants, results)}, nil
}

// Tally counts wins, draws and losses per entrant, best first.
func Tally(entrants []Entrant, results []*Result) []Standing {
	byName := map[string]*Standing{}
	out := make([]Standing, len(entrants))
	for i, e := range entrants {
		out[i].Name = e.Name
		byName[e.Name] = &out[i]
	}
	for _, r := range results {
		for _, name := range r.Entrants {
			st, ok := byName[name]
			if !ok {
				continue
			}
			switch {
			case r.Draw:
				st.Draws++
				st.Points += DrawPoints
			case r.Winner == name:
				st.Wins++
				st.Points += WinPoints
			default:
				st.Losses++
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Name < out[j].Name
	})
	return out
}
