package duel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Summary struct {
	Runs     int                `json:"runs"`
	Wins     map[string]int     `json:"wins"`
	WinRate  map[string]float64 `json:"win_rate"`
	Draws    int                `json:"draws"`
	AvgTurns float64            `json:"avg_turns"`
	Loot     map[string]int     `json:"loot,omitempty"`
}

// Batch plays n duels of the same setup, seeded from base.Seed, on a bounded pool.
func Batch(ctx context.Context, base Setup, n, workers int) ([]*Result, error) {
	results := make([]*Result, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			s := base
			s.ID = ""
			s.Seed = base.Seed + int64(i)*7919
			res, err := Run(ctx, s)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func Summarize(results []*Result) Summary {
	sum := Summary{
		Runs:    len(results),
		Wins:    map[string]int{},
		WinRate: map[string]float64{},
		Loot:    map[string]int{},
	}
	turns := 0
	for _, r := range results {
		turns += r.Turns
		if r.Draw {
			sum.Draws++
		} else {
			sum.Wins[r.Winner]++
		}
		for _, code := range r.Loot {
			sum.Loot[code]++
		}
	}
	if sum.Runs > 0 {
		sum.AvgTurns = float64(turns) / float64(sum.Runs)
		for name, w := range sum.Wins {
			sum.WinRate[name] = float64(w) / float64(sum.Runs)
		}
	}
	return sum
}
