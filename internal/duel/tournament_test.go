package duel

import (
	"context"
	"testing"
)

func TestPairings(t *testing.T) {
	pairs := Pairings(3)
	if len(pairs) != 6 {
		t.Fatalf("pairings = %d, want 6", len(pairs))
	}
	seen := map[[2]int]bool{}
	for _, p := range pairs {
		if p[0] == p[1] || seen[p] {
			t.Fatalf("bad pairing %v in %v", p, pairs)
		}
		seen[p] = true
	}
	if !seen[[2]int{0, 2}] || !seen[[2]int{2, 0}] {
		t.Fatalf("each pair plays both ways: %v", pairs)
	}
}

func TestTally(t *testing.T) {
	entrants := []Entrant{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	results := []*Result{
		{Entrants: []string{"a", "b"}, Winner: "a"},
		{Entrants: []string{"b", "a"}, Winner: "a"},
		{Entrants: []string{"b", "c"}, Draw: true},
		{Entrants: []string{"c", "b"}, Winner: "b"},
	}
	got := Tally(entrants, results)
	want := []Standing{
		{Name: "a", Wins: 2, Points: 6},
		{Name: "b", Wins: 1, Draws: 1, Losses: 2, Points: 4},
		{Name: "c", Draws: 1, Losses: 1, Points: 1},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("standing %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTournamentAllDraws(t *testing.T) {
	tour := &Tournament{
		Entrants: []Entrant{
			{Name: "c", Models: []string{"drifter"}},
			{Name: "a", Models: []string{"drifter"}},
			{Name: "b", Models: []string{"drifter"}, AI: "bully"},
		},
		Seed:     1,
		Workers:  3,
		MaxTurns: 2,
		Registry: drifterRegistry(),
	}
	res, err := tour.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Duels) != 6 {
		t.Fatalf("duels = %d, want 6", len(res.Duels))
	}
	for i, name := range []string{"a", "b", "c"} {
		st := res.Standings[i]
		if st.Name != name || st.Draws != 4 || st.Points != 4 {
			t.Fatalf("standing %d = %+v", i, st)
		}
	}
}

func TestTournamentBalancesResults(t *testing.T) {
	tour := &Tournament{
		Entrants: []Entrant{
			{Name: "scouts", Models: []string{"scout", "scout"}, AI: "bully"},
			{Name: "breaker", Models: []string{"breaker"}, AI: "bully"},
			{Name: "carrier", Models: []string{"carrier"}, AI: "bully"},
		},
		Seed:     9,
		Workers:  4,
		MaxTurns: 10,
	}
	res, err := tour.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wins, losses := 0, 0
	for _, st := range res.Standings {
		if st.Wins+st.Draws+st.Losses != 4 {
			t.Fatalf("%s played %d duels, want 4", st.Name, st.Wins+st.Draws+st.Losses)
		}
		wins += st.Wins
		losses += st.Losses
	}
	if wins != losses {
		t.Fatalf("wins %d != losses %d", wins, losses)
	}
	for i, d := range res.Duels {
		if d == nil {
			t.Fatalf("duel %d missing", i)
		}
	}
}

func TestTournamentRejectsEntrants(t *testing.T) {
	one := &Tournament{Entrants: []Entrant{{Name: "a", Models: []string{"scout"}}}}
	if _, err := one.Run(context.Background()); err == nil {
		t.Fatalf("a single entrant cannot hold a tournament")
	}
	dup := &Tournament{Entrants: []Entrant{
		{Name: "a", Models: []string{"scout"}},
		{Name: "a", Models: []string{"breaker"}},
	}}
	if _, err := dup.Run(context.Background()); err == nil {
		t.Fatalf("duplicate names should be rejected")
	}
}
