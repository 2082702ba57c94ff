package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"fleetsim/internal/api"
	"fleetsim/internal/combat"
	"fleetsim/internal/config"
	"fleetsim/internal/duel"
	"fleetsim/internal/logging"
	"fleetsim/internal/store"
)

func main() {
	var cfgDir, out, fleetA, fleetB, aiA, aiB, level, dbPath, serve string
	var seed int64
	var n, workers, maxTurns int
	var saveLog bool
	flag.StringVar(&cfgDir, "config", "assets", "config dir")
	flag.StringVar(&out, "out", "out.json", "output file (single) or summary file (batch)")
	flag.StringVar(&fleetA, "a", "scout,breaker", "ship models of the first fleet")
	flag.StringVar(&fleetB, "b", "carrier,scout", "ship models of the second fleet")
	flag.StringVar(&aiA, "ai-a", "tactical", "ai of the first fleet: tactical or bully")
	flag.StringVar(&aiB, "ai-b", "bully", "ai of the second fleet: tactical or bully")
	flag.Int64Var(&seed, "seed", 12345, "seed")
	flag.IntVar(&n, "n", 1, "number of duels")
	flag.IntVar(&workers, "workers", 8, "parallel duels in batch mode")
	flag.IntVar(&maxTurns, "max-turns", 0, "turn cap, 0 uses the ai config")
	flag.BoolVar(&saveLog, "log", true, "save full event log when n==1")
	flag.StringVar(&level, "level", "info", "log level: debug, info, warn, error")
	flag.StringVar(&dbPath, "db", "", "sqlite file storing duel results, empty to disable")
	flag.StringVar(&serve, "serve", "", "serve the HTTP API on this address instead of running duels")
	flag.Parse()

	diag, err := logging.New(level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer diag.Sync()

	// ---- Config ----
	registry, aiCfg, err := loadRegistry(cfgDir)
	if err != nil {
		logging.Fatal(diag, "invalid configuration", err, zap.String("config_dir", cfgDir))
	}

	var repo store.Repository
	if dbPath != "" {
		db, err := store.OpenDB(dbPath)
		if err != nil {
			logging.Fatal(diag, "failed to open database", err, zap.String("db", dbPath))
		}
		repo = store.NewSQLiteRepository(db)
	}

	// ---- Service ----
	if serve != "" {
		if repo == nil {
			logging.Fatal(diag, "the API needs a database", fmt.Errorf("-db is empty"))
		}
		router := api.NewRouter(api.NewHandler(repo, registry, aiCfg, diag))
		diag.Info("serving", zap.String("addr", serve))
		if err := router.Run(serve); err != nil {
			logging.Fatal(diag, "server stopped", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	setup := duel.Setup{
		Seed:     seed,
		A:        duel.Entrant{Name: "alpha", Models: splitModels(fleetA), AI: aiA},
		B:        duel.Entrant{Name: "beta", Models: splitModels(fleetB), AI: aiB},
		MaxTurns: maxTurns,
		Registry: registry,
		AI:       aiCfg,
		Logger:   diag,
	}

	// ---- Single duel ----
	if n <= 1 {
		setup.Record = saveLog
		res, err := duel.Run(ctx, setup)
		if err != nil {
			logging.Fatal(diag, "duel failed", err)
		}
		save(diag, repo, res)
		if err := os.WriteFile(out, duel.MarshalPretty(res), 0644); err != nil {
			logging.Fatal(diag, "failed to write result", err, zap.String("out", out))
		}
		winner := res.Winner
		if res.Draw {
			winner = "draw"
		}
		fmt.Printf("Single duel finished. Winner=%s, Turns=%d, Loot=%d -> %s\n", winner, res.Turns, len(res.Loot), out)
		return
	}

	// ---- Batch ----
	results, err := duel.Batch(ctx, setup, n, workers)
	if err != nil {
		logging.Fatal(diag, "batch failed", err)
	}
	for _, res := range results {
		save(diag, repo, res)
	}
	summary := duel.Summarize(results)
	if err := os.WriteFile(out, duel.MarshalPretty(summary), 0644); err != nil {
		logging.Fatal(diag, "failed to write summary", err, zap.String("out", out))
	}
	fmt.Printf("Batch %d done -> %s\n", n, filepath.Base(out))
}

// loadRegistry registers the yaml ship models next to the built-in ones.
func loadRegistry(dir string) (*combat.Registry, *config.AIConfig, error) {
	eqCfg, modelsCfg, aiCfg, err := config.LoadAll(dir)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := combat.NewCatalog(eqCfg)
	if err != nil {
		return nil, nil, err
	}
	registry := combat.NewRegistry()
	if err := combat.RegisterModels(registry, modelsCfg, catalog); err != nil {
		return nil, nil, err
	}
	return registry, aiCfg, nil
}

func save(diag *zap.Logger, repo store.Repository, res *duel.Result) {
	if repo == nil {
		return
	}
	if _, err := repo.SaveDuel(res); err != nil {
		diag.Error("failed to save duel", zap.String("duel", res.ID), zap.Error(err))
	}
}

func splitModels(s string) []string {
	var out []string
	for _, code := range strings.Split(s, ",") {
		if code = strings.TrimSpace(code); code != "" {
			out = append(out, code)
		}
	}
	return out
}
