// Command combatsim resolves a scripted fight from a YAML scenario and prints
// the combat log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/talania/internal/config"
	"github.com/udisondev/talania/internal/db"
	"github.com/udisondev/talania/internal/profile"
)

const ConfigPath = "config/talania.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("TALANIA_CONFIG"); p != "" {
		cfgPath = p
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to config YAML")
	scenarioPath := flag.String("scenario", "", "path to scenario YAML")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	slog.Info("combatsim starting", "config", cfgPath, "log_level", cfg.LogLevel)

	if *scenarioPath == "" {
		return errors.New("missing -scenario")
	}
	sc, err := LoadScenario(*scenarioPath)
	if err != nil {
		return err
	}

	var repo profile.Repository = profile.NewMemoryRepository()
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")
		repo = db.NewProfileRepository(database.Pool())
	}

	sim := newSimulator(cfg, repo, os.Stdout)
	if err := sim.setup(ctx, sc); err != nil {
		return fmt.Errorf("setting up scenario: %w", err)
	}

	if err := runScenario(ctx, sim, sc); err != nil {
		return err
	}

	sim.report()

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	sim.save(saveCtx)
	return nil
}

// runScenario plays the events while the shield regenerator ticks.
func runScenario(ctx context.Context, sim *simulator, sc *Scenario) error {
	g, gctx := errgroup.WithContext(ctx)
	simCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		sim.regen.Start()
		<-simCtx.Done()
		sim.regen.Stop()
		return nil
	})
	g.Go(func() error {
		defer stop()
		return sim.play(simCtx, sc)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("running scenario: %w", err)
	}
	return nil
}
