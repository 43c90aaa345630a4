// Profiling:
// go build ./cmd/depotprof
// ./depotprof -config cmd/depotprof/depotprof.toml
// go tool pprof -http=":8000" -nodefraction=0.001 ./depotprof cpu.pprof

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/TheBitDrifter/depot"
	"github.com/TheBitDrifter/depot/internal/config"
	"github.com/TheBitDrifter/table"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

type health struct {
	HP int64
}

func main() {
	path := flag.String("config", "", "YAML or TOML configuration file")
	mode := flag.String("profile", "", "override the profile mode (cpu, mem, off)")
	flag.Parse()

	cfg := config.Default()
	if *path != "" {
		loaded, err := config.Load(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *mode != "" {
		cfg.Profile.Mode = *mode
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	var p interface{ Stop() }
	switch cfg.Profile.Mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook)
	}

	live := run(cfg, logger)

	if p != nil {
		p.Stop()
	}
	logger.Info("simulation finished", zap.Int("entities", live))
}

func run(cfg *config.Config, logger *zap.Logger) int {
	sim := cfg.Simulation
	live := 0
	for round := 0; round < sim.Rounds; round++ {
		w := newWorld(cfg, logger)
		for i := 0; i < sim.Iterations; i++ {
			if err := w.sto.RunBatch(w.batch); err != nil {
				logger.Error("batch failed", zap.Int("round", round), zap.Int("iteration", i), zap.Error(err))
				return w.sto.EntityCount()
			}
		}
		live = w.sto.EntityCount()
		logger.Debug("round finished", zap.Int("round", round), zap.Int("entities", live))
	}
	return live
}

type world struct {
	sto   depot.Storage
	batch depot.BatchID
}

func newWorld(cfg *config.Config, logger *zap.Logger) *world {
	sim := cfg.Simulation
	sto := depot.Factory.NewStorageWithOptions(table.Factory.NewSchema(), cfg.StorageOptions(logger))

	pos := depot.FactoryNewComponent[position]()
	vel := depot.FactoryNewComponent[velocity]()
	hp := depot.FactoryNewComponent[health]()
	posID, err := pos.Register(sto, "position", 0)
	if err != nil {
		logger.Fatal("register position", zap.Error(err))
	}
	velID, err := vel.Register(sto, "velocity", 0)
	if err != nil {
		logger.Fatal("register velocity", zap.Error(err))
	}
	hpID, err := hp.Register(sto, "health", 0)
	if err != nil {
		logger.Fatal("register health", zap.Error(err))
	}

	spawn := func(s depot.Storage, n int) error {
		entities, err := s.NewEntities(n)
		if err != nil {
			return err
		}
		for _, en := range entities {
			err := errors.Join(
				pos.Add(s, en.Handle, position{}),
				vel.Add(s, en.Handle, velocity{X: 1, Y: 0.5}),
				hp.Add(s, en.Handle, health{HP: int64(en.GUID%100) + 1}),
			)
			if err != nil {
				return err
			}
		}
		return nil
	}
	if err := spawn(sto, sim.Entities); err != nil {
		logger.Fatal("spawn entities", zap.Error(err))
	}

	batch := sto.AddBatch()
	err = sto.AddSystem(batch, "move", func(view depot.Storage) {
		err := depot.ForEach2(view, pos, vel, sim.Threads, func(_ depot.Handle, p *position, v *velocity) {
			p.X += v.X
			p.Y += v.Y
		})
		if err != nil {
			logger.Error("move", zap.Error(err))
		}
	}, posID, velID)
	if err != nil {
		logger.Fatal("add system move", zap.Error(err))
	}

	// entities are culled once their health drops to the churn threshold
	threshold := int64(sim.Churn * 100)
	err = sto.AddSystem(batch, "decay", func(view depot.Storage) {
		err := depot.ForEach(view, hp, sim.Threads, func(h depot.Handle, c *health) {
			c.HP--
			if c.HP > threshold {
				return
			}
			g, err := view.GUIDOf(h)
			if err == nil {
				err = view.EnqueueRemoveEntity(g)
			}
			if err != nil {
				logger.Error("cull", zap.Int("handle", int(h)), zap.Error(err))
			}
		})
		if err != nil {
			logger.Error("decay", zap.Error(err))
		}
	}, hpID)
	if err != nil {
		logger.Fatal("add system decay", zap.Error(err))
	}

	err = sto.AddExclusiveSystem(batch, "respawn", func(s depot.Storage) {
		if missing := sim.Entities - s.EntityCount(); missing > 0 {
			if err := spawn(s, missing); err != nil {
				logger.Fatal("respawn", zap.Error(err))
			}
		}
	})
	if err != nil {
		logger.Fatal("add system respawn", zap.Error(err))
	}
	return &world{sto: sto, batch: batch}
}
