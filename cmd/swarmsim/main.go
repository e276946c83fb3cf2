// Command swarmsim runs a scenario headless: load a config, step it to
// completion, log progress, and optionally expose Prometheus metrics.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/fieldlab/swarm/logging"
	"github.com/fieldlab/swarm/metrics"
	"github.com/fieldlab/swarm/scenario"
)

func main() {
	var (
		configPath  = flag.String("config", "", "scenario config file (required)")
		ticks       = flag.Int("ticks", 0, "override the config's tick count")
		metricsAddr = flag.String("metrics", "", "prometheus listen address, e.g. :9090")
		logLevel    = flag.String("log-level", "info", "debug, info, warn or error")
		logFormat   = flag.String("log-format", "text", "text or json")
		progress    = flag.Int("progress", 100, "log progress every N ticks")
	)
	flag.Parse()

	log := logging.New(logging.Config{Level: *logLevel, Format: *logFormat})
	ctx := context.Background()

	if *configPath == "" {
		log.Error(ctx, "missing -config")
		os.Exit(2)
	}

	cfg, err := scenario.Load(*configPath)
	if err != nil {
		log.Error(ctx, "load scenario", logging.Err(err))
		os.Exit(1)
	}
	if *ticks > 0 {
		cfg.Ticks = *ticks
	}

	sim, err := scenario.New(cfg)
	if err != nil {
		log.Error(ctx, "build simulation", logging.Err(err))
		os.Exit(1)
	}

	log.Info(ctx, "scenario loaded",
		logging.String("name", cfg.Name),
		logging.Uint64("seed", cfg.Seed),
		logging.Int("ticks", cfg.Ticks),
		logging.Int("population", sim.Population()))

	if *metricsAddr != "" {
		col := metrics.New(nil)
		sim.SetObserver(col.Observer(sim.Population))
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", col.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error(ctx, "metrics server", logging.Err(err))
			}
		}()
		log.Info(ctx, "metrics listening", logging.String("addr", *metricsAddr))
	}

	start := time.Now()
	ran := 0
	for i := 0; i < cfg.Ticks; i++ {
		if err := sim.Step(); err != nil {
			log.Error(ctx, "tick failed",
				logging.Uint64("tick", sim.Tick()), logging.Err(err))
			os.Exit(1)
		}
		ran++

		if *progress > 0 && ran%*progress == 0 {
			log.Info(ctx, "progress",
				logging.Uint64("tick", sim.Tick()),
				logging.Int("population", sim.Population()))
		}
		if sim.Done() {
			log.Info(ctx, "terminal condition reached",
				logging.Uint64("tick", sim.Tick()))
			break
		}
	}

	log.Info(ctx, "run complete",
		logging.String("name", cfg.Name),
		logging.Int("ticks_run", ran),
		logging.Int("population", sim.Population()),
		logging.Any("elapsed", time.Since(start).Round(time.Millisecond)))
}
