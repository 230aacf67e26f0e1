package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sanonone/beams/internal/server"
	"github.com/sanonone/beams/pkg/graph"
	"github.com/sanonone/beams/pkg/sim"
	"golang.org/x/sync/errgroup"
)

type options struct {
	configPath string
	nodesPath  string
	edgesPath  string
	httpAddr   string
	tickRate   int
	seed       uint64
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to the YAML configuration file (optional)")
	flag.StringVar(&opts.nodesPath, "nodes", "", "Node table CSV (id,x,y,z); overrides graph.nodes")
	flag.StringVar(&opts.edgesPath, "edges", "", "Edge table CSV (src,dest); overrides graph.edges")
	flag.StringVar(&opts.httpAddr, "http-addr", "", "HTTP listen address (e.g. :8080); overrides http_addr")
	flag.IntVar(&opts.tickRate, "tick-rate", 0, "Simulation ticks per second; overrides tick_rate")
	flag.Uint64Var(&opts.seed, "seed", 0, "Random seed; 0 keeps the configured seed (0 there means time-based)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	setupLogger(*logLevel)

	if err := run(opts); err != nil {
		slog.Error("beams stopped with an error", "error", err)
		os.Exit(1)
	}
	slog.Info("beams stopped")
}

func run(opts options) error {
	cfg, err := server.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	// Explicit flags win over the file.
	if opts.nodesPath != "" {
		cfg.Graph.Nodes = opts.nodesPath
	}
	if opts.edgesPath != "" {
		cfg.Graph.Edges = opts.edgesPath
	}
	if opts.httpAddr != "" {
		cfg.HTTPAddr = opts.httpAddr
	}
	if opts.tickRate > 0 {
		cfg.TickRate = opts.tickRate
	}
	if opts.seed != 0 {
		cfg.Sim.Seed = opts.seed
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := graph.LoadFiles(cfg.Graph.Nodes, cfg.Graph.Edges, cfg.Graph.Scale)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	simulation, err := sim.New(store, cfg.Sim, sim.NewRand(cfg.Sim.Seed))
	if err != nil {
		return fmt.Errorf("failed to create simulation: %w", err)
	}

	runner := server.NewRunner(simulation, cfg.TickRate)
	srv := server.NewServer(runner, cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(ctx)
	})
	g.Go(srv.Run)
	g.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func setupLogger(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
