// Command beams-gen writes a random graph as the pair of CSV tables beams
// loads: a node table (id,x,y,z) and an edge table (src,dest).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sanonone/beams/pkg/graph"
	"github.com/sanonone/beams/pkg/sim"
)

func main() {
	out := flag.String("out", ".", "Output directory")
	nodes := flag.Int("nodes", 50, "Number of nodes")
	edges := flag.Int("edges", 50, "Number of edges")
	seed := flag.Uint64("seed", 0, "Random seed (0 = time-based)")
	flag.Parse()

	if err := run(*out, *nodes, *edges, *seed); err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func run(dir string, n, e int, seed uint64) error {
	if n < 1 || e < 0 {
		return fmt.Errorf("need at least one node and a non-negative edge count, got %d nodes and %d edges", n, e)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	nodes, pairs := graph.Random(n, e, sim.NewRand(seed))

	nodesPath := filepath.Join(dir, "graph_positions.csv")
	if err := writeFile(nodesPath, func(f *os.File) error { return graph.WriteNodes(f, nodes) }); err != nil {
		return err
	}
	edgesPath := filepath.Join(dir, "graph_edges.csv")
	if err := writeFile(edgesPath, func(f *os.File) error { return graph.WriteEdges(f, pairs) }); err != nil {
		return err
	}

	slog.Info("graph written", "nodes", nodesPath, "edges", edgesPath, "node_count", len(nodes), "edge_count", len(pairs))
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
