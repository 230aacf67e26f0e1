package main

import (
	"path/filepath"
	"testing"

	"github.com/sanonone/beams/pkg/graph"
)

func TestRunWritesLoadableGraph(t *testing.T) {
	dir := t.TempDir()
	if err := run(dir, 50, 50, 7); err != nil {
		t.Fatal(err)
	}

	s, err := graph.LoadFiles(filepath.Join(dir, "graph_positions.csv"), filepath.Join(dir, "graph_edges.csv"), 300)
	if err != nil {
		t.Fatal(err)
	}
	if s.NodeCount() != 50 {
		t.Errorf("nodes = %d, want 50", s.NodeCount())
	}
	if s.NeighborEntries() != 2*s.EdgeCount() {
		t.Errorf("neighbor entries %d, want %d", s.NeighborEntries(), 2*s.EdgeCount())
	}
}

func TestRunRejectsEmptyGraph(t *testing.T) {
	if err := run(t.TempDir(), 0, 5, 1); err == nil {
		t.Fatal("expected an error for zero nodes")
	}
}
