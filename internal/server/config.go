package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sanonone/beams/pkg/sim"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure of the beams configuration file.
type Config struct {
	// HTTPAddr is the listen address of the HTTP API (e.g. ":8080").
	HTTPAddr string `yaml:"http_addr"`
	// TickRate is the number of simulation ticks per second.
	TickRate int `yaml:"tick_rate"`

	Graph GraphConfig `yaml:"graph"`
	Sim   sim.Config  `yaml:"sim"`
}

// GraphConfig defines where the graph tables are read from.
type GraphConfig struct {
	Nodes string  `yaml:"nodes"` // CSV with header id,x,y,z
	Edges string  `yaml:"edges"` // CSV with header src,dest
	Scale float64 `yaml:"scale"` // multiplier applied to every coordinate
}

// DefaultConfig returns a 60 FPS setup with the reference simulation parameters.
func DefaultConfig() Config {
	return Config{
		HTTPAddr: ":8080",
		TickRate: 60,
		Graph: GraphConfig{
			Nodes: "graph_positions.csv",
			Edges: "graph_edges.csv",
			Scale: 300,
		},
		Sim: sim.DefaultConfig(),
	}
}

var errInvalidConfig = errors.New("invalid configuration")

// Validate checks the host settings and the embedded simulation config.
func (c Config) Validate() error {
	switch {
	case c.TickRate <= 0:
		return fmt.Errorf("%w: tick_rate must be > 0, got %d", errInvalidConfig, c.TickRate)
	case c.Graph.Nodes == "" || c.Graph.Edges == "":
		return fmt.Errorf("%w: graph.nodes and graph.edges are required", errInvalidConfig)
	case c.Graph.Scale <= 0:
		return fmt.Errorf("%w: graph.scale must be > 0, got %g", errInvalidConfig, c.Graph.Scale)
	}
	return c.Sim.Validate()
}

// LoadConfig reads the YAML configuration file at path on top of
// DefaultConfig. Environment variables are expanded before parsing and
// unknown fields are rejected to catch typos. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	expandedData := os.ExpandEnv(string(data))

	decoder := yaml.NewDecoder(strings.NewReader(expandedData))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}

	return config, nil
}
