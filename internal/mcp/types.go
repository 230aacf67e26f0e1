package mcp

import "github.com/sanonone/beams/pkg/sim"

// --- Tool Arguments ---

type GetStatsArgs struct{}

type InspectNodeArgs struct {
	Node int `json:"node" jsonschema:"Index of the node to inspect (0-based)"`
}

// SetOrientationArgs leaves an omitted angle unchanged.
type SetOrientationArgs struct {
	Roll *float64 `json:"roll,omitempty" jsonschema:"Roll angle in radians (rotation about x); omit to keep the current value"`
	Yaw  *float64 `json:"yaw,omitempty" jsonschema:"Yaw angle in radians (rotation about z); omit to keep the current value"`
}

type HotEdgesArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max number of edges to return (default 10)"`
}

// --- Tool Results ---

type GetStatsResult struct {
	Stats sim.Stats `json:"stats"`
}

type InspectNodeResult struct {
	Node sim.NodeInfo `json:"node"`
}

type SetOrientationResult struct {
	Angles sim.Angles `json:"angles"`
}

type HotEdgesResult struct {
	Edges []sim.EdgeView `json:"edges"`
	// Summary is a one-line description for the LLM.
	Summary string `json:"summary"`
}
