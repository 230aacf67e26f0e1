// Package mcp exposes a running simulation to MCP clients as a small set of
// tools: stats, node inspection, hot edges and orientation control.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func NewMCPServer(s Simulator, version string) *mcp.Server {
	service := NewService(s)

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "Beams",
		Version: version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_stats",
		Description: "Summarise the simulation: tick, node and edge counts, entities per mode, totals of breaks, hops and dead ends.",
	}, service.GetStats)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "inspect_node",
		Description: "Show the position, neighbors and incident edges (with hop counts) of one node.",
	}, service.InspectNode)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "hot_edges",
		Description: "List the edges with the most hops, i.e. the ones about to break and rewire.",
	}, service.HotEdges)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "set_orientation",
		Description: "Set the roll and yaw of the scene in radians. An omitted angle keeps its value. Pitch keeps spinning on its own.",
	}, service.SetOrientation)

	return srv
}
