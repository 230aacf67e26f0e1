package mcp

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/beams/pkg/sim"
)

// Simulator is the thread-safe view of a running simulation the tools use.
type Simulator interface {
	Stats() sim.Stats
	Node(i int) (sim.NodeInfo, error)
	Edges() []sim.EdgeView
	UpdateOrientation(roll, yaw *float64) sim.Angles
}

var errNonFinite = errors.New("roll and yaw must be finite")

type Service struct {
	sim Simulator
}

func NewService(s Simulator) *Service {
	return &Service{sim: s}
}

// --- Tool Handlers ---

func (s *Service) GetStats(ctx context.Context, req *mcp.CallToolRequest, args GetStatsArgs) (*mcp.CallToolResult, GetStatsResult, error) {
	return nil, GetStatsResult{Stats: s.sim.Stats()}, nil
}

func (s *Service) InspectNode(ctx context.Context, req *mcp.CallToolRequest, args InspectNodeArgs) (*mcp.CallToolResult, InspectNodeResult, error) {
	info, err := s.sim.Node(args.Node)
	if err != nil {
		return nil, InspectNodeResult{}, err
	}
	return nil, InspectNodeResult{Node: info}, nil
}

func (s *Service) SetOrientation(ctx context.Context, req *mcp.CallToolRequest, args SetOrientationArgs) (*mcp.CallToolResult, SetOrientationResult, error) {
	for _, v := range []*float64{args.Roll, args.Yaw} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return nil, SetOrientationResult{}, errNonFinite
		}
	}
	return nil, SetOrientationResult{Angles: s.sim.UpdateOrientation(args.Roll, args.Yaw)}, nil
}

// HotEdges lists the most worn edges, the ones closest to breaking.
func (s *Service) HotEdges(ctx context.Context, req *mcp.CallToolRequest, args HotEdgesArgs) (*mcp.CallToolResult, HotEdgesResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}

	edges := s.sim.Edges()
	slices.SortStableFunc(edges, func(a, b sim.EdgeView) int {
		return cmp.Compare(b.HopCount, a.HopCount)
	})
	if len(edges) > limit {
		edges = edges[:limit]
	}

	res := HotEdgesResult{Edges: edges, Summary: "The graph has no edges."}
	if len(edges) > 0 {
		top := edges[0]
		res.Summary = fmt.Sprintf("Most worn edge is %d -> %d with %d hops (%.0f%% of the break threshold).",
			top.Src, top.Dest, top.HopCount, top.Wear*100)
	}
	return nil, res, nil
}
