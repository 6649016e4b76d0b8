package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/pipz"
)

// KeyKnowledgeGraph is the finding key written by the graph stage.
const KeyKnowledgeGraph = "knowledge_graph"

// markovConfig implements stageConfig for knowledge graph generation.
type markovConfig struct {
	outputKey string
	generator *GraphGenerator
	depth     int
}

// NewMarkovGraph creates a stage that procedurally generates a knowledge
// graph rooted at the probe's claim.
//
// The stage writes a finding under KeyKnowledgeGraph: the content renders
// one edge per line, and the metadata records each edge's endpoints and
// weight alongside the depth and algorithm. A non-positive depth uses
// DefaultGraphDepth.
func NewMarkovGraph(name string, generator *GraphGenerator, depth int) *Stage {
	if generator == nil {
		generator = NewGraphGenerator()
	}
	return newStage(name, &markovConfig{
		outputKey: KeyKnowledgeGraph,
		generator: generator,
		depth:     depth,
	})
}

func (c *markovConfig) build(_ context.Context) (pipz.Chainable[*Probe], error) {
	return pipz.Apply(pipz.Name("generate-graph"), func(ctx context.Context, p *Probe) (*Probe, error) {
		graph := c.generator.Generate(ctx, p.Claim, c.depth)

		metadata := map[string]string{
			"depth":      strconv.Itoa(graph.Depth),
			"algorithm":  graph.Algorithm,
			"edge_count": strconv.Itoa(len(graph.Edges)),
		}

		lines := make([]string, len(graph.Edges))
		for i, edge := range graph.Edges {
			metadata[fmt.Sprintf("edge_%d", i)] = edge.Source + " -> " + edge.Target
			metadata[fmt.Sprintf("weight_%d", i)] = strconv.FormatFloat(edge.Weight, 'f', 3, 64)
			lines[i] = fmt.Sprintf("[%.3f] %s -> %s", edge.Weight, edge.Source, edge.Target)
		}

		if err := p.SetFinding(ctx, c.outputKey, strings.Join(lines, "\n"), "generate-graph", metadata); err != nil {
			return p, fmt.Errorf("failed to record knowledge graph: %w", err)
		}

		return p, nil
	}), nil
}

func (c *markovConfig) stageType() string {
	return "graph"
}

// GraphFromFinding reconstructs a knowledge graph from a graph finding.
func GraphFromFinding(root string, finding Finding) (KnowledgeGraph, error) {
	graph := KnowledgeGraph{
		Root:      root,
		Algorithm: finding.Metadata["algorithm"],
	}

	depth, err := strconv.Atoi(finding.Metadata["depth"])
	if err != nil {
		return graph, fmt.Errorf("invalid graph depth: %w", err)
	}
	graph.Depth = depth

	edgeCount, err := strconv.Atoi(finding.Metadata["edge_count"])
	if err != nil {
		return graph, fmt.Errorf("invalid graph edge count: %w", err)
	}

	graph.Edges = make([]GraphEdge, 0, edgeCount)
	for i := 0; i < edgeCount; i++ {
		endpoints := finding.Metadata[fmt.Sprintf("edge_%d", i)]
		source, target, ok := strings.Cut(endpoints, " -> ")
		if !ok {
			return graph, fmt.Errorf("malformed edge %d: %q", i, endpoints)
		}

		weight, err := strconv.ParseFloat(finding.Metadata[fmt.Sprintf("weight_%d", i)], 64)
		if err != nil {
			return graph, fmt.Errorf("invalid weight for edge %d: %w", i, err)
		}

		graph.Edges = append(graph.Edges, GraphEdge{
			Source:   source,
			Target:   target,
			Weight:   weight,
			EdgeType: EdgeTypeMarkovTransition,
		})
	}

	return graph, nil
}
