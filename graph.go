package probe

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/zoobzio/capitan"
)

// Graph generation constants.
const (
	EdgeTypeMarkovTransition = "MARKOV_TRANSITION"
	AlgorithmMarkovChain     = "MARKOV_CHAIN"
)

// GraphEdge is a weighted transition in a knowledge graph.
type GraphEdge struct {
	Source   string
	Target   string
	Weight   float64
	EdgeType string
}

// KnowledgeGraph is a procedurally generated topic graph rooted at a claim.
type KnowledgeGraph struct {
	Root      string
	Edges     []GraphEdge
	Depth     int
	Algorithm string
}

// Seed node types for Markov topic transitions.
var defaultSeedNodes = []string{
	"GeopoliticalVector",
	"EconomicIndicator",
	"BiometricEntropy",
	"HistoricalPrecedent",
}

// GraphGenerator produces knowledge graphs by walking a Markov chain over
// seed topic nodes. Each transition moves to a different node with a random
// weight in [0.1, 0.9].
type GraphGenerator struct {
	seedNodes []string
	rng       *rand.Rand
}

// NewGraphGenerator creates a generator with the default seed nodes and a
// time-seeded random source.
func NewGraphGenerator() *GraphGenerator {
	return &GraphGenerator{
		seedNodes: defaultSeedNodes,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithSeed replaces the random source with a seeded one for
// reproducible generation.
func (g *GraphGenerator) WithSeed(seed int64) *GraphGenerator {
	g.rng = rand.New(rand.NewSource(seed))
	return g
}

// WithSeedNodes replaces the seed node types. Empty input keeps the defaults.
func (g *GraphGenerator) WithSeedNodes(nodes []string) *GraphGenerator {
	if len(nodes) > 0 {
		g.seedNodes = nodes
	}
	return g
}

// Generate walks the Markov chain for depth transitions rooted at the topic.
// A non-positive depth uses DefaultGraphDepth.
func (g *GraphGenerator) Generate(ctx context.Context, topic string, depth int) KnowledgeGraph {
	if depth <= 0 {
		depth = DefaultGraphDepth
	}

	graph := KnowledgeGraph{
		Root:      topic,
		Edges:     make([]GraphEdge, 0, depth),
		Depth:     depth,
		Algorithm: AlgorithmMarkovChain,
	}

	current := g.seedNodes[g.rng.Intn(len(g.seedNodes))]
	for i := 0; i < depth; i++ {
		next := g.nextNode(current)
		graph.Edges = append(graph.Edges, GraphEdge{
			Source:   current,
			Target:   next,
			Weight:   round3(0.1 + g.rng.Float64()*0.8),
			EdgeType: EdgeTypeMarkovTransition,
		})
		current = next
	}

	capitan.Emit(ctx, GraphGenerated,
		FieldClaim.Field(topic),
		FieldGraphDepth.Field(depth),
	)

	return graph
}

// nextNode simulates a Markov transition: any seed node except the current
// one. A single-node seed set transitions to itself.
func (g *GraphGenerator) nextNode(current string) string {
	candidates := make([]string, 0, len(g.seedNodes))
	for _, node := range g.seedNodes {
		if node != current {
			candidates = append(candidates, node)
		}
	}
	if len(candidates) == 0 {
		return current
	}
	return candidates[g.rng.Intn(len(candidates))]
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
