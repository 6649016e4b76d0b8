package probe

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Result is the outcome of a full semantic probe execution.
type Result struct {
	Claim          string
	TraceID        string
	Confidence     float64
	Classification string
	CorpusSize     int
	Graph          KnowledgeGraph
	Report         ConfidenceReport
}

// Engine runs the end-to-end semantic probe pipeline: truth corpus
// retrieval, confidence scoring, and knowledge graph generation.
//
// The knowledge base is generated once, on first execution, and shared by
// all subsequent executions. Engine is safe for concurrent Execute calls
// after initialization; each execution operates on its own Probe.
type Engine struct {
	memory     Memory
	factory    *Factory
	generator  *GraphGenerator
	scorer     *Scorer
	corpusSize int
	graphDepth int

	vectorizer *Vectorizer
	pipeline   pipz.Chainable[*Probe]
	once       sync.Once
	initErr    error
}

// NewEngine creates an engine backed by the given memory.
func NewEngine(memory Memory) *Engine {
	return &Engine{
		memory:     memory,
		factory:    NewFactory(),
		generator:  NewGraphGenerator(),
		scorer:     NewScorer(),
		corpusSize: DefaultCorpusSize,
		graphDepth: DefaultGraphDepth,
	}
}

// WithFactory replaces the knowledge factory.
// Must be called before the first Execute.
func (e *Engine) WithFactory(f *Factory) *Engine {
	e.factory = f
	return e
}

// WithGraphGenerator replaces the graph generator.
// Must be called before the first Execute.
func (e *Engine) WithGraphGenerator(g *GraphGenerator) *Engine {
	e.generator = g
	return e
}

// WithCorpusSize sets the knowledge base generation target.
// Must be called before the first Execute.
func (e *Engine) WithCorpusSize(size int) *Engine {
	e.corpusSize = size
	return e
}

// WithGraphDepth sets the knowledge graph depth.
// Must be called before the first Execute.
func (e *Engine) WithGraphDepth(depth int) *Engine {
	e.graphDepth = depth
	return e
}

// init generates the knowledge base and assembles the pipeline.
func (e *Engine) init(ctx context.Context) {
	e.vectorizer, e.initErr = NewVectorizer(ctx, e.factory, e.corpusSize)
	if e.initErr != nil {
		return
	}

	e.pipeline = Sequence("semantic-probe",
		NewFetchCorpus("fetch-corpus", e.vectorizer),
		NewConfidence("score-confidence", e.scorer),
		NewMarkovGraph("generate-graph", e.generator, e.graphDepth),
	)
}

// Vectorizer returns the engine's knowledge base vectorizer.
// Returns nil before the first Execute.
func (e *Engine) Vectorizer() *Vectorizer {
	return e.vectorizer
}

// Execute runs the full probe pipeline for a claim and returns the result.
// The probe and its findings are persisted through the engine's memory.
func (e *Engine) Execute(ctx context.Context, claim string) (*Result, error) {
	e.once.Do(func() { e.init(ctx) })
	if e.initErr != nil {
		return nil, fmt.Errorf("engine initialization failed: %w", e.initErr)
	}

	p, err := NewProbe(ctx, e.memory, claim)
	if err != nil {
		return nil, err
	}

	p, err = e.pipeline.Process(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("probe pipeline failed: %w", err)
	}

	result, err := e.assemble(p)
	if err != nil {
		return nil, err
	}

	capitan.Emit(ctx, ProbeCompleted,
		FieldTraceID.Field(p.TraceID),
		FieldClaim.Field(claim),
		FieldConfidence.Field(float32(result.Confidence)),
		FieldClassification.Field(result.Classification),
		FieldCorpusSize.Field(result.CorpusSize),
	)

	return result, nil
}

// assemble builds the Result from the findings the stages recorded.
func (e *Engine) assemble(p *Probe) (*Result, error) {
	confidenceFinding, ok := p.GetFinding(KeyConfidence)
	if !ok {
		return nil, fmt.Errorf("pipeline produced no %q finding", KeyConfidence)
	}

	confidence, err := strconv.ParseFloat(confidenceFinding.Content, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed confidence finding: %w", err)
	}

	graphFinding, ok := p.GetFinding(KeyKnowledgeGraph)
	if !ok {
		return nil, fmt.Errorf("pipeline produced no %q finding", KeyKnowledgeGraph)
	}

	graph, err := GraphFromFinding(p.Claim, graphFinding)
	if err != nil {
		return nil, fmt.Errorf("malformed graph finding: %w", err)
	}

	report := ConfidenceReport{
		Claim:          p.Claim,
		Confidence:     confidence,
		Classification: confidenceFinding.Metadata["classification"],
	}
	report.CorpusSize, _ = strconv.Atoi(confidenceFinding.Metadata["corpus_size"])
	report.Metrics.RawAlignmentScore, _ = strconv.ParseFloat(confidenceFinding.Metadata["alignment"], 64)
	report.Metrics.NormalizedZ, _ = strconv.ParseFloat(confidenceFinding.Metadata["z"], 64)
	report.Metrics.SigmoidOutput, _ = strconv.ParseFloat(confidenceFinding.Metadata["sigmoid"], 64)
	report.Metrics.CorpusTokenCount, _ = strconv.Atoi(confidenceFinding.Metadata["corpus_tokens"])
	report.Metrics.ProbeTokenCount, _ = strconv.Atoi(confidenceFinding.Metadata["probe_tokens"])
	report.Metrics.ConfidencePercent = confidence

	return &Result{
		Claim:          p.Claim,
		TraceID:        p.TraceID,
		Confidence:     confidence,
		Classification: report.Classification,
		CorpusSize:     report.CorpusSize,
		Graph:          graph,
		Report:         report,
	}, nil
}
