package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Seek performs semantic search over historical findings.
// It embeds a query and finds the most relevant findings across all probes,
// then records the rendered results on the current probe.
type Seek struct {
	key        string
	query      string
	limit      int
	summaryKey string
	embedder   Embedder
	result     *SeekResult
}

// SeekResult contains the outcome of a semantic search.
type SeekResult struct {
	Query    string             // The search query
	Findings []FindingWithProbe // Matching findings with their probes
	Context  string             // Rendered context of the results
}

// NewSeek creates a new semantic search primitive.
// The query is embedded and used to find semantically similar findings.
func NewSeek(key, query string) *Seek {
	return &Seek{
		key:   key,
		query: query,
		limit: DefaultSeekLimit,
	}
}

// WithLimit sets the maximum number of findings to retrieve.
func (s *Seek) WithLimit(limit int) *Seek {
	s.limit = limit
	return s
}

// WithSummaryKey sets the key for storing the rendered results.
func (s *Seek) WithSummaryKey(key string) *Seek {
	s.summaryKey = key
	return s
}

// WithEmbedder sets a specific embedder for this search.
func (s *Seek) WithEmbedder(e Embedder) *Seek {
	s.embedder = e
	return s
}

// Process executes the semantic search.
func (s *Seek) Process(ctx context.Context, p *Probe) (*Probe, error) {
	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("seek"),
		FieldSearchQuery.Field(s.query),
		FieldSearchLimit.Field(s.limit),
	)

	// Resolve embedder
	embedder, err := ResolveEmbedder(ctx, s.embedder)
	if err != nil {
		s.emitFailed(ctx, p, start, err)
		return p, fmt.Errorf("seek: %w", err)
	}

	// Embed the query
	queryEmbedding, err := embedder.Embed(ctx, s.query)
	if err != nil {
		s.emitFailed(ctx, p, start, err)
		return p, fmt.Errorf("seek: failed to embed query: %w", err)
	}

	// Search for similar findings
	results, err := p.memory.SearchFindings(ctx, queryEmbedding, s.limit)
	if err != nil {
		s.emitFailed(ctx, p, start, err)
		return p, fmt.Errorf("seek: search failed: %w", err)
	}

	capitan.Emit(ctx, SeekResultsFound,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(s.key),
		FieldSearchQuery.Field(s.query),
		FieldResultCount.Field(len(results)),
	)

	// Build context from results
	var contextBuilder strings.Builder
	for i, fwp := range results {
		contextBuilder.WriteString(fmt.Sprintf("--- Result %d ---\n", i+1))
		contextBuilder.WriteString(fmt.Sprintf("Claim: %s\n", fwp.Probe.Claim))
		contextBuilder.WriteString(fmt.Sprintf("Finding Key: %s\n", fwp.Finding.Key))
		contextBuilder.WriteString(fmt.Sprintf("Content: %s\n", fwp.Finding.Content))
		contextBuilder.WriteString("\n")
	}

	rendered := contextBuilder.String()
	if len(results) == 0 {
		rendered = "No relevant historical findings found."
	}

	// Store the result
	s.result = &SeekResult{
		Query:    s.query,
		Findings: results,
		Context:  rendered,
	}

	// Determine summary key
	summaryKey := s.summaryKey
	if summaryKey == "" {
		summaryKey = s.key
	}

	if err := p.SetContent(ctx, summaryKey, rendered, "seek"); err != nil {
		s.emitFailed(ctx, p, start, err)
		return p, fmt.Errorf("seek: failed to store result: %w", err)
	}

	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("seek"),
		FieldStageDuration.Field(time.Since(start)),
		FieldResultCount.Field(len(results)),
	)

	return p, nil
}

// Scan returns the typed result of the search.
func (s *Seek) Scan() *SeekResult {
	return s.result
}

// emitFailed emits a stage failed event.
func (s *Seek) emitFailed(ctx context.Context, p *Probe, start time.Time, err error) {
	capitan.Error(ctx, StageFailed,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("seek"),
		FieldStageDuration.Field(time.Since(start)),
		FieldError.Field(err),
	)
}

// Name implements pipz.Chainable[*Probe].
func (s *Seek) Name() pipz.Name {
	return pipz.Name(s.key)
}

// Close implements pipz.Chainable[*Probe].
func (s *Seek) Close() error {
	return nil
}
