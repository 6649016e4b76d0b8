package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// stageConfig is an internal interface that different stage types implement.
// It handles the specifics of building the internal pipeline.
type stageConfig interface {
	// build creates the internal pipz pipeline for this stage type
	build(ctx context.Context) (pipz.Chainable[*Probe], error)

	// stageType returns the semantic type (e.g., "corpus", "score", "graph")
	stageType() string
}

// Stage represents a single operation in a semantic probe pipeline.
// It wraps the domain components and handles evidence recording via the
// Finding system.
type Stage struct {
	name string
	cfg  stageConfig

	// Built pipeline (lazy initialization)
	pipeline pipz.Chainable[*Probe]
	once     sync.Once
	buildErr error
}

// newStage creates a new Stage with the given configuration.
// This is internal - users create stages via NewFetchCorpus(), NewConfidence(), etc.
func newStage(name string, cfg stageConfig) *Stage {
	return &Stage{
		name: name,
		cfg:  cfg,
	}
}

// Process implements pipz.Chainable[*Probe].
// It builds the internal pipeline on first call (lazy init) and executes it.
func (s *Stage) Process(ctx context.Context, p *Probe) (*Probe, error) {
	// Lazy initialization of pipeline
	s.once.Do(func() {
		s.buildErr = s.buildPipeline(ctx)
	})

	if s.buildErr != nil {
		return p, fmt.Errorf("failed to build stage %q: %w", s.name, s.buildErr)
	}

	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(s.name),
		FieldStageType.Field(s.cfg.stageType()),
		FieldFindingCount.Field(len(p.AllFindings())),
	)

	// Execute pipeline
	result, err := s.pipeline.Process(ctx, p)
	duration := time.Since(start)

	record := StageRecord{
		Name:      s.name,
		Type:      s.cfg.stageType(),
		Duration:  duration,
		Timestamp: start,
		Error:     err,
	}

	if result != nil {
		result.AddStage(record)
	} else {
		p.AddStage(record)
	}

	if err != nil {
		capitan.Error(ctx, StageFailed,
			FieldTraceID.Field(p.TraceID),
			FieldStageName.Field(s.name),
			FieldStageType.Field(s.cfg.stageType()),
			FieldStageDuration.Field(duration),
			FieldError.Field(err),
		)
	} else {
		capitan.Emit(ctx, StageCompleted,
			FieldTraceID.Field(p.TraceID),
			FieldStageName.Field(s.name),
			FieldStageType.Field(s.cfg.stageType()),
			FieldStageDuration.Field(duration),
			FieldFindingCount.Field(len(result.AllFindings())),
		)
	}

	return result, err
}

// Name implements pipz.Chainable[*Probe]
func (s *Stage) Name() pipz.Name {
	return pipz.Name(s.name)
}

// Close implements pipz.Chainable[*Probe]
func (s *Stage) Close() error {
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// WithRetry wraps the stage with retry logic.
func (s *Stage) WithRetry(attempts int) *Stage {
	return &Stage{
		name: s.name,
		cfg: &retryConfig{
			inner:    s.cfg,
			attempts: attempts,
		},
	}
}

// WithTimeout wraps the stage with timeout protection.
func (s *Stage) WithTimeout(d time.Duration) *Stage {
	return &Stage{
		name: s.name,
		cfg: &timeoutConfig{
			inner:   s.cfg,
			timeout: d,
		},
	}
}

// WithBackoff wraps the stage with exponential backoff retry.
func (s *Stage) WithBackoff(attempts int, baseDelay time.Duration) *Stage {
	return &Stage{
		name: s.name,
		cfg: &backoffConfig{
			inner:     s.cfg,
			attempts:  attempts,
			baseDelay: baseDelay,
		},
	}
}

// WithCircuitBreaker wraps the stage with circuit breaker protection.
func (s *Stage) WithCircuitBreaker(failures int, recovery time.Duration) *Stage {
	return &Stage{
		name: s.name,
		cfg: &circuitBreakerConfig{
			inner:    s.cfg,
			failures: failures,
			recovery: recovery,
		},
	}
}

// buildPipeline constructs the internal pipeline using the config.
func (s *Stage) buildPipeline(ctx context.Context) error {
	pipeline, err := s.cfg.build(ctx)
	if err != nil {
		return err
	}

	s.pipeline = pipeline
	return nil
}

// Wrapper configs for reliability features

type retryConfig struct {
	inner    stageConfig
	attempts int
}

func (c *retryConfig) build(ctx context.Context) (pipz.Chainable[*Probe], error) {
	inner, err := c.inner.build(ctx)
	if err != nil {
		return nil, err
	}
	return pipz.NewRetry("retry", inner, c.attempts), nil
}

func (c *retryConfig) stageType() string {
	return c.inner.stageType()
}

type timeoutConfig struct {
	inner   stageConfig
	timeout time.Duration
}

func (c *timeoutConfig) build(ctx context.Context) (pipz.Chainable[*Probe], error) {
	inner, err := c.inner.build(ctx)
	if err != nil {
		return nil, err
	}
	return pipz.NewTimeout("timeout", inner, c.timeout), nil
}

func (c *timeoutConfig) stageType() string {
	return c.inner.stageType()
}

type backoffConfig struct {
	inner     stageConfig
	attempts  int
	baseDelay time.Duration
}

func (c *backoffConfig) build(ctx context.Context) (pipz.Chainable[*Probe], error) {
	inner, err := c.inner.build(ctx)
	if err != nil {
		return nil, err
	}
	return pipz.NewBackoff("backoff", inner, c.attempts, c.baseDelay), nil
}

func (c *backoffConfig) stageType() string {
	return c.inner.stageType()
}

type circuitBreakerConfig struct {
	inner    stageConfig
	failures int
	recovery time.Duration
}

func (c *circuitBreakerConfig) build(ctx context.Context) (pipz.Chainable[*Probe], error) {
	inner, err := c.inner.build(ctx)
	if err != nil {
		return nil, err
	}
	return pipz.NewCircuitBreaker("circuit-breaker", inner, c.failures, c.recovery), nil
}

func (c *circuitBreakerConfig) stageType() string {
	return c.inner.stageType()
}
