package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Recall is a memory primitive that loads a prior probe and surfaces its
// findings as context on the current probe. This enables cross-probe
// evidence transfer without re-running the pipeline for a claim that was
// already evaluated.
type Recall struct {
	key     string
	traceID string
	limit   int
}

// NewRecall creates a new recall primitive.
//
// The primitive:
//  1. Loads the target probe by trace ID
//  2. Renders its findings to text
//  3. Stores the rendered context as a finding on the current probe
//
// Output Findings:
//   - {key}: rendered findings of the target probe
//
// Example:
//
//	recall := probe.NewRecall("prior_evidence", previousTraceID).
//	    WithLimit(5)
//	result, _ := recall.Process(ctx, p)
func NewRecall(key, traceID string) *Recall {
	return &Recall{
		key:     key,
		traceID: traceID,
	}
}

// WithLimit caps the number of findings surfaced from the target probe,
// keeping the most recent ones. Zero means no cap.
func (r *Recall) WithLimit(limit int) *Recall {
	r.limit = limit
	return r
}

// Process implements pipz.Chainable[*Probe].
func (r *Recall) Process(ctx context.Context, p *Probe) (*Probe, error) {
	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(r.key),
		FieldStageType.Field("recall"),
	)

	// Load target probe
	target, err := p.memory.GetProbeByTraceID(ctx, r.traceID)
	if err != nil {
		r.emitFailed(ctx, p, start, err)
		return p, fmt.Errorf("recall: failed to load probe %s: %w", r.traceID, err)
	}

	findings := target.AllFindings()
	if len(findings) == 0 {
		err := fmt.Errorf("recall: target probe %s has no findings", r.traceID)
		r.emitFailed(ctx, p, start, err)
		return p, err
	}

	if r.limit > 0 && len(findings) > r.limit {
		findings = findings[len(findings)-r.limit:]
	}

	context := RenderFindingsToContext(findings)

	if err := p.SetFinding(ctx, r.key, context, "recall", map[string]string{
		"source_trace_id":      r.traceID,
		"source_claim":         target.Claim,
		"source_finding_count": fmt.Sprintf("%d", len(findings)),
	}); err != nil {
		r.emitFailed(ctx, p, start, err)
		return p, fmt.Errorf("recall: failed to persist context: %w", err)
	}

	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(r.key),
		FieldStageType.Field("recall"),
		FieldStageDuration.Field(time.Since(start)),
		FieldContentSize.Field(len(context)),
	)

	return p, nil
}

// emitFailed emits a stage failed event.
func (r *Recall) emitFailed(ctx context.Context, p *Probe, start time.Time, err error) {
	capitan.Error(ctx, StageFailed,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(r.key),
		FieldStageType.Field("recall"),
		FieldStageDuration.Field(time.Since(start)),
		FieldError.Field(err),
	)
}

// Name implements pipz.Chainable[*Probe].
func (r *Recall) Name() pipz.Name {
	return pipz.Name(r.key)
}

// Close implements pipz.Chainable[*Probe].
func (r *Recall) Close() error {
	return nil
}
