package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Forget is a memory primitive that creates a new Probe with filtered
// findings. Unlike a plain Clone which copies everything, Forget selectively
// drops or keeps findings based on keys.
//
// This is useful for pruning stale evidence or irrelevant context before
// re-evaluating a claim.
type Forget struct {
	key      string
	dropKeys map[string]bool // Keys to exclude
	keepKeys map[string]bool // Keys to include (if set, only these are kept)
}

// NewForget creates a new forget primitive.
//
// The primitive creates a new Probe that:
//   - Has the current Probe as its parent (ParentID)
//   - Carries the same claim under a fresh trace ID
//   - Copies only findings that pass the filter
//
// By default, all findings are copied. Use WithDropKeys or WithKeepKeys
// to filter.
//
// Example:
//
//	// Drop prior scoring so the claim is re-evaluated cleanly
//	forget := probe.NewForget("clean_slate").
//	    WithDropKeys(probe.KeyConfidence, probe.KeyKnowledgeGraph)
func NewForget(key string) *Forget {
	return &Forget{
		key:      key,
		dropKeys: make(map[string]bool),
		keepKeys: make(map[string]bool),
	}
}

// WithDropKeys excludes findings with the given keys.
func (f *Forget) WithDropKeys(keys ...string) *Forget {
	for _, key := range keys {
		f.dropKeys[key] = true
	}
	return f
}

// WithKeepKeys keeps only findings with the given keys.
// Takes precedence over WithDropKeys when both are set.
func (f *Forget) WithKeepKeys(keys ...string) *Forget {
	for _, key := range keys {
		f.keepKeys[key] = true
	}
	return f
}

// Process implements pipz.Chainable[*Probe].
func (f *Forget) Process(ctx context.Context, p *Probe) (*Probe, error) {
	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(f.key),
		FieldStageType.Field("forget"),
		FieldFindingCount.Field(len(p.AllFindings())),
	)

	// Create new probe with current as parent
	parentID := p.ID
	child := &Probe{
		Claim:     p.Claim,
		TraceID:   uuid.New().String(),
		ParentID:  &parentID,
		memory:    p.memory,
		embedder:  p.embedder,
		findings:  make([]Finding, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	persisted, err := p.memory.CreateProbe(ctx, child)
	if err != nil {
		f.emitFailed(ctx, p, start, err)
		return p, fmt.Errorf("forget: failed to create probe: %w", err)
	}
	child.ID = persisted.ID

	// Copy findings that pass the filter
	for _, finding := range p.AllFindings() {
		if !f.shouldKeep(finding.Key) {
			continue
		}
		if err := child.AddFinding(ctx, Finding{
			Key:       finding.Key,
			Content:   finding.Content,
			Metadata:  copyMetadata(finding.Metadata),
			Source:    finding.Source,
			Created:   finding.Created,
			Embedding: copyEmbedding(finding.Embedding),
		}); err != nil {
			f.emitFailed(ctx, p, start, err)
			return p, fmt.Errorf("forget: failed to copy finding %q: %w", finding.Key, err)
		}
	}

	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(child.TraceID),
		FieldStageName.Field(f.key),
		FieldStageType.Field("forget"),
		FieldStageDuration.Field(time.Since(start)),
		FieldFindingCount.Field(len(child.AllFindings())),
	)

	return child, nil
}

// shouldKeep decides whether a finding key survives the filter.
func (f *Forget) shouldKeep(key string) bool {
	if len(f.keepKeys) > 0 {
		return f.keepKeys[key]
	}
	return !f.dropKeys[key]
}

// emitFailed emits a stage failed event.
func (f *Forget) emitFailed(ctx context.Context, p *Probe, start time.Time, err error) {
	capitan.Error(ctx, StageFailed,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(f.key),
		FieldStageType.Field("forget"),
		FieldStageDuration.Field(time.Since(start)),
		FieldError.Field(err),
	)
}

// Name implements pipz.Chainable[*Probe].
func (f *Forget) Name() pipz.Name {
	return pipz.Name(f.key)
}

// Close implements pipz.Chainable[*Probe].
func (f *Forget) Close() error {
	return nil
}
