package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Checkpoint is a memory primitive that creates a persistent snapshot of the
// current probe. It creates a new Probe with the current one as its parent,
// copies all findings, and returns the new Probe. The original Probe is
// preserved unchanged in the database.
type Checkpoint struct {
	key string
}

// NewCheckpoint creates a new checkpoint primitive.
//
// The primitive creates a new Probe that:
//   - Has the current Probe as its parent (ParentID)
//   - Carries the same claim under a fresh trace ID
//   - Copies all findings from the current Probe
//
// Example:
//
//	pipeline := probe.Sequence("evaluate",
//	    probe.NewFetchCorpus("fetch-corpus", vectorizer),
//	    probe.NewCheckpoint("before_scoring"),  // Snapshot here
//	    probe.NewConfidence("score", scorer),
//	)
func NewCheckpoint(key string) *Checkpoint {
	return &Checkpoint{
		key: key,
	}
}

// Process implements pipz.Chainable[*Probe].
func (c *Checkpoint) Process(ctx context.Context, p *Probe) (*Probe, error) {
	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(c.key),
		FieldStageType.Field("checkpoint"),
		FieldFindingCount.Field(len(p.AllFindings())),
	)

	// Create new probe with current as parent
	parentID := p.ID
	snapshot := &Probe{
		Claim:     p.Claim,
		TraceID:   uuid.New().String(),
		ParentID:  &parentID,
		memory:    p.memory,
		embedder:  p.embedder,
		findings:  make([]Finding, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	persisted, err := p.memory.CreateProbe(ctx, snapshot)
	if err != nil {
		c.emitFailed(ctx, p, start, err)
		return p, fmt.Errorf("checkpoint: failed to create probe: %w", err)
	}
	snapshot.ID = persisted.ID

	// Copy findings to the snapshot (persisting each)
	for _, finding := range p.AllFindings() {
		if err := snapshot.AddFinding(ctx, Finding{
			Key:       finding.Key,
			Content:   finding.Content,
			Metadata:  copyMetadata(finding.Metadata),
			Source:    finding.Source,
			Created:   finding.Created,
			Embedding: copyEmbedding(finding.Embedding),
		}); err != nil {
			c.emitFailed(ctx, p, start, err)
			return p, fmt.Errorf("checkpoint: failed to copy finding: %w", err)
		}
	}

	capitan.Emit(ctx, ProbeCreated,
		FieldClaim.Field(snapshot.Claim),
		FieldTraceID.Field(snapshot.TraceID),
	)

	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(snapshot.TraceID),
		FieldStageName.Field(c.key),
		FieldStageType.Field("checkpoint"),
		FieldStageDuration.Field(time.Since(start)),
		FieldFindingCount.Field(len(snapshot.AllFindings())),
	)

	return snapshot, nil
}

// emitFailed emits a stage failed event.
func (c *Checkpoint) emitFailed(ctx context.Context, p *Probe, start time.Time, err error) {
	capitan.Error(ctx, StageFailed,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(c.key),
		FieldStageType.Field("checkpoint"),
		FieldStageDuration.Field(time.Since(start)),
		FieldError.Field(err),
	)
}

// Name implements pipz.Chainable[*Probe].
func (c *Checkpoint) Name() pipz.Name {
	return pipz.Name(c.key)
}

// Close implements pipz.Chainable[*Probe].
func (c *Checkpoint) Close() error {
	return nil
}

// copyMetadata creates a deep copy of finding metadata.
func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	copied := make(map[string]string, len(m))
	for k, v := range m {
		copied[k] = v
	}
	return copied
}

// copyEmbedding creates an independent copy of a finding embedding.
func copyEmbedding(v Vector) Vector {
	if v == nil {
		return nil
	}
	copied := make(Vector, len(v))
	copy(copied, v)
	return copied
}
