package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Restore is a memory primitive that loads a previous probe and creates a new
// branch from it. It loads the specified Probe by ID, creates a new Probe with
// the loaded one as parent, copies all findings, and returns the new Probe.
// This effectively "restores" to a previous checkpoint while preserving the
// full audit trail.
type Restore struct {
	key     string
	probeID string
}

// NewRestore creates a new restore primitive.
//
// The primitive loads a Probe by ID and creates a new Probe that:
//   - Has the loaded Probe as its parent (ParentID)
//   - Carries the loaded Probe's claim under a fresh trace ID
//   - Copies all findings from the loaded Probe
//
// The current Probe in the pipeline is abandoned (but preserved in the
// database).
//
// Example:
//
//	// Store checkpoint ID somewhere accessible
//	var checkpointID string
//
//	pipeline := probe.Sequence("evaluate",
//	    probe.NewCheckpoint("save_point"),
//	    // ... more stages that might fail ...
//	)
//
//	// On failure, restore from checkpoint
//	restore := probe.NewRestore("retry", checkpointID)
//	p, _ = restore.Process(ctx, p)
func NewRestore(key, probeID string) *Restore {
	return &Restore{
		key:     key,
		probeID: probeID,
	}
}

// Process implements pipz.Chainable[*Probe].
func (r *Restore) Process(ctx context.Context, p *Probe) (*Probe, error) {
	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(r.key),
		FieldStageType.Field("restore"),
	)

	// Load the target probe
	memory := p.memory
	target, err := memory.GetProbe(ctx, r.probeID)
	if err != nil {
		r.emitFailed(ctx, p, start, err)
		return p, fmt.Errorf("restore: failed to load probe %s: %w", r.probeID, err)
	}

	// Create new probe with target as parent
	parentID := target.ID
	branch := &Probe{
		Claim:     target.Claim,
		TraceID:   uuid.New().String(),
		ParentID:  &parentID,
		memory:    memory,
		embedder:  p.embedder,
		findings:  make([]Finding, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	persisted, err := memory.CreateProbe(ctx, branch)
	if err != nil {
		r.emitFailed(ctx, p, start, err)
		return p, fmt.Errorf("restore: failed to create probe: %w", err)
	}
	branch.ID = persisted.ID

	// Copy findings to the branch (persisting each)
	for _, finding := range target.AllFindings() {
		if err := branch.AddFinding(ctx, Finding{
			Key:       finding.Key,
			Content:   finding.Content,
			Metadata:  copyMetadata(finding.Metadata),
			Source:    finding.Source,
			Created:   finding.Created,
			Embedding: copyEmbedding(finding.Embedding),
		}); err != nil {
			r.emitFailed(ctx, p, start, err)
			return p, fmt.Errorf("restore: failed to copy finding: %w", err)
		}
	}

	capitan.Emit(ctx, ProbeCreated,
		FieldClaim.Field(branch.Claim),
		FieldTraceID.Field(branch.TraceID),
	)

	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(branch.TraceID),
		FieldStageName.Field(r.key),
		FieldStageType.Field("restore"),
		FieldStageDuration.Field(time.Since(start)),
		FieldFindingCount.Field(len(branch.AllFindings())),
	)

	return branch, nil
}

// emitFailed emits a stage failed event.
func (r *Restore) emitFailed(ctx context.Context, p *Probe, start time.Time, err error) {
	capitan.Error(ctx, StageFailed,
		FieldTraceID.Field(p.TraceID),
		FieldStageName.Field(r.key),
		FieldStageType.Field("restore"),
		FieldStageDuration.Field(time.Since(start)),
		FieldError.Field(err),
	)
}

// Name implements pipz.Chainable[*Probe].
func (r *Restore) Name() pipz.Name {
	return pipz.Name(r.key)
}

// Close implements pipz.Chainable[*Probe].
func (r *Restore) Close() error {
	return nil
}
