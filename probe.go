package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
)

// Finding represents a piece of evidence or analysis in a probe evaluation.
// Everything the pipeline produces is fundamentally text-based, so Content is
// always a string. Metadata provides structured extension without breaking
// type safety.
type Finding struct {
	ID        string            `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	ProbeID   string            `db:"probe_id" type:"uuid" constraints:"notnull" references:"probes(id)"`
	Key       string            `db:"key" type:"text" constraints:"notnull"`
	Content   string            `db:"content" type:"text" constraints:"notnull"`
	Metadata  map[string]string `db:"metadata" type:"jsonb" default:"'{}'"`
	Source    string            `db:"source" type:"text" constraints:"notnull"`
	Created   time.Time         `db:"created" type:"timestamp" constraints:"notnull"`
	Embedding Vector            `db:"embedding" type:"vector(16)"`
}

// StageRecord captures the execution of a single pipeline stage.
type StageRecord struct {
	Name      string
	Type      string
	Duration  time.Duration
	Timestamp time.Time
	Error     error
}

// Probe represents the rolling context of a semantic probe evaluation.
// It maintains an append-only log of Findings, providing the evidence trail
// for a claim under analysis.
//
// # Concurrency
//
// Probe is safe for concurrent reads but not concurrent writes. Multiple
// goroutines may call read methods (GetFinding, GetContent, AllFindings, etc.)
// simultaneously, but write methods (AddFinding, SetContent, AddStage) must
// not be called concurrently with each other or with reads.
//
// For parallel processing, use Clone to create independent copies for each
// goroutine. The cloned probes can then be merged or selected as needed.
//
// # Failure Behavior
//
// Pipeline stages may modify the probe before encountering an error. If a
// stage returns an error, the probe may be in a partially-modified state.
// Callers requiring atomicity should Clone the probe before processing and
// discard it on failure.
type Probe struct {
	// Identity
	ID      string `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	Claim   string `db:"claim" type:"text" constraints:"notnull"`
	TraceID string `db:"trace_id" type:"text" constraints:"notnull,unique"`

	// Lineage
	ParentID *string `db:"parent_id" type:"uuid" references:"probes(id)"`

	// Persistence
	memory   Memory   // Reference to memory for finding persistence
	embedder Embedder // Reference to embedder for finding embeddings (optional)

	// Append-only finding history
	findings []Finding
	index    sync.Map // map[string]int for quick lookup by key (most recent)
	stages   []StageRecord
	mu       sync.RWMutex

	// Timestamps
	CreatedAt time.Time `db:"created_at" type:"timestamp" constraints:"notnull"`
	UpdatedAt time.Time `db:"updated_at" type:"timestamp" constraints:"notnull"`
}

// NewProbe creates a new Probe for the given claim and persists it.
// TraceID is auto-generated using UUID. ID is assigned by the database.
func NewProbe(ctx context.Context, memory Memory, claim string) (*Probe, error) {
	p := &Probe{
		Claim:     claim,
		TraceID:   uuid.New().String(),
		memory:    memory,
		findings:  make([]Finding, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	persisted, err := memory.CreateProbe(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to persist probe: %w", err)
	}

	// Copy the database-assigned ID back
	p.ID = persisted.ID

	capitan.Emit(ctx, ProbeCreated,
		FieldClaim.Field(p.Claim),
		FieldTraceID.Field(p.TraceID),
	)

	return p, nil
}

// NewProbeWithTrace creates a new Probe with an explicit trace ID and persists it.
func NewProbeWithTrace(ctx context.Context, memory Memory, claim, traceID string) (*Probe, error) {
	p := &Probe{
		Claim:     claim,
		TraceID:   traceID,
		memory:    memory,
		findings:  make([]Finding, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	persisted, err := memory.CreateProbe(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to persist probe: %w", err)
	}

	p.ID = persisted.ID

	capitan.Emit(ctx, ProbeCreated,
		FieldClaim.Field(p.Claim),
		FieldTraceID.Field(p.TraceID),
	)

	return p, nil
}

// AddFinding adds a new finding to the probe and persists it.
// If a finding with the same key exists, the new finding becomes the current
// value. If an embedder is configured, the finding content will be embedded
// for semantic search.
func (p *Probe) AddFinding(ctx context.Context, finding Finding) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if finding.Created.IsZero() {
		finding.Created = time.Now()
	}
	finding.ProbeID = p.ID

	// Generate embedding if embedder is available
	embedder, err := ResolveEmbedder(ctx, p.embedder)
	if err == nil && embedder != nil {
		embedding, embedErr := embedder.Embed(ctx, finding.Content)
		if embedErr != nil {
			// Embedding is optional - record the failure and continue
			capitan.Emit(ctx, FindingAdded,
				FieldTraceID.Field(p.TraceID),
				FieldFindingKey.Field(finding.Key),
				FieldError.Field(fmt.Errorf("embedding failed: %w", embedErr)),
			)
		} else {
			finding.Embedding = embedding
		}
	}

	// Persist the finding
	persisted, err := p.memory.AddFinding(ctx, &finding)
	if err != nil {
		return fmt.Errorf("failed to persist finding: %w", err)
	}
	finding.ID = persisted.ID

	p.findings = append(p.findings, finding)
	p.index.Store(finding.Key, len(p.findings)-1)
	p.UpdatedAt = time.Now()

	capitan.Emit(ctx, FindingAdded,
		FieldTraceID.Field(p.TraceID),
		FieldFindingKey.Field(finding.Key),
		FieldFindingSource.Field(finding.Source),
		FieldFindingCount.Field(len(p.findings)),
		FieldContentSize.Field(len(finding.Content)),
	)

	return nil
}

// SetContent adds a simple finding with just key and content.
func (p *Probe) SetContent(ctx context.Context, key, content, source string) error {
	return p.AddFinding(ctx, Finding{
		Key:      key,
		Content:  content,
		Source:   source,
		Metadata: make(map[string]string),
		Created:  time.Now(),
	})
}

// SetFinding adds a finding with metadata.
func (p *Probe) SetFinding(ctx context.Context, key, content, source string, metadata map[string]string) error {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return p.AddFinding(ctx, Finding{
		Key:      key,
		Content:  content,
		Source:   source,
		Metadata: metadata,
		Created:  time.Now(),
	})
}

// GetFinding retrieves the most recent finding with the given key.
func (p *Probe) GetFinding(key string) (Finding, bool) {
	idx, ok := p.index.Load(key)
	if !ok {
		return Finding{}, false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	i, ok := idx.(int)
	if !ok || i < 0 || i >= len(p.findings) {
		return Finding{}, false
	}

	return p.findings[i], true
}

// GetContent retrieves the content of the most recent finding with the given key.
func (p *Probe) GetContent(key string) (string, error) {
	finding, ok := p.GetFinding(key)
	if !ok {
		return "", fmt.Errorf("finding not found: %s", key)
	}
	return finding.Content, nil
}

// GetMetadata retrieves a specific metadata field from the most recent finding.
func (p *Probe) GetMetadata(key, field string) (string, error) {
	finding, ok := p.GetFinding(key)
	if !ok {
		return "", fmt.Errorf("finding not found: %s", key)
	}

	value, ok := finding.Metadata[field]
	if !ok {
		return "", fmt.Errorf("metadata field not found: %s.%s", key, field)
	}

	return value, nil
}

// GetLatestFinding returns the most recently added finding.
func (p *Probe) GetLatestFinding() (Finding, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.findings) == 0 {
		return Finding{}, false
	}

	return p.findings[len(p.findings)-1], true
}

// AllFindings returns all findings in chronological order.
func (p *Probe) AllFindings() []Finding {
	p.mu.RLock()
	defer p.mu.RUnlock()

	findings := make([]Finding, len(p.findings))
	copy(findings, p.findings)
	return findings
}

// GetBool parses the content as a boolean ("true"/"false").
func (p *Probe) GetBool(key string) (bool, error) {
	content, err := p.GetContent(key)
	if err != nil {
		return false, err
	}

	switch content {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("cannot parse %q as boolean: %s", key, content)
	}
}

// GetFloat parses the content as a float64.
func (p *Probe) GetFloat(key string) (float64, error) {
	content, err := p.GetContent(key)
	if err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(content, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as float: %w", key, err)
	}

	return f, nil
}

// GetInt parses the content as an int.
func (p *Probe) GetInt(key string) (int, error) {
	content, err := p.GetContent(key)
	if err != nil {
		return 0, err
	}

	i, err := strconv.Atoi(content)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as int: %w", key, err)
	}

	return i, nil
}

// AddStage appends a stage execution record to the probe history.
func (p *Probe) AddStage(record StageRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stages = append(p.stages, record)
	p.UpdatedAt = time.Now()
}

// Stages returns all stage records in execution order.
func (p *Probe) Stages() []StageRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stages := make([]StageRecord, len(p.stages))
	copy(stages, p.stages)
	return stages
}

// Clone creates a deep copy of the probe for concurrent processing.
// Required for pipz.Concurrent and other parallel operations.
//
// The clone has independent findings. Modifications to the clone do not
// affect the original and vice versa.
//
// Note: Clone should only be called when the original probe is not being
// concurrently modified.
func (p *Probe) Clone() *Probe {
	p.mu.RLock()
	defer p.mu.RUnlock()

	clone := &Probe{
		ID:        p.ID,
		Claim:     p.Claim,
		TraceID:   p.TraceID,
		ParentID:  p.ParentID,
		memory:    p.memory,
		embedder:  p.embedder,
		findings:  make([]Finding, len(p.findings)),
		stages:    make([]StageRecord, len(p.stages)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: time.Now(),
	}

	copy(clone.stages, p.stages)

	// Deep copy findings (Finding is value type, but Metadata is map and
	// Embedding is slice)
	for i, finding := range p.findings {
		clonedMeta := make(map[string]string, len(finding.Metadata))
		for k, v := range finding.Metadata {
			clonedMeta[k] = v
		}
		var clonedEmbedding Vector
		if finding.Embedding != nil {
			clonedEmbedding = make(Vector, len(finding.Embedding))
			copy(clonedEmbedding, finding.Embedding)
		}
		clone.findings[i] = Finding{
			ID:        finding.ID,
			ProbeID:   finding.ProbeID,
			Key:       finding.Key,
			Content:   finding.Content,
			Metadata:  clonedMeta,
			Source:    finding.Source,
			Created:   finding.Created,
			Embedding: clonedEmbedding,
		}
	}

	// Rebuild index
	for i, finding := range clone.findings {
		clone.index.Store(finding.Key, i)
	}

	return clone
}

// SetMemory sets the memory reference for persistence operations.
// This is used when hydrating a Probe from the database.
func (p *Probe) SetMemory(m Memory) {
	p.memory = m
}

// Memory returns the memory reference for this Probe.
func (p *Probe) Memory() Memory {
	return p.memory
}

// SetEmbedder sets the embedder for generating finding embeddings.
// When set, findings will be embedded on creation for semantic search.
func (p *Probe) SetEmbedder(e Embedder) {
	p.embedder = e
}

// Embedder returns the embedder reference for this Probe.
func (p *Probe) Embedder() Embedder {
	return p.embedder
}

// AddFindingWithoutPersist adds a finding to the in-memory state without
// persisting. This is used when hydrating a Probe from the database.
func (p *Probe) AddFindingWithoutPersist(finding Finding) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.findings = append(p.findings, finding)
	p.index.Store(finding.Key, len(p.findings)-1)
	p.UpdatedAt = time.Now()
}

// Compile-time check: *Probe must implement pipz.Cloner[*Probe].
var _ interface{ Clone() *Probe } = (*Probe)(nil)

// RenderFindingsToContext converts a slice of findings to a formatted context
// string. Each finding is rendered as "key: content".
func RenderFindingsToContext(findings []Finding) string {
	if len(findings) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, finding := range findings {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(finding.Key)
		builder.WriteString(": ")
		builder.WriteString(finding.Content)
	}
	return builder.String()
}
