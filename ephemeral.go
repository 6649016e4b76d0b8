package probe

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// EphemeralMemory implements Memory entirely in process memory.
// It backs the API-free CLI default and tests; nothing survives the process.
// Semantic search uses cosine similarity over finding embeddings.
type EphemeralMemory struct {
	probes   map[string]*Probe
	findings map[string][]Finding
	mu       sync.RWMutex
}

// NewEphemeralMemory creates an empty in-process memory.
func NewEphemeralMemory() *EphemeralMemory {
	return &EphemeralMemory{
		probes:   make(map[string]*Probe),
		findings: make(map[string][]Finding),
	}
}

// CreateProbe persists a new probe and returns it with ID populated.
func (m *EphemeralMemory) CreateProbe(_ context.Context, p *Probe) (*Probe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = uuid.New().String()
	m.probes[p.ID] = p
	return p, nil
}

// GetProbe loads a probe by ID.
func (m *EphemeralMemory) GetProbe(_ context.Context, id string) (*Probe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.probes[id]
	if !ok {
		return nil, fmt.Errorf("probe not found: %s", id)
	}
	return p, nil
}

// GetProbeByTraceID loads a probe by trace ID.
func (m *EphemeralMemory) GetProbeByTraceID(_ context.Context, traceID string) (*Probe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.probes {
		if p.TraceID == traceID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("probe not found for trace: %s", traceID)
}

// GetChildProbes loads all probes that have the given probe as parent.
func (m *EphemeralMemory) GetChildProbes(_ context.Context, parentID string) ([]*Probe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var children []*Probe
	for _, p := range m.probes {
		if p.ParentID != nil && *p.ParentID == parentID {
			children = append(children, p)
		}
	}

	sort.Slice(children, func(i, j int) bool {
		return children[i].CreatedAt.Before(children[j].CreatedAt)
	})

	return children, nil
}

// AddFinding persists a finding and returns it with ID populated.
func (m *EphemeralMemory) AddFinding(_ context.Context, f *Finding) (*Finding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f.ID = uuid.New().String()
	m.findings[f.ProbeID] = append(m.findings[f.ProbeID], *f)
	return f, nil
}

// GetFindings loads all findings for a probe.
func (m *EphemeralMemory) GetFindings(_ context.Context, probeID string) ([]Finding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	findings := make([]Finding, len(m.findings[probeID]))
	copy(findings, m.findings[probeID])
	return findings, nil
}

// UpdateProbe updates probe metadata. The stored value is the same pointer
// the caller holds, so this only verifies the probe exists.
func (m *EphemeralMemory) UpdateProbe(_ context.Context, p *Probe) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.probes[p.ID]; !ok {
		return fmt.Errorf("probe not found: %s", p.ID)
	}
	return nil
}

// DeleteProbe removes a probe and all its findings.
func (m *EphemeralMemory) DeleteProbe(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.probes, id)
	delete(m.findings, id)
	return nil
}

// SearchFindings finds findings semantically similar to the query embedding,
// ordered by descending cosine similarity. Findings without embeddings are
// excluded.
func (m *EphemeralMemory) SearchFindings(_ context.Context, embedding Vector, limit int) ([]FindingWithProbe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		result FindingWithProbe
		score  float64
	}

	var candidates []scored
	for probeID, findings := range m.findings {
		parent := m.probes[probeID]
		if parent == nil {
			continue
		}
		for _, f := range findings {
			if f.Embedding == nil {
				continue
			}
			candidates = append(candidates, scored{
				result: FindingWithProbe{Finding: f, Probe: parent},
				score:  Cosine(embedding, f.Embedding),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]FindingWithProbe, len(candidates))
	for i, c := range candidates {
		results[i] = c.result
	}
	return results, nil
}

// Compile-time check: EphemeralMemory must implement Memory.
var _ Memory = (*EphemeralMemory)(nil)
